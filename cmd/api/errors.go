package main

import (
	"errors"
	"fmt"
	"net/http"
	"strconv"

	"paygate/internal/payments"

	"github.com/go-playground/validator/v10"
)

func (app *application) internalServerError(w http.ResponseWriter, r *http.Request, err error) {
	app.logger.Errorw("internal error", "method", r.Method, "path", r.URL.Path, "error", err.Error())
	writeJSONError(w, http.StatusInternalServerError, "the server encountered a problem")
}

func (app *application) badRequestResponse(w http.ResponseWriter, r *http.Request, err error) {
	app.logger.Warnw("bad request", "method", r.Method, "path", r.URL.Path, "error", err.Error())
	writeJSONError(w, http.StatusBadRequest, err.Error())
}

func (app *application) notFoundResponse(w http.ResponseWriter, r *http.Request, message string) {
	app.logger.Warnw("not found", "method", r.Method, "path", r.URL.Path, "error", message)
	writeJSONError(w, http.StatusNotFound, message)
}

func (app *application) unprocessableEntityResponse(w http.ResponseWriter, r *http.Request, err error, message string) {
	app.logger.Errorw("unprocessable entity", "method", r.Method, "path", r.URL.Path, "error", err.Error())
	writeJSONError(w, http.StatusUnprocessableEntity, message)
}

// gatewayErrorResponse answers with the provider error's own status code and
// message. Errors that are not gateway errors are internal.
func (app *application) gatewayErrorResponse(w http.ResponseWriter, r *http.Request, err error) {
	gerr, ok := payments.AsGatewayError(err)
	if !ok {
		app.internalServerError(w, r, err)
		return
	}

	status := gerr.StatusCode
	if status < 400 || status > 599 {
		status = http.StatusBadRequest
	}
	app.logger.Warnw("gateway error", "method", r.Method, "path", r.URL.Path, "status", status, "error", gerr.Message)
	writeJSONError(w, status, gerr.Message)
}

// failedValidationResponse reports every failed field as
// {"error": "validation failed", "fields": {"amount": "..."}}.
func (app *application) failedValidationResponse(w http.ResponseWriter, r *http.Request, err error) {
	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) {
		app.badRequestResponse(w, r, err)
		return
	}

	fields := make(map[string]string, len(verrs))
	for _, fe := range verrs {
		fields[fe.Field()] = validationMessage(fe)
	}

	app.logger.Warnw("validation failed", "method", r.Method, "path", r.URL.Path, "fields", fields)
	writeJSON(w, http.StatusBadRequest, map[string]any{
		"error":  "validation failed",
		"fields": fields,
	})
}

func validationMessage(fe validator.FieldError) string {
	switch fe.Tag() {
	case "required":
		return "This field may not be blank."
	case "email":
		return "Enter a valid email address."
	case "gte", "min":
		return "Ensure this value is greater than or equal to " + fe.Param() + "."
	case "max":
		return "Ensure this field has no more than " + fe.Param() + " characters."
	}
	return fmt.Sprintf("failed on %s", fe.Tag())
}

func (app *application) unauthorizedBasicErrorResponse(w http.ResponseWriter, r *http.Request, err error) {
	app.logger.Warnw("unauthorized basic error", "method", r.Method, "path", r.URL.Path, "error", err.Error())
	w.Header().Set("WWW-Authenticate", `Basic realm="restricted", charset="UTF-8"`)
	writeJSONError(w, http.StatusUnauthorized, "unauthorized")
}

func (app *application) rateLimitExceededResponse(w http.ResponseWriter, r *http.Request, retryAfter string) {
	app.logger.Warnw("rate limit exceeded", "method", r.Method, "path", r.URL.Path)
	w.Header().Set("Retry-After", retryAfter)
	writeJSONError(w, http.StatusTooManyRequests, "rate limit exceeded, retry after: "+retryAfter)
}

func retryAfterSeconds(seconds float64) string {
	s := int(seconds)
	if float64(s) < seconds {
		s++
	}
	return strconv.Itoa(s)
}
