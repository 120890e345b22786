package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"

	"paygate/internal/domain/transactions"
	"paygate/internal/params"
	"paygate/internal/payments"

	"github.com/go-chi/chi/v5"
	"github.com/shopspring/decimal"
)

const handlerTimeout = 45 * time.Second

type CreatePaymentPayload struct {
	Name   string `json:"name" validate:"required,max=100"`
	Email  string `json:"email" validate:"required,email"`
	Amount int64  `json:"amount" validate:"gte=1"` // major currency units
}

// createPaymentHandler godoc
//
//	@Summary		Initialize a payment
//	@Description	Initializes a Paystack transaction and relays the provider payload (authorization_url, access_code, reference) unchanged.
//	@Tags			payments
//	@Accept			json
//	@Produce		json
//	@Param			payload	body		CreatePaymentPayload	true	"Customer and amount in major units"
//	@Success		200		{object}	map[string]any			"Provider initialization payload"
//	@Failure		400		{object}	map[string]string		"Validation or gateway error"
//	@Router			/payment [post]
func (app *application) createPaymentHandler(w http.ResponseWriter, r *http.Request) {
	var payload CreatePaymentPayload
	if err := readJSON(w, r, &payload); err != nil {
		app.badRequestResponse(w, r, err)
		return
	}
	payload.Name = strings.TrimSpace(payload.Name)
	payload.Email = strings.TrimSpace(payload.Email)

	if err := Validate.Struct(payload); err != nil {
		app.failedValidationResponse(w, r, err)
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), handlerTimeout)
	defer cancel()

	amount := decimal.NewFromInt(payload.Amount)
	reference := app.newReference()

	res, err := app.gateway.Initialize(ctx, payments.InitializeRequest{
		Amount:    amount,
		Email:     payload.Email,
		Metadata:  map[string]any{"name": payload.Name},
		Reference: reference,
	})
	if err != nil {
		app.gatewayErrorResponse(w, r, err)
		return
	}

	if res.Data.Reference != "" {
		reference = res.Data.Reference
	}

	// The provider already holds the transaction; a failed local write is
	// repaired when the payment is verified.
	if _, _, err := app.store.Transactions.CreatePending(ctx, reference, transactions.Fields{
		Amount:        amount,
		CustomerName:  payload.Name,
		CustomerEmail: payload.Email,
	}); err != nil {
		app.logger.Errorw("failed to record pending transaction", "reference", reference, "error", err)
	}

	if err := writeRawJSON(w, http.StatusOK, res.Raw); err != nil {
		app.logger.Errorw("failed to write response", "reference", reference, "error", err)
	}
}

// getTransactionHandler godoc
//
//	@Summary		Retrieve a transaction
//	@Description	Returns the locally stored transaction for a reference.
//	@Tags			payments
//	@Produce		json
//	@Param			reference	path		string	true	"Transaction reference"
//	@Success		200			{object}	transactions.Transaction
//	@Failure		404			{object}	map[string]string
//	@Router			/payment/{reference} [get]
func (app *application) getTransactionHandler(w http.ResponseWriter, r *http.Request) {
	reference := chi.URLParam(r, "reference")

	tx, err := app.store.Transactions.FindByReference(r.Context(), reference)
	if err != nil {
		if errors.Is(err, transactions.ErrNotFound) {
			app.notFoundResponse(w, r, "Transaction not found")
			return
		}
		app.internalServerError(w, r, err)
		return
	}

	if err := writeJSON(w, http.StatusOK, tx); err != nil {
		app.internalServerError(w, r, err)
	}
}

// verifyPaymentHandler godoc
//
//	@Summary		Verify a payment
//	@Description	Fetches the provider's verification for a reference, records successful payments and returns the normalized result.
//	@Tags			payments
//	@Produce		json
//	@Param			reference	path		string	true	"Transaction reference"
//	@Success		200			{object}	reconcile.Result
//	@Failure		400			{object}	map[string]string	"Gateway error"
//	@Failure		422			{object}	map[string]string	"Verified amount cannot be stored"
//	@Router			/callback/{reference} [get]
func (app *application) verifyPaymentHandler(w http.ResponseWriter, r *http.Request) {
	reference := chi.URLParam(r, "reference")

	ctx, cancel := context.WithTimeout(r.Context(), handlerTimeout)
	defer cancel()

	out, err := app.reconciler.Verify(ctx, reference)
	if err != nil {
		if _, ok := payments.AsGatewayError(err); ok {
			app.gatewayErrorResponse(w, r, err)
			return
		}
		if errors.Is(err, transactions.ErrAmountOutOfRange) {
			app.unprocessableEntityResponse(w, r, err, "verified amount is outside the supported range")
			return
		}
		app.internalServerError(w, r, err)
		return
	}

	if err := writeJSON(w, http.StatusOK, out.Result); err != nil {
		app.internalServerError(w, r, err)
	}
}

// listTransactionsHandler godoc
//
//	@Summary		List transactions
//	@Description	Paginated transactions, newest first. Optional status filter.
//	@Tags			payments
//	@Produce		json
//	@Param			status	query		string	false	"pending|success|failed|abandoned"
//	@Param			page	query		int		false	"Page number (default 1)"
//	@Param			limit	query		int		false	"Items per page (default 20, max 100)"
//	@Success		200		{object}	map[string]any	"{ transactions, pagination, status }"
//	@Failure		400		{object}	map[string]string
//	@Security		BasicAuth
//	@Router			/payment [get]
func (app *application) listTransactionsHandler(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()

	status := transactions.Status(strings.ToLower(strings.TrimSpace(q.Get("status"))))
	if status != "" && !status.Valid() {
		app.badRequestResponse(w, r, fmt.Errorf("invalid status %q", status))
		return
	}

	pg := params.ParsePagination(q)

	list, total, err := app.store.Transactions.List(r.Context(), status, pg.Limit, pg.Offset)
	if err != nil {
		app.internalServerError(w, r, err)
		return
	}
	pg.ComputeMeta(total)

	if list == nil {
		list = []*transactions.Transaction{}
	}

	if err := writeJSON(w, http.StatusOK, map[string]any{
		"transactions": list,
		"pagination":   pg,
		"status":       status,
	}); err != nil {
		app.internalServerError(w, r, err)
	}
}
