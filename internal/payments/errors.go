package payments

import (
	"errors"
	"net/http"
)

// GatewayError is the single error kind for anything that goes wrong while
// talking to the provider: transport failures, timeouts, non-2xx answers,
// undecodable bodies and missing credentials.
type GatewayError struct {
	Message    string
	StatusCode int
	Err        error
}

func NewGatewayError(message string, cause error) *GatewayError {
	return &GatewayError{Message: message, StatusCode: http.StatusBadRequest, Err: cause}
}

func (e *GatewayError) Error() string { return e.Message }

func (e *GatewayError) Unwrap() error { return e.Err }

// AsGatewayError unwraps err into a *GatewayError if one is in the chain.
func AsGatewayError(err error) (*GatewayError, bool) {
	var gerr *GatewayError
	if errors.As(err, &gerr) {
		return gerr, true
	}
	return nil, false
}
