package reconcile

import (
	"paygate/internal/payments"

	"github.com/shopspring/decimal"
)

// Result is the provider verification flattened into the local shape. A nil
// field means the provider did not send it.
type Result struct {
	Status  *string          `json:"status"`
	Email   *string          `json:"email"`
	Name    *string          `json:"name"`
	Amount  *decimal.Decimal `json:"amount" swaggertype:"number"` // major units
	Message *string          `json:"message"`
}

// Normalize maps a verification response onto a Result. A missing data
// object behaves like an empty one.
func Normalize(res *payments.VerifyResponse) Result {
	var data payments.VerifyData
	if res != nil && res.Data != nil {
		data = *res.Data
	}

	out := Result{
		Status:  data.Status,
		Message: data.GatewayResponse,
	}
	if data.Customer != nil {
		out.Email = data.Customer.Email
	}
	if data.Metadata != nil {
		out.Name = data.Metadata.Name
	}
	if data.Amount != nil {
		major := payments.FromMinorUnits(*data.Amount)
		out.Amount = &major
	}
	return out
}

func (r Result) StatusString() string {
	if r.Status == nil {
		return ""
	}
	return *r.Status
}

func deref(s *string) string {
	if s == nil {
		return ""
	}
	return *s
}
