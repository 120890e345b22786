package payments

import (
	"bytes"
	"encoding/json"

	"github.com/shopspring/decimal"
)

type InitializeRequest struct {
	Amount    decimal.Decimal // major currency units
	Email     string
	Metadata  map[string]any
	Reference string // optional; the provider generates one when empty
}

type InitializeData struct {
	AuthorizationURL string `json:"authorization_url"`
	AccessCode       string `json:"access_code"`
	Reference        string `json:"reference"`
}

type InitializeResponse struct {
	Status  bool           `json:"status"`
	Message string         `json:"message"`
	Data    InitializeData `json:"data"`

	// Raw is the provider body exactly as received.
	Raw json.RawMessage `json:"-"`
}

// VerifyResponse is the provider verification envelope. Every field the
// reconciliation reads is a pointer so an absent key stays distinguishable
// from a zero value.
type VerifyResponse struct {
	Status  bool        `json:"status"`
	Message string      `json:"message"`
	Data    *VerifyData `json:"data"`

	Raw json.RawMessage `json:"-"`
}

type VerifyData struct {
	Reference       *string          `json:"reference"`
	Status          *string          `json:"status"`
	Amount          *decimal.Decimal `json:"amount"` // minor units
	Currency        *string          `json:"currency"`
	GatewayResponse *string          `json:"gateway_response"`
	PaidAt          *string          `json:"paid_at"`
	Customer        *Customer        `json:"customer"`
	Metadata        *Metadata        `json:"metadata"`
}

type Customer struct {
	Email *string `json:"email"`
}

// Metadata is the free-form object attached at initialization. The provider
// sends an empty string instead of an object when nothing was attached, and
// some integrations send the object JSON-encoded as a string.
type Metadata struct {
	Name   *string
	Fields map[string]any
}

func (m *Metadata) UnmarshalJSON(b []byte) error {
	b = bytes.TrimSpace(b)
	quoted := len(b) > 0 && b[0] == '"'
	if quoted {
		var s string
		if err := json.Unmarshal(b, &s); err != nil {
			return err
		}
		inner := bytes.TrimSpace([]byte(s))
		if len(inner) == 0 || inner[0] != '{' {
			return nil
		}
		b = inner
	}

	var fields map[string]any
	if err := json.Unmarshal(b, &fields); err != nil {
		if quoted {
			return nil
		}
		return err
	}
	m.Fields = fields
	if name, ok := fields["name"].(string); ok {
		m.Name = &name
	}
	return nil
}

func (m Metadata) MarshalJSON() ([]byte, error) {
	if m.Fields == nil {
		return []byte("null"), nil
	}
	return json.Marshal(m.Fields)
}
