package payments

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"strings"
	"time"

	"paygate/internal/metrics"

	"github.com/go-resty/resty/v2"
	"go.uber.org/zap"
)

const (
	DefaultPaystackBaseURL = "https://api.paystack.co"
	DefaultPaystackTimeout = 30 * time.Second
)

type PaystackConfig struct {
	SecretKey string
	BaseURL   string
	Timeout   time.Duration
}

// Paystack talks to the Paystack transaction API. It never retries; a failed
// call surfaces to the caller immediately.
type Paystack struct {
	secretKey string
	client    *resty.Client
	logger    *zap.SugaredLogger
}

func NewPaystack(cfg PaystackConfig, logger *zap.SugaredLogger) *Paystack {
	if cfg.BaseURL == "" {
		cfg.BaseURL = DefaultPaystackBaseURL
	}
	if cfg.Timeout <= 0 {
		cfg.Timeout = DefaultPaystackTimeout
	}
	if logger == nil {
		logger = zap.NewNop().Sugar()
	}

	r := resty.New().
		SetBaseURL(strings.TrimRight(cfg.BaseURL, "/")).
		SetTimeout(cfg.Timeout).
		SetRetryCount(0)

	return &Paystack{
		secretKey: cfg.SecretKey,
		client:    r,
		logger:    logger,
	}
}

// headers builds the per-call auth headers. Without a secret key there are
// no usable headers and the call must not be sent.
func (p *Paystack) headers() (map[string]string, error) {
	if strings.TrimSpace(p.secretKey) == "" {
		return nil, fmt.Errorf("paystack secret key is not configured")
	}
	return map[string]string{
		"Authorization": "Bearer " + p.secretKey,
		"Content-Type":  "application/json",
		"Accept":        "application/json",
	}, nil
}

type initializePayload struct {
	Amount    int64          `json:"amount"` // minor units
	Email     string         `json:"email"`
	Metadata  map[string]any `json:"metadata"`
	Reference string         `json:"reference,omitempty"`
}

func (p *Paystack) Initialize(ctx context.Context, req InitializeRequest) (res *InitializeResponse, err error) {
	defer p.observe("initialize", time.Now(), &err)

	minor, err := ToMinorUnits(req.Amount)
	if err != nil {
		return nil, NewGatewayError("paystack initialize: "+err.Error(), err)
	}

	raw, err := p.do(ctx, "paystack initialize", http.MethodPost, "/transaction/initialize", initializePayload{
		Amount:    minor,
		Email:     req.Email,
		Metadata:  req.Metadata,
		Reference: req.Reference,
	}, nil)
	if err != nil {
		return nil, err
	}

	var out InitializeResponse
	if err := json.Unmarshal(raw, &out); err != nil {
		p.logger.Errorw("paystack initialize decode failed", "error", err)
		return nil, NewGatewayError(fmt.Sprintf("paystack initialize: malformed response: %v", err), err)
	}
	out.Raw = raw
	return &out, nil
}

func (p *Paystack) Verify(ctx context.Context, reference string) (res *VerifyResponse, err error) {
	defer p.observe("verify", time.Now(), &err)

	reference = strings.TrimSpace(reference)
	if reference == "" {
		return nil, NewGatewayError("paystack verify: reference is required", nil)
	}

	raw, err := p.do(ctx, "paystack verify", http.MethodGet, "/transaction/verify/{reference}", nil, map[string]string{
		"reference": reference,
	})
	if err != nil {
		return nil, err
	}

	var out VerifyResponse
	if err := json.Unmarshal(raw, &out); err != nil {
		p.logger.Errorw("paystack verify decode failed", "reference", reference, "error", err)
		return nil, NewGatewayError(fmt.Sprintf("paystack verify: malformed response: %v", err), err)
	}
	out.Raw = raw
	return &out, nil
}

// do sends one request and returns the body of a 2xx JSON answer. Every
// failure comes back as a *GatewayError.
func (p *Paystack) do(ctx context.Context, op, method, path string, body any, pathParams map[string]string) ([]byte, error) {
	headers, err := p.headers()
	if err != nil {
		p.logger.Errorw("paystack request not sent", "op", op, "error", err)
		return nil, NewGatewayError(fmt.Sprintf("%s: %v", op, err), err)
	}

	r := p.client.R().
		SetContext(ctx).
		SetHeaders(headers)
	if pathParams != nil {
		r.SetPathParams(pathParams)
	}
	if body != nil {
		r.SetBody(body)
	}

	resp, err := r.Execute(method, path)
	if err != nil {
		p.logger.Errorw("paystack request failed", "op", op, "error", err)
		return nil, NewGatewayError(fmt.Sprintf("%s: %v", op, err), err)
	}

	raw := resp.Body()
	if !resp.IsSuccess() {
		msg := providerMessage(raw)
		if msg == "" {
			msg = fmt.Sprintf("http %d", resp.StatusCode())
		}
		p.logger.Errorw("paystack request rejected", "op", op, "http_status", resp.StatusCode(), "message", msg)
		return nil, NewGatewayError(fmt.Sprintf("%s: %s", op, msg), nil)
	}

	if !json.Valid(raw) {
		p.logger.Errorw("paystack returned invalid json", "op", op, "http_status", resp.StatusCode())
		return nil, NewGatewayError(fmt.Sprintf("%s: malformed response", op), nil)
	}

	return raw, nil
}

func (p *Paystack) observe(op string, start time.Time, errp *error) {
	metrics.ObserveGateway(op, *errp, time.Since(start))
}

// providerMessage extracts the "message" field Paystack puts on error bodies.
func providerMessage(raw []byte) string {
	var envelope struct {
		Message string `json:"message"`
	}
	if err := json.Unmarshal(raw, &envelope); err != nil {
		return ""
	}
	return strings.TrimSpace(envelope.Message)
}

var _ Gateway = (*Paystack)(nil)
