package payments

import "context"

// Gateway is the provider surface the API and the reconciliation service
// depend on. Both calls return a *GatewayError on any failure.
type Gateway interface {
	Initialize(ctx context.Context, req InitializeRequest) (*InitializeResponse, error)
	Verify(ctx context.Context, reference string) (*VerifyResponse, error)
}
