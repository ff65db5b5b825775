package turnkey

import (
	"context"
	"net/http"
)

// ITurnkeyClient defines the Turnkey API calls used by the signer.
type ITurnkeyClient interface {
	SetHttpClient(client *http.Client)

	// SignRawPayload submits a sign_raw_payload activity for payload, signed
	// with the key identified by signWith, and returns the r and s components.
	SignRawPayload(ctx context.Context, signWith string, payload []byte) (*SignResult, error)

	// WhoAmI checks that the API key is accepted for the organization.
	WhoAmI(ctx context.Context) error
}

// Compile-time check to ensure Client implements ITurnkeyClient
var _ ITurnkeyClient = (*Client)(nil)
