package vault

import (
	"context"
	"net/http"
)

// IVaultClient is the subset of the Vault transit engine used by the signer.
type IVaultClient interface {
	// SetHttpClient replaces the client used for requests to Vault.
	SetHttpClient(client *http.Client) error

	// Sign asks the transit engine to sign payload with keyName and returns the
	// raw signature bytes with the "vault:v1:" prefix removed.
	Sign(ctx context.Context, keyName string, payload []byte) ([]byte, error)

	// KeyExists reads the transit key metadata for keyName.
	KeyExists(ctx context.Context, keyName string) (bool, error)

	// CreateKey creates an ed25519 transit key named keyName. Creating a key
	// that already exists is a no-op in Vault.
	CreateKey(ctx context.Context, keyName string) error

	// GetPublicKey returns the raw public key of the latest version of keyName.
	GetPublicKey(ctx context.Context, keyName string) ([]byte, error)
}

// Compile-time check to ensure Client implements IVaultClient
var _ IVaultClient = (*Client)(nil)
