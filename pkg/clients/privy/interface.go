package privy

import (
	"context"
	"net/http"
)

// IPrivyClient defines the Privy wallet API calls used by the signer.
type IPrivyClient interface {
	SetHttpClient(client *http.Client)

	// GetWallet fetches the wallet record, including its Solana address.
	GetWallet(ctx context.Context) (*WalletResponse, error)

	// SignTransaction submits a signTransaction RPC for the wallet and returns
	// the base64 signed transaction from the response.
	SignTransaction(ctx context.Context, payload []byte) (string, error)
}

// Compile-time check to ensure Client implements IPrivyClient
var _ IPrivyClient = (*Client)(nil)
