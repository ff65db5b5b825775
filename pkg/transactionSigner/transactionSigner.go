package transactionSigner

import (
	"context"

	"github.com/Layr-Labs/solana-signer-go/pkg/sdk"
)

// ITransactionSigner provides methods for signing Solana messages and transactions.
// Implementations are safe for concurrent use.
type ITransactionSigner interface {
	// PublicKey returns the key that signatures are produced for. It never does I/O.
	PublicKey() sdk.PublicKey

	// SignMessage signs arbitrary bytes.
	SignMessage(ctx context.Context, message []byte) (sdk.Signature, error)

	// SignTransaction signs tx and returns its base64 wire encoding and the new signature.
	SignTransaction(ctx context.Context, tx *sdk.Transaction) (*sdk.SignedTransaction, error)

	// SignPartialTransaction signs tx as one of several required signers,
	// leaving the other signers' slots untouched.
	SignPartialTransaction(ctx context.Context, tx *sdk.Transaction) (*sdk.SignedTransaction, error)

	// IsAvailable reports whether the signer can currently sign. It never errors.
	IsAvailable(ctx context.Context) bool
}
