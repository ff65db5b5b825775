package keyGenerator

import (
	"context"

	"github.com/Layr-Labs/solana-signer-go/pkg/sdk"
)

type GeneratedKey struct {
	PublicKey sdk.PublicKey
	KeyId     string
}

// GetPublicKeyBase58 returns the public key in the form the signer configs expect.
func (gk *GeneratedKey) GetPublicKeyBase58() string {
	return gk.PublicKey.String()
}

type IKeyGenerator interface {
	GenerateKey(ctx context.Context, keyName string) (*GeneratedKey, error)
	GetKeyById(ctx context.Context, keyId string) (*GeneratedKey, error)
	SignMessage(ctx context.Context, keyId string, message []byte) (sdk.Signature, error)
}
