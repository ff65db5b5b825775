// Package vaultKeyGenerator creates Ed25519 keys inside the Vault transit
// engine. The private half never leaves Vault.
package vaultKeyGenerator

import (
	"context"

	"github.com/Layr-Labs/solana-signer-go/internal/keyGenerator"
	"github.com/Layr-Labs/solana-signer-go/pkg/clients/vault"
	"github.com/Layr-Labs/solana-signer-go/pkg/logger"
	"github.com/Layr-Labs/solana-signer-go/pkg/sdk"
	"github.com/Layr-Labs/solana-signer-go/pkg/signerErrors"
	"github.com/pkg/errors"
	"go.uber.org/zap"
)

type VaultKeyGenerator struct {
	logger *zap.Logger
	client vault.IVaultClient
}

// Compile-time check to ensure VaultKeyGenerator implements IKeyGenerator
var _ keyGenerator.IKeyGenerator = (*VaultKeyGenerator)(nil)

func NewVaultKeyGenerator(client vault.IVaultClient, l *zap.Logger) *VaultKeyGenerator {
	return &VaultKeyGenerator{
		logger: logger.OrNop(l),
		client: client,
	}
}

// GenerateKey creates the transit key keyName. The key name doubles as the key id.
func (v *VaultKeyGenerator) GenerateKey(ctx context.Context, keyName string) (*keyGenerator.GeneratedKey, error) {
	if keyName == "" {
		return nil, signerErrors.NewConfigError("key name is required")
	}
	if err := v.client.CreateKey(ctx, keyName); err != nil {
		return nil, err
	}
	return v.GetKeyById(ctx, keyName)
}

func (v *VaultKeyGenerator) GetKeyById(ctx context.Context, keyId string) (*keyGenerator.GeneratedKey, error) {
	raw, err := v.client.GetPublicKey(ctx, keyId)
	if err != nil {
		return nil, err
	}
	publicKey, err := sdk.PublicKeyFromBytes(raw)
	if err != nil {
		return nil, signerErrors.NewInvalidPublicKey("%v", errors.Wrapf(err, "Vault key %s", keyId))
	}

	v.logger.Debug("Retrieved Vault transit key",
		zap.String("keyId", keyId),
		zap.String("publicKey", publicKey.String()),
	)
	return &keyGenerator.GeneratedKey{
		PublicKey: publicKey,
		KeyId:     keyId,
	}, nil
}

func (v *VaultKeyGenerator) SignMessage(ctx context.Context, keyId string, message []byte) (sdk.Signature, error) {
	raw, err := v.client.Sign(ctx, keyId, message)
	if err != nil {
		return sdk.Signature{}, err
	}
	sig, err := sdk.SignatureFromBytes(raw)
	if err != nil {
		return sdk.Signature{}, signerErrors.NewSigningFailed("%v", err)
	}
	return sig, nil
}
