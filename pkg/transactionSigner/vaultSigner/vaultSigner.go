// Package vaultSigner signs through a HashiCorp Vault transit ed25519 key.
package vaultSigner

import (
	"context"

	"github.com/Layr-Labs/solana-signer-go/pkg/clients/vault"
	"github.com/Layr-Labs/solana-signer-go/pkg/logger"
	"github.com/Layr-Labs/solana-signer-go/pkg/sdk"
	"github.com/Layr-Labs/solana-signer-go/pkg/signerErrors"
	"github.com/Layr-Labs/solana-signer-go/pkg/util"
	"go.uber.org/zap"
)

type VaultSigner struct {
	client    vault.IVaultClient
	keyName   string
	publicKey sdk.PublicKey
	logger    *zap.Logger
}

// NewVaultSigner parses publicKey before building the client, so an invalid key
// never leads to a network call.
func NewVaultSigner(cfg *vault.Config, keyName string, publicKey string, l *zap.Logger) (*VaultSigner, error) {
	pubkey, err := parsePublicKey(publicKey)
	if err != nil {
		return nil, err
	}

	client, err := vault.NewClient(cfg, l)
	if err != nil {
		return nil, err
	}
	return NewVaultSignerWithClient(client, keyName, pubkey, l), nil
}

// NewVaultSignerWithClient creates a VaultSigner around an existing client.
func NewVaultSignerWithClient(client vault.IVaultClient, keyName string, publicKey sdk.PublicKey, l *zap.Logger) *VaultSigner {
	return &VaultSigner{
		client:    client,
		keyName:   keyName,
		publicKey: publicKey,
		logger:    logger.OrNop(l),
	}
}

func parsePublicKey(publicKey string) (sdk.PublicKey, error) {
	pubkey, err := sdk.ParsePublicKey(publicKey)
	if err != nil {
		return sdk.PublicKey{}, signerErrors.NewInvalidPublicKey("Failed to decode base58 public key: %v", err)
	}
	return pubkey, nil
}

// PublicKey returns the configured public key.
func (s *VaultSigner) PublicKey() sdk.PublicKey {
	return s.publicKey
}

// SignMessage signs message with the Vault transit key.
func (s *VaultSigner) SignMessage(ctx context.Context, message []byte) (sdk.Signature, error) {
	raw, err := s.client.Sign(ctx, s.keyName, message)
	if err != nil {
		return sdk.Signature{}, err
	}
	sig, err := sdk.SignatureFromBytes(raw)
	if err != nil {
		return sdk.Signature{}, signerErrors.NewSigningFailed("Invalid signature format: %v", err)
	}
	return sig, nil
}

func (s *VaultSigner) SignTransaction(ctx context.Context, tx *sdk.Transaction) (*sdk.SignedTransaction, error) {
	return s.signAndSerialize(ctx, tx)
}

func (s *VaultSigner) SignPartialTransaction(ctx context.Context, tx *sdk.Transaction) (*sdk.SignedTransaction, error) {
	return s.signAndSerialize(ctx, tx)
}

func (s *VaultSigner) IsAvailable(ctx context.Context) bool {
	exists, err := s.client.KeyExists(ctx, s.keyName)
	if err != nil {
		s.logger.Debug("Vault availability check failed", signerErrors.Field(err))
		return false
	}
	return exists
}

func (s *VaultSigner) signAndSerialize(ctx context.Context, tx *sdk.Transaction) (*sdk.SignedTransaction, error) {
	message, err := sdk.MessageBytes(tx)
	if err != nil {
		return nil, signerErrors.NewSerializationError("Failed to encode message: %v", err)
	}
	sig, err := s.SignMessage(ctx, message)
	if err != nil {
		return nil, err
	}
	return util.SignAndSerialize(tx, s.publicKey, sig)
}
