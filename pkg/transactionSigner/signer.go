package transactionSigner

import (
	"context"
	"fmt"

	"github.com/Layr-Labs/solana-signer-go/pkg/clients/privy"
	"github.com/Layr-Labs/solana-signer-go/pkg/clients/turnkey"
	"github.com/Layr-Labs/solana-signer-go/pkg/clients/vault"
	"github.com/Layr-Labs/solana-signer-go/pkg/config"
	"github.com/Layr-Labs/solana-signer-go/pkg/sdk"
	"github.com/Layr-Labs/solana-signer-go/pkg/signerErrors"
	"github.com/Layr-Labs/solana-signer-go/pkg/transactionSigner/inMemorySigner"
	"github.com/Layr-Labs/solana-signer-go/pkg/transactionSigner/privySigner"
	"github.com/Layr-Labs/solana-signer-go/pkg/transactionSigner/turnkeySigner"
	"github.com/Layr-Labs/solana-signer-go/pkg/transactionSigner/vaultSigner"
	"go.uber.org/zap"
)

// Signer holds exactly one backend, selected by signerType.
type Signer struct {
	signerType config.SignerType

	memory  *inMemorySigner.InMemorySigner
	vault   *vaultSigner.VaultSigner
	privy   *privySigner.PrivySigner
	turnkey *turnkeySigner.TurnkeySigner
}

// Compile-time checks
var (
	_ ITransactionSigner = (*Signer)(nil)
	_ ITransactionSigner = (*inMemorySigner.InMemorySigner)(nil)
	_ ITransactionSigner = (*vaultSigner.VaultSigner)(nil)
	_ ITransactionSigner = (*privySigner.PrivySigner)(nil)
	_ ITransactionSigner = (*turnkeySigner.TurnkeySigner)(nil)
)

// FromMemory builds a Signer over a local keypair given as base58, a byte
// array string or a keypair file path.
func FromMemory(privateKey string, l *zap.Logger) (*Signer, error) {
	backend, err := inMemorySigner.NewInMemorySignerFromPrivateKeyString(privateKey, l)
	if err != nil {
		return nil, err
	}
	return &Signer{signerType: config.SignerTypeMemory, memory: backend}, nil
}

// FromVault builds a Signer over a Vault transit key.
func FromVault(address, token, keyName, publicKey string, l *zap.Logger) (*Signer, error) {
	return fromVaultConfig(&vault.Config{Address: address, Token: token}, keyName, publicKey, l)
}

func fromVaultConfig(cfg *vault.Config, keyName, publicKey string, l *zap.Logger) (*Signer, error) {
	backend, err := vaultSigner.NewVaultSigner(cfg, keyName, publicKey, l)
	if err != nil {
		return nil, err
	}
	return &Signer{signerType: config.SignerTypeVault, vault: backend}, nil
}

// FromPrivy builds the Privy backend and runs Init, so the returned signer
// already knows its public key.
func FromPrivy(ctx context.Context, appId, appSecret, walletId string, l *zap.Logger) (*Signer, error) {
	cfg := privy.DefaultConfig()
	cfg.AppId = appId
	cfg.AppSecret = appSecret
	cfg.WalletId = walletId
	return fromPrivyConfig(ctx, cfg, l)
}

func fromPrivyConfig(ctx context.Context, cfg *privy.Config, l *zap.Logger) (*Signer, error) {
	backend, err := privySigner.NewPrivySigner(cfg, l)
	if err != nil {
		return nil, err
	}
	if err := backend.Init(ctx); err != nil {
		return nil, err
	}
	return &Signer{signerType: config.SignerTypePrivy, privy: backend}, nil
}

// FromTurnkey builds a Signer over a Turnkey private key.
func FromTurnkey(apiPublicKey, apiPrivateKey, organizationId, privateKeyId, publicKey string, l *zap.Logger) (*Signer, error) {
	cfg := turnkey.DefaultConfig()
	cfg.ApiPublicKey = apiPublicKey
	cfg.ApiPrivateKey = apiPrivateKey
	cfg.OrganizationId = organizationId
	return fromTurnkeyConfig(cfg, privateKeyId, publicKey, l)
}

func fromTurnkeyConfig(cfg *turnkey.Config, privateKeyId, publicKey string, l *zap.Logger) (*Signer, error) {
	backend, err := turnkeySigner.NewTurnkeySigner(cfg, privateKeyId, publicKey, l)
	if err != nil {
		return nil, err
	}
	return &Signer{signerType: config.SignerTypeTurnkey, turnkey: backend}, nil
}

// NewSignerFromConfig validates cfg and builds the backend it selects.
func NewSignerFromConfig(ctx context.Context, cfg *config.SignerConfig, l *zap.Logger) (*Signer, error) {
	if cfg == nil {
		return nil, signerErrors.NewConfigError("signer config is required")
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	switch cfg.Type {
	case config.SignerTypeMemory:
		return FromMemory(cfg.Memory.PrivateKey, l)
	case config.SignerTypeVault:
		return fromVaultConfig(vault.NewConfigFromVaultConfig(cfg.Vault, cfg.Http), cfg.Vault.KeyName, cfg.Vault.PublicKey, l)
	case config.SignerTypePrivy:
		return fromPrivyConfig(ctx, privy.NewConfigFromPrivyConfig(cfg.Privy, cfg.Http), l)
	case config.SignerTypeTurnkey:
		return fromTurnkeyConfig(turnkey.NewConfigFromTurnkeyConfig(cfg.Turnkey, cfg.Http), cfg.Turnkey.PrivateKeyId, cfg.Turnkey.PublicKey, l)
	default:
		return nil, signerErrors.NewConfigError("unsupported signer type: %s", cfg.Type)
	}
}

// Type reports which backend the signer wraps.
func (s *Signer) Type() config.SignerType {
	return s.signerType
}

// backend returns the wrapped implementation, or ConfigError for a Signer
// that was not built by one of the constructors.
func (s *Signer) backend() (ITransactionSigner, error) {
	var backend ITransactionSigner
	switch s.signerType {
	case config.SignerTypeMemory:
		if s.memory != nil {
			backend = s.memory
		}
	case config.SignerTypeVault:
		if s.vault != nil {
			backend = s.vault
		}
	case config.SignerTypePrivy:
		if s.privy != nil {
			backend = s.privy
		}
	case config.SignerTypeTurnkey:
		if s.turnkey != nil {
			backend = s.turnkey
		}
	}
	if backend == nil {
		return nil, signerErrors.NewConfigError("signer has no %q backend", s.signerType)
	}
	return backend, nil
}

// PublicKey returns the backend's public key, or the zero key for an unbuilt Signer.
func (s *Signer) PublicKey() sdk.PublicKey {
	backend, err := s.backend()
	if err != nil {
		return sdk.PublicKey{}
	}
	return backend.PublicKey()
}

// SignMessage signs message with the selected backend.
func (s *Signer) SignMessage(ctx context.Context, message []byte) (sdk.Signature, error) {
	backend, err := s.backend()
	if err != nil {
		return sdk.Signature{}, err
	}
	return backend.SignMessage(ctx, message)
}

// SignTransaction signs tx with the selected backend.
func (s *Signer) SignTransaction(ctx context.Context, tx *sdk.Transaction) (*sdk.SignedTransaction, error) {
	backend, err := s.backend()
	if err != nil {
		return nil, err
	}
	return backend.SignTransaction(ctx, tx)
}

// SignPartialTransaction co-signs tx with the selected backend.
func (s *Signer) SignPartialTransaction(ctx context.Context, tx *sdk.Transaction) (*sdk.SignedTransaction, error) {
	backend, err := s.backend()
	if err != nil {
		return nil, err
	}
	return backend.SignPartialTransaction(ctx, tx)
}

// IsAvailable reports false for an unbuilt Signer.
func (s *Signer) IsAvailable(ctx context.Context) bool {
	backend, err := s.backend()
	if err != nil {
		return false
	}
	return backend.IsAvailable(ctx)
}

// String never includes credentials.
func (s *Signer) String() string {
	return fmt.Sprintf("Signer{type: %s, publicKey: %s}", s.signerType, s.PublicKey())
}
