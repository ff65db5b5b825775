// Package privySigner signs through a Privy server wallet. The wallet address
// is not known until Init has fetched it.
package privySigner

import (
	"context"
	"encoding/base64"
	"sync"

	"github.com/Layr-Labs/solana-signer-go/pkg/clients/privy"
	"github.com/Layr-Labs/solana-signer-go/pkg/logger"
	"github.com/Layr-Labs/solana-signer-go/pkg/sdk"
	"github.com/Layr-Labs/solana-signer-go/pkg/signerErrors"
	"github.com/Layr-Labs/solana-signer-go/pkg/util"
	"go.uber.org/zap"
)

type PrivySigner struct {
	client privy.IPrivyClient
	logger *zap.Logger

	// initMu serializes Init; mu guards publicKey
	initMu    sync.Mutex
	mu        sync.RWMutex
	publicKey sdk.PublicKey
}

// NewPrivySigner returns an uninitialized signer whose public key is zero.
func NewPrivySigner(cfg *privy.Config, l *zap.Logger) (*PrivySigner, error) {
	client, err := privy.NewClient(cfg, l)
	if err != nil {
		return nil, err
	}
	return NewPrivySignerWithClient(client, l), nil
}

func NewPrivySignerWithClient(client privy.IPrivyClient, l *zap.Logger) *PrivySigner {
	return &PrivySigner{
		client: client,
		logger: logger.OrNop(l),
	}
}

// Init fetches the wallet address. Once it succeeds, later calls do nothing. A
// failed Init leaves the signer uninitialized and can be retried.
func (s *PrivySigner) Init(ctx context.Context) error {
	s.initMu.Lock()
	defer s.initMu.Unlock()

	if s.initialized() {
		return nil
	}

	wallet, err := s.client.GetWallet(ctx)
	if err != nil {
		return err
	}

	pubkey, err := sdk.ParsePublicKey(wallet.Address)
	if err != nil {
		return signerErrors.NewInvalidPublicKey("Invalid public key from Privy API")
	}

	s.mu.Lock()
	s.publicKey = pubkey
	s.mu.Unlock()

	s.logger.Debug("Privy signer initialized", zap.String("publicKey", pubkey.String()))
	return nil
}

// PublicKey returns the wallet address, or the zero key before Init succeeds.
func (s *PrivySigner) PublicKey() sdk.PublicKey {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.publicKey
}

func (s *PrivySigner) initialized() bool {
	return s.PublicKey() != (sdk.PublicKey{})
}

// SignMessage asks Privy to sign message with the wallet key.
func (s *PrivySigner) SignMessage(ctx context.Context, message []byte) (sdk.Signature, error) {
	signed, err := s.signBytes(ctx, message)
	if err != nil {
		return sdk.Signature{}, err
	}
	return signed.Signature, nil
}

// SignTransaction returns the transaction exactly as Privy signed it. The
// extracted signature is also written into tx; if this wallet is not one of
// tx's required signers the call fails with SigningFailed and tx is unchanged.
func (s *PrivySigner) SignTransaction(ctx context.Context, tx *sdk.Transaction) (*sdk.SignedTransaction, error) {
	return s.signAndSerialize(ctx, tx)
}

func (s *PrivySigner) SignPartialTransaction(ctx context.Context, tx *sdk.Transaction) (*sdk.SignedTransaction, error) {
	return s.signAndSerialize(ctx, tx)
}

func (s *PrivySigner) IsAvailable(_ context.Context) bool {
	return s.initialized()
}

func (s *PrivySigner) signAndSerialize(ctx context.Context, tx *sdk.Transaction) (*sdk.SignedTransaction, error) {
	message, err := sdk.MessageBytes(tx)
	if err != nil {
		return nil, signerErrors.NewSerializationError("Failed to encode message: %v", err)
	}

	signed, err := s.signBytes(ctx, message)
	if err != nil {
		return nil, err
	}

	if err := util.AddSignatureToTransaction(tx, s.PublicKey(), signed.Signature); err != nil {
		s.logger.Debug("Could not place Privy signature in local transaction", signerErrors.Field(err))
		return nil, err
	}
	return signed, nil
}

func (s *PrivySigner) signBytes(ctx context.Context, payload []byte) (*sdk.SignedTransaction, error) {
	pubkey := s.PublicKey()
	if pubkey == (sdk.PublicKey{}) {
		return nil, signerErrors.NewNotAvailable("Privy signer is not initialized, call Init first")
	}

	encoded, err := s.client.SignTransaction(ctx, payload)
	if err != nil {
		return nil, err
	}

	raw, err := base64.StdEncoding.DecodeString(encoded)
	if err != nil {
		return nil, signerErrors.NewSerializationError("Failed to decode signed transaction: %v", err)
	}
	signedTx, err := sdk.UnmarshalTransaction(raw)
	if err != nil {
		return nil, signerErrors.NewSerializationError("Failed to deserialize signed transaction: %v", err)
	}

	index := -1
	for i, key := range signedTx.Message.AccountKeys {
		if key.Equals(pubkey) {
			index = i
			break
		}
	}
	if index < 0 {
		return nil, signerErrors.NewSigningFailed("Signer public key not found in transaction")
	}
	if index >= len(signedTx.Signatures) || signedTx.Signatures[index] == (sdk.Signature{}) {
		return nil, signerErrors.NewSigningFailed("No signature found for signer public key")
	}

	return &sdk.SignedTransaction{
		EncodedTransaction: encoded,
		Signature:          signedTx.Signatures[index],
	}, nil
}
