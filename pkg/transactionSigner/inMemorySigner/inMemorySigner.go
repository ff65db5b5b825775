// Package inMemorySigner signs with an Ed25519 keypair held in process memory.
package inMemorySigner

import (
	"context"

	"github.com/Layr-Labs/solana-signer-go/pkg/keystore"
	"github.com/Layr-Labs/solana-signer-go/pkg/logger"
	"github.com/Layr-Labs/solana-signer-go/pkg/sdk"
	"github.com/Layr-Labs/solana-signer-go/pkg/signerErrors"
	"github.com/Layr-Labs/solana-signer-go/pkg/util"
	"go.uber.org/zap"
)

type InMemorySigner struct {
	privateKey sdk.PrivateKey
	publicKey  sdk.PublicKey
	logger     *zap.Logger
}

// NewInMemorySigner creates a signer over an already parsed keypair.
func NewInMemorySigner(privateKey sdk.PrivateKey, l *zap.Logger) (*InMemorySigner, error) {
	if len(privateKey) != sdk.PrivateKeyLength {
		return nil, signerErrors.NewInvalidPrivateKey(
			"Invalid private key length: expected %d bytes, got %d", sdk.PrivateKeyLength, len(privateKey))
	}
	return &InMemorySigner{
		privateKey: privateKey,
		publicKey:  privateKey.PublicKey(),
		logger:     logger.OrNop(l),
	}, nil
}

// NewInMemorySignerFromBytes takes a 64 byte secret||public keypair.
func NewInMemorySignerFromBytes(raw []byte, l *zap.Logger) (*InMemorySigner, error) {
	key, err := sdk.PrivateKeyFromBytes(raw)
	if err != nil {
		return nil, signerErrors.NewInvalidPrivateKey("Invalid keypair bytes: %v", err)
	}
	return NewInMemorySigner(key, l)
}

// NewInMemorySignerFromPrivateKeyString accepts base58, a "[..]" byte array or
// the path of a JSON keypair file.
func NewInMemorySignerFromPrivateKeyString(privateKey string, l *zap.Logger) (*InMemorySigner, error) {
	key, err := keystore.LoadPrivateKey(privateKey)
	if err != nil {
		return nil, err
	}
	return NewInMemorySigner(key, l)
}

// PublicKey returns the keypair's public half.
func (s *InMemorySigner) PublicKey() sdk.PublicKey {
	return s.publicKey
}

// SignMessage signs message locally with Ed25519.
func (s *InMemorySigner) SignMessage(_ context.Context, message []byte) (sdk.Signature, error) {
	sig, err := s.privateKey.Sign(message)
	if err != nil {
		return sdk.Signature{}, signerErrors.NewSigningFailed("%v", err)
	}
	return sig, nil
}

// SignTransaction fills every required signature slot, so this key must be the
// only required signer of tx.
func (s *InMemorySigner) SignTransaction(ctx context.Context, tx *sdk.Transaction) (*sdk.SignedTransaction, error) {
	if _, err := util.GetSigningKeypairPosition(tx, s.publicKey); err != nil {
		return nil, err
	}
	message, err := sdk.MessageBytes(tx)
	if err != nil {
		return nil, signerErrors.NewSerializationError("Failed to encode message: %v", err)
	}
	sig, err := s.SignMessage(ctx, message)
	if err != nil {
		return nil, err
	}

	if err := sdk.SignTransaction(tx, s.privateKey); err != nil {
		s.logger.Debug("Full signing rejected", zap.String("publicKey", s.publicKey.String()))
		return nil, signerErrors.NewSigningFailed("%v", err)
	}
	return s.serialize(tx, sig)
}

// SignPartialTransaction fills only this key's slot and leaves other signers'
// slots as they are.
func (s *InMemorySigner) SignPartialTransaction(ctx context.Context, tx *sdk.Transaction) (*sdk.SignedTransaction, error) {
	if _, err := util.GetSigningKeypairPosition(tx, s.publicKey); err != nil {
		return nil, err
	}
	message, err := sdk.MessageBytes(tx)
	if err != nil {
		return nil, signerErrors.NewSerializationError("Failed to encode message: %v", err)
	}
	sig, err := s.SignMessage(ctx, message)
	if err != nil {
		return nil, err
	}

	if err := sdk.PartialSignTransaction(tx, s.privateKey); err != nil {
		return nil, signerErrors.NewSigningFailed("%v", err)
	}
	return s.serialize(tx, sig)
}

func (s *InMemorySigner) IsAvailable(_ context.Context) bool {
	return true
}

func (s *InMemorySigner) serialize(tx *sdk.Transaction, sig sdk.Signature) (*sdk.SignedTransaction, error) {
	encoded, err := util.SerializeTransaction(tx)
	if err != nil {
		return nil, err
	}
	return &sdk.SignedTransaction{EncodedTransaction: encoded, Signature: sig}, nil
}
