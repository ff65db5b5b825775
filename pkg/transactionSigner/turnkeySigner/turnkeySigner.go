// Package turnkeySigner signs through a Turnkey-held Ed25519 private key.
package turnkeySigner

import (
	"context"
	"encoding/hex"

	"github.com/Layr-Labs/solana-signer-go/pkg/clients/turnkey"
	"github.com/Layr-Labs/solana-signer-go/pkg/logger"
	"github.com/Layr-Labs/solana-signer-go/pkg/sdk"
	"github.com/Layr-Labs/solana-signer-go/pkg/signerErrors"
	"github.com/Layr-Labs/solana-signer-go/pkg/util"
	"go.uber.org/zap"
)

const componentLength = 32

type TurnkeySigner struct {
	client       turnkey.ITurnkeyClient
	privateKeyId string
	publicKey    sdk.PublicKey
	logger       *zap.Logger
}

func NewTurnkeySigner(cfg *turnkey.Config, privateKeyId string, publicKey string, l *zap.Logger) (*TurnkeySigner, error) {
	pubkey, err := sdk.ParsePublicKey(publicKey)
	if err != nil {
		return nil, signerErrors.NewInvalidPublicKey("Invalid public key: %v", err)
	}

	client, err := turnkey.NewClient(cfg, l)
	if err != nil {
		return nil, err
	}
	return NewTurnkeySignerWithClient(client, privateKeyId, pubkey, l), nil
}

func NewTurnkeySignerWithClient(client turnkey.ITurnkeyClient, privateKeyId string, publicKey sdk.PublicKey, l *zap.Logger) *TurnkeySigner {
	return &TurnkeySigner{
		client:       client,
		privateKeyId: privateKeyId,
		publicKey:    publicKey,
		logger:       logger.OrNop(l),
	}
}

// PublicKey returns the configured public key.
func (s *TurnkeySigner) PublicKey() sdk.PublicKey {
	return s.publicKey
}

// SignMessage signs message with the Turnkey private key.
func (s *TurnkeySigner) SignMessage(ctx context.Context, message []byte) (sdk.Signature, error) {
	result, err := s.client.SignRawPayload(ctx, s.privateKeyId, message)
	if err != nil {
		return sdk.Signature{}, err
	}
	return SignatureFromComponents(result.R, result.S)
}

func (s *TurnkeySigner) SignTransaction(ctx context.Context, tx *sdk.Transaction) (*sdk.SignedTransaction, error) {
	return s.signAndSerialize(ctx, tx)
}

func (s *TurnkeySigner) SignPartialTransaction(ctx context.Context, tx *sdk.Transaction) (*sdk.SignedTransaction, error) {
	return s.signAndSerialize(ctx, tx)
}

func (s *TurnkeySigner) IsAvailable(ctx context.Context) bool {
	if err := s.client.WhoAmI(ctx); err != nil {
		s.logger.Debug("Turnkey availability check failed", signerErrors.Field(err))
		return false
	}
	return true
}

func (s *TurnkeySigner) signAndSerialize(ctx context.Context, tx *sdk.Transaction) (*sdk.SignedTransaction, error) {
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

// SignatureFromComponents rebuilds an Ed25519 signature from hex r and s. Each
// component is left-padded to 32 bytes and the result is r||s.
func SignatureFromComponents(rHex, sHex string) (sdk.Signature, error) {
	var sig sdk.Signature

	r, err := hex.DecodeString(rHex)
	if err != nil {
		return sig, signerErrors.NewSerializationError("Failed to decode r: %v", err)
	}
	s, err := hex.DecodeString(sHex)
	if err != nil {
		return sig, signerErrors.NewSerializationError("Failed to decode s: %v", err)
	}
	if len(r) > componentLength || len(s) > componentLength {
		return sig, signerErrors.NewSigningFailed("Invalid signature component length")
	}

	copy(sig[componentLength-len(r):componentLength], r)
	copy(sig[2*componentLength-len(s):], s)
	return sig, nil
}
