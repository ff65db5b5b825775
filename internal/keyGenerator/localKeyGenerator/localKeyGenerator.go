package localKeyGenerator

import (
	"context"
	"fmt"
	"sync"

	"github.com/Layr-Labs/solana-signer-go/internal/keyGenerator"
	"github.com/Layr-Labs/solana-signer-go/pkg/keystore"
	"github.com/Layr-Labs/solana-signer-go/pkg/logger"
	"github.com/Layr-Labs/solana-signer-go/pkg/sdk"
	"github.com/Layr-Labs/solana-signer-go/pkg/signerErrors"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

// keyEntry stores the keypair and the name it was generated under
type keyEntry struct {
	privateKey sdk.PrivateKey
	keyName    string
}

type LocalKeyGenerator struct {
	logger   *zap.Logger
	keyStore map[string]*keyEntry // keyId -> keyEntry
	mu       sync.RWMutex
}

// Compile-time check to ensure LocalKeyGenerator implements IKeyGenerator
var _ keyGenerator.IKeyGenerator = (*LocalKeyGenerator)(nil)

func NewLocalKeyGenerator(l *zap.Logger) *LocalKeyGenerator {
	return &LocalKeyGenerator{
		logger:   logger.OrNop(l),
		keyStore: make(map[string]*keyEntry),
	}
}

func (l *LocalKeyGenerator) GenerateKey(ctx context.Context, keyName string) (*keyGenerator.GeneratedKey, error) {
	privateKey, err := sdk.NewRandomPrivateKey()
	if err != nil {
		return nil, signerErrors.NewOther("failed to generate Ed25519 key: %v", err)
	}

	keyId := fmt.Sprintf("local-key-%s", uuid.New().String())

	l.mu.Lock()
	l.keyStore[keyId] = &keyEntry{
		privateKey: privateKey,
		keyName:    keyName,
	}
	l.mu.Unlock()

	l.logger.Info("Generated local Ed25519 key",
		zap.String("keyName", keyName),
		zap.String("keyId", keyId),
		zap.String("publicKey", privateKey.PublicKey().String()),
	)

	return &keyGenerator.GeneratedKey{
		PublicKey: privateKey.PublicKey(),
		KeyId:     keyId,
	}, nil
}

func (l *LocalKeyGenerator) GetKeyById(ctx context.Context, keyId string) (*keyGenerator.GeneratedKey, error) {
	entry, err := l.entry(keyId)
	if err != nil {
		return nil, err
	}
	return &keyGenerator.GeneratedKey{
		PublicKey: entry.privateKey.PublicKey(),
		KeyId:     keyId,
	}, nil
}

func (l *LocalKeyGenerator) SignMessage(ctx context.Context, keyId string, message []byte) (sdk.Signature, error) {
	entry, err := l.entry(keyId)
	if err != nil {
		return sdk.Signature{}, err
	}
	sig, err := entry.privateKey.Sign(message)
	if err != nil {
		return sdk.Signature{}, signerErrors.NewSigningFailed("%v", err)
	}
	return sig, nil
}

// ExportKeypairFile writes the keypair for keyId to path in the JSON keypair
// format read by the memory signer.
func (l *LocalKeyGenerator) ExportKeypairFile(keyId string, path string) error {
	entry, err := l.entry(keyId)
	if err != nil {
		return err
	}
	if err := keystore.WriteKeypairFile(path, entry.privateKey); err != nil {
		return err
	}
	l.logger.Info("Exported keypair", zap.String("keyId", keyId), zap.String("path", path))
	return nil
}

func (l *LocalKeyGenerator) entry(keyId string) (*keyEntry, error) {
	l.mu.RLock()
	entry, exists := l.keyStore[keyId]
	l.mu.RUnlock()

	if !exists {
		return nil, signerErrors.NewConfigError("key with ID %s not found", keyId)
	}
	return entry, nil
}
