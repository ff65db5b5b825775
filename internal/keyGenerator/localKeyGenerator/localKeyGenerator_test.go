package localKeyGenerator

import (
	"context"
	"path/filepath"
	"strings"
	"testing"

	"github.com/Layr-Labs/solana-signer-go/pkg/keystore"
	"github.com/Layr-Labs/solana-signer-go/pkg/signerErrors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zaptest"
)

func Test_LocalKeyGenerator(t *testing.T) {
	generator := NewLocalKeyGenerator(zaptest.NewLogger(t))
	ctx := context.Background()

	t.Run("Should generate a key", func(t *testing.T) {
		result, err := generator.GenerateKey(ctx, "test-key-1")
		require.NoError(t, err)
		require.NotNil(t, result)

		assert.True(t, strings.HasPrefix(result.KeyId, "local-key-"))
		assert.Equal(t, result.PublicKey.String(), result.GetPublicKeyBase58())
	})

	t.Run("Should generate unique keys", func(t *testing.T) {
		keyIds := make(map[string]bool)
		publicKeys := make(map[string]bool)

		for i := 0; i < 5; i++ {
			result, err := generator.GenerateKey(ctx, "test-key")
			require.NoError(t, err)
			keyIds[result.KeyId] = true
			publicKeys[result.GetPublicKeyBase58()] = true
		}

		assert.Len(t, keyIds, 5)
		assert.Len(t, publicKeys, 5)
	})

	t.Run("Should look up a key by id", func(t *testing.T) {
		generated, err := generator.GenerateKey(ctx, "lookup")
		require.NoError(t, err)

		found, err := generator.GetKeyById(ctx, generated.KeyId)
		require.NoError(t, err)
		assert.Equal(t, generated.PublicKey, found.PublicKey)

		_, err = generator.GetKeyById(ctx, "local-key-missing")
		assert.ErrorIs(t, err, signerErrors.ErrConfigError)
	})

	t.Run("Should sign with the generated key", func(t *testing.T) {
		generated, err := generator.GenerateKey(ctx, "signing")
		require.NoError(t, err)

		message := []byte("hello solana")
		sig, err := generator.SignMessage(ctx, generated.KeyId, message)
		require.NoError(t, err)
		assert.True(t, sig.Verify(generated.PublicKey, message))

		_, err = generator.SignMessage(ctx, "local-key-missing", message)
		assert.ErrorIs(t, err, signerErrors.ErrConfigError)
	})

	t.Run("Should export a keypair file the memory signer can load", func(t *testing.T) {
		generated, err := generator.GenerateKey(ctx, "export")
		require.NoError(t, err)

		path := filepath.Join(t.TempDir(), "keypair.json")
		require.NoError(t, generator.ExportKeypairFile(generated.KeyId, path))

		loaded, err := keystore.LoadPrivateKey(path)
		require.NoError(t, err)
		assert.Equal(t, generated.PublicKey, loaded.PublicKey())
	})

	t.Run("Should be safe for concurrent use", func(t *testing.T) {
		done := make(chan string, 10)
		for i := 0; i < 10; i++ {
			go func() {
				result, err := generator.GenerateKey(ctx, "concurrent")
				if assert.NoError(t, err) {
					done <- result.KeyId
					return
				}
				done <- ""
			}()
		}
		for i := 0; i < 10; i++ {
			keyId := <-done
			if keyId == "" {
				continue
			}
			_, err := generator.GetKeyById(ctx, keyId)
			assert.NoError(t, err)
		}
	})
}
