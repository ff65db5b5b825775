package sdk_test

import (
	"testing"

	"github.com/Layr-Labs/solana-signer-go/pkg/sdk"
	"github.com/Layr-Labs/solana-signer-go/pkg/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func Test_PrivateKeyFromBytes(t *testing.T) {
	key := testutil.CreateTestKeypair(t)

	parsed, err := sdk.PrivateKeyFromBytes(key)
	require.NoError(t, err)
	assert.Equal(t, key, parsed)

	t.Run("rejects a mismatched public half", func(t *testing.T) {
		other := testutil.CreateTestKeypair(t)
		mixed := append(append([]byte{}, key[:32]...), other[32:]...)
		_, err := sdk.PrivateKeyFromBytes(mixed)
		assert.Error(t, err)
	})

	t.Run("rejects the wrong length", func(t *testing.T) {
		_, err := sdk.PrivateKeyFromBytes(key[:63])
		assert.Error(t, err)
	})
}

func Test_SignTransaction(t *testing.T) {
	key := testutil.CreateTestKeypair(t)

	t.Run("fills the single signer slot", func(t *testing.T) {
		tx := testutil.CreateTestTransaction(t, key.PublicKey())
		require.NoError(t, sdk.SignTransaction(tx, key))
		require.Len(t, tx.Signatures, 1)

		message, err := sdk.MessageBytes(tx)
		require.NoError(t, err)
		assert.True(t, tx.Signatures[0].Verify(key.PublicKey(), message))
	})

	t.Run("leaves signatures untouched when another signer is required", func(t *testing.T) {
		cosigner := testutil.CreateTestKeypair(t)
		tx := testutil.CreateMultiSignerTransaction(t, key.PublicKey(), cosigner.PublicKey())
		tx.Signatures = []sdk.Signature{{1}, {2}}

		assert.Error(t, sdk.SignTransaction(tx, key))
		assert.Equal(t, []sdk.Signature{{1}, {2}}, tx.Signatures)
	})
}

func Test_PartialSignTransaction(t *testing.T) {
	payer := testutil.CreateTestKeypair(t)
	cosigner := testutil.CreateTestKeypair(t)
	tx := testutil.CreateMultiSignerTransaction(t, payer.PublicKey(), cosigner.PublicKey())

	require.NoError(t, sdk.PartialSignTransaction(tx, cosigner))
	require.Len(t, tx.Signatures, 2)
	assert.Equal(t, sdk.Signature{}, tx.Signatures[0])

	message, err := sdk.MessageBytes(tx)
	require.NoError(t, err)
	assert.True(t, tx.Signatures[1].Verify(cosigner.PublicKey(), message))
}

func Test_ParseSignature(t *testing.T) {
	key := testutil.CreateTestKeypair(t)
	sig, err := key.Sign([]byte("message"))
	require.NoError(t, err)

	parsed, err := sdk.ParseSignature(sig.String())
	require.NoError(t, err)
	assert.Equal(t, sig, parsed)

	_, err = sdk.SignatureFromBytes(sig[:10])
	assert.Error(t, err)
}

func Test_TransactionRoundTrip(t *testing.T) {
	key := testutil.CreateTestKeypair(t)
	tx := testutil.CreateTestTransaction(t, key.PublicKey())
	require.NoError(t, sdk.SignTransaction(tx, key))

	raw, err := sdk.MarshalTransaction(tx)
	require.NoError(t, err)

	decoded, err := sdk.UnmarshalTransaction(raw)
	require.NoError(t, err)
	assert.Equal(t, tx.Signatures, decoded.Signatures)

	_, err = sdk.UnmarshalTransaction(nil)
	assert.Error(t, err)
}

func Test_SigningRejectsShortAccountKeys(t *testing.T) {
	key := testutil.CreateTestKeypair(t)
	tx := testutil.CreateTestTransaction(t, key.PublicKey())
	tx.Message.Header.NumRequiredSignatures = uint8(len(tx.Message.AccountKeys) + 1)

	assert.Error(t, sdk.SignTransaction(tx, key))
	assert.Empty(t, tx.Signatures)
	assert.Error(t, sdk.PartialSignTransaction(tx, key))
	assert.Empty(t, tx.Signatures)
}
