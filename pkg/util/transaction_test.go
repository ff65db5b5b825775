package util

import (
	"testing"

	"github.com/Layr-Labs/solana-signer-go/pkg/sdk"
	"github.com/Layr-Labs/solana-signer-go/pkg/signerErrors"
	"github.com/Layr-Labs/solana-signer-go/pkg/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func signMessage(t *testing.T, key sdk.PrivateKey, tx *sdk.Transaction) sdk.Signature {
	t.Helper()
	message, err := sdk.MessageBytes(tx)
	require.NoError(t, err)
	sig, err := key.Sign(message)
	require.NoError(t, err)
	return sig
}

func Test_GetSigningKeypairPosition(t *testing.T) {
	payer := testutil.CreateTestKeypair(t)
	cosigner := testutil.CreateTestKeypair(t)
	tx := testutil.CreateMultiSignerTransaction(t, payer.PublicKey(), cosigner.PublicKey())

	t.Run("Should find the fee payer at index 0", func(t *testing.T) {
		pos, err := GetSigningKeypairPosition(tx, payer.PublicKey())
		require.NoError(t, err)
		assert.Equal(t, 0, pos)
	})

	t.Run("Should find the cosigner at index 1", func(t *testing.T) {
		pos, err := GetSigningKeypairPosition(tx, cosigner.PublicKey())
		require.NoError(t, err)
		assert.Equal(t, 1, pos)
	})

	t.Run("Should not match non-signer account keys", func(t *testing.T) {
		// index 2 is the recipient, a writable non-signer
		require.Greater(t, len(tx.Message.AccountKeys), 2)
		_, err := GetSigningKeypairPosition(tx, tx.Message.AccountKeys[2])
		require.Error(t, err)
		assert.ErrorIs(t, err, signerErrors.ErrSigningFailed)
	})

	t.Run("Should fail when header claims more signers than account keys", func(t *testing.T) {
		broken := testutil.CreateTestTransaction(t, payer.PublicKey())
		broken.Message.Header.NumRequiredSignatures = uint8(len(broken.Message.AccountKeys) + 1)
		_, err := GetSigningKeypairPosition(broken, payer.PublicKey())
		assert.ErrorIs(t, err, signerErrors.ErrSigningFailed)
		assert.Contains(t, signerErrors.UnsafeMessage(err), "not enough account keys")
	})
}

func Test_AddSignatureToTransaction(t *testing.T) {
	payer := testutil.CreateTestKeypair(t)
	cosigner := testutil.CreateTestKeypair(t)

	t.Run("Should pad the signature list and write at the signer index", func(t *testing.T) {
		tx := testutil.CreateMultiSignerTransaction(t, payer.PublicKey(), cosigner.PublicKey())
		require.Empty(t, tx.Signatures)

		sig := signMessage(t, cosigner, tx)
		require.NoError(t, AddSignatureToTransaction(tx, cosigner.PublicKey(), sig))

		require.Len(t, tx.Signatures, 2)
		assert.Equal(t, sdk.Signature{}, tx.Signatures[0])
		assert.Equal(t, sig, tx.Signatures[1])
	})

	t.Run("Should keep signatures of other signers", func(t *testing.T) {
		tx := testutil.CreateMultiSignerTransaction(t, payer.PublicKey(), cosigner.PublicKey())

		payerSig := signMessage(t, payer, tx)
		cosignerSig := signMessage(t, cosigner, tx)
		require.NoError(t, AddSignatureToTransaction(tx, payer.PublicKey(), payerSig))
		require.NoError(t, AddSignatureToTransaction(tx, cosigner.PublicKey(), cosignerSig))

		assert.Equal(t, []sdk.Signature{payerSig, cosignerSig}, tx.Signatures)
	})

	t.Run("Should overwrite a placeholder", func(t *testing.T) {
		tx := testutil.CreateTestTransaction(t, payer.PublicKey())
		tx.Signatures = []sdk.Signature{{}}

		sig := signMessage(t, payer, tx)
		require.NoError(t, AddSignatureToTransaction(tx, payer.PublicKey(), sig))
		assert.Equal(t, []sdk.Signature{sig}, tx.Signatures)
	})

	t.Run("Should fail for a key outside the signers and leave slots unchanged", func(t *testing.T) {
		tx := testutil.CreateMultiSignerTransaction(t, payer.PublicKey(), cosigner.PublicKey())
		payerSig := signMessage(t, payer, tx)
		require.NoError(t, AddSignatureToTransaction(tx, payer.PublicKey(), payerSig))
		before := append([]sdk.Signature(nil), tx.Signatures...)

		stranger := testutil.CreateTestKeypair(t)
		err := AddSignatureToTransaction(tx, stranger.PublicKey(), sdk.Signature{1, 2, 3})
		require.Error(t, err)
		assert.ErrorIs(t, err, signerErrors.ErrSigningFailed)
		assert.Contains(t, signerErrors.UnsafeMessage(err), "not found in transaction signers")
		assert.Equal(t, before, tx.Signatures)
	})
}

func Test_SerializeTransaction(t *testing.T) {
	payer := testutil.CreateTestKeypair(t)
	cosigner := testutil.CreateTestKeypair(t)

	t.Run("Should round trip a fully signed transaction", func(t *testing.T) {
		tx := testutil.CreateMultiSignerTransaction(t, payer.PublicKey(), cosigner.PublicKey())
		payerSig := signMessage(t, payer, tx)
		cosignerSig := signMessage(t, cosigner, tx)

		signed, err := SignAndSerialize(tx, payer.PublicKey(), payerSig)
		require.NoError(t, err)
		assert.Equal(t, payerSig, signed.Signature)

		signed, err = SignAndSerialize(tx, cosigner.PublicKey(), cosignerSig)
		require.NoError(t, err)

		decoded, err := DeserializeTransaction(signed.EncodedTransaction)
		require.NoError(t, err)
		assert.Equal(t, []sdk.Signature{payerSig, cosignerSig}, decoded.Signatures)
		assert.Equal(t, tx.Message.AccountKeys, decoded.Message.AccountKeys)

		message, err := sdk.MessageBytes(decoded)
		require.NoError(t, err)
		assert.True(t, decoded.Signatures[1].Verify(cosigner.PublicKey(), message))
	})

	t.Run("Should keep a partially signed transaction encodable", func(t *testing.T) {
		tx := testutil.CreateMultiSignerTransaction(t, payer.PublicKey(), cosigner.PublicKey())
		sig := signMessage(t, cosigner, tx)

		signed, err := SignAndSerialize(tx, cosigner.PublicKey(), sig)
		require.NoError(t, err)

		decoded, err := DeserializeTransaction(signed.EncodedTransaction)
		require.NoError(t, err)
		require.Len(t, decoded.Signatures, 2)
		assert.Equal(t, sdk.Signature{}, decoded.Signatures[0])
		assert.Equal(t, sig, decoded.Signatures[1])
	})

	t.Run("Should report serialization errors distinctly", func(t *testing.T) {
		_, err := SerializeTransaction(nil)
		assert.ErrorIs(t, err, signerErrors.ErrSerializationError)

		_, err = DeserializeTransaction("not base64!!!")
		assert.ErrorIs(t, err, signerErrors.ErrSerializationError)
	})
}
