package util

import (
	"testing"

	"github.com/Layr-Labs/solana-signer-go/pkg/sdk"
	"github.com/Layr-Labs/solana-signer-go/pkg/testutil"
	"github.com/stretchr/testify/require"
)

func FuzzAddSignatureToTransaction(f *testing.F) {
	f.Add(make([]byte, 32), make([]byte, 64))
	f.Add([]byte("0123456789abcdef0123456789abcdef"), []byte("sig"))

	f.Fuzz(func(t *testing.T, keyBytes []byte, sigBytes []byte) {
		payer := testutil.CreateTestKeypair(t)
		cosigner := testutil.CreateTestKeypair(t)
		tx := testutil.CreateMultiSignerTransaction(t, payer.PublicKey(), cosigner.PublicKey())

		var sig sdk.Signature
		copy(sig[:], sigBytes)
		require.NoError(t, AddSignatureToTransaction(tx, payer.PublicKey(), sig))
		before := append([]sdk.Signature(nil), tx.Signatures...)

		var candidate sdk.PublicKey
		copy(candidate[:], keyBytes)

		err := AddSignatureToTransaction(tx, candidate, sdk.Signature{0xff})
		if candidate.Equals(payer.PublicKey()) || candidate.Equals(cosigner.PublicKey()) {
			require.NoError(t, err)
			return
		}
		require.Error(t, err)
		require.Equal(t, before, tx.Signatures)
	})
}
