package testutil

import (
	"testing"

	"github.com/Layr-Labs/solana-signer-go/pkg/sdk"
	"github.com/gagliardetto/solana-go"
	"github.com/gagliardetto/solana-go/programs/system"
	"github.com/stretchr/testify/require"
)

// CreateTestKeypair generates a fresh keypair for a test.
func CreateTestKeypair(t *testing.T) sdk.PrivateKey {
	t.Helper()
	key, err := sdk.NewRandomPrivateKey()
	require.NoError(t, err)
	return key
}

// CreateTestTransaction builds an unsigned transfer whose only required signer is payer.
func CreateTestTransaction(t *testing.T, payer sdk.PublicKey) *sdk.Transaction {
	t.Helper()
	recipient := CreateTestKeypair(t).PublicKey()

	tx, err := solana.NewTransaction(
		[]solana.Instruction{
			system.NewTransferInstruction(1_000_000, payer, recipient).Build(),
		},
		sdk.Hash{},
		solana.TransactionPayer(payer),
	)
	require.NoError(t, err)
	return tx
}

// CreateMultiSignerTransaction builds an unsigned transaction with two required
// signers: payer at index 0 and cosigner at index 1.
func CreateMultiSignerTransaction(t *testing.T, payer, cosigner sdk.PublicKey) *sdk.Transaction {
	t.Helper()
	recipient := CreateTestKeypair(t).PublicKey()

	tx, err := solana.NewTransaction(
		[]solana.Instruction{
			system.NewTransferInstruction(1_000_000, payer, recipient).Build(),
			system.NewTransferInstruction(2_000_000, cosigner, recipient).Build(),
		},
		sdk.Hash{},
		solana.TransactionPayer(payer),
	)
	require.NoError(t, err)
	require.Equal(t, 2, sdk.NumRequiredSignatures(tx))
	return tx
}

// EncodeWithSignatures writes tx in the wire format with an arbitrary signature
// list, which lets tests produce transactions the SDK encoder would refuse
// (for example fewer signatures than required signers).
func EncodeWithSignatures(t *testing.T, tx *sdk.Transaction, signatures []sdk.Signature) []byte {
	t.Helper()
	require.Less(t, len(signatures), 0x80, "compact-u16 short form only")

	message, err := sdk.MessageBytes(tx)
	require.NoError(t, err)

	out := []byte{byte(len(signatures))}
	for _, sig := range signatures {
		out = append(out, sig[:]...)
	}
	return append(out, message...)
}
