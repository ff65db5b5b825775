package util

import (
	"encoding/base64"

	"github.com/Layr-Labs/solana-signer-go/pkg/sdk"
	"github.com/Layr-Labs/solana-signer-go/pkg/signerErrors"
)

// GetSigningKeypairPosition returns the index of pubkey within the
// required-signer prefix of tx's account keys.
func GetSigningKeypairPosition(tx *sdk.Transaction, pubkey sdk.PublicKey) (int, error) {
	if tx == nil {
		return 0, signerErrors.NewSigningFailed("transaction is nil")
	}
	numRequired := sdk.NumRequiredSignatures(tx)
	accountKeys := tx.Message.AccountKeys

	if len(accountKeys) < numRequired {
		return 0, signerErrors.NewSigningFailed("Invalid account index: not enough account keys")
	}

	for i, key := range accountKeys[:numRequired] {
		if key.Equals(pubkey) {
			return i, nil
		}
	}
	return 0, signerErrors.NewSigningFailed("Pubkey %s not found in transaction signers", pubkey)
}

// AddSignatureToTransaction writes signature into the slot that belongs to
// pubkey. The signature list is padded with zero signatures up to the number
// of required signers; slots of other signers are never touched.
func AddSignatureToTransaction(tx *sdk.Transaction, pubkey sdk.PublicKey, signature sdk.Signature) error {
	position, err := GetSigningKeypairPosition(tx, pubkey)
	if err != nil {
		return err
	}

	numRequired := sdk.NumRequiredSignatures(tx)
	if len(tx.Signatures) < numRequired {
		padded := make([]sdk.Signature, numRequired)
		copy(padded, tx.Signatures)
		tx.Signatures = padded
	}

	tx.Signatures[position] = signature
	return nil
}

// SerializeTransaction encodes tx in the binary wire format and base64s it.
func SerializeTransaction(tx *sdk.Transaction) (string, error) {
	raw, err := sdk.MarshalTransaction(tx)
	if err != nil {
		return "", signerErrors.NewSerializationError("Failed to serialize transaction: %v", err)
	}
	return base64.StdEncoding.EncodeToString(raw), nil
}

// DeserializeTransaction is the inverse of SerializeTransaction.
func DeserializeTransaction(encoded string) (*sdk.Transaction, error) {
	raw, err := base64.StdEncoding.DecodeString(encoded)
	if err != nil {
		return nil, signerErrors.NewSerializationError("Failed to decode transaction: %v", err)
	}
	tx, err := sdk.UnmarshalTransaction(raw)
	if err != nil {
		return nil, signerErrors.NewSerializationError("Failed to deserialize transaction: %v", err)
	}
	return tx, nil
}

// SignAndSerialize places signature for pubkey into tx and returns the
// encoded result. Used by every backend that only gets a bare signature back.
func SignAndSerialize(tx *sdk.Transaction, pubkey sdk.PublicKey, signature sdk.Signature) (*sdk.SignedTransaction, error) {
	if err := AddSignatureToTransaction(tx, pubkey, signature); err != nil {
		return nil, err
	}
	encoded, err := SerializeTransaction(tx)
	if err != nil {
		return nil, err
	}
	return &sdk.SignedTransaction{
		EncodedTransaction: encoded,
		Signature:          signature,
	}, nil
}
