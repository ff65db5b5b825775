// Package sdk is the boundary between this module and the Solana SDK.
//
// Every other package refers to transactions, public keys and signatures
// only through the aliases and helpers exported here, so the SDK family
// that is linked in can be swapped at build time without touching the
// signers themselves.
package sdk

import (
	"crypto/ed25519"
	"crypto/subtle"
	"fmt"

	bin "github.com/gagliardetto/binary"
	"github.com/gagliardetto/solana-go"
)

const (
	PublicKeyLength  = ed25519.PublicKeySize
	PrivateKeyLength = ed25519.PrivateKeySize
	SignatureLength  = ed25519.SignatureSize
)

type (
	PublicKey   = solana.PublicKey
	PrivateKey  = solana.PrivateKey
	Signature   = solana.Signature
	Transaction = solana.Transaction
	Message     = solana.Message
	Hash        = solana.Hash
)

// SignedTransaction is the result of signing a transaction: the base64 wire
// encoding of the signed transaction and the bare signature that was added.
type SignedTransaction struct {
	EncodedTransaction string
	Signature          Signature
}

// ParsePublicKey decodes a base58 public key.
func ParsePublicKey(s string) (PublicKey, error) {
	return solana.PublicKeyFromBase58(s)
}

// PublicKeyFromBytes returns the public key held in b, which must be exactly 32 bytes.
func PublicKeyFromBytes(b []byte) (PublicKey, error) {
	if len(b) != PublicKeyLength {
		return PublicKey{}, fmt.Errorf("invalid public key length: expected %d bytes, got %d", PublicKeyLength, len(b))
	}
	return solana.PublicKeyFromBytes(b), nil
}

// ParseSignature decodes a base58 signature.
func ParseSignature(s string) (Signature, error) {
	return solana.SignatureFromBase58(s)
}

// SignatureFromBytes returns the signature held in b, which must be exactly 64 bytes.
func SignatureFromBytes(b []byte) (Signature, error) {
	var sig Signature
	if len(b) != SignatureLength {
		return sig, fmt.Errorf("invalid signature length: expected %d bytes, got %d", SignatureLength, len(b))
	}
	copy(sig[:], b)
	return sig, nil
}

// PrivateKeyFromBytes validates a 64 byte secret||public keypair. The public
// half must be the one derived from the secret half.
func PrivateKeyFromBytes(b []byte) (PrivateKey, error) {
	if len(b) != PrivateKeyLength {
		return nil, fmt.Errorf("invalid private key length: expected %d bytes, got %d", PrivateKeyLength, len(b))
	}
	derived := ed25519.NewKeyFromSeed(b[:ed25519.SeedSize])
	if subtle.ConstantTimeCompare(derived[ed25519.SeedSize:], b[ed25519.SeedSize:]) != 1 {
		return nil, fmt.Errorf("public key half does not match the secret key")
	}
	return PrivateKey(derived), nil
}

// NewRandomPrivateKey generates a fresh Ed25519 keypair.
func NewRandomPrivateKey() (PrivateKey, error) {
	return solana.NewRandomPrivateKey()
}

// MessageBytes returns the signable message bytes of tx.
func MessageBytes(tx *Transaction) ([]byte, error) {
	if tx == nil {
		return nil, fmt.Errorf("transaction is nil")
	}
	return tx.Message.MarshalBinary()
}

// NumRequiredSignatures returns the length of the required-signer prefix.
func NumRequiredSignatures(tx *Transaction) int {
	return int(tx.Message.Header.NumRequiredSignatures)
}

// MarshalTransaction encodes tx in the binary wire format.
func MarshalTransaction(tx *Transaction) ([]byte, error) {
	if tx == nil {
		return nil, fmt.Errorf("transaction is nil")
	}
	return tx.MarshalBinary()
}

// UnmarshalTransaction decodes a transaction from the binary wire format.
func UnmarshalTransaction(b []byte) (*Transaction, error) {
	if len(b) == 0 {
		return nil, fmt.Errorf("transaction bytes are empty")
	}
	return solana.TransactionFromDecoder(bin.NewBinDecoder(b))
}

// SignTransaction runs the SDK full-signing pass: every required signer of tx
// must be key, and all of their slots are filled in one go.
func SignTransaction(tx *Transaction, key PrivateKey) error {
	if err := checkSignerPrefix(tx); err != nil {
		return err
	}
	previous := tx.Signatures
	publicKey := key.PublicKey()

	tx.Signatures = nil
	_, err := tx.Sign(func(signer PublicKey) *PrivateKey {
		if signer.Equals(publicKey) {
			return &key
		}
		return nil
	})
	if err != nil {
		tx.Signatures = previous
		return err
	}
	return nil
}

// PartialSignTransaction runs the SDK partial-signing pass: only the slot that
// belongs to key is written, the other signer slots are left as they are.
func PartialSignTransaction(tx *Transaction, key PrivateKey) error {
	if err := checkSignerPrefix(tx); err != nil {
		return err
	}
	publicKey := key.PublicKey()
	_, err := tx.PartialSign(func(signer PublicKey) *PrivateKey {
		if signer.Equals(publicKey) {
			return &key
		}
		return nil
	})
	return err
}

// checkSignerPrefix rejects a header that claims more required signers than
// there are account keys, which the SDK signing passes would slice past.
func checkSignerPrefix(tx *Transaction) error {
	if tx == nil {
		return fmt.Errorf("transaction is nil")
	}
	if NumRequiredSignatures(tx) > len(tx.Message.AccountKeys) {
		return fmt.Errorf("not enough account keys: %d required signers, %d account keys",
			NumRequiredSignatures(tx), len(tx.Message.AccountKeys))
	}
	return nil
}
