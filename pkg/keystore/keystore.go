// Package keystore loads Ed25519 keypairs from the string formats accepted by
// the memory signer: base58, a "[1, 2, ...]" byte array, or the path of a
// JSON keypair file as written by solana-keygen.
package keystore

import (
	"encoding/json"
	"io/fs"
	"os"
	"strings"
	"syscall"

	"github.com/Layr-Labs/solana-signer-go/pkg/sdk"
	"github.com/Layr-Labs/solana-signer-go/pkg/signerErrors"
	"github.com/mr-tron/base58"
	"github.com/pkg/errors"
)

// LoadPrivateKey detects the format of privateKey and parses it.
func LoadPrivateKey(privateKey string) (sdk.PrivateKey, error) {
	if content, ok, err := readKeyFile(privateKey); err != nil {
		return nil, err
	} else if ok {
		return FromJsonKeypair(content)
	}

	trimmed := strings.TrimSpace(privateKey)
	if strings.HasPrefix(trimmed, "[") && strings.HasSuffix(trimmed, "]") {
		return FromU8ArrayString(trimmed)
	}

	return FromBase58(trimmed)
}

// FromBase58 parses a base58 encoded 64 byte keypair.
func FromBase58(privateKey string) (sdk.PrivateKey, error) {
	decoded, err := base58.Decode(privateKey)
	if err != nil {
		return nil, signerErrors.NewInvalidPrivateKey("Invalid base58 string: %v", err)
	}
	return fromBytes(decoded)
}

// FromU8ArrayString parses a keypair written as a JSON array of bytes.
func FromU8ArrayString(arrayStr string) (sdk.PrivateKey, error) {
	trimmed := strings.TrimSpace(arrayStr)
	if !strings.HasPrefix(trimmed, "[") || !strings.HasSuffix(trimmed, "]") {
		return nil, signerErrors.NewInvalidPrivateKey("U8Array string must start with '[' and end with ']'")
	}

	var values []int
	if err := json.Unmarshal([]byte(trimmed), &values); err != nil {
		return nil, signerErrors.NewInvalidPrivateKey("Failed to parse U8Array: %v", err)
	}

	raw := make([]byte, len(values))
	for i, v := range values {
		if v < 0 || v > 255 {
			return nil, signerErrors.NewInvalidPrivateKey("Invalid byte value at index %d: %d", i, v)
		}
		raw[i] = byte(v)
	}
	return fromBytes(raw)
}

// FromJsonKeypair parses the content of a solana-keygen JSON file.
func FromJsonKeypair(content string) (sdk.PrivateKey, error) {
	return FromU8ArrayString(content)
}

func fromBytes(raw []byte) (sdk.PrivateKey, error) {
	if len(raw) != sdk.PrivateKeyLength {
		return nil, signerErrors.NewInvalidPrivateKey(
			"Invalid private key length: expected %d bytes, got %d", sdk.PrivateKeyLength, len(raw))
	}
	key, err := sdk.PrivateKeyFromBytes(raw)
	if err != nil {
		return nil, signerErrors.NewInvalidPrivateKey("Invalid private key bytes: %v", err)
	}
	return key, nil
}

// readKeyFile reports whether path names a regular file and, if so, its
// content. Strings that cannot be a path are not an error; a path that exists
// but cannot be inspected or read is IoError.
func readKeyFile(path string) (string, bool, error) {
	if path == "" || strings.ContainsAny(path, "\n[") {
		return "", false, nil
	}
	info, err := os.Stat(path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) || errors.Is(err, syscall.ENOTDIR) || errors.Is(err, syscall.ENAMETOOLONG) {
			return "", false, nil
		}
		return "", false, signerErrors.NewIoError("%v", errors.Wrapf(err, "failed to inspect keypair file %s", path))
	}
	if !info.Mode().IsRegular() {
		return "", false, nil
	}
	content, err := os.ReadFile(path)
	if err != nil {
		return "", false, signerErrors.NewIoError("%v", errors.Wrapf(err, "failed to read keypair file %s", path))
	}
	return string(content), true, nil
}

// ToJsonKeypair renders key in the solana-keygen JSON keypair format.
func ToJsonKeypair(key sdk.PrivateKey) ([]byte, error) {
	if len(key) != sdk.PrivateKeyLength {
		return nil, signerErrors.NewInvalidPrivateKey(
			"Invalid private key length: expected %d bytes, got %d", sdk.PrivateKeyLength, len(key))
	}
	values := make([]int, len(key))
	for i, b := range key {
		values[i] = int(b)
	}
	return json.Marshal(values)
}

// WriteKeypairFile writes key to path in the JSON keypair format, readable
// only by the owner. An existing file is never overwritten.
func WriteKeypairFile(path string, key sdk.PrivateKey) error {
	content, err := ToJsonKeypair(key)
	if err != nil {
		return err
	}

	f, err := os.OpenFile(path, os.O_WRONLY|os.O_CREATE|os.O_EXCL, 0600)
	if err != nil {
		return signerErrors.NewIoError("%v", errors.Wrapf(err, "failed to create keypair file %s", path))
	}

	_, writeErr := f.Write(content)
	closeErr := f.Close()
	if writeErr == nil && closeErr == nil {
		return nil
	}

	// a partial file would block the next attempt through O_EXCL
	_ = os.Remove(path)
	if writeErr != nil {
		return signerErrors.NewIoError("%v", errors.Wrapf(writeErr, "failed to write keypair file %s", path))
	}
	return signerErrors.NewIoError("%v", errors.Wrapf(closeErr, "failed to close keypair file %s", path))
}
