package turnkey

import (
	"crypto"
	"crypto/ecdh"
	"crypto/ecdsa"
	"crypto/elliptic"
	"crypto/sha256"
	"encoding/base64"
	"encoding/hex"
	"encoding/json"
	"math/big"

	"github.com/Layr-Labs/solana-signer-go/pkg/signerErrors"
)

const (
	stampScheme  = "SIGNATURE_SCHEME_TK_API_P256"
	p256KeyBytes = 32
)

type stamp struct {
	PublicKey string `json:"public_key"`
	Signature string `json:"signature"`
	Scheme    string `json:"scheme"`
}

// Stamper authenticates Turnkey requests with an API key pair. The stamp is a
// deterministic P-256 ECDSA signature over the exact request body.
type Stamper struct {
	apiPublicKey string
	key          *ecdsa.PrivateKey
}

// NewStamper parses a hex encoded 32 byte P-256 scalar.
func NewStamper(apiPublicKey string, apiPrivateKeyHex string) (*Stamper, error) {
	raw, err := hex.DecodeString(apiPrivateKeyHex)
	if err != nil {
		return nil, signerErrors.NewInvalidPrivateKey("Failed to decode private key: %v", err)
	}
	if len(raw) != p256KeyBytes {
		return nil, signerErrors.NewInvalidPrivateKey("Invalid private key length")
	}

	ecdhKey, err := ecdh.P256().NewPrivateKey(raw)
	if err != nil {
		return nil, signerErrors.NewInvalidPrivateKey("Invalid signing key: %v", err)
	}

	// uncompressed point: 0x04 || X || Y
	point := ecdhKey.PublicKey().Bytes()
	key := &ecdsa.PrivateKey{
		PublicKey: ecdsa.PublicKey{
			Curve: elliptic.P256(),
			X:     new(big.Int).SetBytes(point[1 : 1+p256KeyBytes]),
			Y:     new(big.Int).SetBytes(point[1+p256KeyBytes:]),
		},
		D: new(big.Int).SetBytes(raw),
	}

	return &Stamper{apiPublicKey: apiPublicKey, key: key}, nil
}

// Stamp returns the X-Stamp header value for body.
func (s *Stamper) Stamp(body []byte) (string, error) {
	digest := sha256.Sum256(body)

	// a nil rand selects RFC 6979 nonces
	der, err := s.key.Sign(nil, digest[:], crypto.SHA256)
	if err != nil {
		return "", signerErrors.NewInvalidPrivateKey("Failed to sign stamp: %v", err)
	}

	encoded, err := json.Marshal(stamp{
		PublicKey: s.apiPublicKey,
		Signature: hex.EncodeToString(der),
		Scheme:    stampScheme,
	})
	if err != nil {
		return "", signerErrors.NewSerializationError("Failed to encode stamp: %v", err)
	}
	return base64.RawURLEncoding.EncodeToString(encoded), nil
}
