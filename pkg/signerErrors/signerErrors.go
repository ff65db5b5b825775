// Package signerErrors is the error vocabulary shared by every signer backend.
//
// Messages attached to a SignerError may contain key material, API tokens or
// fragments of signed payloads. The default rendering of an error (Error() and
// every fmt verb, including %+v and %#v) therefore prints only the kind tag.
// The full text is reachable only through UnsafeMessage.
package signerErrors

import (
	"errors"
	"fmt"
	"io"

	"go.uber.org/zap"
)

// Kind classifies a SignerError.
type Kind int

const (
	KindOther Kind = iota
	KindInvalidPrivateKey
	KindInvalidPublicKey
	KindSigningFailed
	KindRemoteApiError
	KindHttpError
	KindSerializationError
	KindConfigError
	KindNotAvailable
	KindIoError
)

var kindNames = map[Kind]string{
	KindOther:              "Other",
	KindInvalidPrivateKey:  "InvalidPrivateKey",
	KindInvalidPublicKey:   "InvalidPublicKey",
	KindSigningFailed:      "SigningFailed",
	KindRemoteApiError:     "RemoteApiError",
	KindHttpError:          "HttpError",
	KindSerializationError: "SerializationError",
	KindConfigError:        "ConfigError",
	KindNotAvailable:       "NotAvailable",
	KindIoError:            "IoError",
}

var kindDescriptions = map[Kind]string{
	KindInvalidPrivateKey:  "Invalid private key format",
	KindInvalidPublicKey:   "Invalid public key",
	KindSigningFailed:      "Signing failed",
	KindRemoteApiError:     "Remote API error",
	KindHttpError:          "HTTP request failed",
	KindSerializationError: "Serialization error",
	KindConfigError:        "Configuration error",
	KindNotAvailable:       "Signer not available",
	KindIoError:            "IO error",
}

func (k Kind) String() string {
	if name, ok := kindNames[k]; ok {
		return name
	}
	return kindNames[KindOther]
}

// Sentinels for errors.Is. A SignerError matches the sentinel of its kind.
var (
	ErrOther              = &SignerError{kind: KindOther}
	ErrInvalidPrivateKey  = &SignerError{kind: KindInvalidPrivateKey}
	ErrInvalidPublicKey   = &SignerError{kind: KindInvalidPublicKey}
	ErrSigningFailed      = &SignerError{kind: KindSigningFailed}
	ErrRemoteApiError     = &SignerError{kind: KindRemoteApiError}
	ErrHttpError          = &SignerError{kind: KindHttpError}
	ErrSerializationError = &SignerError{kind: KindSerializationError}
	ErrConfigError        = &SignerError{kind: KindConfigError}
	ErrNotAvailable       = &SignerError{kind: KindNotAvailable}
	ErrIoError            = &SignerError{kind: KindIoError}
)

// SignerError is the single error type returned across package boundaries.
type SignerError struct {
	kind    Kind
	message string
}

// New creates a SignerError of the given kind.
func New(kind Kind, format string, args ...interface{}) *SignerError {
	return &SignerError{kind: kind, message: fmt.Sprintf(format, args...)}
}

func NewInvalidPrivateKey(format string, args ...interface{}) *SignerError {
	return New(KindInvalidPrivateKey, format, args...)
}

func NewInvalidPublicKey(format string, args ...interface{}) *SignerError {
	return New(KindInvalidPublicKey, format, args...)
}

func NewSigningFailed(format string, args ...interface{}) *SignerError {
	return New(KindSigningFailed, format, args...)
}

func NewRemoteApiError(format string, args ...interface{}) *SignerError {
	return New(KindRemoteApiError, format, args...)
}

func NewHttpError(format string, args ...interface{}) *SignerError {
	return New(KindHttpError, format, args...)
}

func NewSerializationError(format string, args ...interface{}) *SignerError {
	return New(KindSerializationError, format, args...)
}

func NewConfigError(format string, args ...interface{}) *SignerError {
	return New(KindConfigError, format, args...)
}

func NewNotAvailable(format string, args ...interface{}) *SignerError {
	return New(KindNotAvailable, format, args...)
}

func NewIoError(format string, args ...interface{}) *SignerError {
	return New(KindIoError, format, args...)
}

func NewOther(format string, args ...interface{}) *SignerError {
	return New(KindOther, format, args...)
}

// Kind returns the classification of the error.
func (e *SignerError) Kind() Kind {
	return e.kind
}

// Error renders only the kind tag.
func (e *SignerError) Error() string {
	return fmt.Sprintf("SignerError::%s([REDACTED])", e.kind)
}

// Format keeps %v, %+v, %s, %q and %#v redacted as well.
func (e *SignerError) Format(f fmt.State, verb rune) {
	switch verb {
	case 'q':
		_, _ = fmt.Fprintf(f, "%q", e.Error())
	default:
		_, _ = io.WriteString(f, e.Error())
	}
}

// UnsafeMessage returns the full, unredacted message. Callers that log it
// accept that it may contain secrets.
func (e *SignerError) UnsafeMessage() string {
	if description, ok := kindDescriptions[e.kind]; ok {
		return fmt.Sprintf("%s: %s", description, e.message)
	}
	return e.message
}

// Is reports whether target is the sentinel for e's kind.
func (e *SignerError) Is(target error) bool {
	t, ok := target.(*SignerError)
	if !ok {
		return false
	}
	return t.message == "" && t.kind == e.kind
}

// KindOf returns the kind of the first SignerError in err's chain, or
// KindOther when there is none.
func KindOf(err error) Kind {
	var se *SignerError
	if errors.As(err, &se) {
		return se.kind
	}
	return KindOther
}

// UnsafeMessage returns the unredacted text of any error.
func UnsafeMessage(err error) string {
	if err == nil {
		return ""
	}
	var se *SignerError
	if errors.As(err, &se) {
		return se.UnsafeMessage()
	}
	return err.Error()
}

// Field is the zap field to use when logging a signer error. It carries the
// redacted rendering plus the kind.
func Field(err error) zap.Field {
	if err == nil {
		return zap.Skip()
	}
	return zap.Dict("error",
		zap.String("kind", KindOf(err).String()),
		zap.String("message", err.Error()),
	)
}
