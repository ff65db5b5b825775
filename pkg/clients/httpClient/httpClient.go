// Package httpClient builds the *http.Client shared by the remote signer
// backends: one pooled client per backend with a timeout, optional mTLS and an
// optional client-side request throttle. Requests are never retried.
package httpClient

import (
	"crypto/tls"
	"crypto/x509"
	"net/http"
	"os"
	"strings"
	"time"

	"github.com/Layr-Labs/solana-signer-go/pkg/config"
	"github.com/Layr-Labs/solana-signer-go/pkg/logger"
	"github.com/Layr-Labs/solana-signer-go/pkg/signerErrors"
	"github.com/google/uuid"
	"github.com/pkg/errors"
	"go.uber.org/zap"
	"golang.org/x/time/rate"
)

const maxLoggedBodyBytes = 2048

// NewHttpClient returns a client configured from cfg. A nil cfg yields the
// defaults: 30 second timeout, system roots, no throttle.
func NewHttpClient(cfg *config.HttpConfig, l *zap.Logger) (*http.Client, error) {
	if cfg == nil {
		cfg = &config.HttpConfig{}
	}
	l = logger.OrNop(l)

	transport := http.DefaultTransport.(*http.Transport).Clone()
	tlsConfig, err := buildTLSConfig(cfg)
	if err != nil {
		return nil, err
	}
	if tlsConfig != nil {
		transport.TLSClientConfig = tlsConfig
	}

	var limiter *rate.Limiter
	if cfg.RequestsPerSecond > 0 {
		burst := int(cfg.RequestsPerSecond)
		if burst < 1 {
			burst = 1
		}
		limiter = rate.NewLimiter(rate.Limit(cfg.RequestsPerSecond), burst)
	}

	return &http.Client{
		Timeout: cfg.GetTimeout(),
		Transport: &loggingTransport{
			next:    transport,
			limiter: limiter,
			logger:  l,
		},
	}, nil
}

func buildTLSConfig(cfg *config.HttpConfig) (*tls.Config, error) {
	if cfg.CACert == "" && cfg.Cert == "" && cfg.Key == "" {
		return nil, nil
	}
	tlsConfig := &tls.Config{MinVersion: tls.VersionTLS12}

	if cfg.CACert != "" {
		caPem, err := readPem(cfg.CACert)
		if err != nil {
			return nil, signerErrors.NewIoError("%v", errors.Wrapf(err, "failed to read CA certificate"))
		}
		pool := x509.NewCertPool()
		if !pool.AppendCertsFromPEM(caPem) {
			return nil, signerErrors.NewConfigError("CA certificate contains no valid PEM blocks")
		}
		tlsConfig.RootCAs = pool
	}

	if cfg.Cert != "" || cfg.Key != "" {
		certPem, err := readPem(cfg.Cert)
		if err != nil {
			return nil, signerErrors.NewIoError("%v", errors.Wrapf(err, "failed to read client certificate"))
		}
		keyPem, err := readPem(cfg.Key)
		if err != nil {
			return nil, signerErrors.NewIoError("%v", errors.Wrapf(err, "failed to read client key"))
		}
		cert, err := tls.X509KeyPair(certPem, keyPem)
		if err != nil {
			return nil, signerErrors.NewConfigError("%v", errors.Wrapf(err, "invalid client certificate"))
		}
		tlsConfig.Certificates = []tls.Certificate{cert}
	}
	return tlsConfig, nil
}

// readPem accepts either inline PEM content or a path to a PEM file.
func readPem(value string) ([]byte, error) {
	if strings.HasPrefix(strings.TrimSpace(value), "-----BEGIN") {
		return []byte(value), nil
	}
	return os.ReadFile(value)
}

type loggingTransport struct {
	next    http.RoundTripper
	limiter *rate.Limiter
	logger  *zap.Logger
}

func (lt *loggingTransport) RoundTrip(req *http.Request) (*http.Response, error) {
	requestId := uuid.New().String()

	if lt.limiter != nil {
		if err := lt.limiter.Wait(req.Context()); err != nil {
			return nil, errors.Wrap(err, "request throttled")
		}
	}

	start := time.Now()
	lt.logger.Debug("Sending request",
		zap.String("requestId", requestId),
		zap.String("method", req.Method),
		zap.String("host", req.URL.Host),
		zap.String("path", req.URL.Path),
	)

	resp, err := lt.next.RoundTrip(req)
	if err != nil {
		lt.logger.Debug("Request failed",
			zap.String("requestId", requestId),
			zap.Duration("elapsed", time.Since(start)),
		)
		return nil, err
	}

	lt.logger.Debug("Received response",
		zap.String("requestId", requestId),
		zap.Int("status", resp.StatusCode),
		zap.Duration("elapsed", time.Since(start)),
	)
	return resp, nil
}

// RemoteErrorFields returns the fields to log for a failed remote call. The
// response body is included only when unsafeDebug is set.
func RemoteErrorFields(statusCode int, body []byte, unsafeDebug bool) []zap.Field {
	fields := []zap.Field{zap.Int("status", statusCode)}
	if unsafeDebug && len(body) > 0 {
		if len(body) > maxLoggedBodyBytes {
			body = body[:maxLoggedBodyBytes]
		}
		fields = append(fields, zap.ByteString("body", body))
	}
	return fields
}

// IsSuccess reports whether statusCode is 2xx.
func IsSuccess(statusCode int) bool {
	return statusCode >= 200 && statusCode < 300
}
