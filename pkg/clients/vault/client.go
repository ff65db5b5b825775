// Package vault talks to the HashiCorp Vault transit secrets engine.
package vault

import (
	"context"
	"encoding/base64"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"

	"github.com/Layr-Labs/solana-signer-go/pkg/clients/httpClient"
	"github.com/Layr-Labs/solana-signer-go/pkg/config"
	"github.com/Layr-Labs/solana-signer-go/pkg/logger"
	"github.com/Layr-Labs/solana-signer-go/pkg/signerErrors"
	vaultapi "github.com/hashicorp/vault/api"
	"go.uber.org/zap"
)

const (
	signaturePrefix = "vault:v1:"
	transitKeyType  = "ed25519"
)

type Config struct {
	Address string
	Token   string
	Http    *config.HttpConfig
}

func DefaultConfig() *Config {
	return &Config{
		Address: "http://127.0.0.1:8200",
	}
}

// NewConfigFromVaultConfig maps the file/env configuration onto a client Config.
func NewConfigFromVaultConfig(vc *config.VaultConfig, hc *config.HttpConfig) *Config {
	cfg := DefaultConfig()
	if vc != nil {
		if vc.Address != "" {
			cfg.Address = vc.Address
		}
		cfg.Token = vc.Token
	}
	cfg.Http = hc
	return cfg
}

type Client struct {
	api         *vaultapi.Client
	logger      *zap.Logger
	unsafeDebug bool
}

// NewClient creates a Vault client with its own pooled HTTP client. Only cfg
// is consulted, never the VAULT_* environment.
func NewClient(cfg *Config, l *zap.Logger) (*Client, error) {
	if cfg == nil {
		cfg = DefaultConfig()
	}
	l = logger.OrNop(l)

	hc, err := httpClient.NewHttpClient(cfg.Http, l)
	if err != nil {
		return nil, err
	}

	// Built from scratch so VAULT_* variables in the environment play no part.
	vcfg := &vaultapi.Config{
		Address:    strings.TrimRight(cfg.Address, "/"),
		HttpClient: hc,
		Timeout:    hc.Timeout,
		MaxRetries: 0,
		CheckRetry: vaultapi.DefaultRetryPolicy,
	}

	api, err := newApiClient(vcfg, cfg.Token)
	if err != nil {
		return nil, err
	}

	return &Client{
		api:         api,
		logger:      l,
		unsafeDebug: cfg.Http != nil && cfg.Http.UnsafeDebug,
	}, nil
}

// SetHttpClient rebuilds the Vault client around client, keeping the address and token.
func (c *Client) SetHttpClient(client *http.Client) error {
	vcfg := c.api.CloneConfig()
	vcfg.HttpClient = client

	replacement, err := newApiClient(vcfg, c.api.Token())
	if err != nil {
		return err
	}
	c.api = replacement
	return nil
}

// newApiClient drops the token and namespace vaultapi.NewClient picks up from
// VAULT_TOKEN and VAULT_NAMESPACE.
func newApiClient(vcfg *vaultapi.Config, token string) (*vaultapi.Client, error) {
	api, err := vaultapi.NewClient(vcfg)
	if err != nil {
		return nil, signerErrors.NewConfigError("failed to create Vault client: %v", err)
	}
	api.ClearNamespace()
	api.SetToken(token)
	return api, nil
}

// Sign POSTs payload to transit/sign/<keyName> and returns the raw signature.
func (c *Client) Sign(ctx context.Context, keyName string, payload []byte) ([]byte, error) {
	req := c.api.NewRequest(http.MethodPost, "/v1/transit/sign/"+keyName)
	if err := req.SetJSONBody(map[string]interface{}{
		"input": base64.StdEncoding.EncodeToString(payload),
	}); err != nil {
		return nil, signerErrors.NewSerializationError("Failed to encode Vault request: %v", err)
	}

	// Logical().Write would send PUT
	//nolint:staticcheck
	resp, err := c.api.RawRequestWithContext(ctx, req)
	if resp != nil {
		defer func() { _ = resp.Body.Close() }()
	}
	if err != nil {
		return nil, c.classify(err, "sign")
	}

	secret, err := vaultapi.ParseSecret(resp.Body)
	if err != nil {
		return nil, c.classify(err, "sign")
	}
	if secret == nil || secret.Data == nil {
		c.logger.Error("Vault returned an empty sign response", zap.String("key", keyName))
		return nil, signerErrors.NewRemoteApiError("No signature in Vault response")
	}

	raw, ok := secret.Data["signature"]
	if !ok || raw == nil {
		return nil, signerErrors.NewRemoteApiError("No signature in Vault response")
	}
	encoded, ok := raw.(string)
	if !ok {
		return nil, signerErrors.NewSerializationError("Vault signature is not a string")
	}
	encoded = strings.TrimPrefix(encoded, signaturePrefix)

	sig, err := base64.StdEncoding.DecodeString(encoded)
	if err != nil {
		return nil, signerErrors.NewSerializationError("Failed to decode signature: %v", err)
	}

	c.logger.Debug("Vault signed payload", zap.String("key", keyName), zap.Int("payloadBytes", len(payload)))
	return sig, nil
}

// KeyExists reads transit/keys/<keyName>; a 404 is reported as false.
func (c *Client) KeyExists(ctx context.Context, keyName string) (bool, error) {
	secret, err := c.api.Logical().ReadWithContext(ctx, "transit/keys/"+keyName)
	if err != nil {
		return false, c.classify(err, "read key")
	}
	return secret != nil, nil
}

// CreateKey creates an ed25519 transit key.
func (c *Client) CreateKey(ctx context.Context, keyName string) error {
	_, err := c.api.Logical().WriteWithContext(ctx, "transit/keys/"+keyName, map[string]interface{}{
		"type": transitKeyType,
	})
	if err != nil {
		return c.classify(err, "create key")
	}
	c.logger.Info("Created Vault transit key", zap.String("key", keyName), zap.String("type", transitKeyType))
	return nil
}

// GetPublicKey returns the public key of the latest version of keyName.
func (c *Client) GetPublicKey(ctx context.Context, keyName string) ([]byte, error) {
	secret, err := c.api.Logical().ReadWithContext(ctx, "transit/keys/"+keyName)
	if err != nil {
		return nil, c.classify(err, "read key")
	}
	if secret == nil || secret.Data == nil {
		return nil, signerErrors.NewRemoteApiError("Vault key %s not found", keyName)
	}

	if keyType, _ := secret.Data["type"].(string); keyType != "" && keyType != transitKeyType {
		return nil, signerErrors.NewConfigError("Vault key %s has type %s, expected %s", keyName, keyType, transitKeyType)
	}

	version, err := latestVersion(secret.Data["latest_version"])
	if err != nil {
		return nil, err
	}
	keys, ok := secret.Data["keys"].(map[string]interface{})
	if !ok {
		return nil, signerErrors.NewSerializationError("Vault key %s has no key versions", keyName)
	}
	entry, ok := keys[version].(map[string]interface{})
	if !ok {
		return nil, signerErrors.NewSerializationError("Vault key %s is missing version %s", keyName, version)
	}
	encoded, ok := entry["public_key"].(string)
	if !ok || encoded == "" {
		return nil, signerErrors.NewSerializationError("Vault key %s version %s has no public key", keyName, version)
	}

	publicKey, err := base64.StdEncoding.DecodeString(encoded)
	if err != nil {
		return nil, signerErrors.NewSerializationError("Failed to decode public key: %v", err)
	}
	return publicKey, nil
}

// latestVersion renders the latest_version field as the key of the "keys" map.
func latestVersion(raw interface{}) (string, error) {
	switch v := raw.(type) {
	case json.Number:
		return v.String(), nil
	case float64:
		return strconv.FormatInt(int64(v), 10), nil
	case nil:
		return "1", nil
	default:
		return "", signerErrors.NewSerializationError("unexpected latest_version type %T", raw)
	}
}

func (c *Client) classify(err error, operation string) error {
	var respErr *vaultapi.ResponseError
	if errors.As(err, &respErr) {
		fields := []zap.Field{zap.String("operation", operation), zap.Int("status", respErr.StatusCode)}
		if c.unsafeDebug {
			fields = append(fields, zap.Strings("errors", respErr.Errors))
		}
		c.logger.Error("Vault API error", fields...)
		return signerErrors.NewRemoteApiError("Vault API error %d", respErr.StatusCode)
	}

	var urlErr *url.Error
	if errors.As(err, &urlErr) {
		c.logger.Error("Vault request failed", zap.String("operation", operation))
		return signerErrors.NewHttpError("Failed to send request to Vault: %v", err)
	}

	var syntaxErr *json.SyntaxError
	var typeErr *json.UnmarshalTypeError
	if errors.As(err, &syntaxErr) || errors.As(err, &typeErr) ||
		errors.Is(err, io.EOF) || errors.Is(err, io.ErrUnexpectedEOF) {
		return signerErrors.NewSerializationError("Failed to parse Vault response: %v", err)
	}

	c.logger.Error("Vault request failed", zap.String("operation", operation))
	return signerErrors.NewHttpError("Failed to send request to Vault: %v", err)
}
