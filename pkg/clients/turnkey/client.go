// Package turnkey is a client for the Turnkey activity API.
package turnkey

import (
	"bytes"
	"context"
	"encoding/hex"
	"encoding/json"
	"io"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/Layr-Labs/solana-signer-go/pkg/clients/httpClient"
	"github.com/Layr-Labs/solana-signer-go/pkg/config"
	"github.com/Layr-Labs/solana-signer-go/pkg/logger"
	"github.com/Layr-Labs/solana-signer-go/pkg/signerErrors"
	"go.uber.org/zap"
)

const (
	DefaultBaseUrl = "https://api.turnkey.com"

	signRawPayloadPath = "/public/v1/submit/sign_raw_payload"
	whoAmIPath         = "/public/v1/query/whoami"
)

type Config struct {
	ApiPublicKey   string
	ApiPrivateKey  string
	OrganizationId string
	BaseUrl        string
	Http           *config.HttpConfig
}

func DefaultConfig() *Config {
	return &Config{
		BaseUrl: DefaultBaseUrl,
	}
}

// NewConfigFromTurnkeyConfig maps the file/env configuration onto a client Config.
func NewConfigFromTurnkeyConfig(tc *config.TurnkeyConfig, hc *config.HttpConfig) *Config {
	cfg := DefaultConfig()
	if tc != nil {
		cfg.ApiPublicKey = tc.ApiPublicKey
		cfg.ApiPrivateKey = tc.ApiPrivateKey
		cfg.OrganizationId = tc.OrganizationId
		if tc.BaseUrl != "" {
			cfg.BaseUrl = tc.BaseUrl
		}
	}
	cfg.Http = hc
	return cfg
}

type Client struct {
	organizationId string
	baseUrl        string
	stamper        *Stamper
	httpClient     *http.Client
	logger         *zap.Logger
	unsafeDebug    bool
	now            func() time.Time
}

// NewClient validates the API key pair up front, so a malformed key fails here
// rather than on the first request.
func NewClient(cfg *Config, l *zap.Logger) (*Client, error) {
	if cfg == nil {
		cfg = DefaultConfig()
	}
	l = logger.OrNop(l)

	stamper, err := NewStamper(cfg.ApiPublicKey, cfg.ApiPrivateKey)
	if err != nil {
		return nil, err
	}

	hc, err := httpClient.NewHttpClient(cfg.Http, l)
	if err != nil {
		return nil, err
	}

	baseUrl := cfg.BaseUrl
	if baseUrl == "" {
		baseUrl = DefaultBaseUrl
	}

	return &Client{
		organizationId: cfg.OrganizationId,
		baseUrl:        strings.TrimRight(baseUrl, "/"),
		stamper:        stamper,
		httpClient:     hc,
		logger:         l,
		unsafeDebug:    cfg.Http != nil && cfg.Http.UnsafeDebug,
		now:            time.Now,
	}, nil
}

// SetHttpClient replaces the underlying HTTP client.
func (c *Client) SetHttpClient(client *http.Client) {
	c.httpClient = client
}

func (c *Client) SignRawPayload(ctx context.Context, signWith string, payload []byte) (*SignResult, error) {
	request := SignRequest{
		Type:           activityTypeSignRawPayload,
		TimestampMs:    strconv.FormatInt(c.now().UnixMilli(), 10),
		OrganizationId: c.organizationId,
		Parameters: SignParameters{
			SignWith:     signWith,
			Payload:      hex.EncodeToString(payload),
			Encoding:     payloadEncodingHex,
			HashFunction: hashFunctionNotApplicable,
		},
	}

	body, err := c.post(ctx, signRawPayloadPath, request, "sign_raw_payload")
	if err != nil {
		return nil, err
	}

	var response ActivityResponse
	if err := json.Unmarshal(body, &response); err != nil {
		return nil, signerErrors.NewSerializationError("Failed to parse Turnkey response: %v", err)
	}
	if response.Activity.Result == nil || response.Activity.Result.SignRawPayloadResult == nil {
		c.logger.Error("Turnkey activity has no sign result", zap.String("status", response.Activity.Status))
		return nil, signerErrors.NewSigningFailed("Invalid response from Turnkey API")
	}
	return response.Activity.Result.SignRawPayloadResult, nil
}

func (c *Client) WhoAmI(ctx context.Context) error {
	_, err := c.post(ctx, whoAmIPath, WhoAmIRequest{OrganizationId: c.organizationId}, "whoami")
	return err
}

func (c *Client) post(ctx context.Context, path string, request interface{}, operation string) ([]byte, error) {
	requestBody, err := json.Marshal(request)
	if err != nil {
		return nil, signerErrors.NewSerializationError("Failed to encode Turnkey request: %v", err)
	}

	// the stamp covers these exact bytes, so they are sent unmodified
	xStamp, err := c.stamper.Stamp(requestBody)
	if err != nil {
		return nil, err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseUrl+path, bytes.NewReader(requestBody))
	if err != nil {
		return nil, signerErrors.NewHttpError("Failed to build Turnkey request: %v", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("X-Stamp", xStamp)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		c.logger.Error("Turnkey request failed", zap.String("operation", operation))
		return nil, signerErrors.NewHttpError("Failed to send request to Turnkey: %v", err)
	}
	defer func() { _ = resp.Body.Close() }()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, signerErrors.NewHttpError("Failed to read Turnkey response: %v", err)
	}

	if !httpClient.IsSuccess(resp.StatusCode) {
		fields := append([]zap.Field{zap.String("operation", operation)},
			httpClient.RemoteErrorFields(resp.StatusCode, body, c.unsafeDebug)...)
		c.logger.Error("Turnkey API error", fields...)
		return nil, signerErrors.NewRemoteApiError("API error %d", resp.StatusCode)
	}
	return body, nil
}
