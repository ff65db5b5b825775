// Package privy is a client for the Privy server wallet API.
package privy

import (
	"bytes"
	"context"
	"encoding/base64"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"

	"github.com/Layr-Labs/solana-signer-go/pkg/clients/httpClient"
	"github.com/Layr-Labs/solana-signer-go/pkg/config"
	"github.com/Layr-Labs/solana-signer-go/pkg/logger"
	"github.com/Layr-Labs/solana-signer-go/pkg/signerErrors"
	"go.uber.org/zap"
)

const (
	DefaultBaseUrl = "https://api.privy.io/v1"

	methodSignTransaction = "signTransaction"
	encodingBase64        = "base64"
)

type Config struct {
	AppId     string
	AppSecret string
	WalletId  string
	BaseUrl   string
	Http      *config.HttpConfig
}

func DefaultConfig() *Config {
	return &Config{
		BaseUrl: DefaultBaseUrl,
	}
}

// NewConfigFromPrivyConfig maps the file/env configuration onto a client Config.
func NewConfigFromPrivyConfig(pc *config.PrivyConfig, hc *config.HttpConfig) *Config {
	cfg := DefaultConfig()
	if pc != nil {
		cfg.AppId = pc.AppId
		cfg.AppSecret = pc.AppSecret
		cfg.WalletId = pc.WalletId
		if pc.BaseUrl != "" {
			cfg.BaseUrl = pc.BaseUrl
		}
	}
	cfg.Http = hc
	return cfg
}

type Client struct {
	appId       string
	authHeader  string
	walletId    string
	baseUrl     string
	httpClient  *http.Client
	logger      *zap.Logger
	unsafeDebug bool
}

// NewClient creates a Privy API client for cfg.
func NewClient(cfg *Config, l *zap.Logger) (*Client, error) {
	if cfg == nil {
		cfg = DefaultConfig()
	}
	l = logger.OrNop(l)

	hc, err := httpClient.NewHttpClient(cfg.Http, l)
	if err != nil {
		return nil, err
	}

	baseUrl := cfg.BaseUrl
	if baseUrl == "" {
		baseUrl = DefaultBaseUrl
	}

	credentials := fmt.Sprintf("%s:%s", cfg.AppId, cfg.AppSecret)
	return &Client{
		appId:       cfg.AppId,
		authHeader:  "Basic " + base64.StdEncoding.EncodeToString([]byte(credentials)),
		walletId:    cfg.WalletId,
		baseUrl:     strings.TrimRight(baseUrl, "/"),
		httpClient:  hc,
		logger:      l,
		unsafeDebug: cfg.Http != nil && cfg.Http.UnsafeDebug,
	}, nil
}

// SetHttpClient replaces the underlying HTTP client.
func (c *Client) SetHttpClient(client *http.Client) {
	c.httpClient = client
}

func (c *Client) GetWallet(ctx context.Context) (*WalletResponse, error) {
	body, err := c.do(ctx, http.MethodGet, fmt.Sprintf("%s/wallets/%s", c.baseUrl, c.walletId), nil, "get_wallet")
	if err != nil {
		return nil, err
	}

	var wallet WalletResponse
	if err := json.Unmarshal(body, &wallet); err != nil {
		return nil, signerErrors.NewSerializationError("Failed to parse Privy wallet response: %v", err)
	}
	return &wallet, nil
}

func (c *Client) SignTransaction(ctx context.Context, payload []byte) (string, error) {
	request := SignTransactionRequest{
		Method: methodSignTransaction,
		Params: SignTransactionParams{
			Transaction: base64.StdEncoding.EncodeToString(payload),
			Encoding:    encodingBase64,
		},
	}
	requestBody, err := json.Marshal(request)
	if err != nil {
		return "", signerErrors.NewSerializationError("Failed to encode Privy request: %v", err)
	}

	body, err := c.do(ctx, http.MethodPost, fmt.Sprintf("%s/wallets/%s/rpc", c.baseUrl, c.walletId), requestBody, "sign_transaction")
	if err != nil {
		return "", err
	}

	var response SignTransactionResponse
	if err := json.Unmarshal(body, &response); err != nil {
		return "", signerErrors.NewSerializationError("Failed to parse Privy sign response: %v", err)
	}
	if response.Data.SignedTransaction == "" {
		return "", signerErrors.NewSerializationError("Privy sign response has no signed_transaction")
	}
	return response.Data.SignedTransaction, nil
}

func (c *Client) do(ctx context.Context, method, url string, requestBody []byte, operation string) ([]byte, error) {
	var reader io.Reader
	if requestBody != nil {
		reader = bytes.NewReader(requestBody)
	}

	req, err := http.NewRequestWithContext(ctx, method, url, reader)
	if err != nil {
		return nil, signerErrors.NewHttpError("Failed to build Privy request: %v", err)
	}
	req.Header.Set("Authorization", c.authHeader)
	req.Header.Set("privy-app-id", c.appId)
	if requestBody != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		c.logger.Error("Privy request failed", zap.String("operation", operation))
		return nil, signerErrors.NewHttpError("Failed to send request to Privy: %v", err)
	}
	defer func() { _ = resp.Body.Close() }()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, signerErrors.NewHttpError("Failed to read Privy response: %v", err)
	}

	if !httpClient.IsSuccess(resp.StatusCode) {
		fields := append([]zap.Field{zap.String("operation", operation)},
			httpClient.RemoteErrorFields(resp.StatusCode, body, c.unsafeDebug)...)
		c.logger.Error("Privy API error", fields...)
		return nil, signerErrors.NewRemoteApiError("API error %d", resp.StatusCode)
	}
	return body, nil
}
