package config

import (
	"encoding/json"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/Layr-Labs/solana-signer-go/pkg/signerErrors"
	"github.com/pkg/errors"
	"gopkg.in/yaml.v3"
	"k8s.io/apimachinery/pkg/util/validation/field"
)

// Environment variable names read by ApplyEnvOverrides
const (
	EnvSignerType = "SOLANA_SIGNER_TYPE"

	EnvMemoryPrivateKey = "SOLANA_SIGNER_PRIVATE_KEY"

	EnvVaultAddress   = "SOLANA_SIGNER_VAULT_ADDR"
	EnvVaultToken     = "SOLANA_SIGNER_VAULT_TOKEN"
	EnvVaultKeyName   = "SOLANA_SIGNER_VAULT_KEY_NAME"
	EnvVaultPublicKey = "SOLANA_SIGNER_VAULT_PUBLIC_KEY"

	EnvPrivyAppId     = "SOLANA_SIGNER_PRIVY_APP_ID"
	EnvPrivyAppSecret = "SOLANA_SIGNER_PRIVY_APP_SECRET"
	EnvPrivyWalletId  = "SOLANA_SIGNER_PRIVY_WALLET_ID"
	EnvPrivyBaseUrl   = "SOLANA_SIGNER_PRIVY_BASE_URL"

	EnvTurnkeyApiPublicKey   = "SOLANA_SIGNER_TURNKEY_API_PUBLIC_KEY"
	EnvTurnkeyApiPrivateKey  = "SOLANA_SIGNER_TURNKEY_API_PRIVATE_KEY"
	EnvTurnkeyOrganizationId = "SOLANA_SIGNER_TURNKEY_ORGANIZATION_ID"
	EnvTurnkeyPrivateKeyId   = "SOLANA_SIGNER_TURNKEY_PRIVATE_KEY_ID"
	EnvTurnkeyPublicKey      = "SOLANA_SIGNER_TURNKEY_PUBLIC_KEY"
	EnvTurnkeyBaseUrl        = "SOLANA_SIGNER_TURNKEY_BASE_URL"

	EnvHttpTimeout           = "SOLANA_SIGNER_HTTP_TIMEOUT"
	EnvHttpRequestsPerSecond = "SOLANA_SIGNER_HTTP_REQUESTS_PER_SECOND"
	EnvHttpUnsafeDebug       = "SOLANA_SIGNER_UNSAFE_DEBUG"
)

const DefaultHttpTimeout = 30 * time.Second

type SignerType string

func (s SignerType) String() string {
	return string(s)
}

const (
	SignerTypeMemory  SignerType = "memory"
	SignerTypeVault   SignerType = "vault"
	SignerTypePrivy   SignerType = "privy"
	SignerTypeTurnkey SignerType = "turnkey"
)

var supportedSignerTypes = []string{
	SignerTypeMemory.String(),
	SignerTypeVault.String(),
	SignerTypePrivy.String(),
	SignerTypeTurnkey.String(),
}

type MemoryConfig struct {
	// base58, "[1,2,...]" or the path of a JSON keypair file
	PrivateKey string `json:"privateKey" yaml:"privateKey"`
}

type VaultConfig struct {
	Address   string `json:"address" yaml:"address"`
	Token     string `json:"token" yaml:"token"`
	KeyName   string `json:"keyName" yaml:"keyName"`
	PublicKey string `json:"publicKey" yaml:"publicKey"`
}

type PrivyConfig struct {
	AppId     string `json:"appId" yaml:"appId"`
	AppSecret string `json:"appSecret" yaml:"appSecret"`
	WalletId  string `json:"walletId" yaml:"walletId"`
	BaseUrl   string `json:"baseUrl,omitempty" yaml:"baseUrl,omitempty"`
}

type TurnkeyConfig struct {
	ApiPublicKey   string `json:"apiPublicKey" yaml:"apiPublicKey"`
	ApiPrivateKey  string `json:"apiPrivateKey" yaml:"apiPrivateKey"`
	OrganizationId string `json:"organizationId" yaml:"organizationId"`
	PrivateKeyId   string `json:"privateKeyId" yaml:"privateKeyId"`
	PublicKey      string `json:"publicKey" yaml:"publicKey"`
	BaseUrl        string `json:"baseUrl,omitempty" yaml:"baseUrl,omitempty"`
}

// HttpConfig configures the client shared by the remote backends.
type HttpConfig struct {
	// Timeout in seconds, 0 means DefaultHttpTimeout
	Timeout int    `json:"timeout" yaml:"timeout"`
	CACert  string `json:"caCert" yaml:"caCert"`
	Cert    string `json:"cert" yaml:"cert"`
	Key     string `json:"key" yaml:"key"`

	// RequestsPerSecond throttles outgoing requests, 0 disables the limiter
	RequestsPerSecond float64 `json:"requestsPerSecond" yaml:"requestsPerSecond"`

	// UnsafeDebug logs remote error bodies, which may contain sensitive data
	UnsafeDebug bool `json:"unsafeDebug" yaml:"unsafeDebug"`
}

func (hc *HttpConfig) GetTimeout() time.Duration {
	if hc == nil || hc.Timeout <= 0 {
		return DefaultHttpTimeout
	}
	return time.Duration(hc.Timeout) * time.Second
}

func (hc *HttpConfig) validate(path *field.Path) field.ErrorList {
	var allErrors field.ErrorList
	if hc.Timeout < 0 {
		allErrors = append(allErrors, field.Invalid(path.Child("timeout"), hc.Timeout, "timeout cannot be negative"))
	}
	if hc.RequestsPerSecond < 0 {
		allErrors = append(allErrors, field.Invalid(path.Child("requestsPerSecond"), hc.RequestsPerSecond, "requestsPerSecond cannot be negative"))
	}
	if (hc.Cert == "") != (hc.Key == "") {
		allErrors = append(allErrors, field.Required(path.Child("cert"), "cert and key must be provided together"))
	}
	return allErrors
}

// SignerConfig selects and configures one signer backend.
type SignerConfig struct {
	Type    SignerType     `json:"type" yaml:"type"`
	Memory  *MemoryConfig  `json:"memory,omitempty" yaml:"memory,omitempty"`
	Vault   *VaultConfig   `json:"vault,omitempty" yaml:"vault,omitempty"`
	Privy   *PrivyConfig   `json:"privy,omitempty" yaml:"privy,omitempty"`
	Turnkey *TurnkeyConfig `json:"turnkey,omitempty" yaml:"turnkey,omitempty"`
	Http    *HttpConfig    `json:"http,omitempty" yaml:"http,omitempty"`
}

// Validate checks that the section for the selected backend is complete.
// Secrets are never echoed into the returned error.
func (sc *SignerConfig) Validate() error {
	var allErrors field.ErrorList

	switch sc.Type {
	case SignerTypeMemory:
		p := field.NewPath("memory")
		if sc.Memory == nil {
			allErrors = append(allErrors, field.Required(p, "memory section is required"))
		} else if sc.Memory.PrivateKey == "" {
			allErrors = append(allErrors, field.Required(p.Child("privateKey"), "privateKey is required"))
		}
	case SignerTypeVault:
		p := field.NewPath("vault")
		if sc.Vault == nil {
			allErrors = append(allErrors, field.Required(p, "vault section is required"))
			break
		}
		if sc.Vault.Address == "" {
			allErrors = append(allErrors, field.Required(p.Child("address"), "address is required"))
		}
		if sc.Vault.Token == "" {
			allErrors = append(allErrors, field.Required(p.Child("token"), "token is required"))
		}
		if sc.Vault.KeyName == "" {
			allErrors = append(allErrors, field.Required(p.Child("keyName"), "keyName is required"))
		}
		if sc.Vault.PublicKey == "" {
			allErrors = append(allErrors, field.Required(p.Child("publicKey"), "publicKey is required"))
		}
	case SignerTypePrivy:
		p := field.NewPath("privy")
		if sc.Privy == nil {
			allErrors = append(allErrors, field.Required(p, "privy section is required"))
			break
		}
		if sc.Privy.AppId == "" {
			allErrors = append(allErrors, field.Required(p.Child("appId"), "appId is required"))
		}
		if sc.Privy.AppSecret == "" {
			allErrors = append(allErrors, field.Required(p.Child("appSecret"), "appSecret is required"))
		}
		if sc.Privy.WalletId == "" {
			allErrors = append(allErrors, field.Required(p.Child("walletId"), "walletId is required"))
		}
	case SignerTypeTurnkey:
		p := field.NewPath("turnkey")
		if sc.Turnkey == nil {
			allErrors = append(allErrors, field.Required(p, "turnkey section is required"))
			break
		}
		if sc.Turnkey.ApiPublicKey == "" {
			allErrors = append(allErrors, field.Required(p.Child("apiPublicKey"), "apiPublicKey is required"))
		}
		if sc.Turnkey.ApiPrivateKey == "" {
			allErrors = append(allErrors, field.Required(p.Child("apiPrivateKey"), "apiPrivateKey is required"))
		}
		if sc.Turnkey.OrganizationId == "" {
			allErrors = append(allErrors, field.Required(p.Child("organizationId"), "organizationId is required"))
		}
		if sc.Turnkey.PrivateKeyId == "" {
			allErrors = append(allErrors, field.Required(p.Child("privateKeyId"), "privateKeyId is required"))
		}
		if sc.Turnkey.PublicKey == "" {
			allErrors = append(allErrors, field.Required(p.Child("publicKey"), "publicKey is required"))
		}
	case "":
		allErrors = append(allErrors, field.Required(field.NewPath("type"), "type is required"))
	default:
		allErrors = append(allErrors, field.NotSupported(field.NewPath("type"), sc.Type, supportedSignerTypes))
	}

	if sc.Http != nil {
		allErrors = append(allErrors, sc.Http.validate(field.NewPath("http"))...)
	}

	if len(allErrors) > 0 {
		return signerErrors.NewConfigError("%s", allErrors.ToAggregate().Error())
	}
	return nil
}

// LoadConfigFromFile reads a SignerConfig from a .json file, or from YAML for
// any other extension.
func LoadConfigFromFile(path string) (*SignerConfig, error) {
	content, err := os.ReadFile(path)
	if err != nil {
		return nil, signerErrors.NewIoError("%v", errors.Wrapf(err, "failed to read config file %s", path))
	}

	cfg := &SignerConfig{}
	if strings.EqualFold(filepath.Ext(path), ".json") {
		err = json.Unmarshal(content, cfg)
	} else {
		err = yaml.Unmarshal(content, cfg)
	}
	if err != nil {
		return nil, signerErrors.NewConfigError("%v", errors.Wrapf(err, "failed to parse config file %s", path))
	}
	return cfg, nil
}

// ApplyEnvOverrides overwrites fields with any SOLANA_SIGNER_* variables that
// are set. Sections are created as needed.
func (sc *SignerConfig) ApplyEnvOverrides() error {
	if v, ok := os.LookupEnv(EnvSignerType); ok {
		sc.Type = SignerType(strings.ToLower(strings.TrimSpace(v)))
	}

	if v, ok := os.LookupEnv(EnvMemoryPrivateKey); ok {
		sc.memory().PrivateKey = v
	}

	overrideString(EnvVaultAddress, func(v string) { sc.vault().Address = v })
	overrideString(EnvVaultToken, func(v string) { sc.vault().Token = v })
	overrideString(EnvVaultKeyName, func(v string) { sc.vault().KeyName = v })
	overrideString(EnvVaultPublicKey, func(v string) { sc.vault().PublicKey = v })

	overrideString(EnvPrivyAppId, func(v string) { sc.privy().AppId = v })
	overrideString(EnvPrivyAppSecret, func(v string) { sc.privy().AppSecret = v })
	overrideString(EnvPrivyWalletId, func(v string) { sc.privy().WalletId = v })
	overrideString(EnvPrivyBaseUrl, func(v string) { sc.privy().BaseUrl = v })

	overrideString(EnvTurnkeyApiPublicKey, func(v string) { sc.turnkey().ApiPublicKey = v })
	overrideString(EnvTurnkeyApiPrivateKey, func(v string) { sc.turnkey().ApiPrivateKey = v })
	overrideString(EnvTurnkeyOrganizationId, func(v string) { sc.turnkey().OrganizationId = v })
	overrideString(EnvTurnkeyPrivateKeyId, func(v string) { sc.turnkey().PrivateKeyId = v })
	overrideString(EnvTurnkeyPublicKey, func(v string) { sc.turnkey().PublicKey = v })
	overrideString(EnvTurnkeyBaseUrl, func(v string) { sc.turnkey().BaseUrl = v })

	if v, ok := os.LookupEnv(EnvHttpTimeout); ok {
		timeout, err := strconv.Atoi(v)
		if err != nil {
			return signerErrors.NewConfigError("%v", errors.Wrapf(err, "invalid %s", EnvHttpTimeout))
		}
		sc.http().Timeout = timeout
	}
	if v, ok := os.LookupEnv(EnvHttpRequestsPerSecond); ok {
		rps, err := strconv.ParseFloat(v, 64)
		if err != nil {
			return signerErrors.NewConfigError("%v", errors.Wrapf(err, "invalid %s", EnvHttpRequestsPerSecond))
		}
		sc.http().RequestsPerSecond = rps
	}
	if v, ok := os.LookupEnv(EnvHttpUnsafeDebug); ok {
		unsafeDebug, err := strconv.ParseBool(v)
		if err != nil {
			return signerErrors.NewConfigError("%v", errors.Wrapf(err, "invalid %s", EnvHttpUnsafeDebug))
		}
		sc.http().UnsafeDebug = unsafeDebug
	}
	return nil
}

func overrideString(name string, set func(string)) {
	if v, ok := os.LookupEnv(name); ok {
		set(v)
	}
}

func (sc *SignerConfig) memory() *MemoryConfig {
	if sc.Memory == nil {
		sc.Memory = &MemoryConfig{}
	}
	return sc.Memory
}

func (sc *SignerConfig) vault() *VaultConfig {
	if sc.Vault == nil {
		sc.Vault = &VaultConfig{}
	}
	return sc.Vault
}

func (sc *SignerConfig) privy() *PrivyConfig {
	if sc.Privy == nil {
		sc.Privy = &PrivyConfig{}
	}
	return sc.Privy
}

func (sc *SignerConfig) turnkey() *TurnkeyConfig {
	if sc.Turnkey == nil {
		sc.Turnkey = &TurnkeyConfig{}
	}
	return sc.Turnkey
}

func (sc *SignerConfig) http() *HttpConfig {
	if sc.Http == nil {
		sc.Http = &HttpConfig{}
	}
	return sc.Http
}
