package main

import (
	"encoding/base64"
	"encoding/json"
	"fmt"

	"github.com/Layr-Labs/solana-signer-go/pkg/config"
	"github.com/Layr-Labs/solana-signer-go/pkg/logger"
	"github.com/Layr-Labs/solana-signer-go/pkg/signerErrors"
	"github.com/Layr-Labs/solana-signer-go/pkg/transactionSigner"
	"github.com/Layr-Labs/solana-signer-go/pkg/util"
	"github.com/urfave/cli/v2"
	"go.uber.org/zap"
)

type signTransactionOutput struct {
	Transaction string `json:"transaction"`
	Signature   string `json:"signature"`
}

func newApp() *cli.App {
	return &cli.App{
		Name:  "solana-signer",
		Usage: "Sign Solana messages and transactions with a memory, Vault, Privy or Turnkey key",
		Description: `Signs with the backend selected by the configuration file and SOLANA_SIGNER_* environment variables.

Backends:
- memory: a local Ed25519 keypair (base58, byte array or keypair file)
- vault: a HashiCorp Vault transit ed25519 key
- privy: a Privy server wallet
- turnkey: a Turnkey private key`,
		Version: "1.0.0",
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:    "config",
				Aliases: []string{"c"},
				Usage:   "Path to a YAML or JSON signer config",
				EnvVars: []string{"SOLANA_SIGNER_CONFIG"},
			},
			&cli.BoolFlag{
				Name:  "verbose",
				Usage: "Enable verbose logging",
			},
		},
		Commands: []*cli.Command{
			{
				Name:   "pubkey",
				Usage:  "Print the signer's base58 public key",
				Action: withSigner(pubkeyCommand),
			},
			{
				Name:   "health",
				Usage:  "Check whether the signer can currently sign",
				Action: withSigner(healthCommand),
			},
			{
				Name:  "sign-message",
				Usage: "Sign a message and print the base58 signature",
				Flags: []cli.Flag{
					&cli.StringFlag{
						Name:  "message",
						Usage: "Message to sign (as string)",
					},
					&cli.StringFlag{
						Name:  "message-base64",
						Usage: "Message to sign (base64 encoded bytes)",
					},
				},
				Action: withSigner(signMessageCommand),
			},
			{
				Name:  "sign-transaction",
				Usage: "Sign a base64 wire-encoded transaction",
				Flags: []cli.Flag{
					&cli.StringFlag{
						Name:     "transaction",
						Aliases:  []string{"tx"},
						Usage:    "Base64 encoded transaction",
						Required: true,
					},
					&cli.BoolFlag{
						Name:  "partial",
						Usage: "Sign as one of several required signers",
					},
				},
				Action: withSigner(signTransactionCommand),
			},
			{
				Name:  "keygen",
				Usage: "Generate a new Ed25519 key for one of the backends",
				Subcommands: []*cli.Command{
					{
						Name:  "local",
						Usage: "Write a new keypair file for the memory signer",
						Flags: []cli.Flag{
							&cli.StringFlag{
								Name:     "out",
								Aliases:  []string{"o"},
								Usage:    "Path of the keypair file to create",
								Required: true,
							},
						},
						Action: keygenLocalCommand,
					},
					{
						Name:  "vault",
						Usage: "Create an ed25519 key in the Vault transit engine",
						Flags: []cli.Flag{
							&cli.StringFlag{
								Name:    "vault-addr",
								Usage:   "Vault address",
								EnvVars: []string{config.EnvVaultAddress},
							},
							&cli.StringFlag{
								Name:     "vault-token",
								Usage:    "Vault token",
								EnvVars:  []string{config.EnvVaultToken},
								Required: true,
							},
							&cli.StringFlag{
								Name:     "key-name",
								Usage:    "Name of the transit key",
								EnvVars:  []string{config.EnvVaultKeyName},
								Required: true,
							},
						},
						Action: keygenVaultCommand,
					},
				},
			},
		},
	}
}

type signerAction func(c *cli.Context, signer *transactionSigner.Signer) error

// withSigner builds the configured signer before running action.
func withSigner(action signerAction) cli.ActionFunc {
	return func(c *cli.Context) error {
		l, err := logger.NewLogger(&logger.LoggerConfig{Debug: c.Bool("verbose")})
		if err != nil {
			return fmt.Errorf("failed to create logger: %w", err)
		}
		defer func() { _ = l.Sync() }()

		cfg, err := loadConfig(c.String("config"))
		if err != nil {
			return cliError(l, "configuration error", err)
		}

		signer, err := transactionSigner.NewSignerFromConfig(c.Context, cfg, l)
		if err != nil {
			return cliError(l, "failed to create signer", err)
		}
		l.Sugar().Debugw("Signer ready", "type", signer.Type(), "publicKey", signer.PublicKey().String())

		if err := action(c, signer); err != nil {
			return cliError(l, fmt.Sprintf("%s failed", c.Command.Name), err)
		}
		return nil
	}
}

func loadConfig(path string) (*config.SignerConfig, error) {
	cfg := &config.SignerConfig{}
	if path != "" {
		loaded, err := config.LoadConfigFromFile(path)
		if err != nil {
			return nil, err
		}
		cfg = loaded
	}
	if err := cfg.ApplyEnvOverrides(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// cliError logs the kind and returns the redacted error. The unredacted text
// is only logged at debug level.
func cliError(l *zap.Logger, msg string, err error) error {
	l.Error(msg, signerErrors.Field(err))
	l.Debug(msg, zap.String("detail", signerErrors.UnsafeMessage(err)))
	return fmt.Errorf("%s: %w", msg, err)
}

func pubkeyCommand(c *cli.Context, signer *transactionSigner.Signer) error {
	_, err := fmt.Fprintln(c.App.Writer, signer.PublicKey().String())
	return err
}

func healthCommand(c *cli.Context, signer *transactionSigner.Signer) error {
	if !signer.IsAvailable(c.Context) {
		_, _ = fmt.Fprintln(c.App.Writer, "unavailable")
		return signerErrors.NewNotAvailable("%s signer did not pass its health check", signer.Type())
	}
	_, err := fmt.Fprintln(c.App.Writer, "available")
	return err
}

func signMessageCommand(c *cli.Context, signer *transactionSigner.Signer) error {
	message, err := messageFromFlags(c)
	if err != nil {
		return err
	}

	sig, err := signer.SignMessage(c.Context, message)
	if err != nil {
		return err
	}
	_, err = fmt.Fprintln(c.App.Writer, sig.String())
	return err
}

func messageFromFlags(c *cli.Context) ([]byte, error) {
	text, encoded := c.String("message"), c.String("message-base64")
	switch {
	case c.IsSet("message") && c.IsSet("message-base64"):
		return nil, signerErrors.NewConfigError("use only one of --message and --message-base64")
	case c.IsSet("message"):
		return []byte(text), nil
	case c.IsSet("message-base64"):
		message, err := base64.StdEncoding.DecodeString(encoded)
		if err != nil {
			return nil, signerErrors.NewSerializationError("invalid --message-base64: %v", err)
		}
		return message, nil
	default:
		return nil, signerErrors.NewConfigError("one of --message or --message-base64 is required")
	}
}

func signTransactionCommand(c *cli.Context, signer *transactionSigner.Signer) error {
	tx, err := util.DeserializeTransaction(c.String("transaction"))
	if err != nil {
		return err
	}

	sign := signer.SignTransaction
	if c.Bool("partial") {
		sign = signer.SignPartialTransaction
	}
	signed, err := sign(c.Context, tx)
	if err != nil {
		return err
	}

	encoder := json.NewEncoder(c.App.Writer)
	encoder.SetIndent("", "  ")
	return encoder.Encode(signTransactionOutput{
		Transaction: signed.EncodedTransaction,
		Signature:   signed.Signature.String(),
	})
}
