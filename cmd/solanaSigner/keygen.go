package main

import (
	"fmt"

	"github.com/Layr-Labs/solana-signer-go/internal/keyGenerator"
	"github.com/Layr-Labs/solana-signer-go/internal/keyGenerator/localKeyGenerator"
	"github.com/Layr-Labs/solana-signer-go/internal/keyGenerator/vaultKeyGenerator"
	"github.com/Layr-Labs/solana-signer-go/pkg/clients/vault"
	"github.com/Layr-Labs/solana-signer-go/pkg/config"
	"github.com/Layr-Labs/solana-signer-go/pkg/logger"
	"github.com/urfave/cli/v2"
)

func keygenLocalCommand(c *cli.Context) error {
	l, err := logger.NewLogger(&logger.LoggerConfig{Debug: c.Bool("verbose")})
	if err != nil {
		return fmt.Errorf("failed to create logger: %w", err)
	}
	defer func() { _ = l.Sync() }()

	generator := localKeyGenerator.NewLocalKeyGenerator(l)
	generated, err := generator.GenerateKey(c.Context, "cli")
	if err != nil {
		return cliError(l, "key generation failed", err)
	}
	if err := generator.ExportKeypairFile(generated.KeyId, c.String("out")); err != nil {
		return cliError(l, "key generation failed", err)
	}
	return printGeneratedKey(c, generated)
}

func keygenVaultCommand(c *cli.Context) error {
	l, err := logger.NewLogger(&logger.LoggerConfig{Debug: c.Bool("verbose")})
	if err != nil {
		return fmt.Errorf("failed to create logger: %w", err)
	}
	defer func() { _ = l.Sync() }()

	cfg := vault.NewConfigFromVaultConfig(&config.VaultConfig{
		Address: c.String("vault-addr"),
		Token:   c.String("vault-token"),
	}, nil)
	client, err := vault.NewClient(cfg, l)
	if err != nil {
		return cliError(l, "failed to create Vault client", err)
	}

	generated, err := vaultKeyGenerator.NewVaultKeyGenerator(client, l).GenerateKey(c.Context, c.String("key-name"))
	if err != nil {
		return cliError(l, "key generation failed", err)
	}
	return printGeneratedKey(c, generated)
}

func printGeneratedKey(c *cli.Context, generated *keyGenerator.GeneratedKey) error {
	_, err := fmt.Fprintln(c.App.Writer, generated.GetPublicKeyBase58())
	return err
}
