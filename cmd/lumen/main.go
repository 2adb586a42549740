package main

import (
	"fmt"
	"log"
	"log/slog"
	"os"

	"github.com/urfave/cli/v2"
)

var (
	// Version information (set via ldflags during build)
	version = "dev"
	commit  = "unknown"
	date    = "unknown"
)

func main() {
	app := &cli.App{
		Name:  "lumen",
		Usage: "Solana wallet transaction classification CLI",
		Description: `A command-line tool for indexing and classifying wallet activity.

Use this CLI to classify a wallet's recent transactions, inspect its
current holdings, and resolve token metadata.`,
		Version: fmt.Sprintf("%s (commit: %s, built: %s)", version, commit, date),
		Commands: []*cli.Command{
			classifyCommand(),
			balanceCommand(),
			{
				Name:  "tokens",
				Usage: "Token metadata commands",
				Subcommands: []*cli.Command{
					resolveTokensCommand(),
				},
			},
		},
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:    "cluster",
				Usage:   "Solana cluster to target (mainnet, devnet, testnet)",
				EnvVars: []string{"SOLANA_CLUSTER"},
			},
			&cli.BoolFlag{
				Name:    "json",
				Aliases: []string{"j"},
				Usage:   "Output in JSON format",
			},
		},
	}

	if err := app.Run(os.Args); err != nil {
		log.Fatal(err)
	}
}

// newLogger builds a text logger on stderr so stdout stays clean for
// command output.
func newLogger(level string) *slog.Logger {
	var lvl slog.Level
	switch level {
	case "debug":
		lvl = slog.LevelDebug
	case "warn":
		lvl = slog.LevelWarn
	case "error":
		lvl = slog.LevelError
	default:
		lvl = slog.LevelInfo
	}
	return slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: lvl}))
}
