package main

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/gagliardetto/solana-go"
	"github.com/urfave/cli/v2"
)

func balanceCommand() *cli.Command {
	return &cli.Command{
		Name:      "balance",
		Usage:     "Show a wallet's current holdings with resolved token identity",
		ArgsUsage: "WALLET_ADDRESS",
		Flags: []cli.Flag{
			&cli.DurationFlag{
				Name:    "timeout",
				Aliases: []string{"t"},
				Value:   30 * time.Second,
				Usage:   "Deadline for the balance fetch",
			},
		},
		Action: func(c *cli.Context) error {
			if c.NArg() < 1 {
				return fmt.Errorf("wallet address is required")
			}

			wallet, err := solana.PublicKeyFromBase58(c.Args().Get(0))
			if err != nil {
				return fmt.Errorf("invalid wallet address: %w", err)
			}

			cfg, err := loadConfig(c)
			if err != nil {
				return err
			}

			logger := newLogger(cfg.LogLevel)
			svc := newEngine(cfg, logger)

			ctx, cancel := context.WithTimeout(context.Background(), c.Duration("timeout"))
			defer cancel()

			balance, err := svc.Balance(ctx, wallet)
			if err != nil {
				return fmt.Errorf("failed to fetch wallet balance: %w", err)
			}

			out := toBalanceJSON(balance)
			if c.Bool("json") {
				data, err := json.MarshalIndent(out, "", "  ")
				if err != nil {
					return fmt.Errorf("failed to marshal balance: %w", err)
				}
				fmt.Println(string(data))
				return nil
			}

			fmt.Printf("Wallet: %s\n", out.Address)
			fmt.Printf("  %g %s\n", out.SOL.UI, out.SOL.Symbol)
			for _, t := range out.Tokens {
				fmt.Printf("  %g %s (%s)\n", t.UI, t.Symbol, t.Mint)
			}
			return nil
		},
	}
}
