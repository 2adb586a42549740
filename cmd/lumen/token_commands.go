package main

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/urfave/cli/v2"

	"github.com/brojonat/lumen/service/metrics"
)

func resolveTokensCommand() *cli.Command {
	return &cli.Command{
		Name:      "resolve",
		Usage:     "Resolve token metadata for one or more mint addresses",
		ArgsUsage: "MINT [MINT...]",
		Flags: []cli.Flag{
			&cli.DurationFlag{
				Name:    "timeout",
				Aliases: []string{"t"},
				Value:   30 * time.Second,
				Usage:   "Deadline for metadata resolution",
			},
		},
		Action: func(c *cli.Context) error {
			if c.NArg() < 1 {
				return fmt.Errorf("at least one mint address is required")
			}

			cfg, err := loadConfig(c)
			if err != nil {
				return err
			}

			logger := newLogger(cfg.LogLevel)
			m := metrics.NewMetrics(prometheus.NewRegistry())
			resolver := newResolver(cfg, m, logger)

			ctx, cancel := context.WithTimeout(context.Background(), c.Duration("timeout"))
			defer cancel()

			resolved := resolver.ResolveBatch(ctx, c.Args().Slice())

			out := make([]tokenJSON, 0, c.NArg())
			for _, mint := range c.Args().Slice() {
				out = append(out, toTokenJSON(resolved[mint]))
			}

			if c.Bool("json") {
				data, err := json.MarshalIndent(out, "", "  ")
				if err != nil {
					return fmt.Errorf("failed to marshal tokens: %w", err)
				}
				fmt.Println(string(data))
				return nil
			}

			for _, t := range out {
				fmt.Printf("%s\n", t.Mint)
				fmt.Printf("  Symbol:   %s\n", t.Symbol)
				fmt.Printf("  Name:     %s\n", t.Name)
				fmt.Printf("  Decimals: %d\n", t.Decimals)
				if t.NFT {
					fmt.Printf("  NFT:      true\n")
				}
				fmt.Println()
			}
			return nil
		},
	}
}
