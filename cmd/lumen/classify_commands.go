package main

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"time"

	"github.com/gagliardetto/solana-go"
	"github.com/itchyny/gojq"
	"github.com/urfave/cli/v2"
)

func classifyCommand() *cli.Command {
	return &cli.Command{
		Name:      "classify",
		Usage:     "Fetch and classify a wallet's recent transactions",
		ArgsUsage: "WALLET_ADDRESS",
		Flags: []cli.Flag{
			&cli.IntFlag{
				Name:    "limit",
				Aliases: []string{"n"},
				Value:   25,
				Usage:   "Maximum number of transactions to classify",
			},
			&cli.StringSliceFlag{
				Name:    "filter",
				Aliases: []string{"jq"},
				Usage:   "jq filter a classified transaction must satisfy (can be specified multiple times, all must match)",
			},
			&cli.DurationFlag{
				Name:    "timeout",
				Aliases: []string{"t"},
				Value:   2 * time.Minute,
				Usage:   "Overall deadline for fetching and classifying",
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

			filters, err := compileJQFilters(c.StringSlice("filter"))
			if err != nil {
				return err
			}

			cfg, err := loadConfig(c)
			if err != nil {
				return err
			}

			logger := newLogger(cfg.LogLevel)
			svc := newEngine(cfg, logger)

			ctx, cancel := context.WithTimeout(context.Background(), c.Duration("timeout"))
			defer cancel()

			classified, err := svc.Index(ctx, wallet, c.Int("limit"))
			if err != nil {
				return fmt.Errorf("failed to classify wallet transactions: %w", err)
			}

			results := make([]transactionJSON, 0, len(classified))
			for _, ct := range classified {
				out := toTransactionJSON(ct)
				keep, err := matchesJQFilters(filters, out)
				if err != nil {
					return err
				}
				if keep {
					results = append(results, out)
				}
			}

			if c.Bool("json") {
				data, err := json.MarshalIndent(results, "", "  ")
				if err != nil {
					return fmt.Errorf("failed to marshal results: %w", err)
				}
				fmt.Println(string(data))
				return nil
			}

			printClassified(results)
			return nil
		},
	}
}

// compileJQFilters parses and compiles each --filter expression up front
// so a bad expression fails before any RPC traffic.
func compileJQFilters(exprs []string) ([]*gojq.Code, error) {
	codes := make([]*gojq.Code, len(exprs))
	for i, expr := range exprs {
		query, err := gojq.Parse(expr)
		if err != nil {
			return nil, fmt.Errorf("failed to parse jq filter %q: %w", expr, err)
		}
		codes[i], err = gojq.Compile(query)
		if err != nil {
			return nil, fmt.Errorf("failed to compile jq filter %q: %w", expr, err)
		}
	}
	return codes, nil
}

// matchesJQFilters runs every filter against the JSON form of one
// classified transaction. All filters must yield a truthy first result.
func matchesJQFilters(filters []*gojq.Code, txn transactionJSON) (bool, error) {
	if len(filters) == 0 {
		return true, nil
	}

	// gojq operates on the generic JSON data model, so round-trip through
	// encoding/json rather than handing it a struct.
	data, err := json.Marshal(txn)
	if err != nil {
		return false, fmt.Errorf("failed to marshal transaction for filtering: %w", err)
	}
	var doc interface{}
	if err := json.Unmarshal(data, &doc); err != nil {
		return false, fmt.Errorf("failed to decode transaction for filtering: %w", err)
	}

	for _, code := range filters {
		iter := code.Run(doc)
		v, ok := iter.Next()
		if !ok {
			return false, nil
		}
		if _, isErr := v.(error); isErr {
			return false, nil
		}
		if !isTruthy(v) {
			return false, nil
		}
	}
	return true, nil
}

// isTruthy checks if a jq result value is truthy.
// In jq, false and null are falsy, everything else is truthy.
func isTruthy(v interface{}) bool {
	if v == nil {
		return false
	}
	if b, ok := v.(bool); ok {
		return b
	}
	return true
}

func printClassified(results []transactionJSON) {
	if len(results) == 0 {
		fmt.Println("No transactions matched.")
		return
	}
	for _, txn := range results {
		fmt.Printf("%s\n", txn.Signature)
		fmt.Printf("  Slot:       %d\n", txn.Slot)
		if txn.BlockTime != "" {
			fmt.Printf("  Time:       %s\n", txn.BlockTime)
		}
		if txn.Protocol != "" {
			fmt.Printf("  Protocol:   %s\n", txn.Protocol)
		}
		cl := txn.Classification
		fmt.Printf("  Type:       %s (confidence %.2f)\n", cl.Type, cl.Confidence)
		if cl.PrimaryAmount != nil {
			fmt.Printf("  Amount:     %g %s\n", cl.PrimaryAmount.UI, cl.PrimaryAmount.Symbol)
		}
		if cl.Sender != "" {
			fmt.Printf("  Sender:     %s\n", cl.Sender)
		}
		if cl.Receiver != "" {
			fmt.Printf("  Receiver:   %s\n", cl.Receiver)
		}
		fmt.Println()
	}
	fmt.Fprintf(os.Stderr, "%d transaction(s)\n", len(results))
}
