package main

import (
	"fmt"
	"log/slog"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/urfave/cli/v2"

	"github.com/brojonat/lumen/service/classify"
	"github.com/brojonat/lumen/service/config"
	"github.com/brojonat/lumen/service/indexer"
	"github.com/brojonat/lumen/service/metrics"
	"github.com/brojonat/lumen/service/token"

	solanaclient "github.com/brojonat/lumen/service/solana"
)

// loadConfig reads environment configuration and applies the --cluster
// flag override, if any.
func loadConfig(c *cli.Context) (*config.Config, error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, err
	}
	if cluster := c.String("cluster"); cluster != "" {
		switch config.Cluster(cluster) {
		case token.ClusterMainnet, token.ClusterDevnet, token.ClusterTestnet:
			cfg.Cluster = config.Cluster(cluster)
		default:
			return nil, fmt.Errorf("unknown cluster %q (expected mainnet, devnet, or testnet)", cluster)
		}
		if cfg.RPCURL() == "" {
			return nil, fmt.Errorf("no RPC URL configured for cluster %s", cfg.Cluster)
		}
	}
	return cfg, nil
}

// newResolver assembles the metadata waterfall for the configured cluster.
func newResolver(cfg *config.Config, m *metrics.Metrics, logger *slog.Logger) *token.Resolver {
	return token.NewResolver(token.Config{
		Cluster:       cfg.Cluster,
		Overrides:     cfg.CustomTokens,
		TokenList:     token.NewHTTPTokenList(cfg.TokenListURL, nil, logger),
		ChainMetadata: token.NewChainMetadata(solanaclient.NewAccountFetcher(cfg.RPCURL())),
		Logger:        logger,
		Metrics:       m,
	})
}

// newEngine wires the full stack: retry-wrapped RPC client, metadata
// resolver, classification pipeline, and the facade over all three.
func newEngine(cfg *config.Config, logger *slog.Logger) *indexer.Service {
	m := metrics.NewMetrics(prometheus.NewRegistry())
	rpcURL := cfg.RPCURL()
	client := solanaclient.NewClient(solanaclient.NewRPCClient(rpcURL), rpcURL, cfg.Retry, m, logger)
	resolver := newResolver(cfg, m, logger)
	pipeline := classify.NewPipeline(logger)
	return indexer.New(client, resolver, pipeline, m, logger)
}
