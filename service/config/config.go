package config

import (
	"encoding/json"
	"fmt"
	"os"
	"time"

	"github.com/brojonat/lumen/service/ledger"
	"github.com/brojonat/lumen/service/retry"
	"github.com/brojonat/lumen/service/token"
)

// Config holds all engine configuration loaded from environment
// variables. All required fields are validated at load so callers fail
// fast instead of at the first RPC call.
type Config struct {
	// Active cluster and the RPC endpoint per cluster. Endpoints may
	// carry an API key in the URL (Helius, QuickNode, Alchemy style).
	Cluster Cluster
	RPCURLs map[Cluster]string

	LogLevel string

	// Custom token overrides, highest-priority tier of the metadata
	// waterfall.
	CustomTokens map[string]ledger.Token

	// Aggregator token list endpoint, mainnet only.
	TokenListURL string

	// Resilience layer bounds.
	Retry retry.Config
}

// Cluster re-exports the registry's cluster type so callers only import
// one config surface.
type Cluster = token.Cluster

// Load reads configuration from environment variables and validates all
// required fields. Returns an error listing every problem found.
func Load() (*Config, error) {
	cfg := &Config{}
	var errs []error

	cfg.LogLevel = getEnvOrDefault("LOG_LEVEL", "info")

	clusterName := getEnvOrDefault("SOLANA_CLUSTER", string(token.ClusterMainnet))
	switch Cluster(clusterName) {
	case token.ClusterMainnet, token.ClusterDevnet, token.ClusterTestnet:
		cfg.Cluster = Cluster(clusterName)
	default:
		errs = append(errs, fmt.Errorf("SOLANA_CLUSTER must be one of mainnet, devnet, testnet (got %q)", clusterName))
	}

	cfg.RPCURLs = map[Cluster]string{
		token.ClusterMainnet: os.Getenv("SOLANA_MAINNET_RPC_URL"),
		token.ClusterDevnet:  os.Getenv("SOLANA_DEVNET_RPC_URL"),
		token.ClusterTestnet: os.Getenv("SOLANA_TESTNET_RPC_URL"),
	}
	if cfg.Cluster != "" && cfg.RPCURLs[cfg.Cluster] == "" {
		errs = append(errs, fmt.Errorf("no RPC URL configured for cluster %s (set SOLANA_%s_RPC_URL)",
			cfg.Cluster, envClusterName(cfg.Cluster)))
	}

	cfg.TokenListURL = getEnvOrDefault("TOKEN_LIST_URL", token.DefaultTokenListURL)

	if raw := os.Getenv("CUSTOM_TOKENS"); raw != "" {
		overrides, err := ParseCustomTokens(raw)
		if err != nil {
			errs = append(errs, fmt.Errorf("CUSTOM_TOKENS is not valid JSON: %w", err))
		} else {
			cfg.CustomTokens = overrides
		}
	}

	maxAttempts, err := parseIntEnv("RPC_MAX_ATTEMPTS", retry.DefaultMaxAttempts)
	if err != nil {
		errs = append(errs, err)
	}
	baseDelay, err := parseDurationEnv("RPC_BASE_DELAY", retry.DefaultBaseDelay)
	if err != nil {
		errs = append(errs, err)
	}
	maxDelay, err := parseDurationEnv("RPC_MAX_DELAY", retry.DefaultMaxDelay)
	if err != nil {
		errs = append(errs, err)
	}
	cfg.Retry = retry.Config{
		MaxAttempts: maxAttempts,
		BaseDelay:   baseDelay,
		MaxDelay:    maxDelay,
	}
	if cfg.Retry.BaseDelay > cfg.Retry.MaxDelay {
		errs = append(errs, fmt.Errorf("RPC_BASE_DELAY (%v) cannot be greater than RPC_MAX_DELAY (%v)",
			cfg.Retry.BaseDelay, cfg.Retry.MaxDelay))
	}

	if len(errs) > 0 {
		return nil, fmt.Errorf("configuration validation failed: %v", errs)
	}
	return cfg, nil
}

// RPCURL returns the endpoint for the active cluster.
func (c *Config) RPCURL() string {
	return c.RPCURLs[c.Cluster]
}

func envClusterName(c Cluster) string {
	switch c {
	case token.ClusterDevnet:
		return "DEVNET"
	case token.ClusterTestnet:
		return "TESTNET"
	default:
		return "MAINNET"
	}
}

// ParseCustomTokens decodes a JSON object of mint → token identity:
// {"MINT": {"symbol": "X", "name": "Token X", "decimals": 6}}.
func ParseCustomTokens(raw string) (map[string]ledger.Token, error) {
	var entries map[string]struct {
		Symbol   string `json:"symbol"`
		Name     string `json:"name"`
		Decimals uint8  `json:"decimals"`
	}
	if err := json.Unmarshal([]byte(raw), &entries); err != nil {
		return nil, err
	}
	out := make(map[string]ledger.Token, len(entries))
	for mint, e := range entries {
		out[mint] = ledger.Token{
			Mint:     mint,
			Symbol:   e.Symbol,
			Name:     e.Name,
			Decimals: e.Decimals,
		}
	}
	return out, nil
}

func getEnvOrDefault(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func parseIntEnv(key string, fallback int) (int, error) {
	v := os.Getenv(key)
	if v == "" {
		return fallback, nil
	}
	var n int
	if _, err := fmt.Sscanf(v, "%d", &n); err != nil || n <= 0 {
		return 0, fmt.Errorf("%s must be a positive integer (got %q)", key, v)
	}
	return n, nil
}

func parseDurationEnv(key string, fallback time.Duration) (time.Duration, error) {
	v := os.Getenv(key)
	if v == "" {
		return fallback, nil
	}
	d, err := time.ParseDuration(v)
	if err != nil || d <= 0 {
		return 0, fmt.Errorf("%s must be a positive duration like 500ms (got %q)", key, v)
	}
	return d, nil
}
