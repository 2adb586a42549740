package token

import (
	"context"
	"io"
	"log/slog"
	"sync"

	"github.com/brojonat/lumen/service/ledger"
	"github.com/brojonat/lumen/service/metrics"
)

// TokenListClient looks a mint up in an off-chain aggregator token list.
type TokenListClient interface {
	Lookup(ctx context.Context, mint string) (*ledger.Token, error)
}

// ChainMetadataClient reads token identity from on-chain metadata
// accounts.
type ChainMetadataClient interface {
	Metadata(ctx context.Context, mint string) (*ledger.Token, error)
}

// Config assembles a Resolver. Overrides always win, even over an
// otherwise-known mint. TokenList and ChainMetadata may be nil; they are
// only consulted on mainnet anyway.
type Config struct {
	Cluster       Cluster
	Overrides     map[string]ledger.Token
	TokenList     TokenListClient
	ChainMetadata ChainMetadataClient
	Logger        *slog.Logger
	Metrics       *metrics.Metrics
}

// Resolver resolves mints for one cluster. The network-sourced cache is
// owned per instance, so independent resolvers (one per cluster, say)
// coexist without cross-contamination. Cache writes are last-writer-wins;
// concurrent misses for the same mint may both hit the network, which is
// cheap and idempotent.
type Resolver struct {
	cluster   Cluster
	overrides map[string]ledger.Token
	static    map[string]ledger.Token
	tokenList TokenListClient
	chain     ChainMetadataClient
	logger    *slog.Logger
	metrics   *metrics.Metrics

	mu    sync.RWMutex
	cache map[string]ledger.Token
}

// NewResolver creates a resolver for the configured cluster.
func NewResolver(cfg Config) *Resolver {
	logger := cfg.Logger
	if logger == nil {
		logger = slog.New(slog.NewTextHandler(io.Discard, nil))
	}
	overrides := make(map[string]ledger.Token, len(cfg.Overrides))
	for mint, tok := range cfg.Overrides {
		if tok.Mint == "" {
			tok.Mint = mint
		}
		overrides[mint] = tok
	}
	return &Resolver{
		cluster:   cfg.Cluster,
		overrides: overrides,
		static:    registryFor(cfg.Cluster),
		tokenList: cfg.TokenList,
		chain:     cfg.ChainMetadata,
		logger:    logger,
		metrics:   cfg.Metrics,
		cache:     make(map[string]ledger.Token),
	}
}

// Resolve returns the identity for one mint. It never fails: every tier's
// miss or error degrades to the next, ending at a synthetic placeholder.
func (r *Resolver) Resolve(ctx context.Context, mint string) ledger.Token {
	if tok, ok := r.overrides[mint]; ok {
		r.record("override")
		return tok
	}
	if tok, ok := r.static[mint]; ok {
		r.record("static")
		return tok
	}

	// Network tiers are a mainnet-only cost/correctness boundary: devnet
	// and testnet mints would produce garbage from mainnet-keyed sources.
	if r.cluster == ClusterMainnet {
		r.mu.RLock()
		tok, ok := r.cache[mint]
		r.mu.RUnlock()
		if ok {
			r.record("cache")
			return tok
		}
		if tok, ok := r.lookupNetwork(ctx, mint); ok {
			return tok
		}
	}

	r.record("placeholder")
	return Placeholder(mint)
}

// ResolveBatch resolves each mint independently under the same waterfall,
// fanning the lookups out concurrently. The result maps every distinct
// requested mint to its identity.
func (r *Resolver) ResolveBatch(ctx context.Context, mints []string) map[string]ledger.Token {
	distinct := make([]string, 0, len(mints))
	seen := make(map[string]struct{}, len(mints))
	for _, m := range mints {
		if _, ok := seen[m]; !ok {
			seen[m] = struct{}{}
			distinct = append(distinct, m)
		}
	}

	out := make(map[string]ledger.Token, len(distinct))
	var outMu sync.Mutex
	var wg sync.WaitGroup
	for _, mint := range distinct {
		mint := mint
		wg.Add(1)
		go func() {
			defer wg.Done()
			tok := r.Resolve(ctx, mint)
			outMu.Lock()
			out[mint] = tok
			outMu.Unlock()
		}()
	}
	wg.Wait()
	return out
}

// Refresh clears the network-sourced cache and repopulates it for the
// mints it previously held. On devnet and testnet it is a no-op.
func (r *Resolver) Refresh(ctx context.Context) {
	if r.cluster != ClusterMainnet {
		return
	}

	r.mu.Lock()
	stale := make([]string, 0, len(r.cache))
	for mint := range r.cache {
		stale = append(stale, mint)
	}
	r.cache = make(map[string]ledger.Token)
	r.mu.Unlock()

	r.logger.InfoContext(ctx, "refreshing token metadata cache", "mints", len(stale))
	for _, mint := range stale {
		r.lookupNetwork(ctx, mint)
	}
}

// CacheSize reports the number of network-sourced entries currently held.
func (r *Resolver) CacheSize() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.cache)
}

// lookupNetwork runs the token-list and on-chain tiers, caching any hit.
func (r *Resolver) lookupNetwork(ctx context.Context, mint string) (ledger.Token, bool) {
	if r.tokenList != nil {
		tok, err := r.tokenList.Lookup(ctx, mint)
		if err != nil {
			r.logger.DebugContext(ctx, "token list lookup failed", "mint", mint, "error", err)
		} else if tok != nil {
			r.record("token_list")
			r.store(mint, *tok)
			return *tok, true
		}
	}
	if r.chain != nil {
		tok, err := r.chain.Metadata(ctx, mint)
		if err != nil {
			r.logger.DebugContext(ctx, "on-chain metadata lookup failed", "mint", mint, "error", err)
		} else if tok != nil {
			r.record("chain")
			r.store(mint, *tok)
			return *tok, true
		}
	}
	return ledger.Token{}, false
}

func (r *Resolver) store(mint string, tok ledger.Token) {
	r.mu.Lock()
	r.cache[mint] = tok
	size := len(r.cache)
	r.mu.Unlock()
	if r.metrics != nil {
		r.metrics.SetMetadataCacheSize(string(r.cluster), size)
	}
}

func (r *Resolver) record(source string) {
	if r.metrics != nil {
		r.metrics.RecordMetadataLookup(source)
	}
}

// Placeholder builds the final fallback identity for an unresolvable
// mint: symbol UNKNOWN, the truncated address as its name.
func Placeholder(mint string) ledger.Token {
	name := mint
	if len(mint) > 8 {
		name = mint[:4] + "..." + mint[len(mint)-4:]
	}
	return ledger.Token{
		Mint:     mint,
		Symbol:   "UNKNOWN",
		Name:     name,
		Decimals: 0,
	}
}
