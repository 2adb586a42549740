package token

import (
	"context"
	"errors"
	"sync/atomic"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/brojonat/lumen/service/ledger"
)

const (
	usdcMainnet = "EPjFWdd5AufqSSqeM2qN1xzybapC8G4wEGGkZwyTDt1v"
	usdcDevnet  = "4zMMC9srt5Ri5X14GAgXhaHii3GnPAEERYPJgZJDncDU"
	randomMint  = "7S3P4HxJpyyigGzodYwHtCxZyUQe9JiBMHyRWXArAaKv"
)

// countingTokenList records how many lookups were issued.
type countingTokenList struct {
	calls  atomic.Int64
	tokens map[string]ledger.Token
	err    error
}

func (c *countingTokenList) Lookup(ctx context.Context, mint string) (*ledger.Token, error) {
	c.calls.Add(1)
	if c.err != nil {
		return nil, c.err
	}
	if tok, ok := c.tokens[mint]; ok {
		return &tok, nil
	}
	return nil, nil
}

type countingChain struct {
	calls  atomic.Int64
	tokens map[string]ledger.Token
}

func (c *countingChain) Metadata(ctx context.Context, mint string) (*ledger.Token, error) {
	c.calls.Add(1)
	if tok, ok := c.tokens[mint]; ok {
		return &tok, nil
	}
	return nil, nil
}

func TestResolve_StaticRegistry(t *testing.T) {
	r := NewResolver(Config{Cluster: ClusterMainnet})
	tok := r.Resolve(context.Background(), usdcMainnet)
	assert.Equal(t, "USDC", tok.Symbol)
	assert.Equal(t, uint8(6), tok.Decimals)
}

func TestResolve_NativeMintOnEveryCluster(t *testing.T) {
	for _, cluster := range []Cluster{ClusterMainnet, ClusterDevnet, ClusterTestnet} {
		r := NewResolver(Config{Cluster: cluster})
		tok := r.Resolve(context.Background(), ledger.NativeMint)
		assert.Equal(t, "SOL", tok.Symbol, "cluster %s", cluster)
	}
}

func TestResolve_ClustersNotConflated(t *testing.T) {
	mainnet := NewResolver(Config{Cluster: ClusterMainnet})
	devnet := NewResolver(Config{Cluster: ClusterDevnet})

	// The devnet USDC mint means nothing on mainnet and vice versa.
	assert.Equal(t, "UNKNOWN", mainnet.Resolve(context.Background(), usdcDevnet).Symbol)
	assert.Equal(t, "UNKNOWN", devnet.Resolve(context.Background(), usdcMainnet).Symbol)
}

func TestResolve_OverridesAlwaysWin(t *testing.T) {
	r := NewResolver(Config{
		Cluster: ClusterMainnet,
		Overrides: map[string]ledger.Token{
			// Override a mint the static registry also knows.
			usdcMainnet: {Symbol: "MYUSDC", Name: "Custom USDC", Decimals: 6},
		},
	})
	tok := r.Resolve(context.Background(), usdcMainnet)
	assert.Equal(t, "MYUSDC", tok.Symbol)
	assert.Equal(t, usdcMainnet, tok.Mint, "override inherits the mint key when unset")
}

func TestResolve_TokenListTierCachesForResolverLifetime(t *testing.T) {
	list := &countingTokenList{tokens: map[string]ledger.Token{
		randomMint: {Mint: randomMint, Symbol: "WIF", Name: "dogwifhat", Decimals: 6},
	}}
	r := NewResolver(Config{Cluster: ClusterMainnet, TokenList: list})

	first := r.Resolve(context.Background(), randomMint)
	second := r.Resolve(context.Background(), randomMint)

	assert.Equal(t, "WIF", first.Symbol)
	assert.Equal(t, first, second)
	assert.Equal(t, int64(1), list.calls.Load(), "second hit must come from the cache")
	assert.Equal(t, 1, r.CacheSize())
}

func TestResolve_ChainTierAfterTokenListMiss(t *testing.T) {
	list := &countingTokenList{}
	chain := &countingChain{tokens: map[string]ledger.Token{
		randomMint: {Mint: randomMint, Name: "Mad Lad #42", Decimals: 0},
	}}
	r := NewResolver(Config{Cluster: ClusterMainnet, TokenList: list, ChainMetadata: chain})

	tok := r.Resolve(context.Background(), randomMint)
	assert.Equal(t, "Mad Lad #42", tok.Name)
	assert.Equal(t, int64(1), list.calls.Load())
	assert.Equal(t, int64(1), chain.calls.Load())
}

func TestResolve_NetworkFailureDegradesToPlaceholder(t *testing.T) {
	list := &countingTokenList{err: errors.New("503 service unavailable")}
	r := NewResolver(Config{Cluster: ClusterMainnet, TokenList: list})

	tok := r.Resolve(context.Background(), randomMint)
	assert.Equal(t, "UNKNOWN", tok.Symbol)
	assert.Equal(t, randomMint, tok.Mint)
	assert.Equal(t, 0, r.CacheSize(), "failures are not cached")
}

func TestResolve_DevnetNeverTouchesTheNetwork(t *testing.T) {
	for _, cluster := range []Cluster{ClusterDevnet, ClusterTestnet} {
		list := &countingTokenList{tokens: map[string]ledger.Token{
			randomMint: {Mint: randomMint, Symbol: "WIF", Decimals: 6},
		}}
		r := NewResolver(Config{Cluster: cluster, TokenList: list})

		known := r.Resolve(context.Background(), ledger.NativeMint)
		unknown := r.Resolve(context.Background(), randomMint)

		assert.Equal(t, "SOL", known.Symbol)
		assert.Equal(t, "UNKNOWN", unknown.Symbol)
		assert.Equal(t, int64(0), list.calls.Load(), "cluster %s must not call the network", cluster)
		assert.Equal(t, 0, r.CacheSize())
	}
}

func TestResolve_PlaceholderShape(t *testing.T) {
	tok := Placeholder(randomMint)
	assert.Equal(t, "UNKNOWN", tok.Symbol)
	assert.Equal(t, "7S3P...AaKv", tok.Name)
	assert.False(t, tok.IsNFT(), "placeholders are not NFTs")
}

func TestResolveBatch_SizedToDistinctMints(t *testing.T) {
	list := &countingTokenList{tokens: map[string]ledger.Token{
		randomMint: {Mint: randomMint, Symbol: "WIF", Decimals: 6},
	}}
	r := NewResolver(Config{Cluster: ClusterMainnet, TokenList: list})

	got := r.ResolveBatch(context.Background(), []string{
		usdcMainnet, randomMint, usdcMainnet, ledger.NativeMint,
	})

	require.Len(t, got, 3, "keyed by distinct mint")
	assert.Equal(t, "USDC", got[usdcMainnet].Symbol)
	assert.Equal(t, "WIF", got[randomMint].Symbol)
	assert.Equal(t, "SOL", got[ledger.NativeMint].Symbol)
}

func TestRefresh_RepopulatesCache(t *testing.T) {
	list := &countingTokenList{tokens: map[string]ledger.Token{
		randomMint: {Mint: randomMint, Symbol: "WIF", Decimals: 6},
	}}
	r := NewResolver(Config{Cluster: ClusterMainnet, TokenList: list})

	r.Resolve(context.Background(), randomMint)
	require.Equal(t, 1, r.CacheSize())

	r.Refresh(context.Background())
	assert.Equal(t, 1, r.CacheSize(), "refresh re-resolves previously cached mints")
	assert.Equal(t, int64(2), list.calls.Load())
}

func TestRefresh_NoOpOffMainnet(t *testing.T) {
	list := &countingTokenList{}
	r := NewResolver(Config{Cluster: ClusterDevnet, TokenList: list})
	r.Refresh(context.Background())
	assert.Equal(t, int64(0), list.calls.Load())
}
