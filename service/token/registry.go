// Package token resolves mint addresses to asset identity through a
// cluster-aware fallback waterfall: caller overrides, the cluster's static
// registry, an aggregator token list, on-chain metadata, and finally a
// synthetic placeholder. Network tiers run on mainnet only.
package token

import "github.com/brojonat/lumen/service/ledger"

// Cluster names a Solana deployment environment. Each cluster has an
// independent token-address space; only the native mint is shared.
type Cluster string

const (
	ClusterMainnet Cluster = "mainnet"
	ClusterDevnet  Cluster = "devnet"
	ClusterTestnet Cluster = "testnet"
)

var native = ledger.Token{
	Mint:     ledger.NativeMint,
	Symbol:   "SOL",
	Name:     "Solana",
	Decimals: 9,
}

// mainnetTokens is the static mainnet registry.
var mainnetTokens = map[string]ledger.Token{
	ledger.NativeMint: native,
	"EPjFWdd5AufqSSqeM2qN1xzybapC8G4wEGGkZwyTDt1v": {Mint: "EPjFWdd5AufqSSqeM2qN1xzybapC8G4wEGGkZwyTDt1v", Symbol: "USDC", Name: "USD Coin", Decimals: 6},
	"Es9vMFrzaCERmJfrF4H2FYD4KCoNkY11McCe8BenwNYB": {Mint: "Es9vMFrzaCERmJfrF4H2FYD4KCoNkY11McCe8BenwNYB", Symbol: "USDT", Name: "Tether USD", Decimals: 6},
	"DezXAZ8z7PnrnRJjz3wXBoRgixCa6xjnB7YaB1pPB263": {Mint: "DezXAZ8z7PnrnRJjz3wXBoRgixCa6xjnB7YaB1pPB263", Symbol: "BONK", Name: "Bonk", Decimals: 5},
	"JUPyiwrYJFskUPiHa7hkeR8VUtAeFoSYbKedZNsDvCN":  {Mint: "JUPyiwrYJFskUPiHa7hkeR8VUtAeFoSYbKedZNsDvCN", Symbol: "JUP", Name: "Jupiter", Decimals: 6},
	"mSoLzYCxHdYgdzU16g5QSh3i5K3z3KZK7ytfqcJm7So":  {Mint: "mSoLzYCxHdYgdzU16g5QSh3i5K3z3KZK7ytfqcJm7So", Symbol: "mSOL", Name: "Marinade staked SOL", Decimals: 9},
	"J1toso1uCk3RLmjorhTtrVwY9HJ7X8V9yYac6Y7kGCPn": {Mint: "J1toso1uCk3RLmjorhTtrVwY9HJ7X8V9yYac6Y7kGCPn", Symbol: "jitoSOL", Name: "Jito staked SOL", Decimals: 9},
}

// devnetTokens holds the devnet registry. Stablecoin mints differ from
// mainnet and must not be conflated with it.
var devnetTokens = map[string]ledger.Token{
	ledger.NativeMint: native,
	"4zMMC9srt5Ri5X14GAgXhaHii3GnPAEERYPJgZJDncDU": {Mint: "4zMMC9srt5Ri5X14GAgXhaHii3GnPAEERYPJgZJDncDU", Symbol: "USDC", Name: "USD Coin (devnet)", Decimals: 6},
}

var testnetTokens = map[string]ledger.Token{
	ledger.NativeMint: native,
	"CpMah17kQEL2wqyMKt3mZBdTnZbkbfx4nqmQMFDP5vwp": {Mint: "CpMah17kQEL2wqyMKt3mZBdTnZbkbfx4nqmQMFDP5vwp", Symbol: "USDC", Name: "USD Coin (testnet)", Decimals: 6},
}

// registryFor returns the static table for a cluster. Unknown cluster
// names get an empty table rather than an error.
func registryFor(c Cluster) map[string]ledger.Token {
	switch c {
	case ClusterMainnet:
		return mainnetTokens
	case ClusterDevnet:
		return devnetTokens
	case ClusterTestnet:
		return testnetTokens
	default:
		return map[string]ledger.Token{}
	}
}
