package solana

// WalletBalance is a point-in-time snapshot of a wallet's holdings.
// There is no cross-call consistency guarantee: each fetch observes
// whatever state the backing node currently reports.
type WalletBalance struct {
	Address  string
	Lamports uint64
	Tokens   []TokenHolding
}

// TokenHolding is one SPL token balance, identity unresolved. The token
// registry turns the mint into symbol/name/decimals.
type TokenHolding struct {
	Mint    string
	Account string
	Amount  uint64
}
