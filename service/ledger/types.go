package ledger

import (
	"math"
	"time"
)

// NativeMint is the wrapped-SOL mint address. It identifies native SOL
// movements in balance changes and is the same on every cluster.
const NativeMint = "So11111111111111111111111111111111111111112"

// NativeDecimals is the lamport precision of SOL.
const NativeDecimals = uint8(9)

// Side is the direction of a balance movement from the owning account's
// point of view.
type Side string

const (
	SideDebit  Side = "debit"
	SideCredit Side = "credit"
)

// Role describes what a movement represents within the transaction.
type Role string

const (
	RoleFee              Role = "fee"
	RoleSent             Role = "sent"
	RoleReceived         Role = "received"
	RoleProtocolDeposit  Role = "protocol_deposit"
	RoleProtocolWithdraw Role = "protocol_withdraw"
)

// Token identifies an asset. NFTs carry decimals=0 and a unique name in
// place of a fungible symbol.
type Token struct {
	Mint     string
	Symbol   string
	Name     string
	Decimals uint8
}

// IsNFT reports whether the token looks like a non-fungible asset:
// zero decimals and a unique name in place of a fungible symbol.
func (t Token) IsNFT() bool {
	return t.Decimals == 0 && t.Name != "" && t.Symbol == ""
}

// Amount is a token quantity in both raw (smallest unit) and UI form.
type Amount struct {
	Token Token
	Raw   uint64
	UI    float64
}

// NewAmount builds an Amount, deriving the UI value from the token's
// decimals.
func NewAmount(tok Token, raw uint64) Amount {
	return Amount{
		Token: tok,
		Raw:   raw,
		UI:    float64(raw) / math.Pow10(int(tok.Decimals)),
	}
}

// Leg is one signed balance movement for one account/asset within one
// transaction. Legs are created fresh per transaction and owned by the
// classification call that consumes them.
type Leg struct {
	Account      string
	AccountIndex int
	Side         Side
	Role         Role
	Amount       Amount
}

// SignedRaw returns the raw amount with debit legs negated, which is what
// the ledger-closure invariant sums over.
func (l Leg) SignedRaw() int64 {
	if l.Side == SideDebit {
		return -int64(l.Amount.Raw)
	}
	return int64(l.Amount.Raw)
}

// ProtocolInfo identifies the on-chain program or service that dominated a
// transaction.
type ProtocolInfo struct {
	ID   string
	Name string
}

// BalanceChange is one observed pre/post balance pair for an account/asset.
// Multiple changes for the same account/asset may appear in one transaction
// (inner instructions contribute their own rows); the mapper preserves them
// as distinct legs.
type BalanceChange struct {
	Account      string
	AccountIndex int
	Mint         string
	Decimals     uint8
	Pre          uint64
	Post         uint64

	// ViaProtocol marks a change executed through a protocol program's
	// accounts (vault deposits and withdrawals) rather than a plain
	// wallet-to-wallet movement.
	ViaProtocol bool
}

// Transaction is the parsed, chain-agnostic view of one on-chain
// transaction: enough metadata to classify it, plus the raw balance
// changes the leg mapper decomposes.
type Transaction struct {
	Signature string
	Slot      uint64
	BlockTime time.Time
	Err       *string // nil if the transaction succeeded

	Fee      uint64 // network fee in lamports
	FeePayer string

	// ProgramIDs is the union of program identifiers invoked at top level
	// and via inner (CPI) calls.
	ProgramIDs []string

	// Protocol is the detected protocol identity, set by the caller after
	// running the protocol detector. Nil when no known program matched.
	Protocol *ProtocolInfo

	Memo *string

	Balances []BalanceChange
}

// Failed reports whether the transaction errored on chain.
func (t *Transaction) Failed() bool {
	return t.Err != nil
}
