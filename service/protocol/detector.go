// Package protocol maps the program identifiers touched by a transaction
// to a known protocol identity.
package protocol

import "github.com/brojonat/lumen/service/ledger"

// Class buckets known programs by the kind of service they provide. It
// drives both detection priority and the classifier gates (bridge, swap,
// staking, privacy).
type Class int

const (
	ClassBridge Class = iota
	ClassPrivacy
	ClassSwap
	ClassStaking
	ClassNFTMint
	ClassToken
)

type entry struct {
	program string
	class   Class
	info    ledger.ProtocolInfo
}

// Well-known program IDs.
const (
	SystemProgramID    = "11111111111111111111111111111111"
	TokenProgramID     = "TokenkegQfeZyiNwAJbNbGKPFXCWuBvf9Ss623VQ5DA"
	Token2022ProgramID = "TokenzQdBNbLqP5VEhdkAS6EPFLC1PHnBqCXEpPxuEb"
)

// signatures is the static program table, declared in priority order:
// bridges and privacy protocols outrank aggregators and DEXes, which
// outrank staking, NFT mint machinery, and finally the plain token
// programs. When multiple known programs appear in one transaction the
// first table entry that matches wins; ties within a class break by
// declaration order. Unknown program IDs are silently ignored.
var signatures = []entry{
	// Bridges
	{"worm2ZoG2kUd4vFXhvjh93UUH596ayRfgQ2MgjNMTth", ClassBridge, ledger.ProtocolInfo{ID: "wormhole", Name: "Wormhole"}},
	{"wormDTUJ6AWPNvk59vGQbDvGJmqbDTdgWgAqcLBCgUb", ClassBridge, ledger.ProtocolInfo{ID: "portal", Name: "Portal Token Bridge"}},
	{"src5qyZHqTqecJV4aY6Cb6zDZLMDzrDKKezs22MPHr4", ClassBridge, ledger.ProtocolInfo{ID: "debridge", Name: "deBridge"}},
	{"BrdgN2RPzEMWF96ZbnnJaUtQDQx7VRXYaHHbYCBGDm2", ClassBridge, ledger.ProtocolInfo{ID: "allbridge", Name: "Allbridge"}},
	{"dgodsXmtDGRRYUBcrSZZE6hZpEVkRM5WemMfbka7oFp", ClassBridge, ledger.ProtocolInfo{ID: "degods-bridge", Name: "DeGods Bridge"}},

	// Privacy protocols
	{"E1usivf32KcEZrNTDcRqzTf8Wq1MCRV2d57Aqw1HcFBt", ClassPrivacy, ledger.ProtocolInfo{ID: "elusiv", Name: "Elusiv"}},
	{"1ightUpNvHvpZEPKeyLME1d6DDguMAC9XEQsHn1nfiC", ClassPrivacy, ledger.ProtocolInfo{ID: "light-protocol", Name: "Light Protocol"}},

	// Swap aggregators and DEXes
	{"JUP6LkbZbjS1jKKwapdHNy74zcZ3tLUZoi5QNyVTaV4", ClassSwap, ledger.ProtocolInfo{ID: "jupiter", Name: "Jupiter Aggregator"}},
	{"675kPX9MHTjS2zt1qfr1NYHuzeLXfQM9H24wFSUt1Mp8", ClassSwap, ledger.ProtocolInfo{ID: "raydium", Name: "Raydium"}},
	{"whirLbMiicVdio4qvUfM5KAg6Ct8VwpYzGff3uctyCc", ClassSwap, ledger.ProtocolInfo{ID: "orca", Name: "Orca Whirlpools"}},
	{"6EF8rrecthR5Dkzon8Nwu78hRvfCKubJ14M5uBEwF6P", ClassSwap, ledger.ProtocolInfo{ID: "pumpfun", Name: "Pump.fun"}},

	// Staking
	{"MarBmsSgKXdrN1egZf5sqe1TMai9K1rChYNDJgjq7aD", ClassStaking, ledger.ProtocolInfo{ID: "marinade", Name: "Marinade Finance"}},
	{"CrX7kMhLC3cSsXJdT7JDgqrRVWGnUpX3gfEfxxU2NVLi", ClassStaking, ledger.ProtocolInfo{ID: "lido", Name: "Lido on Solana"}},
	{"Jito4APyf642JPZPx3hGc6WWJ8zPKtRbRs4P815Awbb", ClassStaking, ledger.ProtocolInfo{ID: "jito", Name: "Jito"}},
	{"Stake11111111111111111111111111111111111111", ClassStaking, ledger.ProtocolInfo{ID: "stake-program", Name: "Solana Staking"}},

	// NFT mint machinery
	{"CndyV3LdqHUfDLmE5naZjVN8rBZz4tqhdefbAnjHG3JR", ClassNFTMint, ledger.ProtocolInfo{ID: "candy-machine", Name: "Metaplex Candy Machine"}},
	{"metaqbxxUerdq28cj1RbAWkYQm3ybzjb6a8bt518x1s", ClassNFTMint, ledger.ProtocolInfo{ID: "metaplex", Name: "Metaplex Token Metadata"}},

	// Plain token programs, lowest priority
	{TokenProgramID, ClassToken, ledger.ProtocolInfo{ID: "spl-token", Name: "SPL Token Program"}},
	{Token2022ProgramID, ClassToken, ledger.ProtocolInfo{ID: "token-2022", Name: "Token Extensions Program"}},
}

var byID = func() map[string]entry {
	m := make(map[string]entry, len(signatures))
	for _, e := range signatures {
		m[e.info.ID] = e
	}
	return m
}()

// Detect resolves the set of program identifiers invoked by a transaction
// to a single protocol identity, or nil if none of them are known.
func Detect(programIDs []string) *ledger.ProtocolInfo {
	present := make(map[string]struct{}, len(programIDs))
	for _, id := range programIDs {
		present[id] = struct{}{}
	}
	for _, e := range signatures {
		if _, ok := present[e.program]; ok {
			info := e.info
			return &info
		}
	}
	return nil
}

// classOf looks a detected protocol ID back up in the table.
func classOf(protocolID string) (Class, bool) {
	e, ok := byID[protocolID]
	return e.class, ok
}

// IsBridge reports whether the protocol ID belongs to a recognized bridge.
func IsBridge(protocolID string) bool {
	c, ok := classOf(protocolID)
	return ok && c == ClassBridge
}

// IsPrivacy reports whether the protocol ID belongs to a privacy protocol.
func IsPrivacy(protocolID string) bool {
	c, ok := classOf(protocolID)
	return ok && c == ClassPrivacy
}

// IsSwap reports whether the protocol ID belongs to a DEX or aggregator.
func IsSwap(protocolID string) bool {
	c, ok := classOf(protocolID)
	return ok && c == ClassSwap
}

// IsStaking reports whether the protocol ID belongs to a staking service.
func IsStaking(protocolID string) bool {
	c, ok := classOf(protocolID)
	return ok && c == ClassStaking
}

// IsNFTMint reports whether the protocol ID belongs to NFT mint machinery.
func IsNFTMint(protocolID string) bool {
	c, ok := classOf(protocolID)
	return ok && c == ClassNFTMint
}
