package ledger

import "sort"

// MapLegs decomposes a transaction's balance changes into a signed,
// per-account ledger. The wallet argument is the wallet under analysis;
// its legs get wallet-perspective roles (sent/received, or the protocol
// roles for changes flagged ViaProtocol).
//
// For every change, delta = post - pre. The fee payer's native SOL delta
// is split into a dedicated fee leg and a separate leg for the
// programmatic remainder, so a fee-only transaction produces exactly one
// fee leg. Zero deltas are dropped. Changes are never collapsed: two rows
// for the same account/asset yield two legs, preserving per-instruction
// provenance. Output order is stable: account index, then mint.
func MapLegs(tx *Transaction, wallet string) []Leg {
	legs := make([]Leg, 0, len(tx.Balances)+1)

	feeSplit := false
	for _, ch := range tx.Balances {
		delta := int64(ch.Post) - int64(ch.Pre)

		// Split the network fee out of the fee payer's first native
		// change. The remainder, if any, is the programmatic transfer.
		if !feeSplit && tx.Fee > 0 && ch.Account == tx.FeePayer && ch.Mint == NativeMint {
			feeSplit = true
			legs = append(legs, Leg{
				Account:      ch.Account,
				AccountIndex: ch.AccountIndex,
				Side:         SideDebit,
				Role:         RoleFee,
				Amount:       NewAmount(nativeToken(ch.Decimals), tx.Fee),
			})
			delta += int64(tx.Fee)
		}

		if delta == 0 {
			continue
		}
		legs = append(legs, makeLeg(ch, delta, wallet))
	}

	sort.SliceStable(legs, func(i, j int) bool {
		if legs[i].AccountIndex != legs[j].AccountIndex {
			return legs[i].AccountIndex < legs[j].AccountIndex
		}
		return legs[i].Amount.Token.Mint < legs[j].Amount.Token.Mint
	})
	return legs
}

// WalletLegs filters legs down to those belonging to the given wallet.
// Classifiers restrict their view to this subset; other accounts' legs
// are context only.
func WalletLegs(legs []Leg, wallet string) []Leg {
	out := make([]Leg, 0, len(legs))
	for _, l := range legs {
		if l.Account == wallet {
			out = append(out, l)
		}
	}
	return out
}

func makeLeg(ch BalanceChange, delta int64, wallet string) Leg {
	side := SideCredit
	raw := uint64(delta)
	if delta < 0 {
		side = SideDebit
		raw = uint64(-delta)
	}

	role := RoleReceived
	if side == SideDebit {
		role = RoleSent
	}
	if ch.ViaProtocol && ch.Account == wallet {
		// A wallet debit through a protocol is a deposit into it, a
		// credit is a withdrawal from it.
		if side == SideDebit {
			role = RoleProtocolDeposit
		} else {
			role = RoleProtocolWithdraw
		}
	}

	tok := Token{Mint: ch.Mint, Decimals: ch.Decimals}
	if ch.Mint == NativeMint {
		tok = nativeToken(ch.Decimals)
	}
	return Leg{
		Account:      ch.Account,
		AccountIndex: ch.AccountIndex,
		Side:         side,
		Role:         role,
		Amount:       NewAmount(tok, raw),
	}
}

func nativeToken(decimals uint8) Token {
	if decimals == 0 {
		decimals = NativeDecimals
	}
	return Token{Mint: NativeMint, Symbol: "SOL", Name: "Solana", Decimals: decimals}
}
