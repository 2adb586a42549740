package classify

import (
	"strconv"

	"github.com/brojonat/lumen/service/ledger"
	"github.com/brojonat/lumen/service/protocol"
)

// nonFee filters out fee legs.
func nonFee(legs []ledger.Leg) []ledger.Leg {
	out := make([]ledger.Leg, 0, len(legs))
	for _, l := range legs {
		if l.Role != ledger.RoleFee {
			out = append(out, l)
		}
	}
	return out
}

func bySide(legs []ledger.Leg, side ledger.Side) []ledger.Leg {
	out := make([]ledger.Leg, 0, len(legs))
	for _, l := range legs {
		if l.Side == side {
			out = append(out, l)
		}
	}
	return out
}

// dominantLeg picks the primary leg among candidates: a unique-asset
// (NFT) leg is preferred over any fungible one; among equals, the
// largest UI amount wins.
func dominantLeg(legs []ledger.Leg) *ledger.Leg {
	var best *ledger.Leg
	for i := range legs {
		l := &legs[i]
		if best == nil {
			best = l
			continue
		}
		switch {
		case l.Amount.Token.IsNFT() && !best.Amount.Token.IsNFT():
			best = l
		case best.Amount.Token.IsNFT() && !l.Amount.Token.IsNFT():
			// keep best
		case l.Amount.UI > best.Amount.UI:
			best = l
		}
	}
	return best
}

// counterparty finds the first non-wallet leg on the given side, used to
// derive sender/receiver for transfers and airdrops.
func counterparty(legs []ledger.Leg, wallet string, side ledger.Side) string {
	for _, l := range legs {
		if l.Account != wallet && l.Side == side {
			return l.Account
		}
	}
	return ""
}

func inbound(role ledger.Role) bool {
	return role == ledger.RoleReceived || role == ledger.RoleProtocolWithdraw
}

// feeOnlyClassifier matches transactions where the wallet did nothing but
// pay the network fee.
type feeOnlyClassifier struct{}

func (feeOnlyClassifier) Name() string { return "fee_only" }

func (feeOnlyClassifier) Classify(wallet string, legs []ledger.Leg, tx *ledger.Transaction) *Result {
	mine := ledger.WalletLegs(legs, wallet)
	if len(mine) == 0 {
		return nil
	}
	for _, l := range mine {
		if l.Role != ledger.RoleFee {
			return nil
		}
	}
	return &Result{
		Type:          TypeFeeOnly,
		PrimaryAmount: &mine[0].Amount,
		Sender:        mine[0].Account,
		Confidence:    0.95,
		IsRelevant:    false,
		Metadata:      map[string]string{"fee_type": "network"},
	}
}

// bridgeClassifier matches cross-chain moves. It is gated on a detected
// bridge protocol: legs that superficially resemble a bridge but carry no
// recognized bridge program must not be classified as one.
type bridgeClassifier struct{}

func (bridgeClassifier) Name() string { return "bridge" }

func (bridgeClassifier) Classify(wallet string, legs []ledger.Leg, tx *ledger.Transaction) *Result {
	if tx.Protocol == nil || !protocol.IsBridge(tx.Protocol.ID) {
		return nil
	}
	mine := nonFee(ledger.WalletLegs(legs, wallet))
	if len(mine) == 0 {
		return nil
	}

	primary := dominantLeg(mine)
	typ := TypeBridgeOut
	if inbound(primary.Role) {
		typ = TypeBridgeIn
	}

	res := &Result{
		Type:          typ,
		PrimaryAmount: &primary.Amount,
		Confidence:    0.9,
		IsRelevant:    true,
		Metadata:      map[string]string{"bridge_protocol": tx.Protocol.ID},
	}
	if typ == TypeBridgeOut {
		res.Sender = primary.Account
	} else {
		res.Receiver = primary.Account
	}
	return res
}

// privacyClassifier matches deposits into and withdrawals from privacy
// protocols, gated on the detected protocol.
type privacyClassifier struct{}

func (privacyClassifier) Name() string { return "privacy" }

func (privacyClassifier) Classify(wallet string, legs []ledger.Leg, tx *ledger.Transaction) *Result {
	if tx.Protocol == nil || !protocol.IsPrivacy(tx.Protocol.ID) {
		return nil
	}
	mine := nonFee(ledger.WalletLegs(legs, wallet))
	if len(mine) == 0 {
		return nil
	}

	primary := dominantLeg(mine)
	typ := TypePrivacyDeposit
	if inbound(primary.Role) {
		typ = TypePrivacyWithdraw
	}

	res := &Result{
		Type:          typ,
		PrimaryAmount: &primary.Amount,
		Confidence:    0.9,
		IsRelevant:    true,
		Metadata:      map[string]string{"privacy_protocol": tx.Protocol.ID},
	}
	if typ == TypePrivacyDeposit {
		res.Sender = primary.Account
	} else {
		res.Receiver = primary.Account
	}
	return res
}

// swapClassifier matches trades: a detected DEX or aggregator plus the
// wallet giving up one asset and receiving a different one.
type swapClassifier struct{}

func (swapClassifier) Name() string { return "swap" }

func (swapClassifier) Classify(wallet string, legs []ledger.Leg, tx *ledger.Transaction) *Result {
	if tx.Protocol == nil || !protocol.IsSwap(tx.Protocol.ID) {
		return nil
	}
	mine := nonFee(ledger.WalletLegs(legs, wallet))
	debits := bySide(mine, ledger.SideDebit)
	credits := bySide(mine, ledger.SideCredit)
	if len(debits) == 0 || len(credits) == 0 {
		return nil
	}

	sold := dominantLeg(debits)
	bought := dominantLeg(credits)
	if sold.Amount.Token.Mint == bought.Amount.Token.Mint {
		return nil
	}

	return &Result{
		Type:          TypeSwap,
		PrimaryAmount: &bought.Amount,
		Sender:        wallet,
		Receiver:      wallet,
		Confidence:    0.9,
		IsRelevant:    true,
		Metadata: map[string]string{
			"swap_protocol": tx.Protocol.ID,
			"sold_mint":     sold.Amount.Token.Mint,
			"sold_amount":   strconv.FormatUint(sold.Amount.Raw, 10),
		},
	}
}

// stakingClassifier matches stake and unstake flows against recognized
// staking programs.
type stakingClassifier struct{}

func (stakingClassifier) Name() string { return "staking" }

func (stakingClassifier) Classify(wallet string, legs []ledger.Leg, tx *ledger.Transaction) *Result {
	if tx.Protocol == nil || !protocol.IsStaking(tx.Protocol.ID) {
		return nil
	}
	mine := nonFee(ledger.WalletLegs(legs, wallet))
	if len(mine) == 0 {
		return nil
	}

	primary := dominantLeg(mine)
	direction := "stake"
	if inbound(primary.Role) {
		direction = "unstake"
	}

	return &Result{
		Type:          TypeStaking,
		PrimaryAmount: &primary.Amount,
		Sender:        primary.Account,
		Confidence:    0.85,
		IsRelevant:    true,
		Metadata: map[string]string{
			"staking_protocol": tx.Protocol.ID,
			"direction":        direction,
		},
	}
}

// nftMintClassifier matches the wallet receiving a freshly minted NFT
// while paying for it, or any NFT credit through mint machinery.
type nftMintClassifier struct{}

func (nftMintClassifier) Name() string { return "nft_mint" }

func (nftMintClassifier) Classify(wallet string, legs []ledger.Leg, tx *ledger.Transaction) *Result {
	mine := nonFee(ledger.WalletLegs(legs, wallet))

	var nft *ledger.Leg
	for i := range mine {
		if mine[i].Side == ledger.SideCredit && mine[i].Amount.Token.IsNFT() {
			nft = &mine[i]
			break
		}
	}
	if nft == nil {
		return nil
	}

	viaMachinery := tx.Protocol != nil && protocol.IsNFTMint(tx.Protocol.ID)
	paid := len(bySide(mine, ledger.SideDebit)) > 0
	if !viaMachinery && !paid {
		return nil
	}

	md := map[string]string{"mint": nft.Amount.Token.Mint}
	if tx.Protocol != nil {
		md["mint_protocol"] = tx.Protocol.ID
	}
	return &Result{
		Type:          TypeNFTMint,
		PrimaryAmount: &nft.Amount,
		Receiver:      nft.Account,
		Confidence:    0.85,
		IsRelevant:    true,
		Metadata:      md,
	}
}

// airdropClassifier matches unsolicited credits: the wallet receives
// assets, gives nothing up, and did not even pay the network fee.
type airdropClassifier struct{}

func (airdropClassifier) Name() string { return "airdrop" }

func (airdropClassifier) Classify(wallet string, legs []ledger.Leg, tx *ledger.Transaction) *Result {
	mine := ledger.WalletLegs(legs, wallet)
	credits := 0
	for _, l := range mine {
		switch {
		case l.Role == ledger.RoleFee:
			// Paying the fee means the wallet initiated this.
			return nil
		case l.Side == ledger.SideDebit:
			return nil
		default:
			credits++
		}
	}
	if credits == 0 {
		return nil
	}

	primary := dominantLeg(mine)
	return &Result{
		Type:          TypeAirdrop,
		PrimaryAmount: &primary.Amount,
		Sender:        counterparty(legs, wallet, ledger.SideDebit),
		Receiver:      primary.Account,
		Confidence:    0.7,
		IsRelevant:    true,
		Metadata:      map[string]string{},
	}
}

// transferClassifier matches plain one-directional movements: every
// non-fee wallet leg on a single side.
type transferClassifier struct{}

func (transferClassifier) Name() string { return "transfer" }

func (transferClassifier) Classify(wallet string, legs []ledger.Leg, tx *ledger.Transaction) *Result {
	mine := nonFee(ledger.WalletLegs(legs, wallet))
	if len(mine) == 0 {
		return nil
	}
	side := mine[0].Side
	for _, l := range mine {
		if l.Side != side {
			return nil
		}
	}

	primary := dominantLeg(mine)
	res := &Result{
		Type:          TypeTransfer,
		PrimaryAmount: &primary.Amount,
		Confidence:    0.8,
		IsRelevant:    true,
		Metadata:      map[string]string{},
	}
	if side == ledger.SideDebit {
		res.Sender = primary.Account
		res.Receiver = counterparty(legs, wallet, ledger.SideCredit)
		res.Metadata["direction"] = "sent"
	} else {
		res.Sender = counterparty(legs, wallet, ledger.SideDebit)
		res.Receiver = primary.Account
		res.Metadata["direction"] = "received"
	}
	return res
}

// unknownClassifier is the catch-all. It never declines, which is what
// guarantees the pipeline classifies every transaction exactly once.
type unknownClassifier struct{}

func (unknownClassifier) Name() string { return "unknown" }

func (unknownClassifier) Classify(wallet string, legs []ledger.Leg, tx *ledger.Transaction) *Result {
	mine := nonFee(ledger.WalletLegs(legs, wallet))
	res := &Result{
		Type:       TypeUnknown,
		Confidence: 0.1,
		IsRelevant: len(mine) > 0,
		Metadata:   map[string]string{},
	}
	if primary := dominantLeg(mine); primary != nil {
		res.PrimaryAmount = &primary.Amount
	}
	return res
}
