// Package classify turns a transaction's ledger legs into exactly one
// human-meaningful classification. Classifiers are small stateless rules
// held in a fixed priority order; the first one that matches wins, and a
// catch-all guarantees every transaction is classified.
package classify

import (
	"log/slog"

	"github.com/brojonat/lumen/service/ledger"
)

// Type is the coarse classification label assigned to a transaction.
type Type string

const (
	TypeSwap            Type = "swap"
	TypeTransfer        Type = "transfer"
	TypeBridgeIn        Type = "bridge_in"
	TypeBridgeOut       Type = "bridge_out"
	TypeNFTMint         Type = "nft_mint"
	TypeAirdrop         Type = "airdrop"
	TypeStaking         Type = "staking"
	TypePrivacyDeposit  Type = "privacy_deposit"
	TypePrivacyWithdraw Type = "privacy_withdraw"
	TypeFeeOnly         Type = "fee_only"
	TypeUnknown         Type = "unknown"
)

// Result is the single classification assigned to one transaction.
// Confidence is a fixed, classifier-assigned score in [0,1], never
// computed from transaction data.
type Result struct {
	Type          Type
	PrimaryAmount *ledger.Amount
	Sender        string
	Receiver      string
	Confidence    float64
	IsRelevant    bool
	Metadata      map[string]string
}

// Classifier is one pattern matcher over legs and transaction metadata.
// A nil result means "no match"; classifiers never return errors, and an
// unrecognized pattern simply falls through to the next classifier.
// Classifiers hold no mutable state, so the declared pipeline order is
// the only coupling between them.
type Classifier interface {
	Name() string
	Classify(wallet string, legs []ledger.Leg, tx *ledger.Transaction) *Result
}

// Pipeline dispatches over an ordered set of classifiers, most specific
// first. It always terminates with exactly one classification because the
// final catch-all never declines.
type Pipeline struct {
	classifiers []Classifier
	logger      *slog.Logger
}

// NewPipeline builds the default pipeline. Order is explicit and declared
// here, never inferred at runtime: the narrow, protocol-gated rules run
// before the generic ones, and unknownClassifier is always last.
func NewPipeline(logger *slog.Logger) *Pipeline {
	return &Pipeline{
		logger: logger,
		classifiers: []Classifier{
			feeOnlyClassifier{},
			bridgeClassifier{},
			privacyClassifier{},
			swapClassifier{},
			stakingClassifier{},
			nftMintClassifier{},
			airdropClassifier{},
			transferClassifier{},
			unknownClassifier{},
		},
	}
}

// Classify runs the pipeline for the wallet under analysis and returns
// the first non-nil result. It never returns a zero Result.
func (p *Pipeline) Classify(wallet string, legs []ledger.Leg, tx *ledger.Transaction) Result {
	for _, c := range p.classifiers {
		if res := c.Classify(wallet, legs, tx); res != nil {
			p.logger.Debug("transaction classified",
				"signature", tx.Signature,
				"classifier", c.Name(),
				"type", res.Type,
				"confidence", res.Confidence,
			)
			return *res
		}
	}
	// Unreachable: the catch-all never declines. Kept so the pipeline
	// invariant survives a misconfigured classifier list.
	return Result{Type: TypeUnknown, Confidence: 0, Metadata: map[string]string{}}
}
