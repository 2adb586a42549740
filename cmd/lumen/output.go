package main

import (
	"time"

	"github.com/brojonat/lumen/service/classify"
	"github.com/brojonat/lumen/service/indexer"
	"github.com/brojonat/lumen/service/ledger"
)

// JSON output shapes. The service packages keep their domain types free of
// serialization concerns, so the wire representation lives here with the
// command that emits it.

type amountJSON struct {
	Mint     string  `json:"mint"`
	Symbol   string  `json:"symbol"`
	Name     string  `json:"name,omitempty"`
	Decimals uint8   `json:"decimals"`
	Raw      uint64  `json:"raw"`
	UI       float64 `json:"ui"`
}

type classificationJSON struct {
	Type          string            `json:"type"`
	Confidence    float64           `json:"confidence"`
	IsRelevant    bool              `json:"is_relevant"`
	PrimaryAmount *amountJSON       `json:"primary_amount,omitempty"`
	Sender        string            `json:"sender,omitempty"`
	Receiver      string            `json:"receiver,omitempty"`
	Metadata      map[string]string `json:"metadata,omitempty"`
}

type transactionJSON struct {
	Signature      string             `json:"signature"`
	Slot           uint64             `json:"slot"`
	BlockTime      string             `json:"block_time,omitempty"`
	Failed         bool               `json:"failed"`
	Protocol       string             `json:"protocol,omitempty"`
	Memo           string             `json:"memo,omitempty"`
	Classification classificationJSON `json:"classification"`
}

type balanceJSON struct {
	Address string       `json:"address"`
	SOL     amountJSON   `json:"sol"`
	Tokens  []amountJSON `json:"tokens"`
}

type tokenJSON struct {
	Mint     string `json:"mint"`
	Symbol   string `json:"symbol"`
	Name     string `json:"name"`
	Decimals uint8  `json:"decimals"`
	NFT      bool   `json:"nft"`
}

func toAmountJSON(a ledger.Amount) amountJSON {
	return amountJSON{
		Mint:     a.Token.Mint,
		Symbol:   a.Token.Symbol,
		Name:     a.Token.Name,
		Decimals: a.Token.Decimals,
		Raw:      a.Raw,
		UI:       a.UI,
	}
}

func toClassificationJSON(r classify.Result) classificationJSON {
	out := classificationJSON{
		Type:       string(r.Type),
		Confidence: r.Confidence,
		IsRelevant: r.IsRelevant,
		Sender:     r.Sender,
		Receiver:   r.Receiver,
		Metadata:   r.Metadata,
	}
	if r.PrimaryAmount != nil {
		a := toAmountJSON(*r.PrimaryAmount)
		out.PrimaryAmount = &a
	}
	return out
}

func toTransactionJSON(ct indexer.ClassifiedTransaction) transactionJSON {
	out := transactionJSON{
		Signature:      ct.Tx.Signature,
		Slot:           ct.Tx.Slot,
		Failed:         ct.Tx.Failed(),
		Classification: toClassificationJSON(ct.Classification),
	}
	if ct.Tx.Memo != nil {
		out.Memo = *ct.Tx.Memo
	}
	if !ct.Tx.BlockTime.IsZero() {
		out.BlockTime = ct.Tx.BlockTime.UTC().Format(time.RFC3339)
	}
	if ct.Tx.Protocol != nil {
		out.Protocol = ct.Tx.Protocol.Name
	}
	return out
}

func toBalanceJSON(b *indexer.WalletBalance) balanceJSON {
	out := balanceJSON{
		Address: b.Address,
		SOL:     toAmountJSON(b.SOL),
		Tokens:  make([]amountJSON, 0, len(b.Tokens)),
	}
	for _, t := range b.Tokens {
		out.Tokens = append(out.Tokens, toAmountJSON(t))
	}
	return out
}

func toTokenJSON(t ledger.Token) tokenJSON {
	return tokenJSON{
		Mint:     t.Mint,
		Symbol:   t.Symbol,
		Name:     t.Name,
		Decimals: t.Decimals,
		NFT:      t.IsNFT(),
	}
}
