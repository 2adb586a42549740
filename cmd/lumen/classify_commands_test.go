package main

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/brojonat/lumen/service/classify"
	"github.com/brojonat/lumen/service/indexer"
	"github.com/brojonat/lumen/service/ledger"
)

func sampleClassified() indexer.ClassifiedTransaction {
	usdc := ledger.Token{Mint: "EPjFWdd5AufqSSqeM2qN1xzybapC8G4wEGGkZwyTDt1v", Symbol: "USDC", Name: "USD Coin", Decimals: 6}
	amount := ledger.NewAmount(usdc, 42_000_000)
	return indexer.ClassifiedTransaction{
		Tx: &ledger.Transaction{
			Signature: "5sig",
			Slot:      12345,
			BlockTime: time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC),
			Protocol:  &ledger.ProtocolInfo{ID: "jupiter", Name: "Jupiter"},
		},
		Classification: classify.Result{
			Type:          classify.TypeSwap,
			PrimaryAmount: &amount,
			Confidence:    0.9,
			IsRelevant:    true,
			Metadata:      map[string]string{"sold_mint": ledger.NativeMint},
		},
	}
}

func TestCompileJQFilters_BadExpression(t *testing.T) {
	_, err := compileJQFilters([]string{".classification.type =="})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "jq filter")
}

func TestMatchesJQFilters(t *testing.T) {
	txn := toTransactionJSON(sampleClassified())

	tests := []struct {
		name    string
		filters []string
		want    bool
	}{
		{name: "no filters matches everything", filters: nil, want: true},
		{name: "type match", filters: []string{`.classification.type == "swap"`}, want: true},
		{name: "type mismatch", filters: []string{`.classification.type == "transfer"`}, want: false},
		{name: "all filters must match", filters: []string{`.classification.type == "swap"`, `.slot > 99999`}, want: false},
		{name: "numeric comparison", filters: []string{`.classification.confidence >= 0.9`}, want: true},
		{name: "nested amount", filters: []string{`.classification.primary_amount.symbol == "USDC"`}, want: true},
		{name: "metadata lookup", filters: []string{`.classification.metadata.sold_mint != null`}, want: true},
		{name: "missing field is falsy", filters: []string{`.no_such_field`}, want: false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			codes, err := compileJQFilters(tt.filters)
			require.NoError(t, err)
			got, err := matchesJQFilters(codes, txn)
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestToTransactionJSON(t *testing.T) {
	out := toTransactionJSON(sampleClassified())

	assert.Equal(t, "5sig", out.Signature)
	assert.Equal(t, uint64(12345), out.Slot)
	assert.Equal(t, "2025-06-01T12:00:00Z", out.BlockTime)
	assert.Equal(t, "Jupiter", out.Protocol)
	assert.False(t, out.Failed)
	assert.Equal(t, "swap", out.Classification.Type)
	require.NotNil(t, out.Classification.PrimaryAmount)
	assert.Equal(t, 42.0, out.Classification.PrimaryAmount.UI)
}

func TestIsTruthy(t *testing.T) {
	assert.False(t, isTruthy(nil))
	assert.False(t, isTruthy(false))
	assert.True(t, isTruthy(true))
	assert.True(t, isTruthy(0))
	assert.True(t, isTruthy(""))
	assert.True(t, isTruthy(map[string]interface{}{}))
}
