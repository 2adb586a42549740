package solana

import (
	"encoding/json"
	"testing"
	"time"

	"github.com/gagliardetto/solana-go"
	"github.com/gagliardetto/solana-go/rpc"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/brojonat/lumen/service/ledger"
)

// makeTransactionEnvelope creates a TransactionResultEnvelope from a
// Transaction. The envelope has unexported fields, so we round-trip
// through JSON.
func makeTransactionEnvelope(t *testing.T, tx *solana.Transaction) *rpc.TransactionResultEnvelope {
	t.Helper()

	txJSON, err := json.Marshal(tx)
	require.NoError(t, err)

	var temp struct {
		Transaction json.RawMessage `json:"transaction"`
	}
	temp.Transaction = txJSON
	envelopeJSON, err := json.Marshal(temp)
	require.NoError(t, err)

	var result rpc.GetTransactionResult
	require.NoError(t, json.Unmarshal(envelopeJSON, &result))
	return result.Transaction
}

var (
	walletKey  = solana.MustPublicKeyFromBase58("9xQeWvG816bUx9EPjHmaT23yvVM2ZWbrrpZb9PusVFin")
	counterKey = solana.MustPublicKeyFromBase58("4Nd1mBQtrMJVYVfKf2PJy9NZUZdTAsp7D4xWLs4gDB4T")
	jupiterKey = solana.MustPublicKeyFromBase58("JUP6LkbZbjS1jKKwapdHNy74zcZ3tLUZoi5QNyVTaV4")
	tokenKey   = solana.MustPublicKeyFromBase58("TokenkegQfeZyiNwAJbNbGKPFXCWuBvf9Ss623VQ5DA")
	usdcKey    = solana.MustPublicKeyFromBase58("EPjFWdd5AufqSSqeM2qN1xzybapC8G4wEGGkZwyTDt1v")
)

func testSig(t *testing.T) *rpc.TransactionSignature {
	t.Helper()
	now := solana.UnixTimeSeconds(time.Now().Unix())
	return &rpc.TransactionSignature{
		Signature: solana.MustSignatureFromBase58("5j7s6NiJS3JAkvgkoc18WVAsiSaci2pxB2A6ueCJP4tprA2TFg9wSyTLeYouxPBJEMzJinENTkpA52YStRW5Dia7"),
		Slot:      100,
		BlockTime: &now,
	}
}

func TestParseTransaction_ProgramIDUnionIncludesInnerCalls(t *testing.T) {
	tx := &solana.Transaction{
		Message: solana.Message{
			AccountKeys: []solana.PublicKey{walletKey, counterKey, jupiterKey, tokenKey},
			Instructions: []solana.CompiledInstruction{
				{ProgramIDIndex: 2}, // top-level: jupiter
			},
		},
	}
	meta := &rpc.TransactionMeta{
		Fee: 5000,
		InnerInstructions: []rpc.InnerInstruction{
			{
				Index: 0,
				Instructions: []rpc.CompiledInstruction{
					{ProgramIDIndex: 3}, // CPI into the token program
					{ProgramIDIndex: 2}, // repeated program deduplicated
				},
			},
		},
	}

	result := &rpc.GetTransactionResult{
		Transaction: makeTransactionEnvelope(t, tx),
		Meta:        meta,
	}

	txn, err := parseTransactionFromResult(testSig(t), result)
	require.NoError(t, err)

	assert.Equal(t, []string{jupiterKey.String(), tokenKey.String()}, txn.ProgramIDs)
	assert.Equal(t, walletKey.String(), txn.FeePayer)
	assert.Equal(t, uint64(5000), txn.Fee)
}

func TestParseTransaction_BalanceChanges(t *testing.T) {
	tx := &solana.Transaction{
		Message: solana.Message{
			AccountKeys: []solana.PublicKey{walletKey, counterKey, tokenKey},
			Instructions: []solana.CompiledInstruction{
				{ProgramIDIndex: 2},
			},
		},
	}
	owner := walletKey
	meta := &rpc.TransactionMeta{
		Fee:          5000,
		PreBalances:  []uint64{1_000_005_000, 0, 1},
		PostBalances: []uint64{1_000_000_000, 0, 1},
		PreTokenBalances: []rpc.TokenBalance{
			{
				AccountIndex:  1,
				Mint:          usdcKey,
				Owner:         &owner,
				UiTokenAmount: &rpc.UiTokenAmount{Amount: "250000000", Decimals: 6},
			},
		},
		PostTokenBalances: []rpc.TokenBalance{
			{
				AccountIndex:  1,
				Mint:          usdcKey,
				Owner:         &owner,
				UiTokenAmount: &rpc.UiTokenAmount{Amount: "100000000", Decimals: 6},
			},
		},
	}

	result := &rpc.GetTransactionResult{
		Transaction: makeTransactionEnvelope(t, tx),
		Meta:        meta,
	}

	txn, err := parseTransactionFromResult(testSig(t), result)
	require.NoError(t, err)
	require.Len(t, txn.Balances, 2)

	// Native SOL row for the fee payer.
	assert.Equal(t, ledger.NativeMint, txn.Balances[0].Mint)
	assert.Equal(t, walletKey.String(), txn.Balances[0].Account)
	assert.Equal(t, uint64(1_000_005_000), txn.Balances[0].Pre)

	// Token row attributed to the owner wallet, not the token account.
	assert.Equal(t, usdcKey.String(), txn.Balances[1].Mint)
	assert.Equal(t, walletKey.String(), txn.Balances[1].Account)
	assert.Equal(t, uint64(250_000_000), txn.Balances[1].Pre)
	assert.Equal(t, uint64(100_000_000), txn.Balances[1].Post)
	assert.Equal(t, uint8(6), txn.Balances[1].Decimals)
}

func TestParseTransaction_FailedTransactionKeepsMetadataOnly(t *testing.T) {
	sig := testSig(t)
	sig.Err = map[string]any{"InstructionError": []any{0, "Custom"}}

	txn, err := parseTransactionFromResult(sig, nil)
	require.NoError(t, err)
	require.NotNil(t, txn.Err)
	assert.Empty(t, txn.Balances)
	assert.Empty(t, txn.ProgramIDs)
}

func TestParseTransaction_MapperIntegration(t *testing.T) {
	// Parsed balance rows feed straight into the leg mapper.
	tx := &solana.Transaction{
		Message: solana.Message{
			AccountKeys: []solana.PublicKey{walletKey, counterKey},
			Instructions: []solana.CompiledInstruction{
				{ProgramIDIndex: 1},
			},
		},
	}
	meta := &rpc.TransactionMeta{
		Fee:          5000,
		PreBalances:  []uint64{2_000_005_000, 0},
		PostBalances: []uint64{1_000_000_000, 1_000_000_000},
	}
	result := &rpc.GetTransactionResult{
		Transaction: makeTransactionEnvelope(t, tx),
		Meta:        meta,
	}

	txn, err := parseTransactionFromResult(testSig(t), result)
	require.NoError(t, err)

	legs := ledger.MapLegs(txn, walletKey.String())
	require.Len(t, legs, 3)
	assert.Equal(t, ledger.RoleFee, legs[0].Role)
	assert.Equal(t, ledger.RoleSent, legs[1].Role)
	assert.Equal(t, ledger.RoleReceived, legs[2].Role)

	var sum int64
	for _, l := range legs[1:] { // fee leg's counterpart is the validator set
		sum += l.SignedRaw()
	}
	assert.Zero(t, sum)
}

func TestParseMemo(t *testing.T) {
	assert.Equal(t, "hello", parseMemo([]byte("hello")))
	// base64 that decodes to printable text
	assert.Equal(t, "payment-123", parseMemo([]byte("cGF5bWVudC0xMjM=")))
}
