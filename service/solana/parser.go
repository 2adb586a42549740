package solana

import (
	"encoding/base64"
	"encoding/binary"
	"fmt"
	"sort"
	"strconv"
	"time"

	"github.com/gagliardetto/solana-go"
	"github.com/gagliardetto/solana-go/rpc"

	"github.com/brojonat/lumen/service/ledger"
)

// Memo program IDs; memos are surfaced on the parsed transaction so
// classifiers can expose them as metadata.
var (
	MemoProgramIDSPL    = solana.MustPublicKeyFromBase58("MemoSq4gqABAXKb96qnH8TysNcWxMyWCqXgDLGmfcHr")
	MemoProgramIDLegacy = solana.MustPublicKeyFromBase58("Memo1UhkJRfHyvLMcVucJwxXeuD728EqVDDwQDxFMNo")
)

// signatureToDomain converts an RPC TransactionSignature to a
// metadata-only domain transaction. Balance changes and program IDs
// require the full transaction fetch.
func signatureToDomain(sig *rpc.TransactionSignature) *ledger.Transaction {
	txn := &ledger.Transaction{
		Signature: sig.Signature.String(),
		Slot:      sig.Slot,
	}
	if sig.BlockTime != nil {
		txn.BlockTime = sig.BlockTime.Time()
	} else {
		txn.BlockTime = time.Time{}
	}
	if sig.Err != nil {
		errMsg := fmt.Sprintf("transaction failed: %v", sig.Err)
		txn.Err = &errMsg
	}
	return txn
}

// parseTransactionFromResult parses a full GetTransactionResult into the
// domain transaction the leg mapper consumes: fee and fee payer, the
// union of top-level and inner program IDs, pre/post SOL and token
// balances, and any memo.
func parseTransactionFromResult(sig *rpc.TransactionSignature, result *rpc.GetTransactionResult) (*ledger.Transaction, error) {
	txn := signatureToDomain(sig)

	// Failed or unavailable transactions keep metadata only.
	if sig.Err != nil || result == nil {
		return txn, nil
	}

	tx, err := result.Transaction.GetTransaction()
	if err != nil {
		return nil, fmt.Errorf("failed to decode transaction: %w", err)
	}

	accountKeys := tx.Message.AccountKeys
	if len(accountKeys) > 0 {
		txn.FeePayer = accountKeys[0].String()
	}

	txn.ProgramIDs = collectProgramIDs(tx, result.Meta, accountKeys)

	for _, instruction := range tx.Message.Instructions {
		if int(instruction.ProgramIDIndex) >= len(accountKeys) {
			continue
		}
		programID := accountKeys[instruction.ProgramIDIndex]
		if programID.Equals(MemoProgramIDSPL) || programID.Equals(MemoProgramIDLegacy) {
			if memo := parseMemo(instruction.Data); memo != "" {
				txn.Memo = &memo
			}
		}
	}

	if result.Meta != nil {
		txn.Fee = result.Meta.Fee
		txn.Balances = collectBalanceChanges(result.Meta, accountKeys)
	}

	return txn, nil
}

// collectProgramIDs returns the union of program identifiers invoked at
// top level and via inner (CPI) calls, deduplicated, in first-seen order.
func collectProgramIDs(tx *solana.Transaction, meta *rpc.TransactionMeta, accountKeys []solana.PublicKey) []string {
	seen := make(map[string]struct{})
	var ids []string
	add := func(idx uint16) {
		if int(idx) >= len(accountKeys) {
			return
		}
		id := accountKeys[idx].String()
		if _, ok := seen[id]; ok {
			return
		}
		seen[id] = struct{}{}
		ids = append(ids, id)
	}

	for _, in := range tx.Message.Instructions {
		add(in.ProgramIDIndex)
	}
	if meta != nil {
		for _, inner := range meta.InnerInstructions {
			for _, in := range inner.Instructions {
				add(in.ProgramIDIndex)
			}
		}
	}
	return ids
}

// collectBalanceChanges turns the meta's pre/post balances into the
// mapper's input rows: one row per account for SOL, one per token-account
// balance entry. Token rows are attributed to the owner wallet when the
// node reports it.
func collectBalanceChanges(meta *rpc.TransactionMeta, accountKeys []solana.PublicKey) []ledger.BalanceChange {
	var rows []ledger.BalanceChange

	for i := range accountKeys {
		var pre, post uint64
		if i < len(meta.PreBalances) {
			pre = meta.PreBalances[i]
		}
		if i < len(meta.PostBalances) {
			post = meta.PostBalances[i]
		}
		if pre == post {
			continue
		}
		rows = append(rows, ledger.BalanceChange{
			Account:      accountKeys[i].String(),
			AccountIndex: i,
			Mint:         ledger.NativeMint,
			Decimals:     ledger.NativeDecimals,
			Pre:          pre,
			Post:         post,
		})
	}

	type tokenKey struct {
		index uint16
		mint  string
	}
	merged := make(map[tokenKey]*ledger.BalanceChange)
	var order []tokenKey

	upsert := func(tb rpc.TokenBalance, post bool) {
		key := tokenKey{index: tb.AccountIndex, mint: tb.Mint.String()}
		row, ok := merged[key]
		if !ok {
			account := ""
			if tb.Owner != nil {
				account = tb.Owner.String()
			} else if int(tb.AccountIndex) < len(accountKeys) {
				account = accountKeys[tb.AccountIndex].String()
			}
			row = &ledger.BalanceChange{
				Account:      account,
				AccountIndex: int(tb.AccountIndex),
				Mint:         key.mint,
			}
			merged[key] = row
			order = append(order, key)
		}
		if tb.UiTokenAmount == nil {
			return
		}
		row.Decimals = tb.UiTokenAmount.Decimals
		amount, err := strconv.ParseUint(tb.UiTokenAmount.Amount, 10, 64)
		if err != nil {
			return
		}
		if post {
			row.Post = amount
		} else {
			row.Pre = amount
		}
	}

	for _, tb := range meta.PreTokenBalances {
		upsert(tb, false)
	}
	for _, tb := range meta.PostTokenBalances {
		upsert(tb, true)
	}

	sort.SliceStable(order, func(i, j int) bool {
		if order[i].index != order[j].index {
			return order[i].index < order[j].index
		}
		return order[i].mint < order[j].mint
	})
	for _, key := range order {
		row := merged[key]
		if row.Pre == row.Post {
			continue
		}
		rows = append(rows, *row)
	}

	return rows
}

// parseTokenAccount decodes one SPL token account from its raw layout:
// mint at [0:32], owner at [32:64], amount (u64 LE) at [64:72].
func parseTokenAccount(acc *rpc.TokenAccount) (TokenHolding, bool) {
	if acc == nil || acc.Account.Data == nil {
		return TokenHolding{}, false
	}
	data := acc.Account.Data.GetBinary()
	if len(data) < 72 {
		return TokenHolding{}, false
	}
	mint := solana.PublicKeyFromBytes(data[0:32])
	amount := binary.LittleEndian.Uint64(data[64:72])
	if amount == 0 {
		return TokenHolding{}, false
	}
	return TokenHolding{
		Mint:    mint.String(),
		Account: acc.Pubkey.String(),
		Amount:  amount,
	}, true
}

// parseMemo extracts the memo text from a Memo Program instruction.
// Some memos are base64 encoded, others are plain UTF-8.
func parseMemo(data []byte) string {
	memo := string(data)
	if decoded, err := base64.StdEncoding.DecodeString(memo); err == nil {
		if isValidUTF8(decoded) {
			return string(decoded)
		}
	}
	return memo
}

// isValidUTF8 checks if bytes look like printable text.
func isValidUTF8(b []byte) bool {
	for _, c := range b {
		if c == 0 {
			return false
		}
	}
	return true
}
