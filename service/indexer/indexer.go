// Package indexer composes the engine: signature fetch, transaction batch
// fetch, leg mapping, protocol detection, classification, and balance
// summaries. It is a thin orchestration layer; all the semantics live in
// the packages it sequences.
package indexer

import (
	"context"
	"fmt"
	"log/slog"

	sol "github.com/gagliardetto/solana-go"
	"github.com/gagliardetto/solana-go/rpc"

	"github.com/brojonat/lumen/service/classify"
	"github.com/brojonat/lumen/service/ledger"
	"github.com/brojonat/lumen/service/metrics"
	"github.com/brojonat/lumen/service/protocol"
	solanaclient "github.com/brojonat/lumen/service/solana"
	"github.com/brojonat/lumen/service/token"
)

// ChainClient is the node-facing surface the facade sequences. It is
// satisfied by *solana.Client and by test fakes.
type ChainClient interface {
	GetSignatures(ctx context.Context, wallet sol.PublicKey, limit int) ([]*rpc.TransactionSignature, error)
	GetTransactions(ctx context.Context, sigs []*rpc.TransactionSignature) ([]*ledger.Transaction, error)
	GetWalletBalance(ctx context.Context, wallet sol.PublicKey) (*solanaclient.WalletBalance, error)
}

// ClassifiedTransaction pairs a parsed transaction with its single
// classification.
type ClassifiedTransaction struct {
	Tx             *ledger.Transaction
	Classification classify.Result
}

// WalletBalance is a wallet snapshot with resolved token identities.
type WalletBalance struct {
	Address string
	SOL     ledger.Amount
	Tokens  []ledger.Amount
}

// Service sequences one wallet's history into classified events.
type Service struct {
	client   ChainClient
	resolver *token.Resolver
	pipeline *classify.Pipeline
	logger   *slog.Logger
	metrics  *metrics.Metrics
}

// New creates the facade.
func New(client ChainClient, resolver *token.Resolver, pipeline *classify.Pipeline, m *metrics.Metrics, logger *slog.Logger) *Service {
	return &Service{
		client:   client,
		resolver: resolver,
		pipeline: pipeline,
		logger:   logger,
		metrics:  m,
	}
}

// Index fetches, maps, and classifies the wallet's most recent
// transactions. The result set is best-effort complete: transactions
// whose full fetch failed are classified from metadata alone, and only an
// unreachable node surfaces as a top-level error.
func (s *Service) Index(ctx context.Context, wallet sol.PublicKey, limit int) ([]ClassifiedTransaction, error) {
	sigs, err := s.client.GetSignatures(ctx, wallet, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch signatures: %w", err)
	}

	txns, err := s.client.GetTransactions(ctx, sigs)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch transactions: %w", err)
	}

	// One metadata batch for every mint the whole page touches.
	var mints []string
	for _, txn := range txns {
		for _, ch := range txn.Balances {
			mints = append(mints, ch.Mint)
		}
	}
	tokens := s.resolver.ResolveBatch(ctx, mints)

	walletAddr := wallet.String()
	out := make([]ClassifiedTransaction, 0, len(txns))
	for _, txn := range txns {
		txn.Protocol = protocol.Detect(txn.ProgramIDs)

		legs := ledger.MapLegs(txn, walletAddr)
		enrichLegs(legs, tokens)
		if s.metrics != nil {
			s.metrics.RecordLegsMapped(len(legs))
		}

		result := s.pipeline.Classify(walletAddr, legs, txn)
		if s.metrics != nil {
			s.metrics.RecordClassification(string(result.Type))
		}
		out = append(out, ClassifiedTransaction{Tx: txn, Classification: result})
	}

	s.logger.InfoContext(ctx, "indexed wallet transactions",
		"wallet", walletAddr,
		"transactions", len(out),
	)
	return out, nil
}

// Balance fetches the wallet's current holdings with resolved identity.
func (s *Service) Balance(ctx context.Context, wallet sol.PublicKey) (*WalletBalance, error) {
	raw, err := s.client.GetWalletBalance(ctx, wallet)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch balance: %w", err)
	}

	mints := make([]string, 0, len(raw.Tokens))
	for _, h := range raw.Tokens {
		mints = append(mints, h.Mint)
	}
	tokens := s.resolver.ResolveBatch(ctx, mints)

	bal := &WalletBalance{
		Address: raw.Address,
		SOL:     ledger.NewAmount(s.resolver.Resolve(ctx, ledger.NativeMint), raw.Lamports),
	}
	for _, h := range raw.Tokens {
		bal.Tokens = append(bal.Tokens, ledger.NewAmount(tokens[h.Mint], h.Amount))
	}
	return bal, nil
}

// enrichLegs swaps each leg's bare mint identity for the resolved one,
// recomputing UI amounts now that decimals are known.
func enrichLegs(legs []ledger.Leg, tokens map[string]ledger.Token) {
	for i := range legs {
		tok, ok := tokens[legs[i].Amount.Token.Mint]
		if !ok {
			continue
		}
		if tok.Decimals == 0 && legs[i].Amount.Token.Decimals != 0 {
			// The registry's placeholder tier has no decimals; the
			// chain-reported value is better.
			tok.Decimals = legs[i].Amount.Token.Decimals
		}
		legs[i].Amount = ledger.NewAmount(tok, legs[i].Amount.Raw)
	}
}
