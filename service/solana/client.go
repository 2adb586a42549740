package solana

import (
	"context"
	"log/slog"
	"strings"
	"time"

	"github.com/gagliardetto/solana-go"
	"github.com/gagliardetto/solana-go/rpc"

	"github.com/brojonat/lumen/service/ledger"
	"github.com/brojonat/lumen/service/metrics"
	"github.com/brojonat/lumen/service/retry"
)

// Client provides the three node capabilities the classification engine
// needs: signature lists, full transactions, and wallet balances. Every
// network call runs through the retry layer.
type Client struct {
	rpc      RPCClient
	retryCfg retry.Config
	logger   *slog.Logger
	metrics  *metrics.Metrics
	endpoint string // RPC endpoint identifier for metrics (e.g., "mainnet", rpc host)
}

// NewClient creates a new Solana client. The endpoint parameter labels
// metrics (e.g., "mainnet", "devnet", or the RPC hostname). If m is nil,
// no metrics are recorded.
func NewClient(rpcClient RPCClient, endpoint string, retryCfg retry.Config, m *metrics.Metrics, logger *slog.Logger) *Client {
	return &Client{
		rpc:      rpcClient,
		retryCfg: retryCfg,
		logger:   logger,
		metrics:  m,
		endpoint: endpoint,
	}
}

// GetSignatures fetches up to limit recent transaction signatures for the
// wallet, newest first.
func (c *Client) GetSignatures(ctx context.Context, wallet solana.PublicKey, limit int) ([]*rpc.TransactionSignature, error) {
	opts := &rpc.GetSignaturesForAddressOpts{
		Limit: &limit,
	}

	c.logger.DebugContext(ctx, "calling GetSignaturesForAddress",
		"wallet", wallet.String(),
		"limit", limit,
	)

	signatures, err := callWithRetry(ctx, c, "GetSignaturesForAddress", func(ctx context.Context) ([]*rpc.TransactionSignature, error) {
		return c.rpc.GetSignaturesForAddress(ctx, wallet, opts)
	})
	if err != nil {
		c.logger.ErrorContext(ctx, "failed to get signatures",
			"wallet", wallet.String(),
			"error", err,
		)
		return nil, err
	}

	c.logger.DebugContext(ctx, "fetched transaction signatures",
		"wallet", wallet.String(),
		"count", len(signatures),
	)
	return signatures, nil
}

// GetTransactions fetches and parses the full transaction for each
// signature. Individual fetch failures degrade to metadata-only
// transactions rather than failing the batch; callers get a best-effort
// complete result set.
func (c *Client) GetTransactions(ctx context.Context, sigs []*rpc.TransactionSignature) ([]*ledger.Transaction, error) {
	transactions := make([]*ledger.Transaction, 0, len(sigs))
	for _, sig := range sigs {
		// Failed transactions never have interesting balance changes;
		// skip the fetch entirely.
		if sig.Err != nil {
			transactions = append(transactions, signatureToDomain(sig))
			continue
		}

		txnOpts := &rpc.GetTransactionOpts{
			Encoding:                       solana.EncodingBase64,
			MaxSupportedTransactionVersion: &[]uint64{0}[0],
		}
		result, err := callWithRetry(ctx, c, "GetTransaction", func(ctx context.Context) (*rpc.GetTransactionResult, error) {
			return c.rpc.GetTransaction(ctx, sig.Signature, txnOpts)
		})
		if err != nil {
			if ctx.Err() != nil {
				return nil, ctx.Err()
			}
			// Transaction might be pruned or unavailable after retries;
			// fall back to metadata only and keep going.
			c.logger.WarnContext(ctx, "failed to get transaction after retries, using metadata only",
				"signature", sig.Signature.String(),
				"error", err,
			)
			transactions = append(transactions, signatureToDomain(sig))
			continue
		}

		txn, err := parseTransactionFromResult(sig, result)
		if err != nil {
			c.logger.WarnContext(ctx, "failed to parse transaction, using metadata only",
				"signature", sig.Signature.String(),
				"error", err,
			)
			transactions = append(transactions, signatureToDomain(sig))
			continue
		}
		transactions = append(transactions, txn)
	}

	c.logger.InfoContext(ctx, "fetched and parsed transactions",
		"count", len(transactions),
	)
	return transactions, nil
}

// GetWalletBalance fetches the wallet's current SOL and SPL token
// holdings.
func (c *Client) GetWalletBalance(ctx context.Context, wallet solana.PublicKey) (*WalletBalance, error) {
	balResult, err := callWithRetry(ctx, c, "GetBalance", func(ctx context.Context) (*rpc.GetBalanceResult, error) {
		return c.rpc.GetBalance(ctx, wallet, rpc.CommitmentConfirmed)
	})
	if err != nil {
		return nil, err
	}

	tokenProgram := solana.MustPublicKeyFromBase58("TokenkegQfeZyiNwAJbNbGKPFXCWuBvf9Ss623VQ5DA")
	accountsResult, err := callWithRetry(ctx, c, "GetTokenAccountsByOwner", func(ctx context.Context) (*rpc.GetTokenAccountsResult, error) {
		return c.rpc.GetTokenAccountsByOwner(ctx, wallet,
			&rpc.GetTokenAccountsConfig{ProgramId: &tokenProgram},
			&rpc.GetTokenAccountsOpts{Encoding: solana.EncodingBase64},
		)
	})
	if err != nil {
		return nil, err
	}

	balance := &WalletBalance{
		Address:  wallet.String(),
		Lamports: balResult.Value,
	}
	for _, acc := range accountsResult.Value {
		holding, ok := parseTokenAccount(acc)
		if !ok {
			continue
		}
		balance.Tokens = append(balance.Tokens, holding)
	}

	c.logger.DebugContext(ctx, "fetched wallet balance",
		"wallet", wallet.String(),
		"lamports", balance.Lamports,
		"token_accounts", len(balance.Tokens),
	)
	return balance, nil
}

// callWithRetry runs one RPC call through the resilience layer, recording
// call metrics per attempt outcome.
func callWithRetry[T any](ctx context.Context, c *Client, method string, op func(context.Context) (T, error)) (T, error) {
	cfg := c.retryCfg
	cfg.OnRetry = func(attempt int, err error) {
		if c.metrics != nil {
			c.metrics.RecordRPCRetry(method)
			if strings.Contains(err.Error(), "429") {
				c.metrics.RecordRateLimitHit(c.endpoint)
			}
		}
	}

	start := time.Now()
	v, err := retry.Do(ctx, cfg, c.logger, method, op)
	duration := time.Since(start).Seconds()

	status := "success"
	if err != nil {
		status = "error"
	}
	if c.metrics != nil {
		c.metrics.RecordRPCCall(method, status, c.endpoint, duration)
	}
	return v, err
}
