package token

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"time"

	"github.com/brojonat/lumen/service/ledger"
)

// DefaultTokenListURL is the aggregator token list consulted on mainnet.
const DefaultTokenListURL = "https://tokens.jup.ag"

// HTTPTokenList is a TokenListClient backed by an aggregator's HTTP API
// (GET {base}/token/{mint}).
type HTTPTokenList struct {
	baseURL    string
	httpClient *http.Client
	logger     *slog.Logger
}

// NewHTTPTokenList creates a token-list client. A nil httpClient gets a
// 30-second-timeout default; a nil logger discards.
func NewHTTPTokenList(baseURL string, httpClient *http.Client, logger *slog.Logger) *HTTPTokenList {
	if baseURL == "" {
		baseURL = DefaultTokenListURL
	}
	if httpClient == nil {
		httpClient = &http.Client{Timeout: 30 * time.Second}
	}
	if logger == nil {
		logger = slog.New(slog.NewJSONHandler(io.Discard, nil))
	}
	return &HTTPTokenList{
		baseURL:    baseURL,
		httpClient: httpClient,
		logger:     logger,
	}
}

// tokenListEntry is the aggregator's wire shape for one token.
type tokenListEntry struct {
	Address  string `json:"address"`
	Symbol   string `json:"symbol"`
	Name     string `json:"name"`
	Decimals uint8  `json:"decimals"`
}

// Lookup fetches one mint's identity. A 404 is a miss (nil, nil), not an
// error; other failures surface with enough text for the retry layer's
// matcher.
func (c *HTTPTokenList) Lookup(ctx context.Context, mint string) (*ledger.Token, error) {
	url := fmt.Sprintf("%s/token/%s", c.baseURL, mint)
	req, err := http.NewRequestWithContext(ctx, "GET", url, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("token list request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode == http.StatusNotFound {
		return nil, nil
	}
	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(resp.Body)
		return nil, fmt.Errorf("token list returned %d: %s", resp.StatusCode, string(body))
	}

	var entry tokenListEntry
	if err := json.NewDecoder(resp.Body).Decode(&entry); err != nil {
		return nil, fmt.Errorf("failed to decode token list response: %w", err)
	}
	if entry.Address == "" {
		entry.Address = mint
	}

	c.logger.DebugContext(ctx, "resolved mint from token list",
		"mint", mint,
		"symbol", entry.Symbol,
	)
	return &ledger.Token{
		Mint:     entry.Address,
		Symbol:   entry.Symbol,
		Name:     entry.Name,
		Decimals: entry.Decimals,
	}, nil
}
