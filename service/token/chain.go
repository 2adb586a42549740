package token

import (
	"context"
	"encoding/binary"
	"fmt"
	"strings"

	"github.com/gagliardetto/solana-go"

	"github.com/brojonat/lumen/service/ledger"
)

// metadataProgramID is the Metaplex Token Metadata program that owns the
// per-mint metadata PDAs.
var metadataProgramID = solana.MustPublicKeyFromBase58("metaqbxxUerdq28cj1RbAWkYQm3ybzjb6a8bt518x1s")

// AccountFetcher is the single RPC capability the on-chain tier needs.
// *solana.Client adapters and test fakes both satisfy it.
type AccountFetcher interface {
	AccountData(ctx context.Context, account solana.PublicKey) ([]byte, error)
}

// ChainMetadata reads token identity straight from chain accounts: the
// mint account for decimals, the Metaplex metadata PDA for name and
// symbol.
type ChainMetadata struct {
	fetcher AccountFetcher
}

// NewChainMetadata creates the on-chain metadata tier.
func NewChainMetadata(fetcher AccountFetcher) *ChainMetadata {
	return &ChainMetadata{fetcher: fetcher}
}

// Metadata implements ChainMetadataClient. A mint without a metadata PDA
// is a miss (nil, nil) rather than an error.
func (c *ChainMetadata) Metadata(ctx context.Context, mint string) (*ledger.Token, error) {
	mintKey, err := solana.PublicKeyFromBase58(mint)
	if err != nil {
		return nil, fmt.Errorf("invalid mint address %q: %w", mint, err)
	}

	pda, _, err := solana.FindProgramAddress(
		[][]byte{[]byte("metadata"), metadataProgramID.Bytes(), mintKey.Bytes()},
		metadataProgramID,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to derive metadata address: %w", err)
	}

	data, err := c.fetcher.AccountData(ctx, pda)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch metadata account: %w", err)
	}
	if len(data) == 0 {
		return nil, nil
	}

	name, symbol, err := parseMetadataAccount(data)
	if err != nil {
		return nil, err
	}

	decimals := uint8(0)
	if mintData, err := c.fetcher.AccountData(ctx, mintKey); err == nil {
		decimals = parseMintDecimals(mintData)
	}

	return &ledger.Token{
		Mint:     mint,
		Symbol:   symbol,
		Name:     name,
		Decimals: decimals,
	}, nil
}

// parseMetadataAccount extracts name and symbol from a Metaplex metadata
// account. Layout: key (1 byte), update authority (32), mint (32), then
// borsh strings for name and symbol (u32 length prefix, right-padded with
// NULs).
func parseMetadataAccount(data []byte) (name, symbol string, err error) {
	const header = 1 + 32 + 32
	name, next, err := readBorshString(data, header)
	if err != nil {
		return "", "", fmt.Errorf("failed to read metadata name: %w", err)
	}
	symbol, _, err = readBorshString(data, next)
	if err != nil {
		return "", "", fmt.Errorf("failed to read metadata symbol: %w", err)
	}
	return name, symbol, nil
}

func readBorshString(data []byte, offset int) (string, int, error) {
	if len(data) < offset+4 {
		return "", 0, fmt.Errorf("account data too short at offset %d", offset)
	}
	length := int(binary.LittleEndian.Uint32(data[offset : offset+4]))
	start := offset + 4
	if length < 0 || len(data) < start+length {
		return "", 0, fmt.Errorf("string length %d exceeds account data", length)
	}
	s := strings.TrimRight(string(data[start:start+length]), "\x00")
	return s, start + length, nil
}

// parseMintDecimals reads the decimals byte from an SPL mint account
// (offset 44: mint authority option+key, then supply).
func parseMintDecimals(data []byte) uint8 {
	const decimalsOffset = 44
	if len(data) <= decimalsOffset {
		return 0
	}
	return data[decimalsOffset]
}
