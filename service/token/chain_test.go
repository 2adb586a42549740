package token

import (
	"context"
	"encoding/binary"
	"testing"

	"github.com/gagliardetto/solana-go"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeFetcher struct {
	accounts map[string][]byte
}

func (f *fakeFetcher) AccountData(ctx context.Context, account solana.PublicKey) ([]byte, error) {
	return f.accounts[account.String()], nil
}

// buildMetadataAccount assembles the Metaplex layout: key, update
// authority, mint, then borsh name and symbol.
func buildMetadataAccount(name, symbol string) []byte {
	data := make([]byte, 0, 128)
	data = append(data, 4)                      // key: MetadataV1
	data = append(data, make([]byte, 64)...)    // update authority + mint
	data = appendBorshString(data, name, 32)    // names are padded on chain
	data = appendBorshString(data, symbol, 10)
	return data
}

func appendBorshString(data []byte, s string, padTo int) []byte {
	padded := make([]byte, padTo)
	copy(padded, s)
	var l [4]byte
	binary.LittleEndian.PutUint32(l[:], uint32(padTo))
	data = append(data, l[:]...)
	return append(data, padded...)
}

func TestChainMetadata_ParsesNameSymbolAndDecimals(t *testing.T) {
	mint := solana.MustPublicKeyFromBase58(randomMint)
	pda, _, err := solana.FindProgramAddress(
		[][]byte{[]byte("metadata"), metadataProgramID.Bytes(), mint.Bytes()},
		metadataProgramID,
	)
	require.NoError(t, err)

	mintAccount := make([]byte, 82)
	mintAccount[44] = 6 // decimals

	fetcher := &fakeFetcher{accounts: map[string][]byte{
		pda.String():  buildMetadataAccount("dogwifhat", "WIF"),
		mint.String(): mintAccount,
	}}

	tok, err := NewChainMetadata(fetcher).Metadata(context.Background(), randomMint)
	require.NoError(t, err)
	require.NotNil(t, tok)
	assert.Equal(t, "dogwifhat", tok.Name)
	assert.Equal(t, "WIF", tok.Symbol)
	assert.Equal(t, uint8(6), tok.Decimals)
}

func TestChainMetadata_MissingAccountIsAMiss(t *testing.T) {
	fetcher := &fakeFetcher{accounts: map[string][]byte{}}
	tok, err := NewChainMetadata(fetcher).Metadata(context.Background(), randomMint)
	require.NoError(t, err)
	assert.Nil(t, tok)
}

func TestChainMetadata_InvalidMint(t *testing.T) {
	_, err := NewChainMetadata(&fakeFetcher{}).Metadata(context.Background(), "not-a-mint")
	assert.Error(t, err)
}

func TestParseMetadataAccount_TruncatedData(t *testing.T) {
	_, _, err := parseMetadataAccount([]byte{1, 2, 3})
	assert.Error(t, err)
}
