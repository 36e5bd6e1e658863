package application_test

import (
	"context"
	"fmt"
	"math/big"
	"strings"

	"github.com/ethereum/go-ethereum/common"
	"github.com/tradepost-network/tradepost-indexer/internal/core/domain"
	"github.com/tradepost-network/tradepost-indexer/internal/core/ports"
)

// mockChainReader serves canned contract state. Offer snapshots are keyed by
// taker and index so tests can move an offer through its lifecycle by swapping
// the snapshot.
type mockChainReader struct {
	offers    map[string]*ports.OfferSnapshot
	orderInfo *ports.OrderInfo
	bookInfo  *ports.BookInfo

	name        string
	symbol      string
	decimals    uint8
	totalSupply *big.Int

	nameErr        error
	symbolErr      error
	decimalsErr    error
	totalSupplyErr error
}

func newMockChainReader() *mockChainReader {
	return &mockChainReader{
		offers:      map[string]*ports.OfferSnapshot{},
		name:        "Test Dollar",
		symbol:      "TUSD",
		decimals:    6,
		totalSupply: big.NewInt(1000000000),
	}
}

func offerKey(taker common.Address, index uint64) string {
	return fmt.Sprintf("%s-%d", strings.ToLower(taker.Hex()), index)
}

func (m *mockChainReader) setOffer(taker common.Address, index uint64, snapshot *ports.OfferSnapshot) {
	m.offers[offerKey(taker, index)] = snapshot
}

func (m *mockChainReader) ReadOffer(
	_ context.Context, _, taker common.Address, index uint64,
) (*ports.OfferSnapshot, error) {
	snapshot, ok := m.offers[offerKey(taker, index)]
	if !ok {
		return nil, fmt.Errorf("execution reverted")
	}
	return snapshot, nil
}

func (m *mockChainReader) ReadOrder(_ context.Context, _ common.Address) (*ports.OrderInfo, error) {
	if m.orderInfo == nil {
		return nil, fmt.Errorf("execution reverted")
	}
	return m.orderInfo, nil
}

func (m *mockChainReader) ReadBook(_ context.Context, _ common.Address) (*ports.BookInfo, error) {
	if m.bookInfo == nil {
		return nil, fmt.Errorf("execution reverted")
	}
	return m.bookInfo, nil
}

func (m *mockChainReader) TokenName(_ context.Context, _ common.Address) (string, error) {
	return m.name, m.nameErr
}

func (m *mockChainReader) TokenSymbol(_ context.Context, _ common.Address) (string, error) {
	return m.symbol, m.symbolErr
}

func (m *mockChainReader) TokenDecimals(_ context.Context, _ common.Address) (uint8, error) {
	return m.decimals, m.decimalsErr
}

func (m *mockChainReader) TokenTotalSupply(_ context.Context, _ common.Address) (*big.Int, error) {
	return m.totalSupply, m.totalSupplyErr
}

// mockContentStore serves canned documents by content id.
type mockContentStore struct {
	docs map[string][]byte
}

func newMockContentStore() *mockContentStore {
	return &mockContentStore{docs: map[string][]byte{}}
}

func (m *mockContentStore) Fetch(_ context.Context, cid string) ([]byte, error) {
	doc, ok := m.docs[cid]
	if !ok {
		return nil, fmt.Errorf("%w: %s", domain.ErrContentUnavailable, cid)
	}
	return doc, nil
}
