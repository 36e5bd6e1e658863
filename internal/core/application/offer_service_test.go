package application_test

import (
	"context"
	"math/big"
	"strings"
	"testing"

	"github.com/ethereum/go-ethereum/common"
	"github.com/stretchr/testify/require"
	"github.com/tradepost-network/tradepost-indexer/internal/core/application"
	"github.com/tradepost-network/tradepost-indexer/internal/core/domain"
	"github.com/tradepost-network/tradepost-indexer/internal/core/ports"
	"github.com/tradepost-network/tradepost-indexer/internal/infrastructure/storage/db/inmemory"
)

var (
	bookAddress  = common.HexToAddress("0x9FBDa871d559710256a2502A2517b794B482Db40")
	orderAddress = common.HexToAddress("0xf17f52151EbEF6C7334FAD080c5704D77216b732")
	takerAddress = common.HexToAddress("0x627306090abaB3A6e1400e9345bC60c78a8BEf57")
	makerAddress = common.HexToAddress("0x2191eF87E392377ec08E7c08Eb105Ef5448eCED5")
	tokenAddress = common.HexToAddress("0xC5fdf4076b8F3A5357c5E395ab970B5B54098Fef")
)

type harness struct {
	repoManager ports.RepoManager
	chain       *mockChainReader
	content     *mockContentStore
	engine      *application.OfferEngine
	orders      *application.OrderManager
}

func newHarness() *harness {
	repoManager := inmemory.NewRepoManager()
	chain := newMockChainReader()
	content := newMockContentStore()
	enricher := application.NewMetadataEnricher(content)
	tokens := application.NewTokenResolver(chain, repoManager.TokenRepository())

	return &harness{
		repoManager: repoManager,
		chain:       chain,
		content:     content,
		engine:      application.NewOfferEngine(repoManager, chain, tokens, enricher),
		orders:      application.NewOrderManager(repoManager, chain, tokens, enricher),
	}
}

// seedOrder stores an indexed order the way CreateOrder would have.
func (h *harness) seedOrder(t *testing.T) *domain.Order {
	t.Helper()

	order := domain.NewOrder(lowerHex(orderAddress), 1700000000)
	order.Maker = lowerHex(makerAddress)
	require.NoError(t, h.repoManager.OrderRepository().SaveOrder(context.Background(), order))
	return order
}

func lowerHex(address common.Address) string {
	return strings.ToLower(address.Hex())
}

func txHash(s string) common.Hash {
	return common.HexToHash(s)
}

func txHex(h common.Hash) string {
	return strings.ToLower(h.Hex())
}

func offerEvent(eventType ports.EventType, tx string, timestamp int64) ports.OfferEvent {
	return ports.OfferEvent{
		EventType: eventType,
		Order:     orderAddress,
		Taker:     takerAddress,
		Index:     0,
		Timestamp: timestamp,
		TxHash:    txHash(tx),
	}
}

func openSnapshot() *ports.OfferSnapshot {
	return &ports.OfferSnapshot{
		State:        domain.OfferStateCodeOpen,
		Token:        tokenAddress,
		Price:        big.NewInt(100),
		BuyersCost:   big.NewInt(110),
		SellersStake: big.NewInt(50),
		Timeout:      big.NewInt(86400),
		Uri:          "ipfs://offer-doc",
		AcceptedAt:   big.NewInt(0),
	}
}

func committedSnapshot() *ports.OfferSnapshot {
	snapshot := openSnapshot()
	snapshot.State = domain.OfferStateCodeCommitted
	snapshot.AcceptedAt = big.NewInt(1700000100)
	return snapshot
}

func closedSnapshot() *ports.OfferSnapshot {
	// The contract zeroes a closed slot, only the state remains meaningful.
	return &ports.OfferSnapshot{
		State:        domain.OfferStateCodeClosed,
		Price:        big.NewInt(0),
		BuyersCost:   big.NewInt(0),
		SellersStake: big.NewInt(0),
		Timeout:      big.NewInt(0),
		AcceptedAt:   big.NewInt(0),
	}
}

func TestUnknownOrderDropsEventWithoutWrites(t *testing.T) {
	h := newHarness()
	ctx := context.Background()
	h.chain.setOffer(takerAddress, 0, openSnapshot())

	err := h.engine.ProcessOfferEvent(ctx, offerEvent(ports.OfferSubmitted, "0x01", 1700000001))
	require.ErrorIs(t, err, domain.ErrOrderNotFound)

	liveId := domain.OfferId(lowerHex(takerAddress), 0, lowerHex(orderAddress))
	offer, err := h.repoManager.OfferRepository().GetOffer(ctx, liveId)
	require.NoError(t, err)
	require.Nil(t, offer)

	transitionId := domain.OfferTransitionId(lowerHex(takerAddress), 0, txHex(txHash("0x01")))
	transition, err := h.repoManager.TransitionRepository().GetOfferTransition(ctx, transitionId)
	require.NoError(t, err)
	require.Nil(t, transition)
}

func TestChainReadRevertDropsEvent(t *testing.T) {
	h := newHarness()
	ctx := context.Background()
	h.seedOrder(t)

	err := h.engine.ProcessOfferEvent(ctx, offerEvent(ports.OfferSubmitted, "0x01", 1700000001))
	require.ErrorIs(t, err, domain.ErrChainReadReverted)

	liveId := domain.OfferId(lowerHex(takerAddress), 0, lowerHex(orderAddress))
	offer, err := h.repoManager.OfferRepository().GetOffer(ctx, liveId)
	require.NoError(t, err)
	require.Nil(t, offer)
}

func TestInvalidStateValueDropsEvent(t *testing.T) {
	h := newHarness()
	ctx := context.Background()
	h.seedOrder(t)

	snapshot := openSnapshot()
	snapshot.State = 7
	h.chain.setOffer(takerAddress, 0, snapshot)

	err := h.engine.ProcessOfferEvent(ctx, offerEvent(ports.OfferSubmitted, "0x01", 1700000001))
	require.ErrorIs(t, err, domain.ErrInvalidStateValue)

	liveId := domain.OfferId(lowerHex(takerAddress), 0, lowerHex(orderAddress))
	offer, err := h.repoManager.OfferRepository().GetOffer(ctx, liveId)
	require.NoError(t, err)
	require.Nil(t, offer)
}

func TestSubmitCreatesLiveOffer(t *testing.T) {
	h := newHarness()
	ctx := context.Background()
	h.seedOrder(t)
	h.chain.setOffer(takerAddress, 0, openSnapshot())
	h.content.docs["offer-doc"] = []byte(`{"publicKey":"pk","nonce":"n","message":"hello"}`)

	require.NoError(t, h.engine.ProcessOfferEvent(ctx, offerEvent(ports.OfferSubmitted, "0x01", 1700000001)))

	liveId := domain.OfferId(lowerHex(takerAddress), 0, lowerHex(orderAddress))
	offer, err := h.repoManager.OfferRepository().GetOffer(ctx, liveId)
	require.NoError(t, err)
	require.NotNil(t, offer)

	require.Equal(t, domain.OfferStateOpen, offer.State)
	require.Equal(t, domain.OfferStateOpen, offer.ContractState)
	require.Equal(t, lowerHex(makerAddress), offer.Maker)
	require.Equal(t, lowerHex(tokenAddress), offer.TokenAddress)
	require.Equal(t, lowerHex(tokenAddress), offer.Token)
	require.Equal(t, big.NewInt(100), offer.Price)
	require.Equal(t, "hello", offer.Message)
	require.Equal(t, "pk", offer.MessagePublicKey)
	require.Len(t, offer.History, 1)
	require.Empty(t, offer.Error)

	// Token cache is refreshed on the way through.
	token, err := h.repoManager.TokenRepository().GetToken(ctx, lowerHex(tokenAddress))
	require.NoError(t, err)
	require.NotNil(t, token)
	require.Equal(t, "TUSD", token.Symbol)

	order, err := h.repoManager.OrderRepository().GetOrder(ctx, lowerHex(orderAddress))
	require.NoError(t, err)
	require.Equal(t, []string{liveId}, order.Offers)
	require.Equal(t, int64(1), order.OfferCount)
}

func TestMetadataMissPersistsOfferWithErrorAnnotation(t *testing.T) {
	h := newHarness()
	ctx := context.Background()
	h.seedOrder(t)
	h.chain.setOffer(takerAddress, 0, openSnapshot())
	// No document stored: the content store misses.

	require.NoError(t, h.engine.ProcessOfferEvent(ctx, offerEvent(ports.OfferSubmitted, "0x01", 1700000001)))

	liveId := domain.OfferId(lowerHex(takerAddress), 0, lowerHex(orderAddress))
	offer, err := h.repoManager.OfferRepository().GetOffer(ctx, liveId)
	require.NoError(t, err)
	require.NotNil(t, offer)

	require.NotEmpty(t, offer.Error)
	require.Empty(t, offer.Message)
	require.Empty(t, offer.MessagePublicKey)
	require.Empty(t, offer.MessageNonce)
	require.Len(t, offer.History, 1)
}

func TestReplayedTransactionIsDroppedUnchanged(t *testing.T) {
	h := newHarness()
	ctx := context.Background()
	h.seedOrder(t)
	h.chain.setOffer(takerAddress, 0, openSnapshot())
	h.content.docs["offer-doc"] = []byte(`{"publicKey":"pk","nonce":"n","message":"hello"}`)

	event := offerEvent(ports.OfferSubmitted, "0x01", 1700000001)
	require.NoError(t, h.engine.ProcessOfferEvent(ctx, event))

	liveId := domain.OfferId(lowerHex(takerAddress), 0, lowerHex(orderAddress))
	before, err := h.repoManager.OfferRepository().GetOffer(ctx, liveId)
	require.NoError(t, err)

	err = h.engine.ProcessOfferEvent(ctx, event)
	require.ErrorIs(t, err, domain.ErrDuplicateTransition)

	after, err := h.repoManager.OfferRepository().GetOffer(ctx, liveId)
	require.NoError(t, err)
	require.Equal(t, before, after)
	require.Len(t, after.History, 1)
}

func TestSubmitCommitConfirmArchivesOffer(t *testing.T) {
	h := newHarness()
	ctx := context.Background()
	h.seedOrder(t)
	h.content.docs["offer-doc"] = []byte(`{"publicKey":"pk","nonce":"n","message":"hello"}`)

	h.chain.setOffer(takerAddress, 0, openSnapshot())
	require.NoError(t, h.engine.ProcessOfferEvent(ctx, offerEvent(ports.OfferSubmitted, "0x01", 1700000001)))

	h.chain.setOffer(takerAddress, 0, committedSnapshot())
	require.NoError(t, h.engine.ProcessOfferEvent(ctx, offerEvent(ports.OfferCommitted, "0x02", 1700000002)))

	h.chain.setOffer(takerAddress, 0, closedSnapshot())
	require.NoError(t, h.engine.ProcessOfferEvent(ctx, offerEvent(ports.OfferConfirmed, "0x03", 1700000003)))

	liveId := domain.OfferId(lowerHex(takerAddress), 0, lowerHex(orderAddress))
	live, err := h.repoManager.OfferRepository().GetOffer(ctx, liveId)
	require.NoError(t, err)
	require.Nil(t, live, "live identity must be freed for reuse")

	archivedId := liveId + "-closed-" + txHex(txHash("0x03"))
	archived, err := h.repoManager.OfferRepository().GetOffer(ctx, archivedId)
	require.NoError(t, err)
	require.NotNil(t, archived)

	require.Equal(t, domain.OfferStateConfirmed, archived.State)
	require.Equal(t, domain.OfferStateClosed, archived.ContractState)
	require.Len(t, archived.History, 3)

	// The closed snapshot zeroed the contract slot, the archived record still
	// carries the terms from when the offer was live.
	require.Equal(t, big.NewInt(100), archived.Price)
	require.Equal(t, big.NewInt(1700000100), archived.AcceptedAt)
	require.Equal(t, "hello", archived.Message)

	order, err := h.repoManager.OrderRepository().GetOrder(ctx, lowerHex(orderAddress))
	require.NoError(t, err)
	require.Equal(t, []string{archivedId}, order.Offers)
	require.Equal(t, int64(1), order.OfferCount)
}

func TestRedeliveryAfterCrashMidArchivalKeepsFields(t *testing.T) {
	h := newHarness()
	ctx := context.Background()
	h.seedOrder(t)
	h.content.docs["offer-doc"] = []byte(`{"publicKey":"pk","nonce":"n","message":"hello"}`)

	h.chain.setOffer(takerAddress, 0, openSnapshot())
	require.NoError(t, h.engine.ProcessOfferEvent(ctx, offerEvent(ports.OfferSubmitted, "0x01", 1700000001)))
	h.chain.setOffer(takerAddress, 0, committedSnapshot())
	require.NoError(t, h.engine.ProcessOfferEvent(ctx, offerEvent(ports.OfferCommitted, "0x02", 1700000002)))

	liveId := domain.OfferId(lowerHex(takerAddress), 0, lowerHex(orderAddress))
	archivedId := liveId + "-closed-" + txHex(txHash("0x03"))

	// Reconstruct a crash in the middle of the closing event: the archived
	// copy is on disk but the process died before the transition write, so
	// the live record is still present and no transition exists.
	live, err := h.repoManager.OfferRepository().GetOffer(ctx, liveId)
	require.NoError(t, err)
	partial := *live
	partial.Id = archivedId
	partial.State = domain.OfferStateConfirmed
	partial.ContractState = domain.OfferStateClosed
	require.NoError(t, h.repoManager.OfferRepository().SaveOffer(ctx, &partial))

	// Redelivery reads the zeroed contract slot, the stored fields must come
	// from the live record and survive into the archived one.
	h.chain.setOffer(takerAddress, 0, closedSnapshot())
	require.NoError(t, h.engine.ProcessOfferEvent(ctx, offerEvent(ports.OfferConfirmed, "0x03", 1700000003)))

	stillLive, err := h.repoManager.OfferRepository().GetOffer(ctx, liveId)
	require.NoError(t, err)
	require.Nil(t, stillLive)

	archived, err := h.repoManager.OfferRepository().GetOffer(ctx, archivedId)
	require.NoError(t, err)
	require.NotNil(t, archived)
	require.Equal(t, domain.OfferStateConfirmed, archived.State)
	require.Equal(t, big.NewInt(100), archived.Price)
	require.Equal(t, "hello", archived.Message)
	require.Len(t, archived.History, 3)

	order, err := h.repoManager.OrderRepository().GetOrder(ctx, lowerHex(orderAddress))
	require.NoError(t, err)
	require.Equal(t, []string{archivedId}, order.Offers)

	// Once the transition exists a further redelivery is a pure no-op.
	err = h.engine.ProcessOfferEvent(ctx, offerEvent(ports.OfferConfirmed, "0x03", 1700000003))
	require.ErrorIs(t, err, domain.ErrDuplicateTransition)
	unchanged, err := h.repoManager.OfferRepository().GetOffer(ctx, archivedId)
	require.NoError(t, err)
	require.Equal(t, archived, unchanged)
}

func TestDisplayStatePrecedenceOverCancelFlags(t *testing.T) {
	tests := []struct {
		name      string
		eventType ports.EventType
		state     string
	}{
		{name: "confirmed", eventType: ports.OfferConfirmed, state: domain.OfferStateConfirmed},
		{name: "refunded", eventType: ports.OfferRefunded, state: domain.OfferStateRefunded},
		{name: "withdrawn", eventType: ports.OfferWithdrawn, state: domain.OfferStateWithdrawn},
	}

	for i := range tests {
		tt := tests[i]

		t.Run(tt.name, func(t *testing.T) {
			h := newHarness()
			ctx := context.Background()
			h.seedOrder(t)

			snapshot := closedSnapshot()
			snapshot.MakerCanceled = true
			snapshot.TakerCanceled = true
			h.chain.setOffer(takerAddress, 0, snapshot)

			require.NoError(t, h.engine.ProcessOfferEvent(ctx, offerEvent(tt.eventType, "0x01", 1700000001)))

			liveId := domain.OfferId(lowerHex(takerAddress), 0, lowerHex(orderAddress))
			archivedId := liveId + "-closed-" + txHex(txHash("0x01"))
			archived, err := h.repoManager.OfferRepository().GetOffer(ctx, archivedId)
			require.NoError(t, err)
			require.NotNil(t, archived)
			require.Equal(t, tt.state, archived.State)
		})
	}
}

func TestCancelWithSingleFlagOnClosedSnapshotStaysCommitted(t *testing.T) {
	h := newHarness()
	ctx := context.Background()
	h.seedOrder(t)
	h.content.docs["offer-doc"] = []byte(`{}`)

	h.chain.setOffer(takerAddress, 0, committedSnapshot())
	require.NoError(t, h.engine.ProcessOfferEvent(ctx, offerEvent(ports.OfferSubmitted, "0x01", 1700000001)))

	// Same-block race: the contract already reads Closed but only the maker
	// flag made it into this observation.
	snapshot := closedSnapshot()
	snapshot.MakerCanceled = true
	h.chain.setOffer(takerAddress, 0, snapshot)

	cancel := offerEvent(ports.OfferCanceled, "0x02", 1700000002)
	cancel.MakerCanceled = true
	require.NoError(t, h.engine.ProcessOfferEvent(ctx, cancel))

	liveId := domain.OfferId(lowerHex(takerAddress), 0, lowerHex(orderAddress))
	offer, err := h.repoManager.OfferRepository().GetOffer(ctx, liveId)
	require.NoError(t, err)
	require.NotNil(t, offer, "offer must stay live, not archived")

	require.Equal(t, domain.OfferStateCommitted, offer.State)
	require.Equal(t, domain.OfferStateCommitted, offer.ContractState)
	require.True(t, offer.MakerCanceled)
	require.False(t, offer.TakerCanceled)
}

func TestSameBlockDoubleCancelEndsCanceled(t *testing.T) {
	h := newHarness()
	ctx := context.Background()
	h.seedOrder(t)
	h.content.docs["offer-doc"] = []byte(`{}`)

	h.chain.setOffer(takerAddress, 0, committedSnapshot())
	require.NoError(t, h.engine.ProcessOfferEvent(ctx, offerEvent(ports.OfferSubmitted, "0x01", 1700000001)))

	snapshot := closedSnapshot()
	snapshot.MakerCanceled = true
	h.chain.setOffer(takerAddress, 0, snapshot)

	first := offerEvent(ports.OfferCanceled, "0x02", 1700000002)
	first.MakerCanceled = true
	require.NoError(t, h.engine.ProcessOfferEvent(ctx, first))

	snapshot = closedSnapshot()
	snapshot.MakerCanceled = true
	snapshot.TakerCanceled = true
	h.chain.setOffer(takerAddress, 0, snapshot)

	second := offerEvent(ports.OfferCanceled, "0x03", 1700000002)
	second.MakerCanceled = true
	second.TakerCanceled = true
	require.NoError(t, h.engine.ProcessOfferEvent(ctx, second))

	liveId := domain.OfferId(lowerHex(takerAddress), 0, lowerHex(orderAddress))
	live, err := h.repoManager.OfferRepository().GetOffer(ctx, liveId)
	require.NoError(t, err)
	require.Nil(t, live)

	archivedId := liveId + "-closed-" + txHex(txHash("0x03"))
	archived, err := h.repoManager.OfferRepository().GetOffer(ctx, archivedId)
	require.NoError(t, err)
	require.NotNil(t, archived)

	require.Equal(t, domain.OfferStateCanceled, archived.State)
	require.True(t, archived.MakerCanceled)
	require.True(t, archived.TakerCanceled)
	require.Len(t, archived.History, 3)
}

func TestCancelWithClearedSlotForcesBothFlags(t *testing.T) {
	h := newHarness()
	ctx := context.Background()
	h.seedOrder(t)
	h.content.docs["offer-doc"] = []byte(`{}`)

	h.chain.setOffer(takerAddress, 0, openSnapshot())
	require.NoError(t, h.engine.ProcessOfferEvent(ctx, offerEvent(ports.OfferSubmitted, "0x01", 1700000001)))

	// The closing cancel zeroes the contract slot, so both event flags read
	// false. The offer must still end fully canceled and archived.
	h.chain.setOffer(takerAddress, 0, closedSnapshot())
	require.NoError(t, h.engine.ProcessOfferEvent(ctx, offerEvent(ports.OfferCanceled, "0x02", 1700000002)))

	liveId := domain.OfferId(lowerHex(takerAddress), 0, lowerHex(orderAddress))
	live, err := h.repoManager.OfferRepository().GetOffer(ctx, liveId)
	require.NoError(t, err)
	require.Nil(t, live)

	archivedId := liveId + "-closed-" + txHex(txHash("0x02"))
	archived, err := h.repoManager.OfferRepository().GetOffer(ctx, archivedId)
	require.NoError(t, err)
	require.NotNil(t, archived)

	require.Equal(t, domain.OfferStateCanceled, archived.State)
	require.True(t, archived.MakerCanceled)
	require.True(t, archived.TakerCanceled)
}

func TestCancelFlagsStayMonotonicAcrossEvents(t *testing.T) {
	h := newHarness()
	ctx := context.Background()
	h.seedOrder(t)
	h.content.docs["offer-doc"] = []byte(`{}`)

	snapshot := committedSnapshot()
	snapshot.MakerCanceled = true
	h.chain.setOffer(takerAddress, 0, snapshot)
	require.NoError(t, h.engine.ProcessOfferEvent(ctx, offerEvent(ports.OfferSubmitted, "0x01", 1700000001)))

	// A later snapshot reads both flags false, the stored flag must hold.
	h.chain.setOffer(takerAddress, 0, committedSnapshot())
	require.NoError(t, h.engine.ProcessOfferEvent(ctx, offerEvent(ports.OfferCommitted, "0x02", 1700000002)))

	liveId := domain.OfferId(lowerHex(takerAddress), 0, lowerHex(orderAddress))
	offer, err := h.repoManager.OfferRepository().GetOffer(ctx, liveId)
	require.NoError(t, err)
	require.True(t, offer.MakerCanceled)
	require.False(t, offer.TakerCanceled)
}
