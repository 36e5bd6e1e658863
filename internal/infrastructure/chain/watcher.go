package chain

import (
	"context"
	"fmt"
	"math/big"
	"strings"
	"sync"
	"time"

	"github.com/ethereum/go-ethereum"
	"github.com/ethereum/go-ethereum/accounts/abi"
	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/core/types"
	"github.com/ethereum/go-ethereum/crypto"
	"github.com/google/uuid"
	log "github.com/sirupsen/logrus"
	"github.com/tradepost-network/tradepost-indexer/internal/core/ports"
)

const (
	eventQueueMaxSize = 100
	headerCacheSize   = 64
)

var (
	sigOrderCreated   = crypto.Keccak256Hash([]byte("OrderCreated(address)"))
	sigFeeChanged     = crypto.Keccak256Hash([]byte("FeeChanged(uint256)"))
	sigOwnerChanged   = crypto.Keccak256Hash([]byte("OwnerChanged(address)"))
	sigOrderURI       = crypto.Keccak256Hash([]byte("OrderURIChanged(string,string)"))
	sigOfferSubmitted = crypto.Keccak256Hash([]byte("OfferSubmitted(address,uint256)"))
	sigOfferCanceled  = crypto.Keccak256Hash([]byte("OfferCanceled(address,uint256,bool,bool)"))
	sigOfferCommitted = crypto.Keccak256Hash([]byte("OfferCommitted(address,uint256)"))
	sigOfferConfirmed = crypto.Keccak256Hash([]byte("OfferConfirmed(address,uint256)"))
	sigOfferRefunded  = crypto.Keccak256Hash([]byte("OfferRefunded(address,uint256)"))
	sigOfferWithdrawn = crypto.Keccak256Hash([]byte("OfferWithdrawn(address,uint256)"))

	offerEventTypes = map[common.Hash]ports.EventType{
		sigOfferSubmitted: ports.OfferSubmitted,
		sigOfferCanceled:  ports.OfferCanceled,
		sigOfferCommitted: ports.OfferCommitted,
		sigOfferConfirmed: ports.OfferConfirmed,
		sigOfferRefunded:  ports.OfferRefunded,
		sigOfferWithdrawn: ports.OfferWithdrawn,
	}
)

const eventsABIJSON = `[
	{"name":"OrderURIChanged","type":"event","inputs":[{"name":"previous","type":"string","indexed":false},{"name":"next","type":"string","indexed":false}]},
	{"name":"OfferCanceled","type":"event","inputs":[{"name":"taker","type":"address","indexed":true},{"name":"index","type":"uint256","indexed":true},{"name":"makerCanceled","type":"bool","indexed":false},{"name":"takerCanceled","type":"bool","indexed":false}]}
]`

// LogClient is the subset of the Ethereum RPC client used by the watcher.
type LogClient interface {
	BlockNumber(ctx context.Context) (uint64, error)
	FilterLogs(ctx context.Context, q ethereum.FilterQuery) ([]types.Log, error)
	HeaderByHash(ctx context.Context, hash common.Hash) (*types.Header, error)
}

// Opts defines the parameters needed for creating a watcher with NewWatcher.
type Opts struct {
	Client LogClient
	// Book is the order-book contract whose order creations are followed.
	Book common.Address
	// Orders seeds the set of already known order contracts, typically the
	// live orders loaded from the entity store at startup.
	Orders []common.Address
	// StartBlock is the first block to scan.
	StartBlock uint64
	// IntervalInMilliseconds is the polling interval for new blocks.
	IntervalInMilliseconds int
}

// watcher polls the chain for marketplace logs and turns them into typed
// events, delivered on a channel in the exact on-chain order. Newly created
// order contracts are added to the filter on the fly.
type watcher struct {
	client    LogClient
	book      common.Address
	orders    map[common.Address]struct{}
	nextBlock uint64
	interval  int
	eventChan chan ports.Event
	quitChan  chan struct{}
	eventsABI abi.ABI
	headers   map[common.Hash]int64
	mutex     *sync.RWMutex
}

// NewWatcher returns a ports.EventSource polling the chain for marketplace
// events. Use Start and Stop to manage it.
func NewWatcher(opts Opts) ports.EventSource {
	eventsABI, _ := abi.JSON(strings.NewReader(eventsABIJSON))

	orders := make(map[common.Address]struct{}, len(opts.Orders))
	for _, order := range opts.Orders {
		orders[order] = struct{}{}
	}

	return &watcher{
		client:    opts.Client,
		book:      opts.Book,
		orders:    orders,
		nextBlock: opts.StartBlock,
		interval:  opts.IntervalInMilliseconds,
		eventChan: make(chan ports.Event, eventQueueMaxSize),
		quitChan:  make(chan struct{}),
		eventsABI: eventsABI,
		headers:   map[common.Hash]int64{},
		mutex:     &sync.RWMutex{},
	}
}

func (w *watcher) Start() {
	ticker := time.NewTicker(time.Duration(w.interval) * time.Millisecond)
	defer ticker.Stop()

	for {
		select {
		case <-w.quitChan:
			w.eventChan <- ports.QuitEvent{}
			return
		case <-ticker.C:
			if err := w.poll(context.Background()); err != nil {
				log.Warnf("polling chain: %s", err)
			}
		}
	}
}

func (w *watcher) Stop() {
	close(w.quitChan)
}

func (w *watcher) GetEventChannel() chan ports.Event {
	return w.eventChan
}

func (w *watcher) poll(ctx context.Context) error {
	head, err := w.client.BlockNumber(ctx)
	if err != nil {
		return err
	}
	if head < w.nextBlock {
		return nil
	}

	query := ethereum.FilterQuery{
		FromBlock: new(big.Int).SetUint64(w.nextBlock),
		ToBlock:   new(big.Int).SetUint64(head),
		Addresses: w.addresses(),
	}
	logs, err := w.client.FilterLogs(ctx, query)
	if err != nil {
		return err
	}

	for _, record := range logs {
		if record.Removed || len(record.Topics) == 0 {
			continue
		}
		delivery := uuid.NewString()
		event, err := w.decode(ctx, record, delivery)
		if err != nil {
			log.Warnf("decoding log in tx %s: %s", record.TxHash.Hex(), err)
			continue
		}
		if event == nil {
			continue
		}
		log.WithField("delivery", delivery).
			Debugf("delivering %s from block %d", event.Type(), record.BlockNumber)
		w.eventChan <- event
	}

	w.nextBlock = head + 1
	return nil
}

func (w *watcher) addresses() []common.Address {
	w.mutex.RLock()
	defer w.mutex.RUnlock()

	addresses := make([]common.Address, 0, len(w.orders)+1)
	addresses = append(addresses, w.book)
	for order := range w.orders {
		addresses = append(addresses, order)
	}
	return addresses
}

func (w *watcher) addOrder(order common.Address) {
	w.mutex.Lock()
	defer w.mutex.Unlock()
	w.orders[order] = struct{}{}
}

func (w *watcher) decode(ctx context.Context, record types.Log, delivery string) (ports.Event, error) {
	timestamp, err := w.blockTime(ctx, record.BlockHash)
	if err != nil {
		return nil, err
	}

	if eventType, ok := offerEventTypes[record.Topics[0]]; ok {
		return w.decodeOfferLog(eventType, record, timestamp, delivery)
	}

	switch record.Topics[0] {
	case sigOrderCreated:
		if len(record.Topics) < 2 {
			return nil, fmt.Errorf("OrderCreated log carries no order topic")
		}
		order := common.BytesToAddress(record.Topics[1].Bytes())
		w.addOrder(order)
		return ports.BookEvent{
			EventType: ports.OrderCreated,
			Book:      record.Address,
			Order:     order,
			Timestamp: timestamp,
			TxHash:    record.TxHash,
			Delivery:  delivery,
		}, nil
	case sigFeeChanged:
		return ports.BookEvent{
			EventType: ports.FeeChanged,
			Book:      record.Address,
			Timestamp: timestamp,
			TxHash:    record.TxHash,
			Delivery:  delivery,
		}, nil
	case sigOwnerChanged:
		return ports.BookEvent{
			EventType: ports.OwnerChanged,
			Book:      record.Address,
			Timestamp: timestamp,
			TxHash:    record.TxHash,
			Delivery:  delivery,
		}, nil
	case sigOrderURI:
		values, err := w.eventsABI.Events["OrderURIChanged"].Inputs.Unpack(record.Data)
		if err != nil {
			return nil, err
		}
		return ports.URIEvent{
			Order:     record.Address,
			NextUri:   values[1].(string),
			Timestamp: timestamp,
			TxHash:    record.TxHash,
			Delivery:  delivery,
		}, nil
	}
	return nil, nil
}

// decodeOfferLog turns a log carrying one of the offer topic signatures into
// an OfferEvent. Malformed logs are rejected, never panicked on.
func (w *watcher) decodeOfferLog(
	eventType ports.EventType, record types.Log, timestamp int64, delivery string,
) (ports.Event, error) {
	if len(record.Topics) < 3 {
		return nil, fmt.Errorf(
			"%s log carries %d topics, expected taker and index", eventType, len(record.Topics),
		)
	}

	event := ports.OfferEvent{
		EventType: eventType,
		Order:     record.Address,
		Taker:     common.BytesToAddress(record.Topics[1].Bytes()),
		Index:     record.Topics[2].Big().Uint64(),
		Timestamp: timestamp,
		TxHash:    record.TxHash,
		Delivery:  delivery,
	}

	if eventType == ports.OfferCanceled {
		values, err := w.eventsABI.Events["OfferCanceled"].Inputs.Unpack(record.Data)
		if err != nil {
			return nil, err
		}
		event.MakerCanceled = values[0].(bool)
		event.TakerCanceled = values[1].(bool)
	}
	return event, nil
}

func (w *watcher) blockTime(ctx context.Context, hash common.Hash) (int64, error) {
	if timestamp, ok := w.headers[hash]; ok {
		return timestamp, nil
	}
	header, err := w.client.HeaderByHash(ctx, hash)
	if err != nil {
		return 0, err
	}
	if len(w.headers) >= headerCacheSize {
		w.headers = map[common.Hash]int64{}
	}
	timestamp := int64(header.Time)
	w.headers[hash] = timestamp
	return timestamp, nil
}
