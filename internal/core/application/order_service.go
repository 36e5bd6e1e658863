package application

import (
	"context"
	"fmt"

	"github.com/ethereum/go-ethereum/common"
	log "github.com/sirupsen/logrus"
	"github.com/tradepost-network/tradepost-indexer/internal/core/domain"
	"github.com/tradepost-network/tradepost-indexer/internal/core/ports"
)

// OrderManager creates and maintains Order aggregates and the Book entity
// that owns them.
type OrderManager struct {
	repoManager ports.RepoManager
	chain       ports.ChainReader
	tokens      *TokenResolver
	meta        *MetadataEnricher
}

func NewOrderManager(
	repoManager ports.RepoManager,
	chain ports.ChainReader,
	tokens *TokenResolver,
	meta *MetadataEnricher,
) *OrderManager {
	return &OrderManager{
		repoManager: repoManager,
		chain:       chain,
		tokens:      tokens,
		meta:        meta,
	}
}

// CreateOrder indexes a newly created order contract. Delivery guarantees make
// a duplicate creation topologically impossible, so an existing record is an
// anomaly that gets logged and overwritten rather than rejected.
func (m *OrderManager) CreateOrder(ctx context.Context, event ports.BookEvent) error {
	id := hexAddr(event.Order)
	orderRepo := m.repoManager.OrderRepository()

	existing, err := orderRepo.GetOrder(ctx, id)
	if err != nil {
		return err
	}
	if existing != nil {
		log.Errorf("order already exists: %s", id)
		log.Error("this should not be possible, overwriting existing order")
	}

	order := domain.NewOrder(id, event.Timestamp)

	info, err := m.chain.ReadOrder(ctx, event.Order)
	if err != nil {
		log.Errorf("unable to read order contract at %s: %s", id, err)
		return fmt.Errorf("%w: order %s", domain.ErrChainReadReverted, id)
	}
	order.Maker = hexAddr(info.Maker)
	order.Uri = info.Uri
	order.TokenAddress = hexAddr(info.Token)

	token, err := m.tokens.Resolve(ctx, info.Token)
	if err != nil {
		return err
	}
	order.Token = token.Id

	m.meta.EnrichOrder(ctx, order, order.Uri)

	if err := orderRepo.SaveOrder(ctx, order); err != nil {
		return err
	}

	return m.updateBook(ctx, event.Book, order.Id)
}

// RefreshBook re-reads the book contract's fee and owner. Used for the
// FeeChanged and OwnerChanged events.
func (m *OrderManager) RefreshBook(ctx context.Context, event ports.BookEvent) error {
	return m.updateBook(ctx, event.Book, "")
}

// ChangeOrderUri handles an order's URI change while preserving history: the
// prior field snapshot is archived under a transaction-qualified id, an
// immutable order transition points at it, and the live order is re-enriched
// from the new URI.
func (m *OrderManager) ChangeOrderUri(ctx context.Context, event ports.URIEvent) error {
	id := hexAddr(event.Order)
	orderRepo := m.repoManager.OrderRepository()

	order, err := orderRepo.GetOrder(ctx, id)
	if err != nil {
		return err
	}
	if order == nil {
		log.Warnf("order %s not found on URI change", id)
		return fmt.Errorf("%w: %s", domain.ErrOrderNotFound, id)
	}

	txHash := hexHash(event.TxHash)

	snapshot := order.Snapshot(txHash)
	if err := orderRepo.SaveOrder(ctx, snapshot); err != nil {
		return err
	}

	transition := &domain.OrderTransition{
		Id:        txHash,
		Order:     snapshot.Id,
		Timestamp: event.Timestamp,
	}
	if err := m.repoManager.TransitionRepository().SaveOrderTransition(ctx, transition); err != nil {
		return err
	}

	order.AppendHistory(transition.Id)
	order.Uri = event.NextUri
	order.Error = ""
	m.meta.EnrichOrder(ctx, order, event.NextUri)

	return orderRepo.SaveOrder(ctx, order)
}

func (m *OrderManager) updateBook(ctx context.Context, book common.Address, orderId string) error {
	id := hexAddr(book)
	bookRepo := m.repoManager.BookRepository()

	entity, err := bookRepo.GetBook(ctx, id)
	if err != nil {
		return err
	}
	if entity == nil {
		entity = domain.NewBook(id)
	}

	// Fee and owner reads are tolerated like token fields, a failed read
	// keeps the prior values.
	if info, err := m.chain.ReadBook(ctx, book); err != nil {
		log.Warnf("unable to read book contract at %s: %s", id, err)
	} else {
		entity.Fee = info.Fee.String()
		entity.Owner = hexAddr(info.Owner)
	}

	if orderId != "" {
		entity.AddOrder(orderId)
	}

	return bookRepo.SaveBook(ctx, entity)
}
