package application

import (
	"context"

	log "github.com/sirupsen/logrus"
	"github.com/tradepost-network/tradepost-indexer/internal/core/ports"
)

// IndexerService defines the methods to start and stop the event consumer.
type IndexerService interface {
	Observe()
	StopObserving()
}

// indexerService pulls typed events off the source channel and dispatches
// them strictly in order: one event is fully applied before the next is read.
// A failed event is logged and dropped, it never halts indexing.
type indexerService struct {
	source ports.EventSource
	orders *OrderManager
	offers *OfferEngine
}

func NewIndexerService(
	source ports.EventSource,
	orders *OrderManager,
	offers *OfferEngine,
) IndexerService {
	return &indexerService{
		source: source,
		orders: orders,
		offers: offers,
	}
}

func (s *indexerService) Observe() {
	go s.source.Start()
	go s.handleEvents()
}

func (s *indexerService) StopObserving() {
	s.source.Stop()
}

func (s *indexerService) handleEvents() {
	for event := range s.source.GetEventChannel() {
		ctx := context.Background()

		var err error
		switch e := event.(type) {
		case ports.QuitEvent:
			return
		case ports.BookEvent:
			if e.EventType == ports.OrderCreated {
				err = s.orders.CreateOrder(ctx, e)
			} else {
				err = s.orders.RefreshBook(ctx, e)
			}
		case ports.URIEvent:
			err = s.orders.ChangeOrderUri(ctx, e)
		case ports.OfferEvent:
			err = s.offers.ProcessOfferEvent(ctx, e)
		default:
			log.Warnf("unknown event type %s", event.Type())
		}

		if err != nil {
			log.WithField("delivery", event.Correlation()).
				Warnf("dropping %s event: %s", event.Type(), err)
		}
	}
}
