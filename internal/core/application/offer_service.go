package application

import (
	"context"
	"fmt"

	log "github.com/sirupsen/logrus"
	"github.com/tradepost-network/tradepost-indexer/internal/core/domain"
	"github.com/tradepost-network/tradepost-indexer/internal/core/ports"
)

// OfferEngine is the converge point for every offer lifecycle event. Given an
// event and the live on-chain snapshot it resolves the offer identity, applies
// the state transition, records an immutable history entry and moves closed
// offers to their archival id so the (taker, index, order) triple becomes
// reusable.
//
// Failure policy: missing identity or a reverted chain read drops the event
// with no writes at all; missing metadata degrades the aggregate, which still
// persists with an error annotation.
type OfferEngine struct {
	repoManager ports.RepoManager
	chain       ports.ChainReader
	tokens      *TokenResolver
	meta        *MetadataEnricher
}

func NewOfferEngine(
	repoManager ports.RepoManager,
	chain ports.ChainReader,
	tokens *TokenResolver,
	meta *MetadataEnricher,
) *OfferEngine {
	return &OfferEngine{
		repoManager: repoManager,
		chain:       chain,
		tokens:      tokens,
		meta:        meta,
	}
}

// ProcessOfferEvent applies one offer lifecycle event.
func (e *OfferEngine) ProcessOfferEvent(ctx context.Context, event ports.OfferEvent) error {
	taker := hexAddr(event.Taker)
	orderId := hexAddr(event.Order)
	txHash := hexHash(event.TxHash)

	order, err := e.repoManager.OrderRepository().GetOrder(ctx, orderId)
	if err != nil {
		return err
	}
	if order == nil {
		log.Errorf("order %s not found for %s, this should be impossible", orderId, event.EventType)
		return fmt.Errorf("%w: %s", domain.ErrOrderNotFound, orderId)
	}

	// A transition at this key means the exact transaction was already
	// applied. Replays must not touch the stored state again.
	transitionId := domain.OfferTransitionId(taker, event.Index, txHash)
	transitionRepo := e.repoManager.TransitionRepository()
	if existing, err := transitionRepo.GetOfferTransition(ctx, transitionId); err != nil {
		return err
	} else if existing != nil {
		log.Errorf("transition %s already recorded, dropping replayed event", transitionId)
		return fmt.Errorf("%w: %s", domain.ErrDuplicateTransition, transitionId)
	}

	snapshot, err := e.chain.ReadOffer(ctx, event.Order, event.Taker, event.Index)
	if err != nil {
		log.Errorf("offer (%s, %d) not found on %s, this should be impossible: %s",
			taker, event.Index, orderId, err)
		return fmt.Errorf("%w: offer (%s, %d) on %s", domain.ErrChainReadReverted,
			taker, event.Index, orderId)
	}

	contractState, err := domain.OfferStateName(int(snapshot.State))
	if err != nil {
		log.Errorf("invalid state for offer (%s, %d) on %s: %s", taker, event.Index, orderId, err)
		return err
	}

	offerRepo := e.repoManager.OfferRepository()
	liveId := domain.OfferId(taker, event.Index, orderId)
	offer, err := offerRepo.GetOffer(ctx, liveId)
	if err != nil {
		return err
	}
	if offer == nil {
		offer = domain.NewOffer(taker, event.Index, orderId)
	}

	offer.Timestamp = event.Timestamp
	offer.ContractState = contractState
	offer.State = displayState(event.EventType, contractState)
	offer.Maker = order.Maker
	offer.MergeCancelFlags(snapshot.MakerCanceled, snapshot.TakerCanceled)

	if !offer.IsClosed() {
		// Live offers track the snapshot in full and get re-enriched.
		offer.TokenAddress = hexAddr(snapshot.Token)
		offer.Price = snapshot.Price
		offer.BuyersCost = snapshot.BuyersCost
		offer.SellersStake = snapshot.SellersStake
		offer.Timeout = snapshot.Timeout
		offer.Uri = snapshot.Uri
		offer.AcceptedAt = snapshot.AcceptedAt

		token, err := e.tokens.Resolve(ctx, snapshot.Token)
		if err != nil {
			return err
		}
		offer.Token = token.Id

		offer.Error = ""
		e.meta.EnrichOffer(ctx, offer, snapshot.Uri)
	}
	// Closed offers carry their stored fields forward untouched: the archived
	// record is a snapshot of history, not a re-derivation.

	if event.EventType == ports.OfferCanceled {
		e.applyCancellation(offer, event)
	}

	// A closed offer is rekeyed to its archival id so the live triple is
	// freed for reuse.
	archivedId := ""
	if offer.IsClosed() {
		archivedId = offer.ArchivedId(txHash)
		offer.Id = archivedId
	}

	transition := domain.NewOfferTransition(offer, txHash, event.Timestamp)
	offer.AppendHistory(transition.Id)

	// Persistence is ordered so that a crash between writes converges on
	// replay: offer, then order, then the transition, and the live record of
	// a closed offer is deleted only once the transition exists. Until the
	// transition is written, redelivery still finds the live record with its
	// fields intact and re-applies the identical writes.
	if err := offerRepo.SaveOffer(ctx, offer); err != nil {
		return err
	}

	order.AddOffer(liveId)
	if archivedId != "" {
		order.ReplaceOffer(liveId, archivedId)
	}
	if err := e.repoManager.OrderRepository().SaveOrder(ctx, order); err != nil {
		return err
	}

	if err := transitionRepo.SaveOfferTransition(ctx, transition); err != nil {
		return err
	}

	if archivedId != "" {
		return offerRepo.DeleteOffer(ctx, liveId)
	}
	return nil
}

// applyCancellation refines the state for cancel events. Cancellation flags
// are monotonic: once set they can never be unset, which is what makes the
// same-block double-cancel race detectable.
func (e *OfferEngine) applyCancellation(offer *domain.Offer, event ports.OfferEvent) {
	if !event.MakerCanceled && !event.TakerCanceled {
		// The closing cancel clears the contract slot, so the event reports
		// both flags false. It only fires once both sides canceled.
		offer.MakerCanceled = true
		offer.TakerCanceled = true
	} else {
		offer.MergeCancelFlags(event.MakerCanceled, event.TakerCanceled)
	}

	if offer.MakerCanceled && offer.TakerCanceled {
		offer.State = domain.OfferStateCanceled
		offer.ContractState = domain.OfferStateClosed
		return
	}

	if offer.IsClosed() {
		// Both sides canceled in the same block and this observation caught
		// the contract half-way: the state reads Closed but only one flag is
		// up. Treat it as still Committed, the closing cancel arrives next.
		offer.ContractState = domain.OfferStateCommitted
		offer.State = domain.OfferStateCommitted
	}
}

// displayState refines the contract state with the event that triggered the
// observation. Terminal events name how the offer closed, every other event
// shows the contract state as is.
func displayState(eventType ports.EventType, contractState string) string {
	switch eventType {
	case ports.OfferConfirmed:
		return domain.OfferStateConfirmed
	case ports.OfferRefunded:
		return domain.OfferStateRefunded
	case ports.OfferWithdrawn:
		return domain.OfferStateWithdrawn
	default:
		return contractState
	}
}
