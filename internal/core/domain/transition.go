package domain

import "fmt"

// OfferTransition is an immutable snapshot of an offer's state-relevant fields
// taken at the moment an event is applied. Keyed by (taker, index, txhash) so
// a replayed transaction can never record twice.
type OfferTransition struct {
	Id            string
	Offer         string
	TakerCanceled bool
	MakerCanceled bool
	State         string
	Timestamp     int64
}

// OfferTransitionId returns the identity of a transition for the given offer
// identity and transaction.
func OfferTransitionId(taker string, index uint64, txHash string) string {
	return fmt.Sprintf("%s-%d-%s", taker, index, txHash)
}

// NewOfferTransition snapshots the offer's cancel flags, display state and the
// event timestamp under the transaction-qualified id.
func NewOfferTransition(offer *Offer, txHash string, timestamp int64) *OfferTransition {
	return &OfferTransition{
		Id:            OfferTransitionId(offer.Taker, offer.Index, txHash),
		Offer:         offer.Id,
		TakerCanceled: offer.TakerCanceled,
		MakerCanceled: offer.MakerCanceled,
		State:         offer.State,
		Timestamp:     timestamp,
	}
}

// OrderTransition records a URI change on an order. It points at the archived
// snapshot of the order as it was before the change.
type OrderTransition struct {
	Id        string
	Order     string
	Timestamp int64
}
