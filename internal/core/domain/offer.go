package domain

import (
	"fmt"
	"math/big"
)

// Contract-reported lifecycle codes, in the order the contract numbers them.
const (
	OfferStateCodeClosed = iota
	OfferStateCodeOpen
	OfferStateCodeCommitted
)

const (
	OfferStateClosed    = "Closed"
	OfferStateOpen      = "Open"
	OfferStateCommitted = "Committed"
	OfferStateConfirmed = "Confirmed"
	OfferStateRefunded  = "Refunded"
	OfferStateWithdrawn = "Withdrawn"
	OfferStateCanceled  = "Canceled"
)

var offerStateNames = []string{OfferStateClosed, OfferStateOpen, OfferStateCommitted}

// OfferStateName maps a contract state code to its name. An out-of-range code
// returns ErrInvalidStateValue, events carrying one must be dropped.
func OfferStateName(code int) (string, error) {
	if code < 0 || code >= len(offerStateNames) {
		return "", fmt.Errorf("%w: %d", ErrInvalidStateValue, code)
	}
	return offerStateNames[code], nil
}

// Offer is the data structure representing a taker's bid against an order.
// While the contract state is non-Closed the offer lives at OfferId(taker,
// index, order); once closed it is moved to ArchivedId so the identity triple
// becomes reusable.
type Offer struct {
	Id            string
	Taker         string
	Maker         string
	Index         uint64
	Order         string
	ContractState string
	State         string
	TokenAddress  string
	Token         string
	Price         *big.Int
	BuyersCost    *big.Int
	SellersStake  *big.Int
	Timeout       *big.Int
	Uri           string
	AcceptedAt    *big.Int
	Timestamp     int64
	MakerCanceled bool
	TakerCanceled bool

	MessagePublicKey string
	MessageNonce     string
	Message          string

	Error   string
	History []string
}

// OfferId returns the live identity of an offer.
func OfferId(taker string, index uint64, order string) string {
	return fmt.Sprintf("%s-%d-%s", taker, index, order)
}

// NewOffer returns an offer with the given live identity and empty history.
func NewOffer(taker string, index uint64, order string) *Offer {
	return &Offer{
		Id:      OfferId(taker, index, order),
		Taker:   taker,
		Index:   index,
		Order:   order,
		History: []string{},
	}
}

// ArchivedId returns the identifier the offer is stored under once closed,
// qualified by the transaction that closed it.
func (o *Offer) ArchivedId(txHash string) string {
	return fmt.Sprintf("%s-closed-%s", o.Id, txHash)
}

// MergeCancelFlags raises the cancellation flags. Flags are monotonic, once
// set by any observation they are never cleared.
func (o *Offer) MergeCancelFlags(makerCanceled, takerCanceled bool) {
	o.MakerCanceled = o.MakerCanceled || makerCanceled
	o.TakerCanceled = o.TakerCanceled || takerCanceled
}

// IsClosed returns whether the contract reports the offer as closed.
func (o *Offer) IsClosed() bool {
	return o.ContractState == OfferStateClosed
}

// AppendHistory links a transition id into the offer's history.
func (o *Offer) AppendHistory(transitionId string) {
	o.History = append(o.History, transitionId)
}
