package domain

import "fmt"

// Order is the data structure representing a maker's listing. It is created
// exactly once when the book emits the creation event and never deleted; a URI
// change archives a snapshot of the previous fields under a transaction
// qualified id while the live id keeps getting re-enriched.
type Order struct {
	Id           string
	Address      string
	Maker        string
	TokenAddress string
	Token        string
	Uri          string
	CreatedAt    int64
	IsCurrent    bool

	Title               string
	Description         string
	PrimaryImage        string
	EncryptionPublicKey string
	PriceSuggested      string
	StakeSuggested      string
	AllowedTakers       []string
	OfferSchema         string
	OfferSchemaUri      string

	Offers     []string
	OfferCount int64
	History    []string
	Error      string
}

// NewOrder returns an order for the given contract address with empty offer
// and history lists.
func NewOrder(address string, createdAt int64) *Order {
	return &Order{
		Id:        address,
		Address:   address,
		CreatedAt: createdAt,
		IsCurrent: true,
		Offers:    []string{},
		History:   []string{},
	}
}

// AddOffer associates an offer with the order. The association is idempotent,
// the count is incremented only on an actual append. Returns whether the offer
// was newly added.
func (o *Order) AddOffer(offerId string) bool {
	for _, id := range o.Offers {
		if id == offerId {
			return false
		}
	}
	o.Offers = append(o.Offers, offerId)
	o.OfferCount = int64(len(o.Offers))
	return true
}

// ReplaceOffer swaps an offer id in place, keeping position and count. Used
// when a closed offer is rekeyed to its archival id. Returns whether the old
// id was present.
func (o *Order) ReplaceOffer(oldId, newId string) bool {
	for i, id := range o.Offers {
		if id == oldId {
			o.Offers[i] = newId
			return true
		}
	}
	return false
}

// ArchivedId returns the identifier an order snapshot is stored under when its
// URI changes.
func (o *Order) ArchivedId(txHash string) string {
	return fmt.Sprintf("%s-%s", o.Id, txHash)
}

// Snapshot returns a copy of the order frozen under the archival id. The copy
// keeps the field values the order had before the URI change.
func (o *Order) Snapshot(txHash string) *Order {
	snapshot := *o
	snapshot.Id = o.ArchivedId(txHash)
	snapshot.IsCurrent = false
	snapshot.Offers = append([]string{}, o.Offers...)
	snapshot.History = append([]string{}, o.History...)
	snapshot.AllowedTakers = append([]string{}, o.AllowedTakers...)
	return &snapshot
}

// AppendHistory links an order transition id into the order's history.
func (o *Order) AppendHistory(transitionId string) {
	o.History = append(o.History, transitionId)
}
