package ports

import (
	"github.com/ethereum/go-ethereum/common"
)

const (
	QuitSignal EventType = iota
	OrderCreated
	OrderURIChanged
	FeeChanged
	OwnerChanged
	OfferSubmitted
	OfferCanceled
	OfferCommitted
	OfferConfirmed
	OfferRefunded
	OfferWithdrawn
)

type EventType int

func (et EventType) String() string {
	switch et {
	case QuitSignal:
		return "QuitSignal"
	case OrderCreated:
		return "OrderCreated"
	case OrderURIChanged:
		return "OrderURIChanged"
	case FeeChanged:
		return "FeeChanged"
	case OwnerChanged:
		return "OwnerChanged"
	case OfferSubmitted:
		return "OfferSubmitted"
	case OfferCanceled:
		return "OfferCanceled"
	case OfferCommitted:
		return "OfferCommitted"
	case OfferConfirmed:
		return "OfferConfirmed"
	case OfferRefunded:
		return "OfferRefunded"
	case OfferWithdrawn:
		return "OfferWithdrawn"
	default:
		return "Unknown"
	}
}

// Event is a typed chain event. Correlation returns the delivery id assigned
// by the event source, used to tie dispatch logs to delivery logs.
type Event interface {
	Type() EventType
	Correlation() string
}

type QuitEvent struct{}

func (q QuitEvent) Type() EventType {
	return QuitSignal
}

func (q QuitEvent) Correlation() string {
	return ""
}

// BookEvent covers OrderCreated, FeeChanged and OwnerChanged emitted by the
// order-book contract.
type BookEvent struct {
	EventType EventType
	Book      common.Address
	Order     common.Address
	Timestamp int64
	TxHash    common.Hash
	Delivery  string
}

func (b BookEvent) Type() EventType {
	return b.EventType
}

func (b BookEvent) Correlation() string {
	return b.Delivery
}

// URIEvent is the OrderURIChanged event emitted by an order contract.
type URIEvent struct {
	Order     common.Address
	NextUri   string
	Timestamp int64
	TxHash    common.Hash
	Delivery  string
}

func (u URIEvent) Type() EventType {
	return OrderURIChanged
}

func (u URIEvent) Correlation() string {
	return u.Delivery
}

// OfferEvent covers every offer lifecycle event emitted by an order contract.
// MakerCanceled and TakerCanceled carry meaning only for OfferCanceled and
// hold the flag values observed in that specific event.
type OfferEvent struct {
	EventType     EventType
	Order         common.Address
	Taker         common.Address
	Index         uint64
	Timestamp     int64
	TxHash        common.Hash
	MakerCanceled bool
	TakerCanceled bool
	Delivery      string
}

func (o OfferEvent) Type() EventType {
	return o.EventType
}

func (o OfferEvent) Correlation() string {
	return o.Delivery
}

// EventSource delivers typed chain events in the exact order they occurred on
// chain. Use Start and Stop to manage it.
type EventSource interface {
	Start()
	Stop()
	GetEventChannel() chan Event
}
