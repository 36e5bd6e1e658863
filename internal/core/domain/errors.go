package domain

import "errors"

var (
	// ErrOrderNotFound is thrown when an offer event references an order that
	// was never indexed. The event cannot be repaired and must be dropped.
	ErrOrderNotFound = errors.New("order not found for offer event")
	// ErrChainReadReverted is thrown when the live contract read for an offer
	// reverts. Indicates an ordering violation upstream of the indexer.
	ErrChainReadReverted = errors.New("contract read reverted")
	// ErrInvalidStateValue is thrown when the contract reports a state code
	// outside the known range.
	ErrInvalidStateValue = errors.New("contract reported an out-of-range state")
	// ErrContentUnavailable is thrown when a content-addressed document cannot
	// be retrieved. Non-fatal, the aggregate persists with an error annotation.
	ErrContentUnavailable = errors.New("content not available")
	// ErrContentMalformed is thrown when a retrieved document does not parse
	// as a JSON object. Non-fatal, same handling as ErrContentUnavailable.
	ErrContentMalformed = errors.New("content is not a valid JSON object")
	// ErrDuplicateTransition is thrown when a transition already exists at the
	// same (taker, index, txhash) key, ie. the event is a replay.
	ErrDuplicateTransition = errors.New("transition already recorded for this transaction")
)
