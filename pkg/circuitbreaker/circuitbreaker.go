package circuitbreaker

import (
	log "github.com/sirupsen/logrus"
	"github.com/sony/gobreaker"
)

var (
	// MaxNumOfFailingRequests is the overall number of failing requests after
	// which a breaker may trip.
	MaxNumOfFailingRequests = 10
	// FailingRatio is the failure ratio a breaker trips at once the request
	// cap is reached.
	FailingRatio = 0.6
)

// NewCircuitBreaker returns a named *gobreaker.CircuitBreaker guarding an
// external collaborator (chain RPC, content gateway). It trips once at least
// MaxNumOfFailingRequests requests were made and FailingRatio of them failed,
// so a dead upstream stops being hammered while the indexer keeps draining
// events with degraded data.
func NewCircuitBreaker(name string) *gobreaker.CircuitBreaker {
	return gobreaker.NewCircuitBreaker(gobreaker.Settings{
		Name: name,
		ReadyToTrip: func(counts gobreaker.Counts) bool {
			ratio := float64(counts.TotalFailures) / float64(counts.Requests)
			return int(counts.Requests) > MaxNumOfFailingRequests && ratio >= FailingRatio
		},
		OnStateChange: func(name string, from, to gobreaker.State) {
			log.Warnf("circuit breaker %s moved from %s to %s", name, from, to)
		},
	})
}
