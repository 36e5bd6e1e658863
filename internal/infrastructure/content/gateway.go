package content

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/sony/gobreaker"
	"go.uber.org/ratelimit"

	"github.com/tradepost-network/tradepost-indexer/internal/core/domain"
	"github.com/tradepost-network/tradepost-indexer/internal/core/ports"
	"github.com/tradepost-network/tradepost-indexer/pkg/circuitbreaker"
)

// gatewayService fetches content-addressed documents from an IPFS HTTP
// gateway. Requests are paced by a rate limiter and guarded by a circuit
// breaker so a struggling gateway degrades enrichment instead of stalling
// event processing.
type gatewayService struct {
	apiURL  string
	client  *http.Client
	limiter ratelimit.Limiter
	cb      *gobreaker.CircuitBreaker
}

// NewGatewayService returns a ports.ContentStore backed by the IPFS HTTP
// gateway at apiURL, capped at requestsPerSecond.
func NewGatewayService(apiURL string, requestsPerSecond int) ports.ContentStore {
	return &gatewayService{
		apiURL:  strings.TrimSuffix(apiURL, "/"),
		client:  &http.Client{Timeout: 30 * time.Second},
		limiter: ratelimit.New(requestsPerSecond),
		cb:      circuitbreaker.NewCircuitBreaker("content-gateway"),
	}
}

func (g *gatewayService) Fetch(ctx context.Context, cid string) ([]byte, error) {
	if cid == "" {
		return nil, fmt.Errorf("%w: empty content id", domain.ErrContentUnavailable)
	}

	g.limiter.Take()

	url := fmt.Sprintf("%s/ipfs/%s", g.apiURL, cid)
	out, err := g.cb.Execute(func() (interface{}, error) {
		return g.get(ctx, url)
	})
	if err != nil {
		return nil, fmt.Errorf("%w: %s: %s", domain.ErrContentUnavailable, cid, err)
	}
	return out.([]byte), nil
}

func (g *gatewayService) get(ctx context.Context, url string) ([]byte, error) {
	req, err := http.NewRequestWithContext(ctx, "GET", url, nil)
	if err != nil {
		return nil, err
	}

	rs, err := g.client.Do(req)
	if err != nil {
		return nil, err
	}
	defer rs.Body.Close()

	body, err := io.ReadAll(rs.Body)
	if err != nil {
		return nil, err
	}
	if rs.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("status %d", rs.StatusCode)
	}
	return body, nil
}
