package ports

import "context"

// ContentStore defines content-addressed document retrieval. Fetch returns
// domain.ErrContentUnavailable when the document cannot be retrieved.
type ContentStore interface {
	Fetch(ctx context.Context, cid string) ([]byte, error)
}
