package domain

import "context"

// TokenRepository defines the abstraction for Token
type TokenRepository interface {
	// GetToken returns the token stored at the given id, or nil if absent.
	GetToken(ctx context.Context, id string) (*Token, error)
	// SaveToken inserts or overwrites the token at its id.
	SaveToken(ctx context.Context, token *Token) error
}
