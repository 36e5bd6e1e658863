package domain

import "context"

// BookRepository defines the abstraction for Book
type BookRepository interface {
	// GetBook returns the book stored at the given id, or nil if absent.
	GetBook(ctx context.Context, id string) (*Book, error)
	// SaveBook inserts or overwrites the book at its id.
	SaveBook(ctx context.Context, book *Book) error
}
