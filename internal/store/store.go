package store

import (
	"context"
	"errors"

	"salesdesk/backend/internal/domain"
)

var (
	ErrNotFound      = errors.New("not found")
	ErrInvalidEntity = errors.New("invalid entity")
)

// Repository is the document-store contract for the two collections the
// application keeps: clients and sales. Implementations assign opaque ids on
// create and return the stored document. Failures are propagated, never
// swallowed, so callers can tell "no data" from "failed to fetch".
type Repository interface {
	ListClients(ctx context.Context) ([]domain.Client, error)
	GetClient(ctx context.Context, id string) (*domain.Client, error)
	CreateClient(ctx context.Context, client domain.Client) (*domain.Client, error)
	UpdateClient(ctx context.Context, id string, client domain.Client) (*domain.Client, error)
	DeleteClient(ctx context.Context, id string) error

	ListSales(ctx context.Context) ([]domain.Sale, error)
	GetSale(ctx context.Context, id string) (*domain.Sale, error)
	CreateSale(ctx context.Context, sale domain.Sale) (*domain.Sale, error)
	UpdateSale(ctx context.Context, id string, sale domain.Sale) (*domain.Sale, error)
	DeleteSale(ctx context.Context, id string) error
}
