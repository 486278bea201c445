package todo

import "context"

// Repository provides owner-scoped persistence for todos.
type Repository interface {
	FindAllByOwner(ctx context.Context, ownerID string) ([]Todo, error)
	Insert(ctx context.Context, title, ownerID string) (*Todo, error)
	UpdateIfOwned(ctx context.Context, id int64, ownerID, title string) error
	DeleteIfOwned(ctx context.Context, id int64, ownerID string) error
}

// IdentityProvider yields the caller for the current request.
type IdentityProvider interface {
	CurrentUser(ctx context.Context) (string, bool)
}

// Refresher invalidates the cached list view.
type Refresher interface {
	Invalidate()
	Version() uint64
	Epoch() string
}
