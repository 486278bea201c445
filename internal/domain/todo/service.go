package todo

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strconv"
	"sync"
	"time"

	"github.com/ganot/todos/internal/repository"
	"golang.org/x/sync/singleflight"
)

// DefaultStoreTimeout bounds a single store call when no timeout is configured.
const DefaultStoreTimeout = 5 * time.Second

// Service implements the owner-scoped mutation and query operations.
type Service struct {
	repo         Repository
	identity     IdentityProvider
	refresh      Refresher
	logger       *slog.Logger
	storeTimeout time.Duration

	mu        sync.Mutex
	snapshots map[string]Snapshot
	group     singleflight.Group
}

// Option configures a Service.
type Option func(*Service)

// WithStoreTimeout sets the per-call store timeout. Zero disables it.
func WithStoreTimeout(d time.Duration) Option {
	return func(s *Service) { s.storeTimeout = d }
}

// NewService creates a new todo service.
func NewService(repo Repository, identity IdentityProvider, refresh Refresher, logger *slog.Logger, opts ...Option) *Service {
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}
	s := &Service{
		repo:         repo,
		identity:     identity,
		refresh:      refresh,
		logger:       logger,
		storeTimeout: DefaultStoreTimeout,
		snapshots:    make(map[string]Snapshot),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Create inserts a todo for the caller.
func (s *Service) Create(ctx context.Context, form Form) Outcome {
	log := s.logger.With("op", "create")

	userID, ok := s.identity.CurrentUser(ctx)
	if !ok {
		return s.skip(ctx, log, ErrUnauthenticated)
	}
	log = log.With("user_id", userID)

	title, err := form.Title()
	if err != nil {
		return s.skip(ctx, log, err)
	}

	storeCtx, cancel := s.storeContext(ctx)
	defer cancel()

	created, err := s.repo.Insert(storeCtx, title, userID)
	if err != nil {
		return s.fail(ctx, log, fmt.Errorf("inserting todo: %w", err))
	}

	s.refresh.Invalidate()
	log.DebugContext(ctx, "todo mutation", "outcome", Applied, "todo_id", created.ID)
	return Applied
}

// Update replaces the title of a todo owned by the caller.
func (s *Service) Update(ctx context.Context, form Form) Outcome {
	log := s.logger.With("op", "update")

	userID, ok := s.identity.CurrentUser(ctx)
	if !ok {
		return s.skip(ctx, log, ErrUnauthenticated)
	}
	log = log.With("user_id", userID)

	id, err := form.ID()
	if err != nil {
		return s.skip(ctx, log, err)
	}
	log = log.With("todo_id", id)

	title, err := form.NewTitle()
	if err != nil {
		return s.skip(ctx, log, err)
	}

	storeCtx, cancel := s.storeContext(ctx)
	defer cancel()

	err = s.repo.UpdateIfOwned(storeCtx, id, userID, title)
	switch {
	case errors.Is(err, repository.ErrNotFound):
		return s.skip(ctx, log, err)
	case err != nil:
		return s.fail(ctx, log, fmt.Errorf("updating todo: %w", err))
	}

	s.refresh.Invalidate()
	log.DebugContext(ctx, "todo mutation", "outcome", Applied)
	return Applied
}

// Delete removes a todo owned by the caller. Deleting a missing or foreign
// record still refreshes the list.
func (s *Service) Delete(ctx context.Context, form Form) Outcome {
	log := s.logger.With("op", "delete")

	userID, ok := s.identity.CurrentUser(ctx)
	if !ok {
		return s.skip(ctx, log, ErrUnauthenticated)
	}
	log = log.With("user_id", userID)

	id, err := form.ID()
	if err != nil {
		return s.skip(ctx, log, err)
	}
	log = log.With("todo_id", id)

	storeCtx, cancel := s.storeContext(ctx)
	defer cancel()

	err = s.repo.DeleteIfOwned(storeCtx, id, userID)
	switch {
	case errors.Is(err, repository.ErrNotFound):
		s.refresh.Invalidate()
		return s.skip(ctx, log, err)
	case err != nil:
		return s.fail(ctx, log, fmt.Errorf("deleting todo: %w", err))
	}

	s.refresh.Invalidate()
	log.DebugContext(ctx, "todo mutation", "outcome", Applied)
	return Applied
}

// List returns the caller's todos, newest first.
func (s *Service) List(ctx context.Context) []Todo {
	return s.Snapshot(ctx).Todos
}

// Snapshot returns the caller's todos together with the refresh version they
// were read at. Anonymous callers and store failures yield an empty list.
func (s *Service) Snapshot(ctx context.Context) Snapshot {
	epoch, version := s.refresh.Epoch(), s.refresh.Version()

	userID, ok := s.identity.CurrentUser(ctx)
	if !ok {
		return Snapshot{Epoch: epoch, Version: version, Todos: []Todo{}}
	}

	if snap, ok := s.cached(userID, version); ok {
		return snap
	}

	result, err, _ := s.group.Do(userID+"@"+strconv.FormatUint(version, 10), func() (any, error) {
		storeCtx, cancel := s.storeContext(context.WithoutCancel(ctx))
		defer cancel()

		todos, err := s.repo.FindAllByOwner(storeCtx, userID)
		if err != nil {
			return nil, err
		}
		if todos == nil {
			todos = []Todo{}
		}
		snap := Snapshot{Epoch: epoch, Version: version, Todos: todos}
		s.store(userID, snap)
		return snap, nil
	})
	if err != nil {
		s.logger.ErrorContext(ctx, "listing todos", "op", "list", "user_id", userID, "error", err)
		return Snapshot{Epoch: epoch, Version: version, Todos: []Todo{}}
	}
	return result.(Snapshot)
}

func (s *Service) cached(userID string, version uint64) (Snapshot, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	snap, ok := s.snapshots[userID]
	if !ok || snap.Version != version {
		return Snapshot{}, false
	}
	return snap, true
}

func (s *Service) store(userID string, snap Snapshot) {
	s.mu.Lock()
	defer s.mu.Unlock()
	// A snapshot read at an older version must not replace a newer one.
	if cur, ok := s.snapshots[userID]; ok && cur.Version > snap.Version {
		return
	}
	s.snapshots[userID] = snap
}

func (s *Service) storeContext(ctx context.Context) (context.Context, context.CancelFunc) {
	if s.storeTimeout <= 0 {
		return context.WithCancel(ctx)
	}
	return context.WithTimeout(ctx, s.storeTimeout)
}

func (s *Service) skip(ctx context.Context, log *slog.Logger, reason error) Outcome {
	log.DebugContext(ctx, "todo mutation", "outcome", NotApplicable, "reason", reasonOf(reason))
	return NotApplicable
}

func (s *Service) fail(ctx context.Context, log *slog.Logger, err error) Outcome {
	log.ErrorContext(ctx, "todo mutation", "outcome", Failed, "reason", "store", "error", err)
	return Failed
}

func reasonOf(err error) string {
	switch {
	case errors.Is(err, ErrUnauthenticated):
		return "unauthenticated"
	case errors.Is(err, ErrInvalidInput):
		return "invalid_input"
	case errors.Is(err, repository.ErrNotFound):
		return "not_found"
	default:
		return "unknown"
	}
}
