package gorm

import (
	"context"
	"log/slog"
	"sync"
	"time"

	"github.com/bornholm/go-x/slogx"
	"github.com/bornholm/weekplan/internal/core/port"
	"github.com/ncruces/go-sqlite3"
	"github.com/pkg/errors"
	"gorm.io/gorm"
)

type contextKey string

const contextKeyTransaction contextKey = "transaction"

type Store struct {
	getDatabase func(ctx context.Context) (*gorm.DB, error)

	maxRetries  int
	baseBackoff time.Duration
}

// Transact implements [port.TaskStore].
func (s *Store) Transact(ctx context.Context, fn func(ctx context.Context) error) error {
	err := s.withRetry(ctx, true, func(ctx context.Context, db *gorm.DB) error {
		return errors.WithStack(fn(ctx))
	}, sqlite3.BUSY, sqlite3.LOCKED)
	if err != nil {
		return errors.WithStack(err)
	}

	return nil
}

// withRetry executes fn against the database, retrying it while it fails with
// one of the given sqlite error codes. When ctx already carries a transaction,
// fn joins it and is never retried on its own: the enclosing transaction owns the
// retry.
func (s *Store) withRetry(ctx context.Context, transact bool, fn func(ctx context.Context, db *gorm.DB) error, codes ...sqlite3.ErrorCode) error {
	if tx, ok := ctx.Value(contextKeyTransaction).(*gorm.DB); ok {
		if err := fn(ctx, tx); err != nil {
			return errors.WithStack(err)
		}

		return nil
	}

	db, err := s.getDatabase(ctx)
	if err != nil {
		return errors.WithStack(err)
	}

	backoff := s.baseBackoff

	for attempt := 0; ; attempt++ {
		if transact {
			err = db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
				return fn(context.WithValue(ctx, contextKeyTransaction, tx), tx)
			})
		} else {
			err = fn(ctx, db.WithContext(ctx))
		}

		if err == nil {
			return nil
		}

		if attempt >= s.maxRetries || !isRetryable(err, codes...) {
			return errors.WithStack(err)
		}

		slog.DebugContext(ctx, "database busy, retrying", slog.Int("attempt", attempt+1), slog.Duration("backoff", backoff), slogx.Error(err))

		timer := time.NewTimer(backoff)
		select {
		case <-ctx.Done():
			timer.Stop()
			return errors.WithStack(ctx.Err())
		case <-timer.C:
		}

		backoff *= 2
	}
}

func isRetryable(err error, codes ...sqlite3.ErrorCode) bool {
	for _, c := range codes {
		if errors.Is(err, c) {
			return true
		}
	}

	return false
}

func NewStore(db *gorm.DB) *Store {
	return &Store{
		getDatabase: createGetDatabase(db),
		maxRetries:  5,
		baseBackoff: 100 * time.Millisecond,
	}
}

var (
	_ port.TaskStore = &Store{}
	_ port.GoalStore = &Store{}
)

func createGetDatabase(db *gorm.DB) func(ctx context.Context) (*gorm.DB, error) {
	var (
		migrateOnce sync.Once
		migrateErr  error
	)

	return func(ctx context.Context) (*gorm.DB, error) {
		migrateOnce.Do(func() {
			models := []any{
				&Goal{},
				&Task{},
				&Activity{},
				&Comment{},
			}

			if err := db.AutoMigrate(models...); err != nil {
				migrateErr = errors.WithStack(err)
				return
			}
		})
		if migrateErr != nil {
			return nil, errors.WithStack(migrateErr)
		}

		return db, nil
	}
}

func paginate(query *gorm.DB, page *int, limit *int) *gorm.DB {
	if page != nil {
		pageSize := 10
		if limit != nil {
			pageSize = *limit
		}
		query = query.Offset(*page * pageSize)
	}

	if limit != nil {
		query = query.Limit(*limit)
	}

	return query
}
