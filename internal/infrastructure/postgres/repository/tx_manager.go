package repository

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"github.com/fadehouse/compensation-service/internal/domain"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/lib/pq"
	"gorm.io/gorm"
)

type txKey struct{}

// dbFromContext joins the transaction carried by the context, falling back to
// the repository's own handle.
func dbFromContext(ctx context.Context, fallback *gorm.DB) *gorm.DB {
	if tx, ok := ctx.Value(txKey{}).(*gorm.DB); ok {
		return tx
	}
	return fallback.WithContext(ctx)
}

// GormTxManager runs units of work in gorm transactions. Serializable
// transactions get a bounded exponential-backoff retry on write conflicts;
// once the budget runs out the caller sees ErrConflict.
type GormTxManager struct {
	db          *gorm.DB
	maxRetries  int
	baseBackoff time.Duration
}

func NewGormTxManager(db *gorm.DB, maxRetries int, baseBackoff time.Duration) *GormTxManager {
	if maxRetries <= 0 {
		maxRetries = 3
	}
	if baseBackoff <= 0 {
		baseBackoff = 10 * time.Millisecond
	}
	return &GormTxManager{db: db, maxRetries: maxRetries, baseBackoff: baseBackoff}
}

func (m *GormTxManager) Do(ctx context.Context, fn func(ctx context.Context) error) error {
	return m.run(ctx, nil, fn)
}

func (m *GormTxManager) DoSerializable(ctx context.Context, fn func(ctx context.Context) error) error {
	opts := &sql.TxOptions{Isolation: sql.LevelSerializable}

	var err error
	for attempt := 0; attempt <= m.maxRetries; attempt++ {
		err = m.run(ctx, opts, fn)
		if err == nil || !retryableConflict(err) {
			return err
		}
		if ctx.Err() != nil {
			return ctx.Err()
		}
		time.Sleep(m.baseBackoff << attempt)
	}
	return domain.ErrConflict
}

func (m *GormTxManager) run(ctx context.Context, opts *sql.TxOptions, fn func(ctx context.Context) error) error {
	// Already inside a transaction: join it instead of nesting.
	if _, ok := ctx.Value(txKey{}).(*gorm.DB); ok {
		return fn(ctx)
	}
	body := func(tx *gorm.DB) error {
		return fn(context.WithValue(ctx, txKey{}, tx))
	}
	if opts != nil {
		return m.db.WithContext(ctx).Transaction(body, opts)
	}
	return m.db.WithContext(ctx).Transaction(body)
}

// retryableConflict matches postgres serialization failures and deadlocks.
// Unique violations are not retried here; repositories translate those into
// domain errors.
func retryableConflict(err error) bool {
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		return pgErr.Code == "40001" || pgErr.Code == "40P01"
	}
	var pqErr *pq.Error
	if errors.As(err, &pqErr) {
		return pqErr.Code == "40001" || pqErr.Code == "40P01"
	}
	return false
}

// uniqueViolation reports a postgres unique-constraint failure.
func uniqueViolation(err error) bool {
	if errors.Is(err, gorm.ErrDuplicatedKey) {
		return true
	}
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		return pgErr.Code == "23505"
	}
	var pqErr *pq.Error
	if errors.As(err, &pqErr) {
		return pqErr.Code == "23505"
	}
	return false
}
