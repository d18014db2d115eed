package store

import (
	"context"
	"fmt"
	"time"

	"github.com/cenkalti/backoff/v4"
	"github.com/jackc/pgx/v5"
	"go.uber.org/zap"

	"filevault-api/internal/application/ports"
	"filevault-api/internal/domain/file"
	"filevault-api/internal/domain/folder"
	"filevault-api/internal/domain/share"
	"filevault-api/internal/domain/user"
	"filevault-api/internal/infrastructure/db/postgres"
	fileDB "filevault-api/internal/infrastructure/db/postgres/file"
	folderDB "filevault-api/internal/infrastructure/db/postgres/folder"
	shareDB "filevault-api/internal/infrastructure/db/postgres/share"
	userDB "filevault-api/internal/infrastructure/db/postgres/user"
)

// Store binds every entity repository to one connection or transaction.
type Store struct {
	db postgres.DBTX
}

func New(db postgres.DBTX) *Store {
	return &Store{db: db}
}

func (s *Store) Users() user.Repository                    { return userDB.NewRepository(s.db) }
func (s *Store) Folders() folder.Repository                { return folderDB.NewRepository(s.db) }
func (s *Store) Files() file.Repository                    { return fileDB.NewRepository(s.db) }
func (s *Store) FileShares() share.FileShareRepository     { return shareDB.NewFileShareRepository(s.db) }
func (s *Store) FolderGrants() share.FolderGrantRepository { return shareDB.NewFolderGrantRepository(s.db) }

type Beginner interface {
	postgres.DBTX
	Begin(ctx context.Context) (pgx.Tx, error)
}

type Option func(*TxManager)

// WithBackOff replaces the retry policy for transient failures.
func WithBackOff(fn func() backoff.BackOff) Option {
	return func(m *TxManager) { m.newBackOff = fn }
}

type TxManager struct {
	*Store
	pool       Beginner
	logger     *zap.Logger
	newBackOff func() backoff.BackOff
}

func NewTxManager(pool Beginner, logger *zap.Logger, opts ...Option) *TxManager {
	m := &TxManager{
		Store:  New(pool),
		pool:   pool,
		logger: logger,
		newBackOff: func() backoff.BackOff {
			b := backoff.NewExponentialBackOff()
			b.InitialInterval = 20 * time.Millisecond
			b.MaxInterval = 500 * time.Millisecond
			b.MaxElapsedTime = 3 * time.Second
			return backoff.WithMaxRetries(b, 5)
		},
	}
	for _, opt := range opts {
		opt(m)
	}

	return m
}

// WithinTx retries the whole transaction on serialization failures, deadlocks and lock
// timeouts. Any other error from fn is returned as is after rollback.
func (m *TxManager) WithinTx(ctx context.Context, fn func(ctx context.Context, tx ports.Store) error) error {
	attempt := 0
	op := func() error {
		attempt++
		return classify(m.runOnce(ctx, fn))
	}
	notify := func(err error, next time.Duration) {
		m.logger.Warn("transaction conflict, retrying",
			zap.Int("attempt", attempt),
			zap.Duration("backoff", next),
			zap.Error(err))
	}

	err := backoff.RetryNotify(op, backoff.WithContext(m.newBackOff(), ctx), notify)
	if err != nil && postgres.IsTransient(err) {
		return fmt.Errorf("%w: %v", postgres.ErrTransient, err)
	}

	return err
}

func (m *TxManager) runOnce(ctx context.Context, fn func(ctx context.Context, tx ports.Store) error) error {
	tx, err := m.pool.Begin(ctx)
	if err != nil {
		return fmt.Errorf("begin tx: %w", err)
	}

	if err = fn(ctx, New(tx)); err != nil {
		if rbErr := tx.Rollback(ctx); rbErr != nil {
			m.logger.Error("rollback failed", zap.Error(rbErr))
		}
		return err
	}

	if err = tx.Commit(ctx); err != nil {
		return fmt.Errorf("commit tx: %w", err)
	}

	return nil
}

func classify(err error) error {
	if err == nil || postgres.IsTransient(err) {
		return err
	}
	return backoff.Permanent(err)
}
