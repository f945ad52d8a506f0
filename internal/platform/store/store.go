// Package store provides optional postgres and clickhouse backends behind small seams
package store

import (
	"context"
	"errors"
	"fmt"

	"platewise/internal/platform/logger"
)

// Store holds the enabled backends; nil fields mean disabled
type Store struct {
	Log logger.Logger
	PG  TxRunner
	CH  Clickhouse
}

// Row is the single-row scan contract
type Row interface {
	Scan(dest ...any) error
}

// Rows is the result-set iteration contract
type Rows interface {
	Next() bool
	Scan(dest ...any) error
	Err() error
	Close()
}

// CommandTag reports the outcome of a write
type CommandTag interface {
	RowsAffected() int64
}

// RowQuerier is the sql surface repositories use
type RowQuerier interface {
	Exec(ctx context.Context, sql string, args ...any) (CommandTag, error)
	Query(ctx context.Context, sql string, args ...any) (Rows, error)
	QueryRow(ctx context.Context, sql string, args ...any) Row
}

// TxRunner runs fn inside a transaction
type TxRunner interface {
	RowQuerier
	Tx(ctx context.Context, fn func(q RowQuerier) error) error
}

// Clickhouse is the columnar seam: batched inserts and reads
type Clickhouse interface {
	Insert(ctx context.Context, table string, rows [][]any) error
	Query(ctx context.Context, sql string, args ...any) (Rows, error)
	Close() error
}

// Pinger is any backend that can report readiness
type Pinger interface{ Ping(context.Context) error }

// Option mutates Store during Open
type Option func(*Store)

// WithLogger sets the logger used by backends
func WithLogger(log logger.Logger) Option { return func(s *Store) { s.Log = log } }

// Open connects every backend enabled in cfg
func Open(ctx context.Context, cfg Config, opts ...Option) (*Store, error) {
	s := &Store{Log: *logger.Nop()}
	for _, o := range opts {
		o(s)
	}

	if cfg.PG.Enabled {
		pg, err := openPG(ctx, cfg.PG, s.Log)
		if err != nil {
			return nil, fmt.Errorf("store: postgres: %w", err)
		}
		s.PG = pg
	}
	if cfg.CH.Enabled {
		ch, err := openCH(ctx, cfg)
		if err != nil {
			s.closePG()
			return nil, fmt.Errorf("store: clickhouse: %w", err)
		}
		s.CH = ch
	}
	return s, nil
}

// Ping checks every enabled backend
func (s *Store) Ping(ctx context.Context) error {
	if s == nil {
		return errors.New("store: nil store")
	}
	var errs []error
	for name, b := range map[string]any{"pg": s.PG, "ch": s.CH} {
		if p, ok := b.(Pinger); ok {
			if err := p.Ping(ctx); err != nil {
				errs = append(errs, fmt.Errorf("%s: %w", name, err))
			}
		}
	}
	return errors.Join(errs...)
}

// Close releases every enabled backend
func (s *Store) Close() error {
	if s == nil {
		return nil
	}
	var errs []error
	if s.CH != nil {
		errs = append(errs, s.CH.Close())
	}
	errs = append(errs, s.closePG())
	return errors.Join(errs...)
}

func (s *Store) closePG() error {
	if c, ok := s.PG.(interface{ Close() error }); ok {
		return c.Close()
	}
	return nil
}
