// Package system is the explicitly constructed context object hosts use to
// drive the coke-oven record store: Open, call, Close.
//
// Every call holds one exclusive lock for its full duration, including the
// cycle derivation a PUSH triggers, so calls never interleave. After Close
// every call fails with models.ErrNotInitialized. A panic inside a call
// poisons the System; that call and all later ones fail with
// models.ErrLockUnavailable.
package system

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"sync"

	"coke_oven/internal/logger"
	"coke_oven/internal/metrics"
	"coke_oven/internal/models"
	"coke_oven/internal/repository"
	"coke_oven/internal/repository/db"
	"coke_oven/internal/service"
)

type System struct {
	mu       sync.Mutex
	db       *sql.DB
	svc      *service.Service
	ovens    models.OvenSet
	log      *logger.Logger
	closed   bool
	poisoned bool
}

// Open opens or creates the store at path and applies the schema. Opening
// the same path again is harmless. A nil ovens means models.DefaultOvens.
func Open(path string, ovens models.OvenSet, log *logger.Logger, opts service.Options) (*System, error) {
	conn, err := db.InitDB(path)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", models.ErrStorageFailure, err)
	}
	return New(conn, ovens, log, opts), nil
}

// New wraps an already initialized database. The System owns conn from
// here on and closes it in Close.
func New(conn *sql.DB, ovens models.OvenSet, log *logger.Logger, opts service.Options) *System {
	if log == nil {
		log = logger.Nop()
	}
	if len(ovens) == 0 {
		ovens = models.DefaultOvens()
	}
	return &System{
		db:    conn,
		svc:   service.NewService(repository.NewRepository(conn), ovens, log, opts),
		ovens: ovens,
		log:   log,
	}
}

// Close releases the store. Later calls fail with ErrNotInitialized.
func (s *System) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return nil
	}
	s.closed = true
	s.log.Infow("system_closed")
	if err := s.db.Close(); err != nil {
		return fmt.Errorf("%w: close: %w", models.ErrStorageFailure, err)
	}
	return nil
}

// DB returns the underlying handle.
func (s *System) DB() *sql.DB { return s.db }

// Authorization serves operator accounts. It shares the file but not the
// lock: accounts never take part in cycle derivation.
func (s *System) Authorization() service.Authorization { return s.svc.Authorization }

// Ovens returns the oven configuration the System validates against.
func (s *System) Ovens() models.OvenSet { return s.ovens }

func (s *System) RecordTemperature(ctx context.Context, in service.TemperatureInput) error {
	return s.ingest("record_temperature", func() error {
		return s.svc.RecordTemperature(ctx, in)
	})
}

func (s *System) RecordOperation(ctx context.Context, in service.OperationInput) error {
	return s.ingest("record_operation", func() error {
		return s.svc.RecordOperation(ctx, in)
	})
}

func (s *System) Cycles(ctx context.Context, f service.CycleFilter) ([]models.CokingCycle, error) {
	return query(s, "cycles", func() ([]models.CokingCycle, error) {
		return s.svc.Cycles(ctx, f)
	})
}

func (s *System) Temperatures(ctx context.Context, f service.TemperatureFilter) ([]models.TemperatureSample, error) {
	return query(s, "temperatures", func() ([]models.TemperatureSample, error) {
		return s.svc.Temperatures(ctx, f)
	})
}

func (s *System) Operations(ctx context.Context, f service.OperationFilter) ([]models.OperationEvent, error) {
	return query(s, "operations", func() ([]models.OperationEvent, error) {
		return s.svc.Operations(ctx, f)
	})
}

func (s *System) Overview(ctx context.Context) ([]models.OvenStatus, error) {
	return query(s, "overview", func() ([]models.OvenStatus, error) {
		return s.svc.Overview(ctx)
	})
}

// ingest runs an ingestion call and counts failures the service never saw.
func (s *System) ingest(name string, fn func() error) error {
	err := s.do(name, fn)
	if errors.Is(err, models.ErrNotInitialized) || errors.Is(err, models.ErrLockUnavailable) {
		metrics.IngestFailed(err)
	}
	return err
}

func query[T any](s *System, name string, fn func() (T, error)) (T, error) {
	var out T
	err := s.do(name, func() error {
		var err error
		out, err = fn()
		return err
	})
	return out, err
}

// do runs fn under the lock.
func (s *System) do(name string, fn func() error) (err error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.closed {
		return fmt.Errorf("%s: %w", name, models.ErrNotInitialized)
	}
	if s.poisoned {
		return fmt.Errorf("%s: %w", name, models.ErrLockUnavailable)
	}

	defer func() {
		if r := recover(); r != nil {
			s.poisoned = true
			s.log.Errorw("system_poisoned", "op", name, "panic", r)
			err = fmt.Errorf("%s: %w: panic: %v", name, models.ErrLockUnavailable, r)
		}
	}()
	return fn()
}
