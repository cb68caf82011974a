package repository

import (
	"context"
	"database/sql"
	"time"

	"coke_oven/internal/models"
)

type Authorization interface {
	Create(ctx context.Context, username, hash string) (int, error)
	GetByUsername(ctx context.Context, username string) (*models.User, error)
}

// TemperatureRepo stores samples and answers the series lookups the cycle
// matcher needs. Nearest returns (nil, nil) when no sample qualifies.
type TemperatureRepo interface {
	Insert(ctx context.Context, s models.TemperatureSample) (int64, error)
	Nearest(ctx context.Context, oven int, at time.Time, dir models.Direction) (*models.TemperatureSample, error)
	Between(ctx context.Context, oven int, start, end time.Time) ([]models.TemperatureSample, error)
	List(ctx context.Context, oven int, from, to time.Time) ([]models.TemperatureSample, error)
}

// OperationRepo stores LOAD/PUSH events. An empty kind in LatestBefore means any kind.
type OperationRepo interface {
	Insert(ctx context.Context, e models.OperationEvent) (int64, error)
	LatestBefore(ctx context.Context, oven int, chamber string, kind models.OperationKind, before time.Time) (*models.OperationEvent, error)
	List(ctx context.Context, q OperationQuery) ([]models.OperationEvent, error)
}

type CycleRepo interface {
	Insert(ctx context.Context, c models.CokingCycle) (int64, error)
	List(ctx context.Context, q CycleQuery) ([]models.CokingCycle, error)
}

// OperationQuery filters events. Zero fields do not filter; the range is inclusive.
type OperationQuery struct {
	Oven    int
	Chamber string
	Kind    models.OperationKind
	From    time.Time
	To      time.Time
}

// CycleQuery filters cycles by push time (inclusive). Zero fields do not filter.
type CycleQuery struct {
	Oven    int
	Chamber string
	From    time.Time
	To      time.Time
	Limit   int
}

type Repository struct {
	Temperatures TemperatureRepo
	Operations   OperationRepo
	Cycles       CycleRepo
	Auth         Authorization
}

func NewRepository(db *sql.DB) *Repository {
	return &Repository{
		Temperatures: NewTemperatureSQLite(db),
		Operations:   NewOperationSQLite(db),
		Cycles:       NewCycleSQLite(db),
		Auth:         NewUserSQLite(db),
	}
}
