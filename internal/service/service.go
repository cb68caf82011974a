package service

import (
	"context"
	"time"

	"coke_oven/internal/logger"
	"coke_oven/internal/models"
	"coke_oven/internal/repository"
)

type Authorization interface {
	SignUp(ctx context.Context, username, password string) (int, error)
	GenerateToken(ctx context.Context, username, password string) (string, error)
	ParseToken(accessToken string) (int, error)
}

// Ingestion accepts temperature samples and LOAD/PUSH events.
// A PUSH derives its coking cycle before RecordOperation returns.
type Ingestion interface {
	RecordTemperature(ctx context.Context, in TemperatureInput) error
	RecordOperation(ctx context.Context, in OperationInput) error
}

// CycleLog lists derived coking cycles, newest first.
type CycleLog interface {
	Cycles(ctx context.Context, f CycleFilter) ([]models.CokingCycle, error)
}

// History exposes the raw telemetry and event records.
type History interface {
	Temperatures(ctx context.Context, f TemperatureFilter) ([]models.TemperatureSample, error)
	Operations(ctx context.Context, f OperationFilter) ([]models.OperationEvent, error)
}

// Monitoring exposes a per-oven snapshot.
type Monitoring interface {
	Overview(ctx context.Context) ([]models.OvenStatus, error)
}

// Simulator runs the background telemetry generator.
// Stop via context cancellation in main() for graceful shutdown.
type Simulator interface {
	Run(ctx context.Context, tick time.Duration)
}

// Service aggregates the sub-services the HTTP layer depends on.
type Service struct {
	Ingestion
	CycleLog
	History
	Monitoring
	Authorization
}

// Options tunes NewService.
type Options struct {
	// StrictAlternation makes a PUSH match only when the chamber's latest
	// earlier event is a LOAD.
	StrictAlternation bool
	Auth              AuthOptions
}

// NewService wires the repository layer into concrete services.
func NewService(repos *repository.Repository, ovens models.OvenSet, log *logger.Logger, opts Options) *Service {
	if log == nil {
		log = logger.Nop()
	}
	matcher := NewCycleMatcher(repos.Temperatures, repos.Operations, repos.Cycles, log, opts.StrictAlternation)
	return &Service{
		Ingestion:     NewIngestionService(repos.Temperatures, repos.Operations, ovens, matcher, log),
		CycleLog:      NewCycleLogService(repos.Cycles, ovens),
		History:       NewHistoryService(repos.Temperatures, repos.Operations, ovens),
		Monitoring:    NewMonitoringService(repos.Temperatures, repos.Cycles, ovens),
		Authorization: NewAuthService(repos.Auth, opts.Auth),
	}
}
