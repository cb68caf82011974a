package service

import (
	"context"
	"fmt"

	"coke_oven/internal/cycle"
	"coke_oven/internal/logger"
	"coke_oven/internal/metrics"
	"coke_oven/internal/models"
	"coke_oven/internal/repository"
)

// IngestionService validates, parses and persists incoming records.
// Every check runs before the first write.
type IngestionService struct {
	temps   repository.TemperatureRepo
	ops     repository.OperationRepo
	ovens   models.OvenSet
	matcher *CycleMatcher
	log     *logger.Logger
}

func NewIngestionService(
	temps repository.TemperatureRepo,
	ops repository.OperationRepo,
	ovens models.OvenSet,
	matcher *CycleMatcher,
	log *logger.Logger,
) *IngestionService {
	if log == nil {
		log = logger.Nop()
	}
	return &IngestionService{temps: temps, ops: ops, ovens: ovens, matcher: matcher, log: log}
}

// RecordTemperature stores one two-sided reading of an oven.
func (s *IngestionService) RecordTemperature(ctx context.Context, in TemperatureInput) error {
	if _, err := s.ovens.Lookup(in.Oven); err != nil {
		return s.reject(err)
	}
	at, err := cycle.ParseTime(in.Time)
	if err != nil {
		return s.reject(err)
	}

	sample := models.TemperatureSample{
		Oven:        in.Oven,
		Time:        at,
		MachineSide: in.MachineSide,
		CokeSide:    in.CokeSide,
	}
	if _, err := s.temps.Insert(ctx, sample); err != nil {
		return s.reject(err)
	}

	metrics.TemperatureStored(in.Oven)
	s.log.Debugw("temperature_recorded",
		"oven", in.Oven,
		"time", cycle.FormatTime(at),
		"machine_side", in.MachineSide,
		"coke_side", in.CokeSide,
	)
	return nil
}

// RecordOperation stores a LOAD or PUSH. For a PUSH the cycle matcher runs
// after the event row is written; the event stays stored even if storing
// the cycle fails.
func (s *IngestionService) RecordOperation(ctx context.Context, in OperationInput) error {
	oven, err := s.ovens.Lookup(in.Oven)
	if err != nil {
		return s.reject(err)
	}
	chamber := in.Chamber
	if !oven.HasChamber(chamber) {
		return s.reject(fmt.Errorf("%w: %q is not a chamber of oven %d", models.ErrInvalidChamber, in.Chamber, in.Oven))
	}
	kind, err := models.ParseOperationKind(in.Type)
	if err != nil {
		return s.reject(err)
	}
	at, err := cycle.ParseTime(in.Time)
	if err != nil {
		return s.reject(err)
	}

	ev := models.OperationEvent{Oven: in.Oven, Chamber: chamber, Kind: kind, Time: at}
	id, err := s.ops.Insert(ctx, ev)
	if err != nil {
		return s.reject(err)
	}
	ev.ID = id

	metrics.OperationStored(in.Oven, kind)
	s.log.Infow("operation_recorded",
		"oven", ev.Oven,
		"chamber", ev.Chamber,
		"type", string(kind),
		"time", cycle.FormatTime(at),
	)

	if kind != models.OperationPush {
		return nil
	}
	if _, err := s.matcher.OnPush(ctx, ev); err != nil {
		return s.reject(fmt.Errorf("derive cycle for oven %d chamber %s: %w", ev.Oven, ev.Chamber, err))
	}
	return nil
}

// reject counts a failed call and returns err unchanged.
func (s *IngestionService) reject(err error) error {
	metrics.IngestFailed(err)
	return err
}
