package service

import (
	"context"
	"strings"

	"coke_oven/internal/models"
	"coke_oven/internal/repository"
)

type HistoryService struct {
	temps repository.TemperatureRepo
	ops   repository.OperationRepo
	ovens models.OvenSet
}

func NewHistoryService(temps repository.TemperatureRepo, ops repository.OperationRepo, ovens models.OvenSet) *HistoryService {
	return &HistoryService{temps: temps, ops: ops, ovens: ovens}
}

// Temperatures returns the samples of one oven in time order. The oven is required.
func (s *HistoryService) Temperatures(ctx context.Context, f TemperatureFilter) ([]models.TemperatureSample, error) {
	if _, err := s.ovens.Lookup(f.Oven); err != nil {
		return nil, err
	}
	from, to, err := normalizeRange(f.From, f.To)
	if err != nil {
		return nil, err
	}
	return s.temps.List(ctx, f.Oven, from, to)
}

// Operations returns LOAD/PUSH events in time order.
func (s *HistoryService) Operations(ctx context.Context, f OperationFilter) ([]models.OperationEvent, error) {
	from, to, err := normalizeRange(f.From, f.To)
	if err != nil {
		return nil, err
	}
	chamber := strings.TrimSpace(f.Chamber)
	if err := checkOvenChamber(s.ovens, f.Oven, chamber); err != nil {
		return nil, err
	}
	kind, err := models.NormalizeOperationKind(f.Type)
	if err != nil {
		return nil, err
	}
	return s.ops.List(ctx, repository.OperationQuery{
		Oven:    f.Oven,
		Chamber: chamber,
		Kind:    kind,
		From:    from,
		To:      to,
	})
}
