package service

import (
	"context"
	"time"

	"coke_oven/internal/models"
	"coke_oven/internal/repository"
)

// latestInstant sorts after every stored time, so Nearest(Before) at it
// yields the newest sample.
var latestInstant = time.Date(9999, time.December, 31, 23, 59, 59, 0, time.UTC)

type MonitoringService struct {
	temps  repository.TemperatureRepo
	cycles repository.CycleRepo
	ovens  models.OvenSet
}

func NewMonitoringService(temps repository.TemperatureRepo, cycles repository.CycleRepo, ovens models.OvenSet) *MonitoringService {
	return &MonitoringService{temps: temps, cycles: cycles, ovens: ovens}
}

// Overview returns, per configured oven in id order, the newest sample and
// the newest cycle. Either is nil when the oven has none yet.
func (s *MonitoringService) Overview(ctx context.Context) ([]models.OvenStatus, error) {
	ids := s.ovens.IDs()
	out := make([]models.OvenStatus, 0, len(ids))
	for _, id := range ids {
		st, err := s.ovenStatus(ctx, id)
		if err != nil {
			return nil, err
		}
		out = append(out, st)
	}
	return out, nil
}

func (s *MonitoringService) ovenStatus(ctx context.Context, id int) (models.OvenStatus, error) {
	st := models.OvenStatus{Oven: id, Chambers: len(s.ovens[id].Chambers())}

	latest, err := s.temps.Nearest(ctx, id, latestInstant, models.Before)
	if err != nil {
		return models.OvenStatus{}, err
	}
	st.LatestTemperature = latest

	cycles, err := s.cycles.List(ctx, repository.CycleQuery{Oven: id, Limit: 1})
	if err != nil {
		return models.OvenStatus{}, err
	}
	if len(cycles) > 0 {
		st.LatestCycle = &cycles[0]
	}
	return st, nil
}
