package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"coke_oven/internal/cycle"
	"coke_oven/internal/logger"
	"coke_oven/internal/metrics"
	"coke_oven/internal/models"
	"coke_oven/internal/repository"
)

// ErrNoTemperatureData means an oven has no sample on either side of an instant.
var ErrNoTemperatureData = errors.New("no temperature data")

// CycleMatcher turns a PUSH into a coking cycle by pairing it with the
// chamber's latest earlier LOAD. It keeps no state between calls.
type CycleMatcher struct {
	temps  repository.TemperatureRepo
	ops    repository.OperationRepo
	cycles repository.CycleRepo
	log    *logger.Logger
	strict bool
}

func NewCycleMatcher(
	temps repository.TemperatureRepo,
	ops repository.OperationRepo,
	cycles repository.CycleRepo,
	log *logger.Logger,
	strictAlternation bool,
) *CycleMatcher {
	if log == nil {
		log = logger.Nop()
	}
	return &CycleMatcher{temps: temps, ops: ops, cycles: cycles, log: log, strict: strictAlternation}
}

// OnPush derives and stores the cycle closed by push. It returns (nil, nil)
// when no LOAD matches. Missing temperature data degrades the cycle to
// absent averages; only lookup and insert failures are returned.
func (m *CycleMatcher) OnPush(ctx context.Context, push models.OperationEvent) (*models.CokingCycle, error) {
	load, err := m.findLoad(ctx, push)
	if err != nil {
		return nil, fmt.Errorf("find load: %w", err)
	}
	if load == nil {
		m.log.Infow("push_without_load",
			"oven", push.Oven,
			"chamber", push.Chamber,
			"push_time", cycle.FormatTime(push.Time),
		)
		return nil, nil
	}

	minutes := cycle.ElapsedMinutes(load.Time, push.Time)
	c := models.CokingCycle{
		Oven:            push.Oven,
		Chamber:         push.Chamber,
		LoadTime:        load.Time,
		PushTime:        push.Time,
		DurationMinutes: minutes,
		Duration:        cycle.FormatHHMM(minutes),
	}

	machine, coke, err := m.AverageTemperature(ctx, push.Oven, load.Time, push.Time)
	switch {
	case err == nil:
		c.AvgMachineSide, c.AvgCokeSide = &machine, &coke
	case errors.Is(err, ErrNoTemperatureData):
		m.log.Warnw("cycle_average_unavailable",
			"oven", push.Oven,
			"chamber", push.Chamber,
			"error", err,
		)
	default:
		m.log.Errorw("cycle_average_failed",
			"oven", push.Oven,
			"chamber", push.Chamber,
			"error", err,
		)
	}

	id, err := m.cycles.Insert(ctx, c)
	if err != nil {
		return nil, fmt.Errorf("store cycle: %w", err)
	}
	c.ID = id

	metrics.CycleDerived(c)
	m.log.Infow("cycle_derived",
		"oven", c.Oven,
		"chamber", c.Chamber,
		"load_time", cycle.FormatTime(c.LoadTime),
		"push_time", cycle.FormatTime(c.PushTime),
		"duration", c.Duration,
		"averages", c.HasAverages(),
	)
	return &c, nil
}

// findLoad returns the LOAD a push closes, or nil. In strict mode the
// chamber's latest earlier event of any kind must itself be that LOAD.
func (m *CycleMatcher) findLoad(ctx context.Context, push models.OperationEvent) (*models.OperationEvent, error) {
	if !m.strict {
		return m.ops.LatestBefore(ctx, push.Oven, push.Chamber, models.OperationLoad, push.Time)
	}
	last, err := m.ops.LatestBefore(ctx, push.Oven, push.Chamber, "", push.Time)
	if err != nil || last == nil || last.Kind != models.OperationLoad {
		return nil, err
	}
	return last, nil
}

// AverageTemperature is the time-weighted mean of both sides of oven over
// [start, end]: interpolated readings at each end plus every sample strictly
// inside, integrated with the trapezoid rule.
func (m *CycleMatcher) AverageTemperature(ctx context.Context, oven int, start, end time.Time) (machine, coke float64, err error) {
	first, err := m.boundary(ctx, oven, start)
	if err != nil {
		return 0, 0, err
	}
	last, err := m.boundary(ctx, oven, end)
	if err != nil {
		return 0, 0, err
	}
	interior, err := m.temps.Between(ctx, oven, start, end)
	if err != nil {
		return 0, 0, err
	}

	points := make([]cycle.Point, 0, len(interior)+2)
	points = append(points, first)
	for _, s := range interior {
		points = append(points, cycle.PointOf(s))
	}
	points = append(points, last)
	return cycle.Average(points)
}

// boundary interpolates the reading at an instant from its neighbours.
func (m *CycleMatcher) boundary(ctx context.Context, oven int, at time.Time) (cycle.Point, error) {
	prev, err := m.temps.Nearest(ctx, oven, at, models.Before)
	if err != nil {
		return cycle.Point{}, err
	}
	next, err := m.temps.Nearest(ctx, oven, at, models.After)
	if err != nil {
		return cycle.Point{}, err
	}
	p, ok := cycle.Interpolate(prev, next, at)
	if !ok {
		return cycle.Point{}, fmt.Errorf("%w: oven %d at %s", ErrNoTemperatureData, oven, cycle.FormatTime(at))
	}
	return p, nil
}
