package service

import (
	"context"
	"fmt"
	"sort"
	"time"

	"coke_oven/internal/models"
	"coke_oven/internal/repository"
)

// In-memory repositories with the same ordering and uniqueness rules as the
// SQLite ones. err, when set, fails every call.

type memTemperatureRepo struct {
	samples []models.TemperatureSample
	err     error
}

func (r *memTemperatureRepo) Insert(ctx context.Context, s models.TemperatureSample) (int64, error) {
	if r.err != nil {
		return 0, r.err
	}
	for _, have := range r.samples {
		if have.Oven == s.Oven && have.Time.Equal(s.Time) {
			return 0, fmt.Errorf("insert temperature: %w", models.ErrDuplicateRecord)
		}
	}
	s.ID = int64(len(r.samples) + 1)
	r.samples = append(r.samples, s)
	sort.Slice(r.samples, func(i, j int) bool { return r.samples[i].Time.Before(r.samples[j].Time) })
	return s.ID, nil
}

func (r *memTemperatureRepo) Nearest(ctx context.Context, oven int, at time.Time, dir models.Direction) (*models.TemperatureSample, error) {
	if r.err != nil {
		return nil, r.err
	}
	var found *models.TemperatureSample
	for i := range r.samples {
		s := r.samples[i]
		if s.Oven != oven {
			continue
		}
		if dir == models.Before && !s.Time.After(at) {
			found = &s
		}
		if dir == models.After && s.Time.After(at) {
			return &s, nil
		}
	}
	return found, nil
}

func (r *memTemperatureRepo) Between(ctx context.Context, oven int, start, end time.Time) ([]models.TemperatureSample, error) {
	if r.err != nil {
		return nil, r.err
	}
	var out []models.TemperatureSample
	for _, s := range r.samples {
		if s.Oven == oven && s.Time.After(start) && s.Time.Before(end) {
			out = append(out, s)
		}
	}
	return out, nil
}

func (r *memTemperatureRepo) List(ctx context.Context, oven int, from, to time.Time) ([]models.TemperatureSample, error) {
	if r.err != nil {
		return nil, r.err
	}
	var out []models.TemperatureSample
	for _, s := range r.samples {
		if s.Oven != oven {
			continue
		}
		if (!from.IsZero() && s.Time.Before(from)) || (!to.IsZero() && s.Time.After(to)) {
			continue
		}
		out = append(out, s)
	}
	return out, nil
}

type memOperationRepo struct {
	events    []models.OperationEvent
	err       error
	lastQuery repository.OperationQuery
}

func (r *memOperationRepo) Insert(ctx context.Context, e models.OperationEvent) (int64, error) {
	if r.err != nil {
		return 0, r.err
	}
	for _, have := range r.events {
		if have.Oven == e.Oven && have.Chamber == e.Chamber && have.Time.Equal(e.Time) {
			return 0, fmt.Errorf("insert operation: %w", models.ErrDuplicateRecord)
		}
	}
	e.ID = int64(len(r.events) + 1)
	r.events = append(r.events, e)
	sort.SliceStable(r.events, func(i, j int) bool { return r.events[i].Time.Before(r.events[j].Time) })
	return e.ID, nil
}

func (r *memOperationRepo) LatestBefore(ctx context.Context, oven int, chamber string, kind models.OperationKind, before time.Time) (*models.OperationEvent, error) {
	if r.err != nil {
		return nil, r.err
	}
	var found *models.OperationEvent
	for i := range r.events {
		e := r.events[i]
		if e.Oven != oven || e.Chamber != chamber || !e.Time.Before(before) {
			continue
		}
		if kind != "" && e.Kind != kind {
			continue
		}
		found = &e
	}
	return found, nil
}

func (r *memOperationRepo) List(ctx context.Context, q repository.OperationQuery) ([]models.OperationEvent, error) {
	r.lastQuery = q
	if r.err != nil {
		return nil, r.err
	}
	var out []models.OperationEvent
	for _, e := range r.events {
		if q.Oven != 0 && e.Oven != q.Oven {
			continue
		}
		if q.Chamber != "" && e.Chamber != q.Chamber {
			continue
		}
		if q.Kind != "" && e.Kind != q.Kind {
			continue
		}
		out = append(out, e)
	}
	return out, nil
}

type memCycleRepo struct {
	cycles    []models.CokingCycle
	insertErr error
	listErr   error
	lastQuery repository.CycleQuery
}

func (r *memCycleRepo) Insert(ctx context.Context, c models.CokingCycle) (int64, error) {
	if r.insertErr != nil {
		return 0, r.insertErr
	}
	c.ID = int64(len(r.cycles) + 1)
	r.cycles = append(r.cycles, c)
	return c.ID, nil
}

func (r *memCycleRepo) List(ctx context.Context, q repository.CycleQuery) ([]models.CokingCycle, error) {
	r.lastQuery = q
	if r.listErr != nil {
		return nil, r.listErr
	}
	var out []models.CokingCycle
	for i := len(r.cycles) - 1; i >= 0; i-- {
		c := r.cycles[i]
		if q.Oven != 0 && c.Oven != q.Oven {
			continue
		}
		if q.Chamber != "" && c.Chamber != q.Chamber {
			continue
		}
		out = append(out, c)
		if q.Limit > 0 && len(out) == q.Limit {
			break
		}
	}
	return out, nil
}

// testOvens is oven 1 with chambers 1#..50# and oven 2 with 1#..3#.
func testOvens() models.OvenSet {
	o1, _ := models.NewOven(1, models.NumberedChambers(50))
	o2, _ := models.NewOven(2, models.NumberedChambers(3))
	set, _ := models.NewOvenSet(o1, o2)
	return set
}

func mustTime(s string) time.Time {
	t, err := time.ParseInLocation(models.TimeLayout, s, time.UTC)
	if err != nil {
		panic(err)
	}
	return t
}
