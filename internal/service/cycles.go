package service

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"coke_oven/internal/models"
	"coke_oven/internal/repository"
)

type CycleLogService struct {
	cycles repository.CycleRepo
	ovens  models.OvenSet
}

func NewCycleLogService(cycles repository.CycleRepo, ovens models.OvenSet) *CycleLogService {
	return &CycleLogService{cycles: cycles, ovens: ovens}
}

// ErrInvalidFilter is wrapped by every read-side filter rejection.
var ErrInvalidFilter = errors.New("invalid filter")

var (
	errInvalidTimeRange = fmt.Errorf("%w: from must be <= to", ErrInvalidFilter)
	errNegativeLimit    = fmt.Errorf("%w: limit must not be negative", ErrInvalidFilter)
)

// normalizeToUTC returns t in UTC, preserving zero time values.
func normalizeToUTC(t time.Time) time.Time {
	if t.IsZero() {
		return t
	}
	return t.UTC()
}

// normalizeRange converts both bounds to UTC and validates their order.
func normalizeRange(from, to time.Time) (time.Time, time.Time, error) {
	from, to = normalizeToUTC(from), normalizeToUTC(to)
	if !from.IsZero() && !to.IsZero() && from.After(to) {
		return time.Time{}, time.Time{}, errInvalidTimeRange
	}
	return from, to, nil
}

// checkOvenChamber validates the optional oven / chamber pair of a filter.
// A chamber without an oven is accepted as is; it may exist on any oven.
func checkOvenChamber(ovens models.OvenSet, oven int, chamber string) error {
	if oven == 0 {
		return nil
	}
	o, err := ovens.Lookup(oven)
	if err != nil {
		return err
	}
	if chamber != "" && !o.HasChamber(chamber) {
		return fmt.Errorf("%w: %q is not a chamber of oven %d", models.ErrInvalidChamber, chamber, oven)
	}
	return nil
}

// normalizeCycleFilter prepares the repository query.
func (s *CycleLogService) normalizeCycleFilter(f CycleFilter) (repository.CycleQuery, error) {
	from, to, err := normalizeRange(f.From, f.To)
	if err != nil {
		return repository.CycleQuery{}, err
	}
	if f.Limit < 0 {
		return repository.CycleQuery{}, errNegativeLimit
	}
	chamber := strings.TrimSpace(f.Chamber)
	if err := checkOvenChamber(s.ovens, f.Oven, chamber); err != nil {
		return repository.CycleQuery{}, err
	}
	return repository.CycleQuery{
		Oven:    f.Oven,
		Chamber: chamber,
		From:    from,
		To:      to,
		Limit:   f.Limit,
	}, nil
}

// Cycles lists cycles newest push first.
func (s *CycleLogService) Cycles(ctx context.Context, f CycleFilter) ([]models.CokingCycle, error) {
	q, err := s.normalizeCycleFilter(f)
	if err != nil {
		return nil, err
	}
	return s.cycles.List(ctx, q)
}
