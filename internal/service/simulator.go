package service

import (
	"context"
	"errors"
	"math"
	"time"

	"coke_oven/internal/cycle"
	"coke_oven/internal/logger"
	"coke_oven/internal/models"
)

// ----------- Simulation constants -----------
const (
	MachineSetpointC = 1100.0 // machine-side flue set point
	CokeSetpointC    = 1120.0 // coke-side flue set point
	DriftAmplitudeC  = 15.0   // peak deviation from the set point
	DriftPeriodTicks = 36     // ticks per full drift wave
	DefaultSimStep   = 10 * time.Minute
)

// SimulatorService feeds synthetic telemetry through an Ingestion sink.
// Each step advances a simulated clock, records one sample per oven and
// one LOAD or PUSH per oven. Chambers are loaded in order, then pushed in
// the same order, so every push closes a cycle of one full pass.
type SimulatorService struct {
	sink  Ingestion
	ovens models.OvenSet
	log   *logger.Logger

	step  time.Duration
	clock time.Time
	ticks int
	pos   map[int]int // per-oven position in the load/push rotation
}

// NewSimulatorService starts the simulated clock at start. A zero start
// means now; a non-positive step means DefaultSimStep.
func NewSimulatorService(sink Ingestion, ovens models.OvenSet, log *logger.Logger, start time.Time, step time.Duration) *SimulatorService {
	if log == nil {
		log = logger.Nop()
	}
	if start.IsZero() {
		start = time.Now().UTC().Truncate(time.Minute)
	}
	if step <= 0 {
		step = DefaultSimStep
	}
	return &SimulatorService{
		sink:  sink,
		ovens: ovens,
		log:   log,
		step:  step,
		clock: start.UTC(),
		pos:   make(map[int]int, len(ovens)),
	}
}

// Run ticks at the given interval until ctx is canceled or the sink is closed.
func (s *SimulatorService) Run(ctx context.Context, tick time.Duration) {
	t := time.NewTicker(tick)
	defer t.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-t.C:
			if err := s.Step(ctx); err != nil {
				if errors.Is(err, models.ErrNotInitialized) || errors.Is(err, models.ErrLockUnavailable) {
					s.log.Errorw("simulator_stopped", "error", err)
					return
				}
				s.log.Errorw("simulator_step_failed", "error", err)
			}
		}
	}
}

// Step performs one simulation tick. Duplicate records are skipped; the
// first other failure aborts the tick.
func (s *SimulatorService) Step(ctx context.Context) error {
	s.clock = s.clock.Add(s.step)
	s.ticks++
	at := cycle.FormatTime(s.clock)

	for _, id := range s.ovens.IDs() {
		machine, coke := s.reading(id)
		err := s.sink.RecordTemperature(ctx, TemperatureInput{
			Oven:        id,
			Time:        at,
			MachineSide: machine,
			CokeSide:    coke,
		})
		if err = skipDuplicate(err); err != nil {
			return err
		}

		chamber, kind := s.nextOperation(id)
		err = s.sink.RecordOperation(ctx, OperationInput{
			Oven:    id,
			Chamber: chamber,
			Type:    string(kind),
			Time:    at,
		})
		if err = skipDuplicate(err); err != nil {
			return err
		}
	}
	return nil
}

// reading is a sine drift around the set points, phase-shifted per oven.
func (s *SimulatorService) reading(oven int) (machine, coke float64) {
	phase := 2 * math.Pi * float64(s.ticks+oven*DriftPeriodTicks/4) / DriftPeriodTicks
	d := DriftAmplitudeC * math.Sin(phase)
	return round1(MachineSetpointC + d), round1(CokeSetpointC + d*0.8)
}

// nextOperation advances the oven's rotation: one pass of LOADs over all
// chambers, then one pass of PUSHes.
func (s *SimulatorService) nextOperation(oven int) (string, models.OperationKind) {
	chambers := s.ovens[oven].Chambers()
	p := s.pos[oven]
	s.pos[oven] = p + 1

	kind := models.OperationLoad
	if (p/len(chambers))%2 == 1 {
		kind = models.OperationPush
	}
	return chambers[p%len(chambers)], kind
}

func skipDuplicate(err error) error {
	if errors.Is(err, models.ErrDuplicateRecord) {
		return nil
	}
	return err
}

func round1(v float64) float64 {
	return math.Round(v*10) / 10
}
