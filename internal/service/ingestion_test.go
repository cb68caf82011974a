package service

import (
	"context"
	"errors"
	"testing"

	"coke_oven/internal/logger"
	"coke_oven/internal/models"
)

type ingestionFixture struct {
	svc    *IngestionService
	temps  *memTemperatureRepo
	ops    *memOperationRepo
	cycles *memCycleRepo
}

func newIngestionFixture(strict bool) *ingestionFixture {
	f := &ingestionFixture{
		temps:  &memTemperatureRepo{},
		ops:    &memOperationRepo{},
		cycles: &memCycleRepo{},
	}
	m := NewCycleMatcher(f.temps, f.ops, f.cycles, logger.Nop(), strict)
	f.svc = NewIngestionService(f.temps, f.ops, testOvens(), m, logger.Nop())
	return f
}

func (f *ingestionFixture) temp(t *testing.T, oven int, ts string, machine, coke float64) {
	t.Helper()
	err := f.svc.RecordTemperature(context.Background(), TemperatureInput{Oven: oven, Time: ts, MachineSide: machine, CokeSide: coke})
	if err != nil {
		t.Fatalf("RecordTemperature(%d, %q): %v", oven, ts, err)
	}
}

func (f *ingestionFixture) op(t *testing.T, oven int, chamber, kind, ts string) {
	t.Helper()
	err := f.svc.RecordOperation(context.Background(), OperationInput{Oven: oven, Chamber: chamber, Type: kind, Time: ts})
	if err != nil {
		t.Fatalf("RecordOperation(%d, %q, %s, %q): %v", oven, chamber, kind, ts, err)
	}
}

func TestIngestionService_RecordTemperature(t *testing.T) {
	f := newIngestionFixture(false)
	f.temp(t, 1, "2025-06-18 08:00", 100, 200)

	if len(f.temps.samples) != 1 {
		t.Fatalf("expected 1 sample, got %d", len(f.temps.samples))
	}
	got := f.temps.samples[0]
	if !got.Time.Equal(mustTime("2025-06-18 08:00:00")) || got.MachineSide != 100 || got.CokeSide != 200 {
		t.Fatalf("unexpected sample: %+v", got)
	}

	// Same instant in a different accepted layout collides.
	err := f.svc.RecordTemperature(context.Background(), TemperatureInput{Oven: 1, Time: "2025-06-18 08:00:00", MachineSide: 1, CokeSide: 2})
	if !errors.Is(err, models.ErrDuplicateRecord) {
		t.Fatalf("expected ErrDuplicateRecord, got %v", err)
	}
}

func TestIngestionService_Validation(t *testing.T) {
	tests := []struct {
		name    string
		call    func(s *IngestionService) error
		wantErr error
	}{
		{
			name: "temperature unknown oven",
			call: func(s *IngestionService) error {
				return s.RecordTemperature(context.Background(), TemperatureInput{Oven: 4, Time: "2025-06-18 08:00"})
			},
			wantErr: models.ErrInvalidOven,
		},
		{
			name: "temperature bad time",
			call: func(s *IngestionService) error {
				return s.RecordTemperature(context.Background(), TemperatureInput{Oven: 1, Time: "18/06/2025"})
			},
			wantErr: models.ErrInvalidTimeFormat,
		},
		{
			name: "operation unknown oven",
			call: func(s *IngestionService) error {
				return s.RecordOperation(context.Background(), OperationInput{Oven: 0, Chamber: "1#", Type: "LOAD", Time: "2025-06-18"})
			},
			wantErr: models.ErrInvalidOven,
		},
		{
			name: "operation unknown chamber",
			call: func(s *IngestionService) error {
				return s.RecordOperation(context.Background(), OperationInput{Oven: 2, Chamber: "48#", Type: "LOAD", Time: "2025-06-18"})
			},
			wantErr: models.ErrInvalidChamber,
		},
		{
			name: "operation chamber is matched exactly",
			call: func(s *IngestionService) error {
				return s.RecordOperation(context.Background(), OperationInput{Oven: 1, Chamber: " 1# ", Type: "LOAD", Time: "2025-06-18"})
			},
			wantErr: models.ErrInvalidChamber,
		},
		{
			name: "operation bad kind",
			call: func(s *IngestionService) error {
				return s.RecordOperation(context.Background(), OperationInput{Oven: 1, Chamber: "1#", Type: "DUMP", Time: "2025-06-18"})
			},
			wantErr: models.ErrInvalidOperationKind,
		},
		{
			name: "operation bad time",
			call: func(s *IngestionService) error {
				return s.RecordOperation(context.Background(), OperationInput{Oven: 1, Chamber: "1#", Type: "PUSH", Time: "2025-06-18T08:00"})
			},
			wantErr: models.ErrInvalidTimeFormat,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f := newIngestionFixture(false)
			err := tt.call(f.svc)
			if !errors.Is(err, tt.wantErr) {
				t.Fatalf("expected %v, got %v", tt.wantErr, err)
			}
			if !models.IsValidation(err) {
				t.Fatalf("expected a validation error, got %v", err)
			}
			if len(f.temps.samples) != 0 || len(f.ops.events) != 0 || len(f.cycles.cycles) != 0 {
				t.Fatalf("nothing should be persisted on validation failure")
			}
		})
	}
}

func TestIngestionService_PushDerivesCycle(t *testing.T) {
	f := newIngestionFixture(false)
	f.temp(t, 1, "2025-06-18 08:00", 100, 200)
	f.temp(t, 1, "2025-06-18 10:00", 200, 300)
	f.temp(t, 1, "2025-06-19 12:00", 1400, 1410)
	f.temp(t, 1, "2025-06-19 13:00", 1420, 1430)
	f.op(t, 1, "1#", "LOAD", "2025-06-18 08:16")
	f.op(t, 1, "1#", "PUSH", "2025-06-19 12:45")

	if len(f.ops.events) != 2 {
		t.Fatalf("expected 2 events, got %d", len(f.ops.events))
	}
	if len(f.cycles.cycles) != 1 {
		t.Fatalf("expected 1 cycle, got %d", len(f.cycles.cycles))
	}
	c := f.cycles.cycles[0]
	if c.Duration != "28:29" || c.DurationMinutes != 1709 {
		t.Fatalf("unexpected duration %q (%d min)", c.Duration, c.DurationMinutes)
	}
	if !c.HasAverages() {
		t.Fatalf("expected averages, got none")
	}
	if !c.LoadTime.Equal(mustTime("2025-06-18 08:16:00")) || !c.PushTime.Equal(mustTime("2025-06-19 12:45:00")) {
		t.Fatalf("unexpected window %v .. %v", c.LoadTime, c.PushTime)
	}
}

func TestIngestionService_PushWithoutLoad(t *testing.T) {
	f := newIngestionFixture(false)
	f.op(t, 1, "2#", "PUSH", "2025-06-19 12:45")
	// A LOAD of another chamber or a later LOAD does not match.
	f.op(t, 1, "3#", "LOAD", "2025-06-18 08:00")
	f.op(t, 1, "2#", "LOAD", "2025-06-20 08:00")
	f.op(t, 1, "2#", "PUSH", "2025-06-19 13:00")

	if len(f.cycles.cycles) != 0 {
		t.Fatalf("expected no cycles, got %+v", f.cycles.cycles)
	}
	if len(f.ops.events) != 4 {
		t.Fatalf("expected every event stored, got %d", len(f.ops.events))
	}
}

func TestIngestionService_CycleInsertFailureKeepsPush(t *testing.T) {
	f := newIngestionFixture(false)
	f.op(t, 1, "1#", "LOAD", "2025-06-18 08:00")
	f.cycles.insertErr = errors.New("disk full")

	err := f.svc.RecordOperation(context.Background(), OperationInput{Oven: 1, Chamber: "1#", Type: "PUSH", Time: "2025-06-18 20:00"})
	if err == nil {
		t.Fatalf("expected error from cycle insert")
	}
	if models.IsValidation(err) {
		t.Fatalf("cycle insert failure must not look like a validation error: %v", err)
	}
	if len(f.ops.events) != 2 {
		t.Fatalf("PUSH should stay stored, got %d events", len(f.ops.events))
	}
}

func TestIngestionService_StorageErrorPassesThrough(t *testing.T) {
	f := newIngestionFixture(false)
	f.ops.err = models.ErrStorageFailure

	err := f.svc.RecordOperation(context.Background(), OperationInput{Oven: 1, Chamber: "1#", Type: "LOAD", Time: "2025-06-18"})
	if !errors.Is(err, models.ErrStorageFailure) {
		t.Fatalf("expected ErrStorageFailure, got %v", err)
	}
}
