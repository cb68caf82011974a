package main

import (
	"bytes"
	"encoding/json"
	"errors"
	"math"
	"path/filepath"
	"testing"

	"coke_oven/internal/models"
)

func run(t *testing.T, dbPath string, args ...string) (string, error) {
	t.Helper()
	var out bytes.Buffer
	cmd := newRootCmd()
	cmd.SetOut(&out)
	cmd.SetErr(&bytes.Buffer{})
	cmd.SetArgs(append([]string{"--db", dbPath, "--log-level", "error"}, args...))
	err := cmd.Execute()
	return out.String(), err
}

func TestCokectl_RecordAndListCycles(t *testing.T) {
	dbPath := filepath.Join(t.TempDir(), "coke.db")

	steps := [][]string{
		{"temp", "1", "2025-06-18 08:00", "100", "200"},
		{"temp", "1", "2025-06-18 10:00", "200", "300"},
		{"op", "1", "7#", "LOAD", "2025-06-18 08:30"},
		{"op", "1", "7#", "PUSH", "2025-06-18 09:30"},
	}
	for _, args := range steps {
		if _, err := run(t, dbPath, args...); err != nil {
			t.Fatalf("%v: %v", args, err)
		}
	}

	out, err := run(t, dbPath, "cycles", "--oven", "1", "--chamber", "7#")
	if err != nil {
		t.Fatalf("cycles: %v", err)
	}
	var cycles []models.CokingCycle
	if err := json.Unmarshal([]byte(out), &cycles); err != nil {
		t.Fatalf("decode %q: %v", out, err)
	}
	if len(cycles) != 1 {
		t.Fatalf("expected 1 cycle, got %d", len(cycles))
	}
	c := cycles[0]
	if c.Duration != "01:00" || c.AvgMachineSide == nil || math.Abs(*c.AvgMachineSide-150) > 1e-9 {
		t.Fatalf("unexpected cycle %+v", c)
	}
}

func TestCokectl_Errors(t *testing.T) {
	dbPath := filepath.Join(t.TempDir(), "coke.db")

	tests := []struct {
		name    string
		args    []string
		wantErr error
	}{
		{name: "unknown oven", args: []string{"temp", "9", "2025-06-18 08:00", "1", "2"}, wantErr: models.ErrInvalidOven},
		{name: "bad kind", args: []string{"op", "1", "1#", "SWEEP", "2025-06-18 08:00"}, wantErr: models.ErrInvalidOperationKind},
		{name: "bad time", args: []string{"op", "1", "1#", "LOAD", "yesterday"}, wantErr: models.ErrInvalidTimeFormat},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if _, err := run(t, dbPath, tt.args...); !errors.Is(err, tt.wantErr) {
				t.Fatalf("expected %v, got %v", tt.wantErr, err)
			}
		})
	}

	if _, err := run(t, dbPath, "temp", "x", "2025-06-18 08:00", "1", "2"); err == nil {
		t.Fatalf("expected a parse error for a non-numeric oven")
	}
	if _, err := run(t, dbPath, "op", "1", "1#"); err == nil {
		t.Fatalf("expected an argument count error")
	}
}

func TestCokectl_Overview(t *testing.T) {
	dbPath := filepath.Join(t.TempDir(), "coke.db")
	if _, err := run(t, dbPath, "temp", "2", "2025-06-18 08:00", "1000", "1010"); err != nil {
		t.Fatal(err)
	}
	out, err := run(t, dbPath, "overview")
	if err != nil {
		t.Fatalf("overview: %v", err)
	}
	var status []models.OvenStatus
	if err := json.Unmarshal([]byte(out), &status); err != nil {
		t.Fatalf("decode %q: %v", out, err)
	}
	if len(status) != 3 || status[1].LatestTemperature == nil || status[1].LatestTemperature.CokeSide != 1010 {
		t.Fatalf("unexpected overview %+v", status)
	}
}

type failingCloser struct{ err error }

func (f failingCloser) Close() error { return f.err }

func TestCloseStore(t *testing.T) {
	closeErr := errors.New("checkpoint failed")

	var err error
	closeStore(failingCloser{err: closeErr}, "coke.db", &err)
	if !errors.Is(err, closeErr) {
		t.Fatalf("expected the close error, got %v", err)
	}

	cmdErr := models.ErrInvalidOven
	err = cmdErr
	closeStore(failingCloser{err: closeErr}, "coke.db", &err)
	if err != cmdErr {
		t.Fatalf("the command error must win, got %v", err)
	}

	err = nil
	closeStore(failingCloser{}, "coke.db", &err)
	if err != nil {
		t.Fatalf("clean close: got %v", err)
	}
}

func TestCokectl_StrictFlag(t *testing.T) {
	tests := []struct {
		name       string
		strict     bool
		wantCycles int
	}{
		{name: "load paired twice", wantCycles: 2},
		{name: "latest event must be a load", strict: true, wantCycles: 1},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			dbPath := filepath.Join(t.TempDir(), "coke.db")
			var flags []string
			if tt.strict {
				flags = []string{"--strict"}
			}
			for _, args := range [][]string{
				{"op", "1", "5#", "LOAD", "2025-06-18 08:00"},
				{"op", "1", "5#", "PUSH", "2025-06-18 10:00"},
				{"op", "1", "5#", "PUSH", "2025-06-18 12:00"},
			} {
				if _, err := run(t, dbPath, append(flags, args...)...); err != nil {
					t.Fatalf("%v: %v", args, err)
				}
			}

			out, err := run(t, dbPath, "cycles", "--chamber", "5#")
			if err != nil {
				t.Fatalf("cycles: %v", err)
			}
			var cycles []models.CokingCycle
			if err := json.Unmarshal([]byte(out), &cycles); err != nil {
				t.Fatalf("decode %q: %v", out, err)
			}
			if len(cycles) != tt.wantCycles {
				t.Fatalf("expected %d cycles, got %d", tt.wantCycles, len(cycles))
			}
		})
	}
}
