package metrics

import (
	"errors"
	"fmt"
	"testing"

	"coke_oven/internal/models"

	"github.com/prometheus/client_golang/prometheus/testutil"
)

func TestReason(t *testing.T) {
	t.Parallel()

	cases := []struct {
		err  error
		want string
	}{
		{nil, "none"},
		{fmt.Errorf("oven 9: %w", models.ErrInvalidOven), "invalid_oven"},
		{models.ErrInvalidChamber, "invalid_chamber"},
		{models.ErrInvalidOperationKind, "invalid_operation_kind"},
		{models.ErrInvalidTimeFormat, "invalid_time_format"},
		{fmt.Errorf("insert: %w", models.ErrDuplicateRecord), "duplicate_record"},
		{models.ErrNotInitialized, "not_initialized"},
		{models.ErrLockUnavailable, "lock_unavailable"},
		{fmt.Errorf("x: %w: %w", models.ErrStorageFailure, errors.New("disk")), "storage_failure"},
		{errors.New("boom"), "other"},
	}
	for _, tc := range cases {
		if got := Reason(tc.err); got != tc.want {
			t.Fatalf("Reason(%v) = %q, want %q", tc.err, got, tc.want)
		}
	}
}

func TestCycleDerived_LabelsByAverages(t *testing.T) {
	v := 1.0
	before := testutil.ToFloat64(cycles.WithLabelValues("77", "present"))
	CycleDerived(models.CokingCycle{Oven: 77, AvgMachineSide: &v, AvgCokeSide: &v})
	if got := testutil.ToFloat64(cycles.WithLabelValues("77", "present")); got != before+1 {
		t.Fatalf("present counter = %v, want %v", got, before+1)
	}

	before = testutil.ToFloat64(cycles.WithLabelValues("77", "absent"))
	CycleDerived(models.CokingCycle{Oven: 77})
	if got := testutil.ToFloat64(cycles.WithLabelValues("77", "absent")); got != before+1 {
		t.Fatalf("absent counter = %v, want %v", got, before+1)
	}
}
