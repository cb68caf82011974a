// Package metrics exposes Prometheus counters for ingestion and cycle derivation.
package metrics

import (
	"errors"
	"strconv"

	"coke_oven/internal/models"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
)

// Registry holds the service collectors; /metrics serves it.
var Registry = prometheus.NewRegistry()

var (
	temperatureSamples = prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "coke_temperature_samples_total",
		Help: "Temperature samples stored, by oven.",
	}, []string{"oven"})

	operations = prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "coke_operations_total",
		Help: "LOAD/PUSH events stored, by oven and type.",
	}, []string{"oven", "type"})

	cycles = prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "coke_cycles_total",
		Help: "Coking cycles derived, by oven and whether averages were available.",
	}, []string{"oven", "averages"})

	ingestErrors = prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "coke_ingest_errors_total",
		Help: "Rejected ingestion calls, by reason.",
	}, []string{"reason"})
)

func init() {
	Registry.MustRegister(
		temperatureSamples,
		operations,
		cycles,
		ingestErrors,
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
}

// TemperatureStored counts a persisted sample.
func TemperatureStored(oven int) {
	temperatureSamples.WithLabelValues(strconv.Itoa(oven)).Inc()
}

// OperationStored counts a persisted LOAD/PUSH.
func OperationStored(oven int, kind models.OperationKind) {
	operations.WithLabelValues(strconv.Itoa(oven), string(kind)).Inc()
}

// CycleDerived counts a persisted cycle.
func CycleDerived(c models.CokingCycle) {
	averages := "absent"
	if c.HasAverages() {
		averages = "present"
	}
	cycles.WithLabelValues(strconv.Itoa(c.Oven), averages).Inc()
}

// IngestFailed counts a rejected call under the reason derived from err.
func IngestFailed(err error) {
	ingestErrors.WithLabelValues(Reason(err)).Inc()
}

// Reason maps an error onto a short, bounded label value.
func Reason(err error) string {
	switch {
	case err == nil:
		return "none"
	case errors.Is(err, models.ErrInvalidOven):
		return "invalid_oven"
	case errors.Is(err, models.ErrInvalidChamber):
		return "invalid_chamber"
	case errors.Is(err, models.ErrInvalidOperationKind):
		return "invalid_operation_kind"
	case errors.Is(err, models.ErrInvalidTimeFormat):
		return "invalid_time_format"
	case errors.Is(err, models.ErrDuplicateRecord):
		return "duplicate_record"
	case errors.Is(err, models.ErrNotInitialized):
		return "not_initialized"
	case errors.Is(err, models.ErrLockUnavailable):
		return "lock_unavailable"
	case errors.Is(err, models.ErrStorageFailure):
		return "storage_failure"
	default:
		return "other"
	}
}
