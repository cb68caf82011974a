package cycle

import (
	"time"

	"coke_oven/internal/models"
)

// Point is a two-channel reading at an instant.
type Point struct {
	Time    time.Time
	Machine float64
	Coke    float64
}

// PointOf converts a stored sample into a Point.
func PointOf(s models.TemperatureSample) Point {
	return Point{Time: s.Time, Machine: s.MachineSide, Coke: s.CokeSide}
}

// Interpolate estimates the reading at target from the samples that bracket it.
//
// With both neighbours the estimate is linear in elapsed time. With one
// neighbour that neighbour's reading is held flat. With none, ok is false.
// The estimate is not clamped to the neighbours' range.
func Interpolate(prev, next *models.TemperatureSample, target time.Time) (p Point, ok bool) {
	switch {
	case prev != nil && next != nil:
		span := next.Time.Sub(prev.Time).Seconds()
		if span == 0 {
			return Point{Time: target, Machine: prev.MachineSide, Coke: prev.CokeSide}, true
		}
		ratio := target.Sub(prev.Time).Seconds() / span
		return Point{
			Time:    target,
			Machine: prev.MachineSide + (next.MachineSide-prev.MachineSide)*ratio,
			Coke:    prev.CokeSide + (next.CokeSide-prev.CokeSide)*ratio,
		}, true
	case prev != nil:
		return Point{Time: target, Machine: prev.MachineSide, Coke: prev.CokeSide}, true
	case next != nil:
		return Point{Time: target, Machine: next.MachineSide, Coke: next.CokeSide}, true
	default:
		return Point{}, false
	}
}
