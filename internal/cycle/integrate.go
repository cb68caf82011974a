package cycle

import "errors"

// ErrNoPoints is returned when there is nothing to average.
var ErrNoPoints = errors.New("no temperature points to average")

// Average is the time-weighted mean of a series over its full span,
// integrated with the trapezoidal rule.
//
// Points must be in ascending time order. Adjacent points sharing an instant
// contribute nothing. When the series has no width at all (one point, or all
// points at one instant) the first point's reading is returned.
func Average(points []Point) (machine, coke float64, err error) {
	if len(points) == 0 {
		return 0, 0, ErrNoPoints
	}

	var machineArea, cokeArea, total float64
	for i := 1; i < len(points); i++ {
		p1, p2 := points[i-1], points[i]
		if p1.Time.Equal(p2.Time) {
			continue
		}
		minutes := p2.Time.Sub(p1.Time).Minutes()
		machineArea += (p1.Machine + p2.Machine) / 2 * minutes
		cokeArea += (p1.Coke + p2.Coke) / 2 * minutes
		total += minutes
	}

	if total == 0 {
		return points[0].Machine, points[0].Coke, nil
	}
	return machineArea / total, cokeArea / total, nil
}
