package models

import "time"

// TimeLayout is the canonical text form of an instant in the store.
// Lexical order of this form equals chronological order.
const TimeLayout = "2006-01-02 15:04:05"

// TemperatureSample is one reading of both sides of an oven at an instant.
// (Oven, Time) is unique.
type TemperatureSample struct {
	ID          int64     `json:"id,omitempty"`
	Oven        int       `json:"oven"`
	Time        time.Time `json:"time"`
	MachineSide float64   `json:"machine_side"` // °C
	CokeSide    float64   `json:"coke_side"`    // °C
}

// Direction selects which neighbour of an instant a series lookup returns.
type Direction int

const (
	// Before selects the latest sample at or before the instant.
	Before Direction = iota
	// After selects the earliest sample strictly after the instant.
	After
)

func (d Direction) String() string {
	if d == After {
		return "after"
	}
	return "before"
}
