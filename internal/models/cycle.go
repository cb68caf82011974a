package models

import "time"

// CokingCycle spans a LOAD and the PUSH that matched it.
// Averages are nil when no temperature data existed for the oven.
type CokingCycle struct {
	ID              int64     `json:"id,omitempty"`
	Oven            int       `json:"oven"`
	Chamber         string    `json:"chamber"`
	LoadTime        time.Time `json:"load_time"`
	PushTime        time.Time `json:"push_time"`
	DurationMinutes int       `json:"duration_minutes"`
	Duration        string    `json:"duration"` // HH:MM, hours unbounded
	AvgMachineSide  *float64  `json:"avg_temp_machine,omitempty"`
	AvgCokeSide     *float64  `json:"avg_temp_coke,omitempty"`
}

// HasAverages reports whether both average temperatures were derived.
func (c CokingCycle) HasAverages() bool {
	return c.AvgMachineSide != nil && c.AvgCokeSide != nil
}

// OvenStatus is the per-oven snapshot served by the overview endpoints.
type OvenStatus struct {
	Oven              int                `json:"oven"`
	Chambers          int                `json:"chambers"`
	LatestTemperature *TemperatureSample `json:"latest_temperature,omitempty"`
	LatestCycle       *CokingCycle       `json:"latest_cycle,omitempty"`
}
