package service

import "time"

// TemperatureInput is one reading as a host submits it. Time is text in
// one of the accepted layouts ("2006-01-02 15:04:05", "2006-01-02 15:04", "2006-01-02").
type TemperatureInput struct {
	Oven        int
	Time        string
	MachineSide float64
	CokeSide    float64
}

// OperationInput is a LOAD or PUSH as a host submits it.
type OperationInput struct {
	Oven    int
	Chamber string
	Type    string // "LOAD" | "PUSH"
	Time    string
}

// CycleFilter selects cycles by push time. Zero values do not filter.
type CycleFilter struct {
	Oven    int
	Chamber string
	From    time.Time // inclusive
	To      time.Time // inclusive
	Limit   int       // 0 means the repository default
}

// TemperatureFilter selects the samples of one oven.
type TemperatureFilter struct {
	Oven int
	From time.Time // inclusive; zero means no lower bound
	To   time.Time // inclusive; zero means no upper bound
}

// OperationFilter selects LOAD/PUSH events.
type OperationFilter struct {
	Oven    int
	Chamber string
	Type    string // "", "LOAD", "PUSH"; case-insensitive
	From    time.Time
	To      time.Time
}
