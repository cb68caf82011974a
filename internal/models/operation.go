package models

import (
	"fmt"
	"strings"
	"time"
)

// OperationKind is LOAD (coal charging) or PUSH (coke discharging).
type OperationKind string

const (
	OperationLoad OperationKind = "LOAD"
	OperationPush OperationKind = "PUSH"
)

// ParseOperationKind accepts exactly "LOAD" or "PUSH".
func ParseOperationKind(s string) (OperationKind, error) {
	switch k := OperationKind(s); k {
	case OperationLoad, OperationPush:
		return k, nil
	default:
		return "", fmt.Errorf("%w: %q", ErrInvalidOperationKind, s)
	}
}

// NormalizeOperationKind is the lenient form used by query filters:
// surrounding spaces and case are ignored, the empty string means "any".
func NormalizeOperationKind(s string) (OperationKind, error) {
	s = strings.ToUpper(strings.TrimSpace(s))
	if s == "" {
		return "", nil
	}
	return ParseOperationKind(s)
}

// OperationEvent is a LOAD or PUSH of one chamber. (Oven, Chamber, Time) is unique.
type OperationEvent struct {
	ID      int64         `json:"id,omitempty"`
	Oven    int           `json:"oven"`
	Chamber string        `json:"chamber"`
	Kind    OperationKind `json:"type"`
	Time    time.Time     `json:"time"`
}
