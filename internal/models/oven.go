package models

import (
	"fmt"
	"sort"
	"strconv"
	"strings"
)

// Oven is a coke oven and the fixed set of chamber labels it owns.
type Oven struct {
	ID       int
	chambers map[string]struct{}
	labels   []string
}

// NewOven builds an oven from explicit chamber labels.
func NewOven(id int, chambers []string) (*Oven, error) {
	if id <= 0 {
		return nil, fmt.Errorf("%w: id must be positive, got %d", ErrInvalidOven, id)
	}
	if len(chambers) == 0 {
		return nil, fmt.Errorf("oven %d: no chambers configured", id)
	}
	o := &Oven{ID: id, chambers: make(map[string]struct{}, len(chambers))}
	for _, c := range chambers {
		c = strings.TrimSpace(c)
		if c == "" {
			return nil, fmt.Errorf("oven %d: %w: empty label", id, ErrInvalidChamber)
		}
		if _, dup := o.chambers[c]; dup {
			return nil, fmt.Errorf("oven %d: chamber %q listed twice", id, c)
		}
		o.chambers[c] = struct{}{}
		o.labels = append(o.labels, c)
	}
	return o, nil
}

// NumberedChambers returns the labels "1#".."n#".
func NumberedChambers(n int) []string {
	out := make([]string, 0, n)
	for i := 1; i <= n; i++ {
		out = append(out, strconv.Itoa(i)+"#")
	}
	return out
}

// HasChamber reports whether label is one of the oven's chambers.
func (o *Oven) HasChamber(label string) bool {
	_, ok := o.chambers[label]
	return ok
}

// Chambers returns the chamber labels in configuration order.
func (o *Oven) Chambers() []string {
	out := make([]string, len(o.labels))
	copy(out, o.labels)
	return out
}

// OvenSet is the immutable oven configuration loaded at start-up.
type OvenSet map[int]*Oven

// NewOvenSet indexes ovens by id, rejecting duplicates.
func NewOvenSet(ovens ...*Oven) (OvenSet, error) {
	set := make(OvenSet, len(ovens))
	for _, o := range ovens {
		if _, dup := set[o.ID]; dup {
			return nil, fmt.Errorf("oven %d configured twice", o.ID)
		}
		set[o.ID] = o
	}
	return set, nil
}

// DefaultOvens is the plant layout used when configuration names none:
// ovens 1..3, each with chambers 1#..50#.
func DefaultOvens() OvenSet {
	set := make(OvenSet, 3)
	for id := 1; id <= 3; id++ {
		o, _ := NewOven(id, NumberedChambers(50))
		set[id] = o
	}
	return set
}

// Lookup returns the oven with the given id or ErrInvalidOven.
func (s OvenSet) Lookup(id int) (*Oven, error) {
	o, ok := s[id]
	if !ok {
		return nil, fmt.Errorf("%w: %d", ErrInvalidOven, id)
	}
	return o, nil
}

// IDs returns the configured oven ids in ascending order.
func (s OvenSet) IDs() []int {
	ids := make([]int, 0, len(s))
	for id := range s {
		ids = append(ids, id)
	}
	sort.Ints(ids)
	return ids
}
