package domain

import (
	"errors"
	"fmt"
)

type Status string

const (
	StatusPlaced    Status = "placed"
	StatusPreparing Status = "preparing"
	StatusReady     Status = "ready"
	StatusCompleted Status = "completed"
)

var (
	ErrUnknownStatus     = errors.New("unknown order status")
	ErrInvalidTransition = errors.New("order status can only move one step forward")
)

// Statuses lists every status in progression order.
var Statuses = []Status{StatusPlaced, StatusPreparing, StatusReady, StatusCompleted}

func ParseStatus(s string) (Status, error) {
	for _, st := range Statuses {
		if string(st) == s {
			return st, nil
		}
	}
	return "", fmt.Errorf("%w: %q", ErrUnknownStatus, s)
}

// Next returns the following status. Completed is terminal.
func (s Status) Next() (Status, bool) {
	for i, st := range Statuses {
		if st == s && i+1 < len(Statuses) {
			return Statuses[i+1], true
		}
	}
	return "", false
}

func (s Status) Open() bool {
	return s != StatusCompleted
}

// Transition checks that to is exactly the step after from.
func Transition(from, to Status) error {
	next, ok := from.Next()
	if !ok || next != to {
		return fmt.Errorf("%w: %s -> %s", ErrInvalidTransition, from, to)
	}
	return nil
}
