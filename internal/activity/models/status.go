package models

import (
	"strings"

	dErrors "secretsanta/pkg/domain-errors"
)

// Status is the lifecycle state of an activity.
//
// Transitions are monotonic: OPEN → MATCHED → REVEALED. REVEALED is terminal
// and MATCHED cannot be skipped.
type Status string

const (
	StatusOpen     Status = "OPEN"
	StatusMatched  Status = "MATCHED"
	StatusRevealed Status = "REVEALED"
)

var transitions = map[Status]Status{
	StatusOpen:    StatusMatched,
	StatusMatched: StatusRevealed,
}

func (s Status) String() string { return string(s) }

// Valid reports whether s is one of the known states.
func (s Status) Valid() bool {
	switch s {
	case StatusOpen, StatusMatched, StatusRevealed:
		return true
	}
	return false
}

// CanTransitionTo reports whether next is the single legal successor of s.
func (s Status) CanTransitionTo(next Status) bool {
	succ, ok := transitions[s]
	return ok && succ == next
}

// ParseStatus accepts the canonical upper-case names, case-insensitively.
func ParseStatus(raw string) (Status, error) {
	s := Status(strings.ToUpper(strings.TrimSpace(raw)))
	if !s.Valid() {
		return "", dErrors.New(dErrors.CodeInvalidInput, "unknown activity status")
	}
	return s, nil
}
