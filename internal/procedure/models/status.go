package models

import (
	"strings"

	dErrors "municipal/pkg/domain-errors"
)

// Status is the lifecycle state of a procedure.
type Status string

const (
	StatusPending   Status = "PENDING"
	StatusInReview  Status = "IN_REVIEW"
	StatusCancelled Status = "CANCELLED"
	StatusCompleted Status = "COMPLETED"
)

// legalEdges is the whole state machine. CANCELLED and COMPLETED are terminal.
var legalEdges = map[Status][]Status{
	StatusPending:  {StatusInReview, StatusCancelled},
	StatusInReview: {StatusCompleted},
}

// ParseStatus accepts the wire names, case-insensitively.
func ParseStatus(s string) (Status, error) {
	st := Status(strings.ToUpper(strings.TrimSpace(s)))
	if !st.IsValid() {
		return "", dErrors.Newf(dErrors.CodeValidation, "unknown procedure status %q", s)
	}
	return st, nil
}

func (s Status) IsValid() bool {
	switch s {
	case StatusPending, StatusInReview, StatusCancelled, StatusCompleted:
		return true
	}
	return false
}

// CanTransitionTo reports whether next is a legal edge from s.
func (s Status) CanTransitionTo(next Status) bool {
	for _, allowed := range legalEdges[s] {
		if allowed == next {
			return true
		}
	}
	return false
}

// IsOpen is true while the procedure can still be paid for.
func (s Status) IsOpen() bool {
	return s == StatusPending || s == StatusInReview
}

func (s Status) String() string {
	return string(s)
}
