// Package domain holds identifier and value types shared across modules.
//
// Identifiers are typed so a ProcedureID can never be passed where a DebtID is
// expected. Construct them from external input with the Parse functions, which
// enforce the invariants at trust boundaries; direct conversion skips validation.
package domain

import (
	"strconv"
	"strings"

	dErrors "municipal/pkg/domain-errors"
)

// CitizenID identifies a registered citizen. Issued monotonically by the registry.
type CitizenID int64

// ProcedureID identifies a procedure (trámite).
type ProcedureID int64

// DebtID identifies a debt owed by a citizen.
type DebtID int64

func (id CitizenID) String() string   { return strconv.FormatInt(int64(id), 10) }
func (id ProcedureID) String() string { return strconv.FormatInt(int64(id), 10) }
func (id DebtID) String() string      { return strconv.FormatInt(int64(id), 10) }

func (id CitizenID) IsZero() bool   { return id == 0 }
func (id ProcedureID) IsZero() bool { return id == 0 }
func (id DebtID) IsZero() bool      { return id == 0 }

// ParseCitizenID parses a positive decimal identifier.
func ParseCitizenID(s string) (CitizenID, error) {
	v, err := parsePositive(s, "citizen")
	return CitizenID(v), err
}

// ParseProcedureID parses a positive decimal identifier.
func ParseProcedureID(s string) (ProcedureID, error) {
	v, err := parsePositive(s, "procedure")
	return ProcedureID(v), err
}

// ParseDebtID parses a positive decimal identifier.
func ParseDebtID(s string) (DebtID, error) {
	v, err := parsePositive(s, "debt")
	return DebtID(v), err
}

func parsePositive(s, kind string) (int64, error) {
	if strings.TrimSpace(s) == "" {
		return 0, dErrors.Newf(dErrors.CodeInvalidInput, "%s id cannot be empty", kind)
	}
	v, err := strconv.ParseInt(s, 10, 64)
	if err != nil {
		return 0, dErrors.Newf(dErrors.CodeInvalidInput, "invalid %s id", kind)
	}
	if v <= 0 {
		return 0, dErrors.Newf(dErrors.CodeInvalidInput, "%s id must be positive", kind)
	}
	return v, nil
}
