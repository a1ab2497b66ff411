package domain

import (
	"regexp"

	dErrors "municipal/pkg/domain-errors"
)

var nationalIDPattern = regexp.MustCompile(`^\d{8}$`)

// NationalID is the eight-digit national identity document number.
type NationalID string

// ParseNationalID accepts exactly eight ASCII digits, nothing else.
func ParseNationalID(s string) (NationalID, error) {
	if !nationalIDPattern.MatchString(s) {
		return "", dErrors.New(dErrors.CodeValidation, "national id must be exactly 8 digits")
	}
	return NationalID(s), nil
}

func (n NationalID) String() string {
	return string(n)
}
