package models

import (
	"strings"

	"github.com/shopspring/decimal"

	id "municipal/pkg/domain"
)

// Type names the kind of procedure. Unknown types are accepted and charged
// the default fee.
type Type string

const (
	TypeOperatingLicence  Type = "LICENCIA_FUNCIONAMIENTO"
	TypeBuildingPermit    Type = "PERMISO_CONSTRUCCION"
	TypeZoningCertificate Type = "CERTIFICADO_PARAMETROS"
)

// DefaultFee applies to procedure types missing from the fee table.
var DefaultFee = id.MustAmount("100.00")

var feeTable = map[Type]decimal.Decimal{
	TypeOperatingLicence:  id.MustAmount("245.00"),
	TypeBuildingPermit:    id.MustAmount("380.00"),
	TypeZoningCertificate: id.MustAmount("150.00"),
}

// ParseType canonicalises a procedure type name.
func ParseType(s string) Type {
	return Type(strings.ToUpper(strings.TrimSpace(s)))
}

// FeeFor returns the amount due when a procedure of type t is opened.
func FeeFor(t Type) decimal.Decimal {
	if fee, ok := feeTable[t]; ok {
		return fee
	}
	return DefaultFee
}
