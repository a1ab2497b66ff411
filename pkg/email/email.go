// Package email checks contact addresses given at registration.
package email

import (
	"net/mail"
	"strings"

	dErrors "municipal/pkg/domain-errors"
)

// Validate accepts a bare address with a dotted domain, e.g.
// "juan.delgado@email.com". Display names ("Juan <j@x.pe>") are rejected.
func Validate(addr string) error {
	parsed, err := mail.ParseAddress(addr)
	if err != nil || parsed.Address != addr || parsed.Name != "" {
		return dErrors.New(dErrors.CodeValidation, "email is malformed")
	}
	at := strings.LastIndexByte(addr, '@')
	domain := addr[at+1:]
	if !strings.Contains(domain, ".") || strings.HasPrefix(domain, ".") || strings.HasSuffix(domain, ".") {
		return dErrors.New(dErrors.CodeValidation, "email domain is malformed")
	}
	return nil
}
