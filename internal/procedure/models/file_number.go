package models

import (
	"fmt"
	"math/rand/v2"
	"regexp"
	"time"
)

// FileNumberPrefix starts every file number.
const FileNumberPrefix = "EXP"

var fileNumberPattern = regexp.MustCompile(`^EXP-\d{4}-\d{6}$`)

// FileNumberGenerator issues candidate file numbers. Uniqueness is enforced
// by the store; the service retries on collision.
type FileNumberGenerator func(now time.Time) string

// RandomFileNumber returns EXP-<year>-<6 random digits>.
func RandomFileNumber(now time.Time) string {
	return fmt.Sprintf("%s-%d-%06d", FileNumberPrefix, now.Year(), rand.IntN(1_000_000))
}

// IsFileNumber reports whether s is well formed.
func IsFileNumber(s string) bool {
	return fileNumberPattern.MatchString(s)
}
