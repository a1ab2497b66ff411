package models

import (
	"fmt"
	"regexp"
	"strings"
	"time"

	"github.com/google/uuid"
)

const ReceiptPrefix = "COMP"

var receiptPattern = regexp.MustCompile(`^COMP-\d+-[0-9a-f]{8}$`)

// NewReceiptID returns COMP-<unix ms>-<8 hex chars>. The suffix comes from a
// random UUID so receipts issued in the same millisecond still differ.
func NewReceiptID(now time.Time) string {
	suffix := strings.ReplaceAll(uuid.NewString(), "-", "")[:8]
	return fmt.Sprintf("%s-%d-%s", ReceiptPrefix, now.UnixMilli(), suffix)
}

func IsReceiptID(s string) bool {
	return receiptPattern.MatchString(s)
}
