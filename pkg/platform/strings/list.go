// Package strings parses list-valued settings such as CORS origins and broker
// addresses.
package strings

import (
	"strings"
)

// SplitList splits raw on commas, trims each element and drops empties and
// repeats. Order of first appearance is kept. An empty input yields nil.
//
//	SplitList(" k1:9092, k2:9092,k1:9092,") // []string{"k1:9092", "k2:9092"}
func SplitList(raw string) []string {
	var out []string
	seen := map[string]struct{}{}
	for _, part := range strings.Split(raw, ",") {
		v := strings.TrimSpace(part)
		if v == "" {
			continue
		}
		if _, dup := seen[v]; dup {
			continue
		}
		seen[v] = struct{}{}
		out = append(out, v)
	}
	return out
}
