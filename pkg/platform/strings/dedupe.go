// Package strings provides string list utilities for configuration values.
package strings

import (
	"strings"
)

// SplitList splits a comma separated value such as KAFKA_BROKERS into its
// trimmed, non-empty, unique elements. Order is preserved.
//
// Example:
//
//	SplitList(" kafka-1:9092, kafka-2:9092,,kafka-1:9092")
//	// Returns: []string{"kafka-1:9092", "kafka-2:9092"}
func SplitList(value string) []string {
	if strings.TrimSpace(value) == "" {
		return nil
	}
	return dedupe(strings.Split(value, ","), strings.TrimSpace)
}

// DedupeFold removes duplicates and empty strings ignoring case, keeping the
// lowercased form. Used for kind filters and address lists.
func DedupeFold(values []string) []string {
	return dedupe(values, func(s string) string {
		return strings.ToLower(strings.TrimSpace(s))
	})
}

func dedupe(values []string, normalize func(string) string) []string {
	if len(values) == 0 {
		return values
	}

	seen := make(map[string]struct{}, len(values))
	result := make([]string, 0, len(values))

	for _, v := range values {
		n := normalize(v)
		if n == "" {
			continue
		}
		if _, ok := seen[n]; !ok {
			seen[n] = struct{}{}
			result = append(result, n)
		}
	}

	return result
}
