// Package adapter maps each source's raw listing record onto model.JobPosting.
// Adapters are pure: no I/O, and well-formed input never fails.
package adapter

import (
	"encoding/json"
	"strconv"
	"strings"
)

const entryLevel = "신입"

// experienceRange renders a career range in years.
func experienceRange(from, to int) string {
	if from == to {
		return strconv.Itoa(from) + "년"
	}
	return strconv.Itoa(from) + "~" + strconv.Itoa(to) + "년"
}

// marshalRaw keeps the source record for traceability.
func marshalRaw(v any) json.RawMessage {
	b, err := json.Marshal(v)
	if err != nil {
		return nil
	}
	return b
}

func joinNonEmpty(parts ...string) string {
	var out []string
	for _, p := range parts {
		if p = strings.TrimSpace(p); p != "" {
			out = append(out, p)
		}
	}
	return strings.Join(out, " ")
}
