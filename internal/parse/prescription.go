package parse

import (
	"regexp"
	"strconv"
	"strings"
)

var (
	// "3x8", "3x8-10", "4 x 12", "5×5"
	rxCrossSets = regexp.MustCompile(`^\s*(\d+)\s*[x×X]\s*\d+`)
	// "3 sets", "3 sets of 10", "(4 sets)"
	rxWordSets = regexp.MustCompile(`(?i)\b(\d+)\s+sets?\b`)
)

// prescriptionSetCount extracts the set count a prescription string
// implies, or 0 when it implies none ("6-8 reps" declares reps, not sets).
func prescriptionSetCount(prescription string) int {
	p := strings.TrimSpace(prescription)
	if p == "" {
		return 0
	}
	if m := rxCrossSets.FindStringSubmatch(p); m != nil {
		n, _ := strconv.Atoi(m[1])
		return n
	}
	if m := rxWordSets.FindStringSubmatch(p); m != nil {
		n, _ := strconv.Atoi(m[1])
		return n
	}
	return 0
}

// labelSetCount extracts a group-declared set count from a block label,
// e.g. "Superset A (4 sets)" → 4.
func labelSetCount(label string) int {
	if m := rxWordSets.FindStringSubmatch(label); m != nil {
		n, _ := strconv.Atoi(m[1])
		return n
	}
	return 0
}
