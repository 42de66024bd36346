package pipeline

import (
	"strconv"
	"strings"
)

// CodeRange lists the instrument codes from..to inclusive. An inverted range is empty.
func CodeRange(from, to int) []string {
	if from > to {
		return nil
	}
	codes := make([]string, 0, to-from+1)
	for code := from; code <= to; code++ {
		codes = append(codes, strconv.Itoa(code))
	}
	return codes
}

// ResolveCodes prefers an explicit list over the numeric range. Explicit codes are
// trimmed and de-duplicated, first occurrence wins.
func ResolveCodes(explicit []string, from, to int) []string {
	if len(explicit) == 0 {
		return CodeRange(from, to)
	}

	seen := make(map[string]struct{}, len(explicit))
	codes := make([]string, 0, len(explicit))
	for _, code := range explicit {
		code = strings.TrimSpace(code)
		if code == "" {
			continue
		}
		if _, ok := seen[code]; ok {
			continue
		}
		seen[code] = struct{}{}
		codes = append(codes, code)
	}
	return codes
}
