package ingestion

import (
	"strings"
)

var delimiters = []rune{';', ',', '\t'}

// DetectDelimiter picks the delimiter that splits the first lines most
// consistently. Semicolon is the default.
func DetectDelimiter(content string) rune {
	sample := make([]string, 0, 5)
	for _, line := range strings.Split(content, "\n") {
		if trimmed := strings.TrimSpace(line); trimmed != "" {
			sample = append(sample, trimmed)
			if len(sample) == cap(sample) {
				break
			}
		}
	}
	if len(sample) == 0 {
		return ';'
	}

	best := ';'
	maxConsistency := 0.0
	for _, delim := range delimiters {
		sum := 0
		counts := make([]int, len(sample))
		for i, line := range sample {
			counts[i] = strings.Count(line, string(delim))
			sum += counts[i]
		}
		avg := float64(sum) / float64(len(counts))
		if avg == 0 {
			continue
		}

		variance := 0.0
		for _, c := range counts {
			diff := float64(c) - avg
			variance += diff * diff
		}
		variance /= float64(len(counts))

		// all lines should split into a similar number of fields
		if consistency := avg / (1.0 + variance); consistency > maxConsistency {
			maxConsistency = consistency
			best = delim
		}
	}
	return best
}
