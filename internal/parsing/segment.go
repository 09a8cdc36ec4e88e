package parsing

import (
	"regexp"
	"strings"
)

// alphaRun matches a run of at least 3 consecutive letters. Lines without
// one are price-only or barcode noise from the OCR pass.
var alphaRun = regexp.MustCompile(`[a-zA-Z]{3,}`)

// SegmentLines splits a raw OCR text block into candidate item lines,
// preserving receipt order. A line survives when it is at least 3
// characters after trimming, contains no stoplist boilerplate, and has a
// run of 3 or more letters.
func SegmentLines(text string, stop *Stoplist) []string {
	lines := make([]string, 0)
	for _, line := range strings.Split(text, "\n") {
		line = strings.TrimSpace(line)
		if len(line) < 3 {
			continue
		}
		if stop.Matches(line) {
			continue
		}
		if !alphaRun.MatchString(line) {
			continue
		}
		lines = append(lines, line)
	}
	return lines
}
