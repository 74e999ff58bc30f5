package geo

import (
	"regexp"
	"strings"
)

// locationPatterns are tried in order; the prepositional forms first,
// then the bare capitalized-suffix form. Known to produce false
// positives and negatives; this is a heuristic, not a gazetteer.
var locationPatterns = []*regexp.Regexp{
	regexp.MustCompile(`(?i)\bin\s+([A-Za-z\s]+(?:City|Town|Village|County|State|Country))`),
	regexp.MustCompile(`(?i)\bfrom\s+([A-Za-z\s]+(?:City|Town|Village|County|State|Country))`),
	regexp.MustCompile(`(?i)\bat\s+([A-Za-z\s]+(?:City|Town|Village|County|State|Country))`),
	regexp.MustCompile(`(?i)([A-Za-z\s]+(?:City|Town|Village|County|State|Country))`),
}

// maxLocationWords rejects long matches that are unlikely place names
const maxLocationWords = 3

// Extract returns the first place-name mention found in the text. The
// bool result is false when no pattern produced a plausible name.
func Extract(text string) (string, bool) {
	if text == "" {
		return "", false
	}

	for _, pattern := range locationPatterns {
		match := pattern.FindStringSubmatch(text)
		if match == nil {
			continue
		}
		place := strings.TrimSpace(match[1])
		if place == "" {
			continue
		}
		if len(strings.Fields(place)) <= maxLocationWords {
			return place, true
		}
	}

	return "", false
}
