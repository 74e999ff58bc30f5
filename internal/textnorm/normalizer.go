// Package textnorm cleans raw social-media text for analysis.
package textnorm

import (
	"regexp"
	"strings"

	"github.com/forPelevin/gomoji"
)

var (
	urlPattern     = regexp.MustCompile(`https?://\S+|www\.\S+`)
	noisePattern   = regexp.MustCompile(`[^a-zA-Z\s.,!?]`)
	collapsePattern = regexp.MustCompile(`\s+`)
)

// Normalizer applies the deterministic cleaning chain:
// lowercase, strip emoji, strip URLs, strip non-letter noise, drop
// stopwords, collapse whitespace. Normalize is idempotent.
type Normalizer struct {
	stopwords map[string]struct{}
}

// New creates a normalizer with the standard English stopword list plus
// social-media noise tokens.
func New() *Normalizer {
	set := make(map[string]struct{}, len(englishStopwords)+len(socialStopwords))
	for _, w := range englishStopwords {
		set[w] = struct{}{}
	}
	for _, w := range socialStopwords {
		set[w] = struct{}{}
	}
	return &Normalizer{stopwords: set}
}

// Normalize cleans text for analysis. Total on any input; empty input
// yields the empty string.
func (n *Normalizer) Normalize(text string) string {
	text = strings.ToLower(text)
	text = gomoji.RemoveEmojis(text)
	text = urlPattern.ReplaceAllString(text, "")
	text = noisePattern.ReplaceAllString(text, "")
	text = n.dropStopwords(text)
	text = collapsePattern.ReplaceAllString(text, " ")
	return strings.TrimSpace(text)
}

func (n *Normalizer) dropStopwords(text string) string {
	words := strings.Fields(text)
	kept := words[:0]
	for _, w := range words {
		if _, stop := n.stopwords[w]; !stop {
			kept = append(kept, w)
		}
	}
	return strings.Join(kept, " ")
}

// socialStopwords are noise tokens common in social-media text
var socialStopwords = []string{"rt", "http", "https", "www", "com"}

// englishStopwords is the standard English stopword list
var englishStopwords = []string{
	"i", "me", "my", "myself", "we", "our", "ours", "ourselves", "you",
	"you're", "you've", "you'll", "you'd", "your", "yours", "yourself",
	"yourselves", "he", "him", "his", "himself", "she", "she's", "her",
	"hers", "herself", "it", "it's", "its", "itself", "they", "them",
	"their", "theirs", "themselves", "what", "which", "who", "whom",
	"this", "that", "that'll", "these", "those", "am", "is", "are",
	"was", "were", "be", "been", "being", "have", "has", "had", "having",
	"do", "does", "did", "doing", "a", "an", "the", "and", "but", "if",
	"or", "because", "as", "until", "while", "of", "at", "by", "for",
	"with", "about", "against", "between", "into", "through", "during",
	"before", "after", "above", "below", "to", "from", "up", "down",
	"in", "out", "on", "off", "over", "under", "again", "further",
	"then", "once", "here", "there", "when", "where", "why", "how",
	"all", "any", "both", "each", "few", "more", "most", "other",
	"some", "such", "no", "nor", "not", "only", "own", "same", "so",
	"than", "too", "very", "s", "t", "can", "will", "just", "don",
	"don't", "should", "should've", "now", "d", "ll", "m", "o", "re",
	"ve", "y", "ain", "aren", "aren't", "couldn", "couldn't", "didn",
	"didn't", "doesn", "doesn't", "hadn", "hadn't", "hasn", "hasn't",
	"haven", "haven't", "isn", "isn't", "ma", "mightn", "mightn't",
	"mustn", "mustn't", "needn", "needn't", "shan", "shan't", "shouldn",
	"shouldn't", "wasn", "wasn't", "weren", "weren't", "won", "won't",
	"wouldn", "wouldn't",
}
