// Package risk classifies crisis severity and scores sentiment.
package risk

import (
	"strings"

	"github.com/jonreiter/govader"

	"github.com/crisiswatch/crisiswatch/internal/models"
)

// highRiskPhrases indicate acute crisis; checked first
var highRiskPhrases = []string{
	"don't want to live",
	"want to die",
	"end it all",
	"kill myself",
	"suicide",
	"suicidal",
	"no way out",
	"can't go on",
	"give up",
	"hopeless",
	"worthless",
}

// moderateRiskPhrases indicate distress short of acute crisis
var moderateRiskPhrases = []string{
	"need help",
	"struggling",
	"overwhelmed",
	"can't cope",
	"depressed",
	"anxious",
	"lost",
	"alone",
	"scared",
	"worried",
}

// lowRiskPhrases indicate engagement with support and recovery topics
var lowRiskPhrases = []string{
	"mental health",
	"therapy",
	"counseling",
	"support",
	"self care",
	"wellness",
	"mindfulness",
}

// Classifier assigns risk levels by ordered phrase matching and scores
// sentiment with a VADER analyzer.
type Classifier struct {
	analyzer *govader.SentimentIntensityAnalyzer
}

// NewClassifier creates a classifier with a fresh VADER analyzer
func NewClassifier() *Classifier {
	return &Classifier{analyzer: govader.NewSentimentIntensityAnalyzer()}
}

// Classify returns the risk level for a text. Tiers are tested in
// severity order, high first, and the first tier with any matching
// phrase wins. Empty input and text matching no tier are RiskUnknown.
func (c *Classifier) Classify(text string) models.RiskLevel {
	if text == "" {
		return models.RiskUnknown
	}

	text = strings.ToLower(text)

	for _, phrase := range highRiskPhrases {
		if strings.Contains(text, phrase) {
			return models.RiskHigh
		}
	}
	for _, phrase := range moderateRiskPhrases {
		if strings.Contains(text, phrase) {
			return models.RiskModerate
		}
	}
	for _, phrase := range lowRiskPhrases {
		if strings.Contains(text, phrase) {
			return models.RiskLow
		}
	}

	return models.RiskUnknown
}

// Score returns the VADER sentiment tuple for a text. Empty input
// yields the neutral sentinel (0, 1, 0, 0).
func (c *Classifier) Score(text string) models.Sentiment {
	if text == "" {
		return models.NeutralSentiment()
	}

	s := c.analyzer.PolarityScores(text)
	return models.Sentiment{
		Negative: s.Negative,
		Neutral:  s.Neutral,
		Positive: s.Positive,
		Compound: s.Compound,
	}
}

// Analyze classifies and scores in one pass
func (c *Classifier) Analyze(text string) (models.RiskLevel, models.Sentiment) {
	return c.Classify(text), c.Score(text)
}
