package models

import "time"

// Platform identifies the social-media source of a record
type Platform string

const (
	PlatformTwitter Platform = "twitter"
	PlatformReddit  Platform = "reddit"
)

// RiskLevel is the discrete crisis-severity classification of a post
type RiskLevel string

const (
	RiskHigh     RiskLevel = "high"
	RiskModerate RiskLevel = "moderate"
	RiskLow      RiskLevel = "low"
	RiskUnknown  RiskLevel = "unknown"
)

// Sentiment holds the four VADER polarity scores for a text.
// Negative, Neutral and Positive sum to roughly 1.0; Compound is in [-1, 1].
type Sentiment struct {
	Negative float64 `csv:"sentiment_negative" json:"negative"`
	Neutral  float64 `csv:"sentiment_neutral" json:"neutral"`
	Positive float64 `csv:"sentiment_positive" json:"positive"`
	Compound float64 `csv:"sentiment_compound" json:"compound"`
}

// NeutralSentiment is the sentinel returned for empty input
func NeutralSentiment() Sentiment {
	return Sentiment{Negative: 0, Neutral: 1, Positive: 0, Compound: 0}
}

// Record is one social-media post as fetched. Immutable once created;
// fields absent at the source are validated to zero values at the boundary.
type Record struct {
	ID             string    `csv:"id" json:"id"`
	Platform       Platform  `csv:"platform" json:"platform"`
	Title          string    `csv:"title" json:"title,omitempty"`
	Text           string    `csv:"text" json:"text"`
	CreatedAt      time.Time `csv:"created_at" json:"created_at"`
	Likes          int       `csv:"likes" json:"likes"`
	Reposts        int       `csv:"reposts" json:"reposts"`
	Replies        int       `csv:"replies" json:"replies"`
	Quotes         int       `csv:"quotes" json:"quotes"`
	Score          int       `csv:"score" json:"score"`
	Comments       int       `csv:"comments" json:"comments"`
	Subreddit      string    `csv:"subreddit" json:"subreddit,omitempty"`
	Author         string    `csv:"author" json:"author,omitempty"`
	AuthorLocation string    `csv:"author_location" json:"author_location,omitempty"`
	Language       string    `csv:"language" json:"language,omitempty"`
	URL            string    `csv:"url" json:"url,omitempty"`
}

// FullText joins the title and body for analysis; Reddit posts carry
// their lead text in the title, tweets have no title at all.
func (r *Record) FullText() string {
	if r.Title == "" {
		return r.Text
	}
	if r.Text == "" {
		return r.Title
	}
	return r.Title + " " + r.Text
}

// CleanedRecord is a Record plus its normalized text
type CleanedRecord struct {
	Record
	CleanText string `csv:"text_cleaned" json:"text_cleaned"`
}

// AnalyzedRecord is a CleanedRecord plus sentiment scores and risk level.
// Produced by the risk classifier, never mutated afterward.
type AnalyzedRecord struct {
	CleanedRecord
	Sentiment
	RiskLevel RiskLevel `csv:"risk_level" json:"risk_level"`
}

// GeocodedRecord is an AnalyzedRecord plus optional location data.
// Latitude is in [-90, 90] and Longitude in [-180, 180] when present.
type GeocodedRecord struct {
	AnalyzedRecord
	Location  string   `csv:"extracted_location" json:"extracted_location,omitempty"`
	Latitude  *float64 `csv:"latitude" json:"latitude,omitempty"`
	Longitude *float64 `csv:"longitude" json:"longitude,omitempty"`
}

// HasCoordinates reports whether the record resolved to a map position
func (g *GeocodedRecord) HasCoordinates() bool {
	return g.Latitude != nil && g.Longitude != nil
}
