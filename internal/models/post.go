package models

import (
	"database/sql"
	"time"
)

// Run represents one pipeline execution for a platform
type Run struct {
	ID         int64        `gorm:"primaryKey;autoIncrement;column:id"`
	Platform   string       `gorm:"type:varchar(16);not null;column:platform"`
	StartedAt  time.Time    `gorm:"not null;column:started_at"`
	FinishedAt sql.NullTime `gorm:"column:finished_at"`
	PostCount  int          `gorm:"not null;default:0;column:post_count"`
	GeoCount   int          `gorm:"not null;default:0;column:geo_count"`
}

// TableName specifies the table name for Run
func (Run) TableName() string {
	return "crisis_runs"
}

// CrisisPost is the persisted form of a GeocodedRecord
type CrisisPost struct {
	ID                int64           `gorm:"primaryKey;autoIncrement;column:id"`
	RunID             int64           `gorm:"not null;index;column:run_id"`
	Platform          string          `gorm:"type:varchar(16);not null;index;column:platform"`
	SourceID          string          `gorm:"type:varchar(64);not null;column:source_id"`
	Title             string          `gorm:"type:varchar(512);column:title"`
	Text              string          `gorm:"type:text;column:text"`
	CleanText         string          `gorm:"type:text;column:clean_text"`
	CreatedAt         time.Time       `gorm:"not null;column:created_at"`
	SentimentNegative float64         `gorm:"type:float;column:sentiment_negative"`
	SentimentNeutral  float64         `gorm:"type:float;column:sentiment_neutral"`
	SentimentPositive float64         `gorm:"type:float;column:sentiment_positive"`
	SentimentCompound float64         `gorm:"type:float;column:sentiment_compound"`
	RiskLevel         string          `gorm:"type:varchar(16);not null;index;column:risk_level"`
	Location          string          `gorm:"type:varchar(255);column:location"`
	Latitude          sql.NullFloat64 `gorm:"type:decimal(9,6);column:latitude"`
	Longitude         sql.NullFloat64 `gorm:"type:decimal(9,6);column:longitude"`

	// Relationships
	Run *Run `gorm:"foreignKey:RunID;references:ID"`
}

// TableName specifies the table name for CrisisPost
func (CrisisPost) TableName() string {
	return "crisis_posts"
}

// NewCrisisPost converts a pipeline record into its persisted form
func NewCrisisPost(runID int64, rec GeocodedRecord) CrisisPost {
	post := CrisisPost{
		RunID:             runID,
		Platform:          string(rec.Platform),
		SourceID:          rec.Record.ID,
		Title:             rec.Title,
		Text:              rec.Text,
		CleanText:         rec.CleanText,
		CreatedAt:         rec.Record.CreatedAt,
		SentimentNegative: rec.Negative,
		SentimentNeutral:  rec.Neutral,
		SentimentPositive: rec.Positive,
		SentimentCompound: rec.Compound,
		RiskLevel:         string(rec.RiskLevel),
		Location:          rec.Location,
	}
	if rec.HasCoordinates() {
		post.Latitude = sql.NullFloat64{Float64: *rec.Latitude, Valid: true}
		post.Longitude = sql.NullFloat64{Float64: *rec.Longitude, Valid: true}
	}
	return post
}
