// Package report writes the plain-text run summary for a platform.
package report

import (
	"fmt"
	"os"
	"path/filepath"
	"text/template"
	"time"

	"go.uber.org/zap"

	"github.com/crisiswatch/crisiswatch/internal/models"
	"github.com/crisiswatch/crisiswatch/internal/render"
	"github.com/crisiswatch/crisiswatch/pkg/logging"
)

const reportsDir = "reports"

// Summary aggregates one platform's run for the text report and the
// HTTP API.
type Summary struct {
	Platform      models.Platform `json:"platform"`
	GeneratedAt   time.Time       `json:"generated_at"`
	TotalPosts    int             `json:"total_posts"`
	LocatedPosts  int             `json:"located_posts"`
	RiskCounts    map[string]int  `json:"risk_counts"`
	MeanCompound  float64         `json:"mean_compound"`
	MinCompound   float64         `json:"min_compound"`
	MaxCompound   float64         `json:"max_compound"`
	NegativeShare float64         `json:"negative_share"`
	TopLocations  []render.Place  `json:"top_locations"`
}

// Summarize computes the run summary from geocoded records
func Summarize(platform models.Platform, records []models.GeocodedRecord) Summary {
	s := Summary{
		Platform:    platform,
		GeneratedAt: time.Now().UTC(),
		TotalPosts:  len(records),
		RiskCounts: map[string]int{
			string(models.RiskHigh):     0,
			string(models.RiskModerate): 0,
			string(models.RiskLow):      0,
			string(models.RiskUnknown):  0,
		},
		TopLocations: render.TopPlaces(records, 5),
	}

	var sum float64
	var negative int
	for i, rec := range records {
		if rec.HasCoordinates() {
			s.LocatedPosts++
		}
		s.RiskCounts[string(rec.RiskLevel)]++

		c := rec.Compound
		sum += c
		if c < 0 {
			negative++
		}
		if i == 0 || c < s.MinCompound {
			s.MinCompound = c
		}
		if i == 0 || c > s.MaxCompound {
			s.MaxCompound = c
		}
	}
	if len(records) > 0 {
		s.MeanCompound = sum / float64(len(records))
		s.NegativeShare = float64(negative) / float64(len(records))
	}

	return s
}

var reportTemplate = template.Must(template.New("report").Parse(`CRISIS MONITORING REPORT - {{.Platform}}
Generated: {{.GeneratedAt.Format "2006-01-02 15:04:05 MST"}}
================================================

Total posts analyzed:      {{.TotalPosts}}
Posts with coordinates:    {{.LocatedPosts}}

Risk distribution:
  high:      {{index .RiskCounts "high"}}
  moderate:  {{index .RiskCounts "moderate"}}
  low:       {{index .RiskCounts "low"}}
  unknown:   {{index .RiskCounts "unknown"}}

Sentiment (VADER compound):
  mean: {{printf "%.3f" .MeanCompound}}
  min:  {{printf "%.3f" .MinCompound}}
  max:  {{printf "%.3f" .MaxCompound}}
  negative share: {{printf "%.1f%%" .NegativePercent}}

Top locations:
{{- if .TopLocations}}
{{- range .TopLocations}}
  {{.Name}}: {{.Count}} posts
{{- end}}
{{- else}}
  (none resolved)
{{- end}}
`))

// templateData widens Summary with derived presentation fields
type templateData struct {
	Summary
}

// NegativePercent is the negative share as a percentage
func (t templateData) NegativePercent() float64 {
	return t.NegativeShare * 100
}

// Writer writes text reports beneath an output directory.
type Writer struct {
	outputDir string
	logger    *zap.Logger
}

// NewWriter creates a report writer rooted at outputDir
func NewWriter(outputDir string) *Writer {
	return &Writer{
		outputDir: outputDir,
		logger:    logging.WithComponent("report"),
	}
}

// Write renders the summary report for one platform and returns its path
func (w *Writer) Write(platform models.Platform, records []models.GeocodedRecord) (string, Summary, error) {
	summary := Summarize(platform, records)

	dir := filepath.Join(w.outputDir, reportsDir)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return "", summary, fmt.Errorf("creating reports directory: %w", err)
	}

	path := filepath.Join(dir, fmt.Sprintf("%s_report.txt", platform))
	f, err := os.Create(path)
	if err != nil {
		return "", summary, fmt.Errorf("creating report file: %w", err)
	}
	defer f.Close()

	if err := reportTemplate.Execute(f, templateData{summary}); err != nil {
		return "", summary, fmt.Errorf("writing report: %w", err)
	}

	w.logger.Info("Report written",
		zap.String("platform", string(platform)),
		zap.String("path", path))
	return path, summary, nil
}
