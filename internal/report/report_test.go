package report

import (
	"math"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/crisiswatch/crisiswatch/internal/models"
)

func record(risk models.RiskLevel, compound float64, location string) models.GeocodedRecord {
	rec := models.GeocodedRecord{
		AnalyzedRecord: models.AnalyzedRecord{
			Sentiment: models.Sentiment{Compound: compound},
			RiskLevel: risk,
		},
		Location: location,
	}
	if location != "" {
		lat, lng := 41.88, -87.63
		rec.Latitude = &lat
		rec.Longitude = &lng
	}
	return rec
}

func TestSummarize(t *testing.T) {
	records := []models.GeocodedRecord{
		record(models.RiskHigh, -0.8, "Chicago City"),
		record(models.RiskHigh, -0.6, "Chicago City"),
		record(models.RiskModerate, -0.2, ""),
		record(models.RiskUnknown, 0.4, ""),
	}

	s := Summarize(models.PlatformTwitter, records)

	if s.TotalPosts != 4 {
		t.Errorf("TotalPosts = %d, want 4", s.TotalPosts)
	}
	if s.LocatedPosts != 2 {
		t.Errorf("LocatedPosts = %d, want 2", s.LocatedPosts)
	}
	if s.RiskCounts["high"] != 2 || s.RiskCounts["moderate"] != 1 || s.RiskCounts["unknown"] != 1 {
		t.Errorf("RiskCounts = %v", s.RiskCounts)
	}
	if s.RiskCounts["low"] != 0 {
		t.Errorf("RiskCounts[low] = %d, want 0", s.RiskCounts["low"])
	}
	if math.Abs(s.MeanCompound-(-0.3)) > 1e-9 {
		t.Errorf("MeanCompound = %v, want -0.3", s.MeanCompound)
	}
	if s.MinCompound != -0.8 || s.MaxCompound != 0.4 {
		t.Errorf("compound range = [%v, %v], want [-0.8, 0.4]", s.MinCompound, s.MaxCompound)
	}
	if math.Abs(s.NegativeShare-0.75) > 1e-9 {
		t.Errorf("NegativeShare = %v, want 0.75", s.NegativeShare)
	}
	if len(s.TopLocations) != 1 || s.TopLocations[0].Name != "Chicago City" || s.TopLocations[0].Count != 2 {
		t.Errorf("TopLocations = %+v", s.TopLocations)
	}
}

func TestSummarizeEmpty(t *testing.T) {
	s := Summarize(models.PlatformReddit, nil)
	if s.TotalPosts != 0 || s.MeanCompound != 0 || s.NegativeShare != 0 {
		t.Errorf("empty summary = %+v", s)
	}
}

func TestWrite(t *testing.T) {
	w := NewWriter(t.TempDir())

	records := []models.GeocodedRecord{
		record(models.RiskHigh, -0.8, "Chicago City"),
		record(models.RiskLow, 0.1, ""),
	}

	path, summary, err := w.Write(models.PlatformReddit, records)
	if err != nil {
		t.Fatalf("Write() error = %v", err)
	}
	if filepath.Base(path) != "reddit_report.txt" {
		t.Errorf("path = %s, want reddit_report.txt", path)
	}
	if summary.TotalPosts != 2 {
		t.Errorf("summary.TotalPosts = %d, want 2", summary.TotalPosts)
	}

	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("reading report: %v", err)
	}
	content := string(data)
	for _, want := range []string{
		"CRISIS MONITORING REPORT - reddit",
		"Total posts analyzed:      2",
		"Posts with coordinates:    1",
		"high:      1",
		"Chicago City: 1 posts",
	} {
		if !strings.Contains(content, want) {
			t.Errorf("report missing %q:\n%s", want, content)
		}
	}
}

func TestWriteNoLocations(t *testing.T) {
	w := NewWriter(t.TempDir())

	path, _, err := w.Write(models.PlatformTwitter, []models.GeocodedRecord{
		record(models.RiskUnknown, 0, ""),
	})
	if err != nil {
		t.Fatalf("Write() error = %v", err)
	}

	data, _ := os.ReadFile(path)
	if !strings.Contains(string(data), "(none resolved)") {
		t.Errorf("report missing empty-locations marker:\n%s", string(data))
	}
}
