package pipeline

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/crisiswatch/crisiswatch/internal/geo"
	"github.com/crisiswatch/crisiswatch/internal/models"
)

type fakeExtractor struct {
	platform models.Platform
	records  []models.Record
	err      error
}

func (f *fakeExtractor) Platform() models.Platform { return f.platform }

func (f *fakeExtractor) Extract(ctx context.Context) ([]models.Record, error) {
	return f.records, f.err
}

type fakeResolver struct {
	coords map[string]*geo.Coordinates
	err    error
	calls  int
}

func (f *fakeResolver) Resolve(ctx context.Context, place string) (*geo.Coordinates, error) {
	f.calls++
	if f.err != nil {
		return nil, f.err
	}
	return f.coords[place], nil
}

func testRecords() []models.Record {
	now := time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)
	return []models.Record{
		{
			ID:        "1",
			Platform:  models.PlatformTwitter,
			Text:      "I want to die and feel hopeless in Chicago City",
			CreatedAt: now,
		},
		{
			ID:        "2",
			Platform:  models.PlatformTwitter,
			Text:      "feeling a bit overwhelmed",
			CreatedAt: now,
		},
		{
			ID:        "3",
			Platform:  models.PlatformTwitter,
			Text:      "had a lovely day",
			CreatedAt: now,
		},
	}
}

func newTestPipeline(t *testing.T, resolver Resolver) (*Pipeline, string, string) {
	t.Helper()
	dataDir := t.TempDir()
	outputDir := t.TempDir()
	p := New(Options{
		DataDir:   dataDir,
		OutputDir: outputDir,
		Resolver:  resolver,
	})
	return p, dataDir, outputDir
}

func TestRunProducesAllArtifacts(t *testing.T) {
	resolver := &fakeResolver{coords: map[string]*geo.Coordinates{
		"Chicago City": {Latitude: 41.88, Longitude: -87.63},
	}}
	p, dataDir, outputDir := newTestPipeline(t, resolver)

	summary, err := p.Run(context.Background(), &fakeExtractor{
		platform: models.PlatformTwitter,
		records:  testRecords(),
	})
	if err != nil {
		t.Fatalf("Run() error = %v", err)
	}

	if summary.TotalPosts != 3 {
		t.Errorf("TotalPosts = %d, want 3", summary.TotalPosts)
	}
	if summary.LocatedPosts != 1 {
		t.Errorf("LocatedPosts = %d, want 1", summary.LocatedPosts)
	}
	if summary.RiskCounts["high"] != 1 {
		t.Errorf("RiskCounts[high] = %d, want 1", summary.RiskCounts["high"])
	}
	if summary.RiskCounts["moderate"] != 1 {
		t.Errorf("RiskCounts[moderate] = %d, want 1", summary.RiskCounts["moderate"])
	}
	if resolver.calls != 1 {
		t.Errorf("resolver calls = %d, want 1", resolver.calls)
	}

	wantFiles := []string{
		filepath.Join(dataDir, "raw", "tweets.csv"),
		filepath.Join(dataDir, "processed", "cleaned_tweets.csv"),
		filepath.Join(dataDir, "processed", "analyzed_tweets.csv"),
		filepath.Join(dataDir, "processed", "geocoded_tweets.csv"),
		filepath.Join(outputDir, "maps", "twitter_heatmap.html"),
		filepath.Join(outputDir, "maps", "twitter_risk_map.html"),
		filepath.Join(outputDir, "maps", "twitter_top_locations.html"),
		filepath.Join(outputDir, "reports", "twitter_report.txt"),
	}
	for _, path := range wantFiles {
		if _, err := os.Stat(path); err != nil {
			t.Errorf("missing artifact %s: %v", path, err)
		}
	}
}

func TestRunExtractionFailureAborts(t *testing.T) {
	p, _, _ := newTestPipeline(t, &fakeResolver{})

	_, err := p.Run(context.Background(), &fakeExtractor{
		platform: models.PlatformReddit,
		err:      errors.New("boom"),
	})
	if err == nil {
		t.Fatal("expected error from failed extraction")
	}
}

func TestRunGeocodeFailureContinues(t *testing.T) {
	resolver := &fakeResolver{err: errors.New("geocoder down")}
	p, _, _ := newTestPipeline(t, resolver)

	summary, err := p.Run(context.Background(), &fakeExtractor{
		platform: models.PlatformTwitter,
		records:  testRecords(),
	})
	if err != nil {
		t.Fatalf("Run() error = %v", err)
	}
	if summary.TotalPosts != 3 {
		t.Errorf("TotalPosts = %d, want 3", summary.TotalPosts)
	}
	if summary.LocatedPosts != 0 {
		t.Errorf("LocatedPosts = %d, want 0 when geocoding fails", summary.LocatedPosts)
	}
}

func TestRunAllSkipsFailedPlatforms(t *testing.T) {
	p, _, _ := newTestPipeline(t, &fakeResolver{})

	summaries, err := p.RunAll(context.Background(), []Extractor{
		&fakeExtractor{platform: models.PlatformTwitter, err: errors.New("boom")},
		&fakeExtractor{platform: models.PlatformReddit, records: testRecords()[:1]},
	})
	if err != nil {
		t.Fatalf("RunAll() error = %v", err)
	}
	if len(summaries) != 1 {
		t.Fatalf("RunAll() returned %d summaries, want 1", len(summaries))
	}
	if summaries[0].Platform != models.PlatformReddit {
		t.Errorf("summary platform = %s, want reddit", summaries[0].Platform)
	}
}

func TestRunAllAllFailed(t *testing.T) {
	p, _, _ := newTestPipeline(t, &fakeResolver{})

	_, err := p.RunAll(context.Background(), []Extractor{
		&fakeExtractor{platform: models.PlatformTwitter, err: errors.New("boom")},
	})
	if err == nil {
		t.Fatal("expected error when every platform fails")
	}
}
