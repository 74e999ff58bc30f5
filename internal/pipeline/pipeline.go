// Package pipeline sequences a full crisis-detection run for one
// platform: extract, normalize, analyze, geocode, snapshot, persist,
// and render the output artifacts.
package pipeline

import (
	"context"
	"fmt"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"
	"go.uber.org/zap"

	"github.com/crisiswatch/crisiswatch/internal/db"
	"github.com/crisiswatch/crisiswatch/internal/geo"
	"github.com/crisiswatch/crisiswatch/internal/models"
	"github.com/crisiswatch/crisiswatch/internal/render"
	"github.com/crisiswatch/crisiswatch/internal/report"
	"github.com/crisiswatch/crisiswatch/internal/risk"
	"github.com/crisiswatch/crisiswatch/internal/snapshot"
	"github.com/crisiswatch/crisiswatch/internal/textnorm"
	"github.com/crisiswatch/crisiswatch/pkg/logging"
	"github.com/crisiswatch/crisiswatch/pkg/telemetry"
)

// Extractor fetches raw posts from one platform
type Extractor interface {
	Platform() models.Platform
	Extract(ctx context.Context) ([]models.Record, error)
}

// Resolver turns an extracted place name into coordinates
type Resolver interface {
	Resolve(ctx context.Context, place string) (*geo.Coordinates, error)
}

// Options wires the pipeline's collaborators. Runs and Posts are
// optional; when nil, results are not persisted.
type Options struct {
	DataDir   string
	OutputDir string
	Resolver  Resolver
	Runs      *db.RunRepository
	Posts     *db.PostRepository
}

// Pipeline drives the per-platform processing stages.
type Pipeline struct {
	normalizer *textnorm.Normalizer
	classifier *risk.Classifier
	resolver   Resolver
	snapshots  *snapshot.Writer
	renderer   *render.Renderer
	reports    *report.Writer
	runs       *db.RunRepository
	posts      *db.PostRepository
	logger     *zap.Logger

	postsProcessed metric.Int64Counter
	postsLocated   metric.Int64Counter
}

// New creates a pipeline from its collaborators
func New(opts Options) *Pipeline {
	meter := telemetry.Meter()
	processed, _ := meter.Int64Counter("crisiswatch.posts.processed")
	located, _ := meter.Int64Counter("crisiswatch.posts.located")

	return &Pipeline{
		normalizer:     textnorm.New(),
		classifier:     risk.NewClassifier(),
		resolver:       opts.Resolver,
		snapshots:      snapshot.NewWriter(opts.DataDir),
		renderer:       render.NewRenderer(opts.OutputDir),
		reports:        report.NewWriter(opts.OutputDir),
		runs:           opts.Runs,
		posts:          opts.Posts,
		logger:         logging.WithComponent("pipeline"),
		postsProcessed: processed,
		postsLocated:   located,
	}
}

// Run executes the full pipeline for one extractor. Extraction failure
// aborts the platform; artifact I/O failures are logged and the run
// continues.
func (p *Pipeline) Run(ctx context.Context, extractor Extractor) (report.Summary, error) {
	platform := extractor.Platform()
	ctx, span := telemetry.StartSpan(ctx, "pipeline.run")
	defer span.End()

	logger := p.logger.With(zap.String("platform", string(platform)))
	logger.Info("Pipeline run starting")

	var run *models.Run
	if p.runs != nil {
		started, err := p.runs.Start(ctx, platform)
		if err != nil {
			logger.Warn("Failed to record run start", zap.Error(err))
		} else {
			run = started
		}
	}

	records, err := p.extract(ctx, extractor)
	if err != nil {
		return report.Summary{}, fmt.Errorf("extracting %s posts: %w", platform, err)
	}
	logger.Info("Extraction complete", zap.Int("posts", len(records)))

	cleaned := p.normalize(ctx, platform, records)
	analyzed := p.analyze(ctx, platform, cleaned)
	geocoded := p.geocode(ctx, platform, analyzed)

	p.persist(ctx, run, geocoded, logger)

	if _, err := p.renderer.RenderAll(platform, geocoded); err != nil {
		logger.Error("Failed to render maps", zap.Error(err))
	}

	_, summary, err := p.reports.Write(platform, geocoded)
	if err != nil {
		logger.Error("Failed to write report", zap.Error(err))
		summary = report.Summarize(platform, geocoded)
	}

	attrs := metric.WithAttributes(attribute.String("platform", string(platform)))
	p.postsProcessed.Add(ctx, int64(summary.TotalPosts), attrs)
	p.postsLocated.Add(ctx, int64(summary.LocatedPosts), attrs)

	logger.Info("Pipeline run finished",
		zap.Int("posts", summary.TotalPosts),
		zap.Int("located", summary.LocatedPosts))
	return summary, nil
}

// RunAll runs every extractor in turn. A failed platform is logged and
// skipped; the error is returned only if every platform failed.
func (p *Pipeline) RunAll(ctx context.Context, extractors []Extractor) ([]report.Summary, error) {
	var summaries []report.Summary
	var lastErr error
	for _, extractor := range extractors {
		summary, err := p.Run(ctx, extractor)
		if err != nil {
			if ctx.Err() != nil {
				return summaries, ctx.Err()
			}
			p.logger.Error("Platform run failed",
				zap.String("platform", string(extractor.Platform())),
				zap.Error(err))
			lastErr = err
			continue
		}
		summaries = append(summaries, summary)
	}
	if len(summaries) == 0 && lastErr != nil {
		return nil, lastErr
	}
	return summaries, nil
}

func (p *Pipeline) extract(ctx context.Context, extractor Extractor) ([]models.Record, error) {
	ctx, span := telemetry.StartSpan(ctx, "pipeline.extract")
	defer span.End()

	records, err := extractor.Extract(ctx)
	if err != nil {
		return nil, err
	}

	if _, err := p.snapshots.WriteRaw(extractor.Platform(), records); err != nil {
		p.logger.Warn("Failed to write raw snapshot", zap.Error(err))
	}
	return records, nil
}

func (p *Pipeline) normalize(ctx context.Context, platform models.Platform, records []models.Record) []models.CleanedRecord {
	_, span := telemetry.StartSpan(ctx, "pipeline.normalize")
	defer span.End()

	cleaned := make([]models.CleanedRecord, 0, len(records))
	for _, rec := range records {
		cleaned = append(cleaned, models.CleanedRecord{
			Record:    rec,
			CleanText: p.normalizer.Normalize(rec.FullText()),
		})
	}

	if _, err := p.snapshots.WriteCleaned(platform, cleaned); err != nil {
		p.logger.Warn("Failed to write cleaned snapshot", zap.Error(err))
	}
	return cleaned
}

func (p *Pipeline) analyze(ctx context.Context, platform models.Platform, records []models.CleanedRecord) []models.AnalyzedRecord {
	_, span := telemetry.StartSpan(ctx, "pipeline.analyze")
	defer span.End()

	analyzed := make([]models.AnalyzedRecord, 0, len(records))
	for _, rec := range records {
		level, sentiment := p.classifier.Analyze(rec.CleanText)
		analyzed = append(analyzed, models.AnalyzedRecord{
			CleanedRecord: rec,
			Sentiment:     sentiment,
			RiskLevel:     level,
		})
	}

	if _, err := p.snapshots.WriteAnalyzed(platform, analyzed); err != nil {
		p.logger.Warn("Failed to write analyzed snapshot", zap.Error(err))
	}
	return analyzed
}

func (p *Pipeline) geocode(ctx context.Context, platform models.Platform, records []models.AnalyzedRecord) []models.GeocodedRecord {
	ctx, span := telemetry.StartSpan(ctx, "pipeline.geocode")
	defer span.End()

	geocoded := make([]models.GeocodedRecord, 0, len(records))
	for _, rec := range records {
		out := models.GeocodedRecord{AnalyzedRecord: rec}

		// Extraction runs on the original text: the preposition
		// patterns need stopwords the normalizer strips out.
		if place, ok := geo.Extract(rec.FullText()); ok {
			out.Location = place
			coords, err := p.resolver.Resolve(ctx, place)
			if err != nil {
				p.logger.Warn("Geocoding failed",
					zap.String("place", place),
					zap.Error(err))
			} else if coords != nil {
				out.Latitude = &coords.Latitude
				out.Longitude = &coords.Longitude
			}
		}

		geocoded = append(geocoded, out)
	}

	if _, err := p.snapshots.WriteGeocoded(platform, geocoded); err != nil {
		p.logger.Warn("Failed to write geocoded snapshot", zap.Error(err))
	}
	return geocoded
}

// persist saves the run's results when a database is configured
func (p *Pipeline) persist(ctx context.Context, run *models.Run, records []models.GeocodedRecord, logger *zap.Logger) {
	if run == nil || p.posts == nil {
		return
	}

	if err := p.posts.SaveBatch(ctx, run.ID, records); err != nil {
		logger.Error("Failed to persist posts", zap.Error(err))
		return
	}

	located := 0
	for i := range records {
		if records[i].HasCoordinates() {
			located++
		}
	}
	if err := p.runs.Finish(ctx, run, len(records), located); err != nil {
		logger.Error("Failed to record run finish", zap.Error(err))
	}
}
