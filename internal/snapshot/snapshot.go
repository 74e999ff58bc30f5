// Package snapshot persists per-stage CSV copies of pipeline data so
// each run leaves an auditable trail under the data directory.
package snapshot

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/gocarina/gocsv"
	"go.uber.org/zap"

	"github.com/crisiswatch/crisiswatch/internal/models"
	"github.com/crisiswatch/crisiswatch/pkg/logging"
)

const (
	rawDir       = "raw"
	processedDir = "processed"
)

// Writer writes stage snapshots beneath a data directory.
type Writer struct {
	dataDir string
	logger  *zap.Logger
}

// NewWriter creates a snapshot writer rooted at dataDir
func NewWriter(dataDir string) *Writer {
	return &Writer{
		dataDir: dataDir,
		logger:  logging.WithComponent("snapshot"),
	}
}

// baseName maps a platform to its snapshot file stem
func baseName(platform models.Platform) string {
	if platform == models.PlatformReddit {
		return "reddit_posts"
	}
	return "tweets"
}

func (w *Writer) write(subdir, name string, data interface{}) (string, error) {
	dir := filepath.Join(w.dataDir, subdir)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return "", fmt.Errorf("creating snapshot directory %s: %w", dir, err)
	}

	path := filepath.Join(dir, name+".csv")
	f, err := os.Create(path)
	if err != nil {
		return "", fmt.Errorf("creating snapshot file %s: %w", path, err)
	}
	defer f.Close()

	if err := gocsv.MarshalFile(data, f); err != nil {
		return "", fmt.Errorf("writing snapshot %s: %w", path, err)
	}

	w.logger.Debug("Snapshot written", zap.String("path", path))
	return path, nil
}

// WriteRaw snapshots freshly extracted records
func (w *Writer) WriteRaw(platform models.Platform, records []models.Record) (string, error) {
	return w.write(rawDir, baseName(platform), &records)
}

// WriteCleaned snapshots normalized records
func (w *Writer) WriteCleaned(platform models.Platform, records []models.CleanedRecord) (string, error) {
	return w.write(processedDir, "cleaned_"+baseName(platform), &records)
}

// WriteAnalyzed snapshots records with sentiment and risk attached
func (w *Writer) WriteAnalyzed(platform models.Platform, records []models.AnalyzedRecord) (string, error) {
	return w.write(processedDir, "analyzed_"+baseName(platform), &records)
}

// WriteGeocoded snapshots the final stage, including coordinates
func (w *Writer) WriteGeocoded(platform models.Platform, records []models.GeocodedRecord) (string, error) {
	return w.write(processedDir, "geocoded_"+baseName(platform), &records)
}
