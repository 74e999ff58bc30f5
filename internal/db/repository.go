package db

import (
	"context"
	"errors"
	"time"

	"gorm.io/gorm"

	"github.com/crisiswatch/crisiswatch/internal/models"
)

// Repository provides database access methods
type Repository struct {
	db *gorm.DB
}

// NewRepository creates a new repository
func NewRepository(db *gorm.DB) *Repository {
	return &Repository{db: db}
}

// RunRepository provides run-related database operations
type RunRepository struct {
	*Repository
}

// NewRunRepository creates a new run repository
func NewRunRepository(repo *Repository) *RunRepository {
	return &RunRepository{Repository: repo}
}

// Start records a new run for a platform
func (r *RunRepository) Start(ctx context.Context, platform models.Platform) (*models.Run, error) {
	run := &models.Run{
		Platform:  string(platform),
		StartedAt: time.Now().UTC(),
	}
	if err := r.db.WithContext(ctx).Create(run).Error; err != nil {
		return nil, err
	}
	return run, nil
}

// Finish marks a run complete with its final counts
func (r *RunRepository) Finish(ctx context.Context, run *models.Run, postCount, geoCount int) error {
	return r.db.WithContext(ctx).Model(run).Updates(map[string]interface{}{
		"finished_at": time.Now().UTC(),
		"post_count":  postCount,
		"geo_count":   geoCount,
	}).Error
}

// Latest retrieves the most recent finished run for a platform
func (r *RunRepository) Latest(ctx context.Context, platform models.Platform) (*models.Run, error) {
	var run models.Run
	err := r.db.WithContext(ctx).
		Where("platform = ? AND finished_at IS NOT NULL", string(platform)).
		Order("started_at DESC").
		First(&run).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &run, nil
}

// PostRepository provides post-related database operations
type PostRepository struct {
	*Repository
}

// NewPostRepository creates a new post repository
func NewPostRepository(repo *Repository) *PostRepository {
	return &PostRepository{Repository: repo}
}

// SaveBatch persists the geocoded records of a run
func (r *PostRepository) SaveBatch(ctx context.Context, runID int64, records []models.GeocodedRecord) error {
	if len(records) == 0 {
		return nil
	}

	posts := make([]models.CrisisPost, 0, len(records))
	for _, rec := range records {
		posts = append(posts, models.NewCrisisPost(runID, rec))
	}
	return r.db.WithContext(ctx).CreateInBatches(posts, 200).Error
}

// ByRisk retrieves posts of a run filtered by risk level; an empty
// level returns all posts of the run.
func (r *PostRepository) ByRisk(ctx context.Context, runID int64, level models.RiskLevel, limit int) ([]models.CrisisPost, error) {
	q := r.db.WithContext(ctx).Where("run_id = ?", runID)
	if level != "" {
		q = q.Where("risk_level = ?", string(level))
	}
	var posts []models.CrisisPost
	if err := q.Order("created_at DESC").Limit(limit).Find(&posts).Error; err != nil {
		return nil, err
	}
	return posts, nil
}

// RiskCount is one row of a run's risk distribution
type RiskCount struct {
	RiskLevel string `json:"risk_level"`
	Count     int64  `json:"count"`
}

// RiskDistribution counts a run's posts per risk level
func (r *PostRepository) RiskDistribution(ctx context.Context, runID int64) ([]RiskCount, error) {
	var counts []RiskCount
	err := r.db.WithContext(ctx).
		Model(&models.CrisisPost{}).
		Select("risk_level, count(*) as count").
		Where("run_id = ?", runID).
		Group("risk_level").
		Order("count DESC").
		Scan(&counts).Error
	if err != nil {
		return nil, err
	}
	return counts, nil
}

// LocationCount is one row of a run's top-locations ranking
type LocationCount struct {
	Location string `json:"location"`
	Count    int64  `json:"count"`
}

// TopLocations ranks a run's extracted locations by post count
func (r *PostRepository) TopLocations(ctx context.Context, runID int64, n int) ([]LocationCount, error) {
	var counts []LocationCount
	err := r.db.WithContext(ctx).
		Model(&models.CrisisPost{}).
		Select("location, count(*) as count").
		Where("run_id = ? AND location <> ''", runID).
		Group("location").
		Order("count DESC").
		Limit(n).
		Scan(&counts).Error
	if err != nil {
		return nil, err
	}
	return counts, nil
}
