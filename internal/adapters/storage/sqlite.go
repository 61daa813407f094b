package storage

import (
	"context"
	"fmt"
	"time"

	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
	"gorm.io/gorm/logger"
	"gorm.io/plugin/opentelemetry/tracing"

	"github.com/GSDV/solomo/internal/core/domain"
)

// SQLiteStore implements ports.RegionStore using GORM and SQLite.
// Regions survive restarts; geofence events are appended for later
// inspection and pruned by the caller's retention policy.
type SQLiteStore struct {
	db *gorm.DB
}

// RegionModel is the GORM model for persisted geofence regions.
type RegionModel struct {
	ID        string `gorm:"primaryKey"`
	Label     string
	Latitude  float64
	Longitude float64
	RadiusM   float64
	Message   string
	UpdatedAt time.Time
}

// EventModel is the GORM model for persisted geofence events.
type EventModel struct {
	ID        string `gorm:"primaryKey"`
	RegionID  string `gorm:"index"`
	Kind      string
	Latitude  float64
	Longitude float64
	Accuracy  float64
	Timestamp time.Time `gorm:"index"`
	Message   string
}

// NewSQLiteStore initializes the database and migrates the schema.
func NewSQLiteStore(path string) (*SQLiteStore, error) {
	db, err := gorm.Open(sqlite.Open(path), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	if err != nil {
		return nil, fmt.Errorf("open sqlite at %s: %w", path, err)
	}

	// Trace DB calls alongside the HTTP spans.
	if err := db.Use(tracing.NewPlugin(tracing.WithoutMetrics())); err != nil {
		return nil, fmt.Errorf("install tracing plugin: %w", err)
	}

	if err := db.AutoMigrate(&RegionModel{}, &EventModel{}); err != nil {
		return nil, fmt.Errorf("migrate schema: %w", err)
	}

	return &SQLiteStore{db: db}, nil
}

// SaveRegions replaces the persisted region set wholesale, matching
// the tracker's registration semantics.
func (s *SQLiteStore) SaveRegions(ctx context.Context, regions []domain.Region) error {
	return s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("1 = 1").Delete(&RegionModel{}).Error; err != nil {
			return err
		}
		if len(regions) == 0 {
			return nil
		}
		models := make([]RegionModel, 0, len(regions))
		for _, r := range regions {
			models = append(models, regionToModel(r))
		}
		return tx.Clauses(clause.OnConflict{UpdateAll: true}).Create(&models).Error
	})
}

// LoadRegions returns the persisted region set.
func (s *SQLiteStore) LoadRegions(ctx context.Context) ([]domain.Region, error) {
	var models []RegionModel
	if err := s.db.WithContext(ctx).Order("id").Find(&models).Error; err != nil {
		return nil, err
	}
	regions := make([]domain.Region, 0, len(models))
	for _, m := range models {
		regions = append(regions, regionToDomain(m))
	}
	return regions, nil
}

// AppendEvents stores a batch of geofence events.
func (s *SQLiteStore) AppendEvents(ctx context.Context, events []domain.Event) error {
	if len(events) == 0 {
		return nil
	}
	models := make([]EventModel, 0, len(events))
	for _, e := range events {
		models = append(models, eventToModel(e))
	}
	return s.db.WithContext(ctx).Clauses(clause.OnConflict{DoNothing: true}).Create(&models).Error
}

// ListEvents returns the most recent events, newest first.
func (s *SQLiteStore) ListEvents(ctx context.Context, limit int) ([]domain.Event, error) {
	if limit <= 0 {
		limit = 100
	}
	var models []EventModel
	if err := s.db.WithContext(ctx).Order("timestamp DESC").Limit(limit).Find(&models).Error; err != nil {
		return nil, err
	}
	events := make([]domain.Event, 0, len(models))
	for _, m := range models {
		events = append(events, eventToDomain(m))
	}
	return events, nil
}

// PruneEvents deletes everything but the newest keep rows.
func (s *SQLiteStore) PruneEvents(ctx context.Context, keep int) error {
	if keep <= 0 {
		return s.db.WithContext(ctx).Where("1 = 1").Delete(&EventModel{}).Error
	}
	return s.db.WithContext(ctx).Exec(
		"DELETE FROM event_models WHERE id NOT IN (SELECT id FROM event_models ORDER BY timestamp DESC LIMIT ?)",
		keep,
	).Error
}

// Close releases the underlying connection pool.
func (s *SQLiteStore) Close() error {
	sqlDB, err := s.db.DB()
	if err != nil {
		return err
	}
	return sqlDB.Close()
}
