package storage

import (
	"errors"
	"fmt"
	"time"

	"github.com/glebarez/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

// RunRecord is one row of the run index.
type RunRecord struct {
	gorm.Model
	RunID    string `gorm:"size:127;uniqueIndex"`
	Scenario string `gorm:"size:127;index"`
	Started  time.Time
	Dt       float64
	Duration float64
	Steps    int
	Failed   bool
	Metrics  []RunMetric `gorm:"constraint:OnDelete:CASCADE"`
}

// RunMetric is a named final metric value of a run.
type RunMetric struct {
	ID          uint   `gorm:"primarykey"`
	RunRecordID uint   `gorm:"index"`
	Name        string `gorm:"size:63;index"`
	Value       float64
}

// Index keeps run summaries in SQLite so runs can be filtered and ranked
// without reading every run directory.
type Index struct {
	db *gorm.DB
}

// OpenIndex opens or creates the index database at path. An empty path
// opens a private in-memory database.
func OpenIndex(path string) (*Index, error) {
	dsn := path
	if dsn == "" {
		dsn = "file::memory:"
	}
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{
		SkipDefaultTransaction: true,
		Logger:                 logger.Default.LogMode(logger.Silent),
	})
	if err != nil {
		return nil, fmt.Errorf("open index %q: %w", path, err)
	}
	if path == "" {
		// every pooled connection would otherwise see its own empty database
		sqlDB, err := db.DB()
		if err != nil {
			return nil, err
		}
		sqlDB.SetMaxOpenConns(1)
	}
	if err := db.AutoMigrate(&RunRecord{}, &RunMetric{}); err != nil {
		return nil, fmt.Errorf("migrate index: %w", err)
	}
	return &Index{db: db}, nil
}

func (ix *Index) Close() error {
	sqlDB, err := ix.db.DB()
	if err != nil {
		return err
	}
	return sqlDB.Close()
}

// Add records a saved run. Adding the same run twice is an error.
func (ix *Index) Add(meta *RunMetadata) error {
	rec := RunRecord{
		RunID:    meta.ID,
		Scenario: meta.Scenario,
		Started:  meta.Timestamp,
		Dt:       meta.Dt,
		Duration: meta.Duration,
		Steps:    meta.Steps,
		Failed:   len(meta.Errors) > 0,
	}
	for name, v := range meta.Metrics {
		rec.Metrics = append(rec.Metrics, RunMetric{Name: name, Value: v})
	}
	return ix.db.Transaction(func(tx *gorm.DB) error {
		return tx.Create(&rec).Error
	})
}

// Get returns a run with its metrics.
func (ix *Index) Get(runID string) (*RunRecord, error) {
	var rec RunRecord
	err := ix.db.Preload("Metrics").Where("run_id = ?", runID).First(&rec).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, fmt.Errorf("%s: %w", runID, ErrRunNotFound)
	}
	if err != nil {
		return nil, err
	}
	return &rec, nil
}

// List returns the newest runs, optionally only those of one scenario.
// limit <= 0 means no limit.
func (ix *Index) List(scenario string, limit int) ([]RunRecord, error) {
	q := ix.db.Preload("Metrics").Order("started desc")
	if scenario != "" {
		q = q.Where("scenario = ?", scenario)
	}
	if limit > 0 {
		q = q.Limit(limit)
	}
	var recs []RunRecord
	if err := q.Find(&recs).Error; err != nil {
		return nil, err
	}
	return recs, nil
}

// Ranked is a run and the value it was ranked by.
type Ranked struct {
	RunID    string
	Scenario string
	Value    float64
}

// Top ranks runs by a metric, largest first unless ascending is set.
// Failed runs are skipped.
func (ix *Index) Top(metric string, n int, ascending bool) ([]Ranked, error) {
	order := "run_metrics.value desc"
	if ascending {
		order = "run_metrics.value asc"
	}
	q := ix.db.Model(&RunRecord{}).
		Select("run_records.run_id, run_records.scenario, run_metrics.value").
		Joins("JOIN run_metrics ON run_metrics.run_record_id = run_records.id").
		Where("run_metrics.name = ? AND run_records.failed = ?", metric, false).
		Order(order)
	if n > 0 {
		q = q.Limit(n)
	}
	var out []Ranked
	err := q.Scan(&out).Error
	return out, err
}

// Remove deletes a run and its metrics from the index.
func (ix *Index) Remove(runID string) error {
	return ix.db.Transaction(func(tx *gorm.DB) error {
		var rec RunRecord
		if err := tx.Where("run_id = ?", runID).First(&rec).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return fmt.Errorf("%s: %w", runID, ErrRunNotFound)
			}
			return err
		}
		if err := tx.Where("run_record_id = ?", rec.ID).Delete(&RunMetric{}).Error; err != nil {
			return err
		}
		return tx.Unscoped().Delete(&rec).Error
	})
}
