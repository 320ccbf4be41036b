// Package history persists run summaries and per-case results in a
// relational database so successive runs against a target can be compared.
// SQLite is the default; the driver and DSN come from the CLI flags.
package history

import (
	"fmt"
	"strings"
	"time"

	"gorm.io/gorm"

	"github.com/mughalk/csc301-a2/internal/verdict"
	"github.com/mughalk/csc301-a2/pkg/database"
)

// Run is one recorded harness invocation.
type Run struct {
	ID         uint   `gorm:"primaryKey"`
	RunID      string `gorm:"uniqueIndex;size:64"`
	Service    string `gorm:"size:64"`
	Target     string `gorm:"size:255"`
	StartedAt  time.Time
	FinishedAt time.Time
	Pass       int
	Fail       int
	Skipped    int
}

// CaseResult is one case within a run.
type CaseResult struct {
	ID         uint   `gorm:"primaryKey"`
	RunID      string `gorm:"index;size:64"`
	Name       string `gorm:"size:255"`
	Status     string `gorm:"size:16"`
	HTTPStatus int
	Reasons    string `gorm:"type:text"`
}

// Store wraps the history database.
type Store struct {
	db *gorm.DB
}

// Open connects and migrates the history schema.
func Open(driver, dsn string) (*Store, error) {
	db, err := database.Open(driver, dsn)
	if err != nil {
		return nil, fmt.Errorf("history: open: %w", err)
	}
	if err := db.AutoMigrate(&Run{}, &CaseResult{}); err != nil {
		return nil, fmt.Errorf("history: migrate: %w", err)
	}
	return &Store{db: db}, nil
}

// SaveRun writes the run summary and all of its case results atomically.
func (s *Store) SaveRun(run Run, verdicts []verdict.Verdict) error {
	return s.db.Transaction(func(tx *gorm.DB) error {
		for _, v := range verdicts {
			switch v.Status {
			case verdict.Pass:
				run.Pass++
			case verdict.Fail:
				run.Fail++
			case verdict.Skipped:
				run.Skipped++
			}
		}
		if err := tx.Create(&run).Error; err != nil {
			return fmt.Errorf("history: save run: %w", err)
		}

		results := make([]CaseResult, 0, len(verdicts))
		for _, v := range verdicts {
			results = append(results, CaseResult{
				RunID:      run.RunID,
				Name:       v.Name,
				Status:     string(v.Status),
				HTTPStatus: v.HTTPStatus,
				Reasons:    strings.Join(v.Reasons, "; "),
			})
		}
		if len(results) == 0 {
			return nil
		}
		if err := tx.CreateInBatches(results, 100).Error; err != nil {
			return fmt.Errorf("history: save results: %w", err)
		}
		return nil
	})
}

// RecentRuns returns the latest runs, newest first.
func (s *Store) RecentRuns(limit int) ([]Run, error) {
	var runs []Run
	err := s.db.Order("started_at desc").Limit(limit).Find(&runs).Error
	if err != nil {
		return nil, fmt.Errorf("history: list runs: %w", err)
	}
	return runs, nil
}

// ResultsFor returns the case results of one run, in insertion order.
func (s *Store) ResultsFor(runID string) ([]CaseResult, error) {
	var results []CaseResult
	err := s.db.Where("run_id = ?", runID).Order("id asc").Find(&results).Error
	if err != nil {
		return nil, fmt.Errorf("history: list results: %w", err)
	}
	return results, nil
}
