// Package store persists pipeline runs and training metrics in a local
// sqlite file so experiments stay comparable across invocations.
package store

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"collapse-mapper/internal/model"

	"github.com/google/uuid"
	_ "github.com/mattn/go-sqlite3"
)

// Run records one dataset-preparation or training invocation.
type Run struct {
	ID            string
	CreatedAt     time.Time
	TileSize      int
	Bands         int
	SampleCount   int
	MultiTemporal bool
	Notes         string
}

// Store wraps the sqlite database holding runs and metrics.
type Store struct {
	db *sql.DB
}

// Open opens (creating if needed) the run store at path.
func Open(path string) (*Store, error) {
	db, err := sql.Open("sqlite3", path)
	if err != nil {
		return nil, fmt.Errorf("open store %s: %w", path, err)
	}
	s := &Store{db: db}
	if err := s.createTables(); err != nil {
		db.Close()
		return nil, err
	}
	return s, nil
}

// Close releases the underlying database.
func (s *Store) Close() error {
	return s.db.Close()
}

func (s *Store) createTables() error {
	schemas := []string{
		`CREATE TABLE IF NOT EXISTS runs (
			id TEXT PRIMARY KEY,
			created_at TIMESTAMP NOT NULL,
			tile_size INTEGER NOT NULL,
			bands INTEGER NOT NULL,
			sample_count INTEGER NOT NULL,
			multi_temporal INTEGER NOT NULL,
			notes TEXT
		)`,
		`CREATE TABLE IF NOT EXISTS metrics (
			run_id TEXT NOT NULL,
			epoch INTEGER NOT NULL,
			loss REAL,
			accuracy REAL,
			val_loss REAL,
			val_accuracy REAL,
			PRIMARY KEY (run_id, epoch)
		)`,
	}
	for _, schema := range schemas {
		if _, err := s.db.Exec(schema); err != nil {
			return fmt.Errorf("create tables: %w", err)
		}
	}
	return nil
}

// NewRun builds a Run with a fresh id and timestamp.
func NewRun(tileSize, bands, sampleCount int, multiTemporal bool, notes string) Run {
	return Run{
		ID:            uuid.NewString(),
		CreatedAt:     time.Now().UTC(),
		TileSize:      tileSize,
		Bands:         bands,
		SampleCount:   sampleCount,
		MultiTemporal: multiTemporal,
		Notes:         notes,
	}
}

// SaveRun inserts a run record.
func (s *Store) SaveRun(ctx context.Context, run Run) error {
	_, err := s.db.ExecContext(ctx,
		`INSERT INTO runs (id, created_at, tile_size, bands, sample_count, multi_temporal, notes)
		 VALUES (?, ?, ?, ?, ?, ?, ?)`,
		run.ID, run.CreatedAt, run.TileSize, run.Bands, run.SampleCount, run.MultiTemporal, run.Notes)
	if err != nil {
		return fmt.Errorf("save run %s: %w", run.ID, err)
	}
	return nil
}

// GetRun loads one run by id.
func (s *Store) GetRun(ctx context.Context, id string) (Run, error) {
	var run Run
	err := s.db.QueryRowContext(ctx,
		`SELECT id, created_at, tile_size, bands, sample_count, multi_temporal, notes
		 FROM runs WHERE id = ?`, id).
		Scan(&run.ID, &run.CreatedAt, &run.TileSize, &run.Bands,
			&run.SampleCount, &run.MultiTemporal, &run.Notes)
	if err != nil {
		return Run{}, fmt.Errorf("get run %s: %w", id, err)
	}
	return run, nil
}

// SaveMetrics persists a training history for a run.
func (s *Store) SaveMetrics(ctx context.Context, runID string, history []model.EpochMetric) error {
	stmt, err := s.db.PrepareContext(ctx,
		`INSERT INTO metrics (run_id, epoch, loss, accuracy, val_loss, val_accuracy)
		 VALUES (?, ?, ?, ?, ?, ?)`)
	if err != nil {
		return fmt.Errorf("prepare metrics insert: %w", err)
	}
	defer stmt.Close()

	for _, m := range history {
		if _, err := stmt.ExecContext(ctx, runID, m.Epoch, m.Loss, m.Accuracy, m.ValLoss, m.ValAccuracy); err != nil {
			return fmt.Errorf("save metric epoch %d: %w", m.Epoch, err)
		}
	}
	return nil
}

// Metrics loads the training history of a run in epoch order.
func (s *Store) Metrics(ctx context.Context, runID string) ([]model.EpochMetric, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT epoch, loss, accuracy, val_loss, val_accuracy
		 FROM metrics WHERE run_id = ? ORDER BY epoch`, runID)
	if err != nil {
		return nil, fmt.Errorf("query metrics for %s: %w", runID, err)
	}
	defer rows.Close()

	var history []model.EpochMetric
	for rows.Next() {
		var m model.EpochMetric
		if err := rows.Scan(&m.Epoch, &m.Loss, &m.Accuracy, &m.ValLoss, &m.ValAccuracy); err != nil {
			return nil, fmt.Errorf("scan metric: %w", err)
		}
		history = append(history, m)
	}
	return history, rows.Err()
}
