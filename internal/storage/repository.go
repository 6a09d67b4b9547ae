package storage

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/guttosm/brokerfees/internal/domain/models"
	pq "github.com/lib/pq"
)

// ValidationRepository defines contract for DB operations on validation runs.
type ValidationRepository interface {
	InsertRun(ctx context.Context, run models.ValidationRun) error
	ListRecentRuns(ctx context.Context, limit int) ([]models.ValidationRun, error)
	GetRunErrors(ctx context.Context, runID string) ([]models.ValidationError, error)
}

type validationRepository struct {
	db *sql.DB
}

func NewValidationRepository(db *sql.DB) ValidationRepository {
	return &validationRepository{db: db}
}

// InsertRun stores a run and its errors in a single transaction. Errors are
// bulk loaded with COPY.
func (r *validationRepository) InsertRun(ctx context.Context, run models.ValidationRun) error {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}

	if _, err := tx.ExecContext(ctx, `
		INSERT INTO validation_runs (id, source, valid, checked, passed, error_count, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
	`, run.ID, run.Source, run.Valid, run.Checked, run.Passed, run.ErrorCount, run.CreatedAt); err != nil {
		_ = tx.Rollback()
		return fmt.Errorf("insert validation run: %w", err)
	}

	if len(run.Errors) == 0 {
		return tx.Commit()
	}

	stmt, err := tx.PrepareContext(ctx, pq.CopyIn(
		"validation_errors",
		"run_id",
		"broker",
		"instrument",
		"amount",
		"observed",
		"expected",
		"explanation",
	))
	if err != nil {
		_ = tx.Rollback()
		return err
	}

	for _, e := range run.Errors {
		if _, err := stmt.ExecContext(ctx,
			run.ID,
			e.Broker,
			e.Instrument,
			e.Amount,
			e.Observed.StringFixed(2),
			e.Expected.StringFixed(2),
			e.Explanation,
		); err != nil {
			_ = stmt.Close()
			_ = tx.Rollback()
			return err
		}
	}

	if _, err := stmt.ExecContext(ctx); err != nil {
		_ = stmt.Close()
		_ = tx.Rollback()
		return err
	}
	if err := stmt.Close(); err != nil {
		_ = tx.Rollback()
		return err
	}

	return tx.Commit()
}

// ListRecentRuns returns the newest runs first, without their errors.
func (r *validationRepository) ListRecentRuns(ctx context.Context, limit int) ([]models.ValidationRun, error) {
	rows, err := r.db.QueryContext(ctx, `
		SELECT id, source, valid, checked, passed, error_count, created_at
		FROM validation_runs
		ORDER BY created_at DESC
		LIMIT $1
	`, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var runs []models.ValidationRun
	for rows.Next() {
		var run models.ValidationRun
		if err := rows.Scan(&run.ID, &run.Source, &run.Valid, &run.Checked, &run.Passed, &run.ErrorCount, &run.CreatedAt); err != nil {
			return nil, err
		}
		runs = append(runs, run)
	}
	return runs, rows.Err()
}

// GetRunErrors returns the stored errors of one run.
func (r *validationRepository) GetRunErrors(ctx context.Context, runID string) ([]models.ValidationError, error) {
	rows, err := r.db.QueryContext(ctx, `
		SELECT broker, instrument, amount, observed, expected, explanation
		FROM validation_errors
		WHERE run_id = $1
	`, runID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []models.ValidationError
	for rows.Next() {
		var e models.ValidationError
		if err := rows.Scan(&e.Broker, &e.Instrument, &e.Amount, &e.Observed, &e.Expected, &e.Explanation); err != nil {
			return nil, err
		}
		out = append(out, e)
	}
	return out, rows.Err()
}
