package repository

import (
	"context"
	"database/sql"
	"errors"

	"github.com/jmoiron/sqlx"

	"github.com/BerylCAtieno/financial-analyzer/internal/models"
)

const (
	DefaultListLimit = 20
	MaxListLimit     = 100
)

// Repository stores the analysis history. Nothing in the analysis path reads
// it back.
type Repository interface {
	Create(ctx context.Context, rec *models.AnalysisRecord) error
	GetByID(ctx context.Context, id string) (*models.AnalysisRecord, error)
	List(ctx context.Context, limit int) ([]models.AnalysisRecord, error)
}

type repository struct {
	db *sqlx.DB
}

func NewRepository(db *sqlx.DB) Repository {
	return &repository{db: db}
}

func (r *repository) Create(ctx context.Context, rec *models.AnalysisRecord) error {
	query := r.db.Rebind(`
		INSERT INTO analyses (id, operation, analysis_type, filename, filename2, start_page, end_page,
		                      status, error_kind, error_message, result, model, duration_ms, created_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
	`)

	_, err := r.db.ExecContext(ctx, query,
		rec.ID,
		rec.Operation,
		rec.AnalysisType,
		rec.Filename,
		rec.Filename2,
		rec.StartPage,
		rec.EndPage,
		rec.Status,
		rec.ErrorKind,
		rec.ErrorMessage,
		rec.Result,
		rec.Model,
		rec.DurationMs,
		rec.CreatedAt.UTC(),
	)

	return err
}

func (r *repository) GetByID(ctx context.Context, id string) (*models.AnalysisRecord, error) {
	var rec models.AnalysisRecord

	query := r.db.Rebind(`
		SELECT id, operation, analysis_type, filename, filename2, start_page, end_page,
		       status, error_kind, error_message, result, model, duration_ms, created_at
		FROM analyses
		WHERE id = ?
	`)

	err := r.db.GetContext(ctx, &rec, query, id)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}

	return &rec, nil
}

// List returns the most recent records first. The result column is left
// empty to keep listings small.
func (r *repository) List(ctx context.Context, limit int) ([]models.AnalysisRecord, error) {
	if limit <= 0 {
		limit = DefaultListLimit
	}
	if limit > MaxListLimit {
		limit = MaxListLimit
	}

	query := r.db.Rebind(`
		SELECT id, operation, analysis_type, filename, filename2, start_page, end_page,
		       status, error_kind, error_message, model, duration_ms, created_at
		FROM analyses
		ORDER BY created_at DESC
		LIMIT ?
	`)

	records := []models.AnalysisRecord{}
	if err := r.db.SelectContext(ctx, &records, query, limit); err != nil {
		return nil, err
	}

	return records, nil
}
