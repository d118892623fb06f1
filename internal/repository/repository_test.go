package repository

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/BerylCAtieno/financial-analyzer/internal/db"
	"github.com/BerylCAtieno/financial-analyzer/internal/models"
)

func newTestRepository(t *testing.T) Repository {
	t.Helper()

	conn, err := db.Open(db.DriverSQLite, filepath.Join(t.TempDir(), "history.db"))
	require.NoError(t, err)
	t.Cleanup(func() { conn.Close() })

	require.NoError(t, db.RunMigrations(conn, db.DriverSQLite))
	// Running twice is a no-op.
	require.NoError(t, db.RunMigrations(conn, db.DriverSQLite))

	return NewRepository(conn)
}

func TestCreateAndGet(t *testing.T) {
	repo := newTestRepository(t)
	ctx := context.Background()

	created := time.Date(2025, 2, 10, 9, 30, 0, 0, time.UTC)
	rec := &models.AnalysisRecord{
		ID:           "a1",
		Operation:    models.OperationAnalyze,
		AnalysisType: "risk-factors",
		Filename:     "10k.pdf",
		StartPage:    2,
		EndPage:      5,
		Status:       models.StatusSuccess,
		Result:       "1. Financial Risks: ...",
		Model:        "gpt-3.5-turbo",
		DurationMs:   1530,
		CreatedAt:    created,
	}
	require.NoError(t, repo.Create(ctx, rec))

	got, err := repo.GetByID(ctx, "a1")
	require.NoError(t, err)
	require.NotNil(t, got)

	assert.Equal(t, "risk-factors", got.AnalysisType)
	assert.Equal(t, 2, got.StartPage)
	assert.Equal(t, 5, got.EndPage)
	assert.Equal(t, int64(1530), got.DurationMs)
	assert.Equal(t, "1. Financial Risks: ...", got.Result)
	assert.True(t, created.Equal(got.CreatedAt), "created_at %v", got.CreatedAt)
}

func TestGetByIDMissing(t *testing.T) {
	repo := newTestRepository(t)

	got, err := repo.GetByID(context.Background(), "nope")
	require.NoError(t, err)
	assert.Nil(t, got)
}

func TestListNewestFirst(t *testing.T) {
	repo := newTestRepository(t)
	ctx := context.Background()

	base := time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC)
	for i, id := range []string{"first", "second", "third"} {
		require.NoError(t, repo.Create(ctx, &models.AnalysisRecord{
			ID:           id,
			Operation:    models.OperationCompare,
			Filename:     "a.pdf",
			Filename2:    "b.pdf",
			Status:       models.StatusFailed,
			ErrorKind:    "remote",
			ErrorMessage: "Error in comparison: timeout",
			Result:       "ignored in listings",
			CreatedAt:    base.Add(time.Duration(i) * time.Hour),
		}))
	}

	list, err := repo.List(ctx, 2)
	require.NoError(t, err)
	require.Len(t, list, 2)
	assert.Equal(t, "third", list[0].ID)
	assert.Equal(t, "second", list[1].ID)
	assert.Empty(t, list[0].Result)
	assert.Equal(t, "remote", list[0].ErrorKind)

	all, err := repo.List(ctx, 0)
	require.NoError(t, err)
	assert.Len(t, all, 3)
}
