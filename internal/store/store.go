package store

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/autocaps/renderd/internal/logging"
)

// DB is the slice of pgx used by the store; *pgxpool.Pool satisfies it.
type DB interface {
	Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error)
}

// Store mutates the externally-owned job and upload records. Jobs move
// queued -> processing -> done|failed and never backward; the store is the
// only writer for job-owned fields, last writer wins.
type Store struct {
	db     DB
	logger *logging.Logger
}

// result payload attached to a completed render job
type JobResult struct {
	DownloadURL string `json:"downloadUrl"`
	StoragePath string `json:"storagePath"`
}

func New(db DB, logger *logging.Logger) *Store {
	return &Store{db: db, logger: logger}
}

// NewPool opens a pgx connection pool for the given DSN and verifies it.
func NewPool(ctx context.Context, dsn string) (*pgxpool.Pool, error) {
	pool, err := pgxpool.New(ctx, dsn)
	if err != nil {
		return nil, fmt.Errorf("parse database config: %w", err)
	}
	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, fmt.Errorf("database ping: %w", err)
	}
	return pool, nil
}

func (s *Store) MarkJobProcessing(ctx context.Context, jobID string) error {
	_, err := s.db.Exec(ctx,
		`UPDATE jobs SET status = 'processing', started_at = $2 WHERE id = $1`,
		jobID, time.Now().UTC(),
	)
	if err != nil {
		return fmt.Errorf("job update failed: %w", err)
	}
	return nil
}

func (s *Store) MarkJobDone(ctx context.Context, jobID string, result JobResult) error {
	payload, err := json.Marshal(result)
	if err != nil {
		return fmt.Errorf("encode job result: %w", err)
	}
	_, err = s.db.Exec(ctx,
		`UPDATE jobs SET status = 'done', completed_at = $2, result = $3 WHERE id = $1`,
		jobID, time.Now().UTC(), payload,
	)
	if err != nil {
		return fmt.Errorf("job update failed: %w", err)
	}
	return nil
}

func (s *Store) MarkJobFailed(ctx context.Context, jobID, message string) error {
	_, err := s.db.Exec(ctx,
		`UPDATE jobs SET status = 'failed', completed_at = $2, error = $3 WHERE id = $1`,
		jobID, time.Now().UTC(), message,
	)
	if err != nil {
		return fmt.Errorf("job update failed: %w", err)
	}
	return nil
}

// SetUploadRendering marks the source upload as rendering and records the
// caption file path produced for it.
func (s *Store) SetUploadRendering(ctx context.Context, uploadID, captionPath string) error {
	_, err := s.db.Exec(ctx,
		`UPDATE uploads SET status = 'rendering', caption_asset_path = $2, updated_at = $3 WHERE id = $1`,
		uploadID, captionPath, time.Now().UTC(),
	)
	if err != nil {
		return fmt.Errorf("failed to update upload row: %w", err)
	}
	return nil
}

// UpdateUploadRendered marks the source upload rendered and stores the
// render path. Deployments whose schema predates the render_asset_path
// column reject the update with an unknown-column error; that case is
// recovered by retrying without the column and logged as a warning.
func (s *Store) UpdateUploadRendered(ctx context.Context, uploadID, renderPath string) error {
	now := time.Now().UTC()
	_, err := s.db.Exec(ctx,
		`UPDATE uploads SET status = 'rendered', render_asset_path = $2, updated_at = $3 WHERE id = $1`,
		uploadID, renderPath, now,
	)
	if err == nil {
		return nil
	}

	if !isMissingRenderColumnError(err) {
		return fmt.Errorf("failed to update upload row: %w", err)
	}

	s.logger.Warnw("uploads.render_asset_path missing in schema; retrying without column",
		"upload_id", uploadID,
	)

	_, err = s.db.Exec(ctx,
		`UPDATE uploads SET status = 'rendered', updated_at = $2 WHERE id = $1`,
		uploadID, now,
	)
	if err != nil {
		return fmt.Errorf("failed to update upload row (fallback): %w", err)
	}
	return nil
}

func (s *Store) SetUploadRenderFailed(ctx context.Context, uploadID string) error {
	_, err := s.db.Exec(ctx,
		`UPDATE uploads SET status = 'render_failed', updated_at = $2 WHERE id = $1`,
		uploadID, time.Now().UTC(),
	)
	if err != nil {
		return fmt.Errorf("failed to update upload row: %w", err)
	}
	return nil
}

// SQLSTATE 42703 is undefined_column; only treat it as drift when the
// message names the render path column
func isMissingRenderColumnError(err error) bool {
	var pgErr *pgconn.PgError
	if !errors.As(err, &pgErr) {
		return false
	}
	if pgErr.Code != "42703" {
		return false
	}
	return strings.Contains(pgErr.Message, "render_asset_path")
}
