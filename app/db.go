package app

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/lib/pq"
	"github.com/rs/zerolog"

	"chazz/app/config"
	"chazz/app/models"
)

const schema = `
CREATE TABLE IF NOT EXISTS jobs (
    id                uuid PRIMARY KEY,
    status            text        NOT NULL DEFAULT 'queued',
    preset            text        NOT NULL,
    total_positions   integer     NOT NULL,
    batch_size        integer     NOT NULL,
    total_batches     integer     NOT NULL,
    completed_batches integer     NOT NULL DEFAULT 0,
    created_at        timestamptz NOT NULL DEFAULT now(),
    updated_at        timestamptz NOT NULL DEFAULT now()
);

CREATE TABLE IF NOT EXISTS results (
    job_id      uuid    NOT NULL REFERENCES jobs(id) ON DELETE CASCADE,
    batch_index integer NOT NULL,
    position    integer NOT NULL,
    fen         text    NOT NULL,
    best_move   text    NOT NULL,
    score       integer NOT NULL,
    depth       integer NOT NULL,
    nodes       bigint  NOT NULL,
    mate_in_one boolean NOT NULL,
    preset      text    NOT NULL,
    error       text    NOT NULL DEFAULT '',
    PRIMARY KEY (job_id, batch_index, position)
);
`

// PostgresStore is the JobStore backed by the jobs and results tables.
type PostgresStore struct {
	db  *sql.DB
	log zerolog.Logger
}

func NewPostgresStore(db *sql.DB, log zerolog.Logger) *PostgresStore {
	return &PostgresStore{db: db, log: log.With().Str("component", "store").Logger()}
}

// MustInitDB connects to Postgres, creates the tables if needed and exits the
// process on failure. Only cmd/ binaries call it.
func MustInitDB(ctx context.Context, cfg config.PostgresConfig, log zerolog.Logger) *PostgresStore {
	d, err := sql.Open("postgres", cfg.DSN())
	if err != nil {
		log.Fatal().Err(err).Msg("sql.Open")
	}
	if err := d.PingContext(ctx); err != nil {
		log.Fatal().Err(err).Msg("db.Ping")
	}
	s := NewPostgresStore(d, log)
	if err := s.EnsureSchema(ctx); err != nil {
		log.Fatal().Err(err).Msg("create schema")
	}
	log.Info().Str("host", cfg.URL).Msg("connected to Postgres")
	return s
}

func (s *PostgresStore) EnsureSchema(ctx context.Context) error {
	_, err := s.db.ExecContext(ctx, schema)
	return err
}

func (s *PostgresStore) Close() error { return s.db.Close() }

func (s *PostgresStore) CreateJob(ctx context.Context, preset string, totalPositions, batchSize, totalBatches int) (string, error) {
	const q = `
        INSERT INTO jobs (id, preset, total_positions, batch_size, total_batches)
        VALUES ($1, $2, $3, $4, $5);
    `
	id := uuid.NewString()
	if _, err := s.db.ExecContext(ctx, q, id, preset, totalPositions, batchSize, totalBatches); err != nil {
		return "", err
	}
	s.log.Info().
		Str("job_id", id).
		Int("positions", totalPositions).
		Int("batches", totalBatches).
		Msg("created job")
	return id, nil
}

// SaveResults replaces the stored rows of one batch, streaming the new rows
// with COPY inside a single transaction.
func (s *PostgresStore) SaveResults(ctx context.Context, jobID string, batchIndex int, preset string, results []models.PositionResult) error {
	if _, err := uuid.Parse(jobID); err != nil {
		return fmt.Errorf("%w: %s", ErrJobNotFound, jobID)
	}
	if len(results) == 0 {
		return nil
	}
	if err := s.copyResults(ctx, jobID, batchIndex, preset, results); err != nil {
		return jobError(jobID, err)
	}
	return nil
}

func (s *PostgresStore) copyResults(ctx context.Context, jobID string, batchIndex int, preset string, results []models.PositionResult) error {
	tx, err := s.db.BeginTx(ctx, &sql.TxOptions{})
	if err != nil {
		return err
	}
	defer tx.Rollback()

	if _, err := tx.ExecContext(ctx,
		`DELETE FROM results WHERE job_id = $1 AND batch_index = $2`, jobID, batchIndex); err != nil {
		return err
	}

	stmt, err := tx.PrepareContext(ctx, pq.CopyIn(
		"results",
		"job_id", "batch_index", "position", "fen", "best_move",
		"score", "depth", "nodes", "mate_in_one", "preset", "error",
	))
	if err != nil {
		return err
	}
	defer stmt.Close()

	for i, r := range results {
		if _, err := stmt.ExecContext(ctx,
			jobID, batchIndex, i, r.FEN, r.BestMove,
			r.Score, r.Depth, r.Nodes, r.MateInOne, preset, r.Error,
		); err != nil {
			return err
		}
	}
	// Flush the COPY stream.
	if _, err := stmt.ExecContext(ctx); err != nil {
		return err
	}
	return tx.Commit()
}

func (s *PostgresStore) UpdateJobProgress(ctx context.Context, jobID string) error {
	const q = `
        UPDATE jobs j
        SET
            completed_batches = p.done,
            status = CASE
                WHEN p.done >= j.total_batches THEN 'completed'
                WHEN p.done > 0 THEN 'running'
                ELSE 'queued'
            END,
            updated_at = now()
        FROM (
            SELECT COUNT(DISTINCT batch_index) AS done
            FROM results
            WHERE job_id = $1
        ) p
        WHERE j.id = $1;
    `
	if _, err := uuid.Parse(jobID); err != nil {
		return fmt.Errorf("%w: %s", ErrJobNotFound, jobID)
	}
	res, err := s.db.ExecContext(ctx, q, jobID)
	if err != nil {
		return jobError(jobID, err)
	}
	if rows, err := res.RowsAffected(); err == nil && rows == 0 {
		return fmt.Errorf("%w: %s", ErrJobNotFound, jobID)
	}
	return nil
}

func (s *PostgresStore) FindJobStatus(ctx context.Context, jobID string) (models.JobStatus, error) {
	const q = `
        SELECT id, status, preset, total_positions, batch_size,
               completed_batches, total_batches, created_at
        FROM jobs
        WHERE id = $1;
    `
	if _, err := uuid.Parse(jobID); err != nil {
		return models.JobStatus{}, fmt.Errorf("%w: %s", ErrJobNotFound, jobID)
	}

	var js models.JobStatus
	err := s.db.QueryRowContext(ctx, q, jobID).Scan(
		&js.ID, &js.Status, &js.Preset, &js.TotalPositions, &js.BatchSize,
		&js.CompletedBatches, &js.TotalBatches, &js.CreatedAt,
	)
	if errors.Is(err, sql.ErrNoRows) {
		return models.JobStatus{}, fmt.Errorf("%w: %s", ErrJobNotFound, jobID)
	}
	if err != nil {
		return models.JobStatus{}, err
	}
	return js, nil
}

func (s *PostgresStore) FindResults(ctx context.Context, jobID string) ([]models.PositionResult, error) {
	if _, err := uuid.Parse(jobID); err != nil {
		return nil, fmt.Errorf("%w: %s", ErrJobNotFound, jobID)
	}
	rows, err := s.db.QueryContext(ctx, `
        SELECT fen, best_move, score, depth, nodes, mate_in_one, error
        FROM results
        WHERE job_id = $1
        ORDER BY batch_index, position
    `, jobID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []models.PositionResult
	for rows.Next() {
		var r models.PositionResult
		if err := rows.Scan(&r.FEN, &r.BestMove, &r.Score, &r.Depth, &r.Nodes, &r.MateInOne, &r.Error); err != nil {
			return nil, err
		}
		out = append(out, r)
	}
	return out, rows.Err()
}

// jobError maps the Postgres errors a missing or malformed job id produces to
// ErrJobNotFound. Anything else is returned unchanged.
func jobError(jobID string, err error) error {
	var pqErr *pq.Error
	if !errors.As(err, &pqErr) {
		return err
	}
	switch pqErr.Code.Name() {
	case "foreign_key_violation", "invalid_text_representation":
		return fmt.Errorf("%w: %s: %v", ErrJobNotFound, jobID, err)
	}
	return err
}
