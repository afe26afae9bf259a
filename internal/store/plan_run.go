package store

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"

	"github.com/anokye0712/ai-route-planner/core/db"
	"github.com/anokye0712/ai-route-planner/internal/model"
)

// PlanRunStore defines the contract for plan-run history access
type PlanRunStore interface {
	// EnsureSchema creates the plan_runs table when it does not exist yet.
	EnsureSchema(ctx context.Context) error
	Create(ctx context.Context, run *model.PlanRun) error
	GetByID(ctx context.Context, id int64) (*model.PlanRun, error)
	ListRecent(ctx context.Context, limit int32) ([]model.PlanRun, error)
}

type planRunStore struct {
	db *db.DB
}

// EnsureSchema creates the table and its index atomically. pgx's extended
// protocol takes one statement per Exec, so the statements run inside one
// transaction instead of one string.
func (s *planRunStore) EnsureSchema(ctx context.Context) error {
	err := s.db.WithTx(ctx, func(tx pgx.Tx) error {
		if _, err := tx.Exec(ctx, `
			CREATE TABLE IF NOT EXISTS plan_runs (
				id BIGINT PRIMARY KEY,
				user_id TEXT NOT NULL,
				query TEXT NOT NULL,
				status TEXT NOT NULL,
				mode TEXT NOT NULL DEFAULT '',
				location_count INT NOT NULL DEFAULT 0,
				agent_count INT NOT NULL DEFAULT 0,
				job_count INT NOT NULL DEFAULT 0,
				shipment_count INT NOT NULL DEFAULT 0,
				skipped_count INT NOT NULL DEFAULT 0,
				unassigned_jobs INT NOT NULL DEFAULT 0,
				unassigned_agents INT NOT NULL DEFAULT 0,
				error TEXT,
				duration_ms BIGINT NOT NULL DEFAULT 0,
				created_at TIMESTAMPTZ NOT NULL DEFAULT now()
			)`); err != nil {
			return err
		}
		_, err := tx.Exec(ctx, `
			CREATE INDEX IF NOT EXISTS plan_runs_created_at_idx
			ON plan_runs (created_at DESC)`)
		return err
	})
	if err != nil {
		return fmt.Errorf("ensuring plan_runs schema: %w", err)
	}
	return nil
}

func (s *planRunStore) Create(ctx context.Context, run *model.PlanRun) error {
	row := s.db.Pool().QueryRow(ctx, `
		INSERT INTO plan_runs (
			id, user_id, query, status, mode,
			location_count, agent_count, job_count, shipment_count,
			skipped_count, unassigned_jobs, unassigned_agents,
			error, duration_ms
		) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14)
		RETURNING created_at`,
		run.ID, run.UserID, run.Query, run.Status, run.Mode,
		run.LocationCount, run.AgentCount, run.JobCount, run.ShipmentCount,
		run.SkippedCount, run.UnassignedJobs, run.UnassignedAgents,
		run.Error, run.DurationMS,
	)
	if err := row.Scan(&run.CreatedAt); err != nil {
		return fmt.Errorf("inserting plan run: %w", err)
	}
	return nil
}

func (s *planRunStore) GetByID(ctx context.Context, id int64) (*model.PlanRun, error) {
	row := s.db.Pool().QueryRow(ctx, `
		SELECT id, user_id, query, status, mode,
			location_count, agent_count, job_count, shipment_count,
			skipped_count, unassigned_jobs, unassigned_agents,
			error, duration_ms, created_at
		FROM plan_runs WHERE id = $1`, id)

	run, err := scanPlanRun(row)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return run, nil
}

func (s *planRunStore) ListRecent(ctx context.Context, limit int32) ([]model.PlanRun, error) {
	if limit <= 0 {
		limit = 20
	}
	rows, err := s.db.Pool().Query(ctx, `
		SELECT id, user_id, query, status, mode,
			location_count, agent_count, job_count, shipment_count,
			skipped_count, unassigned_jobs, unassigned_agents,
			error, duration_ms, created_at
		FROM plan_runs ORDER BY created_at DESC LIMIT $1`, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	runs := make([]model.PlanRun, 0, limit)
	for rows.Next() {
		run, err := scanPlanRun(rows)
		if err != nil {
			return nil, err
		}
		runs = append(runs, *run)
	}
	return runs, rows.Err()
}

func scanPlanRun(row pgx.Row) (*model.PlanRun, error) {
	var run model.PlanRun
	err := row.Scan(
		&run.ID, &run.UserID, &run.Query, &run.Status, &run.Mode,
		&run.LocationCount, &run.AgentCount, &run.JobCount, &run.ShipmentCount,
		&run.SkippedCount, &run.UnassignedJobs, &run.UnassignedAgents,
		&run.Error, &run.DurationMS, &run.CreatedAt,
	)
	if err != nil {
		return nil, err
	}
	return &run, nil
}

// noopPlanRunStore backs the server when persistence is disabled.
type noopPlanRunStore struct{}

func (noopPlanRunStore) EnsureSchema(context.Context) error { return nil }

func (noopPlanRunStore) Create(context.Context, *model.PlanRun) error { return nil }

func (noopPlanRunStore) GetByID(context.Context, int64) (*model.PlanRun, error) {
	return nil, ErrNotFound
}

func (noopPlanRunStore) ListRecent(context.Context, int32) ([]model.PlanRun, error) {
	return []model.PlanRun{}, nil
}
