package repository

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/supabase-community/postgrest-go"

	"pdf-toolbox/internal/domain"
)

// SupabaseOperationRepository stores job records in a Supabase table with
// columns id, operation, status, result (jsonb), created_at, started_at and
// finished_at.
type SupabaseOperationRepository struct {
	supabaseClient domain.SupabaseClient
	table          string
	logger         domain.Logger
}

func NewSupabaseOperationRepository(supabaseClient domain.SupabaseClient, table string, logger domain.Logger) *SupabaseOperationRepository {
	return &SupabaseOperationRepository{
		supabaseClient: supabaseClient,
		table:          table,
		logger:         logger,
	}
}

type operationRow struct {
	ID         string                  `json:"id"`
	Operation  string                  `json:"operation"`
	Status     string                  `json:"status"`
	Result     *domain.OperationResult `json:"result"`
	CreatedAt  time.Time               `json:"created_at"`
	StartedAt  *time.Time              `json:"started_at"`
	FinishedAt *time.Time              `json:"finished_at"`
}

func toRow(job *domain.Job) operationRow {
	return operationRow{
		ID:         job.ID,
		Operation:  job.Operation,
		Status:     string(job.Status),
		Result:     job.Result,
		CreatedAt:  job.CreatedAt,
		StartedAt:  job.StartedAt,
		FinishedAt: job.FinishedAt,
	}
}

func (row operationRow) toJob() *domain.Job {
	return &domain.Job{
		ID:         row.ID,
		Operation:  row.Operation,
		Status:     domain.JobStatus(row.Status),
		Result:     row.Result,
		CreatedAt:  row.CreatedAt,
		StartedAt:  row.StartedAt,
		FinishedAt: row.FinishedAt,
	}
}

// Save upserts the job on its id.
func (r *SupabaseOperationRepository) Save(_ context.Context, job *domain.Job) error {
	client := r.supabaseClient.DB()
	if client == nil {
		return domain.ErrSupabaseDisabled
	}

	_, _, err := client.From(r.table).Insert(toRow(job), true, "id", "minimal", "").Execute()
	if err != nil {
		return fmt.Errorf("failed to save operation %s: %w", job.ID, err)
	}
	return nil
}

func (r *SupabaseOperationRepository) Get(_ context.Context, id string) (*domain.Job, error) {
	client := r.supabaseClient.DB()
	if client == nil {
		return nil, domain.ErrSupabaseDisabled
	}

	data, _, err := client.From(r.table).
		Select("*", "", false).
		Eq("id", id).
		Limit(1, "").
		Execute()
	if err != nil {
		return nil, fmt.Errorf("failed to get operation: %w", err)
	}

	var rows []operationRow
	if err := json.Unmarshal(data, &rows); err != nil {
		return nil, fmt.Errorf("failed to unmarshal response: %w", err)
	}
	if len(rows) == 0 {
		return nil, domain.ErrJobNotFound
	}
	return rows[0].toJob(), nil
}

// List returns up to limit jobs, newest first.
func (r *SupabaseOperationRepository) List(_ context.Context, limit int) ([]*domain.Job, error) {
	client := r.supabaseClient.DB()
	if client == nil {
		return nil, domain.ErrSupabaseDisabled
	}

	data, _, err := client.From(r.table).
		Select("*", "", false).
		Order("created_at", &postgrest.OrderOpts{Ascending: false}).
		Limit(limit, "").
		Execute()
	if err != nil {
		return nil, fmt.Errorf("failed to list operations: %w", err)
	}

	var rows []operationRow
	if err := json.Unmarshal(data, &rows); err != nil {
		return nil, fmt.Errorf("failed to unmarshal response: %w", err)
	}

	jobs := make([]*domain.Job, 0, len(rows))
	for _, row := range rows {
		jobs = append(jobs, row.toJob())
	}
	r.logger.Debug("Listed operations", "table", r.table, "count", len(jobs))
	return jobs, nil
}
