package repository

import (
	"context"
	"database/sql"
	"fmt"
)

// FlowRunRepository implements FlowRun CRUD scoped by flow_id, grounded on
// original_source/app/backend/repositories/flow_run_repository.py.
type FlowRunRepository struct {
	db *sql.DB
}

// NewFlowRunRepository wraps db.
func NewFlowRunRepository(db *sql.DB) *FlowRunRepository {
	return &FlowRunRepository{db: db}
}

// CreateFlowRun computes run_number := max(run_number where flow_id) + 1
// inside the same transaction as the insert (spec §5: "the run-number
// allocation must be atomic").
func (r *FlowRunRepository) CreateFlowRun(ctx context.Context, flowID int64, requestData []byte) (FlowRun, error) {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return FlowRun{}, fmt.Errorf("repository: create flow run: begin tx: %w", err)
	}
	defer tx.Rollback()

	var maxRunNumber sql.NullInt64
	if err := tx.QueryRowContext(ctx, `SELECT MAX(run_number) FROM flow_runs WHERE flow_id = ?`, flowID).Scan(&maxRunNumber); err != nil {
		return FlowRun{}, fmt.Errorf("repository: create flow run: next run number: %w", err)
	}
	runNumber := int(maxRunNumber.Int64) + 1

	res, err := tx.ExecContext(ctx,
		`INSERT INTO flow_runs (flow_id, run_number, status, request_data) VALUES (?, ?, ?, ?)`,
		flowID, runNumber, StatusIdle, nullBytes(requestData),
	)
	if err != nil {
		return FlowRun{}, fmt.Errorf("repository: create flow run: insert: %w", err)
	}
	id, err := res.LastInsertId()
	if err != nil {
		return FlowRun{}, fmt.Errorf("repository: create flow run: last insert id: %w", err)
	}

	row := tx.QueryRowContext(ctx, flowRunSelectByID, id)
	flowRun, err := scanFlowRun(row)
	if err != nil {
		return FlowRun{}, fmt.Errorf("repository: create flow run: read back: %w", err)
	}

	if err := tx.Commit(); err != nil {
		return FlowRun{}, fmt.Errorf("repository: create flow run: commit: %w", err)
	}
	return flowRun, nil
}

const flowRunSelectByID = `SELECT id, flow_id, run_number, status, request_data, results, error_message, started_at, completed_at, created_at, updated_at
	FROM flow_runs WHERE id = ?`

const flowRunColumns = `id, flow_id, run_number, status, request_data, results, error_message, started_at, completed_at, created_at, updated_at`

// GetFlowRunByID returns the run with the given id, or sql.ErrNoRows.
func (r *FlowRunRepository) GetFlowRunByID(ctx context.Context, id int64) (FlowRun, error) {
	return scanFlowRun(r.db.QueryRowContext(ctx, flowRunSelectByID, id))
}

// ListFlowRunsByFlowID returns runs for flowID, most recent first.
func (r *FlowRunRepository) ListFlowRunsByFlowID(ctx context.Context, flowID int64, limit, offset int) ([]FlowRun, error) {
	rows, err := r.db.QueryContext(ctx,
		`SELECT `+flowRunColumns+` FROM flow_runs WHERE flow_id = ? ORDER BY created_at DESC LIMIT ? OFFSET ?`,
		flowID, limit, offset,
	)
	if err != nil {
		return nil, fmt.Errorf("repository: list flow runs: %w", err)
	}
	defer rows.Close()
	return scanFlowRuns(rows)
}

// GetActiveFlowRun returns the unique IN_PROGRESS run for flowID, or
// sql.ErrNoRows if none is active (spec §4.8).
func (r *FlowRunRepository) GetActiveFlowRun(ctx context.Context, flowID int64) (FlowRun, error) {
	return scanFlowRun(r.db.QueryRowContext(ctx,
		`SELECT `+flowRunColumns+` FROM flow_runs WHERE flow_id = ? AND status = ? LIMIT 1`,
		flowID, StatusInProgress,
	))
}

// GetLatestFlowRun returns the most recently created run for flowID.
func (r *FlowRunRepository) GetLatestFlowRun(ctx context.Context, flowID int64) (FlowRun, error) {
	return scanFlowRun(r.db.QueryRowContext(ctx,
		`SELECT `+flowRunColumns+` FROM flow_runs WHERE flow_id = ? ORDER BY created_at DESC LIMIT 1`,
		flowID,
	))
}

// CountFlowRuns returns the number of runs recorded for flowID.
func (r *FlowRunRepository) CountFlowRuns(ctx context.Context, flowID int64) (int, error) {
	var n int
	err := r.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM flow_runs WHERE flow_id = ?`, flowID).Scan(&n)
	return n, err
}

// FlowRunUpdate carries the only three fields the reference
// `update_flow_run` accepts; status transitions to IN_PROGRESS/COMPLETE/
// ERROR stamp started_at/completed_at, write-once (spec Open Question:
// "treat terminal-state timestamps as write-once").
type FlowRunUpdate struct {
	Status       *FlowRunStatus
	Results      []byte
	ErrorMessage *string
}

// UpdateFlowRun applies the lifecycle rules of spec §3/§4.8.
func (r *FlowRunRepository) UpdateFlowRun(ctx context.Context, id int64, upd FlowRunUpdate) (FlowRun, error) {
	current, err := r.GetFlowRunByID(ctx, id)
	if err != nil {
		return FlowRun{}, err
	}

	setClauses := []string{"updated_at = CURRENT_TIMESTAMP"}
	args := []any{}

	if upd.Status != nil {
		setClauses = append(setClauses, "status = ?")
		args = append(args, *upd.Status)

		if *upd.Status == StatusInProgress && current.StartedAt == nil {
			setClauses = append(setClauses, "started_at = CURRENT_TIMESTAMP")
		}
		if (*upd.Status == StatusComplete || *upd.Status == StatusError) && current.CompletedAt == nil {
			setClauses = append(setClauses, "completed_at = CURRENT_TIMESTAMP")
		}
	}
	if upd.Results != nil {
		setClauses = append(setClauses, "results = ?")
		args = append(args, upd.Results)
	}
	if upd.ErrorMessage != nil {
		setClauses = append(setClauses, "error_message = ?")
		args = append(args, *upd.ErrorMessage)
	}

	query := "UPDATE flow_runs SET " + joinClauses(setClauses) + " WHERE id = ?"
	args = append(args, id)
	if _, err := r.db.ExecContext(ctx, query, args...); err != nil {
		return FlowRun{}, fmt.Errorf("repository: update flow run: %w", err)
	}
	return r.GetFlowRunByID(ctx, id)
}

// DeleteFlowRun removes one run, reporting whether a row was deleted.
func (r *FlowRunRepository) DeleteFlowRun(ctx context.Context, id int64) (bool, error) {
	res, err := r.db.ExecContext(ctx, `DELETE FROM flow_runs WHERE id = ?`, id)
	if err != nil {
		return false, fmt.Errorf("repository: delete flow run: %w", err)
	}
	n, err := res.RowsAffected()
	return n > 0, err
}

// DeleteFlowRunsByFlowID removes every run for flowID, returning the count
// deleted.
func (r *FlowRunRepository) DeleteFlowRunsByFlowID(ctx context.Context, flowID int64) (int64, error) {
	res, err := r.db.ExecContext(ctx, `DELETE FROM flow_runs WHERE flow_id = ?`, flowID)
	if err != nil {
		return 0, fmt.Errorf("repository: delete flow runs: %w", err)
	}
	return res.RowsAffected()
}
