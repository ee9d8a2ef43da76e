package repository

import (
	"context"
	"database/sql"
	"fmt"
)

// FlowRepository implements Flow CRUD plus search and duplicate, grounded on
// original_source/app/backend/repositories/flow_repository.py.
type FlowRepository struct {
	db *sql.DB
}

// NewFlowRepository wraps db. Callers are expected to have already run
// EnsureSchema.
func NewFlowRepository(db *sql.DB) *FlowRepository {
	return &FlowRepository{db: db}
}

// CreateFlow inserts a new flow and returns it with its assigned id and
// timestamps.
func (r *FlowRepository) CreateFlow(ctx context.Context, f Flow) (Flow, error) {
	res, err := r.db.ExecContext(ctx,
		`INSERT INTO flows (name, description, nodes, edges, viewport, data, is_template, tags)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?)`,
		f.Name, f.Description, f.Nodes, f.Edges, nullBytes(f.Viewport), nullBytes(f.Data), boolToInt(f.IsTemplate), nullBytes(f.Tags),
	)
	if err != nil {
		return Flow{}, fmt.Errorf("repository: create flow: %w", err)
	}
	id, err := res.LastInsertId()
	if err != nil {
		return Flow{}, fmt.Errorf("repository: create flow: last insert id: %w", err)
	}
	return r.GetFlowByID(ctx, id)
}

// GetFlowByID returns the flow with the given id, or sql.ErrNoRows if none
// exists.
func (r *FlowRepository) GetFlowByID(ctx context.Context, id int64) (Flow, error) {
	row := r.db.QueryRowContext(ctx,
		`SELECT id, name, description, nodes, edges, viewport, data, is_template, tags, created_at, updated_at
		 FROM flows WHERE id = ?`, id)
	return scanFlow(row)
}

// ListFlows returns every flow ordered by most-recently-updated first,
// optionally excluding templates.
func (r *FlowRepository) ListFlows(ctx context.Context, includeTemplates bool) ([]Flow, error) {
	query := `SELECT id, name, description, nodes, edges, viewport, data, is_template, tags, created_at, updated_at
	          FROM flows`
	if !includeTemplates {
		query += ` WHERE is_template = 0`
	}
	query += ` ORDER BY updated_at DESC, created_at DESC`

	rows, err := r.db.QueryContext(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("repository: list flows: %w", err)
	}
	defer rows.Close()
	return scanFlows(rows)
}

// SearchFlowsByName performs a case-insensitive substring search on name,
// most-recently-updated first (spec §4.8).
func (r *FlowRepository) SearchFlowsByName(ctx context.Context, name string) ([]Flow, error) {
	// SQLite's LIKE is already case-insensitive for ASCII without COLLATE
	// NOCASE, matching the reference repository's `ilike(f"%{name}%")`.
	rows, err := r.db.QueryContext(ctx,
		`SELECT id, name, description, nodes, edges, viewport, data, is_template, tags, created_at, updated_at
		 FROM flows WHERE name LIKE ? ESCAPE '\'
		 ORDER BY updated_at DESC, created_at DESC`,
		"%"+escapeLike(name)+"%",
	)
	if err != nil {
		return nil, fmt.Errorf("repository: search flows: %w", err)
	}
	defer rows.Close()
	return scanFlows(rows)
}

// FlowUpdate carries only the fields to change; a nil pointer leaves the
// corresponding column untouched, matching the reference repository's
// `name: str = None` partial-update contract.
type FlowUpdate struct {
	Name        *string
	Description *string
	Nodes       []byte
	Edges       []byte
	Viewport    []byte
	Data        []byte
	IsTemplate  *bool
	Tags        []byte
}

// UpdateFlow applies a partial update and returns the row as it stands
// after, or sql.ErrNoRows if the flow does not exist.
func (r *FlowRepository) UpdateFlow(ctx context.Context, id int64, upd FlowUpdate) (Flow, error) {
	if _, err := r.GetFlowByID(ctx, id); err != nil {
		return Flow{}, err
	}

	setClauses := []string{"updated_at = CURRENT_TIMESTAMP"}
	args := []any{}

	if upd.Name != nil {
		setClauses = append(setClauses, "name = ?")
		args = append(args, *upd.Name)
	}
	if upd.Description != nil {
		setClauses = append(setClauses, "description = ?")
		args = append(args, *upd.Description)
	}
	if upd.Nodes != nil {
		setClauses = append(setClauses, "nodes = ?")
		args = append(args, upd.Nodes)
	}
	if upd.Edges != nil {
		setClauses = append(setClauses, "edges = ?")
		args = append(args, upd.Edges)
	}
	if upd.Viewport != nil {
		setClauses = append(setClauses, "viewport = ?")
		args = append(args, upd.Viewport)
	}
	if upd.Data != nil {
		setClauses = append(setClauses, "data = ?")
		args = append(args, upd.Data)
	}
	if upd.IsTemplate != nil {
		setClauses = append(setClauses, "is_template = ?")
		args = append(args, boolToInt(*upd.IsTemplate))
	}
	if upd.Tags != nil {
		setClauses = append(setClauses, "tags = ?")
		args = append(args, upd.Tags)
	}

	query := "UPDATE flows SET " + joinClauses(setClauses) + " WHERE id = ?"
	args = append(args, id)
	if _, err := r.db.ExecContext(ctx, query, args...); err != nil {
		return Flow{}, fmt.Errorf("repository: update flow: %w", err)
	}
	return r.GetFlowByID(ctx, id)
}

// DeleteFlow removes the flow, reporting whether a row was deleted.
func (r *FlowRepository) DeleteFlow(ctx context.Context, id int64) (bool, error) {
	res, err := r.db.ExecContext(ctx, `DELETE FROM flows WHERE id = ?`, id)
	if err != nil {
		return false, fmt.Errorf("repository: delete flow: %w", err)
	}
	n, err := res.RowsAffected()
	return n > 0, err
}

// DuplicateFlow deep-copies a flow with is_template forced false and the
// name defaulting to "{orig} (Copy)" (spec §4.8).
func (r *FlowRepository) DuplicateFlow(ctx context.Context, id int64, newName string) (Flow, error) {
	orig, err := r.GetFlowByID(ctx, id)
	if err != nil {
		return Flow{}, err
	}
	if newName == "" {
		newName = orig.Name + " (Copy)"
	}
	return r.CreateFlow(ctx, Flow{
		Name:        newName,
		Description: orig.Description,
		Nodes:       orig.Nodes,
		Edges:       orig.Edges,
		Viewport:    orig.Viewport,
		Data:        orig.Data,
		IsTemplate:  false,
		Tags:        orig.Tags,
	})
}
