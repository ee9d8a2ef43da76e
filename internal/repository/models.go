// Package repository is the Flow + Run Repository (C8): a thin relational
// layer over two tables, `flows` and `flow_runs`, persisting saved DAG
// definitions and the run-status lifecycle of §3.
package repository

import "time"

// FlowRunStatus is the finite-state lifecycle of one FlowRun (spec §3).
type FlowRunStatus string

const (
	StatusIdle       FlowRunStatus = "IDLE"
	StatusInProgress FlowRunStatus = "IN_PROGRESS"
	StatusComplete   FlowRunStatus = "COMPLETE"
	StatusError      FlowRunStatus = "ERROR"
)

// Flow is a saved DAG definition: the React-Flow-shaped nodes/edges/viewport
// plus per-node data, carried as opaque JSON since the core treats the graph
// layout itself as external-UI concern (spec §1 non-goals: "UI, CLI
// formatting").
type Flow struct {
	ID          int64
	Name        string
	Description string
	Nodes       []byte // opaque JSON
	Edges       []byte // opaque JSON
	Viewport    []byte // opaque JSON, nullable
	Data        []byte // opaque JSON, nullable
	IsTemplate  bool
	Tags        []byte // opaque JSON array, nullable
	CreatedAt   time.Time
	UpdatedAt   time.Time
}

// FlowRun is one execution record scoped to a Flow.
type FlowRun struct {
	ID          int64
	FlowID      int64
	RunNumber   int
	Status      FlowRunStatus
	RequestData []byte // opaque JSON, nullable
	Results     []byte // opaque JSON, nullable
	ErrorMessage string
	StartedAt   *time.Time
	CompletedAt *time.Time
	CreatedAt   time.Time
	UpdatedAt   time.Time
}
