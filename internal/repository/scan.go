package repository

import (
	"database/sql"
	"strings"
)

type rowScanner interface {
	Scan(dest ...any) error
}

func scanFlow(row rowScanner) (Flow, error) {
	var f Flow
	var description, viewport, data, tags sql.NullString
	var updatedAt sql.NullTime
	var isTemplate int

	err := row.Scan(&f.ID, &f.Name, &description, &f.Nodes, &f.Edges, &viewport, &data, &isTemplate, &tags, &f.CreatedAt, &updatedAt)
	if err != nil {
		return Flow{}, err
	}
	f.Description = description.String
	f.Viewport = []byte(viewport.String)
	f.Data = []byte(data.String)
	f.Tags = []byte(tags.String)
	f.IsTemplate = isTemplate != 0
	if updatedAt.Valid {
		f.UpdatedAt = updatedAt.Time
	}
	return f, nil
}

func scanFlows(rows *sql.Rows) ([]Flow, error) {
	var out []Flow
	for rows.Next() {
		f, err := scanFlow(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, f)
	}
	return out, rows.Err()
}

func scanFlowRun(row rowScanner) (FlowRun, error) {
	var fr FlowRun
	var requestData, results, errorMessage sql.NullString
	var startedAt, completedAt, updatedAt sql.NullTime
	var status string

	err := row.Scan(&fr.ID, &fr.FlowID, &fr.RunNumber, &status, &requestData, &results, &errorMessage, &startedAt, &completedAt, &fr.CreatedAt, &updatedAt)
	if err != nil {
		return FlowRun{}, err
	}
	fr.Status = FlowRunStatus(status)
	fr.RequestData = []byte(requestData.String)
	fr.Results = []byte(results.String)
	fr.ErrorMessage = errorMessage.String
	if startedAt.Valid {
		t := startedAt.Time
		fr.StartedAt = &t
	}
	if completedAt.Valid {
		t := completedAt.Time
		fr.CompletedAt = &t
	}
	if updatedAt.Valid {
		fr.UpdatedAt = updatedAt.Time
	}
	return fr, nil
}

func scanFlowRuns(rows *sql.Rows) ([]FlowRun, error) {
	var out []FlowRun
	for rows.Next() {
		fr, err := scanFlowRun(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, fr)
	}
	return out, rows.Err()
}

func nullBytes(b []byte) any {
	if b == nil {
		return nil
	}
	return b
}

func boolToInt(b bool) int {
	if b {
		return 1
	}
	return 0
}

func joinClauses(clauses []string) string {
	return strings.Join(clauses, ", ")
}

// escapeLike escapes SQL LIKE metacharacters so a ticker or flow name
// containing `%`/`_` is matched literally rather than as a wildcard.
func escapeLike(s string) string {
	replacer := strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`)
	return replacer.Replace(s)
}
