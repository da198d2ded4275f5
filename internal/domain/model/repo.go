// File: internal/domain/model/repo.go
package model

import "time"

// Repository is a source-control repository.
type Repository struct {
	Name        string
	FullName    string
	Description string
	Private     bool
	URL         string
	UpdatedAt   time.Time
}

// WorkflowRun is one automation run.
type WorkflowRun struct {
	ID         int64
	Name       string
	Status     string // queued | in_progress | completed
	Conclusion string // success | failure | cancelled | ""
	Branch     string
	URL        string
	CreatedAt  time.Time
}
