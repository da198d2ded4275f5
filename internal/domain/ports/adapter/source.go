// File: internal/domain/ports/adapter/source.go
package adapter

import (
	"context"

	"telegram-deploy-bot/internal/domain/model"
)

// SourceControl is the port for the source-control platform (GitHub).
type SourceControl interface {
	// TriggerWorkflow dispatches a named workflow file with a key-value input map.
	TriggerWorkflow(ctx context.Context, repo, workflowFile, ref string, inputs map[string]string) error
	// LatestRun returns the most recent workflow run for the repo.
	LatestRun(ctx context.Context, repo string) (*model.WorkflowRun, error)
	// ListRepos lists the configured owner's repositories; filter is a
	// case-insensitive substring match against name or description.
	ListRepos(ctx context.Context, filter string) ([]model.Repository, error)
	RepoExists(ctx context.Context, repo string) (bool, error)
	GetRepo(ctx context.Context, repo string) (*model.Repository, error)
	CreateRepo(ctx context.Context, name string, private bool) (*model.Repository, error)
}
