// File: internal/domain/ports/adapter/deploy.go
package adapter

import (
	"context"

	"telegram-deploy-bot/internal/domain/model"
)

// DeployPlatform is the port for the deployment platform (Vercel).
// Every operation converts transport failures into domain errors; callers
// never see raw HTTP status codes.
type DeployPlatform interface {
	ListProjects(ctx context.Context) ([]model.Project, error)
	GetProject(ctx context.Context, name string) (*model.Project, error)
	ListDeployments(ctx context.Context, project string, limit int) ([]model.Deployment, error)
	DeploymentEvents(ctx context.Context, deploymentID string, limit int) ([]model.DeploymentEvent, error)
	RuntimeLogs(ctx context.Context, project string, limit int, level string) ([]model.RuntimeLogEntry, error)
	PreviewURL(ctx context.Context, project, branch string) (string, error)

	TriggerDeployment(ctx context.Context, project string) (*model.Deployment, error)
	Rollback(ctx context.Context, project string) (*model.Deployment, error)
	CancelDeployment(ctx context.Context, deploymentID string) error

	ListDomains(ctx context.Context, project string) ([]model.DomainEntry, error)
	AddDomain(ctx context.Context, project, domain string) error
	ListEnv(ctx context.Context, project string) ([]model.EnvVar, error)
	SetEnv(ctx context.Context, project string, env model.EnvVar) error
}
