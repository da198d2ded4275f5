// File: internal/domain/model/deploy.go
package model

import "time"

// Deployment lifecycle states as reported by the platform.
const (
	DeployStateQueued       = "QUEUED"
	DeployStateBuilding     = "BUILDING"
	DeployStateInitializing = "INITIALIZING"
	DeployStateReady        = "READY"
	DeployStateError        = "ERROR"
	DeployStateCanceled     = "CANCELED"
)

// Project is a deployment-platform project.
type Project struct {
	ID        string
	Name      string
	Framework string
	UpdatedAt time.Time
}

// Deployment is one build-and-publish attempt of a project.
type Deployment struct {
	ID        string
	URL       string
	State     string
	Target    string // production | preview
	Branch    string
	CreatedAt time.Time
}

// DeploymentEvent is one build log line.
type DeploymentEvent struct {
	CreatedAt time.Time
	Type      string
	Text      string
}

// RuntimeLogEntry is one runtime (function) log record.
type RuntimeLogEntry struct {
	Timestamp time.Time
	Level     string
	Message   string
}

// EnvVar is an environment variable's metadata. Value is kept only so the
// adapter can create variables; formatters must never render it.
type EnvVar struct {
	Key    string
	Value  string
	Target []string
}

// DomainEntry is a custom domain attached to a project.
type DomainEntry struct {
	Name     string
	Verified bool
}
