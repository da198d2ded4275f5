// File: internal/infra/adapters/vercel/client.go

// Package vercel implements the deployment-platform port against the Vercel
// REST API.
package vercel

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"telegram-deploy-bot/internal/domain"
	"telegram-deploy-bot/internal/domain/model"
	"telegram-deploy-bot/internal/domain/ports/adapter"
	"telegram-deploy-bot/internal/infra/metrics"
)

// Compile-time assurance this adapter satisfies the port
var _ adapter.DeployPlatform = (*Client)(nil)

type Client struct {
	token  string
	teamID string
	base   string // e.g., https://api.vercel.com
	client *http.Client
}

func NewClient(token, teamID, base string) (*Client, error) {
	if token == "" {
		return nil, errors.New("vercel token empty")
	}
	if base == "" {
		base = "https://api.vercel.com"
	}
	return &Client{
		token:  token,
		teamID: teamID,
		base:   strings.TrimRight(base, "/"),
		client: &http.Client{Timeout: 30 * time.Second},
	}, nil
}

// do issues one API call and decodes the response into out (when non-nil).
// Non-2xx statuses become domain errors; the raw transport never escapes.
func (c *Client) do(ctx context.Context, method, path string, query url.Values, body, out any) error {
	if query == nil {
		query = url.Values{}
	}
	if c.teamID != "" {
		query.Set("teamId", c.teamID)
	}
	u := c.base + path
	if enc := query.Encode(); enc != "" {
		u += "?" + enc
	}

	var rd io.Reader
	if body != nil {
		b, err := json.Marshal(body)
		if err != nil {
			return fmt.Errorf("encode request: %w", err)
		}
		rd = bytes.NewReader(b)
	}
	req, err := http.NewRequestWithContext(ctx, method, u, rd)
	if err != nil {
		return fmt.Errorf("build request: %w", err)
	}
	req.Header.Set("Authorization", "Bearer "+c.token)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	resp, err := c.client.Do(req)
	if err != nil {
		metrics.IncUpstream("vercel", "network_error")
		return fmt.Errorf("vercel: %v: %w", err, domain.ErrUpstream)
	}
	defer resp.Body.Close()

	switch {
	case resp.StatusCode == http.StatusNotFound:
		metrics.IncUpstream("vercel", "not_found")
		return fmt.Errorf("vercel: %w", domain.ErrNotFound)
	case resp.StatusCode >= 300:
		metrics.IncUpstream("vercel", "error")
		return fmt.Errorf("vercel http %d: %s: %w", resp.StatusCode, apiErrorMessage(resp.Body), domain.ErrUpstream)
	}
	metrics.IncUpstream("vercel", "ok")

	if out == nil {
		return nil
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("vercel: decode response: %v: %w", err, domain.ErrUpstream)
	}
	return nil
}

func apiErrorMessage(r io.Reader) string {
	var payload struct {
		Error struct {
			Message string `json:"message"`
		} `json:"error"`
	}
	if err := json.NewDecoder(io.LimitReader(r, 4096)).Decode(&payload); err == nil && payload.Error.Message != "" {
		return payload.Error.Message
	}
	return "request failed"
}

type projectJSON struct {
	ID        string `json:"id"`
	Name      string `json:"name"`
	Framework string `json:"framework"`
	UpdatedAt int64  `json:"updatedAt"`
}

func (p projectJSON) toModel() model.Project {
	return model.Project{
		ID:        p.ID,
		Name:      p.Name,
		Framework: p.Framework,
		UpdatedAt: time.UnixMilli(p.UpdatedAt),
	}
}

type deploymentJSON struct {
	UID     string `json:"uid"`
	ID      string `json:"id"`
	URL     string `json:"url"`
	State   string `json:"state"`
	Target  string `json:"target"`
	Created int64  `json:"created"`
	Meta    struct {
		Branch string `json:"githubCommitRef"`
	} `json:"meta"`
}

func (d deploymentJSON) toModel() model.Deployment {
	id := d.UID
	if id == "" {
		id = d.ID
	}
	return model.Deployment{
		ID:        id,
		URL:       d.URL,
		State:     d.State,
		Target:    d.Target,
		Branch:    d.Meta.Branch,
		CreatedAt: time.UnixMilli(d.Created),
	}
}

func (c *Client) ListProjects(ctx context.Context) ([]model.Project, error) {
	var payload struct {
		Projects []projectJSON `json:"projects"`
	}
	if err := c.do(ctx, http.MethodGet, "/v9/projects", nil, nil, &payload); err != nil {
		return nil, err
	}
	out := make([]model.Project, 0, len(payload.Projects))
	for _, p := range payload.Projects {
		out = append(out, p.toModel())
	}
	return out, nil
}

func (c *Client) GetProject(ctx context.Context, name string) (*model.Project, error) {
	var payload projectJSON
	if err := c.do(ctx, http.MethodGet, "/v9/projects/"+url.PathEscape(name), nil, nil, &payload); err != nil {
		return nil, err
	}
	p := payload.toModel()
	return &p, nil
}

func (c *Client) ListDeployments(ctx context.Context, project string, limit int) ([]model.Deployment, error) {
	if limit <= 0 {
		limit = 5
	}
	q := url.Values{}
	q.Set("projectId", project)
	q.Set("limit", fmt.Sprint(limit))
	var payload struct {
		Deployments []deploymentJSON `json:"deployments"`
	}
	if err := c.do(ctx, http.MethodGet, "/v6/deployments", q, nil, &payload); err != nil {
		return nil, err
	}
	out := make([]model.Deployment, 0, len(payload.Deployments))
	for _, d := range payload.Deployments {
		out = append(out, d.toModel())
	}
	return out, nil
}

func (c *Client) DeploymentEvents(ctx context.Context, deploymentID string, limit int) ([]model.DeploymentEvent, error) {
	if limit <= 0 {
		limit = 30
	}
	q := url.Values{}
	q.Set("limit", fmt.Sprint(limit))
	var payload []struct {
		Type    string `json:"type"`
		Created int64  `json:"created"`
		Payload struct {
			Text string `json:"text"`
		} `json:"payload"`
	}
	if err := c.do(ctx, http.MethodGet, "/v3/deployments/"+url.PathEscape(deploymentID)+"/events", q, nil, &payload); err != nil {
		return nil, err
	}
	out := make([]model.DeploymentEvent, 0, len(payload))
	for _, e := range payload {
		if e.Payload.Text == "" {
			continue
		}
		out = append(out, model.DeploymentEvent{
			CreatedAt: time.UnixMilli(e.Created),
			Type:      e.Type,
			Text:      e.Payload.Text,
		})
	}
	return out, nil
}

func (c *Client) RuntimeLogs(ctx context.Context, project string, limit int, level string) ([]model.RuntimeLogEntry, error) {
	if limit <= 0 {
		limit = 30
	}
	q := url.Values{}
	q.Set("limit", fmt.Sprint(limit))
	if level != "" {
		q.Set("level", strings.ToLower(level))
	}
	var payload struct {
		Logs []struct {
			Timestamp int64  `json:"timestamp"`
			Level     string `json:"level"`
			Message   string `json:"message"`
		} `json:"logs"`
	}
	if err := c.do(ctx, http.MethodGet, "/v1/projects/"+url.PathEscape(project)+"/logs", q, nil, &payload); err != nil {
		return nil, err
	}
	out := make([]model.RuntimeLogEntry, 0, len(payload.Logs))
	for _, l := range payload.Logs {
		out = append(out, model.RuntimeLogEntry{
			Timestamp: time.UnixMilli(l.Timestamp),
			Level:     l.Level,
			Message:   l.Message,
		})
	}
	return out, nil
}

func (c *Client) PreviewURL(ctx context.Context, project, branch string) (string, error) {
	q := url.Values{}
	q.Set("projectId", project)
	q.Set("target", "preview")
	q.Set("limit", "10")
	var payload struct {
		Deployments []deploymentJSON `json:"deployments"`
	}
	if err := c.do(ctx, http.MethodGet, "/v6/deployments", q, nil, &payload); err != nil {
		return "", err
	}
	for _, d := range payload.Deployments {
		if d.Meta.Branch == branch {
			return "https://" + d.URL, nil
		}
	}
	return "", fmt.Errorf("no preview deployment for branch %s: %w", branch, domain.ErrNotFound)
}

// TriggerDeployment starts a new production build of the project's default
// branch. Fire-and-begin: completion is checked later via status commands.
func (c *Client) TriggerDeployment(ctx context.Context, project string) (*model.Deployment, error) {
	body := map[string]any{
		"name":   project,
		"target": "production",
		"gitSource": map[string]any{
			"type": "github",
			"repo": project,
			"ref":  "main",
		},
	}
	var payload deploymentJSON
	if err := c.do(ctx, http.MethodPost, "/v13/deployments", nil, body, &payload); err != nil {
		return nil, err
	}
	d := payload.toModel()
	return &d, nil
}

// Rollback promotes the previous READY production deployment.
func (c *Client) Rollback(ctx context.Context, project string) (*model.Deployment, error) {
	deps, err := c.ListDeployments(ctx, project, 10)
	if err != nil {
		return nil, err
	}
	var target *model.Deployment
	ready := 0
	for i := range deps {
		if deps[i].State == model.DeployStateReady && deps[i].Target == "production" {
			ready++
			if ready == 2 { // the one before the current
				target = &deps[i]
				break
			}
		}
	}
	if target == nil {
		return nil, fmt.Errorf("no prior ready deployment: %w", domain.ErrNotFound)
	}
	path := "/v10/projects/" + url.PathEscape(project) + "/promote/" + url.PathEscape(target.ID)
	if err := c.do(ctx, http.MethodPost, path, nil, nil, nil); err != nil {
		return nil, err
	}
	return target, nil
}

func (c *Client) CancelDeployment(ctx context.Context, deploymentID string) error {
	path := "/v12/deployments/" + url.PathEscape(deploymentID) + "/cancel"
	return c.do(ctx, http.MethodPatch, path, nil, nil, nil)
}

func (c *Client) ListDomains(ctx context.Context, project string) ([]model.DomainEntry, error) {
	var payload struct {
		Domains []struct {
			Name     string `json:"name"`
			Verified bool   `json:"verified"`
		} `json:"domains"`
	}
	if err := c.do(ctx, http.MethodGet, "/v9/projects/"+url.PathEscape(project)+"/domains", nil, nil, &payload); err != nil {
		return nil, err
	}
	out := make([]model.DomainEntry, 0, len(payload.Domains))
	for _, d := range payload.Domains {
		out = append(out, model.DomainEntry{Name: d.Name, Verified: d.Verified})
	}
	return out, nil
}

func (c *Client) AddDomain(ctx context.Context, project, domainName string) error {
	body := map[string]string{"name": domainName}
	return c.do(ctx, http.MethodPost, "/v9/projects/"+url.PathEscape(project)+"/domains", nil, body, nil)
}

func (c *Client) ListEnv(ctx context.Context, project string) ([]model.EnvVar, error) {
	var payload struct {
		Envs []struct {
			Key    string   `json:"key"`
			Target []string `json:"target"`
		} `json:"envs"`
	}
	if err := c.do(ctx, http.MethodGet, "/v9/projects/"+url.PathEscape(project)+"/env", nil, nil, &payload); err != nil {
		return nil, err
	}
	out := make([]model.EnvVar, 0, len(payload.Envs))
	for _, e := range payload.Envs {
		// Values are never fetched; names and targets are enough for chat.
		out = append(out, model.EnvVar{Key: e.Key, Target: e.Target})
	}
	return out, nil
}

func (c *Client) SetEnv(ctx context.Context, project string, env model.EnvVar) error {
	target := env.Target
	if len(target) == 0 {
		target = []string{"production", "preview", "development"}
	}
	body := map[string]any{
		"key":    env.Key,
		"value":  env.Value,
		"type":   "encrypted",
		"target": target,
	}
	return c.do(ctx, http.MethodPost, "/v10/projects/"+url.PathEscape(project)+"/env", nil, body, nil)
}
