// File: internal/infra/adapters/github/client.go

// Package github implements the source-control port against the GitHub REST
// API.
package github

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
var _ adapter.SourceControl = (*Client)(nil)

type Client struct {
	token  string
	owner  string
	base   string // e.g., https://api.github.com
	client *http.Client
}

func NewClient(token, owner, base string) (*Client, error) {
	if token == "" {
		return nil, errors.New("github token empty")
	}
	if owner == "" {
		return nil, errors.New("github owner empty")
	}
	if base == "" {
		base = "https://api.github.com"
	}
	return &Client{
		token:  token,
		owner:  owner,
		base:   strings.TrimRight(base, "/"),
		client: &http.Client{Timeout: 30 * time.Second},
	}, nil
}

func (c *Client) do(ctx context.Context, method, path string, body, out any) (int, error) {
	var rd io.Reader
	if body != nil {
		b, err := json.Marshal(body)
		if err != nil {
			return 0, fmt.Errorf("encode request: %w", err)
		}
		rd = bytes.NewReader(b)
	}
	req, err := http.NewRequestWithContext(ctx, method, c.base+path, rd)
	if err != nil {
		return 0, fmt.Errorf("build request: %w", err)
	}
	req.Header.Set("Authorization", "Bearer "+c.token)
	req.Header.Set("Accept", "application/vnd.github+json")
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	resp, err := c.client.Do(req)
	if err != nil {
		metrics.IncUpstream("github", "network_error")
		return 0, fmt.Errorf("github: %v: %w", err, domain.ErrUpstream)
	}
	defer resp.Body.Close()

	switch {
	case resp.StatusCode == http.StatusNotFound:
		metrics.IncUpstream("github", "not_found")
		return resp.StatusCode, fmt.Errorf("github: %w", domain.ErrNotFound)
	case resp.StatusCode >= 300:
		metrics.IncUpstream("github", "error")
		return resp.StatusCode, fmt.Errorf("github http %d: %s: %w", resp.StatusCode, apiErrorMessage(resp.Body), domain.ErrUpstream)
	}
	metrics.IncUpstream("github", "ok")

	if out != nil {
		if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
			return resp.StatusCode, fmt.Errorf("github: decode response: %v: %w", err, domain.ErrUpstream)
		}
	}
	return resp.StatusCode, nil
}

func apiErrorMessage(r io.Reader) string {
	var payload struct {
		Message string `json:"message"`
	}
	if err := json.NewDecoder(io.LimitReader(r, 4096)).Decode(&payload); err == nil && payload.Message != "" {
		return payload.Message
	}
	return "request failed"
}

type repoJSON struct {
	Name        string    `json:"name"`
	FullName    string    `json:"full_name"`
	Description string    `json:"description"`
	Private     bool      `json:"private"`
	HTMLURL     string    `json:"html_url"`
	UpdatedAt   time.Time `json:"updated_at"`
}

func (r repoJSON) toModel() model.Repository {
	return model.Repository{
		Name:        r.Name,
		FullName:    r.FullName,
		Description: r.Description,
		Private:     r.Private,
		URL:         r.HTMLURL,
		UpdatedAt:   r.UpdatedAt,
	}
}

func (c *Client) repoPath(repo string) string {
	return "/repos/" + url.PathEscape(c.owner) + "/" + url.PathEscape(repo)
}

func (c *Client) TriggerWorkflow(ctx context.Context, repo, workflowFile, ref string, inputs map[string]string) error {
	if ref == "" {
		ref = "main"
	}
	body := map[string]any{"ref": ref}
	if len(inputs) > 0 {
		body["inputs"] = inputs
	}
	path := c.repoPath(repo) + "/actions/workflows/" + url.PathEscape(workflowFile) + "/dispatches"
	_, err := c.do(ctx, http.MethodPost, path, body, nil)
	return err
}

func (c *Client) LatestRun(ctx context.Context, repo string) (*model.WorkflowRun, error) {
	var payload struct {
		WorkflowRuns []struct {
			ID         int64     `json:"id"`
			Name       string    `json:"name"`
			Status     string    `json:"status"`
			Conclusion string    `json:"conclusion"`
			HeadBranch string    `json:"head_branch"`
			HTMLURL    string    `json:"html_url"`
			CreatedAt  time.Time `json:"created_at"`
		} `json:"workflow_runs"`
	}
	if _, err := c.do(ctx, http.MethodGet, c.repoPath(repo)+"/actions/runs?per_page=1", nil, &payload); err != nil {
		return nil, err
	}
	if len(payload.WorkflowRuns) == 0 {
		return nil, fmt.Errorf("no workflow runs: %w", domain.ErrNotFound)
	}
	r := payload.WorkflowRuns[0]
	return &model.WorkflowRun{
		ID:         r.ID,
		Name:       r.Name,
		Status:     r.Status,
		Conclusion: r.Conclusion,
		Branch:     r.HeadBranch,
		URL:        r.HTMLURL,
		CreatedAt:  r.CreatedAt,
	}, nil
}

func (c *Client) ListRepos(ctx context.Context, filter string) ([]model.Repository, error) {
	var payload []repoJSON
	path := "/users/" + url.PathEscape(c.owner) + "/repos?per_page=100&sort=updated"
	if _, err := c.do(ctx, http.MethodGet, path, nil, &payload); err != nil {
		return nil, err
	}
	filter = strings.ToLower(filter)
	out := make([]model.Repository, 0, len(payload))
	for _, r := range payload {
		if filter != "" &&
			!strings.Contains(strings.ToLower(r.Name), filter) &&
			!strings.Contains(strings.ToLower(r.Description), filter) {
			continue
		}
		out = append(out, r.toModel())
	}
	return out, nil
}

func (c *Client) RepoExists(ctx context.Context, repo string) (bool, error) {
	_, err := c.do(ctx, http.MethodGet, c.repoPath(repo), nil, nil)
	if err == nil {
		return true, nil
	}
	if errors.Is(err, domain.ErrNotFound) {
		return false, nil
	}
	return false, err
}

func (c *Client) GetRepo(ctx context.Context, repo string) (*model.Repository, error) {
	var payload repoJSON
	if _, err := c.do(ctx, http.MethodGet, c.repoPath(repo), nil, &payload); err != nil {
		return nil, err
	}
	r := payload.toModel()
	return &r, nil
}

func (c *Client) CreateRepo(ctx context.Context, name string, private bool) (*model.Repository, error) {
	body := map[string]any{"name": name, "private": private, "auto_init": true}
	var payload repoJSON
	if _, err := c.do(ctx, http.MethodPost, "/user/repos", body, &payload); err != nil {
		return nil, err
	}
	r := payload.toModel()
	return &r, nil
}
