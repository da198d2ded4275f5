package github

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"telegram-deploy-bot/internal/domain"
)

func newTestClient(t *testing.T, handler http.HandlerFunc) *Client {
	t.Helper()
	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)
	c, err := NewClient("gh-token", "acme", srv.URL)
	if err != nil {
		t.Fatalf("NewClient: %v", err)
	}
	return c
}

func TestNewClientValidation(t *testing.T) {
	if _, err := NewClient("", "acme", ""); err == nil {
		t.Error("want error for empty token")
	}
	if _, err := NewClient("tok", "", ""); err == nil {
		t.Error("want error for empty owner")
	}
}

func TestTriggerWorkflow(t *testing.T) {
	var gotBody map[string]any
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/repos/acme/my-repo/actions/workflows/deploy.yml/dispatches" {
			t.Errorf("path = %s", r.URL.Path)
		}
		json.NewDecoder(r.Body).Decode(&gotBody)
		w.WriteHeader(http.StatusNoContent)
	})

	err := c.TriggerWorkflow(context.Background(), "my-repo", "deploy.yml", "", map[string]string{"env": "prod"})
	if err != nil {
		t.Fatalf("TriggerWorkflow: %v", err)
	}
	if gotBody["ref"] != "main" {
		t.Errorf("default ref = %v", gotBody["ref"])
	}
	inputs, _ := gotBody["inputs"].(map[string]any)
	if inputs["env"] != "prod" {
		t.Errorf("inputs = %v", gotBody["inputs"])
	}
}

func TestLatestRun(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		json.NewEncoder(w).Encode(map[string]any{
			"workflow_runs": []map[string]any{
				{"id": 42, "name": "CI", "status": "completed", "conclusion": "success", "head_branch": "main"},
			},
		})
	})
	run, err := c.LatestRun(context.Background(), "my-repo")
	if err != nil {
		t.Fatalf("LatestRun: %v", err)
	}
	if run.ID != 42 || run.Conclusion != "success" {
		t.Errorf("run = %+v", run)
	}
}

func TestLatestRunEmpty(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		json.NewEncoder(w).Encode(map[string]any{"workflow_runs": []any{}})
	})
	if _, err := c.LatestRun(context.Background(), "my-repo"); !errors.Is(err, domain.ErrNotFound) {
		t.Fatalf("want ErrNotFound, got %v", err)
	}
}

func TestListReposFilter(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		json.NewEncoder(w).Encode([]map[string]any{
			{"name": "simmer-down", "description": "Restaurant site"},
			{"name": "other", "description": "A RESTAURANT backend"},
			{"name": "unrelated", "description": "tooling"},
		})
	})

	repos, err := c.ListRepos(context.Background(), "restaurant")
	if err != nil {
		t.Fatalf("ListRepos: %v", err)
	}
	if len(repos) != 2 {
		t.Fatalf("filtered repos = %+v", repos)
	}

	all, err := c.ListRepos(context.Background(), "")
	if err != nil {
		t.Fatalf("ListRepos: %v", err)
	}
	if len(all) != 3 {
		t.Errorf("unfiltered repos = %d", len(all))
	}
}

func TestRepoExists(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path == "/repos/acme/present" {
			w.WriteHeader(http.StatusOK)
			w.Write([]byte("{}"))
			return
		}
		http.Error(w, `{"message":"Not Found"}`, http.StatusNotFound)
	})

	ok, err := c.RepoExists(context.Background(), "present")
	if err != nil || !ok {
		t.Errorf("present: ok=%v err=%v", ok, err)
	}
	ok, err = c.RepoExists(context.Background(), "absent")
	if err != nil || ok {
		t.Errorf("absent: ok=%v err=%v", ok, err)
	}
}

func TestCreateRepo(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodPost || r.URL.Path != "/user/repos" {
			t.Errorf("%s %s", r.Method, r.URL.Path)
		}
		w.WriteHeader(http.StatusCreated)
		json.NewEncoder(w).Encode(map[string]any{
			"name": "new-site", "full_name": "acme/new-site", "private": true, "html_url": "https://example.test/acme/new-site",
		})
	})
	repo, err := c.CreateRepo(context.Background(), "new-site", true)
	if err != nil {
		t.Fatalf("CreateRepo: %v", err)
	}
	if repo.FullName != "acme/new-site" || !repo.Private {
		t.Errorf("repo = %+v", repo)
	}
}
