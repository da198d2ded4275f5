// File: internal/application/handlers_info.go
package application

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"telegram-deploy-bot/internal/domain"
	"telegram-deploy-bot/internal/format"
	"telegram-deploy-bot/internal/parse"
)

const helpText = `🤖 Deployment command center

Info:
/projects — list projects
/status <project> — latest deployment state
/deployments <project> — recent deployments
/logs <project> — build log of the latest deployment
/runtime <project> [level] — runtime logs
/domains <project> — attached domains
/env <project> — env variable names
/preview <project> [branch] — preview URL for a branch
/repos [filter] — repositories
/runstatus <repo> — latest workflow run
/ping — liveness and configured capabilities

Deploy:
/deploy <project> — trigger a deployment
/rollback <project> — promote the previous good deployment
/cancel <project> — cancel the in-flight deployment
/setenv <project> <KEY> <value> — upsert an env variable
/adddomain <project> <domain> — attach a domain

Repos:
/create <repo> — create a repository
/workflow <repo> <file> [k=v ...] — dispatch a workflow

AI:
/chat <prompt> — free-form chat
/research <topic> — research brief
/review <repo> — architecture review checklist
/fix <project> <what to fix> — draft a fix and dispatch the fix workflow
/component <ComponentName> [description] — generate a UI component
/pitch "<business>" <sector> — landing page pitch
/roi "<business>" <sector> — ROI estimate
/copy "<business>" <sector> — website hero copy
/seo <project> — SEO audit checklist
/speedtest <project> — performance checklist
/translate <text> — translate to Spanish`

func (d *Dispatcher) handleStart(ctx context.Context, c call) error {
	name := c.callerName
	if name == "" {
		name = "there"
	}
	d.reply(ctx, c.conv, fmt.Sprintf("👋 Hi %s! I run your deployments, repositories, and AI chores from chat. See /help for the full command list.", name))
	return nil
}

func (d *Dispatcher) handleHelp(ctx context.Context, c call) error {
	d.reply(ctx, c.conv, helpText)
	return nil
}

func (d *Dispatcher) handlePing(ctx context.Context, c call) error {
	mark := func(ok bool) string {
		if ok {
			return "✅"
		}
		return "➖"
	}
	d.reply(ctx, c.conv, fmt.Sprintf("🏓 pong\ndeployments %s  repositories %s  ai %s",
		mark(d.deploy != nil), mark(d.source != nil), mark(d.ai != nil)))
	return nil
}

func (d *Dispatcher) handleProjects(ctx context.Context, c call) error {
	api, err := d.deployAPI()
	if err != nil {
		return err
	}
	projects, err := api.ListProjects(ctx)
	if err != nil {
		return err
	}
	d.reply(ctx, c.conv, format.Projects(projects))
	return nil
}

func (d *Dispatcher) handleStatus(ctx context.Context, c call) error {
	api, err := d.deployAPI()
	if err != nil {
		return err
	}
	if len(c.args) < 1 {
		return usageError{usage: "/status <project>"}
	}
	project := normalizeProject(c.args[0])
	deps, err := api.ListDeployments(ctx, project, 1)
	if errors.Is(err, domain.ErrNotFound) || (err == nil && len(deps) == 0) {
		d.reply(ctx, c.conv, fmt.Sprintf("❌ Project not found: %s. Try /projects.", project))
		return nil
	}
	if err != nil {
		return err
	}
	d.reply(ctx, c.conv, format.ProjectStatus(project, &deps[0]))
	return nil
}

func (d *Dispatcher) handleDeployments(ctx context.Context, c call) error {
	api, err := d.deployAPI()
	if err != nil {
		return err
	}
	if len(c.args) < 1 {
		return usageError{usage: "/deployments <project>"}
	}
	project := normalizeProject(c.args[0])
	deps, err := api.ListDeployments(ctx, project, 5)
	if errors.Is(err, domain.ErrNotFound) {
		d.reply(ctx, c.conv, fmt.Sprintf("❌ Project not found: %s. Try /projects.", project))
		return nil
	}
	if err != nil {
		return err
	}
	d.reply(ctx, c.conv, format.Deployments(project, deps))
	return nil
}

func (d *Dispatcher) handleLogs(ctx context.Context, c call) error {
	api, err := d.deployAPI()
	if err != nil {
		return err
	}
	if len(c.args) < 1 {
		return usageError{usage: "/logs <project>"}
	}
	project := normalizeProject(c.args[0])
	deps, err := api.ListDeployments(ctx, project, 1)
	if err != nil {
		return err
	}
	if len(deps) == 0 {
		d.reply(ctx, c.conv, fmt.Sprintf("No deployments found for %s.", project))
		return nil
	}
	events, err := api.DeploymentEvents(ctx, deps[0].ID, 50)
	if err != nil {
		return err
	}
	d.reply(ctx, c.conv, format.BuildEvents(project, events))
	return nil
}

func (d *Dispatcher) handleRuntime(ctx context.Context, c call) error {
	api, err := d.deployAPI()
	if err != nil {
		return err
	}
	if len(c.args) < 1 {
		return usageError{usage: "/runtime <project> [level]"}
	}
	project := normalizeProject(c.args[0])
	level := ""
	if len(c.args) > 1 {
		level = strings.ToLower(c.args[1])
	}
	entries, err := api.RuntimeLogs(ctx, project, 50, level)
	if err != nil {
		return err
	}
	d.reply(ctx, c.conv, format.RuntimeLogs(project, entries))
	return nil
}

func (d *Dispatcher) handleDomains(ctx context.Context, c call) error {
	api, err := d.deployAPI()
	if err != nil {
		return err
	}
	if len(c.args) < 1 {
		return usageError{usage: "/domains <project>"}
	}
	project := normalizeProject(c.args[0])
	domains, err := api.ListDomains(ctx, project)
	if err != nil {
		return err
	}
	d.reply(ctx, c.conv, format.Domains(project, domains))
	return nil
}

func (d *Dispatcher) handleEnv(ctx context.Context, c call) error {
	api, err := d.deployAPI()
	if err != nil {
		return err
	}
	if len(c.args) < 1 {
		return usageError{usage: "/env <project>"}
	}
	project := normalizeProject(c.args[0])
	vars, err := api.ListEnv(ctx, project)
	if err != nil {
		return err
	}
	d.reply(ctx, c.conv, format.EnvNames(project, vars))
	return nil
}

func (d *Dispatcher) handlePreview(ctx context.Context, c call) error {
	api, err := d.deployAPI()
	if err != nil {
		return err
	}
	if len(c.args) < 1 {
		return usageError{usage: "/preview <project> [branch]"}
	}
	project := normalizeProject(c.args[0])
	branch := "main"
	if len(c.args) > 1 {
		branch = c.args[1]
	}
	url, err := api.PreviewURL(ctx, project, branch)
	if errors.Is(err, domain.ErrNotFound) {
		d.reply(ctx, c.conv, fmt.Sprintf("No preview deployment found for %s on branch %s.", project, branch))
		return nil
	}
	if err != nil {
		return err
	}
	d.reply(ctx, c.conv, fmt.Sprintf("🔍 Preview of %s (%s):\nhttps://%s", project, branch, strings.TrimPrefix(url, "https://")))
	return nil
}

func (d *Dispatcher) handleRepos(ctx context.Context, c call) error {
	api, err := d.sourceAPI()
	if err != nil {
		return err
	}
	filter := ""
	if len(c.args) > 0 {
		filter = c.args[0]
	}
	repos, err := api.ListRepos(ctx, filter)
	if err != nil {
		return err
	}
	d.reply(ctx, c.conv, format.Repositories(repos))
	return nil
}

func (d *Dispatcher) handleRunStatus(ctx context.Context, c call) error {
	api, err := d.sourceAPI()
	if err != nil {
		return err
	}
	if len(c.args) < 1 {
		return usageError{usage: "/runstatus <repo>"}
	}
	repo := normalizeProject(c.args[0])
	run, err := api.LatestRun(ctx, repo)
	if errors.Is(err, domain.ErrNotFound) {
		d.reply(ctx, c.conv, fmt.Sprintf("No workflow runs found for %s.", repo))
		return nil
	}
	if err != nil {
		return err
	}
	d.reply(ctx, c.conv, format.WorkflowRun(repo, run))
	return nil
}

// normalizeProject collapses a URL or owner/name path to a bare identifier
// and lowercases it, so pasted links work anywhere a project name is taken.
func normalizeProject(token string) string {
	return strings.ToLower(parse.ExtractIdentifier(strings.TrimSpace(token)))
}
