// File: internal/application/dispatcher_test.go
package application_test

import (
	"context"
	"strings"
	"testing"

	"github.com/rs/zerolog"

	"telegram-deploy-bot/internal/application"
	"telegram-deploy-bot/internal/domain"
	"telegram-deploy-bot/internal/domain/model"
)

// ---- fakes ----

type sentMessage struct {
	conv int64
	text string
}

type fakeTransport struct {
	sent   []sentMessage
	typing int
}

func (f *fakeTransport) SendMessage(ctx context.Context, conv int64, text string) error {
	f.sent = append(f.sent, sentMessage{conv: conv, text: text})
	return nil
}

func (f *fakeTransport) SendTyping(ctx context.Context, conv int64) error {
	f.typing++
	return nil
}

type fakeDeploy struct {
	projects    []model.Project
	deployments map[string][]model.Deployment
	env         map[string][]model.EnvVar
	domains     map[string][]model.DomainEntry

	triggered []string
	canceled  []string
	setEnv    []model.EnvVar

	trigger func(project string) (*model.Deployment, error)
	calls   int
}

func (f *fakeDeploy) ListProjects(ctx context.Context) ([]model.Project, error) {
	f.calls++
	return f.projects, nil
}

func (f *fakeDeploy) GetProject(ctx context.Context, name string) (*model.Project, error) {
	f.calls++
	for i := range f.projects {
		if f.projects[i].Name == name {
			return &f.projects[i], nil
		}
	}
	return nil, domain.ErrNotFound
}

func (f *fakeDeploy) ListDeployments(ctx context.Context, project string, limit int) ([]model.Deployment, error) {
	f.calls++
	deps, ok := f.deployments[project]
	if !ok {
		return nil, domain.ErrNotFound
	}
	if len(deps) > limit {
		deps = deps[:limit]
	}
	return deps, nil
}

func (f *fakeDeploy) DeploymentEvents(ctx context.Context, deploymentID string, limit int) ([]model.DeploymentEvent, error) {
	f.calls++
	return []model.DeploymentEvent{{Text: "build log line for " + deploymentID}}, nil
}

func (f *fakeDeploy) RuntimeLogs(ctx context.Context, project string, limit int, level string) ([]model.RuntimeLogEntry, error) {
	f.calls++
	return nil, nil
}

func (f *fakeDeploy) PreviewURL(ctx context.Context, project, branch string) (string, error) {
	f.calls++
	return "", domain.ErrNotFound
}

func (f *fakeDeploy) TriggerDeployment(ctx context.Context, project string) (*model.Deployment, error) {
	f.calls++
	f.triggered = append(f.triggered, project)
	if f.trigger != nil {
		return f.trigger(project)
	}
	return &model.Deployment{ID: "dpl_abcdef123456", URL: project + "-xy12ab34.vercel.app", State: model.DeployStateQueued}, nil
}

func (f *fakeDeploy) Rollback(ctx context.Context, project string) (*model.Deployment, error) {
	f.calls++
	return &model.Deployment{ID: "dpl_previous9999", State: model.DeployStateReady}, nil
}

func (f *fakeDeploy) CancelDeployment(ctx context.Context, deploymentID string) error {
	f.calls++
	f.canceled = append(f.canceled, deploymentID)
	return nil
}

func (f *fakeDeploy) ListDomains(ctx context.Context, project string) ([]model.DomainEntry, error) {
	f.calls++
	return f.domains[project], nil
}

func (f *fakeDeploy) AddDomain(ctx context.Context, project, dom string) error {
	f.calls++
	return nil
}

func (f *fakeDeploy) ListEnv(ctx context.Context, project string) ([]model.EnvVar, error) {
	f.calls++
	return f.env[project], nil
}

func (f *fakeDeploy) SetEnv(ctx context.Context, project string, env model.EnvVar) error {
	f.calls++
	f.setEnv = append(f.setEnv, env)
	return nil
}

type fakeSource struct {
	repos     []model.Repository
	workflows []map[string]string
	created   []string
}

func (f *fakeSource) TriggerWorkflow(ctx context.Context, repo, file, ref string, inputs map[string]string) error {
	record := map[string]string{"repo": repo, "file": file}
	for k, v := range inputs {
		record[k] = v
	}
	f.workflows = append(f.workflows, record)
	return nil
}

func (f *fakeSource) LatestRun(ctx context.Context, repo string) (*model.WorkflowRun, error) {
	return nil, domain.ErrNotFound
}

func (f *fakeSource) ListRepos(ctx context.Context, filter string) ([]model.Repository, error) {
	return f.repos, nil
}

func (f *fakeSource) RepoExists(ctx context.Context, repo string) (bool, error) {
	for _, r := range f.repos {
		if r.Name == repo {
			return true, nil
		}
	}
	return false, nil
}

func (f *fakeSource) GetRepo(ctx context.Context, repo string) (*model.Repository, error) {
	for i := range f.repos {
		if f.repos[i].Name == repo {
			return &f.repos[i], nil
		}
	}
	return nil, domain.ErrNotFound
}

func (f *fakeSource) CreateRepo(ctx context.Context, name string, private bool) (*model.Repository, error) {
	f.created = append(f.created, name)
	return &model.Repository{Name: name, Private: private, URL: "https://github.com/acme/" + name}, nil
}

type fakeAI struct {
	reply   string
	err     error
	prompts []string
}

func (f *fakeAI) Complete(ctx context.Context, prompt string) (string, error) {
	f.prompts = append(f.prompts, prompt)
	return f.reply, f.err
}

func (f *fakeAI) Model() string { return "fake-model" }

// ---- helpers ----

func newDispatcher(t *testing.T, deps application.Deps) *application.Dispatcher {
	t.Helper()
	log := zerolog.Nop()
	deps.Log = &log
	if deps.AllowedIDs == nil {
		deps.AllowedIDs = []int64{100}
	}
	return application.NewDispatcher(deps)
}

func incoming(text string) model.IncomingCommand {
	return model.IncomingCommand{ConversationID: 7, CallerID: 100, CallerName: "ops", RawText: text}
}

// ---- tests ----

func TestDispatcherDeniesUnknownCaller(t *testing.T) {
	tr := &fakeTransport{}
	dep := &fakeDeploy{}
	d := newDispatcher(t, application.Deps{Transport: tr, Deploy: dep, AllowedIDs: []int64{100}})

	in := incoming("/projects")
	in.CallerID = 999
	d.HandleCommand(context.Background(), in)

	if len(tr.sent) != 1 {
		t.Fatalf("sent %d messages, want exactly 1", len(tr.sent))
	}
	if !strings.Contains(tr.sent[0].text, "not authorized") {
		t.Errorf("unexpected denial text: %q", tr.sent[0].text)
	}
	if dep.calls != 0 {
		t.Errorf("denied caller reached the deploy adapter (%d calls)", dep.calls)
	}
}

func TestDispatcherEmptyAllowListDeniesEveryone(t *testing.T) {
	tr := &fakeTransport{}
	d := newDispatcher(t, application.Deps{Transport: tr, AllowedIDs: []int64{}})

	d.HandleCommand(context.Background(), incoming("/ping"))

	if len(tr.sent) != 1 || !strings.Contains(tr.sent[0].text, "not authorized") {
		t.Fatalf("want a single denial, got %v", tr.sent)
	}
}

func TestDispatcherNonCommandText(t *testing.T) {
	tr := &fakeTransport{}
	d := newDispatcher(t, application.Deps{Transport: tr})

	d.HandleCommand(context.Background(), incoming("hello there"))

	if len(tr.sent) != 1 || !strings.Contains(tr.sent[0].text, "/help") {
		t.Fatalf("want a help pointer, got %v", tr.sent)
	}
}

func TestDispatcherUnknownCommand(t *testing.T) {
	tr := &fakeTransport{}
	d := newDispatcher(t, application.Deps{Transport: tr})

	d.HandleCommand(context.Background(), incoming("/frobnicate widget"))

	if len(tr.sent) != 1 {
		t.Fatalf("sent %d messages, want 1", len(tr.sent))
	}
	got := tr.sent[0].text
	if !strings.Contains(got, "/frobnicate") || !strings.Contains(got, "/help") {
		t.Errorf("unexpected unknown-command reply: %q", got)
	}
}

func TestStatusMissingArgument(t *testing.T) {
	tr := &fakeTransport{}
	d := newDispatcher(t, application.Deps{Transport: tr, Deploy: &fakeDeploy{}})

	d.HandleCommand(context.Background(), incoming("/status"))

	if len(tr.sent) != 1 || !strings.Contains(tr.sent[0].text, "usage: /status <project>") {
		t.Fatalf("want usage line, got %v", tr.sent)
	}
}

func TestStatusUnknownProject(t *testing.T) {
	tr := &fakeTransport{}
	dep := &fakeDeploy{deployments: map[string][]model.Deployment{}}
	d := newDispatcher(t, application.Deps{Transport: tr, Deploy: dep})

	d.HandleCommand(context.Background(), incoming("/status ghost"))

	if len(tr.sent) != 1 {
		t.Fatalf("sent %d messages, want 1", len(tr.sent))
	}
	got := tr.sent[0].text
	if !strings.Contains(got, "not found") || !strings.Contains(got, "/projects") {
		t.Errorf("unexpected not-found reply: %q", got)
	}
}

func TestStatusAcceptsDeploymentURL(t *testing.T) {
	tr := &fakeTransport{}
	dep := &fakeDeploy{deployments: map[string][]model.Deployment{
		"simmer-down": {{ID: "dpl_1", State: model.DeployStateReady, URL: "simmer-down.vercel.app"}},
	}}
	d := newDispatcher(t, application.Deps{Transport: tr, Deploy: dep})

	d.HandleCommand(context.Background(), incoming("/status https://simmer-down-4tgl6cyala-hotel.vercel.app"))

	if len(tr.sent) != 1 {
		t.Fatalf("sent %d messages, want 1", len(tr.sent))
	}
	if !strings.Contains(tr.sent[0].text, "✅ simmer-down") {
		t.Errorf("URL was not collapsed to the project name: %q", tr.sent[0].text)
	}
}

func TestDeploySendsProgressThenResult(t *testing.T) {
	tr := &fakeTransport{}
	dep := &fakeDeploy{}
	d := newDispatcher(t, application.Deps{Transport: tr, Deploy: dep})

	d.HandleCommand(context.Background(), incoming("/deploy acme-site"))

	if len(tr.sent) != 2 {
		t.Fatalf("sent %d messages, want 2", len(tr.sent))
	}
	if !strings.Contains(tr.sent[0].text, "Deploying acme-site") {
		t.Errorf("missing progress message: %q", tr.sent[0].text)
	}
	if !strings.Contains(tr.sent[1].text, "dpl_abcd") {
		t.Errorf("result should carry the truncated deployment id: %q", tr.sent[1].text)
	}
	if len(dep.triggered) != 1 || dep.triggered[0] != "acme-site" {
		t.Errorf("triggered = %v", dep.triggered)
	}
}

func TestDeployRejectsInvalidProjectName(t *testing.T) {
	tr := &fakeTransport{}
	dep := &fakeDeploy{}
	d := newDispatcher(t, application.Deps{Transport: tr, Deploy: dep})

	d.HandleCommand(context.Background(), incoming("/deploy bad_name!"))

	if len(dep.triggered) != 0 {
		t.Fatalf("invalid name still reached the adapter: %v", dep.triggered)
	}
	if len(tr.sent) != 1 || !strings.Contains(tr.sent[0].text, "🚫 invalid project name") {
		t.Fatalf("want validation reply, got %v", tr.sent)
	}
}

func TestNotConfiguredCapability(t *testing.T) {
	tr := &fakeTransport{}
	d := newDispatcher(t, application.Deps{Transport: tr}) // no deploy adapter

	d.HandleCommand(context.Background(), incoming("/projects"))

	if len(tr.sent) != 1 || !strings.Contains(tr.sent[0].text, "⚙️ The deployment platform is not configured.") {
		t.Fatalf("want not-configured reply, got %v", tr.sent)
	}
}

func TestPanickingHandlerIsContained(t *testing.T) {
	tr := &fakeTransport{}
	dep := &fakeDeploy{trigger: func(string) (*model.Deployment, error) { panic("upstream client exploded") }}
	d := newDispatcher(t, application.Deps{Transport: tr, Deploy: dep})

	d.HandleCommand(context.Background(), incoming("/deploy acme-site"))

	// Progress message plus exactly one failure message, nothing more.
	last := tr.sent[len(tr.sent)-1].text
	if !strings.Contains(last, "⚠️ command failed:") {
		t.Fatalf("want a command-failed reply, got %v", tr.sent)
	}
	failures := 0
	for _, m := range tr.sent {
		if strings.Contains(m.text, "command failed") {
			failures++
		}
	}
	if failures != 1 {
		t.Errorf("got %d failure replies, want 1", failures)
	}
}

func TestEnvListingNeverShowsValues(t *testing.T) {
	tr := &fakeTransport{}
	dep := &fakeDeploy{env: map[string][]model.EnvVar{
		"acme-site": {{Key: "DATABASE_URL", Value: "postgres://user:hunter2@db", Target: []string{"production"}}},
	}}
	d := newDispatcher(t, application.Deps{Transport: tr, Deploy: dep})

	d.HandleCommand(context.Background(), incoming("/env acme-site"))

	if len(tr.sent) != 1 {
		t.Fatalf("sent %d messages, want 1", len(tr.sent))
	}
	got := tr.sent[0].text
	if !strings.Contains(got, "DATABASE_URL") {
		t.Errorf("missing variable name: %q", got)
	}
	if strings.Contains(got, "hunter2") {
		t.Errorf("env value leaked into chat: %q", got)
	}
}

func TestSetEnvRepliesWithoutValue(t *testing.T) {
	tr := &fakeTransport{}
	dep := &fakeDeploy{}
	d := newDispatcher(t, application.Deps{Transport: tr, Deploy: dep})

	d.HandleCommand(context.Background(), incoming("/setenv acme-site API_KEY s3cr3t-value"))

	if len(dep.setEnv) != 1 || dep.setEnv[0].Key != "API_KEY" || dep.setEnv[0].Value != "s3cr3t-value" {
		t.Fatalf("setEnv = %+v", dep.setEnv)
	}
	if strings.Contains(tr.sent[0].text, "s3cr3t-value") {
		t.Errorf("secret echoed back: %q", tr.sent[0].text)
	}
}

func TestCancelFindsInFlightDeployment(t *testing.T) {
	tr := &fakeTransport{}
	dep := &fakeDeploy{deployments: map[string][]model.Deployment{
		"acme-site": {
			{ID: "dpl_building1", State: model.DeployStateBuilding},
			{ID: "dpl_ready0000", State: model.DeployStateReady},
		},
	}}
	d := newDispatcher(t, application.Deps{Transport: tr, Deploy: dep})

	d.HandleCommand(context.Background(), incoming("/cancel acme-site"))

	if len(dep.canceled) != 1 || dep.canceled[0] != "dpl_building1" {
		t.Fatalf("canceled = %v", dep.canceled)
	}
}

func TestCreateRejectsExistingRepo(t *testing.T) {
	tr := &fakeTransport{}
	src := &fakeSource{repos: []model.Repository{{Name: "acme-site"}}}
	d := newDispatcher(t, application.Deps{Transport: tr, Source: src})

	d.HandleCommand(context.Background(), incoming("/create acme-site"))

	if len(src.created) != 0 {
		t.Fatalf("existing repo was re-created: %v", src.created)
	}
	if !strings.Contains(tr.sent[0].text, "already exists") {
		t.Errorf("unexpected reply: %q", tr.sent[0].text)
	}
}

func TestWorkflowParsesInputs(t *testing.T) {
	tr := &fakeTransport{}
	src := &fakeSource{}
	d := newDispatcher(t, application.Deps{Transport: tr, Source: src})

	d.HandleCommand(context.Background(), incoming("/workflow acme-site deploy.yml env=staging force=true"))

	if len(src.workflows) != 1 {
		t.Fatalf("workflows = %v", src.workflows)
	}
	w := src.workflows[0]
	if w["repo"] != "acme-site" || w["file"] != "deploy.yml" || w["env"] != "staging" || w["force"] != "true" {
		t.Errorf("workflow dispatch = %v", w)
	}
}

func TestChatForwardsReply(t *testing.T) {
	tr := &fakeTransport{}
	ai := &fakeAI{reply: "certainly, here is a haiku"}
	d := newDispatcher(t, application.Deps{Transport: tr, AI: ai})

	d.HandleCommand(context.Background(), incoming("/chat write a haiku"))

	if len(ai.prompts) != 1 || ai.prompts[0] != "write a haiku" {
		t.Fatalf("prompts = %v", ai.prompts)
	}
	if !strings.Contains(tr.sent[0].text, "haiku") {
		t.Errorf("reply not forwarded: %q", tr.sent[0].text)
	}
	if tr.typing == 0 {
		t.Error("typing indicator was never sent")
	}
}

func TestPitchRepairsAlmostJSON(t *testing.T) {
	tr := &fakeTransport{}
	// Trailing comma and single quotes: invalid JSON that the repair pass fixes.
	ai := &fakeAI{reply: "Sure! {'headline': 'Fresh Bread Daily', 'subheadline': 'Baked at dawn', 'cta': 'Order now',}"}
	d := newDispatcher(t, application.Deps{Transport: tr, AI: ai})

	d.HandleCommand(context.Background(), incoming(`/pitch "Rise Bakery" bakery`))

	if len(tr.sent) != 1 {
		t.Fatalf("sent %d messages, want 1", len(tr.sent))
	}
	if !strings.Contains(tr.sent[0].text, "Fresh Bread Daily") {
		t.Errorf("repaired JSON not used: %q", tr.sent[0].text)
	}
}

func TestPitchFallsBackOnGarbage(t *testing.T) {
	tr := &fakeTransport{}
	ai := &fakeAI{reply: "I cannot answer that."}
	d := newDispatcher(t, application.Deps{Transport: tr, AI: ai})

	d.HandleCommand(context.Background(), incoming(`/pitch "Rise Bakery" bakery`))

	if !strings.Contains(tr.sent[0].text, "Rise Bakery") {
		t.Errorf("fallback copy missing the business name: %q", tr.sent[0].text)
	}
}

func TestComponentRejectsLowercaseName(t *testing.T) {
	tr := &fakeTransport{}
	ai := &fakeAI{reply: "code"}
	d := newDispatcher(t, application.Deps{Transport: tr, AI: ai})

	d.HandleCommand(context.Background(), incoming("/component heroSection"))

	if len(ai.prompts) != 0 {
		t.Fatalf("invalid component name still reached the AI: %v", ai.prompts)
	}
	if len(tr.sent) != 1 || !strings.Contains(tr.sent[0].text, "invalid component name") {
		t.Fatalf("want validation reply, got %v", tr.sent)
	}
}

func TestFixFallsBackToRawDescription(t *testing.T) {
	tr := &fakeTransport{}
	src := &fakeSource{}
	ai := &fakeAI{err: context.DeadlineExceeded}
	d := newDispatcher(t, application.Deps{Transport: tr, Source: src, AI: ai})

	d.HandleCommand(context.Background(), incoming("/fix acme-site contact form 500s on submit"))

	if len(src.workflows) != 1 {
		t.Fatalf("workflows = %v", src.workflows)
	}
	if got := src.workflows[0]["instruction"]; got != "contact form 500s on submit" {
		t.Errorf("instruction = %q, want the raw description", got)
	}
}

func TestFixUsesAIDraft(t *testing.T) {
	tr := &fakeTransport{}
	src := &fakeSource{}
	ai := &fakeAI{reply: "Fix the contact form handler to return 200 on valid submissions."}
	d := newDispatcher(t, application.Deps{Transport: tr, Source: src, AI: ai})

	d.HandleCommand(context.Background(), incoming("/fix acme-site contact form 500s on submit"))

	if len(src.workflows) != 1 {
		t.Fatalf("workflows = %v", src.workflows)
	}
	if got := src.workflows[0]["instruction"]; !strings.Contains(got, "contact form handler") {
		t.Errorf("instruction = %q, want the drafted instruction", got)
	}
}
