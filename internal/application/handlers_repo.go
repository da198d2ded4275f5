// File: internal/application/handlers_repo.go
package application

import (
	"context"
	"fmt"
	"strings"

	"telegram-deploy-bot/internal/parse"
)

func (d *Dispatcher) handleCreate(ctx context.Context, c call) error {
	api, err := d.sourceAPI()
	if err != nil {
		return err
	}
	if len(c.args) < 1 {
		return usageError{usage: "/create <repo>"}
	}
	name := normalizeProject(c.args[0])
	if !parse.ValidateProjectName(name) {
		return validationError{rule: "repository name", input: c.args[0]}
	}

	exists, err := api.RepoExists(ctx, name)
	if err != nil {
		return err
	}
	if exists {
		d.reply(ctx, c.conv, fmt.Sprintf("🚫 Repository %s already exists.", name))
		return nil
	}
	repo, err := api.CreateRepo(ctx, name, true)
	if err != nil {
		return err
	}
	msg := fmt.Sprintf("📚 Created repository %s.", repo.Name)
	if repo.URL != "" {
		msg += "\n🔗 " + repo.URL
	}
	d.reply(ctx, c.conv, msg)
	return nil
}

func (d *Dispatcher) handleWorkflow(ctx context.Context, c call) error {
	api, err := d.sourceAPI()
	if err != nil {
		return err
	}
	if len(c.args) < 2 {
		return usageError{usage: "/workflow <repo> <file> [k=v ...]"}
	}
	repo := normalizeProject(c.args[0])
	if !parse.ValidateProjectName(repo) {
		return validationError{rule: "repository name", input: c.args[0]}
	}
	file := c.args[1]

	inputs := make(map[string]string)
	for _, kv := range c.args[2:] {
		k, v, ok := strings.Cut(kv, "=")
		if !ok || k == "" {
			return validationError{rule: "workflow input, expected k=v", input: kv}
		}
		inputs[k] = v
	}

	if err := api.TriggerWorkflow(ctx, repo, file, "", inputs); err != nil {
		return err
	}
	msg := fmt.Sprintf("▶️ Triggered %s on %s.", file, repo)
	if len(inputs) > 0 {
		keys := make([]string, 0, len(inputs))
		for k := range inputs {
			keys = append(keys, k)
		}
		msg += " Inputs: " + strings.Join(keys, ", ") + "."
	}
	msg += " Check progress with /runstatus " + repo + "."
	d.reply(ctx, c.conv, msg)
	return nil
}
