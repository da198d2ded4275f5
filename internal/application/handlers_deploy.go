// File: internal/application/handlers_deploy.go
package application

import (
	"context"
	"fmt"
	"strings"

	"telegram-deploy-bot/internal/domain/model"
	"telegram-deploy-bot/internal/format"
	"telegram-deploy-bot/internal/parse"
)

// Mutating commands validate every user-derived identifier before the
// adapter call is made. Read-only commands rely on the upstream 404 instead.

func (d *Dispatcher) handleDeploy(ctx context.Context, c call) error {
	api, err := d.deployAPI()
	if err != nil {
		return err
	}
	if len(c.args) < 1 {
		return usageError{usage: "/deploy <project>"}
	}
	project := normalizeProject(c.args[0])
	if !parse.ValidateProjectName(project) {
		return validationError{rule: "project name", input: c.args[0]}
	}

	d.reply(ctx, c.conv, fmt.Sprintf("🚀 Deploying %s…", project))
	dep, err := api.TriggerDeployment(ctx, project)
	if err != nil {
		return err
	}
	msg := fmt.Sprintf("%s Deployment %s started.", format.StatusIcon(dep.State), format.ShortID(dep.ID))
	if dep.URL != "" {
		msg += "\n🔗 https://" + strings.TrimPrefix(dep.URL, "https://")
	}
	d.reply(ctx, c.conv, msg)
	return nil
}

func (d *Dispatcher) handleRollback(ctx context.Context, c call) error {
	api, err := d.deployAPI()
	if err != nil {
		return err
	}
	if len(c.args) < 1 {
		return usageError{usage: "/rollback <project>"}
	}
	project := normalizeProject(c.args[0])
	if !parse.ValidateProjectName(project) {
		return validationError{rule: "project name", input: c.args[0]}
	}

	dep, err := api.Rollback(ctx, project)
	if err != nil {
		return err
	}
	msg := fmt.Sprintf("↩️ Rolled %s back to deployment %s.", project, format.ShortID(dep.ID))
	if dep.URL != "" {
		msg += "\n🔗 https://" + strings.TrimPrefix(dep.URL, "https://")
	}
	d.reply(ctx, c.conv, msg)
	return nil
}

func (d *Dispatcher) handleCancel(ctx context.Context, c call) error {
	api, err := d.deployAPI()
	if err != nil {
		return err
	}
	if len(c.args) < 1 {
		return usageError{usage: "/cancel <project>"}
	}
	project := normalizeProject(c.args[0])
	if !parse.ValidateProjectName(project) {
		return validationError{rule: "project name", input: c.args[0]}
	}

	deps, err := api.ListDeployments(ctx, project, 5)
	if err != nil {
		return err
	}
	for _, dep := range deps {
		switch dep.State {
		case model.DeployStateQueued, model.DeployStateBuilding, model.DeployStateInitializing:
			if err := api.CancelDeployment(ctx, dep.ID); err != nil {
				return err
			}
			d.reply(ctx, c.conv, fmt.Sprintf("🚫 Canceled deployment %s of %s.", format.ShortID(dep.ID), project))
			return nil
		}
	}
	d.reply(ctx, c.conv, fmt.Sprintf("Nothing to cancel: no deployment of %s is in flight.", project))
	return nil
}

func (d *Dispatcher) handleSetEnv(ctx context.Context, c call) error {
	api, err := d.deployAPI()
	if err != nil {
		return err
	}
	if len(c.args) < 3 {
		return usageError{usage: "/setenv <project> <KEY> <value>"}
	}
	project := normalizeProject(c.args[0])
	if !parse.ValidateProjectName(project) {
		return validationError{rule: "project name", input: c.args[0]}
	}
	key := c.args[1]
	if !parse.ValidateEnvKey(key) {
		return validationError{rule: "env variable name", input: key}
	}
	// The remaining args are the value; it is a secret and is never echoed.
	value := strings.Join(c.args[2:], " ")

	env := model.EnvVar{Key: key, Value: value, Target: []string{"production", "preview", "development"}}
	if err := api.SetEnv(ctx, project, env); err != nil {
		return err
	}
	d.reply(ctx, c.conv, fmt.Sprintf("🔑 Set %s on %s.", key, project))
	return nil
}

func (d *Dispatcher) handleAddDomain(ctx context.Context, c call) error {
	api, err := d.deployAPI()
	if err != nil {
		return err
	}
	if len(c.args) < 2 {
		return usageError{usage: "/adddomain <project> <domain>"}
	}
	project := normalizeProject(c.args[0])
	if !parse.ValidateProjectName(project) {
		return validationError{rule: "project name", input: c.args[0]}
	}
	dom := strings.ToLower(strings.TrimSpace(c.args[1]))
	if !parse.ValidateDomainName(dom) {
		return validationError{rule: "domain name", input: c.args[1]}
	}

	if err := api.AddDomain(ctx, project, dom); err != nil {
		return err
	}
	d.reply(ctx, c.conv, fmt.Sprintf("🌐 Added %s to %s. Point DNS at the platform to finish verification.", dom, project))
	return nil
}
