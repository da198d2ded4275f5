// File: internal/format/format.go

// Package format renders adapter results as chat text. All functions are pure.
package format

import (
	"fmt"
	"strings"
	"time"

	"telegram-deploy-bot/internal/domain/model"
)

// MessageLimit caps any single outbound message. Telegram's hard limit is
// 4096; the margin leaves room for the sender's own prefixes.
const MessageLimit = 4000

// EchoLimit bounds how much of an offending input a validation error echoes.
const EchoLimit = 64

var statusIcons = map[string]string{
	model.DeployStateReady:        "✅",
	model.DeployStateError:        "❌",
	model.DeployStateBuilding:     "🔨",
	model.DeployStateQueued:       "⏳",
	model.DeployStateCanceled:     "🚫",
	model.DeployStateInitializing: "🌀",
}

// StatusIcon maps a deployment state to its fixed symbol. Unrecognized states
// get a generic marker, never an error.
func StatusIcon(state string) string {
	if icon, ok := statusIcons[strings.ToUpper(state)]; ok {
		return icon
	}
	return "❔"
}

// Truncate bounds s to max runes, marking the cut with an ellipsis.
func Truncate(s string, max int) string {
	if max <= 0 {
		return ""
	}
	r := []rune(s)
	if len(r) <= max {
		return s
	}
	if max == 1 {
		return "…"
	}
	return string(r[:max-1]) + "…"
}

// ShortID returns the first 8 characters of an identifier.
func ShortID(id string) string {
	if len(id) > 8 {
		return id[:8]
	}
	return id
}

func Projects(projects []model.Project) string {
	if len(projects) == 0 {
		return "No projects found."
	}
	var b strings.Builder
	b.WriteString(fmt.Sprintf("📦 Projects (%d):\n", len(projects)))
	for _, p := range projects {
		line := "• " + p.Name
		if p.Framework != "" {
			line += " (" + p.Framework + ")"
		}
		b.WriteString(line + "\n")
	}
	return Truncate(b.String(), MessageLimit)
}

func ProjectStatus(project string, d *model.Deployment) string {
	var b strings.Builder
	b.WriteString(fmt.Sprintf("%s %s — %s\n", StatusIcon(d.State), project, strings.ToLower(d.State)))
	if d.URL != "" {
		b.WriteString("🔗 https://" + strings.TrimPrefix(d.URL, "https://") + "\n")
	}
	if d.Branch != "" {
		b.WriteString("🌿 " + d.Branch + "\n")
	}
	if !d.CreatedAt.IsZero() {
		b.WriteString("🕐 " + d.CreatedAt.Format(time.RFC822) + "\n")
	}
	return b.String()
}

func Deployments(project string, deps []model.Deployment) string {
	if len(deps) == 0 {
		return fmt.Sprintf("No deployments found for %s.", project)
	}
	var b strings.Builder
	b.WriteString(fmt.Sprintf("🚀 Recent deployments of %s:\n", project))
	for _, d := range deps {
		b.WriteString(fmt.Sprintf("%s %s  %s  %s\n",
			StatusIcon(d.State), ShortID(d.ID), strings.ToLower(d.State), d.CreatedAt.Format("01-02 15:04")))
	}
	return Truncate(b.String(), MessageLimit)
}

func BuildEvents(project string, events []model.DeploymentEvent) string {
	if len(events) == 0 {
		return fmt.Sprintf("No build logs found for %s.", project)
	}
	var b strings.Builder
	b.WriteString("📋 Build log for " + project + ":\n")
	for _, e := range events {
		b.WriteString(e.Text + "\n")
	}
	return Truncate(b.String(), MessageLimit)
}

func RuntimeLogs(project string, entries []model.RuntimeLogEntry) string {
	if len(entries) == 0 {
		return fmt.Sprintf("No runtime logs found for %s.", project)
	}
	var b strings.Builder
	b.WriteString("🖥 Runtime logs for " + project + ":\n")
	for _, e := range entries {
		b.WriteString(fmt.Sprintf("[%s] %s\n", strings.ToUpper(e.Level), e.Message))
	}
	return Truncate(b.String(), MessageLimit)
}

func Domains(project string, domains []model.DomainEntry) string {
	if len(domains) == 0 {
		return fmt.Sprintf("No domains attached to %s.", project)
	}
	var b strings.Builder
	b.WriteString("🌐 Domains of " + project + ":\n")
	for _, d := range domains {
		mark := "⏳ pending"
		if d.Verified {
			mark = "✅ verified"
		}
		b.WriteString(fmt.Sprintf("• %s (%s)\n", d.Name, mark))
	}
	return Truncate(b.String(), MessageLimit)
}

// EnvNames renders variable names and targets only. Values are secrets and
// must never reach a chat message.
func EnvNames(project string, vars []model.EnvVar) string {
	if len(vars) == 0 {
		return fmt.Sprintf("No environment variables on %s.", project)
	}
	var b strings.Builder
	b.WriteString("🔑 Environment variables on " + project + ":\n")
	for _, v := range vars {
		line := "• " + v.Key
		if len(v.Target) > 0 {
			line += " [" + strings.Join(v.Target, ", ") + "]"
		}
		b.WriteString(line + "\n")
	}
	return Truncate(b.String(), MessageLimit)
}

func Repositories(repos []model.Repository) string {
	if len(repos) == 0 {
		return "No repositories found."
	}
	var b strings.Builder
	b.WriteString(fmt.Sprintf("📚 Repositories (%d):\n", len(repos)))
	for _, r := range repos {
		line := "• " + r.Name
		if r.Private {
			line += " 🔒"
		}
		if r.Description != "" {
			line += " — " + Truncate(r.Description, 60)
		}
		b.WriteString(line + "\n")
	}
	return Truncate(b.String(), MessageLimit)
}

func WorkflowRun(repo string, run *model.WorkflowRun) string {
	icon := "❔"
	switch {
	case run.Status != "completed":
		icon = "🔨"
	case run.Conclusion == "success":
		icon = "✅"
	case run.Conclusion == "failure":
		icon = "❌"
	case run.Conclusion == "cancelled":
		icon = "🚫"
	}
	var b strings.Builder
	b.WriteString(fmt.Sprintf("%s %s — %s", icon, run.Name, run.Status))
	if run.Conclusion != "" {
		b.WriteString(" (" + run.Conclusion + ")")
	}
	b.WriteString("\n🌿 " + run.Branch)
	if run.URL != "" {
		b.WriteString("\n🔗 " + run.URL)
	}
	return b.String()
}

// AIReply bounds free-form generative text for the transport.
func AIReply(text string) string {
	text = strings.TrimSpace(text)
	if text == "" {
		return "🤖 (empty reply)"
	}
	return Truncate("🤖 "+text, MessageLimit)
}
