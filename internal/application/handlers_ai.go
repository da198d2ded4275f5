// File: internal/application/handlers_ai.go
package application

import (
	"context"
	"encoding/json"
	"fmt"
	"regexp"
	"strings"

	"github.com/kaptinlin/jsonrepair"

	"telegram-deploy-bot/internal/format"
	"telegram-deploy-bot/internal/parse"
)

// The workflow file a /fix request dispatches. Repositories opt in by
// carrying this file under .github/workflows/.
const fixWorkflowFile = "fix.yml"

var jsonBlockRe = regexp.MustCompile(`(?s)\{.*\}`)

// extractJSON pulls the first {...} block out of free-form model output and
// unmarshals it, repairing almost-JSON when plain parsing fails. Model output
// is unreliable; callers keep a deterministic fallback for when this errors.
func extractJSON(text string, out any) error {
	block := jsonBlockRe.FindString(text)
	if block == "" {
		return fmt.Errorf("no JSON object in reply")
	}
	if err := json.Unmarshal([]byte(block), out); err == nil {
		return nil
	}
	repaired, err := jsonrepair.JSONRepair(block)
	if err != nil {
		return fmt.Errorf("repair JSON: %w", err)
	}
	return json.Unmarshal([]byte(repaired), out)
}

func (d *Dispatcher) complete(ctx context.Context, conv int64, prompt string) (string, error) {
	ai, err := d.aiAPI()
	if err != nil {
		return "", err
	}
	d.typing(ctx, conv)
	return ai.Complete(ctx, prompt)
}

func (d *Dispatcher) handleChat(ctx context.Context, c call) error {
	if len(c.args) == 0 {
		return usageError{usage: "/chat <prompt>"}
	}
	reply, err := d.complete(ctx, c.conv, strings.Join(c.args, " "))
	if err != nil {
		return err
	}
	d.reply(ctx, c.conv, format.AIReply(reply))
	return nil
}

func (d *Dispatcher) handleResearch(ctx context.Context, c call) error {
	if len(c.args) == 0 {
		return usageError{usage: "/research <topic>"}
	}
	topic := strings.Join(c.args, " ")
	prompt := fmt.Sprintf(
		"Write a short research brief on %q for a small web agency. "+
			"Cover: market context, three concrete opportunities, three risks, and a one-line recommendation. "+
			"Keep it under 300 words.", topic)
	reply, err := d.complete(ctx, c.conv, prompt)
	if err != nil {
		return err
	}
	d.reply(ctx, c.conv, format.AIReply(reply))
	return nil
}

func (d *Dispatcher) handleReview(ctx context.Context, c call) error {
	if len(c.args) < 1 {
		return usageError{usage: "/review <repo>"}
	}
	repo := normalizeProject(c.args[0])

	description := ""
	if d.source != nil {
		if r, err := d.source.GetRepo(ctx, repo); err == nil {
			description = r.Description
		}
	}
	prompt := fmt.Sprintf(
		"You are reviewing a web project repository named %q.", repo)
	if description != "" {
		prompt += fmt.Sprintf(" Its description: %q.", description)
	}
	prompt += " Produce a concise review checklist: architecture, security, performance, and deployment readiness. At most 12 bullet points."

	reply, err := d.complete(ctx, c.conv, prompt)
	if err != nil {
		return err
	}
	d.reply(ctx, c.conv, format.AIReply(reply))
	return nil
}

// handleFix drafts a bounded fix instruction from the operator's description
// and dispatches the repository's fix workflow with it. A failed or empty
// draft falls back to the raw description so the workflow still runs.
func (d *Dispatcher) handleFix(ctx context.Context, c call) error {
	api, err := d.sourceAPI()
	if err != nil {
		return err
	}
	if len(c.args) < 2 {
		return usageError{usage: "/fix <project> <what to fix>"}
	}
	project := normalizeProject(c.args[0])
	if !parse.ValidateProjectName(project) {
		return validationError{rule: "project name", input: c.args[0]}
	}
	description := strings.Join(c.args[1:], " ")

	instruction := description
	if d.ai != nil {
		prompt := fmt.Sprintf(
			"Rewrite this bug report as a single precise instruction for an automated code-fix job on project %q. "+
				"One sentence, imperative, no preamble: %s", project, description)
		if draft, err := d.complete(ctx, c.conv, prompt); err == nil {
			if draft = strings.TrimSpace(draft); draft != "" {
				instruction = format.Truncate(draft, 500)
			}
		}
	}

	if err := api.TriggerWorkflow(ctx, project, fixWorkflowFile, "", map[string]string{"instruction": instruction}); err != nil {
		return err
	}
	d.reply(ctx, c.conv, fmt.Sprintf("🔧 Fix workflow dispatched on %s:\n%s\nCheck progress with /runstatus %s.",
		project, format.Truncate(instruction, 300), project))
	return nil
}

func (d *Dispatcher) handleComponent(ctx context.Context, c call) error {
	if _, err := d.aiAPI(); err != nil {
		return err
	}
	if len(c.args) < 1 {
		return usageError{usage: "/component <ComponentName> [description]"}
	}
	name := c.args[0]
	if !parse.ValidateComponentName(name) {
		return validationError{rule: "component name", input: name}
	}
	prompt := fmt.Sprintf("Write a React component named %s in TypeScript with Tailwind classes.", name)
	if len(c.args) > 1 {
		prompt += " It should: " + strings.Join(c.args[1:], " ") + "."
	}
	prompt += " Reply with the code only, no explanation."

	reply, err := d.complete(ctx, c.conv, prompt)
	if err != nil {
		return err
	}
	d.reply(ctx, c.conv, format.AIReply(reply))
	return nil
}

type pitchResult struct {
	Headline    string `json:"headline"`
	Subheadline string `json:"subheadline"`
	CTA         string `json:"cta"`
}

func (d *Dispatcher) handlePitch(ctx context.Context, c call) error {
	if _, err := d.aiAPI(); err != nil {
		return err
	}
	business, sector, err := businessArgs(c.args, "/pitch \"<business>\" <sector>")
	if err != nil {
		return err
	}
	prompt := fmt.Sprintf(
		"Write landing page pitch copy for %q, a %s business. "+
			"Reply with ONLY a JSON object: {\"headline\": ..., \"subheadline\": ..., \"cta\": ...}.",
		business, sector)
	reply, err := d.complete(ctx, c.conv, prompt)
	if err != nil {
		return err
	}

	p := pitchResult{
		Headline:    business,
		Subheadline: fmt.Sprintf("Your trusted partner in %s.", sector),
		CTA:         "Get in touch",
	}
	if err := extractJSON(reply, &p); err != nil {
		d.log.Warn().Err(err).Msg("pitch extraction failed, using fallback copy")
	}
	d.reply(ctx, c.conv, fmt.Sprintf("🪧 %s\n%s\n👉 %s", p.Headline, p.Subheadline, p.CTA))
	return nil
}

type roiResult struct {
	UpliftPct     float64 `json:"uplift_pct"`
	PaybackMonths float64 `json:"payback_months"`
	Summary       string  `json:"summary"`
}

func (d *Dispatcher) handleROI(ctx context.Context, c call) error {
	if _, err := d.aiAPI(); err != nil {
		return err
	}
	business, sector, err := businessArgs(c.args, "/roi \"<business>\" <sector>")
	if err != nil {
		return err
	}
	prompt := fmt.Sprintf(
		"Estimate the ROI of a new website for %q, a %s business. Be conservative. "+
			"Reply with ONLY a JSON object: {\"uplift_pct\": number, \"payback_months\": number, \"summary\": string}.",
		business, sector)
	reply, err := d.complete(ctx, c.conv, prompt)
	if err != nil {
		return err
	}

	r := roiResult{
		UpliftPct:     10,
		PaybackMonths: 12,
		Summary:       "Conservative default estimate; a modest online presence typically lifts inbound leads.",
	}
	if err := extractJSON(reply, &r); err != nil {
		d.log.Warn().Err(err).Msg("roi extraction failed, using fallback estimate")
	}
	d.reply(ctx, c.conv, fmt.Sprintf("📈 %s\nEstimated uplift: %.0f%%\nPayback: %.0f months\n%s",
		business, r.UpliftPct, r.PaybackMonths, r.Summary))
	return nil
}

func (d *Dispatcher) handleCopy(ctx context.Context, c call) error {
	if _, err := d.aiAPI(); err != nil {
		return err
	}
	business, sector, err := businessArgs(c.args, "/copy \"<business>\" <sector>")
	if err != nil {
		return err
	}
	prompt := fmt.Sprintf(
		"Write website hero copy for %q, a %s business: a headline, two short paragraphs, and a call to action. Plain text.",
		business, sector)
	reply, err := d.complete(ctx, c.conv, prompt)
	if err != nil {
		return err
	}
	d.reply(ctx, c.conv, format.AIReply(reply))
	return nil
}

func (d *Dispatcher) handleSEO(ctx context.Context, c call) error {
	if _, err := d.aiAPI(); err != nil {
		return err
	}
	if len(c.args) < 1 {
		return usageError{usage: "/seo <project>"}
	}
	project := normalizeProject(c.args[0])

	domain := project + ".vercel.app"
	if d.deploy != nil {
		if domains, err := d.deploy.ListDomains(ctx, project); err == nil && len(domains) > 0 {
			domain = domains[0].Name
		}
	}
	prompt := fmt.Sprintf(
		"Produce an SEO audit checklist for the site %s (project %q): "+
			"on-page, technical, and content items, at most 10 bullets, each actionable.", domain, project)
	reply, err := d.complete(ctx, c.conv, prompt)
	if err != nil {
		return err
	}
	d.reply(ctx, c.conv, format.AIReply(reply))
	return nil
}

func (d *Dispatcher) handleSpeedtest(ctx context.Context, c call) error {
	if _, err := d.aiAPI(); err != nil {
		return err
	}
	if len(c.args) < 1 {
		return usageError{usage: "/speedtest <project>"}
	}
	project := normalizeProject(c.args[0])
	prompt := fmt.Sprintf(
		"Produce a web performance tuning checklist for a site deployed on a serverless platform (project %q): "+
			"images, caching, bundle size, fonts, and Core Web Vitals. At most 10 bullets.", project)
	reply, err := d.complete(ctx, c.conv, prompt)
	if err != nil {
		return err
	}
	d.reply(ctx, c.conv, format.AIReply(reply))
	return nil
}

func (d *Dispatcher) handleTranslate(ctx context.Context, c call) error {
	if len(c.args) == 0 {
		return usageError{usage: "/translate <text>"}
	}
	text := strings.Join(c.args, " ")
	prompt := fmt.Sprintf("Translate the following text to Spanish. Reply with the translation only:\n%s", text)
	reply, err := d.complete(ctx, c.conv, prompt)
	if err != nil {
		return err
	}
	d.reply(ctx, c.conv, format.AIReply(reply))
	return nil
}

// businessArgs reads a quoted business name plus a sector from the argument
// list. The tokenizer already kept a quoted first argument whole.
func businessArgs(args []string, usage string) (business, sector string, err error) {
	if len(args) < 2 {
		return "", "", usageError{usage: usage}
	}
	business = args[0]
	if !parse.ValidateBusinessName(business) {
		return "", "", validationError{rule: "business name", input: business}
	}
	sector = strings.Join(args[1:], " ")
	return business, sector, nil
}
