// File: internal/application/dispatcher.go
package application

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"telegram-deploy-bot/internal/domain"
	"telegram-deploy-bot/internal/domain/model"
	"telegram-deploy-bot/internal/domain/ports/adapter"
	"telegram-deploy-bot/internal/format"
	"telegram-deploy-bot/internal/infra/logging"
	"telegram-deploy-bot/internal/infra/metrics"
	"telegram-deploy-bot/internal/infra/redis"
	"telegram-deploy-bot/internal/parse"
)

const (
	rateLimitPerWindow = 20
	rateLimitWindow    = time.Minute
)

const (
	deniedReply     = "⛔ You are not authorized to use this bot."
	notCommandReply = "Send a command. Try /help."
)

// call carries everything a handler needs about one incoming command.
type call struct {
	conv       int64
	caller     int64
	callerName string
	args       []string
}

type handlerFunc func(ctx context.Context, c call) error

// Deps holds the dispatcher's collaborators. Deploy, Source, AI, and Limiter
// may be nil; commands that need them report "not configured" instead.
type Deps struct {
	Transport  adapter.ChatTransport
	Deploy     adapter.DeployPlatform
	Source     adapter.SourceControl
	AI         adapter.AIService
	Limiter    *redis.RateLimiter
	Log        *zerolog.Logger
	AllowedIDs []int64
}

// Dispatcher authorizes, parses, rate-limits, and routes commands. It is
// stateless between commands and safe for concurrent use.
type Dispatcher struct {
	transport adapter.ChatTransport
	deploy    adapter.DeployPlatform
	source    adapter.SourceControl
	ai        adapter.AIService
	limiter   *redis.RateLimiter
	gate      *Gate
	log       *zerolog.Logger
	routes    map[string]handlerFunc
}

func NewDispatcher(deps Deps) *Dispatcher {
	d := &Dispatcher{
		transport: deps.Transport,
		deploy:    deps.Deploy,
		source:    deps.Source,
		ai:        deps.AI,
		limiter:   deps.Limiter,
		gate:      NewGate(deps.AllowedIDs),
		log:       deps.Log,
	}
	d.routes = map[string]handlerFunc{
		"start":       d.handleStart,
		"help":        d.handleHelp,
		"ping":        d.handlePing,
		"projects":    d.handleProjects,
		"status":      d.handleStatus,
		"deployments": d.handleDeployments,
		"logs":        d.handleLogs,
		"runtime":     d.handleRuntime,
		"domains":     d.handleDomains,
		"env":         d.handleEnv,
		"preview":     d.handlePreview,
		"repos":       d.handleRepos,
		"runstatus":   d.handleRunStatus,

		"deploy":    d.handleDeploy,
		"rollback":  d.handleRollback,
		"cancel":    d.handleCancel,
		"setenv":    d.handleSetEnv,
		"adddomain": d.handleAddDomain,

		"create":   d.handleCreate,
		"workflow": d.handleWorkflow,

		"chat":      d.handleChat,
		"research":  d.handleResearch,
		"review":    d.handleReview,
		"fix":       d.handleFix,
		"component": d.handleComponent,
		"pitch":     d.handlePitch,
		"roi":       d.handleROI,
		"copy":      d.handleCopy,
		"seo":       d.handleSEO,
		"speedtest": d.handleSpeedtest,
		"translate": d.handleTranslate,
	}
	return d
}

// HandleCommand processes one incoming message end to end. It never returns
// an error: every failure path ends in at most one reply to the caller, and
// panics in handlers are contained here.
func (d *Dispatcher) HandleCommand(ctx context.Context, in model.IncomingCommand) {
	ctx = logging.WithTraceID(ctx, uuid.NewString())
	ctx = logging.WithTgID(ctx, in.CallerID)
	log := logging.With(ctx, d.log)

	token := "?"
	defer func() {
		if p := recover(); p != nil {
			log.Error().Interface("panic", p).Str("command", token).Msg("handler panicked")
			metrics.IncCommand(token, "panic")
			d.reply(ctx, in.ConversationID, fmt.Sprintf("⚠️ command failed: %v", p))
		}
	}()

	if !d.gate.Allowed(in.CallerID) {
		log.Warn().Msg("caller denied")
		metrics.IncUpdateDropped("unauthorized")
		d.reply(ctx, in.ConversationID, deniedReply)
		return
	}

	cmd, ok := parse.Tokenize(in.RawText)
	if !ok {
		d.reply(ctx, in.ConversationID, notCommandReply)
		return
	}
	token = cmd.Token

	handler, known := d.routes[cmd.Token]
	if !known {
		metrics.IncCommand(cmd.Token, "unknown")
		d.reply(ctx, in.ConversationID, fmt.Sprintf("❓ Unknown command /%s. See /help.", cmd.Token))
		return
	}

	if d.limiter != nil {
		allowed, err := d.limiter.Allow(ctx, redis.UserCommandKey(in.CallerID, cmd.Token), rateLimitPerWindow, rateLimitWindow)
		if err != nil {
			// Rate limiting is advisory; a broken limiter must not block commands.
			log.Warn().Err(err).Msg("rate limiter unavailable")
		} else if !allowed {
			metrics.IncUpdateDropped("rate_limited")
			d.reply(ctx, in.ConversationID, "⏳ Too many commands, slow down a little.")
			return
		}
	}

	c := call{conv: in.ConversationID, caller: in.CallerID, callerName: in.CallerName, args: cmd.Args}
	start := time.Now()
	err := handler(ctx, c)
	elapsed := time.Since(start)

	if err != nil {
		log.Error().Err(err).Str("command", cmd.Token).Dur("took", elapsed).Msg("command failed")
		metrics.IncCommand(cmd.Token, "error")
		d.reply(ctx, in.ConversationID, errorLine(err))
		return
	}
	log.Info().Str("command", cmd.Token).Dur("took", elapsed).Msg("command handled")
	metrics.IncCommand(cmd.Token, "ok")
}

// reply is best effort: a send failure is logged, not surfaced, because
// there is no further channel to report it on.
func (d *Dispatcher) reply(ctx context.Context, conv int64, text string) {
	if err := d.transport.SendMessage(ctx, conv, format.Truncate(text, format.MessageLimit)); err != nil {
		d.log.Error().Err(err).Int64("conversation_id", conv).Msg("send reply failed")
	}
}

func (d *Dispatcher) typing(ctx context.Context, conv int64) {
	_ = d.transport.SendTyping(ctx, conv)
}

// errorLine maps a handler error onto the single user-visible reply line.
func errorLine(err error) string {
	var nc notConfiguredError
	switch {
	case errors.As(err, &nc):
		return "⚙️ " + nc.capability + " is not configured."
	case errors.Is(err, domain.ErrValidation), errors.Is(err, domain.ErrInvalidArgument):
		return "🚫 " + err.Error()
	case errors.Is(err, domain.ErrNotFound):
		return "❌ " + err.Error()
	default:
		return "❌ error: " + format.Truncate(err.Error(), 200)
	}
}

type notConfiguredError struct{ capability string }

func (e notConfiguredError) Error() string { return e.capability + " not configured" }
func (e notConfiguredError) Unwrap() error { return domain.ErrNotConfigured }

type validationError struct{ rule, input string }

func (e validationError) Error() string {
	return fmt.Sprintf("invalid %s: %q", e.rule, format.Truncate(e.input, format.EchoLimit))
}
func (e validationError) Unwrap() error { return domain.ErrValidation }

type usageError struct{ usage string }

func (e usageError) Error() string { return "usage: " + e.usage }
func (e usageError) Unwrap() error { return domain.ErrInvalidArgument }

// Adapter accessors. Returning an error instead of panicking keeps "not
// configured" on the ordinary error path.

func (d *Dispatcher) deployAPI() (adapter.DeployPlatform, error) {
	if d.deploy == nil {
		return nil, notConfiguredError{capability: "The deployment platform"}
	}
	return d.deploy, nil
}

func (d *Dispatcher) sourceAPI() (adapter.SourceControl, error) {
	if d.source == nil {
		return nil, notConfiguredError{capability: "The source-control platform"}
	}
	return d.source, nil
}

func (d *Dispatcher) aiAPI() (adapter.AIService, error) {
	if d.ai == nil {
		return nil, notConfiguredError{capability: "The AI assistant"}
	}
	return d.ai, nil
}
