// File: cmd/app/main.go
package main

import (
	"context"
	"flag"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/prometheus/client_golang/prometheus/promhttp"

	"telegram-deploy-bot/internal/application"
	"telegram-deploy-bot/internal/config"
	"telegram-deploy-bot/internal/domain/model"
	"telegram-deploy-bot/internal/domain/ports/adapter"
	aiAdapters "telegram-deploy-bot/internal/infra/adapters/ai"
	githubAdapter "telegram-deploy-bot/internal/infra/adapters/github"
	tele "telegram-deploy-bot/internal/infra/adapters/telegram"
	vercelAdapter "telegram-deploy-bot/internal/infra/adapters/vercel"
	httpapi "telegram-deploy-bot/internal/infra/http"
	"telegram-deploy-bot/internal/infra/logging"
	"telegram-deploy-bot/internal/infra/metrics"
	red "telegram-deploy-bot/internal/infra/redis"
	"telegram-deploy-bot/internal/infra/worker"
)

func main() {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// ---- CLI flags ----
	cfgPath := flag.String("config", "config.yaml", "path to YAML config file")
	devMode := flag.Bool("dev", false, "developer mode (console logs, noop transport without a token)")
	flag.Parse()

	cfg, err := config.LoadConfig(*cfgPath, *devMode)
	if err != nil {
		fmt.Fprintf(os.Stderr, "config: %v\n", err)
		os.Exit(1)
	}

	log := logging.New(cfg.Log, cfg.Runtime.Dev)
	if cfg.Runtime.Dev {
		log.Info().Msg("dev mode enabled")
	}
	metrics.MustRegister()

	// ---- Redis (optional) ----
	var limiter *red.RateLimiter
	if cfg.Redis.URL != "" {
		redisClient, err := red.NewClient(ctx, &cfg.Redis)
		if err != nil {
			log.Fatal().Err(err).Msg("redis")
		}
		defer redisClient.Close()
		limiter = red.NewRateLimiter(redisClient)
	} else {
		log.Info().Msg("redis not configured, rate limiting disabled")
	}

	// ---- Upstream adapters (each one optional) ----
	var deploy adapter.DeployPlatform
	if cfg.Vercel.Token != "" {
		deploy, err = vercelAdapter.NewClient(cfg.Vercel.Token, cfg.Vercel.TeamID, cfg.Vercel.BaseURL)
		if err != nil {
			log.Fatal().Err(err).Msg("vercel client")
		}
	}

	var source adapter.SourceControl
	if cfg.GitHub.Token != "" && cfg.GitHub.Owner != "" {
		source, err = githubAdapter.NewClient(cfg.GitHub.Token, cfg.GitHub.Owner, cfg.GitHub.BaseURL)
		if err != nil {
			log.Fatal().Err(err).Msg("github client")
		}
	}

	// ---- AI adapter (Gemini -> OpenAI -> noop in dev) ----
	var ai adapter.AIService
	switch {
	case cfg.AI.GeminiKey != "":
		ai, err = aiAdapters.NewGeminiAdapter(ctx, cfg.AI.GeminiKey, cfg.AI.GeminiURL, cfg.AI.DefaultModel, cfg.AI.MaxOutputTokens)
		if err != nil {
			log.Fatal().Err(err).Msg("gemini adapter")
		}
		log.Info().Str("model", cfg.AI.DefaultModel).Msg("AI adapter: Gemini")
	case cfg.AI.OpenAIKey != "":
		ai, err = aiAdapters.NewOpenAIAdapter(cfg.AI.OpenAIKey, cfg.AI.DefaultModel, cfg.AI.MaxOutputTokens)
		if err != nil {
			log.Fatal().Err(err).Msg("openai adapter")
		}
		log.Info().Str("model", cfg.AI.DefaultModel).Msg("AI adapter: OpenAI")
	case cfg.Runtime.Dev:
		ai = aiAdapters.NewNoopAIAdapter()
		log.Info().Msg("AI adapter: noop")
	}
	if ai != nil {
		ai = aiAdapters.NewLimitedAI(ai, cfg.AI.ConcurrentLimit)
	}

	// ---- Chat transport ----
	var transport adapter.ChatTransport
	var bot *tele.RealTelegramAdapter
	if cfg.Bot.Token != "" {
		bot, err = tele.NewRealTelegramAdapter(cfg.Bot.Token, log)
		if err != nil {
			log.Fatal().Err(err).Msg("telegram")
		}
		transport = bot
	} else {
		transport = tele.NewNoOpTelegramAdapter(log)
	}

	// ---- Dispatcher and worker pool ----
	dispatcher := application.NewDispatcher(application.Deps{
		Transport:  transport,
		Deploy:     deploy,
		Source:     source,
		AI:         ai,
		Limiter:    limiter,
		Log:        log,
		AllowedIDs: cfg.Bot.AllowedIDs,
	})

	pool := worker.NewPool(cfg.Bot.Workers, log)
	pool.Start(ctx)
	defer pool.Stop()

	// ---- Entry mode ----
	var webhookSrv *httpapi.Server
	if cfg.Bot.Mode == "webhook" {
		webhookSrv = httpapi.NewServer(cfg.Bot.Webhook, dispatcher, pool, limiter, log)
		go func() {
			if err := webhookSrv.Start(); err != nil {
				log.Error().Err(err).Msg("webhook server stopped")
				cancel()
			}
		}()
	} else {
		if bot == nil {
			log.Fatal().Msg("polling mode needs bot.token")
		}
		go func() {
			if err := bot.StartPolling(ctx, func(ctx context.Context, cmd model.IncomingCommand) {
				if err := pool.Submit(func(ctx context.Context) error {
					dispatcher.HandleCommand(ctx, cmd)
					return nil
				}); err != nil {
					metrics.IncUpdateDropped("queue_full")
					log.Error().Err(err).Msg("update dropped")
				}
			}); err != nil && ctx.Err() == nil {
				log.Error().Err(err).Msg("polling stopped")
			}
		}()
		// Polling mode has no webhook server, so metrics get their own port.
		if cfg.Metrics.Port > 0 {
			go func() {
				mux := http.NewServeMux()
				mux.Handle("/metrics", promhttp.Handler())
				addr := fmt.Sprintf(":%d", cfg.Metrics.Port)
				log.Info().Str("addr", addr).Msg("metrics listening")
				if err := http.ListenAndServe(addr, mux); err != nil {
					log.Error().Err(err).Msg("metrics server error")
				}
			}()
		}
	}

	// ---- Graceful shutdown ----
	sigc := make(chan os.Signal, 1)
	signal.Notify(sigc, syscall.SIGINT, syscall.SIGTERM)
	select {
	case <-sigc:
	case <-ctx.Done():
	}
	log.Info().Msg("shutdown requested")
	cancel()

	if webhookSrv != nil {
		shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer shutdownCancel()
		if err := webhookSrv.Shutdown(shutdownCtx); err != nil {
			log.Error().Err(err).Msg("webhook shutdown")
		}
	}
}
