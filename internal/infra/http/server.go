// File: internal/infra/http/server.go

// Package http exposes the webhook entry point: Telegram updates in,
// immediate acknowledgment out, command execution handed to the worker pool.
package http

import (
	"context"
	"encoding/json"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/rs/zerolog"

	"telegram-deploy-bot/internal/config"
	"telegram-deploy-bot/internal/domain/model"
	"telegram-deploy-bot/internal/infra/adapters/telegram"
	"telegram-deploy-bot/internal/infra/metrics"
	"telegram-deploy-bot/internal/infra/redis"
	"telegram-deploy-bot/internal/infra/worker"
)

const secretTokenHeader = "X-Telegram-Bot-Api-Secret-Token"

// updateRetention bounds webhook de-duplication memory. Telegram retries
// within minutes, not hours.
const updateRetention = 10 * time.Minute

// Handler receives the reduced update once authorization of the HTTP layer
// (secret token, de-duplication) has passed.
type Handler interface {
	HandleCommand(ctx context.Context, in model.IncomingCommand)
}

type Server struct {
	srv     *http.Server
	cfg     config.WebhookConfig
	handler Handler
	pool    *worker.Pool
	limiter *redis.RateLimiter // optional, de-dup disabled when nil
	log     *zerolog.Logger
}

func NewServer(cfg config.WebhookConfig, handler Handler, pool *worker.Pool, limiter *redis.RateLimiter, log *zerolog.Logger) *Server {
	s := &Server{cfg: cfg, handler: handler, pool: pool, limiter: limiter, log: log}

	r := chi.NewRouter()
	r.Use(middleware.Recoverer)
	r.Get("/health", s.handleHealth)
	r.Handle("/metrics", promhttp.Handler())
	r.Post(cfg.Path, s.handleUpdate)

	s.srv = &http.Server{
		Addr:              cfg.ListenAddr,
		Handler:           r,
		ReadHeaderTimeout: 5 * time.Second,
	}
	return s
}

// Router exposes the mux for tests and embedding.
func (s *Server) Router() http.Handler { return s.srv.Handler }

func (s *Server) Start() error {
	s.log.Info().Str("addr", s.cfg.ListenAddr).Str("path", s.cfg.Path).Msg("webhook server listening")
	err := s.srv.ListenAndServe()
	if err == http.ErrServerClosed {
		return nil
	}
	return err
}

func (s *Server) Shutdown(ctx context.Context) error {
	return s.srv.Shutdown(ctx)
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write([]byte("ok"))
}

// handleUpdate always answers fast. Telegram treats anything but a quick 2xx
// as a delivery failure and redelivers, so malformed payloads are logged and
// acknowledged rather than rejected.
func (s *Server) handleUpdate(w http.ResponseWriter, r *http.Request) {
	if s.cfg.Secret != "" && r.Header.Get(secretTokenHeader) != s.cfg.Secret {
		metrics.IncUpdateDropped("bad_secret")
		s.log.Warn().Str("remote", r.RemoteAddr).Msg("webhook secret mismatch")
		w.WriteHeader(http.StatusForbidden)
		return
	}

	var update tgbotapi.Update
	if err := json.NewDecoder(r.Body).Decode(&update); err != nil {
		metrics.IncUpdateDropped("malformed")
		s.log.Warn().Err(err).Msg("malformed webhook payload")
		w.WriteHeader(http.StatusOK)
		return
	}

	cmd, ok := telegram.IncomingFromUpdate(update)
	if !ok {
		// Edited messages, stickers, joins. Nothing to do.
		w.WriteHeader(http.StatusOK)
		return
	}

	if s.limiter != nil {
		seen, err := s.limiter.SeenUpdate(r.Context(), update.UpdateID, updateRetention)
		if err != nil {
			s.log.Warn().Err(err).Msg("update de-dup unavailable")
		} else if seen {
			metrics.IncUpdateDropped("duplicate")
			w.WriteHeader(http.StatusOK)
			return
		}
	}

	if err := s.pool.Submit(func(ctx context.Context) error {
		s.handler.HandleCommand(ctx, cmd)
		return nil
	}); err != nil {
		metrics.IncUpdateDropped("queue_full")
		s.log.Error().Err(err).Int("update_id", update.UpdateID).Msg("update dropped")
	}

	w.WriteHeader(http.StatusOK)
}
