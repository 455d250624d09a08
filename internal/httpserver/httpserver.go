// Package httpserver wires the RelStore gateway, CalStore client, event
// bus and coordinators into one http.Server, in the teacher's
// internal/httpserver idiom (construct dependencies, wrap in a Server with
// Start/Shutdown, hand back a cleanup func for the things that outlive a
// request).
package httpserver

import (
	"context"
	"net/http"
	"time"

	"github.com/rs/zerolog"

	"github.com/radio-aktywne/showcaster/internal/calstore"
	"github.com/radio-aktywne/showcaster/internal/config"
	"github.com/radio-aktywne/showcaster/internal/coordinator"
	"github.com/radio-aktywne/showcaster/internal/eventbus"
	"github.com/radio-aktywne/showcaster/internal/httpapi"
	"github.com/radio-aktywne/showcaster/internal/relstore/postgres"
)

type Server struct {
	http   *http.Server
	logger zerolog.Logger
}

func NewServer(ctx context.Context, cfg *config.Config, logger zerolog.Logger) (*Server, func(), error) {
	rel, err := postgres.New(ctx, cfg.RelStore.DSN, logger)
	if err != nil {
		return nil, nil, err
	}

	cal := calstore.New(cfg.CalStore.BaseURL, cfg.CalStore.Username, cfg.CalStore.Password, logger)
	bus := eventbus.New()

	deps := coordinator.Deps{Rel: rel, Cal: cal, Bus: bus, Logger: logger}
	events := coordinator.NewEventCoordinator(deps)
	shows := coordinator.NewShowCoordinator(deps)

	mux := httpapi.New(events, shows, bus, logger)

	srv := &Server{
		http: &http.Server{
			Addr:         cfg.HTTP.Addr,
			Handler:      mux,
			ReadTimeout:  30 * time.Second,
			WriteTimeout: 120 * time.Second,
			IdleTimeout:  120 * time.Second,
		},
		logger: logger,
	}
	cleanup := func() {
		rel.Close()
	}
	logger.Info().Msgf("listening on %s", cfg.HTTP.Addr)
	return srv, cleanup, nil
}

func (s *Server) Start() error {
	return s.http.ListenAndServe()
}

func (s *Server) Shutdown(ctx context.Context) error {
	return s.http.Shutdown(ctx)
}
