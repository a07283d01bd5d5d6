package app

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/launchkit/launchkit/internal/billing"
	"github.com/launchkit/launchkit/internal/logging"
	"github.com/launchkit/launchkit/internal/session"
	"github.com/launchkit/launchkit/internal/store"
	"github.com/rs/zerolog/log"
	stripelib "github.com/stripe/stripe-go/v82"
)

// Run starts the HTTP server with graceful shutdown.
func Run(ctx context.Context, version string) error {
	logging.Init(logging.Config{
		Format:    "auto",
		Level:     envOrDefault("LK_LOG_LEVEL", "info"),
		Component: "launchkit",
	})

	log.Info().Str("version", version).Msg("Starting LaunchKit")

	cfg, err := LoadConfig()
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}

	if err := os.MkdirAll(cfg.DataDir, 0o755); err != nil {
		return fmt.Errorf("create data dir: %w", err)
	}

	st, err := store.NewSubscriptionStore(cfg.StoreDir())
	if err != nil {
		return fmt.Errorf("open subscription store: %w", err)
	}
	defer st.Close()

	sessions, err := session.NewCookieVerifier([]byte(cfg.SessionSecret), "")
	if err != nil {
		return fmt.Errorf("init session verifier: %w", err)
	}

	if cfg.StripeAPIKey != "" {
		stripelib.Key = cfg.StripeAPIKey
	} else {
		log.Warn().Msg("STRIPE_API_KEY not set; checkout resolution and price listing will fail")
	}

	mux := http.NewServeMux()
	deps := &Deps{
		Config:     cfg,
		Store:      st,
		Reconciler: billing.NewReconciler(st),
		Sessions:   sessions,
		Version:    version,
	}
	RegisterRoutes(mux, deps)

	addr := fmt.Sprintf("%s:%d", cfg.BindAddress, cfg.Port)
	srv := &http.Server{
		Addr:              addr,
		Handler:           RequestLogger(mux),
		ReadHeaderTimeout: 15 * time.Second,
		IdleTimeout:       120 * time.Second,
	}

	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	go func() {
		log.Info().Str("addr", addr).Msg("LaunchKit listening")
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Error().Err(err).Msg("Server failed")
		}
	}()

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, os.Interrupt, syscall.SIGTERM)
	defer signal.Stop(sigChan)

	select {
	case <-ctx.Done():
		log.Info().Msg("Context cancelled, shutting down...")
	case sig := <-sigChan:
		log.Info().Str("signal", sig.String()).Msg("Received signal, shutting down...")
	}

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer shutdownCancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Error().Err(err).Msg("Server shutdown error")
	}

	log.Info().Msg("LaunchKit stopped")
	return nil
}
