// Command server runs the error-responder service: a Gin HTTP server whose
// every failure path exits through a content-negotiated error boundary, with
// an SQLite-backed error journal and an admin API over it.
package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/joho/godotenv"
	"github.com/rs/zerolog/log"
	"gorm.io/gorm"

	"github.com/tbourn/go-error-responder/internal/config"
	httpapi "github.com/tbourn/go-error-responder/internal/http"
	"github.com/tbourn/go-error-responder/internal/observability"
	"github.com/tbourn/go-error-responder/internal/repo"
	"github.com/tbourn/go-error-responder/internal/sysutil"
)

// version is stamped at build time via -ldflags "-X main.version=...".
var version = "dev"

func main() {
	// Local development convenience; missing .env is not an error.
	_ = godotenv.Load()

	cfg := config.MustLoad()
	sysutil.InitLogger(cfg.LogLevel, cfg.LogPretty)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	shutdownOTel, err := observability.SetupOTel(ctx, cfg.OTEL, version)
	if err != nil {
		log.Fatal().Err(err).Msg("otel setup failed")
	}
	defer func() {
		sctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := shutdownOTel(sctx); err != nil {
			log.Error().Err(err).Msg("otel shutdown failed")
		}
	}()

	db, err := repo.OpenSQLite(cfg.DBPath)
	if err != nil {
		log.Fatal().Err(err).Str("path", cfg.DBPath).Msg("open journal database failed")
	}

	if cfg.Errors.JournalEnabled {
		go pruneLoop(ctx, db, cfg.Errors.JournalRetention)
	}

	gin.SetMode(cfg.GinMode)
	r := gin.New()
	httpapi.RegisterRoutes(r, db, cfg)

	srv := &http.Server{
		Addr:              ":" + cfg.Port,
		Handler:           r,
		ReadTimeout:       cfg.ReadTimeout,
		ReadHeaderTimeout: cfg.ReadHeaderTimeout,
		WriteTimeout:      cfg.WriteTimeout,
		IdleTimeout:       cfg.IdleTimeout,
		MaxHeaderBytes:    cfg.MaxHeaderBytes,
	}

	go func() {
		<-ctx.Done()
		sctx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
		defer cancel()
		if err := srv.Shutdown(sctx); err != nil {
			log.Error().Err(err).Msg("http shutdown failed")
		}
	}()

	log.Info().Str("addr", srv.Addr).Str("version", version).Msg("listening")
	if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		log.Fatal().Err(err).Msg("listen failed")
	}
	log.Info().Msg("server stopped")
}

// pruneLoop removes journal rows older than retention, once at startup and
// then hourly, until ctx is canceled.
func pruneLoop(ctx context.Context, db *gorm.DB, retention time.Duration) {
	prune := func() {
		cutoff := time.Now().UTC().Add(-retention)
		n, err := repo.PruneEventsBefore(ctx, db, cutoff)
		if err != nil {
			log.Error().Err(err).Msg("journal prune failed")
			return
		}
		if n > 0 {
			log.Info().Int64("pruned", n).Time("cutoff", cutoff).Msg("journal pruned")
		}
	}

	prune()
	t := time.NewTicker(time.Hour)
	defer t.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-t.C:
			prune()
		}
	}
}
