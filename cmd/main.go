package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/charmbracelet/log"
	"github.com/saeidalz13/battleship-solo/api"
	"github.com/saeidalz13/battleship-solo/db"
	"github.com/saeidalz13/battleship-solo/db/sqlc"
	"github.com/saeidalz13/battleship-solo/internal/config"
	mb "github.com/saeidalz13/battleship-solo/models/battleship"
	mc "github.com/saeidalz13/battleship-solo/models/connection"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatal("invalid configuration", "err", err)
	}

	log.SetLevel(cfg.LogLevel)
	log.SetReportTimestamp(true)

	var querier sqlc.Querier
	if cfg.AnalyticsEnabled() {
		psqlDb := db.MustConnectToDb(cfg.DatabaseUrl, cfg.MigrationDir)
		defer psqlDb.Close()
		querier = sqlc.New(psqlDb)
	} else {
		log.Warn("DATABASE_URL is empty, analytics disabled")
	}

	sessionManager := mc.NewBattleshipSessionManager()
	rp, err := api.NewRequestProcessor(
		querier,
		api.WithStage(cfg.Stage),
		api.WithAllowedOrigins(cfg.AllowedOrigins...),
		api.WithSessionManager(sessionManager),
		api.WithGameManager(mb.NewBattleshipGameManager()),
	)
	if err != nil {
		log.Fatal("failed to create request processor", "err", err)
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	go sessionManager.CleanupPeriodically(ctx)

	srv := &http.Server{
		Addr:              cfg.Addr(),
		Handler:           api.NewMux(rp),
		ReadHeaderTimeout: 10 * time.Second,
		IdleTimeout:       120 * time.Second,
	}

	go func() {
		log.Info("listening", "addr", srv.Addr, "stage", cfg.Stage)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatal("server failed", "err", err)
		}
	}()

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)
	sig := <-sigChan
	log.Info("shutting down", "signal", sig.String())

	cancel()
	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer shutdownCancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Error("graceful shutdown failed", "err", err)
	}
}
