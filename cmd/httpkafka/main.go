// SPDX-FileCopyrightText: 2025 Comcast Cable Communications Management, LLC
// SPDX-License-Identifier: Apache-2.0

// Command httpkafka serves HTTP POST routes that forward request bodies to
// Kafka topics.
package main

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/spf13/pflag"
	"github.com/spf13/viper"
	"github.com/twmb/franz-go/plugin/kslog"
	"github.com/xmidt-org/httpkafka"
)

func main() {
	fs := pflag.NewFlagSet("httpkafka", pflag.ExitOnError)
	configFile := fs.StringP("config", "c", "", "path to a YAML config file")
	_ = fs.Parse(os.Args[1:])

	if err := run(*configFile); err != nil {
		slog.Error("httpkafka exited", "error", err)
		os.Exit(1)
	}
}

func run(configFile string) error {
	cfg, err := LoadConfig(viper.New(), configFile)
	if err != nil {
		return fmt.Errorf("loading configuration: %w", err)
	}

	logger, err := newLogger(cfg.Log, os.Stdout)
	if err != nil {
		return err
	}
	slog.SetDefault(logger)
	kafkaLogger := kslog.New(logger)

	producer, err := cfg.newProducer(kafkaLogger)
	if err != nil {
		return err
	}
	// No request is served unless the producer starts.
	if err := producer.Start(); err != nil {
		return fmt.Errorf("starting producer: %w", err)
	}

	server := &http.Server{
		Addr:    cfg.Server.Listen,
		Handler: newRouter(producer, cfg.newHandlers(producer, kafkaLogger)),
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	serveErr := make(chan error, 1)
	go func() {
		logger.Info("httpkafka listening", "addr", cfg.Server.Listen, "routes", len(cfg.Routes))
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			serveErr <- err
		}
		close(serveErr)
	}()

	select {
	case <-ctx.Done():
		logger.Info("shutting down")
	case err = <-serveErr:
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.Server.ShutdownTimeout)
	defer cancel()
	if serr := server.Shutdown(shutdownCtx); serr != nil {
		logger.Error("server forced to shutdown", "error", serr)
	}

	// Requests are done; flush whatever they queued.
	producer.Stop(context.Background())
	logger.Info("httpkafka stopped")

	return err
}

func newLogger(lc LogConfig, w io.Writer) (*slog.Logger, error) {
	lvl, err := lc.level()
	if err != nil {
		return nil, err
	}

	opts := &slog.HandlerOptions{Level: lvl}
	if lc.Format == "text" {
		return slog.New(slog.NewTextHandler(w, opts)), nil
	}
	return slog.New(slog.NewJSONHandler(w, opts)), nil
}

// health is the body of GET /healthz.
type health struct {
	Started         bool  `json:"started"`
	BufferedRecords int   `json:"buffered_records"`
	MaxRecords      int   `json:"max_buffered_records"`
	BufferedBytes   int64 `json:"buffered_bytes"`
	MaxBytes        int64 `json:"max_buffered_bytes"`
}

func newRouter(p *httpkafka.Producer, handlers []*httpkafka.Handler) http.Handler {
	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(middleware.Recoverer)

	r.Get("/healthz", func(w http.ResponseWriter, _ *http.Request) {
		var h health
		h.Started = p.Started()
		h.BufferedRecords, h.MaxRecords, h.BufferedBytes, h.MaxBytes = p.BufferedRecords()

		status := http.StatusOK
		if !h.Started {
			status = http.StatusServiceUnavailable
		}
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(status)
		_ = json.NewEncoder(w).Encode(h)
	})

	// Handlers answer non-POST methods themselves.
	for _, h := range handlers {
		r.Handle(h.Route.Path, h)
	}

	return r
}
