package main

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/omriShneor/whatsapp_eventer/internal/calendar"
	"github.com/omriShneor/whatsapp_eventer/internal/config"
	"github.com/omriShneor/whatsapp_eventer/internal/database"
	"github.com/omriShneor/whatsapp_eventer/internal/detector"
	"github.com/omriShneor/whatsapp_eventer/internal/evaluation"
	"github.com/omriShneor/whatsapp_eventer/internal/server"
	"github.com/omriShneor/whatsapp_eventer/internal/validator"
)

func main() {
	cfg := config.LoadFromEnv()
	logger := slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: cfg.SlogLevel()}))

	loc, fallback := cfg.Location()
	if fallback {
		fmt.Printf("Warning: unknown timezone %q, using %s\n", cfg.Timezone, loc)
	}

	db, err := database.New(cfg.DBPath)
	if err != nil {
		fatal("creating database", err)
	}
	defer db.Close()

	corpus, err := evaluation.LoadCorpus()
	if err != nil {
		fatal("loading test corpus", err)
	}

	srv := server.New(server.ServerConfig{
		DB:        db,
		Detector:  detector.New(detector.Options{Location: loc, Logger: logger}),
		Mapper:    calendar.NewMapper(calendar.Options{Location: loc, Source: cfg.Source, Logger: logger}),
		Validator: validator.New(validator.Options{Logger: logger}),
		Corpus:    corpus,
		Logger:    logger,
		Port:      cfg.HTTPPort,
	})
	go func() {
		if err := srv.Start(); err != nil && err != http.ErrServerClosed {
			fmt.Fprintf(os.Stderr, "HTTP server error: %v\n", err)
		}
	}()

	fmt.Printf("Event detection ready (%s, %s, %d test cases)\n", detector.DetectorName, loc, corpus.Len())
	if cfg.DevMode {
		fmt.Printf("Dev mode: database at %s, log level %s\n", cfg.DBPath, cfg.SlogLevel())
	}

	waitForShutdown(srv)
}

func fatal(context string, err error) {
	fmt.Fprintf(os.Stderr, "Error %s: %v\n", context, err)
	os.Exit(1)
}

func waitForShutdown(srv *server.Server) {
	c := make(chan os.Signal, 1)
	signal.Notify(c, os.Interrupt, syscall.SIGTERM)
	<-c

	fmt.Println("Shutting down...")

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := srv.Shutdown(ctx); err != nil {
		fmt.Fprintf(os.Stderr, "HTTP shutdown error: %v\n", err)
	}
}
