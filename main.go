package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	_ "github.com/joho/godotenv/autoload"
)

func main() {
	cfg, err := LoadConfig()
	if err != nil {
		fmt.Fprintf(os.Stderr, "config: %v\n", err)
		os.Exit(1)
	}
	log := newLogger(cfg, os.Stdout)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	store, err := openStorage(ctx, cfg)
	if err != nil {
		log.Fatal().Err(err).Msg("open guestbook storage")
	}
	defer func() {
		if err := store.Close(); err != nil {
			log.Error().Err(err).Msg("close guestbook storage")
		}
	}()

	srv, err := newServer(ctx, cfg, log, store, newSMTPMailer(cfg))
	if err != nil {
		log.Fatal().Err(err).Msg("initialize server")
	}
	if err := srv.Run(ctx); err != nil {
		log.Error().Err(err).Msg("server stopped with error")
		return
	}
	log.Info().Msg("server exited cleanly")
}

func openStorage(ctx context.Context, cfg *Config) (Storage, error) {
	switch cfg.StorageBackend {
	case storageSQLite:
		st, err := openSQLStorage(ctx, cfg.SQLitePath)
		if err != nil {
			return nil, err
		}
		return st, nil
	default:
		return newMemStorage(), nil
	}
}
