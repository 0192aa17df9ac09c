// main.go
//
// Entry point for the ranked wordl server.
//
//	wordl-ranked                 serve HTTP (default)
//	wordl-ranked token <player>  print a player token for <player>
//
// Startup order: .env, config, log level, word lists, store backend, restart
// recovery of interrupted ranked games, then the HTTP server.

package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"

	"github.com/robalobadob/wordl-ranked/internal/auth"
	"github.com/robalobadob/wordl-ranked/internal/config"
	"github.com/robalobadob/wordl-ranked/internal/httpserver"
	"github.com/robalobadob/wordl-ranked/internal/notify"
	"github.com/robalobadob/wordl-ranked/internal/ranked"
	"github.com/robalobadob/wordl-ranked/internal/store"
	"github.com/robalobadob/wordl-ranked/internal/words"
)

func main() {
	_ = godotenv.Load()
	cfg, err := config.Load()
	if err != nil {
		log.Fatal().Err(err).Msg("invalid configuration")
	}
	if lvl, err := zerolog.ParseLevel(cfg.LogLevel); err == nil {
		zerolog.SetGlobalLevel(lvl)
	}

	if len(os.Args) > 1 {
		switch os.Args[1] {
		case "token":
			if len(os.Args) != 3 {
				fmt.Fprintln(os.Stderr, "usage: wordl-ranked token <playerID>")
				os.Exit(2)
			}
			tok, exp, err := auth.NewIssuer(cfg.JWTSecret, cfg.TokenTTL()).Sign(os.Args[2])
			if err != nil {
				log.Fatal().Err(err).Msg("sign token")
			}
			fmt.Println(tok)
			log.Info().Str("player", os.Args[2]).Time("expires", exp).Msg("token issued")
			return
		default:
			fmt.Fprintf(os.Stderr, "unknown command %q\n", os.Args[1])
			os.Exit(2)
		}
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()
	if err := run(ctx, cfg); err != nil {
		log.Fatal().Err(err).Msg("server exited")
	}
}

func run(ctx context.Context, cfg config.Config) error {
	if cfg.JWTSecret == config.DevJWTSecret {
		log.Warn().Msg("JWT_SECRET not set; using the development secret")
	}

	dict, err := words.Load(cfg.AnswersFile, cfg.AllowedFile)
	if err != nil {
		return fmt.Errorf("load word lists: %w", err)
	}
	answers, allowed := dict.Stats()
	log.Info().Int("answers", answers).Int("allowed", allowed).Msg("word lists loaded")

	st, err := openStore(ctx, cfg)
	if err != nil {
		return err
	}
	defer st.Close()

	svc := ranked.New(dict, st, st, ranked.WithNotifier(notify.FromURL(cfg.NotifyWebhook)))
	comps, err := svc.Recover(ctx)
	if err != nil {
		return fmt.Errorf("recover interrupted games: %w", err)
	}
	if len(comps) > 0 {
		log.Info().Int("players", len(comps)).Msg("compensated interrupted ranked games")
	}

	opts := httpserver.Options{ClientOrigin: cfg.ClientOrigin, RequestTimeout: cfg.RequestTimeout}
	if p, ok := st.(store.Pinger); ok {
		opts.Ready = p.Ping
	}
	srv := httpserver.New(svc, auth.NewIssuer(cfg.JWTSecret, cfg.TokenTTL()), opts)
	hs := &http.Server{
		Addr:              cfg.Addr(),
		Handler:           srv.Router(),
		ReadHeaderTimeout: 5 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		log.Info().Str("port", cfg.Port).Str("store", cfg.StoreBackend).Msg("starting wordl-ranked")
		errCh <- hs.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return err
	case <-ctx.Done():
	}

	log.Info().Msg("shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	return hs.Shutdown(shutdownCtx)
}

// openStore connects the configured backend.
func openStore(ctx context.Context, cfg config.Config) (store.Store, error) {
	switch cfg.StoreBackend {
	case config.BackendMemory:
		log.Warn().Msg("memory store: stats and active ranked games are lost on restart")
		return store.NewMemoryStore(), nil
	case config.BackendRedis:
		r, err := store.OpenRedis(ctx, cfg.RedisURL)
		if err != nil {
			return nil, fmt.Errorf("open redis: %w", err)
		}
		return r, nil
	default:
		db, err := store.OpenSQLite(cfg.DBPath)
		if err != nil {
			return nil, fmt.Errorf("open sqlite: %w", err)
		}
		return db, nil
	}
}
