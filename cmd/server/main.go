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

	"github.com/go-redis/redis/v8"
	"github.com/pion/webrtc/v4"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
	"golang.org/x/sync/errgroup"

	"github.com/dkeye/Meet/internal/adapters/audit"
	router "github.com/dkeye/Meet/internal/adapters/http"
	"github.com/dkeye/Meet/internal/app"
	"github.com/dkeye/Meet/internal/app/orch"
	"github.com/dkeye/Meet/internal/config"
	"github.com/dkeye/Meet/internal/core"
)

func main() {
	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	zerolog.TimeFieldFormat = zerolog.TimeFormatUnix
	log.Logger = log.Output(zerolog.ConsoleWriter{Out: os.Stderr})
	zerolog.SetGlobalLevel(zerolog.InfoLevel)

	cfg, err := config.Load()
	if err != nil {
		log.Fatal().Err(err).Msg("failed to load config")
	}
	if lvl, err := zerolog.ParseLevel(cfg.LogLevel); err == nil {
		zerolog.SetGlobalLevel(lvl)
	}

	if err := run(ctx, cfg); err != nil {
		log.Error().Err(err).Msg("server stopped with error")
		os.Exit(1)
	}
	log.Info().Msg("Server exited gracefully")
}

func auditSink(ctx context.Context, cfg *config.Config) (core.AuditSink, func()) {
	if cfg.Audit.RedisAddr == "" {
		return audit.LogSink{Logger: log.Logger}, func() {}
	}
	client := redis.NewClient(&redis.Options{Addr: cfg.Audit.RedisAddr})
	sink := audit.NewRedisSink(client, cfg.Audit.RedisKey)
	if err := sink.Ping(ctx); err != nil {
		log.Warn().Err(err).Str("addr", cfg.Audit.RedisAddr).Msg("redis audit sink unreachable")
	}
	return sink, func() { _ = client.Close() }
}

func iceServers(cfg *config.Config) []webrtc.ICEServer {
	out := make([]webrtc.ICEServer, 0, len(cfg.ICEServers))
	for _, s := range cfg.ICEServers {
		srv := webrtc.ICEServer{URLs: s.URLs, Username: s.Username}
		if s.Credential != "" {
			srv.Credential = s.Credential
		}
		out = append(out, srv)
	}
	return out
}

func run(ctx context.Context, cfg *config.Config) error {
	action, err := app.ParseBackpressureAction(cfg.SlowConsumer)
	if err != nil {
		return err
	}
	sink, closeSink := auditSink(ctx, cfg)
	defer closeSink()

	reg := app.NewRegistry(app.SimplePolicy{Action: action})
	rooms := app.NewRooms(cfg.Rooms.IDAttempts)
	auditLog := app.NewAuditLog(sink, cfg.Audit.Buffer)
	words := cfg.Chat.ProfanityWords
	if len(words) == 0 {
		words = app.DefaultProfanityWords
	}

	o := (&orch.Orchestrator{
		Registry:   reg,
		Rooms:      rooms,
		Moderation: app.NewModeration(auditLog, app.NewProfanityFilter(words)),
		Audit:      auditLog,
		Breakouts:  app.NewBreakouts(rooms, cfg.Breakout.MinRooms, cfg.Breakout.MaxRooms),
		Relay:      app.NewRelay(reg),
		Hasher:     app.BcryptPasswords{Cost: cfg.Password.BcryptCost},
		ICE:        app.StaticICE{Servers: iceServers(cfg)},
		Limiter:    app.NewRateLimiter(cfg.Chat.RateLimit, cfg.Chat.RateInterval),
		InboxSize:  cfg.Rooms.InboxSize,
		// Rooms created but never joined are deleted after this long.
		EmptyRoomTTL: cfg.Rooms.EmptyTTL,
	}).Start(ctx)

	addr := fmt.Sprintf(":%d", cfg.Port)
	srv := &http.Server{
		Addr:    addr,
		Handler: router.SetupRouter(ctx, cfg, o),
	}

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		log.Info().Str("addr", addr).Msg("Meet server started")
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return fmt.Errorf("http server: %w", err)
		}
		return nil
	})
	g.Go(func() error {
		return auditLog.Run(gctx)
	})
	g.Go(func() error {
		<-gctx.Done()
		log.Info().Msg("Shutting down")
		shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer shutdownCancel()
		if err := srv.Shutdown(shutdownCtx); err != nil {
			log.Error().Err(err).Msg("Server forced to shutdown")
		}
		o.Close()
		return nil
	})
	return g.Wait()
}
