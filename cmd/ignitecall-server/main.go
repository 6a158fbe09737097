package main

import (
	"context"
	"crypto/rand"
	"errors"
	"log/slog"
	"net/http"
	"net/url"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/redis/go-redis/v9"

	"ignitecall/internal/config"
	"ignitecall/internal/jobs"
	"ignitecall/internal/service/auth"
	"ignitecall/internal/service/availability"
	"ignitecall/internal/service/intervals"
	"ignitecall/internal/service/scheduling"
	"ignitecall/internal/service/users"
	"ignitecall/internal/store/postgres"
	"ignitecall/internal/transport/rest"
)

func main() {
	log := slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{Level: slog.LevelInfo})).With(
		slog.String("service", "ignitecall-server"),
	)
	slog.SetDefault(log)

	cfg, err := config.Load()
	if err != nil {
		log.Error("config load failed", slog.Any("err", err))
		os.Exit(1)
	}

	log = slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{Level: parseLogLevel(cfg.LogLevel)})).With(
		slog.String("service", "ignitecall-server"),
	)
	slog.SetDefault(log)

	log.Info("starting",
		slog.String("http_addr", cfg.HTTPAddr()),
		slog.String("log_level", cfg.LogLevel),
		slog.String("time_zone", cfg.TimeZone.String()),
	)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	log.Info("connecting to database", databaseLogArgs(cfg.DatabaseURL)...)
	connectCtx, cancel := context.WithTimeout(ctx, 10*time.Second)
	db, err := postgres.Open(connectCtx, cfg.DatabaseURL, postgres.PoolConfig{
		MaxOpenConns:    cfg.DBMaxOpenConns,
		MaxIdleConns:    cfg.DBMaxIdleConns,
		ConnMaxLifetime: cfg.DBConnMaxLifetime,
		ConnMaxIdleTime: cfg.DBConnMaxIdleTime,
	})
	cancel()
	if err != nil {
		args := append([]any{slog.Any("err", err)}, databaseLogArgs(cfg.DatabaseURL)...)
		log.Error("database connection failed", args...)
		os.Exit(1)
	}
	defer func() {
		if err := postgres.Close(db); err != nil {
			log.Warn("database close failed", slog.Any("err", err))
		}
	}()

	readyChecks := []rest.ReadyCheck{{Name: "db", Check: postgres.ReadyCheck(db)}}

	var limiter rest.Limiter = rest.NewLocalLimiter(cfg.RateLimit, cfg.RateLimitWindow)
	if cfg.RedisAddr != "" {
		rdb := redis.NewClient(&redis.Options{
			Addr:     cfg.RedisAddr,
			Password: cfg.RedisPassword,
			DB:       cfg.RedisDB,
		})
		defer func() {
			if err := rdb.Close(); err != nil {
				log.Warn("redis close failed", slog.Any("err", err))
			}
		}()
		limiter = rest.NewRedisLimiter(rdb, cfg.RateLimit, cfg.RateLimitWindow, "ignitecall:rl")
		readyChecks = append(readyChecks, rest.ReadyCheck{
			Name:  "redis",
			Check: func(ctx context.Context) error { return rdb.Ping(ctx).Err() },
		})
		log.Info("redis rate limiter enabled", slog.String("redis_addr", cfg.RedisAddr))
	} else {
		log.Info("redis not configured; using in-process rate limiter")
	}

	claimSecret := []byte(cfg.ClaimSecret)
	if len(claimSecret) == 0 {
		claimSecret = make([]byte, 32)
		if _, err := rand.Read(claimSecret); err != nil {
			log.Error("claim secret generation failed", slog.Any("err", err))
			os.Exit(1)
		}
		log.Warn("auth.claim_secret not set; username claims will not survive a restart")
	}

	userRepo := postgres.NewUserRepo(db)
	calendarRepo := postgres.NewCalendarRepo(db)

	claims := auth.NewClaimSigner(claimSecret, cfg.ClaimTTL)
	adapter := auth.NewAdapter(userRepo, postgres.NewAccountRepo(db), postgres.NewSessionRepo(db), claims, cfg.SessionTTL)

	srv := rest.NewServer(rest.Options{
		Users:          users.NewService(userRepo),
		Availability:   availability.NewCalculator(userRepo, calendarRepo, calendarRepo, cfg.TimeZone),
		Intervals:      intervals.NewService(calendarRepo),
		Scheduling:     scheduling.NewService(userRepo, calendarRepo, cfg.TimeZone),
		Auth:           adapter,
		Claims:         claims,
		Limiter:        limiter,
		Logger:         log,
		RequestTimeout: cfg.HTTPRequestTimeout,
		TrustedProxies: cfg.HTTPTrustedProxies,
		AllowedOrigins: cfg.CORSAllowedOrigins,
		CookieSecure:   cfg.CookieSecure,
		AdapterSecret:  cfg.AdapterSecret,
		ReadyChecks:    readyChecks,
	})
	if cfg.AdapterSecret == "" {
		log.Info("auth.adapter_secret not set; sign-in endpoint disabled")
	}

	sweeper, err := jobs.Schedule(cfg.SessionSweepSpec, jobs.NewSessionSweeper(adapter, log, 30*time.Second))
	if err != nil {
		log.Error("session sweeper schedule invalid", slog.Any("err", err))
		os.Exit(1)
	}
	sweeper.Start()

	httpServer := &http.Server{
		Addr:              cfg.HTTPAddr(),
		Handler:           srv.Handler(),
		ReadHeaderTimeout: 5 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		errCh <- httpServer.ListenAndServe()
	}()

	log.Info("http server started", slog.String("http_addr", cfg.HTTPAddr()))

	select {
	case <-ctx.Done():
		log.Info("shutdown signal received")
		shutdown(log, httpServer, cfg.ShutdownTimeout)
	case err := <-errCh:
		if err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Error("http server stopped with error", slog.Any("err", err))
			<-sweeper.Stop().Done()
			os.Exit(1)
		}
	}

	<-sweeper.Stop().Done()
}

func shutdown(log *slog.Logger, s *http.Server, timeout time.Duration) {
	log.Info("shutting down http server", slog.Duration("timeout", timeout))

	ctx, cancel := context.WithTimeout(context.Background(), timeout)
	defer cancel()

	if err := s.Shutdown(ctx); err != nil {
		log.Warn("http graceful shutdown timed out; forcing close", slog.Any("err", err))
		_ = s.Close()
		return
	}
	log.Info("http server stopped")
}

func parseLogLevel(level string) slog.Level {
	switch strings.ToLower(strings.TrimSpace(level)) {
	case "debug":
		return slog.LevelDebug
	case "warn", "warning":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}

func databaseLogArgs(databaseURL string) []any {
	u, err := url.Parse(databaseURL)
	if err != nil {
		return []any{slog.String("db_url", "invalid")}
	}
	name := strings.TrimPrefix(u.Path, "/")
	host := u.Hostname()
	port := u.Port()
	if port == "" {
		port = "default"
	}
	if host == "" {
		host = "unknown"
	}
	if name == "" {
		name = "unknown"
	}
	return []any{
		slog.String("db_host", host),
		slog.String("db_port", port),
		slog.String("db_name", name),
	}
}
