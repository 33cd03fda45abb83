package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/google/uuid"
	"github.com/gorilla/handlers"
	"github.com/redis/go-redis/v9"
	"github.com/robfig/cron/v3"

	"github.com/example/room-reservations/internal/application"
	"github.com/example/room-reservations/internal/config"
	httptransport "github.com/example/room-reservations/internal/http"
	"github.com/example/room-reservations/internal/jobs"
	"github.com/example/room-reservations/internal/notify"
	"github.com/example/room-reservations/internal/persistence/adapter"
	"github.com/example/room-reservations/internal/persistence/sqlite"
	"github.com/example/room-reservations/internal/persistence/sqlite/migration"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	cfg, err := config.LoadArgs(os.Args[1:])
	if err != nil {
		slog.New(slog.NewJSONHandler(os.Stderr, nil)).Error("failed to load configuration", "error", err)
		os.Exit(1)
	}

	logger := slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{Level: cfg.LogLevel}))
	slog.SetDefault(logger)

	app, err := newApp(ctx, cfg, logger)
	if err != nil {
		logger.Error("failed to initialize application", "error", err)
		os.Exit(1)
	}
	defer func() {
		if cerr := app.Close(); cerr != nil {
			logger.Error("failed to release resources", "error", cerr)
		}
	}()
	app.start(ctx)

	server := &http.Server{
		Addr:              fmt.Sprintf(":%d", cfg.HTTPPort),
		Handler:           app.handler,
		ReadHeaderTimeout: 10 * time.Second,
		ReadTimeout:       30 * time.Second,
		WriteTimeout:      30 * time.Second,
		IdleTimeout:       60 * time.Second,
	}

	go func() {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		if err := server.Shutdown(shutdownCtx); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Error("failed to shutdown server", "error", err)
		}
	}()

	logger.Info("reservations API listening", "addr", server.Addr, "strict_approval", cfg.StrictApproval, "redis", cfg.RedisEnabled())
	if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		logger.Error("server encountered error", "error", err)
		os.Exit(1)
	}
}

type app struct {
	cfg      config.Config
	logger   *slog.Logger
	handler  http.Handler
	store    *sqlite.Store
	hub      *notify.Hub
	redis    *redis.Client
	relay    *notify.RedisRelay
	cron     *cron.Cron
	bookings *application.BookingService
	rooms    *application.RoomService
}

func newApp(ctx context.Context, cfg config.Config, logger *slog.Logger) (_ *app, err error) {
	a := &app{cfg: cfg, logger: logger}
	defer func() {
		if err != nil {
			_ = a.Close()
		}
	}()

	a.store, err = sqlite.Open(ctx, migration.DefaultSQLiteConfig(cfg.SQLitePath))
	if err != nil {
		return nil, fmt.Errorf("open storage: %w", err)
	}
	if err = a.store.Migrate(ctx, logger); err != nil {
		return nil, err
	}

	passwordHash, err := adminPasswordHash(cfg)
	if err != nil {
		return nil, err
	}

	a.hub = notify.NewHub(logger)
	var notifier application.Notifier = a.hub
	if cfg.RedisEnabled() {
		a.redis = redis.NewClient(&redis.Options{Addr: cfg.RedisAddr, Password: cfg.RedisPassword})
		a.relay = notify.NewRedisRelay(a.redis, cfg.RedisChannel, a.hub, logger)
		notifier = a.relay
	}

	idGenerator := func() string { return uuid.NewString() }
	now := func() time.Time { return time.Now().UTC() }

	rooms := adapter.NewRooms(a.store.Rooms)
	bookings := adapter.NewBookings(a.store.Bookings)
	checker := application.NewAvailabilityCheckerWithLogger(bookings, rooms, logger)

	a.rooms = application.NewRoomServiceWithLogger(rooms, checker, notifier, idGenerator, now, logger)
	a.bookings = application.NewBookingServiceWithLogger(bookings, rooms, a.store, checker, notifier, idGenerator, now, logger,
		application.WithStrictApproval(cfg.StrictApproval))
	authService := application.NewAuthServiceWithLogger(
		application.AdminCredentials{Username: cfg.AdminUser, PasswordHash: passwordHash},
		[]byte(cfg.SessionSecret), application.VerifyPassword, now, cfg.SessionTTL, logger)

	seed := application.DefaultRoomNames
	if cfg.SeedFile != "" {
		if seed, err = config.LoadSeed(cfg.SeedFile); err != nil {
			return nil, err
		}
	}
	if _, err = a.rooms.EnsureDefaults(ctx, seed); err != nil {
		return nil, fmt.Errorf("seed rooms: %w", err)
	}

	if cfg.StatsEnabled() {
		a.cron = cron.New()
		if _, err = jobs.Schedule(ctx, a.cron, cfg.StatsSchedule, jobs.NewStatsReporter(a.bookings, logger)); err != nil {
			return nil, err
		}
	}

	router := httptransport.NewRouter(httptransport.RouterConfig{
		Auth:     httptransport.NewAuthHandler(authService, logger),
		Rooms:    httptransport.NewRoomHandler(a.rooms, logger),
		Bookings: httptransport.NewBookingHandler(a.bookings, logger),
		Stats:    httptransport.NewStatsHandler(a.bookings, a.store, logger),
		Events:   a.hub,
		Sessions: authService,
		Logger:   logger,
		Middleware: []func(http.Handler) http.Handler{
			handlers.RecoveryHandler(handlers.RecoveryLogger(recoveryLogger{logger}), handlers.PrintRecoveryStack(true)),
			handlers.CORS(
				handlers.AllowedOrigins(cfg.CORSOrigins),
				handlers.AllowedMethods([]string{http.MethodGet, http.MethodPost, http.MethodDelete, http.MethodOptions}),
				handlers.AllowedHeaders([]string{"Authorization", "Content-Type"}),
				handlers.ExposedHeaders([]string{"X-Session-Token"}),
			),
			httptransport.RequestLogger(logger),
		},
	})
	a.handler = router
	return a, nil
}

// start launches the background workers. They stop with ctx.
func (a *app) start(ctx context.Context) {
	if a.relay != nil {
		go func() {
			if err := a.relay.Run(ctx); err != nil && !errors.Is(err, context.Canceled) {
				a.logger.Error("redis relay stopped", "error", err)
			}
		}()
	}
	if a.cron != nil {
		a.cron.Start()
	}
}

func (a *app) Close() error {
	var errs []error
	if a.cron != nil {
		<-a.cron.Stop().Done()
	}
	if a.hub != nil {
		if err := a.hub.Close(); err != nil {
			errs = append(errs, err)
		}
	}
	if a.redis != nil {
		if err := a.redis.Close(); err != nil {
			errs = append(errs, err)
		}
	}
	if a.store != nil {
		if err := a.store.Close(); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}

func adminPasswordHash(cfg config.Config) (string, error) {
	if cfg.AdminPasswordHash != "" {
		if err := application.CheckPasswordHash(cfg.AdminPasswordHash); err != nil {
			return "", fmt.Errorf("RESERVATIONS_ADMIN_PASSWORD_HASH: %w", err)
		}
		return cfg.AdminPasswordHash, nil
	}
	hash, err := application.HashPassword(cfg.AdminPassword, application.DefaultPasswordParams)
	if err != nil {
		return "", fmt.Errorf("hash admin password: %w", err)
	}
	return hash, nil
}

type recoveryLogger struct {
	logger *slog.Logger
}

func (l recoveryLogger) Println(v ...interface{}) {
	l.logger.Error("panic recovered", "detail", fmt.Sprint(v...))
}
