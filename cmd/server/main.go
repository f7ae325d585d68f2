package main

import (
	"context"
	"errors"
	"fmt"
	"log"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	"github.com/labstack/echo/v4"
	"github.com/redis/go-redis/v9"

	"puestitoKds/internal/config"
	kds "puestitoKds/internal/modules/kds/domain"
	"puestitoKds/internal/modules/kitchen/application/handler"
	"puestitoKds/internal/modules/kitchen/application/port"
	"puestitoKds/internal/modules/kitchen/application/usecase"
	"puestitoKds/internal/modules/kitchen/domain"
	"puestitoKds/internal/modules/kitchen/infrastructure"
	transport "puestitoKds/internal/modules/kitchen/interface"
	"puestitoKds/internal/platform/broker"
	"puestitoKds/internal/shared/auth"
	"puestitoKds/internal/shared/logging"
)

func main() {
	if err := godotenv.Overload(); err != nil {
		if !errors.Is(err, os.ErrNotExist) {
			fmt.Fprintf(os.Stderr, ".env load warning: %v\n", err)
		}
	}
	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "config load error: %v\n", err)
		os.Exit(1)
	}

	logFile, _, err := logging.SetupDaily(cfg.Logging.Directory, os.Stdout, logging.Config{
		Level:     cfg.Logging.Level,
		Format:    cfg.Logging.Format,
		AddSource: true,
	})
	if err != nil {
		fmt.Fprintf(os.Stderr, "logging setup error: %v\n", err)
		os.Exit(1)
	}
	defer logFile.Close()
	slog.Info("logging initialized", slog.String("directory", cfg.Logging.Directory), slog.String("level", cfg.Logging.Level), slog.String("format", cfg.Logging.Format))

	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	store, closeStore, err := newOrderStore(ctx, cfg.Redis, cfg.Kitchen.OrderRetention)
	if err != nil {
		slog.Error("order store unavailable", slog.Any("error", err))
		os.Exit(1)
	}
	defer closeStore()

	hub := infrastructure.NewHub()
	destinations := usecase.NewDestinations(cfg.Kitchen.Destinations)
	router := domain.Router{
		BeveragePrefixes:    cfg.Kitchen.BeveragePrefixes,
		BeverageDestination: kds.NormalizeDestination(cfg.Kitchen.BeverageDestination),
		DefaultDestination:  kds.NormalizeDestination(cfg.Kitchen.DefaultDestination),
	}
	tokens := auth.NewStationTokens(cfg.Security.JWTSecret, cfg.Security.TokenTTL)
	if !tokens.Enabled() {
		slog.Warn("JWT_SECRET not set, stations authenticate with the shared api key only")
	}
	gate, err := usecase.NewAccessGate(cfg.Security.Pins, tokens, 0)
	if err != nil {
		slog.Error("access gate setup failed", slog.Any("error", err))
		os.Exit(1)
	}

	tickets := usecase.NewTicketsUseCase(store, hub, destinations)
	intake := usecase.NewIntakeUseCase(store, hub, router)
	alerts := usecase.NewAlertsUseCase(hub, destinations)

	registry := infrastructure.NewHandlerRegistry()
	for _, topic := range cfg.Kafka.IntakeTopics {
		registry.Register(&handler.OrderIntakeHandler{TopicName: topic, UseCase: intake})
	}
	for _, topic := range cfg.Kafka.AlertTopics {
		registry.Register(&handler.MessageAlertHandler{TopicName: topic, UseCase: alerts})
	}
	slog.Info("kafka config resolved", slog.Any("brokers", cfg.Kafka.Brokers), slog.String("group", cfg.Kafka.GroupID), slog.Any("topics", registry.Topics()))
	broker.StartKafkaConsumers(ctx, registry, cfg.Kafka.Brokers, cfg.Kafka.GroupID)

	var validator auth.TokenValidator
	if tokens.Enabled() {
		validator = tokens
	}

	e := echo.New()
	e.HideBanner = true
	e.Logger.SetOutput(log.Writer())
	transport.RegisterRoutes(e, transport.Dependencies{
		Hub:          hub,
		Destinations: destinations,
		Tickets:      tickets,
		Intake:       intake,
		Alerts:       alerts,
		Gate:         gate,
		Tokens:       validator,
		APIKey:       cfg.Security.APIKey,
		SendBuffer:   cfg.Websocket.SendBuffer,
		PingInterval: cfg.Websocket.PingInterval,
	})

	go func() {
		slog.Info("http server starting", slog.String("port", cfg.Server.Port), slog.Any("destinos", destinations.List()))
		if err := e.Start(":" + cfg.Server.Port); err != nil && !errors.Is(err, http.ErrServerClosed) {
			slog.Error("http server stopped", slog.Any("error", err))
			cancel()
		}
	}()

	<-ctx.Done()
	slog.Info("shutting down")
	shutdownCtx, stop := context.WithTimeout(context.Background(), 5*time.Second)
	defer stop()
	if err := e.Shutdown(shutdownCtx); err != nil {
		slog.Warn("http shutdown error", slog.Any("error", err))
	}
}

func newOrderStore(ctx context.Context, cfg config.RedisConfig, retention time.Duration) (port.OrderStore, func(), error) {
	if cfg.Addr == "" {
		slog.Info("order store: memory")
		return infrastructure.NewMemoryOrderStore(retention), func() {}, nil
	}
	client := redis.NewClient(&redis.Options{Addr: cfg.Addr, Password: cfg.Password, DB: cfg.DB})
	pingCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()
	if err := client.Ping(pingCtx).Err(); err != nil {
		_ = client.Close()
		return nil, nil, fmt.Errorf("redis ping %s: %w", cfg.Addr, err)
	}
	slog.Info("order store: redis", slog.String("addr", cfg.Addr), slog.Int("db", cfg.DB))
	return infrastructure.NewRedisOrderStore(client, "kds", retention), func() { _ = client.Close() }, nil
}
