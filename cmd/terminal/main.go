package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"strings"
	"syscall"

	"github.com/joho/godotenv"
	"github.com/spf13/pflag"
	"golang.org/x/sync/errgroup"

	"puestitoKds/internal/config"
	kds "puestitoKds/internal/modules/kds/domain"
	"puestitoKds/internal/modules/terminal/application/usecase"
	"puestitoKds/internal/modules/terminal/infrastructure"
	console "puestitoKds/internal/modules/terminal/interface"
	"puestitoKds/internal/shared/logging"
)

func main() {
	if err := godotenv.Overload(); err != nil {
		if !errors.Is(err, os.ErrNotExist) {
			fmt.Fprintf(os.Stderr, ".env load warning: %v\n", err)
		}
	}
	cfg, err := config.LoadTerminal()
	if err != nil {
		fmt.Fprintf(os.Stderr, "config load error: %v\n", err)
		os.Exit(1)
	}
	bindFlags(pflag.CommandLine, cfg)
	pflag.Parse()
	cfg.Destino = strings.ToLower(strings.TrimSpace(cfg.Destino))
	cfg.PIN = strings.TrimSpace(cfg.PIN)
	if err := cfg.Validate(); err != nil {
		fmt.Fprintf(os.Stderr, "config error: %v\n", err)
		pflag.Usage()
		os.Exit(2)
	}

	// The console owns stdout, logs only go to the daily file.
	logFile, _, err := logging.SetupDaily(cfg.Logging.Directory, nil, logging.Config{
		Level:  cfg.Logging.Level,
		Format: cfg.Logging.Format,
	})
	if err != nil {
		fmt.Fprintf(os.Stderr, "logging setup error: %v\n", err)
		os.Exit(1)
	}
	defer logFile.Close()

	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	if err := run(ctx, cfg); err != nil {
		slog.Error("terminal stopped", slog.Any("error", err))
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		os.Exit(1)
	}
}

func bindFlags(fs *pflag.FlagSet, cfg *config.TerminalConfig) {
	fs.StringVarP(&cfg.ServerURL, "server", "s", cfg.ServerURL, "KDS server base URL")
	fs.StringVarP(&cfg.Destino, "destino", "d", cfg.Destino, "station destination (skipped when --pin is set)")
	fs.StringVar(&cfg.APIKey, "api-key", cfg.APIKey, "shared station API key")
	fs.StringVarP(&cfg.PIN, "pin", "p", cfg.PIN, "station PIN exchanged for a destination")
	fs.DurationVar(&cfg.RequestTimeout, "timeout", cfg.RequestTimeout, "HTTP request timeout")
	fs.DurationVar(&cfg.AlertTTL, "alert-ttl", cfg.AlertTTL, "how long an operator alert stays on screen")
	fs.DurationVar(&cfg.UrgentAfter, "urgent-after", cfg.UrgentAfter, "age after which a ticket is flagged urgent")
	fs.DurationVar(&cfg.ReconnectMin, "reconnect-min", cfg.ReconnectMin, "initial websocket reconnect delay")
	fs.DurationVar(&cfg.ReconnectMax, "reconnect-max", cfg.ReconnectMax, "maximum websocket reconnect delay")
	fs.StringVar(&cfg.Logging.Level, "log-level", cfg.Logging.Level, "log level (debug, info, warn, error)")
}

func run(ctx context.Context, cfg *config.TerminalConfig) error {
	rest := infrastructure.NewRESTClient(cfg.ServerURL, cfg.RequestTimeout, nil).WithCredentials(cfg.APIKey, "")

	destino := kds.NormalizeDestination(cfg.Destino)
	token := ""
	if cfg.PIN != "" {
		pad := usecase.NewPinPad(infrastructure.NewPinHTTPClient(rest))
		grant, err := pad.Enter(ctx, cfg.PIN)
		if err != nil {
			return fmt.Errorf("pin login: %w", err)
		}
		destino, token = grant.Destino, grant.Token
		slog.Info("station unlocked", slog.String("destino", destino.String()), slog.Bool("token", token != ""))
	}
	rest = rest.WithCredentials(cfg.APIKey, token)

	sub, err := infrastructure.NewPushSubscription(rest, destino, infrastructure.PushOptions{
		APIKey:       cfg.APIKey,
		Token:        token,
		ReconnectMin: cfg.ReconnectMin,
		ReconnectMax: cfg.ReconnectMax,
	})
	if err != nil {
		return err
	}

	g, gctx := errgroup.WithContext(ctx)
	session := usecase.NewSession(gctx, usecase.SessionConfig{
		Destino:   destino,
		Fetcher:   infrastructure.NewSnapshotHTTPClient(rest),
		Sender:    infrastructure.NewCompletionHTTPClient(rest),
		Presenter: console.NewPresenter(os.Stdout, destino, cfg.UrgentAfter),
		AlertTTL:  cfg.AlertTTL,
	})
	defer session.Close()

	g.Go(func() error {
		return sub.Run(gctx, session)
	})
	g.Go(func() error {
		return console.RunCommands(gctx, os.Stdin, os.Stdout, session)
	})

	err = g.Wait()
	if errors.Is(err, console.ErrQuit) || errors.Is(err, context.Canceled) {
		return nil
	}
	return err
}
