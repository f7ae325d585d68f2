package console

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"strings"

	"puestitoKds/internal/modules/terminal/domain"
)

// Station is the part of a terminal session driven from the keyboard.
type Station interface {
	Submit(ctx context.Context, mesaKey string, report func(error)) bool
	Refresh()
}

// ErrQuit is returned by RunCommands when the operator asks to leave.
var ErrQuit = errors.New("quit requested")

// RunCommands reads one command per line until r is exhausted, ctx ends or the
// operator quits. Commands: "listo <mesa>" (alias "done"), "refrescar"
// (alias "refresh"), "salir" (alias "quit").
func RunCommands(ctx context.Context, r io.Reader, out io.Writer, station Station) error {
	readCtx, stop := context.WithCancel(ctx)
	defer stop()

	lines := make(chan string)
	scanErr := make(chan error, 1)
	go func() {
		defer close(lines)
		scanner := bufio.NewScanner(r)
		for scanner.Scan() {
			select {
			case lines <- scanner.Text():
			case <-readCtx.Done():
				return
			}
		}
		scanErr <- scanner.Err()
	}()

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case line, ok := <-lines:
			if !ok {
				select {
				case err := <-scanErr:
					return err
				default:
					return nil
				}
			}
			if err := handleCommand(ctx, line, out, station); err != nil {
				return err
			}
		}
	}
}

func handleCommand(ctx context.Context, line string, out io.Writer, station Station) error {
	fields := strings.Fields(line)
	if len(fields) == 0 {
		return nil
	}
	switch strings.ToLower(fields[0]) {
	case "listo", "done":
		if len(fields) < 2 {
			fmt.Fprintln(out, "uso: listo <mesa>")
			return nil
		}
		mesaKey := fields[1]
		accepted := station.Submit(ctx, mesaKey, func(err error) {
			if errors.Is(err, domain.ErrCompletionInFlight) {
				fmt.Fprintf(out, "-- mesa %s: ya se esta enviando\n", mesaKey)
			} else if err != nil {
				slog.Debug("completion command failed", slog.String("mesaKey", mesaKey), slog.Any("error", err))
			}
		})
		if !accepted {
			fmt.Fprintf(out, "-- mesa %s: sesion cerrada\n", mesaKey)
		}
	case "refrescar", "refresh":
		station.Refresh()
	case "salir", "quit", "exit":
		return ErrQuit
	default:
		fmt.Fprintf(out, "comando desconocido %q\n", fields[0])
	}
	return nil
}
