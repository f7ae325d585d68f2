package infrastructure

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"net/url"
	"time"

	"github.com/gorilla/websocket"

	kds "puestitoKds/internal/modules/kds/domain"
	"puestitoKds/internal/modules/terminal/application/port"
	"puestitoKds/internal/modules/terminal/domain"
	"puestitoKds/internal/shared/auth"
)

type PushOptions struct {
	APIKey       string
	Token        string
	ReconnectMin time.Duration
	ReconnectMax time.Duration
	// ReadTimeout bounds the silence tolerated between frames or server pings.
	ReadTimeout time.Duration
}

// PushSubscription keeps a websocket to /ws/kds/{destino} open and reconnects
// until its context ends.
type PushSubscription struct {
	url     string
	destino kds.Destination
	header  http.Header
	dialer  *websocket.Dialer
	opts    PushOptions
	sleep   func(ctx context.Context, d time.Duration) error
}

func NewPushSubscription(rest *RESTClient, destino kds.Destination, opts PushOptions) (*PushSubscription, error) {
	wsURL, err := rest.WebsocketURL("/ws/kds/" + url.PathEscape(destino.String()))
	if err != nil {
		return nil, err
	}
	if opts.ReadTimeout <= 0 {
		opts.ReadTimeout = 75 * time.Second
	}
	header := http.Header{}
	if opts.APIKey != "" {
		header.Set(auth.HeaderAPIKey, opts.APIKey)
	}
	if opts.Token != "" {
		header.Set("Authorization", "Bearer "+opts.Token)
	}
	return &PushSubscription{
		url:     wsURL,
		destino: destino,
		header:  header,
		dialer:  &websocket.Dialer{HandshakeTimeout: 10 * time.Second, Proxy: http.ProxyFromEnvironment},
		opts:    opts,
		sleep:   sleepContext,
	}, nil
}

// Run delivers transport transitions and push events to listener from the
// calling goroutine. It returns only when ctx is done.
func (s *PushSubscription) Run(ctx context.Context, listener port.PushListener) error {
	attempt := 0
	for {
		if err := ctx.Err(); err != nil {
			return err
		}
		conn, _, err := s.dialer.DialContext(ctx, s.url, s.header)
		if err != nil {
			if ctx.Err() != nil {
				return ctx.Err()
			}
			listener.OnDisconnect(errors.Join(domain.ErrTransport, err))
			wait := reconnectBackoff(attempt, s.opts.ReconnectMin, s.opts.ReconnectMax)
			slog.Debug("push dial failed", slog.String("destino", s.destino.String()), slog.Int("attempt", attempt), slog.Duration("retryIn", wait), slog.Any("error", err))
			attempt++
			if err := s.sleep(ctx, wait); err != nil {
				return err
			}
			continue
		}

		attempt = 0
		listener.OnConnect()
		err = s.readLoop(ctx, conn, listener)
		listener.OnDisconnect(err)
		if ctx.Err() != nil {
			return ctx.Err()
		}
		if err := s.sleep(ctx, reconnectBackoff(0, s.opts.ReconnectMin, s.opts.ReconnectMax)); err != nil {
			return err
		}
	}
}

func (s *PushSubscription) readLoop(ctx context.Context, conn *websocket.Conn, listener port.PushListener) error {
	stop := make(chan struct{})
	defer close(stop)
	go func() {
		select {
		case <-ctx.Done():
			_ = conn.WriteControl(websocket.CloseMessage, websocket.FormatCloseMessage(websocket.CloseNormalClosure, ""), time.Now().Add(time.Second))
			_ = conn.Close()
		case <-stop:
			_ = conn.Close()
		}
	}()

	_ = conn.SetReadDeadline(time.Now().Add(s.opts.ReadTimeout))
	conn.SetPingHandler(func(data string) error {
		_ = conn.SetReadDeadline(time.Now().Add(s.opts.ReadTimeout))
		return conn.WriteControl(websocket.PongMessage, []byte(data), time.Now().Add(5*time.Second))
	})

	for {
		_, data, err := conn.ReadMessage()
		if err != nil {
			return errors.Join(domain.ErrTransport, err)
		}
		_ = conn.SetReadDeadline(time.Now().Add(s.opts.ReadTimeout))

		var env kds.Envelope
		if err := json.Unmarshal(data, &env); err != nil {
			slog.Warn("push frame malformed", slog.String("destino", s.destino.String()), slog.Any("error", err))
			continue
		}
		ev, ok, err := kds.ParsePushEvent(env)
		if err != nil {
			slog.Warn("push event malformed", slog.String("event", env.Event), slog.Any("error", err))
			continue
		}
		if !ok {
			slog.Debug("push frame ignored", slog.String("event", env.Event))
			continue
		}
		listener.OnEvent(ev)
	}
}

func sleepContext(ctx context.Context, d time.Duration) error {
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-t.C:
		return nil
	}
}
