package transport

import (
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/gorilla/websocket"
	"github.com/labstack/echo/v4"

	kds "puestitoKds/internal/modules/kds/domain"
	"puestitoKds/internal/modules/kitchen/application/port"
	"puestitoKds/internal/modules/kitchen/application/usecase"
	"puestitoKds/internal/modules/kitchen/infrastructure"
	"puestitoKds/internal/shared/auth"
)

var upgrader = websocket.Upgrader{
	CheckOrigin: func(r *http.Request) bool { return true },
}

// Dependencies wires the kitchen use cases into the HTTP surface.
type Dependencies struct {
	Hub          *infrastructure.Hub
	Destinations *usecase.Destinations
	Tickets      *usecase.TicketsUseCase
	Intake       *usecase.IntakeUseCase
	Alerts       *usecase.AlertsUseCase
	Gate         *usecase.AccessGate
	Tokens       auth.TokenValidator
	APIKey       string
	SendBuffer   int
	PingInterval time.Duration
}

func RegisterRoutes(e *echo.Echo, deps Dependencies) {
	e.GET("/healthz", func(c echo.Context) error {
		return c.JSON(http.StatusOK, map[string]any{"status": "ok", "stations": deps.Hub.Connected()})
	})
	e.GET("/ws/kds/:destino", NewWebsocketHandler(deps.Hub, deps.Destinations, deps.Tokens, deps.SendBuffer, deps.PingInterval))

	api := e.Group("/api")
	api.POST("/validar-pin", NewValidatePinHandler(deps.Gate))
	api.GET("/kds-orders/:destino", NewPendingTicketsHandler(deps.Tickets))
	api.POST("/kds-complete", NewCompleteTicketHandler(deps.Tickets), requireStation(deps.APIKey, deps.Tokens))
	api.POST("/send-kds-message", NewSendAlertHandler(deps.Alerts), requireAPIKey(deps.APIKey))
	api.POST("/update-item-note", NewUpdateNoteHandler(deps.Tickets), requireAPIKey(deps.APIKey))

	e.POST("/nueva-orden", NewOrderIntakeHandler(deps.Intake), requireAPIKey(deps.APIKey))
}

// NewWebsocketHandler exposes /ws/kds/:destino. The connection only carries
// push events; snapshots are fetched over HTTP. A station token, when sent,
// must be scoped to the requested destination.
func NewWebsocketHandler(hub *infrastructure.Hub, destinations *usecase.Destinations, tokens auth.TokenValidator, sendBuffer int, pingInterval time.Duration) echo.HandlerFunc {
	return func(c echo.Context) error {
		destino, err := destinations.Resolve(c.Param("destino"), true)
		if err != nil {
			return respondError(c, "ws", err)
		}
		if err := checkStationToken(tokens, auth.StationToken(c.Request()), destino); err != nil {
			return respondError(c, "ws", err)
		}

		conn, err := upgrader.Upgrade(c.Response(), c.Request(), nil)
		if err != nil {
			slog.Error("ws upgrade failed", slog.String("destino", destino.String()), slog.String("ip", c.RealIP()), slog.Any("error", err))
			return err
		}

		client := infrastructure.NewClient(hub, conn, destino, sendBuffer, pingInterval)
		hub.Attach(client)
		go client.WritePump()
		go client.ReadPump()

		if hello, err := kds.NewEnvelope(kds.EventConnect, map[string]string{
			"destino":   destino.String(),
			"sessionId": client.SessionID(),
		}, time.Now()); err == nil {
			client.SendEnvelope(hello)
		}
		slog.Info("ws station connected", slog.String("destino", destino.String()), slog.String("sessionId", client.SessionID()), slog.String("ip", c.RealIP()))
		return nil
	}
}

func checkStationToken(tokens auth.TokenValidator, raw string, destino kds.Destination) error {
	if raw == "" || tokens == nil {
		return nil
	}
	claims, err := tokens.Validate(raw)
	if err != nil {
		return fmt.Errorf("%w: %v", port.ErrUnauthorized, err)
	}
	if scope := kds.NormalizeDestination(claims.Destino); !scope.IsWildcard() && scope != destino {
		return fmt.Errorf("%w: token for %s cannot subscribe to %s", port.ErrForbidden, scope, destino)
	}
	return nil
}
