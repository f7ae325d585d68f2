package transport

import (
	"log/slog"
	"net/http"

	"github.com/labstack/echo/v4"

	"puestitoKds/internal/modules/kitchen/application/port"
	"puestitoKds/internal/shared/httputil"
)

var kitchenErrors = httputil.NewErrorMapper().
	WithMapping(port.ErrUnknownDestination, http.StatusBadRequest, "destino no valido").
	WithMapping(port.ErrInvalidOrder, http.StatusBadRequest, "orden no valida").
	WithMapping(port.ErrInvalidRequest, http.StatusBadRequest, "datos incompletos").
	WithMapping(port.ErrItemNotFound, http.StatusNotFound, "item no encontrado").
	WithMapping(port.ErrInvalidPin, http.StatusUnauthorized, "PIN incorrecto").
	WithMapping(port.ErrUnauthorized, http.StatusUnauthorized, "no autorizado").
	WithMapping(port.ErrForbidden, http.StatusForbidden, "destino no permitido")

type statusResponse struct {
	Status  string `json:"status"`
	Message string `json:"message,omitempty"`
}

func respondError(c echo.Context, op string, err error) error {
	info := kitchenErrors.Map(err)
	if info.Status >= http.StatusInternalServerError {
		slog.Error("kds request failed", slog.String("op", op), slog.Int("status", info.Status), slog.Any("error", err))
	} else {
		slog.Warn("kds request rejected", slog.String("op", op), slog.Int("status", info.Status), slog.Any("error", err))
	}
	return c.JSON(info.Status, statusResponse{Status: "error", Message: info.Message})
}
