package transport

import (
	"errors"
	"net/http"

	"github.com/labstack/echo/v4"

	kds "puestitoKds/internal/modules/kds/domain"
	"puestitoKds/internal/modules/kitchen/application/port"
	"puestitoKds/internal/modules/kitchen/application/usecase"
	"puestitoKds/internal/modules/kitchen/domain"
)

type pinRequest struct {
	Pin string `json:"pin"`
}

type pinResponse struct {
	Status   string `json:"status"`
	Redirect string `json:"redirect"`
	Destino  string `json:"destino"`
	Token    string `json:"token,omitempty"`
}

type completeRequest struct {
	MesaKey string `json:"mesa_key"`
	Destino string `json:"destino"`
}

type alertRequest struct {
	MesaKey string `json:"mesa_key"`
	Mensaje string `json:"mensaje"`
	Destino string `json:"destino"`
}

type noteRequest struct {
	MesaKey string `json:"mesa_key"`
	ItemID  string `json:"item_id"`
	Nota    string `json:"nota"`
}

func NewValidatePinHandler(gate *usecase.AccessGate) echo.HandlerFunc {
	return func(c echo.Context) error {
		var req pinRequest
		if err := c.Bind(&req); err != nil {
			return respondError(c, "validar-pin", port.ErrInvalidPin)
		}
		grant, err := gate.Validate(req.Pin)
		if err != nil {
			return respondError(c, "validar-pin", err)
		}
		return c.JSON(http.StatusOK, pinResponse{
			Status:   "success",
			Redirect: grant.Redirect,
			Destino:  grant.Destino.String(),
			Token:    grant.Token,
		})
	}
}

func NewPendingTicketsHandler(tickets *usecase.TicketsUseCase) echo.HandlerFunc {
	return func(c echo.Context) error {
		groups, err := tickets.Pending(c.Request().Context(), c.Param("destino"))
		if err != nil {
			return respondError(c, "kds-orders", err)
		}
		body, err := kds.EncodeGroups(groups)
		if err != nil {
			return respondError(c, "kds-orders", err)
		}
		return c.JSONBlob(http.StatusOK, body)
	}
}

func NewCompleteTicketHandler(tickets *usecase.TicketsUseCase) echo.HandlerFunc {
	return func(c echo.Context) error {
		var req completeRequest
		if err := c.Bind(&req); err != nil {
			return respondError(c, "kds-complete", port.ErrInvalidRequest)
		}
		err := tickets.Complete(c.Request().Context(), usecase.CompleteTicketInput{
			MesaKey: req.MesaKey,
			Destino: req.Destino,
			Scope:   stationScope(c),
		})
		if err != nil {
			return respondError(c, "kds-complete", err)
		}
		return c.JSON(http.StatusOK, statusResponse{Status: "success"})
	}
}

func NewSendAlertHandler(alerts *usecase.AlertsUseCase) echo.HandlerFunc {
	return func(c echo.Context) error {
		var req alertRequest
		if err := c.Bind(&req); err != nil {
			return respondError(c, "send-kds-message", port.ErrInvalidRequest)
		}
		err := alerts.Send(c.Request().Context(), usecase.SendAlertInput{
			Destino: req.Destino,
			MesaKey: req.MesaKey,
			Message: req.Mensaje,
		})
		if err != nil {
			return respondError(c, "send-kds-message", err)
		}
		return c.JSON(http.StatusOK, statusResponse{Status: "sent"})
	}
}

func NewOrderIntakeHandler(intake *usecase.IntakeUseCase) echo.HandlerFunc {
	return func(c echo.Context) error {
		var req domain.IntakeOrder
		if err := c.Bind(&req); err != nil {
			return respondError(c, "nueva-orden", errors.Join(port.ErrInvalidOrder, err))
		}
		result, err := intake.Execute(c.Request().Context(), req)
		if err != nil {
			return respondError(c, "nueva-orden", err)
		}
		status := "ok_new"
		if result.Duplicate {
			status = "ok_duplicate"
		}
		return c.JSON(http.StatusOK, map[string]string{
			"status":   status,
			"order_id": result.OrderID,
			"mesa_key": result.MesaKey,
		})
	}
}

func NewUpdateNoteHandler(tickets *usecase.TicketsUseCase) echo.HandlerFunc {
	return func(c echo.Context) error {
		var req noteRequest
		if err := c.Bind(&req); err != nil {
			return respondError(c, "update-item-note", port.ErrInvalidRequest)
		}
		err := tickets.UpdateNote(c.Request().Context(), usecase.UpdateNoteInput{
			MesaKey:    req.MesaKey,
			MenuItemID: req.ItemID,
			Note:       req.Nota,
		})
		if err != nil {
			return respondError(c, "update-item-note", err)
		}
		return c.JSON(http.StatusOK, statusResponse{Status: "success"})
	}
}
