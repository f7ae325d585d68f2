package infrastructure

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"strings"

	"puestitoKds/internal/modules/terminal/application/port"
	"puestitoKds/internal/modules/terminal/domain"
)

type pinBody struct {
	Pin string `json:"pin"`
}

type pinResult struct {
	Status   string `json:"status"`
	Redirect string `json:"redirect"`
	Token    string `json:"token"`
	Message  string `json:"message"`
}

// PinHTTPClient posts /api/validar-pin.
type PinHTTPClient struct {
	rest *RESTClient
}

func NewPinHTTPClient(rest *RESTClient) *PinHTTPClient {
	return &PinHTTPClient{rest: rest}
}

// ValidatePin maps any answer other than status "success" to ErrPinRejected.
// Only network failures are ErrTransport.
func (c *PinHTTPClient) ValidatePin(ctx context.Context, pin string) (domain.Grant, error) {
	payload, err := json.Marshal(pinBody{Pin: pin})
	if err != nil {
		return domain.Grant{}, fmt.Errorf("%w: encode pin: %v", domain.ErrProtocol, err)
	}
	req, err := c.rest.NewRequest(ctx, http.MethodPost, "/api/validar-pin", bytes.NewReader(payload))
	if err != nil {
		return domain.Grant{}, fmt.Errorf("%w: build pin request: %v", domain.ErrTransport, err)
	}
	res, err := c.rest.Do(req)
	if err != nil {
		return domain.Grant{}, err
	}
	defer res.Body.Close()

	var body pinResult
	if err := json.NewDecoder(res.Body).Decode(&body); err != nil || !strings.EqualFold(body.Status, "success") {
		return domain.Grant{}, fmt.Errorf("%w: status %d %s", domain.ErrPinRejected, res.StatusCode, body.Message)
	}
	destino, err := domain.DestinationFromRedirect(body.Redirect)
	if err != nil {
		return domain.Grant{}, err
	}
	return domain.Grant{Destino: destino, Redirect: body.Redirect, Token: strings.TrimSpace(body.Token)}, nil
}

var _ port.PinGate = (*PinHTTPClient)(nil)
