package infrastructure

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"strings"

	kds "puestitoKds/internal/modules/kds/domain"
	"puestitoKds/internal/modules/terminal/application/port"
	"puestitoKds/internal/modules/terminal/domain"
)

type completionBody struct {
	MesaKey string `json:"mesa_key"`
	Destino string `json:"destino"`
}

type statusBody struct {
	Status  string `json:"status"`
	Message string `json:"message"`
}

// CompletionHTTPClient posts /api/kds-complete. The server answers success for
// already completed tickets too.
type CompletionHTTPClient struct {
	rest *RESTClient
}

func NewCompletionHTTPClient(rest *RESTClient) *CompletionHTTPClient {
	return &CompletionHTTPClient{rest: rest}
}

func (c *CompletionHTTPClient) SendCompletion(ctx context.Context, mesaKey string, destino kds.Destination) error {
	payload, err := json.Marshal(completionBody{MesaKey: mesaKey, Destino: destino.String()})
	if err != nil {
		return fmt.Errorf("%w: encode completion: %v", domain.ErrProtocol, err)
	}
	req, err := c.rest.NewRequest(ctx, http.MethodPost, "/api/kds-complete", bytes.NewReader(payload))
	if err != nil {
		return fmt.Errorf("%w: build completion request: %v", domain.ErrTransport, err)
	}
	res, err := c.rest.Do(req)
	if err != nil {
		return err
	}
	defer res.Body.Close()

	if res.StatusCode != http.StatusOK {
		return fmt.Errorf("%w: completion status %d: %s", domain.ErrProtocol, res.StatusCode, readErrorBody(res))
	}
	var body statusBody
	if err := json.NewDecoder(res.Body).Decode(&body); err != nil {
		return fmt.Errorf("%w: decode completion response: %v", domain.ErrProtocol, err)
	}
	if !strings.EqualFold(body.Status, "success") {
		return fmt.Errorf("%w: completion status %q: %s", domain.ErrProtocol, body.Status, body.Message)
	}
	return nil
}

var _ port.CompletionSender = (*CompletionHTTPClient)(nil)
