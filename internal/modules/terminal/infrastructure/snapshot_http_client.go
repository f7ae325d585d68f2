package infrastructure

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"time"

	kds "puestitoKds/internal/modules/kds/domain"
	"puestitoKds/internal/modules/terminal/application/port"
	"puestitoKds/internal/modules/terminal/domain"
)

const maxSnapshotBytes = 4 << 20

// SnapshotHTTPClient fetches GET /api/kds-orders/{destino}. It never retries;
// the sync controller decides when to fetch again.
type SnapshotHTTPClient struct {
	rest *RESTClient
	now  func() time.Time
}

func NewSnapshotHTTPClient(rest *RESTClient) *SnapshotHTTPClient {
	return &SnapshotHTTPClient{rest: rest, now: time.Now}
}

func (c *SnapshotHTTPClient) FetchSnapshot(ctx context.Context, destino kds.Destination) (*kds.Snapshot, error) {
	req, err := c.rest.NewRequest(ctx, http.MethodGet, "/api/kds-orders/"+url.PathEscape(destino.String()), nil)
	if err != nil {
		return nil, fmt.Errorf("%w: build snapshot request: %v", domain.ErrTransport, err)
	}
	res, err := c.rest.Do(req)
	if err != nil {
		return nil, err
	}
	defer res.Body.Close()
	slog.Debug("snapshot response", slog.Int("status", res.StatusCode), slog.String("destino", destino.String()))

	if res.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("%w: snapshot status %d: %s", domain.ErrProtocol, res.StatusCode, readErrorBody(res))
	}
	body, err := io.ReadAll(io.LimitReader(res.Body, maxSnapshotBytes))
	if err != nil {
		return nil, fmt.Errorf("%w: read snapshot: %v", domain.ErrTransport, err)
	}
	snap, err := kds.DecodeSnapshot(destino, body, c.now())
	if err != nil {
		return nil, fmt.Errorf("%w: %v", domain.ErrProtocol, err)
	}
	return snap, nil
}

var _ port.SnapshotFetcher = (*SnapshotHTTPClient)(nil)
