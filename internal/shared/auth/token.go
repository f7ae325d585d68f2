package auth

import (
	"net/http"
	"strings"
)

// HeaderAPIKey carries the static credential shared by all kitchen stations.
const HeaderAPIKey = "X-API-KEY"

// BearerFromHeader returns the token of an "Authorization: Bearer <token>" value,
// or "" when the header does not carry one.
func BearerFromHeader(header string) string {
	header = strings.TrimSpace(header)
	const prefix = "bearer "
	if len(header) <= len(prefix) || !strings.EqualFold(header[:len(prefix)], prefix) {
		return ""
	}
	return strings.TrimSpace(header[len(prefix):])
}

// StationToken looks for a station token in the Authorization header first and
// falls back to the "token" query parameter used by websocket clients.
func StationToken(r *http.Request) string {
	if r == nil {
		return ""
	}
	if token := BearerFromHeader(r.Header.Get("Authorization")); token != "" {
		return token
	}
	if r.URL == nil {
		return ""
	}
	return strings.TrimSpace(r.URL.Query().Get("token"))
}

// APIKey returns the static credential sent by a station, if any.
func APIKey(r *http.Request) string {
	if r == nil {
		return ""
	}
	return strings.TrimSpace(r.Header.Get(HeaderAPIKey))
}
