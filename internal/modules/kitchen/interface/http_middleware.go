package transport

import (
	"github.com/labstack/echo/v4"

	"puestitoKds/internal/modules/kitchen/application/port"
	"puestitoKds/internal/shared/auth"
)

const stationScopeKey = "stationScope"

// requireAPIKey guards POS-facing endpoints with the shared credential.
func requireAPIKey(expected string) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			if !auth.APIKeyMatches(expected, auth.APIKey(c.Request())) {
				return respondError(c, c.Path(), port.ErrUnauthorized)
			}
			return next(c)
		}
	}
}

// requireStation accepts the shared credential or a station token. A token
// binds the request to its destination through stationScopeKey.
func requireStation(expected string, tokens auth.TokenValidator) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			req := c.Request()
			if auth.APIKeyMatches(expected, auth.APIKey(req)) {
				return next(c)
			}
			if tokens != nil {
				if claims, err := tokens.Validate(auth.BearerFromHeader(req.Header.Get("Authorization"))); err == nil {
					c.Set(stationScopeKey, claims.Destino)
					return next(c)
				}
			}
			return respondError(c, c.Path(), port.ErrUnauthorized)
		}
	}
}

func stationScope(c echo.Context) string {
	scope, _ := c.Get(stationScopeKey).(string)
	return scope
}
