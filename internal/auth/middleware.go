package auth

import (
	"errors"
	"strings"

	echojwt "github.com/labstack/echo-jwt/v4"
	"github.com/labstack/echo/v4"

	apperrors "rankhwa/internal/errors"
)

// ContextKey is where the middleware stores the validated *Claims.
const ContextKey = "user"

var errTokenRevoked = errors.New("token revoked")

// Middleware returns optional bearer authentication. A valid token puts its
// *Claims into the context; a missing, malformed, expired or revoked token
// lets the request through unauthenticated. Handlers that need a principal
// call ClaimsFrom or UserID.
func Middleware(jwtService *JWTService, store TokenStoreInterface) echo.MiddlewareFunc {
	return echojwt.WithConfig(echojwt.Config{
		ContextKey:  ContextKey,
		TokenLookup: "header:" + echo.HeaderAuthorization + ":Bearer ",
		ParseTokenFunc: func(c echo.Context, raw string) (interface{}, error) {
			claims, err := jwtService.ValidateToken(strings.TrimSpace(raw))
			if err != nil {
				return nil, err
			}
			if store != nil {
				revoked, _ := store.IsRevoked(c.Request().Context(), claims.ID)
				if revoked {
					return nil, errTokenRevoked
				}
			}
			return claims, nil
		},
		ErrorHandler: func(c echo.Context, err error) error {
			return nil
		},
		ContinueOnIgnoredError: true,
	})
}

// ClaimsFrom returns the authenticated claims, if any.
func ClaimsFrom(c echo.Context) (*Claims, bool) {
	claims, ok := c.Get(ContextKey).(*Claims)
	return claims, ok && claims != nil
}

// UserID returns the authenticated user id or ErrUnauthorized.
func UserID(c echo.Context) (uint, error) {
	claims, ok := ClaimsFrom(c)
	if !ok {
		return 0, apperrors.ErrUnauthorized
	}
	return claims.UserID, nil
}
