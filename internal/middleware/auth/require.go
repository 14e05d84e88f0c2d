package auth

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/craftline/marketplace/internal/tokens"
)

type Middleware struct {
	JWTSecret []byte
}

type ValidatorFunc func(claims *tokens.AccessClaims) error

// RequireArtisan admits only a logged-in, verified artisan session.
func (m *Middleware) RequireArtisan(next echo.HandlerFunc) echo.HandlerFunc {
	return m.requireWithValidator(next, func(claims *tokens.AccessClaims) error {
		if claims.Role != tokens.RoleArtisan {
			return echo.NewHTTPError(http.StatusForbidden, "artisan access required")
		}
		return nil
	})
}

func (m *Middleware) RequireAdmin(next echo.HandlerFunc) echo.HandlerFunc {
	return m.requireWithValidator(next, func(claims *tokens.AccessClaims) error {
		if claims.Role != tokens.RoleAdmin {
			return echo.NewHTTPError(http.StatusForbidden, "admin access required")
		}
		return nil
	})
}

func (m *Middleware) requireWithValidator(next echo.HandlerFunc, validator ValidatorFunc) echo.HandlerFunc {
	return func(c echo.Context) error {
		accessCookie, err := c.Cookie("accessToken")
		if err != nil || accessCookie.Value == "" {
			return echo.NewHTTPError(http.StatusUnauthorized, "missing access token")
		}

		claims, err := tokens.AccessClaimsFromToken(accessCookie.Value, m.JWTSecret)
		if err != nil || claims == nil {
			return echo.NewHTTPError(http.StatusUnauthorized, "invalid access token")
		}

		if validator != nil {
			if validationErr := validator(claims); validationErr != nil {
				return validationErr
			}
		}

		setUserContext(c, claims)
		return next(c)
	}
}

func setUserContext(c echo.Context, claims *tokens.AccessClaims) {
	if id, err := claims.SubjectID(); err == nil {
		c.Set("userID", id)
	}
	c.Set("role", claims.Role)
}

// UserID reads the subject set by the middleware; 0 when absent.
func UserID(c echo.Context) uint {
	if v, ok := c.Get("userID").(uint); ok {
		return v
	}
	return 0
}
