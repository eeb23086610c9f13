package middleware

import (
	"net/http"
	"strings"

	"github.com/labstack/echo/v4"

	"github.com/mikleaka/intonation-identity/internal/core/ports"
)

// Auth validates the bearer token and injects the account identity into the
// echo context. Beyond the signature/issuer/audience/expiry checks in the
// codec, it re-derives authorization state from the store: the subject must
// still exist, carry the username in the claim, and be verified. A token for
// a deleted or de-verified account fails immediately, no matter how much
// lifetime it has left.
func Auth(codec ports.TokenCodec, repo ports.AccountRepository) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			authHeader := c.Request().Header.Get("Authorization")
			if authHeader == "" {
				return echo.NewHTTPError(http.StatusUnauthorized, "missing authorization header")
			}

			parts := strings.SplitN(authHeader, " ", 2)
			if len(parts) != 2 || !strings.EqualFold(parts[0], "bearer") {
				return echo.NewHTTPError(http.StatusUnauthorized, "invalid authorization header")
			}

			claims, err := codec.Parse(parts[1])
			if err != nil {
				return echo.NewHTTPError(http.StatusUnauthorized, "invalid token")
			}

			account, err := repo.FindByID(c.Request().Context(), claims.AccountID)
			if err != nil || account.Username != claims.Username || !account.Verified {
				return echo.NewHTTPError(http.StatusUnauthorized, "invalid token")
			}

			c.Set("account_id", account.ID)
			c.Set("username", account.Username)
			c.Set("email", account.Email)

			return next(c)
		}
	}
}
