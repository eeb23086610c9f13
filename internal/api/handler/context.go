package handler

import (
	"net/http"

	"github.com/labstack/echo/v4"
)

// ctxAccountID extracts the account id injected by the Auth middleware. Its
// presence proves the middleware ran and revalidated the session against the
// store; an empty value means the route was wired without it.
func ctxAccountID(c echo.Context) (string, error) {
	id, _ := c.Get("account_id").(string)
	if id == "" {
		return "", echo.NewHTTPError(http.StatusUnauthorized, "missing authentication claims")
	}
	return id, nil
}
