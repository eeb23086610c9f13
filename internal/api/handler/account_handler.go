package handler

import (
	"errors"
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/mikleaka/intonation-identity/internal/core/domain"
	"github.com/mikleaka/intonation-identity/internal/core/ports"
)

// AccountHandler serves the authenticated account surface.
type AccountHandler struct {
	auth     ports.AuthService
	password ports.PasswordService
}

func NewAccountHandler(auth ports.AuthService, password ports.PasswordService) *AccountHandler {
	return &AccountHandler{auth: auth, password: password}
}

type changePasswordRequest struct {
	CurrentPassword string `json:"current_password" validate:"required"`
	NewPassword     string `json:"new_password" validate:"required,min=6"`
}

type changePasswordResponse struct {
	Message string `json:"message"`
	Success bool   `json:"success"`
}

// Profile returns the authenticated account. The password hash never
// serializes (json:"-" on the domain struct).
//
// @Summary      Current account profile
// @Tags         account
// @Produce      json
// @Security     BearerAuth
// @Success      200  {object}  domain.Account
// @Failure      401  {object}  map[string]string
// @Failure      404  {object}  map[string]string
// @Router       /user/profile [get]
func (h *AccountHandler) Profile(c echo.Context) error {
	accountID, err := ctxAccountID(c)
	if err != nil {
		return err
	}

	account, err := h.auth.Profile(c.Request().Context(), accountID)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, account)
}

// ChangePassword re-authenticates the current password before committing the
// new hash.
//
// @Summary      Change password
// @Tags         account
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        body  body      changePasswordRequest  true  "Current and new password"
// @Success      200   {object}  changePasswordResponse
// @Failure      400   {object}  map[string]string
// @Failure      401   {object}  map[string]string
// @Router       /change-password [post]
func (h *AccountHandler) ChangePassword(c echo.Context) error {
	accountID, err := ctxAccountID(c)
	if err != nil {
		return err
	}

	var req changePasswordRequest
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, map[string]string{"error": "invalid payload"})
	}
	if err := c.Validate(&req); err != nil {
		return c.JSON(http.StatusBadRequest, map[string]string{"error": err.Error()})
	}

	if err := h.password.Change(c.Request().Context(), accountID, req.CurrentPassword, req.NewPassword); err != nil {
		if errors.Is(err, domain.ErrInvalidCredentials) {
			return c.JSON(http.StatusBadRequest, map[string]string{"error": "invalid current password"})
		}
		return err
	}

	return c.JSON(http.StatusOK, changePasswordResponse{Message: "password changed successfully", Success: true})
}
