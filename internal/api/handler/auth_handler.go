package handler

import (
	"errors"
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/mikleaka/intonation-identity/internal/api/metrics"
	"github.com/mikleaka/intonation-identity/internal/core/domain"
	"github.com/mikleaka/intonation-identity/internal/core/ports"
)

// authDenied is the single login denial message; it never reveals whether
// the account exists or is unverified.
const authDenied = "invalid credentials or account not verified"

type AuthHandler struct {
	registration ports.RegistrationService
	auth         ports.AuthService
}

func NewAuthHandler(registration ports.RegistrationService, auth ports.AuthService) *AuthHandler {
	return &AuthHandler{registration: registration, auth: auth}
}

type registerRequest struct {
	Username string `json:"username" validate:"required,min=3,max=25"`
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required,min=6"`
}

type registerResponse struct {
	Message          string `json:"message"`
	UserID           string `json:"user_id"`
	VerificationCode string `json:"verification_code"`
}

type verifyRequest struct {
	Email string `json:"email" validate:"required,email"`
	Code  string `json:"code" validate:"required,len=6"`
}

type loginRequest struct {
	UsernameOrEmail string `json:"username_or_email" validate:"required"`
	Password        string `json:"password" validate:"required"`
}

type authResponse struct {
	Token string          `json:"token"`
	User  *domain.Account `json:"user"`
}

type statusResponse struct {
	Exists   bool `json:"exists"`
	Verified bool `json:"verified"`
}

// Register starts a registration and dispatches a verification code.
//
// @Summary      Register a new account
// @Tags         auth
// @Accept       json
// @Produce      json
// @Param        body  body      registerRequest  true  "Registration details"
// @Success      201   {object}  registerResponse
// @Failure      400   {object}  map[string]string
// @Failure      409   {object}  map[string]string
// @Failure      503   {object}  map[string]string
// @Router       /auth/register [post]
func (h *AuthHandler) Register(c echo.Context) error {
	var req registerRequest
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, map[string]string{"error": "invalid payload"})
	}
	if err := c.Validate(&req); err != nil {
		metrics.RegistrationsTotal.WithLabelValues("invalid").Inc()
		return c.JSON(http.StatusBadRequest, map[string]string{"error": err.Error()})
	}

	account, code, err := h.registration.Register(c.Request().Context(), req.Username, req.Email, req.Password)
	if err != nil {
		switch {
		case errors.Is(err, domain.ErrAccountExists):
			metrics.RegistrationsTotal.WithLabelValues("conflict").Inc()
		case errors.Is(err, domain.ErrInvalidInput):
			metrics.RegistrationsTotal.WithLabelValues("invalid").Inc()
		default:
			metrics.RegistrationsTotal.WithLabelValues("error").Inc()
		}
		return err
	}
	metrics.RegistrationsTotal.WithLabelValues("created").Inc()

	return c.JSON(http.StatusCreated, registerResponse{
		Message:          "confirmation code sent to your email",
		UserID:           account.ID,
		VerificationCode: code,
	})
}

// Verify completes a registration with the emailed code.
//
// @Summary      Verify an account
// @Tags         auth
// @Accept       json
// @Produce      json
// @Param        body  body      verifyRequest  true  "Email and verification code"
// @Success      200   {object}  map[string]string
// @Failure      400   {object}  map[string]string
// @Router       /auth/verify [post]
func (h *AuthHandler) Verify(c echo.Context) error {
	var req verifyRequest
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, map[string]string{"error": "invalid payload"})
	}
	if err := c.Validate(&req); err != nil {
		return c.JSON(http.StatusBadRequest, map[string]string{"error": err.Error()})
	}

	ok, err := h.registration.Verify(c.Request().Context(), req.Email, req.Code)
	if err != nil {
		return err
	}
	if !ok {
		metrics.VerificationsTotal.WithLabelValues("invalid").Inc()
		return c.JSON(http.StatusBadRequest, map[string]string{"error": "invalid verification code or email"})
	}
	metrics.VerificationsTotal.WithLabelValues("ok").Inc()

	return c.JSON(http.StatusOK, map[string]string{"message": "registration completed successfully, you can now log in"})
}

// Login authenticates credentials and returns a session token.
//
// @Summary      Login
// @Tags         auth
// @Accept       json
// @Produce      json
// @Param        body  body      loginRequest  true  "Login credentials"
// @Success      200   {object}  authResponse
// @Failure      400   {object}  map[string]string
// @Failure      401   {object}  map[string]string
// @Router       /auth/login [post]
func (h *AuthHandler) Login(c echo.Context) error {
	var req loginRequest
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, map[string]string{"error": "invalid payload"})
	}
	if err := c.Validate(&req); err != nil {
		return c.JSON(http.StatusBadRequest, map[string]string{"error": err.Error()})
	}

	token, account, err := h.auth.Login(c.Request().Context(), req.UsernameOrEmail, req.Password)
	if err != nil {
		// Unknown account, bad password and unverified all collapse to one
		// message to prevent account enumeration.
		if errors.Is(err, domain.ErrAccountNotFound) ||
			errors.Is(err, domain.ErrInvalidCredentials) ||
			errors.Is(err, domain.ErrNotVerified) {
			metrics.LoginsTotal.WithLabelValues("denied").Inc()
			return c.JSON(http.StatusUnauthorized, map[string]string{"error": authDenied})
		}
		return err
	}
	metrics.LoginsTotal.WithLabelValues("ok").Inc()

	return c.JSON(http.StatusOK, authResponse{Token: token, User: account})
}

// Status reports whether an account exists for an email and whether it has
// completed verification.
//
// @Summary      Account status
// @Tags         auth
// @Produce      json
// @Param        email  query     string  true  "Email address"
// @Success      200    {object}  statusResponse
// @Failure      400    {object}  map[string]string
// @Router       /auth/account-status [get]
func (h *AuthHandler) Status(c echo.Context) error {
	email := c.QueryParam("email")
	if email == "" {
		return c.JSON(http.StatusBadRequest, map[string]string{"error": "email is required"})
	}

	exists, verified, err := h.auth.Status(c.Request().Context(), email)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, statusResponse{Exists: exists, Verified: verified})
}
