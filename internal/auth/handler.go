package auth

import (
	"errors"
	"log"
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/sudo-init-do/lotengo/internal/apperr"
	"github.com/sudo-init-do/lotengo/internal/db"
	"github.com/sudo-init-do/lotengo/internal/middleware"
)

const resetRequestedMessage = "If the email exists, a reset code has been sent."

type Handler struct {
	svc *Service
	// exposeOTP echoes reset codes in the response. There is no mail
	// delivery, so local builds read the code from here.
	exposeOTP bool
}

func NewHandler(svc *Service, exposeOTP bool) *Handler {
	return &Handler{svc: svc, exposeOTP: exposeOTP}
}

type TokenResponse struct {
	Token string  `json:"token"`
	User  db.User `json:"user"`
}

func (h *Handler) respondToken(c echo.Context, status int, u db.User) error {
	signed, err := h.svc.IssueToken(u)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "token generation failed"})
	}
	return c.JSON(status, TokenResponse{Token: signed, User: u})
}

// ===== Register =====
func (h *Handler) Register(c echo.Context) error {
	var in RegisterInput
	if err := c.Bind(&in); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid request"})
	}
	u, err := h.svc.Register(c.Request().Context(), in)
	if err != nil {
		return middleware.RespondError(c, err)
	}
	return h.respondToken(c, http.StatusCreated, u)
}

type LoginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

// ===== Login =====
func (h *Handler) Login(c echo.Context) error {
	req := new(LoginRequest)
	if err := c.Bind(req); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid request"})
	}
	u, err := h.svc.Login(req.Email, req.Password)
	if err != nil {
		return middleware.RespondError(c, err)
	}
	return h.respondToken(c, http.StatusOK, u)
}

type RequestPasswordResetRequest struct {
	Email string `json:"email"`
}

// POST /auth/password/request
// Unknown emails get the same answer as known ones.
func (h *Handler) RequestPasswordReset(c echo.Context) error {
	req := new(RequestPasswordResetRequest)
	if err := c.Bind(req); err != nil || req.Email == "" {
		return c.JSON(http.StatusOK, echo.Map{"message": resetRequestedMessage})
	}
	code, err := h.svc.RequestReset(c.Request().Context(), req.Email)
	if err != nil {
		if !errors.Is(err, apperr.ErrNotFound) {
			log.Printf("[auth][WARN] reset request: %v", err)
		}
		return c.JSON(http.StatusOK, echo.Map{"message": resetRequestedMessage})
	}
	resp := echo.Map{"message": resetRequestedMessage}
	if h.exposeOTP {
		resp["otp"] = code
	}
	return c.JSON(http.StatusOK, resp)
}

type VerifyOTPRequest struct {
	Email string `json:"email"`
	Code  string `json:"code"`
}

// POST /auth/password/verify
func (h *Handler) VerifyOTP(c echo.Context) error {
	req := new(VerifyOTPRequest)
	if err := c.Bind(req); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid request"})
	}
	return c.JSON(http.StatusOK, echo.Map{"valid": h.svc.VerifyOTP(req.Email, req.Code)})
}

type ResetPasswordRequest struct {
	Email       string `json:"email"`
	Code        string `json:"code"`
	NewPassword string `json:"new_password"`
}

// POST /auth/password/reset
func (h *Handler) ResetPassword(c echo.Context) error {
	req := new(ResetPasswordRequest)
	if err := c.Bind(req); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid request"})
	}
	if err := h.svc.ResetPassword(c.Request().Context(), req.Email, req.Code, req.NewPassword); err != nil {
		return middleware.RespondError(c, err)
	}
	return c.JSON(http.StatusOK, echo.Map{"message": "password updated successfully"})
}

type ChangePasswordRequest struct {
	CurrentPassword string `json:"current_password"`
	NewPassword     string `json:"new_password"`
}

// POST /auth/password/change
func (h *Handler) ChangePassword(c echo.Context) error {
	req := new(ChangePasswordRequest)
	if err := c.Bind(req); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid request"})
	}
	err := h.svc.ChangePassword(c.Request().Context(), middleware.UserID(c), req.CurrentPassword, req.NewPassword)
	if err != nil {
		return middleware.RespondError(c, err)
	}
	return c.JSON(http.StatusOK, echo.Map{"message": "password updated successfully"})
}
