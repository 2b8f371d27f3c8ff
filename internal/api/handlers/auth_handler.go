package handlers

import (
	"context"
	"errors"

	"clinic-assistant/internal/dto"
	"clinic-assistant/internal/service"
	"clinic-assistant/pkg/middleware"

	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"
)

// PatientAccounts is the account side of the assistant: patients sign in
// so the chat can unlock login-gated answers.
type PatientAccounts interface {
	Register(ctx context.Context, req *dto.RegisterRequest) (*dto.AuthResponse, error)
	Login(ctx context.Context, req *dto.LoginRequest) (*dto.AuthResponse, error)
	RefreshToken(ctx context.Context, refreshToken string) (*dto.AuthResponse, error)
	Profile(ctx context.Context, patientID int64) (*dto.PatientResponse, error)
}

type AuthHandler struct {
	accounts PatientAccounts
	logger   *zap.Logger
}

func NewAuthHandler(accounts PatientAccounts, logger *zap.Logger) *AuthHandler {
	return &AuthHandler{accounts: accounts, logger: logger}
}

// Register godoc
// @Summary Register a patient account
// @Description Creates a patient and returns a token pair for the chat endpoints
// @Tags auth
// @Accept json
// @Produce json
// @Param request body dto.RegisterRequest true "Registration request"
// @Success 201 {object} dto.AuthResponse
// @Failure 400 {object} map[string]string
// @Failure 409 {object} map[string]string
// @Router /user/auth/register [post]
func (h *AuthHandler) Register(c *fiber.Ctx) error {
	req, err := parseBody[dto.RegisterRequest](c)
	if err != nil {
		return err
	}

	resp, err := h.accounts.Register(c.UserContext(), req)
	if err != nil {
		return h.accountError(err, "register")
	}
	return c.Status(fiber.StatusCreated).JSON(resp)
}

// Login godoc
// @Summary Patient login
// @Tags auth
// @Accept json
// @Produce json
// @Param request body dto.LoginRequest true "Login request"
// @Success 200 {object} dto.AuthResponse
// @Failure 401 {object} map[string]string
// @Router /user/auth/login [post]
func (h *AuthHandler) Login(c *fiber.Ctx) error {
	req, err := parseBody[dto.LoginRequest](c)
	if err != nil {
		return err
	}

	resp, err := h.accounts.Login(c.UserContext(), req)
	if err != nil {
		return h.accountError(err, "login")
	}
	return c.JSON(resp)
}

// RefreshToken godoc
// @Summary Exchange a refresh token for a new token pair
// @Tags auth
// @Accept json
// @Produce json
// @Param request body dto.RefreshTokenRequest true "Refresh token request"
// @Success 200 {object} dto.AuthResponse
// @Failure 401 {object} map[string]string
// @Router /user/auth/refresh [post]
func (h *AuthHandler) RefreshToken(c *fiber.Ctx) error {
	req, err := parseBody[dto.RefreshTokenRequest](c)
	if err != nil {
		return err
	}

	resp, err := h.accounts.RefreshToken(c.UserContext(), req.RefreshToken)
	if err != nil {
		return h.accountError(err, "refresh")
	}
	return c.JSON(resp)
}

// Me godoc
// @Summary Profile of the signed-in patient
// @Description The patient_id here is the one chat messages and history are attributed to.
// @Tags auth
// @Produce json
// @Security Bearer
// @Success 200 {object} dto.PatientResponse
// @Failure 401 {object} map[string]string
// @Router /user/auth/me [get]
func (h *AuthHandler) Me(c *fiber.Ctx) error {
	patientID := middleware.PatientID(c)
	if patientID == nil {
		return fiber.ErrUnauthorized
	}

	profile, err := h.accounts.Profile(c.UserContext(), *patientID)
	if err != nil {
		return h.accountError(err, "profile")
	}
	return c.JSON(profile)
}

// accountError maps account failures onto statuses; anything unexpected
// becomes a 500 that the router's error handler logs.
func (h *AuthHandler) accountError(err error, op string) error {
	switch {
	case errors.Is(err, service.ErrInvalidRegistration):
		return fiber.NewError(fiber.StatusBadRequest, err.Error())
	case errors.Is(err, service.ErrPatientExists):
		return fiber.NewError(fiber.StatusConflict, "Patient already exists")
	case errors.Is(err, service.ErrInvalidCredentials):
		return fiber.NewError(fiber.StatusUnauthorized, "Invalid credentials")
	case errors.Is(err, service.ErrPatientNotFound):
		return fiber.NewError(fiber.StatusUnauthorized, "Unknown patient")
	}
	h.logger.Error("Account operation failed", zap.String("op", op), zap.Error(err))
	return fiber.NewError(fiber.StatusInternalServerError, "Account service unavailable")
}

func parseBody[T any](c *fiber.Ctx) (*T, error) {
	var req T
	if err := c.BodyParser(&req); err != nil {
		return nil, fiber.NewError(fiber.StatusBadRequest, "Invalid request body")
	}
	return &req, nil
}
