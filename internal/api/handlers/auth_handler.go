package handlers

import (
	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v2"
	"github.com/vladimiradmaev/health-records/internal/api/middleware"
	"github.com/vladimiradmaev/health-records/internal/api/presenters"
	"github.com/vladimiradmaev/health-records/internal/domain"
	"github.com/vladimiradmaev/health-records/internal/interfaces"
)

type (
	AuthHandler interface {
		Register(c *fiber.Ctx) error
		Login(c *fiber.Ctx) error
		Logout(c *fiber.Ctx) error
		Me(c *fiber.Ctx) error
		GoogleURL(c *fiber.Ctx) error
		GoogleCallback(c *fiber.Ctx) error
	}

	authHandler struct {
		authService interfaces.AuthServiceInterface
		validator   *validator.Validate
	}
)

func NewAuthHandler(authService interfaces.AuthServiceInterface, validator *validator.Validate) AuthHandler {
	return &authHandler{
		authService: authService,
		validator:   validator,
	}
}

func (h *authHandler) Register(c *fiber.Ctx) error {
	req := new(domain.RegisterRequest)

	if err := c.BodyParser(req); err != nil {
		return presenters.ErrorResponse(c, fiber.StatusBadRequest, domain.MessageFailedBodyRequest, err)
	}

	if err := h.validator.Struct(req); err != nil {
		return presenters.ErrorResponse(c, fiber.StatusBadRequest, domain.MessageFailedRegister, err)
	}

	res, err := h.authService.Register(c.Context(), *req)
	if err != nil {
		return presenters.ServiceError(c, domain.MessageFailedRegister, err)
	}

	return presenters.SuccessResponse(c, res, fiber.StatusCreated, domain.MessageSuccessRegister)
}

func (h *authHandler) Login(c *fiber.Ctx) error {
	req := new(domain.LoginRequest)

	if err := c.BodyParser(req); err != nil {
		return presenters.ErrorResponse(c, fiber.StatusBadRequest, domain.MessageFailedBodyRequest, err)
	}

	if err := h.validator.Struct(req); err != nil {
		return presenters.ErrorResponse(c, fiber.StatusBadRequest, domain.MessageFailedLogin, err)
	}

	res, err := h.authService.Login(c.Context(), *req)
	if err != nil {
		return presenters.ServiceError(c, domain.MessageFailedLogin, err)
	}

	return presenters.SuccessResponse(c, res, fiber.StatusOK, domain.MessageSuccessLogin)
}

func (h *authHandler) Logout(c *fiber.Ctx) error {
	h.authService.Logout(middleware.AccountID(c))
	return presenters.SuccessResponse(c, nil, fiber.StatusOK, domain.MessageSuccessLogout)
}

func (h *authHandler) Me(c *fiber.Ctx) error {
	account, err := h.authService.Account(c.Context(), middleware.AccountID(c))
	if err != nil {
		return presenters.ServiceError(c, domain.MessageFailedGetAccount, err)
	}
	return presenters.SuccessResponse(c, account, fiber.StatusOK, domain.MessageSuccessGetAccount)
}

// GoogleURL returns the consent page address for the calling client's domain
func (h *authHandler) GoogleURL(c *fiber.Ctx) error {
	host := c.Hostname()
	if origin := c.Get(fiber.HeaderOrigin); origin != "" {
		host = hostOf(origin)
	}

	url, err := h.authService.GoogleAuthURL(host)
	if err != nil {
		return presenters.ServiceError(c, domain.MessageFailedGoogleURL, err)
	}
	return presenters.SuccessResponse(c, fiber.Map{"url": url}, fiber.StatusOK, domain.MessageSuccessGoogleURL)
}

func (h *authHandler) GoogleCallback(c *fiber.Ctx) error {
	req := new(domain.GoogleCallbackRequest)

	if err := c.QueryParser(req); err != nil {
		return presenters.ErrorResponse(c, fiber.StatusBadRequest, domain.MessageFailedBodyRequest, err)
	}

	if err := h.validator.Struct(req); err != nil {
		return presenters.ErrorResponse(c, fiber.StatusBadRequest, domain.MessageFailedLogin, err)
	}

	res, err := h.authService.GoogleCallback(c.Context(), *req)
	if err != nil {
		return presenters.ServiceError(c, domain.MessageFailedLogin, err)
	}
	return presenters.SuccessResponse(c, res, fiber.StatusOK, domain.MessageSuccessLogin)
}
