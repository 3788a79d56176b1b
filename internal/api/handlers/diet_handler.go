package handlers

import (
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v2"
	"github.com/vladimiradmaev/health-records/internal/analytics"
	"github.com/vladimiradmaev/health-records/internal/api/middleware"
	"github.com/vladimiradmaev/health-records/internal/api/presenters"
	"github.com/vladimiradmaev/health-records/internal/domain"
	"github.com/vladimiradmaev/health-records/internal/interfaces"
)

type (
	DietHandler interface {
		GetEntries(c *fiber.Ctx) error
		AddEntries(c *fiber.Ctx) error
		DeleteEntry(c *fiber.Ctx) error
		GetSuggestions(c *fiber.Ctx) error
		GetTimeline(c *fiber.Ctx) error
	}

	dietHandler struct {
		dietService interfaces.DietServiceInterface
		validator   *validator.Validate
		now         func() time.Time
	}
)

func NewDietHandler(dietService interfaces.DietServiceInterface, validator *validator.Validate) DietHandler {
	return &dietHandler{
		dietService: dietService,
		validator:   validator,
		now:         time.Now,
	}
}

func (h *dietHandler) GetEntries(c *fiber.Ctx) error {
	res, err := h.dietService.List(c.Context(), middleware.AccountID(c))
	if err != nil {
		return presenters.ServiceError(c, domain.MessageFailedGetDietEntries, err)
	}
	return presenters.SuccessResponse(c, res, fiber.StatusOK, domain.MessageSuccessGetDietEntries)
}

func (h *dietHandler) AddEntries(c *fiber.Ctx) error {
	req := new(domain.AddDietEntriesRequest)

	if err := c.BodyParser(req); err != nil {
		return presenters.ErrorResponse(c, fiber.StatusBadRequest, domain.MessageFailedBodyRequest, err)
	}

	if err := h.validator.Struct(req); err != nil {
		return presenters.ErrorResponse(c, fiber.StatusBadRequest, domain.MessageFailedAddDietEntries, err)
	}

	res, err := h.dietService.AddEntries(c.Context(), middleware.AccountID(c), *req)
	if err != nil {
		return presenters.ServiceError(c, domain.MessageFailedAddDietEntries, err)
	}

	return presenters.SuccessResponse(c, res, fiber.StatusCreated, domain.MessageSuccessAddDietEntries)
}

func (h *dietHandler) DeleteEntry(c *fiber.Ctx) error {
	if err := h.dietService.Delete(c.Context(), middleware.AccountID(c), c.Params("id")); err != nil {
		return presenters.ServiceError(c, domain.MessageFailedDeleteDietEntry, err)
	}
	return presenters.SuccessResponse(c, nil, fiber.StatusOK, domain.MessageSuccessDeleteDietEntry)
}

// GetSuggestions never fails; the service substitutes a fixed list when the advisor does
func (h *dietHandler) GetSuggestions(c *fiber.Ctx) error {
	res := h.dietService.Suggest(c.Context(), middleware.AccountID(c))
	return presenters.SuccessResponse(c, res, fiber.StatusOK, domain.MessageSuccessDietSuggestions)
}

func (h *dietHandler) GetTimeline(c *fiber.Ctx) error {
	window, err := analytics.ParseWindow(c.Query("window"))
	if err != nil {
		return presenters.ErrorResponse(c, fiber.StatusBadRequest, domain.MessageFailedGetTimeline, err)
	}

	loc, err := clientLocation(c)
	if err != nil {
		return presenters.ErrorResponse(c, fiber.StatusBadRequest, domain.MessageFailedTimezone, err)
	}

	entries, err := h.dietService.List(c.Context(), middleware.AccountID(c))
	if err != nil {
		return presenters.ServiceError(c, domain.MessageFailedGetTimeline, err)
	}

	res := analytics.Build(entries, h.now().In(loc), window)
	return presenters.SuccessResponse(c, res, fiber.StatusOK, domain.MessageSuccessGetTimeline)
}
