package handlers

import (
	"github.com/gofiber/fiber/v2"
	"github.com/vladimiradmaev/health-records/internal/api/middleware"
	"github.com/vladimiradmaev/health-records/internal/api/presenters"
	"github.com/vladimiradmaev/health-records/internal/domain"
	"github.com/vladimiradmaev/health-records/internal/interfaces"
)

type (
	SuggestionHandler interface {
		GetSuggestions(c *fiber.Ctx) error
		DismissSuggestion(c *fiber.Ctx) error
	}

	suggestionHandler struct {
		suggestionService interfaces.SuggestionServiceInterface
	}
)

func NewSuggestionHandler(suggestionService interfaces.SuggestionServiceInterface) SuggestionHandler {
	return &suggestionHandler{suggestionService: suggestionService}
}

func (h *suggestionHandler) GetSuggestions(c *fiber.Ctx) error {
	res, err := h.suggestionService.List(c.Context(), middleware.AccountID(c))
	if err != nil {
		return presenters.ServiceError(c, domain.MessageFailedGetSuggestions, err)
	}
	return presenters.SuccessResponse(c, res, fiber.StatusOK, domain.MessageSuccessGetSuggestions)
}

func (h *suggestionHandler) DismissSuggestion(c *fiber.Ctx) error {
	if err := h.suggestionService.Dismiss(c.Context(), middleware.AccountID(c), c.Params("id")); err != nil {
		return presenters.ServiceError(c, domain.MessageFailedDismissSugg, err)
	}
	return presenters.SuccessResponse(c, nil, fiber.StatusOK, domain.MessageSuccessDismissSugg)
}
