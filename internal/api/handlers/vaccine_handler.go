package handlers

import (
	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v2"
	"github.com/vladimiradmaev/health-records/internal/api/middleware"
	"github.com/vladimiradmaev/health-records/internal/api/presenters"
	"github.com/vladimiradmaev/health-records/internal/domain"
	"github.com/vladimiradmaev/health-records/internal/export"
	"github.com/vladimiradmaev/health-records/internal/interfaces"
)

type (
	VaccineHandler interface {
		GetVaccines(c *fiber.Ctx) error
		GetVaccine(c *fiber.Ctx) error
		AddVaccine(c *fiber.Ctx) error
		EditVaccine(c *fiber.Ctx) error
		DeleteVaccine(c *fiber.Ctx) error
		ConfirmDose(c *fiber.Ctx) error
		AcceptAnalysis(c *fiber.Ctx) error
		DismissAnalysis(c *fiber.Ctx) error
		GetUpcoming(c *fiber.Ctx) error
		GetOverdue(c *fiber.Ctx) error
		GetQuickAdd(c *fiber.Ctx) error
		Export(c *fiber.Ctx) error
	}

	vaccineHandler struct {
		vaccineService interfaces.VaccineServiceInterface
		validator      *validator.Validate
	}
)

func NewVaccineHandler(vaccineService interfaces.VaccineServiceInterface, validator *validator.Validate) VaccineHandler {
	return &vaccineHandler{
		vaccineService: vaccineService,
		validator:      validator,
	}
}

func (h *vaccineHandler) GetVaccines(c *fiber.Ctx) error {
	res, err := h.vaccineService.List(c.Context(), middleware.AccountID(c))
	if err != nil {
		return presenters.ServiceError(c, domain.MessageFailedGetVaccines, err)
	}
	return presenters.SuccessResponse(c, res, fiber.StatusOK, domain.MessageSuccessGetVaccines)
}

func (h *vaccineHandler) GetVaccine(c *fiber.Ctx) error {
	res, err := h.vaccineService.Get(c.Context(), middleware.AccountID(c), c.Params("id"))
	if err != nil {
		return presenters.ServiceError(c, domain.MessageFailedGetVaccines, err)
	}
	return presenters.SuccessResponse(c, res, fiber.StatusOK, domain.MessageSuccessGetVaccines)
}

func (h *vaccineHandler) AddVaccine(c *fiber.Ctx) error {
	req := new(domain.AddVaccineRequest)

	if err := c.BodyParser(req); err != nil {
		return presenters.ErrorResponse(c, fiber.StatusBadRequest, domain.MessageFailedBodyRequest, err)
	}

	if err := h.validator.Struct(req); err != nil {
		return presenters.ErrorResponse(c, fiber.StatusBadRequest, domain.MessageFailedAddVaccine, err)
	}

	res, err := h.vaccineService.Add(c.Context(), middleware.AccountID(c), *req)
	if err != nil {
		return presenters.ServiceError(c, domain.MessageFailedAddVaccine, err)
	}

	return presenters.SuccessResponse(c, res, fiber.StatusCreated, domain.MessageSuccessAddVaccine)
}

func (h *vaccineHandler) EditVaccine(c *fiber.Ctx) error {
	req := new(domain.EditVaccineRequest)

	if err := c.BodyParser(req); err != nil {
		return presenters.ErrorResponse(c, fiber.StatusBadRequest, domain.MessageFailedBodyRequest, err)
	}

	if err := h.validator.Struct(req); err != nil {
		return presenters.ErrorResponse(c, fiber.StatusBadRequest, domain.MessageFailedUpdateVaccine, err)
	}

	res, err := h.vaccineService.Edit(c.Context(), middleware.AccountID(c), c.Params("id"), *req)
	if err != nil {
		return presenters.ServiceError(c, domain.MessageFailedUpdateVaccine, err)
	}

	return presenters.SuccessResponse(c, res, fiber.StatusOK, domain.MessageSuccessUpdateVaccine)
}

func (h *vaccineHandler) DeleteVaccine(c *fiber.Ctx) error {
	if err := h.vaccineService.Delete(c.Context(), middleware.AccountID(c), c.Params("id")); err != nil {
		return presenters.ServiceError(c, domain.MessageFailedDeleteVaccine, err)
	}
	return presenters.SuccessResponse(c, nil, fiber.StatusOK, domain.MessageSuccessDeleteVaccine)
}

func (h *vaccineHandler) ConfirmDose(c *fiber.Ctx) error {
	res, err := h.vaccineService.ConfirmDose(c.Context(), middleware.AccountID(c), c.Params("id"))
	if err != nil {
		return presenters.ServiceError(c, domain.MessageFailedConfirmDose, err)
	}
	return presenters.SuccessResponse(c, res, fiber.StatusOK, domain.MessageSuccessConfirmDose)
}

func (h *vaccineHandler) AcceptAnalysis(c *fiber.Ctx) error {
	res, err := h.vaccineService.AcceptAnalysis(c.Context(), middleware.AccountID(c), c.Params("id"))
	if err != nil {
		return presenters.ServiceError(c, domain.MessageFailedAcceptAnalysis, err)
	}
	return presenters.SuccessResponse(c, res, fiber.StatusOK, domain.MessageSuccessAcceptAnalysis)
}

func (h *vaccineHandler) DismissAnalysis(c *fiber.Ctx) error {
	res, err := h.vaccineService.DismissAnalysis(c.Context(), middleware.AccountID(c), c.Params("id"))
	if err != nil {
		return presenters.ServiceError(c, domain.MessageFailedDismissAnalysis, err)
	}
	return presenters.SuccessResponse(c, res, fiber.StatusOK, domain.MessageSuccessDismissAnalysis)
}

func (h *vaccineHandler) GetUpcoming(c *fiber.Ctx) error {
	res, err := h.vaccineService.Upcoming(c.Context(), middleware.AccountID(c))
	if err != nil {
		return presenters.ServiceError(c, domain.MessageFailedGetVaccines, err)
	}
	return presenters.SuccessResponse(c, res, fiber.StatusOK, domain.MessageSuccessGetVaccines)
}

func (h *vaccineHandler) GetOverdue(c *fiber.Ctx) error {
	res, err := h.vaccineService.Overdue(c.Context(), middleware.AccountID(c))
	if err != nil {
		return presenters.ServiceError(c, domain.MessageFailedGetVaccines, err)
	}
	return presenters.SuccessResponse(c, res, fiber.StatusOK, domain.MessageSuccessGetVaccines)
}

func (h *vaccineHandler) GetQuickAdd(c *fiber.Ctx) error {
	options, err := h.vaccineService.QuickAddOptions(c.Context(), middleware.AccountID(c))
	if err != nil {
		return presenters.ServiceError(c, domain.MessageFailedQuickAdd, err)
	}
	return presenters.SuccessResponse(c, domain.QuickAddResponse{Options: options}, fiber.StatusOK, domain.MessageSuccessQuickAdd)
}

// Export sends the vaccine history as an XML Spreadsheet 2003 attachment
func (h *vaccineHandler) Export(c *fiber.Ctx) error {
	data, filename, err := h.vaccineService.Export(c.Context(), middleware.AccountID(c))
	if err != nil {
		return presenters.ServiceError(c, domain.MessageFailedExport, err)
	}

	c.Attachment(filename)
	c.Set(fiber.HeaderContentType, export.ContentType)
	return c.Status(fiber.StatusOK).Send(data)
}
