package presenters

import (
	"errors"

	"github.com/gofiber/fiber/v2"
	apperrors "github.com/vladimiradmaev/health-records/internal/errors"
	"github.com/vladimiradmaev/health-records/internal/logger"
)

type (
	Response struct {
		Status  bool        `json:"status"`
		Message string      `json:"message"`
		Data    interface{} `json:"data,omitempty"`
		Error   *ErrorBody  `json:"error,omitempty"`
	}

	ErrorBody struct {
		Code    string                 `json:"code,omitempty"`
		Message string                 `json:"message"`
		Context map[string]interface{} `json:"context,omitempty"`
	}
)

func SuccessResponse(c *fiber.Ctx, data interface{}, status int, message string) error {
	return c.Status(status).JSON(Response{
		Status:  true,
		Message: message,
		Data:    data,
	})
}

func ErrorResponse(c *fiber.Ctx, status int, message string, err error) error {
	body := &ErrorBody{}
	if err != nil {
		body.Message = err.Error()
	}

	var appErr *apperrors.AppError
	if errors.As(err, &appErr) {
		body.Code = appErr.Code
		body.Message = appErr.Message
		if appErr.Type == apperrors.ErrorTypeAuth || appErr.Type == apperrors.ErrorTypeValidation {
			body.Context = appErr.Context
		}
	}

	return c.Status(status).JSON(Response{
		Status:  false,
		Message: message,
		Error:   body,
	})
}

// ServiceError logs err by type and responds with the status that matches it
func ServiceError(c *fiber.Ctx, message string, err error) error {
	ctx := c.UserContext()
	apperrors.NewHandler(logger.WithContext(ctx).With("path", c.Path())).Handle(ctx, err)
	return ErrorResponse(c, apperrors.HTTPStatus(err), message, err)
}
