package middleware

import (
	"errors"

	"slm/apperr"

	"github.com/gofiber/fiber/v2"
)

func JsonResponse(c *fiber.Ctx, statusCode int, status bool, message string, data interface{}) error {
	return c.Status(statusCode).JSON(fiber.Map{
		"status":  status,
		"message": message,
		"data":    data,
	})
}

func ValidationErrorResponse(c *fiber.Ctx, fields map[string]string) error {
	return c.Status(fiber.StatusUnprocessableEntity).JSON(fiber.Map{
		"status":  false,
		"code":    apperr.KindValidation,
		"message": "Validation failed!",
		"data":    fields,
	})
}

// ErrorResponse renders a service error with the status of its kind.
// Unclassified errors become a 500 without leaking their text.
func ErrorResponse(c *fiber.Ctx, err error) error {
	e, ok := apperr.As(err)
	if !ok {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"status":  false,
			"code":    "internal",
			"message": "Something went wrong!",
			"data":    nil,
		})
	}
	if e.Kind == apperr.KindValidation {
		return ValidationErrorResponse(c, e.Fields)
	}
	return c.Status(e.Status()).JSON(fiber.Map{
		"status":  false,
		"code":    e.Kind,
		"message": e.Error(),
		"data":    nil,
	})
}

// ErrorHandler is the app-wide fallback for errors returned by handlers.
func ErrorHandler(c *fiber.Ctx, err error) error {
	var fe *fiber.Error
	if errors.As(err, &fe) {
		return JsonResponse(c, fe.Code, false, fe.Message, nil)
	}
	return ErrorResponse(c, err)
}
