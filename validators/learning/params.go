package learningValidator

import (
	"strconv"
	"strings"

	"slm/middleware"
	"slm/services/quiz"

	"github.com/gofiber/fiber/v2"
)

// IDParam requires the named route parameter to be a positive integer and
// stores it in c.Locals under the same name as a uint.
func IDParam(name string) fiber.Handler {
	return func(c *fiber.Ctx) error {
		raw := strings.TrimSpace(c.Params(name))
		if raw == "" {
			return middleware.JsonResponse(c, fiber.StatusBadRequest, false, name+" is required in the URL!", nil)
		}
		id, err := strconv.ParseUint(raw, 10, 64)
		if err != nil || id == 0 {
			return middleware.JsonResponse(c, fiber.StatusBadRequest, false, "Invalid "+name+"!", nil)
		}
		c.Locals(name, uint(id))
		return c.Next()
	}
}

// QuizList reads the optional main_content filter.
func QuizList() fiber.Handler {
	return func(c *fiber.Ctx) error {
		raw := strings.TrimSpace(c.Query("main_content"))
		if raw == "" {
			return c.Next()
		}
		id, err := strconv.ParseUint(raw, 10, 64)
		if err != nil || id == 0 {
			return middleware.ValidationErrorResponse(c, map[string]string{"main_content": "main_content must be a positive integer!"})
		}
		c.Locals("mainContentFilter", uint(id))
		return c.Next()
	}
}

// QuizResults reads the history period, defaulting to all.
func QuizResults() fiber.Handler {
	return func(c *fiber.Ctx) error {
		period := strings.ToLower(strings.TrimSpace(c.Query("period", quiz.PeriodAll)))
		switch period {
		case quiz.PeriodAll, quiz.PeriodWeek, quiz.PeriodMonth:
		default:
			return middleware.ValidationErrorResponse(c, map[string]string{"period": "period must be one of: all, week, month!"})
		}
		c.Locals("period", period)
		return c.Next()
	}
}

// Default and largest page size accepted by Pagination.
const (
	DefaultLimit = 20
	MaxLimit     = 100
)

// Pagination reads optional page and limit query parameters and stores them
// as ints under "page" and "limit".
func Pagination() fiber.Handler {
	return func(c *fiber.Ctx) error {
		reqData := new(struct {
			Page  *int `query:"page"`
			Limit *int `query:"limit"`
		})
		if err := c.QueryParser(reqData); err != nil {
			return middleware.JsonResponse(c, fiber.StatusBadRequest, false, "Invalid query parameters!", nil)
		}

		errors := make(map[string]string)
		page, limit := 1, DefaultLimit
		if reqData.Page != nil {
			if *reqData.Page < 1 {
				errors["page"] = "Page must be greater than 0!"
			}
			page = *reqData.Page
		}
		if reqData.Limit != nil {
			if *reqData.Limit < 1 || *reqData.Limit > MaxLimit {
				errors["limit"] = "Limit must be between 1 and " + strconv.Itoa(MaxLimit) + "!"
			}
			limit = *reqData.Limit
		}
		if len(errors) > 0 {
			return middleware.ValidationErrorResponse(c, errors)
		}

		c.Locals("page", page)
		c.Locals("limit", limit)
		return c.Next()
	}
}
