package learningValidator

import (
	"strings"

	"slm/middleware"

	"github.com/gofiber/fiber/v2"
)

// AddQuestion validates a question with nested choices; one choice must be
// marked correct.
func AddQuestion() fiber.Handler {
	return func(c *fiber.Ctx) error {
		reqData := new(AddQuestionRequest)
		if err := c.BodyParser(reqData); err != nil {
			return middleware.JsonResponse(c, fiber.StatusBadRequest, false, "Invalid request body!", nil)
		}
		errs := Check(reqData)
		if errs == nil {
			errs = map[string]string{}
		}
		if _, bad := errs["choices"]; !bad && len(reqData.Choices) > 0 && !reqData.HasCorrectChoice() {
			errs["choices"] = "At least one choice must be marked correct!"
		}
		if len(errs) > 0 {
			return middleware.ValidationErrorResponse(c, errs)
		}
		c.Locals(BodyKey, reqData)
		return c.Next()
	}
}

// CurriculumImport requires a non-empty YAML body.
func CurriculumImport() fiber.Handler {
	return func(c *fiber.Ctx) error {
		if len(strings.TrimSpace(string(c.Body()))) == 0 {
			return middleware.ValidationErrorResponse(c, map[string]string{"document": "Request body must contain a curriculum document!"})
		}
		return c.Next()
	}
}
