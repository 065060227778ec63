package controllers

import (
	"fmt"

	"slm/curriculum"
	"slm/middleware"
	validators "slm/validators/learning"

	"github.com/gofiber/fiber/v2"
)

func (h *Handler) AdminEnroll(c *fiber.Ctx) error {
	req := c.Locals(validators.BodyKey).(*validators.EnrollmentRequest)
	if err := h.Content.Enroll(c.UserContext(), req.User, req.Topic); err != nil {
		return h.fail(c, err)
	}
	return middleware.JsonResponse(c, fiber.StatusCreated, true, "User enrolled successfully!", req)
}

func (h *Handler) AdminUnenroll(c *fiber.Ctx) error {
	req := c.Locals(validators.BodyKey).(*validators.EnrollmentRequest)
	if err := h.Content.Unenroll(c.UserContext(), req.User, req.Topic); err != nil {
		return h.fail(c, err)
	}
	return middleware.JsonResponse(c, fiber.StatusOK, true, "User unenrolled successfully!", nil)
}

// AdminImportCurriculum creates a whole hierarchy from a YAML document.
func (h *Handler) AdminImportCurriculum(c *fiber.Ctx) error {
	doc, err := curriculum.Parse(c.Body())
	if err != nil {
		return h.fail(c, err)
	}
	summary, err := h.Importer.Import(c.UserContext(), doc)
	if err != nil {
		return h.fail(c, err)
	}
	return middleware.JsonResponse(c, fiber.StatusCreated, true, "Curriculum imported successfully!", summary)
}

func (h *Handler) AdminTopicProgressReport(c *fiber.Ctx) error {
	topicID := idParam(c, "id")
	data, err := h.Reports.TopicProgress(c.UserContext(), topicID)
	if err != nil {
		return h.fail(c, err)
	}
	c.Set(fiber.HeaderContentType, "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet")
	c.Set(fiber.HeaderContentDisposition, fmt.Sprintf(`attachment; filename="topic-%d-progress.xlsx"`, topicID))
	return c.Status(fiber.StatusOK).Send(data)
}

// AdminAuditOrdering runs the density audit on demand.
func (h *Handler) AdminAuditOrdering(c *fiber.Ctx) error {
	report, err := h.Ordering.Audit(c.UserContext())
	if err != nil {
		return h.fail(c, err)
	}
	return middleware.JsonResponse(c, fiber.StatusOK, true, "Ordering audit finished!", report)
}
