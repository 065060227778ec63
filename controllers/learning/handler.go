package controllers

import (
	"slm/apperr"
	"slm/curriculum"
	"slm/logger"
	"slm/middleware"
	"slm/models/learning"
	"slm/report"
	"slm/services/cascade"
	"slm/services/catalog"
	"slm/services/content"
	"slm/services/ordering"
	"slm/services/quiz"
	"slm/services/support"

	"github.com/gofiber/fiber/v2"
)

// Handler carries the services behind the learning API.
type Handler struct {
	Catalog  *catalog.Service
	Content  *content.Service
	Cascade  *cascade.Cascade
	Quizzes  *quiz.Service
	Importer *curriculum.Importer
	Reports  *report.Service
	Ordering *ordering.Engine
	Support  *support.Service
	Log      *logger.Logger
}

func currentUser(c *fiber.Ctx) uint {
	id, _ := c.Locals("userId").(uint)
	return id
}

func viewerOf(c *fiber.Ctx) catalog.Viewer {
	role, _ := c.Locals("role").(string)
	return catalog.Viewer{UserID: currentUser(c), Admin: role == learning.RoleAdmin}
}

func idParam(c *fiber.Ctx, name string) uint {
	id, _ := c.Locals(name).(uint)
	return id
}

func (h *Handler) fail(c *fiber.Ctx, err error) error {
	if _, ok := apperr.As(err); !ok {
		h.Log.Error("request failed", "method", c.Method(), "path", c.Path(), "error", err)
	}
	return middleware.ErrorResponse(c, err)
}
