package controllers

import (
	"slm/middleware"
	"slm/services/cascade"
	"slm/services/completion"

	"github.com/gofiber/fiber/v2"
)

// GetTopics lists the caller's topics with annotated modules.
func (h *Handler) GetTopics(c *fiber.Ctx) error {
	topics, err := h.Catalog.Topics(c.UserContext(), viewerOf(c))
	if err != nil {
		return h.fail(c, err)
	}
	return middleware.JsonResponse(c, fiber.StatusOK, true, "Topics fetched successfully!", topics)
}

func (h *Handler) GetModule(c *fiber.Ctx) error {
	module, err := h.Catalog.Module(c.UserContext(), viewerOf(c), idParam(c, "id"))
	if err != nil {
		return h.fail(c, err)
	}
	return middleware.JsonResponse(c, fiber.StatusOK, true, "Module fetched successfully!", module)
}

func (h *Handler) GetMainContent(c *fiber.Ctx) error {
	mc, err := h.Catalog.MainContent(c.UserContext(), viewerOf(c), idParam(c, "id"))
	if err != nil {
		return h.fail(c, err)
	}
	return middleware.JsonResponse(c, fiber.StatusOK, true, "Main content fetched successfully!", mc)
}

// GetPage enforces the sequential page gate.
func (h *Handler) GetPage(c *fiber.Ctx) error {
	page, err := h.Catalog.Page(c.UserContext(), viewerOf(c), idParam(c, "id"))
	if err != nil {
		return h.fail(c, err)
	}
	return middleware.JsonResponse(c, fiber.StatusOK, true, "Page fetched successfully!", page)
}

func (h *Handler) GetProgressSummary(c *fiber.Ctx) error {
	summary, err := h.Catalog.ProgressSummary(c.UserContext(), currentUser(c))
	if err != nil {
		return h.fail(c, err)
	}
	return middleware.JsonResponse(c, fiber.StatusOK, true, "Progress summary fetched successfully!", summary)
}

func (h *Handler) CompletePage(c *fiber.Ctx) error {
	return h.complete(c, completion.Page(idParam(c, "id")))
}

func (h *Handler) CompleteMainContent(c *fiber.Ctx) error {
	return h.complete(c, completion.MainContent(idParam(c, "id")))
}

func (h *Handler) CompleteModule(c *fiber.Ctx) error {
	return h.complete(c, completion.Module(idParam(c, "id")))
}

func (h *Handler) complete(c *fiber.Ctx, ref completion.Ref) error {
	ctx := c.UserContext()
	if err := h.Catalog.EnsureAccess(ctx, viewerOf(c), ref); err != nil {
		return h.fail(c, err)
	}
	userID := currentUser(c)
	var (
		res *cascade.Result
		err error
	)
	switch ref.Kind {
	case completion.KindPage:
		res, err = h.Cascade.OnPageCompleted(ctx, userID, ref.ID)
	case completion.KindMainContent:
		res, err = h.Cascade.OnMainContentCompleted(ctx, userID, ref.ID)
	default:
		res, err = h.Cascade.OnModuleCompleted(ctx, userID, ref.ID)
	}
	if err != nil {
		return h.fail(c, err)
	}
	return middleware.JsonResponse(c, fiber.StatusOK, true, "Marked as complete!", res)
}
