package controllers

import (
	"slm/middleware"
	"slm/services/support"
	validators "slm/validators/learning"

	"github.com/gofiber/fiber/v2"
)

func (h *Handler) GetSupportConversation(c *fiber.Ctx) error {
	conv, err := h.Support.Conversation(c.UserContext(), currentUser(c))
	if err != nil {
		return h.fail(c, err)
	}
	return middleware.JsonResponse(c, fiber.StatusOK, true, "Conversation fetched successfully!", conv)
}

func (h *Handler) SendSupportMessage(c *fiber.Ctx) error {
	req := c.Locals(validators.BodyKey).(*validators.SupportMessageRequest)
	msg, err := h.Support.Send(c.UserContext(), currentUser(c), req.Message, req.Screenshot)
	if err != nil {
		return h.fail(c, err)
	}
	return middleware.JsonResponse(c, fiber.StatusCreated, true, "Message sent successfully!", msg)
}

func (h *Handler) SubmitFeedback(c *fiber.Ctx) error {
	req := c.Locals(validators.BodyKey).(*validators.FeedbackRequest)
	fb, err := h.Support.SubmitFeedback(c.UserContext(), currentUser(c), req.Rating, req.Message)
	if err != nil {
		return h.fail(c, err)
	}
	return middleware.JsonResponse(c, fiber.StatusCreated, true, "Feedback submitted successfully!", fb)
}

func (h *Handler) AdminListConversations(c *fiber.Ctx) error {
	page := support.Page{Page: c.Locals("page").(int), Limit: c.Locals("limit").(int)}
	convs, total, err := h.Support.Conversations(c.UserContext(), page)
	if err != nil {
		return h.fail(c, err)
	}
	return middleware.JsonResponse(c, fiber.StatusOK, true, "Conversations fetched successfully!", fiber.Map{
		"conversations": convs,
		"pagination": fiber.Map{
			"page":  page.Page,
			"limit": page.Limit,
			"total": total,
		},
	})
}

func (h *Handler) AdminGetConversation(c *fiber.Ctx) error {
	conv, err := h.Support.ConversationDetail(c.UserContext(), idParam(c, "id"))
	if err != nil {
		return h.fail(c, err)
	}
	return middleware.JsonResponse(c, fiber.StatusOK, true, "Conversation fetched successfully!", conv)
}

func (h *Handler) AdminReplyConversation(c *fiber.Ctx) error {
	req := c.Locals(validators.BodyKey).(*validators.SupportReplyRequest)
	msg, err := h.Support.Reply(c.UserContext(), idParam(c, "id"), req.Message)
	if err != nil {
		return h.fail(c, err)
	}
	return middleware.JsonResponse(c, fiber.StatusCreated, true, "Reply sent successfully!", msg)
}
