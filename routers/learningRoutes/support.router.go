package learningRoutes

import (
	controllers "slm/controllers/learning"
	"slm/middleware"
	"slm/models/learning"
	validators "slm/validators/learning"

	"github.com/gofiber/fiber/v2"
)

// SetupSupportRoutes registers the help desk: a learner's conversation,
// feedback, and the admin inbox.
func SetupSupportRoutes(api fiber.Router, h *controllers.Handler) {
	api.Get("/support/conversation", h.GetSupportConversation)
	api.Post("/support/messages", validators.Body[validators.SupportMessageRequest](), h.SendSupportMessage)
	api.Post("/feedback", validators.Body[validators.FeedbackRequest](), h.SubmitFeedback)

	admin := api.Group("/admin/support", middleware.RequireRole(learning.RoleAdmin))
	admin.Get("/conversations", validators.Pagination(), h.AdminListConversations)
	admin.Get("/conversations/:id", validators.IDParam("id"), h.AdminGetConversation)
	admin.Post("/conversations/:id/messages", validators.IDParam("id"), validators.Body[validators.SupportReplyRequest](), h.AdminReplyConversation)
}
