package learningRoutes

import (
	controllers "slm/controllers/learning"

	"github.com/gofiber/fiber/v2"
)

// Setup mounts the learner and admin APIs under /api behind auth.
func Setup(app *fiber.App, h *controllers.Handler, auth fiber.Handler) {
	api := app.Group("/api", auth)
	SetupLearningRoutes(api, h)
	SetupAdminRoutes(api, h)
	SetupSupportRoutes(api, h)
}
