package learningRoutes

import (
	controllers "slm/controllers/learning"
	"slm/middleware"
	"slm/models/learning"
	validators "slm/validators/learning"

	"github.com/gofiber/fiber/v2"
)

// SetupAdminRoutes registers content management under <api>/admin.
func SetupAdminRoutes(api fiber.Router, h *controllers.Handler) {
	admin := api.Group("/admin", middleware.RequireRole(learning.RoleAdmin))

	// Topics
	admin.Post("/topics", validators.Body[validators.CreateTopicRequest](), h.AdminCreateTopic)
	admin.Put("/topics/:id", validators.IDParam("id"), validators.Body[validators.UpdateTopicRequest](), h.AdminUpdateTopic)
	admin.Delete("/topics/:id", validators.IDParam("id"), h.AdminDeleteTopic)

	// Modules
	admin.Post("/modules", validators.Body[validators.CreateModuleRequest](), h.AdminCreateModule)
	admin.Put("/modules/:id", validators.IDParam("id"), validators.Body[validators.UpdateModuleRequest](), h.AdminUpdateModule)
	admin.Delete("/modules/:id", validators.IDParam("id"), h.AdminDeleteModule)

	// Main contents
	admin.Post("/maincontents", validators.Body[validators.CreateMainContentRequest](), h.AdminCreateMainContent)
	admin.Put("/maincontents/:id", validators.IDParam("id"), validators.Body[validators.UpdateMainContentRequest](), h.AdminUpdateMainContent)
	admin.Delete("/maincontents/:id", validators.IDParam("id"), h.AdminDeleteMainContent)

	// Pages
	admin.Post("/pages", validators.Body[validators.CreatePageRequest](), h.AdminCreatePage)
	admin.Put("/pages/:id", validators.IDParam("id"), validators.Body[validators.UpdatePageRequest](), h.AdminUpdatePage)
	admin.Delete("/pages/:id", validators.IDParam("id"), h.AdminDeletePage)

	// Quizzes
	admin.Post("/quizzes", validators.Body[validators.CreateQuizRequest](), h.AdminCreateQuiz)
	admin.Delete("/quizzes/:id", validators.IDParam("id"), h.AdminDeleteQuiz)
	admin.Post("/quizzes/:id/questions", validators.IDParam("id"), validators.AddQuestion(), h.AdminAddQuestion)

	// Enrollment
	admin.Post("/enrollments", validators.Body[validators.EnrollmentRequest](), h.AdminEnroll)
	admin.Delete("/enrollments", validators.Body[validators.EnrollmentRequest](), h.AdminUnenroll)

	// Tools
	admin.Post("/curriculum/import", validators.CurriculumImport(), h.AdminImportCurriculum)
	admin.Get("/reports/topics/:id/progress.xlsx", validators.IDParam("id"), h.AdminTopicProgressReport)
	admin.Post("/ordering/audit", h.AdminAuditOrdering)
}
