package learningRoutes

import (
	controllers "slm/controllers/learning"
	validators "slm/validators/learning"

	"github.com/gofiber/fiber/v2"
)

// SetupLearningRoutes registers the learner-facing API on api, which must
// already be behind the JWT middleware.
func SetupLearningRoutes(api fiber.Router, h *controllers.Handler) {
	// Content tree
	api.Get("/topics", h.GetTopics)
	api.Get("/modules/:id", validators.IDParam("id"), h.GetModule)
	api.Get("/maincontents/:id", validators.IDParam("id"), h.GetMainContent)
	api.Get("/pages/:id", validators.IDParam("id"), h.GetPage)

	// Completion
	api.Post("/pages/:id/complete", validators.IDParam("id"), h.CompletePage)
	api.Post("/maincontents/:id/complete", validators.IDParam("id"), h.CompleteMainContent)
	api.Post("/modules/:id/complete", validators.IDParam("id"), h.CompleteModule)
	api.Get("/progress/summary", h.GetProgressSummary)

	// Quizzes keyed by their main content
	api.Get("/quiz/:mainContentId", validators.IDParam("mainContentId"), h.GetQuizByMainContent)
	api.Post("/quiz/:mainContentId/submit", validators.IDParam("mainContentId"), validators.Body[validators.SubmitQuizRequest](), h.SubmitQuizByMainContent)

	// Quizzes keyed by id
	api.Get("/quizzes", validators.QuizList(), h.ListQuizzes)
	api.Get("/quizzes/:id", validators.IDParam("id"), h.GetQuiz)
	api.Post("/quizzes/:id/submit", validators.IDParam("id"), validators.Body[validators.SubmitQuizRequest](), h.SubmitQuiz)
	api.Get("/quizzes/:id/results", validators.IDParam("id"), validators.QuizResults(), h.GetQuizResults)
}
