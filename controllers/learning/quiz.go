package controllers

import (
	"slm/middleware"
	"slm/services/completion"
	"slm/services/quiz"
	validators "slm/validators/learning"

	"github.com/gofiber/fiber/v2"
)

type publicChoice struct {
	ID   uint   `json:"id"`
	Text string `json:"text"`
}

type publicQuestion struct {
	ID      uint           `json:"id"`
	Text    string         `json:"text"`
	Choices []publicChoice `json:"choices"`
}

type publicQuiz struct {
	ID            uint             `json:"id"`
	MainContentID *uint            `json:"main_content"`
	Title         string           `json:"title"`
	Questions     []publicQuestion `json:"questions"`
}

// hideAnswers strips is_correct from a definition shown to learners.
func hideAnswers(def *quiz.Definition) publicQuiz {
	out := publicQuiz{
		ID:            def.ID,
		MainContentID: def.MainContentID,
		Title:         def.Title,
		Questions:     make([]publicQuestion, 0, len(def.Questions)),
	}
	for _, q := range def.Questions {
		pq := publicQuestion{ID: q.ID, Text: q.Text, Choices: make([]publicChoice, 0, len(q.Choices))}
		for _, ch := range q.Choices {
			pq.Choices = append(pq.Choices, publicChoice{ID: ch.ID, Text: ch.Text})
		}
		out.Questions = append(out.Questions, pq)
	}
	return out
}

// quizFor resolves a definition and checks the caller may see its main content.
func (h *Handler) quizFor(c *fiber.Ctx, load func() (*quiz.Definition, error)) (*quiz.Definition, error) {
	def, err := load()
	if err != nil {
		return nil, err
	}
	if def.MainContentID != nil {
		if err := h.Catalog.EnsureAccess(c.UserContext(), viewerOf(c), completion.MainContent(*def.MainContentID)); err != nil {
			return nil, err
		}
	}
	return def, nil
}

func (h *Handler) respondQuiz(c *fiber.Ctx, def *quiz.Definition) error {
	if viewerOf(c).Admin {
		return middleware.JsonResponse(c, fiber.StatusOK, true, "Quiz fetched successfully!", def)
	}
	return middleware.JsonResponse(c, fiber.StatusOK, true, "Quiz fetched successfully!", hideAnswers(def))
}

func (h *Handler) ListQuizzes(c *fiber.Ctx) error {
	var filter *uint
	if id, ok := c.Locals("mainContentFilter").(uint); ok {
		filter = &id
	}
	quizzes, err := h.Quizzes.List(c.UserContext(), filter)
	if err != nil {
		return h.fail(c, err)
	}
	return middleware.JsonResponse(c, fiber.StatusOK, true, "Quizzes fetched successfully!", quizzes)
}

func (h *Handler) GetQuiz(c *fiber.Ctx) error {
	def, err := h.quizFor(c, func() (*quiz.Definition, error) {
		return h.Quizzes.Definition(c.UserContext(), idParam(c, "id"))
	})
	if err != nil {
		return h.fail(c, err)
	}
	return h.respondQuiz(c, def)
}

func (h *Handler) GetQuizByMainContent(c *fiber.Ctx) error {
	def, err := h.quizFor(c, func() (*quiz.Definition, error) {
		return h.Quizzes.DefinitionForMainContent(c.UserContext(), idParam(c, "mainContentId"))
	})
	if err != nil {
		return h.fail(c, err)
	}
	return h.respondQuiz(c, def)
}

func (h *Handler) SubmitQuiz(c *fiber.Ctx) error {
	def, err := h.quizFor(c, func() (*quiz.Definition, error) {
		return h.Quizzes.Definition(c.UserContext(), idParam(c, "id"))
	})
	if err != nil {
		return h.fail(c, err)
	}
	return h.submit(c, def.ID)
}

func (h *Handler) SubmitQuizByMainContent(c *fiber.Ctx) error {
	def, err := h.quizFor(c, func() (*quiz.Definition, error) {
		return h.Quizzes.DefinitionForMainContent(c.UserContext(), idParam(c, "mainContentId"))
	})
	if err != nil {
		return h.fail(c, err)
	}
	return h.submit(c, def.ID)
}

func (h *Handler) submit(c *fiber.Ctx, quizID uint) error {
	req := c.Locals(validators.BodyKey).(*validators.SubmitQuizRequest)
	sub, err := h.Quizzes.Submit(c.UserContext(), currentUser(c), quizID, quiz.NormalizeAnswers(req.Answers))
	if err != nil {
		return h.fail(c, err)
	}
	message := "Quiz failed, try again!"
	if sub.Passed {
		message = "Quiz passed!"
	}
	return middleware.JsonResponse(c, fiber.StatusOK, true, message, sub)
}

// GetQuizResults returns the caller's own history for a quiz.
func (h *Handler) GetQuizResults(c *fiber.Ctx) error {
	period, _ := c.Locals("period").(string)
	results, err := h.Quizzes.Results(c.UserContext(), currentUser(c), idParam(c, "id"), period)
	if err != nil {
		return h.fail(c, err)
	}
	return middleware.JsonResponse(c, fiber.StatusOK, true, "Quiz results fetched successfully!", results)
}
