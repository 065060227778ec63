package controllers

import (
	"slm/middleware"
	"slm/services/content"
	"slm/services/quiz"
	validators "slm/validators/learning"

	"github.com/gofiber/fiber/v2"
)

func (h *Handler) AdminCreateTopic(c *fiber.Ctx) error {
	req := c.Locals(validators.BodyKey).(*validators.CreateTopicRequest)
	topic, err := h.Content.CreateTopic(c.UserContext(), content.TopicInput{Name: req.Name, Order: req.Order, Prize: req.Prize})
	if err != nil {
		return h.fail(c, err)
	}
	return middleware.JsonResponse(c, fiber.StatusCreated, true, "Topic created successfully!", topic)
}

func (h *Handler) AdminUpdateTopic(c *fiber.Ctx) error {
	req := c.Locals(validators.BodyKey).(*validators.UpdateTopicRequest)
	topic, err := h.Content.UpdateTopic(c.UserContext(), idParam(c, "id"), content.TopicPatch{
		Name:  req.Name,
		Order: req.Order,
		Prize: req.Prize,
	})
	if err != nil {
		return h.fail(c, err)
	}
	return middleware.JsonResponse(c, fiber.StatusOK, true, "Topic updated successfully!", topic)
}

func (h *Handler) AdminDeleteTopic(c *fiber.Ctx) error {
	if err := h.Content.DeleteTopic(c.UserContext(), idParam(c, "id")); err != nil {
		return h.fail(c, err)
	}
	return middleware.JsonResponse(c, fiber.StatusOK, true, "Topic deleted successfully!", nil)
}

func (h *Handler) AdminCreateModule(c *fiber.Ctx) error {
	req := c.Locals(validators.BodyKey).(*validators.CreateModuleRequest)
	module, err := h.Content.CreateModule(c.UserContext(), content.ModuleInput{
		TopicID:         req.Topic,
		Title:           req.Title,
		Description:     req.Description,
		Order:           req.Order,
		DifficultyLevel: req.DifficultyLevel,
	})
	if err != nil {
		return h.fail(c, err)
	}
	return middleware.JsonResponse(c, fiber.StatusCreated, true, "Module created successfully!", module)
}

func (h *Handler) AdminUpdateModule(c *fiber.Ctx) error {
	req := c.Locals(validators.BodyKey).(*validators.UpdateModuleRequest)
	module, err := h.Content.UpdateModule(c.UserContext(), idParam(c, "id"), content.ModulePatch{
		TopicID:         req.Topic,
		Title:           req.Title,
		Description:     req.Description,
		Order:           req.Order,
		DifficultyLevel: req.DifficultyLevel,
	})
	if err != nil {
		return h.fail(c, err)
	}
	return middleware.JsonResponse(c, fiber.StatusOK, true, "Module updated successfully!", module)
}

func (h *Handler) AdminDeleteModule(c *fiber.Ctx) error {
	if err := h.Content.DeleteModule(c.UserContext(), idParam(c, "id")); err != nil {
		return h.fail(c, err)
	}
	return middleware.JsonResponse(c, fiber.StatusOK, true, "Module deleted successfully!", nil)
}

func (h *Handler) AdminCreateMainContent(c *fiber.Ctx) error {
	req := c.Locals(validators.BodyKey).(*validators.CreateMainContentRequest)
	mc, err := h.Content.CreateMainContent(c.UserContext(), content.MainContentInput{
		ModuleID:    req.Module,
		Title:       req.Title,
		Description: req.Description,
		Order:       req.Order,
	})
	if err != nil {
		return h.fail(c, err)
	}
	return middleware.JsonResponse(c, fiber.StatusCreated, true, "Main content created successfully!", mc)
}

func (h *Handler) AdminUpdateMainContent(c *fiber.Ctx) error {
	req := c.Locals(validators.BodyKey).(*validators.UpdateMainContentRequest)
	mc, err := h.Content.UpdateMainContent(c.UserContext(), idParam(c, "id"), content.MainContentPatch{
		ModuleID:    req.Module,
		Title:       req.Title,
		Description: req.Description,
		Order:       req.Order,
	})
	if err != nil {
		return h.fail(c, err)
	}
	return middleware.JsonResponse(c, fiber.StatusOK, true, "Main content updated successfully!", mc)
}

func (h *Handler) AdminDeleteMainContent(c *fiber.Ctx) error {
	if err := h.Content.DeleteMainContent(c.UserContext(), idParam(c, "id")); err != nil {
		return h.fail(c, err)
	}
	return middleware.JsonResponse(c, fiber.StatusOK, true, "Main content deleted successfully!", nil)
}

func (h *Handler) AdminCreatePage(c *fiber.Ctx) error {
	req := c.Locals(validators.BodyKey).(*validators.CreatePageRequest)
	page, err := h.Content.CreatePage(c.UserContext(), content.PageInput{
		MainContentID: req.MainContent,
		Title:         req.Title,
		Content:       req.Content,
		Order:         req.Order,
		TimeDuration:  req.TimeDuration,
		VideoID:       req.VideoID,
	})
	if err != nil {
		return h.fail(c, err)
	}
	return middleware.JsonResponse(c, fiber.StatusCreated, true, "Page created successfully!", page)
}

func (h *Handler) AdminUpdatePage(c *fiber.Ctx) error {
	req := c.Locals(validators.BodyKey).(*validators.UpdatePageRequest)
	page, err := h.Content.UpdatePage(c.UserContext(), idParam(c, "id"), content.PagePatch{
		MainContentID: req.MainContent,
		Title:         req.Title,
		Content:       req.Content,
		Order:         req.Order,
		TimeDuration:  req.TimeDuration,
		VideoID:       req.VideoID,
	})
	if err != nil {
		return h.fail(c, err)
	}
	return middleware.JsonResponse(c, fiber.StatusOK, true, "Page updated successfully!", page)
}

func (h *Handler) AdminDeletePage(c *fiber.Ctx) error {
	if err := h.Content.DeletePage(c.UserContext(), idParam(c, "id")); err != nil {
		return h.fail(c, err)
	}
	return middleware.JsonResponse(c, fiber.StatusOK, true, "Page deleted successfully!", nil)
}

func (h *Handler) AdminCreateQuiz(c *fiber.Ctx) error {
	req := c.Locals(validators.BodyKey).(*validators.CreateQuizRequest)
	q, err := h.Quizzes.Create(c.UserContext(), req.MainContent, req.Title)
	if err != nil {
		return h.fail(c, err)
	}
	return middleware.JsonResponse(c, fiber.StatusCreated, true, "Quiz created successfully!", q)
}

func (h *Handler) AdminDeleteQuiz(c *fiber.Ctx) error {
	if err := h.Quizzes.Delete(c.UserContext(), idParam(c, "id")); err != nil {
		return h.fail(c, err)
	}
	return middleware.JsonResponse(c, fiber.StatusOK, true, "Quiz deleted successfully!", nil)
}

func (h *Handler) AdminAddQuestion(c *fiber.Ctx) error {
	req := c.Locals(validators.BodyKey).(*validators.AddQuestionRequest)
	choices := make([]quiz.NewChoice, len(req.Choices))
	for i, ch := range req.Choices {
		choices[i] = quiz.NewChoice{Text: ch.Text, IsCorrect: ch.IsCorrect}
	}
	question, err := h.Quizzes.AddQuestion(c.UserContext(), idParam(c, "id"), req.Text, choices)
	if err != nil {
		return h.fail(c, err)
	}
	return middleware.JsonResponse(c, fiber.StatusCreated, true, "Question added successfully!", question)
}
