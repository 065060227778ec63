package curriculum

import (
	"context"
	"fmt"

	"slm/logger"
	"slm/services/content"
	"slm/services/quiz"
)

type Report struct {
	TopicIDs     []uint `json:"topic_ids"`
	Modules      int    `json:"modules"`
	MainContents int    `json:"main_contents"`
	Pages        int    `json:"pages"`
	Quizzes      int    `json:"quizzes"`
	Questions    int    `json:"questions"`
}

// Importer creates a parsed document through the content builder, so
// positions are assigned by the ordering engine exactly as for manual edits.
type Importer struct {
	content *content.Service
	log     *logger.Logger
}

func NewImporter(contentSvc *content.Service, baseLog *logger.Logger) *Importer {
	return &Importer{content: contentSvc, log: baseLog.With("service", "CurriculumImporter")}
}

// Import writes the whole document in one transaction. On failure nothing is
// kept and the error names the node that failed.
func (im *Importer) Import(ctx context.Context, doc *Document) (*Report, error) {
	var report *Report
	err := im.content.Build(ctx, func(b *content.Builder) error {
		report = &Report{TopicIDs: []uint{}}
		for ti, t := range doc.Topics {
			topic, err := b.Topic(content.TopicInput{Name: t.Name, Order: t.Order, Prize: t.Prize})
			if err != nil {
				return fmt.Errorf("topics[%d]: %w", ti, err)
			}
			report.TopicIDs = append(report.TopicIDs, topic.ID)

			for mi, m := range t.Modules {
				module, err := b.Module(content.ModuleInput{
					TopicID:         topic.ID,
					Title:           m.Title,
					Description:     m.Description,
					Order:           m.Order,
					DifficultyLevel: m.DifficultyLevel,
				})
				if err != nil {
					return fmt.Errorf("topics[%d].modules[%d]: %w", ti, mi, err)
				}
				report.Modules++

				for ci, mc := range m.MainContents {
					if err := importMainContent(b, module.ID, mc, report); err != nil {
						return fmt.Errorf("topics[%d].modules[%d].main_contents[%d]: %w", ti, mi, ci, err)
					}
				}
			}
		}
		return nil
	})
	if err != nil {
		im.log.Warn("curriculum import rolled back", "error", err)
		return nil, err
	}
	im.log.Info("curriculum imported",
		"topics", len(report.TopicIDs),
		"modules", report.Modules,
		"pages", report.Pages,
		"quizzes", report.Quizzes,
	)
	return report, nil
}

func importMainContent(b *content.Builder, moduleID uint, mc MainContent, report *Report) error {
	created, err := b.MainContent(content.MainContentInput{
		ModuleID:    moduleID,
		Title:       mc.Title,
		Description: mc.Description,
		Order:       mc.Order,
	})
	if err != nil {
		return err
	}
	report.MainContents++

	for pi, p := range mc.Pages {
		_, err := b.Page(content.PageInput{
			MainContentID: created.ID,
			Title:         p.Title,
			Content:       p.Content,
			Order:         p.Order,
			TimeDuration:  p.TimeDuration,
			VideoID:       p.VideoID,
		})
		if err != nil {
			return fmt.Errorf("pages[%d]: %w", pi, err)
		}
		report.Pages++
	}

	if mc.Quiz == nil {
		return nil
	}
	q, err := b.Quiz(created.ID, mc.Quiz.Title)
	if err != nil {
		return fmt.Errorf("quiz: %w", err)
	}
	report.Quizzes++
	for qi, question := range mc.Quiz.Questions {
		choices := make([]quiz.NewChoice, len(question.Choices))
		for i, c := range question.Choices {
			choices[i] = quiz.NewChoice{Text: c.Text, IsCorrect: c.Correct}
		}
		if _, err := b.Question(q.ID, question.Text, choices); err != nil {
			return fmt.Errorf("quiz.questions[%d]: %w", qi, err)
		}
		report.Questions++
	}
	return nil
}
