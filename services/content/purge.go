package content

import (
	"fmt"

	"slm/models/learning"
	"slm/services/quiz"

	"gorm.io/gorm"
)

// The purge helpers remove everything hanging below a set of nodes: child
// rows, completion facts and quizzes. Quiz results stay as history.

func purgePages(tx *gorm.DB, pageIDs []uint) error {
	if len(pageIDs) == 0 {
		return nil
	}
	if err := tx.Where("page_id IN ?", pageIDs).Delete(&learning.PageProgress{}).Error; err != nil {
		return fmt.Errorf("delete page progress: %w", err)
	}
	return nil
}

// purgeMainContents clears pages, facts and quizzes of the main contents and
// returns the ids of the quizzes it deleted. The main content rows remain.
func purgeMainContents(tx *gorm.DB, mcIDs []uint) ([]uint, error) {
	if len(mcIDs) == 0 {
		return nil, nil
	}
	var pageIDs []uint
	if err := tx.Model(&learning.Page{}).Where("main_content_id IN ?", mcIDs).Pluck("id", &pageIDs).Error; err != nil {
		return nil, fmt.Errorf("list pages: %w", err)
	}
	if err := purgePages(tx, pageIDs); err != nil {
		return nil, err
	}
	if err := tx.Where("main_content_id IN ?", mcIDs).Delete(&learning.Page{}).Error; err != nil {
		return nil, fmt.Errorf("delete pages: %w", err)
	}

	var quizIDs []uint
	if err := tx.Model(&learning.Quiz{}).Where("main_content_id IN ?", mcIDs).Pluck("id", &quizIDs).Error; err != nil {
		return nil, fmt.Errorf("list quizzes: %w", err)
	}
	if err := quiz.DeleteQuizzes(tx, quizIDs, false); err != nil {
		return nil, err
	}
	if err := tx.Where("main_content_id IN ?", mcIDs).Delete(&learning.MainContentProgress{}).Error; err != nil {
		return nil, fmt.Errorf("delete main content progress: %w", err)
	}
	return quizIDs, nil
}

// purgeModules clears the modules' subtrees and facts. The module rows remain.
func purgeModules(tx *gorm.DB, moduleIDs []uint) ([]uint, error) {
	if len(moduleIDs) == 0 {
		return nil, nil
	}
	var mcIDs []uint
	if err := tx.Model(&learning.MainContent{}).Where("module_id IN ?", moduleIDs).Pluck("id", &mcIDs).Error; err != nil {
		return nil, fmt.Errorf("list main contents: %w", err)
	}
	quizIDs, err := purgeMainContents(tx, mcIDs)
	if err != nil {
		return nil, err
	}
	if err := tx.Where("module_id IN ?", moduleIDs).Delete(&learning.MainContent{}).Error; err != nil {
		return nil, fmt.Errorf("delete main contents: %w", err)
	}
	if err := tx.Where("module_id IN ?", moduleIDs).Delete(&learning.Progress{}).Error; err != nil {
		return nil, fmt.Errorf("delete module progress: %w", err)
	}
	return quizIDs, nil
}

// purgeTopic clears the topic's modules and enrollments. The topic row remains.
func purgeTopic(tx *gorm.DB, topicID uint) ([]uint, error) {
	var moduleIDs []uint
	if err := tx.Model(&learning.Module{}).Where("topic_id = ?", topicID).Pluck("id", &moduleIDs).Error; err != nil {
		return nil, fmt.Errorf("list modules: %w", err)
	}
	quizIDs, err := purgeModules(tx, moduleIDs)
	if err != nil {
		return nil, err
	}
	if err := tx.Where("topic_id = ?", topicID).Delete(&learning.Module{}).Error; err != nil {
		return nil, fmt.Errorf("delete modules: %w", err)
	}
	if err := tx.Where("topic_id = ?", topicID).Delete(&learning.TopicEnrollment{}).Error; err != nil {
		return nil, fmt.Errorf("delete enrollments: %w", err)
	}
	return quizIDs, nil
}
