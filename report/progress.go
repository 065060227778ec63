// Package report renders admin spreadsheets.
package report

import (
	"context"
	"fmt"
	"math"

	"slm/apperr"
	"slm/logger"
	"slm/models/learning"

	"github.com/xuri/excelize/v2"
	"gorm.io/gorm"
)

const progressSheet = "Progress"

type Service struct {
	db  *gorm.DB
	log *logger.Logger
}

func NewService(db *gorm.DB, baseLog *logger.Logger) *Service {
	return &Service{db: db, log: baseLog.With("service", "ReportService")}
}

type learner struct {
	ID    uint
	Name  string
	Email string
}

type pageRow struct {
	ID       uint
	ModuleID uint
}

// TopicProgress builds an xlsx workbook with one row per enrolled user and one
// column per module (in module order). A cell holds the share of the module's
// pages the user completed, or 100 once the module itself is complete.
func (s *Service) TopicProgress(ctx context.Context, topicID uint) ([]byte, error) {
	db := s.db.WithContext(ctx)

	var topic learning.Topic
	if err := db.First(&topic, topicID).Error; err != nil {
		return nil, apperr.NotFoundIfMissing(err, "topic", topicID)
	}

	var modules []learning.Module
	if err := db.Where("topic_id = ?", topicID).Order("position ASC, id ASC").Find(&modules).Error; err != nil {
		return nil, fmt.Errorf("load modules: %w", err)
	}
	moduleIDs := make([]uint, len(modules))
	for i, m := range modules {
		moduleIDs[i] = m.ID
	}

	var learners []learner
	err := db.Table("users").
		Select("users.id, users.name, users.email").
		Joins("JOIN topic_enrollments ON topic_enrollments.user_id = users.id").
		Where("topic_enrollments.topic_id = ?", topicID).
		Order("users.id").
		Scan(&learners).Error
	if err != nil {
		return nil, fmt.Errorf("load learners: %w", err)
	}
	userIDs := make([]uint, len(learners))
	for i, l := range learners {
		userIDs[i] = l.ID
	}

	var pages []pageRow
	if len(moduleIDs) > 0 {
		err = db.Table("pages").
			Select("pages.id, main_contents.module_id").
			Joins("JOIN main_contents ON main_contents.id = pages.main_content_id").
			Where("main_contents.module_id IN ?", moduleIDs).
			Scan(&pages).Error
		if err != nil {
			return nil, fmt.Errorf("load pages: %w", err)
		}
	}
	pagesPerModule := map[uint]int{}
	moduleOfPage := map[uint]uint{}
	pageIDs := make([]uint, len(pages))
	for i, p := range pages {
		pagesPerModule[p.ModuleID]++
		moduleOfPage[p.ID] = p.ModuleID
		pageIDs[i] = p.ID
	}

	type key struct{ user, module uint }
	moduleDone := map[key]bool{}
	pagesDone := map[key]int{}
	if len(userIDs) > 0 && len(moduleIDs) > 0 {
		var facts []learning.Progress
		err = db.Where("user_id IN ? AND module_id IN ? AND completed = ?", userIDs, moduleIDs, true).Find(&facts).Error
		if err != nil {
			return nil, fmt.Errorf("load module progress: %w", err)
		}
		for _, f := range facts {
			moduleDone[key{f.UserID, f.ModuleID}] = true
		}
	}
	if len(userIDs) > 0 && len(pageIDs) > 0 {
		var facts []learning.PageProgress
		err = db.Where("user_id IN ? AND page_id IN ? AND completed = ?", userIDs, pageIDs, true).Find(&facts).Error
		if err != nil {
			return nil, fmt.Errorf("load page progress: %w", err)
		}
		for _, f := range facts {
			pagesDone[key{f.UserID, moduleOfPage[f.PageID]}]++
		}
	}

	f := excelize.NewFile()
	defer f.Close()
	if err := f.SetSheetName("Sheet1", progressSheet); err != nil {
		return nil, err
	}

	header := []interface{}{"User ID", "Name", "Email"}
	for _, m := range modules {
		header = append(header, m.Title)
	}
	header = append(header, "Modules completed")
	if err := f.SetSheetRow(progressSheet, "A1", &header); err != nil {
		return nil, err
	}
	bold, err := f.NewStyle(&excelize.Style{Font: &excelize.Font{Bold: true}})
	if err != nil {
		return nil, err
	}
	last, err := excelize.CoordinatesToCellName(len(header), 1)
	if err != nil {
		return nil, err
	}
	if err := f.SetCellStyle(progressSheet, "A1", last, bold); err != nil {
		return nil, err
	}

	for i, l := range learners {
		row := []interface{}{l.ID, l.Name, l.Email}
		completed := 0
		for _, m := range modules {
			k := key{l.ID, m.ID}
			switch {
			case moduleDone[k]:
				completed++
				row = append(row, 100.0)
			case pagesPerModule[m.ID] == 0:
				row = append(row, 0.0)
			default:
				pct := float64(pagesDone[k]) / float64(pagesPerModule[m.ID]) * 100
				row = append(row, math.Round(pct*100)/100)
			}
		}
		row = append(row, completed)
		cell, err := excelize.CoordinatesToCellName(1, i+2)
		if err != nil {
			return nil, err
		}
		if err := f.SetSheetRow(progressSheet, cell, &row); err != nil {
			return nil, err
		}
	}

	buf, err := f.WriteToBuffer()
	if err != nil {
		return nil, fmt.Errorf("write workbook: %w", err)
	}
	s.log.Info("progress report built", "topic_id", topicID, "learners", len(learners), "modules", len(modules))
	return buf.Bytes(), nil
}
