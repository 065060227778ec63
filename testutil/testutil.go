package testutil

import (
	"context"
	"fmt"
	"sync/atomic"
	"testing"

	"slm/database"
	"slm/logger"
	"slm/models/learning"

	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	gormLogger "gorm.io/gorm/logger"
)

var dbSeq atomic.Int64

// DB opens a fresh, migrated in-memory sqlite database private to the test.
func DB(tb testing.TB) *gorm.DB {
	tb.Helper()
	name := fmt.Sprintf("file:slm_test_%d?mode=memory&cache=shared", dbSeq.Add(1))
	db, err := gorm.Open(sqlite.Open(name), &gorm.Config{
		Logger: gormLogger.Default.LogMode(gormLogger.Silent),
	})
	if err != nil {
		tb.Fatalf("open sqlite: %v", err)
	}
	sqlDB, err := db.DB()
	if err != nil {
		tb.Fatalf("sql db: %v", err)
	}
	sqlDB.SetMaxOpenConns(1)
	tb.Cleanup(func() { _ = sqlDB.Close() })

	if err := database.RunMigrations(db, Logger(tb)); err != nil {
		tb.Fatalf("migrate: %v", err)
	}
	return db
}

func Logger(tb testing.TB) *logger.Logger {
	tb.Helper()
	return logger.Nop()
}

func SeedUser(tb testing.TB, db *gorm.DB, email, role string) *learning.User {
	tb.Helper()
	u := &learning.User{Email: email, Name: email, Role: role}
	mustCreate(tb, db, u)
	return u
}

func SeedTopic(tb testing.TB, db *gorm.DB, name string, order int) *learning.Topic {
	tb.Helper()
	t := &learning.Topic{Name: name, Order: order}
	mustCreate(tb, db, t)
	return t
}

func Enroll(tb testing.TB, db *gorm.DB, userID, topicID uint) {
	tb.Helper()
	mustCreate(tb, db, &learning.TopicEnrollment{UserID: userID, TopicID: topicID})
}

func SeedModule(tb testing.TB, db *gorm.DB, topicID uint, order int) *learning.Module {
	tb.Helper()
	m := &learning.Module{
		TopicID:         topicID,
		Title:           fmt.Sprintf("module %d", order),
		Order:           order,
		DifficultyLevel: learning.DifficultyBeginner,
	}
	mustCreate(tb, db, m)
	return m
}

func SeedMainContent(tb testing.TB, db *gorm.DB, moduleID uint, order int) *learning.MainContent {
	tb.Helper()
	mc := &learning.MainContent{ModuleID: moduleID, Title: fmt.Sprintf("section %d", order), Order: order}
	mustCreate(tb, db, mc)
	return mc
}

func SeedPage(tb testing.TB, db *gorm.DB, mainContentID uint, order, minutes int) *learning.Page {
	tb.Helper()
	p := &learning.Page{
		MainContentID: mainContentID,
		Title:         fmt.Sprintf("page %d", order),
		Content:       "content",
		Order:         order,
		TimeDuration:  minutes,
	}
	mustCreate(tb, db, p)
	return p
}

// SeedQuiz creates a quiz with one question per entry in correct; each question
// gets three choices and correct[i] selects which of them (0..2) is right.
func SeedQuiz(tb testing.TB, db *gorm.DB, mainContentID *uint, correct []int) (*learning.Quiz, []learning.Question, [][]learning.Choice) {
	tb.Helper()
	q := &learning.Quiz{MainContentID: mainContentID, Title: "quiz"}
	mustCreate(tb, db, q)

	questions := make([]learning.Question, 0, len(correct))
	choices := make([][]learning.Choice, 0, len(correct))
	for i, right := range correct {
		question := learning.Question{QuizID: q.ID, Text: fmt.Sprintf("question %d", i+1)}
		mustCreate(tb, db, &question)
		row := make([]learning.Choice, 3)
		for j := range row {
			row[j] = learning.Choice{QuestionID: question.ID, Text: fmt.Sprintf("choice %d", j+1), IsCorrect: j == right}
			mustCreate(tb, db, &row[j])
		}
		questions = append(questions, question)
		choices = append(choices, row)
	}
	return q, questions, choices
}

// Orders returns the positions of the given model's rows for one scope, sorted.
func Orders(tb testing.TB, db *gorm.DB, table, parentColumn string, parentID uint) []int {
	tb.Helper()
	var out []int
	q := db.WithContext(context.Background()).Table(table)
	if parentColumn != "" {
		q = q.Where(parentColumn+" = ?", parentID)
	}
	if err := q.Order("position ASC").Pluck("position", &out).Error; err != nil {
		tb.Fatalf("orders: %v", err)
	}
	return out
}

func Seq(n int) []int {
	out := make([]int, n)
	for i := range out {
		out[i] = i + 1
	}
	return out
}

func mustCreate(tb testing.TB, db *gorm.DB, v interface{}) {
	tb.Helper()
	if err := db.Create(v).Error; err != nil {
		tb.Fatalf("seed %T: %v", v, err)
	}
}
