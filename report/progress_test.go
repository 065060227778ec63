package report_test

import (
	"bytes"
	"context"
	"testing"

	"slm/apperr"
	"slm/models/learning"
	"slm/report"
	"slm/testutil"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"
)

func TestTopicProgress(t *testing.T) {
	db := testutil.DB(t)
	topic := testutil.SeedTopic(t, db, "go", 1)
	m1 := testutil.SeedModule(t, db, topic.ID, 1)
	m2 := testutil.SeedModule(t, db, topic.ID, 2)
	mc := testutil.SeedMainContent(t, db, m2.ID, 1)
	p1 := testutil.SeedPage(t, db, mc.ID, 1, 5)
	testutil.SeedPage(t, db, mc.ID, 2, 5)
	testutil.SeedPage(t, db, mc.ID, 3, 5)
	testutil.SeedPage(t, db, mc.ID, 4, 5)

	alice := testutil.SeedUser(t, db, "alice@example.com", learning.RoleStudent)
	bob := testutil.SeedUser(t, db, "bob@example.com", learning.RoleStudent)
	outsider := testutil.SeedUser(t, db, "eve@example.com", learning.RoleStudent)
	testutil.Enroll(t, db, alice.ID, topic.ID)
	testutil.Enroll(t, db, bob.ID, topic.ID)

	require.NoError(t, db.Create(&learning.Progress{UserID: alice.ID, ModuleID: m1.ID, Completed: true}).Error)
	require.NoError(t, db.Create(&learning.PageProgress{UserID: bob.ID, PageID: p1.ID, Completed: true}).Error)
	require.NoError(t, db.Create(&learning.PageProgress{UserID: outsider.ID, PageID: p1.ID, Completed: true}).Error)

	data, err := report.NewService(db, testutil.Logger(t)).TopicProgress(context.Background(), topic.ID)
	require.NoError(t, err)

	f, err := excelize.OpenReader(bytes.NewReader(data))
	require.NoError(t, err)
	defer f.Close()
	rows, err := f.GetRows("Progress")
	require.NoError(t, err)

	require.Len(t, rows, 3, "header plus enrolled users only")
	assert.Equal(t, []string{"User ID", "Name", "Email", m1.Title, m2.Title, "Modules completed"}, rows[0])
	assert.Equal(t, "alice@example.com", rows[1][2])
	assert.Equal(t, "100", rows[1][3])
	assert.Equal(t, "0", rows[1][4])
	assert.Equal(t, "1", rows[1][5])
	assert.Equal(t, "bob@example.com", rows[2][2])
	assert.Equal(t, "25", rows[2][4])
	assert.Equal(t, "0", rows[2][5])
}

func TestTopicProgressUnknownTopic(t *testing.T) {
	db := testutil.DB(t)
	_, err := report.NewService(db, testutil.Logger(t)).TopicProgress(context.Background(), 42)
	assert.True(t, apperr.Is(err, apperr.KindNotFound))
}
