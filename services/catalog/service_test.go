package catalog_test

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"slm/apperr"
	"slm/dbctx"
	"slm/media"
	"slm/models/learning"
	"slm/services/catalog"
	"slm/services/completion"
	"slm/services/unlock"
	"slm/testutil"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

type fixture struct {
	db    *gorm.DB
	store *completion.Store
	svc   *catalog.Service
}

func newFixture(t *testing.T, mediaURL string) *fixture {
	t.Helper()
	db := testutil.DB(t)
	log := testutil.Logger(t)
	store := completion.NewStore(db, log)
	resolver := unlock.NewResolver(db, store, log)
	return &fixture{
		db:    db,
		store: store,
		svc:   catalog.NewService(db, store, resolver, media.New(mediaURL, "key", log), log),
	}
}

func (f *fixture) complete(t *testing.T, userID uint, refs ...completion.Ref) {
	t.Helper()
	for _, ref := range refs {
		require.NoError(t, f.store.MarkComplete(dbctx.Context{Ctx: context.Background()}, userID, ref))
	}
}

func TestTopicsScopedToEnrollment(t *testing.T) {
	f := newFixture(t, "")
	ctx := context.Background()
	first := testutil.SeedTopic(t, f.db, "first", 1)
	testutil.SeedTopic(t, f.db, "second", 2)
	user := testutil.SeedUser(t, f.db, "u@example.com", learning.RoleStudent)

	topics, err := f.svc.Topics(ctx, catalog.Viewer{UserID: user.ID})
	require.NoError(t, err)
	assert.Empty(t, topics)

	testutil.Enroll(t, f.db, user.ID, first.ID)
	topics, err = f.svc.Topics(ctx, catalog.Viewer{UserID: user.ID})
	require.NoError(t, err)
	require.Len(t, topics, 1)
	assert.Equal(t, "first", topics[0].Name)
	assert.True(t, topics[0].Completed, "a topic without modules counts as completed")

	topics, err = f.svc.Topics(ctx, catalog.Viewer{UserID: user.ID, Admin: true})
	require.NoError(t, err)
	require.Len(t, topics, 2)
	assert.Equal(t, "second", topics[1].Name)
}

func TestTopicsAnnotations(t *testing.T) {
	f := newFixture(t, "")
	ctx := context.Background()
	topic := testutil.SeedTopic(t, f.db, "go", 1)
	m1 := testutil.SeedModule(t, f.db, topic.ID, 1)
	m2 := testutil.SeedModule(t, f.db, topic.ID, 2)
	mc1 := testutil.SeedMainContent(t, f.db, m1.ID, 1)
	mc2 := testutil.SeedMainContent(t, f.db, m1.ID, 2)
	p1 := testutil.SeedPage(t, f.db, mc1.ID, 1, 5)
	p2 := testutil.SeedPage(t, f.db, mc1.ID, 2, 7)
	p3 := testutil.SeedPage(t, f.db, mc2.ID, 1, 3)
	testutil.SeedQuiz(t, f.db, &mc1.ID, []int{0})
	user := testutil.SeedUser(t, f.db, "u@example.com", learning.RoleStudent)
	testutil.Enroll(t, f.db, user.ID, topic.ID)

	f.complete(t, user.ID, completion.Page(p1.ID))

	topics, err := f.svc.Topics(ctx, catalog.Viewer{UserID: user.ID})
	require.NoError(t, err)
	require.Len(t, topics, 1)
	require.Len(t, topics[0].Modules, 2)
	assert.False(t, topics[0].Completed)

	first, second := topics[0].Modules[0], topics[0].Modules[1]
	assert.Equal(t, m1.ID, first.ID)
	assert.False(t, first.Locked)
	assert.True(t, second.Locked)
	assert.Equal(t, 15, first.TotalDuration)
	assert.Equal(t, 33.33, first.CompletionPercentage)

	require.Len(t, first.MainContents, 2)
	section := first.MainContents[0]
	assert.True(t, section.HasQuiz)
	assert.False(t, section.Locked)
	assert.Equal(t, 50.0, section.CompletionPercentage)
	assert.Equal(t, 12, section.TotalDuration)
	require.Len(t, section.Pages, 2)
	assert.Equal(t, p1.ID, section.Pages[0].ID)
	assert.True(t, section.Pages[0].Completed)
	assert.Equal(t, p2.ID, section.Pages[1].ID)
	assert.False(t, section.Pages[1].Locked, "opens once page 1 is complete")

	assert.True(t, first.MainContents[1].Locked)
	assert.False(t, first.MainContents[1].HasQuiz)
	assert.Equal(t, p3.ID, first.MainContents[1].Pages[0].ID)
	assert.False(t, first.MainContents[1].Pages[0].Locked)

	f.complete(t, user.ID, completion.Module(m1.ID), completion.Module(m2.ID))
	topics, err = f.svc.Topics(ctx, catalog.Viewer{UserID: user.ID})
	require.NoError(t, err)
	assert.True(t, topics[0].Completed)
	assert.False(t, topics[0].Modules[1].Locked)
}

func TestModuleAndMainContent(t *testing.T) {
	f := newFixture(t, "")
	ctx := context.Background()
	topic := testutil.SeedTopic(t, f.db, "go", 1)
	m1 := testutil.SeedModule(t, f.db, topic.ID, 1)
	m2 := testutil.SeedModule(t, f.db, topic.ID, 2)
	mc := testutil.SeedMainContent(t, f.db, m2.ID, 1)
	testutil.SeedPage(t, f.db, mc.ID, 1, 4)
	user := testutil.SeedUser(t, f.db, "u@example.com", learning.RoleStudent)
	testutil.Enroll(t, f.db, user.ID, topic.ID)
	viewer := catalog.Viewer{UserID: user.ID}

	view, err := f.svc.Module(ctx, viewer, m2.ID)
	require.NoError(t, err)
	assert.True(t, view.Locked)
	assert.Equal(t, 4, view.TotalDuration)

	f.complete(t, user.ID, completion.Module(m1.ID))
	view, err = f.svc.Module(ctx, viewer, m2.ID)
	require.NoError(t, err)
	assert.False(t, view.Locked)

	section, err := f.svc.MainContent(ctx, viewer, mc.ID)
	require.NoError(t, err)
	assert.Equal(t, mc.ID, section.ID)
	assert.Len(t, section.Pages, 1)

	_, err = f.svc.Module(ctx, viewer, 999)
	assert.True(t, apperr.Is(err, apperr.KindNotFound))
	_, err = f.svc.MainContent(ctx, viewer, 999)
	assert.True(t, apperr.Is(err, apperr.KindNotFound))

	stranger := testutil.SeedUser(t, f.db, "s@example.com", learning.RoleStudent)
	_, err = f.svc.Module(ctx, catalog.Viewer{UserID: stranger.ID}, m2.ID)
	assert.True(t, apperr.Is(err, apperr.KindAccessDenied))
}

func TestPageGate(t *testing.T) {
	f := newFixture(t, "")
	ctx := context.Background()
	topic := testutil.SeedTopic(t, f.db, "go", 1)
	m := testutil.SeedModule(t, f.db, topic.ID, 1)
	mc := testutil.SeedMainContent(t, f.db, m.ID, 1)
	p1 := testutil.SeedPage(t, f.db, mc.ID, 1, 1)
	p2 := testutil.SeedPage(t, f.db, mc.ID, 2, 1)
	p3 := testutil.SeedPage(t, f.db, mc.ID, 3, 1)
	user := testutil.SeedUser(t, f.db, "u@example.com", learning.RoleStudent)
	testutil.Enroll(t, f.db, user.ID, topic.ID)
	viewer := catalog.Viewer{UserID: user.ID}

	page, err := f.svc.Page(ctx, viewer, p1.ID)
	require.NoError(t, err)
	assert.Equal(t, p1.ID, page.ID)
	assert.Equal(t, mc.ID, page.MainContent.ID)
	assert.Empty(t, page.VideoToken)

	f.complete(t, user.ID, completion.Page(p1.ID))
	_, err = f.svc.Page(ctx, viewer, p3.ID)
	assert.True(t, apperr.Is(err, apperr.KindAccessDenied), "page 2 is still incomplete")

	f.complete(t, user.ID, completion.Page(p2.ID))
	page, err = f.svc.Page(ctx, viewer, p3.ID)
	require.NoError(t, err)
	assert.False(t, page.Completed)

	admin := testutil.SeedUser(t, f.db, "a@example.com", learning.RoleAdmin)
	_, err = f.svc.Page(ctx, catalog.Viewer{UserID: admin.ID, Admin: true}, p3.ID)
	assert.NoError(t, err)

	stranger := testutil.SeedUser(t, f.db, "s@example.com", learning.RoleStudent)
	_, err = f.svc.Page(ctx, catalog.Viewer{UserID: stranger.ID}, p1.ID)
	assert.True(t, apperr.Is(err, apperr.KindAccessDenied))

	_, err = f.svc.Page(ctx, viewer, 999)
	assert.True(t, apperr.Is(err, apperr.KindNotFound))
}

func TestPageVideoToken(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/videos/vid-7/token", r.URL.Path)
		w.Header().Set("Content-Type", "application/json")
		_ = json.NewEncoder(w).Encode(map[string]string{"token": "play-me"})
	}))
	defer srv.Close()

	f := newFixture(t, srv.URL)
	topic := testutil.SeedTopic(t, f.db, "go", 1)
	m := testutil.SeedModule(t, f.db, topic.ID, 1)
	mc := testutil.SeedMainContent(t, f.db, m.ID, 1)
	p := testutil.SeedPage(t, f.db, mc.ID, 1, 1)
	video := "vid-7"
	require.NoError(t, f.db.Model(p).Update("video_id", video).Error)
	user := testutil.SeedUser(t, f.db, "u@example.com", learning.RoleStudent)
	testutil.Enroll(t, f.db, user.ID, topic.ID)

	page, err := f.svc.Page(context.Background(), catalog.Viewer{UserID: user.ID}, p.ID)
	require.NoError(t, err)
	assert.Equal(t, "play-me", page.VideoToken)
}

func TestProgressSummary(t *testing.T) {
	f := newFixture(t, "")
	ctx := context.Background()
	topic := testutil.SeedTopic(t, f.db, "go", 1)
	other := testutil.SeedTopic(t, f.db, "rust", 2)
	done := testutil.SeedModule(t, f.db, topic.ID, 1)
	started := testutil.SeedModule(t, f.db, topic.ID, 2)
	testutil.SeedModule(t, f.db, topic.ID, 3)
	elsewhere := testutil.SeedModule(t, f.db, other.ID, 1)
	startedPage := testutil.SeedPage(t, f.db, testutil.SeedMainContent(t, f.db, started.ID, 1).ID, 1, 1)
	elsewherePage := testutil.SeedPage(t, f.db, testutil.SeedMainContent(t, f.db, elsewhere.ID, 1).ID, 1, 1)
	user := testutil.SeedUser(t, f.db, "u@example.com", learning.RoleStudent)

	summary, err := f.svc.ProgressSummary(ctx, user.ID)
	require.NoError(t, err)
	assert.Equal(t, catalog.ProgressSummary{}, *summary)

	testutil.Enroll(t, f.db, user.ID, topic.ID)
	f.complete(t, user.ID,
		completion.Module(done.ID),
		completion.Page(startedPage.ID),
		completion.Page(elsewherePage.ID),
	)

	summary, err = f.svc.ProgressSummary(ctx, user.ID)
	require.NoError(t, err)
	assert.Equal(t, catalog.ProgressSummary{
		TotalModules:      3,
		CompletedModules:  1,
		InProgressModules: 1,
		NotStartedModules: 1,
	}, *summary)
}

func TestEnsureAccess(t *testing.T) {
	f := newFixture(t, "")
	ctx := context.Background()
	topic := testutil.SeedTopic(t, f.db, "go", 1)
	m := testutil.SeedModule(t, f.db, topic.ID, 1)
	mc := testutil.SeedMainContent(t, f.db, m.ID, 1)
	p := testutil.SeedPage(t, f.db, mc.ID, 1, 1)
	user := testutil.SeedUser(t, f.db, "u@example.com", learning.RoleStudent)
	viewer := catalog.Viewer{UserID: user.ID}

	err := f.svc.EnsureAccess(ctx, viewer, completion.Page(p.ID))
	assert.True(t, apperr.Is(err, apperr.KindAccessDenied))
	assert.NoError(t, f.svc.EnsureAccess(ctx, catalog.Viewer{UserID: user.ID, Admin: true}, completion.Page(p.ID)))

	testutil.Enroll(t, f.db, user.ID, topic.ID)
	assert.NoError(t, f.svc.EnsureAccess(ctx, viewer, completion.Page(p.ID)))
	assert.NoError(t, f.svc.EnsureAccess(ctx, viewer, completion.MainContent(mc.ID)))
	assert.NoError(t, f.svc.EnsureAccess(ctx, viewer, completion.Module(m.ID)))

	err = f.svc.EnsureAccess(ctx, viewer, completion.MainContent(404))
	assert.True(t, apperr.Is(err, apperr.KindNotFound))
}
