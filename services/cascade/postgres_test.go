package cascade_test

import (
	"context"
	"fmt"
	"sync"
	"testing"

	"slm/dbctx"
	"slm/models/learning"
	"slm/services/cascade"
	"slm/services/completion"
	"slm/testutil"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// Both main contents finish at the same moment; exactly one of the two
// transactions must see the other's fact and write the module.
func TestPostgresConcurrentSiblingCompletionsWriteModule(t *testing.T) {
	db := testutil.Postgres(t)
	log := testutil.Logger(t)
	store := completion.NewStore(db, log)
	c := cascade.New(db, store, log, 5)
	ctx := context.Background()

	topic := testutil.SeedTopic(t, db, "go", 1)
	module := testutil.SeedModule(t, db, topic.ID, 1)
	pages := []*learning.Page{
		testutil.SeedPage(t, db, testutil.SeedMainContent(t, db, module.ID, 1).ID, 1, 1),
		testutil.SeedPage(t, db, testutil.SeedMainContent(t, db, module.ID, 2).ID, 1, 1),
	}

	const users = 20
	for i := 0; i < users; i++ {
		user := testutil.SeedUser(t, db, fmt.Sprintf("u%d@example.com", i), learning.RoleStudent)
		var wg sync.WaitGroup
		errs := make(chan error, len(pages))
		for _, p := range pages {
			wg.Add(1)
			go func(pageID uint) {
				defer wg.Done()
				_, err := c.OnPageCompleted(ctx, user.ID, pageID)
				errs <- err
			}(p.ID)
		}
		wg.Wait()
		close(errs)
		for err := range errs {
			require.NoError(t, err)
		}

		done, err := store.IsComplete(dbctx.Context{Ctx: ctx}, user.ID, completion.Module(module.ID))
		require.NoError(t, err)
		assert.True(t, done, "user %d", i)
	}
}
