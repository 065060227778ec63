package ordering_test

import (
	"context"
	"sync"
	"testing"

	"slm/services/ordering"
	"slm/testutil"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// Two engines share nothing in-process, so only the advisory lock keeps them apart.
func TestPostgresConcurrentEnginesKeepDensity(t *testing.T) {
	db := testutil.Postgres(t)
	ctx := context.Background()
	engines := []*ordering.Engine{
		ordering.NewEngine(db, testutil.Logger(t), 5),
		ordering.NewEngine(db, testutil.Logger(t), 5),
	}
	topic := testutil.SeedTopic(t, db, "go", 1)
	scope := ordering.ModuleScope(topic.ID)

	const rows = 24
	ids := make([]uint, rows)
	for i := range ids {
		ids[i] = testutil.SeedModule(t, db, topic.ID, 0).ID
	}

	var wg sync.WaitGroup
	errs := make(chan error, rows*2)
	for i, id := range ids {
		wg.Add(1)
		go func(i int, id uint) {
			defer wg.Done()
			_, err := engines[i%2].InsertOrMove(ctx, scope, id, i%4)
			errs <- err
		}(i, id)
	}
	wg.Wait()

	for i, id := range ids {
		wg.Add(1)
		go func(i int, id uint) {
			defer wg.Done()
			_, err := engines[i%2].InsertOrMove(ctx, scope, id, rows-i)
			errs <- err
		}(i, id)
	}
	wg.Wait()
	close(errs)
	for err := range errs {
		require.NoError(t, err)
	}

	assert.Equal(t, testutil.Seq(rows), testutil.Orders(t, db, "modules", "topic_id", topic.ID))
}
