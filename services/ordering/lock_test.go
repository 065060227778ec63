package ordering

import (
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestKeyedMutexSerializesSameKey(t *testing.T) {
	km := newKeyedMutex()
	var (
		wg      sync.WaitGroup
		mu      sync.Mutex
		inside  int
		maxSeen int
	)
	for i := 0; i < 20; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			release := km.lockAll([]string{"pages:main_content_id:1"})
			mu.Lock()
			inside++
			if inside > maxSeen {
				maxSeen = inside
			}
			mu.Unlock()

			mu.Lock()
			inside--
			mu.Unlock()
			release()
		}()
	}
	wg.Wait()
	assert.Equal(t, 1, maxSeen)
	assert.Empty(t, km.locks, "entries are dropped once released")
}

func TestKeyedMutexOverlappingSetsDoNotDeadlock(t *testing.T) {
	km := newKeyedMutex()
	var wg sync.WaitGroup
	for i := 0; i < 50; i++ {
		wg.Add(2)
		go func() {
			defer wg.Done()
			km.lockAll([]string{"a", "b"})()
		}()
		go func() {
			defer wg.Done()
			km.lockAll([]string{"b", "a", "b"})()
		}()
	}
	wg.Wait()
	assert.Empty(t, km.locks)
}
