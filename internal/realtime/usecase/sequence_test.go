package usecase

import (
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestSequence_StartsAtOne(t *testing.T) {
	var s sequence
	assert.Equal(t, uint64(0), s.Current())
	assert.Equal(t, uint64(1), s.Next())
	assert.Equal(t, uint64(2), s.Next())
	assert.Equal(t, uint64(2), s.Current())
}

func TestSequence_ConcurrentUnique(t *testing.T) {
	const workers, perWorker = 16, 500

	var (
		s    sequence
		mu   sync.Mutex
		seen = make(map[uint64]struct{}, workers*perWorker)
		wg   sync.WaitGroup
	)
	for w := 0; w < workers; w++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			local := make([]uint64, 0, perWorker)
			var last uint64
			for i := 0; i < perWorker; i++ {
				id := s.Next()
				assert.Greater(t, id, last)
				last = id
				local = append(local, id)
			}
			mu.Lock()
			for _, id := range local {
				seen[id] = struct{}{}
			}
			mu.Unlock()
		}()
	}
	wg.Wait()

	assert.Len(t, seen, workers*perWorker)
	assert.Equal(t, uint64(workers*perWorker), s.Current())
}
