package stats_test

import (
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/Lynxx9/MNFTL/stats"
)

func TestRecorderAccumulates(t *testing.T) {
	r := stats.New()

	r.IncrFTLRead()
	r.IncrFTLRead()
	r.IncrFTLWrite()
	r.IncrFTLTrim()
	r.IncrGCBlocksErased()
	r.IncrValidPageCopy()
	r.IncrFailure()

	got := r.Snapshot()
	assert.Equal(t, int64(2), got.FTLRead)
	assert.Equal(t, int64(1), got.FTLWrite)
	assert.Equal(t, int64(1), got.FTLTrim)
	assert.Equal(t, int64(1), got.GCBlocksErased)
	assert.Equal(t, int64(1), got.ValidPageCopies)
	assert.Equal(t, int64(1), got.Failures)
}

func TestRecorderConcurrentIncrements(t *testing.T) {
	r := stats.New()

	var wg sync.WaitGroup
	for i := 0; i < 100; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			r.IncrFTLWrite()
		}()
	}
	wg.Wait()

	assert.Equal(t, int64(100), r.Snapshot().FTLWrite)
}
