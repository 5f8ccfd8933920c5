package batch

import (
	"sync/atomic"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestChunks_CoversEveryIndexOnce(t *testing.T) {
	for _, tc := range []struct{ total, workers int }{{0, 4}, {1, 4}, {10, 3}, {100, 8}, {7, 0}} {
		hits := make([]int32, tc.total)
		Chunks(tc.total, tc.workers, func(s, e int) {
			for i := s; i < e; i++ {
				atomic.AddInt32(&hits[i], 1)
			}
		})
		for i, h := range hits {
			assert.Equal(t, int32(1), h, "total=%d workers=%d index=%d", tc.total, tc.workers, i)
		}
	}
}

func TestRanges(t *testing.T) {
	assert.Nil(t, Ranges(0, 5))
	assert.Equal(t, [][2]int{{0, 5}, {5, 10}, {10, 12}}, Ranges(12, 5))
	assert.Equal(t, [][2]int{{0, 3}}, Ranges(3, 0))
}

func TestWorkers(t *testing.T) {
	assert.Equal(t, 3, Workers(3))
	assert.GreaterOrEqual(t, Workers(0), 1)
}
