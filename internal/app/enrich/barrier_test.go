package enrich

import (
	"sync"
	"sync/atomic"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestBarrierFiresImmediatelyForZero(t *testing.T) {
	var fired int
	NewBarrier(0, func() { fired++ })
	assert.Equal(t, 1, fired)
}

func TestBarrierFiresOnce(t *testing.T) {
	var fired atomic.Int32
	b := NewBarrier(10, func() { fired.Add(1) })
	var wg sync.WaitGroup
	for i := 0; i < 15; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			b.Done()
		}()
	}
	wg.Wait()
	assert.Equal(t, int32(1), fired.Load())
	assert.Equal(t, 0, b.Remaining())
}
