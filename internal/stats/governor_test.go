package stats

import (
	"context"
	"sync"
	"sync/atomic"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestGovernor_BoundsConcurrency(t *testing.T) {
	g := NewGovernor(2)

	var current, peak int64
	var wg sync.WaitGroup
	gate := make(chan struct{})

	for i := 0; i < 10; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_ = g.Do(context.Background(), func() {
				n := atomic.AddInt64(&current, 1)
				for {
					p := atomic.LoadInt64(&peak)
					if n <= p || atomic.CompareAndSwapInt64(&peak, p, n) {
						break
					}
				}
				<-gate
				atomic.AddInt64(&current, -1)
			})
		}()
	}

	// let goroutines pile up on the two slots, then release everyone
	close(gate)
	wg.Wait()

	assert.LessOrEqual(t, atomic.LoadInt64(&peak), int64(2))
}

func TestGovernor_CancelledWait(t *testing.T) {
	g := NewGovernor(1)

	release := make(chan struct{})
	started := make(chan struct{})
	go func() {
		_ = g.Do(context.Background(), func() {
			close(started)
			<-release
		})
	}()
	<-started

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	err := g.Do(ctx, func() { t.Fatal("must not run") })
	require.ErrorIs(t, err, context.Canceled)

	close(release)
}

func TestGovernor_ClampsToOne(t *testing.T) {
	g := NewGovernor(0)
	ran := false
	require.NoError(t, g.Do(context.Background(), func() { ran = true }))
	assert.True(t, ran)
}
