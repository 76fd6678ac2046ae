// Copyright The wcs-go Authors
// SPDX-License-Identifier: Apache-2.0

package transport

import (
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestActorRunsTasksInOrder(t *testing.T) {
	a := NewActor(16)
	defer a.Stop()

	var mu sync.Mutex
	var order []int
	var wg sync.WaitGroup
	wg.Add(5)
	for i := 0; i < 5; i++ {
		i := i
		a.Run(func() {
			mu.Lock()
			order = append(order, i)
			mu.Unlock()
			wg.Done()
		})
	}
	wg.Wait()
	assert.Equal(t, []int{0, 1, 2, 3, 4}, order)
}

func TestActorNeverRunsConcurrently(t *testing.T) {
	a := NewActor(16)
	defer a.Stop()

	var inFlight int32
	var maxObserved int32
	var wg sync.WaitGroup
	wg.Add(20)
	for i := 0; i < 20; i++ {
		a.Run(func() {
			n := atomic.AddInt32(&inFlight, 1)
			if n > atomic.LoadInt32(&maxObserved) {
				atomic.StoreInt32(&maxObserved, n)
			}
			time.Sleep(time.Millisecond)
			atomic.AddInt32(&inFlight, -1)
			wg.Done()
		})
	}
	wg.Wait()
	require.Equal(t, int32(1), atomic.LoadInt32(&maxObserved))
}

func TestPoolIndexWrapsAndRoutesConsistently(t *testing.T) {
	p := NewPool(4, 16)
	defer p.Stop()

	a := p.Actor(1)
	b := p.Actor(1 + 4)
	assert.Same(t, a, b, "same trace_hash %% actor_count must route to the same actor")
}
