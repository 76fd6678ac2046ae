// Copyright The wcs-go Authors
// SPDX-License-Identifier: Apache-2.0

package transport

import "sync"

// Actor is a single-threaded executor: every function passed to Run
// executes strictly after the previous one finishes, on one goroutine.
// The Transport Façade uses a fixed pool of Actors, chosen per call by
// Tracker.ActorIndex, so that callbacks for the same trace always land
// on the same actor and never run concurrently with each other (spec
// §4.6).
type Actor struct {
	tasks chan func()
	done  chan struct{}
	once  sync.Once
}

// NewActor starts an Actor's run loop in a background goroutine.
func NewActor(queueDepth int) *Actor {
	a := &Actor{
		tasks: make(chan func(), queueDepth),
		done:  make(chan struct{}),
	}
	go a.loop()
	return a
}

func (a *Actor) loop() {
	defer close(a.done)
	for task := range a.tasks {
		task()
	}
}

// Run enqueues f for execution on this actor's goroutine. It blocks if
// the actor's queue is full, applying backpressure to the caller.
func (a *Actor) Run(f func()) {
	a.tasks <- f
}

// Stop closes the actor's queue and waits for in-flight and queued tasks
// to finish. Stop must only be called once.
func (a *Actor) Stop() {
	a.once.Do(func() { close(a.tasks) })
	<-a.done
}

// Pool is a fixed set of Actors, indexed by Tracker.ActorIndex.
type Pool struct {
	actors []*Actor
}

// NewPool starts n Actors, each with the given per-actor queue depth.
func NewPool(n, queueDepth int) *Pool {
	if n <= 0 {
		n = 1
	}
	p := &Pool{actors: make([]*Actor, n)}
	for i := range p.actors {
		p.actors[i] = NewActor(queueDepth)
	}
	return p
}

// Actor returns the i'th actor, wrapping i into range.
func (p *Pool) Actor(i int) *Actor {
	return p.actors[i%len(p.actors)]
}

// Len returns the number of actors in the pool.
func (p *Pool) Len() int { return len(p.actors) }

// Stop stops every actor in the pool, waiting for each to drain.
func (p *Pool) Stop() {
	for _, a := range p.actors {
		a.Stop()
	}
}
