// Copyright The wcs-go Authors
// SPDX-License-Identifier: Apache-2.0

package wcs

import (
	"context"
	mrand "math/rand"
	"sync"
	"sync/atomic"
	"time"
)

// WriteAggregatorConfig configures the Write Aggregator (spec §4.8).
type WriteAggregatorConfig struct {
	// MaxBatchSize caps the number of items folded into one
	// BatchWriteRow call.
	MaxBatchSize int
	// MaxConcurrency bounds the number of BatchWriteRow calls the
	// aggregator keeps in flight at once.
	MaxConcurrency int64
	// RegularNap is the polling interval the aggregator settles back to
	// once it is no longer backing off.
	RegularNap time.Duration
	// MaxNap bounds how far the polling interval grows under repeated
	// back-off.
	MaxNap time.Duration
	// NapShrinkStep is how much the nap shrinks on each clean wake while
	// concurrency is held at 1, before concurrency starts to grow.
	NapShrinkStep time.Duration
	// MaxAttempts bounds how many times one item is sent: after its
	// MaxAttempts-th retriable batch or per-item failure it is resolved
	// with that failure instead of being requeued.
	MaxAttempts int
}

func (c *WriteAggregatorConfig) setDefaults() {
	if c.MaxBatchSize <= 0 {
		c.MaxBatchSize = 200
	}
	if c.MaxConcurrency <= 0 {
		c.MaxConcurrency = 8
	}
	if c.RegularNap <= 0 {
		c.RegularNap = 10 * time.Millisecond
	}
	if c.NapShrinkStep <= 0 {
		c.NapShrinkStep = 5 * time.Millisecond
	}
	if c.MaxNap < c.RegularNap {
		c.MaxNap = c.RegularNap * 16
	}
	if c.MaxAttempts <= 0 {
		c.MaxAttempts = 3
	}
}

// pendingWrite pairs a queued mutation with the callback that delivers
// its eventual outcome and the number of times it has already been
// requeued.
type pendingWrite struct {
	item     BatchWriteItem
	attempts int
	done     func(BatchItemOutcome)
}

// WriteAggregator is the Write Aggregator collaborator of spec §4.8. It
// accepts individual row mutations and folds them into BatchWriteRow
// calls, the way a shard in the teacher's batch processor folds
// individual telemetry payloads into one export: items pile up in a
// FIFO waiting list, and a loop goroutine wakes on its own schedule (or
// on a fresh enqueue) to carve batches off the front of it.
//
// Within one batch, no two items may share (table, primary-key-hash):
// the batch builder stops at the first such collision rather than
// folding the colliding item in, leaving it at the head of the waiting
// list to be sent — and get its own real outcome — in a later batch.
// Nothing queued is ever discarded or given another item's result.
//
// Across wakes, the polling interval ("nap") and the number of
// concurrent BatchWriteRow calls are adjusted jointly by a small AIMD
// state machine driven by a back-off flag: a clean cycle first shrinks
// the nap toward its floor, then grows concurrency; a cycle that saw a
// retriable batch failure first halves concurrency, then — once
// concurrency is already 1 — doubles the nap instead. Items that fail
// for a retriable reason are requeued at the front of the waiting list
// so a struggling table doesn't starve behind a growing backlog of
// newer writes.
type WriteAggregator struct {
	client *SyncClient
	cfg    WriteAggregatorConfig

	newItem   chan pendingWrite
	requeueCh chan []pendingWrite
	shutdownC chan struct{}
	wg        sync.WaitGroup

	ongoing  int64
	backOff  int32
	actorSeq int64
}

// NewWriteAggregator starts an aggregator loop over client. Call Close
// to drain and stop it.
func NewWriteAggregator(client *SyncClient, cfg WriteAggregatorConfig) *WriteAggregator {
	cfg.setDefaults()
	a := &WriteAggregator{
		client:    client,
		cfg:       cfg,
		newItem:   make(chan pendingWrite, cfg.MaxBatchSize),
		requeueCh: make(chan []pendingWrite, 1),
		shutdownC: make(chan struct{}),
	}
	a.wg.Add(1)
	go a.loop()
	return a
}

// Submit enqueues one row mutation for batching. done is invoked
// exactly once, from an aggregator-owned actor, once the item's
// outcome is final.
func (a *WriteAggregator) Submit(ctx context.Context, item BatchWriteItem, done func(BatchItemOutcome)) error {
	if err := item.validate(); err != nil {
		return err
	}
	select {
	case a.newItem <- pendingWrite{item: item, done: done}:
		return nil
	case <-a.shutdownC:
		return NewParameterInvalid("aggregator", "closed")
	case <-ctx.Done():
		return ctx.Err()
	}
}

// Close stops accepting new items, flushes whatever is buffered
// (regardless of the concurrency cap, so every enqueued item still
// gets its callback invoked exactly once), and waits for every
// in-flight BatchWriteRow call to resolve.
func (a *WriteAggregator) Close() {
	close(a.shutdownC)
	a.wg.Wait()
}

func (a *WriteAggregator) loop() {
	defer a.wg.Done()

	var waiting []pendingWrite
	sendDone := make(chan struct{}, 1)
	rng := newSeededRand()

	nap := a.cfg.MaxNap
	concurrency := int64(1)

	dispatchOne := func() bool {
		var batch []pendingWrite
		batch, waiting = buildBatch(waiting, a.cfg.MaxBatchSize)
		if len(batch) == 0 {
			return false
		}
		atomic.AddInt64(&a.ongoing, 1)
		a.wg.Add(1)
		go a.send(batch, sendDone)
		return true
	}

	// wake recomputes the AIMD state per spec §4.8 step 2, dispatches
	// as many batches as the new concurrency target and the waiting
	// list allow, and reschedules the nap timer.
	wake := func(timer *time.Timer) {
		gotBackOff := atomic.CompareAndSwapInt32(&a.backOff, 1, 0)
		nap, concurrency = nextNapConcurrency(a.cfg, gotBackOff, nap, concurrency)

		for atomic.LoadInt64(&a.ongoing) < concurrency && len(waiting) > 0 {
			if !dispatchOne() {
				break
			}
		}

		if !timer.Stop() {
			select {
			case <-timer.C:
			default:
			}
		}
		timer.Reset(jitteredNap(rng, nap))
	}

	timer := time.NewTimer(jitteredNap(rng, nap))
	defer timer.Stop()

	for {
		select {
		case <-a.shutdownC:
			timer.Stop()
		drain:
			for {
				select {
				case item := <-a.newItem:
					waiting = append(waiting, item)
				default:
					break drain
				}
			}
			// Every item still waiting gets a real batch and a real
			// outcome; the concurrency cap only throttles steady-state
			// load, it never excuses dropping work on shutdown.
			for len(waiting) > 0 {
				if !dispatchOne() {
					break
				}
			}
			return
		case item := <-a.newItem:
			waiting = append(waiting, item)
		drainNew:
			for {
				select {
				case item := <-a.newItem:
					waiting = append(waiting, item)
				default:
					break drainNew
				}
			}
			wake(timer)
		case items := <-a.requeueCh:
			waiting = append(items, waiting...)
			wake(timer)
		case <-sendDone:
			wake(timer)
		case <-timer.C:
			wake(timer)
		}
	}
}

// nextNapConcurrency implements spec §4.8 step 2's four-branch AIMD
// transition.
func nextNapConcurrency(cfg WriteAggregatorConfig, backOff bool, nap time.Duration, concurrency int64) (time.Duration, int64) {
	if !backOff {
		if nap-cfg.NapShrinkStep >= cfg.RegularNap {
			return nap - cfg.NapShrinkStep, 1
		}
		next := concurrency + 1
		if next > cfg.MaxConcurrency {
			next = cfg.MaxConcurrency
		}
		return cfg.RegularNap, next
	}
	if concurrency > 1 {
		return nap, concurrency / 2
	}
	next := nap * 2
	if next > cfg.MaxNap {
		next = cfg.MaxNap
	}
	return next, 1
}

// jitteredNap returns a uniform random duration in [nap/2, nap], per
// spec §4.8 step 1.
func jitteredNap(rng *mrand.Rand, nap time.Duration) time.Duration {
	if nap <= 0 {
		return 0
	}
	half := nap / 2
	span := nap - half
	if span <= 0 {
		return half
	}
	return half + time.Duration(rng.Int63n(int64(span)+1))
}

// buildBatch carves a batch of up to maxSize items off the front of
// waiting, stopping at the first item whose (table, primary-key-hash)
// collides with one already taken into this batch rather than folding
// it in. The colliding item, and everything after it, is returned as
// the remainder for a later batch — nothing is ever discarded
// (original_source/src/tablestore/core/impl/async_batch_writer.cpp,
// AsyncBatchWriter::batch()).
func buildBatch(waiting []pendingWrite, maxSize int) (batch, remaining []pendingWrite) {
	seen := make(map[string]bool, len(waiting))
	var autoIncrOrdinal int
	for i, pw := range waiting {
		if len(batch) >= maxSize {
			return batch, waiting[i:]
		}
		key := pw.item.TableName + "|" + pkDedupKey(pw.item.PrimaryKey, &autoIncrOrdinal)
		if seen[key] {
			return batch, waiting[i:]
		}
		seen[key] = true
		batch = append(batch, pw)
	}
	return batch, nil
}

// send performs one BatchWriteRow call for batch and reports completion
// on done so the loop can admit the next wake's dispatch. Because
// buildBatch guarantees batch is collision-free, responses line up
// with batch by index — no dedup-key lookup is needed on the way back.
func (a *WriteAggregator) send(batch []pendingWrite, done chan<- struct{}) {
	defer a.wg.Done()
	defer func() {
		atomic.AddInt64(&a.ongoing, -1)
		select {
		case done <- struct{}{}:
		default:
		}
	}()

	req := BatchWriteRowRequest{Items: make([]BatchWriteItem, len(batch))}
	for i, pw := range batch {
		req.Items[i] = pw.item
	}

	result, err := a.client.BatchWriteRow(context.Background(), req)
	if err != nil {
		a.onBatchFailure(batch, err)
		return
	}
	a.onBatchSuccess(batch, result)
}

func (a *WriteAggregator) onBatchFailure(batch []pendingWrite, err error) {
	werr := asAggregatorError(err)
	var retry []pendingWrite
	if werr.Temporary() {
		atomic.StoreInt32(&a.backOff, 1)
	}
	for _, pw := range batch {
		if werr.Temporary() {
			pw.attempts++
			if pw.attempts < a.cfg.MaxAttempts {
				retry = append(retry, pw)
				continue
			}
		}
		a.deliver(pw, BatchItemOutcome{TableName: pw.item.TableName, Succeeded: false, Err: werr})
	}
	a.requeue(retry)
}

func (a *WriteAggregator) onBatchSuccess(batch []pendingWrite, result *BatchWriteRowResult) {
	var retry []pendingWrite
	for i, pw := range batch {
		if i >= len(result.Items) {
			a.deliver(pw, BatchItemOutcome{TableName: pw.item.TableName, Succeeded: false, Err: NewCorruptedResponse("batch response missing item outcome")})
			continue
		}
		outcome := result.Items[i]
		if outcome.Succeeded || outcome.Err == nil || !outcome.Err.Temporary() {
			a.deliver(pw, outcome)
			continue
		}
		pw.attempts++
		if pw.attempts >= a.cfg.MaxAttempts {
			a.deliver(pw, outcome)
			continue
		}
		retry = append(retry, pw)
	}
	a.requeue(retry)
}

// deliver runs pw's callback on an actor selected by fetch_add(1) %
// actor_count, per spec §4.8's batch-callback paragraph.
func (a *WriteAggregator) deliver(pw pendingWrite, outcome BatchItemOutcome) {
	actors := a.client.async.actors
	idx := int(atomic.AddInt64(&a.actorSeq, 1) - 1)
	actors.Actor(idx).Run(func() { pw.done(outcome) })
}

func (a *WriteAggregator) requeue(items []pendingWrite) {
	if len(items) == 0 {
		return
	}
	select {
	case <-a.shutdownC:
		a.failClosed(items)
		return
	default:
	}
	select {
	case a.requeueCh <- items:
	case <-a.shutdownC:
		a.failClosed(items)
	}
}

func (a *WriteAggregator) failClosed(items []pendingWrite) {
	for _, pw := range items {
		a.deliver(pw, BatchItemOutcome{TableName: pw.item.TableName, Succeeded: false, Err: NewParameterInvalid("aggregator", "closed before retry")})
	}
}

// asAggregatorError normalizes an error returned from a BatchWriteRow
// call to the *Error taxonomy: SyncClient methods already produce one
// in every case except context cancellation, which surfaces ctx.Err()
// directly.
func asAggregatorError(err error) *Error {
	if e, ok := err.(*Error); ok {
		return e
	}
	return NewOperationTimeout(err.Error()).WithCause(err)
}
