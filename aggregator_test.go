// Copyright The wcs-go Authors
// SPDX-License-Identifier: Apache-2.0

package wcs

import (
	"context"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/wcs-sdk/wcs-go/internal/codec"
	"github.com/wcs-sdk/wcs-go/internal/transport"
)

func putItem(table, pk string, value string) BatchWriteItem {
	return BatchWriteItem{
		TableName:  table,
		Op:         BatchWritePut,
		PrimaryKey: PrimaryKey{{Name: "pk", Value: PKString(pk)}},
		Attributes: []Attribute{{Name: "v", Value: AttrString(value)}},
	}
}

func autoIncrPutItem(table string) BatchWriteItem {
	return BatchWriteItem{
		TableName:  table,
		Op:         BatchWritePut,
		PrimaryKey: PrimaryKey{{Name: "pk", Value: PKAutoIncrement()}},
		Attributes: []Attribute{{Name: "v", Value: AttrString("x")}},
	}
}

func succeedAll(req *codec.BatchWriteRowRequest) *codec.BatchWriteRowResponse {
	items := make([]codec.BatchItemResult, len(req.Items))
	for i, it := range req.Items {
		items[i] = codec.BatchItemResult{TableName: it.TableName, Succeeded: true, PrimaryKey: it.PrimaryKey}
	}
	return &codec.BatchWriteRowResponse{Items: items}
}

func waitOutcome(t *testing.T, ch <-chan BatchItemOutcome) BatchItemOutcome {
	t.Helper()
	select {
	case o := <-ch:
		return o
	case <-time.After(2 * time.Second):
		t.Fatal("timed out waiting for outcome")
		return BatchItemOutcome{}
	}
}

func fastAggregatorConfig() WriteAggregatorConfig {
	return WriteAggregatorConfig{
		MaxBatchSize:   10,
		MaxConcurrency: 4,
		RegularNap:     2 * time.Millisecond,
		MaxNap:         8 * time.Millisecond,
		NapShrinkStep:  2 * time.Millisecond,
	}
}

// TestWriteAggregatorStopsBatchOnPKCollision covers spec §4.8's batch
// construction rule (and its ground truth,
// async_batch_writer.cpp's "if (conflicts.count(h)) break;"): two
// writes to the same primary key queued before any batch is dispatched
// must never collapse into one fabricated outcome. Each is sent (in
// its own batch, since the collision stops the first batch from taking
// the second item) and each gets its own real server response.
func TestWriteAggregatorStopsBatchOnPKCollision(t *testing.T) {
	var totalItems int32
	var calls int32
	rt := &fakeTransport{}
	rt.setResponder(func(path string, body []byte) (*transport.Response, error) {
		atomic.AddInt32(&calls, 1)
		req, err := codec.UnmarshalBatchWriteRowRequest(body)
		require.NoError(t, err)
		atomic.AddInt32(&totalItems, int32(len(req.Items)))
		// Every call in this test must see exactly one item: the
		// colliding key can never share a batch with its predecessor.
		assert.Len(t, req.Items, 1)
		b, _ := succeedAll(req).Marshal()
		return okResponse(b)
	})

	sc := newTestSyncClient(rt)
	agg := NewWriteAggregator(sc, fastAggregatorConfig())
	defer agg.Close()

	ch := make(chan BatchItemOutcome, 2)
	require.NoError(t, agg.Submit(context.Background(), putItem("t", "k1", "first"), func(o BatchItemOutcome) { ch <- o }))
	require.NoError(t, agg.Submit(context.Background(), putItem("t", "k1", "second"), func(o BatchItemOutcome) { ch <- o }))

	o1 := waitOutcome(t, ch)
	o2 := waitOutcome(t, ch)

	assert.True(t, o1.Succeeded)
	assert.True(t, o2.Succeeded)
	assert.EqualValues(t, 2, atomic.LoadInt32(&totalItems))
	assert.EqualValues(t, 2, atomic.LoadInt32(&calls))
}

// TestWriteAggregatorAutoIncrOrdinalsDontCollide covers spec §9 open
// question (b): PKAutoIncrement() carries no value of its own, so the
// batch builder must hash distinct auto-increment items by their
// ordinal position among auto-increment columns, not collide them all
// together.
func TestWriteAggregatorAutoIncrOrdinalsDontCollide(t *testing.T) {
	var maxBatch int32
	rt := &fakeTransport{}
	rt.setResponder(func(path string, body []byte) (*transport.Response, error) {
		req, err := codec.UnmarshalBatchWriteRowRequest(body)
		require.NoError(t, err)
		if int32(len(req.Items)) > atomic.LoadInt32(&maxBatch) {
			atomic.StoreInt32(&maxBatch, int32(len(req.Items)))
		}
		b, _ := succeedAll(req).Marshal()
		return okResponse(b)
	})

	sc := newTestSyncClient(rt)
	agg := NewWriteAggregator(sc, fastAggregatorConfig())
	defer agg.Close()

	const n = 5
	ch := make(chan BatchItemOutcome, n)
	for i := 0; i < n; i++ {
		require.NoError(t, agg.Submit(context.Background(), autoIncrPutItem("t"), func(o BatchItemOutcome) { ch <- o }))
	}
	for i := 0; i < n; i++ {
		assert.True(t, waitOutcome(t, ch).Succeeded)
	}
	assert.EqualValues(t, n, atomic.LoadInt32(&maxBatch))
}

func TestWriteAggregatorFlushesOnMaxBatchSize(t *testing.T) {
	var calls int32
	rt := &fakeTransport{}
	rt.setResponder(func(path string, body []byte) (*transport.Response, error) {
		atomic.AddInt32(&calls, 1)
		req, err := codec.UnmarshalBatchWriteRowRequest(body)
		require.NoError(t, err)
		b, _ := succeedAll(req).Marshal()
		return okResponse(b)
	})

	cfg := fastAggregatorConfig()
	cfg.MaxBatchSize = 2
	sc := newTestSyncClient(rt)
	agg := NewWriteAggregator(sc, cfg)
	defer agg.Close()

	ch := make(chan BatchItemOutcome, 2)
	require.NoError(t, agg.Submit(context.Background(), putItem("t", "a", "1"), func(o BatchItemOutcome) { ch <- o }))
	require.NoError(t, agg.Submit(context.Background(), putItem("t", "b", "2"), func(o BatchItemOutcome) { ch <- o }))

	waitOutcome(t, ch)
	waitOutcome(t, ch)
	assert.EqualValues(t, 1, atomic.LoadInt32(&calls))
}

func TestWriteAggregatorRequeuesRetriableItemFailure(t *testing.T) {
	var calls int32
	rt := &fakeTransport{}
	rt.setResponder(func(path string, body []byte) (*transport.Response, error) {
		n := atomic.AddInt32(&calls, 1)
		req, err := codec.UnmarshalBatchWriteRowRequest(body)
		require.NoError(t, err)
		if n == 1 {
			items := make([]codec.BatchItemResult, len(req.Items))
			for i, it := range req.Items {
				items[i] = codec.BatchItemResult{TableName: it.TableName, Succeeded: false, ErrorCode: CodeRowOperationConflict, ErrorMsg: "conflict"}
			}
			b, _ := (&codec.BatchWriteRowResponse{Items: items}).Marshal()
			return okResponse(b)
		}
		b, _ := succeedAll(req).Marshal()
		return okResponse(b)
	})

	cfg := fastAggregatorConfig()
	cfg.MaxAttempts = 3
	sc := newTestSyncClient(rt)
	agg := NewWriteAggregator(sc, cfg)
	defer agg.Close()

	ch := make(chan BatchItemOutcome, 1)
	require.NoError(t, agg.Submit(context.Background(), putItem("t", "k", "v"), func(o BatchItemOutcome) { ch <- o }))

	outcome := waitOutcome(t, ch)
	assert.True(t, outcome.Succeeded)
	assert.GreaterOrEqual(t, atomic.LoadInt32(&calls), int32(2))
}

func TestWriteAggregatorGivesUpAfterMaxAttempts(t *testing.T) {
	rt := &fakeTransport{}
	rt.setResponder(func(path string, body []byte) (*transport.Response, error) {
		req, err := codec.UnmarshalBatchWriteRowRequest(body)
		require.NoError(t, err)
		items := make([]codec.BatchItemResult, len(req.Items))
		for i, it := range req.Items {
			items[i] = codec.BatchItemResult{TableName: it.TableName, Succeeded: false, ErrorCode: CodeRowOperationConflict, ErrorMsg: "conflict"}
		}
		b, _ := (&codec.BatchWriteRowResponse{Items: items}).Marshal()
		return okResponse(b)
	})

	cfg := fastAggregatorConfig()
	cfg.MaxAttempts = 2
	sc := newTestSyncClient(rt)
	agg := NewWriteAggregator(sc, cfg)
	defer agg.Close()

	ch := make(chan BatchItemOutcome, 1)
	require.NoError(t, agg.Submit(context.Background(), putItem("t", "k", "v"), func(o BatchItemOutcome) { ch <- o }))

	outcome := waitOutcome(t, ch)
	assert.False(t, outcome.Succeeded)
	require.NotNil(t, outcome.Err)
	assert.Equal(t, CodeRowOperationConflict, outcome.Err.Code)
}

// TestWriteAggregatorCloseResolvesEveryQueuedItem covers testable
// property 7: shutdown must not abandon anything still in the waiting
// list.
func TestWriteAggregatorCloseResolvesEveryQueuedItem(t *testing.T) {
	rt := &fakeTransport{}
	rt.setResponder(func(path string, body []byte) (*transport.Response, error) {
		req, err := codec.UnmarshalBatchWriteRowRequest(body)
		require.NoError(t, err)
		b, _ := succeedAll(req).Marshal()
		return okResponse(b)
	})

	cfg := fastAggregatorConfig()
	cfg.RegularNap = time.Hour
	cfg.MaxNap = time.Hour
	sc := newTestSyncClient(rt)
	agg := NewWriteAggregator(sc, cfg)

	const n = 4
	ch := make(chan BatchItemOutcome, n)
	for i := 0; i < n; i++ {
		require.NoError(t, agg.Submit(context.Background(), putItem("t", string(rune('a'+i)), "v"), func(o BatchItemOutcome) { ch <- o }))
	}
	agg.Close()

	for i := 0; i < n; i++ {
		waitOutcome(t, ch)
	}
}
