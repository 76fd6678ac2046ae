// Copyright The wcs-go Authors
// SPDX-License-Identifier: Apache-2.0

package wcs

import (
	"context"
	"sync/atomic"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/wcs-sdk/wcs-go/internal/codec"
	"github.com/wcs-sdk/wcs-go/internal/transport"
)

func rowResponse(n int, withToken bool) *codec.GetRangeResponse {
	rows := make([]codec.RowMsg, n)
	for i := range rows {
		rows[i] = codec.RowMsg{
			PrimaryKey: []codec.PKCell{{Name: "pk", Variant: codec.VariantInteger, Int: int64(i)}},
			Attributes: []codec.AttrCell{{Name: "v", Variant: codec.VariantInteger, Int: int64(i)}},
		}
	}
	resp := &codec.GetRangeResponse{Consumed: codec.Consumed{ReadUnits: int64(n)}, Rows: rows}
	if withToken {
		resp.NextToken = []byte("page-2")
	}
	return resp
}

func testCriterion() RangeQueryCriterion {
	return RangeQueryCriterion{
		TableName: "t",
		Start:     PrimaryKey{{Name: "pk", Value: PKInfMin()}},
		End:       PrimaryKey{{Name: "pk", Value: PKInfMax()}},
	}
}

func TestRangeIteratorChainsContinuationTokens(t *testing.T) {
	var calls int32
	rt := &fakeTransport{}
	rt.setResponder(func(path string, body []byte) (*transport.Response, error) {
		n := atomic.AddInt32(&calls, 1)
		req, err := codec.UnmarshalGetRangeRequest(body)
		require.NoError(t, err)
		if n == 1 {
			require.Empty(t, req.Token)
			b, _ := rowResponse(2, true).Marshal()
			return okResponse(b)
		}
		require.Equal(t, []byte("page-2"), req.Token)
		b, _ := rowResponse(1, false).Marshal()
		return okResponse(b)
	})

	sc := newTestSyncClient(rt)
	it, err := NewRangeIterator(context.Background(), sc, testCriterion(), 1)
	require.NoError(t, err)

	var got []int64
	for it.MoveNext() {
		row := it.Get()
		got = append(got, row.PrimaryKey[0].Value.integer)
	}
	require.NoError(t, it.Err())
	assert.Equal(t, []int64{0, 1, 0}, got)
	assert.Equal(t, int64(3), it.ConsumedCapacity().Read)
	assert.EqualValues(t, 2, atomic.LoadInt32(&calls))
}

func TestRangeIteratorEmptyRangeStopsImmediately(t *testing.T) {
	rt := &fakeTransport{}
	rt.setResponder(func(path string, body []byte) (*transport.Response, error) {
		b, _ := rowResponse(0, false).Marshal()
		return okResponse(b)
	})

	sc := newTestSyncClient(rt)
	it, err := NewRangeIterator(context.Background(), sc, testCriterion(), 1)
	require.NoError(t, err)

	assert.False(t, it.MoveNext())
	assert.False(t, it.Valid())
	assert.NoError(t, it.Err())
}

func TestRangeIteratorSkipsEmptyIntermediatePage(t *testing.T) {
	var calls int32
	rt := &fakeTransport{}
	rt.setResponder(func(path string, body []byte) (*transport.Response, error) {
		n := atomic.AddInt32(&calls, 1)
		if n == 1 {
			b, _ := rowResponse(0, true).Marshal()
			return okResponse(b)
		}
		b, _ := rowResponse(1, false).Marshal()
		return okResponse(b)
	})

	sc := newTestSyncClient(rt)
	it, err := NewRangeIterator(context.Background(), sc, testCriterion(), 1)
	require.NoError(t, err)

	require.True(t, it.MoveNext())
	assert.Equal(t, int64(0), it.Get().PrimaryKey[0].Value.integer)
	assert.False(t, it.MoveNext())
	assert.NoError(t, it.Err())
}

// TestRangeIteratorDecrementsResidualLimit covers literal scenario S6:
// with Limit=2, the first page returns one row and a continuation
// token; the second request must carry limit=1 (2 minus the row
// already delivered), not the original criterion's limit unchanged.
func TestRangeIteratorDecrementsResidualLimit(t *testing.T) {
	var calls int32
	var secondLimit int64
	rt := &fakeTransport{}
	rt.setResponder(func(path string, body []byte) (*transport.Response, error) {
		n := atomic.AddInt32(&calls, 1)
		req, err := codec.UnmarshalGetRangeRequest(body)
		require.NoError(t, err)
		if n == 1 {
			require.EqualValues(t, 2, req.Limit)
			b, _ := rowResponse(1, true).Marshal()
			return okResponse(b)
		}
		secondLimit = req.Limit
		b, _ := rowResponse(1, false).Marshal()
		return okResponse(b)
	})

	criterion := testCriterion()
	criterion.Limit = 2

	sc := newTestSyncClient(rt)
	it, err := NewRangeIterator(context.Background(), sc, criterion, 2)
	require.NoError(t, err)

	var got []int64
	for it.MoveNext() {
		got = append(got, it.Get().PrimaryKey[0].Value.integer)
	}
	require.NoError(t, it.Err())
	assert.Len(t, got, 2)
	assert.EqualValues(t, 1, secondLimit)
	assert.EqualValues(t, 2, atomic.LoadInt32(&calls))
}

func TestRangeIteratorPropagatesTransportError(t *testing.T) {
	rt := &fakeTransport{}
	rt.setResponder(func(path string, body []byte) (*transport.Response, error) {
		return errorResponse(500, "OTSInternalServerError", "boom")
	})

	sc := newTestSyncClient(rt)
	_, err := NewRangeIterator(context.Background(), sc, testCriterion(), 1)
	require.Error(t, err)
}
