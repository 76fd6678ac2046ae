// Copyright The wcs-go Authors
// SPDX-License-Identifier: Apache-2.0

package wcs

import "context"

// RangeIterator is the Range Iterator collaborator of spec §4.7: a
// pull-style row stream over GetRange, chaining continuation tokens
// across pages and prefetching the next page once the current one's
// remaining rows drop to watermark, so the network round trip overlaps
// with the caller's consumption of the current page.
type RangeIterator struct {
	ctx       context.Context
	client    *SyncClient
	criterion RangeQueryCriterion
	watermark int

	// residual is the user limit remaining to deliver, decremented by
	// each page's row count (spec §4.7). A criterion Limit of 0 means
	// unlimited, tracked here as hasLimit == false so residual is never
	// consulted.
	hasLimit bool
	residual int64

	rows      []Row
	idx       int
	token     []byte
	exhausted bool

	prefetching bool
	prefetchCh  chan rangePage

	consumed CapacityUnit
	err      error
}

type rangePage struct {
	result *GetRangeResult
	err    error
}

// NewRangeIterator validates criterion and fetches the first page. A
// watermark < 1 is treated as 1 (prefetch only once the page's last row
// is reached).
func NewRangeIterator(ctx context.Context, client *SyncClient, criterion RangeQueryCriterion, watermark int) (*RangeIterator, error) {
	if err := criterion.Validate(); err != nil {
		return nil, err
	}
	if watermark < 1 {
		watermark = 1
	}
	it := &RangeIterator{ctx: ctx, client: client, criterion: criterion, watermark: watermark, idx: -1}
	if criterion.Limit > 0 {
		it.hasLimit = true
		it.residual = criterion.Limit
	}

	var token []byte
	for {
		result, err := it.requestPage(token)
		if err != nil {
			return nil, err
		}
		it.applyPage(result)
		if len(it.rows) > 0 || it.exhausted {
			break
		}
		token = it.token
	}
	return it, nil
}

// MoveNext advances to the next row, fetching and/or waiting on a
// prefetched page as needed. Returns false at end-of-stream or on
// error; distinguish the two with Err().
func (it *RangeIterator) MoveNext() bool {
	if it.err != nil {
		return false
	}

	if it.idx+1 < len(it.rows) {
		it.idx++
		it.maybePrefetch()
		return true
	}

	if it.exhausted {
		return false
	}
	if !it.advancePage() {
		return false
	}
	if len(it.rows) == 0 {
		return false
	}
	it.idx = 0
	it.maybePrefetch()
	return true
}

func (it *RangeIterator) maybePrefetch() {
	if it.exhausted || it.prefetching {
		return
	}
	if len(it.rows)-it.idx > it.watermark {
		return
	}
	it.prefetching = true
	ch := make(chan rangePage, 1)
	it.prefetchCh = ch
	token := it.token
	go func() {
		result, err := it.requestPage(token)
		ch <- rangePage{result: result, err: err}
	}()
}

// advancePage blocks for an in-flight prefetch (starting one if none is
// outstanding), looping past pages that came back empty but not
// exhausted — possible when a Filter rejects every row of a page.
func (it *RangeIterator) advancePage() bool {
	for {
		if !it.prefetching {
			it.maybePrefetch()
		}
		select {
		case page := <-it.prefetchCh:
			it.prefetching = false
			if page.err != nil {
				it.err = page.err
				return false
			}
			it.applyPage(page.result)
		case <-it.ctx.Done():
			it.err = it.ctx.Err()
			return false
		}
		if len(it.rows) > 0 || it.exhausted {
			return true
		}
	}
}

func (it *RangeIterator) applyPage(result *GetRangeResult) {
	it.rows = result.Rows
	it.token = result.nextToken
	it.exhausted = len(result.nextToken) == 0
	it.consumed.Read += result.Consumed.Read
	it.consumed.Write += result.Consumed.Write

	if it.hasLimit {
		it.residual -= int64(len(result.Rows))
		if it.residual <= 0 {
			it.exhausted = true
		}
	}
}

// nextLimit computes the limit to send with the next GetRange request:
// min(residual user limit, watermark) when the criterion set a limit,
// or no limit at all otherwise (spec §4.7 algorithm).
func (it *RangeIterator) nextLimit() int64 {
	if !it.hasLimit {
		return 0
	}
	limit := it.residual
	if w := int64(it.watermark); w < limit {
		limit = w
	}
	return limit
}

func (it *RangeIterator) requestPage(token []byte) (*GetRangeResult, error) {
	criterion := it.criterion
	criterion.Limit = it.nextLimit()
	return await(it.ctx, it.client, func(cb func(*GetRangeResult, error)) {
		it.client.async.getRangeWithToken(it.ctx, criterion, token, cb)
	})
}

// Valid reports whether Get would return a row.
func (it *RangeIterator) Valid() bool {
	return it.err == nil && it.idx >= 0 && it.idx < len(it.rows)
}

// Get returns the current row. Only valid when Valid() is true.
func (it *RangeIterator) Get() Row { return it.rows[it.idx] }

// Err returns the error that stopped iteration, if any.
func (it *RangeIterator) Err() error { return it.err }

// ConsumedCapacity returns the read/write capacity accumulated across
// every page fetched so far.
func (it *RangeIterator) ConsumedCapacity() CapacityUnit { return it.consumed }
