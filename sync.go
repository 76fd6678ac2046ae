// Copyright The wcs-go Authors
// SPDX-License-Identifier: Apache-2.0

package wcs

import (
	"context"

	"golang.org/x/sync/semaphore"
)

// SyncClient is the Sync Façade of spec §4.6: it wraps the async Client
// and turns each callback-based call into a blocking one, gating the
// number of calls in flight with a semaphore sized to
// ClientOptions.MaxConnections so a burst of synchronous callers can
// never oversubscribe the connection pool the async Client already
// enforces at the transport layer.
type SyncClient struct {
	async *Client
	sem   *semaphore.Weighted
}

// NewSyncClient builds a SyncClient around a fresh async Client.
func NewSyncClient(endpoint Endpoint, credential Credential, opts ClientOptions) (*SyncClient, error) {
	async, err := NewClient(endpoint, credential, opts)
	if err != nil {
		return nil, err
	}
	return &SyncClient{async: async, sem: semaphore.NewWeighted(int64(async.opts.MaxConnections))}, nil
}

// Close releases the underlying async Client's resources.
func (s *SyncClient) Close() error { return s.async.Close() }

// await acquires the concurrency semaphore, runs call (which must
// eventually invoke the supplied callback exactly once), and blocks
// until that callback fires or ctx is cancelled.
func await[T any](ctx context.Context, s *SyncClient, call func(func(*T, error))) (*T, error) {
	if err := s.sem.Acquire(ctx, 1); err != nil {
		return nil, err
	}
	defer s.sem.Release(1)

	type outcome struct {
		res *T
		err error
	}
	ch := make(chan outcome, 1)
	call(func(res *T, err error) { ch <- outcome{res, err} })

	select {
	case o := <-ch:
		return o.res, o.err
	case <-ctx.Done():
		return nil, ctx.Err()
	}
}

func (s *SyncClient) CreateTable(ctx context.Context, req CreateTableRequest) (*CreateTableResult, error) {
	return await(ctx, s, func(cb func(*CreateTableResult, error)) { s.async.CreateTable(ctx, req, cb) })
}

func (s *SyncClient) ListTable(ctx context.Context, req ListTableRequest) (*ListTableResult, error) {
	return await(ctx, s, func(cb func(*ListTableResult, error)) { s.async.ListTable(ctx, req, cb) })
}

func (s *SyncClient) DescribeTable(ctx context.Context, req DescribeTableRequest) (*DescribeTableResult, error) {
	return await(ctx, s, func(cb func(*DescribeTableResult, error)) { s.async.DescribeTable(ctx, req, cb) })
}

func (s *SyncClient) DeleteTable(ctx context.Context, req DeleteTableRequest) (*DeleteTableResult, error) {
	return await(ctx, s, func(cb func(*DeleteTableResult, error)) { s.async.DeleteTable(ctx, req, cb) })
}

func (s *SyncClient) UpdateTable(ctx context.Context, req UpdateTableRequest) (*UpdateTableResult, error) {
	return await(ctx, s, func(cb func(*UpdateTableResult, error)) { s.async.UpdateTable(ctx, req, cb) })
}

func (s *SyncClient) PutRow(ctx context.Context, req PutRowRequest) (*PutRowResult, error) {
	return await(ctx, s, func(cb func(*PutRowResult, error)) { s.async.PutRow(ctx, req, cb) })
}

func (s *SyncClient) GetRow(ctx context.Context, req GetRowRequest) (*GetRowResult, error) {
	return await(ctx, s, func(cb func(*GetRowResult, error)) { s.async.GetRow(ctx, req, cb) })
}

func (s *SyncClient) UpdateRow(ctx context.Context, req UpdateRowRequest) (*UpdateRowResult, error) {
	return await(ctx, s, func(cb func(*UpdateRowResult, error)) { s.async.UpdateRow(ctx, req, cb) })
}

func (s *SyncClient) DeleteRow(ctx context.Context, req DeleteRowRequest) (*DeleteRowResult, error) {
	return await(ctx, s, func(cb func(*DeleteRowResult, error)) { s.async.DeleteRow(ctx, req, cb) })
}

func (s *SyncClient) GetRange(ctx context.Context, req RangeQueryCriterion) (*GetRangeResult, error) {
	return await(ctx, s, func(cb func(*GetRangeResult, error)) { s.async.GetRange(ctx, req, cb) })
}

func (s *SyncClient) BatchGetRow(ctx context.Context, req BatchGetRowRequest) (*BatchGetRowResult, error) {
	return await(ctx, s, func(cb func(*BatchGetRowResult, error)) { s.async.BatchGetRow(ctx, req, cb) })
}

func (s *SyncClient) BatchWriteRow(ctx context.Context, req BatchWriteRowRequest) (*BatchWriteRowResult, error) {
	return await(ctx, s, func(cb func(*BatchWriteRowResult, error)) { s.async.BatchWriteRow(ctx, req, cb) })
}

func (s *SyncClient) ComputeSplitPointsBySize(ctx context.Context, req ComputeSplitPointsBySizeRequest) (*ComputeSplitPointsBySizeResult, error) {
	return await(ctx, s, func(cb func(*ComputeSplitPointsBySizeResult, error)) {
		s.async.ComputeSplitPointsBySize(ctx, req, cb)
	})
}
