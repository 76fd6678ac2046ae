// Copyright The wcs-go Authors
// SPDX-License-Identifier: Apache-2.0

package wcs

import (
	"context"
	"time"

	"go.uber.org/zap"

	"github.com/wcs-sdk/wcs-go/internal/codec"
	"github.com/wcs-sdk/wcs-go/internal/pipeline"
	"github.com/wcs-sdk/wcs-go/internal/transport"
	"github.com/wcs-sdk/wcs-go/retry"
)

// apiVersion is sent as x-ots-apiversion on every call (spec §6).
const apiVersion = "2015-12-31"

// Client is the async façade that SyncClient wraps (spec §4.6):
// every call returns immediately and delivers its result to callback on
// a single-threaded actor, chosen deterministically by Tracker so that
// callbacks belonging to the same call never run concurrently with each
// other.
type Client struct {
	endpoint   Endpoint
	credential Credential
	opts       ClientOptions

	transport transport.RpcTransport
	timers    transport.TimerService
	actors    *transport.Pool
	logger    *zap.Logger
	telemetry *clientTelemetry
}

// NewClient validates endpoint/credential/options and builds a ready
// Client. The returned Client owns a connection pool and an actor pool;
// call Close when done with it.
func NewClient(endpoint Endpoint, credential Credential, opts ClientOptions) (*Client, error) {
	if err := endpoint.validate(); err != nil {
		return nil, err
	}
	if err := credential.validate(); err != nil {
		return nil, err
	}
	opts.setDefaults()
	if err := opts.validate(); err != nil {
		return nil, err
	}
	return &Client{
		endpoint:   endpoint,
		credential: credential,
		opts:       opts,
		transport:  transport.NewHTTPTransport(opts.ConnectTimeout, opts.MaxConnections),
		timers:     transport.NewRealTimerService(),
		actors:     transport.NewPool(opts.ActorCount, 64),
		logger:     opts.Logger,
		telemetry:  newClientTelemetry(opts.TracerProvider, opts.MeterProvider),
	}, nil
}

// Close stops the actor pool and releases pooled connections. Pending
// callbacks are allowed to drain first.
func (c *Client) Close() error {
	c.actors.Stop()
	return c.transport.Close()
}

// dispatch runs one call to completion on a background goroutine and
// delivers the result to done on the actor selected for tracker.
func (c *Client) dispatch(ctx context.Context, action Action, body []byte, done func([]byte, string, *Error)) {
	tracker := NewTracker()
	go func() {
		respBody, requestID, err := c.execute(ctx, action, body, tracker)
		actor := c.actors.Actor(tracker.ActorIndex(c.actors.Len()))
		actor.Run(func() { done(respBody, requestID, err) })
	}()
}

// execute drives one call's pipeline.Context through Built -> InFlight
// -> Decoded, retrying through Sleeping per the retry policy, until it
// reaches Done (spec §4.6).
func (c *Client) execute(ctx context.Context, action Action, body []byte, tracker Tracker) ([]byte, string, *Error) {
	start := time.Now()
	ctx, span := c.telemetry.startSpan(ctx, action)
	defer span.End()

	pctx := pipeline.NewContext(tracker.TraceID)
	policy := c.opts.RetryStrategy.Clone()

	headers := map[string]string{
		"x-ots-accesskeyid":  c.credential.AccessKeyID,
		"x-ots-instancename": c.endpoint.Instance,
		"x-ots-apiversion":   apiVersion,
		"x-ots-sdk-traceid":  tracker.TraceID,
	}
	if c.credential.SecurityToken != "" {
		headers["x-ots-securitytoken"] = c.credential.SecurityToken
	}

	var lastRequestID string
	for {
		pctx.MarkInFlight()

		attemptCtx, cancel := context.WithTimeout(ctx, c.opts.RequestTimeout)
		result := pipeline.Attempt(attemptCtx, c.transport, c.endpoint.URL, pipeline.AttemptRequest{
			Path:                action.Path(),
			Body:                body,
			Headers:             headers,
			Secret:              c.credential.AccessKeySecret,
			CheckResponseDigest: c.opts.CheckResponseDigest,
		})
		cancel()
		pctx.MarkDecoded()

		lastRequestID = result.RequestID
		werr := c.toError(result, tracker.TraceID)
		if werr == nil {
			pctx.MarkDone()
			c.telemetry.recordCall(ctx, action, start, pctx.Attempts(), true)
			return result.Body, lastRequestID, nil
		}

		classification := retry.Classification{
			Temporary:  werr.Temporary(),
			Depends:    werr.Depends(),
			Idempotent: action.Idempotent(),
		}
		if !policy.ShouldRetry(classification) {
			pctx.MarkDone()
			c.logger.Debug("wcs: call failed, no further retry",
				zap.String("action", action.String()), zap.String("trace_id", tracker.TraceID),
				zap.Int("attempts", pctx.Attempts()), zap.String("code", werr.Code))
			c.telemetry.recordCall(ctx, action, start, pctx.Attempts(), false)
			return nil, lastRequestID, werr
		}

		pctx.MarkSleeping()
		pause := policy.NextPause()
		if err := c.sleep(ctx, pause); err != nil {
			pctx.MarkDone()
			c.telemetry.recordCall(ctx, action, start, pctx.Attempts(), false)
			return nil, lastRequestID, NewOperationTimeout(err.Error()).WithCause(err)
		}
	}
}

func (c *Client) sleep(ctx context.Context, d time.Duration) error {
	if d <= 0 {
		return nil
	}
	ch := make(chan struct{})
	handle := c.timers.AfterFunc(d, func() { close(ch) })
	select {
	case <-ch:
		return nil
	case <-ctx.Done():
		handle.Stop()
		return ctx.Err()
	}
}

// toError turns a pipeline.AttemptResult into the taxonomy of spec
// §4.1, or nil on success.
func (c *Client) toError(result *pipeline.AttemptResult, traceID string) *Error {
	if result.TransportErr != nil {
		var e *Error
		switch cause := result.TransportErr.(type) {
		case *transport.DNSError:
			e = NewCouldntResolveHost(cause.Error())
		case *transport.ConnectError:
			e = NewCouldntConnect(cause.Error())
		case *transport.TimeoutError:
			e = NewOperationTimeout(cause.Error())
		case *transport.WriteError:
			e = NewWriteRequestFail(cause.Error())
		case *transport.NoConnError:
			e = NewNoAvailableConnection(cause.Error())
		case *pipeline.DigestMismatchError:
			e = NewCorruptedResponse(cause.Error())
		default:
			e = NewCorruptedResponse(cause.Error())
		}
		e.RequestID = result.RequestID
		e.TraceID = traceID
		return e.WithCause(result.TransportErr)
	}

	if result.HTTPStatus == 200 {
		return nil
	}

	code, message := "", ""
	if resp, err := codec.UnmarshalErrorResponse(result.Body); err == nil {
		code, message = resp.Code, resp.Message
	}
	return &Error{
		HTTPStatus: result.HTTPStatus,
		Code:       code,
		Message:    message,
		RequestID:  result.RequestID,
		TraceID:    traceID,
	}
}

func unmarshalErr(err error) *Error {
	if err == nil {
		return nil
	}
	return NewCorruptedResponse(err.Error())
}

// --- CreateTable ---

func (c *Client) CreateTable(ctx context.Context, req CreateTableRequest, callback func(*CreateTableResult, error)) {
	if err := req.Validate(); err != nil {
		callback(nil, err)
		return
	}
	split := make([][]codec.PKCell, len(req.ShardSplitPoints))
	for i, p := range req.ShardSplitPoints {
		split[i] = primaryKeyToCells(p)
	}
	body, _ := (&codec.CreateTableRequest{
		TableName:        req.Meta.TableName,
		Schema:           schemaToCodec(req.Meta.Schema),
		Options:          tableOptionsToCodec(req.Options),
		ShardSplitPoints: split,
	}).Marshal()

	c.dispatch(ctx, ActionCreateTable, body, func(respBody []byte, _ string, callErr *Error) {
		if callErr != nil {
			callback(nil, callErr)
			return
		}
		if _, err := codec.UnmarshalCreateTableResponse(respBody); err != nil {
			callback(nil, unmarshalErr(err))
			return
		}
		callback(&CreateTableResult{}, nil)
	})
}

// --- ListTable ---

func (c *Client) ListTable(ctx context.Context, req ListTableRequest, callback func(*ListTableResult, error)) {
	body, _ := (&codec.ListTableRequest{}).Marshal()
	c.dispatch(ctx, ActionListTable, body, func(respBody []byte, _ string, callErr *Error) {
		if callErr != nil {
			callback(nil, callErr)
			return
		}
		resp, err := codec.UnmarshalListTableResponse(respBody)
		if err != nil {
			callback(nil, unmarshalErr(err))
			return
		}
		callback(&ListTableResult{TableNames: resp.TableNames}, nil)
	})
}

// --- DescribeTable ---

func (c *Client) DescribeTable(ctx context.Context, req DescribeTableRequest, callback func(*DescribeTableResult, error)) {
	if err := req.Validate(); err != nil {
		callback(nil, err)
		return
	}
	body, _ := (&codec.DescribeTableRequest{TableName: req.TableName}).Marshal()
	c.dispatch(ctx, ActionDescribeTable, body, func(respBody []byte, _ string, callErr *Error) {
		if callErr != nil {
			callback(nil, callErr)
			return
		}
		resp, err := codec.UnmarshalDescribeTableResponse(respBody)
		if err != nil {
			callback(nil, unmarshalErr(err))
			return
		}
		callback(&DescribeTableResult{
			Meta:    TableMeta{TableName: resp.TableName, Schema: codecToSchema(resp.Schema)},
			Options: codecToTableOptions(resp.Options),
		}, nil)
	})
}

// --- DeleteTable ---

func (c *Client) DeleteTable(ctx context.Context, req DeleteTableRequest, callback func(*DeleteTableResult, error)) {
	if err := req.Validate(); err != nil {
		callback(nil, err)
		return
	}
	body, _ := (&codec.DeleteTableRequest{TableName: req.TableName}).Marshal()
	c.dispatch(ctx, ActionDeleteTable, body, func(respBody []byte, _ string, callErr *Error) {
		if callErr != nil {
			callback(nil, callErr)
			return
		}
		if _, err := codec.UnmarshalDeleteTableResponse(respBody); err != nil {
			callback(nil, unmarshalErr(err))
			return
		}
		callback(&DeleteTableResult{}, nil)
	})
}

// --- UpdateTable ---

func (c *Client) UpdateTable(ctx context.Context, req UpdateTableRequest, callback func(*UpdateTableResult, error)) {
	if err := req.Validate(); err != nil {
		callback(nil, err)
		return
	}
	body, _ := (&codec.UpdateTableRequest{TableName: req.TableName, Options: tableOptionsToCodec(req.Options)}).Marshal()
	c.dispatch(ctx, ActionUpdateTable, body, func(respBody []byte, _ string, callErr *Error) {
		if callErr != nil {
			callback(nil, callErr)
			return
		}
		resp, err := codec.UnmarshalUpdateTableResponse(respBody)
		if err != nil {
			callback(nil, unmarshalErr(err))
			return
		}
		callback(&UpdateTableResult{Options: codecToTableOptions(resp.Options)}, nil)
	})
}

// --- PutRow ---

func (c *Client) PutRow(ctx context.Context, req PutRowRequest, callback func(*PutRowResult, error)) {
	if err := req.Validate(); err != nil {
		callback(nil, err)
		return
	}
	body, err := (&codec.PutRowRequest{
		TableName:  req.TableName,
		PrimaryKey: primaryKeyToCells(req.PrimaryKey),
		Attributes: attributesToCells(req.Attributes),
		Condition:  conditionToCodec(req.Condition),
	}).Marshal()
	if err != nil {
		callback(nil, unmarshalErr(err))
		return
	}
	c.dispatch(ctx, ActionPutRow, body, func(respBody []byte, _ string, callErr *Error) {
		if callErr != nil {
			callback(nil, callErr)
			return
		}
		resp, err := codec.UnmarshalPutRowResponse(respBody)
		if err != nil {
			callback(nil, unmarshalErr(err))
			return
		}
		cu := consumedToCapacity(resp.Consumed)
		c.telemetry.recordConsumed(ctx, ActionPutRow, cu)
		callback(&PutRowResult{Consumed: cu, PrimaryKey: cellsToPrimaryKey(resp.PrimaryKey)}, nil)
	})
}

// --- GetRow ---

func (c *Client) GetRow(ctx context.Context, req GetRowRequest, callback func(*GetRowResult, error)) {
	if err := req.Validate(); err != nil {
		callback(nil, err)
		return
	}
	body, err := (&codec.GetRowRequest{
		TableName:    req.TableName,
		PrimaryKey:   primaryKeyToCells(req.PrimaryKey),
		ColumnsToGet: req.ColumnsToGet,
		MaxVersions:  req.MaxVersions,
		TimeRange:    timeRangeToCodec(req.TimeRange),
		Filter:       columnConditionToCodec(req.Filter),
	}).Marshal()
	if err != nil {
		callback(nil, unmarshalErr(err))
		return
	}
	c.dispatch(ctx, ActionGetRow, body, func(respBody []byte, _ string, callErr *Error) {
		if callErr != nil {
			callback(nil, callErr)
			return
		}
		resp, err := codec.UnmarshalGetRowResponse(respBody)
		if err != nil {
			callback(nil, unmarshalErr(err))
			return
		}
		cu := consumedToCapacity(resp.Consumed)
		c.telemetry.recordConsumed(ctx, ActionGetRow, cu)
		result := &GetRowResult{Consumed: cu}
		if len(resp.PrimaryKey) > 0 {
			result.Row = &Row{PrimaryKey: cellsToPrimaryKey(resp.PrimaryKey), Attributes: cellsToAttributes(resp.Attributes)}
		}
		callback(result, nil)
	})
}

// --- UpdateRow ---

func (c *Client) UpdateRow(ctx context.Context, req UpdateRowRequest, callback func(*UpdateRowResult, error)) {
	if err := req.Validate(); err != nil {
		callback(nil, err)
		return
	}
	updates := make([]codec.RowUpdate, len(req.Updates))
	for i, u := range req.Updates {
		updates[i] = rowUpdateToCodec(u)
	}
	body, err := (&codec.UpdateRowRequest{
		TableName:  req.TableName,
		PrimaryKey: primaryKeyToCells(req.PrimaryKey),
		Updates:    updates,
		Condition:  conditionToCodec(req.Condition),
	}).Marshal()
	if err != nil {
		callback(nil, unmarshalErr(err))
		return
	}
	c.dispatch(ctx, ActionUpdateRow, body, func(respBody []byte, _ string, callErr *Error) {
		if callErr != nil {
			callback(nil, callErr)
			return
		}
		resp, err := codec.UnmarshalUpdateRowResponse(respBody)
		if err != nil {
			callback(nil, unmarshalErr(err))
			return
		}
		cu := consumedToCapacity(resp.Consumed)
		c.telemetry.recordConsumed(ctx, ActionUpdateRow, cu)
		callback(&UpdateRowResult{Consumed: cu}, nil)
	})
}

// --- DeleteRow ---

func (c *Client) DeleteRow(ctx context.Context, req DeleteRowRequest, callback func(*DeleteRowResult, error)) {
	if err := req.Validate(); err != nil {
		callback(nil, err)
		return
	}
	body, err := (&codec.DeleteRowRequest{
		TableName:  req.TableName,
		PrimaryKey: primaryKeyToCells(req.PrimaryKey),
		Condition:  conditionToCodec(req.Condition),
	}).Marshal()
	if err != nil {
		callback(nil, unmarshalErr(err))
		return
	}
	c.dispatch(ctx, ActionDeleteRow, body, func(respBody []byte, _ string, callErr *Error) {
		if callErr != nil {
			callback(nil, callErr)
			return
		}
		resp, err := codec.UnmarshalDeleteRowResponse(respBody)
		if err != nil {
			callback(nil, unmarshalErr(err))
			return
		}
		cu := consumedToCapacity(resp.Consumed)
		c.telemetry.recordConsumed(ctx, ActionDeleteRow, cu)
		callback(&DeleteRowResult{Consumed: cu}, nil)
	})
}

// --- GetRange ---

func (c *Client) GetRange(ctx context.Context, req RangeQueryCriterion, callback func(*GetRangeResult, error)) {
	c.getRangeWithToken(ctx, req, nil, callback)
}

func (c *Client) getRangeWithToken(ctx context.Context, req RangeQueryCriterion, token []byte, callback func(*GetRangeResult, error)) {
	if err := req.Validate(); err != nil {
		callback(nil, err)
		return
	}
	body, err := (&codec.GetRangeRequest{
		TableName:    req.TableName,
		Direction:    int(req.Direction),
		ColumnsToGet: req.ColumnsToGet,
		Start:        primaryKeyToCells(req.Start),
		End:          primaryKeyToCells(req.End),
		Limit:        req.Limit,
		MaxVersions:  req.MaxVersions,
		TimeRange:    timeRangeToCodec(req.TimeRange),
		Filter:       columnConditionToCodec(req.Filter),
		Token:        token,
	}).Marshal()
	if err != nil {
		callback(nil, unmarshalErr(err))
		return
	}
	c.dispatch(ctx, ActionGetRange, body, func(respBody []byte, _ string, callErr *Error) {
		if callErr != nil {
			callback(nil, callErr)
			return
		}
		resp, err := codec.UnmarshalGetRangeResponse(respBody)
		if err != nil {
			callback(nil, unmarshalErr(err))
			return
		}
		rows := make([]Row, len(resp.Rows))
		for i, r := range resp.Rows {
			rows[i] = Row{PrimaryKey: cellsToPrimaryKey(r.PrimaryKey), Attributes: cellsToAttributes(r.Attributes)}
		}
		cu := consumedToCapacity(resp.Consumed)
		c.telemetry.recordConsumed(ctx, ActionGetRange, cu)
		result := &GetRangeResult{Consumed: cu, Rows: rows, nextToken: resp.NextToken}
		if len(resp.NextToken) > 0 && len(rows) > 0 {
			result.NextStart = rows[len(rows)-1].PrimaryKey
		}
		callback(result, nil)
	})
}

// --- BatchGetRow ---

func (c *Client) BatchGetRow(ctx context.Context, req BatchGetRowRequest, callback func(*BatchGetRowResult, error)) {
	if err := req.Validate(); err != nil {
		callback(nil, err)
		return
	}
	tables := make([]codec.BatchGetTable, len(req.Tables))
	for i, t := range req.Tables {
		pks := make([][]codec.PKCell, len(t.PrimaryKeys))
		for j, pk := range t.PrimaryKeys {
			pks[j] = primaryKeyToCells(pk)
		}
		tables[i] = codec.BatchGetTable{
			TableName: t.TableName, PrimaryKeys: pks, ColumnsToGet: t.ColumnsToGet,
			MaxVersions: t.MaxVersions, TimeRange: timeRangeToCodec(t.TimeRange), Filter: columnConditionToCodec(t.Filter),
		}
	}
	body, err := (&codec.BatchGetRowRequest{Tables: tables}).Marshal()
	if err != nil {
		callback(nil, unmarshalErr(err))
		return
	}
	c.dispatch(ctx, ActionBatchGetRow, body, func(respBody []byte, _ string, callErr *Error) {
		if callErr != nil {
			callback(nil, callErr)
			return
		}
		resp, err := codec.UnmarshalBatchGetRowResponse(respBody)
		if err != nil {
			callback(nil, unmarshalErr(err))
			return
		}
		items := make([]BatchItemOutcome, len(resp.Items))
		var total CapacityUnit
		for i, it := range resp.Items {
			items[i] = batchItemResultToOutcome(it, true)
			total.Read += items[i].Consumed.Read
			total.Write += items[i].Consumed.Write
		}
		c.telemetry.recordConsumed(ctx, ActionBatchGetRow, total)
		callback(&BatchGetRowResult{Items: items}, nil)
	})
}

// --- BatchWriteRow ---

func (c *Client) BatchWriteRow(ctx context.Context, req BatchWriteRowRequest, callback func(*BatchWriteRowResult, error)) {
	if err := req.Validate(); err != nil {
		callback(nil, err)
		return
	}
	items := make([]codec.BatchWriteItem, len(req.Items))
	for i, it := range req.Items {
		updates := make([]codec.RowUpdate, len(it.Updates))
		for j, u := range it.Updates {
			updates[j] = rowUpdateToCodec(u)
		}
		items[i] = codec.BatchWriteItem{
			TableName:  it.TableName,
			OpType:     batchOpTypeToCodec(it.Op),
			PrimaryKey: primaryKeyToCells(it.PrimaryKey),
			Attributes: attributesToCells(it.Attributes),
			Updates:    updates,
			Condition:  conditionToCodec(it.Condition),
		}
	}
	body, err := (&codec.BatchWriteRowRequest{Items: items}).Marshal()
	if err != nil {
		callback(nil, unmarshalErr(err))
		return
	}
	c.dispatch(ctx, ActionBatchWriteRow, body, func(respBody []byte, _ string, callErr *Error) {
		if callErr != nil {
			callback(nil, callErr)
			return
		}
		resp, err := codec.UnmarshalBatchWriteRowResponse(respBody)
		if err != nil {
			callback(nil, unmarshalErr(err))
			return
		}
		outItems := make([]BatchItemOutcome, len(resp.Items))
		var total CapacityUnit
		for i, it := range resp.Items {
			outItems[i] = batchItemResultToOutcome(it, false)
			total.Read += outItems[i].Consumed.Read
			total.Write += outItems[i].Consumed.Write
		}
		c.telemetry.recordConsumed(ctx, ActionBatchWriteRow, total)
		callback(&BatchWriteRowResult{Items: outItems}, nil)
	})
}

func batchItemResultToOutcome(it codec.BatchItemResult, isGet bool) BatchItemOutcome {
	out := BatchItemOutcome{TableName: it.TableName, Succeeded: it.Succeeded, Consumed: consumedToCapacity(it.Consumed)}
	if !it.Succeeded {
		out.Err = &Error{Code: it.ErrorCode, Message: it.ErrorMsg}
		return out
	}
	if isGet {
		if len(it.Row.PrimaryKey) > 0 {
			row := Row{PrimaryKey: cellsToPrimaryKey(it.Row.PrimaryKey), Attributes: cellsToAttributes(it.Row.Attributes)}
			out.Row = &row
		}
	} else {
		out.PrimaryKey = cellsToPrimaryKey(it.PrimaryKey)
	}
	return out
}

// --- ComputeSplitPointsBySize ---

func (c *Client) ComputeSplitPointsBySize(ctx context.Context, req ComputeSplitPointsBySizeRequest, callback func(*ComputeSplitPointsBySizeResult, error)) {
	if err := req.Validate(); err != nil {
		callback(nil, err)
		return
	}
	body, _ := (&codec.ComputeSplitPointsBySizeRequest{TableName: req.TableName, SplitSize: req.SplitSize}).Marshal()
	c.dispatch(ctx, ActionComputeSplitPointsBySize, body, func(respBody []byte, _ string, callErr *Error) {
		if callErr != nil {
			callback(nil, callErr)
			return
		}
		resp, err := codec.UnmarshalComputeSplitPointsBySizeResponse(respBody)
		if err != nil {
			callback(nil, unmarshalErr(err))
			return
		}
		splits := make([]Split, len(resp.Splits))
		for i, pair := range resp.Splits {
			splits[i] = Split{Lower: cellsToPrimaryKey(pair[0]), Upper: cellsToPrimaryKey(pair[1])}
		}
		callback(&ComputeSplitPointsBySizeResult{Schema: codecToSchema(resp.Schema), Splits: splits}, nil)
	})
}
