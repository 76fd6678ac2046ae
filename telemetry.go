// Copyright The wcs-go Authors
// SPDX-License-Identifier: Apache-2.0

package wcs

import (
	"context"
	"time"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"
	"go.opentelemetry.io/otel/trace"
)

const instrumentationScope = "github.com/wcs-sdk/wcs-go"

// clientTelemetry holds the tracer and metric instruments a Client
// records against on every call. Construction never fails: a
// TracerProvider/MeterProvider that can't build an instrument yields a
// no-op one, the same tolerance spec §4.6's Transport Façade extends to
// a misconfigured logger.
type clientTelemetry struct {
	tracer trace.Tracer

	callDuration  metric.Float64Histogram
	retryCount    metric.Int64Counter
	consumedRead  metric.Int64Counter
	consumedWrite metric.Int64Counter
}

func newClientTelemetry(tp trace.TracerProvider, mp metric.MeterProvider) *clientTelemetry {
	ct := &clientTelemetry{tracer: tp.Tracer(instrumentationScope)}

	meter := mp.Meter(instrumentationScope)

	ct.callDuration, _ = meter.Float64Histogram(
		"wcs.client.call.duration",
		metric.WithDescription("Duration of one wcs call, from dispatch to its terminal result"),
		metric.WithUnit("s"),
	)
	ct.retryCount, _ = meter.Int64Counter(
		"wcs.client.call.retries",
		metric.WithDescription("Number of retry attempts taken beyond the first, per call"),
		metric.WithUnit("1"),
	)
	ct.consumedRead, _ = meter.Int64Counter(
		"wcs.client.consumed.read_capacity_units",
		metric.WithDescription("Read capacity units reported consumed by the server"),
		metric.WithUnit("1"),
	)
	ct.consumedWrite, _ = meter.Int64Counter(
		"wcs.client.consumed.write_capacity_units",
		metric.WithDescription("Write capacity units reported consumed by the server"),
		metric.WithUnit("1"),
	)

	return ct
}

// startSpan opens a span for one call. The caller must End it.
func (ct *clientTelemetry) startSpan(ctx context.Context, action Action) (context.Context, trace.Span) {
	return ct.tracer.Start(ctx, "wcs."+action.String())
}

// recordCall records one terminal call outcome: total wall time and the
// number of retries taken beyond the first attempt.
func (ct *clientTelemetry) recordCall(ctx context.Context, action Action, start time.Time, attempts int, succeeded bool) {
	attrs := metric.WithAttributes(
		attribute.String("action", action.String()),
		attribute.Bool("success", succeeded),
	)
	ct.callDuration.Record(ctx, time.Since(start).Seconds(), attrs)
	if attempts > 1 {
		ct.retryCount.Add(ctx, int64(attempts-1), attrs)
	}
}

// recordConsumed records capacity units the server reported spent on a
// call. A unit that is zero (e.g. the write units of a pure read) is
// skipped rather than added to its counter.
func (ct *clientTelemetry) recordConsumed(ctx context.Context, action Action, cu CapacityUnit) {
	attrs := metric.WithAttributes(attribute.String("action", action.String()))
	if cu.Read != 0 {
		ct.consumedRead.Add(ctx, cu.Read, attrs)
	}
	if cu.Write != 0 {
		ct.consumedWrite.Add(ctx, cu.Write, attrs)
	}
}
