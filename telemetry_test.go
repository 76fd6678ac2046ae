// Copyright The wcs-go Authors
// SPDX-License-Identifier: Apache-2.0

package wcs

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
	sdkmetric "go.opentelemetry.io/otel/sdk/metric"
	"go.opentelemetry.io/otel/sdk/metric/metricdata"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	"go.opentelemetry.io/otel/trace"
)

func sumValue(t *testing.T, rm metricdata.ResourceMetrics, name string) int64 {
	t.Helper()
	for _, sm := range rm.ScopeMetrics {
		for _, m := range sm.Metrics {
			if m.Name != name {
				continue
			}
			switch data := m.Data.(type) {
			case metricdata.Sum[int64]:
				var total int64
				for _, dp := range data.DataPoints {
					total += dp.Value
				}
				return total
			}
		}
	}
	t.Fatalf("metric %s not recorded", name)
	return 0
}

func TestClientTelemetryRecordsConsumedCapacity(t *testing.T) {
	rdr := sdkmetric.NewManualReader()
	mp := sdkmetric.NewMeterProvider(sdkmetric.WithReader(rdr))

	ct := newClientTelemetry(trace.NewNoopTracerProvider(), mp)
	ct.recordConsumed(context.Background(), ActionGetRow, CapacityUnit{Read: 1})
	ct.recordConsumed(context.Background(), ActionPutRow, CapacityUnit{Write: 2})

	var rm metricdata.ResourceMetrics
	require.NoError(t, rdr.Collect(context.Background(), &rm))

	assert := require.New(t)
	assert.EqualValues(1, sumValue(t, rm, "wcs.client.consumed.read_capacity_units"))
	assert.EqualValues(2, sumValue(t, rm, "wcs.client.consumed.write_capacity_units"))
}

func TestClientTelemetryStartSpanNamesByAction(t *testing.T) {
	tp := sdktrace.NewTracerProvider()
	ct := newClientTelemetry(tp, sdkmetric.NewMeterProvider())

	_, span := ct.startSpan(context.Background(), ActionGetRange)
	span.End()

	require.Equal(t, "wcs.GetRange", span.(sdktrace.ReadOnlySpan).Name())
}

func TestClientTelemetryRecordsRetryCount(t *testing.T) {
	rdr := sdkmetric.NewManualReader()
	mp := sdkmetric.NewMeterProvider(sdkmetric.WithReader(rdr))

	ct := newClientTelemetry(trace.NewNoopTracerProvider(), mp)
	ct.recordCall(context.Background(), ActionGetRow, time.Now(), 3, true)

	var rm metricdata.ResourceMetrics
	require.NoError(t, rdr.Collect(context.Background(), &rm))
	require.EqualValues(t, 2, sumValue(t, rm, "wcs.client.call.retries"))
}
