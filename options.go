// Copyright The wcs-go Authors
// SPDX-License-Identifier: Apache-2.0

package wcs

import (
	"math/rand"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/metric"
	"go.opentelemetry.io/otel/trace"
	"go.uber.org/zap"

	"github.com/wcs-sdk/wcs-go/retry"
)

// ClientOptions recognizes the fields spec §3 names. Zero-value fields
// fall back to the defaults noted per-field.
type ClientOptions struct {
	// MaxConnections bounds the connection pool. Default 5000.
	MaxConnections int
	// ConnectTimeout bounds TCP connect. Default 5s.
	ConnectTimeout time.Duration
	// RequestTimeout bounds one attempt end-to-end. Default 10s.
	RequestTimeout time.Duration
	// TraceThreshold is the slow-call log cutoff. Default 500ms. The
	// value is stored with the options but nothing in this package
	// reads it: no call is logged for being slow.
	TraceThreshold time.Duration
	// CheckResponseDigest enables content-md5 verification on
	// responses (spec §6).
	CheckResponseDigest bool
	// RetryStrategy is a policy template; clone() is called per call.
	// Defaults to a Deadline policy with RequestTimeout as its window.
	RetryStrategy retry.Policy
	// RandomSource seeds the jitter of the default retry policy (it is
	// not applied to a caller-supplied RetryStrategy). Defaults to a
	// source seeded from crypto/rand at construction.
	RandomSource *rand.Rand
	// ActorCount is the number of single-threaded executors callbacks
	// are dispatched on. Default 4.
	ActorCount int
	// Logger receives structured diagnostics. Defaults to a no-op
	// logger.
	Logger *zap.Logger
	// TracerProvider builds the tracer spans are started against.
	// Defaults to the global provider set by otel.SetTracerProvider,
	// which is a no-op until the application installs one.
	TracerProvider trace.TracerProvider
	// MeterProvider builds the meter call-duration/retry/consumed-
	// capacity instruments are registered against. Defaults to the
	// global provider, no-op until the application installs one.
	MeterProvider metric.MeterProvider
}

func (o *ClientOptions) setDefaults() {
	if o.MaxConnections <= 0 {
		o.MaxConnections = 5000
	}
	if o.ConnectTimeout <= 0 {
		o.ConnectTimeout = 5 * time.Second
	}
	if o.RequestTimeout <= 0 {
		o.RequestTimeout = 10 * time.Second
	}
	if o.TraceThreshold <= 0 {
		o.TraceThreshold = 500 * time.Millisecond
	}
	if o.RetryStrategy == nil {
		if o.RandomSource == nil {
			o.RandomSource = newSeededRand()
		}
		o.RetryStrategy = retry.NewDeadlineWithRand(o.RequestTimeout, o.RandomSource)
	}
	if o.RandomSource == nil {
		o.RandomSource = newSeededRand()
	}
	if o.ActorCount <= 0 {
		o.ActorCount = 4
	}
	if o.Logger == nil {
		o.Logger = zap.NewNop()
	}
	if o.TracerProvider == nil {
		o.TracerProvider = otel.GetTracerProvider()
	}
	if o.MeterProvider == nil {
		o.MeterProvider = otel.GetMeterProvider()
	}
}

func (o ClientOptions) validate() error {
	if o.MaxConnections < 0 {
		return NewParameterInvalid("client_options.max_connections", "must be >= 0")
	}
	return nil
}
