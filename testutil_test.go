// Copyright The wcs-go Authors
// SPDX-License-Identifier: Apache-2.0

package wcs

import (
	"context"
	"net/http"
	"strings"
	"sync"

	"go.opentelemetry.io/otel"
	"go.uber.org/zap"
	"golang.org/x/sync/semaphore"

	"github.com/wcs-sdk/wcs-go/internal/codec"
	"github.com/wcs-sdk/wcs-go/internal/transport"
	"github.com/wcs-sdk/wcs-go/retry"
)

// fakeResponder answers one wire call given its action path (e.g.
// "/GetRange") and request body, standing in for a real OTS endpoint in
// tests that exercise the pieces built on top of Client/SyncClient.
type fakeResponder func(path string, body []byte) (*transport.Response, error)

// fakeTransport is an internal/transport.RpcTransport double driven by
// a fakeResponder, swappable mid-test so a single test can script a
// sequence of responses.
type fakeTransport struct {
	mu        sync.Mutex
	responder fakeResponder
}

func (f *fakeTransport) Do(_ context.Context, url string, _ http.Header, body []byte) (*transport.Response, error) {
	path := url
	if i := strings.LastIndex(url, "/"); i >= 0 {
		path = url[i:]
	}
	f.mu.Lock()
	r := f.responder
	f.mu.Unlock()
	return r(path, body)
}

func (f *fakeTransport) Close() error { return nil }

func (f *fakeTransport) setResponder(r fakeResponder) {
	f.mu.Lock()
	f.responder = r
	f.mu.Unlock()
}

// okResponse builds a successful raw response carrying body, the shape
// every codec.UnmarshalXResponse call in client.go expects on the
// 200 path.
func okResponse(body []byte) (*transport.Response, error) {
	h := make(http.Header)
	h.Set("x-ots-requestid", "test-request-id")
	return &transport.Response{HTTPStatus: 200, Header: h, Body: body}, nil
}

// errorResponse builds a server-reported failure, the shape
// Client.toError decodes via codec.UnmarshalErrorResponse.
func errorResponse(status int, code, message string) (*transport.Response, error) {
	body, _ := marshalErrorResponse(code, message)
	h := make(http.Header)
	h.Set("x-ots-requestid", "test-request-id")
	return &transport.Response{HTTPStatus: status, Header: h, Body: body}, nil
}

func marshalErrorResponse(code, message string) ([]byte, error) {
	return (&codec.ErrorResponse{Code: code, Message: message}).Marshal()
}

func testClientOptions() ClientOptions {
	o := ClientOptions{ActorCount: 2, RetryStrategy: retry.NewNone()}
	o.setDefaults()
	return o
}

// newTestClient builds a Client around a fakeTransport, bypassing
// NewClient's network setup entirely so tests never touch a socket.
func newTestClient(rt *fakeTransport) *Client {
	return &Client{
		endpoint:   Endpoint{URL: "https://test-instance.ots.example.com", Instance: "test-instance"},
		credential: Credential{AccessKeyID: "ak", AccessKeySecret: "sk"},
		opts:       testClientOptions(),
		transport:  rt,
		timers:     transport.NewRealTimerService(),
		actors:     transport.NewPool(2, 16),
		logger:     zap.NewNop(),
		telemetry:  newClientTelemetry(otel.GetTracerProvider(), otel.GetMeterProvider()),
	}
}

func newTestSyncClient(rt *fakeTransport) *SyncClient {
	c := newTestClient(rt)
	return &SyncClient{async: c, sem: semaphore.NewWeighted(int64(c.opts.MaxConnections))}
}
