// Copyright The wcs-go Authors
// SPDX-License-Identifier: Apache-2.0

package pipeline

import (
	"context"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/wcs-sdk/wcs-go/internal/transport"
)

type fakeTransport struct {
	resp *transport.Response
	err  error
	lastHeader http.Header
}

func (f *fakeTransport) Do(ctx context.Context, url string, header http.Header, body []byte) (*transport.Response, error) {
	f.lastHeader = header
	if f.err != nil {
		return nil, f.err
	}
	return f.resp, nil
}

func (f *fakeTransport) Close() error { return nil }

func TestStateMachineLegalTransitions(t *testing.T) {
	c := NewContext("trace-1")
	assert.Equal(t, StateBuilt, c.State())

	c.MarkInFlight()
	assert.Equal(t, StateInFlight, c.State())
	assert.Equal(t, 1, c.Attempts())

	c.MarkDecoded()
	assert.Equal(t, StateDecoded, c.State())

	c.MarkSleeping()
	assert.Equal(t, StateSleeping, c.State())

	c.MarkInFlight()
	assert.Equal(t, 2, c.Attempts())

	c.MarkDecoded()
	c.MarkDone()
	assert.Equal(t, StateDone, c.State())
}

func TestStateMachineRejectsIllegalTransition(t *testing.T) {
	c := NewContext("trace-1")
	assert.Panics(t, func() { c.MarkDecoded() }, "Built->Decoded is illegal")
}

func TestAttemptSignsAndSetsDigest(t *testing.T) {
	ft := &fakeTransport{resp: &transport.Response{
		HTTPStatus: 200,
		Header:     http.Header{"X-Ots-Requestid": []string{"req-1"}},
		Body:       []byte("response-body"),
	}}

	result := Attempt(context.Background(), ft, "https://inst.example.com", AttemptRequest{
		Path:    "/PutRow",
		Body:    []byte("request-body"),
		Headers: map[string]string{"x-ots-accesskeyid": "AK"},
		Secret:  "secret",
	})

	require.NoError(t, result.TransportErr)
	assert.Equal(t, 200, result.HTTPStatus)
	assert.Equal(t, "req-1", result.RequestID)
	assert.NotEmpty(t, ft.lastHeader.Get("x-ots-signature"))
	assert.NotEmpty(t, ft.lastHeader.Get("x-ots-contentmd5"))
	assert.NotEmpty(t, ft.lastHeader.Get("x-ots-date"))
	assert.Equal(t, "application/x.pb2", ft.lastHeader.Get("content-type"))
	assert.Equal(t, "application/x.pb2", ft.lastHeader.Get("accept"))
	assert.NotEmpty(t, ft.lastHeader.Get("user-agent"))
}

func TestAttemptDetectsDigestMismatch(t *testing.T) {
	ft := &fakeTransport{resp: &transport.Response{
		HTTPStatus: 200,
		Header:     http.Header{"X-Ots-Contentmd5": []string{"bogus=="}},
		Body:       []byte("response-body"),
	}}

	result := Attempt(context.Background(), ft, "https://inst.example.com", AttemptRequest{
		Path:                "/GetRow",
		Body:                []byte("request-body"),
		Secret:              "secret",
		CheckResponseDigest: true,
	})

	require.Error(t, result.TransportErr)
	var mismatch *DigestMismatchError
	assert.ErrorAs(t, result.TransportErr, &mismatch)
}

func TestAttemptPropagatesTransportError(t *testing.T) {
	ft := &fakeTransport{err: &transport.ConnectError{Cause: assertErr{}}}
	result := Attempt(context.Background(), ft, "https://inst.example.com", AttemptRequest{
		Path:   "/GetRow",
		Secret: "secret",
	})
	require.Error(t, result.TransportErr)
}

type assertErr struct{}

func (assertErr) Error() string { return "boom" }
