// Copyright The wcs-go Authors
// SPDX-License-Identifier: Apache-2.0

package pipeline

import (
	"context"
	"crypto/md5"
	"encoding/base64"
	"fmt"
	"net/http"
	"time"

	"github.com/wcs-sdk/wcs-go/internal/signer"
	"github.com/wcs-sdk/wcs-go/internal/transport"
)

// contentType is the literal wire media type spec §6 mandates for both
// Content-Type and Accept; it is not a standard IANA type, just the
// vendor's name for its protobuf row encoding.
const contentType = "application/x.pb2"

// userAgent identifies this SDK on every request (spec §6).
const userAgent = "wcs-go"

// DigestMismatchError reports that a response body's content-md5 header
// did not match the body actually received (spec §6).
type DigestMismatchError struct {
	Want, Got string
}

func (e *DigestMismatchError) Error() string {
	return fmt.Sprintf("pipeline: response content-md5 mismatch: want %s got %s", e.Want, e.Got)
}

// AttemptRequest is everything one wire round trip needs. Headers holds
// the caller-supplied x-ots-* headers (accesskeyid, instancename,
// apiversion, securitytoken if any); Attempt adds date and content-md5
// itself and computes the signature over the union.
type AttemptRequest struct {
	Path                string
	Body                []byte
	Headers             map[string]string
	Secret              string
	CheckResponseDigest bool
}

// AttemptResult is the neutral outcome of one attempt: either a
// TransportErr (no response arrived, or with digest checking on, the
// response body failed its digest; status and headers are then kept
// but the body is not) or an HTTP response, successful or not, left for
// the caller to interpret against the Error taxonomy.
type AttemptResult struct {
	HTTPStatus  int
	Header      http.Header
	Body        []byte
	RequestID   string
	TransportErr error
}

// Attempt performs exactly one request/response round trip: header
// construction, signing, transport I/O, and digest verification. It
// does not retry and does not interpret HTTP status/body as success or
// failure — that is the calling wcs package's job.
func Attempt(ctx context.Context, rt transport.RpcTransport, url string, req AttemptRequest) *AttemptResult {
	headers := make(map[string]string, len(req.Headers)+3)
	for k, v := range req.Headers {
		headers[k] = v
	}
	headers["x-ots-date"] = time.Now().UTC().Format("2006-01-02T15:04:05.000Z")

	sum := md5.Sum(req.Body)
	headers["x-ots-contentmd5"] = base64.StdEncoding.EncodeToString(sum[:])

	headers["x-ots-signature"] = signer.Sign(req.Secret, req.Path, headers)

	httpHeader := make(http.Header, len(headers)+3)
	for k, v := range headers {
		httpHeader.Set(k, v)
	}
	httpHeader.Set("content-type", contentType)
	httpHeader.Set("accept", contentType)
	httpHeader.Set("user-agent", userAgent)

	resp, err := rt.Do(ctx, url+req.Path, httpHeader, req.Body)
	if err != nil {
		return &AttemptResult{TransportErr: err}
	}

	requestID := resp.Header.Get("x-ots-requestid")

	if req.CheckResponseDigest {
		if want := resp.Header.Get("x-ots-contentmd5"); want != "" {
			gotSum := md5.Sum(resp.Body)
			got := base64.StdEncoding.EncodeToString(gotSum[:])
			if want != got {
				return &AttemptResult{
					HTTPStatus:   resp.HTTPStatus,
					Header:       resp.Header,
					RequestID:    requestID,
					TransportErr: &DigestMismatchError{Want: want, Got: got},
				}
			}
		}
	}

	return &AttemptResult{
		HTTPStatus: resp.HTTPStatus,
		Header:     resp.Header,
		Body:       resp.Body,
		RequestID:  requestID,
	}
}
