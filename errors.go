// Copyright The wcs-go Authors
// SPDX-License-Identifier: Apache-2.0

package wcs

import "fmt"

// Synthetic, sub-200 HTTP statuses used to report local conditions that
// never reached the wire. See spec §4.1.
const (
	StatusCouldntResolveHost  = -100
	StatusCouldntConnect      = -101
	StatusOperationTimeout    = -102
	StatusWriteRequestFail    = -103
	StatusCorruptedResponse   = -104
	StatusNoAvailableConn     = -105
	StatusParameterInvalid    = -1
)

// Canonical code strings, used for retry classification and surfaced to
// callers in Error.Code.
const (
	CodeCouldntResolveHost = "CouldntResolveHost"
	CodeCouldntConnect     = "CouldntConnect"
	CodeOperationTimeout   = "OTSRequestTimeout"
	CodeWriteRequestFail   = "WriteRequestFail"
	CodeCorruptedResponse  = "CorruptedResponse"
	CodeNoAvailableConn    = "NoAvailableConnection"
	CodeParameterInvalid   = "OTSParameterInvalid"

	CodeServerBusy                      = "OTSServerBusy"
	CodePartitionUnavailable            = "OTSPartitionUnavailable"
	CodeQuotaExhausted                  = "OTSQuotaExhausted"
	CodeRowOperationConflict            = "OTSRowOperationConflict"
	CodeTableNotReady                   = "OTSTableNotReady"
	CodeTooFrequentThroughputAdjustment = "OTSTooFrequentReservedThroughputAdjustment"
	CodeCapacityUnitExhausted           = "OTSCapacityUnitExhausted"
	CodeTimeout                         = "OTSTimeout"
	CodeAuthFailed                      = "OTSAuthFailed"
)

// quotaExhaustedMessage is the single message value under which
// OTSQuotaExhausted is classified as temporary (spec §4.1).
const quotaExhaustedMessage = "Too frequent table operations."

// networkCodes identifies the synthetic, local-only failure codes.
var networkCodes = map[string]bool{
	CodeCouldntResolveHost: true,
	CodeCouldntConnect:     true,
	CodeOperationTimeout:   true,
	CodeWriteRequestFail:   true,
	CodeCorruptedResponse:  true,
	CodeNoAvailableConn:    true,
}

// retriableServerCodes are server-reported codes that make an error
// "temporary" regardless of HTTP status, per spec §4.1 and §4.3 rule 2.
// OTSQuotaExhausted is handled separately because it additionally
// requires an exact message match.
var retriableServerCodes = map[string]bool{
	CodeServerBusy:                      true,
	CodePartitionUnavailable:            true,
	CodeRowOperationConflict:            true,
	CodeTableNotReady:                   true,
	CodeTooFrequentThroughputAdjustment: true,
	CodeCapacityUnitExhausted:           true,
	CodeTimeout:                         true,
}

// Error is the single error type this client ever returns or delivers to
// a callback. It is a closed taxonomy: status/code combinations are
// limited to those enumerated in spec §4.1.
type Error struct {
	// HTTPStatus is the wire status (200..599), or one of the negative
	// synthetic Status* constants for a local condition.
	HTTPStatus int
	// Code is the canonical code string used for retry classification.
	Code string
	// Message is a human-readable description. For OTSParameterInvalid
	// errors it names the offending field.
	Message string
	// RequestID is copied from the response header x-ots-requestid, or
	// empty if the call never produced a response.
	RequestID string
	// TraceID identifies the call that produced this error (see Tracker).
	TraceID string

	cause error
}

// Error implements the error interface.
func (e *Error) Error() string {
	return fmt.Sprintf("wcs: status=%d code=%s message=%q request_id=%s trace_id=%s",
		e.HTTPStatus, e.Code, e.Message, e.RequestID, e.TraceID)
}

// Unwrap exposes the underlying transport cause, if any, so callers can
// use errors.As/errors.Is against lower-level errors (e.g. net.Error).
func (e *Error) Unwrap() error {
	return e.cause
}

// WithCause attaches an underlying cause without changing the taxonomy
// values visible to the caller.
func (e *Error) WithCause(cause error) *Error {
	if e == nil {
		return nil
	}
	cp := *e
	cp.cause = cause
	return &cp
}

// NewParameterInvalid builds the single error shape every validator in
// validate.go returns: status -1, code OTSParameterInvalid, a message
// that names the offending field.
func NewParameterInvalid(field, reason string) *Error {
	return &Error{
		HTTPStatus: StatusParameterInvalid,
		Code:       CodeParameterInvalid,
		Message:    fmt.Sprintf("%s: %s", field, reason),
	}
}

func newSynthetic(status int, code, message string) *Error {
	return &Error{HTTPStatus: status, Code: code, Message: message}
}

// NewCouldntResolveHost reports a DNS failure.
func NewCouldntResolveHost(message string) *Error {
	return newSynthetic(StatusCouldntResolveHost, CodeCouldntResolveHost, message)
}

// NewCouldntConnect reports a TCP connect failure.
func NewCouldntConnect(message string) *Error {
	return newSynthetic(StatusCouldntConnect, CodeCouldntConnect, message)
}

// NewOperationTimeout reports a per-request deadline exceeded.
func NewOperationTimeout(message string) *Error {
	return newSynthetic(StatusOperationTimeout, CodeOperationTimeout, message)
}

// NewWriteRequestFail reports a transport write failure after connect.
func NewWriteRequestFail(message string) *Error {
	return newSynthetic(StatusWriteRequestFail, CodeWriteRequestFail, message)
}

// NewCorruptedResponse reports a framing/digest/parse failure.
func NewCorruptedResponse(message string) *Error {
	return newSynthetic(StatusCorruptedResponse, CodeCorruptedResponse, message)
}

// NewNoAvailableConnection reports connection-pool exhaustion.
func NewNoAvailableConnection(message string) *Error {
	return newSynthetic(StatusNoAvailableConn, CodeNoAvailableConn, message)
}

// Temporary reports whether e is eligible for retry consideration at
// all (spec §4.1, §4.3 rule 1). It does not by itself decide whether a
// retry will be attempted — that also depends on action idempotency for
// the "depends" class; see retry.Classification.Retriable.
func (e *Error) Temporary() bool {
	if e == nil {
		return false
	}
	if e.HTTPStatus >= 500 && e.HTTPStatus <= 599 {
		return true
	}
	if networkCodes[e.Code] {
		return true
	}
	if retriableServerCodes[e.Code] {
		return true
	}
	if e.Code == CodeQuotaExhausted && e.Message == quotaExhaustedMessage {
		return true
	}
	return false
}

// Depends reports whether e's retriability additionally depends on the
// idempotency of the action that produced it (spec §4.3 rule 3). Two
// temporary cases are "depends": CorruptedResponse (a response whose
// digest or body failed to check, so whether the server applied the
// request is unknown) and a 5xx carrying no code at all. Every other
// temporary error is retriable regardless of idempotency.
func (e *Error) Depends() bool {
	if e == nil {
		return false
	}
	if !e.Temporary() {
		return false
	}
	// A 5xx with no recognized code, or a digest/parse failure, "may be"
	// retriable: defer to idempotency.
	if e.Code == CodeCorruptedResponse {
		return true
	}
	if e.HTTPStatus >= 500 && e.HTTPStatus <= 599 && e.Code == "" {
		return true
	}
	return false
}
