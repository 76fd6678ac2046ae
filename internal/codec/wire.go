// Copyright The wcs-go Authors
// SPDX-License-Identifier: Apache-2.0

// Package codec implements the Codec collaborator of spec §2/§4.4: it
// serializes API request values into an opaque request body and parses
// response bodies back into API response values. The on-wire message
// shapes are protocol-buffer messages per spec §6; rather than depend on
// a protoc-generated package (out of reach without running the Go
// toolchain's code generators), the wire format is hand-encoded with
// google.golang.org/protobuf/encoding/protowire, the same primitive that
// generated .pb.go marshal methods are built from.
//
// The cell-level row binary format (spec §1's "opaque, self-describing
// column-cell format") is a separate, narrower concern: EncodeRow,
// DecodeRow and EncodePrimaryKey in rowcodec.go implement that
// collaborator directly, since spec §6 leaves it fully opaque to the
// rest of the pipeline.
package codec

import (
	"fmt"
	"math"

	"google.golang.org/protobuf/encoding/protowire"
)

// fieldWriter accumulates protowire-encoded fields into a single
// message body, mirroring the structure of generated Marshal methods.
type fieldWriter struct {
	buf []byte
}

func newFieldWriter() *fieldWriter { return &fieldWriter{} }

func (w *fieldWriter) varint(field protowire.Number, v uint64) {
	w.buf = protowire.AppendTag(w.buf, field, protowire.VarintType)
	w.buf = protowire.AppendVarint(w.buf, v)
}

func (w *fieldWriter) int64(field protowire.Number, v int64) {
	w.varint(field, uint64(v))
}

func (w *fieldWriter) bool(field protowire.Number, v bool) {
	if v {
		w.varint(field, 1)
	} else {
		w.varint(field, 0)
	}
}

func (w *fieldWriter) bytes(field protowire.Number, v []byte) {
	w.buf = protowire.AppendTag(w.buf, field, protowire.BytesType)
	w.buf = protowire.AppendBytes(w.buf, v)
}

func (w *fieldWriter) string(field protowire.Number, v string) {
	w.bytes(field, []byte(v))
}

func (w *fieldWriter) fixed64(field protowire.Number, v uint64) {
	w.buf = protowire.AppendTag(w.buf, field, protowire.Fixed64Type)
	w.buf = protowire.AppendFixed64(w.buf, v)
}

// message embeds a nested, already-encoded message as a length-delimited
// field, the same way generated code embeds a sub-message.
func (w *fieldWriter) message(field protowire.Number, sub []byte) {
	w.bytes(field, sub)
}

func (w *fieldWriter) bytesOrNil() []byte {
	if w.buf == nil {
		return []byte{}
	}
	return w.buf
}

// fieldReader walks a protowire-encoded message field by field. Unlike
// generated code it does not require a descriptor: callers switch on
// (field, wireType) themselves, exactly like a hand-rolled Unmarshal
// would.
type fieldReader struct {
	buf []byte
}

func newFieldReader(buf []byte) *fieldReader { return &fieldReader{buf: buf} }

// next returns the next field's number, wire type, raw value bytes (for
// BytesType) or raw varint (for VarintType/Fixed64Type), and whether a
// field was available.
func (r *fieldReader) next() (num protowire.Number, typ protowire.Type, raw []byte, u64 uint64, ok bool, err error) {
	if len(r.buf) == 0 {
		return 0, 0, nil, 0, false, nil
	}
	num, typ, n := protowire.ConsumeTag(r.buf)
	if n < 0 {
		return 0, 0, nil, 0, false, fmt.Errorf("codec: malformed tag: %w", protowire.ParseError(n))
	}
	r.buf = r.buf[n:]

	switch typ {
	case protowire.VarintType:
		v, n := protowire.ConsumeVarint(r.buf)
		if n < 0 {
			return 0, 0, nil, 0, false, fmt.Errorf("codec: malformed varint: %w", protowire.ParseError(n))
		}
		r.buf = r.buf[n:]
		return num, typ, nil, v, true, nil
	case protowire.Fixed64Type:
		v, n := protowire.ConsumeFixed64(r.buf)
		if n < 0 {
			return 0, 0, nil, 0, false, fmt.Errorf("codec: malformed fixed64: %w", protowire.ParseError(n))
		}
		r.buf = r.buf[n:]
		return num, typ, nil, v, true, nil
	case protowire.BytesType:
		v, n := protowire.ConsumeBytes(r.buf)
		if n < 0 {
			return 0, 0, nil, 0, false, fmt.Errorf("codec: malformed length-delimited field: %w", protowire.ParseError(n))
		}
		r.buf = r.buf[n:]
		return num, typ, v, 0, true, nil
	default:
		n := protowire.ConsumeFieldValue(num, typ, r.buf)
		if n < 0 {
			return 0, 0, nil, 0, false, fmt.Errorf("codec: malformed field: %w", protowire.ParseError(n))
		}
		r.buf = r.buf[n:]
		return num, typ, nil, 0, true, nil
	}
}

func float64bits(f float64) uint64   { return math.Float64bits(f) }
func float64frombits(b uint64) float64 { return math.Float64frombits(b) }

func readAll(buf []byte, fn func(num protowire.Number, typ protowire.Type, raw []byte, u64 uint64) error) error {
	r := newFieldReader(buf)
	for {
		num, typ, raw, u64, ok, err := r.next()
		if err != nil {
			return err
		}
		if !ok {
			return nil
		}
		if err := fn(num, typ, raw, u64); err != nil {
			return err
		}
	}
}
