// Copyright The wcs-go Authors
// SPDX-License-Identifier: Apache-2.0

package codec

import "google.golang.org/protobuf/encoding/protowire"

// PKColumnSchema is one column of a table's primary-key schema, in the
// codec's neutral representation.
type PKColumnSchema struct {
	Name          string
	Type          int // mirrors wcs.PKType
	AutoIncrement bool
}

const (
	schemaFieldName  protowire.Number = 1
	schemaFieldType  protowire.Number = 2
	schemaFieldAuto  protowire.Number = 3
)

func encodeSchema(s PKColumnSchema) []byte {
	w := newFieldWriter()
	w.string(schemaFieldName, s.Name)
	w.varint(schemaFieldType, uint64(s.Type))
	w.bool(schemaFieldAuto, s.AutoIncrement)
	return w.bytesOrNil()
}

func decodeSchema(buf []byte) (PKColumnSchema, error) {
	var s PKColumnSchema
	err := readAll(buf, func(num protowire.Number, typ protowire.Type, raw []byte, u64 uint64) error {
		switch num {
		case schemaFieldName:
			s.Name = string(raw)
		case schemaFieldType:
			s.Type = int(u64)
		case schemaFieldAuto:
			s.AutoIncrement = u64 != 0
		}
		return nil
	})
	return s, err
}

// TableOptions mirrors wcs.TableOptions in the codec's neutral
// representation.
type TableOptions struct {
	ReservedRead        *int64
	ReservedWrite        *int64
	TimeToLiveSeconds    int64
	MaxVersions          int64
	BloomFilterType      int
	BlockSize            int64
	MaxTimeDeviationSec  int64
}

const (
	optFieldResRead  protowire.Number = 1
	optFieldResWrite protowire.Number = 2
	optFieldTTL      protowire.Number = 3
	optFieldMaxVer   protowire.Number = 4
	optFieldBloom    protowire.Number = 5
	optFieldBlock    protowire.Number = 6
	optFieldMaxDev   protowire.Number = 7
)

func encodeTableOptions(o TableOptions) []byte {
	w := newFieldWriter()
	if o.ReservedRead != nil {
		w.int64(optFieldResRead, *o.ReservedRead)
	}
	if o.ReservedWrite != nil {
		w.int64(optFieldResWrite, *o.ReservedWrite)
	}
	w.int64(optFieldTTL, o.TimeToLiveSeconds)
	w.int64(optFieldMaxVer, o.MaxVersions)
	w.varint(optFieldBloom, uint64(o.BloomFilterType))
	w.int64(optFieldBlock, o.BlockSize)
	w.int64(optFieldMaxDev, o.MaxTimeDeviationSec)
	return w.bytesOrNil()
}

func decodeTableOptions(buf []byte) (TableOptions, error) {
	var o TableOptions
	err := readAll(buf, func(num protowire.Number, typ protowire.Type, raw []byte, u64 uint64) error {
		switch num {
		case optFieldResRead:
			v := int64(u64)
			o.ReservedRead = &v
		case optFieldResWrite:
			v := int64(u64)
			o.ReservedWrite = &v
		case optFieldTTL:
			o.TimeToLiveSeconds = int64(u64)
		case optFieldMaxVer:
			o.MaxVersions = int64(u64)
		case optFieldBloom:
			o.BloomFilterType = int(u64)
		case optFieldBlock:
			o.BlockSize = int64(u64)
		case optFieldMaxDev:
			o.MaxTimeDeviationSec = int64(u64)
		}
		return nil
	})
	return o, err
}

// ColumnCondition mirrors wcs.ColumnCondition's tree shape.
type ColumnCondition struct {
	IsLeaf            bool
	ColumnName        string
	Rel               int
	Value             AttrCell
	PassIfMissing     bool
	LatestVersionOnly bool

	Op       int
	Children []*ColumnCondition
}

const (
	ccFieldIsLeaf  protowire.Number = 1
	ccFieldColumn  protowire.Number = 2
	ccFieldRel     protowire.Number = 3
	ccFieldValue   protowire.Number = 4
	ccFieldPassIf  protowire.Number = 5
	ccFieldLatest  protowire.Number = 6
	ccFieldOp      protowire.Number = 7
	ccFieldChild   protowire.Number = 8
)

func EncodeColumnCondition(c *ColumnCondition) []byte {
	if c == nil {
		return nil
	}
	w := newFieldWriter()
	w.bool(ccFieldIsLeaf, c.IsLeaf)
	if c.IsLeaf {
		w.string(ccFieldColumn, c.ColumnName)
		w.varint(ccFieldRel, uint64(c.Rel))
		w.message(ccFieldValue, encodeAttrCell(c.Value))
		w.bool(ccFieldPassIf, c.PassIfMissing)
		w.bool(ccFieldLatest, c.LatestVersionOnly)
	} else {
		w.varint(ccFieldOp, uint64(c.Op))
		for _, child := range c.Children {
			w.message(ccFieldChild, EncodeColumnCondition(child))
		}
	}
	return w.bytesOrNil()
}

func DecodeColumnCondition(buf []byte) (*ColumnCondition, error) {
	if len(buf) == 0 {
		return nil, nil
	}
	c := &ColumnCondition{}
	err := readAll(buf, func(num protowire.Number, typ protowire.Type, raw []byte, u64 uint64) error {
		switch num {
		case ccFieldIsLeaf:
			c.IsLeaf = u64 != 0
		case ccFieldColumn:
			c.ColumnName = string(raw)
		case ccFieldRel:
			c.Rel = int(u64)
		case ccFieldValue:
			v, err := decodeAttrCell(raw)
			if err != nil {
				return err
			}
			c.Value = v
		case ccFieldPassIf:
			c.PassIfMissing = u64 != 0
		case ccFieldLatest:
			c.LatestVersionOnly = u64 != 0
		case ccFieldOp:
			c.Op = int(u64)
		case ccFieldChild:
			child, err := DecodeColumnCondition(raw)
			if err != nil {
				return err
			}
			c.Children = append(c.Children, child)
		}
		return nil
	})
	return c, err
}

// Condition mirrors wcs.Condition.
type Condition struct {
	RowExistence int
	Filter       *ColumnCondition
}

const (
	condFieldExistence protowire.Number = 1
	condFieldFilter    protowire.Number = 2
)

func encodeCondition(c Condition) []byte {
	w := newFieldWriter()
	w.varint(condFieldExistence, uint64(c.RowExistence))
	if c.Filter != nil {
		w.message(condFieldFilter, EncodeColumnCondition(c.Filter))
	}
	return w.bytesOrNil()
}

func decodeCondition(buf []byte) (Condition, error) {
	var c Condition
	err := readAll(buf, func(num protowire.Number, typ protowire.Type, raw []byte, u64 uint64) error {
		switch num {
		case condFieldExistence:
			c.RowExistence = int(u64)
		case condFieldFilter:
			f, err := DecodeColumnCondition(raw)
			if err != nil {
				return err
			}
			c.Filter = f
		}
		return nil
	})
	return c, err
}

// TimeRange mirrors wcs.TimeRange.
type TimeRange struct {
	StartMillis int64
	EndMillis   int64
}

const (
	trFieldStart protowire.Number = 1
	trFieldEnd   protowire.Number = 2
)

func encodeTimeRange(t *TimeRange) []byte {
	if t == nil {
		return nil
	}
	w := newFieldWriter()
	w.int64(trFieldStart, t.StartMillis)
	w.int64(trFieldEnd, t.EndMillis)
	return w.bytesOrNil()
}

func decodeTimeRange(buf []byte) (*TimeRange, error) {
	if len(buf) == 0 {
		return nil, nil
	}
	t := &TimeRange{}
	err := readAll(buf, func(num protowire.Number, typ protowire.Type, raw []byte, u64 uint64) error {
		switch num {
		case trFieldStart:
			t.StartMillis = int64(u64)
		case trFieldEnd:
			t.EndMillis = int64(u64)
		}
		return nil
	})
	return t, err
}

// Consumed is the server-reported capacity-unit cost of a call.
type Consumed struct {
	ReadUnits  int64
	WriteUnits int64
}

const (
	consumedFieldRead  protowire.Number = 1
	consumedFieldWrite protowire.Number = 2
)

func encodeConsumed(c Consumed) []byte {
	w := newFieldWriter()
	w.int64(consumedFieldRead, c.ReadUnits)
	w.int64(consumedFieldWrite, c.WriteUnits)
	return w.bytesOrNil()
}

func decodeConsumed(buf []byte) (Consumed, error) {
	var c Consumed
	err := readAll(buf, func(num protowire.Number, typ protowire.Type, raw []byte, u64 uint64) error {
		switch num {
		case consumedFieldRead:
			c.ReadUnits = int64(u64)
		case consumedFieldWrite:
			c.WriteUnits = int64(u64)
		}
		return nil
	})
	return c, err
}

func encodeStrings(w *fieldWriter, field protowire.Number, ss []string) {
	for _, s := range ss {
		w.string(field, s)
	}
}

// ErrorResponse is the body a non-200 response carries: a server-
// reported code and message (spec §4.1).
type ErrorResponse struct {
	Code    string
	Message string
}

const (
	errFieldCode    protowire.Number = 1
	errFieldMessage protowire.Number = 2
)

func (r *ErrorResponse) Marshal() ([]byte, error) {
	w := newFieldWriter()
	w.string(errFieldCode, r.Code)
	w.string(errFieldMessage, r.Message)
	return w.bytesOrNil(), nil
}

func UnmarshalErrorResponse(buf []byte) (*ErrorResponse, error) {
	r := &ErrorResponse{}
	err := readAll(buf, func(num protowire.Number, typ protowire.Type, raw []byte, u64 uint64) error {
		switch num {
		case errFieldCode:
			r.Code = string(raw)
		case errFieldMessage:
			r.Message = string(raw)
		}
		return nil
	})
	return r, err
}
