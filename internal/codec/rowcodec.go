// Copyright The wcs-go Authors
// SPDX-License-Identifier: Apache-2.0

package codec

import (
	"fmt"

	"google.golang.org/protobuf/encoding/protowire"
)

// Variant tags used by PKCell/AttrCell. These mirror (without importing)
// the wcs package's PrimaryKeyValue/AttributeValue variants — the row
// codec is intentionally decoupled from the public API types, per spec
// §1's "opaque, self-describing column-cell format".
const (
	VariantNone = iota
	VariantInfMin
	VariantInfMax
	VariantAutoIncr
	VariantInteger
	VariantString
	VariantBinary
	VariantBoolean
	VariantFloat
)

// PKCell is one named primary key column value, in the codec's neutral
// representation.
type PKCell struct {
	Name    string
	Variant int
	Int     int64
	Bytes   []byte
}

// AttrCell is one named attribute value, optionally timestamped.
type AttrCell struct {
	Name           string
	Variant        int
	Int            int64
	Bytes          []byte
	Bool           bool
	Float          float64
	HasTimestamp   bool
	TimestampMicro int64
}

const (
	cellFieldName    protowire.Number = 1
	cellFieldVariant protowire.Number = 2
	cellFieldInt     protowire.Number = 3
	cellFieldBytes   protowire.Number = 4
	cellFieldBool    protowire.Number = 5
	cellFieldFloat   protowire.Number = 6
	cellFieldTS      protowire.Number = 7
)

func encodePKCell(c PKCell) []byte {
	w := newFieldWriter()
	w.string(cellFieldName, c.Name)
	w.varint(cellFieldVariant, uint64(c.Variant))
	switch c.Variant {
	case VariantInteger:
		w.int64(cellFieldInt, c.Int)
	case VariantString, VariantBinary:
		w.bytes(cellFieldBytes, c.Bytes)
	}
	return w.bytesOrNil()
}

func decodePKCell(buf []byte) (PKCell, error) {
	var c PKCell
	err := readAll(buf, func(num protowire.Number, typ protowire.Type, raw []byte, u64 uint64) error {
		switch num {
		case cellFieldName:
			c.Name = string(raw)
		case cellFieldVariant:
			c.Variant = int(u64)
		case cellFieldInt:
			c.Int = int64(u64)
		case cellFieldBytes:
			c.Bytes = append([]byte(nil), raw...)
		}
		return nil
	})
	return c, err
}

// EncodePrimaryKey is one of the three opaque row-codec collaborator
// functions named in spec §1.
func EncodePrimaryKey(cells []PKCell) ([]byte, error) {
	w := newFieldWriter()
	for _, c := range cells {
		w.message(1, encodePKCell(c))
	}
	return w.bytesOrNil(), nil
}

// DecodePrimaryKey is the inverse of EncodePrimaryKey.
func DecodePrimaryKey(buf []byte) ([]PKCell, error) {
	var cells []PKCell
	err := readAll(buf, func(num protowire.Number, typ protowire.Type, raw []byte, u64 uint64) error {
		if num != 1 {
			return nil
		}
		c, err := decodePKCell(raw)
		if err != nil {
			return err
		}
		cells = append(cells, c)
		return nil
	})
	if err != nil {
		return nil, err
	}
	if len(cells) == 0 {
		return nil, fmt.Errorf("codec: decoded row has an empty primary key")
	}
	return cells, nil
}

func encodeAttrCell(c AttrCell) []byte {
	w := newFieldWriter()
	w.string(cellFieldName, c.Name)
	w.varint(cellFieldVariant, uint64(c.Variant))
	switch c.Variant {
	case VariantInteger:
		w.int64(cellFieldInt, c.Int)
	case VariantString, VariantBinary:
		w.bytes(cellFieldBytes, c.Bytes)
	case VariantBoolean:
		w.bool(cellFieldBool, c.Bool)
	case VariantFloat:
		w.fixed64(cellFieldFloat, float64bits(c.Float))
	}
	if c.HasTimestamp {
		w.int64(cellFieldTS, c.TimestampMicro)
	}
	return w.bytesOrNil()
}

func decodeAttrCell(buf []byte) (AttrCell, error) {
	var c AttrCell
	err := readAll(buf, func(num protowire.Number, typ protowire.Type, raw []byte, u64 uint64) error {
		switch num {
		case cellFieldName:
			c.Name = string(raw)
		case cellFieldVariant:
			c.Variant = int(u64)
		case cellFieldInt:
			c.Int = int64(u64)
		case cellFieldBytes:
			c.Bytes = append([]byte(nil), raw...)
		case cellFieldBool:
			c.Bool = u64 != 0
		case cellFieldFloat:
			c.Float = float64frombits(u64)
		case cellFieldTS:
			c.HasTimestamp = true
			c.TimestampMicro = int64(u64)
		}
		return nil
	})
	return c, err
}

// EncodeRow is one of the three opaque row-codec collaborator functions
// named in spec §1.
func EncodeRow(pk []PKCell, attrs []AttrCell) ([]byte, error) {
	w := newFieldWriter()
	pkBody, err := EncodePrimaryKey(pk)
	if err != nil {
		return nil, err
	}
	w.message(1, pkBody)
	for _, a := range attrs {
		w.message(2, encodeAttrCell(a))
	}
	return w.bytesOrNil(), nil
}

// DecodeRow is the inverse of EncodeRow.
func DecodeRow(buf []byte) (pk []PKCell, attrs []AttrCell, err error) {
	err = readAll(buf, func(num protowire.Number, typ protowire.Type, raw []byte, u64 uint64) error {
		switch num {
		case 1:
			pk, err = DecodePrimaryKey(raw)
			return err
		case 2:
			a, err := decodeAttrCell(raw)
			if err != nil {
				return err
			}
			attrs = append(attrs, a)
		}
		return nil
	})
	if err != nil {
		return nil, nil, err
	}
	if len(pk) == 0 {
		return nil, nil, fmt.Errorf("codec: decoded row has an empty primary key")
	}
	return pk, attrs, nil
}
