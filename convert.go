// Copyright The wcs-go Authors
// SPDX-License-Identifier: Apache-2.0

package wcs

import "github.com/wcs-sdk/wcs-go/internal/codec"

// This file bridges the public API types (model.go, validate.go,
// results.go) to internal/codec's neutral wire representation. Keeping
// the bridge in one place means codec never needs to import this
// package, avoiding an import cycle between the wire format and the
// domain model it serializes.

func pkValueToCell(name string, v PrimaryKeyValue) codec.PKCell {
	switch v.variant {
	case pkVariantInfMin:
		return codec.PKCell{Name: name, Variant: codec.VariantInfMin}
	case pkVariantInfMax:
		return codec.PKCell{Name: name, Variant: codec.VariantInfMax}
	case pkVariantAutoIncr:
		return codec.PKCell{Name: name, Variant: codec.VariantAutoIncr}
	case pkVariantInteger:
		return codec.PKCell{Name: name, Variant: codec.VariantInteger, Int: v.integer}
	case pkVariantString:
		return codec.PKCell{Name: name, Variant: codec.VariantString, Bytes: v.bytes}
	default:
		return codec.PKCell{Name: name, Variant: codec.VariantBinary, Bytes: v.bytes}
	}
}

func cellToPKColumn(c codec.PKCell) PrimaryKeyColumn {
	var v PrimaryKeyValue
	switch c.Variant {
	case codec.VariantInfMin:
		v = PKInfMin()
	case codec.VariantInfMax:
		v = PKInfMax()
	case codec.VariantAutoIncr:
		v = PKAutoIncrement()
	case codec.VariantInteger:
		v = PKInteger(c.Int)
	case codec.VariantString:
		v = PKString(string(c.Bytes))
	default:
		v = PKBinary(c.Bytes)
	}
	return PrimaryKeyColumn{Name: c.Name, Value: v}
}

func primaryKeyToCells(pk PrimaryKey) []codec.PKCell {
	cells := make([]codec.PKCell, len(pk))
	for i, col := range pk {
		cells[i] = pkValueToCell(col.Name, col.Value)
	}
	return cells
}

func cellsToPrimaryKey(cells []codec.PKCell) PrimaryKey {
	pk := make(PrimaryKey, len(cells))
	for i, c := range cells {
		pk[i] = cellToPKColumn(c)
	}
	return pk
}

func attrValueToCell(name string, v AttributeValue, ts *int64) codec.AttrCell {
	cell := codec.AttrCell{Name: name}
	switch v.variant {
	case attrVariantString:
		cell.Variant, cell.Bytes = codec.VariantString, v.bytes
	case attrVariantInteger:
		cell.Variant, cell.Int = codec.VariantInteger, v.integer
	case attrVariantBinary:
		cell.Variant, cell.Bytes = codec.VariantBinary, v.bytes
	case attrVariantBoolean:
		cell.Variant, cell.Bool = codec.VariantBoolean, v.boolean
	case attrVariantFloat:
		cell.Variant, cell.Float = codec.VariantFloat, v.float
	}
	if ts != nil {
		cell.HasTimestamp = true
		cell.TimestampMicro = *ts
	}
	return cell
}

func cellToAttribute(c codec.AttrCell) Attribute {
	var v AttributeValue
	switch c.Variant {
	case codec.VariantString:
		v = AttrString(string(c.Bytes))
	case codec.VariantInteger:
		v = AttrInteger(c.Int)
	case codec.VariantBinary:
		v = AttrBinary(c.Bytes)
	case codec.VariantBoolean:
		v = AttrBoolean(c.Bool)
	case codec.VariantFloat:
		v = AttributeValue{variant: attrVariantFloat, float: c.Float}
	}
	attr := Attribute{Name: c.Name, Value: v}
	if c.HasTimestamp {
		ts := c.TimestampMicro
		attr.TimestampMicro = &ts
	}
	return attr
}

func attributesToCells(attrs []Attribute) []codec.AttrCell {
	cells := make([]codec.AttrCell, len(attrs))
	for i, a := range attrs {
		cells[i] = attrValueToCell(a.Name, a.Value, a.TimestampMicro)
	}
	return cells
}

func cellsToAttributes(cells []codec.AttrCell) []Attribute {
	attrs := make([]Attribute, len(cells))
	for i, c := range cells {
		attrs[i] = cellToAttribute(c)
	}
	return attrs
}

func columnConditionToCodec(c *ColumnCondition) *codec.ColumnCondition {
	if c == nil {
		return nil
	}
	if c.isLeaf {
		return &codec.ColumnCondition{
			IsLeaf:            true,
			ColumnName:        c.ColumnName,
			Rel:               int(c.Rel),
			Value:             attrValueToCell("", c.Value, nil),
			PassIfMissing:     c.PassIfMissing,
			LatestVersionOnly: c.LatestVersionOnly,
		}
	}
	children := make([]*codec.ColumnCondition, len(c.Children))
	for i, ch := range c.Children {
		children[i] = columnConditionToCodec(ch)
	}
	return &codec.ColumnCondition{Op: int(c.Op), Children: children}
}

func codecToColumnCondition(c *codec.ColumnCondition) *ColumnCondition {
	if c == nil {
		return nil
	}
	if c.IsLeaf {
		return Leaf(c.ColumnName, RelOp(c.Rel), cellToAttribute(c.Value).Value, c.PassIfMissing, c.LatestVersionOnly)
	}
	children := make([]*ColumnCondition, len(c.Children))
	for i, ch := range c.Children {
		children[i] = codecToColumnCondition(ch)
	}
	return Internal(ColumnConditionOp(c.Op), children...)
}

func conditionToCodec(c Condition) codec.Condition {
	return codec.Condition{
		RowExistence: int(c.RowExistence),
		Filter:       columnConditionToCodec(c.ColumnCondition),
	}
}

func codecToCondition(c codec.Condition) Condition {
	return Condition{
		RowExistence:    RowExistence(c.RowExistence),
		ColumnCondition: codecToColumnCondition(c.Filter),
	}
}

func timeRangeToCodec(t *TimeRange) *codec.TimeRange {
	if t == nil {
		return nil
	}
	return &codec.TimeRange{StartMillis: t.StartMillis, EndMillis: t.EndMillis}
}

func schemaToCodec(s []PrimaryKeyColumnSchema) []codec.PKColumnSchema {
	out := make([]codec.PKColumnSchema, len(s))
	for i, c := range s {
		out[i] = codec.PKColumnSchema{Name: c.Name, Type: int(c.Type), AutoIncrement: c.Option == SchemaOptionAutoIncrement}
	}
	return out
}

func codecToSchema(s []codec.PKColumnSchema) []PrimaryKeyColumnSchema {
	out := make([]PrimaryKeyColumnSchema, len(s))
	for i, c := range s {
		opt := SchemaOptionNone
		if c.AutoIncrement {
			opt = SchemaOptionAutoIncrement
		}
		out[i] = PrimaryKeyColumnSchema{Name: c.Name, Type: PKType(c.Type), Option: opt}
	}
	return out
}

func tableOptionsToCodec(o TableOptions) codec.TableOptions {
	out := codec.TableOptions{
		TimeToLiveSeconds:   o.TimeToLiveSeconds,
		MaxVersions:         o.MaxVersions,
		BloomFilterType:     int(o.BloomFilterType),
		BlockSize:           o.BlockSize,
		MaxTimeDeviationSec: o.MaxTimeDeviationSec,
	}
	if o.ReservedThroughput.Read != nil {
		v := *o.ReservedThroughput.Read
		out.ReservedRead = &v
	}
	if o.ReservedThroughput.Write != nil {
		v := *o.ReservedThroughput.Write
		out.ReservedWrite = &v
	}
	return out
}

func codecToTableOptions(o codec.TableOptions) TableOptions {
	return TableOptions{
		ReservedThroughput:  ReservedThroughput{Read: o.ReservedRead, Write: o.ReservedWrite},
		TimeToLiveSeconds:   o.TimeToLiveSeconds,
		MaxVersions:         o.MaxVersions,
		BloomFilterType:     BloomFilterType(o.BloomFilterType),
		BlockSize:           o.BlockSize,
		MaxTimeDeviationSec: o.MaxTimeDeviationSec,
	}
}

func consumedToCapacity(c codec.Consumed) CapacityUnit {
	return CapacityUnit{Read: c.ReadUnits, Write: c.WriteUnits}
}

func rowUpdateToCodec(u RowUpdate) codec.RowUpdate {
	out := codec.RowUpdate{
		AttributeName: u.AttributeName,
		Type:          int(u.Type),
		Value:         attrValueToCell("", u.Value, nil),
	}
	if u.TimestampMicro != nil {
		out.HasTimestamp = true
		out.TimestampMicro = *u.TimestampMicro
	}
	return out
}

func batchOpTypeToCodec(op BatchWriteOpType) int { return int(op) }
