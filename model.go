// Copyright The wcs-go Authors
// SPDX-License-Identifier: Apache-2.0

package wcs

import (
	"math"
	"strings"
)

// Endpoint identifies the service to talk to (spec §3).
type Endpoint struct {
	URL      string
	Instance string
}

func (e Endpoint) validate() error {
	if e.URL == "" {
		return NewParameterInvalid("endpoint.url", "must not be empty")
	}
	if !strings.HasPrefix(e.URL, "http://") && !strings.HasPrefix(e.URL, "https://") {
		return NewParameterInvalid("endpoint.url", "must start with http:// or https://")
	}
	if e.Instance == "" {
		return NewParameterInvalid("endpoint.instance", "must not be empty")
	}
	return nil
}

// Credential authenticates the caller (spec §3).
type Credential struct {
	AccessKeyID     string
	AccessKeySecret string
	SecurityToken   string // optional
}

func (c Credential) validate() error {
	if c.AccessKeyID == "" {
		return NewParameterInvalid("credential.access_key_id", "must not be empty")
	}
	if c.AccessKeySecret == "" {
		return NewParameterInvalid("credential.access_key_secret", "must not be empty")
	}
	return nil
}

// PKType enumerates the real (non-boundary) primary key value types.
type PKType int

const (
	PKTypeInteger PKType = iota
	PKTypeString
	PKTypeBinary
)

// pkVariant tags every kind of value a PrimaryKeyValue can hold: the
// three real kinds and the boundary/placeholder markers. Type() maps the
// real variants onto their PKType.
type pkVariant int

const (
	pkVariantNone pkVariant = iota
	pkVariantInfMin
	pkVariantInfMax
	pkVariantAutoIncr
	pkVariantInteger
	pkVariantString
	pkVariantBinary
)

// PrimaryKeyValue is the tagged union described in spec §3: either a
// boundary marker (None/InfMin/InfMax/AutoIncrPlaceholder) or a real
// value (Integer/String/Binary).
type PrimaryKeyValue struct {
	variant pkVariant
	integer int64
	bytes   []byte
}

// PKInfMin is the lower-bound boundary marker.
func PKInfMin() PrimaryKeyValue { return PrimaryKeyValue{variant: pkVariantInfMin} }

// PKInfMax is the upper-bound boundary marker.
func PKInfMax() PrimaryKeyValue { return PrimaryKeyValue{variant: pkVariantInfMax} }

// PKAutoIncrement is the server-assigned auto-increment placeholder.
// Only legal on a PutRow insert (spec §4.2).
func PKAutoIncrement() PrimaryKeyValue { return PrimaryKeyValue{variant: pkVariantAutoIncr} }

// PKInteger builds a real Integer primary key value.
func PKInteger(v int64) PrimaryKeyValue { return PrimaryKeyValue{variant: pkVariantInteger, integer: v} }

// PKString builds a real String primary key value.
func PKString(v string) PrimaryKeyValue {
	return PrimaryKeyValue{variant: pkVariantString, bytes: []byte(v)}
}

// PKBinary builds a real Binary primary key value.
func PKBinary(v []byte) PrimaryKeyValue { return PrimaryKeyValue{variant: pkVariantBinary, bytes: v} }

// IsReal reports whether v holds an Integer/String/Binary value, as
// opposed to a boundary marker or None.
func (v PrimaryKeyValue) IsReal() bool {
	switch v.variant {
	case pkVariantInteger, pkVariantString, pkVariantBinary:
		return true
	default:
		return false
	}
}

// IsAutoIncrementPlaceholder reports whether v is the auto-increment
// boundary marker.
func (v PrimaryKeyValue) IsAutoIncrementPlaceholder() bool {
	return v.variant == pkVariantAutoIncr
}

// Type returns the real-value type, valid only when IsReal() is true.
func (v PrimaryKeyValue) Type() PKType {
	switch v.variant {
	case pkVariantInteger:
		return PKTypeInteger
	case pkVariantString:
		return PKTypeString
	default:
		return PKTypeBinary
	}
}

// Compare orders two PrimaryKeyValues. It panics if asked to compare two
// real values of different variants (spec §3: "comparable only between
// real values of identical variant, and between a real value and
// ±Inf"). Returns -1, 0, or 1.
func (v PrimaryKeyValue) Compare(o PrimaryKeyValue) int {
	if v.variant == pkVariantInfMin || o.variant == pkVariantInfMax {
		if v.variant == o.variant {
			return 0
		}
		return -1
	}
	if v.variant == pkVariantInfMax || o.variant == pkVariantInfMin {
		if v.variant == o.variant {
			return 0
		}
		return 1
	}
	if v.variant != o.variant {
		panic("wcs: cannot compare primary key values of different variants")
	}
	switch v.variant {
	case pkVariantInteger:
		switch {
		case v.integer < o.integer:
			return -1
		case v.integer > o.integer:
			return 1
		default:
			return 0
		}
	default:
		return strings.Compare(string(v.bytes), string(o.bytes))
	}
}

func (v PrimaryKeyValue) validate(field string, allowAutoIncr bool) error {
	switch v.variant {
	case pkVariantNone:
		return NewParameterInvalid(field, "primary key value must be set")
	case pkVariantAutoIncr:
		if !allowAutoIncr {
			return NewParameterInvalid(field, "auto-increment placeholder only allowed on PutRow inserts")
		}
	}
	return nil
}

// AttrType enumerates the AttributeValue variants that carry real data.
type AttrType int

const (
	AttrTypeString AttrType = iota
	AttrTypeInteger
	AttrTypeBinary
	AttrTypeBoolean
	AttrTypeFloat
)

type attrVariant int

const (
	attrVariantNone attrVariant = iota
	attrVariantString
	attrVariantInteger
	attrVariantBinary
	attrVariantBoolean
	attrVariantFloat
)

// AttributeValue is the tagged union described in spec §3.
type AttributeValue struct {
	variant attrVariant
	integer int64
	bytes   []byte
	boolean bool
	float   float64
}

func AttrString(v string) AttributeValue {
	return AttributeValue{variant: attrVariantString, bytes: []byte(v)}
}
func AttrInteger(v int64) AttributeValue { return AttributeValue{variant: attrVariantInteger, integer: v} }
func AttrBinary(v []byte) AttributeValue { return AttributeValue{variant: attrVariantBinary, bytes: v} }
func AttrBoolean(v bool) AttributeValue  { return AttributeValue{variant: attrVariantBoolean, boolean: v} }

// AttrFloat builds a FloatingPoint attribute value. Construction fails
// (returns an error) for NaN or ±Inf, per spec §3.
func AttrFloat(v float64) (AttributeValue, error) {
	if math.IsNaN(v) || math.IsInf(v, 0) {
		return AttributeValue{}, NewParameterInvalid("attribute_value", "floating point value must not be NaN or Inf")
	}
	return AttributeValue{variant: attrVariantFloat, float: v}, nil
}

func (v AttributeValue) IsNone() bool { return v.variant == attrVariantNone }

// TimeRange bounds a version-timestamp filter (spec §4.2), in whole
// milliseconds.
type TimeRange struct {
	StartMillis int64
	EndMillis   int64
}

func (t TimeRange) validate() error {
	if t.StartMillis > t.EndMillis {
		return NewParameterInvalid("time_range", "start must be <= end")
	}
	return nil
}

// PrimaryKeyColumn is one named, valued column of a PrimaryKey. Schema
// entries of a TableMeta are PrimaryKeyColumnSchema.
type PrimaryKeyColumn struct {
	Name  string
	Value PrimaryKeyValue
}

// PrimaryKey is an ordered sequence of named primary key values (spec
// §3); length must be >= 1.
type PrimaryKey []PrimaryKeyColumn

func (pk PrimaryKey) validate(allowAutoIncr bool) error {
	if len(pk) == 0 {
		return NewParameterInvalid("primary_key", "must have at least one column")
	}
	for _, c := range pk {
		if c.Name == "" {
			return NewParameterInvalid("primary_key.name", "must not be empty")
		}
		if err := c.Value.validate("primary_key["+c.Name+"]", allowAutoIncr); err != nil {
			return err
		}
	}
	return nil
}

// Attribute names one column of a Row.
type Attribute struct {
	Name           string
	Value          AttributeValue
	TimestampMicro *int64 // optional; nil means "server-assigned"
}

// Row is a primary key plus an ordered sequence of attributes (spec §3).
type Row struct {
	PrimaryKey PrimaryKey
	Attributes []Attribute
}

// SchemaOption marks a primary key schema column as plain or
// auto-increment (spec §3).
type SchemaOption int

const (
	SchemaOptionNone SchemaOption = iota
	SchemaOptionAutoIncrement
)

// PrimaryKeyColumnSchema describes one column of a TableMeta schema.
type PrimaryKeyColumnSchema struct {
	Name   string
	Type   PKType
	Option SchemaOption
}

func (s PrimaryKeyColumnSchema) validate() error {
	if s.Name == "" {
		return NewParameterInvalid("schema.name", "must not be empty")
	}
	if s.Option == SchemaOptionAutoIncrement && s.Type != PKTypeInteger {
		return NewParameterInvalid("schema.option", "auto-increment only applies to Integer columns")
	}
	return nil
}

// TableMeta names a table and its immutable primary-key schema (spec
// §3).
type TableMeta struct {
	TableName string
	Schema    []PrimaryKeyColumnSchema
}

func (m TableMeta) validate() error {
	if m.TableName == "" {
		return NewParameterInvalid("table_meta.table_name", "must not be empty")
	}
	if len(m.Schema) == 0 {
		return NewParameterInvalid("table_meta.schema", "must have at least one column")
	}
	for _, s := range m.Schema {
		if err := s.validate(); err != nil {
			return err
		}
	}
	return nil
}

// ReservedThroughput is the read/write capacity reservation (spec §3).
type ReservedThroughput struct {
	Read  *int64
	Write *int64
}

// BloomFilterType enumerates TableOptions.BloomFilterType (spec §3).
type BloomFilterType int

const (
	BloomFilterNone BloomFilterType = iota
	BloomFilterCell
	BloomFilterRow
)

// TableOptions configures server-side table behavior (spec §3).
type TableOptions struct {
	ReservedThroughput  ReservedThroughput
	TimeToLiveSeconds   int64
	MaxVersions         int64
	BloomFilterType     BloomFilterType
	BlockSize           int64
	MaxTimeDeviationSec int64
}

func (o TableOptions) validate(forCreateTable bool) error {
	if o.TimeToLiveSeconds <= 0 {
		return NewParameterInvalid("table_options.time_to_live", "must be a positive whole number of seconds")
	}
	if o.MaxTimeDeviationSec <= 0 {
		return NewParameterInvalid("table_options.max_time_deviation", "must be a positive whole number of seconds")
	}
	if o.MaxVersions <= 0 {
		return NewParameterInvalid("table_options.max_versions", "must be > 0")
	}
	if o.BlockSize <= 0 {
		return NewParameterInvalid("table_options.block_size", "must be > 0")
	}
	if forCreateTable && (o.ReservedThroughput.Read == nil || o.ReservedThroughput.Write == nil) {
		return NewParameterInvalid("table_options.reserved_throughput", "read and write must both be set for CreateTable")
	}
	return nil
}

// RowExistence is Condition's existence expectation (spec §3).
type RowExistence int

const (
	RowExistenceIgnore RowExistence = iota
	RowExistenceExpectExist
	RowExistenceExpectNotExist
)

// ColumnConditionOp enumerates internal tree nodes in a ColumnCondition.
type ColumnConditionOp int

const (
	ColumnConditionNot ColumnConditionOp = iota
	ColumnConditionAnd
	ColumnConditionOr
)

// RelOp enumerates leaf comparison relations in a ColumnCondition.
type RelOp int

const (
	RelEqual RelOp = iota
	RelNotEqual
	RelLess
	RelLessEqual
	RelGreater
	RelGreaterEqual
)

// ColumnCondition is a tree: internal nodes combine children with
// Not/And/Or, leaves compare one column against a value (spec §3).
type ColumnCondition struct {
	// Leaf fields.
	isLeaf            bool
	ColumnName        string
	Rel               RelOp
	Value             AttributeValue
	PassIfMissing     bool
	LatestVersionOnly bool

	// Internal-node fields.
	Op       ColumnConditionOp
	Children []*ColumnCondition
}

// Leaf builds a leaf ColumnCondition comparing one column.
func Leaf(column string, rel RelOp, value AttributeValue, passIfMissing, latestVersionOnly bool) *ColumnCondition {
	return &ColumnCondition{
		isLeaf:            true,
		ColumnName:        column,
		Rel:               rel,
		Value:             value,
		PassIfMissing:     passIfMissing,
		LatestVersionOnly: latestVersionOnly,
	}
}

// Internal builds an internal ColumnCondition node.
func Internal(op ColumnConditionOp, children ...*ColumnCondition) *ColumnCondition {
	return &ColumnCondition{Op: op, Children: children}
}

func (c *ColumnCondition) IsLeaf() bool { return c == nil || c.isLeaf }

// Condition gates a row mutation on existence and/or column state (spec
// §3).
type Condition struct {
	RowExistence    RowExistence
	ColumnCondition *ColumnCondition // optional
}

// Split describes the bounds of one key-range partition, used by
// ComputeSplitPointsBySize (spec §3, §4.2).
type Split struct {
	Lower PrimaryKey
	Upper PrimaryKey
}

func (s Split) validate() error {
	if len(s.Lower) == 0 || len(s.Upper) == 0 {
		return NewParameterInvalid("split", "lower and upper must be non-null")
	}
	if len(s.Lower) != len(s.Upper) {
		return NewParameterInvalid("split", "lower and upper must have the same arity")
	}
	for i := range s.Lower {
		lo, up := s.Lower[i], s.Upper[i]
		if lo.Name != up.Name {
			return NewParameterInvalid("split", "lower and upper must share column names")
		}
		if !lo.Value.IsReal() || !up.Value.IsReal() {
			return NewParameterInvalid("split", "lower and upper must be real values")
		}
		if lo.Value.Type() != up.Value.Type() {
			return NewParameterInvalid("split", "lower and upper must share value variants")
		}
	}
	if cmpPrimaryKeys(s.Lower, s.Upper) >= 0 {
		return NewParameterInvalid("split", "lower must be < upper")
	}
	return nil
}

func cmpPrimaryKeys(a, b PrimaryKey) int {
	for i := range a {
		if c := a[i].Value.Compare(b[i].Value); c != 0 {
			return c
		}
	}
	return 0
}
