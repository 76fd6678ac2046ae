// Copyright The wcs-go Authors
// SPDX-License-Identifier: Apache-2.0

package wcs

// UpdateType enumerates the kinds of per-attribute mutation a RowUpdate
// may carry (spec §4.2).
type UpdateType int

const (
	UpdateTypePut UpdateType = iota
	UpdateTypeDeleteOne
	UpdateTypeDeleteAll
)

// RowUpdate is one attribute-level mutation within an UpdateRow request.
type RowUpdate struct {
	AttributeName  string
	Type           UpdateType
	Value          AttributeValue
	TimestampMicro *int64
}

func (u RowUpdate) validate() error {
	if u.AttributeName == "" {
		return NewParameterInvalid("row_update.attribute_name", "must not be empty")
	}
	switch u.Type {
	case UpdateTypePut:
		if u.Value.IsNone() {
			return NewParameterInvalid("row_update.value", "Put requires a value")
		}
	case UpdateTypeDeleteAll:
		if u.TimestampMicro != nil {
			return NewParameterInvalid("row_update.timestamp", "DeleteAll must not carry a timestamp")
		}
	}
	return nil
}

// validateCreateTableSplitPoints checks spec §4.2's
// CreateTable.shard-split-points rule: each split point has exactly one
// column, of a real variant matching the first schema column in name and
// type.
func validateCreateTableSplitPoints(schema []PrimaryKeyColumnSchema, points []PrimaryKey) error {
	if len(schema) == 0 || len(points) == 0 {
		return nil
	}
	first := schema[0]
	for _, p := range points {
		if len(p) != 1 {
			return NewParameterInvalid("shard_split_points", "each split point must have exactly one column")
		}
		col := p[0]
		if col.Name != first.Name {
			return NewParameterInvalid("shard_split_points", "split point column name must match the first schema column")
		}
		if !col.Value.IsReal() {
			return NewParameterInvalid("shard_split_points", "split point value must be a real value")
		}
		if col.Value.Type() != first.Type {
			return NewParameterInvalid("shard_split_points", "split point value type must match the first schema column")
		}
	}
	return nil
}

// CreateTableRequest is the request for ActionCreateTable.
type CreateTableRequest struct {
	Meta             TableMeta
	Options          TableOptions
	ShardSplitPoints []PrimaryKey
}

func (r CreateTableRequest) Validate() error {
	if err := r.Meta.validate(); err != nil {
		return err
	}
	if err := r.Options.validate(true); err != nil {
		return err
	}
	return validateCreateTableSplitPoints(r.Meta.Schema, r.ShardSplitPoints)
}

// PutRowRequest is the request for ActionPutRow.
type PutRowRequest struct {
	TableName  string
	PrimaryKey PrimaryKey
	Attributes []Attribute
	Condition  Condition
}

func (r PutRowRequest) Validate() error {
	if r.TableName == "" {
		return NewParameterInvalid("table_name", "must not be empty")
	}
	// A put (PutRow, or a Put item of BatchWriteRow) is the only
	// mutation where AutoIncrPlaceholder is legal.
	return r.PrimaryKey.validate(true)
}

// UpdateRowRequest is the request for ActionUpdateRow.
type UpdateRowRequest struct {
	TableName  string
	PrimaryKey PrimaryKey
	Updates    []RowUpdate
	Condition  Condition
}

func (r UpdateRowRequest) Validate() error {
	if r.TableName == "" {
		return NewParameterInvalid("table_name", "must not be empty")
	}
	if err := r.PrimaryKey.validate(false); err != nil {
		return err
	}
	for _, u := range r.Updates {
		if err := u.validate(); err != nil {
			return err
		}
	}
	return nil
}

// DeleteRowRequest is the request for ActionDeleteRow.
type DeleteRowRequest struct {
	TableName  string
	PrimaryKey PrimaryKey
	Condition  Condition
}

func (r DeleteRowRequest) Validate() error {
	if r.TableName == "" {
		return NewParameterInvalid("table_name", "must not be empty")
	}
	return r.PrimaryKey.validate(false)
}

// GetRowRequest is the request for ActionGetRow.
type GetRowRequest struct {
	TableName        string
	PrimaryKey       PrimaryKey
	ColumnsToGet     []string
	MaxVersions      int64
	TimeRange        *TimeRange
	Filter           *ColumnCondition
}

func (r GetRowRequest) Validate() error {
	if r.TableName == "" {
		return NewParameterInvalid("table_name", "must not be empty")
	}
	if err := r.PrimaryKey.validate(false); err != nil {
		return err
	}
	if r.TimeRange != nil {
		return r.TimeRange.validate()
	}
	return nil
}

// Direction controls GetRange scan order (spec §4.7).
type Direction int

const (
	DirectionForward Direction = iota
	DirectionBackward
)

// RangeQueryCriterion is the request for ActionGetRange and the
// Range Iterator's construction parameter (spec §3, §4.7).
type RangeQueryCriterion struct {
	TableName    string
	Direction    Direction
	ColumnsToGet []string
	Start        PrimaryKey
	End          PrimaryKey
	Limit        int64 // 0 means unlimited
	MaxVersions  int64
	TimeRange    *TimeRange
	Filter       *ColumnCondition
}

func (r RangeQueryCriterion) Validate() error {
	if r.TableName == "" {
		return NewParameterInvalid("table_name", "must not be empty")
	}
	if err := r.Start.validate(false); err != nil {
		return err
	}
	if err := r.End.validate(false); err != nil {
		return err
	}
	if r.TimeRange != nil {
		return r.TimeRange.validate()
	}
	return nil
}
