// Copyright The wcs-go Authors
// SPDX-License-Identifier: Apache-2.0

package wcs

// CapacityUnit reports the server-side read/write capacity a call
// consumed (spec §3/§4.2).
type CapacityUnit struct {
	Read  int64
	Write int64
}

// --- requests with no dedicated validate.go entry ---

// ListTableRequest takes no parameters.
type ListTableRequest struct{}

func (r ListTableRequest) Validate() error { return nil }

// DescribeTableRequest is the request for ActionDescribeTable.
type DescribeTableRequest struct {
	TableName string
}

func (r DescribeTableRequest) Validate() error {
	if r.TableName == "" {
		return NewParameterInvalid("table_name", "must not be empty")
	}
	return nil
}

// DeleteTableRequest is the request for ActionDeleteTable.
type DeleteTableRequest struct {
	TableName string
}

func (r DeleteTableRequest) Validate() error {
	if r.TableName == "" {
		return NewParameterInvalid("table_name", "must not be empty")
	}
	return nil
}

// UpdateTableRequest is the request for ActionUpdateTable.
type UpdateTableRequest struct {
	TableName string
	Options   TableOptions
}

func (r UpdateTableRequest) Validate() error {
	if r.TableName == "" {
		return NewParameterInvalid("table_name", "must not be empty")
	}
	return r.Options.validate(false)
}

// ComputeSplitPointsBySizeRequest is the request for
// ActionComputeSplitPointsBySize.
type ComputeSplitPointsBySizeRequest struct {
	TableName string
	// SplitSize is in units of 100MB (spec §4.2).
	SplitSize int64
}

func (r ComputeSplitPointsBySizeRequest) Validate() error {
	if r.TableName == "" {
		return NewParameterInvalid("table_name", "must not be empty")
	}
	if r.SplitSize <= 0 {
		return NewParameterInvalid("split_size", "must be > 0")
	}
	return nil
}

// BatchGetTableQuery is one table's worth of keys within a
// BatchGetRowRequest (spec §4.2).
type BatchGetTableQuery struct {
	TableName    string
	PrimaryKeys  []PrimaryKey
	ColumnsToGet []string
	MaxVersions  int64
	TimeRange    *TimeRange
	Filter       *ColumnCondition
}

func (q BatchGetTableQuery) validate() error {
	if q.TableName == "" {
		return NewParameterInvalid("table_name", "must not be empty")
	}
	if len(q.PrimaryKeys) == 0 {
		return NewParameterInvalid("primary_keys", "must have at least one entry")
	}
	for _, pk := range q.PrimaryKeys {
		if err := pk.validate(false); err != nil {
			return err
		}
	}
	if q.TimeRange != nil {
		return q.TimeRange.validate()
	}
	return nil
}

// BatchGetRowRequest is the request for ActionBatchGetRow.
type BatchGetRowRequest struct {
	Tables []BatchGetTableQuery
}

func (r BatchGetRowRequest) Validate() error {
	if len(r.Tables) == 0 {
		return NewParameterInvalid("tables", "must have at least one entry")
	}
	for _, t := range r.Tables {
		if err := t.validate(); err != nil {
			return err
		}
	}
	return nil
}

// BatchWriteOpType enumerates the mutation kinds a BatchWriteItem may
// carry: Put, Update, or Delete (spec §4.2).
type BatchWriteOpType int

const (
	BatchWritePut BatchWriteOpType = iota
	BatchWriteUpdate
	BatchWriteDelete
)

// BatchWriteItem is one row mutation within a BatchWriteRowRequest.
type BatchWriteItem struct {
	TableName  string
	Op         BatchWriteOpType
	PrimaryKey PrimaryKey
	Attributes []Attribute  // Put only
	Updates    []RowUpdate  // Update only
	Condition  Condition
}

func (it BatchWriteItem) validate() error {
	if it.TableName == "" {
		return NewParameterInvalid("table_name", "must not be empty")
	}
	if err := it.PrimaryKey.validate(it.Op == BatchWritePut); err != nil {
		return err
	}
	if it.Op == BatchWriteUpdate {
		for _, u := range it.Updates {
			if err := u.validate(); err != nil {
				return err
			}
		}
	}
	return nil
}

// BatchWriteRowRequest is the request for ActionBatchWriteRow.
type BatchWriteRowRequest struct {
	Items []BatchWriteItem
}

func (r BatchWriteRowRequest) Validate() error {
	if len(r.Items) == 0 {
		return NewParameterInvalid("items", "must have at least one entry")
	}
	seen := make(map[string]bool, len(r.Items))
	var autoIncrOrdinal int
	for _, it := range r.Items {
		if err := it.validate(); err != nil {
			return err
		}
		key := it.TableName + "|" + pkDedupKey(it.PrimaryKey, &autoIncrOrdinal)
		if seen[key] {
			return NewParameterInvalid("items", "duplicate primary key within one BatchWriteRow call")
		}
		seen[key] = true
	}
	return nil
}

// pkDedupKey hashes a primary key the way the aggregator's batch
// builder does (spec §4.8, §9 open question (b)): autoIncrOrdinal is a
// counter shared across one batch-construction pass (or, here, one
// Validate call), incremented only when a PKAutoIncrement() column is
// hashed, so that distinct auto-increment placeholders — which carry
// no value of their own — still hash to distinct keys by their
// position among the batch's auto-increment columns. Concrete-valued
// columns hash by their actual value, as before; the counter never
// touches them.
func pkDedupKey(pk PrimaryKey, autoIncrOrdinal *int) string {
	var b []byte
	for _, c := range pk {
		b = append(b, c.Name...)
		b = append(b, 0)
		b = append(b, byte(c.Value.variant))
		switch c.Value.variant {
		case pkVariantAutoIncr:
			ord := *autoIncrOrdinal
			*autoIncrOrdinal++
			b = append(b, byte(ord), byte(ord>>8), byte(ord>>16), byte(ord>>24))
		case pkVariantInteger:
			b = append(b, byte(c.Value.integer), byte(c.Value.integer>>8), byte(c.Value.integer>>16), byte(c.Value.integer>>24),
				byte(c.Value.integer>>32), byte(c.Value.integer>>40), byte(c.Value.integer>>48), byte(c.Value.integer>>56))
		default:
			b = append(b, c.Value.bytes...)
		}
		b = append(b, 0)
	}
	return string(b)
}

// --- results ---

// CreateTableResult carries no fields.
type CreateTableResult struct{}

// ListTableResult lists every table in the instance.
type ListTableResult struct {
	TableNames []string
}

// DescribeTableResult describes one table's schema and options.
type DescribeTableResult struct {
	Meta    TableMeta
	Options TableOptions
}

// DeleteTableResult carries no fields.
type DeleteTableResult struct{}

// UpdateTableResult echoes the table's options after the update.
type UpdateTableResult struct {
	Options TableOptions
}

// PutRowResult carries consumed capacity and, for auto-increment tables,
// the server-assigned primary key value (spec §4.2).
type PutRowResult struct {
	Consumed   CapacityUnit
	PrimaryKey PrimaryKey
}

// GetRowResult carries the row, or a nil Row if it did not exist.
type GetRowResult struct {
	Consumed CapacityUnit
	Row      *Row
}

// UpdateRowResult carries consumed capacity.
type UpdateRowResult struct {
	Consumed CapacityUnit
}

// DeleteRowResult carries consumed capacity.
type DeleteRowResult struct {
	Consumed CapacityUnit
}

// BatchItemOutcome is one item's outcome within a batch result: either
// successful (with its payload) or failed independently of the rest of
// the batch (spec §4.2, §4.3).
type BatchItemOutcome struct {
	TableName string
	Succeeded bool
	Err       *Error // set when !Succeeded

	Consumed   CapacityUnit
	Row        *Row       // BatchGetRow only
	PrimaryKey PrimaryKey // BatchWriteRow only
}

// BatchGetRowResult carries one outcome per requested key, in request
// order.
type BatchGetRowResult struct {
	Items []BatchItemOutcome
}

// BatchWriteRowResult carries one outcome per submitted item, in
// request order.
type BatchWriteRowResult struct {
	Items []BatchItemOutcome
}

// GetRangeResult is one page of a range scan (spec §4.7): the rows
// found, and NextStart. NextStart is the primary key of the page's last
// row when the server returned a continuation token and the page holds
// at least one row; otherwise it is nil, including for an empty page of
// a scan that continues. It is not the server's resume position: the
// scan continues from the opaque token kept alongside it.
type GetRangeResult struct {
	Consumed  CapacityUnit
	Rows      []Row
	NextStart PrimaryKey
	nextToken []byte
}

// ComputeSplitPointsBySizeResult reports the table's schema and the
// computed key-range splits (spec §3, §4.2).
type ComputeSplitPointsBySizeResult struct {
	Schema []PrimaryKeyColumnSchema
	Splits []Split
}
