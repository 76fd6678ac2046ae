// Copyright The wcs-go Authors
// SPDX-License-Identifier: Apache-2.0

package codec

import "google.golang.org/protobuf/encoding/protowire"

// --- BatchGetRow ---

// BatchGetTable is one table's worth of primary keys within a
// BatchGetRow request (spec §4.2).
type BatchGetTable struct {
	TableName    string
	PrimaryKeys  [][]PKCell
	ColumnsToGet []string
	MaxVersions  int64
	TimeRange    *TimeRange
	Filter       *ColumnCondition
}

const (
	bgtFieldTableName protowire.Number = 1
	bgtFieldPK        protowire.Number = 2
	bgtFieldColumns   protowire.Number = 3
	bgtFieldMaxVer    protowire.Number = 4
	bgtFieldTimeRange protowire.Number = 5
	bgtFieldFilter    protowire.Number = 6
)

func encodeBatchGetTable(t BatchGetTable) ([]byte, error) {
	w := newFieldWriter()
	w.string(bgtFieldTableName, t.TableName)
	for _, pk := range t.PrimaryKeys {
		pkBuf, err := EncodePrimaryKey(pk)
		if err != nil {
			return nil, err
		}
		w.message(bgtFieldPK, pkBuf)
	}
	encodeStrings(w, bgtFieldColumns, t.ColumnsToGet)
	w.int64(bgtFieldMaxVer, t.MaxVersions)
	if t.TimeRange != nil {
		w.message(bgtFieldTimeRange, encodeTimeRange(t.TimeRange))
	}
	if t.Filter != nil {
		w.message(bgtFieldFilter, EncodeColumnCondition(t.Filter))
	}
	return w.bytesOrNil(), nil
}

func decodeBatchGetTable(buf []byte) (BatchGetTable, error) {
	var t BatchGetTable
	err := readAll(buf, func(num protowire.Number, typ protowire.Type, raw []byte, u64 uint64) error {
		switch num {
		case bgtFieldTableName:
			t.TableName = string(raw)
		case bgtFieldPK:
			cells, err := DecodePrimaryKey(raw)
			if err != nil {
				return err
			}
			t.PrimaryKeys = append(t.PrimaryKeys, cells)
		case bgtFieldColumns:
			t.ColumnsToGet = append(t.ColumnsToGet, string(raw))
		case bgtFieldMaxVer:
			t.MaxVersions = int64(u64)
		case bgtFieldTimeRange:
			tr, err := decodeTimeRange(raw)
			if err != nil {
				return err
			}
			t.TimeRange = tr
		case bgtFieldFilter:
			f, err := DecodeColumnCondition(raw)
			if err != nil {
				return err
			}
			t.Filter = f
		}
		return nil
	})
	return t, err
}

type BatchGetRowRequest struct {
	Tables []BatchGetTable
}

func (r *BatchGetRowRequest) Marshal() ([]byte, error) {
	w := newFieldWriter()
	for _, t := range r.Tables {
		tBuf, err := encodeBatchGetTable(t)
		if err != nil {
			return nil, err
		}
		w.message(1, tBuf)
	}
	return w.bytesOrNil(), nil
}

func UnmarshalBatchGetRowRequest(buf []byte) (*BatchGetRowRequest, error) {
	r := &BatchGetRowRequest{}
	err := readAll(buf, func(num protowire.Number, typ protowire.Type, raw []byte, u64 uint64) error {
		if num == 1 {
			t, err := decodeBatchGetTable(raw)
			if err != nil {
				return err
			}
			r.Tables = append(r.Tables, t)
		}
		return nil
	})
	return r, err
}

// BatchItemResult is the per-item result within a batch response: either
// a row (GetRow) or a consumed-capacity/primary-key echo (WriteRow), with
// an error when the item failed independently of the rest of the batch
// (spec §4.2, §4.3).
type BatchItemResult struct {
	TableName  string
	Succeeded  bool
	ErrorCode  string
	ErrorMsg   string
	Consumed   Consumed
	Row        RowMsg // GetRow only
	PrimaryKey []PKCell // WriteRow only, echoes auto-increment values
}

const (
	birFieldTableName protowire.Number = 1
	birFieldSucceeded protowire.Number = 2
	birFieldErrCode   protowire.Number = 3
	birFieldErrMsg    protowire.Number = 4
	birFieldConsumed  protowire.Number = 5
	birFieldRow       protowire.Number = 6
	birFieldPK        protowire.Number = 7
)

func encodeBatchItemResult(it BatchItemResult) ([]byte, error) {
	w := newFieldWriter()
	w.string(birFieldTableName, it.TableName)
	w.bool(birFieldSucceeded, it.Succeeded)
	if it.ErrorCode != "" {
		w.string(birFieldErrCode, it.ErrorCode)
	}
	if it.ErrorMsg != "" {
		w.string(birFieldErrMsg, it.ErrorMsg)
	}
	w.message(birFieldConsumed, encodeConsumed(it.Consumed))
	if len(it.Row.PrimaryKey) > 0 {
		rowBuf, err := encodeRowMsg(it.Row)
		if err != nil {
			return nil, err
		}
		w.message(birFieldRow, rowBuf)
	}
	if len(it.PrimaryKey) > 0 {
		pkBuf, err := EncodePrimaryKey(it.PrimaryKey)
		if err != nil {
			return nil, err
		}
		w.message(birFieldPK, pkBuf)
	}
	return w.bytesOrNil(), nil
}

func decodeBatchItemResult(buf []byte) (BatchItemResult, error) {
	var it BatchItemResult
	err := readAll(buf, func(num protowire.Number, typ protowire.Type, raw []byte, u64 uint64) error {
		switch num {
		case birFieldTableName:
			it.TableName = string(raw)
		case birFieldSucceeded:
			it.Succeeded = u64 != 0
		case birFieldErrCode:
			it.ErrorCode = string(raw)
		case birFieldErrMsg:
			it.ErrorMsg = string(raw)
		case birFieldConsumed:
			c, err := decodeConsumed(raw)
			if err != nil {
				return err
			}
			it.Consumed = c
		case birFieldRow:
			row, err := decodeRowMsg(raw)
			if err != nil {
				return err
			}
			it.Row = row
		case birFieldPK:
			cells, err := DecodePrimaryKey(raw)
			if err != nil {
				return err
			}
			it.PrimaryKey = cells
		}
		return nil
	})
	return it, err
}

type BatchGetRowResponse struct {
	Items []BatchItemResult
}

func (r *BatchGetRowResponse) Marshal() ([]byte, error) {
	w := newFieldWriter()
	for _, it := range r.Items {
		buf, err := encodeBatchItemResult(it)
		if err != nil {
			return nil, err
		}
		w.message(1, buf)
	}
	return w.bytesOrNil(), nil
}

func UnmarshalBatchGetRowResponse(buf []byte) (*BatchGetRowResponse, error) {
	r := &BatchGetRowResponse{}
	err := readAll(buf, func(num protowire.Number, typ protowire.Type, raw []byte, u64 uint64) error {
		if num == 1 {
			it, err := decodeBatchItemResult(raw)
			if err != nil {
				return err
			}
			r.Items = append(r.Items, it)
		}
		return nil
	})
	return r, err
}

// --- BatchWriteRow ---

// BatchWriteItem is one row mutation within a BatchWriteRow request: Put,
// Update, or Delete, distinguished by OpType (mirrors wcs.UpdateType plus
// a Put/Delete discriminant carried by the caller).
type BatchWriteItem struct {
	TableName  string
	OpType     int // 0=Put 1=Update 2=Delete, per the owning wcs package's convention
	PrimaryKey []PKCell
	Attributes []AttrCell // Put
	Updates    []RowUpdate // Update
	Condition  Condition
}

const (
	bwiFieldTableName protowire.Number = 1
	bwiFieldOpType    protowire.Number = 2
	bwiFieldPK        protowire.Number = 3
	bwiFieldAttrs     protowire.Number = 4
	bwiFieldUpdates   protowire.Number = 5
	bwiFieldCondition protowire.Number = 6
)

func encodeBatchWriteItem(it BatchWriteItem) ([]byte, error) {
	w := newFieldWriter()
	w.string(bwiFieldTableName, it.TableName)
	w.varint(bwiFieldOpType, uint64(it.OpType))
	pkBuf, err := EncodePrimaryKey(it.PrimaryKey)
	if err != nil {
		return nil, err
	}
	w.message(bwiFieldPK, pkBuf)
	for _, a := range it.Attributes {
		w.message(bwiFieldAttrs, encodeAttrCell(a))
	}
	for _, u := range it.Updates {
		w.message(bwiFieldUpdates, encodeRowUpdate(u))
	}
	w.message(bwiFieldCondition, encodeCondition(it.Condition))
	return w.bytesOrNil(), nil
}

func decodeBatchWriteItem(buf []byte) (BatchWriteItem, error) {
	var it BatchWriteItem
	err := readAll(buf, func(num protowire.Number, typ protowire.Type, raw []byte, u64 uint64) error {
		switch num {
		case bwiFieldTableName:
			it.TableName = string(raw)
		case bwiFieldOpType:
			it.OpType = int(u64)
		case bwiFieldPK:
			cells, err := DecodePrimaryKey(raw)
			if err != nil {
				return err
			}
			it.PrimaryKey = cells
		case bwiFieldAttrs:
			a, err := decodeAttrCell(raw)
			if err != nil {
				return err
			}
			it.Attributes = append(it.Attributes, a)
		case bwiFieldUpdates:
			u, err := decodeRowUpdate(raw)
			if err != nil {
				return err
			}
			it.Updates = append(it.Updates, u)
		case bwiFieldCondition:
			c, err := decodeCondition(raw)
			if err != nil {
				return err
			}
			it.Condition = c
		}
		return nil
	})
	return it, err
}

type BatchWriteRowRequest struct {
	Items []BatchWriteItem
}

func (r *BatchWriteRowRequest) Marshal() ([]byte, error) {
	w := newFieldWriter()
	for _, it := range r.Items {
		buf, err := encodeBatchWriteItem(it)
		if err != nil {
			return nil, err
		}
		w.message(1, buf)
	}
	return w.bytesOrNil(), nil
}

func UnmarshalBatchWriteRowRequest(buf []byte) (*BatchWriteRowRequest, error) {
	r := &BatchWriteRowRequest{}
	err := readAll(buf, func(num protowire.Number, typ protowire.Type, raw []byte, u64 uint64) error {
		if num == 1 {
			it, err := decodeBatchWriteItem(raw)
			if err != nil {
				return err
			}
			r.Items = append(r.Items, it)
		}
		return nil
	})
	return r, err
}

type BatchWriteRowResponse struct {
	Items []BatchItemResult
}

func (r *BatchWriteRowResponse) Marshal() ([]byte, error) {
	w := newFieldWriter()
	for _, it := range r.Items {
		buf, err := encodeBatchItemResult(it)
		if err != nil {
			return nil, err
		}
		w.message(1, buf)
	}
	return w.bytesOrNil(), nil
}

func UnmarshalBatchWriteRowResponse(buf []byte) (*BatchWriteRowResponse, error) {
	r := &BatchWriteRowResponse{}
	err := readAll(buf, func(num protowire.Number, typ protowire.Type, raw []byte, u64 uint64) error {
		if num == 1 {
			it, err := decodeBatchItemResult(raw)
			if err != nil {
				return err
			}
			r.Items = append(r.Items, it)
		}
		return nil
	})
	return r, err
}
