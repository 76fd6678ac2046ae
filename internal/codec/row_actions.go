// Copyright The wcs-go Authors
// SPDX-License-Identifier: Apache-2.0

package codec

import "google.golang.org/protobuf/encoding/protowire"

// --- PutRow ---

type PutRowRequest struct {
	TableName  string
	PrimaryKey []PKCell
	Attributes []AttrCell
	Condition  Condition
}

const (
	prFieldTableName protowire.Number = 1
	prFieldPK        protowire.Number = 2
	prFieldAttrs     protowire.Number = 3
	prFieldCondition protowire.Number = 4
)

func (r *PutRowRequest) Marshal() ([]byte, error) {
	w := newFieldWriter()
	w.string(prFieldTableName, r.TableName)
	pkBuf, err := EncodePrimaryKey(r.PrimaryKey)
	if err != nil {
		return nil, err
	}
	w.message(prFieldPK, pkBuf)
	for _, a := range r.Attributes {
		w.message(prFieldAttrs, encodeAttrCell(a))
	}
	w.message(prFieldCondition, encodeCondition(r.Condition))
	return w.bytesOrNil(), nil
}

func UnmarshalPutRowRequest(buf []byte) (*PutRowRequest, error) {
	r := &PutRowRequest{}
	err := readAll(buf, func(num protowire.Number, typ protowire.Type, raw []byte, u64 uint64) error {
		switch num {
		case prFieldTableName:
			r.TableName = string(raw)
		case prFieldPK:
			cells, err := DecodePrimaryKey(raw)
			if err != nil {
				return err
			}
			r.PrimaryKey = cells
		case prFieldAttrs:
			a, err := decodeAttrCell(raw)
			if err != nil {
				return err
			}
			r.Attributes = append(r.Attributes, a)
		case prFieldCondition:
			c, err := decodeCondition(raw)
			if err != nil {
				return err
			}
			r.Condition = c
		}
		return nil
	})
	return r, err
}

type PutRowResponse struct {
	Consumed   Consumed
	PrimaryKey []PKCell // echoes server-assigned auto-increment values
}

func (r *PutRowResponse) Marshal() ([]byte, error) {
	w := newFieldWriter()
	w.message(1, encodeConsumed(r.Consumed))
	pkBuf, err := EncodePrimaryKey(r.PrimaryKey)
	if err != nil {
		return nil, err
	}
	w.message(2, pkBuf)
	return w.bytesOrNil(), nil
}

func UnmarshalPutRowResponse(buf []byte) (*PutRowResponse, error) {
	r := &PutRowResponse{}
	err := readAll(buf, func(num protowire.Number, typ protowire.Type, raw []byte, u64 uint64) error {
		switch num {
		case 1:
			c, err := decodeConsumed(raw)
			if err != nil {
				return err
			}
			r.Consumed = c
		case 2:
			cells, err := DecodePrimaryKey(raw)
			if err != nil {
				return err
			}
			r.PrimaryKey = cells
		}
		return nil
	})
	return r, err
}

// --- GetRow ---

type GetRowRequest struct {
	TableName    string
	PrimaryKey   []PKCell
	ColumnsToGet []string
	MaxVersions  int64
	TimeRange    *TimeRange
	Filter       *ColumnCondition
}

const (
	grFieldTableName protowire.Number = 1
	grFieldPK        protowire.Number = 2
	grFieldColumns   protowire.Number = 3
	grFieldMaxVer    protowire.Number = 4
	grFieldTimeRange protowire.Number = 5
	grFieldFilter    protowire.Number = 6
)

func (r *GetRowRequest) Marshal() ([]byte, error) {
	w := newFieldWriter()
	w.string(grFieldTableName, r.TableName)
	pkBuf, err := EncodePrimaryKey(r.PrimaryKey)
	if err != nil {
		return nil, err
	}
	w.message(grFieldPK, pkBuf)
	encodeStrings(w, grFieldColumns, r.ColumnsToGet)
	w.int64(grFieldMaxVer, r.MaxVersions)
	if r.TimeRange != nil {
		w.message(grFieldTimeRange, encodeTimeRange(r.TimeRange))
	}
	if r.Filter != nil {
		w.message(grFieldFilter, EncodeColumnCondition(r.Filter))
	}
	return w.bytesOrNil(), nil
}

func UnmarshalGetRowRequest(buf []byte) (*GetRowRequest, error) {
	r := &GetRowRequest{}
	err := readAll(buf, func(num protowire.Number, typ protowire.Type, raw []byte, u64 uint64) error {
		switch num {
		case grFieldTableName:
			r.TableName = string(raw)
		case grFieldPK:
			cells, err := DecodePrimaryKey(raw)
			if err != nil {
				return err
			}
			r.PrimaryKey = cells
		case grFieldColumns:
			r.ColumnsToGet = append(r.ColumnsToGet, string(raw))
		case grFieldMaxVer:
			r.MaxVersions = int64(u64)
		case grFieldTimeRange:
			tr, err := decodeTimeRange(raw)
			if err != nil {
				return err
			}
			r.TimeRange = tr
		case grFieldFilter:
			f, err := DecodeColumnCondition(raw)
			if err != nil {
				return err
			}
			r.Filter = f
		}
		return nil
	})
	return r, err
}

type GetRowResponse struct {
	Consumed   Consumed
	PrimaryKey []PKCell // empty when the row does not exist
	Attributes []AttrCell
}

func (r *GetRowResponse) Marshal() ([]byte, error) {
	w := newFieldWriter()
	w.message(1, encodeConsumed(r.Consumed))
	if len(r.PrimaryKey) > 0 {
		pkBuf, err := EncodePrimaryKey(r.PrimaryKey)
		if err != nil {
			return nil, err
		}
		w.message(2, pkBuf)
	}
	for _, a := range r.Attributes {
		w.message(3, encodeAttrCell(a))
	}
	return w.bytesOrNil(), nil
}

func UnmarshalGetRowResponse(buf []byte) (*GetRowResponse, error) {
	r := &GetRowResponse{}
	err := readAll(buf, func(num protowire.Number, typ protowire.Type, raw []byte, u64 uint64) error {
		switch num {
		case 1:
			c, err := decodeConsumed(raw)
			if err != nil {
				return err
			}
			r.Consumed = c
		case 2:
			cells, err := DecodePrimaryKey(raw)
			if err != nil {
				return err
			}
			r.PrimaryKey = cells
		case 3:
			a, err := decodeAttrCell(raw)
			if err != nil {
				return err
			}
			r.Attributes = append(r.Attributes, a)
		}
		return nil
	})
	return r, err
}

// --- UpdateRow ---

// RowUpdate is one attribute-level mutation, in the codec's neutral
// representation.
type RowUpdate struct {
	AttributeName string
	Type          int // mirrors wcs.UpdateType
	Value         AttrCell
	HasTimestamp  bool
	TimestampMicro int64
}

const (
	ruFieldName      protowire.Number = 1
	ruFieldType      protowire.Number = 2
	ruFieldValue     protowire.Number = 3
	ruFieldTimestamp protowire.Number = 4
)

func encodeRowUpdate(u RowUpdate) []byte {
	w := newFieldWriter()
	w.string(ruFieldName, u.AttributeName)
	w.varint(ruFieldType, uint64(u.Type))
	w.message(ruFieldValue, encodeAttrCell(u.Value))
	if u.HasTimestamp {
		w.int64(ruFieldTimestamp, u.TimestampMicro)
	}
	return w.bytesOrNil()
}

func decodeRowUpdate(buf []byte) (RowUpdate, error) {
	var u RowUpdate
	err := readAll(buf, func(num protowire.Number, typ protowire.Type, raw []byte, u64 uint64) error {
		switch num {
		case ruFieldName:
			u.AttributeName = string(raw)
		case ruFieldType:
			u.Type = int(u64)
		case ruFieldValue:
			v, err := decodeAttrCell(raw)
			if err != nil {
				return err
			}
			u.Value = v
		case ruFieldTimestamp:
			u.HasTimestamp = true
			u.TimestampMicro = int64(u64)
		}
		return nil
	})
	return u, err
}

type UpdateRowRequest struct {
	TableName  string
	PrimaryKey []PKCell
	Updates    []RowUpdate
	Condition  Condition
}

const (
	urFieldTableName protowire.Number = 1
	urFieldPK        protowire.Number = 2
	urFieldUpdates   protowire.Number = 3
	urFieldCondition protowire.Number = 4
)

func (r *UpdateRowRequest) Marshal() ([]byte, error) {
	w := newFieldWriter()
	w.string(urFieldTableName, r.TableName)
	pkBuf, err := EncodePrimaryKey(r.PrimaryKey)
	if err != nil {
		return nil, err
	}
	w.message(urFieldPK, pkBuf)
	for _, u := range r.Updates {
		w.message(urFieldUpdates, encodeRowUpdate(u))
	}
	w.message(urFieldCondition, encodeCondition(r.Condition))
	return w.bytesOrNil(), nil
}

func UnmarshalUpdateRowRequest(buf []byte) (*UpdateRowRequest, error) {
	r := &UpdateRowRequest{}
	err := readAll(buf, func(num protowire.Number, typ protowire.Type, raw []byte, u64 uint64) error {
		switch num {
		case urFieldTableName:
			r.TableName = string(raw)
		case urFieldPK:
			cells, err := DecodePrimaryKey(raw)
			if err != nil {
				return err
			}
			r.PrimaryKey = cells
		case urFieldUpdates:
			u, err := decodeRowUpdate(raw)
			if err != nil {
				return err
			}
			r.Updates = append(r.Updates, u)
		case urFieldCondition:
			c, err := decodeCondition(raw)
			if err != nil {
				return err
			}
			r.Condition = c
		}
		return nil
	})
	return r, err
}

type UpdateRowResponse struct {
	Consumed Consumed
}

func (r *UpdateRowResponse) Marshal() ([]byte, error) {
	w := newFieldWriter()
	w.message(1, encodeConsumed(r.Consumed))
	return w.bytesOrNil(), nil
}

func UnmarshalUpdateRowResponse(buf []byte) (*UpdateRowResponse, error) {
	r := &UpdateRowResponse{}
	err := readAll(buf, func(num protowire.Number, typ protowire.Type, raw []byte, u64 uint64) error {
		if num == 1 {
			c, err := decodeConsumed(raw)
			if err != nil {
				return err
			}
			r.Consumed = c
		}
		return nil
	})
	return r, err
}

// --- DeleteRow ---

type DeleteRowRequest struct {
	TableName  string
	PrimaryKey []PKCell
	Condition  Condition
}

const (
	drFieldTableName protowire.Number = 1
	drFieldPK        protowire.Number = 2
	drFieldCondition protowire.Number = 3
)

func (r *DeleteRowRequest) Marshal() ([]byte, error) {
	w := newFieldWriter()
	w.string(drFieldTableName, r.TableName)
	pkBuf, err := EncodePrimaryKey(r.PrimaryKey)
	if err != nil {
		return nil, err
	}
	w.message(drFieldPK, pkBuf)
	w.message(drFieldCondition, encodeCondition(r.Condition))
	return w.bytesOrNil(), nil
}

func UnmarshalDeleteRowRequest(buf []byte) (*DeleteRowRequest, error) {
	r := &DeleteRowRequest{}
	err := readAll(buf, func(num protowire.Number, typ protowire.Type, raw []byte, u64 uint64) error {
		switch num {
		case drFieldTableName:
			r.TableName = string(raw)
		case drFieldPK:
			cells, err := DecodePrimaryKey(raw)
			if err != nil {
				return err
			}
			r.PrimaryKey = cells
		case drFieldCondition:
			c, err := decodeCondition(raw)
			if err != nil {
				return err
			}
			r.Condition = c
		}
		return nil
	})
	return r, err
}

type DeleteRowResponse struct {
	Consumed Consumed
}

func (r *DeleteRowResponse) Marshal() ([]byte, error) {
	w := newFieldWriter()
	w.message(1, encodeConsumed(r.Consumed))
	return w.bytesOrNil(), nil
}

func UnmarshalDeleteRowResponse(buf []byte) (*DeleteRowResponse, error) {
	r := &DeleteRowResponse{}
	err := readAll(buf, func(num protowire.Number, typ protowire.Type, raw []byte, u64 uint64) error {
		if num == 1 {
			c, err := decodeConsumed(raw)
			if err != nil {
				return err
			}
			r.Consumed = c
		}
		return nil
	})
	return r, err
}
