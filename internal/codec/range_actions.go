// Copyright The wcs-go Authors
// SPDX-License-Identifier: Apache-2.0

package codec

import "google.golang.org/protobuf/encoding/protowire"

// --- GetRange ---

type GetRangeRequest struct {
	TableName    string
	Direction    int // mirrors wcs.Direction
	ColumnsToGet []string
	Start        []PKCell
	End          []PKCell
	Limit        int64
	MaxVersions  int64
	TimeRange    *TimeRange
	Filter       *ColumnCondition
	Token        []byte // continuation token, empty on the first page
}

const (
	rangeFieldTableName protowire.Number = 1
	rangeFieldDirection protowire.Number = 2
	rangeFieldColumns   protowire.Number = 3
	rangeFieldStart     protowire.Number = 4
	rangeFieldEnd       protowire.Number = 5
	rangeFieldLimit     protowire.Number = 6
	rangeFieldMaxVer    protowire.Number = 7
	rangeFieldTimeRange protowire.Number = 8
	rangeFieldFilter    protowire.Number = 9
	rangeFieldToken     protowire.Number = 10
)

func (r *GetRangeRequest) Marshal() ([]byte, error) {
	w := newFieldWriter()
	w.string(rangeFieldTableName, r.TableName)
	w.varint(rangeFieldDirection, uint64(r.Direction))
	encodeStrings(w, rangeFieldColumns, r.ColumnsToGet)
	startBuf, err := EncodePrimaryKey(r.Start)
	if err != nil {
		return nil, err
	}
	w.message(rangeFieldStart, startBuf)
	endBuf, err := EncodePrimaryKey(r.End)
	if err != nil {
		return nil, err
	}
	w.message(rangeFieldEnd, endBuf)
	w.int64(rangeFieldLimit, r.Limit)
	w.int64(rangeFieldMaxVer, r.MaxVersions)
	if r.TimeRange != nil {
		w.message(rangeFieldTimeRange, encodeTimeRange(r.TimeRange))
	}
	if r.Filter != nil {
		w.message(rangeFieldFilter, EncodeColumnCondition(r.Filter))
	}
	if len(r.Token) > 0 {
		w.bytes(rangeFieldToken, r.Token)
	}
	return w.bytesOrNil(), nil
}

func UnmarshalGetRangeRequest(buf []byte) (*GetRangeRequest, error) {
	r := &GetRangeRequest{}
	err := readAll(buf, func(num protowire.Number, typ protowire.Type, raw []byte, u64 uint64) error {
		switch num {
		case rangeFieldTableName:
			r.TableName = string(raw)
		case rangeFieldDirection:
			r.Direction = int(u64)
		case rangeFieldColumns:
			r.ColumnsToGet = append(r.ColumnsToGet, string(raw))
		case rangeFieldStart:
			cells, err := DecodePrimaryKey(raw)
			if err != nil {
				return err
			}
			r.Start = cells
		case rangeFieldEnd:
			cells, err := DecodePrimaryKey(raw)
			if err != nil {
				return err
			}
			r.End = cells
		case rangeFieldLimit:
			r.Limit = int64(u64)
		case rangeFieldMaxVer:
			r.MaxVersions = int64(u64)
		case rangeFieldTimeRange:
			tr, err := decodeTimeRange(raw)
			if err != nil {
				return err
			}
			r.TimeRange = tr
		case rangeFieldFilter:
			f, err := DecodeColumnCondition(raw)
			if err != nil {
				return err
			}
			r.Filter = f
		case rangeFieldToken:
			r.Token = append([]byte(nil), raw...)
		}
		return nil
	})
	return r, err
}

// GetRangeResponse carries one page of rows plus an opaque continuation
// token (empty when the scan is exhausted), per spec §4.7.
type GetRangeResponse struct {
	Consumed  Consumed
	Rows      []RowMsg
	NextToken []byte
}

// RowMsg is one row as returned in a GetRange/BatchGetRow response.
type RowMsg struct {
	PrimaryKey []PKCell
	Attributes []AttrCell
}

const (
	rangeRespFieldConsumed protowire.Number = 1
	rangeRespFieldRow      protowire.Number = 2
	rangeRespFieldToken    protowire.Number = 3
)

func encodeRowMsg(row RowMsg) ([]byte, error) {
	return EncodeRow(row.PrimaryKey, row.Attributes)
}

func decodeRowMsg(buf []byte) (RowMsg, error) {
	pk, attrs, err := DecodeRow(buf)
	if err != nil {
		return RowMsg{}, err
	}
	return RowMsg{PrimaryKey: pk, Attributes: attrs}, nil
}

func (r *GetRangeResponse) Marshal() ([]byte, error) {
	w := newFieldWriter()
	w.message(rangeRespFieldConsumed, encodeConsumed(r.Consumed))
	for _, row := range r.Rows {
		rowBuf, err := encodeRowMsg(row)
		if err != nil {
			return nil, err
		}
		w.message(rangeRespFieldRow, rowBuf)
	}
	if len(r.NextToken) > 0 {
		w.bytes(rangeRespFieldToken, r.NextToken)
	}
	return w.bytesOrNil(), nil
}

func UnmarshalGetRangeResponse(buf []byte) (*GetRangeResponse, error) {
	r := &GetRangeResponse{}
	err := readAll(buf, func(num protowire.Number, typ protowire.Type, raw []byte, u64 uint64) error {
		switch num {
		case rangeRespFieldConsumed:
			c, err := decodeConsumed(raw)
			if err != nil {
				return err
			}
			r.Consumed = c
		case rangeRespFieldRow:
			row, err := decodeRowMsg(raw)
			if err != nil {
				return err
			}
			r.Rows = append(r.Rows, row)
		case rangeRespFieldToken:
			r.NextToken = append([]byte(nil), raw...)
		}
		return nil
	})
	return r, err
}
