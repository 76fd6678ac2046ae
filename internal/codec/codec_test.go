// Copyright The wcs-go Authors
// SPDX-License-Identifier: Apache-2.0

package codec

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestRowRoundTrip(t *testing.T) {
	pk := []PKCell{
		{Name: "pk0", Variant: VariantInteger, Int: 42},
		{Name: "pk1", Variant: VariantString, Bytes: []byte("shard-a")},
	}
	attrs := []AttrCell{
		{Name: "col_int", Variant: VariantInteger, Int: -7},
		{Name: "col_bool", Variant: VariantBoolean, Bool: true},
		{Name: "col_float", Variant: VariantFloat, Float: 3.5},
		{Name: "col_ts", Variant: VariantString, Bytes: []byte("v"), HasTimestamp: true, TimestampMicro: 123456},
	}

	buf, err := EncodeRow(pk, attrs)
	require.NoError(t, err)

	gotPK, gotAttrs, err := DecodeRow(buf)
	require.NoError(t, err)
	require.Equal(t, pk, gotPK)
	require.Equal(t, attrs, gotAttrs)
}

func TestDecodeRowRejectsEmptyPrimaryKey(t *testing.T) {
	buf, err := EncodeRow(nil, []AttrCell{{Name: "a", Variant: VariantInteger, Int: 1}})
	require.NoError(t, err)
	_, _, err = DecodeRow(buf)
	require.Error(t, err)
}

func TestColumnConditionTreeRoundTrip(t *testing.T) {
	tree := &ColumnCondition{
		Op: 1, // And
		Children: []*ColumnCondition{
			{IsLeaf: true, ColumnName: "status", Rel: 0, Value: AttrCell{Variant: VariantString, Bytes: []byte("active")}},
			{IsLeaf: true, ColumnName: "score", Rel: 4, Value: AttrCell{Variant: VariantInteger, Int: 10}, PassIfMissing: true},
		},
	}
	buf := EncodeColumnCondition(tree)
	got, err := DecodeColumnCondition(buf)
	require.NoError(t, err)
	require.Equal(t, tree, got)
}

func TestCreateTableRequestRoundTrip(t *testing.T) {
	read, write := int64(100), int64(50)
	req := &CreateTableRequest{
		TableName: "orders",
		Schema: []PKColumnSchema{
			{Name: "shard", Type: 1},
			{Name: "id", Type: 0, AutoIncrement: true},
		},
		Options: TableOptions{
			ReservedRead: &read, ReservedWrite: &write,
			TimeToLiveSeconds: -1, MaxVersions: 1, BlockSize: 64, MaxTimeDeviationSec: 86400,
		},
		ShardSplitPoints: [][]PKCell{
			{{Name: "shard", Variant: VariantString, Bytes: []byte("m")}},
		},
	}
	buf, err := req.Marshal()
	require.NoError(t, err)
	got, err := UnmarshalCreateTableRequest(buf)
	require.NoError(t, err)
	require.Equal(t, req, got)
}

func TestGetRangeRequestResponseRoundTrip(t *testing.T) {
	req := &GetRangeRequest{
		TableName:    "orders",
		Direction:    0,
		ColumnsToGet: []string{"amount", "status"},
		Start:        []PKCell{{Name: "shard", Variant: VariantInfMin}},
		End:          []PKCell{{Name: "shard", Variant: VariantInfMax}},
		Limit:        100,
		MaxVersions:  1,
		Token:        []byte("cursor-1"),
	}
	buf, err := req.Marshal()
	require.NoError(t, err)
	got, err := UnmarshalGetRangeRequest(buf)
	require.NoError(t, err)
	require.Equal(t, req, got)

	resp := &GetRangeResponse{
		Consumed: Consumed{ReadUnits: 3},
		Rows: []RowMsg{
			{
				PrimaryKey: []PKCell{{Name: "shard", Variant: VariantString, Bytes: []byte("a")}},
				Attributes: []AttrCell{{Name: "amount", Variant: VariantInteger, Int: 10}},
			},
		},
		NextToken: []byte("cursor-2"),
	}
	rbuf, err := resp.Marshal()
	require.NoError(t, err)
	gotResp, err := UnmarshalGetRangeResponse(rbuf)
	require.NoError(t, err)
	require.Equal(t, resp, gotResp)
}

func TestBatchWriteRowRoundTrip(t *testing.T) {
	req := &BatchWriteRowRequest{
		Items: []BatchWriteItem{
			{
				TableName:  "orders",
				OpType:     0,
				PrimaryKey: []PKCell{{Name: "id", Variant: VariantInteger, Int: 1}},
				Attributes: []AttrCell{{Name: "status", Variant: VariantString, Bytes: []byte("new")}},
			},
			{
				TableName:  "orders",
				OpType:     2,
				PrimaryKey: []PKCell{{Name: "id", Variant: VariantInteger, Int: 2}},
				Condition:  Condition{RowExistence: 1},
			},
		},
	}
	buf, err := req.Marshal()
	require.NoError(t, err)
	got, err := UnmarshalBatchWriteRowRequest(buf)
	require.NoError(t, err)
	require.Equal(t, req, got)

	resp := &BatchWriteRowResponse{
		Items: []BatchItemResult{
			{TableName: "orders", Succeeded: true, Consumed: Consumed{WriteUnits: 1}},
			{TableName: "orders", Succeeded: false, ErrorCode: "OTSConditionCheckFail", ErrorMsg: "condition check failed"},
		},
	}
	rbuf, err := resp.Marshal()
	require.NoError(t, err)
	gotResp, err := UnmarshalBatchWriteRowResponse(rbuf)
	require.NoError(t, err)
	require.Equal(t, resp, gotResp)
}
