// Copyright The wcs-go Authors
// SPDX-License-Identifier: Apache-2.0

package codec

import "google.golang.org/protobuf/encoding/protowire"

// --- CreateTable ---

type CreateTableRequest struct {
	TableName        string
	Schema           []PKColumnSchema
	Options          TableOptions
	ShardSplitPoints [][]PKCell
}

const (
	ctFieldTableName protowire.Number = 1
	ctFieldSchema    protowire.Number = 2
	ctFieldOptions   protowire.Number = 3
	ctFieldSplit     protowire.Number = 4
)

func (r *CreateTableRequest) Marshal() ([]byte, error) {
	w := newFieldWriter()
	w.string(ctFieldTableName, r.TableName)
	for _, s := range r.Schema {
		w.message(ctFieldSchema, encodeSchema(s))
	}
	w.message(ctFieldOptions, encodeTableOptions(r.Options))
	for _, p := range r.ShardSplitPoints {
		pw := newFieldWriter()
		for _, c := range p {
			pw.message(1, encodePKCell(c))
		}
		w.message(ctFieldSplit, pw.bytesOrNil())
	}
	return w.bytesOrNil(), nil
}

func UnmarshalCreateTableRequest(buf []byte) (*CreateTableRequest, error) {
	r := &CreateTableRequest{}
	err := readAll(buf, func(num protowire.Number, typ protowire.Type, raw []byte, u64 uint64) error {
		switch num {
		case ctFieldTableName:
			r.TableName = string(raw)
		case ctFieldSchema:
			s, err := decodeSchema(raw)
			if err != nil {
				return err
			}
			r.Schema = append(r.Schema, s)
		case ctFieldOptions:
			o, err := decodeTableOptions(raw)
			if err != nil {
				return err
			}
			r.Options = o
		case ctFieldSplit:
			cells, err := DecodePrimaryKey(raw)
			if err != nil {
				return err
			}
			r.ShardSplitPoints = append(r.ShardSplitPoints, cells)
		}
		return nil
	})
	return r, err
}

// CreateTableResponse carries no fields beyond the envelope.
type CreateTableResponse struct{}

func (r *CreateTableResponse) Marshal() ([]byte, error)             { return []byte{}, nil }
func UnmarshalCreateTableResponse(buf []byte) (*CreateTableResponse, error) {
	return &CreateTableResponse{}, nil
}

// --- ListTable ---

type ListTableRequest struct{}

func (r *ListTableRequest) Marshal() ([]byte, error) { return []byte{}, nil }
func UnmarshalListTableRequest(buf []byte) (*ListTableRequest, error) {
	return &ListTableRequest{}, nil
}

type ListTableResponse struct {
	TableNames []string
}

func (r *ListTableResponse) Marshal() ([]byte, error) {
	w := newFieldWriter()
	encodeStrings(w, 1, r.TableNames)
	return w.bytesOrNil(), nil
}

func UnmarshalListTableResponse(buf []byte) (*ListTableResponse, error) {
	r := &ListTableResponse{}
	err := readAll(buf, func(num protowire.Number, typ protowire.Type, raw []byte, u64 uint64) error {
		if num == 1 {
			r.TableNames = append(r.TableNames, string(raw))
		}
		return nil
	})
	return r, err
}

// --- DescribeTable ---

type DescribeTableRequest struct {
	TableName string
}

func (r *DescribeTableRequest) Marshal() ([]byte, error) {
	w := newFieldWriter()
	w.string(1, r.TableName)
	return w.bytesOrNil(), nil
}

func UnmarshalDescribeTableRequest(buf []byte) (*DescribeTableRequest, error) {
	r := &DescribeTableRequest{}
	err := readAll(buf, func(num protowire.Number, typ protowire.Type, raw []byte, u64 uint64) error {
		if num == 1 {
			r.TableName = string(raw)
		}
		return nil
	})
	return r, err
}

type DescribeTableResponse struct {
	TableName string
	Schema    []PKColumnSchema
	Options   TableOptions
}

const (
	dtFieldTableName protowire.Number = 1
	dtFieldSchema    protowire.Number = 2
	dtFieldOptions   protowire.Number = 3
)

func (r *DescribeTableResponse) Marshal() ([]byte, error) {
	w := newFieldWriter()
	w.string(dtFieldTableName, r.TableName)
	for _, s := range r.Schema {
		w.message(dtFieldSchema, encodeSchema(s))
	}
	w.message(dtFieldOptions, encodeTableOptions(r.Options))
	return w.bytesOrNil(), nil
}

func UnmarshalDescribeTableResponse(buf []byte) (*DescribeTableResponse, error) {
	r := &DescribeTableResponse{}
	err := readAll(buf, func(num protowire.Number, typ protowire.Type, raw []byte, u64 uint64) error {
		switch num {
		case dtFieldTableName:
			r.TableName = string(raw)
		case dtFieldSchema:
			s, err := decodeSchema(raw)
			if err != nil {
				return err
			}
			r.Schema = append(r.Schema, s)
		case dtFieldOptions:
			o, err := decodeTableOptions(raw)
			if err != nil {
				return err
			}
			r.Options = o
		}
		return nil
	})
	return r, err
}

// --- DeleteTable ---

type DeleteTableRequest struct {
	TableName string
}

func (r *DeleteTableRequest) Marshal() ([]byte, error) {
	w := newFieldWriter()
	w.string(1, r.TableName)
	return w.bytesOrNil(), nil
}

func UnmarshalDeleteTableRequest(buf []byte) (*DeleteTableRequest, error) {
	r := &DeleteTableRequest{}
	err := readAll(buf, func(num protowire.Number, typ protowire.Type, raw []byte, u64 uint64) error {
		if num == 1 {
			r.TableName = string(raw)
		}
		return nil
	})
	return r, err
}

type DeleteTableResponse struct{}

func (r *DeleteTableResponse) Marshal() ([]byte, error) { return []byte{}, nil }
func UnmarshalDeleteTableResponse(buf []byte) (*DeleteTableResponse, error) {
	return &DeleteTableResponse{}, nil
}

// --- UpdateTable ---

type UpdateTableRequest struct {
	TableName string
	Options   TableOptions
}

const (
	utFieldTableName protowire.Number = 1
	utFieldOptions   protowire.Number = 2
)

func (r *UpdateTableRequest) Marshal() ([]byte, error) {
	w := newFieldWriter()
	w.string(utFieldTableName, r.TableName)
	w.message(utFieldOptions, encodeTableOptions(r.Options))
	return w.bytesOrNil(), nil
}

func UnmarshalUpdateTableRequest(buf []byte) (*UpdateTableRequest, error) {
	r := &UpdateTableRequest{}
	err := readAll(buf, func(num protowire.Number, typ protowire.Type, raw []byte, u64 uint64) error {
		switch num {
		case utFieldTableName:
			r.TableName = string(raw)
		case utFieldOptions:
			o, err := decodeTableOptions(raw)
			if err != nil {
				return err
			}
			r.Options = o
		}
		return nil
	})
	return r, err
}

type UpdateTableResponse struct {
	Options TableOptions
}

func (r *UpdateTableResponse) Marshal() ([]byte, error) {
	w := newFieldWriter()
	w.message(1, encodeTableOptions(r.Options))
	return w.bytesOrNil(), nil
}

func UnmarshalUpdateTableResponse(buf []byte) (*UpdateTableResponse, error) {
	r := &UpdateTableResponse{}
	err := readAll(buf, func(num protowire.Number, typ protowire.Type, raw []byte, u64 uint64) error {
		if num == 1 {
			o, err := decodeTableOptions(raw)
			if err != nil {
				return err
			}
			r.Options = o
		}
		return nil
	})
	return r, err
}

// --- ComputeSplitPointsBySize ---

type ComputeSplitPointsBySizeRequest struct {
	TableName  string
	SplitSize  int64 // in 100MB units, per spec §4.2
}

const (
	cspFieldTableName protowire.Number = 1
	cspFieldSplitSize protowire.Number = 2
)

func (r *ComputeSplitPointsBySizeRequest) Marshal() ([]byte, error) {
	w := newFieldWriter()
	w.string(cspFieldTableName, r.TableName)
	w.int64(cspFieldSplitSize, r.SplitSize)
	return w.bytesOrNil(), nil
}

func UnmarshalComputeSplitPointsBySizeRequest(buf []byte) (*ComputeSplitPointsBySizeRequest, error) {
	r := &ComputeSplitPointsBySizeRequest{}
	err := readAll(buf, func(num protowire.Number, typ protowire.Type, raw []byte, u64 uint64) error {
		switch num {
		case cspFieldTableName:
			r.TableName = string(raw)
		case cspFieldSplitSize:
			r.SplitSize = int64(u64)
		}
		return nil
	})
	return r, err
}

type ComputeSplitPointsBySizeResponse struct {
	Schema []PKColumnSchema
	Splits [][2][]PKCell // [lower, upper] pairs
}

const (
	respFieldSchema protowire.Number = 1
	respFieldSplit  protowire.Number = 2
)

func (r *ComputeSplitPointsBySizeResponse) Marshal() ([]byte, error) {
	w := newFieldWriter()
	for _, s := range r.Schema {
		w.message(respFieldSchema, encodeSchema(s))
	}
	for _, pair := range r.Splits {
		sw := newFieldWriter()
		lw := newFieldWriter()
		for _, c := range pair[0] {
			lw.message(1, encodePKCell(c))
		}
		sw.message(1, lw.bytesOrNil())
		uw := newFieldWriter()
		for _, c := range pair[1] {
			uw.message(1, encodePKCell(c))
		}
		sw.message(2, uw.bytesOrNil())
		w.message(respFieldSplit, sw.bytesOrNil())
	}
	return w.bytesOrNil(), nil
}

func UnmarshalComputeSplitPointsBySizeResponse(buf []byte) (*ComputeSplitPointsBySizeResponse, error) {
	r := &ComputeSplitPointsBySizeResponse{}
	err := readAll(buf, func(num protowire.Number, typ protowire.Type, raw []byte, u64 uint64) error {
		switch num {
		case respFieldSchema:
			s, err := decodeSchema(raw)
			if err != nil {
				return err
			}
			r.Schema = append(r.Schema, s)
		case respFieldSplit:
			var lower, upper []PKCell
			err := readAll(raw, func(n protowire.Number, t protowire.Type, rr []byte, u uint64) error {
				switch n {
				case 1:
					cells, err := DecodePrimaryKey(rr)
					if err != nil {
						return err
					}
					lower = cells
				case 2:
					cells, err := DecodePrimaryKey(rr)
					if err != nil {
						return err
					}
					upper = cells
				}
				return nil
			})
			if err != nil {
				return err
			}
			r.Splits = append(r.Splits, [2][]PKCell{lower, upper})
		}
		return nil
	})
	return r, err
}
