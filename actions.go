// Copyright The wcs-go Authors
// SPDX-License-Identifier: Apache-2.0

package wcs

// Action is the closed enumeration of the 13 API kinds (spec §3). Each
// Action carries a fixed wire path (spec §6) and a fixed idempotency
// classification (spec §4.3) used by the retry policy.
type Action int

const (
	ActionCreateTable Action = iota
	ActionListTable
	ActionDescribeTable
	ActionDeleteTable
	ActionUpdateTable
	ActionGetRow
	ActionPutRow
	ActionUpdateRow
	ActionDeleteRow
	ActionBatchGetRow
	ActionBatchWriteRow
	ActionGetRange
	ActionComputeSplitPointsBySize
)

// String implements fmt.Stringer.
func (a Action) String() string {
	if s, ok := actionNames[a]; ok {
		return s
	}
	return "UnknownAction"
}

// Path returns the fixed wire path for the action (spec §6).
func (a Action) Path() string {
	return "/" + a.String()
}

// Idempotent reports whether the action may be safely re-issued on an
// ambiguous failure (spec §4.3).
func (a Action) Idempotent() bool {
	return idempotentActions[a]
}

var actionNames = map[Action]string{
	ActionCreateTable:              "CreateTable",
	ActionListTable:                "ListTable",
	ActionDescribeTable:            "DescribeTable",
	ActionDeleteTable:              "DeleteTable",
	ActionUpdateTable:              "UpdateTable",
	ActionGetRow:                   "GetRow",
	ActionPutRow:                   "PutRow",
	ActionUpdateRow:                "UpdateRow",
	ActionDeleteRow:                "DeleteRow",
	ActionBatchGetRow:              "BatchGetRow",
	ActionBatchWriteRow:            "BatchWriteRow",
	ActionGetRange:                 "GetRange",
	ActionComputeSplitPointsBySize: "ComputeSplitPointsBySize",
}

// idempotentActions lists the actions spec §4.3 classifies as
// idempotent. Everything else (UpdateTable, PutRow, UpdateRow,
// BatchWriteRow) is non-idempotent.
var idempotentActions = map[Action]bool{
	ActionListTable:                true,
	ActionDescribeTable:            true,
	ActionDeleteTable:              true,
	ActionCreateTable:              true,
	ActionComputeSplitPointsBySize: true,
	ActionGetRow:                   true,
	ActionBatchGetRow:              true,
	ActionGetRange:                 true,
	ActionDeleteRow:                true,
}
