// Copyright The wcs-go Authors
// SPDX-License-Identifier: Apache-2.0

package retry

import "time"

// None never retries (spec §4.3).
type None struct{}

// NewNone builds a None policy.
func NewNone() *None { return &None{} }

func (n *None) Clone() Policy            { return &None{} }
func (n *None) Retries() int             { return 0 }
func (n *None) ShouldRetry(Classification) bool { return false }
func (n *None) NextPause() time.Duration { return 0 }
