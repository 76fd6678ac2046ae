// Copyright The wcs-go Authors
// SPDX-License-Identifier: Apache-2.0

package retry

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestClassificationRetriable(t *testing.T) {
	cases := []struct {
		name string
		c    Classification
		want bool
	}{
		{"non-temporary", Classification{Temporary: false}, false},
		{"temporary-no-depends", Classification{Temporary: true}, true},
		{"depends-idempotent", Classification{Temporary: true, Depends: true, Idempotent: true}, true},
		{"depends-not-idempotent", Classification{Temporary: true, Depends: true, Idempotent: false}, false},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			assert.Equal(t, tc.want, tc.c.Retriable())
		})
	}
}

func TestDeadlinePolicyStopsAtDeadline(t *testing.T) {
	base := time.Unix(0, 0)
	now := base
	d := NewDeadline(50 * time.Millisecond)
	d.now = func() time.Time { return now }
	clone := d.Clone().(*Deadline)
	clone.now = func() time.Time { return now }

	require.True(t, clone.ShouldRetry(Classification{Temporary: true}))
	pause1 := clone.NextPause()
	assert.GreaterOrEqual(t, pause1, time.Duration(0))

	now = now.Add(60 * time.Millisecond)
	require.False(t, clone.ShouldRetry(Classification{Temporary: true}), "must not retry once now >= deadline")
}

func TestDeadlinePolicyDoublesBackoffUpToCap(t *testing.T) {
	d := NewDeadline(time.Hour)
	clone := d.Clone().(*Deadline)

	var last time.Duration
	for i := 0; i < 20; i++ {
		require.True(t, clone.ShouldRetry(Classification{Temporary: true}))
		p := clone.NextPause()
		assert.LessOrEqual(t, p, deadlineBaseCap)
		last = p
	}
	assert.LessOrEqual(t, last, deadlineBaseCap)
}

func TestDeadlineCloneIsIndependent(t *testing.T) {
	tmpl := NewDeadline(time.Second)
	a := tmpl.Clone().(*Deadline)
	b := tmpl.Clone().(*Deadline)

	a.ShouldRetry(Classification{Temporary: true})
	assert.Equal(t, 1, a.Retries())
	assert.Equal(t, 0, b.Retries())
}

func TestCountingPolicyBoundsRetries(t *testing.T) {
	c := NewCounting(2, 10*time.Millisecond).Clone().(*Counting)

	require.True(t, c.ShouldRetry(Classification{Temporary: true}))
	require.True(t, c.ShouldRetry(Classification{Temporary: true}))
	require.False(t, c.ShouldRetry(Classification{Temporary: true}), "must stop after MaxRetries")
	assert.Equal(t, 2, c.Retries())
}

func TestCountingPolicyPauseRange(t *testing.T) {
	c := NewCounting(5, 10*time.Millisecond).Clone().(*Counting)
	for i := 0; i < 50; i++ {
		p := c.NextPause()
		assert.GreaterOrEqual(t, p, 100*time.Microsecond)
		assert.LessOrEqual(t, p, 10*time.Millisecond)
	}
}

func TestNonePolicyNeverRetries(t *testing.T) {
	n := NewNone()
	assert.False(t, n.ShouldRetry(Classification{Temporary: true, Idempotent: true}))
	assert.Equal(t, time.Duration(0), n.NextPause())
	assert.Equal(t, 0, n.Retries())
}

func TestIdempotenceGatingScenario(t *testing.T) {
	// spec §8 property 5: a DEPENDS-class error on a non-idempotent
	// action must not be retried; on an idempotent action it must.
	depends := Classification{Temporary: true, Depends: true}

	nonIdempotent := depends
	nonIdempotent.Idempotent = false
	assert.False(t, nonIdempotent.Retriable())

	idempotent := depends
	idempotent.Idempotent = true
	assert.True(t, idempotent.Retriable())
}
