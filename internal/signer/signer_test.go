// Copyright The wcs-go Authors
// SPDX-License-Identifier: Apache-2.0

package signer

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSignIsDeterministic(t *testing.T) {
	// spec §8 property 2: identical inputs always produce an identical
	// signature.
	headers := map[string]string{
		"x-ots-date":          "2024-01-01T00:00:00.000Z",
		"x-ots-apiversion":    "2015-12-31",
		"x-ots-accesskeyid":   "AK",
		"x-ots-instancename":  "inst",
		"x-ots-contentmd5":    "deadbeef==",
		"content-type":        "application/x-protobuf", // not an x-ots- header, excluded
	}

	a := Sign("secret", "/PutRow", headers)
	b := Sign("secret", "/PutRow", headers)
	assert.Equal(t, a, b)
	assert.NotEmpty(t, a)
}

func TestSignChangesWithPathOrHeaders(t *testing.T) {
	headers := map[string]string{"x-ots-date": "d"}
	base := Sign("secret", "/PutRow", headers)

	assert.NotEqual(t, base, Sign("secret", "/GetRow", headers))
	assert.NotEqual(t, base, Sign("othersecret", "/PutRow", headers))

	headers2 := map[string]string{"x-ots-date": "d2"}
	assert.NotEqual(t, base, Sign("secret", "/PutRow", headers2))
}

func TestCanonicalHeadersExcludesNonOtsHeaders(t *testing.T) {
	headers := map[string]string{
		"x-ots-date":   "d",
		"Content-Type": "application/x-protobuf",
	}
	canon := CanonicalHeaders(headers)
	assert.Contains(t, canon, "x-ots-date:d\n")
	assert.NotContains(t, canon, "content-type")
}

func TestCanonicalHeadersAreSorted(t *testing.T) {
	headers := map[string]string{
		"x-ots-zzz": "1",
		"x-ots-aaa": "2",
	}
	canon := CanonicalHeaders(headers)
	require.True(t, indexOf(canon, "x-ots-aaa") < indexOf(canon, "x-ots-zzz"))
}

func TestVerifyRoundTrip(t *testing.T) {
	headers := map[string]string{"x-ots-date": "d"}
	sig := Sign("secret", "/PutRow", headers)
	assert.True(t, Verify("secret", "/PutRow", headers, sig))
	assert.False(t, Verify("secret", "/PutRow", headers, sig+"x"))
}

func indexOf(s, substr string) int {
	for i := 0; i+len(substr) <= len(s); i++ {
		if s[i:i+len(substr)] == substr {
			return i
		}
	}
	return -1
}
