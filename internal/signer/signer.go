// Copyright The wcs-go Authors
// SPDX-License-Identifier: Apache-2.0

// Package signer implements the request signing scheme described in spec
// §4.4/§6: an HMAC-SHA1 digest, base64-encoded, over a canonical string
// built from the request path and its x-ots-* headers.
package signer

import (
	"crypto/hmac"
	"crypto/sha1"
	"encoding/base64"
	"sort"
	"strings"
)

// HeaderPrefix is the prefix that marks a header as part of the
// canonical signing string.
const HeaderPrefix = "x-ots-"

// Sign computes the request signature for the given action path and
// x-ots-* headers, using secret as the HMAC-SHA1 key.
//
// The canonical string is:
//
//	path + "\nPOST\n\n" + sorted("name:value\n" for each x-ots- header)
func Sign(secret string, path string, headers map[string]string) string {
	var b strings.Builder
	b.WriteString(path)
	b.WriteString("\nPOST\n\n")
	b.WriteString(CanonicalHeaders(headers))

	mac := hmac.New(sha1.New, []byte(secret))
	mac.Write([]byte(b.String()))
	return base64.StdEncoding.EncodeToString(mac.Sum(nil))
}

// CanonicalHeaders renders the x-ots-* subset of headers in the sorted,
// newline-terminated form the signature is computed over. Exported so
// callers can reuse it for diagnostics without recomputing a signature.
func CanonicalHeaders(headers map[string]string) string {
	names := make([]string, 0, len(headers))
	for name := range headers {
		if strings.HasPrefix(strings.ToLower(name), HeaderPrefix) {
			names = append(names, name)
		}
	}
	sort.Strings(names)

	var b strings.Builder
	for _, name := range names {
		b.WriteString(strings.ToLower(name))
		b.WriteString(":")
		b.WriteString(headers[name])
		b.WriteString("\n")
	}
	return b.String()
}

// Verify reports whether sig is the correct signature for path/headers
// under secret. Used by tests and by any server-side fixture; the client
// itself only ever calls Sign.
func Verify(secret, path string, headers map[string]string, sig string) bool {
	want := Sign(secret, path, headers)
	return hmac.Equal([]byte(want), []byte(sig))
}
