// Copyright The wcs-go Authors
// SPDX-License-Identifier: Apache-2.0

package wcs

import (
	"crypto/rand"
	"math/big"
	mrand "math/rand"
	"time"
)

// newSeededRand seeds a PRNG from a cryptographically strong source, as
// spec §9 "Randomness" directs: retry jitter must not be predictable
// across client instances, even though it need not itself be
// cryptographically strong.
func newSeededRand() *mrand.Rand {
	max := new(big.Int).Lsh(big.NewInt(1), 63)
	n, err := rand.Int(rand.Reader, max)
	var seed int64
	if err != nil {
		// crypto/rand is documented to never fail on supported
		// platforms; fall back to a time-derived seed rather than
		// panic if it somehow does.
		seed = time.Now().UnixNano()
	} else {
		seed = n.Int64()
	}
	return mrand.New(mrand.NewSource(seed))
}
