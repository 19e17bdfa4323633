// SPDX-License-Identifier: MIT
//
// Package bitint holds the power-of-two helpers used for FFT and buffer
// sizing. Both functions are constant time and allocation free.
package bitint

import "math/bits"

// NextPowerOfTwo returns the smallest power of two >= size. Powers of two
// map to themselves; zero and negative sizes return 1.
//
//	Input  Output
//	4      4
//	5      8
//	0      1
func NextPowerOfTwo(size int) int {
	if size <= 0 {
		return 1
	}
	// size-1 keeps exact powers of two from doubling.
	return 1 << bits.Len(uint(size-1))
}

// IsPowerOfTwo reports whether n is a positive power of two. A power of
// two has a single bit set, so clearing its lowest set bit leaves zero.
func IsPowerOfTwo(n int) bool {
	return n > 0 && n&(n-1) == 0
}
