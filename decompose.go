package cidrmerge

import (
	rnet "github.com/Ramzeth/cidrmerge/net"
)

// Decompose splits iv into the fewest CIDR blocks whose union is exactly iv,
// in ascending order.
//
// Each step emits the largest block that starts at the current low address:
// its size is bounded by the alignment of low (its lowest set bit) and by the
// number of addresses left. Any other first block would have to be smaller,
// so the greedy choice is never beaten.
func Decompose[T rnet.Number[T]](iv Interval[T]) []Block[T] {
	var zero T
	if iv.Full() {
		// A block of 2^width addresses is not representable in width bits.
		return []Block[T]{{Base: zero, Bits: 0}}
	}
	width := zero.Bits()
	one := rnet.One[T]()

	var blocks []Block[T]
	low := iv.Low
	for {
		// Not the full range, so remaining <= 2^width - 1 and Len() <= width.
		remaining := iv.High.Sub(low).Inc()
		k := remaining.Len() - 1
		if align := low.TrailingZeros(); align < k {
			k = align
		}
		blocks = append(blocks, Block[T]{Base: low, Bits: width - k})

		// low is aligned to 2^k, so the block ends at low with its k low bits set.
		last := low.Or(rnet.Pow2[T](k).Sub(one))
		if last == iv.High {
			return blocks
		}
		low = last.Inc()
	}
}

// CoverIntervals decomposes each interval of a normalized list and
// concatenates the blocks in order.
func CoverIntervals[T rnet.Number[T]](intervals []Interval[T]) []Block[T] {
	var blocks []Block[T]
	for _, iv := range intervals {
		blocks = append(blocks, Decompose(iv)...)
	}
	return blocks
}
