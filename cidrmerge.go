/*
Package cidrmerge computes the minimal CIDR cover of a set of IP networks.

Input networks may overlap, nest or touch. The result is the shortest sorted
list of non-overlapping CIDR blocks covering exactly the same addresses,
computed separately per address family.

To cover a list of IPv4 networks:

	cover, err := cidrmerge.Cover(rnet.IPv4, []string{"10.0.0.0/8", "10.1.0.0/16"})
	// cover.Prefixes == [10.0.0.0/8]

The stages are also available on their own, instantiated with the address
number type of the family (rnet.Uint32 for IPv4, rnet.Uint128 for IPv6):

	intervals, skipped := cidrmerge.ParseBlocks[rnet.Uint32](lines)
	merged := cidrmerge.Normalize(intervals)
	blocks := cidrmerge.CoverIntervals(merged)
*/
package cidrmerge

import (
	"fmt"
	"net/netip"

	rnet "github.com/Ramzeth/cidrmerge/net"
	"github.com/Ramzeth/cidrmerge/util/cidr"
	"github.com/Ramzeth/cidrmerge/util/ip"
)

// ErrMalformedBlock matches every error produced for an unparsable line.
var ErrMalformedBlock = fmt.Errorf("malformed block")

// ErrInvalidPrefixRange is the cause of a BlockError whose prefix length
// lies outside [0, width].
var ErrInvalidPrefixRange = cidr.ErrInvalidPrefixLength

// ErrMissingSeparator is the cause of a BlockError for a line without '/'.
var ErrMissingSeparator = fmt.Errorf("missing '/' separator")

// ErrCoverMismatch is returned by Verify when a cover does not match its input.
var ErrCoverMismatch = fmt.Errorf("cover mismatch")

// Interval is the closed range [Low, High] of addresses, Low <= High.
type Interval[T rnet.Number[T]] struct {
	Low  T
	High T
}

// Full reports whether the interval spans the whole address space.
func (iv Interval[T]) Full() bool {
	return iv.Low.IsZero() && iv.High == rnet.Max[T]()
}

func (iv Interval[T]) String() string {
	return fmt.Sprintf("%s-%s", ip.ToAddr(iv.Low), ip.ToAddr(iv.High))
}

// Block is the CIDR block Base/Bits. Base has no host bits set.
type Block[T rnet.Number[T]] struct {
	Base T
	Bits int
}

// Interval returns the addresses covered by the block.
func (b Block[T]) Interval() Interval[T] {
	first, last, _ := cidr.Range(b.Base, b.Bits)
	return Interval[T]{Low: first, High: last}
}

// Prefix returns the block in the family's native notation.
func (b Block[T]) Prefix() netip.Prefix {
	return netip.PrefixFrom(ip.ToAddr(b.Base), b.Bits)
}

func (b Block[T]) String() string {
	return b.Prefix().String()
}
