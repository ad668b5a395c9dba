package cidrmerge

import (
	"fmt"
	"net/netip"

	rnet "github.com/Ramzeth/cidrmerge/net"
)

// FamilyCover is the minimal cover computed for one address family.
type FamilyCover struct {
	Version rnet.IPVersion

	// Prefixes is the minimal cover, ascending and pairwise disjoint.
	Prefixes []netip.Prefix

	// Inputs holds every successfully parsed input block, host bits cleared,
	// in input order.
	Inputs []netip.Prefix

	// Skipped holds one error per unparsable line.
	Skipped []*BlockError

	// Intervals is the number of disjoint intervals after normalization.
	Intervals int
}

// Cover parses lines as CIDR blocks of the given family and returns their
// minimal cover. Unparsable lines are recorded in Skipped; no lines at all
// yields an empty cover.
func Cover(version rnet.IPVersion, lines []string) (*FamilyCover, error) {
	if !version.Valid() {
		return nil, fmt.Errorf("%w: %s", rnet.ErrInvalidIPVersion, version)
	}
	if version == rnet.IPv6 {
		return coverFamily[rnet.Uint128](lines), nil
	}
	return coverFamily[rnet.Uint32](lines), nil
}

func coverFamily[T rnet.Number[T]](lines []string) *FamilyCover {
	c := &FamilyCover{Version: rnet.Version[T]()}
	intervals := make([]Interval[T], 0, len(lines))
	for _, line := range lines {
		b, err := parseCIDR[T](line)
		if err != nil {
			c.Skipped = append(c.Skipped, err)
			continue
		}
		c.Inputs = append(c.Inputs, b.Prefix())
		intervals = append(intervals, b.Interval())
	}

	merged := Normalize(intervals)
	c.Intervals = len(merged)
	blocks := CoverIntervals(merged)
	c.Prefixes = make([]netip.Prefix, 0, len(blocks))
	for _, b := range blocks {
		c.Prefixes = append(c.Prefixes, b.Prefix())
	}
	return c
}
