package cidrmerge

import (
	"fmt"
	"net"
	"net/netip"
	"sort"

	"github.com/yl2chen/cidranger"
)

// mappedPrefix is the IPv4-mapped IPv6 range, which the trie routes to its
// IPv4 side.
var mappedPrefix = netip.MustParsePrefix("::ffff:0:0/96")

// Verify cross-checks a cover against its inputs using an independent
// path-compressed trie: every input block must lie inside a single cover
// block, and the input blocks inside every cover block must chain without a
// gap from its first to its last address.
//
// IPv6 blocks overlapping the IPv4-mapped range ::ffff:0:0/96 are not
// checked.
func Verify(c *FamilyCover) error {
	covers := cidranger.NewPCTrieRanger()
	for _, p := range c.Prefixes {
		if p.Addr().Is4In6() {
			continue
		}
		if err := covers.Insert(cidranger.NewBasicRangerEntry(toIPNet(p))); err != nil {
			return fmt.Errorf("insert cover block %s: %w", p, err)
		}
	}
	inputs := cidranger.NewPCTrieRanger()
	for _, p := range c.Inputs {
		if p.Addr().Is4In6() {
			continue
		}
		if err := inputs.Insert(cidranger.NewBasicRangerEntry(toIPNet(p))); err != nil {
			return fmt.Errorf("insert input block %s: %w", p, err)
		}
	}

	for _, p := range c.Inputs {
		if p.Addr().Is4In6() {
			continue
		}
		entries, err := covers.ContainingNetworks(net.IP(p.Addr().AsSlice()))
		if err != nil {
			return err
		}
		if !containedIn(p, entries) {
			return fmt.Errorf("%w: input %s is not inside any cover block", ErrCoverMismatch, p)
		}
	}

	for _, p := range c.Prefixes {
		if p.Addr().Is6() && p.Overlaps(mappedPrefix) {
			continue
		}
		entries, err := inputs.CoveredNetworks(toIPNet(p))
		if err != nil {
			return err
		}
		if gap, ok := firstGap(p, entries); ok {
			return fmt.Errorf("%w: cover block %s reaches %s outside the input", ErrCoverMismatch, p, gap)
		}
	}
	return nil
}

// containedIn reports whether one of entries, all of which contain the first
// address of p, is at least as wide as p.
func containedIn(p netip.Prefix, entries []cidranger.RangerEntry) bool {
	for _, e := range entries {
		network := e.Network()
		if ones, _ := network.Mask.Size(); ones <= p.Bits() {
			return true
		}
	}
	return false
}

// firstGap walks the input blocks inside p in address order and returns the
// first address of p none of them covers.
func firstGap(p netip.Prefix, entries []cidranger.RangerEntry) (netip.Addr, bool) {
	blocks := make([]netip.Prefix, 0, len(entries))
	for _, e := range entries {
		blocks = append(blocks, fromIPNet(e.Network(), p.Addr().Is4()))
	}
	sort.Slice(blocks, func(i, j int) bool {
		if c := blocks[i].Addr().Compare(blocks[j].Addr()); c != 0 {
			return c < 0
		}
		return blocks[i].Bits() < blocks[j].Bits()
	})

	next := p.Masked().Addr()
	last := lastAddr(p)
	for _, b := range blocks {
		if b.Addr().Compare(next) > 0 {
			return next, true
		}
		end := lastAddr(b)
		if end.Compare(last) >= 0 {
			return netip.Addr{}, false
		}
		if end.Compare(next) >= 0 {
			next = end.Next()
		}
	}
	return next, true
}

func toIPNet(p netip.Prefix) net.IPNet {
	addr := p.Addr()
	return net.IPNet{
		IP:   net.IP(addr.AsSlice()),
		Mask: net.CIDRMask(p.Bits(), addr.BitLen()),
	}
}

func fromIPNet(n net.IPNet, is4 bool) netip.Prefix {
	addr, _ := netip.AddrFromSlice(n.IP)
	if is4 {
		addr = addr.Unmap()
	}
	ones, _ := n.Mask.Size()
	return netip.PrefixFrom(addr, ones)
}

// lastAddr returns the highest address of p.
func lastAddr(p netip.Prefix) netip.Addr {
	b := p.Masked().Addr().AsSlice()
	for i := p.Bits(); i < len(b)*8; i++ {
		b[i/8] |= 0x80 >> (i % 8)
	}
	addr, _ := netip.AddrFromSlice(b)
	return addr
}
