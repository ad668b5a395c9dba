package cidrmerge

import (
	"net/netip"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	rnet "github.com/Ramzeth/cidrmerge/net"
)

func prefixStrings(prefixes []netip.Prefix) []string {
	out := make([]string, 0, len(prefixes))
	for _, p := range prefixes {
		out = append(out, p.String())
	}
	return out
}

func TestCover(t *testing.T) {
	cases := []struct {
		version   rnet.IPVersion
		lines     []string
		expected  []string
		intervals int
		skipped   []string
		name      string
	}{
		{rnet.IPv4, []string{"10.0.0.0/8", "10.1.0.0/16"}, []string{"10.0.0.0/8"}, 1, nil, "nested"},
		{rnet.IPv4, []string{"192.168.0.0/24", "192.168.1.0/24"}, []string{"192.168.0.0/23"}, 1, nil, "adjacent"},
		{rnet.IPv4, []string{"0.0.0.0/0"}, []string{"0.0.0.0/0"}, 1, nil, "whole space"},
		{rnet.IPv6, []string{"2001:db8::/33", "2001:db8:8000::/33"}, []string{"2001:db8::/32"}, 1, nil, "adjacent IPv6 halves"},
		{
			rnet.IPv4,
			[]string{"10.0.0.0/24", "not-a-cidr", "10.0.1.0/24"},
			[]string{"10.0.0.0/23"},
			1,
			[]string{"not-a-cidr"},
			"malformed line skipped",
		},
		{rnet.IPv4, nil, []string{}, 0, nil, "no input"},
		{rnet.IPv6, []string{"::/0", "2001:db8::/32"}, []string{"::/0"}, 1, nil, "whole IPv6 space"},
		{rnet.IPv6, []string{"ffff::/16", "8000::/1"}, []string{"8000::/1"}, 1, nil, "ends at top of IPv6 space"},
		{
			rnet.IPv4,
			[]string{"2001:db8::/32", "10.0.0.0/8"},
			[]string{"10.0.0.0/8"},
			1,
			[]string{"2001:db8::/32"},
			"other family skipped",
		},
		{
			rnet.IPv6,
			[]string{"2001:db8::/32", "10.0.0.0/8"},
			[]string{"2001:db8::/32"},
			1,
			[]string{"10.0.0.0/8"},
			"other family skipped IPv6",
		},
		{
			rnet.IPv4,
			[]string{"10.0.0.0/24", "10.0.2.0/24", "10.0.1.0/24"},
			[]string{"10.0.0.0/23", "10.0.2.0/24"},
			1,
			nil,
			"unordered input",
		},
		{
			rnet.IPv4,
			[]string{"10.0.0.0/24", "10.0.5.0/24"},
			[]string{"10.0.0.0/24", "10.0.5.0/24"},
			2,
			nil,
			"disjoint",
		},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			c, err := Cover(tc.version, tc.lines)
			require.NoError(t, err)
			assert.Equal(t, tc.version, c.Version)
			assert.Equal(t, tc.expected, prefixStrings(c.Prefixes))
			assert.Equal(t, tc.intervals, c.Intervals)

			skipped := make([]string, 0, len(c.Skipped))
			for _, e := range c.Skipped {
				assert.ErrorIs(t, e, ErrMalformedBlock)
				skipped = append(skipped, e.Line)
			}
			if tc.skipped == nil {
				assert.Empty(t, skipped)
			} else {
				assert.Equal(t, tc.skipped, skipped)
			}
			assert.Len(t, c.Inputs, len(tc.lines)-len(c.Skipped))
		})
	}
}

func TestCoverInputsMasked(t *testing.T) {
	c, err := Cover(rnet.IPv4, []string{"192.168.1.77/24", "10.0.0.1/32"})
	require.NoError(t, err)
	assert.Equal(t, []string{"192.168.1.0/24", "10.0.0.1/32"}, prefixStrings(c.Inputs))
}

func TestCoverInvalidVersion(t *testing.T) {
	for _, v := range []rnet.IPVersion{2, 5, -1} {
		t.Run(v.String(), func(t *testing.T) {
			c, err := Cover(v, []string{"10.0.0.0/8"})
			assert.Nil(t, c)
			assert.ErrorIs(t, err, rnet.ErrInvalidIPVersion)
		})
	}
}
