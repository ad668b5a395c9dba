package cidrmerge

import (
	"math/rand"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	rnet "github.com/Ramzeth/cidrmerge/net"
)

func parseIntervals[T rnet.Number[T]](t *testing.T, lines ...string) []Interval[T] {
	intervals, skipped := ParseBlocks[T](lines)
	require.Empty(t, skipped)
	return intervals
}

func intervalStrings[T rnet.Number[T]](intervals []Interval[T]) []string {
	out := make([]string, 0, len(intervals))
	for _, iv := range intervals {
		out = append(out, iv.String())
	}
	return out
}

func TestNormalizeIPv4(t *testing.T) {
	cases := []struct {
		inputs   []string
		expected []string
		name     string
	}{
		{nil, []string{}, "empty"},
		{[]string{"10.0.0.0/8"}, []string{"10.0.0.0-10.255.255.255"}, "single"},
		{[]string{"10.0.0.0/8", "10.1.0.0/16"}, []string{"10.0.0.0-10.255.255.255"}, "nested"},
		{[]string{"10.1.0.0/16", "10.0.0.0/8"}, []string{"10.0.0.0-10.255.255.255"}, "nested reverse"},
		{[]string{"192.168.0.0/24", "192.168.1.0/24"}, []string{"192.168.0.0-192.168.1.255"}, "adjacent"},
		{[]string{"192.168.0.0/24", "192.168.2.0/24"}, []string{"192.168.0.0-192.168.0.255", "192.168.2.0-192.168.2.255"}, "gap"},
		{[]string{"1.1.1.1/32", "1.1.1.1/32"}, []string{"1.1.1.1-1.1.1.1"}, "duplicate"},
		{
			[]string{"255.255.255.255/32", "255.255.255.254/32", "0.0.0.0/32"},
			[]string{"0.0.0.0-0.0.0.0", "255.255.255.254-255.255.255.255"},
			"both ends of the space",
		},
		{[]string{"128.0.0.0/1", "0.0.0.0/1"}, []string{"0.0.0.0-255.255.255.255"}, "halves make the whole space"},
		{
			[]string{"10.0.0.0/24", "10.0.2.0/24", "10.0.1.0/24", "10.0.3.128/25"},
			[]string{"10.0.0.0-10.0.2.255", "10.0.3.128-10.0.3.255"},
			"chain",
		},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			merged := Normalize(parseIntervals[rnet.Uint32](t, tc.inputs...))
			assert.Equal(t, tc.expected, intervalStrings(merged))
		})
	}
}

func TestNormalizeIPv6(t *testing.T) {
	cases := []struct {
		inputs   []string
		expected []string
		name     string
	}{
		{[]string{"2001:db8::/33", "2001:db8:8000::/33"}, []string{"2001:db8::-2001:db8:ffff:ffff:ffff:ffff:ffff:ffff"}, "adjacent halves"},
		{
			[]string{"ffff::/16", "8000::/1"},
			[]string{"8000::-ffff:ffff:ffff:ffff:ffff:ffff:ffff:ffff"},
			"ends at top of space",
		},
		{
			[]string{"::/64", "0:0:0:1::/64"},
			[]string{"::-::1:ffff:ffff:ffff:ffff"},
			"adjacent across limb boundary",
		},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			merged := Normalize(parseIntervals[rnet.Uint128](t, tc.inputs...))
			assert.Equal(t, tc.expected, intervalStrings(merged))
		})
	}
}

func TestNormalizeDoesNotModifyInput(t *testing.T) {
	in := parseIntervals[rnet.Uint32](t, "10.2.0.0/16", "10.1.0.0/16", "10.0.0.0/16")
	snapshot := append([]Interval[rnet.Uint32](nil), in...)
	Normalize(in)
	assert.Equal(t, snapshot, in)
}

func TestNormalizeTopOfSpaceNoWrap(t *testing.T) {
	// A naive MAX+1 adjacency check would treat 0.0.0.0 as adjacent to MAX.
	in := []Interval[rnet.Uint32]{
		{Low: 0, High: 0},
		{Low: 0xffffff00, High: 0xffffffff},
	}
	assert.Equal(t, in, Normalize(in))

	in6 := []Interval[rnet.Uint128]{
		{Low: rnet.Uint128{}, High: rnet.Uint128{}},
		{Low: rnet.Uint128{Hi: ^uint64(0)}, High: rnet.Max[rnet.Uint128]()},
	}
	assert.Equal(t, in6, Normalize(in6))
}

func assertNormalized(t *testing.T, merged []Interval[rnet.Uint32]) {
	for i, iv := range merged {
		require.LessOrEqual(t, iv.Low, iv.High)
		if i == 0 {
			continue
		}
		prev := merged[i-1]
		require.NotEqual(t, rnet.Max[rnet.Uint32](), prev.High)
		// Strict gap: prev.High + 1 < iv.Low.
		require.Less(t, prev.High.Inc(), iv.Low, "intervals %s and %s touch", prev, iv)
	}
}

func TestNormalizeAgainstBrute(t *testing.T) {
	iterations := 2000
	if testing.Short() {
		iterations = 100
	}
	r := rand.New(rand.NewSource(7))
	for i := 0; i < iterations; i++ {
		window := randomWindow(r)
		in := randomBlocks(r, window, 1+r.Intn(40))
		if r.Intn(2) == 0 {
			in = append(in, randomInterval(r, window))
		}

		merged := Normalize(in)
		assertNormalized(t, merged)
		assert.Equal(t, bruteSetOf(in), bruteSetOf(merged), "union preserved")
		assert.Equal(t, merged, Normalize(merged), "idempotent")
	}
}
