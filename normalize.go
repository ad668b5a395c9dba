package cidrmerge

import (
	"sort"

	rnet "github.com/Ramzeth/cidrmerge/net"
)

// Normalize returns the sorted, maximally merged form of intervals: pairwise
// disjoint, with a gap of at least one address between neighbours, covering
// the same addresses as the input. The input slice is not modified.
func Normalize[T rnet.Number[T]](intervals []Interval[T]) []Interval[T] {
	if len(intervals) == 0 {
		return nil
	}
	sorted := make([]Interval[T], len(intervals))
	copy(sorted, intervals)
	sort.Slice(sorted, func(i, j int) bool {
		if c := sorted[i].Low.Cmp(sorted[j].Low); c != 0 {
			return c < 0
		}
		return sorted[i].High.Cmp(sorted[j].High) < 0
	})

	top := rnet.Max[T]()
	merged := make([]Interval[T], 0, len(sorted))
	cur := sorted[0]
	for _, next := range sorted[1:] {
		overlap := next.Low.Cmp(cur.High) <= 0
		// cur.High+1 wraps at the top of the address space.
		adjacent := cur.High != top && next.Low == cur.High.Inc()
		if overlap || adjacent {
			if next.High.Cmp(cur.High) > 0 {
				cur.High = next.High
			}
			continue
		}
		merged = append(merged, cur)
		cur = next
	}
	return append(merged, cur)
}
