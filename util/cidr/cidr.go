package cidr

import (
	"fmt"

	rnet "github.com/Ramzeth/cidrmerge/net"
)

// ErrInvalidPrefixLength is returned when a prefix length lies outside
// [0, width] of the address family.
var ErrInvalidPrefixLength = fmt.Errorf("invalid prefix length")

// Mask returns the network mask with the high ones bits set.
func Mask[T rnet.Number[T]](ones int) (T, error) {
	var zero T
	width := zero.Bits()
	switch {
	case ones < 0 || ones > width:
		return zero, ErrInvalidPrefixLength
	case ones == 0:
		// Shifting by the full width is not a valid mask computation.
		return zero, nil
	case ones == width:
		return rnet.Max[T](), nil
	}
	return rnet.Max[T]().Lsh(uint(width - ones)), nil
}

// HostMask returns the complement of Mask(ones).
func HostMask[T rnet.Number[T]](ones int) (T, error) {
	mask, err := Mask[T](ones)
	if err != nil {
		return mask, err
	}
	return mask.Not(), nil
}

// Range returns the first and last address of the network containing n with
// the given prefix length.
func Range[T rnet.Number[T]](n T, ones int) (first, last T, err error) {
	mask, err := Mask[T](ones)
	if err != nil {
		return first, last, err
	}
	first = n.And(mask)
	last = first.Or(mask.Not())
	return first, last, nil
}

// Aligned reports whether base is a valid network address for the prefix
// length, i.e. no host bits are set.
func Aligned[T rnet.Number[T]](base T, ones int) bool {
	hostMask, err := HostMask[T](ones)
	if err != nil {
		return false
	}
	return base.And(hostMask).IsZero()
}
