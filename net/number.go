/*
Package net provides the fixed-width unsigned integers that back IP address
arithmetic, one per address family.

Uint32 carries IPv4 addresses and Uint128 carries IPv6 addresses. Both satisfy
the Number constraint so interval and CIDR algorithms can be written once and
instantiated per family, while every computation still happens in the
family's own width. All arithmetic wraps modulo 2^Bits().
*/
package net

import "fmt"

// IPVersion is the address family.
type IPVersion int

// Supported address families.
const (
	IPv4 IPVersion = iota
	IPv6
)

// ErrInvalidIPVersion is returned for an address family other than IPv4/IPv6.
var ErrInvalidIPVersion = fmt.Errorf("invalid ip version")

// Bits returns the address width of the family.
func (v IPVersion) Bits() int {
	if v == IPv6 {
		return 128
	}
	return 32
}

func (v IPVersion) String() string {
	switch v {
	case IPv4:
		return "ipv4"
	case IPv6:
		return "ipv6"
	}
	return fmt.Sprintf("IPVersion(%d)", int(v))
}

// AddrType returns the nftables address type name of the family.
func (v IPVersion) AddrType() string {
	return v.String() + "_addr"
}

// Valid reports whether v is a known family.
func (v IPVersion) Valid() bool {
	return v == IPv4 || v == IPv6
}

// ParseIPVersion accepts "4", "6", "ipv4", "ipv6", "v4" and "v6".
func ParseIPVersion(s string) (IPVersion, error) {
	switch s {
	case "4", "v4", "ipv4", "IPv4":
		return IPv4, nil
	case "6", "v6", "ipv6", "IPv6":
		return IPv6, nil
	}
	return 0, fmt.Errorf("%w: %q", ErrInvalidIPVersion, s)
}

// Number is an unsigned integer of a fixed address width. The zero value of
// an implementation is the number 0.
type Number[T any] interface {
	comparable

	// Add returns the sum, wrapping on overflow.
	Add(T) T
	// Sub returns the difference, wrapping on underflow.
	Sub(T) T
	// Inc returns the successor, wrapping MAX to 0.
	Inc() T
	And(T) T
	Or(T) T
	Not() T
	// Lsh shifts left by n bits; n >= Bits() yields 0.
	Lsh(n uint) T
	// Rsh shifts right by n bits; n >= Bits() yields 0.
	Rsh(n uint) T
	// Cmp returns -1, 0 or +1.
	Cmp(T) int
	IsZero() bool
	// TrailingZeros returns the index of the lowest set bit, Bits() for 0.
	TrailingZeros() int
	// Len returns the number of bits needed to represent the value, 0 for 0.
	Len() int
	// Bits returns the fixed width.
	Bits() int
	// Bytes returns the big-endian encoding, Bits()/8 bytes long.
	Bytes() []byte
	// FromBytes decodes a big-endian encoding of exactly Bits()/8 bytes.
	FromBytes(b []byte) (T, error)
}

// ErrInvalidLength is returned when decoding a byte slice of the wrong size.
var ErrInvalidLength = fmt.Errorf("invalid byte length")

// Max returns the largest value of T (all bits set).
func Max[T Number[T]]() T {
	var zero T
	return zero.Not()
}

// One returns the value 1 of T.
func One[T Number[T]]() T {
	var zero T
	return zero.Inc()
}

// Pow2 returns 2^k. k must be below the width of T.
func Pow2[T Number[T]](k int) T {
	return One[T]().Lsh(uint(k))
}

// Version returns the address family whose width matches T.
func Version[T Number[T]]() IPVersion {
	var zero T
	if zero.Bits() == 128 {
		return IPv6
	}
	return IPv4
}
