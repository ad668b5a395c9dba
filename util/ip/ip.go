/*
Package ip provides conversions between netip.Addr and the fixed-width
address numbers of package net.
*/
package ip

import (
	"fmt"
	"net/netip"

	rnet "github.com/Ramzeth/cidrmerge/net"
)

// ErrFamilyMismatch is returned when an address does not belong to the
// family of the requested number type.
var ErrFamilyMismatch = fmt.Errorf("address family mismatch")

// ErrZonedAddress is returned for IPv6 addresses carrying a zone.
var ErrZonedAddress = fmt.Errorf("zoned address")

// FromAddr converts addr to a number of type T. IPv4 addresses convert only
// to 32-bit numbers; IPv6 addresses, including IPv4-mapped ones, only to
// 128-bit numbers.
func FromAddr[T rnet.Number[T]](addr netip.Addr) (T, error) {
	var zero T
	if !addr.IsValid() {
		return zero, fmt.Errorf("%w: invalid address", ErrFamilyMismatch)
	}
	if addr.Zone() != "" {
		return zero, ErrZonedAddress
	}
	if addr.BitLen() != zero.Bits() {
		return zero, fmt.Errorf("%w: %s is not %s", ErrFamilyMismatch, addr, rnet.Version[T]())
	}
	return zero.FromBytes(addr.AsSlice())
}

// ToAddr converts n to an address of the family matching T.
func ToAddr[T rnet.Number[T]](n T) netip.Addr {
	addr, _ := netip.AddrFromSlice(n.Bytes())
	return addr
}

// ParseAddr parses s in the textual notation of the family matching T.
func ParseAddr[T rnet.Number[T]](s string) (T, error) {
	addr, err := netip.ParseAddr(s)
	if err != nil {
		var zero T
		return zero, err
	}
	return FromAddr[T](addr)
}
