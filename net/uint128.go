package net

import (
	"encoding/binary"
	"fmt"
	"math/bits"
)

// Uint128 is a 128-bit address number (IPv6) held as two 64-bit limbs.
type Uint128 struct {
	Hi, Lo uint64
}

var _ = Max[Uint128]

// Add returns x + y mod 2^128.
func (x Uint128) Add(y Uint128) Uint128 {
	lo, carry := bits.Add64(x.Lo, y.Lo, 0)
	hi, _ := bits.Add64(x.Hi, y.Hi, carry)
	return Uint128{Hi: hi, Lo: lo}
}

// Sub returns x - y mod 2^128.
func (x Uint128) Sub(y Uint128) Uint128 {
	lo, borrow := bits.Sub64(x.Lo, y.Lo, 0)
	hi, _ := bits.Sub64(x.Hi, y.Hi, borrow)
	return Uint128{Hi: hi, Lo: lo}
}

func (x Uint128) Inc() Uint128 {
	return x.Add(Uint128{Lo: 1})
}

func (x Uint128) And(y Uint128) Uint128 { return Uint128{Hi: x.Hi & y.Hi, Lo: x.Lo & y.Lo} }
func (x Uint128) Or(y Uint128) Uint128  { return Uint128{Hi: x.Hi | y.Hi, Lo: x.Lo | y.Lo} }
func (x Uint128) Not() Uint128          { return Uint128{Hi: ^x.Hi, Lo: ^x.Lo} }
func (x Uint128) IsZero() bool          { return x.Hi|x.Lo == 0 }
func (x Uint128) Bits() int             { return 128 }

func (x Uint128) Lsh(n uint) Uint128 {
	switch {
	case n >= 128:
		return Uint128{}
	case n >= 64:
		return Uint128{Hi: x.Lo << (n - 64)}
	case n == 0:
		return x
	}
	return Uint128{Hi: x.Hi<<n | x.Lo>>(64-n), Lo: x.Lo << n}
}

func (x Uint128) Rsh(n uint) Uint128 {
	switch {
	case n >= 128:
		return Uint128{}
	case n >= 64:
		return Uint128{Lo: x.Hi >> (n - 64)}
	case n == 0:
		return x
	}
	return Uint128{Hi: x.Hi >> n, Lo: x.Lo>>n | x.Hi<<(64-n)}
}

func (x Uint128) Cmp(y Uint128) int {
	switch {
	case x.Hi < y.Hi:
		return -1
	case x.Hi > y.Hi:
		return 1
	case x.Lo < y.Lo:
		return -1
	case x.Lo > y.Lo:
		return 1
	}
	return 0
}

func (x Uint128) TrailingZeros() int {
	if x.Lo != 0 {
		return trailingZeros64(x.Lo)
	}
	return 64 + trailingZeros64(x.Hi)
}

func (x Uint128) Len() int {
	if x.Hi != 0 {
		return 64 + len64(x.Hi)
	}
	return len64(x.Lo)
}

func (x Uint128) Bytes() []byte {
	b := make([]byte, 16)
	binary.BigEndian.PutUint64(b[:8], x.Hi)
	binary.BigEndian.PutUint64(b[8:], x.Lo)
	return b
}

func (Uint128) FromBytes(b []byte) (Uint128, error) {
	if len(b) != 16 {
		return Uint128{}, ErrInvalidLength
	}
	return Uint128{
		Hi: binary.BigEndian.Uint64(b[:8]),
		Lo: binary.BigEndian.Uint64(b[8:]),
	}, nil
}

func (x Uint128) String() string {
	return fmt.Sprintf("0x%016x%016x", x.Hi, x.Lo)
}
