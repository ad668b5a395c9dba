package net

import "encoding/binary"

// Uint32 is a 32-bit address number (IPv4).
type Uint32 uint32

var _ = Max[Uint32]

func (x Uint32) Add(y Uint32) Uint32 { return x + y }
func (x Uint32) Sub(y Uint32) Uint32 { return x - y }
func (x Uint32) Inc() Uint32         { return x + 1 }
func (x Uint32) And(y Uint32) Uint32 { return x & y }
func (x Uint32) Or(y Uint32) Uint32  { return x | y }
func (x Uint32) Not() Uint32         { return ^x }
func (x Uint32) IsZero() bool        { return x == 0 }
func (x Uint32) Bits() int           { return 32 }

func (x Uint32) Lsh(n uint) Uint32 {
	if n >= 32 {
		return 0
	}
	return x << n
}

func (x Uint32) Rsh(n uint) Uint32 {
	if n >= 32 {
		return 0
	}
	return x >> n
}

func (x Uint32) Cmp(y Uint32) int {
	switch {
	case x < y:
		return -1
	case x > y:
		return 1
	}
	return 0
}

func (x Uint32) TrailingZeros() int {
	if x == 0 {
		return 32
	}
	return trailingZeros64(uint64(x))
}

func (x Uint32) Len() int {
	return len64(uint64(x))
}

func (x Uint32) Bytes() []byte {
	b := make([]byte, 4)
	binary.BigEndian.PutUint32(b, uint32(x))
	return b
}

func (Uint32) FromBytes(b []byte) (Uint32, error) {
	if len(b) != 4 {
		return 0, ErrInvalidLength
	}
	return Uint32(binary.BigEndian.Uint32(b)), nil
}
