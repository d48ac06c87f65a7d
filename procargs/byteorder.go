package procargs

import (
	"encoding/binary"
	"math/bits"

	"golang.org/x/sys/cpu"
)

// ByteOrder decodes integers stored in the host's native order out of raw
// process images. Values are read big-endian and swapped back when the
// platform reports a little-endian CPU.
type ByteOrder struct {
	LittleEndian bool
}

// HostByteOrder 本机字节序
func HostByteOrder() ByteOrder {
	return ByteOrder{LittleEndian: !cpu.IsBigEndian}
}

// Adjust32 converts a big-endian decoded value to native order.
func (o ByteOrder) Adjust32(v uint32) uint32 {
	if o.LittleEndian {
		return bits.ReverseBytes32(v)
	}
	return v
}

// Adjust64 converts a big-endian decoded value to native order.
func (o ByteOrder) Adjust64(v uint64) uint64 {
	if o.LittleEndian {
		return bits.ReverseBytes64(v)
	}
	return v
}

// Uint32 decodes the first four bytes of b.
func (o ByteOrder) Uint32(b []byte) uint32 {
	return o.Adjust32(binary.BigEndian.Uint32(b))
}

// Uint64 decodes the first eight bytes of b.
func (o ByteOrder) Uint64(b []byte) uint64 {
	return o.Adjust64(binary.BigEndian.Uint64(b))
}

// Pointer decodes a pointer of the given width, zero-extended to 64 bits.
func (o ByteOrder) Pointer(b []byte, width int) uint64 {
	if width == 8 {
		return o.Uint64(b)
	}
	return uint64(o.Uint32(b))
}

func (o ByteOrder) String() string {
	if o.LittleEndian {
		return "little"
	}
	return "big"
}
