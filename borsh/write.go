package borsh

import (
	"fmt"
	"math/big"

	bin "github.com/gagliardetto/binary"
	"github.com/gagliardetto/solana-go"
)

// Put functions write one value at off and return the bytes written.
// The buffer must already be large enough; they panic on overflow like any
// out-of-range slice write. NaN floats panic too, since borsh rejects them.

// window is an io.Writer over data[off:] that never grows data.
type window struct {
	data []byte
	off  int
}

func (w *window) Write(b []byte) (int, error) {
	n := copy(w.data[w.off:w.off+len(b)], b)
	w.off += n
	return n, nil
}

// put runs write against a borsh encoder positioned at off.
func put(data []byte, off int, write func(enc *bin.Encoder) error) int {
	enc := bin.NewBorshEncoder(&window{data: data, off: off})
	if err := write(enc); err != nil {
		panic(fmt.Sprintf("borsh: write at offset %d: %v", off, err))
	}
	return enc.Written()
}

func PutU8(data []byte, off int, v uint8) int {
	return put(data, off, func(enc *bin.Encoder) error { return enc.WriteUint8(v) })
}

func PutI8(data []byte, off int, v int8) int {
	return put(data, off, func(enc *bin.Encoder) error { return enc.WriteInt8(v) })
}

func PutBool(data []byte, off int, v bool) int {
	return put(data, off, func(enc *bin.Encoder) error { return enc.WriteBool(v) })
}

func PutU16(data []byte, off int, v uint16) int {
	return put(data, off, func(enc *bin.Encoder) error { return enc.WriteUint16(v, bin.LE) })
}

func PutI16(data []byte, off int, v int16) int {
	return put(data, off, func(enc *bin.Encoder) error { return enc.WriteInt16(v, bin.LE) })
}

func PutU32(data []byte, off int, v uint32) int {
	return put(data, off, func(enc *bin.Encoder) error { return enc.WriteUint32(v, bin.LE) })
}

func PutI32(data []byte, off int, v int32) int {
	return put(data, off, func(enc *bin.Encoder) error { return enc.WriteInt32(v, bin.LE) })
}

func PutU64(data []byte, off int, v uint64) int {
	return put(data, off, func(enc *bin.Encoder) error { return enc.WriteUint64(v, bin.LE) })
}

func PutI64(data []byte, off int, v int64) int {
	return put(data, off, func(enc *bin.Encoder) error { return enc.WriteInt64(v, bin.LE) })
}

func PutF32(data []byte, off int, v float32) int {
	return put(data, off, func(enc *bin.Encoder) error { return enc.WriteFloat32(v, bin.LE) })
}

func PutF64(data []byte, off int, v float64) int {
	return put(data, off, func(enc *bin.Encoder) error { return enc.WriteFloat64(v, bin.LE) })
}

// PutU128 writes the low word first whatever v.Endianness says.
func PutU128(data []byte, off int, v bin.Uint128) int {
	return put(data, off, func(enc *bin.Encoder) error { return enc.WriteUint128(v, bin.LE) })
}

func PutI128(data []byte, off int, v bin.Int128) int {
	return put(data, off, func(enc *bin.Encoder) error { return enc.WriteInt128(v, bin.LE) })
}

// PutU256 writes v as 32 little-endian bytes. A nil v writes zero.
func PutU256(data []byte, off int, v *big.Int) int {
	var buf [32]byte
	if v != nil {
		v.FillBytes(buf[:])
	}
	return PutFixed(data, off, reversed(buf[:]))
}

// PutI256 writes v as 32 little-endian two's complement bytes.
func PutI256(data []byte, off int, v *big.Int) int {
	if v != nil && v.Sign() < 0 {
		return PutU256(data, off, new(big.Int).Add(v, twoTo256))
	}
	return PutU256(data, off, v)
}

func PutPublicKey(data []byte, off int, v solana.PublicKey) int {
	return PutFixed(data, off, v[:])
}

func PutDiscriminator(data []byte, off int, d Discriminator) int {
	return PutFixed(data, off, d[:])
}

// PutCount writes a u32 length prefix.
func PutCount(data []byte, off int, n int) int {
	return PutU32(data, off, uint32(n))
}

// PutString writes a length-prefixed string.
func PutString(data []byte, off int, s string) int {
	return PutBytes(data, off, []byte(s))
}

// PutBytes writes a length-prefixed byte slice.
func PutBytes(data []byte, off int, b []byte) int {
	return put(data, off, func(enc *bin.Encoder) error {
		if err := enc.WriteUint32(uint32(len(b)), bin.LE); err != nil {
			return err
		}
		return enc.WriteBytes(b, false)
	})
}

// PutFixed writes b without a length prefix.
func PutFixed(data []byte, off int, b []byte) int {
	return put(data, off, func(enc *bin.Encoder) error { return enc.WriteBytes(b, false) })
}
