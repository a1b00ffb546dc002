package borsh

import (
	"errors"
	"fmt"
	"math/big"

	bin "github.com/gagliardetto/binary"
	"github.com/gagliardetto/solana-go"
)

// ErrShortBuffer is recorded when a read runs past the end of the data.
var ErrShortBuffer = errors.New("borsh: short buffer")

// Reader decodes values from a byte slice starting at an offset.
// The first failure is kept and all later reads return zero values.
type Reader struct {
	dec  *bin.Decoder
	base int
	err  error
}

// NewReader creates a reader positioned at offset.
func NewReader(data []byte, offset int) *Reader {
	if offset < 0 || offset > len(data) {
		return &Reader{
			dec:  bin.NewBorshDecoder(nil),
			base: offset,
			err:  fmt.Errorf("%w: offset %d outside %d bytes", ErrShortBuffer, offset, len(data)),
		}
	}
	return &Reader{dec: bin.NewBorshDecoder(data[offset:]), base: offset}
}

// Offset returns the current read position.
func (r *Reader) Offset() int {
	return r.base + int(r.dec.Position())
}

// Remaining returns the number of unread bytes.
func (r *Reader) Remaining() int {
	return r.dec.Remaining()
}

// Err returns the first error encountered, if any.
func (r *Reader) Err() error {
	return r.err
}

// Fail records err unless an earlier error is already recorded.
func (r *Reader) Fail(err error) {
	if r.err == nil {
		r.err = err
	}
}

// need reports whether n more bytes can be read, recording ErrShortBuffer
// when they cannot.
func (r *Reader) need(n int) bool {
	if r.err != nil {
		return false
	}
	if n < 0 || n > r.dec.Remaining() {
		r.err = fmt.Errorf("%w: need %d bytes at offset %d, have %d", ErrShortBuffer, n, r.Offset(), r.dec.Remaining())
		return false
	}
	return true
}

// check records a decoder error and reports whether the read succeeded.
func (r *Reader) check(err error) bool {
	if err != nil {
		r.Fail(fmt.Errorf("borsh: at offset %d: %w", r.Offset(), err))
		return false
	}
	return true
}

// next returns the next n bytes without copying them.
func (r *Reader) next(n int) []byte {
	if !r.need(n) {
		return nil
	}
	b, err := r.dec.ReadNBytes(n)
	if !r.check(err) {
		return nil
	}
	return b
}

// Skip advances the position by n bytes.
func (r *Reader) Skip(n int) {
	if r.need(n) {
		r.check(r.dec.SkipBytes(uint(n)))
	}
}

func (r *Reader) U8() uint8 {
	if !r.need(1) {
		return 0
	}
	v, err := r.dec.ReadUint8()
	if !r.check(err) {
		return 0
	}
	return v
}

func (r *Reader) I8() int8 {
	return int8(r.U8())
}

// Bool decodes one byte; any value other than 0 or 1 fails the reader.
func (r *Reader) Bool() bool {
	v := r.U8()
	if v > 1 {
		r.Fail(fmt.Errorf("borsh: invalid bool byte %d at offset %d", v, r.Offset()-1))
		return false
	}
	return v == 1
}

func (r *Reader) U16() uint16 {
	if !r.need(2) {
		return 0
	}
	v, err := r.dec.ReadUint16(bin.LE)
	if !r.check(err) {
		return 0
	}
	return v
}

func (r *Reader) I16() int16 {
	return int16(r.U16())
}

func (r *Reader) U32() uint32 {
	if !r.need(4) {
		return 0
	}
	v, err := r.dec.ReadUint32(bin.LE)
	if !r.check(err) {
		return 0
	}
	return v
}

func (r *Reader) I32() int32 {
	return int32(r.U32())
}

func (r *Reader) U64() uint64 {
	if !r.need(8) {
		return 0
	}
	v, err := r.dec.ReadUint64(bin.LE)
	if !r.check(err) {
		return 0
	}
	return v
}

func (r *Reader) I64() int64 {
	return int64(r.U64())
}

// F32 decodes an IEEE 754 float. NaN fails the reader.
func (r *Reader) F32() float32 {
	if !r.need(4) {
		return 0
	}
	v, err := r.dec.ReadFloat32(bin.LE)
	if !r.check(err) {
		return 0
	}
	return v
}

// F64 decodes an IEEE 754 double. NaN fails the reader.
func (r *Reader) F64() float64 {
	if !r.need(8) {
		return 0
	}
	v, err := r.dec.ReadFloat64(bin.LE)
	if !r.check(err) {
		return 0
	}
	return v
}

// U128 decodes a 16-byte unsigned integer.
func (r *Reader) U128() bin.Uint128 {
	if !r.need(16) {
		return bin.Uint128{Endianness: bin.LE}
	}
	v, err := r.dec.ReadUint128(bin.LE)
	if !r.check(err) {
		return bin.Uint128{Endianness: bin.LE}
	}
	v.Endianness = bin.LE
	return v
}

// I128 decodes a 16-byte two's complement integer.
func (r *Reader) I128() bin.Int128 {
	if !r.need(16) {
		return bin.Int128{Endianness: bin.LE}
	}
	v, err := r.dec.ReadInt128(bin.LE)
	if !r.check(err) {
		return bin.Int128{Endianness: bin.LE}
	}
	v.Endianness = bin.LE
	return v
}

// U256 decodes a 32-byte unsigned integer.
func (r *Reader) U256() *big.Int {
	b := r.next(32)
	if b == nil {
		return new(big.Int)
	}
	return new(big.Int).SetBytes(reversed(b))
}

// I256 decodes a 32-byte two's complement integer.
func (r *Reader) I256() *big.Int {
	b := r.next(32)
	if b == nil {
		return new(big.Int)
	}
	v := new(big.Int).SetBytes(reversed(b))
	if b[31]&0x80 != 0 {
		v.Sub(v, twoTo256)
	}
	return v
}

func (r *Reader) PublicKey() solana.PublicKey {
	b := r.next(solana.PublicKeyLength)
	if b == nil {
		return solana.PublicKey{}
	}
	return solana.PublicKeyFromBytes(b)
}

// Discriminator decodes the 8-byte type tag.
func (r *Reader) Discriminator() Discriminator {
	var d Discriminator
	copy(d[:], r.next(DiscriminatorLength))
	return d
}

// Count decodes a u32 length prefix. A prefix larger than the remaining
// bytes fails the reader, so a corrupt prefix never drives a huge allocation.
func (r *Reader) Count() int {
	n := r.U32()
	if r.err != nil {
		return 0
	}
	if int64(n) > int64(r.Remaining()) {
		r.Fail(fmt.Errorf("%w: length prefix %d exceeds %d remaining bytes", ErrShortBuffer, n, r.Remaining()))
		return 0
	}
	return int(n)
}

// Str decodes a length-prefixed UTF-8 string.
func (r *Reader) Str() string {
	n := r.Count()
	return string(r.next(n))
}

// Bytes decodes a length-prefixed byte slice. The result is a copy.
func (r *Reader) Bytes() []byte {
	return r.Fixed(r.Count())
}

// Fixed decodes exactly n raw bytes. The result is a copy.
func (r *Reader) Fixed(n int) []byte {
	b := r.next(n)
	if b == nil {
		return nil
	}
	out := make([]byte, n)
	copy(out, b)
	return out
}

// Present decodes an option presence byte.
func (r *Reader) Present() bool {
	v := r.U8()
	if v > 1 {
		r.Fail(fmt.Errorf("borsh: invalid option tag %d at offset %d", v, r.Offset()-1))
		return false
	}
	return v == 1
}

var twoTo256 = new(big.Int).Lsh(big.NewInt(1), 256)

func reversed(b []byte) []byte {
	out := make([]byte, len(b))
	for i := range b {
		out[len(b)-1-i] = b[i]
	}
	return out
}
