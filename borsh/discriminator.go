package borsh

import (
	"bytes"
	"errors"
	"fmt"

	"github.com/gagliardetto/solana-go"
	"github.com/gagliardetto/solana-go/rpc"
)

// DiscriminatorLength is the width of the type tag leading account and
// instruction data.
const DiscriminatorLength = 8

// Discriminator is the 8-byte type tag.
type Discriminator [DiscriminatorLength]byte

// Bytes returns the tag as a slice.
func (d Discriminator) Bytes() []byte {
	return d[:]
}

// Matches reports whether data starts with d.
func (d Discriminator) Matches(data []byte) bool {
	return len(data) >= DiscriminatorLength && bytes.Equal(data[:DiscriminatorLength], d[:])
}

// ErrUnexpectedOrdinal is wrapped by every enum ordinal decode failure.
var ErrUnexpectedOrdinal = errors.New("unexpected ordinal")

// UnexpectedOrdinal builds the error returned when a decoded enum tag is
// outside the declared variants.
func UnexpectedOrdinal(ordinal uint8, enum string) error {
	return fmt.Errorf("%w [%d] for enum [%s]", ErrUnexpectedOrdinal, ordinal, enum)
}

// ErrDiscriminatorMismatch is returned by generated account decoders when
// the data does not carry the expected tag.
var ErrDiscriminatorMismatch = errors.New("discriminator mismatch")

// CheckDiscriminator fails r if the tag at the current offset differs from want.
func CheckDiscriminator(r *Reader, want Discriminator) {
	got := r.Discriminator()
	if r.err == nil && got != want {
		r.Fail(fmt.Errorf("%w: got %v, want %v", ErrDiscriminatorMismatch, got[:], want[:]))
	}
}

// MemcmpFilter builds a getProgramAccounts memcmp filter.
func MemcmpFilter(offset int, b []byte) rpc.RPCFilter {
	return rpc.RPCFilter{
		Memcmp: &rpc.RPCFilterMemcmp{
			Offset: uint64(offset),
			Bytes:  solana.Base58(b),
		},
	}
}

// DataSizeFilter builds a getProgramAccounts data size filter.
func DataSizeFilter(size int) rpc.RPCFilter {
	return rpc.RPCFilter{DataSize: uint64(size)}
}
