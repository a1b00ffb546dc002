// Package onchain locates and decodes the IDL account an Anchor program
// publishes about itself.
package onchain

import (
	"bytes"
	"compress/zlib"
	"errors"
	"fmt"
	"io"

	"github.com/gagliardetto/solana-go"

	"github.com/zhairuihao/anchor-src-gen/borsh"
	"github.com/zhairuihao/anchor-src-gen/internal/discriminator"
)

// IDLSeed is the CreateWithSeed seed of the IDL account.
const IDLSeed = "anchor:idl"

// HeaderLength is the tag, authority and compressed length prefix.
const HeaderLength = borsh.DiscriminatorLength + solana.PublicKeyLength + 4

// IDLAccountDiscriminator is the tag Anchor writes in front of IDL accounts.
var IDLAccountDiscriminator = discriminator.Derive("account:IdlAccount")

// ErrEmptyPayload is returned for an account holding no compressed data.
var ErrEmptyPayload = errors.New("onchain: empty idl payload")

// IDLAccount is the decoded content of an IDL account.
type IDLAccount struct {
	Discriminator borsh.Discriminator
	Authority     solana.PublicKey
	// JSON is the decompressed document.
	JSON []byte
}

// Anchor reports whether the account carries the IdlAccount tag.
func (a *IDLAccount) Anchor() bool {
	return a.Discriminator == IDLAccountDiscriminator
}

// IDLAddress derives the address of the IDL account of program: the
// program's seedless PDA used as base for CreateWithSeed.
func IDLAddress(program solana.PublicKey) (solana.PublicKey, error) {
	base, _, err := solana.FindProgramAddress([][]byte{}, program)
	if err != nil {
		return solana.PublicKey{}, fmt.Errorf("idl base address of %s: %w", program, err)
	}
	addr, err := solana.CreateWithSeed(base, IDLSeed, program)
	if err != nil {
		return solana.PublicKey{}, fmt.Errorf("idl address of %s: %w", program, err)
	}
	return addr, nil
}

// DecodePayload parses account data: an 8-byte tag, the 32-byte authority,
// a u32 LE compressed length and that many bytes of zlib data.
func DecodePayload(data []byte) (*IDLAccount, error) {
	r := borsh.NewReader(data, 0)
	a := &IDLAccount{
		Discriminator: r.Discriminator(),
		Authority:     r.PublicKey(),
	}
	n := r.U32()
	compressed := r.Fixed(int(n))
	if err := r.Err(); err != nil {
		return nil, fmt.Errorf("decode idl account: %w", err)
	}
	if n == 0 {
		return nil, ErrEmptyPayload
	}

	zr, err := zlib.NewReader(bytes.NewReader(compressed))
	if err != nil {
		return nil, fmt.Errorf("decompress idl: %w", err)
	}
	defer zr.Close()
	if a.JSON, err = io.ReadAll(zr); err != nil {
		return nil, fmt.Errorf("decompress idl: %w", err)
	}
	return a, nil
}

// EncodePayload is the inverse of DecodePayload.
func EncodePayload(authority solana.PublicKey, doc []byte) ([]byte, error) {
	var z bytes.Buffer
	zw := zlib.NewWriter(&z)
	if _, err := zw.Write(doc); err != nil {
		return nil, err
	}
	if err := zw.Close(); err != nil {
		return nil, err
	}

	data := make([]byte, HeaderLength+z.Len())
	i := borsh.PutDiscriminator(data, 0, IDLAccountDiscriminator)
	i += borsh.PutPublicKey(data, i, authority)
	i += borsh.PutU32(data, i, uint32(z.Len()))
	borsh.PutFixed(data, i, z.Bytes())
	return data, nil
}
