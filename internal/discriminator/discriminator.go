// Package discriminator derives the 8-byte tags that prefix instruction,
// account and event data.
package discriminator

import (
	"crypto/sha256"
	"fmt"

	"github.com/zhairuihao/anchor-src-gen/borsh"
	"github.com/zhairuihao/anchor-src-gen/internal/idl"
)

// Namespaces hashed in front of the name.
const (
	NamespaceGlobal  = "global"
	NamespaceAccount = "account"
	NamespaceEvent   = "event"
)

// Derive hashes preimage and keeps the first 8 bytes.
func Derive(preimage string) borsh.Discriminator {
	sum := sha256.Sum256([]byte(preimage))
	var d borsh.Discriminator
	copy(d[:], sum[:borsh.DiscriminatorLength])
	return d
}

// Namespaced derives the tag for ns:snake_case(name).
func Namespaced(ns, name string) borsh.Discriminator {
	return Derive(ns + ":" + idl.SnakeCase(name))
}

// ForInstruction derives the tag of an instruction from its document name.
func ForInstruction(name string) borsh.Discriminator {
	return Namespaced(NamespaceGlobal, name)
}

// ForAccount derives the tag of an account type. Account names keep their
// declared casing.
func ForAccount(name string) borsh.Discriminator {
	return Derive(NamespaceAccount + ":" + name)
}

// ForEvent derives the tag of an event type.
func ForEvent(name string) borsh.Discriminator {
	return Derive(NamespaceEvent + ":" + name)
}

// Resolve returns explicit when present, otherwise derive(). An explicit tag
// must be exactly 8 bytes.
func Resolve(explicit []byte, derive func() borsh.Discriminator) (borsh.Discriminator, error) {
	if explicit == nil {
		return derive(), nil
	}
	if len(explicit) != borsh.DiscriminatorLength {
		return borsh.Discriminator{}, fmt.Errorf("discriminator must be %d bytes, got %d", borsh.DiscriminatorLength, len(explicit))
	}
	var d borsh.Discriminator
	copy(d[:], explicit)
	return d, nil
}

// Instruction resolves the tag of ix.
func Instruction(ix idl.Instruction) (borsh.Discriminator, error) {
	return Resolve(ix.Discriminator, func() borsh.Discriminator { return ForInstruction(ix.RawName) })
}

// Account resolves the tag of an account declaration.
func Account(nt idl.NamedType) (borsh.Discriminator, error) {
	return Resolve(nt.Discriminator, func() borsh.Discriminator { return ForAccount(nt.RawName) })
}

// Event resolves the tag of an event declaration.
func Event(nt idl.NamedType) (borsh.Discriminator, error) {
	return Resolve(nt.Discriminator, func() borsh.Discriminator { return ForEvent(nt.RawName) })
}
