package testutil

import (
	"embed"
	"fmt"
)

//go:embed testdata/*.json
var fixtures embed.FS

// Fixture returns the named document from testdata. It panics when the
// fixture is missing so a typo fails the test immediately.
func Fixture(name string) []byte {
	data, err := fixtures.ReadFile("testdata/" + name)
	if err != nil {
		panic(fmt.Sprintf("testutil: fixture %q: %v", name, err))
	}
	return data
}

// EscrowIDL is a current-format document: explicit discriminators, account
// and event definitions under types, a PDA shared by two instructions, a
// payload enum and a struct whose string field ends the fixed prefix.
func EscrowIDL() []byte {
	return Fixture("escrow.json")
}

// LegacyIDL is an old-format document: isMut/isSigner flags, publicKey tags,
// inline account types, inline event fields and a nested account group.
func LegacyIDL() []byte {
	return Fixture("legacy.json")
}
