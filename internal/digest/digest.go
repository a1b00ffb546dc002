// Package digest computes content-addressed identities for input documents
// and generated output trees.
package digest

import (
	"crypto/sha256"
	"encoding/binary"
	"encoding/hex"
	"sort"
)

// Domain prefixes. The version suffix allows the algorithm to change
// without colliding with stored digests.
const (
	DomainIDL    = "anchorgen/idl/v1"
	DomainOutput = "anchorgen/output/v1"
)

// File is one generated artifact.
type File struct {
	// Path is relative to the output root, slash separated.
	Path    string
	Content []byte
}

// hashWithDomain computes SHA256(domain + 0x00 + data).
// The null separator keeps the domain/data boundary unambiguous.
func hashWithDomain(domain string, data []byte) string {
	h := sha256.New()
	h.Write([]byte(domain))
	h.Write([]byte{0x00})
	h.Write(data)
	return hex.EncodeToString(h.Sum(nil))
}

// IDL returns the digest of a raw document.
func IDL(raw []byte) string {
	return hashWithDomain(DomainIDL, raw)
}

// Output returns the digest of a set of files. The result does not depend
// on the order of files.
func Output(files []File) string {
	sorted := make([]File, len(files))
	copy(sorted, files)
	sort.Slice(sorted, func(i, j int) bool { return sorted[i].Path < sorted[j].Path })

	var buf []byte
	for _, f := range sorted {
		buf = appendField(buf, []byte(f.Path))
		buf = appendField(buf, f.Content)
	}
	return hashWithDomain(DomainOutput, buf)
}

// appendField writes a u64 length prefix then b, so adjacent fields cannot
// be confused with each other.
func appendField(buf, b []byte) []byte {
	buf = binary.LittleEndian.AppendUint64(buf, uint64(len(b)))
	return append(buf, b...)
}
