package codegen

import (
	"bytes"
	"fmt"
	"sort"
	"strings"
)

// Import paths used by generated code.
const (
	importSolana = "github.com/gagliardetto/solana-go"
	importRPC    = "github.com/gagliardetto/solana-go/rpc"
	importBin    = "github.com/gagliardetto/binary"
	importBig    = "math/big"
	importFmt    = "fmt"
)

// DefaultRuntimeImport is the serialization runtime generated code imports.
const DefaultRuntimeImport = "github.com/zhairuihao/anchor-src-gen/borsh"

// Header marks every generated file.
const Header = "// Code generated by anchorgen. DO NOT EDIT."

// aliases names imports whose package name differs from the last path
// element.
var aliases = map[string]string{
	importBin: "bin",
}

// Unit is one generated source file.
type Unit struct {
	// Name is the file name relative to the package directory.
	Name    string
	pkg     string
	imports map[string]bool
	body    bytes.Buffer
}

func newUnit(name, pkg string) *Unit {
	return &Unit{Name: name, pkg: pkg, imports: make(map[string]bool)}
}

// Import records that the unit references path.
func (u *Unit) Import(path string) {
	u.imports[path] = true
}

// Imports returns the recorded import paths in sorted order.
func (u *Unit) Imports() []string {
	out := make([]string, 0, len(u.imports))
	for p := range u.imports {
		out = append(out, p)
	}
	sort.Strings(out)
	return out
}

// P writes one line built from format.
func (u *Unit) P(format string, args ...any) {
	fmt.Fprintf(&u.body, format, args...)
	u.body.WriteByte('\n')
}

// Docs writes lines as a comment block.
func (u *Unit) Docs(lines []string) {
	for _, l := range lines {
		l = strings.TrimRight(l, " \t")
		if l == "" {
			u.P("//")
			continue
		}
		u.P("// %s", l)
	}
}

// Empty reports whether nothing was written to the body.
func (u *Unit) Empty() bool {
	return u.body.Len() == 0
}

// Source returns the unformatted file contents. Standard library imports
// are grouped before third-party ones.
func (u *Unit) Source() []byte {
	var b bytes.Buffer
	b.WriteString(Header)
	b.WriteString("\n\npackage ")
	b.WriteString(u.pkg)
	b.WriteString("\n\n")

	var std, third []string
	for _, p := range u.Imports() {
		if strings.Contains(strings.SplitN(p, "/", 2)[0], ".") {
			third = append(third, p)
		} else {
			std = append(std, p)
		}
	}
	if len(std)+len(third) > 0 {
		b.WriteString("import (\n")
		for _, p := range std {
			fmt.Fprintf(&b, "\t%q\n", p)
		}
		if len(std) > 0 && len(third) > 0 {
			b.WriteString("\n")
		}
		for _, p := range third {
			if alias, ok := aliases[p]; ok {
				fmt.Fprintf(&b, "\t%s %q\n", alias, p)
				continue
			}
			fmt.Fprintf(&b, "\t%q\n", p)
		}
		b.WriteString(")\n\n")
	}
	b.Write(u.body.Bytes())
	return b.Bytes()
}
