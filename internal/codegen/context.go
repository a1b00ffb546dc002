// Package codegen turns a parsed document into Go source units: one per
// named type plus the program, PDA, error and constant units.
package codegen

import (
	"fmt"
	"strings"
	"unicode"

	"github.com/zhairuihao/anchor-src-gen/internal/idl"
	"github.com/zhairuihao/anchor-src-gen/internal/known"
	"github.com/zhairuihao/anchor-src-gen/internal/layout"
)

// Options configures a Context.
type Options struct {
	// Package is the generated package name. Defaults to PackageName of the
	// program name.
	Package string
	// RuntimeImport is the import path of the serialization runtime. Its
	// package name must be borsh.
	RuntimeImport string
	// Known is the well-known account table. Defaults to known.Default().
	Known *known.Table
}

// Context is the state of one emission. It must not be shared between
// goroutines; concurrent emissions each build their own.
type Context struct {
	Doc      *idl.Document
	Registry *idl.Registry
	Package  string
	// Program is the exported program name, e.g. Escrow.
	Program string

	runtime string
	known   *known.Table
	calc    *layout.Calculator
	stages  *Stages

	accounts map[string]*idl.NamedType
	events   map[string]*idl.NamedType
	// taken holds every top-level Go identifier claimed so far.
	taken map[string]bool
	// variants maps an enum name to the Go type of each variant.
	variants map[string][]string
}

// NewContext indexes doc and prepares an emission.
func NewContext(doc *idl.Document, opts Options) (*Context, error) {
	reg, err := idl.NewRegistry(doc)
	if err != nil {
		return nil, err
	}
	c := &Context{
		Doc:      doc,
		Registry: reg,
		Package:  opts.Package,
		Program:  idl.TypeName(doc.Name),
		runtime:  opts.RuntimeImport,
		known:    opts.Known,
	}
	if c.Package == "" {
		c.Package = PackageName(doc.Name)
	}
	if c.Package == "" {
		return nil, fmt.Errorf("program %q has no usable package name", doc.Name)
	}
	if c.runtime == "" {
		c.runtime = DefaultRuntimeImport
	}
	if c.known == nil {
		c.known = known.Default()
	}
	c.Reset()
	return c, nil
}

// Reset discards the state of a previous emission.
func (c *Context) Reset() {
	c.calc = layout.New(c.Registry)
	c.stages = NewStages(c.Registry.Names())
	c.accounts = make(map[string]*idl.NamedType)
	c.events = make(map[string]*idl.NamedType)
	c.taken = make(map[string]bool)
	c.variants = make(map[string][]string)

	for i := range c.Doc.Accounts {
		c.accounts[c.Doc.Accounts[i].Name] = &c.Doc.Accounts[i]
	}
	for i := range c.Doc.Events {
		c.events[c.Doc.Events[i].Name] = &c.Doc.Events[i]
	}
	for _, name := range c.Registry.Names() {
		c.taken[name] = true
	}
}

// Stages exposes the per-type stage tracker of the current emission.
func (c *Context) Stages() *Stages {
	return c.stages
}

// claim reserves name, appending suffix until it is free.
func (c *Context) claim(name, suffix string) string {
	for c.taken[name] {
		name += suffix
	}
	c.taken[name] = true
	return name
}

func (c *Context) measure(t idl.Type) layout.Measure {
	m, err := c.calc.Measure(t)
	if err != nil {
		panic(fmt.Sprintf("codegen: type %s used before validation: %v", t, err))
	}
	return m
}

func (c *Context) unit(name string) *Unit {
	return newUnit(name, c.Package)
}

// PackageName derives a Go package name from a program name: lower-cased,
// with characters other than letters, digits and underscores removed.
func PackageName(name string) string {
	var b strings.Builder
	for _, r := range strings.ToLower(name) {
		if r == '_' || unicode.IsLetter(r) || unicode.IsDigit(r) {
			b.WriteRune(r)
		}
	}
	s := strings.TrimLeftFunc(b.String(), func(r rune) bool { return !unicode.IsLetter(r) })
	if _, ok := goKeywords[s]; ok {
		s += "program"
	}
	return s
}

var goKeywords = map[string]struct{}{
	"break": {}, "case": {}, "chan": {}, "const": {}, "continue": {},
	"default": {}, "defer": {}, "else": {}, "fallthrough": {}, "for": {},
	"func": {}, "go": {}, "goto": {}, "if": {}, "import": {},
	"interface": {}, "map": {}, "package": {}, "range": {}, "return": {},
	"select": {}, "struct": {}, "switch": {}, "type": {}, "var": {},
}
