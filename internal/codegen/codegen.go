package codegen

import (
	"sort"
	"strconv"
	"strings"

	"github.com/zhairuihao/anchor-src-gen/borsh"
	"github.com/zhairuihao/anchor-src-gen/internal/discriminator"
	"github.com/zhairuihao/anchor-src-gen/internal/idl"
	"github.com/zhairuihao/anchor-src-gen/internal/layout"
)

// typePlan carries what earlier stages computed for one named type.
type typePlan struct {
	nt *idl.NamedType
	// layout is set for structs, variants for payload enums.
	layout   *layout.StructLayout
	variants []*layout.StructLayout
	account  *borsh.Discriminator
	event    *borsh.Discriminator
}

// Generate emits every unit of the document in c. It resets c first, so
// calling it again yields the same units. Empty units are dropped and the
// result is sorted by file name.
func Generate(c *Context) ([]*Unit, error) {
	c.Reset()
	names := c.Registry.Names()
	c.claimVariants(names)

	plans := make([]*typePlan, 0, len(names))
	for _, name := range names {
		p, err := c.plan(name)
		if err != nil {
			return nil, err
		}
		plans = append(plans, p)
	}

	files := newFileNames(c.Package)
	var units []*Unit
	for _, p := range plans {
		u, err := c.emitType(p, files.claim(idl.SnakeCase(p.nt.Name)))
		if err != nil {
			return nil, err
		}
		units = append(units, u)
	}

	program, err := c.emitProgram(c.unit(c.Package + "_program.go"))
	if err != nil {
		return nil, err
	}
	pdas, err := c.emitPDAs(c.unit(c.Package + "_pdas.go"))
	if err != nil {
		return nil, err
	}
	errs := c.emitErrors(c.unit(c.Package + "_errors.go"))
	consts, err := c.emitConstants(c.unit(c.Package + "_constants.go"))
	if err != nil {
		return nil, err
	}
	units = append(units, program, pdas, errs, consts)

	out := units[:0]
	for _, u := range units {
		if !u.Empty() {
			out = append(out, u)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Name < out[j].Name })
	return out, nil
}

// claimVariants names every enum variant before any other top-level
// identifier is taken.
func (c *Context) claimVariants(names []string) {
	for _, name := range names {
		nt, _ := c.Registry.Lookup(name)
		en, ok := nt.Type.(*idl.Enum)
		if !ok {
			continue
		}
		vs := make([]string, len(en.Variants))
		for i, v := range en.Variants {
			vs[i] = c.claim(name+v.Name, "Variant")
		}
		c.variants[name] = vs
	}
}

// plan runs the layout and discriminator stages of one named type.
func (c *Context) plan(name string) (*typePlan, error) {
	nt, _ := c.Registry.Lookup(name)
	p := &typePlan{nt: nt}
	path := []string{name}
	acct := c.accounts[name]
	ev := c.events[name]

	switch t := nt.Type.(type) {
	case *idl.Struct:
		for i, f := range t.Fields {
			if err := c.validate(f.Type, append(path, fieldLabel(f, i))); err != nil {
				return nil, err
			}
		}
		sl, err := c.calc.Struct(t.Fields, acct != nil)
		if err != nil {
			return nil, err
		}
		p.layout = sl
	case *idl.Enum:
		for _, v := range t.Variants {
			for i, f := range v.Fields {
				if err := c.validate(f.Type, append(path, v.Name, fieldLabel(f, i))); err != nil {
					return nil, err
				}
			}
		}
		if t.HasPayloads() {
			for _, v := range t.Variants {
				sl, err := c.calc.Struct(v.Fields, false)
				if err != nil {
					return nil, err
				}
				p.variants = append(p.variants, sl)
			}
		}
		if _, err := c.calc.Measure(t); err != nil {
			return nil, err
		}
	default:
		if err := c.validate(nt.Type, path); err != nil {
			return nil, err
		}
	}
	if err := c.stages.Advance(name, StageLayoutComputed); err != nil {
		return nil, err
	}

	if acct != nil {
		if _, ok := nt.Type.(*idl.Struct); !ok {
			return nil, idl.Unsupported(path, "account type must be a struct, got %s", nt.Type.Kind())
		}
		d, err := discriminator.Account(*acct)
		if err != nil {
			return nil, idl.Malformed(path, "%v", err)
		}
		p.account = &d
	}
	if ev != nil {
		switch nt.Type.(type) {
		case *idl.Struct, *idl.Enum:
		default:
			return nil, idl.Unsupported(path, "event type must be a struct or enum, got %s", nt.Type.Kind())
		}
		d, err := discriminator.Event(*ev)
		if err != nil {
			return nil, idl.Malformed(path, "%v", err)
		}
		p.event = &d
	}
	if err := c.stages.Advance(name, StageDiscriminatorResolved); err != nil {
		return nil, err
	}
	return p, nil
}

func fieldLabel(f idl.Field, i int) string {
	if f.Name == "" {
		return strconv.Itoa(i)
	}
	return f.Name
}

// emitType writes the unit of one named type.
func (c *Context) emitType(p *typePlan, file string) (*Unit, error) {
	u := c.unit(file)
	nt := p.nt
	switch t := nt.Type.(type) {
	case *idl.Struct:
		c.emitStruct(u, p)
	case *idl.Enum:
		if t.HasPayloads() {
			c.emitPayloadEnum(u, nt, p.variants)
		} else {
			c.emitSimpleEnum(u, nt)
		}
	default:
		u.Docs(nt.Docs)
		u.P("type %s = %s", nt.Name, c.goType(u, nt.Type))
		u.P("")
	}
	if p.event != nil {
		c.emitEvent(u, p)
	}
	if err := c.stages.Advance(nt.Name, StageEmitted); err != nil {
		return nil, err
	}
	return u, nil
}

// fileNames hands out unique file names that the go tool will not treat as
// tests or platform-specific sources.
type fileNames struct {
	used map[string]bool
}

func newFileNames(pkg string) *fileNames {
	f := &fileNames{used: make(map[string]bool)}
	for _, s := range []string{"_program", "_pdas", "_errors", "_constants"} {
		f.used[pkg+s] = true
	}
	return f
}

func (f *fileNames) claim(base string) string {
	if i := strings.LastIndexByte(base, '_'); i >= 0 && buildSuffixes[base[i+1:]] {
		base += "_type"
	}
	for f.used[base] {
		base += "_type"
	}
	f.used[base] = true
	return base + ".go"
}

// buildSuffixes are file name suffixes with meaning to the go tool.
var buildSuffixes = map[string]bool{
	"test": true,
	"aix":  true, "android": true, "darwin": true, "dragonfly": true, "freebsd": true,
	"hurd": true, "illumos": true, "ios": true, "js": true, "linux": true, "nacl": true,
	"netbsd": true, "openbsd": true, "plan9": true, "solaris": true, "wasip1": true,
	"windows": true, "zos": true,
	"386": true, "amd64": true, "arm": true, "arm64": true, "loong64": true, "mips": true,
	"mipsle": true, "mips64": true, "mips64le": true, "ppc64": true, "ppc64le": true,
	"riscv64": true, "s390x": true, "wasm": true,
}
