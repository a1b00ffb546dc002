package idl

import (
	"sort"
	"strconv"
)

// Registry maps defined type names to declarations. It is built once per
// document and read-only afterwards, so it is safe for concurrent readers.
type Registry struct {
	types    map[string]*NamedType
	accounts map[string]bool
	names    []string
}

// NewRegistry indexes every type, account and event of doc and checks that
// every Defined reference in the document resolves.
func NewRegistry(doc *Document) (*Registry, error) {
	r := &Registry{types: make(map[string]*NamedType), accounts: make(map[string]bool)}
	for _, a := range doc.Accounts {
		r.accounts[a.Name] = true
	}
	for _, group := range []struct {
		key   string
		decls []NamedType
	}{
		{"types", doc.Types},
		{"accounts", doc.Accounts},
		{"events", doc.Events},
	} {
		for i := range group.decls {
			nt := &group.decls[i]
			if prev, ok := r.types[nt.Name]; ok {
				if prev.Type != nt.Type {
					return nil, Malformed([]string{group.key, strconv.Itoa(i)}, "defined type name collision: %q", nt.Name)
				}
				continue
			}
			r.types[nt.Name] = nt
			r.names = append(r.names, nt.Name)
		}
	}
	sort.Strings(r.names)

	for _, name := range r.names {
		if err := r.check(r.types[name].Type, []string{name}); err != nil {
			return nil, err
		}
	}
	for _, ix := range doc.Instructions {
		for _, arg := range ix.Args {
			if err := r.check(arg.Type, []string{ix.Name, arg.Name}); err != nil {
				return nil, err
			}
		}
		if ix.Returns != nil {
			if err := r.check(ix.Returns, []string{ix.Name, "returns"}); err != nil {
				return nil, err
			}
		}
	}
	return r, nil
}

// check walks t and fails on the first unresolved Defined reference.
func (r *Registry) check(t Type, path []string) error {
	switch tt := t.(type) {
	case *Primitive:
		return nil
	case *Array:
		return r.check(tt.Elem, path)
	case *Vector:
		return r.check(tt.Elem, path)
	case *Option:
		return r.check(tt.Elem, path)
	case *Defined:
		if _, ok := r.types[tt.Name]; !ok {
			return Unresolved(path, tt.Name)
		}
		return nil
	case *Struct:
		for i, f := range tt.Fields {
			name := f.Name
			if name == "" {
				name = strconv.Itoa(i)
			}
			if err := r.check(f.Type, child(path, name)); err != nil {
				return err
			}
		}
		return nil
	case *Enum:
		for _, v := range tt.Variants {
			for i, f := range v.Fields {
				if err := r.check(f.Type, child(path, v.Name, strconv.Itoa(i))); err != nil {
					return err
				}
			}
		}
		return nil
	default:
		panic(Unreachable(t))
	}
}

// Lookup returns the declaration named name.
func (r *Registry) Lookup(name string) (*NamedType, bool) {
	nt, ok := r.types[name]
	return nt, ok
}

// IsAccount reports whether name is declared as an account. Account values
// carry their tag wherever they are encoded, including nested positions.
func (r *Registry) IsAccount(name string) bool {
	return r.accounts[name]
}

// Resolve follows Defined references until a non-Defined type is reached.
// It returns nil for an unresolved name or a reference cycle.
func (r *Registry) Resolve(t Type) Type {
	seen := make(map[string]bool)
	for {
		d, ok := t.(*Defined)
		if !ok {
			return t
		}
		if seen[d.Name] {
			return nil
		}
		seen[d.Name] = true
		nt, ok := r.types[d.Name]
		if !ok {
			return nil
		}
		t = nt.Type
	}
}

// Names returns every registered name in sorted order.
func (r *Registry) Names() []string {
	out := make([]string, len(r.names))
	copy(out, r.names)
	return out
}

// Len returns the number of registered names.
func (r *Registry) Len() int {
	return len(r.names)
}
