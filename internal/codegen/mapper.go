package codegen

import (
	"fmt"
	"strconv"

	"github.com/zhairuihao/anchor-src-gen/internal/idl"
)

// The mapper renders Go expressions for document types. Every expression
// assumes the generated locals r (*borsh.Reader) and data ([]byte) are in
// scope. Types reaching the mapper have passed validate, so unsupported
// shapes are programming errors. Only goType records imports: an import is
// needed exactly when a type name is spelled out.

type primitiveOps struct {
	goType string
	read   string
	put    string
	imp    string
}

var primitives = map[idl.PrimitiveKind]primitiveOps{
	idl.Bool:      {"bool", "Bool", "PutBool", ""},
	idl.U8:        {"uint8", "U8", "PutU8", ""},
	idl.I8:        {"int8", "I8", "PutI8", ""},
	idl.U16:       {"uint16", "U16", "PutU16", ""},
	idl.I16:       {"int16", "I16", "PutI16", ""},
	idl.U32:       {"uint32", "U32", "PutU32", ""},
	idl.I32:       {"int32", "I32", "PutI32", ""},
	idl.F32:       {"float32", "F32", "PutF32", ""},
	idl.U64:       {"uint64", "U64", "PutU64", ""},
	idl.I64:       {"int64", "I64", "PutI64", ""},
	idl.F64:       {"float64", "F64", "PutF64", ""},
	idl.Usize:     {"uint64", "U64", "PutU64", ""},
	idl.U128:      {"bin.Uint128", "U128", "PutU128", importBin},
	idl.I128:      {"bin.Int128", "I128", "PutI128", importBin},
	idl.U256:      {"*big.Int", "U256", "PutU256", importBig},
	idl.I256:      {"*big.Int", "I256", "PutI256", importBig},
	idl.Bytes:     {"[]byte", "Bytes", "PutBytes", ""},
	idl.String:    {"string", "Str", "PutString", ""},
	idl.PublicKey: {"solana.PublicKey", "PublicKey", "PutPublicKey", importSolana},
}

func isByte(t idl.Type) bool {
	p, ok := t.(*idl.Primitive)
	return ok && p.Name == idl.U8
}

// named returns the declaration behind a Defined that has its own Go type,
// or nil for an alias, which the mapper renders through.
func (c *Context) named(d *idl.Defined) *idl.NamedType {
	nt, ok := c.Registry.Lookup(d.Name)
	if !ok {
		panic(fmt.Sprintf("codegen: unresolved type %s", d.Name))
	}
	switch nt.Type.(type) {
	case *idl.Struct, *idl.Enum:
		return nt
	}
	return nil
}

func (c *Context) alias(d *idl.Defined) idl.Type {
	nt, _ := c.Registry.Lookup(d.Name)
	return nt.Type
}

func (c *Context) goType(u *Unit, t idl.Type) string {
	switch tt := t.(type) {
	case *idl.Primitive:
		ops := primitives[tt.Name]
		if ops.imp != "" {
			u.Import(ops.imp)
		}
		return ops.goType
	case *idl.Array:
		return fmt.Sprintf("[%d]%s", tt.Count, c.goType(u, tt.Elem))
	case *idl.Vector:
		if isByte(tt.Elem) {
			return "[]byte"
		}
		return "[]" + c.goType(u, tt.Elem)
	case *idl.Option:
		return "*" + c.goType(u, tt.Elem)
	case *idl.Defined:
		if nt := c.named(tt); nt != nil {
			return nt.Name
		}
		return c.goType(u, c.alias(tt))
	case *idl.Struct, *idl.Enum:
		panic(fmt.Sprintf("codegen: inline %s", t))
	default:
		panic(idl.Unreachable(t))
	}
}

// readFunc renders a func(*borsh.Reader) T value.
func (c *Context) readFunc(u *Unit, t idl.Type) string {
	switch tt := t.(type) {
	case *idl.Primitive:
		return "(*borsh.Reader)." + primitives[tt.Name].read
	case *idl.Array:
		return fmt.Sprintf("func(r *borsh.Reader) (a %s) { borsh.ReadArray(r, a[:], %s); return a }",
			c.goType(u, t), c.readFunc(u, tt.Elem))
	case *idl.Defined:
		if nt := c.named(tt); nt != nil {
			return "Read" + nt.Name
		}
		return c.readFunc(u, c.alias(tt))
	}
	return fmt.Sprintf("func(r *borsh.Reader) %s { return %s }", c.goType(u, t), c.readExpr(u, t))
}

// readExpr renders an expression decoding t from r.
func (c *Context) readExpr(u *Unit, t idl.Type) string {
	switch tt := t.(type) {
	case *idl.Primitive:
		return "r." + primitives[tt.Name].read + "()"
	case *idl.Array:
		return "(" + c.readFunc(u, t) + ")(r)"
	case *idl.Vector:
		if isByte(tt.Elem) {
			return "r.Bytes()"
		}
		return fmt.Sprintf("borsh.ReadVec(r, %s)", c.readFunc(u, tt.Elem))
	case *idl.Option:
		return fmt.Sprintf("borsh.ReadOption(r, %s)", c.readFunc(u, tt.Elem))
	case *idl.Defined:
		if nt := c.named(tt); nt != nil {
			return "Read" + nt.Name + "(r)"
		}
		return c.readExpr(u, c.alias(tt))
	default:
		panic(idl.Unreachable(t))
	}
}

// writeFunc renders a func([]byte, int, T) int value.
func (c *Context) writeFunc(u *Unit, t idl.Type) string {
	if p, ok := t.(*idl.Primitive); ok {
		return "borsh." + primitives[p.Name].put
	}
	if d, ok := t.(*idl.Defined); ok && c.named(d) == nil {
		return c.writeFunc(u, c.alias(d))
	}
	return fmt.Sprintf("func(data []byte, off int, v %s) int { return %s }", c.goType(u, t), c.writeExpr(u, t, "v", "off"))
}

// writeExpr renders an expression writing val at off and evaluating to the
// bytes written.
func (c *Context) writeExpr(u *Unit, t idl.Type, val, off string) string {
	switch tt := t.(type) {
	case *idl.Primitive:
		return fmt.Sprintf("%s(data, %s, %s)", c.writeFunc(u, t), off, val)
	case *idl.Array:
		return fmt.Sprintf("borsh.WriteArray(data, %s, %s[:], %s)", off, val, c.writeFunc(u, tt.Elem))
	case *idl.Vector:
		if isByte(tt.Elem) {
			return fmt.Sprintf("borsh.PutBytes(data, %s, %s)", off, val)
		}
		return fmt.Sprintf("borsh.WriteVec(data, %s, %s, %s)", off, val, c.writeFunc(u, tt.Elem))
	case *idl.Option:
		return fmt.Sprintf("borsh.WriteOption(data, %s, %s, %s)", off, val, c.writeFunc(u, tt.Elem))
	case *idl.Defined:
		if nt := c.named(tt); nt != nil {
			return fmt.Sprintf("%s.Write(data, %s)", val, off)
		}
		return c.writeExpr(u, c.alias(tt), val, off)
	default:
		panic(idl.Unreachable(t))
	}
}

// constant reports whether every value of t encodes to the same number of
// bytes. Fixed-width options are not constant: None writes only the tag.
func (c *Context) constant(t idl.Type) bool {
	if !c.measure(t).Fixed {
		return false
	}
	switch tt := t.(type) {
	case *idl.Primitive:
		return true
	case *idl.Array:
		return c.constant(tt.Elem)
	case *idl.Option:
		return false
	case *idl.Defined:
		return c.constant(c.alias(tt))
	case *idl.Struct:
		return c.constantFields(tt.Fields)
	case *idl.Enum:
		return !tt.HasPayloads()
	default:
		return false
	}
}

func (c *Context) constantFields(fields []idl.Field) bool {
	for _, f := range fields {
		if !c.constant(f.Type) {
			return false
		}
	}
	return true
}

// sizeFunc renders a func(T) int value.
func (c *Context) sizeFunc(u *Unit, t idl.Type) string {
	if c.constant(t) {
		return fmt.Sprintf("borsh.Width[%s](%d)", c.goType(u, t), c.measure(t).Len)
	}
	return fmt.Sprintf("func(v %s) int { return %s }", c.goType(u, t), c.lenExpr(u, t, "v"))
}

// lenExpr renders the encoded length of val. Constant-width types render
// as a literal.
func (c *Context) lenExpr(u *Unit, t idl.Type, val string) string {
	if c.constant(t) {
		return strconv.Itoa(c.measure(t).Len)
	}
	switch tt := t.(type) {
	case *idl.Primitive:
		return fmt.Sprintf("4 + len(%s)", val)
	case *idl.Array:
		return fmt.Sprintf("borsh.ArrayLen(%s[:], %s)", val, c.sizeFunc(u, tt.Elem))
	case *idl.Vector:
		if c.constant(tt.Elem) {
			em := c.measure(tt.Elem)
			if em.Len == 1 {
				return fmt.Sprintf("4 + len(%s)", val)
			}
			return fmt.Sprintf("4 + len(%s)*%d", val, em.Len)
		}
		return fmt.Sprintf("borsh.VecLen(%s, %s)", val, c.sizeFunc(u, tt.Elem))
	case *idl.Option:
		return fmt.Sprintf("borsh.OptionLen(%s, %s)", val, c.sizeFunc(u, tt.Elem))
	case *idl.Defined:
		if nt := c.named(tt); nt != nil {
			return val + ".Len()"
		}
		return c.lenExpr(u, c.alias(tt), val)
	default:
		panic(idl.Unreachable(t))
	}
}

// validate rejects field types the mapper cannot render and measures t so
// recursive references fail before emission.
func (c *Context) validate(t idl.Type, path []string) error {
	switch tt := t.(type) {
	case *idl.Primitive:
		if _, ok := primitives[tt.Name]; !ok {
			return idl.Unsupported(path, "primitive %s", tt.Name)
		}
	case *idl.Array:
		if tt.Depth() > idl.MaxNestingDepth {
			return idl.Unsupported(path, "array nesting deeper than %d", idl.MaxNestingDepth)
		}
		if err := c.validate(tt.Elem, path); err != nil {
			return err
		}
	case *idl.Vector:
		if tt.Depth() > idl.MaxNestingDepth {
			return idl.Unsupported(path, "vector nesting deeper than %d", idl.MaxNestingDepth)
		}
		if err := c.validate(tt.Elem, path); err != nil {
			return err
		}
	case *idl.Option:
		if err := c.validate(tt.Elem, path); err != nil {
			return err
		}
	case *idl.Defined:
		if _, ok := c.Registry.Lookup(tt.Name); !ok {
			return idl.Unresolved(path, tt.Name)
		}
	case *idl.Struct, *idl.Enum:
		return idl.Unsupported(path, "anonymous %s in field position", t.Kind())
	default:
		panic(idl.Unreachable(t))
	}
	if _, err := c.calc.Measure(t); err != nil {
		return err
	}
	return nil
}
