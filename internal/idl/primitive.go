package idl

// PrimitiveKind names a leaf type of the document type system.
type PrimitiveKind string

const (
	Bool      PrimitiveKind = "bool"
	U8        PrimitiveKind = "u8"
	I8        PrimitiveKind = "i8"
	U16       PrimitiveKind = "u16"
	I16       PrimitiveKind = "i16"
	U32       PrimitiveKind = "u32"
	I32       PrimitiveKind = "i32"
	F32       PrimitiveKind = "f32"
	U64       PrimitiveKind = "u64"
	I64       PrimitiveKind = "i64"
	F64       PrimitiveKind = "f64"
	Usize     PrimitiveKind = "usize"
	U128      PrimitiveKind = "u128"
	I128      PrimitiveKind = "i128"
	U256      PrimitiveKind = "u256"
	I256      PrimitiveKind = "i256"
	Bytes     PrimitiveKind = "bytes"
	String    PrimitiveKind = "string"
	PublicKey PrimitiveKind = "pubkey"
)

var primitiveTags = map[string]PrimitiveKind{
	"bool":      Bool,
	"u8":        U8,
	"i8":        I8,
	"u16":       U16,
	"i16":       I16,
	"u32":       U32,
	"i32":       I32,
	"f32":       F32,
	"u64":       U64,
	"i64":       I64,
	"f64":       F64,
	"usize":     Usize,
	"u128":      U128,
	"i128":      I128,
	"u256":      U256,
	"i256":      I256,
	"bytes":     Bytes,
	"string":    String,
	"pubkey":    PublicKey,
	"publicKey": PublicKey,
}

// ParsePrimitive maps a string type tag to its kind.
func ParsePrimitive(tag string) (PrimitiveKind, bool) {
	k, ok := primitiveTags[tag]
	return k, ok
}

// Width returns the encoded width of a fixed primitive, or 0 for string and bytes.
func (k PrimitiveKind) Width() int {
	switch k {
	case Bool, U8, I8:
		return 1
	case U16, I16:
		return 2
	case U32, I32, F32:
		return 4
	case U64, I64, F64, Usize:
		return 8
	case U128, I128:
		return 16
	case U256, I256, PublicKey:
		return 32
	default:
		return 0
	}
}

// Fixed reports whether k has a static width.
func (k PrimitiveKind) Fixed() bool {
	return k.Width() > 0
}

// Integer reports whether k is an integer kind.
func (k PrimitiveKind) Integer() bool {
	switch k {
	case U8, I8, U16, I16, U32, I32, U64, I64, Usize, U128, I128, U256, I256:
		return true
	}
	return false
}
