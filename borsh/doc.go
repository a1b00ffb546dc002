// Package borsh is the serialization runtime imported by generated program
// bindings.
//
// Every value is little-endian. Strings, byte slices and vectors carry a u32
// length prefix. Options carry a single presence byte (0 = none, 1 = some)
// followed by the value when present.
//
// Decoding goes through a Reader with a sticky error: the first short read or
// explicit Fail records an error and every later read returns a zero value, so
// generated Read methods can be straight-line code with a single error check
// at the end.
//
// Encoding writes into a caller-sized buffer. Every Put function returns the
// number of bytes written so callers can advance their offset:
//
//	i := offset
//	i += borsh.PutU64(data, i, v.Amount)
//	i += borsh.PutString(data, i, v.Memo)
//	return i - offset
package borsh
