package idl

import (
	"encoding/json"
	"math/big"
	"strconv"
	"strings"

	"github.com/gagliardetto/solana-go"
)

func parseConstants(root *object) ([]Constant, error) {
	items, err := root.list("constants")
	if err != nil {
		return nil, err
	}
	out := make([]Constant, 0, len(items))
	seen := make(map[string]bool, len(items))
	for i, item := range items {
		path := child(root.path, "constants", strconv.Itoa(i))
		c, err := parseConstant(item, path)
		if err != nil {
			return nil, err
		}
		if seen[c.Name] {
			return nil, Malformed(path, "duplicate constant name %q", c.Name)
		}
		seen[c.Name] = true
		out = append(out, c)
	}
	return out, nil
}

func parseConstant(raw json.RawMessage, path []string) (Constant, error) {
	obj, err := decodeObject(raw, path, "name", "type", "value", "docs")
	if err != nil {
		return Constant{}, err
	}
	var c Constant
	if c.RawName, err = obj.requiredStr("name"); err != nil {
		return Constant{}, err
	}
	if c.Name = ConstantName(c.RawName); c.Name == "" {
		return Constant{}, Malformed(obj.at("name"), "invalid constant name %q", c.RawName)
	}
	if c.Docs, err = obj.strings("docs"); err != nil {
		return Constant{}, err
	}
	if c.Raw, err = obj.requiredStr("value"); err != nil {
		return Constant{}, err
	}
	if !obj.has("type") {
		return Constant{}, Malformed(path, "missing required field \"type\"")
	}
	if c.Type, err = constantType(obj.raw("type"), obj.at("type")); err != nil {
		return Constant{}, err
	}
	if err := c.decodeValue(obj.at("value")); err != nil {
		return Constant{}, err
	}
	return c, nil
}

// constantType accepts a primitive tag or {"defined": "usize"} style
// wrappers around one.
func constantType(raw json.RawMessage, path []string) (PrimitiveKind, error) {
	t, err := parseType(raw, path)
	if err != nil {
		return "", err
	}
	switch tt := t.(type) {
	case *Primitive:
		return tt.Name, nil
	case *Defined:
		if k, ok := ParsePrimitive(strings.ToLower(tt.Name)); ok {
			return k, nil
		}
	case *Vector:
		if p, ok := tt.Elem.(*Primitive); ok && p.Name == U8 {
			return Bytes, nil
		}
	case *Array:
		if p, ok := tt.Elem.(*Primitive); ok && p.Name == U8 {
			return Bytes, nil
		}
	}
	return "", Unsupported(path, "constant of type %s", t)
}

func (c *Constant) decodeValue(path []string) error {
	v := strings.TrimSpace(c.Raw)
	switch c.Type {
	case String:
		c.Kind = ConstString
		if unq, err := strconv.Unquote(v); err == nil {
			c.Str = unq
		} else {
			c.Str = v
		}
	case Bytes:
		c.Kind = ConstBytes
		b, err := parseByteLiteral(v)
		if err != nil {
			return Malformed(path, "invalid bytes constant %q", c.Raw)
		}
		c.Bytes = b
	case Bool:
		c.Kind = ConstBool
		b, err := strconv.ParseBool(v)
		if err != nil {
			return Malformed(path, "invalid bool constant %q", c.Raw)
		}
		c.Bool = b
	case F32, F64:
		c.Kind = ConstFloat
		f, err := strconv.ParseFloat(strings.ReplaceAll(strings.TrimSuffix(v, string(c.Type)), "_", ""), 64)
		if err != nil {
			return Malformed(path, "invalid float constant %q", c.Raw)
		}
		c.Float = f
	case PublicKey:
		c.Kind = ConstPublicKey
		if unq, err := strconv.Unquote(v); err == nil {
			v = unq
		}
		if _, err := solana.PublicKeyFromBase58(v); err != nil {
			return Malformed(path, "invalid public key constant %q", c.Raw)
		}
		c.Str = v
	default:
		if !c.Type.Integer() {
			return Unsupported(path, "constant of type %s", c.Type)
		}
		n, ok := parseInteger(strings.TrimSuffix(v, string(c.Type)))
		if !ok {
			return Malformed(path, "invalid integer constant %q", c.Raw)
		}
		if !fitsInteger(c.Type, n) {
			return Malformed(path, "constant %s overflows %s", c.Raw, c.Type)
		}
		c.Int = n
		c.Kind = ConstInteger
		switch c.Type {
		case U128, I128, U256, I256:
			c.Kind = ConstBigInt
		}
	}
	return nil
}

// parseByteLiteral reads "[1, 2, 3]" or b"text".
func parseByteLiteral(v string) ([]byte, error) {
	if strings.HasPrefix(v, "b\"") {
		s, err := strconv.Unquote(v[1:])
		if err != nil {
			return nil, err
		}
		return []byte(s), nil
	}
	var ints []int
	if err := json.Unmarshal([]byte(v), &ints); err != nil {
		return nil, err
	}
	out := make([]byte, len(ints))
	for i, n := range ints {
		if n < 0 || n > 255 {
			return nil, strconv.ErrRange
		}
		out[i] = byte(n)
	}
	return out, nil
}

// parseInteger reads a decimal or 0x-prefixed literal with optional
// underscore separators.
func parseInteger(v string) (*big.Int, bool) {
	v = strings.ReplaceAll(v, "_", "")
	neg := strings.HasPrefix(v, "-")
	v = strings.TrimPrefix(v, "-")
	base := 10
	if strings.HasPrefix(v, "0x") || strings.HasPrefix(v, "0X") {
		base = 16
		v = v[2:]
	}
	n, ok := new(big.Int).SetString(v, base)
	if !ok {
		return nil, false
	}
	if neg {
		n.Neg(n)
	}
	return n, true
}

func fitsInteger(k PrimitiveKind, n *big.Int) bool {
	bits := uint(k.Width() * 8)
	if strings.HasPrefix(string(k), "u") {
		return n.Sign() >= 0 && uint(n.BitLen()) <= bits
	}
	limit := new(big.Int).Lsh(big.NewInt(1), bits-1)
	lo := new(big.Int).Neg(limit)
	hi := new(big.Int).Sub(limit, big.NewInt(1))
	return n.Cmp(lo) >= 0 && n.Cmp(hi) <= 0
}
