package idl

import (
	"encoding/json"
	"fmt"
	"strconv"
)

// DiscriminatorLength is the width of every explicit discriminator.
const DiscriminatorLength = 8

var documentFields = []string{
	"address", "version", "name", "metadata", "constants", "instructions",
	"accounts", "types", "events", "errors", "docs",
}

// Parse decodes a JSON document. It fails on the first malformed or
// unsupported construct. Parse does not resolve Defined references; use
// NewRegistry for that.
func Parse(raw []byte) (*Document, error) {
	root, err := decodeObject(raw, nil, documentFields...)
	if err != nil {
		return nil, err
	}

	doc := &Document{Raw: append([]byte(nil), raw...)}
	if doc.Address, err = root.str("address"); err != nil {
		return nil, err
	}
	if doc.Docs, err = root.strings("docs"); err != nil {
		return nil, err
	}
	if root.has("metadata") {
		if doc.Metadata, err = parseMetadata(root.raw("metadata"), root.at("metadata")); err != nil {
			return nil, err
		}
	}
	if doc.Name, err = root.str("name"); err != nil {
		return nil, err
	}
	if doc.Name == "" {
		doc.Name = doc.Metadata.Name
	}
	if doc.Name == "" {
		return nil, Malformed(nil, "missing program name")
	}
	if doc.Version, err = root.str("version"); err != nil {
		return nil, err
	}
	if doc.Version == "" {
		doc.Version = doc.Metadata.Version
	}

	if doc.Types, err = parseNamedTypes(root, "types"); err != nil {
		return nil, err
	}
	byName := make(map[string]*NamedType, len(doc.Types))
	for i := range doc.Types {
		byName[doc.Types[i].Name] = &doc.Types[i]
	}

	if doc.Accounts, err = parseNamedTypes(root, "accounts"); err != nil {
		return nil, err
	}
	if err := attachDefinitions(doc.Accounts, byName, root.at("accounts"), "account"); err != nil {
		return nil, err
	}
	if doc.Events, err = parseNamedTypes(root, "events"); err != nil {
		return nil, err
	}
	if err := attachDefinitions(doc.Events, byName, root.at("events"), "event"); err != nil {
		return nil, err
	}

	if doc.Instructions, err = parseInstructions(root); err != nil {
		return nil, err
	}
	if doc.Errors, err = parseErrors(root); err != nil {
		return nil, err
	}
	if doc.Constants, err = parseConstants(root); err != nil {
		return nil, err
	}
	return doc, nil
}

func parseMetadata(raw json.RawMessage, path []string) (Metadata, error) {
	obj, err := decodeObject(raw, path,
		"name", "version", "spec", "description", "repository", "contact",
		"dependencies", "deployments", "address", "origin")
	if err != nil {
		return Metadata{}, err
	}
	var m Metadata
	for _, f := range []struct {
		key string
		dst *string
	}{
		{"name", &m.Name}, {"version", &m.Version}, {"spec", &m.Spec},
		{"description", &m.Description}, {"repository", &m.Repository}, {"contact", &m.Contact},
	} {
		if *f.dst, err = obj.str(f.key); err != nil {
			return Metadata{}, err
		}
	}

	deps, err := obj.list("dependencies")
	if err != nil {
		return Metadata{}, err
	}
	for i, d := range deps {
		dobj, err := decodeObject(d, child(path, "dependencies", strconv.Itoa(i)), "name", "version")
		if err != nil {
			return Metadata{}, err
		}
		var dep Dependency
		if dep.Name, err = dobj.requiredStr("name"); err != nil {
			return Metadata{}, err
		}
		if dep.Version, err = dobj.str("version"); err != nil {
			return Metadata{}, err
		}
		m.Dependencies = append(m.Dependencies, dep)
	}

	if obj.has("deployments") {
		dobj, err := decodeObject(obj.raw("deployments"), obj.at("deployments"), "mainnet", "testnet", "devnet", "localnet")
		if err != nil {
			return Metadata{}, err
		}
		for _, f := range []struct {
			key string
			dst *string
		}{
			{"mainnet", &m.Deployments.Mainnet}, {"testnet", &m.Deployments.Testnet},
			{"devnet", &m.Deployments.Devnet}, {"localnet", &m.Deployments.Localnet},
		} {
			if *f.dst, err = dobj.str(f.key); err != nil {
				return Metadata{}, err
			}
		}
	}
	return m, nil
}

// parseNamedTypes reads a list of type, account or event declarations.
// Entries without a definition keep a nil Type for attachDefinitions.
func parseNamedTypes(root *object, key string) ([]NamedType, error) {
	items, err := root.list(key)
	if err != nil {
		return nil, err
	}
	out := make([]NamedType, 0, len(items))
	seen := make(map[string]bool, len(items))
	for i, item := range items {
		path := child(root.path, key, strconv.Itoa(i))
		nt, err := parseNamedType(item, path)
		if err != nil {
			return nil, err
		}
		if key == "types" && nt.Type == nil {
			return nil, Malformed(path, "type %q has no definition", nt.RawName)
		}
		if seen[nt.Name] {
			return nil, Malformed(path, "duplicate %s name %q", key, nt.Name)
		}
		seen[nt.Name] = true
		out = append(out, nt)
	}
	return out, nil
}

func parseNamedType(raw json.RawMessage, path []string) (NamedType, error) {
	obj, err := decodeObject(raw, path,
		"name", "docs", "discriminator", "serialization", "repr", "generics", "type", "fields")
	if err != nil {
		return NamedType{}, err
	}
	var nt NamedType
	if nt.RawName, err = obj.requiredStr("name"); err != nil {
		return NamedType{}, err
	}
	if nt.Name = TypeName(nt.RawName); nt.Name == "" {
		return NamedType{}, Malformed(obj.at("name"), "invalid type name %q", nt.RawName)
	}
	if nt.Docs, err = obj.strings("docs"); err != nil {
		return NamedType{}, err
	}
	if nt.Discriminator, err = obj.byteList("discriminator"); err != nil {
		return NamedType{}, err
	}
	if obj.has("discriminator") && len(nt.Discriminator) != DiscriminatorLength {
		return NamedType{}, Malformed(obj.at("discriminator"), "discriminator must be %d bytes, got %d", DiscriminatorLength, len(nt.Discriminator))
	}
	if nt.Serialization, err = obj.str("serialization"); err != nil {
		return NamedType{}, err
	}
	switch nt.Serialization {
	case "":
		nt.Serialization = SerializationBorsh
	case SerializationBorsh, SerializationBytemuck, SerializationBytemuckUnsafe:
	default:
		return NamedType{}, Malformed(obj.at("serialization"), "unknown serialization %q", nt.Serialization)
	}
	if obj.has("repr") {
		if nt.Repr, err = parseRepr(obj.raw("repr"), obj.at("repr")); err != nil {
			return NamedType{}, err
		}
	}
	generics, err := obj.list("generics")
	if err != nil {
		return NamedType{}, err
	}
	if len(generics) > 0 {
		return NamedType{}, Unsupported(obj.at("generics"), "generic type %q", nt.RawName)
	}

	switch {
	case obj.has("type"):
		if nt.Type, err = parseType(obj.raw("type"), obj.at("type")); err != nil {
			return NamedType{}, err
		}
	case obj.has("fields"):
		// Legacy events list their fields inline.
		fields, err := parseFields(obj, "fields")
		if err != nil {
			return NamedType{}, err
		}
		nt.Type = &Struct{Fields: fields}
	}
	return nt, nil
}

func parseRepr(raw json.RawMessage, path []string) (*Repr, error) {
	obj, err := decodeObject(raw, path, "kind", "packed", "align")
	if err != nil {
		return nil, err
	}
	r := &Repr{}
	if r.Kind, err = obj.requiredStr("kind"); err != nil {
		return nil, err
	}
	switch r.Kind {
	case "rust", "c", "transparent":
	default:
		return nil, Malformed(obj.at("kind"), "unknown repr %q", r.Kind)
	}
	if r.Packed, err = obj.boolean("packed"); err != nil {
		return nil, err
	}
	if obj.has("align") {
		if err := json.Unmarshal(obj.raw("align"), &r.Align); err != nil {
			return nil, Malformed(obj.at("align"), "expected integer alignment")
		}
	}
	return r, nil
}

// attachDefinitions fills declarations that only carry a name and
// discriminator from the types list.
func attachDefinitions(decls []NamedType, types map[string]*NamedType, path []string, what string) error {
	for i := range decls {
		d := &decls[i]
		def, inTypes := types[d.Name]
		if d.Type != nil {
			if inTypes {
				return Malformed(child(path, strconv.Itoa(i)), "defined %s type name collision: %q", what, d.Name)
			}
			continue
		}
		if !inTypes {
			return Unresolved(child(path, strconv.Itoa(i)), d.Name)
		}
		d.Type = def.Type
		if len(d.Docs) == 0 {
			d.Docs = def.Docs
		}
		d.Serialization = def.Serialization
		d.Repr = def.Repr
	}
	return nil
}

func parseInstructions(root *object) ([]Instruction, error) {
	items, err := root.list("instructions")
	if err != nil {
		return nil, err
	}
	out := make([]Instruction, 0, len(items))
	seen := make(map[string]bool, len(items))
	for i, item := range items {
		path := child(root.path, "instructions", strconv.Itoa(i))
		obj, err := decodeObject(item, path, "name", "docs", "discriminator", "accounts", "args", "returns")
		if err != nil {
			return nil, err
		}
		var ix Instruction
		if ix.RawName, err = obj.requiredStr("name"); err != nil {
			return nil, err
		}
		if ix.Name = MemberName(ix.RawName); ix.Name == "" {
			return nil, Malformed(obj.at("name"), "invalid instruction name %q", ix.RawName)
		}
		if seen[ix.Name] {
			return nil, Malformed(path, "duplicate instruction name %q", ix.Name)
		}
		seen[ix.Name] = true
		if ix.Docs, err = obj.strings("docs"); err != nil {
			return nil, err
		}
		if ix.Discriminator, err = obj.byteList("discriminator"); err != nil {
			return nil, err
		}
		if obj.has("discriminator") && len(ix.Discriminator) != DiscriminatorLength {
			return nil, Malformed(obj.at("discriminator"), "discriminator must be %d bytes, got %d", DiscriminatorLength, len(ix.Discriminator))
		}
		metas, err := obj.list("accounts")
		if err != nil {
			return nil, err
		}
		if ix.Accounts, err = parseAccountMetas(metas, obj.at("accounts"), ""); err != nil {
			return nil, err
		}
		if err := checkUniqueMetas(ix.Accounts, obj.at("accounts")); err != nil {
			return nil, err
		}
		if ix.Args, err = parseFields(obj, "args"); err != nil {
			return nil, err
		}
		for j, a := range ix.Args {
			if a.Name == "" {
				return nil, Malformed(child(obj.at("args"), strconv.Itoa(j)), "instruction arguments must be named")
			}
		}
		if obj.has("returns") {
			if ix.Returns, err = parseType(obj.raw("returns"), obj.at("returns")); err != nil {
				return nil, err
			}
		}
		out = append(out, ix)
	}
	return out, nil
}

var metaFields = []string{
	"name", "docs", "desc", "isMut", "writable", "isSigner", "signer",
	"isOptional", "optional", "address", "pda", "relations", "accounts",
}

// parseAccountMetas flattens nested account groups depth first. Members of
// a group named "pool" are prefixed: pool + vault becomes poolVault.
func parseAccountMetas(items []json.RawMessage, path []string, prefix string) ([]AccountMeta, error) {
	var out []AccountMeta
	for i, item := range items {
		p := child(path, strconv.Itoa(i))
		obj, err := decodeObject(item, p, metaFields...)
		if err != nil {
			return nil, err
		}
		raw, err := obj.requiredStr("name")
		if err != nil {
			return nil, err
		}
		name := MemberName(raw)
		if name == "" {
			return nil, Malformed(obj.at("name"), "invalid account name %q", raw)
		}
		if prefix != "" {
			name = prefix + Exported(name)
		}

		if obj.has("accounts") {
			nested, err := obj.list("accounts")
			if err != nil {
				return nil, err
			}
			group, err := parseAccountMetas(nested, obj.at("accounts"), name)
			if err != nil {
				return nil, err
			}
			out = append(out, group...)
			continue
		}

		m := AccountMeta{Name: name, RawName: raw}
		if m.Docs, err = obj.strings("docs"); err != nil {
			return nil, err
		}
		if len(m.Docs) == 0 && obj.has("desc") {
			desc, err := obj.str("desc")
			if err != nil {
				return nil, err
			}
			m.Docs = []string{desc}
		}
		if m.Writable, err = obj.flag("writable", "isMut"); err != nil {
			return nil, err
		}
		if m.Signer, err = obj.flag("signer", "isSigner"); err != nil {
			return nil, err
		}
		if m.Optional, err = obj.flag("optional", "isOptional"); err != nil {
			return nil, err
		}
		if m.Address, err = obj.str("address"); err != nil {
			return nil, err
		}
		if m.Relations, err = obj.strings("relations"); err != nil {
			return nil, err
		}
		if obj.has("pda") {
			if m.PDA, err = parsePDA(obj.raw("pda"), obj.at("pda")); err != nil {
				return nil, err
			}
		}
		out = append(out, m)
	}
	return out, nil
}

func checkUniqueMetas(metas []AccountMeta, path []string) error {
	seen := make(map[string]bool, len(metas))
	for _, m := range metas {
		if seen[m.Name] {
			return Malformed(path, "duplicate account name %q", m.Name)
		}
		seen[m.Name] = true
	}
	return nil
}

func parsePDA(raw json.RawMessage, path []string) (*PDA, error) {
	obj, err := decodeObject(raw, path, "seeds", "program")
	if err != nil {
		return nil, err
	}
	items, err := obj.list("seeds")
	if err != nil {
		return nil, err
	}
	if len(items) == 0 {
		return nil, Malformed(path, "pda has no seeds")
	}
	pda := &PDA{Seeds: make([]Seed, 0, len(items))}
	for i, item := range items {
		s, err := parseSeed(item, child(path, "seeds", strconv.Itoa(i)))
		if err != nil {
			return nil, err
		}
		pda.Seeds = append(pda.Seeds, s)
	}
	if obj.has("program") {
		s, err := parseSeed(obj.raw("program"), obj.at("program"))
		if err != nil {
			return nil, err
		}
		pda.Program = &s
	}
	return pda, nil
}

func parseSeed(raw json.RawMessage, path []string) (Seed, error) {
	obj, err := decodeObject(raw, path, "kind", "path", "value", "account", "type")
	if err != nil {
		return Seed{}, err
	}
	kind, err := obj.requiredStr("kind")
	if err != nil {
		return Seed{}, err
	}
	s := Seed{Kind: SeedKind(kind)}
	switch s.Kind {
	case SeedConst:
		if !obj.has("value") {
			return Seed{}, Malformed(path, "const seed has no value")
		}
		var str string
		if err := json.Unmarshal(obj.raw("value"), &str); err == nil {
			s.Value = []byte(str)
		} else if s.Value, err = decodeByteList(obj.raw("value"), obj.at("value")); err != nil {
			return Seed{}, err
		}
	case SeedAccount, SeedArg:
		if s.Path, err = obj.requiredStr("path"); err != nil {
			return Seed{}, err
		}
		if s.Account, err = obj.str("account"); err != nil {
			return Seed{}, err
		}
	default:
		return Seed{}, Malformed(obj.at("kind"), "unknown seed kind %q", kind)
	}
	return s, nil
}

func parseErrors(root *object) ([]ErrorCode, error) {
	items, err := root.list("errors")
	if err != nil {
		return nil, err
	}
	out := make([]ErrorCode, 0, len(items))
	seenName := make(map[string]bool, len(items))
	seenCode := make(map[uint32]bool, len(items))
	for i, item := range items {
		path := child(root.path, "errors", strconv.Itoa(i))
		obj, err := decodeObject(item, path, "code", "name", "msg")
		if err != nil {
			return nil, err
		}
		var e ErrorCode
		if !obj.has("code") {
			return nil, Malformed(path, "missing required field \"code\"")
		}
		if err := json.Unmarshal(obj.raw("code"), &e.Code); err != nil {
			return nil, Malformed(obj.at("code"), "expected unsigned error code")
		}
		if e.RawName, err = obj.requiredStr("name"); err != nil {
			return nil, err
		}
		if e.Name = TypeName(e.RawName); e.Name == "" {
			return nil, Malformed(obj.at("name"), "invalid error name %q", e.RawName)
		}
		if e.Msg, err = obj.str("msg"); err != nil {
			return nil, err
		}
		if seenName[e.Name] {
			return nil, Malformed(path, "duplicate error name %q", e.Name)
		}
		if seenCode[e.Code] {
			return nil, Malformed(path, "duplicate error code %s", fmt.Sprint(e.Code))
		}
		seenName[e.Name] = true
		seenCode[e.Code] = true
		out = append(out, e)
	}
	return out, nil
}
