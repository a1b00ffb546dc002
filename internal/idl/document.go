package idl

import "math/big"

// Document is a parsed program interface description. It is immutable once
// Parse returns.
type Document struct {
	Address      string
	Name         string
	Version      string
	Docs         []string
	Metadata     Metadata
	Constants    []Constant
	Instructions []Instruction
	Accounts     []NamedType
	Types        []NamedType
	Events       []NamedType
	Errors       []ErrorCode

	// Raw is the source JSON, written next to the generated code.
	Raw []byte
}

// Metadata is the optional descriptive block of a document.
type Metadata struct {
	Name         string
	Version      string
	Spec         string
	Description  string
	Repository   string
	Contact      string
	Dependencies []Dependency
	Deployments  Deployments
}

// Dependency names a crate the program was built against.
type Dependency struct {
	Name    string
	Version string
}

// Deployments lists program addresses per cluster.
type Deployments struct {
	Mainnet  string
	Testnet  string
	Devnet   string
	Localnet string
}

// Serialization modes of a named type.
const (
	SerializationBorsh          = "borsh"
	SerializationBytemuck       = "bytemuck"
	SerializationBytemuckUnsafe = "bytemuckunsafe"
)

// Repr is the memory representation hint of a named type.
type Repr struct {
	Kind   string // rust, c or transparent
	Packed bool
	Align  int
}

// NamedType is a type, account or event declaration.
type NamedType struct {
	Name          string
	RawName       string
	Docs          []string
	Discriminator []byte // explicit tag, nil when absent
	Serialization string
	Repr          *Repr
	Type          Type
}

// Instruction is a program entrypoint.
type Instruction struct {
	Name          string
	RawName       string
	Docs          []string
	Discriminator []byte // explicit tag, nil when absent
	Accounts      []AccountMeta
	Args          []Field
	Returns       Type
}

// AccountMeta is one account an instruction reads or writes. Composite
// account groups are flattened at parse time with the group name as prefix.
type AccountMeta struct {
	Name      string
	RawName   string
	Docs      []string
	Writable  bool
	Signer    bool
	Optional  bool
	Address   string
	PDA       *PDA
	Relations []string
}

// SeedKind selects how a PDA seed is obtained.
type SeedKind string

const (
	SeedConst   SeedKind = "const"
	SeedAccount SeedKind = "account"
	SeedArg     SeedKind = "arg"
)

// Seed is one PDA seed.
type Seed struct {
	Kind    SeedKind
	Path    string // account or arg path, empty for const seeds
	Value   []byte // const seeds only
	Account string // account type of an account seed path, if declared
}

// PDA is a program derived address rule.
type PDA struct {
	Seeds   []Seed
	Program *Seed // owning program, nil when it is the invoked program
}

// ConstantKind classifies a constant literal.
type ConstantKind string

const (
	ConstString    ConstantKind = "string"
	ConstInteger   ConstantKind = "integer"
	ConstBigInt    ConstantKind = "bigint"
	ConstBytes     ConstantKind = "bytes"
	ConstBool      ConstantKind = "bool"
	ConstPublicKey ConstantKind = "pubkey"
	ConstFloat     ConstantKind = "float"
)

// Constant is a program-level named literal.
type Constant struct {
	Name    string
	RawName string
	Docs    []string
	Type    PrimitiveKind
	Kind    ConstantKind
	Raw     string

	Str   string
	Int   *big.Int
	Float float64
	Bytes []byte
	Bool  bool
}

// ErrorCode is one entry of the program error taxonomy.
type ErrorCode struct {
	Code    uint32
	Name    string
	RawName string
	Msg     string
}
