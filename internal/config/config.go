// Package config loads and validates batch configuration files.
//
// A configuration file is YAML. It is first checked against an embedded
// CUE schema, then decoded and completed with defaults.
package config

import (
	"bytes"
	_ "embed"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"cuelang.org/go/cue"
	"cuelang.org/go/cue/cuecontext"
	cueerrors "cuelang.org/go/cue/errors"
	"cuelang.org/go/cue/token"
	cueyaml "cuelang.org/go/encoding/yaml"
	"github.com/gagliardetto/solana-go/rpc"
	"gopkg.in/yaml.v3"

	"github.com/zhairuihao/anchor-src-gen/internal/codegen"
	"github.com/zhairuihao/anchor-src-gen/internal/fetch"
)

//go:embed schema.cue
var schemaSource string

// Defaults for omitted settings.
const (
	DefaultOutput     = "generated"
	DefaultWorkers    = 4
	DefaultBaseDelay  = 200 * time.Millisecond
	DefaultTimeout    = 30 * time.Second
	DefaultMaxRetries = 3
)

// DefaultRPC is the endpoint used to read on-chain IDL accounts.
var DefaultRPC = rpc.MainNetBeta_RPC

// Program is one entry of the program list.
type Program struct {
	Name string `yaml:"name"`
	// Package defaults to the name lower-cased and stripped to a valid
	// identifier.
	Package string `yaml:"package"`
	// Address is the base58 program id. It locates the on-chain IDL
	// account when neither IDLURL nor IDLPath is set.
	Address string `yaml:"program"`
	IDLURL  string `yaml:"idlURL"`
	IDLPath string `yaml:"idlPath"`
}

// Source returns where the program's document is loaded from.
func (p Program) Source() fetch.Source {
	return fetch.Source{Path: p.IDLPath, URL: p.IDLURL, Program: p.Address}
}

// Config is a loaded batch configuration.
type Config struct {
	Output        string        `yaml:"output"`
	RuntimeImport string        `yaml:"runtimeImport"`
	RPC           string        `yaml:"rpc"`
	Workers       int           `yaml:"workers"`
	Permits       int           `yaml:"permits"`
	BaseDelay     time.Duration `yaml:"baseDelay"`
	Timeout       time.Duration `yaml:"timeout"`
	MaxRetries    int           `yaml:"maxRetries"`
	// Store is the history database path. Empty disables recording.
	Store    string    `yaml:"store"`
	Programs []Program `yaml:"programs"`
}

// Error is a configuration problem, positioned when the schema reported it.
type Error struct {
	Message string
	Pos     token.Pos
}

func (e *Error) Error() string {
	if e.Pos.IsValid() {
		return fmt.Sprintf("%s:%d:%d: %s", e.Pos.Filename(), e.Pos.Line(), e.Pos.Column(), e.Message)
	}
	return e.Message
}

// Load reads and validates the file at path. Relative output, store and
// idlPath entries are resolved against the file's directory.
func Load(path string) (*Config, error) {
	src, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read config: %w", err)
	}
	cfg, err := Parse(path, src)
	if err != nil {
		return nil, err
	}
	cfg.resolve(filepath.Dir(path))
	return cfg, nil
}

// Parse validates and decodes src. filename is used in error positions.
func Parse(filename string, src []byte) (*Config, error) {
	if err := validate(filename, src); err != nil {
		return nil, err
	}

	var cfg Config
	dec := yaml.NewDecoder(bytes.NewReader(src))
	dec.KnownFields(true)
	if err := dec.Decode(&cfg); err != nil {
		return nil, &Error{Message: fmt.Sprintf("decode %s: %v", filename, err)}
	}
	cfg.applyDefaults()
	if err := cfg.check(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// validate unifies the document with #Config.
func validate(filename string, src []byte) error {
	ctx := cuecontext.New()
	schema := ctx.CompileString(schemaSource, cue.Filename("schema.cue"))
	if err := schema.Err(); err != nil {
		return fmt.Errorf("compile config schema: %w", err)
	}

	file, err := cueyaml.Extract(filename, src)
	if err != nil {
		return formatCUEError(err)
	}
	doc := ctx.BuildFile(file)
	if err := doc.Err(); err != nil {
		return formatCUEError(err)
	}
	v := schema.LookupPath(cue.ParsePath("#Config")).Unify(doc)
	return formatCUEError(v.Validate(cue.Concrete(true)))
}

// formatCUEError keeps the first error and its position.
func formatCUEError(err error) error {
	if err == nil {
		return nil
	}
	errs := cueerrors.Errors(err)
	if len(errs) == 0 {
		return &Error{Message: err.Error()}
	}
	first := errs[0]
	e := &Error{Message: first.Error()}
	if positions := cueerrors.Positions(first); len(positions) > 0 {
		e.Pos = positions[0]
	}
	return e
}

func (c *Config) applyDefaults() {
	if c.Output == "" {
		c.Output = DefaultOutput
	}
	if c.RPC == "" {
		c.RPC = DefaultRPC
	}
	if c.Workers == 0 {
		c.Workers = DefaultWorkers
	}
	if c.Permits == 0 {
		c.Permits = c.Workers
	}
	if c.BaseDelay == 0 {
		c.BaseDelay = DefaultBaseDelay
	}
	if c.Timeout == 0 {
		c.Timeout = DefaultTimeout
	}
	if c.MaxRetries == 0 {
		c.MaxRetries = DefaultMaxRetries
	}
	for i := range c.Programs {
		p := &c.Programs[i]
		if p.Package == "" {
			p.Package = codegen.PackageName(p.Name)
		}
	}
}

// check enforces the rules the schema cannot express.
func (c *Config) check() error {
	if len(c.Programs) == 0 {
		return &Error{Message: "no programs configured"}
	}
	seen := make(map[string]string, len(c.Programs))
	for _, p := range c.Programs {
		if p.Address == "" && p.IDLURL == "" && p.IDLPath == "" {
			return &Error{Message: fmt.Sprintf("program %s: one of program, idlURL or idlPath is required", p.Name)}
		}
		if p.Package == "" {
			return &Error{Message: fmt.Sprintf("program %s: name yields no package, set package", p.Name)}
		}
		if other, ok := seen[p.Package]; ok {
			return &Error{Message: fmt.Sprintf("programs %s and %s both generate package %s", other, p.Name, p.Package)}
		}
		seen[p.Package] = p.Name
	}
	return nil
}

func (c *Config) resolve(dir string) {
	c.Output = under(dir, c.Output)
	if c.Store != "" {
		c.Store = under(dir, c.Store)
	}
	for i := range c.Programs {
		if c.Programs[i].IDLPath != "" {
			c.Programs[i].IDLPath = under(dir, c.Programs[i].IDLPath)
		}
	}
}

func under(dir, p string) string {
	if filepath.IsAbs(p) {
		return p
	}
	return filepath.Join(dir, p)
}
