// Package generator assembles codegen units into a package directory on
// disk: it formats every unit, writes the raw document next to the code and
// reports a digest of everything it wrote.
package generator

import (
	"context"
	"fmt"
	"go/format"
	"os"
	"path"
	"path/filepath"
	"sort"

	"go.uber.org/zap"

	"github.com/zhairuihao/anchor-src-gen/internal/codegen"
	"github.com/zhairuihao/anchor-src-gen/internal/digest"
	"github.com/zhairuihao/anchor-src-gen/internal/idl"
	"github.com/zhairuihao/anchor-src-gen/internal/known"
)

// IDLFile is the name of the raw document written into each package.
const IDLFile = "idl.json"

// Generator writes generated packages below a root directory.
//
// A Generator may be shared between goroutines as long as each call
// targets a different package; every call builds its own codegen.Context.
type Generator struct {
	root    string
	log     *zap.Logger
	runtime string
	known   *known.Table
}

// Option configures a Generator.
type Option func(*Generator)

// WithLogger sets the logger. Default: zap.NewNop().
func WithLogger(l *zap.Logger) Option {
	return func(g *Generator) {
		g.log = l
	}
}

// WithRuntimeImport overrides the serialization runtime import path of
// generated code.
func WithRuntimeImport(p string) Option {
	return func(g *Generator) {
		g.runtime = p
	}
}

// WithKnown sets the well-known account table.
func WithKnown(t *known.Table) Option {
	return func(g *Generator) {
		g.known = t
	}
}

// New creates a Generator writing below root.
func New(root string, opts ...Option) *Generator {
	g := &Generator{root: root, log: zap.NewNop()}
	for _, opt := range opts {
		opt(g)
	}
	return g
}

// Root returns the output root.
func (g *Generator) Root() string {
	return g.root
}

// Result describes one generated package.
type Result struct {
	Program string
	Package string
	// Dir is the package directory.
	Dir string
	// Files are paths relative to the output root, sorted.
	Files     []string
	IDLDigest string
	// Digest covers the path and content of every written file.
	Digest string
}

// Clean removes the output root and everything below it, then recreates it
// empty.
func (g *Generator) Clean() error {
	if g.root == "" || g.root == "/" {
		return fmt.Errorf("refusing to clean output root %q", g.root)
	}
	if err := os.RemoveAll(g.root); err != nil {
		return fmt.Errorf("clean %s: %w", g.root, err)
	}
	if err := os.MkdirAll(g.root, 0o755); err != nil {
		return fmt.Errorf("create %s: %w", g.root, err)
	}
	return nil
}

// Render parses raw and returns the formatted files of its package without
// touching the filesystem. pkg overrides the package name when non-empty.
func (g *Generator) Render(raw []byte, pkg string) (*codegen.Context, []digest.File, error) {
	doc, err := idl.Parse(raw)
	if err != nil {
		return nil, nil, err
	}
	c, err := codegen.NewContext(doc, codegen.Options{
		Package:       pkg,
		RuntimeImport: g.runtime,
		Known:         g.known,
	})
	if err != nil {
		return nil, nil, err
	}
	units, err := codegen.Generate(c)
	if err != nil {
		return nil, nil, err
	}

	files := make([]digest.File, 0, len(units)+1)
	files = append(files, digest.File{Path: path.Join(c.Package, IDLFile), Content: doc.Raw})
	for _, u := range units {
		src, err := format.Source(u.Source())
		if err != nil {
			return nil, nil, fmt.Errorf("format %s/%s: %w", c.Package, u.Name, err)
		}
		files = append(files, digest.File{Path: path.Join(c.Package, u.Name), Content: src})
	}
	return c, files, nil
}

// Generate renders raw and writes the package into its directory below the
// root. An existing package directory is replaced.
func (g *Generator) Generate(ctx context.Context, raw []byte, pkg string) (*Result, error) {
	c, files, err := g.Render(raw, pkg)
	if err != nil {
		return nil, err
	}
	log := g.log.With(zap.String("program", c.Doc.Name), zap.String("package", c.Package))

	dir := filepath.Join(g.root, c.Package)
	if err := os.RemoveAll(dir); err != nil {
		return nil, fmt.Errorf("clear %s: %w", dir, err)
	}
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("create %s: %w", dir, err)
	}

	res := &Result{
		Program:   c.Doc.Name,
		Package:   c.Package,
		Dir:       dir,
		IDLDigest: digest.IDL(c.Doc.Raw),
		Digest:    digest.Output(files),
	}
	for _, f := range files {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		target := filepath.Join(g.root, filepath.FromSlash(f.Path))
		if err := os.WriteFile(target, f.Content, 0o644); err != nil {
			return nil, fmt.Errorf("write %s: %w", target, err)
		}
		log.Debug("wrote file", zap.String("path", f.Path), zap.Int("bytes", len(f.Content)))
		res.Files = append(res.Files, f.Path)
	}
	// idl.json sorts among the units.
	sort.Strings(res.Files)

	log.Info("generated package",
		zap.String("dir", dir),
		zap.Int("files", len(res.Files)),
		zap.String("digest", res.Digest))
	return res, nil
}
