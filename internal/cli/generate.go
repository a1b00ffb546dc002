package cli

import (
	"context"
	"errors"
	"os"
	"time"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/zhairuihao/anchor-src-gen/internal/config"
	"github.com/zhairuihao/anchor-src-gen/internal/digest"
	"github.com/zhairuihao/anchor-src-gen/internal/fetch"
	"github.com/zhairuihao/anchor-src-gen/internal/generator"
	"github.com/zhairuihao/anchor-src-gen/internal/store"
)

// GenerateOptions holds flags for the generate command.
type GenerateOptions struct {
	*RootOptions
	Output        string
	Package       string
	RuntimeImport string
	Store         string
	Timeout       time.Duration
}

// GenerateResult is the output of a successful generation.
type GenerateResult struct {
	Program   string   `json:"program"`
	Package   string   `json:"package"`
	Dir       string   `json:"dir"`
	Files     []string `json:"files"`
	IDLDigest string   `json:"idl_digest"`
	Digest    string   `json:"digest"`
	RunID     string   `json:"run_id,omitempty"`
}

// NewGenerateCommand creates the generate command.
func NewGenerateCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &GenerateOptions{RootOptions: rootOpts}

	cmd := &cobra.Command{
		Use:   "generate <idl.json|url>",
		Short: "Generate a Go package from one IDL document",
		Long: `Generate reads an Anchor IDL from a file or an HTTP(S) URL and writes
one Go package below the output directory. An existing directory of the
same package is replaced.`,
		Args:          cobra.ExactArgs(1),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runGenerate(cmd, opts, args[0])
		},
	}

	cmd.Flags().StringVarP(&opts.Output, "output", "o", config.DefaultOutput, "output root directory")
	cmd.Flags().StringVar(&opts.Package, "package", "", "package name (defaults to the program name)")
	cmd.Flags().StringVar(&opts.RuntimeImport, "runtime", "", "import path of the serialization runtime")
	cmd.Flags().StringVar(&opts.Store, "store", "", "record the run in this history database")
	cmd.Flags().DurationVar(&opts.Timeout, "timeout", config.DefaultTimeout, "HTTP fetch timeout")

	return cmd
}

func runGenerate(cmd *cobra.Command, opts *GenerateOptions, arg string) error {
	formatter := opts.formatter(cmd)
	log := opts.logger(cmd.ErrOrStderr())
	defer func() { _ = log.Sync() }()
	ctx := cmd.Context()

	src := parseSource(arg, false, nil)
	raw, err := newRouter("", opts.Timeout, log).Fetch(ctx, src)
	if err != nil {
		return fail(formatter, classifyLoad(err, CodeReadFailed))
	}

	gen := generator.New(opts.Output, generatorOptions(log, opts.RuntimeImport)...)

	res, genErr := gen.Generate(ctx, raw, opts.Package)

	var runID string
	if opts.Store != "" {
		id, err := recordGenerate(ctx, opts.Store, src, raw, res, genErr)
		if err != nil {
			return fail(formatter, &LoadError{Code: CodeStoreFailed, Message: err.Error()})
		}
		runID = id
	}

	if genErr != nil {
		if errors.Is(genErr, context.Canceled) {
			return WrapExitError(ExitCommandError, "generation cancelled", genErr)
		}
		return fail(formatter, classifyLoad(genErr, CodeWriteFailed))
	}

	result := GenerateResult{
		Program:   res.Program,
		Package:   res.Package,
		Dir:       res.Dir,
		Files:     res.Files,
		IDLDigest: res.IDLDigest,
		Digest:    res.Digest,
		RunID:     runID,
	}
	if opts.Format == "json" {
		return formatter.Success(result)
	}
	formatter.Check("Generated package %s from %s (%d files)", res.Package, src, len(res.Files))
	fields := []Field{
		{"Dir", res.Dir},
		{"Digest", res.Digest},
	}
	if runID != "" {
		fields = append(fields, Field{"Run", runID})
	}
	formatter.Fields(fields)
	for _, f := range res.Files {
		formatter.VerboseLog("  %s", f)
	}
	return nil
}

// recordGenerate stores the outcome of a generate run and caches the
// document when it parsed.
func recordGenerate(ctx context.Context, path string, src fetch.Source, raw []byte, res *generator.Result, genErr error) (string, error) {
	st, err := store.Open(path)
	if err != nil {
		return "", err
	}
	defer st.Close()

	run := store.Run{Source: src.String(), IDLDigest: digest.IDL(raw)}
	if genErr != nil {
		run.Status = store.StatusFailed
		run.Error = genErr.Error()
	} else {
		run.Program = res.Program
		run.Package = res.Package
		run.OutputDigest = res.Digest
		run.Files = res.Files
		if err := st.CacheIDL(ctx, src.String(), res.IDLDigest, raw); err != nil {
			return "", err
		}
	}
	saved, err := st.RecordRun(ctx, run)
	if err != nil {
		return "", err
	}
	return saved.ID, nil
}

func generatorOptions(log *zap.Logger, runtime string) []generator.Option {
	opts := []generator.Option{generator.WithLogger(log)}
	if runtime != "" {
		opts = append(opts, generator.WithRuntimeImport(runtime))
	}
	return opts
}

func fileExists(path string) bool {
	_, err := os.Stat(path)
	return err == nil
}
