package cli

import (
	"context"
	"fmt"
	"sort"
	"sync"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/zhairuihao/anchor-src-gen/internal/config"
	"github.com/zhairuihao/anchor-src-gen/internal/digest"
	"github.com/zhairuihao/anchor-src-gen/internal/generator"
	"github.com/zhairuihao/anchor-src-gen/internal/scheduler"
	"github.com/zhairuihao/anchor-src-gen/internal/store"
)

// BatchOptions holds flags for the batch command.
type BatchOptions struct {
	*RootOptions
	Clean bool
	RPC   string
	Store string
}

// BatchResult is the output of a batch run. Entries are sorted by package.
type BatchResult struct {
	Output    string           `json:"output"`
	Generated []GenerateResult `json:"generated"`
	Skipped   []BatchIssue     `json:"skipped"`
	Failed    []BatchIssue     `json:"failed"`
}

// BatchIssue is a program that produced no package.
type BatchIssue struct {
	Program  string `json:"program"`
	Package  string `json:"package"`
	Attempts int    `json:"attempts"`
	Reason   string `json:"reason"`
}

// NewBatchCommand creates the batch command.
func NewBatchCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &BatchOptions{RootOptions: rootOpts}

	cmd := &cobra.Command{
		Use:   "batch <config.yaml>",
		Short: "Generate packages for every program in a configuration file",
		Long: `Batch loads a YAML configuration, fetches every listed program's IDL
through a bounded worker pool and generates one package per program.
Programs without a document are skipped. Any generation failure makes
the command exit with status 1.`,
		Args:          cobra.ExactArgs(1),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runBatch(cmd, opts, args[0])
		},
	}

	cmd.Flags().BoolVar(&opts.Clean, "clean", false, "clear the output root before generating")
	cmd.Flags().StringVar(&opts.RPC, "rpc", "", "override the configured RPC endpoint")
	cmd.Flags().StringVar(&opts.Store, "store", "", "override the configured history database")

	return cmd
}

func runBatch(cmd *cobra.Command, opts *BatchOptions, path string) error {
	formatter := opts.formatter(cmd)
	log := opts.logger(cmd.ErrOrStderr())
	defer func() { _ = log.Sync() }()
	ctx := cmd.Context()

	cfg, err := config.Load(path)
	if err != nil {
		return fail(formatter, classifyLoad(err, CodeReadFailed))
	}
	if opts.RPC != "" {
		cfg.RPC = opts.RPC
	}
	if opts.Store != "" {
		cfg.Store = opts.Store
	}

	gen := generator.New(cfg.Output, generatorOptions(log, cfg.RuntimeImport)...)
	if opts.Clean {
		if err := gen.Clean(); err != nil {
			return fail(formatter, &LoadError{Code: CodeWriteFailed, Message: err.Error()})
		}
	}

	var st *store.Store
	if cfg.Store != "" {
		st, err = store.Open(cfg.Store)
		if err != nil {
			return fail(formatter, &LoadError{Code: CodeStoreFailed, Message: err.Error()})
		}
		defer st.Close()
	}

	b := &batch{
		gen:     gen,
		store:   st,
		log:     log,
		results: make(map[string]*generator.Result, len(cfg.Programs)),
		runIDs:  make(map[string]string, len(cfg.Programs)),
	}
	router := newRouter(cfg.RPC, cfg.Timeout, log)
	jobs := make([]scheduler.Job, len(cfg.Programs))
	byPackage := make(map[string]config.Program, len(cfg.Programs))
	for i, p := range cfg.Programs {
		byPackage[p.Package] = p
		jobs[i] = scheduler.Job{
			Name: p.Package,
			Fetch: func(ctx context.Context) ([]byte, error) {
				return router.Fetch(ctx, p.Source())
			},
			Process: func(ctx context.Context, doc []byte) error {
				return b.process(ctx, p, doc)
			},
		}
	}

	pool := scheduler.New(scheduler.Config{
		Workers:    cfg.Workers,
		Permits:    cfg.Permits,
		BaseDelay:  cfg.BaseDelay,
		MaxRetries: cfg.MaxRetries,
		Logger:     log,
	})
	report, err := pool.Run(ctx, jobs)
	if err != nil {
		return WrapExitError(ExitCommandError, "batch interrupted", err)
	}

	out := BatchResult{Output: cfg.Output, Generated: []GenerateResult{}, Skipped: []BatchIssue{}, Failed: []BatchIssue{}}
	for _, r := range report.Done {
		res := b.results[r.Name]
		out.Generated = append(out.Generated, GenerateResult{
			Program:   res.Program,
			Package:   res.Package,
			Dir:       res.Dir,
			Files:     res.Files,
			IDLDigest: res.IDLDigest,
			Digest:    res.Digest,
			RunID:     b.runIDs[r.Name],
		})
	}
	for _, r := range report.Skipped {
		p := byPackage[r.Name]
		issue := newIssue(p, r)
		out.Skipped = append(out.Skipped, issue)
		if err := b.record(ctx, store.Run{
			Program: p.Name,
			Package: p.Package,
			Source:  p.Source().String(),
			Status:  store.StatusSkipped,
			Error:   issue.Reason,
		}); err != nil {
			return fail(formatter, &LoadError{Code: CodeStoreFailed, Message: err.Error()})
		}
	}
	for _, r := range report.Failed {
		out.Failed = append(out.Failed, newIssue(byPackage[r.Name], r))
	}
	if b.storeErr != nil {
		return fail(formatter, &LoadError{Code: CodeStoreFailed, Message: b.storeErr.Error()})
	}
	sort.Slice(out.Generated, func(i, j int) bool { return out.Generated[i].Package < out.Generated[j].Package })
	sort.Slice(out.Skipped, func(i, j int) bool { return out.Skipped[i].Package < out.Skipped[j].Package })
	sort.Slice(out.Failed, func(i, j int) bool { return out.Failed[i].Package < out.Failed[j].Package })

	if opts.Format == "json" {
		if err := formatter.Success(out); err != nil {
			return err
		}
	} else {
		printBatch(formatter, out)
	}
	if len(out.Failed) > 0 {
		return NewExitError(ExitFailure, fmt.Sprintf("%d of %d programs failed", len(out.Failed), len(cfg.Programs)))
	}
	return nil
}

func newIssue(p config.Program, r scheduler.Result) BatchIssue {
	issue := BatchIssue{Program: p.Name, Package: p.Package, Attempts: r.Attempts}
	if r.Err != nil {
		issue.Reason = r.Err.Error()
	}
	return issue
}

func printBatch(f *OutputFormatter, out BatchResult) {
	for _, g := range out.Generated {
		f.Check("%s: %d files in %s", g.Package, len(g.Files), g.Dir)
	}
	for _, s := range out.Skipped {
		f.Warn("%s: skipped after %d attempts: %s", s.Package, s.Attempts, s.Reason)
	}
	for _, e := range out.Failed {
		f.Fail("%s: %s", e.Package, e.Reason)
	}
	f.Fields([]Field{
		{"Generated", fmt.Sprint(len(out.Generated))},
		{"Skipped", fmt.Sprint(len(out.Skipped))},
		{"Failed", fmt.Sprint(len(out.Failed))},
	})
}

// batch is the state shared by the jobs of one run.
type batch struct {
	gen   *generator.Generator
	store *store.Store
	log   *zap.Logger

	mu       sync.Mutex
	results  map[string]*generator.Result
	runIDs   map[string]string
	storeErr error
}

// process generates one program and records the run.
func (b *batch) process(ctx context.Context, p config.Program, doc []byte) error {
	res, genErr := b.gen.Generate(ctx, doc, p.Package)
	src := p.Source().String()

	run := store.Run{
		Program:   p.Name,
		Package:   p.Package,
		Source:    src,
		IDLDigest: digest.IDL(doc),
	}
	if genErr != nil {
		run.Status = store.StatusFailed
		run.Error = genErr.Error()
	} else {
		run.Status = store.StatusOK
		run.OutputDigest = res.Digest
		run.Files = res.Files
		b.mu.Lock()
		b.results[p.Package] = res
		b.mu.Unlock()
	}

	if b.store != nil {
		if genErr == nil {
			if err := b.store.CacheIDL(ctx, src, res.IDLDigest, doc); err != nil {
				b.setStoreErr(err)
			}
		}
		saved, err := b.store.RecordRun(ctx, run)
		if err != nil {
			b.setStoreErr(err)
		} else {
			b.mu.Lock()
			b.runIDs[p.Package] = saved.ID
			b.mu.Unlock()
		}
	}
	return genErr
}

// record stores run when a store is configured.
func (b *batch) record(ctx context.Context, run store.Run) error {
	if b.store == nil {
		return nil
	}
	_, err := b.store.RecordRun(ctx, run)
	return err
}

func (b *batch) setStoreErr(err error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	if b.storeErr == nil {
		b.storeErr = err
	}
	b.log.Error("history store failed", zap.Error(err))
}
