package cli

import (
	"errors"
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/zhairuihao/anchor-src-gen/internal/store"
)

// HistoryOptions holds flags for the history command.
type HistoryOptions struct {
	*RootOptions
	Store   string
	Program string
	Limit   int
}

// HistoryEntry is one recorded run.
type HistoryEntry struct {
	ID           string   `json:"id"`
	Seq          int64    `json:"seq"`
	Program      string   `json:"program"`
	Package      string   `json:"package"`
	Source       string   `json:"source"`
	Status       string   `json:"status"`
	IDLDigest    string   `json:"idl_digest,omitempty"`
	OutputDigest string   `json:"output_digest,omitempty"`
	Files        []string `json:"files"`
	Error        string   `json:"error,omitempty"`
	CreatedAt    string   `json:"created_at"`
}

// NewHistoryCommand creates the history command.
func NewHistoryCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &HistoryOptions{RootOptions: rootOpts}

	cmd := &cobra.Command{
		Use:   "history [run-id]",
		Short: "List recorded generation runs",
		Long: `History lists runs recorded by generate --store and batch, newest
first. With a run id it shows that run only.`,
		Args:          cobra.MaximumNArgs(1),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runHistory(cmd, opts, args)
		},
	}

	cmd.Flags().StringVar(&opts.Store, "store", "anchorgen.db", "history database")
	cmd.Flags().StringVar(&opts.Program, "program", "", "only runs of this program")
	cmd.Flags().IntVar(&opts.Limit, "limit", 20, "maximum number of runs (0 for all)")

	return cmd
}

func runHistory(cmd *cobra.Command, opts *HistoryOptions, args []string) error {
	formatter := opts.formatter(cmd)
	ctx := cmd.Context()

	if opts.Limit < 0 {
		return fail(formatter, &LoadError{Code: CodeInvalidArgument, Message: fmt.Sprintf("invalid limit %d", opts.Limit)})
	}
	if !fileExists(opts.Store) {
		return fail(formatter, &LoadError{Code: CodeReadFailed, Message: "no history database at " + opts.Store})
	}
	st, err := store.Open(opts.Store)
	if err != nil {
		return fail(formatter, &LoadError{Code: CodeStoreFailed, Message: err.Error()})
	}
	defer st.Close()

	var runs []store.Run
	if len(args) == 1 {
		run, err := st.GetRun(ctx, args[0])
		if errors.Is(err, store.ErrNotFound) {
			return fail(formatter, &LoadError{Code: CodeNotFound, Message: "no run " + args[0]})
		}
		if err != nil {
			return fail(formatter, &LoadError{Code: CodeStoreFailed, Message: err.Error()})
		}
		runs = []store.Run{run}
	} else {
		runs, err = st.ListRuns(ctx, store.RunFilter{Program: opts.Program, Limit: opts.Limit})
		if err != nil {
			return fail(formatter, &LoadError{Code: CodeStoreFailed, Message: err.Error()})
		}
	}

	entries := make([]HistoryEntry, len(runs))
	for i, r := range runs {
		files := r.Files
		if files == nil {
			files = []string{}
		}
		entries[i] = HistoryEntry{
			ID:           r.ID,
			Seq:          r.Seq,
			Program:      r.Program,
			Package:      r.Package,
			Source:       r.Source,
			Status:       r.Status,
			IDLDigest:    r.IDLDigest,
			OutputDigest: r.OutputDigest,
			Files:        files,
			Error:        r.Error,
			CreatedAt:    r.CreatedAt.UTC().Format(time.RFC3339Nano),
		}
	}

	if opts.Format == "json" {
		return formatter.Success(entries)
	}
	if len(entries) == 0 {
		fmt.Fprintln(formatter.Writer, "No runs recorded")
		return nil
	}
	for _, e := range entries {
		line := fmt.Sprintf("#%d %s %s (%s) %s", e.Seq, e.CreatedAt, e.Package, e.Source, e.ID)
		switch e.Status {
		case store.StatusOK:
			formatter.Check("%s: %d files", line, len(e.Files))
		case store.StatusSkipped:
			formatter.Warn("%s: skipped: %s", line, e.Error)
		default:
			formatter.Fail("%s: %s", line, e.Error)
		}
	}
	return nil
}
