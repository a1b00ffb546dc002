package cli

import (
	"encoding/json"
	"fmt"
	"os"
	"time"

	"github.com/gagliardetto/solana-go"
	"github.com/spf13/cobra"

	"github.com/zhairuihao/anchor-src-gen/internal/config"
	"github.com/zhairuihao/anchor-src-gen/internal/digest"
	"github.com/zhairuihao/anchor-src-gen/internal/onchain"
)

// FetchOptions holds flags for the fetch command.
type FetchOptions struct {
	*RootOptions
	RPC     string
	Out     string
	Timeout time.Duration
}

// FetchResult describes a fetched document.
type FetchResult struct {
	Source string `json:"source"`
	// Address is the IDL account, set for program sources.
	Address  string          `json:"address,omitempty"`
	Digest   string          `json:"digest"`
	Bytes    int             `json:"bytes"`
	Out      string          `json:"out,omitempty"`
	Document json.RawMessage `json:"document,omitempty"`
}

// NewFetchCommand creates the fetch command.
func NewFetchCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &FetchOptions{RootOptions: rootOpts}

	cmd := &cobra.Command{
		Use:   "fetch <program|url|path>",
		Short: "Fetch an IDL document",
		Long: `Fetch loads an IDL from a file, an HTTP(S) URL or the on-chain IDL
account of a program id, and prints it or writes it to --out.`,
		Args:          cobra.ExactArgs(1),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runFetch(cmd, opts, args[0])
		},
	}

	cmd.Flags().StringVar(&opts.RPC, "rpc", config.DefaultRPC, "RPC endpoint for program sources")
	cmd.Flags().StringVarP(&opts.Out, "out", "o", "", "write the document to this file")
	cmd.Flags().DurationVar(&opts.Timeout, "timeout", config.DefaultTimeout, "HTTP fetch timeout")

	return cmd
}

func runFetch(cmd *cobra.Command, opts *FetchOptions, arg string) error {
	formatter := opts.formatter(cmd)
	log := opts.logger(cmd.ErrOrStderr())
	defer func() { _ = log.Sync() }()

	src := parseSource(arg, true, fileExists)
	result := FetchResult{Source: src.String()}
	if src.Program != "" {
		program, err := solana.PublicKeyFromBase58(src.Program)
		if err != nil {
			return fail(formatter, &LoadError{Code: CodeInvalidArgument, Message: fmt.Sprintf("invalid program id %q: %v", src.Program, err)})
		}
		addr, err := onchain.IDLAddress(program)
		if err != nil {
			return fail(formatter, &LoadError{Code: CodeInvalidArgument, Message: err.Error()})
		}
		result.Address = addr.String()
		formatter.VerboseLog("idl account %s", result.Address)
	}

	raw, err := newRouter(opts.RPC, opts.Timeout, log).Fetch(cmd.Context(), src)
	if err != nil {
		return fail(formatter, classifyLoad(err, CodeReadFailed))
	}
	result.Digest = digest.IDL(raw)
	result.Bytes = len(raw)

	if opts.Out != "" {
		if err := os.WriteFile(opts.Out, raw, 0o644); err != nil {
			return fail(formatter, &LoadError{Code: CodeWriteFailed, Message: err.Error()})
		}
		result.Out = opts.Out
	}

	if opts.Format == "json" {
		if opts.Out == "" && json.Valid(raw) {
			result.Document = raw
		}
		return formatter.Success(result)
	}
	if opts.Out == "" {
		_, err := cmd.OutOrStdout().Write(raw)
		return err
	}
	formatter.Check("Fetched %s (%d bytes)", result.Source, result.Bytes)
	fields := []Field{{"Out", result.Out}, {"Digest", result.Digest}}
	if result.Address != "" {
		fields = append(fields, Field{"Account", result.Address})
	}
	formatter.Fields(fields)
	return nil
}
