package cli

import (
	"encoding/hex"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/zhairuihao/anchor-src-gen/internal/discriminator"
	"github.com/zhairuihao/anchor-src-gen/internal/idl"
)

// DiscriminatorOptions holds flags for the discriminator command.
type DiscriminatorOptions struct {
	*RootOptions
	Kind string
}

// DiscriminatorResult is a derived tag.
type DiscriminatorResult struct {
	Kind     string `json:"kind"`
	Name     string `json:"name"`
	Preimage string `json:"preimage"`
	Hex      string `json:"hex"`
	Bytes    []int  `json:"bytes"`
}

// NewDiscriminatorCommand creates the discriminator command.
func NewDiscriminatorCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &DiscriminatorOptions{RootOptions: rootOpts}

	cmd := &cobra.Command{
		Use:   "discriminator <name>",
		Short: "Print the 8-byte tag of an instruction, account or event",
		Long: `Discriminator derives the tag Anchor prefixes to data. Instruction
names are snake-cased under the global namespace; account and event
names keep their casing.`,
		Args:          cobra.ExactArgs(1),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runDiscriminator(cmd, opts, args[0])
		},
	}

	cmd.Flags().StringVar(&opts.Kind, "kind", "instruction", "tag kind (instruction|account|event)")

	return cmd
}

// preimage returns the hashed string for name.
func preimage(kind, name string) (string, error) {
	switch kind {
	case "instruction":
		return discriminator.NamespaceGlobal + ":" + idl.SnakeCase(name), nil
	case "account":
		return discriminator.NamespaceAccount + ":" + name, nil
	case "event":
		return discriminator.NamespaceEvent + ":" + name, nil
	default:
		return "", fmt.Errorf("invalid kind %q: must be instruction, account or event", kind)
	}
}

func runDiscriminator(cmd *cobra.Command, opts *DiscriminatorOptions, name string) error {
	formatter := opts.formatter(cmd)

	pre, err := preimage(opts.Kind, name)
	if err != nil {
		return fail(formatter, &LoadError{Code: CodeInvalidArgument, Message: err.Error()})
	}
	d := discriminator.Derive(pre)
	result := DiscriminatorResult{
		Kind:     opts.Kind,
		Name:     name,
		Preimage: pre,
		Hex:      hex.EncodeToString(d.Bytes()),
		Bytes:    make([]int, len(d)),
	}
	for i, b := range d {
		result.Bytes[i] = int(b)
	}

	if opts.Format == "json" {
		return formatter.Success(result)
	}
	formatter.Fields([]Field{
		{"Preimage", result.Preimage},
		{"Hex", result.Hex},
		{"Bytes", fmt.Sprint(result.Bytes)},
	})
	return nil
}
