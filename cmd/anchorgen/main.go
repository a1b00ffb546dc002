// Command anchorgen generates Go client packages from Anchor IDL documents.
package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/zhairuihao/anchor-src-gen/internal/cli"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	err := cli.NewRootCommand().ExecuteContext(ctx)
	stop()
	if err != nil {
		var exitErr *cli.ExitError
		// Commands that already reported through the formatter return a
		// bare ExitError; anything else still needs printing.
		if !errors.As(err, &exitErr) || exitErr.Err != nil {
			fmt.Fprintln(os.Stderr, "anchorgen:", err)
		}
	}
	os.Exit(cli.GetExitCode(err))
}
