// Command nypd311 pulls NYPD 311 complaints for one borough and a span of
// years from the NYC open-data portal, cleans them and writes an export, a
// set of report tables and a run manifest into a fresh run directory.
package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"nypd311/internal/prompt"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	a := &app{
		stdin:  os.Stdin,
		stdout: os.Stdout,
		stderr: os.Stderr,
		lookup: os.LookupEnv,
		isTTY:  func() bool { return prompt.IsTerminal(os.Stdin) },
	}
	if err := newRootCmd(a).ExecuteContext(ctx); err != nil {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		stop()
		os.Exit(1)
	}
}
