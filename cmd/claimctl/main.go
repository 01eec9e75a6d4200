// claimctl runs the claim pipeline from the command line.
//
// Usage:
//
//	claimctl extract --type=<insurance|discharge|bill> <file.pdf|file.txt>
//	claimctl analyze [claim.json]
//	claimctl run [--insurance=<file>|--policy=<number>] [--discharge=<file>] [--bill=<file>] [--xlsx=<out>]
//	claimctl batch <dir> --out=<dir>
//	claimctl policy get <number>
//	claimctl policy import <file.yaml>
//
// Configuration comes from the same environment variables as claimsd.
package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"
)

// version is set at build time via -ldflags.
var version = "dev"

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := newRootCmd().ExecuteContext(ctx); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
