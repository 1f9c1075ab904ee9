package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"

	"github.com/entireio/shiptrack/cmd/shiptrack/cli"
	"github.com/entireio/shiptrack/cmd/shiptrack/cli/clierr"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)

	err := cli.NewRootCmd().ExecuteContext(ctx)
	stop()
	if err != nil {
		fmt.Fprintln(os.Stderr, "shiptrack:", err)
		os.Exit(clierr.ExitCodeOf(err))
	}
}
