// Command streamql is the CLI entry point of spec.md §6: exactly one
// positional argument holding one or more terminated statements.
// Diagnostics go to stderr; result records go to stdout as one JSON
// object per line. Exit 0 on clean completion; nonzero on parse or
// plan failure.
package main

import (
	"context"
	"flag"
	"fmt"
	"os"

	"github.com/sirupsen/logrus"

	"github.com/streamql-io/streamql/config"
	"github.com/streamql-io/streamql/shell"
	"github.com/streamql-io/streamql/source/kinesis"
)

func main() {
	os.Exit(run(os.Args[1:]))
}

func run(args []string) int {
	fs := flag.NewFlagSet("streamql", flag.ContinueOnError)
	configPath := fs.String("config", "config.yaml", "path to an optional region/defaults config file")
	if err := fs.Parse(args); err != nil {
		return 2
	}

	rest := fs.Args()
	if len(rest) != 1 {
		fmt.Fprintln(os.Stderr, "usage: streamql [-config path] '<statements>'")
		return 2
	}

	cfg, err := config.Load(*configPath)
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		return 1
	}

	ctx := context.Background()

	kinesisDriver, err := kinesis.NewDriver(ctx, cfg.Region)
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		return 1
	}

	sh := shell.New(kinesisDriver, kinesisDriver, os.Stdout, os.Stderr)

	if err := sh.Run(ctx, rest[0]); err != nil {
		logrus.WithError(err).Debug("streamql: one or more statements failed")
		return 1
	}

	return 0
}
