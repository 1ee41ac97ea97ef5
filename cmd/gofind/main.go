// Package main is the entry point for gofind, a streaming fuzzy finder
// for the terminal.
package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/dshills/gofind/internal/cli"
)

var (
	version = "dev"
	commit  = "unknown"
	date    = "unknown"
)

func main() {
	os.Exit(run())
}

func run() int {
	opts, err := cli.ParseFlags(os.Args[1:], os.Stderr)
	if err != nil {
		return cli.ExitUsage
	}
	if opts.Help {
		printUsage()
		return cli.ExitOK
	}

	app, err := cli.New(opts)
	if err != nil {
		fmt.Fprintf(os.Stderr, "gofind: %v\n", err)
		return cli.ExitUsage
	}

	if opts.PrintConfig {
		fmt.Println(app.Config().PrintConfig())
		return cli.ExitOK
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	signals := make(chan os.Signal, 1)
	signal.Notify(signals, syscall.SIGINT, syscall.SIGTERM)
	go func() {
		<-signals
		cancel()
	}()

	return app.Run(ctx)
}

func printUsage() {
	fmt.Fprintf(os.Stderr, "gofind %s (commit %s, built %s)\n\n", version, commit, date)
	fmt.Fprintf(os.Stderr, "Usage: gofind [options]\n\n")
	fmt.Fprintf(os.Stderr, "Reads items from --source's stdout, or from stdin if --source is\n")
	fmt.Fprintf(os.Stderr, "omitted, and lets you fuzzy-search them interactively.\n\n")
	fmt.Fprintf(os.Stderr, "Options:\n")
	fmt.Fprintf(os.Stderr, "  --source <cmd>       command whose stdout supplies items\n")
	fmt.Fprintf(os.Stderr, "  --query <q>          initial search query\n")
	fmt.Fprintf(os.Stderr, "  --case <mode>        respect, ignore, or smart (default smart)\n")
	fmt.Fprintf(os.Stderr, "  --preview <cmd>      preview command template ({} = item text)\n")
	fmt.Fprintf(os.Stderr, "  --bind <k:a[,a]>     key binding, may be repeated\n")
	fmt.Fprintf(os.Stderr, "  --multi              enable multi-select\n")
	fmt.Fprintf(os.Stderr, "  --height <N|N%%>      window height\n")
	fmt.Fprintf(os.Stderr, "  --min-height <N>     minimum window height in lines\n")
	fmt.Fprintf(os.Stderr, "  --mouse              enable mouse support\n")
	fmt.Fprintf(os.Stderr, "  --select-1           accept automatically on a single match\n")
	fmt.Fprintf(os.Stderr, "  --config <path>      TOML or YAML config file\n")
	fmt.Fprintf(os.Stderr, "  --watch <path>       restart --source when path changes\n")
	fmt.Fprintf(os.Stderr, "  --log-level <level>  debug, info, warn, or error\n")
	fmt.Fprintf(os.Stderr, "  --score-script <p>   Lua scoring script\n")
	fmt.Fprintf(os.Stderr, "  --print-config       print merged config as JSON and exit\n")
}
