// Package cli assembles gofind's library packages (config, reader,
// matcher, coordinator, tui, keymap, preview) into a runnable program,
// grounded on the teacher's internal/app package: a thin Options struct
// populated by flag parsing, an assembly step that wires subordinate
// collaborators, and a Run method with the same "parse flags, build,
// run, map ErrQuit to exit code" shape as cmd/keystorm/main.go, but
// scaled to gofind's much smaller CLI surface (SPEC_FULL.md §6).
package cli

import (
	"flag"
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/dshills/gofind/internal/config"
)

// Options is the parsed CLI surface (SPEC_FULL.md §6). Flag values
// layer on top of config.Load's file/env layers as the highest
// precedence (config.Config.Merge).
type Options struct {
	Source      string
	Query       string
	Case        string
	Preview     string
	Binds       stringList
	Multi       bool
	Height      string
	MinHeight   int
	Mouse       bool
	Select1     bool
	ConfigPath  string
	Watch       string
	LogLevel    string
	ScoreScript string
	PrintConfig bool
	Help        bool
}

// stringList accumulates repeated --bind flag occurrences.
type stringList []string

func (s *stringList) String() string { return strings.Join(*s, ",") }
func (s *stringList) Set(v string) error {
	*s = append(*s, v)
	return nil
}

// ParseFlags parses args (excluding the program name) into Options.
func ParseFlags(args []string, errOut io.Writer) (Options, error) {
	fs := flag.NewFlagSet("gofind", flag.ContinueOnError)
	fs.SetOutput(errOut)

	var opts Options
	fs.StringVar(&opts.Source, "source", "", "command whose stdout supplies items (stdin used if omitted)")
	fs.StringVar(&opts.Query, "query", "", "initial search query")
	fs.StringVar(&opts.Case, "case", "", "case mode: respect, ignore, or smart (default smart)")
	fs.StringVar(&opts.Preview, "preview", "", "preview command template; {} is replaced by the item's text")
	fs.Var(&opts.Binds, "bind", "key:action[,action] binding, may be repeated")
	fs.BoolVar(&opts.Multi, "multi", false, "enable multi-select")
	fs.StringVar(&opts.Height, "height", "", "window height: N lines or N%%")
	fs.IntVar(&opts.MinHeight, "min-height", 0, "minimum window height in lines")
	fs.BoolVar(&opts.Mouse, "mouse", false, "enable mouse support")
	fs.BoolVar(&opts.Select1, "select-1", false, "accept automatically if exactly one item ever matches")
	fs.StringVar(&opts.ConfigPath, "config", "", "path to a TOML or YAML config file")
	fs.StringVar(&opts.Watch, "watch", "", "restart the source command when this path changes")
	fs.StringVar(&opts.LogLevel, "log-level", "", "log level: debug, info, warn, or error (default info)")
	fs.StringVar(&opts.ScoreScript, "score-script", "", "path to a Lua script defining score(query, text)")
	fs.BoolVar(&opts.PrintConfig, "print-config", false, "print the merged configuration as JSON and exit")
	fs.BoolVar(&opts.Help, "help", false, "show usage")

	if err := fs.Parse(args); err != nil {
		return Options{}, err
	}
	return opts, nil
}

// Bindings parses opts.Binds into a key->action-spec map suitable for
// config.Config.Bindings / keymap.FromBindings.
func (o Options) Bindings() (map[string]string, error) {
	out := make(map[string]string, len(o.Binds))
	for _, b := range o.Binds {
		key, spec, ok := strings.Cut(b, ":")
		if !ok {
			return nil, fmt.Errorf("invalid --bind %q: want key:action[,action]", b)
		}
		out[key] = spec
	}
	return out, nil
}

// ToConfig converts Options into the highest-precedence config.Config
// layer (SPEC_FULL.md §10): zero-valued fields are left zero so
// config.Merge doesn't clobber lower layers with "nothing specified."
func (o Options) ToConfig() (config.Config, error) {
	binds, err := o.Bindings()
	if err != nil {
		return config.Config{}, err
	}
	return config.Config{
		Source:      o.Source,
		Query:       o.Query,
		Case:        o.Case,
		Preview:     o.Preview,
		Bindings:    binds,
		Multi:       o.Multi,
		Height:      o.Height,
		MinHeight:   o.MinHeight,
		Mouse:       o.Mouse,
		Select1:     o.Select1,
		Watch:       o.Watch,
		LogLevel:    o.LogLevel,
		ScoreScript: o.ScoreScript,
	}, nil
}

// ParseHeight interprets a height string as either an absolute line
// count or a "N%" percentage of total, returning the resolved line
// count. An empty or unparseable height yields total unchanged (full
// screen), gofind's default (matching fzf's --height unset behavior).
func ParseHeight(height string, total int) int {
	if height == "" {
		return total
	}
	if strings.HasSuffix(height, "%") {
		pct, err := strconv.Atoi(strings.TrimSuffix(height, "%"))
		if err != nil || pct <= 0 {
			return total
		}
		if pct > 100 {
			pct = 100
		}
		return total * pct / 100
	}
	n, err := strconv.Atoi(height)
	if err != nil || n <= 0 {
		return total
	}
	if n > total {
		return total
	}
	return n
}
