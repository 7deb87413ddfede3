package main

import (
	"context"
	"fmt"
	"io"
	"strings"

	"github.com/chzyer/readline"
)

// shell runs commands typed at a readline prompt.
type shell struct {
	app *app
	rl  *readline.Instance
}

func newShell(a *app) (*shell, error) {
	rl, err := readline.NewEx(&readline.Config{
		Prompt:          "at24mac> ",
		InterruptPrompt: "^C",
		EOFPrompt:       "exit",
		AutoComplete: readline.NewPrefixCompleter(
			readline.PcItem("info"),
			readline.PcItem("read"),
			readline.PcItem("write"),
			readline.PcItem("dump"),
			readline.PcItem("restore"),
			readline.PcItem("help"),
			readline.PcItem("exit"),
		),
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create readline: %w", err)
	}

	a.out = rl.Stdout()
	return &shell{app: a, rl: rl}, nil
}

// Run reads lines until EOF, exit or ctx is done.
func (s *shell) Run(ctx context.Context) {
	defer s.rl.Close()

	fmt.Fprint(s.rl.Stdout(), usageCommands)

	for {
		select {
		case <-ctx.Done():
			return
		default:
		}

		line, err := s.rl.Readline()
		if err != nil {
			if err == readline.ErrInterrupt {
				continue
			}
			return
		}

		if quit := s.handle(ctx, line, s.rl.Stdout()); quit {
			return
		}
	}
}

// handle executes one input line and reports whether the shell should exit.
// Command errors are printed, not returned.
func (s *shell) handle(ctx context.Context, line string, out io.Writer) bool {
	fields := strings.Fields(line)
	if len(fields) == 0 {
		return false
	}

	switch strings.ToLower(fields[0]) {
	case "help", "?":
		fmt.Fprint(out, usageCommands)
		return false
	case "quit", "exit", "q":
		return true
	case "shell":
		fmt.Fprintln(out, "already in the shell")
		return false
	}

	if err := s.app.run(ctx, fields); err != nil {
		fmt.Fprintf(out, "error: %v\n", err)
	}
	return false
}
