package main

import (
	"bufio"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/spf13/cobra"

	corevm "github.com/relang/corevm"
)

func init() {
	rootCmd.AddCommand(newReplCmd())
}

func newReplCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "repl",
		Short: "Start an interactive read-eval-print loop",
		Long: `The repl command reads lines from stdin and evaluates each one against
a persistent engine, so set-words from one line are visible on the next.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runRepl(os.Stdin, os.Stdout)
		},
	}
}

func runRepl(in io.Reader, out io.Writer) error {
	eng := corevm.New()
	scanner := bufio.NewScanner(in)

	for {
		fmt.Fprint(out, ">> ")
		if !scanner.Scan() {
			break
		}
		line := strings.TrimSpace(scanner.Text())
		if line == "" {
			continue
		}
		if line == "quit" || line == "exit" {
			break
		}

		result, err := eng.Do(line)
		if err != nil {
			fmt.Fprintf(out, "** %v\n", err)
			continue
		}
		fmt.Fprintf(out, "== %s\n", renderCell(eng.Arena, result))
	}
	return scanner.Err()
}
