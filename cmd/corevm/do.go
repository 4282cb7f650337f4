package main

import (
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"

	corevm "github.com/relang/corevm"
	"github.com/relang/corevm/core/arena"
	"github.com/relang/corevm/core/cell"
	"github.com/relang/corevm/core/kind"
	"github.com/relang/corevm/core/series"
)

var doFile string

func init() {
	cmd := newDoCmd()
	cmd.Flags().StringVar(&doFile, "file", "", "Read source from a file instead of the argument")
	rootCmd.AddCommand(cmd)
}

func newDoCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "do [source]",
		Short: "Evaluate a source string and print its result",
		Long: `The do command scans, binds, and evaluates a source string to completion,
printing the final expression's value.

Example:
  corevm do "1 + 2 * 3"
  corevm do --file program.rt`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runDo(args)
		},
	}
	return cmd
}

func runDo(args []string) error {
	source, err := sourceFrom(args)
	if err != nil {
		return err
	}

	eng := corevm.New()
	printVerbose("evaluating %d bytes\n", len(source))

	out, err := eng.Do(source)
	if err != nil {
		return fmt.Errorf("do: %w", err)
	}

	printInfo("%s\n", renderCell(eng.Arena, out))
	return nil
}

func sourceFrom(args []string) (string, error) {
	if doFile != "" {
		data, err := os.ReadFile(doFile)
		if err != nil {
			return "", fmt.Errorf("do: reading %s: %w", doFile, err)
		}
		return string(data), nil
	}
	if len(args) == 1 {
		return args[0], nil
	}
	return "", fmt.Errorf("do: expected a source argument or --file")
}

// renderCell formats c for display, descending into blocks but stopping at
// the first level of anything else series-backed (full pretty-printing is
// out of scope; this is a debugging aid, not a dialect writer).
func renderCell(a *arena.Arena, c cell.Cell) string {
	switch c.Kind() {
	case kind.KindInteger:
		return fmt.Sprintf("%d", c.Int64())
	case kind.KindDecimal:
		return fmt.Sprintf("%g", c.Decimal())
	case kind.KindLogic:
		return fmt.Sprintf("%t", c.Logic())
	case kind.KindBlank:
		return "blank!"
	case kind.KindNull:
		return "null"
	case kind.KindEnd:
		return "<end>"
	case kind.KindText:
		return fmt.Sprintf("%q", renderText(a, c))
	case kind.KindBlock:
		return renderBlock(a, c)
	default:
		return c.Kind().String()
	}
}

func renderText(a *arena.Arena, c cell.Cell) string {
	ref, ok := c.Node(0)
	if !ok {
		return ""
	}
	s := series.New(a, ref)
	var b strings.Builder
	for i := 0; i < s.Len(); i++ {
		by, err := s.ByteAt(i)
		if err != nil {
			break
		}
		b.WriteByte(by)
	}
	return b.String()
}

func renderBlock(a *arena.Arena, c cell.Cell) string {
	ref, ok := c.Node(0)
	if !ok {
		return "[]"
	}
	s := series.New(a, ref)
	parts := make([]string, 0, s.Len())
	for i := 0; i < s.Len(); i++ {
		elem, err := s.At(i)
		if err != nil {
			break
		}
		parts = append(parts, renderCell(a, *elem))
	}
	return "[" + strings.Join(parts, " ") + "]"
}
