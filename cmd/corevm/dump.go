package main

import (
	"fmt"

	"github.com/spf13/cobra"

	corevm "github.com/relang/corevm"
	"github.com/relang/corevm/core/bind"
	"github.com/relang/corevm/core/cell"
	"github.com/relang/corevm/core/kind"
)

func init() {
	rootCmd.AddCommand(newDumpCmd())
}

func newDumpCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "dump [source]",
		Short: "Scan and bind a source string, then print its structure without evaluating it",
		Long: `The dump command shows what the scanner and binder produced for a source
string, one element per line with its kind, quote depth, and rendered value.
Unlike do, nothing is evaluated: set-words are shown unbound from execution,
and no native action ever runs.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runDump(args[0])
		},
	}
}

func runDump(source string) error {
	eng := corevm.New()
	arr, err := eng.Scan(source)
	if err != nil {
		return fmt.Errorf("dump: %w", err)
	}

	for i := 0; i < arr.Len(); i++ {
		elem, err := arr.At(i)
		if err != nil {
			return fmt.Errorf("dump: element %d: %w", i, err)
		}
		printInfo("%3d  %-12s q=%d  %s\n", i, elem.Kind().String(), elem.Header.QuoteDepth, describeElem(eng, *elem))
	}
	return nil
}

func describeElem(eng *corevm.Engine, c cell.Cell) string {
	switch c.Kind() {
	case kind.KindWord, kind.KindSetWord, kind.KindGetWord:
		return eng.Table.Text(bind.Symbol(c.Int64()))
	default:
		return renderCell(eng.Arena, c)
	}
}
