// Copyright 2018 Saferwall. All rights reserved.
// Use of this source code is governed by Apache v2 license
// license that can be found in the LICENSE file.

// Command jnm lists the symbols defined and referenced by one or more
// class files or jars, in the manner of the classic Unix nm.
package main

import (
	"errors"
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"github.com/saferwall/jbinutils/internal/xlog"
	"github.com/saferwall/jbinutils/jclass"
)

var (
	flagNoSort      bool
	flagNumericSort bool
	flagReverseSort bool
	flagAlphaSort   bool

	flagUndefinedOnly bool
	flagDefinedOnly   bool
	flagExternOnly    bool
	flagClassOnly     bool
	flagFlatten       bool

	flagPrintFileName bool
	flagSymbolsOnly   bool
	flagDemangle      bool

	flagM32 bool
)

func buildPipeline() *jclass.Pipeline {
	p := &jclass.Pipeline{Filters: []jclass.Filter{jclass.ResolveClassFilter}}

	if flagUndefinedOnly {
		p.Filters = append(p.Filters, jclass.RemoveDefinedFilter)
	}
	if flagDefinedOnly {
		p.Filters = append(p.Filters, jclass.RemoveUndefinedFilter)
	}
	if flagExternOnly {
		p.Filters = append(p.Filters, jclass.RemovePrivateFilter)
	}
	if flagClassOnly {
		p.Filters = append(p.Filters, jclass.RemoveNonClassFilter)
	}

	switch {
	case flagNumericSort:
		p.Sorts = append(p.Sorts, jclass.NumericSort)
	case flagAlphaSort:
		p.Sorts = append(p.Sorts, jclass.AlphabeticSort)
	default:
		p.Sorts = append(p.Sorts, jclass.NoopSort)
	}
	if flagReverseSort {
		p.Sorts = append(p.Sorts, jclass.ReverseSort)
	}

	p.Displays = append(p.Displays, jclass.NormalDisplay)
	if flagSymbolsOnly {
		p.Displays = append(p.Displays, jclass.NameOnly)
	}
	if flagDemangle {
		p.Displays = append(p.Displays, jclass.Demangle)
	}
	if flagPrintFileName {
		p.Displays = append(p.Displays, jclass.PrependFilename)
	}

	return p
}

// loadItems parses one input path (a .class file or a jar) into pipeline
// items, tracking which names the class(es) it contains define so the
// resolve-class filter can drop same-class references.
func loadItems(path string) ([]jclass.Item, error) {
	if strings.HasSuffix(path, ".jar") {
		return loadJarItems(path)
	}
	return loadClassItems(path, "")
}

func loadClassItems(path, entry string) ([]jclass.Item, error) {
	f, err := jclass.OpenFile(path)
	if err != nil && !errors.Is(err, jclass.ErrExtraData) {
		return nil, err
	}
	if err != nil {
		xlog.Default.Warnf("%s: %v", path, err)
	}
	defer f.Close()

	syms, err := jclass.ExtractSymbols(f.ClassFile)
	if err != nil {
		return nil, err
	}

	defined := make(map[string]bool)
	for _, s := range syms {
		if !s.IsReference() {
			defined[s.Name] = true
		}
	}

	items := make([]jclass.Item, len(syms))
	for i, s := range syms {
		items[i] = jclass.Item{SourcePath: path, ClassEntry: entry, Symbol: s}
		items[i].SetDefinedHere(defined)
	}
	return items, nil
}

func loadJarItems(path string) ([]jclass.Item, error) {
	ar, err := jclass.OpenArchive(path)
	if err != nil {
		return nil, err
	}
	defer ar.Close()

	var items []jclass.Item
	for _, e := range ar.Entries() {
		if e.Err != nil {
			xlog.Default.Warnf("skipping %s(%s): %v", path, e.Name, e.Err)
			continue
		}
		syms, err := jclass.ExtractSymbols(e.Class)
		if err != nil {
			xlog.Default.Warnf("skipping %s(%s): %v", path, e.Name, err)
			continue
		}
		defined := make(map[string]bool)
		for _, s := range syms {
			if !s.IsReference() {
				defined[s.Name] = true
			}
		}
		for _, s := range syms {
			it := jclass.Item{SourcePath: path, ClassEntry: e.Name, Symbol: s}
			it.SetDefinedHere(defined)
			items = append(items, it)
		}
	}
	return items, nil
}

func run(args []string) bool {
	if flagM32 {
		jclass.SetPointerSize(4)
	}

	p := buildPipeline()
	failed := false
	for i, path := range args {
		items, err := loadItems(path)
		if err != nil {
			xlog.Default.Errorf("%s: %v", path, err)
			failed = true
			continue
		}
		if len(args) > 1 && !flagPrintFileName && !flagFlatten {
			if i > 0 {
				fmt.Println()
			}
			fmt.Printf("\n%s:\n", path)
		}
		for _, line := range p.Run(items) {
			fmt.Println(line)
		}
	}
	return failed
}

func main() {
	root := &cobra.Command{
		Use:   "jnm file...",
		Short: "List symbols defined and referenced in class files",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if run(args) {
				os.Exit(1)
			}
			return nil
		},
	}

	flags := root.Flags()
	flags.BoolVarP(&flagNoSort, "no-sort", "p", true, "do not sort (default)")
	flags.BoolVarP(&flagNumericSort, "numeric-sort", "n", false, "sort by symbol value")
	flags.BoolVarP(&flagReverseSort, "reverse-sort", "r", false, "reverse the sort order")
	flags.BoolVarP(&flagAlphaSort, "alpha-sort", "a", false, "sort alphabetically by symbol name")

	flags.BoolVarP(&flagUndefinedOnly, "undefined-only", "u", false, "display only undefined (referenced) symbols")
	flags.BoolVarP(&flagDefinedOnly, "defined-only", "U", false, "display only defined symbols")
	flags.BoolVarP(&flagExternOnly, "extern-only", "g", false, "display only external symbols")
	flags.BoolVarP(&flagClassOnly, "class-only", "c", false, "display only class-level symbols")
	flags.BoolVarP(&flagFlatten, "flatten", "f", false, "flatten multi-file output into a single stream")

	flags.BoolVarP(&flagPrintFileName, "print-file-name", "A", false, "prefix every line with its source file")
	flags.BoolVarP(&flagSymbolsOnly, "symbols-only", "j", false, "print just the symbol name")
	flags.BoolVarP(&flagDemangle, "demangle", "C", false, "demangle field and method descriptors")

	flags.BoolVar(&flagM32, "m32", false, "assume a 32-bit pointer size")
	flags.Bool("m64", true, "assume a 64-bit pointer size (default)")

	if err := root.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(exitCodeForCLIError(err))
	}
}

// exitCodeForCLIError maps a cobra Execute error to a process exit code:
// 1 for an unrecognized flag, 2 for any other usage error.
func exitCodeForCLIError(err error) int {
	msg := err.Error()
	if strings.HasPrefix(msg, "unknown flag:") || strings.HasPrefix(msg, "unknown shorthand flag:") {
		return 1
	}
	return 2
}
