// Copyright 2018 Saferwall. All rights reserved.
// Use of this source code is governed by Apache v2 license
// license that can be found in the LICENSE file.

// Command jldd reports the packages a class file or jar references and
// which classpath source supplies each one, in the manner of the classic
// Unix ldd.
package main

import (
	"errors"
	"fmt"
	"os"
	"sort"
	"strings"

	"github.com/spf13/cobra"

	"github.com/saferwall/jbinutils/internal/bootcp"
	"github.com/saferwall/jbinutils/internal/xlog"
	"github.com/saferwall/jbinutils/jclass"
)

var (
	flagClassPath     string
	flagBootClassPath string
	flagResolveAll    bool
	flagM32           bool
)

func splitPath(s string) []string {
	if s == "" {
		return nil
	}
	return strings.Split(s, ":")
}

func resolveClassPath() []string {
	if flagClassPath != "" {
		return splitPath(flagClassPath)
	}
	if cp := os.Getenv("CLASSPATH"); cp != "" {
		return splitPath(cp)
	}
	return []string{"."}
}

func resolveBootClassPath() ([]string, error) {
	if flagBootClassPath != "" {
		return splitPath(flagBootClassPath), nil
	}
	return bootcp.Discover()
}

func referenceSymbols(cf *jclass.ClassFile) ([]jclass.Symbol, error) {
	syms, err := jclass.ExtractSymbols(cf)
	if err != nil {
		return nil, err
	}
	var out []jclass.Symbol
	for _, s := range syms {
		if !s.IsReference() {
			continue
		}
		if !flagResolveAll && s.Kind != jclass.SymRefClass {
			continue
		}
		out = append(out, s)
	}
	return out, nil
}

// printResolution prints the resolved package sources and reports whether
// any reference was left unresolved.
func printResolution(res *jclass.Resolution) bool {
	pkgs := make([]string, 0, len(res.Packages))
	for pkg := range res.Packages {
		pkgs = append(pkgs, pkg)
	}
	sort.Strings(pkgs)

	for _, pkg := range pkgs {
		sources := res.Packages[pkg]
		if len(sources) == 0 {
			fmt.Printf("\t %s => ???\n", pkg)
			continue
		}
		fmt.Printf("\t %s => %s\n", pkg, strings.Join(sources, ", "))
	}

	if len(res.Unresolved) > 0 {
		fmt.Println("Failed to resolve:")
		for _, name := range res.Unresolved {
			fmt.Printf("\t%s\n", name)
		}
	}
	return len(res.Unresolved) > 0
}

// processFile resolves path's references and reports them. The first
// return value is true when one or more references could not be resolved
// but the file itself was processed successfully.
func processFile(path string, boot, user *jclass.ClasspathIndex) (bool, error) {
	f, err := jclass.OpenFile(path)
	if err != nil && !errors.Is(err, jclass.ErrExtraData) {
		return false, err
	}
	if err != nil {
		xlog.Default.Warnf("%s: %v", path, err)
	}
	defer f.Close()

	refs, err := referenceSymbols(f.ClassFile)
	if err != nil {
		return false, err
	}
	return printResolution(jclass.Resolve(refs, boot, user)), nil
}

func main() {
	root := &cobra.Command{
		Use:   "jldd file...",
		Short: "Report the classpath sources that resolve a class file's references",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if flagM32 {
				jclass.SetPointerSize(4)
			}

			bootPaths, err := resolveBootClassPath()
			if err != nil {
				xlog.Default.Errorf("%v", err)
				os.Exit(2)
			}
			boot, err := jclass.NewClasspathIndex(bootPaths)
			if err != nil {
				return err
			}
			user, err := jclass.NewClasspathIndex(resolveClassPath())
			if err != nil {
				return err
			}

			failed := false
			for i, path := range args {
				if len(args) > 1 {
					if i > 0 {
						fmt.Println()
					}
					fmt.Printf("%s:\n", path)
				}
				unresolved, err := processFile(path, boot, user)
				if err != nil {
					xlog.Default.Errorf("%s: %v", path, err)
					failed = true
					continue
				}
				if unresolved {
					failed = true
				}
			}
			if failed {
				os.Exit(1)
			}
			return nil
		},
	}

	flags := root.Flags()
	flags.StringVarP(&flagClassPath, "classpath", "c", "", "colon-separated user classpath (default $CLASSPATH or \".\")")
	flags.StringVarP(&flagBootClassPath, "bootclasspath", "b", "", "colon-separated boot classpath (default: auto-detect)")
	flags.BoolVarP(&flagResolveAll, "resolve-all", "r", false, "also resolve field and method references")
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
