// Copyright 2018 Saferwall. All rights reserved.
// Use of this source code is governed by Apache v2 license
// license that can be found in the LICENSE file.

// Command jdump disassembles one or more class files to stdout, in the
// manner of javap -c.
package main

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"

	"github.com/saferwall/jbinutils/internal/xlog"
	"github.com/saferwall/jbinutils/jclass"
	"github.com/saferwall/jbinutils/render"
)

func dumpFile(path string) error {
	f, err := jclass.OpenFile(path)
	if err != nil && !errors.Is(err, jclass.ErrExtraData) {
		return err
	}
	if err != nil {
		xlog.Default.Warnf("%s: %v", path, err)
	}
	defer f.Close()

	for _, n := range f.ClassFile.Notices {
		xlog.Default.Warnf("%s: %s", path, n)
	}
	return render.Disassemble(os.Stdout, f.ClassFile, filepath.Base(path))
}

func main() {
	root := &cobra.Command{
		Use:   "jdump file...",
		Short: "Disassemble class files",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			failed := false
			for _, path := range args {
				if err := dumpFile(path); err != nil {
					xlog.Default.Errorf("%s: %v", path, err)
					failed = true
				}
			}
			if failed {
				os.Exit(1)
			}
			return nil
		},
	}

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
