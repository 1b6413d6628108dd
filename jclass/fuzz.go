// Copyright 2018 Saferwall. All rights reserved.
// Use of this source code is governed by Apache v2 license
// license that can be found in the LICENSE file.

// +build gofuzz

package jclass

// Fuzz is the classic go-fuzz entry point: parse data as a class file and
// walk every method's bytecode, panicking only on a genuine programmer
// error rather than on malformed input.
func Fuzz(data []byte) int {
	cf, err := Parse(data)
	if err != nil {
		return 0
	}

	if _, err := ExtractSymbols(cf); err != nil {
		return 0
	}

	return 1
}
