// Copyright 2018 Saferwall. All rights reserved.
// Use of this source code is governed by Apache v2 license
// license that can be found in the LICENSE file.

package jclass

import (
	"fmt"
	"sort"
	"strings"
)

// Item is one (source file, class entry, symbol) triple flowing through a
// Pipeline. SourcePath is the .class/.jar path on the command line;
// ClassEntry is "" for a bare .class file, or the jar-relative entry name
// for a class found inside a jar.
type Item struct {
	SourcePath string
	ClassEntry string
	Symbol     Symbol

	// definedHere is the set of fully-qualified names defined by the
	// class file this item's symbol came from; used by the
	// resolve-class filter.
	definedHere map[string]bool
}

// SetDefinedHere records the set of fully-qualified names defined by the
// class file this item's symbol came from, for use by ResolveClassFilter.
func (it *Item) SetDefinedHere(defined map[string]bool) { it.definedHere = defined }

// Filter shrinks a sequence of items.
type Filter func(items []Item) []Item

// Sort reorders a sequence of items. Implementations must be stable.
type Sort func(items []Item) []Item

// Display maps each item's previously rendered line to a new line.
type Display func(lines []string, items []Item) []string

// Pipeline is the fixed filter-then-sort-then-display chain described for
// jnm/jldd: filters run first in order, then sorts, then displays, each
// stage seeded by the previous stage's output.
type Pipeline struct {
	Filters  []Filter
	Sorts    []Sort
	Displays []Display
}

// DefaultPipeline returns the always-on defaults: resolve_class first
// among filters, a no-op sort, and normal_display as the sole display.
func DefaultPipeline() *Pipeline {
	return &Pipeline{
		Filters:  []Filter{ResolveClassFilter},
		Sorts:    []Sort{NoopSort},
		Displays: []Display{NormalDisplay},
	}
}

// Run applies filters, then sorts, then displays, returning one rendered
// line per surviving item in final order.
func (p *Pipeline) Run(items []Item) []string {
	cur := items
	for _, f := range p.Filters {
		cur = f(cur)
	}
	for _, s := range p.Sorts {
		cur = s(cur)
	}
	lines := make([]string, len(cur))
	displays := p.Displays
	if len(displays) == 0 {
		displays = []Display{NormalDisplay}
	}
	for _, d := range displays {
		lines = d(lines, cur)
	}
	return lines
}

// ResolveClassFilter drops reference symbols whose target is defined
// within the same class file the reference came from.
func ResolveClassFilter(items []Item) []Item {
	out := items[:0:0]
	for _, it := range items {
		if it.Symbol.IsReference() && it.definedHere != nil && it.definedHere[it.Symbol.Name] {
			continue
		}
		out = append(out, it)
	}
	return out
}

// ResolveAllFilter drops any reference whose target is defined anywhere
// across the current input set (all files/classes given to the tool).
func ResolveAllFilter(definedAnywhere map[string]bool) Filter {
	return func(items []Item) []Item {
		out := items[:0:0]
		for _, it := range items {
			if it.Symbol.IsReference() && definedAnywhere[it.Symbol.Name] {
				continue
			}
			out = append(out, it)
		}
		return out
	}
}

// RemoveDefinedFilter drops defined symbols, keeping only references.
func RemoveDefinedFilter(items []Item) []Item {
	out := items[:0:0]
	for _, it := range items {
		if !it.Symbol.IsReference() {
			continue
		}
		out = append(out, it)
	}
	return out
}

// RemoveUndefinedFilter drops reference symbols, keeping only definitions.
func RemoveUndefinedFilter(items []Item) []Item {
	out := items[:0:0]
	for _, it := range items {
		if it.Symbol.IsReference() {
			continue
		}
		out = append(out, it)
	}
	return out
}

// RemovePrivateFilter drops private symbols.
func RemovePrivateFilter(items []Item) []Item {
	out := items[:0:0]
	for _, it := range items {
		if it.Symbol.Visibility == Private {
			continue
		}
		out = append(out, it)
	}
	return out
}

// RemoveNonClassFilter keeps only class-level symbols (SymClass,
// SymRefClass).
func RemoveNonClassFilter(items []Item) []Item {
	out := items[:0:0]
	for _, it := range items {
		switch it.Symbol.Kind {
		case SymClass, SymRefClass:
			out = append(out, it)
		}
	}
	return out
}

// NoopSort leaves discovery order untouched.
func NoopSort(items []Item) []Item { return items }

// AlphabeticSort orders by symbol name, stable.
func AlphabeticSort(items []Item) []Item {
	out := append([]Item(nil), items...)
	sort.SliceStable(out, func(i, j int) bool { return out[i].Symbol.Name < out[j].Symbol.Name })
	return out
}

// NumericSort orders by symbol value, nulls sorting last, stable.
func NumericSort(items []Item) []Item {
	out := append([]Item(nil), items...)
	sort.SliceStable(out, func(i, j int) bool {
		vi, vj := out[i].Symbol.Value, out[j].Symbol.Value
		if vi == nil && vj == nil {
			return false
		}
		if vi == nil {
			return false
		}
		if vj == nil {
			return true
		}
		return *vi < *vj
	})
	return out
}

// ReverseSort reverses the current order.
func ReverseSort(items []Item) []Item {
	out := make([]Item, len(items))
	for i, it := range items {
		out[len(items)-1-i] = it
	}
	return out
}

// NormalDisplay renders each item as "%08x %c %s", with 9 spaces in place
// of the value field when the symbol has no value.
func NormalDisplay(lines []string, items []Item) []string {
	out := make([]string, len(items))
	for i, it := range items {
		s := it.Symbol
		var valueField string
		if s.Value == nil {
			valueField = strings.Repeat(" ", 9)
		} else {
			valueField = fmt.Sprintf("%08x ", *s.Value)
		}
		out[i] = fmt.Sprintf("%s%c %s", valueField, s.KindChar(), s.Name)
	}
	return out
}

// PrependFilename prefixes each line with its originating file (or
// "<jar>(<entry>)") per the multi-input jnm output convention.
func PrependFilename(lines []string, items []Item) []string {
	out := make([]string, len(lines))
	for i, it := range items {
		label := it.SourcePath
		if it.ClassEntry != "" {
			label = fmt.Sprintf("%s(%s)", it.SourcePath, it.ClassEntry)
		}
		out[i] = label + ": " + lines[i]
	}
	return out
}

// NameOnly replaces each line with just the symbol's name.
func NameOnly(lines []string, items []Item) []string {
	out := make([]string, len(items))
	for i, it := range items {
		out[i] = it.Symbol.Name
	}
	return out
}

// Demangle appends the demangled expanded name for member symbols, unless
// the line already ends with it, so applying it twice equals applying it once.
func Demangle(lines []string, items []Item) []string {
	out := make([]string, len(lines))
	for i, it := range items {
		out[i] = lines[i]
		suffix := " [" + it.Symbol.ExpandedName + "]"
		if it.Symbol.ExpandedName != "" && !strings.HasSuffix(out[i], suffix) {
			out[i] += suffix
		}
	}
	return out
}
