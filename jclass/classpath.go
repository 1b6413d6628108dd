// Copyright 2018 Saferwall. All rights reserved.
// Use of this source code is governed by Apache v2 license
// license that can be found in the LICENSE file.

package jclass

import (
	"io/fs"
	"os"
	"path/filepath"
	"sort"
	"strings"
)

// ClasspathIndex maps a fully-qualified class name to the absolute path of
// the jar or directory that supplies it. Earlier sources win on conflict.
type ClasspathIndex struct {
	bySource map[string]string
}

// NewClasspathIndex builds an index over sources (an ordered list of jar
// files and directories), first occurrence wins on duplicate class names.
func NewClasspathIndex(sources []string) (*ClasspathIndex, error) {
	idx := &ClasspathIndex{bySource: make(map[string]string)}
	for _, src := range sources {
		abs, err := filepath.Abs(src)
		if err != nil {
			abs = src
		}
		info, err := os.Stat(src)
		if err != nil {
			continue
		}
		if info.IsDir() {
			idx.indexDirectory(src, abs)
		} else {
			idx.indexJar(src, abs)
		}
	}
	return idx, nil
}

func (idx *ClasspathIndex) indexJar(path, abs string) {
	zr, err := OpenArchive(path)
	if err != nil {
		return
	}
	defer zr.Close()
	for _, e := range zr.zr.File {
		if e.FileInfo().IsDir() || !strings.HasSuffix(e.Name, ".class") {
			continue
		}
		fqcn := strings.ReplaceAll(strings.TrimSuffix(e.Name, ".class"), "/", ".")
		if _, exists := idx.bySource[fqcn]; !exists {
			idx.bySource[fqcn] = abs
		}
	}
}

// indexDirectory walks root fully and recursively rather than listing a
// single level, since a classpath directory entry is a package tree.
func (idx *ClasspathIndex) indexDirectory(root, abs string) {
	filepath.WalkDir(root, func(path string, d fs.DirEntry, err error) error {
		if err != nil || d.IsDir() || !strings.HasSuffix(path, ".class") {
			return nil
		}
		rel, err := filepath.Rel(root, path)
		if err != nil {
			return nil
		}
		fqcn := strings.ReplaceAll(strings.TrimSuffix(rel, ".class"), string(filepath.Separator), ".")
		if _, exists := idx.bySource[fqcn]; !exists {
			idx.bySource[fqcn] = abs
		}
		return nil
	})
}

// Lookup resolves a fully-qualified class name to its supplying source.
func (idx *ClasspathIndex) Lookup(fqcn string) (source string, ok bool) {
	source, ok = idx.bySource[fqcn]
	return source, ok
}

// packageOf returns the dotted package name of a dotted class name, "" for
// the unnamed package.
func packageOf(fqcn string) string {
	if i := strings.LastIndexByte(fqcn, '.'); i >= 0 {
		return fqcn[:i]
	}
	return ""
}

// classOfRef returns the owning class name for a reference symbol. A
// SymRefClass symbol's Name already is the class; a field or method
// reference's Name is "class.member", so the trailing member segment is
// stripped.
func classOfRef(sym Symbol) string {
	if sym.Kind == SymRefClass {
		return sym.Name
	}
	if i := strings.LastIndexByte(sym.Name, '.'); i >= 0 {
		return sym.Name[:i]
	}
	return sym.Name
}

// Resolution is the per-input-file result of resolving a set of reference
// symbols against boot and user classpaths.
type Resolution struct {
	// Packages maps each referenced package to the sorted, de-duplicated
	// set of sources (boot or user) that supply any class in it.
	Packages map[string][]string
	// Unresolved lists reference symbols that matched no source.
	Unresolved []string
}

// Resolve groups refs by the package of their referenced class and
// reports, per package, which sources (boot classpath first, then user
// classpath) supply any class in that package.
func Resolve(refs []Symbol, boot, user *ClasspathIndex) *Resolution {
	res := &Resolution{Packages: make(map[string][]string)}
	sourceSets := make(map[string]map[string]bool)
	seenUnresolved := make(map[string]bool)

	for _, sym := range refs {
		if !sym.IsReference() {
			continue
		}
		class := classOfRef(sym)
		pkg := packageOf(class)

		var source string
		var ok bool
		if boot != nil {
			source, ok = boot.Lookup(class)
		}
		if !ok && user != nil {
			source, ok = user.Lookup(class)
		}
		if !ok {
			if !seenUnresolved[sym.Name] {
				seenUnresolved[sym.Name] = true
				res.Unresolved = append(res.Unresolved, sym.Name)
			}
			if _, exists := res.Packages[pkg]; !exists {
				res.Packages[pkg] = nil
			}
			continue
		}

		if sourceSets[pkg] == nil {
			sourceSets[pkg] = make(map[string]bool)
		}
		sourceSets[pkg][source] = true
	}

	for pkg, set := range sourceSets {
		sources := make([]string, 0, len(set))
		for s := range set {
			sources = append(sources, s)
		}
		sort.Strings(sources)
		res.Packages[pkg] = sources
	}

	sort.Strings(res.Unresolved)
	return res
}
