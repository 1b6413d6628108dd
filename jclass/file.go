// Copyright 2018 Saferwall. All rights reserved.
// Use of this source code is governed by Apache v2 license
// license that can be found in the LICENSE file.

package jclass

import (
	"os"

	mmap "github.com/edsrzf/mmap-go"
)

// File is a class file opened directly from disk, memory-mapped rather
// than read into a heap buffer.
type File struct {
	ClassFile *ClassFile
	data      mmap.MMap
	f         *os.File
}

// OpenFile memory-maps path and parses it as a class file. Callers must
// call Close when done to release the mapping and file handle.
func OpenFile(path string) (*File, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}

	data, err := mmap.Map(f, mmap.RDONLY, 0)
	if err != nil {
		f.Close()
		return nil, err
	}

	cf, err := Parse(data)
	if err != nil && cf == nil {
		data.Unmap()
		f.Close()
		return nil, err
	}

	return &File{ClassFile: cf, data: data, f: f}, err
}

// Close releases the memory mapping and underlying file handle.
func (fl *File) Close() error {
	if err := fl.data.Unmap(); err != nil {
		fl.f.Close()
		return err
	}
	return fl.f.Close()
}
