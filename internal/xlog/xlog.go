// Copyright 2018 Saferwall. All rights reserved.
// Use of this source code is governed by Apache v2 license
// license that can be found in the LICENSE file.

// Package xlog is the thin structured-logging wrapper shared by the three
// CLI tools, standing in for the library's own internal log helper.
package xlog

import (
	"io"
	"os"

	"github.com/rs/zerolog"
)

// Helper wraps a zerolog.Logger behind printf-style call sites, matching
// the shape callers expect from the library's own log helper.
type Helper struct {
	log zerolog.Logger
}

// New builds a Helper writing to w in human-readable console form.
func New(w io.Writer) *Helper {
	cw := zerolog.ConsoleWriter{Out: w, TimeFormat: "15:04:05"}
	return &Helper{log: zerolog.New(cw).With().Timestamp().Logger()}
}

// Default is the package-wide Helper used by call sites that don't carry
// their own, writing to stderr.
var Default = New(os.Stderr)

// Errorf logs at error level.
func (h *Helper) Errorf(format string, args ...interface{}) {
	h.log.Error().Msgf(format, args...)
}

// Warnf logs at warn level.
func (h *Helper) Warnf(format string, args ...interface{}) {
	h.log.Warn().Msgf(format, args...)
}

// Debugf logs at debug level.
func (h *Helper) Debugf(format string, args ...interface{}) {
	h.log.Debug().Msgf(format, args...)
}

// SetLevel adjusts the minimum level this Helper emits at.
func (h *Helper) SetLevel(level zerolog.Level) {
	h.log = h.log.Level(level)
}
