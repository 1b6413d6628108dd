// Copyright 2018 Saferwall. All rights reserved.
// Use of this source code is governed by Apache v2 license
// license that can be found in the LICENSE file.

// Package bootcp discovers the host JVM's boot classpath by running a
// bundled helper jar and falling back to a platform-specific list when
// that probe fails.
package bootcp

import (
	_ "embed"
	"encoding/base64"
	"fmt"
	"os"
	"os/exec"
	"regexp"
	"runtime"
	"strings"
)

//go:embed helper.jar.b64
var helperJarB64 string

var (
	bootClassPathLine = regexp.MustCompile(`^Boot-Class-Path:\s*(.+)$`)
	separatorLine     = regexp.MustCompile(`^Class-Path-Separator:\s*(.)$`)
)

// darwinFallback is the built-in boot classpath used on Darwin when the
// helper probe fails, matching the layout of a JDK 6 JVM framework bundle.
var darwinFallback = []string{
	"/System/Library/Java/JavaVirtualMachines/1.6.0.jdk/Contents/Classes/jsfd.jar",
	"/System/Library/Java/JavaVirtualMachines/1.6.0.jdk/Contents/Classes/classes.jar",
	"/System/Library/Java/JavaVirtualMachines/1.6.0.jdk/Contents/Classes/ui.jar",
	"/System/Library/Java/JavaVirtualMachines/1.6.0.jdk/Contents/Classes/laf.jar",
	"/System/Library/Java/JavaVirtualMachines/1.6.0.jdk/Contents/Classes/sunrsasign.jar",
	"/System/Library/Java/JavaVirtualMachines/1.6.0.jdk/Contents/Classes/jsse.jar",
	"/System/Library/Java/JavaVirtualMachines/1.6.0.jdk/Contents/Classes/jce.jar",
	"/System/Library/Java/JavaVirtualMachines/1.6.0.jdk/Contents/Classes/charsets.jar",
}

// Discover runs the embedded helper jar under the `java` on PATH and
// parses its boot classpath report. On any failure it falls back to
// darwinFallback on Darwin, or returns an error elsewhere.
func Discover() ([]string, error) {
	paths, err := probe()
	if err == nil {
		return paths, nil
	}
	if runtime.GOOS == "darwin" {
		return darwinFallback, nil
	}
	return nil, fmt.Errorf("boot classpath auto-detection failed: %w; pass --bootclasspath", err)
}

func probe() ([]string, error) {
	data, err := base64.StdEncoding.DecodeString(helperJarB64)
	if err != nil {
		return nil, fmt.Errorf("decode embedded helper jar: %w", err)
	}

	tmp, err := os.CreateTemp("", "jldd-helper-*.jar")
	if err != nil {
		return nil, err
	}
	tmpPath := tmp.Name()
	defer os.Remove(tmpPath)

	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		return nil, err
	}
	if err := tmp.Close(); err != nil {
		return nil, err
	}

	out, err := exec.Command("java", "-jar", tmpPath).Output()
	if err != nil {
		return nil, fmt.Errorf("run helper jar: %w", err)
	}

	return parseProbeOutput(out)
}

func parseProbeOutput(out []byte) ([]string, error) {
	sep := ":"
	var paths string
	found := false

	for _, line := range strings.Split(string(out), "\n") {
		line = strings.TrimRight(line, "\r")
		if m := separatorLine.FindStringSubmatch(line); m != nil {
			sep = m[1]
			continue
		}
		if m := bootClassPathLine.FindStringSubmatch(line); m != nil {
			paths = m[1]
			found = true
		}
	}

	if !found {
		return nil, fmt.Errorf("helper jar reported no Boot-Class-Path")
	}
	return strings.Split(paths, sep), nil
}
