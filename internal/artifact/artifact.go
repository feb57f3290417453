// Copyright 2025 The Tocktool Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

// Package artifact resolves the paths of the prebuilt board artifacts the
// flashing pipeline consumes. It never builds anything itself: a missing
// file means a missing prerequisite build step.
package artifact

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/JamesLinus/tocktool/internal/target"
)

// NotFoundError reports a missing prerequisite build output. It is fatal
// and non-retryable; Hint names the build step that produces the file.
type NotFoundError struct {
	Kind string // "kernel image", "app image", "flash script"
	Path string
	Hint string
}

func (e *NotFoundError) Error() string {
	return fmt.Sprintf("%s not found at %s (%s)", e.Kind, e.Path, e.Hint)
}

// A Locator resolves artifact paths relative to the root of a board build
// tree.
type Locator struct {
	BuildDir string
}

// Kernel returns the path of the kernel's release ELF image for the given
// target.
func (l *Locator) Kernel(t target.Target) (string, error) {
	p := filepath.Join(l.BuildDir, "target", t.Triple, "release", t.Name+".elf")
	return p, l.stat("kernel image", p, "build the kernel first: make")
}

// App returns the path of the named application's built binary image for
// the target's architecture.
func (l *Locator) App(t target.Target, name string) (string, error) {
	p := filepath.Join(l.BuildDir, "apps", name, "build", t.Arch, name+".bin")
	hint := fmt.Sprintf("build the app first: make -C apps/%s", name)
	return p, l.stat("app image", p, hint)
}

// KernelScript returns the path of the static kernel-only flash script.
// The script is part of the board tree; it is never generated or removed
// by this tool.
func (l *Locator) KernelScript(t target.Target) (string, error) {
	p := filepath.Join(l.BuildDir, "jtag", "flash-kernel.jlink")
	return p, l.stat("flash script", p, "expected in the board's jtag directory")
}

// Combined returns the deterministic output path for the kernel image with
// the named application embedded. The file lives next to the kernel image,
// so repeated runs overwrite the same artifact.
func (l *Locator) Combined(t target.Target, app string) string {
	dir := filepath.Join(l.BuildDir, "target", t.Triple, "release")
	return filepath.Join(dir, t.Name+"-"+app+".elf")
}

func (l *Locator) stat(kind, path, hint string) error {
	fi, err := os.Stat(path)
	if err != nil || !fi.Mode().IsRegular() {
		return &NotFoundError{Kind: kind, Path: path, Hint: hint}
	}
	return nil
}
