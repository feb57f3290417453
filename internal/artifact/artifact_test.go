// Copyright 2025 The Tocktool Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package artifact

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/JamesLinus/tocktool/internal/target"
)

func testTarget() target.Target {
	return target.Target{
		Name:   "nrf52dk",
		Arch:   "cortex-m4",
		Triple: "thumbv7em-none-eabi",
		Device: "nrf52",
	}
}

func touch(t *testing.T, path string) {
	t.Helper()
	require.NoError(t, os.MkdirAll(filepath.Dir(path), 0755))
	require.NoError(t, os.WriteFile(path, []byte("x"), 0644))
}

func TestKernel(t *testing.T) {
	dir := t.TempDir()
	l := &Locator{BuildDir: dir}
	tg := testTarget()
	want := filepath.Join(dir, "target", "thumbv7em-none-eabi", "release", "nrf52dk.elf")

	_, err := l.Kernel(tg)
	var nf *NotFoundError
	require.ErrorAs(t, err, &nf)
	assert.Equal(t, "kernel image", nf.Kind)
	assert.Equal(t, want, nf.Path)
	assert.Contains(t, nf.Hint, "build the kernel")

	touch(t, want)
	got, err := l.Kernel(tg)
	require.NoError(t, err)
	assert.Equal(t, want, got)
}

func TestAppMissing(t *testing.T) {
	dir := t.TempDir()
	l := &Locator{BuildDir: dir}
	tg := testTarget()

	// The kernel being in place does not help: a missing app image fails
	// on its own, before anything downstream runs.
	touch(t, filepath.Join(dir, "target", tg.Triple, "release", tg.Name+".elf"))
	_, err := l.App(tg, "blink")
	var nf *NotFoundError
	require.ErrorAs(t, err, &nf)
	assert.Equal(t, "app image", nf.Kind)
	assert.Contains(t, nf.Hint, "apps/blink")
}

func TestApp(t *testing.T) {
	dir := t.TempDir()
	l := &Locator{BuildDir: dir}
	tg := testTarget()
	want := filepath.Join(dir, "apps", "blink", "build", "cortex-m4", "blink.bin")
	touch(t, want)

	got, err := l.App(tg, "blink")
	require.NoError(t, err)
	assert.Equal(t, want, got)
}

func TestKernelScript(t *testing.T) {
	dir := t.TempDir()
	l := &Locator{BuildDir: dir}
	tg := testTarget()

	_, err := l.KernelScript(tg)
	var nf *NotFoundError
	require.ErrorAs(t, err, &nf)
	assert.Equal(t, "flash script", nf.Kind)

	want := filepath.Join(dir, "jtag", "flash-kernel.jlink")
	touch(t, want)
	got, err := l.KernelScript(tg)
	require.NoError(t, err)
	assert.Equal(t, want, got)
}

func TestCombinedDeterministic(t *testing.T) {
	l := &Locator{BuildDir: "/build"}
	tg := testTarget()
	p1 := l.Combined(tg, "blink")
	p2 := l.Combined(tg, "blink")
	assert.Equal(t, p1, p2)
	assert.Equal(t,
		filepath.Join("/build", "target", tg.Triple, "release", "nrf52dk-blink.elf"),
		p1)
}
