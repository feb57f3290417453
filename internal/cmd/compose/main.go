// Copyright 2025 The Tocktool Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package compose

import (
	"flag"
	"fmt"
	"os"

	"github.com/JamesLinus/tocktool/internal/artifact"
	"github.com/JamesLinus/tocktool/internal/config"
	"github.com/JamesLinus/tocktool/internal/image"
	"github.com/JamesLinus/tocktool/internal/target"
	"github.com/JamesLinus/tocktool/internal/util"
)

const Descr = "embed an app into the kernel image without flashing"

func Main(cmd string, args []string) {
	fs := flag.NewFlagSet(cmd, flag.ExitOnError)
	fs.Usage = func() {
		fmt.Fprintf(os.Stderr, "Usage:\n  %s [OPTIONS] APP\nOptions:\n", cmd)
		fs.PrintDefaults()
	}
	targetName := fs.String(
		"target", "nrf52dk",
		"platform `name` (run the targets command for the known ones)",
	)
	fs.Parse(args)
	if fs.NArg() != 1 {
		fs.Usage()
		os.Exit(1)
	}
	app := fs.Arg(0)

	cfg := config.Load()
	if cfg.TargetsFile != "" {
		util.FatalErr("targets", target.LoadFile(cfg.TargetsFile))
	}
	t, ok := target.Lookup(*targetName)
	if !ok {
		util.Fatal("unknown target: %s", *targetName)
	}
	loc := &artifact.Locator{BuildDir: cfg.BuildDir}
	kernel, err := loc.Kernel(t)
	util.FatalErr("locate", err)
	appBin, err := loc.App(t, app)
	util.FatalErr("locate", err)
	combined := loc.Combined(t, app)
	util.FatalErr("compose", image.Compose(kernel, t.Region, appBin, combined))
	fmt.Println(combined)
}
