// Copyright 2025 The Tocktool Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package flash

import (
	"context"
	"flag"
	"fmt"
	"os"
	"os/signal"

	"github.com/JamesLinus/tocktool/internal/artifact"
	"github.com/JamesLinus/tocktool/internal/config"
	"github.com/JamesLinus/tocktool/internal/image"
	"github.com/JamesLinus/tocktool/internal/jlink"
	"github.com/JamesLinus/tocktool/internal/target"
	"github.com/JamesLinus/tocktool/internal/util"
)

const (
	DescrKernel = "flash the kernel onto the device"
	DescrApp    = "embed an app into the kernel and flash the combined image"
)

func Main(cmd string, args []string) {
	fs := flag.NewFlagSet(cmd, flag.ExitOnError)
	fs.Usage = func() {
		argHint := ""
		if cmd == "flash-app" {
			argHint = " APP"
		}
		fmt.Fprintf(
			os.Stderr,
			"Usage:\n  %s [OPTIONS]%s\nOptions:\n",
			cmd, argHint,
		)
		fs.PrintDefaults()
	}
	targetName := fs.String(
		"target", "nrf52dk",
		"platform `name` (run the targets command for the known ones)",
	)
	fs.Parse(args)
	app := ""
	if cmd == "flash-app" {
		if fs.NArg() != 1 {
			fs.Usage()
			os.Exit(1)
		}
		app = fs.Arg(0)
	} else if fs.NArg() != 0 {
		fs.Usage()
		os.Exit(1)
	}

	cfg := config.Load()
	if cfg.TargetsFile != "" {
		util.FatalErr("targets", target.LoadFile(cfg.TargetsFile))
	}
	t, ok := target.Lookup(*targetName)
	if !ok {
		util.Fatal("unknown target: %s", *targetName)
	}
	loc := &artifact.Locator{BuildDir: cfg.BuildDir}
	sess := &jlink.Session{
		Target:  t,
		Exe:     cfg.JLinkExe,
		Timeout: cfg.FlashTimeout,
		Run:     jlink.ExecRunner{},
	}

	// An interrupt cancels the probe invocation; the deferred cleanup of
	// the transient command script still runs on that path.
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	kernel, err := loc.Kernel(t)
	util.FatalErr("locate", err)
	if app == "" {
		script, err := loc.KernelScript(t)
		util.FatalErr("locate", err)
		hex := util.ReplaceExt(kernel, ".hex")
		util.FatalErr("transcode", image.Transcode(kernel, hex))
		util.FatalErr("flash", sess.FlashKernel(ctx, script))
		return
	}
	appBin, err := loc.App(t, app)
	util.FatalErr("locate", err)
	combined := loc.Combined(t, app)
	util.FatalErr("compose", image.Compose(kernel, t.Region, appBin, combined))
	hex := util.ReplaceExt(combined, ".hex")
	util.FatalErr("transcode", image.Transcode(combined, hex))
	util.FatalErr("flash", sess.FlashApp(ctx, hex))
}
