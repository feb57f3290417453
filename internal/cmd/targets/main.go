// Copyright 2025 The Tocktool Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package targets

import (
	"flag"
	"fmt"
	"os"
	"text/tabwriter"

	"github.com/JamesLinus/tocktool/internal/config"
	"github.com/JamesLinus/tocktool/internal/target"
	"github.com/JamesLinus/tocktool/internal/util"
)

const Descr = "list the known hardware targets"

func Main(cmd string, args []string) {
	fs := flag.NewFlagSet(cmd, flag.ExitOnError)
	fs.Usage = func() {
		fmt.Fprintf(os.Stderr, "Usage:\n  %s\n", cmd)
	}
	fs.Parse(args)
	if fs.NArg() != 0 {
		fs.Usage()
		os.Exit(1)
	}
	cfg := config.Load()
	if cfg.TargetsFile != "" {
		util.FatalErr("targets", target.LoadFile(cfg.TargetsFile))
	}
	w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, "NAME\tDEVICE\tARCH\tTRIPLE\tIF\tSPEED")
	for _, t := range target.List() {
		fmt.Fprintf(
			w, "%s\t%s\t%s\t%s\t%s\t%d\n",
			t.Name, t.Device, t.Arch, t.Triple, t.Interface, t.Speed,
		)
	}
	w.Flush()
}
