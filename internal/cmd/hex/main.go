// Copyright 2025 The Tocktool Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package hex

import (
	"flag"
	"fmt"
	"os"

	"github.com/JamesLinus/tocktool/internal/image"
	"github.com/JamesLinus/tocktool/internal/util"
)

const Descr = "convert an ELF image to the Intel HEX format"

func Main(cmd string, args []string) {
	fs := flag.NewFlagSet(cmd, flag.ExitOnError)
	fs.Usage = func() {
		fmt.Fprintf(os.Stderr, "Usage:\n  %s ELF [HEX]\n", cmd)
		fs.PrintDefaults()
	}
	fs.Parse(args)
	if fs.NArg() < 1 || fs.NArg() > 2 {
		fs.Usage()
		os.Exit(1)
	}
	elf := fs.Arg(0)
	out := util.OutFile(elf, fs.Arg(1), ".hex")
	util.FatalErr("transcode", image.Transcode(elf, out))
}
