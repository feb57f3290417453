// Copyright 2025 The Tocktool Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

// Tocktool packages a prebuilt kernel image and a prebuilt application
// image into a single flashable firmware artifact, converts it to the
// format the hardware programmer accepts and drives the programmer over
// the debug-probe link to erase, load and run it.
package main

import (
	"fmt"
	"os"
	"slices"

	"github.com/golang/glog"

	"github.com/JamesLinus/tocktool/internal/cmd/compose"
	"github.com/JamesLinus/tocktool/internal/cmd/flash"
	"github.com/JamesLinus/tocktool/internal/cmd/hex"
	"github.com/JamesLinus/tocktool/internal/cmd/targets"
)

type tool struct {
	descr string
	main  func(cmd string, args []string)
}

var tools = map[string]tool{
	"flash":     {flash.DescrKernel, flash.Main},
	"flash-app": {flash.DescrApp, flash.Main},
	"compose":   {compose.Descr, compose.Main},
	"hex":       {hex.Descr, hex.Main},
	"targets":   {targets.Descr, targets.Main},
}

func printToolList() {
	names := make([]string, 0, len(tools))
	for name := range tools {
		names = append(names, name)
	}
	slices.Sort(names)
	maxLen := 0
	for _, k := range names {
		if maxLen < len(k) {
			maxLen = len(k)
		}
	}
	uw := os.Stderr
	uw.WriteString("Usage:\n  tocktool COMMAND [ARGUMENTS]\n\n")
	uw.WriteString("Available commands:\n")
	for _, name := range names {
		fmt.Fprintf(uw, "  %*s  %s\n", maxLen, name, tools[name].descr)
	}
}

func main() {
	defer glog.Flush()
	if len(os.Args) < 2 || os.Args[1] == "-h" {
		printToolList()
		return
	}
	tool, ok := tools[os.Args[1]]
	if !ok {
		printToolList()
		os.Exit(1)
	}
	tool.main(os.Args[1], os.Args[2:])
}
