// Copyright 2025 The Tocktool Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package util

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/golang/glog"
)

func Warn(f string, args ...any) {
	fmt.Fprintf(os.Stderr, f+"\n", args...)
}

func Fatal(f string, args ...any) {
	glog.Flush()
	fmt.Fprintf(os.Stderr, f+"\n", args...)
	os.Exit(1)
}

// FatalErr prints an error description prefixed with the name of the
// failing stage and exits the program if the err != nil.
func FatalErr(what string, err error) {
	if err == nil {
		return
	}
	glog.Flush()
	s := err.Error() + "\n"
	if what != "" {
		s = what + ": " + s
	}
	os.Stderr.WriteString(s)
	os.Exit(1)
}

// ReplaceExt returns name with its extension replaced by ext (including the
// dot). A name without an extension gets ext appended.
func ReplaceExt(name, ext string) string {
	return strings.TrimSuffix(name, filepath.Ext(name)) + ext
}

// OutFile infers the name of the output file from the name of the input file
// if outName is an empty string.
func OutFile(inName, outName, outExt string) string {
	if outName == "" {
		outName = ReplaceExt(inName, outExt)
	}
	return outName
}
