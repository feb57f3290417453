// Copyright 2025 The Tocktool Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package image

import (
	"debug/elf"
	"errors"
	"fmt"
	"os"
	"sort"

	"github.com/golang/glog"
	"github.com/marcinbor85/gohex"
)

// ErrNoLoadableRegions is returned by Transcode for an image that
// contains nothing to flash.
var ErrNoLoadableRegions = errors.New("image has no loadable regions")

type loadable struct {
	addr uint64 // physical location in the Flash/ROM
	data []byte
}

// Transcode converts an ELF image to the Intel HEX format, preserving the
// loadable region contents and their absolute addresses and dropping
// debug and symbol metadata.
func Transcode(elfPath, hexPath string) error {
	ls, err := readLoadable(elfPath)
	if err != nil {
		return err
	}
	if len(ls) == 0 {
		return fmt.Errorf("%s: %w", elfPath, ErrNoLoadableRegions)
	}
	sort.Slice(ls, func(i, j int) bool { return ls[i].addr < ls[j].addr })
	mem := gohex.NewMemory()
	for _, l := range ls {
		if l.addr > 0xffff_ffff {
			return fmt.Errorf("%s: region address %#x does not fit in 32 bits",
				elfPath, l.addr)
		}
		if err := mem.AddBinary(uint32(l.addr), l.data); err != nil {
			return fmt.Errorf("%s: %w", elfPath, err)
		}
	}
	w, err := os.Create(hexPath)
	if err != nil {
		return err
	}
	defer w.Close()
	if err := mem.DumpIntelHex(w, 16); err != nil {
		return fmt.Errorf("%s: %w", hexPath, err)
	}
	glog.Infof("transcoded %s to %s", elfPath, hexPath)
	return nil
}

// readLoadable returns the regions of the image that end up in the device
// memory: allocatable PROGBITS sections with non-empty contents. The load
// address is the physical address from the covering PT_LOAD program
// header, falling back to the region's own address when there is none.
func readLoadable(name string) ([]loadable, error) {
	f, err := elf.Open(name)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", name, err)
	}
	defer f.Close()
	ls := make([]loadable, 0, 16)
	for _, s := range f.Sections {
		if s.Type != elf.SHT_PROGBITS || s.Flags&elf.SHF_ALLOC == 0 {
			continue
		}
		data, err := s.Data()
		if err != nil {
			return nil, fmt.Errorf("%s: %w", name, err)
		}
		if len(data) == 0 {
			continue
		}
		addr := s.Addr
		for _, p := range f.Progs {
			if p.Type != elf.PT_LOAD {
				continue
			}
			if p.Off <= s.Offset && s.Offset < p.Off+p.Filesz {
				addr = p.Paddr + s.Offset - p.Off
				break
			}
		}
		ls = append(ls, loadable{addr, data})
	}
	return ls, nil
}
