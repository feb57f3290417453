// Copyright 2025 The Tocktool Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

// Package image provides the named-region view of an ELF firmware image
// used to embed an application binary into the kernel, and the conversion
// of such images to the Intel HEX format the flash programmer consumes.
//
// Only region lookup-by-name, byte-range replacement and access-flag
// updates are implemented; everything else in the file is carried through
// untouched.
package image

import (
	"bytes"
	"debug/elf"
	"encoding/binary"
	"fmt"
	"os"

	"github.com/golang/glog"
)

// A Region is a named, fixed-length byte range within an image with its
// access flags.
type Region struct {
	Name   string
	Addr   uint64          // address in the target memory
	Offset uint64          // offset of the region data in the file
	Size   uint64          // declared length in bytes
	Flags  elf.SectionFlag // access attributes

	index  int  // section header index
	noBits bool // region occupies no file space (SHT_NOBITS)
}

// An Image is the raw content of an ELF file together with its region
// table. Updates are applied to the in-memory copy; the source file is
// never modified.
type Image struct {
	raw       []byte
	order     binary.ByteOrder
	class     elf.Class
	shoff     uint64
	shentsize uint64
	regions   []*Region
	byName    map[string]*Region
	ambiguous map[string]bool
}

// RegionOverflowError reports data that does not fit in its destination
// region.
type RegionOverflowError struct {
	Region string
	Size   uint64 // declared region length
	Need   uint64 // length of the data
}

func (e *RegionOverflowError) Error() string {
	return fmt.Sprintf(
		"%d bytes do not fit in the %d-byte region %s",
		e.Need, e.Size, e.Region,
	)
}

// Load reads an ELF image and its region table.
func Load(name string) (*Image, error) {
	raw, err := os.ReadFile(name)
	if err != nil {
		return nil, err
	}
	f, err := elf.NewFile(bytes.NewReader(raw))
	if err != nil {
		return nil, fmt.Errorf("%s: %w", name, err)
	}
	defer f.Close()
	im := &Image{
		raw:       raw,
		order:     f.ByteOrder,
		class:     f.Class,
		byName:    make(map[string]*Region),
		ambiguous: make(map[string]bool),
	}
	if err := im.readHeaderLayout(); err != nil {
		return nil, fmt.Errorf("%s: %w", name, err)
	}
	for i, s := range f.Sections {
		if s.Name == "" {
			continue
		}
		r := &Region{
			Name:   s.Name,
			Addr:   s.Addr,
			Offset: s.Offset,
			Size:   s.Size,
			Flags:  s.Flags,
			index:  i,
			noBits: s.Type == elf.SHT_NOBITS,
		}
		im.regions = append(im.regions, r)
		if _, ok := im.byName[s.Name]; ok {
			im.ambiguous[s.Name] = true
		} else {
			im.byName[s.Name] = r
		}
	}
	return im, nil
}

// Region returns the region with the given name.
func (im *Image) Region(name string) (*Region, bool) {
	r, ok := im.byName[name]
	return r, ok && !im.ambiguous[name]
}

// Regions returns the region table in file order.
func (im *Image) Regions() []*Region {
	return im.regions
}

// UpdateRegion replaces the contents of the named region with data,
// zero-padded to the region's declared length, and sets the region's
// access flags to {alloc, execinstr}. Data longer than the region is a
// RegionOverflowError; nothing is modified in that case.
func (im *Image) UpdateRegion(name string, data []byte) error {
	if im.ambiguous[name] {
		return fmt.Errorf("region %s is ambiguous in this image", name)
	}
	r, ok := im.byName[name]
	if !ok {
		return fmt.Errorf("no region %s in this image", name)
	}
	if r.noBits {
		return fmt.Errorf("region %s occupies no file space", name)
	}
	if uint64(len(data)) > r.Size {
		return &RegionOverflowError{Region: name, Size: r.Size, Need: uint64(len(data))}
	}
	if r.Offset+r.Size > uint64(len(im.raw)) {
		return fmt.Errorf("region %s lies outside the file", name)
	}
	n := copy(im.raw[r.Offset:r.Offset+r.Size], data)
	clear(im.raw[r.Offset+uint64(n) : r.Offset+r.Size])
	r.Flags = elf.SHF_ALLOC | elf.SHF_EXECINSTR
	if err := im.writeRegionFlags(r); err != nil {
		return err
	}
	glog.V(1).Infof("updated region %s: %d data bytes, %d pad bytes",
		name, n, r.Size-uint64(n))
	return nil
}

// WriteFile writes the image to the named file.
func (im *Image) WriteFile(name string) error {
	return os.WriteFile(name, im.raw, 0644)
}

// Raw returns the image content.
func (im *Image) Raw() []byte {
	return im.raw
}

// ELF header fields needed to patch a section header entry in place.
// Offsets per the ELF specification for the 32- and 64-bit classes.
const (
	shoff32     = 0x20
	shentsize32 = 0x2e
	shoff64     = 0x28
	shentsize64 = 0x3a
	flagsOff    = 8 // sh_flags offset within a section header entry
)

func (im *Image) readHeaderLayout() error {
	switch im.class {
	case elf.ELFCLASS32:
		if len(im.raw) < shentsize32+2 {
			return fmt.Errorf("truncated ELF header")
		}
		im.shoff = uint64(im.order.Uint32(im.raw[shoff32:]))
		im.shentsize = uint64(im.order.Uint16(im.raw[shentsize32:]))
	case elf.ELFCLASS64:
		if len(im.raw) < shentsize64+2 {
			return fmt.Errorf("truncated ELF header")
		}
		im.shoff = im.order.Uint64(im.raw[shoff64:])
		im.shentsize = uint64(im.order.Uint16(im.raw[shentsize64:]))
	default:
		return fmt.Errorf("unknown ELF class %v", im.class)
	}
	return nil
}

func (im *Image) writeRegionFlags(r *Region) error {
	off := im.shoff + uint64(r.index)*im.shentsize + flagsOff
	switch im.class {
	case elf.ELFCLASS32:
		if off+4 > uint64(len(im.raw)) {
			return fmt.Errorf("section header table lies outside the file")
		}
		im.order.PutUint32(im.raw[off:], uint32(r.Flags))
	case elf.ELFCLASS64:
		if off+8 > uint64(len(im.raw)) {
			return fmt.Errorf("section header table lies outside the file")
		}
		im.order.PutUint64(im.raw[off:], uint64(r.Flags))
	}
	return nil
}
