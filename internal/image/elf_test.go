// Copyright 2025 The Tocktool Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package image

import (
	"bytes"
	"debug/elf"
	"encoding/binary"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"
)

// Fixed-layout ELF32 structures used to synthesize test images.
type elf32Ehdr struct {
	Ident     [16]byte
	Type      uint16
	Machine   uint16
	Version   uint32
	Entry     uint32
	Phoff     uint32
	Shoff     uint32
	Flags     uint32
	Ehsize    uint16
	Phentsize uint16
	Phnum     uint16
	Shentsize uint16
	Shnum     uint16
	Shstrndx  uint16
}

type elf32Phdr struct {
	Type   uint32
	Off    uint32
	Vaddr  uint32
	Paddr  uint32
	Filesz uint32
	Memsz  uint32
	Flags  uint32
	Align  uint32
}

type elf32Shdr struct {
	Name      uint32
	Type      uint32
	Flags     uint32
	Addr      uint32
	Off       uint32
	Size      uint32
	Link      uint32
	Info      uint32
	Addralign uint32
	Entsize   uint32
}

type testSection struct {
	name  string
	addr  uint32
	data  []byte
	size  uint32 // declared length; 0 means len(data)
	flags elf.SectionFlag
}

const (
	ehsize32 = 52
	phsize32 = 32
	shsize32 = 40
)

// buildELF synthesizes a little-endian ELF32 executable with the given
// PROGBITS sections. Section data is zero-padded in the file to the
// declared size. With phdr set, a single PT_LOAD segment covers all the
// sections, so they must be contiguous in memory in file order.
func buildELF(t *testing.T, secs []testSection, phdr bool) []byte {
	t.Helper()

	strtab := []byte{0}
	nameOff := make([]uint32, len(secs))
	for i, s := range secs {
		nameOff[i] = uint32(len(strtab))
		strtab = append(strtab, s.name...)
		strtab = append(strtab, 0)
	}
	shstrOff := uint32(len(strtab))
	strtab = append(strtab, ".shstrtab"...)
	strtab = append(strtab, 0)

	cur := uint32(ehsize32)
	if phdr {
		cur += phsize32
	}
	off := make([]uint32, len(secs))
	size := make([]uint32, len(secs))
	for i, s := range secs {
		size[i] = s.size
		if size[i] == 0 {
			size[i] = uint32(len(s.data))
		}
		require.LessOrEqual(t, uint32(len(s.data)), size[i])
		cur = (cur + 3) &^ 3
		off[i] = cur
		cur += size[i]
	}
	strtabOff := cur
	cur += uint32(len(strtab))
	shoff := (cur + 3) &^ 3

	shnum := uint16(len(secs) + 2) // null + secs + .shstrtab
	eh := elf32Ehdr{
		Type:      uint16(elf.ET_EXEC),
		Machine:   uint16(elf.EM_ARM),
		Version:   1,
		Shoff:     shoff,
		Ehsize:    ehsize32,
		Shentsize: shsize32,
		Shnum:     shnum,
		Shstrndx:  shnum - 1,
	}
	copy(eh.Ident[:], elf.ELFMAG)
	eh.Ident[elf.EI_CLASS] = byte(elf.ELFCLASS32)
	eh.Ident[elf.EI_DATA] = byte(elf.ELFDATA2LSB)
	eh.Ident[elf.EI_VERSION] = byte(elf.EV_CURRENT)
	if phdr {
		eh.Phoff = ehsize32
		eh.Phentsize = phsize32
		eh.Phnum = 1
	}

	var buf bytes.Buffer
	le := binary.LittleEndian
	require.NoError(t, binary.Write(&buf, le, &eh))
	if phdr {
		last := len(secs) - 1
		ph := elf32Phdr{
			Type:   uint32(elf.PT_LOAD),
			Off:    off[0],
			Vaddr:  secs[0].addr,
			Paddr:  secs[0].addr,
			Filesz: off[last] + size[last] - off[0],
			Memsz:  off[last] + size[last] - off[0],
			Flags:  uint32(elf.PF_R | elf.PF_W | elf.PF_X),
			Align:  4,
		}
		require.NoError(t, binary.Write(&buf, le, &ph))
	}
	for i, s := range secs {
		buf.Write(make([]byte, int(off[i])-buf.Len()))
		buf.Write(s.data)
		buf.Write(make([]byte, int(size[i])-len(s.data)))
	}
	buf.Write(strtab)
	buf.Write(make([]byte, int(shoff)-buf.Len()))
	require.NoError(t, binary.Write(&buf, le, &elf32Shdr{})) // null section
	for i, s := range secs {
		sh := elf32Shdr{
			Name:      nameOff[i],
			Type:      uint32(elf.SHT_PROGBITS),
			Flags:     uint32(s.flags),
			Addr:      s.addr,
			Off:       off[i],
			Size:      size[i],
			Addralign: 4,
		}
		require.NoError(t, binary.Write(&buf, le, &sh))
	}
	sh := elf32Shdr{
		Name:      shstrOff,
		Type:      uint32(elf.SHT_STRTAB),
		Off:       strtabOff,
		Size:      uint32(len(strtab)),
		Addralign: 1,
	}
	require.NoError(t, binary.Write(&buf, le, &sh))

	// The synthesized file must be parseable before any test uses it.
	_, err := elf.NewFile(bytes.NewReader(buf.Bytes()))
	require.NoError(t, err)
	return buf.Bytes()
}

func writeELF(t *testing.T, dir, name string, secs []testSection, phdr bool) string {
	t.Helper()
	path := filepath.Join(dir, name)
	require.NoError(t, os.WriteFile(path, buildELF(t, secs, phdr), 0644))
	return path
}

// kernelSections is the layout of the end-to-end scenario: 12 KiB of code
// followed by a 4 KiB apps region, 16 KiB of loadable content in total.
func kernelSections(appsFlags elf.SectionFlag) []testSection {
	text := make([]byte, 12*1024)
	for i := range text {
		text[i] = byte(i % 247)
	}
	return []testSection{
		{name: ".text", addr: 0, data: text, flags: elf.SHF_ALLOC | elf.SHF_EXECINSTR},
		{name: ".apps", addr: 12 * 1024, data: nil, size: 4 * 1024, flags: appsFlags},
	}
}

func appBytes(n int) []byte {
	app := make([]byte, n)
	for i := range app {
		app[i] = byte(i%251 + 1)
	}
	return app
}
