// Package loader reads an ELF64 executable and lays its loadable
// segments out in one flat byte image that the caller copies into a
// machine's instruction and data memories, a concern spec.md's core
// explicitly leaves out of scope.
package loader

import (
	"debug/elf"
	"fmt"
)

// Image is the result of loading an ELF file: the entry PC, the
// initial stack pointer, and the flat memory bytes to back both
// instruction and data access.
type Image struct {
	EntryPC  uint64
	StackTop uint64
	Base     uint64
	Bytes    []byte
}

// DefaultStackSize is always appended past the highest loaded segment
// (any stack segment the ELF describes is not consulted), giving
// programs room to push without the loader having to guess a fixed
// layout.
const DefaultStackSize = 1 << 20

// Load reads an ELF64 AArch64 executable from path's already-open
// file handle and lays out its PT_LOAD segments into a single flat
// byte image starting at the lowest segment's virtual address.
func Load(f *elf.File) (*Image, error) {
	if f.Class != elf.ELFCLASS64 {
		return nil, fmt.Errorf("a64pipe/loader: not a 64-bit ELF")
	}
	if f.Machine != elf.EM_AARCH64 {
		return nil, fmt.Errorf("a64pipe/loader: not an AArch64 ELF (machine=%v)", f.Machine)
	}

	var lo, hi uint64
	first := true
	for _, prog := range f.Progs {
		if prog.Type != elf.PT_LOAD {
			continue
		}
		start := prog.Vaddr
		end := prog.Vaddr + prog.Memsz
		if first || start < lo {
			lo = start
		}
		if first || end > hi {
			hi = end
		}
		first = false
	}
	if first {
		return nil, fmt.Errorf("a64pipe/loader: no PT_LOAD segments")
	}

	size := hi - lo + DefaultStackSize
	img := &Image{Base: lo, Bytes: make([]byte, size), EntryPC: f.Entry}

	for _, prog := range f.Progs {
		if prog.Type != elf.PT_LOAD {
			continue
		}
		data := make([]byte, prog.Filesz)
		if _, err := prog.ReadAt(data, 0); err != nil {
			return nil, fmt.Errorf("a64pipe/loader: reading segment at 0x%x: %w", prog.Vaddr, err)
		}
		off := prog.Vaddr - lo
		copy(img.Bytes[off:], data)
	}

	img.StackTop = lo + uint64(len(img.Bytes))
	img.StackTop &^= 0xF // 16-byte align, per the AArch64 procedure call standard

	return img, nil
}
