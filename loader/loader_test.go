package loader

import (
	"bytes"
	"debug/elf"
	"encoding/binary"
	"testing"
)

// elf64Header and elf64Prog mirror the on-disk ELF64 structures closely
// enough for binary.Write to produce bytes debug/elf.NewFile can parse;
// no test fixture binary exists in the retrieved corpus, so minimal
// valid ELF64/AArch64 images are built by hand here.
type elf64Header struct {
	Ident     [16]byte
	Type      uint16
	Machine   uint16
	Version   uint32
	Entry     uint64
	Phoff     uint64
	Shoff     uint64
	Flags     uint32
	Ehsize    uint16
	Phentsize uint16
	Phnum     uint16
	Shentsize uint16
	Shnum     uint16
	Shstrndx  uint16
}

type elf64Prog struct {
	Type   uint32
	Flags  uint32
	Offset uint64
	Vaddr  uint64
	Paddr  uint64
	Filesz uint64
	Memsz  uint64
	Align  uint64
}

const (
	ehdrSize = 64
	phdrSize = 56
)

func buildMinimalElf(t *testing.T, machine uint16, code []byte, vaddr, entry uint64) []byte {
	t.Helper()
	var buf bytes.Buffer

	hdr := elf64Header{
		Type:      2, // ET_EXEC
		Machine:   machine,
		Version:   1,
		Entry:     entry,
		Phoff:     ehdrSize,
		Ehsize:    ehdrSize,
		Phentsize: phdrSize,
		Phnum:     1,
	}
	hdr.Ident[0] = 0x7f
	hdr.Ident[1] = 'E'
	hdr.Ident[2] = 'L'
	hdr.Ident[3] = 'F'
	hdr.Ident[4] = 2 // ELFCLASS64
	hdr.Ident[5] = 1 // ELFDATA2LSB
	hdr.Ident[6] = 1 // EV_CURRENT

	prog := elf64Prog{
		Type:   1, // PT_LOAD
		Flags:  5, // PF_R | PF_X
		Offset: ehdrSize + phdrSize,
		Vaddr:  vaddr,
		Paddr:  vaddr,
		Filesz: uint64(len(code)),
		Memsz:  uint64(len(code)),
		Align:  0x10000,
	}

	if err := binary.Write(&buf, binary.LittleEndian, hdr); err != nil {
		t.Fatalf("writing ELF header: %v", err)
	}
	if err := binary.Write(&buf, binary.LittleEndian, prog); err != nil {
		t.Fatalf("writing program header: %v", err)
	}
	buf.Write(code)
	return buf.Bytes()
}

func TestLoadPlacesPTLOADSegmentAtItsVaddrOffset(t *testing.T) {
	code := []byte{0xdd, 0xcc, 0xbb, 0xaa, 0x44, 0x33, 0x22, 0x11}
	raw := buildMinimalElf(t, uint16(elf.EM_AARCH64), code, 0x400000, 0x400000)

	f, err := elf.NewFile(bytes.NewReader(raw))
	if err != nil {
		t.Fatalf("elf.NewFile: %v", err)
	}

	img, err := Load(f)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}

	if img.Base != 0x400000 {
		t.Errorf("Base = %#x, want 0x400000", img.Base)
	}
	if img.EntryPC != 0x400000 {
		t.Errorf("EntryPC = %#x, want 0x400000", img.EntryPC)
	}
	if !bytes.Equal(img.Bytes[:len(code)], code) {
		t.Errorf("Bytes[:8] = %x, want %x", img.Bytes[:len(code)], code)
	}
	wantLen := uint64(len(code)) + DefaultStackSize
	if uint64(len(img.Bytes)) != wantLen {
		t.Errorf("len(Bytes) = %d, want %d", len(img.Bytes), wantLen)
	}
	if img.StackTop&0xF != 0 {
		t.Errorf("StackTop = %#x, not 16-byte aligned", img.StackTop)
	}
	if img.StackTop < img.Base+uint64(len(code)) {
		t.Errorf("StackTop = %#x, want it above the loaded segment", img.StackTop)
	}
}

func TestLoadRejectsWrongMachine(t *testing.T) {
	raw := buildMinimalElf(t, uint16(elf.EM_X86_64), []byte{0, 0, 0, 0}, 0x400000, 0x400000)
	f, err := elf.NewFile(bytes.NewReader(raw))
	if err != nil {
		t.Fatalf("elf.NewFile: %v", err)
	}
	if _, err := Load(f); err == nil {
		t.Fatal("expected an error loading a non-AArch64 ELF")
	}
}

func TestLoadRejectsNoLoadSegments(t *testing.T) {
	var buf bytes.Buffer
	hdr := elf64Header{
		Type:      2,
		Machine:   uint16(elf.EM_AARCH64),
		Version:   1,
		Phoff:     ehdrSize,
		Ehsize:    ehdrSize,
		Phentsize: phdrSize,
		Phnum:     0,
	}
	hdr.Ident[0] = 0x7f
	hdr.Ident[1] = 'E'
	hdr.Ident[2] = 'L'
	hdr.Ident[3] = 'F'
	hdr.Ident[4] = 2
	hdr.Ident[5] = 1
	hdr.Ident[6] = 1
	if err := binary.Write(&buf, binary.LittleEndian, hdr); err != nil {
		t.Fatalf("writing ELF header: %v", err)
	}

	f, err := elf.NewFile(bytes.NewReader(buf.Bytes()))
	if err != nil {
		t.Fatalf("elf.NewFile: %v", err)
	}
	if _, err := Load(f); err == nil {
		t.Fatal("expected an error loading an ELF with no PT_LOAD segments")
	}
}
