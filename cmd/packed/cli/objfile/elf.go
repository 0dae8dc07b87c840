package objfile

import (
	"github.com/packed-dev/packed/cmd/packed/cli/target"
)

// ELF constants, from the System V ABI. Only what a data-only relocatable
// object needs.
const (
	elfTypeRel = 1 // ET_REL

	elfSectProgbits = 1 // SHT_PROGBITS
	elfSectSymtab   = 2 // SHT_SYMTAB
	elfSectStrtab   = 3 // SHT_STRTAB

	elfFlagAlloc = 0x2 // SHF_ALLOC

	// st_info = (STB_GLOBAL << 4) | STT_OBJECT
	elfSymGlobalObject = 0x11
)

var elfMachines = map[target.Arch]uint16{
	target.X86:       3,   // EM_386
	target.X86_64:    62,  // EM_X86_64
	target.ARM:       40,  // EM_ARM
	target.AArch64:   183, // EM_AARCH64
	target.RiscV32:   243, // EM_RISCV
	target.RiscV64:   243, // EM_RISCV
	target.MIPS:      8,   // EM_MIPS
	target.MIPS64:    8,   // EM_MIPS
	target.PowerPC:   20,  // EM_PPC
	target.PowerPC64: 21,  // EM_PPC64
}

// strtab builds an ELF string table: a leading NUL, then NUL-terminated
// entries addressed by byte offset.
type strtab struct {
	buf []byte
}

func newStrtab() *strtab {
	return &strtab{buf: []byte{0}}
}

func (s *strtab) add(name string) uint32 {
	off := uint32(len(s.buf))
	s.buf = append(s.buf, name...)
	s.buf = append(s.buf, 0)
	return off
}

// buildELF emits a relocatable ELF object with five sections: the null
// section, .rodata.<symbol> holding the data, .symtab with the one exported
// symbol, and the two string tables. Both classes and both byte orders are
// supported; the class follows the architecture's pointer width.
func buildELF(t target.Target, symbol string, data []byte) ([]byte, error) {
	machine := elfMachines[t.Arch]
	is64 := t.Arch.Is64Bit()

	ehSize, shentSize, symentSize, wordAlign := 52, 40, 16, 4
	if is64 {
		ehSize, shentSize, symentSize, wordAlign = 64, 64, 24, 8
	}

	symbol = decorate(t, symbol)
	sectName := ".rodata." + symbol

	syms := newStrtab()
	symNameOff := syms.add(symbol)

	shstr := newStrtab()
	rodataNameOff := shstr.add(sectName)
	symtabNameOff := shstr.add(".symtab")
	strtabNameOff := shstr.add(".strtab")
	shstrNameOff := shstr.add(".shstrtab")

	// Layout: header, section data in section-index order, then the section
	// header table.
	dataOff := ehSize
	symOff := align(dataOff+len(data), wordAlign)
	symSize := 2 * symentSize // null symbol + exported symbol
	strOff := symOff + symSize
	shstrOff := strOff + len(syms.buf)
	shOff := align(shstrOff+len(shstr.buf), wordAlign)

	w := newWriter(t.Order)

	// ELF identification.
	w.raw([]byte{0x7f, 'E', 'L', 'F'})
	if is64 {
		w.u8(2) // ELFCLASS64
	} else {
		w.u8(1) // ELFCLASS32
	}
	if t.Order == target.Big {
		w.u8(2) // ELFDATA2MSB
	} else {
		w.u8(1) // ELFDATA2LSB
	}
	w.u8(1) // EV_CURRENT
	w.u8(0) // ELFOSABI_NONE
	w.u8(0) // ABI version
	w.zeros(7)

	w.u16(elfTypeRel)
	w.u16(machine)
	w.u32(1) // e_version
	if is64 {
		w.u64(0) // e_entry
		w.u64(0) // e_phoff
		w.u64(uint64(shOff))
	} else {
		w.u32(0)
		w.u32(0)
		w.u32(uint32(shOff))
	}
	w.u32(0) // e_flags
	w.u16(uint16(ehSize))
	w.u16(0) // e_phentsize
	w.u16(0) // e_phnum
	w.u16(uint16(shentSize))
	w.u16(5) // e_shnum
	w.u16(4) // e_shstrndx

	// Section data.
	w.padTo(dataOff)
	w.raw(data)
	w.padTo(symOff)

	// Symbol 0 is the mandatory null entry.
	w.zeros(symentSize)
	if is64 {
		w.u32(symNameOff)
		w.u8(elfSymGlobalObject)
		w.u8(0)  // st_other: STV_DEFAULT
		w.u16(1) // st_shndx: the data section
		w.u64(0) // st_value: offset 0
		w.u64(uint64(len(data)))
	} else {
		w.u32(symNameOff)
		w.u32(0) // st_value
		w.u32(uint32(len(data)))
		w.u8(elfSymGlobalObject)
		w.u8(0)
		w.u16(1)
	}

	w.raw(syms.buf)
	w.raw(shstr.buf)
	w.padTo(shOff)

	shdr := func(name uint32, typ uint32, flags, off, size uint64, link, info uint32, addralign, entsize uint64) {
		w.u32(name)
		w.u32(typ)
		if is64 {
			w.u64(flags)
			w.u64(0) // sh_addr
			w.u64(off)
			w.u64(size)
			w.u32(link)
			w.u32(info)
			w.u64(addralign)
			w.u64(entsize)
		} else {
			w.u32(uint32(flags))
			w.u32(0)
			w.u32(uint32(off))
			w.u32(uint32(size))
			w.u32(link)
			w.u32(info)
			w.u32(uint32(addralign))
			w.u32(uint32(entsize))
		}
	}

	shdr(0, 0, 0, 0, 0, 0, 0, 0, 0)
	shdr(rodataNameOff, elfSectProgbits, elfFlagAlloc, uint64(dataOff), uint64(len(data)), 0, 0, 1, 0)
	// sh_link points at .strtab; sh_info is the index of the first
	// non-local symbol.
	shdr(symtabNameOff, elfSectSymtab, 0, uint64(symOff), uint64(symSize), 3, 1, uint64(wordAlign), uint64(symentSize))
	shdr(strtabNameOff, elfSectStrtab, 0, uint64(strOff), uint64(len(syms.buf)), 0, 0, 1, 0)
	shdr(shstrNameOff, elfSectStrtab, 0, uint64(shstrOff), uint64(len(shstr.buf)), 0, 0, 1, 0)

	return w.buf, nil
}
