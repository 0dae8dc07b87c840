package objfile

import (
	"fmt"

	"github.com/packed-dev/packed/cmd/packed/cli/target"
)

const (
	machoMagic64    = 0xfeedfacf
	machoTypeObject = 1 // MH_OBJECT

	machoCPUX86_64 = 0x01000007
	machoCPUARM64  = 0x0100000c

	machoCmdSegment64 = 0x19
	machoCmdSymtab    = 0x2

	machoHeaderSize    = 32
	machoSegment64Size = 72
	machoSection64Size = 80
	machoSymtabCmdSize = 24
	machoNlist64Size   = 16

	// n_type = N_SECT | N_EXT: defined in a section, externally visible.
	machoSymSectExt = 0x0f
)

// buildMachO emits a 64-bit Mach-O object with the data in __TEXT,__const
// and a single external symbol. Darwin stopped shipping 32-bit toolchains,
// so only the two architectures macOS and iOS actually link for are
// supported; anything else is an encoding error rather than a guess.
func buildMachO(t target.Target, symbol string, data []byte) ([]byte, error) {
	var cputype, cpusubtype uint32
	switch t.Arch {
	case target.X86_64:
		cputype, cpusubtype = machoCPUX86_64, 3 // CPU_SUBTYPE_X86_64_ALL
	case target.AArch64:
		cputype, cpusubtype = machoCPUARM64, 0 // CPU_SUBTYPE_ARM64_ALL
	default:
		return nil, fmt.Errorf("objfile: mach-o output supports x86_64 and aarch64, not %v", t.Arch)
	}

	symbol = decorate(t, symbol)

	sizeofcmds := machoSegment64Size + machoSection64Size + machoSymtabCmdSize
	dataOff := machoHeaderSize + sizeofcmds
	symOff := align(dataOff+len(data), 8)
	strOff := symOff + machoNlist64Size

	strs := newStrtab()
	symNameOff := strs.add(symbol)

	w := newWriter(t.Order)

	// mach_header_64.
	w.u32(machoMagic64)
	w.u32(cputype)
	w.u32(cpusubtype)
	w.u32(machoTypeObject)
	w.u32(2) // ncmds
	w.u32(uint32(sizeofcmds))
	w.u32(0) // flags
	w.u32(0) // reserved

	// LC_SEGMENT_64 with one section. Object files use a single unnamed
	// segment; section addresses start at zero.
	w.u32(machoCmdSegment64)
	w.u32(machoSegment64Size + machoSection64Size)
	w.name("", 16) // segname
	w.u64(0)       // vmaddr
	w.u64(uint64(len(data)))
	w.u64(uint64(dataOff))
	w.u64(uint64(len(data)))
	w.u32(7) // maxprot: rwx
	w.u32(7) // initprot
	w.u32(1) // nsects
	w.u32(0) // flags

	// section_64.
	w.name("__const", 16)
	w.name("__TEXT", 16)
	w.u64(0) // addr
	w.u64(uint64(len(data)))
	w.u32(uint32(dataOff))
	w.u32(0) // align: 2^0
	w.u32(0) // reloff
	w.u32(0) // nreloc
	w.u32(0) // flags: S_REGULAR
	w.u32(0) // reserved1
	w.u32(0) // reserved2
	w.u32(0) // reserved3

	// LC_SYMTAB.
	w.u32(machoCmdSymtab)
	w.u32(machoSymtabCmdSize)
	w.u32(uint32(symOff))
	w.u32(1) // nsyms
	w.u32(uint32(strOff))
	w.u32(uint32(len(strs.buf)))

	w.padTo(dataOff)
	w.raw(data)
	w.padTo(symOff)

	// nlist_64.
	w.u32(symNameOff)
	w.u8(machoSymSectExt)
	w.u8(1) // n_sect: first (only) section
	w.u16(0)
	w.u64(0) // n_value: section address + offset 0

	w.raw(strs.buf)

	return w.buf, nil
}
