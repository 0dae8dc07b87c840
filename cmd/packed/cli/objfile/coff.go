package objfile

import (
	"fmt"

	"github.com/packed-dev/packed/cmd/packed/cli/target"
)

const (
	coffFileHeaderSize    = 20
	coffSectionHeaderSize = 40
	coffSymbolSize        = 18

	// IMAGE_SCN_CNT_INITIALIZED_DATA | IMAGE_SCN_MEM_READ |
	// IMAGE_SCN_ALIGN_1BYTES
	coffRdataCharacteristics = 0x40 | 0x40000000 | 0x00100000

	coffClassExternal = 2 // IMAGE_SYM_CLASS_EXTERNAL
)

var coffMachines = map[target.Arch]uint16{
	target.X86:     0x014c, // IMAGE_FILE_MACHINE_I386
	target.X86_64:  0x8664, // IMAGE_FILE_MACHINE_AMD64
	target.ARM:     0x01c4, // IMAGE_FILE_MACHINE_ARMNT
	target.AArch64: 0xaa64, // IMAGE_FILE_MACHINE_ARM64
}

// buildCOFF emits a COFF object with the data in .rdata and one external
// symbol. The derived symbol names never fit COFF's 8-byte inline name
// field, so both the symbol and nothing else live in the string table.
func buildCOFF(t target.Target, symbol string, data []byte) ([]byte, error) {
	machine, ok := coffMachines[t.Arch]
	if !ok {
		return nil, fmt.Errorf("objfile: coff output has no machine type for %v", t.Arch)
	}

	symbol = decorate(t, symbol)

	dataOff := coffFileHeaderSize + coffSectionHeaderSize
	symOff := dataOff + len(data)

	// COFF is little-endian regardless of target byte order.
	w := newWriter(target.Little)

	// File header.
	w.u16(machine)
	w.u16(1) // NumberOfSections
	w.u32(0) // TimeDateStamp: zero for reproducible output
	w.u32(uint32(symOff))
	w.u32(1) // NumberOfSymbols
	w.u16(0) // SizeOfOptionalHeader
	w.u16(0) // Characteristics

	// Section header.
	w.name(".rdata", 8)
	w.u32(0) // VirtualSize
	w.u32(0) // VirtualAddress
	w.u32(uint32(len(data)))
	w.u32(uint32(dataOff))
	w.u32(0) // PointerToRelocations
	w.u32(0) // PointerToLinenumbers
	w.u16(0) // NumberOfRelocations
	w.u16(0) // NumberOfLinenumbers
	w.u32(coffRdataCharacteristics)

	w.raw(data)

	// Symbol table: one record, name via string table (offsets there count
	// from the start of its length field, so the first name sits at 4).
	w.u32(0) // zero marks "long name follows as offset"
	w.u32(4)
	w.u32(0) // Value: offset 0 in the section
	w.u16(1) // SectionNumber (1-based)
	w.u16(0) // Type: not a function
	w.u8(coffClassExternal)
	w.u8(0) // NumberOfAuxSymbols

	// String table.
	w.u32(uint32(4 + len(symbol) + 1))
	w.raw([]byte(symbol))
	w.u8(0)

	return w.buf, nil
}
