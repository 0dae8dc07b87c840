package objfile

import (
	"bytes"
	"debug/elf"
	"debug/macho"
	"debug/pe"
	"testing"

	"github.com/packed-dev/packed"
	"github.com/packed-dev/packed/cmd/packed/cli/target"
)

const testSymbol = "packed_0123456789abcdef"

func elfTarget(arch target.Arch, order target.ByteOrder) target.Target {
	return target.Target{Format: target.ELF, Arch: arch, Order: order}
}

// The end-to-end scenario: "hello\n" compressed at the default preparation
// level must survive the trip through a synthesized artifact.
func TestBuildELF_HelloRoundTrip(t *testing.T) {
	t.Parallel()

	content := []byte("hello\n")
	blob, err := packed.Compress(content, 6)
	if err != nil {
		t.Fatal(err)
	}

	obj, err := Build(elfTarget(target.X86_64, target.Little), testSymbol, blob)
	if err != nil {
		t.Fatalf("Build: %v", err)
	}

	f, err := elf.NewFile(bytes.NewReader(obj))
	if err != nil {
		t.Fatalf("parse synthesized ELF: %v", err)
	}
	defer f.Close()

	if f.Type != elf.ET_REL {
		t.Errorf("type = %v, want ET_REL", f.Type)
	}
	if f.Machine != elf.EM_X86_64 {
		t.Errorf("machine = %v, want EM_X86_64", f.Machine)
	}

	sect := f.Section(".rodata." + testSymbol)
	if sect == nil {
		t.Fatal("missing read-only data section")
	}
	data, err := sect.Data()
	if err != nil {
		t.Fatal(err)
	}
	if !bytes.Equal(data, blob) {
		t.Fatal("section data does not match compressed blob")
	}
	if got := packed.Decompress(data); !bytes.Equal(got, content) {
		t.Errorf("decompressed section = %q, want %q", got, content)
	}

	syms, err := f.Symbols()
	if err != nil {
		t.Fatalf("read symbols: %v", err)
	}
	if len(syms) != 1 {
		t.Fatalf("got %d symbols, want 1", len(syms))
	}
	sym := syms[0]
	if sym.Name != testSymbol {
		t.Errorf("symbol name = %q, want %q", sym.Name, testSymbol)
	}
	if sym.Value != 0 {
		t.Errorf("symbol value = %d, want 0", sym.Value)
	}
	if sym.Size != uint64(len(blob)) {
		t.Errorf("symbol size = %d, want %d", sym.Size, len(blob))
	}
	if elf.ST_BIND(sym.Info) != elf.STB_GLOBAL {
		t.Errorf("symbol binding = %v, want STB_GLOBAL", elf.ST_BIND(sym.Info))
	}
	if elf.ST_TYPE(sym.Info) != elf.STT_OBJECT {
		t.Errorf("symbol type = %v, want STT_OBJECT", elf.ST_TYPE(sym.Info))
	}
	if sym.Section != elf.SectionIndex(1) {
		t.Errorf("symbol section = %v, want 1", sym.Section)
	}
}

func TestBuildELF_BigEndian32(t *testing.T) {
	t.Parallel()

	blob := []byte{1, 2, 3, 4, 5}
	obj, err := Build(elfTarget(target.MIPS, target.Big), testSymbol, blob)
	if err != nil {
		t.Fatalf("Build: %v", err)
	}

	f, err := elf.NewFile(bytes.NewReader(obj))
	if err != nil {
		t.Fatalf("parse synthesized ELF: %v", err)
	}
	defer f.Close()

	if f.Class != elf.ELFCLASS32 {
		t.Errorf("class = %v, want ELFCLASS32", f.Class)
	}
	if f.Data != elf.ELFDATA2MSB {
		t.Errorf("data encoding = %v, want ELFDATA2MSB", f.Data)
	}
	if f.Machine != elf.EM_MIPS {
		t.Errorf("machine = %v, want EM_MIPS", f.Machine)
	}

	syms, err := f.Symbols()
	if err != nil {
		t.Fatal(err)
	}
	if len(syms) != 1 || syms[0].Name != testSymbol || syms[0].Size != uint64(len(blob)) {
		t.Errorf("unexpected symbols: %+v", syms)
	}

	data, err := f.Section(".rodata." + testSymbol).Data()
	if err != nil {
		t.Fatal(err)
	}
	if !bytes.Equal(data, blob) {
		t.Error("section data does not match blob")
	}
}

func TestBuildELF_AllArchitectures(t *testing.T) {
	t.Parallel()

	machines := map[target.Arch]elf.Machine{
		target.X86:       elf.EM_386,
		target.X86_64:    elf.EM_X86_64,
		target.ARM:       elf.EM_ARM,
		target.AArch64:   elf.EM_AARCH64,
		target.RiscV32:   elf.EM_RISCV,
		target.RiscV64:   elf.EM_RISCV,
		target.MIPS:      elf.EM_MIPS,
		target.MIPS64:    elf.EM_MIPS,
		target.PowerPC:   elf.EM_PPC,
		target.PowerPC64: elf.EM_PPC64,
	}
	for arch, want := range machines {
		obj, err := Build(elfTarget(arch, target.Little), testSymbol, []byte{0xaa})
		if err != nil {
			t.Errorf("Build for %v: %v", arch, err)
			continue
		}
		f, err := elf.NewFile(bytes.NewReader(obj))
		if err != nil {
			t.Errorf("parse ELF for %v: %v", arch, err)
			continue
		}
		if f.Machine != want {
			t.Errorf("machine for %v = %v, want %v", arch, f.Machine, want)
		}
		f.Close()
	}
}

func TestBuildMachO(t *testing.T) {
	t.Parallel()

	blob := []byte("compressed bytes go here")
	for _, arch := range []target.Arch{target.X86_64, target.AArch64} {
		obj, err := Build(target.Target{Format: target.MachO, Arch: arch, Order: target.Little}, testSymbol, blob)
		if err != nil {
			t.Fatalf("Build for %v: %v", arch, err)
		}

		f, err := macho.NewFile(bytes.NewReader(obj))
		if err != nil {
			t.Fatalf("parse synthesized Mach-O for %v: %v", arch, err)
		}

		sect := f.Section("__const")
		if sect == nil {
			t.Fatal("missing __const section")
		}
		if sect.Seg != "__TEXT" {
			t.Errorf("section segment = %q, want __TEXT", sect.Seg)
		}
		data, err := sect.Data()
		if err != nil {
			t.Fatal(err)
		}
		if !bytes.Equal(data, blob) {
			t.Error("section data does not match blob")
		}

		if f.Symtab == nil || len(f.Symtab.Syms) != 1 {
			t.Fatal("expected exactly one symbol")
		}
		sym := f.Symtab.Syms[0]
		if sym.Name != "_"+testSymbol {
			t.Errorf("symbol name = %q, want %q", sym.Name, "_"+testSymbol)
		}
		if sym.Value != 0 {
			t.Errorf("symbol value = %d, want 0", sym.Value)
		}
		if sym.Sect != 1 {
			t.Errorf("symbol section = %d, want 1", sym.Sect)
		}
		f.Close()
	}
}

func TestBuildMachO_UnsupportedArch(t *testing.T) {
	t.Parallel()

	_, err := Build(target.Target{Format: target.MachO, Arch: target.MIPS, Order: target.Little}, testSymbol, []byte{1})
	if err == nil {
		t.Error("Mach-O for MIPS should fail, not guess")
	}
}

func TestBuildCOFF(t *testing.T) {
	t.Parallel()

	blob := []byte{9, 8, 7, 6}
	obj, err := Build(target.Target{Format: target.COFF, Arch: target.X86_64, Order: target.Little}, testSymbol, blob)
	if err != nil {
		t.Fatalf("Build: %v", err)
	}

	f, err := pe.NewFile(bytes.NewReader(obj))
	if err != nil {
		t.Fatalf("parse synthesized COFF: %v", err)
	}
	defer f.Close()

	if f.Machine != pe.IMAGE_FILE_MACHINE_AMD64 {
		t.Errorf("machine = %#x, want AMD64", f.Machine)
	}

	sect := f.Section(".rdata")
	if sect == nil {
		t.Fatal("missing .rdata section")
	}
	data, err := sect.Data()
	if err != nil {
		t.Fatal(err)
	}
	if !bytes.Equal(data, blob) {
		t.Error("section data does not match blob")
	}

	if len(f.Symbols) != 1 {
		t.Fatalf("got %d symbols, want 1", len(f.Symbols))
	}
	sym := f.Symbols[0]
	if sym.Name != testSymbol {
		t.Errorf("symbol name = %q, want %q", sym.Name, testSymbol)
	}
	if sym.Value != 0 || sym.SectionNumber != 1 {
		t.Errorf("symbol location = (%d, section %d), want (0, 1)", sym.Value, sym.SectionNumber)
	}
}

func TestBuildCOFF_X86Decoration(t *testing.T) {
	t.Parallel()

	obj, err := Build(target.Target{Format: target.COFF, Arch: target.X86, Order: target.Little}, testSymbol, []byte{1})
	if err != nil {
		t.Fatal(err)
	}
	f, err := pe.NewFile(bytes.NewReader(obj))
	if err != nil {
		t.Fatal(err)
	}
	defer f.Close()

	if f.Symbols[0].Name != "_"+testSymbol {
		t.Errorf("32-bit x86 symbol = %q, want leading underscore", f.Symbols[0].Name)
	}
}

func TestBuildCOFF_UnsupportedArch(t *testing.T) {
	t.Parallel()

	_, err := Build(target.Target{Format: target.COFF, Arch: target.PowerPC, Order: target.Little}, testSymbol, []byte{1})
	if err == nil {
		t.Error("COFF for PowerPC should fail, not guess")
	}
}

func TestBuild_Deterministic(t *testing.T) {
	t.Parallel()

	blob := bytes.Repeat([]byte{0x5a}, 300)
	for _, tgt := range []target.Target{
		elfTarget(target.X86_64, target.Little),
		{Format: target.MachO, Arch: target.AArch64, Order: target.Little},
		{Format: target.COFF, Arch: target.X86_64, Order: target.Little},
	} {
		first, err := Build(tgt, testSymbol, blob)
		if err != nil {
			t.Fatalf("Build for %v: %v", tgt.Format, err)
		}
		second, err := Build(tgt, testSymbol, blob)
		if err != nil {
			t.Fatal(err)
		}
		if !bytes.Equal(first, second) {
			t.Errorf("%v output not deterministic", tgt.Format)
		}
	}
}
