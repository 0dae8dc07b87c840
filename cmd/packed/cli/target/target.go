// Package target resolves raw platform names into the object-file format,
// architecture and byte order the synthesizer needs.
package target

import "fmt"

// Format is a native object-file format.
type Format int

const (
	ELF Format = iota
	MachO
	COFF
)

func (f Format) String() string {
	switch f {
	case ELF:
		return "elf"
	case MachO:
		return "mach-o"
	case COFF:
		return "coff"
	default:
		return fmt.Sprintf("format(%d)", int(f))
	}
}

// Arch is a target processor architecture.
type Arch int

const (
	X86 Arch = iota
	X86_64
	ARM
	AArch64
	RiscV32
	RiscV64
	MIPS
	MIPS64
	PowerPC
	PowerPC64
)

var archNames = map[Arch]string{
	X86:       "x86",
	X86_64:    "x86_64",
	ARM:       "arm",
	AArch64:   "aarch64",
	RiscV32:   "riscv32",
	RiscV64:   "riscv64",
	MIPS:      "mips",
	MIPS64:    "mips64",
	PowerPC:   "powerpc",
	PowerPC64: "powerpc64",
}

func (a Arch) String() string {
	if name, ok := archNames[a]; ok {
		return name
	}
	return fmt.Sprintf("arch(%d)", int(a))
}

// Is64Bit reports whether the architecture has 64-bit pointers, which
// selects the object-file class.
func (a Arch) Is64Bit() bool {
	switch a {
	case X86_64, AArch64, RiscV64, MIPS64, PowerPC64:
		return true
	default:
		return false
	}
}

// ByteOrder is the target's byte order.
type ByteOrder int

const (
	Little ByteOrder = iota
	Big
)

func (o ByteOrder) String() string {
	if o == Big {
		return "big"
	}
	return "little"
}

// Target describes everything object synthesis needs to know about the
// platform being built for.
type Target struct {
	Format Format
	Arch   Arch
	Order  ByteOrder
}

// Resolve maps raw OS, architecture and endianness names onto a Target.
// All three lists are closed: guessing a format for an unknown platform
// would produce an artifact the linker silently corrupts or rejects, so any
// value outside them is an error naming the signal and the value.
func Resolve(osName, archName, endian string) (Target, error) {
	var t Target

	switch osName {
	case "darwin", "ios":
		t.Format = MachO
	case "windows":
		t.Format = COFF
	case "linux", "android", "freebsd", "netbsd", "openbsd", "dragonfly", "solaris", "illumos":
		t.Format = ELF
	default:
		return Target{}, fmt.Errorf("target: unsupported operating system %q (GOOS)", osName)
	}

	switch archName {
	case "x86":
		t.Arch = X86
	case "x86_64":
		t.Arch = X86_64
	case "arm":
		t.Arch = ARM
	case "aarch64":
		t.Arch = AArch64
	case "riscv32":
		t.Arch = RiscV32
	case "riscv64":
		t.Arch = RiscV64
	case "mips":
		t.Arch = MIPS
	case "mips64":
		t.Arch = MIPS64
	case "powerpc":
		t.Arch = PowerPC
	case "powerpc64":
		t.Arch = PowerPC64
	default:
		return Target{}, fmt.Errorf("target: unsupported architecture %q (GOARCH)", archName)
	}

	switch endian {
	case "little":
		t.Order = Little
	case "big":
		t.Order = Big
	default:
		return Target{}, fmt.Errorf("target: unsupported endianness %q", endian)
	}

	return t, nil
}

// goarchNames translates Go's GOARCH values, which fold endianness into the
// name, onto the resolver's (architecture, endianness) vocabulary.
var goarchNames = map[string]struct{ arch, endian string }{
	"386":      {"x86", "little"},
	"amd64":    {"x86_64", "little"},
	"arm":      {"arm", "little"},
	"arm64":    {"aarch64", "little"},
	"riscv64":  {"riscv64", "little"},
	"mips":     {"mips", "big"},
	"mipsle":   {"mips", "little"},
	"mips64":   {"mips64", "big"},
	"mips64le": {"mips64", "little"},
	"ppc64":    {"powerpc64", "big"},
	"ppc64le":  {"powerpc64", "little"},
}

// FromBuildEnv resolves the ambient Go build target. goos and goarch are the
// GOOS/GOARCH values in effect for the build (environment overrides or host
// defaults). GOARCH values with no native-linking story (wasm) are rejected
// here; callers select the inline fallback before asking for a Target.
func FromBuildEnv(goos, goarch string) (Target, error) {
	names, ok := goarchNames[goarch]
	if !ok {
		return Target{}, fmt.Errorf("target: unsupported architecture %q (GOARCH)", goarch)
	}
	return Resolve(goos, names.arch, names.endian)
}
