// Package gensite implements the per-use-site code-generation phase: it
// emits one Go source file per embedded asset, referencing either the linked
// object artifact from preparation or, on targets without native linking,
// the compressed bytes inlined as a literal.
package gensite

import (
	"fmt"
	"go/format"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/packed-dev/packed"
	"github.com/packed-dev/packed/cmd/packed/cli/ident"
)

// RuntimeImport is the canonical import path of the runtime package that
// generated accessors call into.
const RuntimeImport = "github.com/packed-dev/packed"

// Strategy selects how a use-site embeds its asset. The two variants form
// the whole dispatch; there is no per-file fallback from one to the other.
type Strategy int

const (
	// Link references an object artifact produced by preparation through
	// an externally resolved symbol.
	Link Strategy = iota
	// Inline embeds the compressed bytes as a literal array directly at
	// the use-site, for targets without native linking.
	Inline
)

func (s Strategy) String() string {
	if s == Inline {
		return "inline"
	}
	return "link"
}

// SelectStrategy picks the embedding strategy from the ambient build
// architecture signal. Preparation and every gen invocation observe the same
// GOARCH, so all parties agree on the strategy without any explicit handoff.
func SelectStrategy(goarch string) Strategy {
	if goarch == "wasm" {
		return Inline
	}
	return Link
}

// Site describes one use-site: which asset to embed, where the generated
// file will live, and how.
type Site struct {
	AssetPath   string // relative to the project root, slash-separated
	ProjectRoot string
	OutDir      string // artifact directory (Link only)
	GenDir      string // directory the generated file is written into
	Package     string
	FuncName    string
	Runtime     string // runtime import path; empty means RuntimeImport
	Strategy    Strategy
	Level       int // Inline only; 0 means packed.DefaultInlineLevel
}

// CoordinationError reports a use-site that could not read its length
// record. It is scoped to the one asset; other use-sites in the same build
// are unaffected.
type CoordinationError struct {
	AssetPath string
	LenPath   string
	Err       error
}

func (e *CoordinationError) Error() string {
	return fmt.Sprintf("no usable length record for asset %q\nexpected at: %s\nrun 'packed pack' to regenerate build artifacts", e.AssetPath, e.LenPath)
}

func (e *CoordinationError) Unwrap() error {
	return e.Err
}

// Generate emits the gofmt-formatted source of the accessor for s.
func Generate(s Site) ([]byte, error) {
	if s.Runtime == "" {
		s.Runtime = RuntimeImport
	}
	var src []byte
	var err error
	switch s.Strategy {
	case Link:
		src, err = generateLink(s)
	case Inline:
		src, err = generateInline(s)
	default:
		return nil, fmt.Errorf("gensite: unknown strategy %d", int(s.Strategy))
	}
	if err != nil {
		return nil, err
	}
	out, err := format.Source(src)
	if err != nil {
		return nil, fmt.Errorf("gensite: format generated source: %w", err)
	}
	return out, nil
}

// generateLink re-derives the asset's identifier from disk, reads the length
// record preparation left behind, and emits a cgo-backed accessor for the
// linked symbol. The derivation must observe exactly what preparation
// observed; both sides call ident.Symbol on the same relative path and
// mtime.
func generateLink(s Site) ([]byte, error) {
	abs := filepath.Join(s.ProjectRoot, filepath.FromSlash(s.AssetPath))
	info, err := os.Stat(abs)
	if err != nil {
		return nil, fmt.Errorf("could not find asset %q: %w", s.AssetPath, err)
	}
	symbol := ident.Symbol(s.AssetPath, info.ModTime())

	lenPath := filepath.Join(s.OutDir, symbol+".len")
	record, err := os.ReadFile(lenPath)
	if err != nil {
		return nil, &CoordinationError{AssetPath: s.AssetPath, LenPath: lenPath, Err: err}
	}
	size, err := strconv.Atoi(strings.TrimSpace(string(record)))
	if err != nil || size < 0 {
		return nil, &CoordinationError{AssetPath: s.AssetPath, LenPath: lenPath, Err: fmt.Errorf("corrupt length record: %w", err)}
	}

	objRel, err := filepath.Rel(s.GenDir, filepath.Join(s.OutDir, symbol+".o"))
	if err != nil {
		return nil, fmt.Errorf("relativize object path: %w", err)
	}

	var b strings.Builder
	writeHeader(&b, s)
	fmt.Fprintf(&b, "/*\n")
	fmt.Fprintf(&b, "#cgo LDFLAGS: ${SRCDIR}/%s\n", filepath.ToSlash(objRel))
	fmt.Fprintf(&b, "extern const unsigned char %s[%d];\n", symbol, size)
	fmt.Fprintf(&b, "*/\n")
	fmt.Fprintf(&b, "import \"C\"\n\n")
	fmt.Fprintf(&b, "import (\n\t\"unsafe\"\n\n\t%q\n)\n\n", s.Runtime)
	fmt.Fprintf(&b, "// %s returns the contents of %q, decompressed on each call.\n", s.FuncName, s.AssetPath)
	fmt.Fprintf(&b, "func %s() []byte {\n", s.FuncName)
	fmt.Fprintf(&b, "\treturn packed.Decompress(unsafe.Slice((*byte)(unsafe.Pointer(&C.%s)), %d))\n", symbol, size)
	fmt.Fprintf(&b, "}\n")
	return []byte(b.String()), nil
}

// generateInline reads and compresses the asset at generation time and emits
// the bytes as a literal array. No preparation artifacts are involved; the
// fixed default level favors generation speed since this path runs on every
// invocation.
func generateInline(s Site) ([]byte, error) {
	abs := filepath.Join(s.ProjectRoot, filepath.FromSlash(s.AssetPath))
	content, err := os.ReadFile(abs)
	if err != nil {
		return nil, fmt.Errorf("could not read asset %q for inline embedding: %w", s.AssetPath, err)
	}
	level := s.Level
	if level == 0 {
		level = packed.DefaultInlineLevel
	}
	blob, err := packed.Compress(content, level)
	if err != nil {
		return nil, fmt.Errorf("compress %q: %w", s.AssetPath, err)
	}

	varName := lowerFirst(s.FuncName) + "Packed"

	var b strings.Builder
	writeHeader(&b, s)
	fmt.Fprintf(&b, "import %q\n\n", s.Runtime)
	fmt.Fprintf(&b, "// %s holds %q compressed with zstd level %d.\n", varName, s.AssetPath, level)
	fmt.Fprintf(&b, "var %s = [...]byte{", varName)
	for i, v := range blob {
		if i%12 == 0 {
			b.WriteString("\n\t")
		} else {
			b.WriteString(" ")
		}
		fmt.Fprintf(&b, "0x%02x,", v)
	}
	fmt.Fprintf(&b, "\n}\n\n")
	fmt.Fprintf(&b, "// %s returns the contents of %q, decompressed on each call.\n", s.FuncName, s.AssetPath)
	fmt.Fprintf(&b, "func %s() []byte {\n", s.FuncName)
	fmt.Fprintf(&b, "\treturn packed.Decompress(%s[:])\n", varName)
	fmt.Fprintf(&b, "}\n")
	return []byte(b.String()), nil
}

func writeHeader(b *strings.Builder, s Site) {
	fmt.Fprintf(b, "// Code generated by packed gen; DO NOT EDIT.\n")
	fmt.Fprintf(b, "// source: %s\n\n", s.AssetPath)
	fmt.Fprintf(b, "package %s\n\n", s.Package)
}

// AccessorName derives the default accessor function name from an asset
// path: the base name split on non-alphanumeric runs, each part capitalized.
// "img/logo.png" becomes "LogoPng".
func AccessorName(assetPath string) string {
	base := filepath.Base(filepath.FromSlash(assetPath))
	var b strings.Builder
	upper := true
	for _, r := range base {
		switch {
		case r >= 'a' && r <= 'z':
			if upper {
				r -= 'a' - 'A'
			}
			b.WriteRune(r)
			upper = false
		case r >= 'A' && r <= 'Z':
			b.WriteRune(r)
			upper = false
		case r >= '0' && r <= '9':
			b.WriteRune(r)
			upper = true
		default:
			upper = true
		}
	}
	name := b.String()
	if name == "" || name[0] >= '0' && name[0] <= '9' {
		name = "Asset" + name
	}
	return name
}

func lowerFirst(s string) string {
	if s == "" {
		return s
	}
	if s[0] >= 'A' && s[0] <= 'Z' {
		return string(s[0]+'a'-'A') + s[1:]
	}
	return s
}
