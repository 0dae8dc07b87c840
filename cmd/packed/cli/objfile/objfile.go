// Package objfile synthesizes relocatable object files that export a single
// read-only data symbol. The emitted objects carry no code and no
// relocations: one section holding the compressed asset bytes, one symbol
// table entry making them visible across compilation-unit boundaries.
package objfile

import (
	"encoding/binary"
	"fmt"

	"github.com/packed-dev/packed/cmd/packed/cli/target"
)

// Build encodes an object file for t containing data as one read-only-data
// section and one externally visible data symbol named symbol, at offset 0,
// sized len(data), with 1-byte alignment. The encoding is deterministic for
// identical inputs. On error nothing is returned; callers never see a
// partial buffer.
func Build(t target.Target, symbol string, data []byte) ([]byte, error) {
	switch t.Format {
	case target.ELF:
		return buildELF(t, symbol, data)
	case target.MachO:
		return buildMachO(t, symbol, data)
	case target.COFF:
		return buildCOFF(t, symbol, data)
	default:
		return nil, fmt.Errorf("objfile: unsupported object format %v", t.Format)
	}
}

// decorate applies the platform's C symbol decoration so the assembler-level
// name matches what the consuming toolchain emits for an extern declaration:
// Mach-O prefixes every C symbol with an underscore, as does COFF on 32-bit
// x86.
func decorate(t target.Target, symbol string) string {
	if t.Format == target.MachO || (t.Format == target.COFF && t.Arch == target.X86) {
		return "_" + symbol
	}
	return symbol
}

// writer accumulates an object image in the target's byte order. Offsets are
// computed up front by each format writer; writer only handles encoding.
type writer struct {
	buf []byte
	ord binary.AppendByteOrder
}

func newWriter(order target.ByteOrder) *writer {
	var ord binary.AppendByteOrder = binary.LittleEndian
	if order == target.Big {
		ord = binary.BigEndian
	}
	return &writer{ord: ord}
}

func (w *writer) u8(v uint8)   { w.buf = append(w.buf, v) }
func (w *writer) u16(v uint16) { w.buf = w.ord.AppendUint16(w.buf, v) }
func (w *writer) u32(v uint32) { w.buf = w.ord.AppendUint32(w.buf, v) }
func (w *writer) u64(v uint64) { w.buf = w.ord.AppendUint64(w.buf, v) }

func (w *writer) raw(b []byte) { w.buf = append(w.buf, b...) }

// name writes b into a fixed-width field, zero-padded. Panics if b does not
// fit; all callers pass compile-time constants.
func (w *writer) name(b string, width int) {
	if len(b) > width {
		panic(fmt.Sprintf("objfile: name %q exceeds %d bytes", b, width))
	}
	w.raw([]byte(b))
	w.zeros(width - len(b))
}

func (w *writer) zeros(n int) {
	w.buf = append(w.buf, make([]byte, n)...)
}

// padTo advances the buffer with zeros up to offset. Panics if the buffer is
// already past it, which would mean the format writer's layout arithmetic is
// wrong.
func (w *writer) padTo(offset int) {
	if len(w.buf) > offset {
		panic(fmt.Sprintf("objfile: layout overrun: at %d, expected %d", len(w.buf), offset))
	}
	w.zeros(offset - len(w.buf))
}

// align rounds v up to the next multiple of to.
func align(v, to int) int {
	return (v + to - 1) / to * to
}
