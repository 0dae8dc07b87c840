// Package ident derives the symbol name that coordinates the preparation
// and code-generation phases.
package ident

import (
	"encoding/binary"
	"fmt"
	"path/filepath"
	"time"

	"github.com/cespare/xxhash/v2"
)

// Prefix is the constant prefix of every derived symbol name.
const Prefix = "packed_"

// Symbol derives the data symbol name for an asset from its project-relative
// path and modification time. Preparation computes it once per asset and
// every code-generation site recomputes it independently; matching names in
// a shared output directory are the only coordination between the phases, so
// the derivation lives here and nowhere else. The path is slash-normalized
// and the time reduced to UTC nanoseconds so the result is identical across
// platforms and process invocations.
//
// Collisions between distinct assets are not defended against; one would
// surface as a duplicate-symbol error at link time.
func Symbol(relPath string, mtime time.Time) string {
	h := xxhash.New()
	_, _ = h.WriteString(filepath.ToSlash(relPath))
	var buf [8]byte
	binary.LittleEndian.PutUint64(buf[:], uint64(mtime.UTC().UnixNano()))
	_, _ = h.Write(buf[:])
	return fmt.Sprintf("%s%016x", Prefix, h.Sum64())
}
