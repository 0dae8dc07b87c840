// Package packed is the runtime half of the packed asset embedder.
//
// The packed CLI compresses assets once (packed pack) into native object
// files that the linker folds into the final binary, and generates a small
// accessor per use-site (packed gen) that hands the linked bytes to
// Decompress at run time. This package is imported by that generated code;
// it also hosts Compress so both phases share one codec.
package packed

import (
	"fmt"

	"github.com/klauspost/compress/zstd"
)

// DefaultLevel is the compression level used by preparation when none is
// configured.
const DefaultLevel = 6

// DefaultInlineLevel is the compression level used by the inline fallback
// path. Inline compression runs on every code-generation invocation, so it
// trades ratio for speed.
const DefaultInlineLevel = 3

// MinLevel and MaxLevel bound the accepted zstd compression levels.
const (
	MinLevel = 1
	MaxLevel = 21
)

// decoder is reused across Decompress calls; zstd.Decoder is safe for
// concurrent use with DecodeAll.
var decoder *zstd.Decoder

func init() {
	var err error
	decoder, err = zstd.NewReader(nil)
	if err != nil {
		panic("packed: zstd decoder initialization failed: " + err.Error())
	}
}

// Compress compresses data at the given zstd level (1-21).
func Compress(data []byte, level int) ([]byte, error) {
	if level < MinLevel || level > MaxLevel {
		return nil, fmt.Errorf("packed: compression level %d out of range [%d, %d]", level, MinLevel, MaxLevel)
	}
	enc, err := zstd.NewWriter(nil, zstd.WithEncoderLevel(zstd.EncoderLevelFromZstd(level)))
	if err != nil {
		return nil, fmt.Errorf("packed: create encoder: %w", err)
	}
	defer enc.Close()
	return enc.EncodeAll(data, nil), nil
}

// Decompress returns the original bytes of a buffer produced by Compress.
// Generated accessors call it on every access; the result is always a fresh
// slice owned by the caller.
//
// Decompress panics on invalid input. The buffers it receives were produced
// by this package during preparation, so corruption can only mean a defect
// in the artifacts, never a recoverable runtime condition.
func Decompress(data []byte) []byte {
	out, err := decoder.DecodeAll(data, nil)
	if err != nil {
		panic("packed: corrupt embedded data, rerun 'packed pack': " + err.Error())
	}
	return out
}
