package packer

import (
	"bytes"
	"fmt"
	"math/rand"
	"strconv"
	"strings"
	"time"

	"github.com/oklog/ulid/v2"
	"gonum.org/v1/gonum/stat"
)

// ManifestName is the manifest's file name inside the output directory.
const ManifestName = "manifest"

// Entry records one packed asset.
type Entry struct {
	Symbol         string
	Path           string // project-relative, slash-separated
	OriginalSize   int
	CompressedSize int
}

// Manifest records one preparation run: a ULID identifying the run and one
// entry per asset, in walk order. It is regenerated wholesale on every run;
// build systems can hang change tracking off it and humans can audit what
// was packed.
type Manifest struct {
	RunID   string
	Entries []Entry
}

// NewManifest returns an empty manifest with a fresh run ID.
func NewManifest() *Manifest {
	entropy := rand.New(rand.NewSource(time.Now().UnixNano())) //nolint:gosec
	return &Manifest{
		RunID: ulid.MustNew(ulid.Timestamp(time.Now()), entropy).String(),
	}
}

// Add appends an entry.
func (m *Manifest) Add(e Entry) {
	m.Entries = append(m.Entries, e)
}

// Encode serializes the manifest as one header line ("packed <run-id>")
// followed by one line per asset: symbol, original size, compressed size and
// path, space-separated with the path last so it may contain spaces.
func (m *Manifest) Encode() []byte {
	var buf bytes.Buffer
	fmt.Fprintf(&buf, "packed %s\n", m.RunID)
	for _, e := range m.Entries {
		fmt.Fprintf(&buf, "%s %d %d %s\n", e.Symbol, e.OriginalSize, e.CompressedSize, e.Path)
	}
	return buf.Bytes()
}

// LoadManifest parses a manifest produced by Encode.
func LoadManifest(data []byte) (*Manifest, error) {
	lines := strings.Split(strings.TrimRight(string(data), "\n"), "\n")
	if len(lines) == 0 || !strings.HasPrefix(lines[0], "packed ") {
		return nil, fmt.Errorf("manifest: missing header line")
	}
	m := &Manifest{RunID: strings.TrimPrefix(lines[0], "packed ")}
	for i, line := range lines[1:] {
		if line == "" {
			continue
		}
		fields := strings.SplitN(line, " ", 4)
		if len(fields) != 4 {
			return nil, fmt.Errorf("manifest: malformed entry on line %d", i+2)
		}
		orig, err := strconv.Atoi(fields[1])
		if err != nil {
			return nil, fmt.Errorf("manifest: bad original size on line %d: %w", i+2, err)
		}
		comp, err := strconv.Atoi(fields[2])
		if err != nil {
			return nil, fmt.Errorf("manifest: bad compressed size on line %d: %w", i+2, err)
		}
		m.Add(Entry{Symbol: fields[0], OriginalSize: orig, CompressedSize: comp, Path: fields[3]})
	}
	return m, nil
}

// Summary reports totals for the run plus the mean per-asset compression
// ratio. The ratio is 0 when the run packed nothing.
func (m *Manifest) Summary() (files int, original, compressed int64, meanRatio float64) {
	ratios := make([]float64, 0, len(m.Entries))
	for _, e := range m.Entries {
		original += int64(e.OriginalSize)
		compressed += int64(e.CompressedSize)
		if e.CompressedSize > 0 {
			ratios = append(ratios, float64(e.OriginalSize)/float64(e.CompressedSize))
		}
	}
	files = len(m.Entries)
	if len(ratios) > 0 {
		meanRatio = stat.Mean(ratios, nil)
	}
	return files, original, compressed, meanRatio
}
