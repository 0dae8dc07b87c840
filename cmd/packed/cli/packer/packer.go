// Package packer implements the preparation phase: it walks an asset root,
// compresses every regular file, and persists one linkable object artifact
// plus a length record per asset into the build output directory.
package packer

import (
	"fmt"
	"io"
	"io/fs"
	"os"
	"path/filepath"
	"strconv"

	"github.com/packed-dev/packed"
	"github.com/packed-dev/packed/cmd/packed/cli/ident"
	"github.com/packed-dev/packed/cmd/packed/cli/objfile"
	"github.com/packed-dev/packed/cmd/packed/cli/target"
)

// BuildHooks receives the directives preparation issues to the surrounding
// build system: one link argument per artifact written and one
// change-tracking registration per asset read.
type BuildHooks interface {
	LinkArg(objPath string)
	RerunIfChanged(assetPath string)
}

// Directives is the default BuildHooks. It prints one directive per line in
// a fixed key=value form that wrapper scripts can grep out of pack's output.
type Directives struct {
	W io.Writer
}

func (d Directives) LinkArg(objPath string) {
	fmt.Fprintf(d.W, "packed:link-arg=%s\n", objPath)
}

func (d Directives) RerunIfChanged(assetPath string) {
	fmt.Fprintf(d.W, "packed:rerun-if-changed=%s\n", assetPath)
}

// PathNotFoundError reports an asset root that does not exist. It carries
// the working directory because pack usually runs under a build system whose
// working directory is not obvious from the failing path alone.
type PathNotFoundError struct {
	Path    string
	WorkDir string
}

func (e *PathNotFoundError) Error() string {
	return fmt.Sprintf("path %q not found (current directory is %q)", e.Path, e.WorkDir)
}

// UnsupportedFileTypeError reports a directory entry that is neither a
// regular file nor a directory. Preparation aborts instead of skipping it: a
// silently dropped asset would only surface later as an unresolved symbol at
// some unrelated use-site.
type UnsupportedFileTypeError struct {
	Path string
}

func (e *UnsupportedFileTypeError) Error() string {
	return fmt.Sprintf("path %q has unsupported file type", e.Path)
}

// Packer packs one asset root. Construct with New and the option methods;
// preparation is single-threaded and run to completion once per build.
type Packer struct {
	root        string
	level       int
	projectRoot string
	outDir      string
	tgt         target.Target
	hooks       BuildHooks
}

// discard is the BuildHooks used when the caller installs none.
type discard struct{}

func (discard) LinkArg(string)        {}
func (discard) RerunIfChanged(string) {}

// New returns a Packer for root, a file or directory path relative to the
// project root, with the default compression level.
func New(root string) *Packer {
	return &Packer{
		root:  root,
		level: packed.DefaultLevel,
		hooks: discard{},
	}
}

// Level sets the zstd compression level (1-21).
func (p *Packer) Level(level int) *Packer {
	p.level = level
	return p
}

// ProjectRoot sets the directory asset paths and identifiers are derived
// relative to. Code generation must use the same root or the derived symbols
// will not match.
func (p *Packer) ProjectRoot(dir string) *Packer {
	p.projectRoot = dir
	return p
}

// OutDir sets the build output directory for artifacts, length records and
// the manifest.
func (p *Packer) OutDir(dir string) *Packer {
	p.outDir = dir
	return p
}

// Target sets the platform the object artifacts are synthesized for.
func (p *Packer) Target(t target.Target) *Packer {
	p.tgt = t
	return p
}

// Hooks installs the build-system directive receiver.
func (p *Packer) Hooks(h BuildHooks) *Packer {
	p.hooks = h
	return p
}

// Run walks the root and writes one <identifier>.o and <identifier>.len pair
// per regular file into the output directory, then the run manifest. Any
// failure aborts the run before the manifest is written.
func (p *Packer) Run() (*Manifest, error) {
	if p.level < packed.MinLevel || p.level > packed.MaxLevel {
		return nil, fmt.Errorf("compression level %d out of range [%d, %d]", p.level, packed.MinLevel, packed.MaxLevel)
	}
	if p.projectRoot == "" {
		return nil, fmt.Errorf("no project root configured")
	}
	if p.outDir == "" {
		return nil, fmt.Errorf("no output directory configured")
	}

	rootPath := p.root
	if !filepath.IsAbs(rootPath) {
		rootPath = filepath.Join(p.projectRoot, rootPath)
	}
	if _, err := os.Stat(rootPath); err != nil {
		wd, wdErr := os.Getwd()
		if wdErr != nil {
			wd = "unknown"
		}
		return nil, &PathNotFoundError{Path: p.root, WorkDir: wd}
	}

	if err := os.MkdirAll(p.outDir, 0o755); err != nil {
		return nil, fmt.Errorf("create output directory: %w", err)
	}

	m := NewManifest()
	if err := p.walk(rootPath, m); err != nil {
		return nil, err
	}
	if err := os.WriteFile(filepath.Join(p.outDir, ManifestName), m.Encode(), 0o644); err != nil {
		return nil, fmt.Errorf("write manifest: %w", err)
	}
	return m, nil
}

func (p *Packer) walk(path string, m *Manifest) error {
	info, err := os.Stat(path)
	if err != nil {
		return fmt.Errorf("stat %q: %w", path, err)
	}

	switch {
	case info.IsDir():
		entries, err := os.ReadDir(path)
		if err != nil {
			return fmt.Errorf("read directory %q: %w", path, err)
		}
		for _, entry := range entries {
			if err := p.walk(filepath.Join(path, entry.Name()), m); err != nil {
				return err
			}
		}
		return nil
	case info.Mode().IsRegular():
		return p.packFile(path, info, m)
	default:
		return &UnsupportedFileTypeError{Path: path}
	}
}

// packFile compresses one asset and persists its artifact pair.
func (p *Packer) packFile(path string, info fs.FileInfo, m *Manifest) error {
	rel, err := filepath.Rel(p.projectRoot, path)
	if err != nil {
		return fmt.Errorf("relativize %q: %w", path, err)
	}

	content, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("read asset %q: %w", path, err)
	}
	blob, err := packed.Compress(content, p.level)
	if err != nil {
		return fmt.Errorf("compress %q: %w", rel, err)
	}

	symbol := ident.Symbol(rel, info.ModTime())
	obj, err := objfile.Build(p.tgt, symbol, blob)
	if err != nil {
		return fmt.Errorf("synthesize object for %q: %w", rel, err)
	}

	objPath := filepath.Join(p.outDir, symbol+".o")
	if err := os.WriteFile(objPath, obj, 0o644); err != nil {
		return fmt.Errorf("write object artifact: %w", err)
	}
	lenPath := filepath.Join(p.outDir, symbol+".len")
	if err := os.WriteFile(lenPath, []byte(strconv.Itoa(len(blob))), 0o644); err != nil {
		return fmt.Errorf("write length record: %w", err)
	}

	p.hooks.RerunIfChanged(path)
	p.hooks.LinkArg(objPath)

	m.Add(Entry{
		Symbol:         symbol,
		Path:           filepath.ToSlash(rel),
		OriginalSize:   len(content),
		CompressedSize: len(blob),
	})
	return nil
}
