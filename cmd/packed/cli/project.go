package cli

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"golang.org/x/mod/modfile"
)

// OutDirName is the default build output directory under the project root.
const OutDirName = ".packed"

// FindProjectRoot walks upward from dir to the nearest directory containing
// go.mod and returns it. Asset paths and identifiers are derived relative to
// this root in both phases, so pack and gen must agree on it.
func FindProjectRoot(dir string) (string, error) {
	start := dir
	for {
		if _, err := os.Stat(filepath.Join(dir, "go.mod")); err == nil {
			return dir, nil
		}
		parent := filepath.Dir(dir)
		if parent == dir {
			return "", fmt.Errorf("no go.mod found above %q; run from inside a Go module", start)
		}
		dir = parent
	}
}

// DefaultOutDir returns the default artifact directory for a project root.
func DefaultOutDir(root string) string {
	return filepath.Join(root, OutDirName)
}

// ModulePath reads the module path from the go.mod at root.
func ModulePath(root string) (string, error) {
	gomod := filepath.Join(root, "go.mod")
	data, err := os.ReadFile(gomod)
	if err != nil {
		return "", fmt.Errorf("read %s: %w", gomod, err)
	}
	f, err := modfile.ParseLax(gomod, data, nil)
	if err != nil {
		return "", fmt.Errorf("parse %s: %w", gomod, err)
	}
	if f.Module == nil || f.Module.Mod.Path == "" {
		return "", fmt.Errorf("%s has no module directive", gomod)
	}
	return f.Module.Mod.Path, nil
}

// DefaultPackage returns the package name for a file generated in genDir:
// the directory's base name, or the module path's last element when
// generating at the project root (where the directory name on disk need not
// match the package).
func DefaultPackage(root, genDir string) (string, error) {
	if abs, err := filepath.Abs(genDir); err == nil {
		genDir = abs
	}
	if absRoot, err := filepath.Abs(root); err == nil && genDir == absRoot {
		mp, err := ModulePath(root)
		if err != nil {
			return "", err
		}
		return packageName(mp[strings.LastIndex(mp, "/")+1:]), nil
	}
	return packageName(filepath.Base(genDir)), nil
}

// packageName reduces s to a valid Go package identifier.
func packageName(s string) string {
	var b strings.Builder
	for _, r := range s {
		switch {
		case r >= 'a' && r <= 'z' || r >= '0' && r <= '9' || r == '_':
			b.WriteRune(r)
		case r >= 'A' && r <= 'Z':
			b.WriteRune(r + 'a' - 'A')
		}
	}
	name := b.String()
	if name == "" || name[0] >= '0' && name[0] <= '9' {
		name = "assets"
	}
	return name
}
