package cli

import (
	"os"
	"runtime"
)

// buildGOOS and buildGOARCH return the target platform in effect for the
// build: the standard Go environment overrides when set, the host values
// otherwise. pack and every gen invocation read the same signals, so format
// and strategy selection agree across the phases without explicit
// coordination.
func buildGOOS() string {
	if v := os.Getenv("GOOS"); v != "" {
		return v
	}
	return runtime.GOOS
}

func buildGOARCH() string {
	if v := os.Getenv("GOARCH"); v != "" {
		return v
	}
	return runtime.GOARCH
}
