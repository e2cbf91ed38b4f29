package portal

import (
	"fmt"
	"path/filepath"

	"github.com/blang/semver"
)

// Version is the semantic version of this ngportal build.
var Version = semver.MustParse("0.4.0")

// VersionString returns a human-readable version string.
func VersionString() string {
	return fmt.Sprintf("ngportal %s", Version)
}

// ConvertToAbsolute returns an absolute version of path, interpreting a relative
// path as relative to baseDir.  Absolute paths are returned cleaned but unchanged.
func ConvertToAbsolute(path, baseDir string) (string, error) {
	if path == "" {
		return "", fmt.Errorf("no path given for conversion to absolute")
	}
	if filepath.IsAbs(path) {
		return filepath.Clean(path), nil
	}
	abs, err := filepath.Abs(filepath.Join(baseDir, path))
	if err != nil {
		return "", err
	}
	return abs, nil
}
