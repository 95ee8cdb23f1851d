package platform

import (
	"os"
	"path/filepath"
	"strings"
)

// SandboxDirName is the temp subdirectory used for sandboxed runs.
const SandboxDirName = "quire-dev"

// IsDevRun reports whether the binary looks like a `go run` or `go test` build.
func IsDevRun() bool {
	exe, err := os.Executable()
	if err != nil {
		return false
	}
	if strings.HasPrefix(strings.ToLower(exe), strings.ToLower(os.TempDir())) {
		return true
	}
	return strings.HasSuffix(exe, ".test") || strings.HasSuffix(exe, ".test.exe")
}

// ResolveDataPath returns the directory to use for userPath.
// Without sandboxing it is userPath itself ("." when empty). With sandboxing,
// paths already under the temp dir are kept and everything else is re-rooted
// into <tmp>/quire-dev/<base name>.
func ResolveDataPath(userPath string, sandbox bool) string {
	if !sandbox {
		if userPath == "" {
			return "."
		}
		return userPath
	}

	clean := filepath.Clean(userPath)
	if rel, err := filepath.Rel(os.TempDir(), clean); err == nil && !strings.HasPrefix(rel, "..") && filepath.IsAbs(clean) {
		return clean
	}

	name := filepath.Base(clean)
	if userPath == "" || name == "." || name == string(os.PathSeparator) {
		name = "default"
	}
	return filepath.Join(os.TempDir(), SandboxDirName, name)
}
