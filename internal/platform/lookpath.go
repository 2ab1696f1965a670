package platform

import (
	"os"
	"os/exec"
	"path/filepath"
	"strings"
)

// LookPath searches the directories named by PATH for an executable.
// It acts as a drop-in replacement for exec.LookPath but avoids faccessat2
// on Linux, which triggers SIGSYS under seccomp filtering on some
// Android/Termux kernels.
func LookPath(file string) (string, error) {
	// A path containing a separator is relative or absolute; stat it directly.
	if strings.Contains(file, string(filepath.Separator)) {
		info, err := os.Stat(file)
		if err == nil && !info.IsDir() && info.Mode()&0111 != 0 {
			return file, nil
		}
		return "", &exec.Error{Name: file, Err: exec.ErrNotFound}
	}

	for _, dir := range filepath.SplitList(os.Getenv("PATH")) {
		if dir == "" {
			dir = "."
		}
		path := filepath.Join(dir, file)
		info, err := os.Stat(path)
		if err == nil && !info.IsDir() && info.Mode()&0111 != 0 {
			return path, nil
		}
	}

	return "", &exec.Error{Name: file, Err: exec.ErrNotFound}
}
