package config

import (
	"os"
	"path/filepath"
)

// ProjectFile is a per-project config file. It is looked up from the working
// directory towards the repository root and wins over the home config.
const ProjectFile = ".poetryctl.yaml"

// FindProjectFile searches start and its parents for ProjectFile. The search
// stops at the first directory holding .git, or at the filesystem root.
func FindProjectFile(start string) (string, bool) {
	dir, err := filepath.Abs(start)
	if err != nil {
		return "", false
	}
	for {
		candidate := filepath.Join(dir, ProjectFile)
		if info, err := os.Stat(candidate); err == nil && !info.IsDir() {
			return candidate, true
		}

		if _, err := os.Stat(filepath.Join(dir, ".git")); err == nil {
			return "", false
		}

		parent := filepath.Dir(dir)
		if parent == dir {
			return "", false
		}
		dir = parent
	}
}

// Resolve returns the file Load reads when no path is given: the nearest
// project file, else ~/.poetryctl/config.yaml. The file need not exist.
func Resolve() (string, error) {
	if cwd, err := os.Getwd(); err == nil {
		if path, ok := FindProjectFile(cwd); ok {
			return path, nil
		}
	}
	return DefaultPath()
}
