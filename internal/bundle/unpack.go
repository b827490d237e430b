package bundle

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/goccy/go-json"
)

const (
	// FileMode keeps materialized files readable by the application container user.
	FileMode os.FileMode = 0o644
	// DirMode is used for the directories created around them.
	DirMode os.FileMode = 0o755
)

var errOutsideDir = errors.New("path escapes the target directory")

// Unpack parses a bundle back into a map of relative path to contents.
func Unpack(blob string) (map[string]string, error) {
	var files map[string]string
	if err := json.Unmarshal([]byte(blob), &files); err != nil {
		return nil, fmt.Errorf("unpack bundle: %w", err)
	}

	return files, nil
}

// Materialize writes each file under dir, creating parent directories as needed.
// It returns the written paths relative to dir.
func Materialize(files map[string]string, dir string) ([]string, error) {
	root, err := filepath.Abs(dir)
	if err != nil {
		return nil, fmt.Errorf("resolve %s: %w", dir, err)
	}

	written := make([]string, 0, len(files))

	for name, contents := range files {
		target := filepath.Join(root, filepath.FromSlash(name))

		if target == root || !strings.HasPrefix(target, root+string(filepath.Separator)) {
			return written, fmt.Errorf("write %s: %w", name, errOutsideDir)
		}

		if err = os.MkdirAll(filepath.Dir(target), DirMode); err != nil {
			return written, fmt.Errorf("create directory for %s: %w", name, err)
		}

		if err = os.WriteFile(target, []byte(contents), FileMode); err != nil {
			return written, fmt.Errorf("write %s: %w", name, err)
		}

		// WriteFile applies the umask and keeps the mode of an existing file.
		if err = os.Chmod(target, FileMode); err != nil {
			return written, fmt.Errorf("chmod %s: %w", name, err)
		}

		written = append(written, name)
	}

	return written, nil
}
