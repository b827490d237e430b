package bundle

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
)

var (
	errNoFiles = errors.New("no files to pack")

	escaper = strings.NewReplacer(`"`, `\"`, "\n", `\n`, "\r", `\r`)
)

// Pack reads every file under root whose name has an extension and returns
// them as one JSON object string. Hidden files and directories are skipped.
func Pack(root string) (string, error) {
	files, err := Files(root)
	if err != nil {
		return "", err
	}

	return PackFiles(root, files)
}

// PackFiles packs the listed files, given as slash-separated paths relative to root.
func PackFiles(root string, files []string) (string, error) {
	if len(files) == 0 {
		return "", fmt.Errorf("pack %s: %w", root, errNoFiles)
	}

	var builder strings.Builder

	builder.WriteByte('{')

	for i, name := range files {
		contents, err := os.ReadFile(filepath.Join(root, filepath.FromSlash(name)))
		if err != nil {
			return "", fmt.Errorf("pack %s: %w", root, err)
		}

		if i > 0 {
			builder.WriteByte(',')
		}

		builder.WriteString(`"` + name + `":"` + escaper.Replace(string(contents)) + `"`)
	}

	builder.WriteByte('}')

	return builder.String(), nil
}

// Files lists the relative paths Pack would include, in walk order.
// Symbolic links are followed: a linked file is listed under the link name
// and a linked directory is descended once.
func Files(root string) ([]string, error) {
	l := &lister{
		root:    root,
		visited: make(map[string]bool),
	}

	if err := l.walk(root); err != nil {
		return nil, fmt.Errorf("list %s: %w", root, err)
	}

	return l.files, nil
}

// lister collects selected files across linked directories.
type lister struct {
	root string
	// visited holds the resolved directories already walked through a link.
	visited map[string]bool
	files   []string
}

func (l *lister) walk(dir string) error {
	resolved, err := filepath.EvalSymlinks(dir)
	if err != nil {
		return err
	}

	if l.visited[resolved] {
		return nil
	}

	l.visited[resolved] = true

	return filepath.WalkDir(dir, func(path string, entry fs.DirEntry, err error) error {
		if err != nil {
			return err
		}

		if path == dir {
			return nil
		}

		if isHidden(entry.Name()) {
			if entry.IsDir() {
				return filepath.SkipDir
			}

			return nil
		}

		mode := entry.Type()

		if mode&fs.ModeSymlink != 0 {
			info, err := os.Stat(path)
			if err != nil {
				// Dangling links match nothing.
				if errors.Is(err, fs.ErrNotExist) {
					return nil
				}

				return err
			}

			if info.IsDir() {
				return l.walk(path)
			}

			mode = info.Mode().Type()
		}

		if !mode.IsRegular() || !strings.Contains(entry.Name(), ".") {
			return nil
		}

		rel, err := filepath.Rel(l.root, path)
		if err != nil {
			return err
		}

		l.files = append(l.files, filepath.ToSlash(rel))

		return nil
	})
}

func isHidden(name string) bool {
	return strings.HasPrefix(name, ".")
}
