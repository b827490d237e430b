package recipe

import (
	"archive/zip"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os"
	"path/filepath"
)

// Archive zips the whole tree under srcDir into dstFile. Entries are relative
// to srcDir, directories get their own entries and timestamps are kept.
func Archive(srcDir, dstFile string) (err error) {
	if err = os.MkdirAll(filepath.Dir(dstFile), 0o750); err != nil {
		return fmt.Errorf("create archive directory: %w", err)
	}

	file, err := os.Create(filepath.Clean(dstFile))
	if err != nil {
		return fmt.Errorf("create archive: %w", err)
	}

	defer func() {
		if closeErr := file.Close(); closeErr != nil && err == nil {
			err = fmt.Errorf("close archive: %w", closeErr)
		}
	}()

	zw := zip.NewWriter(file)

	if err = addDir(zw, srcDir); err != nil {
		return fmt.Errorf("archive %s: %w", srcDir, err)
	}

	if err = zw.Close(); err != nil {
		return fmt.Errorf("finish archive: %w", err)
	}

	return nil
}

func addDir(zw *zip.Writer, srcDir string) error {
	return filepath.WalkDir(srcDir, func(path string, entry fs.DirEntry, err error) error {
		if err != nil {
			return err
		}

		rel, err := filepath.Rel(srcDir, path)
		if err != nil {
			return err
		}

		if rel == "." {
			return nil
		}

		info, err := entryInfo(path, entry)
		if err != nil {
			return err
		}

		if info == nil {
			return nil
		}

		header, err := zip.FileInfoHeader(info)
		if err != nil {
			return err
		}

		header.Name = filepath.ToSlash(rel)

		if info.IsDir() {
			header.Name += "/"
			_, err = zw.CreateHeader(header)

			return err
		}

		if !info.Mode().IsRegular() {
			return nil
		}

		header.Method = zip.Deflate

		w, err := zw.CreateHeader(header)
		if err != nil {
			return err
		}

		return copyFile(w, path)
	})
}

// entryInfo describes entry, following a symbolic link to its target. Linked
// directories get an entry but are not descended. Dangling links yield nil.
func entryInfo(path string, entry fs.DirEntry) (fs.FileInfo, error) {
	if entry.Type()&fs.ModeSymlink == 0 {
		return entry.Info()
	}

	info, err := os.Stat(path)
	if errors.Is(err, fs.ErrNotExist) {
		return nil, nil //nolint:nilnil // Dangling links are skipped by the caller.
	}

	return info, err
}

func copyFile(w io.Writer, path string) error {
	f, err := os.Open(path)
	if err != nil {
		return err
	}
	defer f.Close()

	_, err = io.Copy(w, f)

	return err
}
