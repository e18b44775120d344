package scanning

import (
	"io/fs"
	"os"
	"path/filepath"
	"strings"
)

// walkLibrary visits every supported audio file under root, following
// directory symlinks. Files below a link are reported under the link path,
// not the resolved one, so catalog paths stay inside the library tree. The
// seen set breaks symlink cycles.
func walkLibrary(root string, seen map[string]bool, fn func(path string, info fs.FileInfo) error) error {
	resolved, err := filepath.EvalSymlinks(root)
	if err != nil {
		return err
	}
	if seen[resolved] {
		return nil
	}
	seen[resolved] = true

	return filepath.WalkDir(resolved, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		rel, relErr := filepath.Rel(resolved, path)
		if relErr != nil {
			return relErr
		}
		reported := filepath.Join(root, rel)

		if d.Type()&fs.ModeSymlink != 0 {
			info, statErr := os.Stat(path)
			if statErr != nil {
				// Dangling link, nothing to read.
				return nil
			}
			if info.IsDir() {
				return walkLibrary(reported, seen, fn)
			}
			if isSupportedFile(reported) {
				return fn(reported, info)
			}
			return nil
		}
		if d.IsDir() || !isSupportedFile(path) {
			return nil
		}
		info, err := d.Info()
		if err != nil {
			return err
		}
		return fn(reported, info)
	})
}

// countSupportedFiles counts audio files under root for progress reporting.
func countSupportedFiles(root string) int {
	count := 0
	_ = walkLibrary(root, map[string]bool{}, func(path string, info fs.FileInfo) error {
		count++
		return nil
	})
	return count
}

// isSupportedFile reports whether the path has a supported audio extension.
func isSupportedFile(path string) bool {
	return supportedExtensions[strings.ToLower(filepath.Ext(path))]
}
