// Package fsutil provides file system utility functions.
package fsutil

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
)

// FindFilesByExtension recursively searches the given root path for all files ending
// with the specified extension. It returns a slice of their full paths in
// lexical order.
func FindFilesByExtension(rootPath string, extension string) ([]string, error) {
	if extension == "" {
		panic("extension must not be empty")
	}

	var files []string
	err := filepath.WalkDir(rootPath, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if !d.IsDir() && strings.HasSuffix(d.Name(), extension) {
			files = append(files, path)
		}
		return nil
	})

	if err != nil {
		return nil, err
	}

	return files, nil
}

// CollectFiles expands paths into a flat, de-duplicated list of files with
// the given extension. Directories are searched recursively; plain files are
// taken when their extension matches. Paths that do not exist are skipped.
func CollectFiles(extension string, paths ...string) ([]string, error) {
	var all []string
	seen := make(map[string]struct{})
	add := func(p string) {
		if _, ok := seen[p]; !ok {
			seen[p] = struct{}{}
			all = append(all, p)
		}
	}

	for _, path := range paths {
		info, err := os.Stat(path)
		if err != nil {
			if errors.Is(err, fs.ErrNotExist) {
				continue
			}
			return nil, fmt.Errorf("error accessing path %s: %w", path, err)
		}
		if !info.IsDir() {
			if strings.HasSuffix(path, extension) {
				add(path)
			}
			continue
		}
		files, err := FindFilesByExtension(path, extension)
		if err != nil {
			return nil, err
		}
		for _, f := range files {
			add(f)
		}
	}
	return all, nil
}
