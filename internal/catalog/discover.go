package catalog

import (
	"errors"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
)

// Discoverer lists the images that currently exist. Every call returns the
// current ground truth.
type Discoverer interface {
	Discover() ([]ImageFile, error)
}

// imageExts are the file extensions treated as practice images.
var imageExts = map[string]bool{
	".png":  true,
	".jpg":  true,
	".jpeg": true,
	".gif":  true,
	".svg":  true,
}

// IsImage reports whether name has a recognised image extension.
func IsImage(name string) bool {
	return imageExts[strings.ToLower(filepath.Ext(name))]
}

// DirDiscoverer finds images anywhere below Dir.
type DirDiscoverer struct {
	Dir string
}

// Discover walks Dir in lexical order. Image ids are file names, so when two
// sub-directories contain the same name the first one walked wins. A missing
// directory yields no images.
func (d DirDiscoverer) Discover() ([]ImageFile, error) {
	if _, err := os.Stat(d.Dir); errors.Is(err, os.ErrNotExist) {
		return nil, nil
	}

	var files []ImageFile
	seen := make(map[string]bool)
	err := filepath.WalkDir(d.Dir, func(path string, entry fs.DirEntry, err error) error {
		if err != nil {
			return nil // skip unreadable entries
		}
		if entry.IsDir() || !IsImage(entry.Name()) {
			return nil
		}
		name := entry.Name()
		if seen[name] {
			return nil
		}
		seen[name] = true
		rel, err := filepath.Rel(d.Dir, path)
		if err != nil {
			rel = name
		}
		files = append(files, ImageFile{ID: name, Path: filepath.ToSlash(rel)})
		return nil
	})
	return files, err
}

// StaticDiscoverer returns a fixed image list.
type StaticDiscoverer []ImageFile

func (s StaticDiscoverer) Discover() ([]ImageFile, error) {
	out := make([]ImageFile, len(s))
	copy(out, s)
	return out, nil
}
