// Package scan lists an input directory and separates the videos the batch
// can transcode from everything else.
package scan

import (
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/gwlsn/reelshrink/internal/logger"
)

// Supported source extensions (lowercase, with leading dot).
var supportedExtensions = map[string]bool{
	".mp4":  true,
	".mov":  true,
	".m4v":  true,
	".avi":  true,
	".mkv":  true,
	".webm": true,
}

// Entry is one directory entry seen by Classify.
type Entry struct {
	Path string // absolute path
	Name string // base name as found on disk
	Ext  string // lowercase extension, "" if none
	Size int64
}

// Classification is the result of scanning one directory.
type Classification struct {
	Dir         string
	Supported   []Entry
	Unsupported []Entry
}

// IsSupported reports whether path has a supported video extension.
// The comparison is case-insensitive.
func IsSupported(path string) bool {
	return supportedExtensions[strings.ToLower(filepath.Ext(path))]
}

// SupportedExtensions returns the supported extensions in sorted order.
func SupportedExtensions() []string {
	exts := make([]string, 0, len(supportedExtensions))
	for ext := range supportedExtensions {
		exts = append(exts, ext)
	}
	sort.Strings(exts)
	return exts
}

// Classify lists dir (non-recursively) and partitions its entries. Only
// regular files, or symlinks to regular files, can be supported;
// subdirectories, dangling links and other entries always land in
// Unsupported. The filesystem is not modified.
func Classify(dir string) (*Classification, error) {
	abs, err := filepath.Abs(dir)
	if err != nil {
		return nil, fmt.Errorf("resolve %s: %w", dir, err)
	}

	entries, err := os.ReadDir(abs)
	if err != nil {
		return nil, fmt.Errorf("read input directory: %w", err)
	}

	c := &Classification{Dir: abs}
	for _, de := range entries {
		e := Entry{
			Path: filepath.Join(abs, de.Name()),
			Name: de.Name(),
			Ext:  strings.ToLower(filepath.Ext(de.Name())),
		}

		info, err := entryInfo(de, e.Path)
		if err != nil {
			logger.Debug("Cannot stat entry, ignoring", "file", e.Path, "error", err)
			c.Unsupported = append(c.Unsupported, e)
			continue
		}
		if !info.Mode().IsRegular() {
			c.Unsupported = append(c.Unsupported, e)
			continue
		}
		e.Size = info.Size()

		if supportedExtensions[e.Ext] {
			c.Supported = append(c.Supported, e)
		} else {
			c.Unsupported = append(c.Unsupported, e)
		}
	}

	return c, nil
}

// entryInfo returns the entry's own info, following symlinks to their target.
func entryInfo(de fs.DirEntry, path string) (fs.FileInfo, error) {
	if de.Type()&fs.ModeSymlink != 0 {
		return os.Stat(path)
	}
	return de.Info()
}

// Total is the number of entries seen.
func (c *Classification) Total() int {
	return len(c.Supported) + len(c.Unsupported)
}

// ByExtension counts supported files per lowercase extension.
func (c *Classification) ByExtension() map[string]int {
	counts := make(map[string]int)
	for _, e := range c.Supported {
		counts[e.Ext]++
	}
	return counts
}
