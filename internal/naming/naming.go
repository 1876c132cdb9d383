// Package naming derives output file names from source file names.
package naming

import (
	"fmt"
	"path/filepath"
	"strings"
	"sync"
	"unicode"
)

// Fallback is used when normalization leaves nothing (e.g. "???.mp4").
const Fallback = "video"

// Normalize lowercases name, turns spaces into hyphens and drops every rune
// that is not a letter, number, hyphen or underscore. It is idempotent.
// Pass the stem, not the file name: the extension's dot is dropped, so
// "My Clip 01.MOV" becomes "my-clip-01mov". Use Stem for paths.
func Normalize(name string) string {
	name = strings.ReplaceAll(strings.ToLower(name), " ", "-")

	var b strings.Builder
	b.Grow(len(name))
	for _, r := range name {
		if unicode.IsLetter(r) || unicode.IsNumber(r) || r == '-' || r == '_' {
			b.WriteRune(r)
		}
	}
	return b.String()
}

// Stem normalizes the base name of path without its extension.
func Stem(path string) string {
	base := filepath.Base(path)
	return Normalize(strings.TrimSuffix(base, filepath.Ext(base)))
}

// Resolver hands out output names so that two sources never write the same
// file. Distinct inputs that normalize to the same name get "-2", "-3", ...
// All methods are goroutine-safe.
type Resolver struct {
	mu       sync.Mutex
	owners   map[string]string // name → source path that owns it
	counters map[string]int    // requested name → next suffix to try
}

// NewResolver creates a ready-to-use resolver.
func NewResolver() *Resolver {
	return &Resolver{
		owners:   make(map[string]string),
		counters: make(map[string]int),
	}
}

// Reserve claims name for source. If name is unclaimed (or already owned by
// source) it is returned unchanged, otherwise a suffixed variant is returned.
func (r *Resolver) Reserve(source, name string) string {
	if name == "" {
		name = Fallback
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	owner, exists := r.owners[name]
	if !exists || owner == source {
		r.owners[name] = source
		return name
	}

	counter := r.counters[name]
	if counter < 2 {
		counter = 2
	}
	for {
		candidate := fmt.Sprintf("%s-%d", name, counter)
		cOwner, cExists := r.owners[candidate]
		if !cExists || cOwner == source {
			r.counters[name] = counter + 1
			r.owners[candidate] = source
			return candidate
		}
		counter++
	}
}
