// Copyright 2015 Google Inc.
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

package yang

import (
	"fmt"
	"io/ioutil"
	"os"
	"path"
	"path/filepath"
	"sort"
	"strings"

	"github.com/derekparker/trie"
)

// A revision-aware module loader. Where file.go's findFile walks its
// search path on every call, Loader indexes every candidate file for a
// module name across all indexed directories up front, in a trie keyed
// by module name, so repeated lookups against a large search path don't
// re-walk the filesystem. Among several files implementing the same
// module name it prefers an exact "name@revision" match, then the file
// carrying the greatest "@YYYY-MM-DD" suffix, and only falls back to an
// unrevisioned file when no revisioned candidate exists.
type Loader struct {
	dirs []string
	// index maps a bare module name (without ".yang") to every candidate
	// file path found for it, across all indexed directories.
	index *trie.Trie
}

// NewLoader creates a Loader with no indexed directories. Call AddDir or
// AddDirRecursive to populate it before calling Find.
func NewLoader() *Loader {
	return &Loader{index: trie.New()}
}

// candidateList retrieves (or lazily creates) the slice of file paths
// already indexed under key.
func (l *Loader) candidates(key string) []string {
	if v, ok := l.index.Find(key); ok {
		if cs, ok := v.Meta().([]string); ok {
			return cs
		}
	}
	return nil
}

func (l *Loader) addCandidate(key, filePath string) {
	cs := append(l.candidates(key), filePath)
	l.index.Add(key, cs)
}

// moduleFileExt returns ".yang" or ".yin" when base names a module
// source file in either syntax, and "" otherwise.
func moduleFileExt(base string) string {
	switch {
	case strings.HasSuffix(base, ".yang"):
		return ".yang"
	case strings.HasSuffix(base, ".yin"):
		return ".yin"
	}
	return ""
}

// AddDir indexes every ".yang" and ".yin" file directly inside dir (one
// level, no recursion).
func (l *Loader) AddDir(dir string) error {
	fis, err := ioutil.ReadDir(dir)
	if err != nil {
		return err
	}
	for _, fi := range fis {
		ext := moduleFileExt(fi.Name())
		if fi.IsDir() || ext == "" {
			continue
		}
		key := strings.TrimSuffix(fi.Name(), ext)
		l.addCandidate(moduleNameOf(key), path.Join(dir, fi.Name()))
	}
	l.dirs = append(l.dirs, dir)
	return nil
}

// AddDirRecursive indexes dir and every subdirectory beneath it.
func (l *Loader) AddDirRecursive(dir string) error {
	return filepath.Walk(dir, func(p string, fi os.FileInfo, err error) error {
		if err != nil {
			return err
		}
		ext := moduleFileExt(fi.Name())
		if fi.IsDir() || ext == "" {
			return nil
		}
		key := strings.TrimSuffix(fi.Name(), ext)
		l.addCandidate(moduleNameOf(key), p)
		return nil
	})
}

// moduleNameOf strips a "@revision" suffix from a bare file base name,
// returning just the module name part used as the trie key.
func moduleNameOf(base string) string {
	if i := strings.Index(base, "@"); i >= 0 {
		return base[:i]
	}
	return base
}

// revisionOf returns the "@revision" suffix of base, or "" if it has none.
func revisionOf(base string) string {
	if i := strings.Index(base, "@"); i >= 0 {
		return base[i+1:]
	}
	return ""
}

// Find locates the best source file for the module name (optionally
// "name@revision"): an exact "name@revision" match wins outright;
// otherwise among files named just "name" or "name@<any revision>", the
// candidate with the greatest revision string wins; an unrevisioned
// candidate is accepted only when no revisioned candidate exists. When a
// ".yang" and a ".yin" candidate tie, the compact ".yang" form wins.
func (l *Loader) Find(name string) (filePath string, err error) {
	if ext := moduleFileExt(name); ext != "" {
		name = strings.TrimSuffix(name, ext)
	}
	wantName, wantRev := name, ""
	if i := strings.Index(name, "@"); i >= 0 {
		wantName, wantRev = name[:i], name[i+1:]
	}

	cands := l.candidates(wantName)
	if len(cands) == 0 {
		return "", fmt.Errorf("no such module: %s", name)
	}

	type scored struct {
		path string
		base string
		rev  string
		yang bool
	}
	var scoredCands []scored
	for _, c := range cands {
		base := path.Base(c)
		ext := moduleFileExt(base)
		base = strings.TrimSuffix(base, ext)
		scoredCands = append(scoredCands, scored{path: c, base: base, rev: revisionOf(base), yang: ext == ".yang"})
	}
	// Sort by descending revision, the compact form first on ties, so
	// the best candidate of any subset is its first element.
	sort.Slice(scoredCands, func(i, j int) bool {
		if scoredCands[i].rev != scoredCands[j].rev {
			return scoredCands[i].rev > scoredCands[j].rev
		}
		return scoredCands[i].yang && !scoredCands[j].yang
	})

	if wantRev != "" {
		for _, s := range scoredCands {
			if s.rev == wantRev {
				return s.path, nil
			}
		}
		return "", fmt.Errorf("no such module revision: %s", name)
	}

	var revisioned []scored
	var unrevisioned []scored
	for _, s := range scoredCands {
		if s.rev != "" {
			revisioned = append(revisioned, s)
		} else {
			unrevisioned = append(unrevisioned, s)
		}
	}
	if len(revisioned) > 0 {
		return revisioned[0].path, nil
	}
	return unrevisioned[0].path, nil
}

// Read locates and reads the source for name, returning the resolved file
// path and its contents.
func (l *Loader) Read(name string) (filePath, data string, err error) {
	p, err := l.Find(name)
	if err != nil {
		return "", "", err
	}
	b, err := ioutil.ReadFile(p)
	if err != nil {
		return "", "", err
	}
	return p, string(b), nil
}
