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
	"regexp"
	"strings"
)

// AddPath adds the directories specified in p, a colon separated list
// of directory names, to Path, if they are not already in Path. Using
// multiple arguments is also supported.
func (ms *Modules) AddPath(paths ...string) {
	for _, path := range paths {
		for _, p := range strings.Split(path, ":") {
			if !ms.pathMap[p] {
				ms.pathMap[p] = true
				ms.Path = append(ms.Path, p)
			}
		}
	}
}

// PathsWithModules returns all paths under and including the
// root containing files with a ".yang" extension, as well as
// any error encountered
func PathsWithModules(root string) (paths []string, err error) {
	pm := map[string]bool{}
	filepath.Walk(root, func(p string, info os.FileInfo, e error) error {
		err = e
		if err == nil {
			if info == nil {
				return nil
			}
			if !info.IsDir() && strings.HasSuffix(p, ".yang") {
				dir := path.Dir(p)
				if !pm[dir] {
					pm[dir] = true
					paths = append(paths, dir)
				}
			}
			return nil
		}
		return err
	})
	return
}

// readFile makes testing of findFile easier.
var readFile = ioutil.ReadFile

// scanDir makes testing of findFile easier.
var scanDir = findInDir

// findFile returns the name and contents of the module source file
// associated with name, or an error.  If name is a module name rather
// than a file name (it has neither a .yang nor a .yin extension and
// there is no / in name), both extensions are tried, the compact .yang
// form first.  The directory that the file is found in is added to Path
// if not already in Path.
//
// If a path has the form dir/... then dir and all direct or indirect
// subdirectories of dir are searched.
//
// The current directory (.) is always checked first, no matter the value of
// Path.
func (ms *Modules) findFile(name string) (string, string, error) {
	slash := strings.Index(name, "/")

	names := []string{name}
	if slash < 0 && moduleFileExt(name) == "" {
		names = []string{name + ".yang", name + ".yin"}
	}

	for _, name := range names {
		switch data, err := readFile(name); true {
		case err == nil:
			ms.AddPath(path.Dir(name))
			return name, string(data), nil
		case slash >= 0:
			// If there are any /'s in the name then don't search Path.
			return "", "", fmt.Errorf("no such file: %s", name)
		}

		for _, dir := range ms.Path {
			var n string
			if path.Base(dir) == "..." {
				n = scanDir(path.Dir(dir), name, true)
			} else {
				n = scanDir(dir, name, false)
			}
			if n == "" {
				continue
			}
			if data, err := readFile(n); err == nil {
				return n, string(data), nil
			}
		}
	}
	return "", "", fmt.Errorf("no such file: %s", names[0])
}

// revisionDate matches the revision part of a name@revision file base name.
// Anything else after the "@" is not a revision and never matches.
var revisionDate = regexp.MustCompile(`^\d{4}-\d{2}-\d{2}$`)

// findInDir looks in dir for a file named name.  An exact match wins
// outright.  Otherwise files named name@revision (keeping name's
// extension) with a well-formed YYYY-MM-DD revision compete and the
// greatest revision wins; files with a malformed revision are ignored.
// With recurse set, subdirectories are searched too and revisioned
// candidates compete across the whole walk.  The empty string is
// returned if no candidate is found.
func findInDir(dir, name string, recurse bool) string {
	found, _ := findInDirRev(dir, name, recurse)
	return found
}

// findInDirRev implements findInDir, additionally returning the revision
// of the returned candidate ("" for an exact match) so recursive calls
// can compare revisions across directories.
func findInDirRev(dir, name string, recurse bool) (string, string) {
	fis, err := ioutil.ReadDir(dir)
	if err != nil {
		return "", ""
	}

	ext := path.Ext(name)
	prefix := strings.TrimSuffix(name, ext) + "@"

	bestPath, bestRev := "", ""
	for _, fi := range fis {
		switch {
		case fi.IsDir():
			if !recurse {
				continue
			}
			p, rev := findInDirRev(path.Join(dir, fi.Name()), name, recurse)
			switch {
			case p == "":
			case rev == "":
				// An exact match below us wins outright.
				return p, ""
			case rev > bestRev:
				bestPath, bestRev = p, rev
			}
		case fi.Name() == name:
			return path.Join(dir, name), ""
		case strings.HasPrefix(fi.Name(), prefix) && strings.HasSuffix(fi.Name(), ext):
			rev := strings.TrimSuffix(strings.TrimPrefix(fi.Name(), prefix), ext)
			if !revisionDate.MatchString(rev) {
				continue
			}
			if rev > bestRev {
				bestPath, bestRev = path.Join(dir, fi.Name()), rev
			}
		}
	}
	return bestPath, bestRev
}
