// Copyright 2020 Google Inc.
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

// Package loadutil offers a single convenience entry point for loading and
// compiling a set of YANG source files, in place of hand-rolling a
// yang.Context and calling Parse/Compile on it directly.
package loadutil

import (
	"fmt"

	"github.com/yangforge/yangcore/pkg/yang"
)

// Result holds the outcome of a Load call: the compiled module entries
// keyed by module name, and the Context they were compiled in (so a caller
// can continue on to ChangeFeature or read the diagnostics accumulated
// during loading through Context.Diagnostics).
type Result struct {
	Context *yang.Context
	Modules map[string]*yang.CompiledModule
	Entries map[string]*yang.Entry
}

// Load takes a list of either .yang file paths or module/submodule names
// and a list of search directories, parses and compiles all of them, and
// returns the compiled top-level modules. Search directories given as
// "dir/..." are indexed recursively; all others are indexed
// non-recursively.
func Load(yangFiles, searchDirs []string, opts yang.Options) (*Result, error) {
	c := yang.NewContext(opts)

	for _, dir := range searchDirs {
		if err := addSearchDir(c, dir); err != nil {
			return nil, err
		}
	}

	var errs []error
	for _, name := range yangFiles {
		if err := c.Parse(name); err != nil {
			errs = append(errs, err)
		}
	}
	if len(errs) > 0 {
		return nil, fmt.Errorf("loadutil: %d error(s) parsing source, first: %v", len(errs), errs[0])
	}

	names := map[string]bool{}
	for _, m := range c.Modules().Modules {
		names[m.Name] = true
	}

	res := &Result{
		Context: c,
		Modules: map[string]*yang.CompiledModule{},
		Entries: map[string]*yang.Entry{},
	}
	for name := range names {
		cm, err := c.Compile(name)
		if err != nil {
			return nil, fmt.Errorf("loadutil: compiling %s: %v", name, err)
		}
		res.Modules[name] = cm
		res.Entries[name] = cm.Entry
	}
	return res, nil
}

func addSearchDir(c *yang.Context, dir string) error {
	const suffix = "/..."
	if len(dir) > len(suffix) && dir[len(dir)-len(suffix):] == suffix {
		return c.AddSearchDirRecursive(dir[:len(dir)-len(suffix)])
	}
	return c.AddSearchDir(dir)
}
