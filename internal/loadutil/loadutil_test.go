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

package loadutil

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/yangforge/yangcore/pkg/yang"
)

func TestLoadSingleModule(t *testing.T) {
	dir := t.TempDir()
	src := `module widgets { prefix "wid"; namespace "urn:widgets"; }`
	if err := os.WriteFile(filepath.Join(dir, "widgets.yang"), []byte(src), 0o644); err != nil {
		t.Fatal(err)
	}

	res, err := Load([]string{filepath.Join(dir, "widgets.yang")}, nil, yang.Options{})
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if _, ok := res.Entries["widgets"]; !ok {
		t.Fatalf("Load did not produce an entry for widgets, got %+v", res.Entries)
	}
}

func TestLoadRecursiveSearchDir(t *testing.T) {
	root := t.TempDir()
	sub := filepath.Join(root, "nested")
	if err := os.Mkdir(sub, 0o755); err != nil {
		t.Fatal(err)
	}
	src := `module gadgets { prefix "gad"; namespace "urn:gadgets"; }`
	if err := os.WriteFile(filepath.Join(sub, "gadgets.yang"), []byte(src), 0o644); err != nil {
		t.Fatal(err)
	}

	res, err := Load([]string{"gadgets"}, []string{root + "/..."}, yang.Options{})
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if _, ok := res.Entries["gadgets"]; !ok {
		t.Fatalf("Load did not resolve gadgets via recursive search dir, got %+v", res.Entries)
	}
}
