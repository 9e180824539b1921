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

package main

import (
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"github.com/yangforge/yangcore/pkg/yang"
)

// newVersionsCmd scans each module's top-level extension statements for
// an "openconfig-extensions:openconfig-version" declaration and prints
// the version string it carries.
func newVersionsCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "versions [MODULE|FILE] ...",
		Short: "print the openconfig-version extension declared by each module, if any",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			res, names, err := loadArgs(args)
			if err != nil {
				return err
			}
			for _, n := range names {
				e := res.Entries[n]
				m, ok := e.Node.(*yang.Module)
				if !ok {
					fmt.Fprintf(os.Stderr, "yangcore: cannot convert entry %q to a module\n", e.Name)
					continue
				}
				printOcVersion(os.Stdout, m)
			}
			return nil
		},
	}
}

func printOcVersion(w *os.File, m *yang.Module) {
	for _, ext := range m.Extensions {
		keywordParts := strings.Split(ext.Keyword, ":")
		if len(keywordParts) != 2 {
			continue
		}
		pfx, name := strings.TrimSpace(keywordParts[0]), strings.TrimSpace(keywordParts[1])
		if name != "openconfig-version" {
			continue
		}
		extMod := yang.FindModuleByPrefix(m, pfx)
		switch {
		case extMod == nil:
			fmt.Fprintf(os.Stderr, "yangcore: unable to find module using prefix %q referenced by %q\n", pfx, m.Name)
		case extMod.Name == "openconfig-extensions":
			fmt.Fprintf(w, "%s.yang: openconfig-version:%q\n", m.Name, ext.Argument)
		}
	}
}
