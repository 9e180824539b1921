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
	"sort"

	"github.com/golang/glog"
	"github.com/spf13/viper"

	"github.com/yangforge/yangcore/internal/loadutil"
	"github.com/yangforge/yangcore/pkg/yang"
)

// loadArgs loads and compiles every module named by args, using the
// --path flag (bound through viper so a config file can also supply it)
// as the search path, and returns the compiled entries sorted by name.
func loadArgs(args []string) (*loadutil.Result, []string, error) {
	opts := yang.Options{
		IgnoreSubmoduleCircularDependencies: viper.GetBool("ignore_circular_deps"),
	}

	paths := viper.GetStringSlice("path")
	glog.V(1).Infof("loading %d source(s) with search path %v", len(args), paths)

	res, err := loadutil.Load(args, paths, opts)
	if err != nil {
		return nil, nil, fmt.Errorf("yangcore: %w", err)
	}

	var names []string
	for n := range res.Entries {
		names = append(names, n)
	}
	sort.Strings(names)
	return res, names, nil
}
