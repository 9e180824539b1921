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

// Program yangcore parses and compiles YANG modules and prints them in one
// of a few output formats. Each output format is its own cobra subcommand
// with its own flags; flags can also be supplied via a config file or
// environment variables, both bound through viper.
package main

import (
	"fmt"
	"os"

	"github.com/golang/glog"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

var searchPaths []string

func newRootCmd() *cobra.Command {
	root := &cobra.Command{
		Use:   "yangcore",
		Short: "yangcore parses, compiles, and inspects YANG modules",
	}

	cfgFile := root.PersistentFlags().String("config_file", "", "path to a config file providing defaults for any flag")
	root.PersistentFlags().StringSliceVarP(&searchPaths, "path", "I", nil, "comma separated list of directories to search for imported/included modules; a trailing /... recurses")
	root.PersistentFlags().Bool("ignore_circular_deps", false, "ignore circular dependencies between submodules")

	root.PersistentPreRunE = func(cmd *cobra.Command, args []string) error {
		if *cfgFile != "" {
			viper.SetConfigFile(*cfgFile)
			if err := viper.ReadInConfig(); err != nil {
				return fmt.Errorf("yangcore: reading config: %w", err)
			}
		}
		viper.BindPFlags(cmd.Flags())
		viper.BindPFlags(root.PersistentFlags())
		viper.AutomaticEnv()
		return nil
	}

	root.AddCommand(newTreeCmd())
	root.AddCommand(newFeaturesCmd())
	root.AddCommand(newVersionsCmd())
	root.AddCommand(newStatusCmd())
	return root
}

func main() {
	defer glog.Flush()
	if err := newRootCmd().Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
