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
	"sort"

	"github.com/golang/glog"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

// newFeaturesCmd compiles the named modules, applies the feature toggles
// named by --enable/--disable (or the "enable"/"disable" keys of a
// --config_file, via viper), and prints the resulting enabled/disabled
// state of every feature the modules declare.
func newFeaturesCmd() *cobra.Command {
	var enable, disable []string
	cmd := &cobra.Command{
		Use:   "features [MODULE|FILE] ...",
		Short: "toggle and inspect if-feature gated features",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			res, names, err := loadArgs(args)
			if err != nil {
				return err
			}

			toEnable := append(append([]string{}, enable...), viper.GetStringSlice("enable")...)
			toDisable := append(append([]string{}, disable...), viper.GetStringSlice("disable")...)

			for _, n := range names {
				cm := res.Modules[n]
				for _, f := range toEnable {
					if _, ok := cm.Features[f]; !ok {
						continue
					}
					glog.V(1).Infof("%s: enabling feature %s", n, f)
					if err := res.Context.ChangeFeature(cm, f, true); err != nil {
						return fmt.Errorf("yangcore: enabling %s in %s: %w", f, n, err)
					}
				}
				for _, f := range toDisable {
					if _, ok := cm.Features[f]; !ok {
						continue
					}
					glog.V(1).Infof("%s: disabling feature %s", n, f)
					if err := res.Context.ChangeFeature(cm, f, false); err != nil {
						return fmt.Errorf("yangcore: disabling %s in %s: %w", f, n, err)
					}
				}
			}

			for _, n := range names {
				cm := res.Modules[n]
				var fnames []string
				for fn := range cm.Features {
					fnames = append(fnames, fn)
				}
				sort.Strings(fnames)
				for _, fn := range fnames {
					state := "disabled"
					if cm.Features[fn].Enabled {
						state = "enabled"
					}
					fmt.Fprintf(os.Stdout, "%s:%s\t%s\n", n, fn, state)
				}
			}

			for _, d := range res.Context.Diagnostics() {
				fmt.Fprintln(os.Stderr, d.Error())
			}
			return nil
		},
	}
	cmd.Flags().StringSliceVar(&enable, "enable", nil, "comma separated list of features to enable")
	cmd.Flags().StringSliceVar(&disable, "disable", nil, "comma separated list of features to disable")
	return cmd
}
