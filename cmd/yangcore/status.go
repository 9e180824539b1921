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

	"github.com/spf13/cobra"
)

// newStatusCmd reports how many typedefs and identities loaded across
// all given modules are current, deprecated, or obsolete.
func newStatusCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "status [MODULE|FILE] ...",
		Short: "summarize typedef and identity deprecation status across loaded modules",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			res, _, err := loadArgs(args)
			if err != nil {
				return err
			}
			current, deprecated, obsolete := res.Context.Modules().StatusSummary()
			fmt.Fprintf(os.Stdout, "current: %d\ndeprecated: %d\nobsolete: %d\n", current, deprecated, obsolete)
			return nil
		},
	}
}
