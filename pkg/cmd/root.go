// Copyright Consensys Software Inc.
//
// Licensed under the Apache License, Version 2.0 (the "License"); you may not use this file except in compliance with
// the License. You may obtain a copy of the License at
//
// http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software distributed under the License is distributed on
// an "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied. See the License for the
// specific language governing permissions and limitations under the License.
//
// SPDX-License-Identifier: Apache-2.0
package cmd

import (
	"fmt"
	"os"
	"runtime/debug"

	log "github.com/sirupsen/logrus"
	"github.com/spf13/cobra"
)

// Version is set by the build (e.g. via -ldflags).
var Version string

// rootCmd represents the base command when called without any subcommands
var rootCmd = &cobra.Command{
	Use:   "conjecture",
	Short: "A driver for the expressions conjecturing program.",
	Long: `Search for conjectured bounds on an invariant (or conditions on a property) over
	 a dataset of objects, by running the expressions program.`,
	PersistentPreRun: func(cmd *cobra.Command, args []string) {
		if err := configure(cmd); err != nil {
			fmt.Println(err)
			os.Exit(2)
		}
	},
	PersistentPostRun: func(cmd *cobra.Command, args []string) {
		if err := writeMetrics(cmd); err != nil {
			log.Errorf("writing metrics: %s", err)
		}
	},
	Run: func(cmd *cobra.Command, args []string) {
		if getFlag(cmd, "version") {
			fmt.Print("conjecture ")
			if Version != "" {
				// Built via "make"
				fmt.Printf("%s", Version)
			} else if info, ok := debug.ReadBuildInfo(); ok {
				// Built via "go install"
				fmt.Printf("%s", info.Main.Version)
			} else {
				// Unknown, perhaps "go run"
				fmt.Printf("(unknown version)")
			}
			fmt.Println()
		} else {
			_ = cmd.Help()
		}
	},
}

// Execute adds all child commands to the root command and sets flags
// appropriately. This is called by main.main(). It only needs to happen once
// to the rootCmd.
func Execute() {
	err := rootCmd.Execute()
	if err != nil {
		os.Exit(1)
	}
}

func init() {
	rootCmd.Flags().Bool("version", false, "Report version of this executable")
	rootCmd.PersistentFlags().String("config", "", "read configuration from a YAML file")
	rootCmd.PersistentFlags().BoolP("verbose", "v", false, "increase logging verbosity")
	rootCmd.PersistentFlags().Bool("debug", false, "enable debug logging (including from the expressions program)")
	rootCmd.PersistentFlags().String("log-format", "", "log format (text or json)")
	rootCmd.PersistentFlags().String("metrics", "", "write metrics to a file (in text exposition format) on exit")
	rootCmd.PersistentFlags().String("engine", "", "path of the expressions program")
	rootCmd.PersistentFlags().String("cache", "", "directory of a store of precomputed values")
	rootCmd.PersistentFlags().Uint("workers", 0, "number of parallel workers (0 means one per CPU)")
}
