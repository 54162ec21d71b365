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

	"github.com/consensys/go-conjecture/pkg/conjecture"
	"github.com/consensys/go-conjecture/pkg/dataset"
	"github.com/consensys/go-conjecture/pkg/invariant"
	"github.com/spf13/cobra"
)

var replayCmd = &cobra.Command{
	Use:   "replay [flags] dataset records",
	Short: "evaluate previously found conjectures over a dataset.",
	Long: `Rebuild conjectures from a file of records (see "--output") and evaluate each over
	 the objects of a dataset, without running the expressions program.  The main
	 invariant determines whether numeric bounds are sharp.`,
	Args: cobra.ExactArgs(2),
	Run: func(cmd *cobra.Command, args []string) {
		data := readDataset(args[0])
		records := readRecords(args[1])
		invariants, properties := partition(records)
		//
		if len(invariants) > 0 {
			refs := data.Invariants()
			name := getString(cmd, "main")
			main := data.IndexOf(name)
			//
			if main < 0 {
				fmt.Printf("unknown invariant \"%s\" (use --main)\n", name)
				os.Exit(2)
			}
			//
			printInvariants(rebuildInvariants(invariants, refs), refs[main], data.Objects())
		}
		//
		if len(properties) > 0 {
			printProperties(rebuildPropertyConjectures(properties, data.Properties()), data.Objects())
		}
	},
}

// partition records by kind.
func partition(records []conjecture.Record) ([]conjecture.Record, []conjecture.Record) {
	var invariants, properties []conjecture.Record
	//
	for _, r := range records {
		if r.Kind == invariant.Properties.String() {
			properties = append(properties, r)
		} else {
			invariants = append(invariants, r)
		}
	}
	//
	return invariants, properties
}

func rebuildPropertyConjectures(records []conjecture.Record,
	refs []invariant.Property[*dataset.Object]) []*conjecture.PropertyConjecture[*dataset.Object] {
	var (
		table       = invariant.NewTable(invariant.Properties, refs...)
		conjectures = make([]*conjecture.PropertyConjecture[*dataset.Object], len(records))
	)
	//
	for i, record := range records {
		c, err := conjecture.RebuildProperty(record, table)
		if err != nil {
			fmt.Printf("record %d: %s\n", i, err)
			os.Exit(2)
		}
		//
		conjectures[i] = c
	}
	//
	return conjectures
}

func init() {
	rootCmd.AddCommand(replayCmd)
	replayCmd.Flags().String("main", "", "main invariant of the numeric conjectures")
}
