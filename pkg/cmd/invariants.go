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
	"github.com/consensys/go-conjecture/pkg/search"
	"github.com/consensys/go-conjecture/pkg/store"
	log "github.com/sirupsen/logrus"
	"github.com/spf13/cobra"
)

var invariantsCmd = &cobra.Command{
	Use:   "invariants [flags] dataset main",
	Short: "search for bounds on an invariant.",
	Long: `Search for conjectured upper (or lower) bounds on the main invariant, in terms of
	 the other invariants of a dataset.`,
	Args: cobra.ExactArgs(2),
	Run: func(cmd *cobra.Command, args []string) {
		data := readDataset(args[0])
		refs := data.Invariants()
		main := data.IndexOf(args[1])
		//
		if main < 0 {
			fmt.Printf("unknown invariant \"%s\"\n", args[1])
			os.Exit(2)
		}
		//
		base := searchOptions(cmd)
		//
		opts := search.InvariantOptions[*dataset.Object]{
			Options:  base,
			Lower:    getFlag(cmd, "lower"),
			Variable: settings.Search.Variable,
		}
		//
		if cmd.Flags().Changed("variable") {
			opts.Variable = getString(cmd, "variable")
		}
		//
		if theory := getString(cmd, "theory"); theory != "" {
			opts.Theory = rebuildInvariants(readRecords(theory), refs)
		}
		//
		ctx, cancel := interruptible()
		defer cancel()
		//
		var (
			conjectures []*conjecture.Conjecture[*dataset.Object]
			err         error
		)
		//
		withStore(func(db *store.Store) {
			if db != nil {
				opts.Cache = db.Cache(invariant.Invariants)
			}
			//
			conjectures, err = search.Invariants(ctx, data.Objects(), refs, uint(main), opts)
		})
		//
		log.Infof("found %d conjectures", len(conjectures))
		//
		printInvariants(conjectures, refs[main], data.Objects())
		//
		if output := getString(cmd, "output"); output != "" {
			records := make([]conjecture.Record, len(conjectures))
			for i, c := range conjectures {
				records[i] = c.Record()
			}
			//
			writeRecords(output, records)
		}
		//
		reportFailure(err)
	},
}

func rebuildInvariants(records []conjecture.Record,
	refs []invariant.Invariant[*dataset.Object]) []*conjecture.Conjecture[*dataset.Object] {
	var (
		table       = invariant.NewTable(invariant.Invariants, refs...)
		conjectures = make([]*conjecture.Conjecture[*dataset.Object], len(records))
	)
	//
	for i, record := range records {
		c, err := conjecture.Rebuild(record, table)
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
	rootCmd.AddCommand(invariantsCmd)
	addSearchFlags(invariantsCmd)
	invariantsCmd.Flags().Bool("lower", false, "search for lower bounds (rather than upper bounds)")
	invariantsCmd.Flags().String("variable", search.DefaultVariable, "name of the object in each conjecture")
}
