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

var propertiesCmd = &cobra.Command{
	Use:   "properties [flags] dataset main",
	Short: "search for conditions on a property.",
	Long: `Search for conjectured sufficient (or necessary) conditions for the main property,
	 in terms of the other properties of a dataset.`,
	Args: cobra.ExactArgs(2),
	Run: func(cmd *cobra.Command, args []string) {
		data := readDataset(args[0])
		refs := data.Properties()
		main := data.PropertyIndexOf(args[1])
		//
		if main < 0 {
			fmt.Printf("unknown property \"%s\"\n", args[1])
			os.Exit(2)
		}
		//
		base := searchOptions(cmd)
		//
		opts := search.PropertyOptions[*dataset.Object]{
			Options:   base,
			Necessary: getFlag(cmd, "necessary"),
		}
		//
		if theory := getString(cmd, "theory"); theory != "" {
			opts.Theory = rebuildProperties(readRecords(theory), refs)
		}
		//
		ctx, cancel := interruptible()
		defer cancel()
		//
		var (
			conjectures []*conjecture.PropertyConjecture[*dataset.Object]
			err         error
		)
		//
		withStore(func(db *store.Store) {
			if db != nil {
				opts.Cache = db.Cache(invariant.Properties)
			}
			//
			conjectures, err = search.Properties(ctx, data.Objects(), refs, uint(main), opts)
		})
		//
		log.Infof("found %d conjectures", len(conjectures))
		//
		printProperties(conjectures, data.Objects())
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

// rebuildProperties turns previously found conditions into properties which
// can be used as a theory.
func rebuildProperties(records []conjecture.Record,
	refs []invariant.Property[*dataset.Object]) []invariant.Property[*dataset.Object] {
	conjectures := rebuildPropertyConjectures(records, refs)
	theory := make([]invariant.Property[*dataset.Object], len(conjectures))
	//
	for i, c := range conjectures {
		theory[i] = c.AsProperty(fmt.Sprintf("theory_%d", i))
	}
	//
	return theory
}

func init() {
	rootCmd.AddCommand(propertiesCmd)
	addSearchFlags(propertiesCmd)
	propertiesCmd.Flags().Bool("necessary", false, "search for necessary (rather than sufficient) conditions")
}
