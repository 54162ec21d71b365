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
	"context"
	"errors"
	"fmt"
	"os"

	"github.com/consensys/go-conjecture/pkg/batch"
	"github.com/consensys/go-conjecture/pkg/dataset"
	"github.com/consensys/go-conjecture/pkg/invariant"
	"github.com/consensys/go-conjecture/pkg/store"
	"github.com/consensys/go-conjecture/pkg/util"
	log "github.com/sirupsen/logrus"
	"github.com/spf13/cobra"
)

var precomputeCmd = &cobra.Command{
	Use:   "precompute [flags] dataset",
	Short: "precompute every invariant and property of a dataset.",
	Long: `Compute every invariant and property of every object in a dataset, using
	 parallel workers, and save the results (including failures) in the store given by
	 "--cache".  Subsequent searches using the same store then look values up
	 rather than computing them.`,
	Args: cobra.ExactArgs(1),
	Run: func(cmd *cobra.Command, args []string) {
		data := readDataset(args[0])
		perf := util.NewPerfStats()
		//
		ctx, cancel := interruptible()
		defer cancel()
		//
		var (
			values *batch.Results[float64]
			truths *batch.Results[bool]
			err    error
		)
		//
		withStore(func(db *store.Store) {
			if db == nil {
				err = errors.New("no store given (use --cache)")
			} else {
				values, truths, err = precompute(ctx, data, db)
			}
		})
		//
		if err != nil {
			fmt.Println(err)
			os.Exit(1)
		}
		//
		perf.Log(log.WithField("objects", len(data.Keys())), "Precomputation")
		fmt.Printf("stored %d values (%d failures) and %d truths (%d failures)\n", values.Len(),
			values.Failures(), truths.Len(), truths.Failures())
	},
}

// precompute every invariant and then every property of a dataset, saving
// each into a store.
func precompute(ctx context.Context, data *dataset.Dataset, db *store.Store) (*batch.Results[float64],
	*batch.Results[bool], error) {
	var (
		opts = batch.Options{Workers: settings.Search.Workers, Metrics: stats, Log: log.WithField("command", "precompute")}
		keys = data.Keys()
	)
	//
	values, err := batch.Precompute(ctx, keys, data.Decode, invariant.NewTable(invariant.Invariants,
		data.Invariants()...), opts)
	if err == nil {
		err = store.Save(db, values)
	}
	//
	if err != nil {
		return nil, nil, err
	}
	//
	truths, err := batch.Precompute(ctx, keys, data.Decode, invariant.NewTable(invariant.Properties,
		data.Properties()...), opts)
	if err == nil {
		err = store.Save(db, truths)
	}
	//
	if err != nil {
		return nil, nil, err
	}
	//
	return values, truths, nil
}

func init() {
	rootCmd.AddCommand(precomputeCmd)
}
