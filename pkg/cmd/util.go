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
	"fmt"
	"os"
	"os/signal"

	"github.com/consensys/go-conjecture/pkg/config"
	"github.com/consensys/go-conjecture/pkg/conjecture"
	"github.com/consensys/go-conjecture/pkg/dataset"
	"github.com/consensys/go-conjecture/pkg/metrics"
	"github.com/consensys/go-conjecture/pkg/protocol"
	"github.com/consensys/go-conjecture/pkg/search"
	"github.com/consensys/go-conjecture/pkg/store"
	"github.com/consensys/go-conjecture/pkg/util/termio"
	log "github.com/sirupsen/logrus"
	"github.com/spf13/cobra"
)

// settings holds the configuration in effect, after command-line overrides.
var settings = config.Default()

// stats collects metrics when "--metrics" is given, and is otherwise nil.
var stats *metrics.Metrics

func getFlag(cmd *cobra.Command, flag string) bool {
	r, err := cmd.Flags().GetBool(flag)
	if err != nil {
		fmt.Println(err)
		os.Exit(2)
	}

	return r
}

func getUint(cmd *cobra.Command, flag string) uint {
	r, err := cmd.Flags().GetUint(flag)
	if err != nil {
		fmt.Println(err)
		os.Exit(2)
	}

	return r
}

func getString(cmd *cobra.Command, flag string) string {
	r, err := cmd.Flags().GetString(flag)
	if err != nil {
		fmt.Println(err)
		os.Exit(2)
	}

	return r
}

func getStringArray(cmd *cobra.Command, flag string) []string {
	r, err := cmd.Flags().GetStringSlice(flag)
	if err != nil {
		fmt.Println(err)
		os.Exit(2)
	}

	return r
}

// configure loads the configuration file (if any), applies command-line
// overrides and then sets up logging.
func configure(cmd *cobra.Command) error {
	cfg, err := config.LoadOrDefault(getString(cmd, "config"))
	if err != nil {
		return err
	}
	//
	if cmd.Flags().Changed("engine") {
		cfg.Engine.Path = getString(cmd, "engine")
	}
	//
	if cmd.Flags().Changed("cache") {
		cfg.Cache.Path = getString(cmd, "cache")
	}
	//
	if cmd.Flags().Changed("workers") {
		cfg.Search.Workers = getUint(cmd, "workers")
	}
	//
	if format := getString(cmd, "log-format"); format != "" {
		cfg.Log.Format = format
	}
	//
	if getFlag(cmd, "debug") {
		cfg.Log.Level = "debug"
	} else if getFlag(cmd, "verbose") {
		cfg.Log.Level = "info"
	}
	//
	if err := cfg.Validate(); err != nil {
		return err
	} else if err := cfg.Log.Apply(log.StandardLogger()); err != nil {
		return err
	}
	//
	if getString(cmd, "metrics") != "" {
		stats = metrics.New()
	}
	//
	settings = cfg
	//
	return nil
}

func writeMetrics(cmd *cobra.Command) error {
	if path := getString(cmd, "metrics"); path != "" {
		return stats.WriteTextfile(path)
	}
	//
	return nil
}

// interruptible returns a context which is cancelled on an interrupt, which
// also kills any running expressions program.
func interruptible() (context.Context, context.CancelFunc) {
	return signal.NotifyContext(context.Background(), os.Interrupt)
}

func readDataset(filename string) *dataset.Dataset {
	data, err := dataset.Load(filename)
	if err != nil {
		fmt.Println(err)
		os.Exit(2)
	}
	//
	return data
}

func readRecords(filename string) []conjecture.Record {
	file, err := os.Open(filename)
	if err != nil {
		fmt.Println(err)
		os.Exit(2)
	}
	//
	defer file.Close()
	//
	records, err := conjecture.ReadRecords(file)
	if err != nil {
		fmt.Printf("%s: %s\n", filename, err)
		os.Exit(2)
	}
	//
	return records
}

func writeRecords(filename string, records []conjecture.Record) {
	file, err := os.Create(filename)
	if err == nil {
		err = conjecture.WriteRecords(file, records)
		//
		if cerr := file.Close(); err == nil {
			err = cerr
		}
	}
	//
	if err != nil {
		fmt.Println(err)
		os.Exit(2)
	}
}

// openStore opens the configured store of precomputed values, or returns nil
// if none is configured.
func openStore() *store.Store {
	var cfg store.Config
	//
	switch {
	case settings.Cache.InMemory:
		cfg = store.InMemoryConfig()
	case settings.Cache.Path != "":
		cfg = store.DefaultConfig(settings.Cache.Path)
	default:
		return nil
	}
	//
	cfg.Logger = log.WithField("component", "store")
	//
	db, err := store.Open(cfg)
	if err != nil {
		fmt.Println(err)
		os.Exit(2)
	}
	//
	return db
}

// withStore opens the configured store of precomputed values (or nil if none
// is configured) for the duration of fn, closing it once fn returns.  Nothing
// inside fn may exit the process.
func withStore(fn func(db *store.Store)) {
	db := openStore()
	//
	defer closeStore(db)
	//
	fn(db)
}

// searchOptions constructs the options common to both kinds of search from
// the configuration and command line.
func searchOptions(cmd *cobra.Command) search.Options[*dataset.Object] {
	opts := search.Options[*dataset.Object]{
		TimeLimit: settings.Search.Time,
		ObjectKey: dataset.Key,
		Workers:   settings.Search.Workers,
		Engine:    &protocol.ExecEngine{Path: settings.Engine.Path, Dir: settings.Engine.Dir},
		Verbose:   getFlag(cmd, "verbose"),
		Debug:     getFlag(cmd, "debug"),
		Grace:     settings.Engine.Grace,
		Metrics:   stats,
		Log:       log.NewEntry(log.StandardLogger()),
	}
	//
	if cmd.Flags().Changed("time") {
		opts.TimeLimit = getUint(cmd, "time")
	}
	//
	if ops := getStringArray(cmd, "operators"); len(ops) > 0 {
		opts.Operators = ops
	}
	//
	return opts
}

func closeStore(db *store.Store) {
	if db != nil {
		if err := db.Close(); err != nil {
			log.Errorf("closing store: %s", err)
		}
	}
}

func newTable(width uint, height uint) *termio.TablePrinter {
	table := termio.NewTablePrinter(width, height)
	table.AnsiEscapes(termio.IsTerminal(os.Stdout))
	//
	return table
}

func printTable(table *termio.TablePrinter) {
	if width, ok := termio.Width(os.Stdout); ok {
		table.FitWidth(width)
	}
	//
	if err := table.Print(os.Stdout); err != nil {
		fmt.Println(err)
		os.Exit(1)
	}
}

// reportFailure prints the outcome of a search which failed, and exits.
// Conjectures emitted before a process failure are still worth showing, hence
// this is called after they are printed.
func reportFailure(err error) {
	if err != nil {
		fmt.Println(err)
		os.Exit(3)
	}
}

func addSearchFlags(cmd *cobra.Command) {
	cmd.Flags().Uint("time", search.DefaultTimeLimit, "time limit (in seconds) for the expressions program")
	cmd.Flags().StringSlice("operators", nil, "restrict the search to the given operators")
	cmd.Flags().String("theory", "", "read known conjectures from a file of records")
	cmd.Flags().StringP("output", "o", "", "write conjectures to a file of records")
}
