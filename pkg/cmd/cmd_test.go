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
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/consensys/go-conjecture/pkg/config"
	"github.com/consensys/go-conjecture/pkg/conjecture"
	"github.com/consensys/go-conjecture/pkg/dataset"
	"github.com/consensys/go-conjecture/pkg/invariant"
	"github.com/consensys/go-conjecture/pkg/store"
	"github.com/consensys/go-conjecture/pkg/value"
	log "github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const sample = `
invariants: [a, b]
properties: [p, q]
objects:
  - name: one
    values: {a: 1, b: 2}
    properties: {p: true, q: true}
  - name: two
    values: {a: 2, b: 2}
    properties: {p: true, q: false}
  - name: three
    values: {a: 3, b: 1}
    properties: {p: false, q: false}
  - name: four
    values: {a: 1}
    properties: {p: true}
`

func Test_Summary_01(t *testing.T) {
	data := parseSample(t)
	refs := data.Invariants()
	table := invariant.NewTable(invariant.Invariants, refs...)
	//
	c, err := conjecture.Build(strings.Fields("a b <="), "x", table)
	require.NoError(t, err)
	//
	s := summarise(c, refs[0], data.Objects())
	assert.Equal(t, summary{holds: 2, sharp: 1, failed: 1, total: 4}, s)
	assert.Equal(t, "2/4", s.String())
}

func Test_Summary_02(t *testing.T) {
	data := parseSample(t)
	table := invariant.NewTable(invariant.Properties, data.Properties()...)
	//
	c, err := conjecture.BuildProperty(strings.Fields("p q ->"), table)
	require.NoError(t, err)
	//
	s := summariseProperty(c, data.Objects())
	assert.Equal(t, summary{holds: 2, failed: 1, total: 4}, s)
}

func Test_Partition_01(t *testing.T) {
	records := []conjecture.Record{
		{Kind: "invariant", Tokens: []string{"a", "b", "<="}},
		{Kind: "property", Tokens: []string{"p", "q", "->"}},
		{Kind: "invariant", Tokens: []string{"a", "b", ">="}},
	}
	//
	invariants, properties := partition(records)
	assert.Equal(t, []conjecture.Record{records[0], records[2]}, invariants)
	assert.Equal(t, []conjecture.Record{records[1]}, properties)
}

func Test_Rebuild_01(t *testing.T) {
	data := parseSample(t)
	refs := data.Invariants()
	table := invariant.NewTable(invariant.Invariants, refs...)
	//
	c, err := conjecture.Build(strings.Fields("a b <="), "x", table)
	require.NoError(t, err)
	//
	rebuilt := rebuildInvariants([]conjecture.Record{c.Record()}, refs)
	require.Len(t, rebuilt, 1)
	assert.True(t, c.Equals(rebuilt[0]))
	//
	ptable := invariant.NewTable(invariant.Properties, data.Properties()...)
	p, err := conjecture.BuildProperty(strings.Fields("p q ->"), ptable)
	require.NoError(t, err)
	//
	theory := rebuildProperties([]conjecture.Record{p.Record()}, data.Properties())
	require.Len(t, theory, 1)
	assert.Equal(t, "theory_0", theory[0].Name())
	//
	one, _ := data.Decode("one")
	holds, err := theory[0].Compute(one)
	require.NoError(t, err)
	assert.True(t, holds)
}

func Test_Configure_01(t *testing.T) {
	defer func() {
		settings = config.Default()
		log.SetLevel(log.WarnLevel)
	}()
	//
	path := filepath.Join(t.TempDir(), "conjecture.yaml")
	require.NoError(t, os.WriteFile(path, []byte("search:\n  workers: 3\nengine:\n  path: /opt/expressions\n"), 0600))
	//
	require.NoError(t, invariantsCmd.ParseFlags([]string{"--config", path, "--engine", "/usr/bin/expressions",
		"--verbose"}))
	require.NoError(t, configure(invariantsCmd))
	//
	assert.Equal(t, "/usr/bin/expressions", settings.Engine.Path)
	assert.Equal(t, uint(3), settings.Search.Workers)
	assert.Equal(t, "info", settings.Log.Level)
	assert.Equal(t, log.InfoLevel, log.GetLevel())
	assert.Nil(t, stats)
	//
	opts := searchOptions(invariantsCmd)
	assert.Nil(t, opts.Cache)
	assert.Equal(t, uint(3), opts.Workers)
	assert.Equal(t, uint(5), opts.TimeLimit)
}

func Test_Store_01(t *testing.T) {
	defer func() { settings = config.Default() }()
	// No store configured
	withStore(func(db *store.Store) { assert.Nil(t, db) })
	//
	dir := t.TempDir()
	settings.Cache.Path = dir
	//
	withStore(func(db *store.Store) {
		require.NotNil(t, db)
		require.NoError(t, store.Put(db, "one", "a", value.Valid(1.0)))
	})
	// Reopening only succeeds once the store has been closed
	db, err := store.Open(store.DefaultConfig(dir))
	require.NoError(t, err)
	//
	defer db.Close()
	//
	v, ok := db.Cache(invariant.Invariants).Lookup("one", "a")
	require.True(t, ok)
	assert.Equal(t, 1.0, v)
}

func Test_Precompute_01(t *testing.T) {
	data := parseSample(t)
	//
	db, err := store.Open(store.InMemoryConfig())
	require.NoError(t, err)
	//
	defer db.Close()
	//
	values, truths, err := precompute(context.Background(), data, db)
	require.NoError(t, err)
	assert.Equal(t, 8, values.Len())
	assert.Equal(t, 1, values.Failures())
	assert.Equal(t, 8, truths.Len())
	assert.Equal(t, 1, truths.Failures())
	//
	v, ok := db.Cache(invariant.Invariants).Lookup("three", "a")
	require.True(t, ok)
	assert.Equal(t, 3.0, v)
	//
	v, ok = db.Cache(invariant.Properties).Lookup("two", "q")
	require.True(t, ok)
	assert.Equal(t, false, v)
	//
	v, ok = db.Cache(invariant.Invariants).Lookup("four", "b")
	require.True(t, ok)
	assert.IsType(t, &store.StoredError{}, v)
}

func parseSample(t *testing.T) *dataset.Dataset {
	t.Helper()
	//
	data, err := dataset.Parse([]byte(sample))
	require.NoError(t, err)
	//
	return data
}
