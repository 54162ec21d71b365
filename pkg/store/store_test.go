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
package store

import (
	"errors"
	"math"
	"testing"

	"github.com/consensys/go-conjecture/pkg/batch"
	"github.com/consensys/go-conjecture/pkg/invariant"
	"github.com/consensys/go-conjecture/pkg/value"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func openStore(t *testing.T) *Store {
	t.Helper()
	//
	s, err := Open(InMemoryConfig())
	require.NoError(t, err)
	t.Cleanup(func() { s.Close() })
	//
	return s
}

func Test_Store_01(t *testing.T) {
	s := openStore(t)
	results := batch.NewResults[float64](invariant.Invariants)
	require.NoError(t, results.Put("order", "K3", value.Valid(3.0)))
	require.NoError(t, results.Put("order", "K4", value.Valid(math.Inf(1))))
	require.NoError(t, results.Put("girth", "K3", value.Failed[float64](errors.New("acyclic"))))
	//
	require.NoError(t, Save(s, results))
	//
	count, err := s.Count()
	require.NoError(t, err)
	assert.Equal(t, 3, count)
	//
	v, ok := s.Lookup(invariant.Invariants, "K3", "order")
	require.True(t, ok)
	assert.Equal(t, 3.0, v)
	//
	v, ok = s.Lookup(invariant.Invariants, "K4", "order")
	require.True(t, ok)
	assert.Equal(t, math.Inf(1), v)
	//
	v, ok = s.Lookup(invariant.Invariants, "K3", "girth")
	require.True(t, ok)
	assert.Equal(t, &StoredError{"acyclic"}, v)
	//
	_, ok = s.Lookup(invariant.Invariants, "K4", "girth")
	assert.False(t, ok)
}

func Test_Store_02(t *testing.T) {
	s := openStore(t)
	require.NoError(t, Put(s, "K3", "regular", value.Valid(true)))
	require.NoError(t, Put(s, "P3", "regular", value.Valid(false)))
	// Used as a cache
	resolver := value.NewResolver[string, bool](invariant.Properties, s.Cache(invariant.Properties))
	regular := invariant.Func("regular", func(string) bool { panic("not cached") })
	//
	assert.True(t, resolver.Resolve(regular, "K3").Value)
	assert.False(t, resolver.Resolve(regular, "P3").Value)
	assert.False(t, resolver.Resolve(regular, "C4").Ok())
}

func Test_Store_03(t *testing.T) {
	s := openStore(t)
	require.NoError(t, Put(s, "K3", "order", value.Failed[float64](errors.New("boom"))))
	//
	resolver := value.NewResolver[string, float64](invariant.Invariants, s.Cache(invariant.Invariants))
	order := invariant.Func("order", func(string) float64 { return 3 })
	// The stored failure wins
	cell := resolver.Resolve(order, "K3")
	require.False(t, cell.Ok())
	assert.Contains(t, cell.Err.Error(), "boom")
}

func Test_Store_04(t *testing.T) {
	// Keys do not collide across the separator
	s := openStore(t)
	require.NoError(t, Put(s, "a", "bc", value.Valid(1.0)))
	require.NoError(t, Put(s, "ab", "c", value.Valid(2.0)))
	//
	v, _ := s.Lookup(invariant.Invariants, "a", "bc")
	assert.Equal(t, 1.0, v)
	v, _ = s.Lookup(invariant.Invariants, "ab", "c")
	assert.Equal(t, 2.0, v)
}

func Test_Store_05(t *testing.T) {
	dir := t.TempDir()
	//
	s, err := Open(DefaultConfig(dir))
	require.NoError(t, err)
	require.NoError(t, Put(s, "K3", "order", value.Valid(3.0)))
	require.NoError(t, s.Close())
	// Reopen
	s, err = Open(DefaultConfig(dir))
	require.NoError(t, err)
	//
	defer s.Close()
	//
	v, ok := s.Lookup(invariant.Invariants, "K3", "order")
	require.True(t, ok)
	assert.Equal(t, 3.0, v)
}

func Test_Store_06(t *testing.T) {
	_, err := Open(Config{})
	assert.Error(t, err)
	//
	_, err = decode([]byte{tagFloat, 1, 2})
	assert.True(t, errors.Is(err, ErrCorrupt))
	//
	_, err = decode(nil)
	assert.True(t, errors.Is(err, ErrCorrupt))
}

func Test_Store_07(t *testing.T) {
	// An invariant and a property sharing a name are kept apart
	s := openStore(t)
	values := batch.NewResults[float64](invariant.Invariants)
	truths := batch.NewResults[bool](invariant.Properties)
	require.NoError(t, values.Put("planar", "K5", value.Valid(7.0)))
	require.NoError(t, truths.Put("planar", "K5", value.Valid(false)))
	//
	require.NoError(t, Save(s, values))
	require.NoError(t, Save(s, truths))
	//
	count, err := s.Count()
	require.NoError(t, err)
	assert.Equal(t, 2, count)
	//
	v, ok := s.Cache(invariant.Invariants).Lookup("K5", "planar")
	require.True(t, ok)
	assert.Equal(t, 7.0, v)
	//
	v, ok = s.Cache(invariant.Properties).Lookup("K5", "planar")
	require.True(t, ok)
	assert.Equal(t, false, v)
	//
	resolver := value.NewResolver[string, float64](invariant.Invariants, s.Cache(invariant.Invariants))
	planar := invariant.Func("planar", func(string) float64 { panic("not cached") })
	assert.Equal(t, 7.0, resolver.Resolve(planar, "K5").Value)
}

func Test_Store_08(t *testing.T) {
	s := openStore(t)
	assert.Error(t, Put(s, "K3", "name", value.Valid("K3")))
	//
	kind, err := kindOf[bool]()
	require.NoError(t, err)
	assert.Equal(t, invariant.Properties, kind)
}
