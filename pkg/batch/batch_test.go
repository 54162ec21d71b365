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
package batch

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"testing"

	"github.com/consensys/go-conjecture/pkg/invariant"
	"github.com/consensys/go-conjecture/pkg/value"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var errNegative = errors.New("negative")

func decodeInt(key string) (int, error) {
	return strconv.Atoi(key)
}

func table() *invariant.Table[int, float64] {
	return invariant.NewTable(invariant.Invariants,
		invariant.Func("double", func(n int) float64 { return float64(2 * n) }),
		invariant.New("root", func(n int) (float64, error) {
			if n < 0 {
				return 0, errNegative
			}
			//
			return float64(n) / 2, nil
		}),
	)
}

func keys(n int) []string {
	var keys []string
	//
	for i := -2; i < n-2; i++ {
		keys = append(keys, strconv.Itoa(i))
	}
	//
	return keys
}

func Test_Precompute_01(t *testing.T) {
	for _, workers := range []uint{0, 1, 2, 3, 7, 32} {
		checkPrecompute(t, keys(20), workers)
	}
}

func Test_Precompute_02(t *testing.T) {
	results, err := Precompute(context.Background(), []string{"1", "bad"}, decodeInt, table(), Options{Workers: 2})
	require.NoError(t, err)
	assert.Equal(t, 4, results.Len())
	assert.Equal(t, 2, results.Failures())
	//
	cell, ok := results.Get("double", "bad")
	require.True(t, ok)
	//
	var rerr *value.ResolutionError
	//
	require.True(t, errors.As(cell.Err, &rerr))
	assert.Equal(t, "bad", rerr.Object)
}

func Test_Precompute_03(t *testing.T) {
	_, err := Precompute(context.Background(), []string{"1", "2", "1"}, decodeInt, table(), Options{Workers: 2})
	assert.True(t, errors.Is(err, ErrOverlap))
}

func Test_Precompute_04(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	//
	_, err := Precompute(ctx, keys(5), decodeInt, table(), Options{})
	assert.True(t, errors.Is(err, context.Canceled))
}

func Test_Precompute_05(t *testing.T) {
	opts := Options{InvariantKey: func(name string) string { return "inv:" + name }}
	//
	results, err := Precompute(context.Background(), []string{"3"}, decodeInt, table(), opts)
	require.NoError(t, err)
	//
	cell, ok := results.Get("inv:double", "3")
	require.True(t, ok)
	assert.Equal(t, 6.0, cell.Value)
}

func Test_Results_01(t *testing.T) {
	results, err := Precompute(context.Background(), []string{"-1", "4"}, decodeInt, table(), Options{})
	require.NoError(t, err)
	// Use as a cache
	resolver := value.NewResolver[int, float64](invariant.Invariants, results.Cache())
	root, _ := table().Lookup("root")
	double, _ := table().Lookup("double")
	//
	assert.Equal(t, 2.0, resolver.Resolve(root, 4).Value)
	assert.Equal(t, -2.0, resolver.Resolve(double, -1).Value)
	// Cached failure, not recomputed
	assert.True(t, errors.Is(resolver.Resolve(root, -1).Err, errNegative))
	// Not cached, so computed directly
	assert.Equal(t, 10.0, resolver.Resolve(double, 5).Value)
}

func Test_Results_02(t *testing.T) {
	results := NewResults[bool](invariant.Properties)
	require.NoError(t, results.Put("p", "b", value.Valid(true)))
	require.NoError(t, results.Put("q", "a", value.Valid(false)))
	require.NoError(t, results.Put("p", "a", value.Failed[bool](errNegative)))
	assert.True(t, errors.Is(results.Put("p", "a", value.Valid(true)), ErrOverlap))
	//
	var visited []string
	//
	results.Each(func(inv, obj string, cell value.Cell[bool]) {
		visited = append(visited, fmt.Sprintf("%s/%s/%t", obj, inv, cell.Ok()))
	})
	//
	assert.Equal(t, []string{"a/p/false", "a/q/true", "b/p/true"}, visited)
	assert.Equal(t, 1, results.Failures())
	assert.Equal(t, invariant.Properties, results.Kind())
}

func checkPrecompute(t *testing.T, keys []string, workers uint) {
	t.Helper()
	//
	results, err := Precompute(context.Background(), keys, decodeInt, table(), Options{Workers: workers})
	require.NoError(t, err)
	assert.Equal(t, 2*len(keys), results.Len())
	// Only -2 and -1 fail
	assert.Equal(t, 2, results.Failures())
	//
	for _, key := range keys {
		n, _ := strconv.Atoi(key)
		double, ok := results.Get("double", key)
		require.True(t, ok)
		assert.Equal(t, float64(2*n), double.Value)
		//
		root, ok := results.Get("root", key)
		require.True(t, ok)
		assert.Equal(t, n >= 0, root.Ok())
	}
}
