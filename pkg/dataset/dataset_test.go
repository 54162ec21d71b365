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
package dataset

import (
	"errors"
	"math"
	"os"
	"path/filepath"
	"testing"

	"github.com/consensys/go-conjecture/pkg/operator"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const graphs = `
invariants: [order, size, girth]
properties: [regular, bipartite]
derived:
  - name: density
    tokens: "size order order -1 * /2 /"
objects:
  - name: K3
    values: {order: 3, size: 3, girth: 3}
    properties: {regular: true, bipartite: false}
  - name: P4
    values: {order: 4, size: 3, girth: .inf}
    properties: {regular: false, bipartite: true}
  - name: K1
    values: {order: 1, size: 0}
    properties: {regular: true}
`

func Test_Dataset_01(t *testing.T) {
	d, err := Parse([]byte(graphs))
	require.NoError(t, err)
	//
	assert.Equal(t, []string{"K3", "P4", "K1"}, d.Keys())
	assert.Len(t, d.Objects(), 3)
	//
	refs := d.Invariants()
	require.Len(t, refs, 4)
	assert.Equal(t, "density", refs[3].Name())
	//
	k3, err := d.Decode("K3")
	require.NoError(t, err)
	//
	density, err := refs[3].Compute(k3)
	require.NoError(t, err)
	assert.Equal(t, 1.0, density)
	//
	p4, _ := d.Decode("P4")
	girth, err := refs[2].Compute(p4)
	require.NoError(t, err)
	assert.Equal(t, math.Inf(1), girth)
}

func Test_Dataset_02(t *testing.T) {
	d, err := Parse([]byte(graphs))
	require.NoError(t, err)
	//
	k1, _ := d.Decode("K1")
	// Missing values fail just that cell
	_, err = d.Invariants()[2].Compute(k1)
	assert.True(t, errors.Is(err, ErrMissingValue))
	//
	_, err = d.Properties()[1].Compute(k1)
	assert.True(t, errors.Is(err, ErrMissingValue))
	//
	regular, err := d.Properties()[0].Compute(k1)
	require.NoError(t, err)
	assert.True(t, regular)
	// Derived invariant divides by zero
	density, err := d.Invariants()[3].Compute(k1)
	require.NoError(t, err)
	assert.True(t, math.IsNaN(density))
}

func Test_Dataset_03(t *testing.T) {
	d, err := Parse([]byte(graphs))
	require.NoError(t, err)
	//
	_, err = d.Decode("C5")
	assert.True(t, errors.Is(err, ErrUnknownObject))
	assert.Equal(t, 3, d.IndexOf("density"))
	assert.Equal(t, -1, d.IndexOf("diameter"))
	assert.Equal(t, 1, d.PropertyIndexOf("bipartite"))
	assert.Equal(t, "P4", Key(d.Objects()[1]))
}

func Test_Dataset_04(t *testing.T) {
	// JSON is read too
	d, err := Parse([]byte(`{"invariants": ["a", "b"], "objects": [{"name": "x", "values": {"a": 1, "b": 2}}]}`))
	require.NoError(t, err)
	assert.Len(t, d.Invariants(), 2)
	assert.Empty(t, d.Properties())
}

func Test_Dataset_05(t *testing.T) {
	src := graphs + `
derived_properties:
  - name: tree-like
    formula: "bipartite & ~regular"
  - name: either
    formula: "regular | bipartite"
`
	d, err := Parse([]byte(src))
	require.NoError(t, err)
	//
	refs := d.Properties()
	require.Len(t, refs, 4)
	assert.Equal(t, "tree-like", refs[2].Name())
	assert.Equal(t, 3, d.PropertyIndexOf("either"))
	//
	p4, _ := d.Decode("P4")
	treeLike, err := refs[2].Compute(p4)
	require.NoError(t, err)
	assert.True(t, treeLike)
	//
	k3, _ := d.Decode("K3")
	treeLike, err = refs[2].Compute(k3)
	require.NoError(t, err)
	assert.False(t, treeLike)
	// K1 is missing bipartite
	k1, _ := d.Decode("K1")
	_, err = refs[3].Compute(k1)
	assert.True(t, errors.Is(err, ErrMissingValue))
}

func Test_Dataset_Invalid_01(t *testing.T) {
	_, err := Parse([]byte("objects: [{name: a}, {name: a}]"))
	assert.Error(t, err)
	//
	_, err = Parse([]byte("objects: [{values: {a: 1}}]"))
	assert.Error(t, err)
	//
	_, err = Parse([]byte("invariants: [a]\nderived: [{name: d, tokens: \"a b +\"}]"))
	assert.True(t, errors.Is(err, operator.ErrUnknownOperator))
	//
	_, err = Parse([]byte("properties: [p]\nderived_properties: [{name: d, formula: \"p & q\"}]"))
	assert.Error(t, err)
	//
	_, err = Parse([]byte("invariants: [a"))
	assert.Error(t, err)
}

func Test_Load_01(t *testing.T) {
	path := filepath.Join(t.TempDir(), "graphs.yaml")
	require.NoError(t, os.WriteFile(path, []byte(graphs), 0600))
	//
	d, err := Load(path)
	require.NoError(t, err)
	assert.Len(t, d.Objects(), 3)
	//
	_, err = Load(filepath.Join(t.TempDir(), "missing.yaml"))
	assert.Error(t, err)
}
