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
package search

import (
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/consensys/go-conjecture/pkg/conjecture"
	"github.com/consensys/go-conjecture/pkg/invariant"
	"github.com/consensys/go-conjecture/pkg/metrics"
	"github.com/consensys/go-conjecture/pkg/operator"
	"github.com/consensys/go-conjecture/pkg/protocol"
	"github.com/consensys/go-conjecture/pkg/protocol/protocoltest"
	"github.com/consensys/go-conjecture/pkg/value"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func invariants() []invariant.Invariant[float64] {
	return []invariant.Invariant[float64]{
		invariant.Func("a", func(x float64) float64 { return x }),
		invariant.Func("b", func(x float64) float64 { return x + 1 }),
	}
}

func Test_Invariants_01(t *testing.T) {
	engine := &protocoltest.Engine{Stdout: "a\nb\n<=\n\n"}
	opts := InvariantOptions[float64]{Options: Options[float64]{Engine: engine}}
	//
	cs, err := Invariants(context.Background(), []float64{1}, invariants(), 0, opts)
	require.NoError(t, err)
	require.Len(t, cs, 1)
	//
	holds, err := cs[0].Holds(1)
	require.NoError(t, err)
	assert.True(t, holds)
	//
	bound, err := cs[0].BoundValue(1)
	require.NoError(t, err)
	assert.Equal(t, 2.0, bound)
	assert.Equal(t, "a(x) <= b(x)", cs[0].String())
	//
	call := engine.Last()
	assert.Equal(t, "1 2 1\na\nb\n1.0\n2.0\n", call.Stdin)
	assert.Equal(t, "-c --dalmatian --all-operators --time 5 --invariant-names --output stack --leq --allowed-skips 0",
		strings.Join(call.Args, " "))
}

func Test_Invariants_02(t *testing.T) {
	// An invariant which fails on one object never aborts the search
	refs := append(invariants(), invariant.New("c", func(x float64) (float64, error) {
		if x == 2 {
			return 0, errors.New("undefined")
		}
		//
		return 2 * x, nil
	}))
	engine := &protocoltest.Engine{Stdout: "a\nc\n/2\n>=\n\n"}
	opts := InvariantOptions[float64]{Options: Options[float64]{Engine: engine}, Lower: true}
	//
	cs, err := Invariants(context.Background(), []float64{1, 2}, refs, 0, opts)
	require.NoError(t, err)
	require.Len(t, cs, 1)
	assert.Equal(t, "a(x) >= c(x)/2", cs[0].String())
	assert.Equal(t, "2 3 1\na\nb\nc\n1.0\n2.0\n2.0\n2.0\n3.0\nNaN\n", engine.Last().Stdin)
	assert.Contains(t, engine.Last().Args, "--geq")
}

func Test_Invariants_03(t *testing.T) {
	// Malformed blocks are discarded
	m := metrics.New()
	engine := &protocoltest.Engine{Stdout: "a\nd\n<=\n\na\n<=\n\nb\na\n-1\n>=\n"}
	opts := InvariantOptions[float64]{Options: Options[float64]{Engine: engine, Metrics: m}}
	//
	cs, err := Invariants(context.Background(), []float64{1}, invariants(), 1, opts)
	require.NoError(t, err)
	require.Len(t, cs, 1)
	assert.Equal(t, "b(x) >= a(x) - 1", cs[0].String())
	assert.Equal(t, 2.0, counter(t, m, "conjecture_blocks_discarded_total"))
	assert.Equal(t, 1.0, counter(t, m, "conjecture_conjectures_total"))
	assert.True(t, strings.HasPrefix(engine.Last().Stdin, "1 2 2\n"))
}

func Test_Invariants_04(t *testing.T) {
	engine := &protocoltest.Engine{Stdout: "a\nb\n<=\n\n"}
	opts := InvariantOptions[float64]{Options: Options[float64]{Engine: engine}}
	// Too few invariants, or no objects
	cs, err := Invariants(context.Background(), []float64{1}, invariants()[:1], 0, opts)
	assert.NoError(t, err)
	assert.Empty(t, cs)
	//
	cs, err = Invariants(context.Background(), nil, invariants(), 0, opts)
	assert.NoError(t, err)
	assert.Empty(t, cs)
	assert.Empty(t, engine.Calls())
	// Main out of range
	_, err = Invariants(context.Background(), []float64{1}, invariants(), 2, opts)
	assert.True(t, errors.Is(err, ErrMainIndex))
}

func Test_Invariants_05(t *testing.T) {
	engine := &protocoltest.Engine{}
	opts := InvariantOptions[float64]{Options: Options[float64]{Engine: engine, Operators: []string{"+1", "max"}}}
	//
	_, err := Invariants(context.Background(), []float64{1}, invariants(), 0, opts)
	require.NoError(t, err)
	assert.Equal(t, "2\nU 1\nC 2\n1 2 1\na\nb\n1.0\n2.0\n", engine.Last().Stdin)
	assert.NotContains(t, engine.Last().Args, "--all-operators")
	// Comparators cannot be negotiated
	opts.Operators = []string{"<="}
	_, err = Invariants(context.Background(), []float64{1}, invariants(), 0, opts)
	assert.True(t, errors.Is(err, operator.ErrUnknownOperator))
}

func Test_Invariants_06(t *testing.T) {
	refs := invariants()
	table := invariant.NewTable(invariant.Invariants, refs...)
	t1, _ := conjecture.Build(strings.Fields("a b <="), "x", table)
	t2, _ := conjecture.Build(strings.Fields("a b -1 <="), "x", table)
	engine := &protocoltest.Engine{}
	opts := InvariantOptions[float64]{Options: Options[float64]{Engine: engine},
		Theory: []*conjecture.Conjecture[float64]{t1, t2}}
	// Upper bounds use the least bound value
	_, err := Invariants(context.Background(), []float64{1, 5}, refs, 0, opts)
	require.NoError(t, err)
	assert.Equal(t, "2 2 1\na\nb\n1.0\n5.0\n1.0\n2.0\n5.0\n6.0\n", engine.Last().Stdin)
	assert.Equal(t, "-ct", engine.Last().Args[0])
	// Lower bounds use the greatest
	opts.Lower = true
	_, err = Invariants(context.Background(), []float64{1, 5}, refs, 0, opts)
	require.NoError(t, err)
	assert.Equal(t, "2 2 1\na\nb\n2.0\n6.0\n1.0\n2.0\n5.0\n6.0\n", engine.Last().Stdin)
}

func Test_Invariants_07(t *testing.T) {
	refs := invariants()
	table := invariant.NewTable(invariant.Invariants, refs...)
	sum, _ := conjecture.Build(strings.Fields("a b +"), "x", table)
	opts := InvariantOptions[float64]{Options: Options[float64]{Engine: &protocoltest.Engine{}},
		Theory: []*conjecture.Conjecture[float64]{sum}}
	//
	_, err := Invariants(context.Background(), []float64{1}, refs, 0, opts)
	assert.True(t, errors.Is(err, conjecture.ErrNotABound))
}

func Test_Invariants_08(t *testing.T) {
	// Cached values win
	engine := &protocoltest.Engine{}
	cache := value.MapCache{"1": {"a": 10, "b": "1/4"}}
	opts := InvariantOptions[float64]{Options: Options[float64]{Engine: engine, Cache: cache}}
	//
	_, err := Invariants(context.Background(), []float64{1, 2}, invariants(), 0, opts)
	require.NoError(t, err)
	assert.Equal(t, "2 2 1\na\nb\n10.0\n0.25\n2.0\n3.0\n", engine.Last().Stdin)
}

func Test_Invariants_09(t *testing.T) {
	// Conjectures emitted before a failure are still returned
	engine := &protocoltest.Engine{Stdout: "a\nb\n<\n\n", Stderr: "segfault\n", ExitCode: 139}
	opts := InvariantOptions[float64]{Options: Options[float64]{Engine: engine, Verbose: true, Debug: true},
		Variable: "G"}
	//
	cs, err := Invariants(context.Background(), []float64{1}, invariants(), 0, opts)
	//
	var failure *protocol.ProcessFailure
	//
	require.True(t, errors.As(err, &failure))
	require.Len(t, cs, 1)
	assert.Equal(t, "a(G) < b(G)", cs[0].String())
	assert.Equal(t, "-cv", engine.Last().Args[0])
}

func Test_Invariants_10(t *testing.T) {
	opts := InvariantOptions[float64]{Options: Options[float64]{Engine: &protocoltest.Engine{Hang: true}}}
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	//
	_, err := Invariants(ctx, []float64{1}, invariants(), 0, opts)
	assert.True(t, errors.Is(err, context.Canceled))
}

func properties() []invariant.Property[int] {
	return []invariant.Property[int]{
		invariant.Func("p", func(n int) bool { return n%2 == 0 }),
		invariant.Func("q", func(n int) bool { return n%4 == 0 }),
		invariant.New("r", func(n int) (bool, error) {
			if n == 3 {
				return false, errors.New("undefined")
			}
			//
			return n > 2, nil
		}),
	}
}

func Test_Properties_01(t *testing.T) {
	engine := &protocoltest.Engine{Stdout: "p\nq\n<-\n\n"}
	opts := PropertyOptions[int]{Options: Options[int]{Engine: engine}}
	//
	cs, err := Properties(context.Background(), []int{2, 3, 4}, properties(), 0, opts)
	require.NoError(t, err)
	require.Len(t, cs, 1)
	assert.Equal(t, "(q)->(p)", cs[0].String())
	assert.Equal(t, "3 3 1\np\nq\nr\n1\n0\n0\n0\n0\n-1\n1\n1\n1\n", engine.Last().Stdin)
	assert.Contains(t, engine.Last().Args, "--sufficient")
	//
	holds, err := cs[0].Evaluate(8)
	require.NoError(t, err)
	assert.True(t, holds)
}

func Test_Properties_02(t *testing.T) {
	engine := &protocoltest.Engine{}
	theory := []invariant.Property[int]{properties()[1], properties()[2]}
	opts := PropertyOptions[int]{Options: Options[int]{Engine: engine}, Theory: theory}
	// Sufficient: does any condition hold?
	_, err := Properties(context.Background(), []int{1, 3, 4, 5}, properties(), 0, opts)
	require.NoError(t, err)
	assert.True(t, strings.HasPrefix(engine.Last().Stdin, "4 3 1\np\nq\nr\n0\n-1\n1\n1\n"))
	assert.Equal(t, "-pct", engine.Last().Args[0])
	// Necessary: does every condition hold?
	opts.Necessary = true
	_, err = Properties(context.Background(), []int{1, 3, 4, 5}, properties(), 0, opts)
	require.NoError(t, err)
	assert.True(t, strings.HasPrefix(engine.Last().Stdin, "4 3 1\np\nq\nr\n0\n-1\n1\n0\n"))
	assert.Contains(t, engine.Last().Args, "--necessary")
}

func Test_Properties_03(t *testing.T) {
	engine := &protocoltest.Engine{Stdout: "p\nx\n&\n\np\nq\n->\n\n"}
	opts := PropertyOptions[int]{Options: Options[int]{Engine: engine, Operators: []string{"&", "->"}}}
	//
	cs, err := Properties(context.Background(), []int{4}, properties(), 1, opts)
	require.NoError(t, err)
	require.Len(t, cs, 1)
	assert.Equal(t, "(p)->(q)", cs[0].String())
	assert.True(t, strings.HasPrefix(engine.Last().Stdin, "2\nC 0\nN 0\n1 3 2\n"))
	// Reverse implication cannot be negotiated
	opts.Operators = []string{"<-"}
	_, err = Properties(context.Background(), []int{4}, properties(), 1, opts)
	assert.True(t, errors.Is(err, operator.ErrUnknownOperator))
}

func Test_Properties_04(t *testing.T) {
	opts := PropertyOptions[int]{Options: Options[int]{Engine: &protocoltest.Engine{}}}
	//
	cs, err := Properties(context.Background(), []int{4}, properties()[:1], 0, opts)
	assert.NoError(t, err)
	assert.Empty(t, cs)
	//
	_, err = Properties(context.Background(), []int{4}, properties(), 3, opts)
	assert.True(t, errors.Is(err, ErrMainIndex))
}

// Read the total of a counter family from the registry.
func counter(t *testing.T, m *metrics.Metrics, name string) float64 {
	t.Helper()
	//
	families, err := m.Registry().Gather()
	require.NoError(t, err)
	//
	var total float64
	//
	for _, family := range families {
		if family.GetName() == name {
			for _, metric := range family.GetMetric() {
				total += metric.GetCounter().GetValue()
			}
		}
	}
	//
	return total
}
