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

	"github.com/consensys/go-conjecture/pkg/conjecture"
	"github.com/consensys/go-conjecture/pkg/dataset"
	"github.com/consensys/go-conjecture/pkg/invariant"
	"github.com/consensys/go-conjecture/pkg/operator"
	"github.com/consensys/go-conjecture/pkg/util/termio"
)

// summary records how a conjecture fares over the objects of a dataset.
type summary struct {
	// Number of objects on which the conjecture holds.
	holds uint
	// Number of objects on which the bound is attained (numeric only).
	sharp uint
	// Number of objects on which the conjecture could not be evaluated.
	failed uint
	// Total number of objects.
	total uint
}

func (s summary) String() string {
	return fmt.Sprintf("%d/%d", s.holds, s.total)
}

func summarise(c *conjecture.Conjecture[*dataset.Object], main invariant.Invariant[*dataset.Object],
	objects []*dataset.Object) summary {
	s := summary{total: uint(len(objects))}
	//
	for _, o := range objects {
		holds, err := c.Holds(o)
		//
		if err != nil {
			s.failed++
			continue
		} else if holds {
			s.holds++
		}
		//
		if bound, err := c.BoundValue(o); err == nil {
			if v, err := main.Compute(o); err == nil && operator.Round6(v) == bound {
				s.sharp++
			}
		}
	}
	//
	return s
}

func summariseProperty(c *conjecture.PropertyConjecture[*dataset.Object], objects []*dataset.Object) summary {
	s := summary{total: uint(len(objects))}
	//
	for _, o := range objects {
		if holds, err := c.Evaluate(o); err != nil {
			s.failed++
		} else if holds {
			s.holds++
		}
	}
	//
	return s
}

// printInvariants prints a table of numeric conjectures.
func printInvariants(conjectures []*conjecture.Conjecture[*dataset.Object], main invariant.Invariant[*dataset.Object],
	objects []*dataset.Object) {
	table := newTable(5, uint(len(conjectures)+1))
	table.SetRow(0, "#", "holds", "sharp", "failed", "conjecture")
	table.AlignLeft(4)
	//
	for i, c := range conjectures {
		s := summarise(c, main, objects)
		row := uint(i + 1)
		table.SetRow(row, fmt.Sprint(row), s.String(), fmt.Sprint(s.sharp), fmt.Sprint(s.failed), c.String())
		highlight(table, row, s)
	}
	//
	printTable(table)
}

// printProperties prints a table of property conjectures.
func printProperties(conjectures []*conjecture.PropertyConjecture[*dataset.Object], objects []*dataset.Object) {
	table := newTable(4, uint(len(conjectures)+1))
	table.SetRow(0, "#", "holds", "failed", "conjecture")
	table.AlignLeft(3)
	//
	for i, c := range conjectures {
		s := summariseProperty(c, objects)
		row := uint(i + 1)
		table.SetRow(row, fmt.Sprint(row), s.String(), fmt.Sprint(s.failed), c.String())
		highlight(table, row, s)
	}
	//
	printTable(table)
}

// highlight the "holds" column of a row in red when a conjecture is refuted by
// some object.
func highlight(table *termio.TablePrinter, row uint, s summary) {
	if s.holds+s.failed < s.total {
		table.SetEscape(1, row, termio.BoldAnsiEscape().FgColour(termio.Red))
	} else if s.failed == 0 {
		table.SetEscape(1, row, termio.NewAnsiEscape().FgColour(termio.Green))
	}
}
