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
package termio

import (
	"bufio"
	"fmt"
	"io"
	"strings"
)

// TablePrinter is useful for printing tables to the terminal.  Columns are
// right-aligned unless marked otherwise.
type TablePrinter struct {
	widths        []uint
	left          []bool
	rows          [][]string
	escapes       [][]string
	enableEscapes bool
}

// NewTablePrinter constructs a new table with given dimensions.
func NewTablePrinter(width uint, height uint) *TablePrinter {
	rows := make([][]string, height)
	escapes := make([][]string, height)
	//
	for i := uint(0); i < height; i++ {
		rows[i] = make([]string, width)
		escapes[i] = make([]string, width)
	}
	//
	return &TablePrinter{make([]uint, width), make([]bool, width), rows, escapes, true}
}

// Set the contents of a given cell in this table
func (p *TablePrinter) Set(col uint, row uint, val string) {
	p.widths[col] = max(p.widths[col], uint(len(val)))
	p.rows[row][col] = val
}

// Get the contents of a given cell in this table
func (p *TablePrinter) Get(col uint, row uint) string {
	return p.rows[row][col]
}

// Width returns the number of columns in this table.
func (p *TablePrinter) Width() uint {
	return uint(len(p.widths))
}

// Height returns the height of this table.
func (p *TablePrinter) Height() uint {
	return uint(len(p.rows))
}

// SetRow sets the contents of an entire row in this table
func (p *TablePrinter) SetRow(row uint, vals ...string) {
	if len(vals) != len(p.widths) {
		panic("incorrect number of columns")
	}
	//
	for i := range vals {
		p.Set(uint(i), row, vals[i])
	}
}

// SetEscape sets the escape to use when printing the contents of a given cell.
func (p *TablePrinter) SetEscape(col uint, row uint, escape AnsiEscape) {
	p.escapes[row][col] = escape.Build()
}

// AlignLeft marks a column as left-aligned.
func (p *TablePrinter) AlignLeft(col uint) {
	p.left[col] = true
}

// AnsiEscapes enables or disables the use of ANSI escapes (e.g. for showing
// colour).  Disabling escapes is useful when the output is not a terminal.
func (p *TablePrinter) AnsiEscapes(enable bool) {
	p.enableEscapes = enable
}

// SetMaxWidth puts an upper bound on the width of a column.
func (p *TablePrinter) SetMaxWidth(col uint, width uint) {
	p.widths[col] = min(p.widths[col], max(width, 3))
}

// FitWidth shrinks the last column so that every row fits within a given
// number of terminal columns.
func (p *TablePrinter) FitWidth(total uint) {
	if len(p.widths) == 0 {
		return
	}
	// Each column is printed as " cell |"
	used := uint(0)
	last := uint(len(p.widths) - 1)
	//
	for _, w := range p.widths[:last] {
		used += w + 3
	}
	//
	if used+3 < total {
		p.SetMaxWidth(last, total-used-3)
	}
}

// Print the table to a given writer.
func (p *TablePrinter) Print(w io.Writer) error {
	out := bufio.NewWriter(w)
	reset := ResetAnsiEscape().Build()
	//
	for i, row := range p.rows {
		for j, cell := range row {
			width := int(p.widths[j])
			escape := p.escapes[i][j]
			//
			if uint(len(cell)) > p.widths[j] {
				cell = cell[:width-2] + ".."
			}
			//
			out.WriteString(" ")
			//
			if p.enableEscapes && escape != "" {
				out.WriteString(escape)
			}
			//
			if p.left[j] {
				out.WriteString(cell + strings.Repeat(" ", width-len(cell)))
			} else {
				out.WriteString(strings.Repeat(" ", width-len(cell)) + cell)
			}
			//
			if p.enableEscapes && escape != "" {
				out.WriteString(reset)
			}
			//
			out.WriteString(" |")
		}
		//
		fmt.Fprintln(out)
	}
	//
	return out.Flush()
}
