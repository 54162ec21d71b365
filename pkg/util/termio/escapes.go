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
	"fmt"
	"strings"
)

// Colour identifies one of the eight standard terminal colours.
type Colour uint

const (
	// Black is colour 0.
	Black Colour = iota
	// Red is colour 1.
	Red
	// Green is colour 2.
	Green
	// Yellow is colour 3.
	Yellow
	// Blue is colour 4.
	Blue
	// Magenta is colour 5.
	Magenta
	// Cyan is colour 6.
	Cyan
	// White is colour 7.
	White
)

// AnsiEscape represents an ANSI escape code used for formatting text in a
// terminal, built up from a sequence of graphic rendition parameters.
type AnsiEscape struct {
	params []string
}

// NewAnsiEscape construct an empty escape.
func NewAnsiEscape() AnsiEscape {
	return AnsiEscape{nil}
}

// ResetAnsiEscape constructs a reset term.
func ResetAnsiEscape() AnsiEscape {
	return AnsiEscape{[]string{"0"}}
}

// BoldAnsiEscape constructs a bold term.
func BoldAnsiEscape() AnsiEscape {
	return AnsiEscape{[]string{"1"}}
}

// FgColour sets the foreground colour.
func (p AnsiEscape) FgColour(col Colour) AnsiEscape {
	return p.with(30 + col)
}

// BgColour sets the background colour.
func (p AnsiEscape) BgColour(col Colour) AnsiEscape {
	return p.with(40 + col)
}

// Build constructs the final escape.
func (p AnsiEscape) Build() string {
	return fmt.Sprintf("\033[%sm", strings.Join(p.params, ";"))
}

func (p AnsiEscape) with(code Colour) AnsiEscape {
	params := make([]string, len(p.params), len(p.params)+1)
	copy(params, p.params)
	//
	return AnsiEscape{append(params, fmt.Sprint(uint(code)))}
}
