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

	"github.com/consensys/go-conjecture/pkg/operator"
	"github.com/spf13/cobra"
)

var operatorsCmd = &cobra.Command{
	Use:   "operators",
	Short: "list the operators available to a search.",
	Long: `List the operators (and propositional connectives) which can be given to a search
	 via "--operators", along with the code used for each by the expressions program.`,
	Args: cobra.NoArgs,
	Run: func(cmd *cobra.Command, args []string) {
		numeric := operator.AllNumeric()
		connectives := operator.AllPropositional()
		table := newTable(4, uint(len(numeric)+len(connectives)+1))
		table.SetRow(0, "operator", "arity", "kind", "code")
		row := uint(1)
		//
		for _, token := range numeric {
			op, _ := operator.Lookup(token)
			table.SetRow(row, op.Token, fmt.Sprint(op.Arity), op.Kind.String(), op.Wire)
			row++
		}
		//
		for _, token := range connectives {
			c, _ := operator.LookupConnective(token)
			table.SetRow(row, c.Token, fmt.Sprint(c.Arity), operator.Boolean.String(), c.Wire)
			row++
		}
		//
		printTable(table)
	},
}

func init() {
	rootCmd.AddCommand(operatorsCmd)
}
