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
	"fmt"
	"os"
	"strings"

	"github.com/consensys/go-conjecture/pkg/conjecture"
	"github.com/consensys/go-conjecture/pkg/invariant"
	"github.com/consensys/go-conjecture/pkg/logic"
	"github.com/go-playground/validator/v10"
	"gopkg.in/yaml.v3"
)

// ErrMissingValue indicates an object without a value for some invariant or
// property.  This is a resolution failure for that cell only.
var ErrMissingValue = errors.New("missing value")

// ErrUnknownObject indicates an object key which is not in the dataset.
var ErrUnknownObject = errors.New("unknown object")

// Object is a single named object, described by its measurements.
type Object struct {
	Name       string             `yaml:"name" validate:"required"`
	Values     map[string]float64 `yaml:"values"`
	Properties map[string]bool    `yaml:"properties"`
}

func (p *Object) String() string {
	return p.Name
}

// Derived is an invariant computed from the columns of a dataset, given as a
// postfix expression (e.g. "size order /").
type Derived struct {
	Name   string `yaml:"name" validate:"required"`
	Tokens string `yaml:"tokens" validate:"required"`
}

// DerivedProperty is a property computed from the properties of a dataset,
// given as an infix formula (e.g. "regular & ~bipartite").
type DerivedProperty struct {
	Name    string `yaml:"name" validate:"required"`
	Formula string `yaml:"formula" validate:"required"`
}

// Dataset is a collection of objects read from a YAML (or JSON) document.
type Dataset struct {
	InvariantNames []string  `yaml:"invariants" validate:"dive,required"`
	PropertyNames  []string  `yaml:"properties" validate:"dive,required"`
	Derived        []Derived `yaml:"derived" validate:"dive"`
	// Derived properties
	DerivedProperties []DerivedProperty `yaml:"derived_properties" validate:"dive"`
	Items             []*Object         `yaml:"objects" validate:"dive,required"`
	// Objects indexed by name
	byName map[string]*Object
	// Derived invariants, compiled
	derived []*conjecture.Conjecture[*Object]
	// Derived properties, parsed
	formulas []logic.Formula
}

// Load a dataset from a given file.
func Load(path string) (*Dataset, error) {
	bytes, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	//
	d, err := Parse(bytes)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	//
	return d, nil
}

// Parse a dataset from the contents of a YAML (or JSON) document.
func Parse(bytes []byte) (*Dataset, error) {
	var d Dataset
	//
	if err := yaml.Unmarshal(bytes, &d); err != nil {
		return nil, err
	} else if err := validator.New().Struct(&d); err != nil {
		return nil, err
	}
	//
	d.byName = make(map[string]*Object, len(d.Items))
	//
	for _, o := range d.Items {
		if _, ok := d.byName[o.Name]; ok {
			return nil, fmt.Errorf("duplicate object %q", o.Name)
		}
		//
		d.byName[o.Name] = o
	}
	// Derived invariants are expressions over the columns
	table := invariant.NewTable(invariant.Invariants, d.columns()...)
	//
	for _, derived := range d.Derived {
		c, err := conjecture.Build(strings.Fields(derived.Tokens), "x", table)
		if err != nil {
			return nil, fmt.Errorf("derived invariant %s: %w", derived.Name, err)
		}
		//
		d.derived = append(d.derived, c)
	}
	// Derived properties are formulas over the given properties only
	for _, derived := range d.DerivedProperties {
		f, errs := logic.Parse(derived.Formula, d.isPropertyName)
		if len(errs) > 0 {
			return nil, fmt.Errorf("derived property %s: %w", derived.Name, &errs[0])
		}
		//
		d.formulas = append(d.formulas, f)
	}
	//
	return &d, nil
}

func (p *Dataset) isPropertyName(name string) bool {
	for _, n := range p.PropertyNames {
		if n == name {
			return true
		}
	}
	//
	return false
}

func (p *Dataset) columns() []invariant.Invariant[*Object] {
	refs := make([]invariant.Invariant[*Object], len(p.InvariantNames))
	//
	for i, name := range p.InvariantNames {
		refs[i] = invariant.New(name, func(o *Object) (float64, error) {
			if v, ok := o.Values[name]; ok {
				return v, nil
			}
			//
			return 0, fmt.Errorf("%w: %s", ErrMissingValue, name)
		})
	}
	//
	return refs
}

// Invariants returns the invariants of this dataset: first the columns, and
// then any derived invariants.
func (p *Dataset) Invariants() []invariant.Invariant[*Object] {
	refs := p.columns()
	//
	for i, c := range p.derived {
		refs = append(refs, invariant.New(p.Derived[i].Name, func(o *Object) (float64, error) {
			return c.Evaluate(o, false)
		}))
	}
	//
	return refs
}

// Properties returns the properties of this dataset: first those given, and
// then any derived properties.
func (p *Dataset) Properties() []invariant.Property[*Object] {
	refs := make([]invariant.Property[*Object], len(p.PropertyNames))
	//
	for i, name := range p.PropertyNames {
		refs[i] = invariant.New(name, func(o *Object) (bool, error) {
			if v, ok := o.Properties[name]; ok {
				return v, nil
			}
			//
			return false, fmt.Errorf("%w: %s", ErrMissingValue, name)
		})
	}
	//
	for i, f := range p.formulas {
		refs = append(refs, invariant.New(p.DerivedProperties[i].Name, func(o *Object) (bool, error) {
			for _, name := range logic.Variables(f) {
				if _, ok := o.Properties[name]; !ok {
					return false, fmt.Errorf("%w: %s", ErrMissingValue, name)
				}
			}
			//
			return f.Evaluate(o.Properties)
		}))
	}
	//
	return refs
}

// Objects returns the objects of this dataset, in the order given.
func (p *Dataset) Objects() []*Object {
	return p.Items
}

// Keys returns the key of each object, in the order given.
func (p *Dataset) Keys() []string {
	keys := make([]string, len(p.Items))
	//
	for i, o := range p.Items {
		keys[i] = Key(o)
	}
	//
	return keys
}

// Key returns the canonical key of an object.
func Key(o *Object) string {
	return o.Name
}

// Decode reconstructs an object from its canonical key.
func (p *Dataset) Decode(key string) (*Object, error) {
	if o, ok := p.byName[key]; ok {
		return o, nil
	}
	//
	return nil, fmt.Errorf("%w: %s", ErrUnknownObject, key)
}

// IndexOf returns the index of a named invariant (including derived
// invariants), or -1 if there is none.
func (p *Dataset) IndexOf(name string) int {
	refs := p.Invariants()
	//
	for i, ref := range refs {
		if ref.Name() == name {
			return i
		}
	}
	//
	return -1
}

// PropertyIndexOf returns the index of a named property (including derived
// properties), or -1 if there is none.
func (p *Dataset) PropertyIndexOf(name string) int {
	for i, ref := range p.Properties() {
		if ref.Name() == name {
			return i
		}
	}
	//
	return -1
}
