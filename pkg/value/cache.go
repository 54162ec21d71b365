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
package value

import (
	"errors"
	"fmt"
	"math"
	"math/big"
	"strconv"
	"strings"
)

// ErrUnconvertible is returned when a cached value cannot be used as a value
// of the required kind.
var ErrUnconvertible = errors.New("unconvertible value")

// Cache provides read-only access to values computed ahead of time, indexed
// first by object key and then by invariant key.
type Cache interface {
	Lookup(objectKey string, invariantKey string) (any, bool)
}

// MapCache is the simplest cache: nested maps from object key to invariant key
// to value.
type MapCache map[string]map[string]any

// Lookup implementation for the Cache interface.
func (p MapCache) Lookup(objectKey string, invariantKey string) (any, bool) {
	if row, ok := p[objectKey]; ok {
		val, ok := row[invariantKey]
		return val, ok
	}
	//
	return nil, false
}

// Coerce converts a cached value into a value of the required kind.  Exact
// values (big rationals, integers and numeric text) are converted to floating
// point.  A cached error is returned as the error itself.
func Coerce[V any](raw any) (V, error) {
	var (
		zero   V
		result any
		err    error
	)
	//
	if e, ok := raw.(error); ok {
		return zero, e
	}
	//
	switch any(zero).(type) {
	case float64:
		result, err = toFloat(raw)
	case bool:
		result, err = toBool(raw)
	default:
		if v, ok := raw.(V); ok {
			return v, nil
		}
		//
		err = fmt.Errorf("%w: %T", ErrUnconvertible, raw)
	}
	//
	if err != nil {
		return zero, err
	}
	//
	return result.(V), nil
}

func toFloat(raw any) (float64, error) {
	switch v := raw.(type) {
	case float64:
		return v, nil
	case float32:
		return float64(v), nil
	case int:
		return float64(v), nil
	case int32:
		return float64(v), nil
	case int64:
		return float64(v), nil
	case uint:
		return float64(v), nil
	case uint32:
		return float64(v), nil
	case uint64:
		return float64(v), nil
	case bool:
		if v {
			return 1, nil
		}
		//
		return 0, nil
	case *big.Rat:
		f, _ := v.Float64()
		return f, nil
	case *big.Int:
		f, _ := new(big.Float).SetInt(v).Float64()
		return f, nil
	case *big.Float:
		f, _ := v.Float64()
		return f, nil
	case string:
		return parseFloat(v)
	}
	//
	return math.NaN(), fmt.Errorf("%w: %T", ErrUnconvertible, raw)
}

func parseFloat(text string) (float64, error) {
	text = strings.TrimSpace(text)
	//
	if f, err := strconv.ParseFloat(text, 64); err == nil {
		return f, nil
	} else if r, ok := new(big.Rat).SetString(text); ok {
		// Handles exact fractions, e.g. "3/4"
		f, _ := r.Float64()
		return f, nil
	}
	//
	return math.NaN(), fmt.Errorf("%w: %q", ErrUnconvertible, text)
}

func toBool(raw any) (bool, error) {
	switch v := raw.(type) {
	case bool:
		return v, nil
	case string:
		b, err := strconv.ParseBool(strings.TrimSpace(v))
		if err != nil {
			return false, fmt.Errorf("%w: %q", ErrUnconvertible, v)
		}
		//
		return b, nil
	}
	// Numeric truth values must be exactly 0 or 1
	if f, err := toFloat(raw); err == nil && (f == 0 || f == 1) {
		return f == 1, nil
	}
	//
	return false, fmt.Errorf("%w: %v", ErrUnconvertible, raw)
}
