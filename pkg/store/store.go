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
	"encoding/binary"
	"errors"
	"fmt"
	"math"
	"os"

	"github.com/consensys/go-conjecture/pkg/batch"
	"github.com/consensys/go-conjecture/pkg/invariant"
	"github.com/consensys/go-conjecture/pkg/value"
	"github.com/dgraph-io/badger/v4"
	log "github.com/sirupsen/logrus"
)

// ErrCorrupt indicates a stored value which could not be decoded.
var ErrCorrupt = errors.New("corrupt stored value")

// Tags identifying the kind of a stored value.
const (
	tagFloat byte = 'f'
	tagBool  byte = 'b'
	tagError byte = 'e'
)

// Config holds configuration for a store.
type Config struct {
	// Path is the directory holding the database files (ignored when InMemory
	// is set).
	Path string
	// InMemory enables in-memory mode (no disk persistence).
	InMemory bool
	// SyncWrites enables synchronous writes.
	SyncWrites bool
	// Logger receives badger's internal logging.  If nil, that logging is
	// disabled.
	Logger *log.Entry
}

// DefaultConfig returns the configuration for a persistent store at the given
// path.
func DefaultConfig(path string) Config {
	return Config{Path: path, SyncWrites: true}
}

// InMemoryConfig returns the configuration for a throwaway store.
func InMemoryConfig() Config {
	return Config{InMemory: true}
}

// StoredError is a failure recorded when a value was precomputed.  Looking up
// such a value yields the error, so that it is never recomputed.
type StoredError struct {
	Msg string
}

func (e *StoredError) Error() string {
	return e.Msg
}

// Store is a persistent cache of precomputed values, indexed by the kind of
// value (invariant or property), then object key and then invariant key.
type Store struct {
	db  *badger.DB
	log *log.Entry
}

// Open a store with the given configuration.
func Open(cfg Config) (*Store, error) {
	var opts badger.Options
	//
	if cfg.InMemory {
		opts = badger.DefaultOptions("").WithInMemory(true)
	} else if cfg.Path == "" {
		return nil, errors.New("path is required for persistent store")
	} else if err := os.MkdirAll(cfg.Path, 0750); err != nil {
		return nil, fmt.Errorf("creating store directory %s: %w", cfg.Path, err)
	} else {
		opts = badger.DefaultOptions(cfg.Path)
	}
	//
	opts = opts.WithSyncWrites(cfg.SyncWrites).WithNumVersionsToKeep(1)
	//
	if cfg.Logger != nil {
		opts = opts.WithLogger(&badgerLogger{cfg.Logger})
	} else {
		opts = opts.WithLogger(nil)
	}
	//
	db, err := badger.Open(opts)
	if err != nil {
		return nil, fmt.Errorf("opening store: %w", err)
	}
	//
	logger := cfg.Logger
	if logger == nil {
		logger = log.NewEntry(log.StandardLogger())
	}
	//
	return &Store{db, logger}, nil
}

// Close the store.
func (p *Store) Close() error {
	return p.db.Close()
}

// Cache returns a view of the values of one kind held in this store, for use
// by a value.Resolver.
func (p *Store) Cache(kind invariant.Kind) value.Cache {
	return kindCache{p, kind}
}

// Lookup a value of a given kind.  Values are returned as a float64, a bool or
// a *StoredError.
func (p *Store) Lookup(kind invariant.Kind, objectKey string, invariantKey string) (any, bool) {
	var val any
	//
	err := p.db.View(func(txn *badger.Txn) error {
		item, err := txn.Get(key(kind, objectKey, invariantKey))
		if err != nil {
			return err
		}
		//
		bytes, err := item.ValueCopy(nil)
		if err != nil {
			return err
		}
		//
		val, err = decode(bytes)
		//
		return err
	})
	//
	if errors.Is(err, badger.ErrKeyNotFound) {
		return nil, false
	} else if err != nil {
		p.log.WithFields(log.Fields{"kind": kind, "object": objectKey, "invariant": invariantKey}).Warnf("store lookup: %v", err)
		return nil, false
	}
	//
	return val, true
}

// Put a single value into the store.  Its kind is determined by its type: a
// float64 is an invariant and a bool is a property.
func Put[V any](p *Store, objectKey string, invariantKey string, cell value.Cell[V]) error {
	kind, err := kindOf[V]()
	if err != nil {
		return err
	}
	//
	bytes, err := encode(cell)
	if err != nil {
		return err
	}
	//
	return p.db.Update(func(txn *badger.Txn) error {
		return txn.Set(key(kind, objectKey, invariantKey), bytes)
	})
}

// Save every cell of a precomputation into the store, in a single batch.
// Existing values are overwritten.
func Save[V any](p *Store, results *batch.Results[V]) error {
	var (
		wb   = p.db.NewWriteBatch()
		werr error
	)
	//
	defer wb.Cancel()
	//
	results.Each(func(invariantKey string, objectKey string, cell value.Cell[V]) {
		if werr != nil {
			return
		}
		//
		bytes, err := encode(cell)
		if err == nil {
			err = wb.Set(key(results.Kind(), objectKey, invariantKey), bytes)
		}
		//
		werr = err
	})
	//
	if werr != nil {
		return werr
	}
	//
	return wb.Flush()
}

// Count returns the number of values held in the store.
func (p *Store) Count() (int, error) {
	var count int
	//
	err := p.db.View(func(txn *badger.Txn) error {
		opts := badger.DefaultIteratorOptions
		opts.PrefetchValues = false
		//
		it := txn.NewIterator(opts)
		defer it.Close()
		//
		for it.Rewind(); it.Valid(); it.Next() {
			count++
		}
		//
		return nil
	})
	//
	return count, err
}

// Keys are a kind prefix ('i' or 'p'), then the object key followed by the
// invariant key, separated by a zero byte.
func key(kind invariant.Kind, objectKey string, invariantKey string) []byte {
	bytes := make([]byte, 0, len(objectKey)+len(invariantKey)+2)
	bytes = append(bytes, kind.String()[0])
	bytes = append(bytes, objectKey...)
	bytes = append(bytes, 0)
	//
	return append(bytes, invariantKey...)
}

func kindOf[V any]() (invariant.Kind, error) {
	var v V
	//
	switch any(v).(type) {
	case float64:
		return invariant.Invariants, nil
	case bool:
		return invariant.Properties, nil
	}
	//
	return 0, fmt.Errorf("cannot store value of type %T", v)
}

func encode[V any](cell value.Cell[V]) ([]byte, error) {
	if !cell.Ok() {
		return append([]byte{tagError}, cell.Err.Error()...), nil
	}
	//
	switch v := any(cell.Value).(type) {
	case float64:
		bytes := make([]byte, 9)
		bytes[0] = tagFloat
		binary.BigEndian.PutUint64(bytes[1:], math.Float64bits(v))
		//
		return bytes, nil
	case bool:
		if v {
			return []byte{tagBool, 1}, nil
		}
		//
		return []byte{tagBool, 0}, nil
	}
	//
	return nil, fmt.Errorf("cannot store value of type %T", cell.Value)
}

func decode(bytes []byte) (any, error) {
	if len(bytes) == 0 {
		return nil, ErrCorrupt
	}
	//
	switch payload := bytes[1:]; bytes[0] {
	case tagFloat:
		if len(payload) == 8 {
			return math.Float64frombits(binary.BigEndian.Uint64(payload)), nil
		}
	case tagBool:
		if len(payload) == 1 {
			return payload[0] != 0, nil
		}
	case tagError:
		return &StoredError{string(payload)}, nil
	}
	//
	return nil, fmt.Errorf("%w: tag %q, %d bytes", ErrCorrupt, bytes[0], len(bytes))
}

// kindCache implements value.Cache over the values of one kind.
type kindCache struct {
	store *Store
	kind  invariant.Kind
}

func (p kindCache) Lookup(objectKey string, invariantKey string) (any, bool) {
	return p.store.Lookup(p.kind, objectKey, invariantKey)
}

// badgerLogger routes badger's internal logging through logrus.
type badgerLogger struct {
	entry *log.Entry
}

func (l *badgerLogger) Errorf(format string, args ...any) {
	l.entry.Errorf(format, args...)
}

func (l *badgerLogger) Warningf(format string, args ...any) {
	l.entry.Warnf(format, args...)
}

func (l *badgerLogger) Infof(format string, args ...any) {
	l.entry.Debugf(format, args...)
}

func (l *badgerLogger) Debugf(format string, args ...any) {
	l.entry.Tracef(format, args...)
}
