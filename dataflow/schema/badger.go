package schema

import (
	"encoding/binary"
	"fmt"

	"github.com/dgraph-io/badger/v4"
	"github.com/wbrown/janus-dataflow/dataflow"
)

// Key layout: "attr/" ++ keyword bytes -> big-endian uint32 id.
// A single meta key tracks the next free id.
var (
	attrPrefix = []byte("attr/")
	nextIDKey  = []byte("meta/next-id")
)

// BadgerRegistry is a persistent attribute registry backed by BadgerDB.
// All reads are served from an in-memory cache loaded at open time, so
// AttrID never touches disk on the compile path.
type BadgerRegistry struct {
	db    *badger.DB
	cache *Registry
}

// OpenBadgerRegistry opens (or creates) a registry at the given path
func OpenBadgerRegistry(path string) (*BadgerRegistry, error) {
	opts := badger.DefaultOptions(path)
	opts.Logger = nil // Disable BadgerDB logs

	db, err := badger.Open(opts)
	if err != nil {
		return nil, fmt.Errorf("failed to open badger: %w", err)
	}

	r := &BadgerRegistry{db: db, cache: NewRegistry()}
	if err := r.load(); err != nil {
		db.Close()
		return nil, err
	}
	return r, nil
}

// load populates the in-memory cache from disk
func (r *BadgerRegistry) load() error {
	attrs := make(map[string]int)
	err := r.db.View(func(txn *badger.Txn) error {
		opts := badger.DefaultIteratorOptions
		opts.Prefix = attrPrefix
		it := txn.NewIterator(opts)
		defer it.Close()

		for it.Rewind(); it.Valid(); it.Next() {
			item := it.Item()
			name := string(item.Key()[len(attrPrefix):])
			err := item.Value(func(val []byte) error {
				if len(val) != 4 {
					return fmt.Errorf("corrupt id for attribute %s", name)
				}
				attrs[name] = int(binary.BigEndian.Uint32(val))
				return nil
			})
			if err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		return fmt.Errorf("failed to load schema: %w", err)
	}

	r.cache = NewRegistryFromMap(attrs)
	return nil
}

// Define assigns the next free id to an attribute and persists the
// mapping, returning the existing id if already defined.
func (r *BadgerRegistry) Define(attr dataflow.Keyword) (int, error) {
	if id, err := r.cache.AttrID(attr); err == nil {
		return id, nil
	}

	var id int
	err := r.db.Update(func(txn *badger.Txn) error {
		id = 0
		item, err := txn.Get(nextIDKey)
		if err == nil {
			err = item.Value(func(val []byte) error {
				id = int(binary.BigEndian.Uint32(val))
				return nil
			})
			if err != nil {
				return err
			}
		} else if err != badger.ErrKeyNotFound {
			return err
		}

		var idBytes [4]byte
		binary.BigEndian.PutUint32(idBytes[:], uint32(id))
		key := append(append([]byte{}, attrPrefix...), attr.Bytes()...)
		if err := txn.Set(key, idBytes[:]); err != nil {
			return err
		}

		var next [4]byte
		binary.BigEndian.PutUint32(next[:], uint32(id+1))
		return txn.Set(nextIDKey, next[:])
	})
	if err != nil {
		return 0, fmt.Errorf("failed to define attribute %s: %w", attr, err)
	}

	// Re-sync the cache with the assigned id
	attrs := make(map[string]int)
	for _, kw := range r.cache.Keywords() {
		existing, _ := r.cache.AttrID(kw)
		attrs[kw.String()] = existing
	}
	attrs[attr.String()] = id
	r.cache = NewRegistryFromMap(attrs)

	return id, nil
}

// AttrID implements Resolver
func (r *BadgerRegistry) AttrID(attr dataflow.Keyword) (int, error) {
	return r.cache.AttrID(attr)
}

// Keywords returns the defined attributes
func (r *BadgerRegistry) Keywords() []dataflow.Keyword {
	return r.cache.Keywords()
}

// Close closes the underlying database
func (r *BadgerRegistry) Close() error {
	return r.db.Close()
}
