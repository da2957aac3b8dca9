package hoststate

import (
	"errors"
	"fmt"
	"sort"

	"github.com/dgraph-io/badger/v4"
)

// keySep separates section and key inside a badger key. Section names never
// contain NUL.
const keySep = "\x00"

// BadgerStore keeps all sections in one badger keyspace.
type BadgerStore struct {
	db *badger.DB
}

// OpenBadgerStore opens or creates a badger directory at path.
func OpenBadgerStore(path string) (*BadgerStore, error) {
	opts := badger.DefaultOptions(path)
	opts.Logger = nil

	db, err := badger.Open(opts)
	if err != nil {
		return nil, fmt.Errorf("hoststate: open badger: %w", err)
	}
	return &BadgerStore{db: db}, nil
}

func badgerKey(section, key string) []byte {
	return []byte(section + keySep + key)
}

func (s *BadgerStore) Get(section, key string) (string, bool, error) {
	var value string
	err := s.db.View(func(txn *badger.Txn) error {
		item, err := txn.Get(badgerKey(section, key))
		if err != nil {
			return err
		}
		return item.Value(func(val []byte) error {
			value = string(val)
			return nil
		})
	})
	if errors.Is(err, badger.ErrKeyNotFound) {
		return "", false, nil
	}
	if err != nil {
		return "", false, err
	}
	return value, true, nil
}

func (s *BadgerStore) Set(section, key, value string) error {
	return s.db.Update(func(txn *badger.Txn) error {
		return txn.Set(badgerKey(section, key), []byte(value))
	})
}

func (s *BadgerStore) Delete(section, key string) error {
	return s.db.Update(func(txn *badger.Txn) error {
		return txn.Delete(badgerKey(section, key))
	})
}

func (s *BadgerStore) Keys(section string) ([]string, error) {
	prefix := []byte(section + keySep)
	var keys []string
	err := s.db.View(func(txn *badger.Txn) error {
		opts := badger.DefaultIteratorOptions
		opts.PrefetchValues = false
		opts.Prefix = prefix
		it := txn.NewIterator(opts)
		defer it.Close()
		for it.Rewind(); it.Valid(); it.Next() {
			keys = append(keys, string(it.Item().Key()[len(prefix):]))
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	sort.Strings(keys)
	return keys, nil
}

func (s *BadgerStore) Close() error {
	if s.db == nil {
		return nil
	}
	return s.db.Close()
}
