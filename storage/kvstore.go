package storage

import (
	"sort"
	"sync"
)

// KVStore is a key-value store. Implementations must be safe for concurrent
// use.
type KVStore interface {
	Get(key string) (interface{}, bool)
	Put(key string, value interface{}) error
	For(func(key string, value interface{}) error) error
	Len() int
}

// BasicKV is an in-memory KVStore.
type BasicKV struct {
	sync.RWMutex
	store map[string]interface{}
}

// NewBasicKV returns an empty store.
func NewBasicKV() *BasicKV {
	return &BasicKV{
		store: make(map[string]interface{}),
	}
}

func (kv *BasicKV) Get(key string) (interface{}, bool) {
	kv.RLock()
	defer kv.RUnlock()

	value, ok := kv.store[key]
	return value, ok
}

func (kv *BasicKV) Put(key string, value interface{}) error {
	kv.Lock()
	defer kv.Unlock()

	kv.store[key] = value
	return nil
}

// For calls action on every entry in key order. It stops at the first error.
// action must not modify the store.
func (kv *BasicKV) For(action func(key string, value interface{}) error) error {
	for _, k := range kv.sortedKeys() {
		v, ok := kv.Get(k)
		if !ok {
			continue
		}
		err := action(k, v)
		if err != nil {
			return err
		}
	}
	return nil
}

func (kv *BasicKV) Len() int {
	kv.RLock()
	defer kv.RUnlock()

	return len(kv.store)
}

func (kv *BasicKV) sortedKeys() []string {
	kv.RLock()
	defer kv.RUnlock()

	keys := make([]string, 0, len(kv.store))
	for k := range kv.store {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	return keys
}
