package badger

import (
	"fmt"

	"github.com/dgraph-io/badger/v2"
	lru "github.com/hashicorp/golang-lru/v2"
)

func withLimit[K comparable, V any](limit uint) func(*Cache[K, V]) {
	return func(c *Cache[K, V]) {
		c.limit = limit
	}
}

type retrieveFunc[K comparable, V any] func(key K) func(*badger.Txn) (V, error)

func noRetrieve[K comparable, V any](K) func(*badger.Txn) (V, error) {
	return func(*badger.Txn) (V, error) {
		var nothing V
		return nothing, fmt.Errorf("no retrieve function for cache get available")
	}
}

func withRetrieve[K comparable, V any](retrieve retrieveFunc[K, V]) func(*Cache[K, V]) {
	return func(c *Cache[K, V]) {
		c.retrieve = retrieve
	}
}

// Cache is a read-through LRU cache in front of a badger lookup.
type Cache[K comparable, V any] struct {
	limit    uint
	retrieve retrieveFunc[K, V]
	cache    *lru.Cache[K, V]
}

func newCache[K comparable, V any](options ...func(*Cache[K, V])) *Cache[K, V] {
	c := Cache[K, V]{
		limit:    1000,
		retrieve: noRetrieve[K, V],
	}
	for _, option := range options {
		option(&c)
	}
	c.cache, _ = lru.New[K, V](int(c.limit))
	return &c
}

// Get will try to retrieve the resource from cache first, and then from the
// injected retrieve function within the given transaction.
func (c *Cache[K, V]) Get(key K) func(*badger.Txn) (V, error) {
	return func(tx *badger.Txn) (V, error) {

		// check if we have it in the cache
		resource, cached := c.cache.Get(key)
		if cached {
			return resource, nil
		}

		// get it from the database
		resource, err := c.retrieve(key)(tx)
		if err != nil {
			var nothing V
			return nothing, fmt.Errorf("could not retrieve resource: %w", err)
		}

		// cache the resource and eject least recently used one if we reached limit
		c.cache.Add(key, resource)

		return resource, nil
	}
}

// Insert caches a resource that was just persisted.
func (c *Cache[K, V]) Insert(key K, resource V) {
	c.cache.Add(key, resource)
}

// Remove evicts a resource that was deleted from the database.
func (c *Cache[K, V]) Remove(key K) {
	c.cache.Remove(key)
}
