// Package cache holds small in-process caches. The auth provider client
// uses it to avoid a network round trip for every request carrying the
// same bearer token.
package cache

// Cache is a keyed store with bounded lifetime entries.
type Cache[T any] interface {
	Get(key string) (T, bool)
	Set(key string, data T)
	Delete(key string)
	Size() int
}

var _ Cache[struct{}] = (*LRUCache[struct{}])(nil)
