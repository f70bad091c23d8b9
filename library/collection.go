package library

import "fmt"

// Keyed is an entity with a natural key unique within its collection.
type Keyed interface {
	Key() string
}

// Collection is a keyed in-memory set. Key uniqueness is its only
// invariant; it guarantees no ordering. Mutations that change
// membership trigger the save hook synchronously, so disk tracks
// memory one write behind at most.
type Collection[T Keyed] struct {
	items map[string]T
	save  func(items []T) error
}

func newCollection[T Keyed](save func(items []T) error) *Collection[T] {
	return &Collection[T]{items: make(map[string]T), save: save}
}

// Add inserts the entity, failing on a key clash, and persists the
// collection.
func (c *Collection[T]) Add(item T) error {
	key := item.Key()
	if _, exists := c.items[key]; exists {
		return fmt.Errorf("%w: %q already exists", ErrDuplicateKey, key)
	}
	c.items[key] = item
	return c.persist()
}

// Remove deletes the entity with the given key, reporting whether a
// removal happened. Only a successful removal triggers a save.
func (c *Collection[T]) Remove(key string) (bool, error) {
	if _, exists := c.items[key]; !exists {
		return false, nil
	}
	delete(c.items, key)
	return true, c.persist()
}

// Get returns the entity with the given key.
func (c *Collection[T]) Get(key string) (T, bool) {
	item, ok := c.items[key]
	return item, ok
}

// All returns a snapshot copy of the entities.
func (c *Collection[T]) All() []T {
	snapshot := make([]T, 0, len(c.items))
	for _, item := range c.items {
		snapshot = append(snapshot, item)
	}
	return snapshot
}

// Len returns the number of entities.
func (c *Collection[T]) Len() int { return len(c.items) }

// persist rewrites the whole collection through the save hook. Called
// after in-place entity mutations as well as membership changes.
func (c *Collection[T]) persist() error {
	if c.save == nil {
		return nil
	}
	return c.save(c.All())
}

// replaceAll swaps in the loaded entities without saving.
func (c *Collection[T]) replaceAll(items []T) {
	c.items = make(map[string]T, len(items))
	for _, item := range items {
		c.items[item.Key()] = item
	}
}
