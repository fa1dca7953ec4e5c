package store

// Tracker holds records already loaded or written through a repository so
// key-addressed reads and removals can skip a round trip to the store.
type Tracker[T any] interface {
	Get(id int) (*T, bool)
	Set(id int, item *T)
	Delete(id int)
	Clear()
}

type noopTracker[T any] struct{}

func (noopTracker[T]) Get(int) (*T, bool) {
	return nil, false
}

func (noopTracker[T]) Set(int, *T) {}

func (noopTracker[T]) Delete(int) {}

func (noopTracker[T]) Clear() {}
