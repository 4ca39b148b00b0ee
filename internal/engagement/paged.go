package engagement

import "context"

// Keyed is implemented by everything stored in a PagedCollection
type Keyed interface {
	Key() ID
}

// Fetcher loads one page. It runs off the event loop.
type Fetcher[T any] func(ctx context.Context, page, size int) (Page[T], error)

// PagedCollection is an append-only, incrementally loaded sequence.
// Items never contain the same id twice and loading a page never reorders
// items already present. Once exhausted it stays so until Reset.
type PagedCollection[T Keyed] struct {
	fetch      Fetcher[T]
	size       int
	onPage     func(items []T)
	items      []T
	nextPage   int
	exhausted  bool
	loading    bool
	generation uint64
}

// NewPagedCollection creates an empty collection fetching size items per page
func NewPagedCollection[T Keyed](size int, fetch Fetcher[T]) *PagedCollection[T] {
	if size <= 0 {
		size = 20
	}
	return &PagedCollection[T]{fetch: fetch, size: size}
}

// OnPage registers a hook called on the loop with every appended page
func (c *PagedCollection[T]) OnPage(fn func(items []T)) {
	c.onPage = fn
}

// Items returns a copy of the loaded items in display order
func (c *PagedCollection[T]) Items() []T {
	out := make([]T, len(c.items))
	copy(out, c.items)
	return out
}

func (c *PagedCollection[T]) Len() int        { return len(c.items) }
func (c *PagedCollection[T]) NextPage() int   { return c.nextPage }
func (c *PagedCollection[T]) Exhausted() bool { return c.exhausted }
func (c *PagedCollection[T]) Loading() bool   { return c.loading }

// HasMore reports whether another LoadNext could fetch something
func (c *PagedCollection[T]) HasMore() bool {
	return !c.exhausted
}

// Get returns the item with id
func (c *PagedCollection[T]) Get(id ID) (T, bool) {
	if i := c.indexOf(id); i >= 0 {
		return c.items[i], true
	}
	var zero T
	return zero, false
}

// Contains reports whether an item with id is loaded
func (c *PagedCollection[T]) Contains(id ID) bool {
	return c.indexOf(id) >= 0
}

// LoadNext starts loading the next page. It returns false, and no task,
// while a load is in flight or once the collection is exhausted.
func (c *PagedCollection[T]) LoadNext() (Task, bool) {
	if c.loading || c.exhausted {
		return nil, false
	}
	c.loading = true

	fetch, size := c.fetch, c.size
	page, gen := c.nextPage, c.generation

	return func(ctx context.Context) Completion {
		res, err := fetch(ctx, page, size)
		return Completion{
			err: err,
			settle: func(err error) Result {
				return c.settlePage(gen, page, res, err)
			},
		}
	}, true
}

func (c *PagedCollection[T]) settlePage(gen uint64, page int, res Page[T], err error) Result {
	if gen != c.generation {
		return Result{Stale: true}
	}
	c.loading = false

	if err != nil {
		return Result{Err: err, Message: "Could not load more. Please try again."}
	}

	appended := c.appendUnique(res.Items)
	c.nextPage = page + 1
	c.exhausted = res.IsLast
	if c.onPage != nil && len(appended) > 0 {
		c.onPage(appended)
	}
	return Result{Succeeded: true}
}

func (c *PagedCollection[T]) appendUnique(items []T) []T {
	seen := make(map[ID]struct{}, len(c.items)+len(items))
	for _, it := range c.items {
		seen[it.Key()] = struct{}{}
	}

	start := len(c.items)
	for _, it := range items {
		if _, dup := seen[it.Key()]; dup {
			continue
		}
		seen[it.Key()] = struct{}{}
		c.items = append(c.items, it)
	}
	return c.items[start:]
}

// Reset drops everything so the collection can serve a new query.
// A page still in flight for the old query is discarded when it lands.
func (c *PagedCollection[T]) Reset() {
	c.items = nil
	c.nextPage = 0
	c.exhausted = false
	c.loading = false
	c.generation++
}

// Generation changes every time the collection is reset
func (c *PagedCollection[T]) Generation() uint64 { return c.generation }

// ResetWith resets the collection and swaps the page source
func (c *PagedCollection[T]) ResetWith(fetch Fetcher[T]) {
	c.Reset()
	c.fetch = fetch
}

// InsertAtHead puts item first. It refuses ids already present.
func (c *PagedCollection[T]) InsertAtHead(item T) bool {
	if c.indexOf(item.Key()) >= 0 {
		return false
	}
	c.items = append(c.items, item)
	copy(c.items[1:], c.items[:len(c.items)-1])
	c.items[0] = item
	return true
}

// RemoveByID deletes the item with id and returns it
func (c *PagedCollection[T]) RemoveByID(id ID) (T, bool) {
	i := c.indexOf(id)
	if i < 0 {
		var zero T
		return zero, false
	}
	item := c.items[i]
	c.items = append(c.items[:i], c.items[i+1:]...)
	return item, true
}

// UpdateByID mutates the item with id in place
func (c *PagedCollection[T]) UpdateByID(id ID, fn func(*T)) bool {
	i := c.indexOf(id)
	if i < 0 {
		return false
	}
	fn(&c.items[i])
	return true
}

// UpdateAll mutates every loaded item
func (c *PagedCollection[T]) UpdateAll(fn func(*T)) {
	for i := range c.items {
		fn(&c.items[i])
	}
}

func (c *PagedCollection[T]) indexOf(id ID) int {
	for i := range c.items {
		if c.items[i].Key() == id {
			return i
		}
	}
	return -1
}
