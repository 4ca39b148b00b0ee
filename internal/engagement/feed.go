package engagement

import "context"

// Feed is the state of the recommendation list screen. Fetched like flags
// seed the shared cache and rendered items always read the cache, so a like
// toggled on a detail screen shows here without a refetch.
type Feed struct {
	gw     Gateway
	cache  *Cache
	ids    *Allocator
	runner *Runner
	likes  *Likes
	filter string
	list   *PagedCollection[Recommendation]
}

func NewFeed(deps Deps) *Feed {
	if deps.Cache == nil {
		deps.Cache = NewCache()
	}
	if deps.IDs == nil {
		deps.IDs = NewAllocator()
	}
	runner := NewRunner()
	f := &Feed{
		gw:     deps.Gateway,
		cache:  deps.Cache,
		ids:    deps.IDs,
		runner: runner,
		likes:  newLikes(deps, runner),
	}
	f.list = NewPagedCollection(deps.PageSize, f.fetcher(""))
	f.list.OnPage(f.seed)
	return f
}

func (f *Feed) fetcher(filter string) Fetcher[Recommendation] {
	gw := f.gw
	return func(ctx context.Context, page, size int) (Page[Recommendation], error) {
		return gw.FetchRecommendations(ctx, filter, page, size)
	}
}

func (f *Feed) seed(items []Recommendation) {
	for _, r := range items {
		f.cache.Seed(r.ID, r.Liked)
		f.cache.Counters(r.ID, r.Aggregate)
		f.ids.Observe(r.ID)
	}
}

func (f *Feed) alive() bool { return !f.runner.Closed() }

func (f *Feed) Filter() string { return f.filter }

// SetFilter switches the query. The list is reset and its first page
// requested; a page of the previous query still in flight is dropped.
func (f *Feed) SetFilter(filter string) Task {
	if filter == f.filter && f.list.NextPage() > 0 {
		return nil
	}
	f.filter = filter
	f.list.ResetWith(f.fetcher(filter))
	return f.LoadNext()
}

// Refresh reloads the current query from the first page
func (f *Feed) Refresh() Task {
	f.list.Reset()
	return f.LoadNext()
}

// LoadNext requests the next page, nil when busy or exhausted
func (f *Feed) LoadNext() Task {
	if !f.alive() {
		return nil
	}
	task, ok := f.list.LoadNext()
	if !ok {
		return nil
	}
	return guard(task, f.alive)
}

func (f *Feed) Loading() bool   { return f.list.Loading() }
func (f *Feed) Exhausted() bool { return f.list.Exhausted() }
func (f *Feed) Len() int        { return f.list.Len() }

// Items returns the loaded recommendations with their cached like state
// and counters
func (f *Feed) Items() []Recommendation {
	items := f.list.Items()
	for i := range items {
		f.overlay(&items[i])
	}
	return items
}

func (f *Feed) Get(id ID) (Recommendation, bool) {
	r, ok := f.list.Get(id)
	if ok {
		f.overlay(&r)
	}
	return r, ok
}

func (f *Feed) overlay(r *Recommendation) {
	r.Liked = f.cache.Liked(r.ID)
	if agg, ok := f.cache.Aggregate(r.ID); ok {
		r.Aggregate = agg
	}
}

// ToggleLike flips the like of a listed recommendation
func (f *Feed) ToggleLike(id ID) (Task, error) {
	r, ok := f.list.Get(id)
	if !ok {
		return nil, wrap("engagement.ToggleLike", ErrNotFound)
	}
	counts := f.cache.Counters(id, r.Aggregate)
	return f.likes.Toggle(id, &counts.LikesCount)
}

func (f *Feed) Close() {
	f.runner.Close()
}
