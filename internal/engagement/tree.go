package engagement

import (
	"context"
	"time"
)

const (
	scopeComment = "comment"
	scopeLike    = "like"
)

// Deps are the collaborators every engagement screen state is built from.
// Cache and IDs are shared by all screens of a process.
type Deps struct {
	Gateway  Gateway
	Cache    *Cache
	IDs      *Allocator
	User     User
	PageSize int
	Now      func() time.Time
}

func (d Deps) now() time.Time {
	if d.Now != nil {
		return d.Now()
	}
	return time.Now()
}

// CommentTree holds the three-level review thread of one recommendation.
// Root reviews are loaded into one collection; the replies of a root and the
// nested replies of a reply get their own collection the first time the
// node is expanded.
type CommentTree struct {
	entityID ID
	deps     Deps
	runner   *Runner
	counters *Aggregate

	roots    *PagedCollection[Comment]
	replies  map[ID]*PagedCollection[Comment]
	nested   map[ID]*PagedCollection[Comment]
	expanded map[ID]struct{}
}

// NewCommentTree creates the thread for entityID. counters is adjusted by
// every mutation and must outlive the tree.
func NewCommentTree(entityID ID, counters *Aggregate, deps Deps) *CommentTree {
	return newCommentTree(entityID, counters, NewRunner(), deps)
}

func newCommentTree(entityID ID, counters *Aggregate, runner *Runner, deps Deps) *CommentTree {
	if counters == nil {
		counters = &Aggregate{}
	}
	if deps.IDs == nil {
		deps.IDs = NewAllocator()
	}
	t := &CommentTree{
		entityID: entityID,
		deps:     deps,
		runner:   runner,
		counters: counters,
		replies:  make(map[ID]*PagedCollection[Comment]),
		nested:   make(map[ID]*PagedCollection[Comment]),
		expanded: make(map[ID]struct{}),
	}
	t.roots = t.newCollection(func(ctx context.Context, page, size int) (Page[Comment], error) {
		return deps.Gateway.FetchRootReviews(ctx, entityID, page, size)
	}, ID{}, DepthRoot)
	return t
}

// newCollection wraps fetch so every loaded comment carries the depth and
// parent of the collection it lands in.
func (t *CommentTree) newCollection(fetch Fetcher[Comment], parent ID, depth Depth) *PagedCollection[Comment] {
	c := NewPagedCollection(t.deps.PageSize, func(ctx context.Context, page, size int) (Page[Comment], error) {
		p, err := fetch(ctx, page, size)
		if err != nil {
			return p, err
		}
		for i := range p.Items {
			p.Items[i].Depth = depth
			p.Items[i].ParentID = parent
		}
		return p, nil
	})
	ids := t.deps.IDs
	c.OnPage(func(items []Comment) {
		for _, it := range items {
			ids.Observe(it.ID)
		}
	})
	return c
}

func (t *CommentTree) newChildren(parent Comment) *PagedCollection[Comment] {
	gw := t.deps.Gateway
	id := parent.ID
	if parent.Depth == DepthRoot {
		return t.newCollection(func(ctx context.Context, page, size int) (Page[Comment], error) {
			return gw.FetchReplies(ctx, id, page, size)
		}, id, DepthReply)
	}
	return t.newCollection(func(ctx context.Context, page, size int) (Page[Comment], error) {
		return gw.FetchNestedReplies(ctx, id, page, size)
	}, id, DepthNested)
}

// children returns the map holding the collections below a node at depth d
func (t *CommentTree) children(d Depth) map[ID]*PagedCollection[Comment] {
	if d == DepthRoot {
		return t.replies
	}
	return t.nested
}

// collectionOf returns the collection a comment at depth d with parent lives in
func (t *CommentTree) collectionOf(parent ID, d Depth) *PagedCollection[Comment] {
	switch d {
	case DepthRoot:
		return t.roots
	case DepthReply:
		return t.replies[parent]
	default:
		return t.nested[parent]
	}
}

func (t *CommentTree) alive() bool {
	return !t.runner.Closed()
}

// EntityID returns the recommendation the thread belongs to
func (t *CommentTree) EntityID() ID { return t.entityID }

// Counters returns the current display counters
func (t *CommentTree) Counters() Aggregate { return *t.counters }

// Closed reports whether the owning screen has gone away
func (t *CommentTree) Closed() bool { return t.runner.Closed() }

// Close detaches the tree from its screen. Completions arriving afterwards
// report stale; failed writes still undo their counter changes.
func (t *CommentTree) Close() {
	t.runner.Close()
}

// Find looks a comment up at any level
func (t *CommentTree) Find(id ID) (Comment, bool) {
	if c, ok := t.roots.Get(id); ok {
		return c, true
	}
	for _, coll := range t.replies {
		if c, ok := coll.Get(id); ok {
			return c, true
		}
	}
	for _, coll := range t.nested {
		if c, ok := coll.Get(id); ok {
			return c, true
		}
	}
	return Comment{}, false
}

// Roots returns the loaded root reviews, newest first
func (t *CommentTree) Roots() []Comment { return t.roots.Items() }

// Children returns the loaded replies of a root or nested replies of a reply
func (t *CommentTree) Children(id ID) []Comment {
	if coll, ok := t.replies[id]; ok {
		return coll.Items()
	}
	if coll, ok := t.nested[id]; ok {
		return coll.Items()
	}
	return nil
}

// Expanded reports whether id is shown expanded
func (t *CommentTree) Expanded(id ID) bool {
	_, ok := t.expanded[id]
	return ok
}

// RootsExhausted reports whether every root review page has been loaded
func (t *CommentTree) RootsExhausted() bool { return t.roots.Exhausted() }

// LoadRoots loads the next page of root reviews. It returns nil when a load
// is already running or nothing is left.
func (t *CommentTree) LoadRoots() Task {
	if !t.alive() {
		return nil
	}
	task, ok := t.roots.LoadNext()
	if !ok {
		return nil
	}
	return guard(task, t.alive)
}

// ToggleExpand flips the expansion of id. Expanding a node whose children
// were never loaded starts loading their first page; collapsing never loads.
func (t *CommentTree) ToggleExpand(id ID) (Task, error) {
	const op = "engagement.ToggleExpand"

	if !t.alive() {
		return nil, wrap(op, ErrClosed)
	}
	node, ok := t.Find(id)
	if !ok {
		return nil, wrap(op, ErrNotFound)
	}
	if !node.Depth.CanReply() {
		return nil, wrap(op, ErrDepthExceeded)
	}

	if t.Expanded(id) {
		delete(t.expanded, id)
		return nil, nil
	}
	t.expanded[id] = struct{}{}

	// the server knows no children of an unconfirmed node
	if node.Pending() {
		return nil, nil
	}

	kids := t.children(node.Depth)
	coll, ok := kids[id]
	if !ok {
		coll = t.newChildren(node)
		kids[id] = coll
	}
	if coll.NextPage() != 0 || coll.Exhausted() || coll.Loading() {
		return nil, nil
	}
	task, ok := coll.LoadNext()
	if !ok {
		return nil, nil
	}
	return guard(task, t.alive), nil
}

// LoadMoreReplies loads the next page below an expanded node
func (t *CommentTree) LoadMoreReplies(id ID) (Task, error) {
	const op = "engagement.LoadMoreReplies"

	if !t.alive() {
		return nil, wrap(op, ErrClosed)
	}
	coll, ok := t.replies[id]
	if !ok {
		coll, ok = t.nested[id]
	}
	if !ok {
		return nil, wrap(op, ErrNotFound)
	}
	task, ok := coll.LoadNext()
	if !ok {
		return nil, nil
	}
	return guard(task, t.alive), nil
}

// Refresh drops every loaded page and expansion and reloads the first page
// of root reviews. Pages still in flight are discarded when they land.
// Pending writes still settle; a failed one takes back the counter change
// it made unless the reload already replaced that counter.
func (t *CommentTree) Refresh() Task {
	t.roots.Reset()
	for id, coll := range t.replies {
		coll.Reset()
		delete(t.replies, id)
	}
	for id, coll := range t.nested {
		coll.Reset()
		delete(t.nested, id)
	}
	t.expanded = make(map[ID]struct{})
	return t.LoadRoots()
}

// RowKind tells list rows apart
type RowKind uint8

const (
	RowComment RowKind = iota
	// RowLoading marks a page being fetched
	RowLoading
	// RowMore marks a collection with pages left to load
	RowMore
)

// Row is one line of the flattened thread. For RowLoading and RowMore,
// ParentID names the node whose children are meant (zero for roots) and
// Depth is the level of those children.
type Row struct {
	Kind     RowKind
	Comment  Comment
	Depth    Depth
	ParentID ID
	Expanded bool
}

// Rows flattens the visible part of the thread in display order: each root,
// then its replies when expanded, each followed by its nested replies when
// expanded.
func (t *CommentTree) Rows() []Row {
	rows := make([]Row, 0, t.roots.Len())
	t.appendRows(&rows, t.roots, ID{}, DepthRoot)
	return rows
}

func (t *CommentTree) appendRows(rows *[]Row, coll *PagedCollection[Comment], parent ID, depth Depth) {
	for _, c := range coll.items {
		expanded := t.Expanded(c.ID)
		*rows = append(*rows, Row{
			Kind:     RowComment,
			Comment:  c,
			Depth:    depth,
			ParentID: parent,
			Expanded: expanded,
		})
		if !expanded {
			continue
		}
		if child, ok := c.Depth.Child(); ok {
			if kids, ok := t.children(depth)[c.ID]; ok {
				t.appendRows(rows, kids, c.ID, child)
			}
		}
	}

	switch {
	case coll.Loading():
		*rows = append(*rows, Row{Kind: RowLoading, Depth: depth, ParentID: parent})
	case !coll.Exhausted():
		*rows = append(*rows, Row{Kind: RowMore, Depth: depth, ParentID: parent})
	}
}
