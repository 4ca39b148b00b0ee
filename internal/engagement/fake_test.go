package engagement

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"testing"

	"github.com/stretchr/testify/require"

	"tripmate/pkg/logger"
)

var errOffline = errors.New("network unreachable")

func init() {
	logger.Init(logger.Config{Level: "error", Output: "discard"})
}

// fakeGateway is an in-memory server. Writes fail with failWrites when set.
type fakeGateway struct {
	mu sync.Mutex

	recs     []Recommendation
	roots    map[ID][]Comment
	children map[ID][]Comment
	nextID   int64

	failWrites error
	failFetch  error
	calls      map[string]int
	filters    []string
}

func newFakeGateway() *fakeGateway {
	return &fakeGateway{
		roots:    make(map[ID][]Comment),
		children: make(map[ID][]Comment),
		nextID:   1000,
		calls:    make(map[string]int),
	}
}

func (g *fakeGateway) count(name string) int {
	g.mu.Lock()
	defer g.mu.Unlock()
	return g.calls[name]
}

func (g *fakeGateway) hit(name string) {
	g.calls[name]++
}

func page[T any](all []T, page, size int) Page[T] {
	start := page * size
	if start > len(all) {
		start = len(all)
	}
	end := start + size
	if end > len(all) {
		end = len(all)
	}
	items := make([]T, end-start)
	copy(items, all[start:end])
	return Page[T]{Items: items, IsLast: end >= len(all)}
}

func (g *fakeGateway) FetchRecommendations(_ context.Context, filter string, p, size int) (Page[Recommendation], error) {
	g.mu.Lock()
	defer g.mu.Unlock()
	g.hit("FetchRecommendations")
	g.filters = append(g.filters, filter)
	if g.failFetch != nil {
		return Page[Recommendation]{}, g.failFetch
	}
	return page(g.recs, p, size), nil
}

func (g *fakeGateway) FetchRootReviews(_ context.Context, entityID ID, p, size int) (Page[Comment], error) {
	g.mu.Lock()
	defer g.mu.Unlock()
	g.hit("FetchRootReviews")
	if g.failFetch != nil {
		return Page[Comment]{}, g.failFetch
	}
	return page(g.roots[entityID], p, size), nil
}

func (g *fakeGateway) FetchReplies(_ context.Context, rootID ID, p, size int) (Page[Comment], error) {
	g.mu.Lock()
	defer g.mu.Unlock()
	g.hit("FetchReplies")
	if g.failFetch != nil {
		return Page[Comment]{}, g.failFetch
	}
	return page(g.children[rootID], p, size), nil
}

func (g *fakeGateway) FetchNestedReplies(_ context.Context, replyID ID, p, size int) (Page[Comment], error) {
	g.mu.Lock()
	defer g.mu.Unlock()
	g.hit("FetchNestedReplies")
	if g.failFetch != nil {
		return Page[Comment]{}, g.failFetch
	}
	return page(g.children[replyID], p, size), nil
}

func (g *fakeGateway) CreateComment(_ context.Context, req CreateRequest) (Created, error) {
	g.mu.Lock()
	defer g.mu.Unlock()
	g.hit("CreateComment")
	if req.ParentID.IsLocal() || req.EntityID.IsLocal() {
		return Created{}, fmt.Errorf("local id sent to server: %v", req)
	}
	if g.failWrites != nil {
		return Created{}, g.failWrites
	}
	g.nextID++
	c := Comment{ID: ServerID(g.nextID), ParentID: req.ParentID, Content: req.Content}
	if req.ParentID.IsZero() {
		g.roots[req.EntityID] = append([]Comment{c}, g.roots[req.EntityID]...)
	} else {
		g.children[req.ParentID] = append([]Comment{c}, g.children[req.ParentID]...)
	}
	return Created{ID: c.ID, Content: req.Content}, nil
}

func (g *fakeGateway) EditComment(_ context.Context, id ID, _ string) error {
	g.mu.Lock()
	defer g.mu.Unlock()
	g.hit("EditComment")
	if id.IsLocal() {
		return fmt.Errorf("local id sent to server: %v", id)
	}
	return g.failWrites
}

func (g *fakeGateway) DeleteComment(_ context.Context, id ID) error {
	g.mu.Lock()
	defer g.mu.Unlock()
	g.hit("DeleteComment")
	if id.IsLocal() {
		return fmt.Errorf("local id sent to server: %v", id)
	}
	return g.failWrites
}

func (g *fakeGateway) ToggleLike(_ context.Context, entityID ID, _ int64) (ID, error) {
	g.mu.Lock()
	defer g.mu.Unlock()
	g.hit("ToggleLike")
	if g.failWrites != nil {
		return ID{}, g.failWrites
	}
	return entityID, nil
}

func (g *fakeGateway) ReportComment(_ context.Context, id ID, _, _ string) error {
	g.mu.Lock()
	defer g.mu.Unlock()
	g.hit("ReportComment")
	if id.IsLocal() {
		return fmt.Errorf("local id sent to server: %v", id)
	}
	return g.failWrites
}

// seedRoots stores n root reviews with ids base+1..base+n, newest first
func (g *fakeGateway) seedRoots(entity ID, base int64, n int) []Comment {
	out := make([]Comment, 0, n)
	for i := int64(n); i >= 1; i-- {
		out = append(out, Comment{
			ID:         ServerID(base + i),
			AuthorName: "traveler",
			Content:    fmt.Sprintf("review %d", base+i),
		})
	}
	g.roots[entity] = out
	return out
}

func (g *fakeGateway) seedChildren(parent ID, base int64, n int) []Comment {
	out := make([]Comment, 0, n)
	for i := int64(n); i >= 1; i-- {
		out = append(out, Comment{ID: ServerID(base + i), Content: fmt.Sprintf("reply %d", base+i)})
	}
	g.children[parent] = out
	return out
}

// settle runs a task to completion and settles it, like the UI loop does
func settle(t *testing.T, task Task) Result {
	t.Helper()
	require.NotNil(t, task)
	return task(context.Background()).Settle()
}

func testDeps(gw Gateway) Deps {
	return Deps{
		Gateway:  gw,
		Cache:    NewCache(),
		IDs:      NewAllocator(),
		User:     User{ID: 7, Name: "ana"},
		PageSize: 10,
	}
}

func ids(comments []Comment) []ID {
	out := make([]ID, len(comments))
	for i, c := range comments {
		out[i] = c.ID
	}
	return out
}
