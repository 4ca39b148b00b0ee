package engagement

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type scriptedFetch struct {
	pages []Page[Comment]
	errs  []error
	calls int
}

func (s *scriptedFetch) fetch(_ context.Context, page, _ int) (Page[Comment], error) {
	s.calls++
	if page < len(s.errs) && s.errs[page] != nil {
		err := s.errs[page]
		s.errs[page] = nil
		return Page[Comment]{}, err
	}
	return s.pages[page], nil
}

func comments(ns ...int64) []Comment {
	out := make([]Comment, len(ns))
	for i, n := range ns {
		out[i] = Comment{ID: ServerID(n)}
	}
	return out
}

func TestLoadNextDeduplicates(t *testing.T) {
	src := &scriptedFetch{pages: []Page[Comment]{
		{Items: comments(5, 4, 3)},
		// a new review at the head shifted the server's window by one
		{Items: comments(3, 2, 1), IsLast: true},
	}}
	c := NewPagedCollection(3, src.fetch)

	for c.HasMore() {
		task, ok := c.LoadNext()
		require.True(t, ok)
		require.True(t, settle(t, task).Succeeded)
	}

	assert.Equal(t, []ID{ServerID(5), ServerID(4), ServerID(3), ServerID(2), ServerID(1)}, ids(c.Items()))
	assert.Equal(t, 2, c.NextPage())
}

func TestLoadNextGuardsReentry(t *testing.T) {
	src := &scriptedFetch{pages: []Page[Comment]{{Items: comments(1)}}}
	c := NewPagedCollection(1, src.fetch)

	task, ok := c.LoadNext()
	require.True(t, ok)
	assert.True(t, c.Loading())

	again, ok := c.LoadNext()
	assert.False(t, ok)
	assert.Nil(t, again)

	settle(t, task)
	assert.False(t, c.Loading())
	assert.Equal(t, 1, src.calls)
}

func TestLoadNextOnExhaustedMakesNoCall(t *testing.T) {
	src := &scriptedFetch{pages: []Page[Comment]{{Items: comments(2, 1), IsLast: true}}}
	c := NewPagedCollection(5, src.fetch)
	task, _ := c.LoadNext()
	settle(t, task)
	require.True(t, c.Exhausted())
	before := c.Items()

	task, ok := c.LoadNext()
	assert.False(t, ok)
	assert.Nil(t, task)
	assert.Equal(t, before, c.Items())
	assert.Equal(t, 1, src.calls)
}

func TestFailedPageLeavesItems(t *testing.T) {
	src := &scriptedFetch{
		pages: []Page[Comment]{{Items: comments(4, 3)}, {Items: comments(2, 1), IsLast: true}},
		errs:  []error{nil, errOffline},
	}
	c := NewPagedCollection(2, src.fetch)
	task, _ := c.LoadNext()
	settle(t, task)

	task, _ = c.LoadNext()
	res := settle(t, task)
	assert.ErrorIs(t, res.Err, errOffline)
	assert.Equal(t, []ID{ServerID(4), ServerID(3)}, ids(c.Items()))
	assert.False(t, c.Loading())
	assert.Equal(t, 1, c.NextPage())

	task, ok := c.LoadNext()
	require.True(t, ok)
	assert.True(t, settle(t, task).Succeeded)
	assert.Equal(t, 4, c.Len())
	assert.True(t, c.Exhausted())
}

func TestResetMakesInFlightPageStale(t *testing.T) {
	src := &scriptedFetch{pages: []Page[Comment]{{Items: comments(9)}}}
	c := NewPagedCollection(1, src.fetch)
	task, _ := c.LoadNext()

	c.Reset()
	res := settle(t, task)
	assert.True(t, res.Stale)
	assert.Zero(t, c.Len())
	assert.False(t, c.Loading())

	other := &scriptedFetch{pages: []Page[Comment]{{Items: comments(7), IsLast: true}}}
	c.ResetWith(other.fetch)
	task, ok := c.LoadNext()
	require.True(t, ok)
	settle(t, task)
	assert.Equal(t, []ID{ServerID(7)}, ids(c.Items()))
}

func TestLocalHelpers(t *testing.T) {
	c := NewPagedCollection[Comment](0, nil)

	assert.True(t, c.InsertAtHead(Comment{ID: ServerID(1)}))
	assert.True(t, c.InsertAtHead(Comment{ID: LocalID(2)}))
	assert.False(t, c.InsertAtHead(Comment{ID: ServerID(1)}))
	assert.Equal(t, []ID{LocalID(2), ServerID(1)}, ids(c.Items()))

	assert.True(t, c.UpdateByID(ServerID(1), func(x *Comment) { x.Content = "edited" }))
	got, ok := c.Get(ServerID(1))
	require.True(t, ok)
	assert.Equal(t, "edited", got.Content)

	removed, ok := c.RemoveByID(LocalID(2))
	assert.True(t, ok)
	assert.Equal(t, LocalID(2), removed.ID)
	_, ok = c.RemoveByID(LocalID(2))
	assert.False(t, ok)

	assert.Equal(t, 0, c.NextPage())
	assert.False(t, c.Exhausted())
}
