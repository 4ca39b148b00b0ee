package engagement

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var entity = ServerID(42)

type treeState struct {
	rows     []Row
	counters Aggregate
	replies  []ID
	nested   []ID
	expanded int
}

func snapshot(tr *CommentTree) treeState {
	s := treeState{rows: tr.Rows(), counters: tr.Counters(), expanded: len(tr.expanded)}
	for id := range tr.replies {
		s.replies = append(s.replies, id)
	}
	for id := range tr.nested {
		s.nested = append(s.nested, id)
	}
	return s
}

// loadedTree returns a tree with three root reviews loaded and counters
// matching the server.
func loadedTree(t *testing.T) (*CommentTree, *fakeGateway) {
	t.Helper()
	gw := newFakeGateway()
	gw.seedRoots(entity, 100, 3)
	tr := NewCommentTree(entity, &Aggregate{ReviewsCount: 3}, testDeps(gw))
	res := settle(t, tr.LoadRoots())
	require.True(t, res.Succeeded)
	require.Len(t, tr.Roots(), 3)
	return tr, gw
}

func TestLoadRootsSetsDepth(t *testing.T) {
	tr, _ := loadedTree(t)

	for _, c := range tr.Roots() {
		assert.Equal(t, DepthRoot, c.Depth)
		assert.True(t, c.ParentID.IsZero())
	}
	assert.True(t, tr.RootsExhausted())
	assert.Nil(t, tr.LoadRoots())
}

func TestOfflineRootCommentRevertsExactly(t *testing.T) {
	tr, gw := loadedTree(t)
	gw.failWrites = errOffline
	before := snapshot(tr)

	task, err := tr.AddRootComment("hi")
	require.NoError(t, err)

	roots := tr.Roots()
	require.Len(t, roots, 4)
	assert.True(t, roots[0].Pending())
	assert.Equal(t, "hi", roots[0].Content)
	assert.Equal(t, "ana", roots[0].AuthorName)
	assert.Equal(t, 4, tr.Counters().ReviewsCount)

	res := settle(t, task)
	assert.False(t, res.Succeeded)
	assert.False(t, res.Stale)
	assert.ErrorIs(t, res.Err, errOffline)
	assert.Equal(t, "Could not post review. Please try again.", res.Message)

	assert.Equal(t, before, snapshot(tr))
	assert.Equal(t, 1, gw.count("CreateComment"))
}

func TestRootCommentConfirmedGetsServerID(t *testing.T) {
	tr, _ := loadedTree(t)

	task, err := tr.AddRootComment("  <b>great</b> spot ")
	require.NoError(t, err)
	local := tr.Roots()[0].ID
	require.True(t, local.IsLocal())

	res := settle(t, task)
	require.True(t, res.Succeeded)

	head := tr.Roots()[0]
	assert.True(t, head.ID.IsServer())
	assert.Equal(t, "great spot", head.Content)
	_, found := tr.Find(local)
	assert.False(t, found)
	assert.Equal(t, 4, tr.Counters().ReviewsCount)
}

func TestConfirmDropsPlaceholderWhenPageBroughtServerCopy(t *testing.T) {
	gw := newFakeGateway()
	tr := NewCommentTree(entity, &Aggregate{}, testDeps(gw))

	task, err := tr.AddRootComment("first")
	require.NoError(t, err)

	// the remote call lands before the page load that already contains it
	done := task(context.Background())
	res := settle(t, tr.LoadRoots())
	require.True(t, res.Succeeded)
	require.Len(t, tr.Roots(), 2)

	require.True(t, done.Settle().Succeeded)
	roots := tr.Roots()
	require.Len(t, roots, 1)
	assert.True(t, roots[0].ID.IsServer())
}

func TestLocalIDsNeverCollide(t *testing.T) {
	gw := newFakeGateway()
	gw.seedRoots(entity, 9_000_000_000_000, 3)
	tr := NewCommentTree(entity, &Aggregate{}, testDeps(gw))
	settle(t, tr.LoadRoots())

	seen := make(map[int64]bool)
	for _, c := range tr.Roots() {
		seen[c.ID.N] = true
	}
	for i := 0; i < 5; i++ {
		_, err := tr.AddRootComment("hello")
		require.NoError(t, err)
		id := tr.Roots()[0].ID
		require.True(t, id.IsLocal())
		assert.False(t, seen[id.N], "local id %v reuses a number already shown", id)
		seen[id.N] = true
	}
}

func TestDepthCeiling(t *testing.T) {
	tr, _ := loadedTree(t)
	root := tr.Roots()[0].ID

	task, err := tr.AddReply(root, "reply")
	require.NoError(t, err)
	require.True(t, settle(t, task).Succeeded)
	reply := tr.Children(root)[0]
	assert.Equal(t, DepthReply, reply.Depth)

	task, err = tr.AddNestedReply(reply.ID, "nested")
	require.NoError(t, err)
	require.True(t, settle(t, task).Succeeded)
	nested := tr.Children(reply.ID)[0]
	assert.Equal(t, DepthNested, nested.Depth)
	assert.Equal(t, reply.ID, nested.ParentID)

	before := snapshot(tr)
	_, err = tr.AddNestedReply(nested.ID, "too deep")
	assert.ErrorIs(t, err, ErrDepthExceeded)
	_, err = tr.Reply(nested.ID, "too deep")
	assert.ErrorIs(t, err, ErrDepthExceeded)
	assert.Equal(t, before, snapshot(tr))
}

func TestReplyValidation(t *testing.T) {
	tr, gw := loadedTree(t)
	root := tr.Roots()[0].ID

	_, err := tr.AddReply(root, "   ")
	assert.ErrorIs(t, err, ErrInvalidContent)

	_, err = tr.AddReply(ServerID(999), "hello")
	assert.ErrorIs(t, err, ErrNotFound)

	_, err = tr.AddNestedReply(root, "hello")
	assert.ErrorIs(t, err, ErrInvalidParent)

	_, err = tr.AddRootComment("pending")
	require.NoError(t, err)
	pending := tr.Roots()[0].ID
	_, err = tr.AddReply(pending, "hello")
	assert.ErrorIs(t, err, ErrUnconfirmed)
	_, err = tr.EditComment(pending, "hello")
	assert.ErrorIs(t, err, ErrUnconfirmed)
	_, err = tr.DeleteComment(pending)
	assert.ErrorIs(t, err, ErrUnconfirmed)

	assert.Equal(t, 0, gw.count("CreateComment"))
}

func TestReplyRollbackRestoresParent(t *testing.T) {
	tr, gw := loadedTree(t)
	root := tr.Roots()[0]
	gw.failWrites = errOffline
	before := snapshot(tr)

	task, err := tr.AddReply(root.ID, "see you there")
	require.NoError(t, err)
	parent, _ := tr.Find(root.ID)
	assert.Equal(t, root.ReplyCount+1, parent.ReplyCount)
	assert.Len(t, tr.Children(root.ID), 1)

	res := settle(t, task)
	assert.ErrorIs(t, res.Err, errOffline)
	assert.Equal(t, "Could not post reply. Please try again.", res.Message)
	assert.Equal(t, before, snapshot(tr))
}

func TestEditRollback(t *testing.T) {
	tr, gw := loadedTree(t)
	target := tr.Roots()[1]
	gw.failWrites = errOffline
	before := snapshot(tr)

	task, err := tr.EditComment(target.ID, "changed my mind")
	require.NoError(t, err)
	got, _ := tr.Find(target.ID)
	assert.Equal(t, "changed my mind", got.Content)

	res := settle(t, task)
	assert.Error(t, res.Err)
	assert.Equal(t, before, snapshot(tr))
}

func TestEditUnchangedIsNoop(t *testing.T) {
	tr, gw := loadedTree(t)
	target := tr.Roots()[0]

	task, err := tr.EditComment(target.ID, target.Content)
	require.NoError(t, err)
	assert.Nil(t, task)
	assert.Equal(t, 0, gw.count("EditComment"))
}

func TestRapidEditsKeepLatestAccepted(t *testing.T) {
	tr, gw := loadedTree(t)
	id := tr.Roots()[0].ID

	first, err := tr.EditComment(id, "one")
	require.NoError(t, err)
	second, err := tr.EditComment(id, "two")
	require.NoError(t, err)

	gw.failWrites = errOffline
	firstDone := first(context.Background())
	gw.failWrites = nil
	secondDone := second(context.Background())

	res := secondDone.Settle()
	assert.True(t, res.Stale, "waits for the older edit")
	assert.Empty(t, res.Message)
	assert.True(t, firstDone.Settle().Succeeded)

	got, _ := tr.Find(id)
	assert.Equal(t, "two", got.Content)
}

func TestRapidEditsBothFailRestoreOriginal(t *testing.T) {
	for _, newestFirst := range []bool{false, true} {
		tr, gw := loadedTree(t)
		target := tr.Roots()[0]
		before := snapshot(tr)

		first, err := tr.EditComment(target.ID, "one")
		require.NoError(t, err)
		second, err := tr.EditComment(target.ID, "two")
		require.NoError(t, err)

		gw.failWrites = errOffline
		done := []Completion{first(context.Background()), second(context.Background())}
		if newestFirst {
			done[0], done[1] = done[1], done[0]
		}

		assert.True(t, done[0].Settle().Stale)
		res := done[1].Settle()
		assert.ErrorIs(t, res.Err, errOffline)
		assert.Equal(t, "Could not edit comment. Please try again.", res.Message)

		got, _ := tr.Find(target.ID)
		assert.Equal(t, target.Content, got.Content)
		assert.Equal(t, before, snapshot(tr))
	}
}

func TestEditThenDeleteBothFail(t *testing.T) {
	tr, gw := loadedTree(t)
	target := tr.Roots()[1]
	before := snapshot(tr)
	gw.failWrites = errOffline

	edit, err := tr.EditComment(target.ID, "typo fixed")
	require.NoError(t, err)
	del, err := tr.DeleteComment(target.ID)
	require.NoError(t, err)
	assert.Equal(t, 2, tr.Counters().ReviewsCount)

	assert.True(t, settle(t, edit).Stale)
	assert.ErrorIs(t, settle(t, del).Err, errOffline)
	assert.Equal(t, before, snapshot(tr))
}

func TestDeleteKeepsNodeAndRollsBack(t *testing.T) {
	tr, gw := loadedTree(t)
	target := tr.Roots()[2]
	before := snapshot(tr)

	gw.failWrites = errOffline
	task, err := tr.DeleteComment(target.ID)
	require.NoError(t, err)
	got, _ := tr.Find(target.ID)
	assert.Equal(t, StatusDeleted, got.Status)
	assert.Equal(t, 2, tr.Counters().ReviewsCount)
	assert.Len(t, tr.Roots(), 3)

	settle(t, task)
	assert.Equal(t, before, snapshot(tr))

	_, err = tr.DeleteComment(target.ID)
	require.NoError(t, err)
	_, err = tr.DeleteComment(target.ID)
	assert.ErrorIs(t, err, ErrNotEditable)
	_, err = tr.EditComment(target.ID, "edit")
	assert.ErrorIs(t, err, ErrNotEditable)
}

func TestCountersSettleToCollection(t *testing.T) {
	tr, gw := loadedTree(t)
	var tasks []Task

	for _, text := range []string{"a", "b", "c"} {
		task, err := tr.AddRootComment(text)
		require.NoError(t, err)
		tasks = append(tasks, task)
	}
	task, err := tr.DeleteComment(tr.Roots()[4].ID)
	require.NoError(t, err)
	tasks = append(tasks, task)

	// second create fails, the others succeed, in reverse order
	completions := make([]Completion, len(tasks))
	for i := len(tasks) - 1; i >= 0; i-- {
		gw.failWrites = nil
		if i == 1 {
			gw.failWrites = errOffline
		}
		completions[i] = tasks[i](context.Background())
	}
	for _, c := range completions {
		c.Settle()
	}

	active := 0
	for _, c := range tr.Roots() {
		if c.Status != StatusDeleted {
			active++
		}
		assert.False(t, c.Pending())
	}
	assert.Equal(t, active, tr.Counters().ReviewsCount)
	assert.Equal(t, 4, active)
}

func TestToggleExpandIsPure(t *testing.T) {
	tr, gw := loadedTree(t)
	root := tr.Roots()[0].ID
	gw.seedChildren(root, 500, 2)
	before := snapshot(tr)

	task, err := tr.ToggleExpand(root)
	require.NoError(t, err)
	require.NotNil(t, task)
	assert.True(t, tr.Expanded(root))

	again, err := tr.ToggleExpand(root)
	require.NoError(t, err)
	assert.Nil(t, again)
	assert.False(t, tr.Expanded(root))
	assert.Equal(t, before.expanded, len(tr.expanded))

	// expanding while the first page is in flight does not load twice
	third, err := tr.ToggleExpand(root)
	require.NoError(t, err)
	assert.Nil(t, third)

	require.True(t, settle(t, task).Succeeded)
	assert.Equal(t, 1, gw.count("FetchReplies"))
	assert.Len(t, tr.Children(root), 2)
	for _, c := range tr.Children(root) {
		assert.Equal(t, DepthReply, c.Depth)
		assert.Equal(t, root, c.ParentID)
	}

	// collapse and expand again, nothing is refetched
	_, _ = tr.ToggleExpand(root)
	task, err = tr.ToggleExpand(root)
	require.NoError(t, err)
	assert.Nil(t, task)
	assert.Equal(t, 1, gw.count("FetchReplies"))
}

func TestExpandRetriesFailedFirstPage(t *testing.T) {
	tr, gw := loadedTree(t)
	root := tr.Roots()[0].ID
	gw.failFetch = errOffline

	task, err := tr.ToggleExpand(root)
	require.NoError(t, err)
	res := settle(t, task)
	assert.ErrorIs(t, res.Err, errOffline)
	assert.Equal(t, "Could not load more. Please try again.", res.Message)

	gw.failFetch = nil
	task, err = tr.LoadMoreReplies(root)
	require.NoError(t, err)
	assert.True(t, settle(t, task).Succeeded)
	assert.Equal(t, 2, gw.count("FetchReplies"))
}

func TestExpandNestedLevel(t *testing.T) {
	tr, gw := loadedTree(t)
	root := tr.Roots()[0].ID
	replies := gw.seedChildren(root, 500, 1)
	gw.seedChildren(replies[0].ID, 600, 3)

	task, _ := tr.ToggleExpand(root)
	settle(t, task)
	task, err := tr.ToggleExpand(replies[0].ID)
	require.NoError(t, err)
	settle(t, task)
	assert.Equal(t, 1, gw.count("FetchNestedReplies"))

	nested := tr.Children(replies[0].ID)
	require.Len(t, nested, 3)
	_, err = tr.ToggleExpand(nested[0].ID)
	assert.ErrorIs(t, err, ErrDepthExceeded)
}

func TestRowsFollowExpansion(t *testing.T) {
	gw := newFakeGateway()
	gw.seedRoots(entity, 100, 2)
	deps := testDeps(gw)
	deps.PageSize = 1
	tr := NewCommentTree(entity, &Aggregate{}, deps)
	settle(t, tr.LoadRoots())

	rows := tr.Rows()
	require.Len(t, rows, 2)
	assert.Equal(t, RowComment, rows[0].Kind)
	assert.Equal(t, RowMore, rows[1].Kind)

	root := tr.Roots()[0].ID
	gw.seedChildren(root, 500, 1)
	task, _ := tr.ToggleExpand(root)
	rows = tr.Rows()
	require.Len(t, rows, 3)
	assert.True(t, rows[0].Expanded)
	assert.Equal(t, RowLoading, rows[1].Kind)
	assert.Equal(t, DepthReply, rows[1].Depth)
	assert.Equal(t, root, rows[1].ParentID)

	settle(t, task)
	rows = tr.Rows()
	require.Len(t, rows, 3)
	assert.Equal(t, RowComment, rows[1].Kind)
	assert.Equal(t, DepthReply, rows[1].Depth)
	assert.Equal(t, RowMore, rows[2].Kind)
	assert.Equal(t, DepthRoot, rows[2].Depth)
}

func TestCloseStillRollsBackCounters(t *testing.T) {
	tr, gw := loadedTree(t)
	gw.failWrites = errOffline

	task, err := tr.AddRootComment("bye")
	require.NoError(t, err)
	require.Equal(t, 4, tr.Counters().ReviewsCount)
	tr.Close()

	res := settle(t, task)
	assert.True(t, res.Stale)
	assert.Empty(t, res.Message)
	assert.Equal(t, 3, tr.Counters().ReviewsCount)
	assert.Len(t, tr.Roots(), 3)

	_, err = tr.AddRootComment("again")
	assert.ErrorIs(t, err, ErrClosed)
	assert.Nil(t, tr.LoadRoots())
}

func TestFailedCreateAcrossRefresh(t *testing.T) {
	tr, gw := loadedTree(t)
	gw.failWrites = errOffline

	task, err := tr.AddRootComment("hi")
	require.NoError(t, err)
	require.Equal(t, 4, tr.Counters().ReviewsCount)

	require.True(t, settle(t, tr.Refresh()).Succeeded)
	require.Len(t, tr.Roots(), 3)

	res := settle(t, task)
	assert.ErrorIs(t, res.Err, errOffline)
	assert.Equal(t, 3, tr.Counters().ReviewsCount)
	assert.Len(t, tr.Roots(), 3)
}

func TestFailedReplyAcrossRefresh(t *testing.T) {
	tr, gw := loadedTree(t)
	root := tr.Roots()[0]
	gw.failWrites = errOffline

	task, err := tr.AddReply(root.ID, "see you there")
	require.NoError(t, err)
	parent, _ := tr.Find(root.ID)
	require.Equal(t, root.ReplyCount+1, parent.ReplyCount)

	require.True(t, settle(t, tr.Refresh()).Succeeded)

	settle(t, task)
	reloaded, ok := tr.Find(root.ID)
	require.True(t, ok)
	assert.Equal(t, root.ReplyCount, reloaded.ReplyCount, "reloaded count is the server's")
	assert.Empty(t, tr.Children(root.ID))
	assert.Equal(t, 3, tr.Counters().ReviewsCount)
}

func TestFailedDeleteAcrossRefresh(t *testing.T) {
	tr, gw := loadedTree(t)
	target := tr.Roots()[0]
	gw.failWrites = errOffline

	task, err := tr.DeleteComment(target.ID)
	require.NoError(t, err)
	require.Equal(t, 2, tr.Counters().ReviewsCount)
	require.True(t, settle(t, tr.Refresh()).Succeeded)

	settle(t, task)
	got, _ := tr.Find(target.ID)
	assert.Equal(t, StatusActive, got.Status)
	assert.Equal(t, 3, tr.Counters().ReviewsCount)
}

func TestRefreshDiscardsInFlightPages(t *testing.T) {
	tr, gw := loadedTree(t)
	root := tr.Roots()[0].ID
	gw.seedChildren(root, 500, 2)

	expand, err := tr.ToggleExpand(root)
	require.NoError(t, err)
	reload := tr.Refresh()
	require.NotNil(t, reload)

	assert.True(t, settle(t, expand).Stale)
	assert.False(t, tr.Expanded(root))
	assert.True(t, settle(t, reload).Succeeded)
	assert.Len(t, tr.Roots(), 3)
	assert.Empty(t, tr.Children(root))
}

func TestReportLeavesStateAlone(t *testing.T) {
	tr, gw := loadedTree(t)
	target := tr.Roots()[0].ID
	before := snapshot(tr)

	_, err := tr.ReportComment(target, "", "")
	assert.ErrorIs(t, err, ErrInvalidContent)

	gw.failWrites = errOffline
	task, err := tr.ReportComment(target, "spam", "links everywhere")
	require.NoError(t, err)
	res := settle(t, task)
	assert.Equal(t, "Could not report comment. Please try again.", res.Message)
	assert.Equal(t, before, snapshot(tr))
	assert.Equal(t, 1, gw.count("ReportComment"))
}
