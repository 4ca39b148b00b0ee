package engagement

import (
	"context"

	"tripmate/pkg/logger"
	"tripmate/pkg/utils"
)

func cleanContent(op, content string) (string, error) {
	clean, err := utils.ValidateContent(content)
	if err != nil {
		return "", wrap(op, ErrInvalidContent)
	}
	return clean, nil
}

// AddRootComment posts a new root review. The review shows up at the head of
// the thread immediately and is removed again if the server rejects it.
func (t *CommentTree) AddRootComment(content string) (Task, error) {
	const op = "engagement.AddRootComment"

	if !t.alive() {
		return nil, wrap(op, ErrClosed)
	}
	clean, err := cleanContent(op, content)
	if err != nil {
		return nil, err
	}
	return t.create("post review", Comment{Depth: DepthRoot}, clean), nil
}

// AddReply replies to a root review
func (t *CommentTree) AddReply(rootID ID, content string) (Task, error) {
	return t.addChild("engagement.AddReply", rootID, DepthRoot, content)
}

// AddNestedReply replies to a reply. Replying to a nested reply fails with
// ErrDepthExceeded.
func (t *CommentTree) AddNestedReply(replyID ID, content string) (Task, error) {
	return t.addChild("engagement.AddNestedReply", replyID, DepthReply, content)
}

// Reply answers parentID at whatever level it sits. A zero parentID posts a
// root review.
func (t *CommentTree) Reply(parentID ID, content string) (Task, error) {
	if parentID.IsZero() {
		return t.AddRootComment(content)
	}
	node, ok := t.Find(parentID)
	if !ok {
		return nil, wrap("engagement.Reply", ErrNotFound)
	}
	return t.addChild("engagement.Reply", parentID, node.Depth, content)
}

func (t *CommentTree) addChild(op string, parentID ID, want Depth, content string) (Task, error) {
	if !t.alive() {
		return nil, wrap(op, ErrClosed)
	}
	parent, ok := t.Find(parentID)
	if !ok {
		return nil, wrap(op, ErrNotFound)
	}
	child, ok := parent.Depth.Child()
	if !ok {
		return nil, wrap(op, ErrDepthExceeded)
	}
	if parent.Depth != want {
		return nil, wrap(op, ErrInvalidParent)
	}
	if parent.Pending() {
		return nil, wrap(op, ErrUnconfirmed)
	}
	if parent.Status != StatusActive {
		return nil, wrap(op, ErrNotEditable)
	}
	clean, err := cleanContent(op, content)
	if err != nil {
		return nil, err
	}
	return t.create("post reply", Comment{ParentID: parentID, Depth: child}, clean), nil
}

// create inserts a local placeholder built from proto and issues the create
// call. Callers have validated everything already.
func (t *CommentTree) create(opName string, proto Comment, content string) Task {
	local := t.deps.IDs.Allocate()
	node := proto
	node.ID = local
	node.AuthorID = t.deps.User.ID
	node.AuthorName = t.deps.User.Name
	node.Content = content
	node.Status = StatusActive
	node.CreatedAt = t.deps.now()

	var (
		madeCollection bool
		counted        countChange
	)

	apply := func() {
		coll := t.collectionOf(node.ParentID, node.Depth)
		if coll == nil {
			parent, _ := t.Find(node.ParentID)
			coll = t.newChildren(parent)
			t.children(parent.Depth)[parent.ID] = coll
			madeCollection = true
		}
		coll.InsertAtHead(node)
		counted = t.adjustCount(node, +1)
	}

	undo := func() {
		t.revertCount(counted)
		coll := t.collectionOf(node.ParentID, node.Depth)
		if coll == nil {
			return
		}
		if _, ok := coll.RemoveByID(local); !ok {
			return
		}
		if madeCollection && coll.Len() == 0 && coll.NextPage() == 0 && !coll.Loading() {
			delete(t.children(node.Depth-1), node.ParentID)
		}
	}

	gw := t.deps.Gateway
	req := CreateRequest{EntityID: t.entityID, ParentID: node.ParentID, Content: content}

	return t.runner.Run(Mutation{
		Op:    opName,
		Scope: scopeComment,
		Key:   local,
		Apply: apply,
		Undo:  undo,
		Remote: func(ctx context.Context) (func(), error) {
			created, err := gw.CreateComment(ctx, req)
			if err != nil {
				return nil, err
			}
			return func() { t.confirm(node, created) }, nil
		},
	})
}

// countChange records where adjustCount moved a counter
type countChange struct {
	delta  int
	parent ID
	coll   *PagedCollection[Comment]
	gen    uint64
}

// adjustCount moves the counter a comment contributes to: the aggregate for
// root reviews, the parent's reply count otherwise.
func (t *CommentTree) adjustCount(c Comment, delta int) countChange {
	if c.Depth == DepthRoot {
		t.counters.ReviewsCount += delta
		return countChange{delta: delta}
	}
	parent, ok := t.Find(c.ParentID)
	if !ok {
		return countChange{}
	}
	coll := t.collectionOf(parent.ParentID, parent.Depth)
	if coll == nil || !coll.UpdateByID(parent.ID, func(p *Comment) { p.ReplyCount += delta }) {
		return countChange{}
	}
	return countChange{delta: delta, parent: parent.ID, coll: coll, gen: coll.Generation()}
}

// revertCount takes back a change made by adjustCount. The aggregate is
// never reloaded by the tree, so root changes always revert. A reply count
// lives on the parent node and reverts only while that node was not
// replaced by a reload.
func (t *CommentTree) revertCount(ch countChange) {
	if ch.delta == 0 {
		return
	}
	if ch.coll == nil {
		t.counters.ReviewsCount -= ch.delta
		return
	}
	if ch.coll.Generation() != ch.gen {
		return
	}
	ch.coll.UpdateByID(ch.parent, func(p *Comment) { p.ReplyCount -= ch.delta })
}

// confirm swaps the placeholder for the server's id. If a page load already
// brought the server copy in, the placeholder is dropped instead.
func (t *CommentTree) confirm(node Comment, created Created) {
	local := node.ID
	t.deps.IDs.Observe(created.ID)

	coll := t.collectionOf(node.ParentID, node.Depth)
	if coll == nil || !coll.Contains(local) {
		return
	}
	if !created.ID.IsServer() {
		logger.WithFields(map[string]interface{}{
			"local": local.String(),
		}).Warn("create confirmed without a server id, keeping placeholder")
		return
	}

	if coll.Contains(created.ID) {
		coll.RemoveByID(local)
		return
	}
	coll.UpdateByID(local, func(c *Comment) {
		c.ID = created.ID
		if created.Content != "" {
			c.Content = created.Content
		}
	})

	kids := t.children(node.Depth)
	if sub, ok := kids[local]; ok {
		delete(kids, local)
		sub.UpdateAll(func(c *Comment) { c.ParentID = created.ID })
		kids[created.ID] = sub
	}
	if _, ok := t.expanded[local]; ok {
		delete(t.expanded, local)
		t.expanded[created.ID] = struct{}{}
	}
}

// target looks up a confirmed, still active comment for edit or delete
func (t *CommentTree) target(op string, id ID) (Comment, *PagedCollection[Comment], error) {
	if !t.alive() {
		return Comment{}, nil, wrap(op, ErrClosed)
	}
	node, ok := t.Find(id)
	if !ok {
		return Comment{}, nil, wrap(op, ErrNotFound)
	}
	if node.Pending() {
		return Comment{}, nil, wrap(op, ErrUnconfirmed)
	}
	if node.Status != StatusActive {
		return Comment{}, nil, wrap(op, ErrNotEditable)
	}
	return node, t.collectionOf(node.ParentID, node.Depth), nil
}

// EditComment replaces the body of a comment. It returns a nil task when the
// text is unchanged.
func (t *CommentTree) EditComment(id ID, content string) (Task, error) {
	const op = "engagement.EditComment"

	node, coll, err := t.target(op, id)
	if err != nil {
		return nil, err
	}
	clean, err := cleanContent(op, content)
	if err != nil {
		return nil, err
	}
	if clean == node.Content {
		return nil, nil
	}

	prev, gen := node.Content, coll.Generation()
	gw := t.deps.Gateway

	return t.runner.Run(Mutation{
		Op:    "edit comment",
		Scope: scopeComment,
		Key:   id,
		Apply: func() {
			coll.UpdateByID(id, func(c *Comment) { c.Content = clean })
		},
		Undo: func() {
			if coll.Generation() == gen {
				coll.UpdateByID(id, func(c *Comment) { c.Content = prev })
			}
		},
		Remote: func(ctx context.Context) (func(), error) {
			return nil, gw.EditComment(ctx, id, clean)
		},
	}), nil
}

// DeleteComment marks a comment deleted. The node stays in place so its
// replies keep their parent; the UI renders a placeholder.
func (t *CommentTree) DeleteComment(id ID) (Task, error) {
	const op = "engagement.DeleteComment"

	node, coll, err := t.target(op, id)
	if err != nil {
		return nil, err
	}

	prev, gen := node.Status, coll.Generation()
	var counted countChange
	gw := t.deps.Gateway

	return t.runner.Run(Mutation{
		Op:    "delete comment",
		Scope: scopeComment,
		Key:   id,
		Apply: func() {
			if coll.UpdateByID(id, func(c *Comment) { c.Status = StatusDeleted }) {
				counted = t.adjustCount(node, -1)
			}
		},
		Undo: func() {
			t.revertCount(counted)
			if coll.Generation() == gen {
				coll.UpdateByID(id, func(c *Comment) { c.Status = prev })
			}
		},
		Remote: func(ctx context.Context) (func(), error) {
			return nil, gw.DeleteComment(ctx, id)
		},
	}), nil
}

// ReportComment flags a comment for moderation. Nothing changes locally.
func (t *CommentTree) ReportComment(id ID, reason, detail string) (Task, error) {
	const op = "engagement.ReportComment"

	if !t.alive() {
		return nil, wrap(op, ErrClosed)
	}
	node, ok := t.Find(id)
	if !ok {
		return nil, wrap(op, ErrNotFound)
	}
	if node.Pending() {
		return nil, wrap(op, ErrUnconfirmed)
	}
	if err := utils.ValidateReportReason(reason); err != nil {
		return nil, wrap(op, ErrInvalidContent)
	}

	gw := t.deps.Gateway
	detail = utils.SanitizeContent(detail)

	return t.runner.Run(Mutation{
		Op:  "report comment",
		Key: id,
		Remote: func(ctx context.Context) (func(), error) {
			return nil, gw.ReportComment(ctx, id, reason, detail)
		},
	}), nil
}
