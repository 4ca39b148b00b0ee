package engagement

// Detail is the engagement state of one recommendation detail screen: its
// counters, the review thread, reply drafts and the like toggle. All parts
// share one runner, so closing the screen silences every pending call.
// Counters and the like flag live in the shared cache and outlive it.
type Detail struct {
	rec    Recommendation
	counts *Aggregate
	cache  *Cache
	runner *Runner
	likes  *Likes

	Tree   *CommentTree
	Drafts *DraftBook
}

// NewDetail builds the screen state for rec. The cache is seeded with the
// fetched like flag and counters unless another screen already knows better.
func NewDetail(rec Recommendation, deps Deps) *Detail {
	if deps.Cache == nil {
		deps.Cache = NewCache()
	}
	if deps.IDs == nil {
		deps.IDs = NewAllocator()
	}
	deps.Cache.Seed(rec.ID, rec.Liked)
	deps.IDs.Observe(rec.ID)

	runner := NewRunner()
	d := &Detail{
		rec:    rec,
		counts: deps.Cache.Counters(rec.ID, rec.Aggregate),
		cache:  deps.Cache,
		runner: runner,
		likes:  newLikes(deps, runner),
		Drafts: NewDraftBook(),
	}
	d.Tree = newCommentTree(rec.ID, d.counts, runner, deps)
	return d
}

// Recommendation returns the entity with live counters and like state
func (d *Detail) Recommendation() Recommendation {
	r := d.rec
	r.Liked = d.cache.Liked(r.ID)
	r.Aggregate = *d.counts
	return r
}

func (d *Detail) Counters() Aggregate { return *d.counts }

func (d *Detail) Liked() bool { return d.cache.Liked(d.rec.ID) }

// ToggleLike flips the current user's like on the recommendation
func (d *Detail) ToggleLike() (Task, error) {
	return d.likes.Toggle(d.rec.ID, &d.counts.LikesCount)
}

// Submit sends the draft for target, a zero target meaning a new root
// review. The draft is cleared once the comment is accepted locally.
func (d *Detail) Submit(target ID) (Task, error) {
	task, err := d.Tree.Reply(target, d.Drafts.Get(target))
	if err != nil {
		return nil, err
	}
	d.Drafts.Clear(target)
	return task, nil
}

// Close detaches the state from its screen. Calls still in flight roll back
// the shared cache if they fail.
func (d *Detail) Close() {
	d.runner.Close()
}
