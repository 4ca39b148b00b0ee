package engagement

import "time"

// Depth is the level of a comment in the thread. Only three levels exist.
type Depth uint8

const (
	DepthRoot Depth = iota
	DepthReply
	DepthNested
)

// Child returns the depth of a reply to a comment at d, false when d is
// already the deepest level.
func (d Depth) Child() (Depth, bool) {
	switch d {
	case DepthRoot:
		return DepthReply, true
	case DepthReply:
		return DepthNested, true
	default:
		return d, false
	}
}

// CanReply reports whether the UI may offer a reply action
func (d Depth) CanReply() bool {
	_, ok := d.Child()
	return ok
}

func (d Depth) String() string {
	switch d {
	case DepthRoot:
		return "root"
	case DepthReply:
		return "reply"
	case DepthNested:
		return "nested"
	default:
		return "unknown"
	}
}

// Status is the moderation state of a comment
type Status uint8

const (
	StatusActive Status = iota
	StatusDeleted
	StatusBlocked
)

// ParseStatus maps the wire value, unknown values are treated as active
func ParseStatus(s string) Status {
	switch s {
	case "deleted", "DELETED":
		return StatusDeleted
	case "blocked", "BLOCKED":
		return StatusBlocked
	default:
		return StatusActive
	}
}

func (s Status) String() string {
	switch s {
	case StatusDeleted:
		return "deleted"
	case StatusBlocked:
		return "blocked"
	default:
		return "active"
	}
}

// Comment is a root review, a reply or a nested reply depending on Depth.
// ParentID is zero for root reviews.
type Comment struct {
	ID         ID
	ParentID   ID
	Depth      Depth
	AuthorID   int64
	AuthorName string
	Content    string
	Status     Status
	ReplyCount int
	CreatedAt  time.Time
}

func (c Comment) Key() ID { return c.ID }

// Pending reports whether the server has not confirmed the comment yet
func (c Comment) Pending() bool {
	return c.ID.IsLocal()
}

// Aggregate holds the display counters of a recommendation. They are
// adjusted by every mutation site and never recomputed from collections.
type Aggregate struct {
	LikesCount   int
	ReviewsCount int
	ViewsCount   int
}

// Recommendation is one entry of the recommendation feed
type Recommendation struct {
	ID         ID
	Title      string
	Location   string
	AuthorName string
	Liked      bool
	Aggregate  Aggregate
	CreatedAt  time.Time
}

func (r Recommendation) Key() ID { return r.ID }

// User is the signed-in user as handed over by the caller
type User struct {
	ID   int64
	Name string
}
