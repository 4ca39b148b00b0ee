package engagement

import "context"

// Page is one page of a remote listing
type Page[T any] struct {
	Items  []T
	IsLast bool
}

// CreateRequest describes a new root review (zero ParentID) or reply
type CreateRequest struct {
	EntityID ID
	ParentID ID
	Content  string
}

// Created is the server's answer to a create call
type Created struct {
	ID      ID
	Content string
}

// Gateway is the remote side of the engagement subsystem. Every call either
// resolves with a server-confirmed result or returns an error; timeouts are
// ordinary errors. Implementations must never receive local ids.
type Gateway interface {
	FetchRecommendations(ctx context.Context, filter string, page, size int) (Page[Recommendation], error)
	FetchRootReviews(ctx context.Context, entityID ID, page, size int) (Page[Comment], error)
	FetchReplies(ctx context.Context, rootID ID, page, size int) (Page[Comment], error)
	FetchNestedReplies(ctx context.Context, replyID ID, page, size int) (Page[Comment], error)
	CreateComment(ctx context.Context, req CreateRequest) (Created, error)
	EditComment(ctx context.Context, id ID, content string) error
	DeleteComment(ctx context.Context, id ID) error
	// ToggleLike returns only the entity id; it says nothing about the
	// resulting like state or count.
	ToggleLike(ctx context.Context, entityID ID, userID int64) (ID, error)
	ReportComment(ctx context.Context, id ID, reason, detail string) error
}
