package models

import (
	"time"
)

// Review is a review or reply as returned by the reviews endpoints.
// ParentID is 0 for root reviews.
type Review struct {
	ID         int64     `json:"id"`
	ParentID   int64     `json:"parent_id,omitempty"`
	AuthorID   int64     `json:"author_id"`
	AuthorName string    `json:"author_name"`
	Content    string    `json:"content"`
	Status     string    `json:"status"` // active, deleted, blocked
	ReplyCount int       `json:"reply_count"`
	CreatedAt  time.Time `json:"created_at"`
}

// ReviewListResponse is one page of reviews
type ReviewListResponse struct {
	Data   []Review `json:"data"`
	Page   int      `json:"page"`
	Size   int      `json:"size"`
	IsLast bool     `json:"is_last"`
}

// CreateReviewRequest creates a root review, or a reply when ParentID is set
type CreateReviewRequest struct {
	Content  string `json:"content"`
	ParentID *int64 `json:"parent_id,omitempty"`
}

// CreateReviewResponse echoes the stored review
type CreateReviewResponse struct {
	ID      int64  `json:"id"`
	Content string `json:"content"`
}

// EditReviewRequest replaces the body of a review
type EditReviewRequest struct {
	Content string `json:"content"`
}

// ReportReviewRequest flags a review for moderation
type ReportReviewRequest struct {
	Reason string `json:"reason"`
	Detail string `json:"detail,omitempty"`
}

const MaxCommentLength = 5000
