package models

import "time"

// Recommendation is a travel recommendation as listed by the feed endpoint
type Recommendation struct {
	ID           int64     `json:"id"`
	Title        string    `json:"title"`
	Location     string    `json:"location"`
	AuthorName   string    `json:"author_name"`
	Like         bool      `json:"like"`
	LikesCount   int       `json:"likes_count"`
	ReviewsCount int       `json:"reviews_count"`
	ViewsCount   int       `json:"views_count"`
	CreatedAt    time.Time `json:"created_at"`
}

// RecommendationListResponse is one page of the feed
type RecommendationListResponse struct {
	Data   []Recommendation `json:"data"`
	Page   int              `json:"page"`
	Size   int              `json:"size"`
	IsLast bool             `json:"is_last"`
}

// ToggleLikeRequest toggles the like of UserID on a recommendation
type ToggleLikeRequest struct {
	UserID int64 `json:"user_id"`
}

// ToggleLikeResponse only echoes the recommendation id
type ToggleLikeResponse struct {
	ID int64 `json:"id"`
}
