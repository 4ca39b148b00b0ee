package api

import (
	"context"
	"fmt"
	"net/http"

	"tripmate/internal/engagement"
	"tripmate/pkg/models"
)

var _ engagement.Gateway = (*Client)(nil)

// serverID refuses placeholders before they reach a URL or body
func serverID(op string, id engagement.ID) (string, error) {
	if !id.IsServer() {
		return "", fmt.Errorf("%s: %s: %w", op, id, engagement.ErrUnconfirmed)
	}
	return id.String(), nil
}

func toComment(r models.Review) engagement.Comment {
	c := engagement.Comment{
		ID:         engagement.ServerID(r.ID),
		AuthorID:   r.AuthorID,
		AuthorName: r.AuthorName,
		Content:    r.Content,
		Status:     engagement.ParseStatus(r.Status),
		ReplyCount: r.ReplyCount,
		CreatedAt:  r.CreatedAt,
	}
	if r.ParentID > 0 {
		c.ParentID = engagement.ServerID(r.ParentID)
	}
	return c
}

func toRecommendation(r models.Recommendation) engagement.Recommendation {
	return engagement.Recommendation{
		ID:         engagement.ServerID(r.ID),
		Title:      r.Title,
		Location:   r.Location,
		AuthorName: r.AuthorName,
		Liked:      r.Like,
		Aggregate: engagement.Aggregate{
			LikesCount:   r.LikesCount,
			ReviewsCount: r.ReviewsCount,
			ViewsCount:   r.ViewsCount,
		},
		CreatedAt: r.CreatedAt,
	}
}

// FetchRecommendations lists recommendations matching filter
func (c *Client) FetchRecommendations(ctx context.Context, filter string, page, size int) (engagement.Page[engagement.Recommendation], error) {
	q := pageQuery(page, size)
	if filter != "" {
		q.Set("filter", filter)
	}

	resp, err := c.doRequest(ctx, http.MethodGet, "/recommendations", q, nil)
	if err != nil {
		return engagement.Page[engagement.Recommendation]{}, err
	}

	var out models.RecommendationListResponse
	if err := decodeAPIResponse(resp, &out); err != nil {
		return engagement.Page[engagement.Recommendation]{}, err
	}

	items := make([]engagement.Recommendation, 0, len(out.Data))
	for _, r := range out.Data {
		items = append(items, toRecommendation(r))
	}
	return engagement.Page[engagement.Recommendation]{Items: items, IsLast: out.IsLast}, nil
}

func (c *Client) fetchReviews(ctx context.Context, path string, page, size int) (engagement.Page[engagement.Comment], error) {
	resp, err := c.doRequest(ctx, http.MethodGet, path, pageQuery(page, size), nil)
	if err != nil {
		return engagement.Page[engagement.Comment]{}, err
	}

	var out models.ReviewListResponse
	if err := decodeAPIResponse(resp, &out); err != nil {
		return engagement.Page[engagement.Comment]{}, err
	}

	items := make([]engagement.Comment, 0, len(out.Data))
	for _, r := range out.Data {
		items = append(items, toComment(r))
	}
	return engagement.Page[engagement.Comment]{Items: items, IsLast: out.IsLast}, nil
}

// FetchRootReviews lists the top-level reviews of a recommendation
func (c *Client) FetchRootReviews(ctx context.Context, entityID engagement.ID, page, size int) (engagement.Page[engagement.Comment], error) {
	id, err := serverID("api.FetchRootReviews", entityID)
	if err != nil {
		return engagement.Page[engagement.Comment]{}, err
	}
	return c.fetchReviews(ctx, "/recommendations/"+id+"/reviews", page, size)
}

// FetchReplies lists replies to a root review
func (c *Client) FetchReplies(ctx context.Context, rootID engagement.ID, page, size int) (engagement.Page[engagement.Comment], error) {
	id, err := serverID("api.FetchReplies", rootID)
	if err != nil {
		return engagement.Page[engagement.Comment]{}, err
	}
	return c.fetchReviews(ctx, "/reviews/"+id+"/replies", page, size)
}

// FetchNestedReplies lists replies to a reply. The server exposes both levels
// on the same route.
func (c *Client) FetchNestedReplies(ctx context.Context, replyID engagement.ID, page, size int) (engagement.Page[engagement.Comment], error) {
	id, err := serverID("api.FetchNestedReplies", replyID)
	if err != nil {
		return engagement.Page[engagement.Comment]{}, err
	}
	return c.fetchReviews(ctx, "/reviews/"+id+"/replies", page, size)
}

// CreateComment posts a review, or a reply when req.ParentID is set
func (c *Client) CreateComment(ctx context.Context, req engagement.CreateRequest) (engagement.Created, error) {
	const op = "api.CreateComment"

	entity, err := serverID(op, req.EntityID)
	if err != nil {
		return engagement.Created{}, err
	}

	body := models.CreateReviewRequest{Content: req.Content}
	if !req.ParentID.IsZero() {
		if _, err := serverID(op, req.ParentID); err != nil {
			return engagement.Created{}, err
		}
		parent := req.ParentID.N
		body.ParentID = &parent
	}

	resp, err := c.doRequest(ctx, http.MethodPost, "/recommendations/"+entity+"/reviews", nil, body)
	if err != nil {
		return engagement.Created{}, err
	}

	var out models.CreateReviewResponse
	if err := decodeAPIResponse(resp, &out); err != nil {
		return engagement.Created{}, err
	}
	if out.ID <= 0 {
		return engagement.Created{}, fmt.Errorf("%s: response carries no id", op)
	}
	return engagement.Created{ID: engagement.ServerID(out.ID), Content: out.Content}, nil
}

// EditComment replaces the body of a review or reply
func (c *Client) EditComment(ctx context.Context, id engagement.ID, content string) error {
	sid, err := serverID("api.EditComment", id)
	if err != nil {
		return err
	}
	resp, err := c.doRequest(ctx, http.MethodPatch, "/reviews/"+sid, nil, models.EditReviewRequest{Content: content})
	if err != nil {
		return err
	}
	return decodeAPIResponse(resp, nil)
}

// DeleteComment deletes a review or reply
func (c *Client) DeleteComment(ctx context.Context, id engagement.ID) error {
	sid, err := serverID("api.DeleteComment", id)
	if err != nil {
		return err
	}
	resp, err := c.doRequest(ctx, http.MethodDelete, "/reviews/"+sid, nil, nil)
	if err != nil {
		return err
	}
	return decodeAPIResponse(resp, nil)
}

// ToggleLike toggles the user's like. The response only echoes the id.
func (c *Client) ToggleLike(ctx context.Context, entityID engagement.ID, userID int64) (engagement.ID, error) {
	sid, err := serverID("api.ToggleLike", entityID)
	if err != nil {
		return engagement.ID{}, err
	}
	resp, err := c.doRequest(ctx, http.MethodPost, "/recommendations/"+sid+"/like", nil, models.ToggleLikeRequest{UserID: userID})
	if err != nil {
		return engagement.ID{}, err
	}

	var out models.ToggleLikeResponse
	if err := decodeAPIResponse(resp, &out); err != nil {
		return engagement.ID{}, err
	}
	if out.ID <= 0 {
		return entityID, nil
	}
	return engagement.ServerID(out.ID), nil
}

// ReportComment flags a review or reply for moderation
func (c *Client) ReportComment(ctx context.Context, id engagement.ID, reason, detail string) error {
	sid, err := serverID("api.ReportComment", id)
	if err != nil {
		return err
	}
	body := models.ReportReviewRequest{Reason: reason, Detail: detail}
	resp, err := c.doRequest(ctx, http.MethodPost, "/reviews/"+sid+"/report", nil, body)
	if err != nil {
		return err
	}
	return decodeAPIResponse(resp, nil)
}
