// Package apitest serves the recommendation REST surface from memory so the
// gateway and the CLI can be exercised without a backend.
package apitest

import (
	"net/http"
	"net/http/httptest"
	"sort"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/gin-gonic/gin"

	"tripmate/pkg/models"
)

// Server is an in-memory backend. mu guards the store and the request log.
type Server struct {
	mu      sync.Mutex
	router  *gin.Engine
	http    *httptest.Server
	nextID  int64
	token   string
	recs    map[int64]*models.Recommendation
	likes   map[int64]map[int64]bool
	reviews map[int64]*review

	failWith   int
	requests   []string
	requestIDs []string
	reports    []models.ReportReviewRequest
}

type review struct {
	models.Review
	entityID int64
}

// New starts a server. When token is not empty every request must carry it.
func New(token string) *Server {
	gin.SetMode(gin.TestMode)

	s := &Server{
		router:  gin.New(),
		nextID:  100,
		token:   token,
		recs:    make(map[int64]*models.Recommendation),
		likes:   make(map[int64]map[int64]bool),
		reviews: make(map[int64]*review),
	}
	s.router.Use(gin.Recovery())
	s.router.Use(s.record())
	if token != "" {
		s.router.Use(s.auth())
	}
	s.setupRoutes()
	s.http = httptest.NewServer(s.router)
	return s
}

// URL returns the base URL of the running server
func (s *Server) URL() string { return s.http.URL }

// Close stops the server
func (s *Server) Close() { s.http.Close() }

func (s *Server) setupRoutes() {
	s.router.GET("/recommendations", s.listRecommendations)
	s.router.GET("/recommendations/:id/reviews", s.listReviews)
	s.router.POST("/recommendations/:id/reviews", s.createReview)
	s.router.POST("/recommendations/:id/like", s.toggleLike)
	s.router.GET("/reviews/:id/replies", s.listReplies)
	s.router.PATCH("/reviews/:id", s.editReview)
	s.router.DELETE("/reviews/:id", s.deleteReview)
	s.router.POST("/reviews/:id/report", s.reportReview)
}

func (s *Server) record() gin.HandlerFunc {
	return func(c *gin.Context) {
		s.mu.Lock()
		s.requests = append(s.requests, c.Request.Method+" "+c.Request.URL.Path)
		s.requestIDs = append(s.requestIDs, c.GetHeader("X-Request-ID"))
		s.mu.Unlock()
		c.Next()
	}
}

func (s *Server) auth() gin.HandlerFunc {
	return func(c *gin.Context) {
		parts := strings.Split(c.GetHeader("Authorization"), " ")
		if len(parts) != 2 || parts[0] != "Bearer" || parts[1] != s.token {
			fail(c, http.StatusUnauthorized, "unauthorized")
			c.Abort()
			return
		}
		c.Next()
	}
}

// AddRecommendation stores a recommendation and returns its id
func (s *Server) AddRecommendation(title, location string) int64 {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.nextID++
	s.recs[s.nextID] = &models.Recommendation{
		ID:        s.nextID,
		Title:     title,
		Location:  location,
		CreatedAt: time.Now(),
	}
	return s.nextID
}

// AddReview stores a review on entityID, a reply when parentID is not zero
func (s *Server) AddReview(entityID, parentID int64, content string) int64 {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.addReview(entityID, parentID, 1, "traveler", content)
}

func (s *Server) addReview(entityID, parentID, authorID int64, author, content string) int64 {
	s.nextID++
	s.reviews[s.nextID] = &review{
		Review: models.Review{
			ID:         s.nextID,
			ParentID:   parentID,
			AuthorID:   authorID,
			AuthorName: author,
			Content:    content,
			Status:     "active",
			CreatedAt:  time.Now(),
		},
		entityID: entityID,
	}
	if parent, ok := s.reviews[parentID]; ok {
		parent.ReplyCount++
	} else if rec, ok := s.recs[entityID]; ok {
		rec.ReviewsCount++
	}
	return s.nextID
}

// Review returns a stored review
func (s *Server) Review(id int64) (models.Review, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	r, ok := s.reviews[id]
	if !ok {
		return models.Review{}, false
	}
	return r.Review, true
}

// Liked reports whether userID likes entityID
func (s *Server) Liked(entityID, userID int64) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.likes[entityID][userID]
}

func ok(c *gin.Context, status int, message string, data interface{}) {
	c.JSON(status, models.APIResponse{
		Success:   true,
		Message:   message,
		Data:      data,
		Timestamp: time.Now(),
	})
}

func fail(c *gin.Context, status int, msg string) {
	c.JSON(status, models.APIResponse{
		Success:   false,
		Error:     msg,
		Timestamp: time.Now(),
	})
}

func paging(c *gin.Context) (int, int) {
	page, size := 0, 20
	if p, err := strconv.Atoi(c.Query("page")); err == nil && p >= 0 {
		page = p
	}
	if v, err := strconv.Atoi(c.Query("size")); err == nil && v > 0 && v <= 100 {
		size = v
	}
	return page, size
}

func window[T any](all []T, page, size int) ([]T, bool) {
	start := page * size
	if start > len(all) {
		start = len(all)
	}
	end := start + size
	if end > len(all) {
		end = len(all)
	}
	return all[start:end], end >= len(all)
}

func pathID(c *gin.Context) (int64, bool) {
	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil || id <= 0 {
		fail(c, http.StatusBadRequest, "invalid id")
		return 0, false
	}
	return id, true
}

// FailWrites makes every write answer with status. Zero restores normal
// behaviour.
func (s *Server) FailWrites(status int) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.failWith = status
}

// Requests returns "METHOD path" of every request so far
func (s *Server) Requests() []string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]string(nil), s.requests...)
}

// RequestIDs returns the X-Request-ID header of every request so far
func (s *Server) RequestIDs() []string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]string(nil), s.requestIDs...)
}

// Reports returns the moderation reports received
func (s *Server) Reports() []models.ReportReviewRequest {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]models.ReportReviewRequest(nil), s.reports...)
}

func (s *Server) writeBlocked(c *gin.Context) bool {
	if s.failWith == 0 {
		return false
	}
	fail(c, s.failWith, http.StatusText(s.failWith))
	return true
}

func (s *Server) listRecommendations(c *gin.Context) {
	page, size := paging(c)
	filter := strings.ToLower(c.Query("filter"))

	s.mu.Lock()
	defer s.mu.Unlock()

	all := make([]models.Recommendation, 0, len(s.recs))
	for _, r := range s.recs {
		if filter != "" && !strings.Contains(strings.ToLower(r.Title+" "+r.Location), filter) {
			continue
		}
		all = append(all, *r)
	}
	sort.Slice(all, func(i, j int) bool { return all[i].ID > all[j].ID })

	items, last := window(all, page, size)
	ok(c, http.StatusOK, "", models.RecommendationListResponse{Data: items, Page: page, Size: size, IsLast: last})
}

// reviewsWhere lists reviews matching keep, newest first
func (s *Server) reviewsWhere(keep func(*review) bool) []models.Review {
	var out []models.Review
	for _, r := range s.reviews {
		if keep(r) {
			out = append(out, r.Review)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID > out[j].ID })
	return out
}

func (s *Server) listReviews(c *gin.Context) {
	entityID, valid := pathID(c)
	if !valid {
		return
	}
	page, size := paging(c)

	s.mu.Lock()
	defer s.mu.Unlock()

	all := s.reviewsWhere(func(r *review) bool { return r.entityID == entityID && r.ParentID == 0 })
	items, last := window(all, page, size)
	ok(c, http.StatusOK, "", models.ReviewListResponse{Data: items, Page: page, Size: size, IsLast: last})
}

func (s *Server) listReplies(c *gin.Context) {
	parentID, valid := pathID(c)
	if !valid {
		return
	}
	page, size := paging(c)

	s.mu.Lock()
	defer s.mu.Unlock()

	if _, exists := s.reviews[parentID]; !exists {
		fail(c, http.StatusNotFound, "review not found")
		return
	}
	all := s.reviewsWhere(func(r *review) bool { return r.ParentID == parentID })
	items, last := window(all, page, size)
	ok(c, http.StatusOK, "", models.ReviewListResponse{Data: items, Page: page, Size: size, IsLast: last})
}

func (s *Server) createReview(c *gin.Context) {
	entityID, valid := pathID(c)
	if !valid {
		return
	}

	var req models.CreateReviewRequest
	if err := c.ShouldBindJSON(&req); err != nil || strings.TrimSpace(req.Content) == "" {
		fail(c, http.StatusBadRequest, "invalid request body")
		return
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if s.writeBlocked(c) {
		return
	}
	var parentID int64
	if req.ParentID != nil {
		parentID = *req.ParentID
		if _, exists := s.reviews[parentID]; !exists {
			fail(c, http.StatusNotFound, "parent review not found")
			return
		}
	}
	id := s.addReview(entityID, parentID, 7, "you", req.Content)
	ok(c, http.StatusCreated, "Review created successfully", models.CreateReviewResponse{ID: id, Content: req.Content})
}

func (s *Server) editReview(c *gin.Context) {
	id, valid := pathID(c)
	if !valid {
		return
	}
	var req models.EditReviewRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		fail(c, http.StatusBadRequest, "invalid request body")
		return
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if s.writeBlocked(c) {
		return
	}
	r, exists := s.reviews[id]
	if !exists {
		fail(c, http.StatusNotFound, "review not found")
		return
	}
	r.Content = req.Content
	ok(c, http.StatusOK, "Review updated", nil)
}

func (s *Server) deleteReview(c *gin.Context) {
	id, valid := pathID(c)
	if !valid {
		return
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if s.writeBlocked(c) {
		return
	}
	r, exists := s.reviews[id]
	if !exists {
		fail(c, http.StatusNotFound, "review not found")
		return
	}
	r.Status = "deleted"
	ok(c, http.StatusOK, "Review deleted", nil)
}

func (s *Server) reportReview(c *gin.Context) {
	id, valid := pathID(c)
	if !valid {
		return
	}
	var req models.ReportReviewRequest
	if err := c.ShouldBindJSON(&req); err != nil || req.Reason == "" {
		fail(c, http.StatusBadRequest, "reason is required")
		return
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if s.writeBlocked(c) {
		return
	}
	if _, exists := s.reviews[id]; !exists {
		fail(c, http.StatusNotFound, "review not found")
		return
	}
	s.reports = append(s.reports, req)
	ok(c, http.StatusOK, "Report received", nil)
}

func (s *Server) toggleLike(c *gin.Context) {
	id, valid := pathID(c)
	if !valid {
		return
	}
	var req models.ToggleLikeRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		fail(c, http.StatusBadRequest, "invalid request body")
		return
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if s.writeBlocked(c) {
		return
	}
	rec, exists := s.recs[id]
	if !exists {
		fail(c, http.StatusNotFound, "recommendation not found")
		return
	}
	if s.likes[id] == nil {
		s.likes[id] = make(map[int64]bool)
	}
	if s.likes[id][req.UserID] {
		delete(s.likes[id], req.UserID)
		rec.LikesCount--
	} else {
		s.likes[id][req.UserID] = true
		rec.LikesCount++
	}
	ok(c, http.StatusOK, "", models.ToggleLikeResponse{ID: id})
}
