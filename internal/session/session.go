// Package session resolves the signed-in user handed to the engagement
// screens. Tokens are issued and verified by the backend; the client only
// reads the claims it needs for display and for the like endpoint.
package session

import (
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v4"

	"tripmate/internal/engagement"
	"tripmate/pkg/models"
)

// ErrNoUser is returned when neither config nor token name a user
var ErrNoUser = errors.New("no signed-in user, set user.id or user.token")

type claims struct {
	UserID   string `json:"user_id"`
	Username string `json:"username"`
	jwt.RegisteredClaims
}

// Session is the current user plus the bearer token sent with requests
type Session struct {
	User  engagement.User
	Token string
}

// Resolve builds the session from configured values. An explicit id wins
// over the token's claims.
func Resolve(token string, userID int64, userName string) (Session, error) {
	s := Session{Token: strings.TrimSpace(token), User: engagement.User{ID: userID, Name: userName}}

	if s.Token != "" && (s.User.ID == 0 || s.User.Name == "") {
		u, err := FromToken(s.Token)
		if err != nil {
			return Session{}, err
		}
		if s.User.ID == 0 {
			s.User.ID = u.ID
		}
		if s.User.Name == "" {
			s.User.Name = u.Name
		}
	}

	if s.User.ID <= 0 {
		return Session{}, ErrNoUser
	}
	if s.User.Name == "" {
		s.User.Name = "you"
	}
	return s, nil
}

// FromToken reads the user out of a token without verifying its signature
func FromToken(token string) (engagement.User, error) {
	var c claims
	if _, _, err := jwt.NewParser().ParseUnverified(token, &c); err != nil {
		return engagement.User{}, fmt.Errorf("session: %w: %v", models.ErrInvalidToken, err)
	}
	if c.ExpiresAt != nil && c.ExpiresAt.Before(time.Now()) {
		return engagement.User{}, fmt.Errorf("session: token expired at %s: %w", c.ExpiresAt.Format(time.RFC3339), models.ErrInvalidToken)
	}

	raw := c.UserID
	if raw == "" {
		raw = c.Subject
	}
	id, err := strconv.ParseInt(raw, 10, 64)
	if err != nil || id <= 0 {
		return engagement.User{}, fmt.Errorf("session: token has no numeric user id: %w", models.ErrInvalidToken)
	}
	return engagement.User{ID: id, Name: c.Username}, nil
}
