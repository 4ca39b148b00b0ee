package engagement

import (
	"context"

	"tripmate/pkg/logger"
)

// Likes toggles whether the current user likes a recommendation.
//
// The toggle endpoint only echoes the entity id, so after a successful call
// the optimistic liked/count pair is kept as is. Likes from other users are
// not reflected until the entity is fetched again.
type Likes struct {
	gw     Gateway
	cache  *Cache
	user   User
	runner *Runner
}

func newLikes(deps Deps, runner *Runner) *Likes {
	cache := deps.Cache
	if cache == nil {
		cache = NewCache()
	}
	return &Likes{gw: deps.Gateway, cache: cache, user: deps.User, runner: runner}
}

// Liked returns the cached state for id
func (l *Likes) Liked(id ID) bool {
	return l.cache.Liked(id)
}

// Toggle flips the like on id and moves the likes count behind count with
// it. Both are restored together if the call fails.
func (l *Likes) Toggle(id ID, count *int) (Task, error) {
	const op = "engagement.ToggleLike"

	if l.runner.Closed() {
		return nil, wrap(op, ErrClosed)
	}
	if !id.IsServer() {
		return nil, wrap(op, ErrUnconfirmed)
	}

	prevLiked := l.cache.Liked(id)
	prevCount := *count
	gw, userID := l.gw, l.user.ID

	return l.runner.Run(Mutation{
		Op:    "update like",
		Scope: scopeLike,
		Key:   id,
		Apply: func() {
			liked := !prevLiked
			l.cache.Set(id, liked)
			if liked {
				*count = prevCount + 1
			} else {
				*count = prevCount - 1
			}
		},
		Undo: func() {
			l.cache.Set(id, prevLiked)
			*count = prevCount
		},
		Remote: func(ctx context.Context) (func(), error) {
			echoed, err := gw.ToggleLike(ctx, id, userID)
			if err != nil {
				return nil, err
			}
			if echoed != id {
				logger.WithFields(map[string]interface{}{
					"entity": id.String(),
					"echoed": echoed.String(),
				}).Debug("like toggle echoed a different id")
			}
			return nil, nil
		},
	}), nil
}
