package web

import (
	"context"

	"campsite/internal/models"
)

type contextKey string

const (
	userKey       contextKey = "current_user"
	campgroundKey contextKey = "campground"
	commentKey    contextKey = "comment"
)

// WithUser attaches the authenticated user to the request context.
func WithUser(ctx context.Context, u *models.User) context.Context {
	return context.WithValue(ctx, userKey, u)
}

// UserFrom returns the authenticated user, or nil for anonymous requests.
func UserFrom(ctx context.Context) *models.User {
	u, _ := ctx.Value(userKey).(*models.User)
	return u
}

// WithCampground attaches a resolved campground so the downstream handler
// can reuse the ownership-check lookup.
func WithCampground(ctx context.Context, cg *models.Campground) context.Context {
	return context.WithValue(ctx, campgroundKey, cg)
}

func CampgroundFrom(ctx context.Context) *models.Campground {
	cg, _ := ctx.Value(campgroundKey).(*models.Campground)
	return cg
}

// WithComment attaches a resolved comment for the downstream handler.
func WithComment(ctx context.Context, c *models.Comment) context.Context {
	return context.WithValue(ctx, commentKey, c)
}

func CommentFrom(ctx context.Context) *models.Comment {
	c, _ := ctx.Value(commentKey).(*models.Comment)
	return c
}
