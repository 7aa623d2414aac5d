package repository

import (
	"context"

	"postboard/internal/models"
	"postboard/internal/observability"

	"gorm.io/gorm"
)

// Feed is an ordered, filtered view over posts that can be counted and
// sliced. Every feed is newest first by pub_date with id breaking ties, and
// carries author and group with each post.
type Feed struct {
	db    *gorm.DB
	name  string
	scope func(*gorm.DB) *gorm.DB
}

func newFeed(db *gorm.DB, name string, scope func(*gorm.DB) *gorm.DB) *Feed {
	if scope == nil {
		scope = func(tx *gorm.DB) *gorm.DB { return tx }
	}
	return &Feed{db: db, name: name, scope: scope}
}

func (f *Feed) query(ctx context.Context) *gorm.DB {
	return f.db.WithContext(ctx).Model(&models.Post{}).Scopes(f.scope)
}

// Count returns the total number of posts in the feed.
func (f *Feed) Count(ctx context.Context) (int64, error) {
	ctx, span := observability.StartRepositorySpan(ctx, "feed."+f.name+".count", "posts")
	defer observability.TrackQuery("count_"+f.name, "posts")()

	var n int64
	err := f.query(ctx).Count(&n).Error
	if err != nil {
		err = models.NewInternalError(err)
	}
	observability.EndSpan(span, err)
	return n, err
}

// Fetch returns at most limit posts starting at offset.
func (f *Feed) Fetch(ctx context.Context, limit, offset int) ([]models.Post, error) {
	ctx, span := observability.StartRepositorySpan(ctx, "feed."+f.name+".fetch", "posts")
	defer observability.TrackQuery("fetch_"+f.name, "posts")()

	var posts []models.Post
	err := f.query(ctx).
		Preload("Author").
		Preload("Group").
		Order("posts.pub_date DESC").
		Order("posts.id DESC").
		Limit(limit).
		Offset(offset).
		Find(&posts).Error
	if err != nil {
		err = models.NewInternalError(err)
	}
	observability.EndSpan(span, err)
	return posts, err
}

// All loads the whole feed. Only meant for small feeds and tests.
func (f *Feed) All(ctx context.Context) ([]models.Post, error) {
	return f.Fetch(ctx, -1, -1)
}
