package repository

import (
	"context"
	"errors"

	"postboard/internal/models"

	"gorm.io/gorm"
)

// PostRepository defines the interface for post data operations
type PostRepository interface {
	Create(ctx context.Context, post *models.Post) error
	GetByID(ctx context.Context, id uint) (*models.Post, error)
	Update(ctx context.Context, post *models.Post) error
	CountByAuthor(ctx context.Context, authorID uint) (int64, error)

	GlobalFeed() *Feed
	GroupFeed(groupID uint) *Feed
	AuthorFeed(authorID uint) *Feed
	FollowFeed(userID uint) *Feed
}

type postRepository struct {
	db *gorm.DB
}

// NewPostRepository creates a new post repository
func NewPostRepository(db *gorm.DB) PostRepository {
	return &postRepository{db: db}
}

func (r *postRepository) Create(ctx context.Context, post *models.Post) error {
	if err := r.db.WithContext(ctx).Omit("Author", "Group").Create(post).Error; err != nil {
		return models.NewInternalError(err)
	}
	return nil
}

func (r *postRepository) GetByID(ctx context.Context, id uint) (*models.Post, error) {
	var post models.Post
	err := r.db.WithContext(ctx).
		Preload("Author").
		Preload("Group").
		First(&post, id).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, models.NewNotFoundError("Post", id)
		}
		return nil, models.NewInternalError(err)
	}
	return &post, nil
}

// Update writes the mutable columns only; author and pub_date are never
// touched.
func (r *postRepository) Update(ctx context.Context, post *models.Post) error {
	err := r.db.WithContext(ctx).
		Model(&models.Post{ID: post.ID}).
		Select("text", "group_id", "image").
		Updates(map[string]any{
			"text":     post.Text,
			"group_id": post.GroupID,
			"image":    post.Image,
		}).Error
	if err != nil {
		return models.NewInternalError(err)
	}
	return nil
}

func (r *postRepository) CountByAuthor(ctx context.Context, authorID uint) (int64, error) {
	var n int64
	if err := r.db.WithContext(ctx).Model(&models.Post{}).Where("author_id = ?", authorID).Count(&n).Error; err != nil {
		return 0, models.NewInternalError(err)
	}
	return n, nil
}

func (r *postRepository) GlobalFeed() *Feed {
	return newFeed(r.db, "global", nil)
}

func (r *postRepository) GroupFeed(groupID uint) *Feed {
	return newFeed(r.db, "group", func(tx *gorm.DB) *gorm.DB {
		return tx.Where("posts.group_id = ?", groupID)
	})
}

func (r *postRepository) AuthorFeed(authorID uint) *Feed {
	return newFeed(r.db, "profile", func(tx *gorm.DB) *gorm.DB {
		return tx.Where("posts.author_id = ?", authorID)
	})
}

// FollowFeed holds posts by every author userID follows.
func (r *postRepository) FollowFeed(userID uint) *Feed {
	return newFeed(r.db, "follow", func(tx *gorm.DB) *gorm.DB {
		followed := r.db.Model(&models.Follow{}).Select("author_id").Where("user_id = ?", userID)
		return tx.Where("posts.author_id IN (?)", followed)
	})
}
