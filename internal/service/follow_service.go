package service

import (
	"context"

	"postboard/internal/middleware"
	"postboard/internal/models"
	"postboard/internal/observability"
	"postboard/internal/repository"
)

type FollowService struct {
	userRepo   repository.UserRepository
	followRepo repository.FollowRepository
}

// FollowResult tells the caller which author was targeted and whether an
// edge was actually created or removed.
type FollowResult struct {
	Author  *models.User
	Changed bool
}

func NewFollowService(userRepo repository.UserRepository, followRepo repository.FollowRepository) *FollowService {
	return &FollowService{userRepo: userRepo, followRepo: followRepo}
}

// Follow subscribes userID to authorUsername. Following yourself or someone
// already followed changes nothing and is not an error.
func (s *FollowService) Follow(ctx context.Context, userID uint, authorUsername string) (*FollowResult, error) {
	author, err := s.userRepo.GetByUsername(ctx, authorUsername)
	if err != nil {
		return nil, err
	}

	result := &FollowResult{Author: author}
	if author.ID != userID {
		result.Changed, err = s.followRepo.Create(ctx, userID, author.ID)
		if err != nil {
			return nil, err
		}
	}

	observability.RecordFollowMutation("follow", result.Changed)
	middleware.Logger.InfoContext(ctx, "follow requested",
		"author_id", author.ID, "created", result.Changed)
	return result, nil
}

// Unfollow removes the edge if present.
func (s *FollowService) Unfollow(ctx context.Context, userID uint, authorUsername string) (*FollowResult, error) {
	author, err := s.userRepo.GetByUsername(ctx, authorUsername)
	if err != nil {
		return nil, err
	}

	removed, err := s.followRepo.Delete(ctx, userID, author.ID)
	if err != nil {
		return nil, err
	}

	observability.RecordFollowMutation("unfollow", removed)
	middleware.Logger.InfoContext(ctx, "unfollow requested",
		"author_id", author.ID, "removed", removed)
	return &FollowResult{Author: author, Changed: removed}, nil
}

// IsFollowing checks the exact (userID, authorID) edge. Guests (zero) follow
// nobody.
func (s *FollowService) IsFollowing(ctx context.Context, userID, authorID uint) (bool, error) {
	if userID == 0 || userID == authorID {
		return false, nil
	}
	return s.followRepo.Exists(ctx, userID, authorID)
}
