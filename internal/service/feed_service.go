// Package service holds the application's use cases on top of the
// repositories.
package service

import (
	"context"

	"postboard/internal/models"
	"postboard/internal/observability"
	"postboard/internal/pagination"
	"postboard/internal/repository"
)

// DefaultPostsPerPage is used when no page size is configured.
const DefaultPostsPerPage = 10

type FeedService struct {
	postRepo   repository.PostRepository
	groupRepo  repository.GroupRepository
	userRepo   repository.UserRepository
	followRepo repository.FollowRepository
	perPage    int
}

// PostPage is one page of any feed.
type PostPage = pagination.Page[models.Post]

// GroupFeedResult is a group's page of posts.
type GroupFeedResult struct {
	Group *models.Group `json:"group"`
	Page  PostPage      `json:"page_obj"`
}

// ProfileFeedResult is an author's page of posts, with the viewer's
// subscription state.
type ProfileFeedResult struct {
	Author    *models.User `json:"author"`
	PostCount int64        `json:"post_count"`
	Following bool         `json:"following"`
	Page      PostPage     `json:"page_obj"`
}

func NewFeedService(
	postRepo repository.PostRepository,
	groupRepo repository.GroupRepository,
	userRepo repository.UserRepository,
	followRepo repository.FollowRepository,
	perPage int,
) *FeedService {
	if perPage <= 0 {
		perPage = DefaultPostsPerPage
	}
	return &FeedService{
		postRepo:   postRepo,
		groupRepo:  groupRepo,
		userRepo:   userRepo,
		followRepo: followRepo,
		perPage:    perPage,
	}
}

// PerPage is the configured page size.
func (s *FeedService) PerPage() int {
	return s.perPage
}

// GlobalFeed is every post, newest first.
func (s *FeedService) GlobalFeed() *repository.Feed {
	return s.postRepo.GlobalFeed()
}

// GroupFeed resolves slug and returns that group's posts.
func (s *FeedService) GroupFeed(ctx context.Context, slug string) (*models.Group, *repository.Feed, error) {
	group, err := s.groupRepo.GetBySlug(ctx, slug)
	if err != nil {
		return nil, nil, err
	}
	return group, s.postRepo.GroupFeed(group.ID), nil
}

// ProfileFeed resolves username and returns that author's posts.
func (s *FeedService) ProfileFeed(ctx context.Context, username string) (*models.User, *repository.Feed, error) {
	author, err := s.userRepo.GetByUsername(ctx, username)
	if err != nil {
		return nil, nil, err
	}
	return author, s.postRepo.AuthorFeed(author.ID), nil
}

// FollowerFeed is the posts of every author userID follows. The user's own
// posts never appear since a user cannot follow themselves.
func (s *FeedService) FollowerFeed(userID uint) *repository.Feed {
	return s.postRepo.FollowFeed(userID)
}

func (s *FeedService) GlobalPage(ctx context.Context, rawPage string) (PostPage, error) {
	ctx, span := observability.StartServiceSpan(ctx, "FeedService", "GlobalPage")
	page, err := pagination.Paginate[models.Post](ctx, s.GlobalFeed(), s.perPage, rawPage)
	observability.EndSpan(span, err)
	return page, err
}

func (s *FeedService) GroupPage(ctx context.Context, slug, rawPage string) (*GroupFeedResult, error) {
	ctx, span := observability.StartServiceSpan(ctx, "FeedService", "GroupPage")
	result, err := s.groupPage(ctx, slug, rawPage)
	observability.EndSpan(span, err)
	return result, err
}

func (s *FeedService) groupPage(ctx context.Context, slug, rawPage string) (*GroupFeedResult, error) {
	group, feed, err := s.GroupFeed(ctx, slug)
	if err != nil {
		return nil, err
	}
	page, err := pagination.Paginate[models.Post](ctx, feed, s.perPage, rawPage)
	if err != nil {
		return nil, err
	}
	return &GroupFeedResult{Group: group, Page: page}, nil
}

// ProfilePage builds an author's page. viewerID is zero for guests, who are
// never following anyone.
func (s *FeedService) ProfilePage(ctx context.Context, username string, viewerID uint, rawPage string) (*ProfileFeedResult, error) {
	ctx, span := observability.StartServiceSpan(ctx, "FeedService", "ProfilePage")
	result, err := s.profilePage(ctx, username, viewerID, rawPage)
	observability.EndSpan(span, err)
	return result, err
}

func (s *FeedService) profilePage(ctx context.Context, username string, viewerID uint, rawPage string) (*ProfileFeedResult, error) {
	author, feed, err := s.ProfileFeed(ctx, username)
	if err != nil {
		return nil, err
	}
	page, err := pagination.Paginate[models.Post](ctx, feed, s.perPage, rawPage)
	if err != nil {
		return nil, err
	}

	following := false
	if viewerID != 0 && viewerID != author.ID {
		following, err = s.followRepo.Exists(ctx, viewerID, author.ID)
		if err != nil {
			return nil, err
		}
	}

	return &ProfileFeedResult{
		Author:    author,
		PostCount: page.Count,
		Following: following,
		Page:      page,
	}, nil
}

func (s *FeedService) FollowPage(ctx context.Context, userID uint, rawPage string) (PostPage, error) {
	ctx, span := observability.StartServiceSpan(ctx, "FeedService", "FollowPage")
	page, err := pagination.Paginate[models.Post](ctx, s.FollowerFeed(userID), s.perPage, rawPage)
	observability.EndSpan(span, err)
	return page, err
}
