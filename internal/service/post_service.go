package service

import (
	"context"

	"postboard/internal/middleware"
	"postboard/internal/models"
	"postboard/internal/observability"
	"postboard/internal/repository"
	"postboard/internal/validation"
)

// ImageStore persists accepted attachments.
type ImageStore interface {
	SavePostImage(ctx context.Context, data []byte, format string) (string, error)
	Remove(rel string) error
}

type PostService struct {
	postRepo      repository.PostRepository
	groupRepo     repository.GroupRepository
	commentRepo   repository.CommentRepository
	images        ImageStore
	maxImageBytes int64
}

type CreatePostInput struct {
	AuthorID uint
	Text     string
	GroupID  *uint
	Image    *validation.ImageUpload
}

type EditPostInput struct {
	ActorID uint
	PostID  uint
	Text    string
	GroupID *uint
	Image   *validation.ImageUpload
}

// PostDetail is a post with everything its page shows.
type PostDetail struct {
	Post            *models.Post     `json:"post"`
	AuthorPostCount int64            `json:"author_post_count"`
	Comments        []models.Comment `json:"comments"`
}

// PostForm describes the create/edit form.
type PostForm struct {
	IsEdit bool           `json:"is_edit"`
	Groups []models.Group `json:"groups"`
	Post   *models.Post   `json:"post,omitempty"`
}

func NewPostService(
	postRepo repository.PostRepository,
	groupRepo repository.GroupRepository,
	commentRepo repository.CommentRepository,
	images ImageStore,
	maxImageBytes int64,
) *PostService {
	return &PostService{
		postRepo:      postRepo,
		groupRepo:     groupRepo,
		commentRepo:   commentRepo,
		images:        images,
		maxImageBytes: maxImageBytes,
	}
}

// validate runs the form checks plus the group lookup.
func (s *PostService) validate(ctx context.Context, form validation.PostForm) error {
	errs := form.Validate(s.maxImageBytes)
	if form.GroupID != nil {
		if _, err := s.groupRepo.GetByID(ctx, *form.GroupID); err != nil {
			if !models.IsNotFound(err) {
				return err
			}
			errs.Add("group", "Select a valid choice. That choice is not one of the available choices.")
		}
	}
	if !errs.Empty() {
		return models.NewFieldValidationError(errs)
	}
	return nil
}

func (s *PostService) saveImage(ctx context.Context, img *validation.ImageUpload) (string, error) {
	if img == nil {
		return "", nil
	}
	if s.images == nil {
		return "", models.NewValidationError("Image uploads are disabled")
	}
	format, err := validation.ValidateImage(img, s.maxImageBytes)
	if err != nil {
		return "", models.NewFieldValidationError(validation.FieldErrors{"image": {err.Error()}})
	}
	rel, err := s.images.SavePostImage(ctx, img.Data, format)
	if err != nil {
		return "", models.NewInternalError(err)
	}
	return rel, nil
}

func (s *PostService) CreatePost(ctx context.Context, in CreatePostInput) (*models.Post, error) {
	form := validation.PostForm{Text: in.Text, GroupID: in.GroupID, Image: in.Image}
	if err := s.validate(ctx, form); err != nil {
		return nil, err
	}

	imagePath, err := s.saveImage(ctx, in.Image)
	if err != nil {
		return nil, err
	}

	post := &models.Post{
		Text:     in.Text,
		AuthorID: in.AuthorID,
		GroupID:  in.GroupID,
		Image:    imagePath,
	}
	if err := s.postRepo.Create(ctx, post); err != nil {
		if imagePath != "" {
			_ = s.images.Remove(imagePath)
		}
		return nil, err
	}

	observability.PostsCreated.Inc()
	middleware.Logger.InfoContext(ctx, "post created", "post_id", post.ID)
	return post, nil
}

// EditPost updates text, group and image. Only the author may edit; the
// existing image is kept unless a new one is uploaded.
func (s *PostService) EditPost(ctx context.Context, in EditPostInput) (*models.Post, error) {
	post, err := s.postRepo.GetByID(ctx, in.PostID)
	if err != nil {
		return nil, err
	}
	if post.AuthorID != in.ActorID {
		return nil, models.NewForbiddenError("Only the author can edit this post")
	}

	form := validation.PostForm{Text: in.Text, GroupID: in.GroupID, Image: in.Image}
	if err := s.validate(ctx, form); err != nil {
		return nil, err
	}

	oldImage := post.Image
	newImage, err := s.saveImage(ctx, in.Image)
	if err != nil {
		return nil, err
	}

	post.Text = in.Text
	post.GroupID = in.GroupID
	post.Group = nil
	if newImage != "" {
		post.Image = newImage
	}
	if err := s.postRepo.Update(ctx, post); err != nil {
		if newImage != "" {
			_ = s.images.Remove(newImage)
		}
		return nil, err
	}
	if newImage != "" && oldImage != "" {
		if err := s.images.Remove(oldImage); err != nil {
			middleware.Logger.WarnContext(ctx, "failed to remove replaced image", "path", oldImage, "error", err)
		}
	}

	return s.postRepo.GetByID(ctx, post.ID)
}

func (s *PostService) GetDetail(ctx context.Context, postID uint) (*PostDetail, error) {
	post, err := s.postRepo.GetByID(ctx, postID)
	if err != nil {
		return nil, err
	}
	count, err := s.postRepo.CountByAuthor(ctx, post.AuthorID)
	if err != nil {
		return nil, err
	}
	comments, err := s.commentRepo.ListByPost(ctx, post.ID)
	if err != nil {
		return nil, err
	}
	if comments == nil {
		comments = []models.Comment{}
	}
	return &PostDetail{Post: post, AuthorPostCount: count, Comments: comments}, nil
}

// CreateForm lists the groups a new post can be filed under.
func (s *PostService) CreateForm(ctx context.Context) (*PostForm, error) {
	groups, err := s.groupRepo.List(ctx)
	if err != nil {
		return nil, err
	}
	return &PostForm{Groups: groups}, nil
}

// EditForm returns the form prefilled with the post. Non-authors get a
// FORBIDDEN error.
func (s *PostService) EditForm(ctx context.Context, actorID, postID uint) (*PostForm, error) {
	post, err := s.postRepo.GetByID(ctx, postID)
	if err != nil {
		return nil, err
	}
	if post.AuthorID != actorID {
		return nil, models.NewForbiddenError("Only the author can edit this post")
	}
	groups, err := s.groupRepo.List(ctx)
	if err != nil {
		return nil, err
	}
	return &PostForm{IsEdit: true, Groups: groups, Post: post}, nil
}
