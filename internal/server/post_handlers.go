package server

import (
	"postboard/internal/models"
	"postboard/internal/service"

	"github.com/gofiber/fiber/v2"
)

type postRequest struct {
	Text  string `json:"text" form:"text"`
	Group string `json:"group" form:"group"`
}

type commentRequest struct {
	Text string `json:"text" form:"text"`
}

func (s *Server) maxImageBytes() int64 {
	return int64(s.config.ImageMaxUploadSizeMB) << 20
}

// parsePostRequest reads the text, group and image fields of a post form.
func (s *Server) parsePostRequest(c *fiber.Ctx) (postRequest, *uint, error) {
	var req postRequest
	if err := c.BodyParser(&req); err != nil {
		return req, nil, models.NewValidationError("Invalid request body")
	}
	groupID, err := parseGroupID(req.Group)
	return req, groupID, err
}

// PostDetail handles GET /posts/:post_id
// @Summary Post detail
// @Tags posts
// @Produce json
// @Param post_id path int true "Post ID"
// @Success 200 {object} service.PostDetail
// @Failure 404 {object} models.ErrorResponse
// @Router /posts/{post_id} [get]
func (s *Server) PostDetail(c *fiber.Ctx) error {
	postID, err := s.parseID(c, "post_id")
	if err != nil {
		return nil
	}
	detail, err := s.postService.GetDetail(c.UserContext(), postID)
	if err != nil {
		return s.mapServiceError(c, err)
	}
	return c.JSON(detail)
}

// CreateForm handles GET /create
func (s *Server) CreateForm(c *fiber.Ctx) error {
	form, err := s.postService.CreateForm(c.UserContext())
	if err != nil {
		return s.mapServiceError(c, err)
	}
	return c.JSON(form)
}

// CreatePost handles POST /create
// @Summary Create post
// @Description Accepts form or multipart data; the optional image field
// @Description takes a gif, jpeg, png or webp file.
// @Tags posts
// @Accept mpfd
// @Produce json
// @Param text formData string true "Post text"
// @Param group formData int false "Group ID"
// @Param image formData file false "Image"
// @Success 302
// @Failure 400 {object} models.ErrorResponse
// @Router /create [post]
func (s *Server) CreatePost(c *fiber.Ctx) error {
	req, groupID, err := s.parsePostRequest(c)
	if err != nil {
		return s.mapServiceError(c, err)
	}
	image, err := formImage(c, s.maxImageBytes())
	if err != nil {
		return s.mapServiceError(c, err)
	}

	author := actor(c)
	if _, err := s.postService.CreatePost(c.UserContext(), service.CreatePostInput{
		AuthorID: author.ID,
		Text:     req.Text,
		GroupID:  groupID,
		Image:    image,
	}); err != nil {
		return s.mapServiceError(c, err)
	}
	return c.Redirect(profileURL(author.Username), fiber.StatusFound)
}

// EditForm handles GET /posts/:post_id/edit. Non-authors are sent back to
// the post.
func (s *Server) EditForm(c *fiber.Ctx) error {
	postID, err := s.parseID(c, "post_id")
	if err != nil {
		return nil
	}
	form, err := s.postService.EditForm(c.UserContext(), actorID(c), postID)
	if err != nil {
		if models.HasCode(err, models.CodeForbidden) {
			return c.Redirect(postURL(postID), fiber.StatusFound)
		}
		return s.mapServiceError(c, err)
	}
	return c.JSON(form)
}

// EditPost handles POST /posts/:post_id/edit
// @Summary Edit post
// @Description Only the author may edit. Others are redirected to the post.
// @Tags posts
// @Accept mpfd
// @Produce json
// @Param post_id path int true "Post ID"
// @Param text formData string true "Post text"
// @Param group formData int false "Group ID"
// @Param image formData file false "Replacement image"
// @Success 302
// @Failure 400 {object} models.ErrorResponse
// @Failure 404 {object} models.ErrorResponse
// @Router /posts/{post_id}/edit [post]
func (s *Server) EditPost(c *fiber.Ctx) error {
	postID, err := s.parseID(c, "post_id")
	if err != nil {
		return nil
	}
	req, groupID, err := s.parsePostRequest(c)
	if err != nil {
		return s.mapServiceError(c, err)
	}
	image, err := formImage(c, s.maxImageBytes())
	if err != nil {
		return s.mapServiceError(c, err)
	}

	_, err = s.postService.EditPost(c.UserContext(), service.EditPostInput{
		ActorID: actorID(c),
		PostID:  postID,
		Text:    req.Text,
		GroupID: groupID,
		Image:   image,
	})
	if err != nil && !models.HasCode(err, models.CodeForbidden) {
		return s.mapServiceError(c, err)
	}
	return c.Redirect(postURL(postID), fiber.StatusFound)
}

// AddComment handles POST /posts/:post_id/comment
// @Summary Comment on a post
// @Description Always redirects back to the post; blank comments are dropped.
// @Tags posts
// @Accept json
// @Param post_id path int true "Post ID"
// @Param request body commentRequest true "Comment"
// @Success 302
// @Failure 404 {object} models.ErrorResponse
// @Router /posts/{post_id}/comment [post]
func (s *Server) AddComment(c *fiber.Ctx) error {
	postID, err := s.parseID(c, "post_id")
	if err != nil {
		return nil
	}
	var req commentRequest
	if err := c.BodyParser(&req); err != nil {
		return models.RespondWithError(c, fiber.StatusBadRequest,
			models.NewValidationError("Invalid request body"))
	}

	_, err = s.commentService.AddComment(c.UserContext(), service.AddCommentInput{
		AuthorID: actorID(c),
		PostID:   postID,
		Text:     req.Text,
	})
	if err != nil && !models.HasCode(err, models.CodeValidation) {
		return s.mapServiceError(c, err)
	}
	return c.Redirect(postURL(postID), fiber.StatusFound)
}
