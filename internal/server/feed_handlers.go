package server

import (
	"context"
	"strconv"

	"postboard/internal/cache"
	"postboard/internal/pagination"

	"github.com/gofiber/fiber/v2"
)

// Index handles GET /
// @Summary Global feed
// @Description All posts, newest first. Pages are cached for the feed window
// @Description and may be stale within it.
// @Tags feeds
// @Produce json
// @Param page query int false "Page number"
// @Success 200 {object} object{page_obj=service.PostPage}
// @Router / [get]
func (s *Server) Index(c *fiber.Ctx) error {
	page := pagination.ParseNumber(c.Query("page"))
	encode := c.App().Config().JSONEncoder

	body, err := cache.Aside(c.UserContext(), s.feedCache, cache.IndexPageKey(page), s.feedWindow(),
		func(ctx context.Context) ([]byte, error) {
			p, err := s.feedService.GlobalPage(ctx, strconv.Itoa(page))
			if err != nil {
				return nil, err
			}
			return encode(fiber.Map{"page_obj": p})
		})
	if err != nil {
		return s.mapServiceError(c, err)
	}

	c.Set(fiber.HeaderContentType, fiber.MIMEApplicationJSONCharsetUTF8)
	return c.Send(body)
}

// GroupPosts handles GET /group/:slug
// @Summary Group feed
// @Tags feeds
// @Produce json
// @Param slug path string true "Group slug"
// @Param page query int false "Page number"
// @Success 200 {object} service.GroupFeedResult
// @Failure 404 {object} models.ErrorResponse
// @Router /group/{slug} [get]
func (s *Server) GroupPosts(c *fiber.Ctx) error {
	result, err := s.feedService.GroupPage(c.UserContext(), c.Params("slug"), c.Query("page"))
	if err != nil {
		return s.mapServiceError(c, err)
	}
	return c.JSON(result)
}

// Profile handles GET /profile/:username
// @Summary Author profile
// @Description The author's posts, their count and whether the viewer follows them
// @Tags feeds
// @Produce json
// @Param username path string true "Username"
// @Param page query int false "Page number"
// @Success 200 {object} service.ProfileFeedResult
// @Failure 404 {object} models.ErrorResponse
// @Router /profile/{username} [get]
func (s *Server) Profile(c *fiber.Ctx) error {
	result, err := s.feedService.ProfilePage(c.UserContext(), c.Params("username"), actorID(c), c.Query("page"))
	if err != nil {
		return s.mapServiceError(c, err)
	}
	return c.JSON(result)
}

// FollowIndex handles GET /follow
// @Summary Follower feed
// @Description Posts by every author the current user follows
// @Tags feeds
// @Produce json
// @Param page query int false "Page number"
// @Success 200 {object} object{page_obj=service.PostPage}
// @Success 302
// @Router /follow [get]
func (s *Server) FollowIndex(c *fiber.Ctx) error {
	page, err := s.feedService.FollowPage(c.UserContext(), actorID(c), c.Query("page"))
	if err != nil {
		return s.mapServiceError(c, err)
	}
	return c.JSON(fiber.Map{"page_obj": page})
}
