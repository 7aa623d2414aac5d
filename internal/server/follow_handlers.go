package server

import (
	"github.com/gofiber/fiber/v2"
)

// ProfileFollow handles GET|POST /profile/:username/follow. A new
// subscription lands on the author's profile; following yourself or someone
// already followed lands on the index.
// @Summary Follow an author
// @Tags follows
// @Param username path string true "Username"
// @Success 302
// @Failure 404 {object} models.ErrorResponse
// @Router /profile/{username}/follow [post]
func (s *Server) ProfileFollow(c *fiber.Ctx) error {
	result, err := s.followService.Follow(c.UserContext(), actorID(c), c.Params("username"))
	if err != nil {
		return s.mapServiceError(c, err)
	}
	if !result.Changed {
		return c.Redirect("/", fiber.StatusFound)
	}
	return c.Redirect(profileURL(result.Author.Username), fiber.StatusFound)
}

// ProfileUnfollow handles GET|POST /profile/:username/unfollow
// @Summary Unfollow an author
// @Tags follows
// @Param username path string true "Username"
// @Success 302
// @Failure 404 {object} models.ErrorResponse
// @Router /profile/{username}/unfollow [post]
func (s *Server) ProfileUnfollow(c *fiber.Ctx) error {
	result, err := s.followService.Unfollow(c.UserContext(), actorID(c), c.Params("username"))
	if err != nil {
		return s.mapServiceError(c, err)
	}
	return c.Redirect(profileURL(result.Author.Username), fiber.StatusFound)
}
