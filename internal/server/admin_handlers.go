package server

import (
	"postboard/internal/cache"
	"postboard/internal/middleware"
	"postboard/internal/models"
	"postboard/internal/service"

	"github.com/gofiber/fiber/v2"
)

type groupRequest struct {
	Title       string `json:"title" form:"title"`
	Slug        string `json:"slug" form:"slug"`
	Description string `json:"description" form:"description"`
}

// CreateGroup handles POST /admin/groups
// @Summary Create group
// @Tags admin
// @Accept json
// @Produce json
// @Param request body groupRequest true "Group"
// @Success 201 {object} models.Group
// @Failure 400 {object} models.ErrorResponse
// @Failure 403 {object} models.ErrorResponse
// @Failure 409 {object} models.ErrorResponse
// @Router /admin/groups [post]
func (s *Server) CreateGroup(c *fiber.Ctx) error {
	var req groupRequest
	if err := c.BodyParser(&req); err != nil {
		return models.RespondWithError(c, fiber.StatusBadRequest,
			models.NewValidationError("Invalid request body"))
	}

	group, err := s.groupService.CreateGroup(c.UserContext(), service.CreateGroupInput{
		Title:       req.Title,
		Slug:        req.Slug,
		Description: req.Description,
	})
	if err != nil {
		return s.mapServiceError(c, err)
	}
	return c.Status(fiber.StatusCreated).JSON(group)
}

// ClearFeedCache handles POST /admin/cache/clear
// @Summary Clear global feed cache
// @Tags admin
// @Produce json
// @Success 200 {object} object{message=string}
// @Failure 403 {object} models.ErrorResponse
// @Router /admin/cache/clear [post]
func (s *Server) ClearFeedCache(c *fiber.Ctx) error {
	if err := cache.ClearIndex(c.UserContext(), s.feedCache); err != nil {
		return s.mapServiceError(c, models.NewInternalError(err))
	}
	middleware.Logger.InfoContext(c.UserContext(), "global feed cache cleared")
	return c.JSON(fiber.Map{"message": "Feed cache cleared"})
}
