package server

import (
	"time"

	"postboard/internal/middleware"
	"postboard/internal/models"
	"postboard/internal/service"

	"github.com/gofiber/fiber/v2"
)

type signupRequest struct {
	Username  string `json:"username" form:"username"`
	Email     string `json:"email" form:"email"`
	Password  string `json:"password" form:"password"`
	FirstName string `json:"first_name" form:"first_name"`
	LastName  string `json:"last_name" form:"last_name"`
}

type loginRequest struct {
	Username string `json:"username" form:"username"`
	Password string `json:"password" form:"password"`
	Next     string `json:"next" form:"next"`
}

// issueSession signs a token for user and sets it as the session cookie.
func (s *Server) issueSession(c *fiber.Ctx, user *models.User) (string, error) {
	token, claims, err := middleware.IssueToken(s.config.JWTSecret, user.ID, s.now())
	if err != nil {
		return "", err
	}
	c.Cookie(&fiber.Cookie{
		Name:     middleware.TokenCookie,
		Value:    token,
		Path:     "/",
		Expires:  claims.ExpiresAt,
		HTTPOnly: true,
		Secure:   s.config.IsProduction(),
		SameSite: fiber.CookieSameSiteLaxMode,
	})
	return token, nil
}

// Signup handles POST /auth/signup
// @Summary User signup
// @Description Register a new account and start a session
// @Tags auth
// @Accept json
// @Produce json
// @Param request body signupRequest true "Signup request"
// @Success 201 {object} object{token=string,user=models.User}
// @Failure 400 {object} models.ErrorResponse
// @Failure 409 {object} models.ErrorResponse
// @Router /auth/signup [post]
func (s *Server) Signup(c *fiber.Ctx) error {
	var req signupRequest
	if err := c.BodyParser(&req); err != nil {
		return models.RespondWithError(c, fiber.StatusBadRequest,
			models.NewValidationError("Invalid request body"))
	}

	user, err := s.userService.Signup(c.UserContext(), service.SignupInput{
		Username:  req.Username,
		Email:     req.Email,
		Password:  req.Password,
		FirstName: req.FirstName,
		LastName:  req.LastName,
	})
	if err != nil {
		return s.mapServiceError(c, err)
	}

	token, err := s.issueSession(c, user)
	if err != nil {
		return s.mapServiceError(c, models.NewInternalError(err))
	}

	return c.Status(fiber.StatusCreated).JSON(fiber.Map{
		"token": token,
		"user":  user,
	})
}

// LoginForm handles GET /auth/login, where guests are sent by protected pages.
func (s *Server) LoginForm(c *fiber.Ctx) error {
	return c.JSON(fiber.Map{
		"fields": []string{"username", "password"},
		"next":   safeNext(c.Query("next")),
	})
}

// Login handles POST /auth/login
// @Summary User login
// @Description Authenticate and receive a token. With a next path the
// @Description response redirects there instead.
// @Tags auth
// @Accept json
// @Produce json
// @Param request body loginRequest true "Login credentials"
// @Success 200 {object} object{token=string,user=models.User}
// @Success 302
// @Failure 401 {object} models.ErrorResponse
// @Router /auth/login [post]
func (s *Server) Login(c *fiber.Ctx) error {
	var req loginRequest
	if err := c.BodyParser(&req); err != nil {
		return models.RespondWithError(c, fiber.StatusBadRequest,
			models.NewValidationError("Invalid request body"))
	}
	if req.Next == "" {
		req.Next = c.Query("next")
	}

	user, err := s.userService.Authenticate(c.UserContext(), req.Username, req.Password)
	if err != nil {
		return s.mapServiceError(c, err)
	}

	token, err := s.issueSession(c, user)
	if err != nil {
		return s.mapServiceError(c, models.NewInternalError(err))
	}

	if next := safeNext(req.Next); next != "" {
		return c.Redirect(next, fiber.StatusFound)
	}
	return c.JSON(fiber.Map{
		"token": token,
		"user":  user,
	})
}

// Logout handles POST /auth/logout
// @Summary Logout
// @Description Revoke the current token and clear the session cookie
// @Tags auth
// @Produce json
// @Success 200 {object} object{message=string}
// @Router /auth/logout [post]
func (s *Server) Logout(c *fiber.Ctx) error {
	ctx := c.UserContext()
	if claims, ok := c.Locals(localClaims).(middleware.TokenClaims); ok && claims.JTI != "" {
		ttl := claims.ExpiresAt.Sub(s.now())
		switch {
		case s.redis == nil:
			middleware.Logger.WarnContext(ctx, "redis unavailable, token not revoked")
		case ttl > 0:
			if err := s.redis.Set(ctx, blacklistKey(claims.JTI), "1", ttl).Err(); err != nil {
				middleware.Logger.ErrorContext(ctx, "failed to revoke token", "error", err)
				return s.mapServiceError(c, models.NewInternalError(err))
			}
		}
	}

	c.Cookie(&fiber.Cookie{
		Name:     middleware.TokenCookie,
		Value:    "",
		Path:     "/",
		Expires:  time.Unix(0, 0),
		HTTPOnly: true,
		Secure:   s.config.IsProduction(),
		SameSite: fiber.CookieSameSiteLaxMode,
	})
	return c.JSON(fiber.Map{"message": "Logged out"})
}
