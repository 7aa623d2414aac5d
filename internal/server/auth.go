package server

import (
	"context"

	"postboard/internal/cache"
	"postboard/internal/middleware"
	"postboard/internal/models"

	"github.com/gofiber/fiber/v2"
)

func blacklistKey(jti string) string {
	return cache.Namespace + "blacklist:" + jti
}

// ResolveActor authenticates the request when it carries a token and stores
// the user in locals. Requests without a valid token continue as guests.
func (s *Server) ResolveActor() fiber.Handler {
	return func(c *fiber.Ctx) error {
		tokenString, err := middleware.TokenFromRequest(c)
		if err != nil {
			if !middleware.IsNoToken(err) {
				middleware.Logger.DebugContext(c.UserContext(), "ignoring malformed credentials", "error", err)
			}
			return c.Next()
		}

		claims, err := middleware.ParseToken(s.config.JWTSecret, tokenString)
		if err != nil {
			middleware.Logger.DebugContext(c.UserContext(), "ignoring invalid token", "error", err)
			return c.Next()
		}
		if s.isRevoked(c.UserContext(), claims.JTI) {
			return c.Next()
		}

		user, err := s.userService.GetUserByID(c.UserContext(), claims.UserID)
		if err != nil {
			if !models.IsNotFound(err) {
				middleware.Logger.ErrorContext(c.UserContext(), "failed to load token user",
					"user_id", claims.UserID, "error", err)
			}
			return c.Next()
		}

		c.Locals(localUserID, user.ID)
		c.Locals(localActor, user)
		c.Locals(localClaims, claims)
		c.SetUserContext(middleware.WithUserID(c.UserContext(), user.ID))
		return c.Next()
	}
}

// isRevoked checks the logout blacklist. Without Redis nothing is revoked,
// and lookup failures let the token through.
func (s *Server) isRevoked(ctx context.Context, jti string) bool {
	if s.redis == nil || jti == "" {
		return false
	}
	n, err := s.redis.Exists(ctx, blacklistKey(jti)).Result()
	if err != nil {
		middleware.Logger.WarnContext(ctx, "token blacklist lookup failed", "error", err)
		return false
	}
	return n > 0
}

// ActorRequired redirects guests to the login page, remembering where they
// were going.
func (s *Server) ActorRequired() fiber.Handler {
	return func(c *fiber.Ctx) error {
		if actor(c) == nil {
			return c.Redirect(loginURL(c.OriginalURL()), fiber.StatusFound)
		}
		return c.Next()
	}
}

// AdminRequired rejects guests with 401 and non-admin users with 403.
func (s *Server) AdminRequired() fiber.Handler {
	return func(c *fiber.Ctx) error {
		u := actor(c)
		if u == nil {
			return models.RespondWithError(c, fiber.StatusUnauthorized,
				models.NewUnauthorizedError("Authorization required"))
		}
		if !u.IsAdmin {
			return models.RespondWithError(c, fiber.StatusForbidden,
				models.NewForbiddenError("Admin access required"))
		}
		return c.Next()
	}
}
