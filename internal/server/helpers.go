package server

import (
	"errors"
	"io"
	"net/url"
	"strconv"
	"strings"

	"postboard/internal/middleware"
	"postboard/internal/models"
	"postboard/internal/validation"

	"github.com/gofiber/fiber/v2"
)

// errResponseWritten is a sentinel indicating the HTTP response was already
// committed by a helper. Handlers must return nil (not this error) to avoid
// Fiber's ErrorHandler overwriting the response.
var errResponseWritten = errors.New("response already written")

const (
	localUserID = "userID"
	localActor  = "actor"
	localClaims = "tokenClaims"
)

// parseID extracts a route parameter by name as a positive uint.
// On failure it writes a 400 JSON response and returns errResponseWritten.
// The message is derived from the parameter name ("post_id" -> "Invalid post ID").
func (s *Server) parseID(c *fiber.Ctx, param string) (uint, error) {
	id, err := c.ParamsInt(param)
	if err != nil || id <= 0 {
		_ = models.RespondWithError(c, fiber.StatusBadRequest,
			models.NewValidationError("Invalid "+humanizeParam(param)))
		return 0, errResponseWritten
	}
	return uint(id), nil
}

// humanizeParam converts a route param name into a human-readable label.
func humanizeParam(param string) string {
	if param == "id" {
		return "ID"
	}
	if strings.HasSuffix(param, "_id") {
		return strings.ReplaceAll(strings.TrimSuffix(param, "_id"), "_", " ") + " ID"
	}
	return param
}

// mapServiceError writes the JSON error response matching err's code.
func (s *Server) mapServiceError(c *fiber.Ctx, err error) error {
	var appErr *models.AppError
	if errors.As(err, &appErr) {
		switch appErr.Code {
		case models.CodeNotFound:
			return models.RespondWithError(c, fiber.StatusNotFound, err)
		case models.CodeValidation:
			return models.RespondWithError(c, fiber.StatusBadRequest, err)
		case models.CodeUnauthorized:
			return models.RespondWithError(c, fiber.StatusUnauthorized, err)
		case models.CodeForbidden:
			return models.RespondWithError(c, fiber.StatusForbidden, err)
		case models.CodeConflict:
			return models.RespondWithError(c, fiber.StatusConflict, err)
		}
	}
	middleware.Logger.ErrorContext(c.UserContext(), "request failed", "error", err)
	if appErr != nil && appErr.Code == models.CodeInternal {
		return models.RespondWithError(c, fiber.StatusInternalServerError, err)
	}
	return models.RespondWithError(c, fiber.StatusInternalServerError, models.NewInternalError(err))
}

// actor returns the authenticated user resolved for this request, or nil
// for guests.
func actor(c *fiber.Ctx) *models.User {
	u, _ := c.Locals(localActor).(*models.User)
	return u
}

// actorID is zero for guests.
func actorID(c *fiber.Ctx) uint {
	if u := actor(c); u != nil {
		return u.ID
	}
	return 0
}

func loginURL(next string) string {
	return "/auth/login?next=" + url.QueryEscape(next)
}

// safeNext accepts only same-site absolute paths as a post-login target.
func safeNext(next string) string {
	if !strings.HasPrefix(next, "/") || strings.HasPrefix(next, "//") || strings.Contains(next, `\`) {
		return ""
	}
	return next
}

func profileURL(username string) string {
	return "/profile/" + url.PathEscape(username)
}

func postURL(postID uint) string {
	return "/posts/" + strconv.FormatUint(uint64(postID), 10)
}

// parseGroupID reads the optional group choice of a post form. An empty
// value means no group.
func parseGroupID(raw string) (*uint, error) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return nil, nil
	}
	id, err := strconv.ParseUint(raw, 10, 32)
	if err != nil || id == 0 {
		return nil, models.NewFieldValidationError(validation.FieldErrors{
			"group": {"Select a valid choice. That choice is not one of the available choices."},
		})
	}
	gid := uint(id)
	return &gid, nil
}

// formImage returns the uploaded "image" file of a multipart request, or nil
// when the request carries none. At most maxBytes+1 bytes are read so
// oversized files are still rejected by validation.
func formImage(c *fiber.Ctx, maxBytes int64) (*validation.ImageUpload, error) {
	if !strings.HasPrefix(c.Get(fiber.HeaderContentType), fiber.MIMEMultipartForm) {
		return nil, nil
	}
	form, err := c.MultipartForm()
	if err != nil {
		return nil, models.NewValidationError("Invalid multipart body")
	}
	files := form.File["image"]
	if len(files) == 0 || files[0].Size == 0 {
		return nil, nil
	}

	f, err := files[0].Open()
	if err != nil {
		return nil, models.NewInternalError(err)
	}
	defer f.Close()

	reader := io.Reader(f)
	if maxBytes > 0 {
		reader = io.LimitReader(f, maxBytes+1)
	}
	data, err := io.ReadAll(reader)
	if err != nil {
		return nil, models.NewInternalError(err)
	}
	return &validation.ImageUpload{Filename: files[0].Filename, Data: data}, nil
}
