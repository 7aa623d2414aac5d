package validation

import "strings"

const requiredMessage = "This field is required."

// PostForm is the create/edit payload for a post. Group existence is checked
// by the service because it needs the store.
type PostForm struct {
	Text    string
	GroupID *uint
	Image   *ImageUpload
}

// Validate checks the fields that do not need a lookup. maxImageBytes bounds
// the attachment size.
func (f PostForm) Validate(maxImageBytes int64) FieldErrors {
	errs := FieldErrors{}
	if strings.TrimSpace(f.Text) == "" {
		errs.Add("text", requiredMessage)
	}
	if f.Image != nil {
		if _, err := ValidateImage(f.Image, maxImageBytes); err != nil {
			errs.Add("image", err.Error())
		}
	}
	return errs
}

// CommentForm is the payload for adding a comment.
type CommentForm struct {
	Text string
}

func (f CommentForm) Validate() FieldErrors {
	errs := FieldErrors{}
	if strings.TrimSpace(f.Text) == "" {
		errs.Add("text", requiredMessage)
	}
	return errs
}
