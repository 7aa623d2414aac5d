package validation

import (
	"fmt"
	"regexp"
	"strings"
)

const maxGroupTitleLength = 200

var groupSlugRegex = regexp.MustCompile(`^[a-z0-9_-]{1,50}$`)

// Slugs that would shadow a top-level route.
var reservedGroupSlugs = map[string]struct{}{
	"admin":    {},
	"auth":     {},
	"create":   {},
	"follow":   {},
	"group":    {},
	"health":   {},
	"media":    {},
	"metrics":  {},
	"posts":    {},
	"profile":  {},
	"swagger":  {},
	"unfollow": {},
}

// ValidateGroupSlug validates group slug format and reserved names.
func ValidateGroupSlug(slug string) error {
	if !groupSlugRegex.MatchString(slug) {
		return fmt.Errorf("slug must be 1-50 characters and contain only lowercase letters, numbers, hyphens and underscores")
	}
	if _, exists := reservedGroupSlugs[slug]; exists {
		return fmt.Errorf("slug is reserved")
	}
	return nil
}

// GroupForm is the admin payload for creating a group.
type GroupForm struct {
	Title       string
	Slug        string
	Description string
}

func (f GroupForm) Validate() FieldErrors {
	errs := FieldErrors{}
	title := strings.TrimSpace(f.Title)
	switch {
	case title == "":
		errs.Add("title", "This field is required.")
	case len([]rune(title)) > maxGroupTitleLength:
		errs.Add("title", fmt.Sprintf("title must not exceed %d characters", maxGroupTitleLength))
	}
	if err := ValidateGroupSlug(f.Slug); err != nil {
		errs.Add("slug", err.Error())
	}
	if strings.TrimSpace(f.Description) == "" {
		errs.Add("description", "This field is required.")
	}
	return errs
}
