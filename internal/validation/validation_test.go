package validation

import (
	"bytes"
	"image"
	"image/color"
	"image/gif"
	"image/png"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func pngBytes(t *testing.T) []byte {
	t.Helper()
	img := image.NewRGBA(image.Rect(0, 0, 2, 2))
	img.Set(0, 0, color.RGBA{R: 255, A: 255})
	var buf bytes.Buffer
	require.NoError(t, png.Encode(&buf, img))
	return buf.Bytes()
}

func gifBytes(t *testing.T) []byte {
	t.Helper()
	img := image.NewPaletted(image.Rect(0, 0, 1, 1), color.Palette{color.Black, color.White})
	var buf bytes.Buffer
	require.NoError(t, gif.Encode(&buf, img, nil))
	return buf.Bytes()
}

func TestValidatePassword(t *testing.T) {
	t.Parallel()
	tests := []struct {
		name     string
		password string
		wantErr  bool
	}{
		{"Valid", "readers42", false},
		{"Exactly Min Length", "abcdefg1", false},
		{"Exactly Max Length", strings.Repeat("b", 127) + "1", false},
		{"Too Short", "abc12", true},
		{"Too Long", strings.Repeat("b", 128) + "1", true},
		{"Entirely Numeric", "1234567890", true},
		{"No Digit", "onlyletters", true},
		{"Unicode Letters", "Ångström12", false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := ValidatePassword(tt.password)
			if tt.wantErr {
				assert.Error(t, err)
			} else {
				assert.NoError(t, err)
			}
		})
	}
}

func TestValidateUsername(t *testing.T) {
	t.Parallel()
	tests := []struct {
		name     string
		username string
		wantErr  bool
	}{
		{"Valid", "leo_tolstoy", false},
		{"Single Char", "a", false},
		{"Punctuation Allowed", "first.last+tag@home", false},
		{"Empty", "", true},
		{"Slash", "bad/name", true},
		{"Space", "bad name", true},
		{"Too Long", strings.Repeat("u", 151), true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := ValidateUsername(tt.username)
			if tt.wantErr {
				assert.Error(t, err)
			} else {
				assert.NoError(t, err)
			}
		})
	}
}

func TestValidateEmail(t *testing.T) {
	t.Parallel()
	emailAt254 := strings.Repeat("a", 64) + "@" + strings.Repeat("b", 185) + ".com"
	tests := []struct {
		name    string
		email   string
		wantErr bool
	}{
		{"Valid", "test@example.com", false},
		{"Exactly 254 Characters", emailAt254, false},
		{"Invalid Format", "not-an-email", true},
		{"Missing Domain", "user@", true},
		{"Multiple At Symbols", "user@@example.com", true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := ValidateEmail(tt.email)
			if tt.wantErr {
				assert.Error(t, err)
			} else {
				assert.NoError(t, err)
			}
		})
	}
}

func TestSignupForm_CollectsAllErrors(t *testing.T) {
	t.Parallel()
	errs := SignupForm{Username: "bad name", Email: "nope", Password: "123"}.Validate()
	assert.Equal(t, []string{"email", "password", "username"}, errs.Fields())

	ok := SignupForm{Username: "reader", Email: "reader@example.com", Password: "readers42"}.Validate()
	assert.True(t, ok.Empty())
}

func TestValidateGroupSlug(t *testing.T) {
	t.Parallel()
	tests := []struct {
		name string
		slug string
		ok   bool
	}{
		{name: "simple", slug: "cats", ok: true},
		{name: "underscore and digits", slug: "group_2", ok: true},
		{name: "hyphen", slug: "night-owls", ok: true},
		{name: "single char", slug: "x", ok: true},
		{name: "max length", slug: strings.Repeat("a", 50), ok: true},
		{name: "too long", slug: strings.Repeat("a", 51), ok: false},
		{name: "empty", slug: "", ok: false},
		{name: "uppercase", slug: "Cats", ok: false},
		{name: "space", slug: "big cats", ok: false},
		{name: "reserved create", slug: "create", ok: false},
		{name: "reserved follow", slug: "follow", ok: false},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			err := ValidateGroupSlug(tc.slug)
			if tc.ok {
				assert.NoError(t, err)
			} else {
				assert.Error(t, err)
			}
		})
	}
}

func TestGroupForm_Validate(t *testing.T) {
	t.Parallel()
	errs := GroupForm{Title: "  ", Slug: "Bad Slug"}.Validate()
	assert.Equal(t, []string{"description", "slug", "title"}, errs.Fields())

	errs = GroupForm{Title: "Cats", Slug: "cats", Description: "All about cats"}.Validate()
	assert.True(t, errs.Empty())
}

func TestPostForm_Validate(t *testing.T) {
	t.Parallel()

	t.Run("blank text", func(t *testing.T) {
		errs := PostForm{Text: " \n\t"}.Validate(1 << 20)
		assert.Equal(t, []string{requiredMessage}, errs["text"])
	})

	t.Run("valid without image", func(t *testing.T) {
		assert.True(t, PostForm{Text: "hello"}.Validate(1<<20).Empty())
	})

	t.Run("valid png", func(t *testing.T) {
		form := PostForm{Text: "hello", Image: &ImageUpload{Filename: "a.png", Data: pngBytes(t)}}
		assert.True(t, form.Validate(1<<20).Empty())
	})

	t.Run("not an image", func(t *testing.T) {
		form := PostForm{Text: "hello", Image: &ImageUpload{Filename: "a.png", Data: []byte("plain text")}}
		errs := form.Validate(1 << 20)
		assert.Len(t, errs["image"], 1)
	})

	t.Run("image too large", func(t *testing.T) {
		form := PostForm{Text: "hello", Image: &ImageUpload{Filename: "a.png", Data: pngBytes(t)}}
		errs := form.Validate(10)
		assert.Len(t, errs["image"], 1)
	})
}

func TestValidateImage_Formats(t *testing.T) {
	t.Parallel()

	format, err := ValidateImage(&ImageUpload{Data: pngBytes(t)}, 0)
	require.NoError(t, err)
	assert.Equal(t, "png", format)

	format, err = ValidateImage(&ImageUpload{Data: gifBytes(t)}, 0)
	require.NoError(t, err)
	assert.Equal(t, "gif", format)

	_, err = ValidateImage(&ImageUpload{}, 0)
	assert.Error(t, err)
}

func TestCommentForm_Validate(t *testing.T) {
	t.Parallel()
	assert.False(t, CommentForm{Text: ""}.Validate().Empty())
	assert.True(t, CommentForm{Text: "nice"}.Validate().Empty())
}

func TestFieldErrors_Merge(t *testing.T) {
	t.Parallel()
	a := FieldErrors{}
	a.Add("text", "one")
	b := FieldErrors{"text": {"two"}, "group": {"three"}}
	a.Merge(b)
	assert.Equal(t, []string{"one", "two"}, a["text"])
	assert.Equal(t, []string{"group", "text"}, a.Fields())
}
