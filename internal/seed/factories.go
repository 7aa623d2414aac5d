// Package seed provides helpers to create demo data for the board. These
// helpers are intended for development and testing only.
package seed

import (
	"context"
	"fmt"
	"strings"
	"time"

	"postboard/internal/models"

	"github.com/brianvoe/gofakeit/v6"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// DefaultPassword is the password of every generated user.
const DefaultPassword = "password123"

// Options tunes how entities are generated.
type Options struct {
	// SkipBcrypt stores DefaultPassword unhashed; generated users cannot log
	// in but seeding is much faster.
	SkipBcrypt bool
	// MaxDays spreads post dates over this many days back from now.
	MaxDays int
	// Now anchors generated dates. Defaults to time.Now.
	Now func() time.Time
}

// Factory builds domain entities and persists them to the database.
type Factory struct {
	db       *gorm.DB
	opts     Options
	password string
	seq      int
}

// NewFactory creates a new Factory bound to the provided Gorm DB.
func NewFactory(db *gorm.DB, opts Options) *Factory {
	if opts.Now == nil {
		opts.Now = time.Now
	}
	if opts.MaxDays <= 0 {
		opts.MaxDays = 90
	}
	return &Factory{db: db, opts: opts}
}

func (f *Factory) hashedPassword() (string, error) {
	if f.opts.SkipBcrypt {
		return DefaultPassword, nil
	}
	if f.password == "" {
		hashed, err := bcrypt.GenerateFromPassword([]byte(DefaultPassword), bcrypt.DefaultCost)
		if err != nil {
			return "", err
		}
		f.password = string(hashed)
	}
	return f.password, nil
}

// CreateUser constructs and persists a sample user. Optional override
// functions may modify the generated user before saving.
func (f *Factory) CreateUser(ctx context.Context, overrides ...func(*models.User)) (*models.User, error) {
	password, err := f.hashedPassword()
	if err != nil {
		return nil, err
	}
	f.seq++
	first, last := gofakeit.FirstName(), gofakeit.LastName()
	user := &models.User{
		Username:  fmt.Sprintf("%s.%s%d", strings.ToLower(first), strings.ToLower(last), f.seq),
		Email:     fmt.Sprintf("user%d.%s", f.seq, gofakeit.Email()),
		Password:  password,
		FirstName: first,
		LastName:  last,
	}
	user.Username = sanitizeUsername(user.Username)

	for _, override := range overrides {
		override(user)
	}

	if err := f.db.WithContext(ctx).Create(user).Error; err != nil {
		return nil, err
	}
	return user, nil
}

// sanitizeUsername keeps only the characters usernames allow.
func sanitizeUsername(s string) string {
	return strings.Map(func(r rune) rune {
		switch {
		case r >= 'a' && r <= 'z', r >= 'A' && r <= 'Z', r >= '0' && r <= '9':
			return r
		case strings.ContainsRune("._@+-", r):
			return r
		}
		return -1
	}, s)
}

// CreatePost constructs and persists a sample post by author, filed under
// group when it is non-nil. Dates are spread over the configured window.
func (f *Factory) CreatePost(ctx context.Context, author *models.User, group *models.Group, overrides ...func(*models.Post)) (*models.Post, error) {
	back := time.Duration(gofakeit.Number(0, f.opts.MaxDays*24*60)) * time.Minute
	post := &models.Post{
		Text:     gofakeit.Paragraph(1, 3, 8, "\n"),
		AuthorID: author.ID,
		PubDate:  f.opts.Now().Add(-back),
	}
	if group != nil {
		post.GroupID = &group.ID
	}

	for _, override := range overrides {
		override(post)
	}

	if err := f.db.WithContext(ctx).Omit(clause.Associations).Create(post).Error; err != nil {
		return nil, err
	}
	return post, nil
}

// CreateComment constructs and persists a sample comment by author on post.
func (f *Factory) CreateComment(ctx context.Context, author *models.User, post *models.Post, overrides ...func(*models.Comment)) (*models.Comment, error) {
	comment := &models.Comment{
		Text:     gofakeit.Sentence(8),
		AuthorID: author.ID,
		PostID:   post.ID,
	}

	for _, override := range overrides {
		override(comment)
	}

	if err := f.db.WithContext(ctx).Omit(clause.Associations).Create(comment).Error; err != nil {
		return nil, err
	}
	return comment, nil
}

// Follow subscribes user to author. Self-follows and existing edges are
// skipped.
func (f *Factory) Follow(ctx context.Context, user, author *models.User) error {
	if user.ID == author.ID {
		return nil
	}
	return f.db.WithContext(ctx).
		Clauses(clause.OnConflict{
			Columns:   []clause.Column{{Name: "user_id"}, {Name: "author_id"}},
			DoNothing: true,
		}).
		Omit(clause.Associations).
		Create(&models.Follow{UserID: user.ID, AuthorID: author.ID}).Error
}
