package service

import (
	"bytes"
	"context"
	"errors"
	"image"
	"image/png"
	"testing"

	"postboard/internal/database"
	"postboard/internal/models"
	"postboard/internal/repository"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

type testEnv struct {
	db       *gorm.DB
	users    repository.UserRepository
	groups   repository.GroupRepository
	posts    repository.PostRepository
	comments repository.CommentRepository
	follows  repository.FollowRepository
	images   *memoryImages

	feedSvc    *FeedService
	followSvc  *FollowService
	postSvc    *PostService
	commentSvc *CommentService
	userSvc    *UserService
	groupSvc   *GroupService
}

func setupEnv(t *testing.T) *testEnv {
	t.Helper()
	db, err := database.OpenSQLite(":memory:", nil)
	require.NoError(t, err)
	require.NoError(t, database.Migrate(context.Background(), db))
	t.Cleanup(func() { _ = database.Close(db) })

	env := &testEnv{
		db:       db,
		users:    repository.NewUserRepository(db),
		groups:   repository.NewGroupRepository(db),
		posts:    repository.NewPostRepository(db),
		comments: repository.NewCommentRepository(db),
		follows:  repository.NewFollowRepository(db),
		images:   &memoryImages{files: map[string][]byte{}},
	}
	env.feedSvc = NewFeedService(env.posts, env.groups, env.users, env.follows, 10)
	env.followSvc = NewFollowService(env.users, env.follows)
	env.postSvc = NewPostService(env.posts, env.groups, env.comments, env.images, 1<<20)
	env.commentSvc = NewCommentService(env.comments, env.posts)
	env.userSvc = NewUserService(env.users)
	env.groupSvc = NewGroupService(env.groups)
	return env
}

func (e *testEnv) user(t *testing.T, username string) *models.User {
	t.Helper()
	u := &models.User{Username: username, Email: username + "@example.com", Password: "x"}
	require.NoError(t, e.users.Create(context.Background(), u))
	return u
}

func (e *testEnv) group(t *testing.T, slug string) *models.Group {
	t.Helper()
	g := &models.Group{Title: "Group " + slug, Slug: slug, Description: "d"}
	require.NoError(t, e.groups.Create(context.Background(), g))
	return g
}

func (e *testEnv) post(t *testing.T, author *models.User, group *models.Group, text string) *models.Post {
	t.Helper()
	in := CreatePostInput{AuthorID: author.ID, Text: text}
	if group != nil {
		in.GroupID = &group.ID
	}
	p, err := e.postSvc.CreatePost(context.Background(), in)
	require.NoError(t, err)
	return p
}

func (e *testEnv) countPosts(t *testing.T) int64 {
	t.Helper()
	var n int64
	require.NoError(t, e.db.Model(&models.Post{}).Count(&n).Error)
	return n
}

type memoryImages struct {
	files   map[string][]byte
	saveErr error
}

func (m *memoryImages) SavePostImage(_ context.Context, data []byte, format string) (string, error) {
	if m.saveErr != nil {
		return "", m.saveErr
	}
	rel := "posts/" + format + string(rune('a'+len(m.files))) + "." + format
	m.files[rel] = data
	return rel, nil
}

func (m *memoryImages) Remove(rel string) error {
	delete(m.files, rel)
	return nil
}

func pngBytes(t *testing.T) []byte {
	t.Helper()
	var buf bytes.Buffer
	require.NoError(t, png.Encode(&buf, image.NewGray(image.Rect(0, 0, 3, 3))))
	return buf.Bytes()
}

func assertCode(t *testing.T, err error, code string) {
	t.Helper()
	require.Error(t, err)
	var appErr *models.AppError
	require.True(t, errors.As(err, &appErr), "expected AppError, got %T", err)
	assert.Equal(t, code, appErr.Code)
}

func ids(posts []models.Post) []uint {
	out := make([]uint, len(posts))
	for i, p := range posts {
		out[i] = p.ID
	}
	return out
}
