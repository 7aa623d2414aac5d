package repository

import (
	"context"
	"regexp"
	"testing"

	"postboard/internal/models"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestPostRepository_CreateAndGet(t *testing.T) {
	db := setupTestDB(t)
	repo := NewPostRepository(db)
	ctx := context.Background()

	author := createUser(t, db, "leo")
	group := createGroup(t, db, "novels")

	post := &models.Post{Text: "War and Peace", AuthorID: author.ID, GroupID: &group.ID}
	require.NoError(t, repo.Create(ctx, post))
	assert.NotZero(t, post.ID)
	assert.False(t, post.PubDate.IsZero(), "pub_date is assigned on create")

	got, err := repo.GetByID(ctx, post.ID)
	require.NoError(t, err)
	assert.Equal(t, "leo", got.Author.Username)
	require.NotNil(t, got.Group)
	assert.Equal(t, "novels", got.Group.Slug)

	_, err = repo.GetByID(ctx, 9999)
	assert.True(t, models.IsNotFound(err))
}

func TestPostRepository_UpdateKeepsAuthorAndDate(t *testing.T) {
	db := setupTestDB(t)
	repo := NewPostRepository(db)
	ctx := context.Background()

	author := createUser(t, db, "leo")
	other := createUser(t, db, "anna")
	group := createGroup(t, db, "novels")
	post := createPost(t, db, author, group, 0)

	post.Text = "edited"
	post.GroupID = nil
	post.Image = "posts/a.png"
	post.AuthorID = other.ID
	require.NoError(t, repo.Update(ctx, post))

	got, err := repo.GetByID(ctx, post.ID)
	require.NoError(t, err)
	assert.Equal(t, "edited", got.Text)
	assert.Nil(t, got.GroupID)
	assert.Equal(t, "posts/a.png", got.Image)
	assert.Equal(t, author.ID, got.AuthorID)
	assert.True(t, baseTime.Equal(got.PubDate))
}

func TestPostRepository_GlobalFeedOrder(t *testing.T) {
	db := setupTestDB(t)
	repo := NewPostRepository(db)
	ctx := context.Background()

	a := createUser(t, db, "a")
	p1 := createPost(t, db, a, nil, 1)
	p3 := createPost(t, db, a, nil, 3)
	p2 := createPost(t, db, a, nil, 2)
	tieLow := createPost(t, db, a, nil, 5)
	tieHigh := createPost(t, db, a, nil, 5)

	posts, err := repo.GlobalFeed().All(ctx)
	require.NoError(t, err)
	assert.Equal(t, []uint{tieHigh.ID, tieLow.ID, p3.ID, p2.ID, p1.ID}, postIDs(posts))
	assert.Equal(t, "a", posts[0].Author.Username, "author is preloaded")

	n, err := repo.GlobalFeed().Count(ctx)
	require.NoError(t, err)
	assert.Equal(t, int64(5), n)

	page, err := repo.GlobalFeed().Fetch(ctx, 2, 2)
	require.NoError(t, err)
	assert.Equal(t, []uint{p3.ID, p2.ID}, postIDs(page))
}

func TestPostRepository_GroupFeedIsolation(t *testing.T) {
	db := setupTestDB(t)
	repo := NewPostRepository(db)
	ctx := context.Background()

	a := createUser(t, db, "a")
	cats := createGroup(t, db, "cats")
	dogs := createGroup(t, db, "dogs")
	inCats := createPost(t, db, a, cats, 1)
	createPost(t, db, a, dogs, 2)
	createPost(t, db, a, nil, 3)

	posts, err := repo.GroupFeed(cats.ID).All(ctx)
	require.NoError(t, err)
	assert.Equal(t, []uint{inCats.ID}, postIDs(posts))

	empty := createGroup(t, db, "empty")
	n, err := repo.GroupFeed(empty.ID).Count(ctx)
	require.NoError(t, err)
	assert.Zero(t, n)
}

func TestPostRepository_AuthorFeed(t *testing.T) {
	db := setupTestDB(t)
	repo := NewPostRepository(db)
	ctx := context.Background()

	a := createUser(t, db, "a")
	b := createUser(t, db, "b")
	a1 := createPost(t, db, a, nil, 1)
	createPost(t, db, b, nil, 2)
	a2 := createPost(t, db, a, nil, 3)

	posts, err := repo.AuthorFeed(a.ID).All(ctx)
	require.NoError(t, err)
	assert.Equal(t, []uint{a2.ID, a1.ID}, postIDs(posts))

	n, err := repo.CountByAuthor(ctx, a.ID)
	require.NoError(t, err)
	assert.Equal(t, int64(2), n)
}

func TestPostRepository_FollowFeedMatchesFollowedAuthors(t *testing.T) {
	db := setupTestDB(t)
	repo := NewPostRepository(db)
	follows := NewFollowRepository(db)
	ctx := context.Background()

	reader := createUser(t, db, "reader")
	followed1 := createUser(t, db, "followed1")
	followed2 := createUser(t, db, "followed2")
	stranger := createUser(t, db, "stranger")

	f1 := createPost(t, db, followed1, nil, 1)
	createPost(t, db, stranger, nil, 2)
	f2 := createPost(t, db, followed2, nil, 3)
	createPost(t, db, reader, nil, 4)

	_, err := follows.Create(ctx, reader.ID, followed1.ID)
	require.NoError(t, err)
	_, err = follows.Create(ctx, reader.ID, followed2.ID)
	require.NoError(t, err)
	// Someone else's subscription must not leak into reader's feed.
	_, err = follows.Create(ctx, stranger.ID, reader.ID)
	require.NoError(t, err)

	posts, err := repo.FollowFeed(reader.ID).All(ctx)
	require.NoError(t, err)
	assert.Equal(t, []uint{f2.ID, f1.ID}, postIDs(posts))

	posts, err = repo.FollowFeed(followed1.ID).All(ctx)
	require.NoError(t, err)
	assert.Empty(t, posts)
}

func TestFeed_FetchSQLShape(t *testing.T) {
	db, mock := setupMockDB(t)
	repo := NewPostRepository(db)

	mock.ExpectQuery(regexp.QuoteMeta(`SELECT * FROM "posts" WHERE posts.group_id = $1 ORDER BY posts.pub_date DESC,posts.id DESC LIMIT $2 OFFSET $3`)).
		WithArgs(7, 10, 20).
		WillReturnRows(sqlmock.NewRows([]string{"id", "text", "author_id"}))

	posts, err := repo.GroupFeed(7).Fetch(context.Background(), 10, 20)
	require.NoError(t, err)
	assert.Empty(t, posts)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestFeed_CountError(t *testing.T) {
	db, mock := setupMockDB(t)
	repo := NewPostRepository(db)

	mock.ExpectQuery(regexp.QuoteMeta(`SELECT count(*) FROM "posts"`)).
		WillReturnError(assert.AnError)

	_, err := repo.GlobalFeed().Count(context.Background())
	assert.True(t, models.HasCode(err, models.CodeInternal))
	assert.NoError(t, mock.ExpectationsWereMet())
}
