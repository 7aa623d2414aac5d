package service

import (
	"context"
	"fmt"
	"testing"

	"postboard/internal/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestGlobalPage_TwelvePostsSplitTenAndTwo(t *testing.T) {
	env := setupEnv(t)
	ctx := context.Background()
	author := env.user(t, "leo")
	for i := 0; i < 12; i++ {
		env.post(t, author, nil, fmt.Sprintf("post %d", i))
	}

	first, err := env.feedSvc.GlobalPage(ctx, "")
	require.NoError(t, err)
	assert.Len(t, first.Items, 10)
	assert.Equal(t, 2, first.NumPages)

	second, err := env.feedSvc.GlobalPage(ctx, "2")
	require.NoError(t, err)
	assert.Len(t, second.Items, 2)

	clamped, err := env.feedSvc.GlobalPage(ctx, "50")
	require.NoError(t, err)
	assert.Equal(t, 2, clamped.Number)
}

func TestGroupPage_OnlyThatGroup(t *testing.T) {
	env := setupEnv(t)
	ctx := context.Background()
	author := env.user(t, "leo")
	cats := env.group(t, "cats")
	dogs := env.group(t, "dogs")
	inCats := env.post(t, author, cats, "meow")
	env.post(t, author, dogs, "woof")

	res, err := env.feedSvc.GroupPage(ctx, "cats", "")
	require.NoError(t, err)
	assert.Equal(t, "cats", res.Group.Slug)
	assert.Equal(t, []uint{inCats.ID}, ids(res.Page.Items))

	res, err = env.feedSvc.GroupPage(ctx, "dogs", "")
	require.NoError(t, err)
	assert.NotContains(t, ids(res.Page.Items), inCats.ID)

	_, err = env.feedSvc.GroupPage(ctx, "birds", "")
	assertCode(t, err, models.CodeNotFound)
}

func TestProfilePage(t *testing.T) {
	env := setupEnv(t)
	ctx := context.Background()
	author := env.user(t, "leo")
	viewer := env.user(t, "viewer")
	env.post(t, author, nil, "one")
	env.post(t, author, nil, "two")
	env.post(t, viewer, nil, "not mine")

	res, err := env.feedSvc.ProfilePage(ctx, "leo", 0, "")
	require.NoError(t, err)
	assert.Equal(t, int64(2), res.PostCount)
	assert.False(t, res.Following)
	for _, p := range res.Page.Items {
		assert.Equal(t, author.ID, p.AuthorID)
	}

	_, err = env.followSvc.Follow(ctx, viewer.ID, "leo")
	require.NoError(t, err)
	res, err = env.feedSvc.ProfilePage(ctx, "leo", viewer.ID, "")
	require.NoError(t, err)
	assert.True(t, res.Following)

	_, err = env.feedSvc.ProfilePage(ctx, "ghost", 0, "")
	assertCode(t, err, models.CodeNotFound)
}

func TestFollowPage_ExactlyFollowedAuthors(t *testing.T) {
	env := setupEnv(t)
	ctx := context.Background()
	reader := env.user(t, "reader")
	a := env.user(t, "a")
	b := env.user(t, "b")
	c := env.user(t, "c")

	pa := env.post(t, a, nil, "from a")
	pb := env.post(t, b, nil, "from b")
	env.post(t, c, nil, "from c")
	env.post(t, reader, nil, "own post")

	_, err := env.followSvc.Follow(ctx, reader.ID, "a")
	require.NoError(t, err)
	_, err = env.followSvc.Follow(ctx, reader.ID, "b")
	require.NoError(t, err)

	page, err := env.feedSvc.FollowPage(ctx, reader.ID, "")
	require.NoError(t, err)
	assert.ElementsMatch(t, []uint{pa.ID, pb.ID}, ids(page.Items))

	page, err = env.feedSvc.FollowPage(ctx, c.ID, "")
	require.NoError(t, err)
	assert.Empty(t, page.Items)
	assert.Equal(t, 1, page.NumPages)
}
