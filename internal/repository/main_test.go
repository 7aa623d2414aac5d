package repository

import (
	"context"
	"fmt"
	"testing"
	"time"

	"postboard/internal/database"
	"postboard/internal/models"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
)

func setupMockDB(t *testing.T) (*gorm.DB, sqlmock.Sqlmock) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)

	gormDB, err := gorm.Open(postgres.New(postgres.Config{
		Conn: db,
	}), &gorm.Config{})
	require.NoError(t, err)

	return gormDB, mock
}

func setupTestDB(t *testing.T) *gorm.DB {
	t.Helper()
	db, err := database.OpenSQLite(":memory:", nil)
	require.NoError(t, err)
	require.NoError(t, database.Migrate(context.Background(), db))
	t.Cleanup(func() { _ = database.Close(db) })
	return db
}

func createUser(t *testing.T, db *gorm.DB, username string) *models.User {
	t.Helper()
	u := &models.User{Username: username, Email: username + "@example.com", Password: "x"}
	require.NoError(t, db.Create(u).Error)
	return u
}

func createGroup(t *testing.T, db *gorm.DB, slug string) *models.Group {
	t.Helper()
	g := &models.Group{Title: "Group " + slug, Slug: slug, Description: "about " + slug}
	require.NoError(t, db.Create(g).Error)
	return g
}

var baseTime = time.Date(2024, 1, 1, 12, 0, 0, 0, time.UTC)

// createPost stamps pub_date at baseTime plus minute so ordering is explicit.
func createPost(t *testing.T, db *gorm.DB, author *models.User, group *models.Group, minute int) *models.Post {
	t.Helper()
	p := &models.Post{
		Text:     fmt.Sprintf("post by %s at %d", author.Username, minute),
		AuthorID: author.ID,
		PubDate:  baseTime.Add(time.Duration(minute) * time.Minute),
	}
	if group != nil {
		p.GroupID = &group.ID
	}
	require.NoError(t, db.Omit("Author", "Group").Create(p).Error)
	return p
}

func postIDs(posts []models.Post) []uint {
	ids := make([]uint, len(posts))
	for i, p := range posts {
		ids[i] = p.ID
	}
	return ids
}
