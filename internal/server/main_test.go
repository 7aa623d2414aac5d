package server

import (
	"bytes"
	"context"
	"encoding/json"
	"image"
	"image/png"
	"io"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"testing"
	"time"

	"postboard/internal/config"
	"postboard/internal/database"
	"postboard/internal/middleware"
	"postboard/internal/models"
	"postboard/internal/service"

	"github.com/alicebob/miniredis/v2"
	"github.com/gofiber/fiber/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

const testSecret = "test-secret"

type testServer struct {
	*Server
	app *fiber.App
	mr  *miniredis.Miniredis
}

func testConfig(t *testing.T) *config.Config {
	return &config.Config{
		JWTSecret:            testSecret,
		Env:                  "test",
		PostsPerPage:         10,
		FeedCacheSeconds:     20,
		MediaRoot:            t.TempDir(),
		ImageMaxUploadSizeMB: 1,
	}
}

func setupTestDB(t *testing.T) *gorm.DB {
	t.Helper()
	db, err := database.OpenSQLite(":memory:", nil)
	require.NoError(t, err)
	require.NoError(t, database.Migrate(context.Background(), db))
	return db
}

func setupServer(t *testing.T) *testServer {
	t.Helper()
	db := setupTestDB(t)
	mr := miniredis.RunT(t)
	rdb := redis.NewClient(&redis.Options{Addr: mr.Addr()})

	s, err := NewServerWithDeps(testConfig(t), db, rdb)
	require.NoError(t, err)
	t.Cleanup(func() {
		_ = rdb.Close()
		_ = database.Close(db)
	})
	return &testServer{Server: s, app: s.App(), mr: mr}
}

func (ts *testServer) createUser(t *testing.T, username string, admin bool) *models.User {
	t.Helper()
	u := &models.User{Username: username, Email: username + "@example.com", Password: "x", IsAdmin: admin}
	require.NoError(t, ts.userRepo.Create(context.Background(), u))
	return u
}

func (ts *testServer) createGroup(t *testing.T, slug string) *models.Group {
	t.Helper()
	g := &models.Group{Title: "Group " + slug, Slug: slug, Description: "d"}
	require.NoError(t, ts.groupRepo.Create(context.Background(), g))
	return g
}

func (ts *testServer) createPost(t *testing.T, author *models.User, group *models.Group, text string) *models.Post {
	t.Helper()
	in := service.CreatePostInput{AuthorID: author.ID, Text: text}
	if group != nil {
		in.GroupID = &group.ID
	}
	p, err := ts.postService.CreatePost(context.Background(), in)
	require.NoError(t, err)
	return p
}

func (ts *testServer) countRows(t *testing.T, model interface{}) int64 {
	t.Helper()
	var n int64
	require.NoError(t, ts.db.Model(model).Count(&n).Error)
	return n
}

func tokenFor(t *testing.T, u *models.User) string {
	t.Helper()
	token, _, err := middleware.IssueToken(testSecret, u.ID, time.Now())
	require.NoError(t, err)
	return token
}

type requestOption func(*http.Request)

func withToken(token string) requestOption {
	return func(r *http.Request) { r.Header.Set("Authorization", "Bearer "+token) }
}

func withCookie(token string) requestOption {
	return func(r *http.Request) { r.AddCookie(&http.Cookie{Name: middleware.TokenCookie, Value: token}) }
}

func (ts *testServer) do(t *testing.T, req *http.Request, opts ...requestOption) *http.Response {
	t.Helper()
	for _, opt := range opts {
		opt(req)
	}
	resp, err := ts.app.Test(req, -1)
	require.NoError(t, err)
	return resp
}

func (ts *testServer) get(t *testing.T, path string, opts ...requestOption) *http.Response {
	t.Helper()
	return ts.do(t, httptest.NewRequest(http.MethodGet, path, nil), opts...)
}

func (ts *testServer) postForm(t *testing.T, path string, form url.Values, opts ...requestOption) *http.Response {
	t.Helper()
	req := httptest.NewRequest(http.MethodPost, path, strings.NewReader(form.Encode()))
	req.Header.Set("Content-Type", fiber.MIMEApplicationForm)
	return ts.do(t, req, opts...)
}

func (ts *testServer) postJSON(t *testing.T, path string, body interface{}, opts ...requestOption) *http.Response {
	t.Helper()
	raw, err := json.Marshal(body)
	require.NoError(t, err)
	req := httptest.NewRequest(http.MethodPost, path, bytes.NewReader(raw))
	req.Header.Set("Content-Type", fiber.MIMEApplicationJSON)
	return ts.do(t, req, opts...)
}

func (ts *testServer) postMultipart(t *testing.T, path string, fields map[string]string, image []byte, opts ...requestOption) *http.Response {
	t.Helper()
	var buf bytes.Buffer
	w := multipart.NewWriter(&buf)
	for k, v := range fields {
		require.NoError(t, w.WriteField(k, v))
	}
	if image != nil {
		fw, err := w.CreateFormFile("image", "picture.png")
		require.NoError(t, err)
		_, err = fw.Write(image)
		require.NoError(t, err)
	}
	require.NoError(t, w.Close())

	req := httptest.NewRequest(http.MethodPost, path, &buf)
	req.Header.Set("Content-Type", w.FormDataContentType())
	return ts.do(t, req, opts...)
}

func decode(t *testing.T, resp *http.Response, v interface{}) {
	t.Helper()
	defer resp.Body.Close()
	body, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	require.NoError(t, json.Unmarshal(body, v), string(body))
}

type feedDoc struct {
	PageObj struct {
		Items []struct {
			ID   uint   `json:"id"`
			Text string `json:"text"`
		} `json:"items"`
		Number   int `json:"number"`
		NumPages int `json:"num_pages"`
	} `json:"page_obj"`
}

func (d feedDoc) ids() []uint {
	out := make([]uint, 0, len(d.PageObj.Items))
	for _, it := range d.PageObj.Items {
		out = append(out, it.ID)
	}
	return out
}

func pngBytes(t *testing.T) []byte {
	t.Helper()
	var buf bytes.Buffer
	require.NoError(t, png.Encode(&buf, image.NewRGBA(image.Rect(0, 0, 2, 2))))
	return buf.Bytes()
}

func newPost(path string) *http.Request {
	return httptest.NewRequest(http.MethodPost, path, nil)
}
