package routes

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"io"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"
	"time"

	"github.com/SketchShifter/vidtube_backend/internal/config"
	"github.com/SketchShifter/vidtube_backend/internal/events"
	"github.com/SketchShifter/vidtube_backend/internal/mock"
	"github.com/SketchShifter/vidtube_backend/internal/models"
	"github.com/SketchShifter/vidtube_backend/internal/repository"
	"github.com/SketchShifter/vidtube_backend/internal/services"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type envelope struct {
	StatusCode int             `json:"statusCode"`
	Data       json.RawMessage `json:"data"`
	Message    string          `json:"message"`
	Success    bool            `json:"success"`
}

type memStorage struct {
	mu    sync.Mutex
	count int
}

func (s *memStorage) Upload(_ context.Context, file io.Reader, kind services.MediaKind) (*services.UploadedMedia, error) {
	if _, err := io.Copy(io.Discard, file); err != nil {
		return nil, err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.count++
	id := models.NewID()
	return &services.UploadedMedia{PublicID: id, URL: "https://cdn.example/" + string(kind) + "/" + id}, nil
}

func (s *memStorage) Delete(context.Context, string, services.MediaKind) error {
	return nil
}

func testConfig() *config.Config {
	return &config.Config{
		Env: "test",
		Auth: config.AuthConfig{
			AccessTokenSecret:  "access-secret",
			AccessTokenExpiry:  time.Minute,
			RefreshTokenSecret: "refresh-secret",
			RefreshTokenExpiry: time.Hour,
		},
		Storage: config.StorageConfig{MaxUploadSize: 10 << 20},
		CORS:    config.CORSConfig{AllowedOrigins: []string{"http://localhost:5173"}},
	}
}

func newTestServer(t *testing.T, ping services.Pinger) (*gin.Engine, *mock.Fixtures) {
	t.Helper()
	gin.SetMode(gin.TestMode)

	db, err := mock.NewSQLiteDB()
	require.NoError(t, err)
	repos := repository.NewGormRepositories(db)

	fx, err := mock.Seed(context.Background(), repos)
	require.NoError(t, err)

	r := SetupRouter(testConfig(), Dependencies{
		Repositories: repos,
		Publisher:    events.NopPublisher{},
		Storage:      &memStorage{},
		Ping:         ping,
	})
	return r, fx
}

func do(t *testing.T, r http.Handler, method, path, token string, body interface{}) (*httptest.ResponseRecorder, envelope) {
	t.Helper()

	var reader io.Reader
	if body != nil {
		raw, err := json.Marshal(body)
		require.NoError(t, err)
		reader = bytes.NewReader(raw)
	}

	req := httptest.NewRequest(method, path, reader)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)

	var env envelope
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &env), w.Body.String())
	return w, env
}

func login(t *testing.T, r http.Handler, username string) services.TokenPair {
	t.Helper()
	w, env := do(t, r, http.MethodPost, "/api/v1/users/login", "", gin.H{
		"username": username,
		"password": mock.Password,
	})
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())

	var pair services.TokenPair
	require.NoError(t, json.Unmarshal(env.Data, &pair))
	require.NotEmpty(t, pair.AccessToken)
	return pair
}

func decode(t *testing.T, raw json.RawMessage, v interface{}) {
	t.Helper()
	require.NoError(t, json.Unmarshal(raw, v))
}

func TestCommentLifecycle(t *testing.T) {
	r, fx := newTestServer(t, nil)
	alice := login(t, r, "johndoe").AccessToken
	bob := login(t, r, "janesmith").AccessToken
	videoPath := "/api/v1/comments/" + fx.Videos[0].ID

	// 作成
	w, env := do(t, r, http.MethodPost, videoPath, alice, gin.H{"content": "Great video!"})
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())
	assert.True(t, env.Success)
	assert.Equal(t, http.StatusCreated, env.StatusCode)
	assert.Equal(t, "Comment added successfully", env.Message)

	var created models.CommentView
	decode(t, env.Data, &created)
	assert.Equal(t, "Great video!", created.Content)
	require.NotNil(t, created.Owner)
	assert.Equal(t, "johndoe", created.Owner.Username)
	assert.Nil(t, created.ParentCommentID)

	// 他人は更新できない
	w, env = do(t, r, http.MethodPatch, "/api/v1/comments/c/"+created.ID, bob, gin.H{"content": "Hijacked"})
	assert.Equal(t, http.StatusForbidden, w.Code)
	assert.False(t, env.Success)
	assert.Equal(t, http.StatusForbidden, env.StatusCode)

	// 本人は更新できる
	w, env = do(t, r, http.MethodPatch, "/api/v1/comments/c/"+created.ID, alice, gin.H{"content": "Edited!"})
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	var updated models.CommentView
	decode(t, env.Data, &updated)
	assert.Equal(t, "Edited!", updated.Content)

	// 削除
	w, env = do(t, r, http.MethodDelete, "/api/v1/comments/c/"+created.ID, alice, nil)
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	assert.JSONEq(t, `{}`, string(env.Data))

	// 一覧から消えている
	w, env = do(t, r, http.MethodGet, videoPath, alice, nil)
	require.Equal(t, http.StatusOK, w.Code)
	var page models.CommentPage
	decode(t, env.Data, &page)
	assert.Equal(t, int64(1), page.TotalItems)
	for _, c := range page.Comments {
		assert.NotEqual(t, created.ID, c.ID)
	}
}

func TestReplyToMissingComment(t *testing.T) {
	r, _ := newTestServer(t, nil)
	token := login(t, r, "johndoe").AccessToken
	missing := models.NewID()

	w, env := do(t, r, http.MethodPost, "/api/v1/comments/replies/"+missing, token, gin.H{"content": "hello?"})
	assert.Equal(t, http.StatusNotFound, w.Code)
	assert.False(t, env.Success)

	w, env = do(t, r, http.MethodGet, "/api/v1/comments/replies/"+missing, token, nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.JSONEq(t, `[]`, string(env.Data))
}

func TestRepliesOrderAndCascade(t *testing.T) {
	r, fx := newTestServer(t, nil)
	john := login(t, r, "johndoe").AccessToken
	jane := login(t, r, "janesmith").AccessToken
	top := fx.Comments[0]

	w, _ := do(t, r, http.MethodPost, "/api/v1/comments/replies/"+top.ID, jane, gin.H{"content": "Second reply"})
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())

	w, env := do(t, r, http.MethodGet, "/api/v1/comments/replies/"+top.ID, john, nil)
	require.Equal(t, http.StatusOK, w.Code)
	var replies []models.CommentView
	decode(t, env.Data, &replies)
	require.Len(t, replies, 2)
	assert.Equal(t, fx.Comments[1].ID, replies[0].ID)
	assert.Equal(t, "Second reply", replies[1].Content)
	assert.Equal(t, top.ID, *replies[1].ParentCommentID)

	// 返信への返信はできない
	w, _ = do(t, r, http.MethodPost, "/api/v1/comments/replies/"+replies[0].ID, jane, gin.H{"content": "nested"})
	assert.Equal(t, http.StatusBadRequest, w.Code)

	// 親を削除すると返信も消える
	w, _ = do(t, r, http.MethodDelete, "/api/v1/comments/c/"+top.ID, jane, nil)
	require.Equal(t, http.StatusOK, w.Code)

	w, env = do(t, r, http.MethodGet, "/api/v1/comments/replies/"+top.ID, john, nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.JSONEq(t, `[]`, string(env.Data))

	w, _ = do(t, r, http.MethodPatch, "/api/v1/comments/c/"+replies[1].ID, jane, gin.H{"content": "still here?"})
	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestTweetComments(t *testing.T) {
	r, fx := newTestServer(t, nil)
	token := login(t, r, "johndoe").AccessToken
	path := "/api/v1/comments/tweet/" + fx.Tweets[0].ID

	w, env := do(t, r, http.MethodPost, path, token, gin.H{"content": "Can't wait"})
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())
	var created models.CommentView
	decode(t, env.Data, &created)
	assert.Equal(t, models.TweetTarget(fx.Tweets[0].ID), created.AttachedTo)

	w, env = do(t, r, http.MethodGet, path+"?page=abc&limit=0", token, nil)
	require.Equal(t, http.StatusOK, w.Code)
	var page models.CommentPage
	decode(t, env.Data, &page)
	assert.Equal(t, int64(1), page.TotalItems)
	assert.Equal(t, 1, page.CurrentPage)
	assert.Equal(t, models.DefaultLimit, page.Limit)
}

func TestCommentRequestValidation(t *testing.T) {
	r, fx := newTestServer(t, nil)
	token := login(t, r, "johndoe").AccessToken

	// 認証なし
	w, env := do(t, r, http.MethodGet, "/api/v1/comments/"+fx.Videos[0].ID, "", nil)
	assert.Equal(t, http.StatusUnauthorized, w.Code)
	assert.Equal(t, http.StatusUnauthorized, env.StatusCode)
	assert.False(t, env.Success)

	// 不正なID
	w, _ = do(t, r, http.MethodGet, "/api/v1/comments/not-an-id", token, nil)
	assert.Equal(t, http.StatusBadRequest, w.Code)

	// 空のコメント
	w, _ = do(t, r, http.MethodPost, "/api/v1/comments/"+fx.Videos[0].ID, token, gin.H{"content": "   "})
	assert.Equal(t, http.StatusBadRequest, w.Code)

	// 存在しない動画
	w, _ = do(t, r, http.MethodPost, "/api/v1/comments/"+models.NewID(), token, gin.H{"content": "hi"})
	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestRefreshTokenRotation(t *testing.T) {
	r, _ := newTestServer(t, nil)
	first := login(t, r, "janesmith")

	w, env := do(t, r, http.MethodPost, "/api/v1/users/refresh-token", "", gin.H{"refreshToken": first.RefreshToken})
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	var second services.TokenPair
	decode(t, env.Data, &second)
	assert.NotEqual(t, first.RefreshToken, second.RefreshToken)

	// 使用済みトークンは拒否
	w, _ = do(t, r, http.MethodPost, "/api/v1/users/refresh-token", "", gin.H{"refreshToken": first.RefreshToken})
	assert.Equal(t, http.StatusUnauthorized, w.Code)

	w, env = do(t, r, http.MethodGet, "/api/v1/users/current-user", second.AccessToken, nil)
	require.Equal(t, http.StatusOK, w.Code)
	var me models.User
	decode(t, env.Data, &me)
	assert.Equal(t, "janesmith", me.Username)

	w, _ = do(t, r, http.MethodPost, "/api/v1/users/logout", second.AccessToken, nil)
	require.Equal(t, http.StatusOK, w.Code)
	w, _ = do(t, r, http.MethodPost, "/api/v1/users/refresh-token", "", gin.H{"refreshToken": second.RefreshToken})
	assert.Equal(t, http.StatusUnauthorized, w.Code)
}

func TestChannel(t *testing.T) {
	r, _ := newTestServer(t, nil)

	w, env := do(t, r, http.MethodGet, "/api/v1/users/c/johndoe", "", nil)
	require.Equal(t, http.StatusOK, w.Code)
	var channel models.OwnerSummary
	decode(t, env.Data, &channel)
	assert.Equal(t, "John Doe", channel.FullName)

	w, _ = do(t, r, http.MethodGet, "/api/v1/users/c/nobody", "", nil)
	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestVideoPublishAndVisibility(t *testing.T) {
	r, _ := newTestServer(t, nil)
	token := login(t, r, "janesmith").AccessToken

	var body bytes.Buffer
	form := multipart.NewWriter(&body)
	require.NoError(t, form.WriteField("title", "Shaders 101"))
	require.NoError(t, form.WriteField("description", "Fragment shaders from scratch"))
	require.NoError(t, form.WriteField("duration", "95.5"))
	for field, name := range map[string]string{"videoFile": "clip.mp4", "thumbnail": "thumb.png"} {
		part, err := form.CreateFormFile(field, name)
		require.NoError(t, err)
		_, err = part.Write([]byte("binary"))
		require.NoError(t, err)
	}
	require.NoError(t, form.Close())

	req := httptest.NewRequest(http.MethodPost, "/api/v1/videos", &body)
	req.Header.Set("Content-Type", form.FormDataContentType())
	req.Header.Set("Authorization", "Bearer "+token)
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())

	var env envelope
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &env))
	var video models.Video
	decode(t, env.Data, &video)
	assert.Equal(t, 95.5, video.Duration)
	assert.True(t, video.IsPublished)
	assert.Contains(t, video.VideoURL, "https://cdn.example/video/")

	// 閲覧数が増える
	w, env = do(t, r, http.MethodGet, "/api/v1/videos/"+video.ID, "", nil)
	require.Equal(t, http.StatusOK, w.Code)
	decode(t, env.Data, &video)
	assert.Equal(t, int64(1), video.Views)

	// 非公開にすると投稿者以外には見えない
	w, _ = do(t, r, http.MethodPatch, "/api/v1/videos/toggle/publish/"+video.ID, token, nil)
	require.Equal(t, http.StatusOK, w.Code)
	w, _ = do(t, r, http.MethodGet, "/api/v1/videos/"+video.ID, "", nil)
	assert.Equal(t, http.StatusNotFound, w.Code)
	w, _ = do(t, r, http.MethodGet, "/api/v1/videos/"+video.ID, token, nil)
	assert.Equal(t, http.StatusOK, w.Code)

	w, env = do(t, r, http.MethodGet, "/api/v1/videos?query=shaders", "", nil)
	require.Equal(t, http.StatusOK, w.Code)
	var page models.VideoPage
	decode(t, env.Data, &page)
	assert.Zero(t, page.TotalItems)
}

func TestVideoUpdateJSON(t *testing.T) {
	r, fx := newTestServer(t, nil)
	owner := login(t, r, "johndoe").AccessToken
	other := login(t, r, "janesmith").AccessToken
	path := "/api/v1/videos/" + fx.Videos[0].ID

	w, _ := do(t, r, http.MethodPatch, path, other, gin.H{"title": "Mine now"})
	assert.Equal(t, http.StatusForbidden, w.Code)

	w, env := do(t, r, http.MethodPatch, path, owner, gin.H{"title": "Generative art, revisited"})
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	var video models.Video
	decode(t, env.Data, &video)
	assert.Equal(t, "Generative art, revisited", video.Title)
	assert.Equal(t, fx.Videos[0].Description, video.Description)
}

func TestTweetRoutes(t *testing.T) {
	r, fx := newTestServer(t, nil)
	jane := login(t, r, "janesmith").AccessToken
	john := login(t, r, "johndoe").AccessToken

	w, env := do(t, r, http.MethodPost, "/api/v1/tweets", jane, gin.H{"content": "Editing day"})
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())
	var tweet models.Tweet
	decode(t, env.Data, &tweet)

	w, env = do(t, r, http.MethodGet, "/api/v1/tweets/user/"+fx.Users[1].ID, "", nil)
	require.Equal(t, http.StatusOK, w.Code)
	var tweets []models.Tweet
	decode(t, env.Data, &tweets)
	require.Len(t, tweets, 2)
	assert.Equal(t, tweet.ID, tweets[0].ID)

	w, _ = do(t, r, http.MethodDelete, "/api/v1/tweets/"+tweet.ID, john, nil)
	assert.Equal(t, http.StatusForbidden, w.Code)
	w, _ = do(t, r, http.MethodDelete, "/api/v1/tweets/"+tweet.ID, jane, nil)
	assert.Equal(t, http.StatusOK, w.Code)
	w, _ = do(t, r, http.MethodGet, "/api/v1/tweets/"+tweet.ID, "", nil)
	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestUnknownRoutesUseEnvelope(t *testing.T) {
	r, _ := newTestServer(t, nil)
	token := login(t, r, "johndoe").AccessToken

	w, env := do(t, r, http.MethodGet, "/api/v1/comments/c/"+models.NewID(), token, nil)
	assert.Equal(t, http.StatusMethodNotAllowed, w.Code)
	assert.Equal(t, http.StatusMethodNotAllowed, env.StatusCode)
	assert.False(t, env.Success)

	w, env = do(t, r, http.MethodGet, "/api/v1/nothing/here", "", nil)
	assert.Equal(t, http.StatusNotFound, w.Code)
	assert.Equal(t, http.StatusNotFound, env.StatusCode)
	assert.Equal(t, "Route not found", env.Message)
	assert.False(t, env.Success)
}

func TestHealth(t *testing.T) {
	r, _ := newTestServer(t, func(context.Context) error { return nil })
	w, env := do(t, r, http.MethodGet, "/api/v1/health", "", nil)
	assert.Equal(t, http.StatusOK, w.Code)
	assert.NotEmpty(t, w.Header().Get("X-Request-ID"))

	var status services.HealthStatus
	decode(t, env.Data, &status)
	assert.Equal(t, "ok", status.Status)

	r, _ = newTestServer(t, func(context.Context) error { return errors.New("connection refused") })
	w, env = do(t, r, http.MethodGet, "/api/v1/health", "", nil)
	assert.Equal(t, http.StatusServiceUnavailable, w.Code)
	decode(t, env.Data, &status)
	assert.Equal(t, "unreachable", status.Database)
}
