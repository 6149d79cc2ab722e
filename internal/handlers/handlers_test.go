package handlers

import (
	"bytes"
	"encoding/json"
	"fmt"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"testing"

	"github.com/labstack/echo/v4"
	"github.com/picstream/backend/internal/feed"
	"github.com/picstream/backend/internal/middleware"
	"github.com/picstream/backend/internal/repositories"
	"go.uber.org/zap"
)

const testJWTSecret = "test-secret"

type testEnv struct {
	e     *echo.Echo
	store *repositories.Store
}

// newTestEnv wires the full route surface over a file store in a temp dir
func newTestEnv(t *testing.T) *testEnv {
	t.Helper()

	dir := t.TempDir()
	fs, err := repositories.NewFileStore(filepath.Join(dir, "data"))
	if err != nil {
		t.Fatalf("open file store: %v", err)
	}
	store := fs.Repositories()
	logger := zap.NewNop()
	assembler := feed.New(store.Users, store.Comments, nil, logger)

	e := echo.New()
	authHandler := NewAuthHandler(store, nil, testJWTSecret, logger)
	userHandler := NewUserHandler(store, assembler, nil, logger)
	followHandler := NewFollowHandler(store, logger)
	postHandler := NewPostHandler(store, assembler, filepath.Join(dir, "uploads"), logger)
	commentHandler := NewCommentHandler(store, assembler, logger)

	authHandler.RegisterAuthRoutes(e.Group("/api/auth"))
	public := e.Group("/api")
	userHandler.RegisterPublicRoutes(public)
	postHandler.RegisterPublicRoutes(public)
	commentHandler.RegisterPublicRoutes(public)

	api := e.Group("/api", middleware.JWTAuth(testJWTSecret))
	authHandler.RegisterMeRoute(api)
	userHandler.RegisterRoutes(api)
	followHandler.RegisterRoutes(api)
	postHandler.RegisterRoutes(api)
	commentHandler.RegisterRoutes(api)

	return &testEnv{e: e, store: store}
}

// do issues a JSON request; token may be empty for unauthenticated calls
func (env *testEnv) do(t *testing.T, method, path, token string, body interface{}) *httptest.ResponseRecorder {
	t.Helper()

	var reader *bytes.Reader
	if body != nil {
		data, err := json.Marshal(body)
		if err != nil {
			t.Fatalf("marshal body: %v", err)
		}
		reader = bytes.NewReader(data)
	} else {
		reader = bytes.NewReader(nil)
	}

	req := httptest.NewRequest(method, path, reader)
	req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	if token != "" {
		req.Header.Set(echo.HeaderAuthorization, "Bearer "+token)
	}
	rec := httptest.NewRecorder()
	env.e.ServeHTTP(rec, req)
	return rec
}

func decode(t *testing.T, rec *httptest.ResponseRecorder, out interface{}) {
	t.Helper()
	if err := json.Unmarshal(rec.Body.Bytes(), out); err != nil {
		t.Fatalf("decode response %q: %v", rec.Body.String(), err)
	}
}

// register creates a user and returns its token and id
func (env *testEnv) register(t *testing.T, username, email, password string) (token, id string) {
	t.Helper()

	rec := env.do(t, http.MethodPost, "/api/auth/register", "", map[string]string{
		"username": username,
		"email":    email,
		"password": password,
	})
	if rec.Code != http.StatusOK {
		t.Fatalf("register %s: status %d body %s", username, rec.Code, rec.Body.String())
	}
	var resp struct {
		Token string `json:"token"`
		User  struct {
			ID string `json:"id"`
		} `json:"user"`
	}
	decode(t, rec, &resp)
	if resp.Token == "" || resp.User.ID == "" {
		t.Fatalf("register %s: missing token or id in %s", username, rec.Body.String())
	}
	return resp.Token, resp.User.ID
}

// createPost uploads a post via multipart form and returns the decoded body
func (env *testEnv) createPost(t *testing.T, token string, fields map[string]string) map[string]interface{} {
	t.Helper()

	var buf bytes.Buffer
	w := multipart.NewWriter(&buf)
	fw, err := w.CreateFormFile("image", "photo.jpg")
	if err != nil {
		t.Fatalf("create form file: %v", err)
	}
	if _, err := fw.Write([]byte("not-really-a-jpeg")); err != nil {
		t.Fatalf("write form file: %v", err)
	}
	for k, v := range fields {
		if err := w.WriteField(k, v); err != nil {
			t.Fatalf("write field %s: %v", k, err)
		}
	}
	w.Close()

	req := httptest.NewRequest(http.MethodPost, "/api/posts", &buf)
	req.Header.Set(echo.HeaderContentType, w.FormDataContentType())
	req.Header.Set(echo.HeaderAuthorization, "Bearer "+token)
	rec := httptest.NewRecorder()
	env.e.ServeHTTP(rec, req)
	if rec.Code != http.StatusOK {
		t.Fatalf("create post: status %d body %s", rec.Code, rec.Body.String())
	}

	var post map[string]interface{}
	decode(t, rec, &post)
	return post
}

func postID(t *testing.T, post map[string]interface{}) string {
	t.Helper()
	id, ok := post["id"].(string)
	if !ok || id == "" {
		t.Fatalf("post has no id: %v", post)
	}
	return id
}

func wantStatus(t *testing.T, rec *httptest.ResponseRecorder, want int) {
	t.Helper()
	if rec.Code != want {
		t.Fatalf("status = %d, want %d (body %s)", rec.Code, want, rec.Body.String())
	}
}

func wantMessage(t *testing.T, rec *httptest.ResponseRecorder, want string) {
	t.Helper()
	var resp struct {
		Message string `json:"message"`
	}
	decode(t, rec, &resp)
	if resp.Message != want {
		t.Fatalf("message = %q, want %q", resp.Message, want)
	}
}

func likeURL(postID string) string {
	return fmt.Sprintf("/api/posts/%s/like", postID)
}
