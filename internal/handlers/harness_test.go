package handlers

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/lastchancecy/apiserver/internal/services"
	"github.com/lastchancecy/apiserver/internal/storage"
	"github.com/lastchancecy/apiserver/internal/store"
	"github.com/lastchancecy/apiserver/types"
)

const testSecret = "test-secret"

type memUserRepo struct {
	mu     sync.Mutex
	nextID int
	users  map[int]types.User
}

func newMemUserRepo() *memUserRepo {
	return &memUserRepo{nextID: 1, users: make(map[int]types.User)}
}

func (r *memUserRepo) GetByID(ctx context.Context, id int) (types.User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	user, ok := r.users[id]
	if !ok {
		return types.User{}, store.ErrNotFound
	}
	return user, nil
}

func (r *memUserRepo) GetByEmail(ctx context.Context, email string) (types.User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, user := range r.users {
		if user.Email == email {
			return user, nil
		}
	}
	return types.User{}, store.ErrNotFound
}

func (r *memUserRepo) Create(ctx context.Context, user types.User) (types.User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, existing := range r.users {
		if existing.Email == user.Email {
			return types.User{}, store.ErrDuplicate
		}
	}
	user.ID = r.nextID
	user.CreatedAt = time.Now()
	r.nextID++
	r.users[user.ID] = user
	return user, nil
}

type memAdRepo struct {
	mu     sync.Mutex
	nextID int
	ads    []types.Ad
}

func newMemAdRepo() *memAdRepo {
	return &memAdRepo{nextID: 1}
}

func (r *memAdRepo) List(ctx context.Context) ([]types.Ad, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	// newest first, matching the ORDER BY created_at DESC feed
	out := make([]types.Ad, 0, len(r.ads))
	for i := len(r.ads) - 1; i >= 0; i-- {
		out = append(out, r.ads[i])
	}
	return out, nil
}

func (r *memAdRepo) Get(ctx context.Context, id int) (types.Ad, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, ad := range r.ads {
		if ad.ID == id {
			return ad, nil
		}
	}
	return types.Ad{}, store.ErrNotFound
}

func (r *memAdRepo) Create(ctx context.Context, ad types.Ad) (types.Ad, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	ad.ID = r.nextID
	ad.CreatedAt = time.Now()
	r.nextID++
	r.ads = append(r.ads, ad)
	return ad, nil
}

type memObjectStorage struct {
	mu      sync.Mutex
	objects map[string][]byte
}

func newMemObjectStorage() *memObjectStorage {
	return &memObjectStorage{objects: make(map[string][]byte)}
}

func (s *memObjectStorage) EnsureBucket(ctx context.Context) error { return nil }

func (s *memObjectStorage) Put(ctx context.Context, key string, r io.Reader, size int64, contentType string) error {
	data, err := io.ReadAll(r)
	if err != nil {
		return err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.objects[key] = data
	return nil
}

func (s *memObjectStorage) Get(ctx context.Context, key string) (io.ReadCloser, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	data, ok := s.objects[key]
	if !ok {
		return nil, store.ErrNotFound
	}
	return io.NopCloser(bytes.NewReader(data)), nil
}

func (s *memObjectStorage) Delete(ctx context.Context, key string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.objects, key)
	return nil
}

func (s *memObjectStorage) URL(key string) string {
	return "http://media.local/test-bucket/" + key
}

func (s *memObjectStorage) Bucket() string { return "test-bucket" }

type testEnv struct {
	router   *chi.Mux
	userRepo *memUserRepo
	adRepo   *memAdRepo
	media    *memObjectStorage
}

func newTestEnv() *testEnv {
	userRepo := newMemUserRepo()
	adRepo := newMemAdRepo()
	media := newMemObjectStorage()

	userService := services.NewUserService(userRepo)
	adService := services.NewAdService(adRepo, storage.NewStorage(media), nil)

	authMiddleware := RequireAuth(testSecret)

	router := chi.NewRouter()
	router.Get("/healthz", Healthz)
	AuthRouter(router, userService, testSecret)
	router.Route("/ads", func(r chi.Router) {
		AdRouter(r, adService, authMiddleware)
	})
	router.Route("/profile", func(r chi.Router) {
		ProfileRouter(r, userService, authMiddleware)
	})
	router.Route("/users", func(r chi.Router) {
		UserRouter(r, userService, authMiddleware)
	})

	return &testEnv{
		router:   router,
		userRepo: userRepo,
		adRepo:   adRepo,
		media:    media,
	}
}

func (env *testEnv) doJSON(t *testing.T, method, path string, body any) *httptest.ResponseRecorder {
	t.Helper()
	data, err := json.Marshal(body)
	if err != nil {
		t.Fatalf("marshal request: %v", err)
	}
	req := httptest.NewRequest(method, path, bytes.NewReader(data))
	req.Header.Set("Content-Type", "application/json")
	rec := httptest.NewRecorder()
	env.router.ServeHTTP(rec, req)
	return rec
}

func (env *testEnv) doGet(t *testing.T, path, token string) *httptest.ResponseRecorder {
	t.Helper()
	req := httptest.NewRequest(http.MethodGet, path, nil)
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	rec := httptest.NewRecorder()
	env.router.ServeHTTP(rec, req)
	return rec
}

// signupAndSignin registers a user and returns its id and session token.
func (env *testEnv) signupAndSignin(t *testing.T, email, password string) (int, string) {
	t.Helper()

	rec := env.doJSON(t, http.MethodPost, "/signup", map[string]string{
		"firstName": "Test",
		"lastName":  "User",
		"email":     email,
		"password":  password,
		"phone":     "555",
	})
	if rec.Code != http.StatusCreated {
		t.Fatalf("signup status = %d, want %d (body %s)", rec.Code, http.StatusCreated, rec.Body.String())
	}

	rec = env.doJSON(t, http.MethodPost, "/signin", map[string]string{
		"email":    email,
		"password": password,
	})
	if rec.Code != http.StatusOK {
		t.Fatalf("signin status = %d, want %d (body %s)", rec.Code, http.StatusOK, rec.Body.String())
	}

	var payload SigninResponse
	if err := json.Unmarshal(rec.Body.Bytes(), &payload); err != nil {
		t.Fatalf("decode signin response: %v", err)
	}
	if payload.Token == "" {
		t.Fatalf("signin returned empty token")
	}
	return payload.UserID, payload.Token
}

func (env *testEnv) postAd(t *testing.T, token, title, description string, dj, staff, pr int) *httptest.ResponseRecorder {
	t.Helper()

	req := newAdFormRequest(t, map[string]string{
		"title":       title,
		"description": description,
		"dj":          fmt.Sprintf("%d", dj),
		"staff":       fmt.Sprintf("%d", staff),
		"pr":          fmt.Sprintf("%d", pr),
	}, true)
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	return serve(env, req)
}

func newAdFormRequest(t *testing.T, fields map[string]string, withImage bool) *http.Request {
	t.Helper()

	var buf bytes.Buffer
	writer := multipart.NewWriter(&buf)
	for name, value := range fields {
		if err := writer.WriteField(name, value); err != nil {
			t.Fatalf("write form field %s: %v", name, err)
		}
	}
	if withImage {
		part, err := writer.CreateFormFile("image", "flyer.png")
		if err != nil {
			t.Fatalf("create form file: %v", err)
		}
		if _, err := part.Write([]byte("not-a-real-png")); err != nil {
			t.Fatalf("write image: %v", err)
		}
	}
	if err := writer.Close(); err != nil {
		t.Fatalf("close multipart writer: %v", err)
	}

	req := httptest.NewRequest(http.MethodPost, "/ads", &buf)
	req.Header.Set("Content-Type", writer.FormDataContentType())
	return req
}

func httptestRequestRaw(method, path, body string) *http.Request {
	req := httptest.NewRequest(method, path, strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	return req
}

func serve(env *testEnv, req *http.Request) *httptest.ResponseRecorder {
	rec := httptest.NewRecorder()
	env.router.ServeHTTP(rec, req)
	return rec
}

func decodeMessage(t *testing.T, rec *httptest.ResponseRecorder) string {
	t.Helper()
	var payload MessageResponse
	if err := json.Unmarshal(rec.Body.Bytes(), &payload); err != nil {
		t.Fatalf("decode message payload: %v (body %s)", err, rec.Body.String())
	}
	return payload.Message
}
