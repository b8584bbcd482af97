package handlers

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"testing"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/student-records/apiserver/config"
	"github.com/student-records/apiserver/internal/auth"
	"github.com/student-records/apiserver/internal/db"
	"github.com/student-records/apiserver/internal/services"
	"github.com/student-records/apiserver/internal/store"
	"github.com/student-records/apiserver/internal/store/sqlstore"
	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"
)

type testAPI struct {
	router http.Handler
	store  *sqlstore.Store
	tokens *auth.TokenService
	users  *services.UserService
}

type memoryObjects struct {
	keys []string
}

func (m *memoryObjects) Put(_ context.Context, key string, r io.Reader, _ int64, _ string) error {
	if _, err := io.Copy(io.Discard, r); err != nil {
		return err
	}
	m.keys = append(m.keys, key)
	return nil
}

func newTestAPI(t *testing.T, objects services.ObjectStore) *testAPI {
	t.Helper()

	cfg := config.DatabaseConfig{
		Driver:     config.DriverSQLite,
		SQLitePath: filepath.Join(t.TempDir(), "students.db"),
	}
	if err := db.MigrateUp(cfg); err != nil {
		t.Fatalf("migrate: %v", err)
	}
	conn, err := db.OpenSQLite(context.Background(), cfg.SQLitePath)
	if err != nil {
		t.Fatalf("open sqlite: %v", err)
	}
	st := sqlstore.New(conn, sqlstore.SQLite)
	t.Cleanup(func() { _ = st.Close(context.Background()) })

	tokens, err := auth.NewTokenService("test-secret", "HS256")
	if err != nil {
		t.Fatalf("token service: %v", err)
	}

	log := zap.NewNop()
	users := services.NewUserService(st.Users(), auth.NewHasher(bcrypt.MinCost))
	students := services.NewStudentService(st.Students(), nil, log)
	exports := services.NewExportService(students, objects)
	gate := NewGate(users, tokens, log)

	r := chi.NewRouter()
	r.Get("/health", Health(st, log))
	r.Route("/api/v1", func(r chi.Router) {
		r.Route("/auth", func(r chi.Router) {
			AuthRouter(r, NewAuthHandler(users, tokens, 30*time.Minute, log), gate)
		})
		r.Route("/students", func(r chi.Router) {
			StudentRouter(r, NewStudentHandler(students, exports, log), gate)
		})
	})

	return &testAPI{router: r, store: st, tokens: tokens, users: users}
}

func (a *testAPI) do(t *testing.T, method, path, token string, body any) *httptest.ResponseRecorder {
	t.Helper()

	var reader io.Reader
	if body != nil {
		switch b := body.(type) {
		case string:
			reader = bytes.NewBufferString(b)
		default:
			data, err := json.Marshal(b)
			if err != nil {
				t.Fatalf("marshal body: %v", err)
			}
			reader = bytes.NewReader(data)
		}
	}

	req := httptest.NewRequest(method, path, reader)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	rec := httptest.NewRecorder()
	a.router.ServeHTTP(rec, req)
	return rec
}

// login registers username and returns a fresh access token for it.
func (a *testAPI) login(t *testing.T, username string) string {
	t.Helper()

	rec := a.do(t, http.MethodPost, "/api/v1/auth/register", "", map[string]string{
		"username": username,
		"email":    username + "@example.com",
		"password": "password123",
	})
	if rec.Code != http.StatusCreated {
		t.Fatalf("register: status %d body %s", rec.Code, rec.Body.String())
	}

	rec = a.do(t, http.MethodPost, "/api/v1/auth/login", "", map[string]string{
		"username": username,
		"password": "password123",
	})
	if rec.Code != http.StatusOK {
		t.Fatalf("login: status %d body %s", rec.Code, rec.Body.String())
	}
	var resp TokenResponse
	decodeBody(t, rec, &resp)
	return resp.AccessToken
}

func decodeBody(t *testing.T, rec *httptest.ResponseRecorder, dst any) {
	t.Helper()
	if err := json.NewDecoder(rec.Body).Decode(dst); err != nil {
		t.Fatalf("decode response: %v (body %q)", err, rec.Body.String())
	}
}

func errorMessage(t *testing.T, rec *httptest.ResponseRecorder) string {
	t.Helper()
	var resp ErrorResponse
	decodeBody(t, rec, &resp)
	return resp.Error
}

func deactivate(t *testing.T, st store.Store, username string) {
	t.Helper()
	matched, err := st.Users().UpdateOne(context.Background(), store.ByField("username", username), store.Fields{}.Set("is_active", false))
	if err != nil || !matched {
		t.Fatalf("deactivate %s: matched=%v err=%v", username, matched, err)
	}
}
