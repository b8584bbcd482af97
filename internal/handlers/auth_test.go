package handlers

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/student-records/apiserver/types"
)

func TestRegisterAndLogin(t *testing.T) {
	api := newTestAPI(t, nil)

	rec := api.do(t, http.MethodPost, "/api/v1/auth/register", "", map[string]string{
		"username": "alice",
		"email":    "alice@example.com",
		"password": "s3cret",
	})
	if rec.Code != http.StatusCreated {
		t.Fatalf("register: status %d body %s", rec.Code, rec.Body.String())
	}
	if strings.Contains(rec.Body.String(), "hashed_password") || strings.Contains(rec.Body.String(), "s3cret") {
		t.Fatalf("register response leaks credentials: %s", rec.Body.String())
	}
	var user types.User
	decodeBody(t, rec, &user)
	if user.ID == "" || user.Username != "alice" || !user.IsActive {
		t.Fatalf("unexpected user %+v", user)
	}

	rec = api.do(t, http.MethodPost, "/api/v1/auth/login", "", map[string]string{
		"username": "alice",
		"password": "wrong",
	})
	if rec.Code != http.StatusUnauthorized {
		t.Fatalf("wrong password: status %d", rec.Code)
	}
	if rec.Header().Get("WWW-Authenticate") != "Bearer" {
		t.Fatalf("expected WWW-Authenticate header")
	}

	rec = api.do(t, http.MethodPost, "/api/v1/auth/login", "", map[string]string{
		"username": "alice",
		"password": "s3cret",
	})
	if rec.Code != http.StatusOK {
		t.Fatalf("login: status %d body %s", rec.Code, rec.Body.String())
	}
	var token TokenResponse
	decodeBody(t, rec, &token)
	if token.TokenType != "bearer" || token.AccessToken == "" {
		t.Fatalf("unexpected token response %+v", token)
	}
	if subject, ok := api.tokens.Verify(token.AccessToken); !ok || subject != "alice" {
		t.Fatalf("token subject = %q, %v", subject, ok)
	}

	rec = api.do(t, http.MethodGet, "/api/v1/auth/me", token.AccessToken, nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("me: status %d", rec.Code)
	}
	var me types.User
	decodeBody(t, rec, &me)
	if me.ID != user.ID {
		t.Fatalf("me = %+v, want %+v", me, user)
	}
}

func TestRegisterDuplicates(t *testing.T) {
	api := newTestAPI(t, nil)
	api.login(t, "alice")

	rec := api.do(t, http.MethodPost, "/api/v1/auth/register", "", map[string]string{
		"username": "alice",
		"email":    "other@example.com",
		"password": "password123",
	})
	if rec.Code != http.StatusBadRequest || errorMessage(t, rec) != "Username already exists" {
		t.Fatalf("duplicate username: status %d", rec.Code)
	}

	rec = api.do(t, http.MethodPost, "/api/v1/auth/register", "", map[string]string{
		"username": "bob",
		"email":    "alice@example.com",
		"password": "password123",
	})
	if rec.Code != http.StatusBadRequest || errorMessage(t, rec) != "Email already exists" {
		t.Fatalf("duplicate email: status %d", rec.Code)
	}
}

func TestRegisterValidation(t *testing.T) {
	api := newTestAPI(t, nil)

	tests := map[string]struct {
		body any
		want string
	}{
		"malformed json": {body: "{", want: "invalid request"},
		"short username": {
			body: map[string]string{"username": "al", "email": "al@example.com", "password": "pw"},
			want: "field username must be at least 3 characters",
		},
		"bad email": {
			body: map[string]string{"username": "alice", "email": "nope", "password": "pw"},
			want: "field email must be a valid email address",
		},
		"missing password": {
			body: map[string]string{"username": "alice", "email": "alice@example.com"},
			want: "field password is required",
		},
		"multibyte password over 72 bytes": {
			body: map[string]string{"username": "alice", "email": "alice@example.com", "password": strings.Repeat("é", 40)},
			want: "field password must be at most 72 bytes",
		},
	}
	for name, tt := range tests {
		t.Run(name, func(t *testing.T) {
			rec := api.do(t, http.MethodPost, "/api/v1/auth/register", "", tt.body)
			if rec.Code != http.StatusBadRequest {
				t.Fatalf("status %d", rec.Code)
			}
			if got := errorMessage(t, rec); got != tt.want {
				t.Fatalf("error = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestRegisterPasswordAtByteLimit(t *testing.T) {
	api := newTestAPI(t, nil)

	password := strings.Repeat("é", 36)
	rec := api.do(t, http.MethodPost, "/api/v1/auth/register", "", map[string]string{
		"username": "alice",
		"email":    "alice@example.com",
		"password": password,
	})
	if rec.Code != http.StatusCreated {
		t.Fatalf("register status %d: %s", rec.Code, rec.Body.String())
	}

	rec = api.do(t, http.MethodPost, "/api/v1/auth/login", "", map[string]string{
		"username": "alice",
		"password": password,
	})
	if rec.Code != http.StatusOK {
		t.Fatalf("login status %d: %s", rec.Code, rec.Body.String())
	}
}

func TestProtectedRouteRejections(t *testing.T) {
	api := newTestAPI(t, nil)
	token := api.login(t, "alice")

	expired, err := api.tokens.Issue("alice", -time.Minute)
	if err != nil {
		t.Fatalf("issue expired token: %v", err)
	}
	unknown, err := api.tokens.Issue("ghost", time.Minute)
	if err != nil {
		t.Fatalf("issue token: %v", err)
	}

	tests := []struct {
		name   string
		header string
		status int
	}{
		{name: "no header", header: "", status: http.StatusUnauthorized},
		{name: "wrong scheme", header: "Basic " + token, status: http.StatusUnauthorized},
		{name: "garbage token", header: "Bearer not-a-token", status: http.StatusUnauthorized},
		{name: "expired token", header: "Bearer " + expired, status: http.StatusUnauthorized},
		{name: "unknown subject", header: "Bearer " + unknown, status: http.StatusUnauthorized},
		{name: "valid token", header: "Bearer " + token, status: http.StatusOK},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req, _ := http.NewRequest(http.MethodGet, "/api/v1/students", nil)
			if tt.header != "" {
				req.Header.Set("Authorization", tt.header)
			}
			rec := httptest.NewRecorder()
			api.router.ServeHTTP(rec, req)

			if rec.Code != tt.status {
				t.Fatalf("status %d, want %d (body %s)", rec.Code, tt.status, rec.Body.String())
			}
			if tt.status == http.StatusUnauthorized {
				if rec.Header().Get("WWW-Authenticate") != "Bearer" {
					t.Fatalf("expected WWW-Authenticate header")
				}
				if got := errorMessage(t, rec); got != "Could not validate credentials" {
					t.Fatalf("error = %q", got)
				}
			}
		})
	}
}

func TestInactiveUserRejected(t *testing.T) {
	api := newTestAPI(t, nil)
	token := api.login(t, "alice")
	deactivate(t, api.store, "alice")

	rec := api.do(t, http.MethodGet, "/api/v1/students", token, nil)
	if rec.Code != http.StatusBadRequest {
		t.Fatalf("status %d, want 400", rec.Code)
	}
	if got := errorMessage(t, rec); got != "Inactive user" {
		t.Fatalf("error = %q", got)
	}
}

type stubUsers struct {
	user types.User
	ok   bool
	err  error
}

func (s stubUsers) FindByUsername(context.Context, string) (types.User, bool, error) {
	return s.user, s.ok, s.err
}

type stubTokens struct{}

func (stubTokens) Verify(token string) (string, bool) {
	return token, token != ""
}

func TestGateAuthenticate(t *testing.T) {
	boom := errors.New("store down")
	active := types.User{Username: "alice", IsActive: true}

	tests := []struct {
		name   string
		users  stubUsers
		header string
		want   error
	}{
		{name: "missing header", users: stubUsers{user: active, ok: true}, header: "", want: ErrUnauthorized},
		{name: "scheme only", users: stubUsers{user: active, ok: true}, header: "Bearer ", want: ErrUnauthorized},
		{name: "unknown user", users: stubUsers{}, header: "Bearer alice", want: ErrUnauthorized},
		{name: "inactive user", users: stubUsers{user: types.User{Username: "alice"}, ok: true}, header: "Bearer alice", want: ErrInactiveUser},
		{name: "store failure", users: stubUsers{err: boom}, header: "Bearer alice", want: boom},
		{name: "active user", users: stubUsers{user: active, ok: true}, header: "bearer alice", want: nil},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			gate := NewGate(tt.users, stubTokens{}, nil)
			user, err := gate.Authenticate(context.Background(), tt.header)
			if !errors.Is(err, tt.want) {
				t.Fatalf("err = %v, want %v", err, tt.want)
			}
			if tt.want == nil && user.Username != "alice" {
				t.Fatalf("unexpected user %+v", user)
			}
		})
	}
}
