package middleware

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"go-vaccination-booking/config"
	"go-vaccination-booking/internal/domain/entity"
	"go-vaccination-booking/internal/service"
	"go-vaccination-booking/internal/testutil"
	"go-vaccination-booking/pkg/jwt"

	"github.com/google/uuid"
)

type stubTokenStore struct {
	registered map[string]bool
}

func (s *stubTokenStore) Save(ctx context.Context, kind service.TokenKind, userID uuid.UUID, tokenID string, ttl time.Duration) error {
	s.registered[tokenID] = true
	return nil
}

func (s *stubTokenStore) Exists(ctx context.Context, kind service.TokenKind, userID uuid.UUID, tokenID string) (bool, error) {
	return s.registered[tokenID], nil
}

func (s *stubTokenStore) Revoke(ctx context.Context, kind service.TokenKind, userID uuid.UUID, tokenID string) error {
	delete(s.registered, tokenID)
	return nil
}

func actorEcho(t *testing.T, want *entity.Actor) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		actor, ok := GetActorFromContext(r.Context())
		if !ok {
			t.Errorf("actor missing from context")
		} else if want != nil && actor != *want {
			t.Errorf("actor = %+v, want %+v", actor, *want)
		}
		w.WriteHeader(http.StatusNoContent)
	})
}

func TestAuthenticate(t *testing.T) {
	jwtService := jwt.NewJWTService(config.JWTConfig{Secret: "test-secret", AccessExpiry: time.Minute, RefreshExpiry: time.Hour})
	store := &stubTokenStore{registered: make(map[string]bool)}
	m := NewAuthMiddleware(jwtService, store, testutil.NewLogger())

	userID := uuid.New()
	access, accessID, err := jwtService.GenerateAccessToken(userID, "p@example.com", string(entity.RoleParent))
	if err != nil {
		t.Fatalf("GenerateAccessToken() error = %v", err)
	}
	refresh, refreshID, err := jwtService.GenerateRefreshToken(userID, "p@example.com", string(entity.RoleParent))
	if err != nil {
		t.Fatalf("GenerateRefreshToken() error = %v", err)
	}
	revoked, _, err := jwtService.GenerateAccessToken(userID, "p@example.com", string(entity.RoleParent))
	if err != nil {
		t.Fatalf("GenerateAccessToken() error = %v", err)
	}
	badRole, badRoleID, err := jwtService.GenerateAccessToken(userID, "p@example.com", "superuser")
	if err != nil {
		t.Fatalf("GenerateAccessToken() error = %v", err)
	}
	store.registered[accessID] = true
	store.registered[refreshID] = true
	store.registered[badRoleID] = true

	want := entity.Actor{ID: userID, Role: entity.RoleParent}

	tests := []struct {
		name   string
		header string
		status int
	}{
		{name: "valid", header: "Bearer " + access, status: http.StatusNoContent},
		{name: "missing header", header: "", status: http.StatusUnauthorized},
		{name: "wrong scheme", header: "Token " + access, status: http.StatusUnauthorized},
		{name: "garbage", header: "Bearer not-a-jwt", status: http.StatusUnauthorized},
		{name: "refresh token", header: "Bearer " + refresh, status: http.StatusUnauthorized},
		{name: "revoked", header: "Bearer " + revoked, status: http.StatusUnauthorized},
		{name: "unknown role", header: "Bearer " + badRole, status: http.StatusUnauthorized},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodGet, "/", nil)
			if tt.header != "" {
				req.Header.Set("Authorization", tt.header)
			}
			rec := httptest.NewRecorder()
			m.Authenticate(actorEcho(t, &want)).ServeHTTP(rec, req)
			if rec.Code != tt.status {
				t.Errorf("status = %d, want %d", rec.Code, tt.status)
			}
		})
	}
}

func TestRequireRole(t *testing.T) {
	tests := []struct {
		name   string
		actor  *entity.Actor
		status int
	}{
		{name: "admin allowed", actor: &entity.Actor{ID: uuid.New(), Role: entity.RoleAdmin}, status: http.StatusNoContent},
		{name: "doctor allowed", actor: &entity.Actor{ID: uuid.New(), Role: entity.RoleDoctor}, status: http.StatusNoContent},
		{name: "parent forbidden", actor: &entity.Actor{ID: uuid.New(), Role: entity.RoleParent}, status: http.StatusForbidden},
		{name: "anonymous", status: http.StatusUnauthorized},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodGet, "/", nil)
			if tt.actor != nil {
				req = req.WithContext(WithActor(req.Context(), *tt.actor))
			}
			rec := httptest.NewRecorder()
			RequireStaff(actorEcho(t, tt.actor)).ServeHTTP(rec, req)
			if rec.Code != tt.status {
				t.Errorf("status = %d, want %d", rec.Code, tt.status)
			}
		})
	}
}

func TestRateLimiterPerClient(t *testing.T) {
	limiter := NewRateLimiter(60, 2, testutil.NewLogger())
	now := time.Date(2024, time.June, 15, 9, 0, 0, 0, time.UTC)
	limiter.now = func() time.Time { return now }

	ok := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) { w.WriteHeader(http.StatusNoContent) })
	handler := limiter.Limit(ok)

	first := entity.Actor{ID: uuid.New(), Role: entity.RoleParent}
	second := entity.Actor{ID: uuid.New(), Role: entity.RoleParent}

	call := func(actor entity.Actor) int {
		req := httptest.NewRequest(http.MethodPost, "/", nil)
		req = req.WithContext(WithActor(req.Context(), actor))
		rec := httptest.NewRecorder()
		handler.ServeHTTP(rec, req)
		return rec.Code
	}

	for i := 0; i < 2; i++ {
		if code := call(first); code != http.StatusNoContent {
			t.Fatalf("request %d status = %d, want burst to pass", i, code)
		}
	}
	if code := call(first); code != http.StatusTooManyRequests {
		t.Errorf("over burst status = %d, want %d", code, http.StatusTooManyRequests)
	}
	if code := call(second); code != http.StatusNoContent {
		t.Errorf("other client status = %d, want its own bucket", code)
	}

	now = now.Add(time.Second)
	if code := call(first); code != http.StatusNoContent {
		t.Errorf("status after refill = %d", code)
	}
}

func TestRateLimiterKeepsActiveClients(t *testing.T) {
	limiter := NewRateLimiter(60, 2, testutil.NewLogger())
	now := time.Date(2024, time.June, 15, 9, 0, 0, 0, time.UTC)
	limiter.now = func() time.Time { return now }

	first := limiter.getLimiter("user:a")
	if again := limiter.getLimiter("user:a"); again != first {
		t.Errorf("second lookup returned a fresh limiter")
	}
	if len(limiter.limiters) != 1 {
		t.Errorf("got %d limiters, want 1", len(limiter.limiters))
	}

	now = now.Add(11 * time.Minute)
	limiter.getLimiter("user:b")
	if _, ok := limiter.limiters["user:a"]; ok {
		t.Errorf("idle limiter was not swept")
	}
	if _, ok := limiter.limiters["user:b"]; !ok {
		t.Errorf("new limiter was swept on insert")
	}
}

func TestClientKey(t *testing.T) {
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.RemoteAddr = "10.0.0.7:5123"
	if got := clientKey(req); got != "ip:10.0.0.7" {
		t.Errorf("clientKey() = %q", got)
	}

	req.Header.Set("X-Forwarded-For", "203.0.113.9, 10.0.0.1")
	if got := clientKey(req); got != "ip:203.0.113.9" {
		t.Errorf("forwarded clientKey() = %q", got)
	}
}
