package usecase

import (
	"context"
	"sync"
	"testing"
	"time"

	"go-vaccination-booking/config"
	"go-vaccination-booking/internal/delivery/dto"
	"go-vaccination-booking/internal/domain/entity"
	"go-vaccination-booking/internal/repository"
	"go-vaccination-booking/internal/service"
	"go-vaccination-booking/internal/testutil"
	"go-vaccination-booking/pkg/apperror"
	"go-vaccination-booking/pkg/jwt"

	"github.com/google/uuid"
)

type memoryTokenStore struct {
	mu     sync.Mutex
	tokens map[string]struct{}
}

func newMemoryTokenStore() *memoryTokenStore {
	return &memoryTokenStore{tokens: make(map[string]struct{})}
}

func (s *memoryTokenStore) key(kind service.TokenKind, userID uuid.UUID, tokenID string) string {
	return string(kind) + ":" + userID.String() + ":" + tokenID
}

func (s *memoryTokenStore) Save(ctx context.Context, kind service.TokenKind, userID uuid.UUID, tokenID string, ttl time.Duration) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.tokens[s.key(kind, userID, tokenID)] = struct{}{}
	return nil
}

func (s *memoryTokenStore) Exists(ctx context.Context, kind service.TokenKind, userID uuid.UUID, tokenID string) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	_, ok := s.tokens[s.key(kind, userID, tokenID)]
	return ok, nil
}

func (s *memoryTokenStore) Revoke(ctx context.Context, kind service.TokenKind, userID uuid.UUID, tokenID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.tokens, s.key(kind, userID, tokenID))
	return nil
}

func newAuthUsecase(t *testing.T) (AuthUsecase, *jwt.JWTService, *memoryTokenStore) {
	t.Helper()

	db := testutil.NewDB(t)
	log := testutil.NewLogger()
	jwtService := jwt.NewJWTService(config.JWTConfig{
		Secret:        "test-secret",
		AccessExpiry:  15 * time.Minute,
		RefreshExpiry: time.Hour,
	})
	tokens := newMemoryTokenStore()
	auditService := service.NewAuditService(log, repository.NewAuditLogRepository())

	return NewAuthUsecase(db, log, repository.NewUserRepository(), auditService, jwtService, tokens), jwtService, tokens
}

func TestRegisterAndLogin(t *testing.T) {
	uc, jwtService, tokens := newAuthUsecase(t)
	ctx := context.Background()

	user, err := uc.RegisterParent(ctx, &dto.RegisterParentRequest{
		Email:    "Parent@Example.com",
		Password: "secret123",
		FullName: "Sari",
	})
	if err != nil {
		t.Fatalf("RegisterParent() error = %v", err)
	}
	if user.Email != "parent@example.com" || user.Role != string(entity.RoleParent) {
		t.Errorf("user = %+v", user)
	}

	if _, err := uc.RegisterParent(ctx, &dto.RegisterParentRequest{Email: "parent@example.com", Password: "secret123", FullName: "Sari"}); err != ErrEmailAlreadyExists {
		t.Errorf("duplicate RegisterParent() error = %v, want %v", err, ErrEmailAlreadyExists)
	}

	if _, err := uc.Login(ctx, &dto.LoginRequest{Email: "parent@example.com", Password: "wrong"}); err != ErrInvalidCredentials {
		t.Errorf("wrong password error = %v, want %v", err, ErrInvalidCredentials)
	}
	if _, err := uc.Login(ctx, &dto.LoginRequest{Email: "nobody@example.com", Password: "secret123"}); err != ErrInvalidCredentials {
		t.Errorf("unknown email error = %v, want %v", err, ErrInvalidCredentials)
	}

	tokensResp, err := uc.Login(ctx, &dto.LoginRequest{Email: "PARENT@example.com", Password: "secret123"})
	if err != nil {
		t.Fatalf("Login() error = %v", err)
	}
	if tokensResp.User == nil || tokensResp.User.ID != user.ID {
		t.Errorf("login user = %+v", tokensResp.User)
	}

	claims, err := jwtService.ValidateToken(tokensResp.AccessToken)
	if err != nil {
		t.Fatalf("ValidateToken() error = %v", err)
	}
	if claims.Role != string(entity.RoleParent) {
		t.Errorf("Role claim = %s", claims.Role)
	}
	if ok, _ := tokens.Exists(ctx, service.TokenKindAccess, user.ID, claims.TokenID); !ok {
		t.Errorf("access token not registered")
	}
}

func TestRefreshTokenRotation(t *testing.T) {
	uc, jwtService, tokens := newAuthUsecase(t)
	ctx := context.Background()

	if _, err := uc.RegisterParent(ctx, &dto.RegisterParentRequest{Email: "p@example.com", Password: "secret123", FullName: "Sari"}); err != nil {
		t.Fatalf("RegisterParent() error = %v", err)
	}
	login, err := uc.Login(ctx, &dto.LoginRequest{Email: "p@example.com", Password: "secret123"})
	if err != nil {
		t.Fatalf("Login() error = %v", err)
	}

	if _, err := uc.RefreshToken(ctx, &dto.RefreshTokenRequest{RefreshToken: login.AccessToken}); err != ErrInvalidToken {
		t.Errorf("refresh with access token error = %v, want %v", err, ErrInvalidToken)
	}

	rotated, err := uc.RefreshToken(ctx, &dto.RefreshTokenRequest{RefreshToken: login.RefreshToken})
	if err != nil {
		t.Fatalf("RefreshToken() error = %v", err)
	}
	if rotated.RefreshToken == login.RefreshToken {
		t.Errorf("refresh token was not rotated")
	}

	if _, err := uc.RefreshToken(ctx, &dto.RefreshTokenRequest{RefreshToken: login.RefreshToken}); err != ErrTokenRevoked {
		t.Errorf("reused refresh token error = %v, want %v", err, ErrTokenRevoked)
	}

	access, err := jwtService.ValidateToken(rotated.AccessToken)
	if err != nil {
		t.Fatalf("ValidateToken() error = %v", err)
	}
	if err := uc.Logout(ctx, access.UserID, access.TokenID, rotated.RefreshToken); err != nil {
		t.Fatalf("Logout() error = %v", err)
	}
	if ok, _ := tokens.Exists(ctx, service.TokenKindAccess, access.UserID, access.TokenID); ok {
		t.Errorf("access token still registered after logout")
	}
	if _, err := uc.RefreshToken(ctx, &dto.RefreshTokenRequest{RefreshToken: rotated.RefreshToken}); !apperror.Is(err, apperror.KindUnauthorized) {
		t.Errorf("refresh after logout error = %v, want unauthorized", err)
	}
}

func TestCreateDoctorRequiresAdmin(t *testing.T) {
	uc, _, _ := newAuthUsecase(t)
	ctx := context.Background()

	req := &dto.CreateDoctorRequest{Email: "dr@example.com", Password: "secret123", FullName: "Dr. Rina", Specialty: "Pediatrics"}
	if _, err := uc.CreateDoctor(ctx, entity.Actor{ID: uuid.New(), Role: entity.RoleParent}, req); err != ErrAdminOnly {
		t.Fatalf("parent CreateDoctor() error = %v, want %v", err, ErrAdminOnly)
	}

	admin, err := uc.CreateAdmin(ctx, "admin@example.com", "secret123", "Admin")
	if err != nil {
		t.Fatalf("CreateAdmin() error = %v", err)
	}
	doctor, err := uc.CreateDoctor(ctx, entity.Actor{ID: admin.ID, Role: entity.RoleAdmin}, req)
	if err != nil {
		t.Fatalf("CreateDoctor() error = %v", err)
	}
	if doctor.Specialty != "Pediatrics" {
		t.Errorf("Specialty = %q", doctor.Specialty)
	}

	doctors, err := uc.GetDoctors(ctx)
	if err != nil {
		t.Fatalf("GetDoctors() error = %v", err)
	}
	if doctors.Total != 1 || doctors.Doctors[0].ID != doctor.ID {
		t.Errorf("doctors = %+v", doctors.Doctors)
	}
}
