package middleware

import (
	"context"
	"net/http"
	"strings"

	"go-vaccination-booking/internal/domain/entity"
	"go-vaccination-booking/internal/service"
	"go-vaccination-booking/pkg/jwt"
	"go-vaccination-booking/pkg/response"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
)

type contextKey string

const (
	UserIDKey    contextKey = "user_id"
	UserEmailKey contextKey = "user_email"
	ActorKey     contextKey = "actor"
	TokenIDKey   contextKey = "token_id"
)

type AuthMiddleware struct {
	jwtService *jwt.JWTService
	tokenStore service.TokenStore
	log        *logrus.Logger
}

func NewAuthMiddleware(jwtService *jwt.JWTService, tokenStore service.TokenStore, log *logrus.Logger) *AuthMiddleware {
	return &AuthMiddleware{
		jwtService: jwtService,
		tokenStore: tokenStore,
		log:        log,
	}
}

func (m *AuthMiddleware) Authenticate(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		authHeader := r.Header.Get("Authorization")
		if authHeader == "" {
			response.Unauthorized(w, "Authorization header is required")
			return
		}

		// Extract token from "Bearer <token>"
		parts := strings.Split(authHeader, " ")
		if len(parts) != 2 || parts[0] != "Bearer" {
			response.Unauthorized(w, "Invalid authorization header format")
			return
		}

		claims, err := m.jwtService.ValidateToken(parts[1])
		if err != nil {
			response.Unauthorized(w, "Invalid or expired token")
			return
		}

		if claims.TokenType != jwt.AccessToken {
			response.Unauthorized(w, "Invalid token type")
			return
		}

		role := entity.Role(claims.Role)
		if !role.IsValid() {
			response.Unauthorized(w, "Invalid token role")
			return
		}

		// Token must still be registered (not logged out or rotated away)
		exists, err := m.tokenStore.Exists(r.Context(), service.TokenKindAccess, claims.UserID, claims.TokenID)
		if err != nil {
			m.log.Warnf("Failed to check access token: %+v", err)
			response.InternalServerError(w, "Failed to validate token")
			return
		}
		if !exists {
			response.Unauthorized(w, "Token has been revoked")
			return
		}

		ctx := context.WithValue(r.Context(), UserIDKey, claims.UserID)
		ctx = context.WithValue(ctx, UserEmailKey, claims.Email)
		ctx = context.WithValue(ctx, ActorKey, entity.Actor{ID: claims.UserID, Role: role})
		ctx = context.WithValue(ctx, TokenIDKey, claims.TokenID)

		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

// GetUserIDFromContext extracts user ID from context
func GetUserIDFromContext(ctx context.Context) (uuid.UUID, bool) {
	userID, ok := ctx.Value(UserIDKey).(uuid.UUID)
	return userID, ok
}

// GetUserEmailFromContext extracts user email from context
func GetUserEmailFromContext(ctx context.Context) (string, bool) {
	email, ok := ctx.Value(UserEmailKey).(string)
	return email, ok
}

// GetTokenIDFromContext extracts token ID from context
func GetTokenIDFromContext(ctx context.Context) (string, bool) {
	tokenID, ok := ctx.Value(TokenIDKey).(string)
	return tokenID, ok
}

// GetActorFromContext extracts the authenticated actor from context
func GetActorFromContext(ctx context.Context) (entity.Actor, bool) {
	actor, ok := ctx.Value(ActorKey).(entity.Actor)
	return actor, ok
}

// WithActor stores an actor in ctx the way Authenticate does
func WithActor(ctx context.Context, actor entity.Actor) context.Context {
	ctx = context.WithValue(ctx, UserIDKey, actor.ID)
	return context.WithValue(ctx, ActorKey, actor)
}
