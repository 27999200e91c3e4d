package usecase

import (
	"context"
	"errors"
	"strings"

	"go-vaccination-booking/internal/converter"
	"go-vaccination-booking/internal/delivery/dto"
	"go-vaccination-booking/internal/domain/entity"
	"go-vaccination-booking/internal/domain/repository"
	"go-vaccination-booking/internal/service"
	"go-vaccination-booking/pkg/apperror"
	"go-vaccination-booking/pkg/jwt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/sirupsen/logrus"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"
)

var (
	ErrEmailAlreadyExists = apperror.Conflict("email already exists")
	ErrInvalidCredentials = apperror.Unauthorized("invalid email or password")
	ErrInvalidToken       = apperror.Unauthorized("invalid or expired token")
	ErrTokenRevoked       = apperror.Unauthorized("token has been revoked")
	ErrAccountDisabled    = apperror.Forbidden("account is disabled")
	ErrUserNotFound       = apperror.NotFound("user not found")
)

type AuthUsecase interface {
	RegisterParent(ctx context.Context, req *dto.RegisterParentRequest) (*dto.UserResponse, error)
	CreateDoctor(ctx context.Context, actor entity.Actor, req *dto.CreateDoctorRequest) (*dto.UserResponse, error)
	CreateAdmin(ctx context.Context, email, password, fullName string) (*dto.UserResponse, error)
	Login(ctx context.Context, req *dto.LoginRequest) (*dto.TokenResponse, error)
	Logout(ctx context.Context, userID uuid.UUID, accessTokenID, refreshToken string) error
	RefreshToken(ctx context.Context, req *dto.RefreshTokenRequest) (*dto.TokenResponse, error)
	GetCurrentUser(ctx context.Context, userID uuid.UUID) (*dto.UserResponse, error)
	GetDoctors(ctx context.Context) (*dto.DoctorListResponse, error)
}

type authUsecase struct {
	db           *gorm.DB
	log          *logrus.Logger
	userRepo     repository.UserRepository
	auditService service.AuditService
	jwtService   *jwt.JWTService
	tokenStore   service.TokenStore
}

func NewAuthUsecase(
	db *gorm.DB,
	log *logrus.Logger,
	userRepo repository.UserRepository,
	auditService service.AuditService,
	jwtService *jwt.JWTService,
	tokenStore service.TokenStore,
) AuthUsecase {
	return &authUsecase{
		db:           db,
		log:          log,
		userRepo:     userRepo,
		auditService: auditService,
		jwtService:   jwtService,
		tokenStore:   tokenStore,
	}
}

func (u *authUsecase) RegisterParent(ctx context.Context, req *dto.RegisterParentRequest) (*dto.UserResponse, error) {
	user := &entity.User{
		Role:     entity.RoleParent,
		Email:    strings.ToLower(req.Email),
		FullName: req.FullName,
		Phone:    req.Phone,
		IsActive: true,
	}

	if err := u.createUser(ctx, entity.Actor{Role: entity.RoleParent}, user, req.Password, entity.AuditActionUserRegister); err != nil {
		return nil, err
	}

	return converter.UserToResponse(user), nil
}

// CreateDoctor lets an admin open a doctor account
func (u *authUsecase) CreateDoctor(ctx context.Context, actor entity.Actor, req *dto.CreateDoctorRequest) (*dto.UserResponse, error) {
	if !actor.IsAdmin() {
		return nil, ErrAdminOnly
	}

	user := &entity.User{
		Role:      entity.RoleDoctor,
		Email:     strings.ToLower(req.Email),
		FullName:  req.FullName,
		Phone:     req.Phone,
		Specialty: req.Specialty,
		IsActive:  true,
	}

	if err := u.createUser(ctx, actor, user, req.Password, entity.AuditActionDoctorCreate); err != nil {
		return nil, err
	}

	return converter.UserToResponse(user), nil
}

// CreateAdmin bootstraps an administrator account from the command line
func (u *authUsecase) CreateAdmin(ctx context.Context, email, password, fullName string) (*dto.UserResponse, error) {
	user := &entity.User{
		Role:     entity.RoleAdmin,
		Email:    strings.ToLower(email),
		FullName: fullName,
		IsActive: true,
	}

	if err := u.createUser(ctx, entity.SystemActor(), user, password, entity.AuditActionUserRegister); err != nil {
		return nil, err
	}

	return converter.UserToResponse(user), nil
}

func (u *authUsecase) createUser(ctx context.Context, actor entity.Actor, user *entity.User, password, action string) error {
	hashedPassword, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		u.log.Warnf("Failed to hash password: %+v", err)
		return err
	}
	user.Password = string(hashedPassword)

	tx := u.db.WithContext(ctx).Begin()
	defer tx.Rollback()

	existing, err := u.userRepo.FindByEmail(tx, user.Email)
	if err != nil {
		u.log.Warnf("Failed to find user by email: %+v", err)
		return err
	}
	if existing != nil {
		return ErrEmailAlreadyExists
	}

	if err := u.userRepo.Create(tx, user); err != nil {
		if isDuplicateKeyError(err, "email") {
			return ErrEmailAlreadyExists
		}
		u.log.Warnf("Failed to create user: %+v", err)
		return err
	}

	if actor.ID == uuid.Nil {
		actor.ID = user.ID
	}
	if err := u.auditService.LogCreate(ctx, tx, actor, action, "user", user.ID.String(), entity.JSON{
		"email": user.Email,
		"role":  string(user.Role),
	}); err != nil {
		return err
	}

	if err := tx.Commit().Error; err != nil {
		u.log.Warnf("Failed commit transaction: %+v", err)
		return err
	}

	return nil
}

func (u *authUsecase) Login(ctx context.Context, req *dto.LoginRequest) (*dto.TokenResponse, error) {
	user, err := u.userRepo.FindByEmail(u.db.WithContext(ctx), strings.ToLower(req.Email))
	if err != nil {
		u.log.Warnf("Failed to find user by email: %+v", err)
		return nil, err
	}
	if user == nil {
		return nil, ErrInvalidCredentials
	}

	if err := bcrypt.CompareHashAndPassword([]byte(user.Password), []byte(req.Password)); err != nil {
		return nil, ErrInvalidCredentials
	}
	if !user.IsActive {
		return nil, ErrAccountDisabled
	}

	response, err := u.issueTokens(ctx, user.ID, user.Email, user.Role)
	if err != nil {
		return nil, err
	}
	response.User = converter.UserToResponse(user)

	return response, nil
}

// Logout revokes the current access token and, when given, the refresh
// token of the session
func (u *authUsecase) Logout(ctx context.Context, userID uuid.UUID, accessTokenID, refreshToken string) error {
	if err := u.tokenStore.Revoke(ctx, service.TokenKindAccess, userID, accessTokenID); err != nil {
		u.log.Warnf("Failed to revoke access token: %+v", err)
		return err
	}

	if refreshToken == "" {
		return nil
	}

	claims, err := u.jwtService.ValidateToken(refreshToken)
	if err != nil || claims.TokenType != jwt.RefreshToken || claims.UserID != userID {
		return nil
	}

	if err := u.tokenStore.Revoke(ctx, service.TokenKindRefresh, userID, claims.TokenID); err != nil {
		u.log.Warnf("Failed to revoke refresh token: %+v", err)
		return err
	}

	return nil
}

// RefreshToken rotates the session: the presented refresh token is revoked
// and a new pair is issued
func (u *authUsecase) RefreshToken(ctx context.Context, req *dto.RefreshTokenRequest) (*dto.TokenResponse, error) {
	claims, err := u.jwtService.ValidateToken(req.RefreshToken)
	if err != nil {
		return nil, ErrInvalidToken
	}
	if claims.TokenType != jwt.RefreshToken {
		return nil, ErrInvalidToken
	}

	exists, err := u.tokenStore.Exists(ctx, service.TokenKindRefresh, claims.UserID, claims.TokenID)
	if err != nil {
		u.log.Warnf("Failed to check refresh token: %+v", err)
		return nil, err
	}
	if !exists {
		return nil, ErrTokenRevoked
	}

	user, err := u.userRepo.FindByID(u.db.WithContext(ctx), claims.UserID)
	if err != nil {
		u.log.Warnf("Failed to find user by ID: %+v", err)
		return nil, err
	}
	if user == nil {
		return nil, ErrUserNotFound
	}
	if !user.IsActive {
		return nil, ErrAccountDisabled
	}

	if err := u.tokenStore.Revoke(ctx, service.TokenKindRefresh, claims.UserID, claims.TokenID); err != nil {
		u.log.Warnf("Failed to delete old refresh token: %+v", err)
		return nil, err
	}

	return u.issueTokens(ctx, user.ID, user.Email, user.Role)
}

func (u *authUsecase) issueTokens(ctx context.Context, userID uuid.UUID, email string, role entity.Role) (*dto.TokenResponse, error) {
	accessToken, accessTokenID, err := u.jwtService.GenerateAccessToken(userID, email, string(role))
	if err != nil {
		u.log.Warnf("Failed to generate access token: %+v", err)
		return nil, err
	}

	refreshToken, refreshTokenID, err := u.jwtService.GenerateRefreshToken(userID, email, string(role))
	if err != nil {
		u.log.Warnf("Failed to generate refresh token: %+v", err)
		return nil, err
	}

	if err := u.tokenStore.Save(ctx, service.TokenKindAccess, userID, accessTokenID, u.jwtService.GetAccessExpiry()); err != nil {
		u.log.Warnf("Failed to store access token: %+v", err)
		return nil, err
	}

	if err := u.tokenStore.Save(ctx, service.TokenKindRefresh, userID, refreshTokenID, u.jwtService.GetRefreshExpiry()); err != nil {
		u.log.Warnf("Failed to store refresh token: %+v", err)
		return nil, err
	}

	return &dto.TokenResponse{
		AccessToken:  accessToken,
		RefreshToken: refreshToken,
		ExpiresIn:    int64(u.jwtService.GetAccessExpiry().Seconds()),
	}, nil
}

func (u *authUsecase) GetCurrentUser(ctx context.Context, userID uuid.UUID) (*dto.UserResponse, error) {
	user, err := u.userRepo.FindByID(u.db.WithContext(ctx), userID)
	if err != nil {
		u.log.Warnf("Failed to find user by ID: %+v", err)
		return nil, err
	}
	if user == nil {
		return nil, ErrUserNotFound
	}

	return converter.UserToResponse(user), nil
}

func (u *authUsecase) GetDoctors(ctx context.Context) (*dto.DoctorListResponse, error) {
	doctors, err := u.userRepo.FindActiveByRole(u.db.WithContext(ctx), entity.RoleDoctor)
	if err != nil {
		u.log.Warnf("Failed to find doctors: %+v", err)
		return nil, err
	}

	return &dto.DoctorListResponse{
		Doctors: converter.DoctorsToResponses(doctors),
		Total:   len(doctors),
	}, nil
}

// isDuplicateKeyError checks if the error is a PostgreSQL unique constraint violation
// containing the specified constraint name
func isDuplicateKeyError(err error, constraintName string) bool {
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		// PostgreSQL error code 23505 = unique_violation
		if pgErr.Code == "23505" && strings.Contains(strings.ToLower(pgErr.ConstraintName), strings.ToLower(constraintName)) {
			return true
		}
	}
	return false
}
