package handler

import (
	"encoding/json"
	"net/http"

	"go-vaccination-booking/internal/delivery/dto"
	"go-vaccination-booking/internal/delivery/http/middleware"
	"go-vaccination-booking/internal/usecase"
	"go-vaccination-booking/pkg/response"
	"go-vaccination-booking/pkg/validator"
)

type AuthHandler struct {
	authUsecase usecase.AuthUsecase
	validator   *validator.CustomValidator
}

func NewAuthHandler(authUsecase usecase.AuthUsecase, validator *validator.CustomValidator) *AuthHandler {
	return &AuthHandler{
		authUsecase: authUsecase,
		validator:   validator,
	}
}

// Register handles parent self-registration
// @Summary Register a parent account
// @Tags Auth
// @Accept json
// @Produce json
// @Param request body dto.RegisterParentRequest true "Register Request"
// @Success 201 {object} response.Response
// @Failure 400 {object} response.Response
// @Router /auth/register [post]
func (h *AuthHandler) Register(w http.ResponseWriter, r *http.Request) {
	var req dto.RegisterParentRequest
	if !decodeRequest(w, r, h.validator, &req) {
		return
	}

	user, err := h.authUsecase.RegisterParent(r.Context(), &req)
	if err != nil {
		response.FromError(w, err, "Failed to register user")
		return
	}

	response.Success(w, http.StatusCreated, "User registered successfully", user)
}

// Login handles user login
// @Summary Login user
// @Description Login with email and password
// @Tags Auth
// @Accept json
// @Produce json
// @Param request body dto.LoginRequest true "Login Request"
// @Success 200 {object} response.Response
// @Failure 400 {object} response.Response
// @Failure 401 {object} response.Response
// @Router /auth/login [post]
func (h *AuthHandler) Login(w http.ResponseWriter, r *http.Request) {
	var req dto.LoginRequest
	if !decodeRequest(w, r, h.validator, &req) {
		return
	}

	tokens, err := h.authUsecase.Login(r.Context(), &req)
	if err != nil {
		response.FromError(w, err, "Failed to login")
		return
	}

	response.Success(w, http.StatusOK, "Login successful", tokens)
}

// Logout handles user logout
// @Summary Logout user
// @Description Logout and revoke tokens
// @Tags Auth
// @Security BearerAuth
// @Produce json
// @Success 200 {object} response.Response
// @Failure 401 {object} response.Response
// @Router /auth/logout [post]
func (h *AuthHandler) Logout(w http.ResponseWriter, r *http.Request) {
	userID, ok := middleware.GetUserIDFromContext(r.Context())
	if !ok {
		response.Unauthorized(w, "Invalid token")
		return
	}
	tokenID, ok := middleware.GetTokenIDFromContext(r.Context())
	if !ok {
		response.Unauthorized(w, "Invalid token")
		return
	}

	// Refresh token in the body is optional
	var req dto.LogoutRequest
	_ = json.NewDecoder(r.Body).Decode(&req)

	if err := h.authUsecase.Logout(r.Context(), userID, tokenID, req.RefreshToken); err != nil {
		response.FromError(w, err, "Failed to logout")
		return
	}

	response.Success(w, http.StatusOK, "Logout successful", nil)
}

// RefreshToken handles token refresh
// @Summary Refresh access token
// @Description Get new access token using refresh token
// @Tags Auth
// @Accept json
// @Produce json
// @Param request body dto.RefreshTokenRequest true "Refresh Token Request"
// @Success 200 {object} response.Response
// @Failure 400 {object} response.Response
// @Failure 401 {object} response.Response
// @Router /auth/refresh-token [post]
func (h *AuthHandler) RefreshToken(w http.ResponseWriter, r *http.Request) {
	var req dto.RefreshTokenRequest
	if !decodeRequest(w, r, h.validator, &req) {
		return
	}

	tokens, err := h.authUsecase.RefreshToken(r.Context(), &req)
	if err != nil {
		response.FromError(w, err, "Failed to refresh token")
		return
	}

	response.Success(w, http.StatusOK, "Token refreshed successfully", tokens)
}

// GetCurrentUser handles getting current user info
// @Summary Get current user
// @Tags Auth
// @Security BearerAuth
// @Produce json
// @Success 200 {object} response.Response
// @Failure 401 {object} response.Response
// @Router /auth/me [get]
func (h *AuthHandler) GetCurrentUser(w http.ResponseWriter, r *http.Request) {
	userID, ok := middleware.GetUserIDFromContext(r.Context())
	if !ok {
		response.Unauthorized(w, "Invalid token")
		return
	}

	user, err := h.authUsecase.GetCurrentUser(r.Context(), userID)
	if err != nil {
		response.FromError(w, err, "Failed to get user info")
		return
	}

	response.Success(w, http.StatusOK, "User retrieved successfully", user)
}
