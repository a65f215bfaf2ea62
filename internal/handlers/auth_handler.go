package handlers

import (
	"errors"
	"net/http"

	"storefront_backend/internal/auth"
	"storefront_backend/internal/models"
	"storefront_backend/internal/repositories"
	"storefront_backend/pkg/apperrors"

	"github.com/gin-gonic/gin"
)

type LoginRequest struct {
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required"`
}

type LoginResponse struct {
	Token string       `json:"token"`
	User  *models.User `json:"user"`
}

// AuthHandler issues the bearer tokens the REST boundary and the
// websocket handshake authenticate with.
type AuthHandler struct {
	*BaseHandler
	userRepo repositories.UserRepository
}

func NewAuthHandler(base *BaseHandler, userRepo repositories.UserRepository) *AuthHandler {
	return &AuthHandler{
		BaseHandler: base,
		userRepo:    userRepo,
	}
}

// Login handles POST /auth/login.
func (h *AuthHandler) Login(c *gin.Context) {
	var req LoginRequest
	if !h.BindAndValidateJSON(c, &req) {
		return
	}

	user, err := h.userRepo.FindByEmail(req.Email)
	if err != nil {
		if errors.Is(err, repositories.ErrUserNotFound) {
			apperrors.HandleError(c, apperrors.NewUnauthorizedError("Invalid email or password"))
			return
		}
		apperrors.HandleError(c, err)
		return
	}

	if !user.IsActive {
		apperrors.HandleError(c, apperrors.NewForbiddenError("Account is deactivated"))
		return
	}

	if !auth.CheckPassword(user.Password, req.Password) {
		apperrors.HandleError(c, apperrors.NewUnauthorizedError("Invalid email or password"))
		return
	}

	token, err := auth.GenerateToken(user.ID, user.Role)
	if err != nil {
		apperrors.HandleError(c, apperrors.InternalError(err))
		return
	}

	h.RespondOK(c, LoginResponse{Token: token, User: user})
}

type CreateUserRequest struct {
	Email    string `json:"email" validate:"required,email"`
	Name     string `json:"name" validate:"required,max=100"`
	Password string `json:"password" validate:"required,min=8"`
	Role     string `json:"role" validate:"required"`
}

// CreateUser handles POST /users. Only full admins may provision panel
// accounts.
func (h *AuthHandler) CreateUser(c *gin.Context) {
	var req CreateUserRequest
	if !h.BindAndValidateJSON(c, &req) {
		return
	}

	if err := auth.ValidateRole(req.Role); err != nil {
		apperrors.HandleError(c, apperrors.NewBadRequestError("Role must be admin or manager"))
		return
	}

	if _, err := h.userRepo.FindByEmail(req.Email); err == nil {
		apperrors.HandleError(c, apperrors.ErrAlreadyExists(errors.New("email already registered")))
		return
	} else if !errors.Is(err, repositories.ErrUserNotFound) {
		apperrors.HandleError(c, err)
		return
	}

	hash, err := auth.HashPassword(req.Password)
	if err != nil {
		apperrors.HandleError(c, apperrors.InternalError(err))
		return
	}

	user := &models.User{
		Email:    req.Email,
		Name:     req.Name,
		Password: hash,
		Role:     req.Role,
		IsActive: true,
	}
	if err := h.userRepo.Create(user); err != nil {
		apperrors.HandleError(c, err)
		return
	}

	c.JSON(http.StatusCreated, user)
}
