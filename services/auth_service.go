package services

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"

	"booktable-api/apperr"
	"booktable-api/models"

	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"
)

type AuthService struct {
	deps *Deps
}

type RegisterInput struct {
	Email    string `validate:"required,email"`
	Password string `validate:"required,min=8"`
	FullName string `validate:"max=200"`
	Phone    string `validate:"omitempty,e164"`
	Role     models.UserRole
}

// Session is what a successful register or login returns.
type Session struct {
	AccessToken string       `json:"access_token"`
	TokenType   string       `json:"token_type"`
	User        *models.User `json:"user"`
}

func (s *AuthService) Register(ctx context.Context, in RegisterInput) (*Session, error) {
	if err := validateStruct(in); err != nil {
		return nil, err
	}
	if in.Role == "" {
		in.Role = models.RoleCustomer
	}
	if !in.Role.Valid() {
		return nil, apperr.Validation("role must be Customer, RestaurantManager or Admin")
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(in.Password), bcrypt.DefaultCost)
	if err != nil {
		return nil, apperr.Internal("failed to hash password", err)
	}
	user := models.User{
		Email:        strings.ToLower(strings.TrimSpace(in.Email)),
		PasswordHash: string(hash),
		FullName:     strings.TrimSpace(in.FullName),
		Phone:        in.Phone,
		Role:         in.Role,
	}

	db := s.deps.DB.WithContext(ctx)
	var count int64
	if err := db.Model(&models.User{}).Where("email = ?", user.Email).Count(&count).Error; err != nil {
		return nil, apperr.Internal("failed to check email", err)
	}
	if count > 0 {
		return nil, apperr.Conflict("email already registered")
	}
	if err := db.Create(&user).Error; err != nil {
		if isUniqueViolation(err) {
			return nil, apperr.Conflict("email already registered")
		}
		return nil, apperr.Internal("failed to create user", err)
	}

	s.deps.logger().Info("user registered", slog.Uint64("user_id", uint64(user.ID)), slog.String("role", string(user.Role)))
	return s.session(&user)
}

func (s *AuthService) Login(ctx context.Context, email, password string) (*Session, error) {
	var user models.User
	err := s.deps.DB.WithContext(ctx).Where("email = ?", strings.ToLower(strings.TrimSpace(email))).First(&user).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperr.Unauthorized("invalid credentials")
		}
		return nil, apperr.Internal("failed to load user", err)
	}
	if bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(password)) != nil {
		return nil, apperr.Unauthorized("invalid credentials")
	}
	return s.session(&user)
}

func (s *AuthService) Profile(ctx context.Context, caller Caller) (*models.User, error) {
	var user models.User
	if err := s.deps.DB.WithContext(ctx).First(&user, caller.UserID).Error; err != nil {
		return nil, notFoundOr(err, "user not found")
	}
	return &user, nil
}

func (s *AuthService) session(user *models.User) (*Session, error) {
	if s.deps.Tokens == nil {
		return nil, apperr.Internal("token issuer not configured", nil)
	}
	token, err := s.deps.Tokens.GenerateToken(user)
	if err != nil {
		return nil, apperr.Internal("failed to generate token", fmt.Errorf("sign: %w", err))
	}
	return &Session{AccessToken: token, TokenType: "bearer", User: user}, nil
}
