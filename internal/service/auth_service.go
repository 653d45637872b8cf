package service

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"golang.org/x/crypto/bcrypt"

	"restaurant-pos/internal/entity"
	"restaurant-pos/internal/repository"
)

type AdminStore interface {
	GetAdminByUsername(ctx context.Context, username string) (*entity.Admin, error)
	CreateAdmin(ctx context.Context, a *entity.Admin) error
}

type JwtCustomClaims struct {
	Username string `json:"username"`
	jwt.RegisteredClaims
}

type Credentials struct {
	Username string `json:"username"`
	Password string `json:"password"`
}

type AuthService struct {
	store  AdminStore
	secret []byte
	ttl    time.Duration
	now    func() time.Time
}

func NewAuthService(store AdminStore, secret string, ttl time.Duration) *AuthService {
	return &AuthService{store: store, secret: []byte(secret), ttl: ttl, now: time.Now}
}

// Login checks the admin's credentials and answers with a signed HS256
// token as the message.
func (s *AuthService) Login(ctx context.Context, creds Credentials) (*entity.ServiceResponse, error) {
	admin, err := s.store.GetAdminByUsername(ctx, creds.Username)
	if errors.Is(err, repository.ErrNotFound) {
		logger.Warn().Msgf("Login attempt for unknown user %s", creds.Username)
		return nil, unauthorized("User not found.")
	}
	if err != nil {
		return nil, fail(err, "Error while authorizing.")
	}
	if err := bcrypt.CompareHashAndPassword([]byte(admin.PasswordHash), []byte(creds.Password)); err != nil {
		logger.Warn().Msgf("Wrong password for user %s", creds.Username)
		return nil, unauthorized("User not found.")
	}

	claims := &JwtCustomClaims{
		Username: admin.Username,
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   admin.ID,
			IssuedAt:  jwt.NewNumericDate(s.now()),
			ExpiresAt: jwt.NewNumericDate(s.now().Add(s.ttl)),
		},
	}
	token, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(s.secret)
	if err != nil {
		return nil, fail(err, "Error while authorizing.")
	}

	return &entity.ServiceResponse{StatusCode: http.StatusOK, Message: token}, nil
}

// EnsureAdmin creates the bootstrap admin unless one with that username
// exists already.
func (s *AuthService) EnsureAdmin(ctx context.Context, username, password string) error {
	if username == "" || password == "" {
		return nil
	}
	_, err := s.store.GetAdminByUsername(ctx, username)
	if err == nil {
		return nil
	}
	if !errors.Is(err, repository.ErrNotFound) {
		return err
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return err
	}
	if err := s.store.CreateAdmin(ctx, &entity.Admin{Username: username, PasswordHash: string(hash)}); err != nil {
		return err
	}
	logger.Info().Msgf("Admin %s created", username)
	return nil
}
