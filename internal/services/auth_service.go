package services

import (
	"errors"
	"fmt"
	"time"

	"github.com/ArowuTest/event-showcase-backend/internal/config"
	"github.com/ArowuTest/event-showcase-backend/internal/utils"
	"github.com/golang-jwt/jwt/v5"
	"golang.org/x/crypto/bcrypt"
)

// ErrInvalidCredentials is returned when the admin password does not match
var ErrInvalidCredentials = errors.New("invalid admin password")

const adminRole = "admin"

// AuthService is the single shared-secret admin gate.
type AuthService struct {
	passwordHash []byte
	jwtSecret    []byte
	expiresIn    time.Duration
	now          func() time.Time
}

// NewAuthService hashes the configured admin password unless a hash is
// configured directly.
func NewAuthService(admin config.AdminConfig, jwtCfg config.JWTConfig) (*AuthService, error) {
	hash := []byte(admin.PasswordHash)
	if len(hash) == 0 && admin.Password != "" {
		var err error
		hash, err = bcrypt.GenerateFromPassword([]byte(admin.Password), bcrypt.DefaultCost)
		if err != nil {
			return nil, fmt.Errorf("failed to hash admin password: %w", err)
		}
	}

	return &AuthService{
		passwordHash: hash,
		jwtSecret:    []byte(jwtCfg.Secret),
		expiresIn:    time.Duration(jwtCfg.ExpiresIn) * time.Second,
		now:          time.Now,
	}, nil
}

// Login checks the admin password and issues a token
func (s *AuthService) Login(password string) (string, error) {
	if len(s.passwordHash) == 0 || password == "" {
		return "", ErrInvalidCredentials
	}
	if err := bcrypt.CompareHashAndPassword(s.passwordHash, []byte(password)); err != nil {
		return "", ErrInvalidCredentials
	}
	if len(s.jwtSecret) == 0 {
		return "", errors.New("jwt secret is not configured")
	}
	return utils.GenerateJWT(adminRole, adminRole, s.jwtSecret, s.expiresIn, s.now())
}

// Authorize validates a token and checks that it carries the admin role
func (s *AuthService) Authorize(tokenString string) (jwt.MapClaims, error) {
	claims, err := utils.ValidateJWT(tokenString, s.jwtSecret)
	if err != nil {
		return nil, err
	}
	if role, _ := claims["role"].(string); role != adminRole {
		return nil, errors.New("token does not grant admin access")
	}
	return claims, nil
}
