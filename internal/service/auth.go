package service

import (
	"crypto/subtle"
	"errors"
	"strings"

	"golang.org/x/crypto/bcrypt"

	"github.com/octobees/customer360/api/internal/auth"
)

// ErrInvalidCredentials is returned when the operator login does not match.
var ErrInvalidCredentials = errors.New("invalid credentials")

// AuthService validates the operator account configured for this deployment
// and issues access tokens.
type AuthService struct {
	username     string
	passwordHash []byte
	jwt          *auth.JWTManager
}

// NewAuthService constructs a new AuthService. An empty passwordHash disables login.
func NewAuthService(username, passwordHash string, jwtManager *auth.JWTManager) *AuthService {
	return &AuthService{
		username:     strings.TrimSpace(username),
		passwordHash: []byte(strings.TrimSpace(passwordHash)),
		jwt:          jwtManager,
	}
}

// Login validates credentials and returns a JWT.
func (s *AuthService) Login(username, password string) (string, error) {
	if username == "" || password == "" {
		return "", errors.New("username and password must not be empty")
	}
	if len(s.passwordHash) == 0 {
		return "", ErrInvalidCredentials
	}

	userMatch := subtle.ConstantTimeCompare([]byte(strings.TrimSpace(username)), []byte(s.username)) == 1
	if err := bcrypt.CompareHashAndPassword(s.passwordHash, []byte(password)); err != nil || !userMatch {
		return "", ErrInvalidCredentials
	}

	return s.jwt.GenerateToken(s.username, auth.RoleAdmin)
}
