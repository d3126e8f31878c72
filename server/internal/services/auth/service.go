package auth

import (
	"errors"
	"fmt"
	"time"

	"github.com/dgrijalva/jwt-go"
	"golang.org/x/crypto/bcrypt"
)

var (
	ErrInvalidCredentials = errors.New("invalid operator or password")
	ErrTokensDisabled     = errors.New("operator password is not configured")
)

// TokenTTL is how long an operator token stays valid
const TokenTTL = 24 * time.Hour

// Service issues and checks operator tokens for the mutating API endpoints
type Service struct {
	jwtSecret    string
	passwordHash string
}

// Claims represents JWT claims
type Claims struct {
	Operator string `json:"operator"`
	jwt.StandardClaims
}

// New creates a new auth service. passwordHash is a bcrypt hash; when it is
// empty no token can be issued.
func New(jwtSecret, passwordHash string) *Service {
	return &Service{
		jwtSecret:    jwtSecret,
		passwordHash: passwordHash,
	}
}

// Login checks the operator password and returns a signed token
func (s *Service) Login(operator, password string) (string, error) {
	if s.passwordHash == "" {
		return "", ErrTokensDisabled
	}
	if operator == "" || password == "" {
		return "", fmt.Errorf("operator and password cannot be empty")
	}

	if !verifyPassword(password, s.passwordHash) {
		return "", ErrInvalidCredentials
	}

	return s.CreateToken(operator)
}

// CreateToken creates a new JWT token for an operator
func (s *Service) CreateToken(operator string) (string, error) {
	now := time.Now()
	claims := &Claims{
		Operator: operator,
		StandardClaims: jwt.StandardClaims{
			ExpiresAt: now.Add(TokenTTL).Unix(),
			IssuedAt:  now.Unix(),
			Subject:   operator,
		},
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return token.SignedString([]byte(s.jwtSecret))
}

// ValidateToken validates and parses a JWT token
func (s *Service) ValidateToken(tokenString string) (*Claims, error) {
	claims := &Claims{}
	token, err := jwt.ParseWithClaims(tokenString, claims, func(token *jwt.Token) (interface{}, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", token.Header["alg"])
		}
		return []byte(s.jwtSecret), nil
	})

	if err != nil {
		return nil, err
	}

	if !token.Valid {
		return nil, fmt.Errorf("invalid token")
	}

	return claims, nil
}

// HashPassword produces the value expected in OPERATOR_PASSWORD_HASH
func HashPassword(password string) (string, error) {
	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return "", err
	}
	return string(hash), nil
}

// verifyPassword verifies a password against its bcrypt hash
func verifyPassword(password, hash string) bool {
	err := bcrypt.CompareHashAndPassword([]byte(hash), []byte(password))
	return err == nil
}
