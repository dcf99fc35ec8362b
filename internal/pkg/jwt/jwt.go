package jwt

import (
	"errors"
	"fmt"
	"strconv"
	"time"

	"github.com/golang-jwt/jwt/v5"

	"ai2sql/internal/pkg/config"
	"ai2sql/pkg/constants"
	pkgErrors "ai2sql/pkg/errors"
)

// UserClaims are carried by access and refresh tokens
type UserClaims struct {
	UserID   int64  `json:"user_id"`
	Email    string `json:"email"`
	Name     string `json:"name"`
	AuthType string `json:"auth_type"` // ldap or local
	Type     string `json:"type"`      // access or refresh
	jwt.RegisteredClaims
}

// Manager signs and verifies HS256 tokens
type Manager struct {
	secret        []byte
	accessExpire  time.Duration
	refreshExpire time.Duration
}

func NewManager(cfg config.JWTConfig) *Manager {
	return &Manager{
		secret:        []byte(cfg.Secret),
		accessExpire:  time.Duration(cfg.AccessTokenExpire) * time.Second,
		refreshExpire: time.Duration(cfg.RefreshTokenExpire) * time.Second,
	}
}

// AccessExpire returns the access token lifetime in seconds
func (m *Manager) AccessExpire() int64 {
	return int64(m.accessExpire / time.Second)
}

func (m *Manager) GenerateAccessToken(userID int64, email, name, authType string) (string, error) {
	return m.generate(userID, email, name, authType, constants.JWTTypeAccess, m.accessExpire)
}

func (m *Manager) GenerateRefreshToken(userID int64, email, name, authType string) (string, error) {
	return m.generate(userID, email, name, authType, constants.JWTTypeRefresh, m.refreshExpire)
}

func (m *Manager) generate(userID int64, email, name, authType, tokenType string, ttl time.Duration) (string, error) {
	now := time.Now()
	claims := UserClaims{
		UserID:   userID,
		Email:    email,
		Name:     name,
		AuthType: authType,
		Type:     tokenType,
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   strconv.FormatInt(userID, 10),
			ExpiresAt: jwt.NewNumericDate(now.Add(ttl)),
			IssuedAt:  jwt.NewNumericDate(now),
		},
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return token.SignedString(m.secret)
}

// ParseToken verifies the signature and expiry of tokenString
func (m *Manager) ParseToken(tokenString string) (*UserClaims, error) {
	token, err := jwt.ParseWithClaims(tokenString, &UserClaims{}, func(token *jwt.Token) (interface{}, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", token.Header["alg"])
		}
		return m.secret, nil
	})

	if err != nil {
		if errors.Is(err, jwt.ErrTokenExpired) {
			return nil, pkgErrors.ErrTokenExpired
		}
		return nil, pkgErrors.Wrap(pkgErrors.CodeUnauthorized, "invalid token", err)
	}

	if claims, ok := token.Claims.(*UserClaims); ok && token.Valid {
		return claims, nil
	}

	return nil, pkgErrors.ErrInvalidToken
}

// ValidateToken parses tokenString and checks it is of the wanted type
func (m *Manager) ValidateToken(tokenString, tokenType string) (*UserClaims, error) {
	claims, err := m.ParseToken(tokenString)
	if err != nil {
		return nil, err
	}

	if claims.Type != tokenType {
		return nil, pkgErrors.ErrInvalidToken
	}

	return claims, nil
}
