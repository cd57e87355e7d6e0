package jwt

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

// Token süresi (10 saat)
const DefaultExpiry = 10 * time.Hour

var (
	ErrMissingCredential          = errors.New("NO TOKEN")
	ErrServerMisconfigured        = errors.New("SERVER_CONFIGURATION_ERROR")
	ErrInvalidPayload             = errors.New("INVALID_TOKEN_PAYLOAD")
	ErrInvalidOrExpiredCredential = errors.New("JWT_ERROR")
)

type Claims struct {
	jwt.RegisteredClaims
	Email  string `json:"email"`
	UserID string `json:"userId"`
}

type Manager struct {
	secret []byte
	expiry time.Duration
	now    func() time.Time
}

func NewManager(secret string, expiry time.Duration) *Manager {
	if expiry <= 0 {
		expiry = DefaultExpiry
	}
	return &Manager{
		secret: []byte(secret),
		expiry: expiry,
		now:    time.Now,
	}
}

func (m *Manager) Generate(email, userID string) (string, error) {
	if len(m.secret) == 0 {
		return "", ErrServerMisconfigured
	}

	now := m.now()
	claims := Claims{
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   userID,
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(m.expiry)),
		},
		Email:  email,
		UserID: userID,
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	signed, err := token.SignedString(m.secret)
	if err != nil {
		return "", fmt.Errorf("sign token: %w", err)
	}
	return signed, nil
}

// Verify accepts the raw Authorization header value, with or without a "Bearer " prefix.
func (m *Manager) Verify(header string) (*Claims, error) {
	tokenString := strings.TrimSpace(header)
	if strings.EqualFold(tokenString, "Bearer") {
		tokenString = ""
	}
	tokenString = strings.TrimSpace(strings.TrimPrefix(tokenString, "Bearer "))
	if tokenString == "" {
		return nil, ErrMissingCredential
	}

	if len(m.secret) == 0 {
		return nil, ErrServerMisconfigured
	}

	claims := &Claims{}
	token, err := jwt.ParseWithClaims(tokenString, claims, func(token *jwt.Token) (interface{}, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", token.Header["alg"])
		}
		return m.secret, nil
	}, jwt.WithTimeFunc(m.now))
	if err != nil || !token.Valid {
		return nil, ErrInvalidOrExpiredCredential
	}

	if claims.UserID == "" || claims.Email == "" {
		return nil, ErrInvalidPayload
	}

	return claims, nil
}
