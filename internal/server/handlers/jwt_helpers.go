package handlers

import (
	"errors"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

const tokenIssuer = "devsync"

// ErrInvalidToken токен не прошел проверку подписи или срока
var ErrInvalidToken = errors.New("invalid token")

// Claims представляет JWT claims устройства
type Claims struct {
	UserID string `json:"user_id"`
	jwt.RegisteredClaims
}

// JWTConfig содержит конфигурацию для JWT.
// Пустой Secret отключает аутентификацию.
type JWTConfig struct {
	Secret   []byte
	TokenTTL time.Duration // 0 - токен без срока действия
}

// Enabled возвращает true, если сервер требует токен
func (c JWTConfig) Enabled() bool {
	return len(c.Secret) > 0
}

// GenerateToken создает HS256 токен для пользователя
func GenerateToken(cfg JWTConfig, userID string, now time.Time) (string, error) {
	if !cfg.Enabled() {
		return "", fmt.Errorf("jwt secret is not configured")
	}
	if userID == "" {
		return "", fmt.Errorf("user id cannot be empty")
	}

	claims := Claims{
		UserID: userID,
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:  userID,
			IssuedAt: jwt.NewNumericDate(now),
			Issuer:   tokenIssuer,
		},
	}
	if cfg.TokenTTL > 0 {
		claims.ExpiresAt = jwt.NewNumericDate(now.Add(cfg.TokenTTL))
	}

	token, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(cfg.Secret)
	if err != nil {
		return "", fmt.Errorf("failed to sign token: %w", err)
	}
	return token, nil
}

// ValidateToken валидирует и парсит токен
func ValidateToken(cfg JWTConfig, tokenString string) (*Claims, error) {
	claims := &Claims{}
	token, err := jwt.ParseWithClaims(tokenString, claims, func(token *jwt.Token) (any, error) {
		return cfg.Secret, nil
	},
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithIssuer(tokenIssuer),
	)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrInvalidToken, err)
	}
	if !token.Valid || claims.UserID == "" {
		return nil, ErrInvalidToken
	}
	return claims, nil
}
