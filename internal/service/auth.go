package service

import (
	"errors"
	"os"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
)

var jwtSecret []byte

var ErrInvalidToken = errors.New("неверный токен")

// InitJWT читает секрет из окружения; при пустом значении генерирует
// случайный секрет на время жизни процесса (токены не переживут рестарт).
func InitJWT() {
	secret := os.Getenv("JWT_SECRET")
	if secret == "" {
		secret = uuid.NewString()
	}
	jwtSecret = []byte(secret)
}

type guestClaims struct {
	PlayerID string `json:"player_id"`
	Name     string `json:"name"`
	jwt.RegisteredClaims
}

// IssueGuestToken выдает гостевой токен с новым player_id.
// Имя не обязано быть уникальным, идентичность держится на player_id.
func IssueGuestToken(name string) (token string, playerID string, err error) {
	playerID = uuid.NewString()
	claims := guestClaims{
		PlayerID: playerID,
		Name:     name,
		RegisteredClaims: jwt.RegisteredClaims{
			IssuedAt:  jwt.NewNumericDate(time.Now()),
			ExpiresAt: jwt.NewNumericDate(time.Now().Add(24 * time.Hour)),
		},
	}
	t := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	token, err = t.SignedString(jwtSecret)
	return token, playerID, err
}

// ParseJWT проверяет подпись и возвращает player_id и имя игрока.
func ParseJWT(token string) (playerID string, name string, err error) {
	claims := &guestClaims{}
	parsed, err := jwt.ParseWithClaims(token, claims, func(t *jwt.Token) (interface{}, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, ErrInvalidToken
		}
		return jwtSecret, nil
	})
	if err != nil || !parsed.Valid {
		return "", "", ErrInvalidToken
	}
	if claims.PlayerID == "" {
		return "", "", ErrInvalidToken
	}
	return claims.PlayerID, claims.Name, nil
}
