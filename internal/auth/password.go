// Package auth - хеширование паролей и выдача токенов сессии.
//
// Схема хеширования намеренно совпадает с уже сохранёнными в базе хешами:
// один проход SHA-256 без соли. Одинаковые пароли у разных собственников дают
// одинаковый хеш. Токен сессии нигде не сохраняется и не проверяется: это
// непрозрачное значение, которое клиент предъявляет сам (доверие на стороне клиента).
package auth

import (
	"crypto/rand"
	"crypto/sha256"
	"crypto/subtle"
	"encoding/base64"
	"encoding/hex"
	"fmt"
)

const tokenBytes = 32

// HashPassword возвращает hex(SHA-256(password)).
func HashPassword(password string) string {
	sum := sha256.Sum256([]byte(password))
	return hex.EncodeToString(sum[:])
}

// CheckPassword сравнивает пароль с сохранённым хешем за постоянное время.
func CheckPassword(password, storedHash string) bool {
	return subtle.ConstantTimeCompare([]byte(HashPassword(password)), []byte(storedHash)) == 1
}

// NewSessionToken - 32 случайных байта в base64url без паддинга.
func NewSessionToken() (string, error) {
	buf := make([]byte, tokenBytes)
	if _, err := rand.Read(buf); err != nil {
		return "", fmt.Errorf("generate session token: %w", err)
	}
	return base64.RawURLEncoding.EncodeToString(buf), nil
}
