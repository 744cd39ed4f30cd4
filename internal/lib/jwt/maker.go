// Package jwt реализует выпуск и проверку подписанных bearer-токенов.
//
// Токен содержит только субъект (ID пользователя), время выпуска и срок
// действия. Проверка не хранит состояния на сервере: токен валиден, пока
// сходится подпись и не наступил exp.
package jwt

import (
	"errors"
	"time"
)

// ErrInvalidToken возвращается при любой неудачной проверке токена:
// неверная подпись, нечитаемый payload, отсутствующий sub или истёкший exp.
var ErrInvalidToken = errors.New("invalid token")

// Maker описывает выпуск и проверку токенов.
type Maker interface {
	// GenerateToken выпускает токен для субъекта со сроком now+TTL.
	GenerateToken(subject string) (string, error)
	// ParseToken проверяет токен и возвращает его claims.
	ParseToken(tokenStr string) (*Claims, error)
	// Verify проверяет токен и возвращает субъект.
	Verify(tokenStr string) (string, error)
}

// MakerImpl реализует Maker на HS256 с общим секретом процесса.
type MakerImpl struct {
	secretKey []byte        // Секрет подписи, неизменяем после старта.
	tokenTTL  time.Duration // Время жизни токена.
	now       func() time.Time
}

// Option настраивает MakerImpl.
type Option func(*MakerImpl)

// WithClock подменяет источник времени. Используется в тестах.
func WithClock(now func() time.Time) Option {
	return func(m *MakerImpl) {
		m.now = now
	}
}

// NewJWTMaker создаёт MakerImpl на основе секретного ключа и TTL.
func NewJWTMaker(secretKey string, ttl time.Duration, opts ...Option) *MakerImpl {
	m := &MakerImpl{
		secretKey: []byte(secretKey),
		tokenTTL:  ttl,
		now:       time.Now,
	}
	for _, opt := range opts {
		opt(m)
	}
	return m
}
