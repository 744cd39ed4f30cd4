package jwt

import (
	"errors"
	"fmt"

	"github.com/golang-jwt/jwt/v5"
)

// Claims содержимое токена. Subject хранит ID пользователя.
type Claims struct {
	jwt.RegisteredClaims
}

// GenerateToken создаёт токен {sub, iat, exp=iat+TTL}, подписанный секретом.
func (j *MakerImpl) GenerateToken(subject string) (string, error) {
	const op = "jwt.GenerateToken"
	if subject == "" {
		return "", fmt.Errorf("%s: empty subject", op)
	}
	issuedAt := j.now()
	claims := Claims{
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   subject,
			IssuedAt:  jwt.NewNumericDate(issuedAt),
			ExpiresAt: jwt.NewNumericDate(issuedAt.Add(j.tokenTTL)),
		},
	}
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	signed, err := token.SignedString(j.secretKey)
	if err != nil {
		return "", fmt.Errorf("%s: %w", op, err)
	}
	return signed, nil
}

// ParseToken разбирает токен, проверяет подпись, алгоритм, exp и наличие sub.
// Любая неудача оборачивает ErrInvalidToken; паники на мусорном вводе нет.
func (j *MakerImpl) ParseToken(tokenStr string) (*Claims, error) {
	const op = "jwt.ParseToken"
	token, err := jwt.ParseWithClaims(tokenStr, &Claims{}, func(_ *jwt.Token) (any, error) {
		return j.secretKey, nil
	},
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithExpirationRequired(),
		jwt.WithTimeFunc(j.now),
	)
	if err != nil {
		return nil, fmt.Errorf("%s: %w: %w", op, ErrInvalidToken, err)
	}
	claims, ok := token.Claims.(*Claims)
	if !ok || !token.Valid {
		return nil, fmt.Errorf("%s: %w", op, ErrInvalidToken)
	}
	if claims.Subject == "" {
		return nil, fmt.Errorf("%s: %w: missing subject", op, ErrInvalidToken)
	}
	return claims, nil
}

// Verify возвращает субъект валидного токена.
func (j *MakerImpl) Verify(tokenStr string) (string, error) {
	claims, err := j.ParseToken(tokenStr)
	if err != nil {
		return "", err
	}
	return claims.Subject, nil
}

// IsExpired сообщает, что токен отклонён именно из-за истёкшего срока.
func IsExpired(err error) bool {
	return errors.Is(err, jwt.ErrTokenExpired)
}
