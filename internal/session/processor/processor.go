// Package processor mints and validates the short-lived session tokens the
// frontend uses to open an agent session.
package processor

import (
	"errors"
	"fmt"
	"time"

	"voicebank-server/internal/lang"
	"voicebank-server/internal/observability"

	"github.com/golang-jwt/jwt/v5"
)

var ErrInvalidToken = errors.New("invalid session token")

// sessionTokenTTL keeps session tokens short-lived; a voice session is not
// expected to outlast it.
const sessionTokenTTL = 2 * time.Hour

type SessionProcessor struct {
	jwtSecret string
	logger    *observability.Logger
}

func New(jwtSecret string, logger *observability.Logger) SessionProcessor {
	return SessionProcessor{jwtSecret: jwtSecret, logger: logger}
}

// SessionGrant is what a minted token asserts.
type SessionGrant struct {
	Identity string
	Language lang.Language
}

// MintToken issues a signed session token for an identity and language.
func (p *SessionProcessor) MintToken(grant SessionGrant) (string, time.Time, error) {
	now := time.Now()
	expiresAt := now.Add(sessionTokenTTL)

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.MapClaims{
		"sub":      grant.Identity,
		"language": string(grant.Language),
		"iss":      "voicebank-server",
		"aud":      "voicebank-server",
		"exp":      expiresAt.Unix(),
		"iat":      now.Unix(),
	})

	signed, err := token.SignedString([]byte(p.jwtSecret))
	if err != nil {
		return "", time.Time{}, fmt.Errorf("failed to sign session token: %w", err)
	}
	return signed, expiresAt, nil
}

// ValidateToken parses a session token and returns its grant.
func (p *SessionProcessor) ValidateToken(tokenString string) (SessionGrant, error) {
	token, err := jwt.Parse(tokenString, func(t *jwt.Token) (interface{}, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", t.Header["alg"])
		}
		return []byte(p.jwtSecret), nil
	})
	if err != nil || !token.Valid {
		return SessionGrant{}, ErrInvalidToken
	}

	claims, ok := token.Claims.(jwt.MapClaims)
	if !ok {
		return SessionGrant{}, ErrInvalidToken
	}
	identity, _ := claims["sub"].(string)
	if identity == "" {
		return SessionGrant{}, ErrInvalidToken
	}
	languageCode, _ := claims["language"].(string)

	return SessionGrant{
		Identity: identity,
		Language: lang.Parse(languageCode),
	}, nil
}
