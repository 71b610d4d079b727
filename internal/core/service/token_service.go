package service

import (
	"errors"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v5"

	"github.com/accountd/account-service/internal/core/domain"
)

const (
	bearerPrefix    = "Bearer "
	defaultTokenTTL = time.Hour
)

// TokenConfig is the process-wide signing configuration, loaded once.
type TokenConfig struct {
	Secret string
	Issuer string
	TTL    time.Duration
	// Now overrides the wall clock; nil means time.Now.
	Now func() time.Time
}

type tokenClaims struct {
	Username string `json:"username"`
	jwt.RegisteredClaims
}

// JWTService signs and verifies HS256 bearer tokens.
type JWTService struct {
	secret []byte
	issuer string
	ttl    time.Duration
	now    func() time.Time
}

func NewJWTService(cfg TokenConfig) *JWTService {
	ttl := cfg.TTL
	if ttl <= 0 {
		ttl = defaultTokenTTL
	}
	now := cfg.Now
	if now == nil {
		now = time.Now
	}
	return &JWTService{secret: []byte(cfg.Secret), issuer: cfg.Issuer, ttl: ttl, now: now}
}

// Issue returns a signed token whose subject is the account's username.
func (s *JWTService) Issue(account *domain.Account) (string, error) {
	if account == nil || account.Username == "" {
		return "", errors.New("issue token: account has no username")
	}

	claims := tokenClaims{
		Username: account.Username,
		RegisteredClaims: jwt.RegisteredClaims{
			Issuer:    s.issuer,
			ExpiresAt: jwt.NewNumericDate(s.now().Add(s.ttl)),
		},
	}

	t := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return t.SignedString(s.secret)
}

// VerifySubject collapses every failure into domain.ErrInvalidToken so callers
// cannot tell which check rejected the token.
func (s *JWTService) VerifySubject(token string) (string, error) {
	var claims tokenClaims
	parsed, err := jwt.ParseWithClaims(token, &claims, func(*jwt.Token) (interface{}, error) {
		return s.secret, nil
	},
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithIssuer(s.issuer),
		jwt.WithExpirationRequired(),
		jwt.WithTimeFunc(s.now),
	)
	if err != nil || !parsed.Valid || claims.Username == "" {
		return "", domain.ErrInvalidToken
	}
	return claims.Username, nil
}

// ExtractBearer returns the token carried by an Authorization header value.
// The scheme is matched case-insensitively and exactly len("Bearer ") bytes
// are trimmed; the token itself is never shortened.
func ExtractBearer(header string) (string, error) {
	if len(header) <= len(bearerPrefix) {
		return "", domain.ErrMalformedCredential
	}
	if !strings.EqualFold(header[:len(bearerPrefix)], bearerPrefix) {
		return "", domain.ErrMalformedCredential
	}

	token := strings.TrimSpace(header[len(bearerPrefix):])
	if token == "" {
		return "", domain.ErrMalformedCredential
	}
	return token, nil
}
