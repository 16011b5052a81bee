package service

import (
	"errors"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

const queryTokenType = "query"

// QueryTokenService emite y valida los tokens de la API de consultas.
type QueryTokenService struct {
	secret []byte
	ttl    time.Duration
	issuer string
	now    func() time.Time
}

// QueryClaims identifica al operador o sistema que consulta el agente.
type QueryClaims struct {
	TokenType string `json:"typ"`
	jwt.RegisteredClaims
}

var (
	ErrQueryTokenInvalid = errors.New("query token invalid")
	ErrQueryTokenExpired = errors.New("query token expired")
)

func NewQueryTokenService(secret string, ttl time.Duration) *QueryTokenService {
	if ttl <= 0 {
		ttl = time.Hour
	}
	return &QueryTokenService{
		secret: []byte(secret),
		ttl:    ttl,
		issuer: "sms-bridge",
		now:    func() time.Time { return time.Now().UTC() },
	}
}

// Issue firma un token para subject.
func (s *QueryTokenService) Issue(subject string) (string, error) {
	if len(s.secret) == 0 || strings.TrimSpace(subject) == "" {
		return "", ErrQueryTokenInvalid
	}
	now := s.now()
	claims := QueryClaims{
		TokenType: queryTokenType,
		RegisteredClaims: jwt.RegisteredClaims{
			Issuer:    s.issuer,
			Subject:   subject,
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(s.ttl)),
		},
	}
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return token.SignedString(s.secret)
}

// Parse valida firma, emisor, tipo y expiración.
func (s *QueryTokenService) Parse(tokenStr string) (QueryClaims, error) {
	if len(s.secret) == 0 || strings.TrimSpace(tokenStr) == "" {
		return QueryClaims{}, ErrQueryTokenInvalid
	}
	var claims QueryClaims
	parser := jwt.NewParser(
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithIssuer(s.issuer),
		jwt.WithTimeFunc(s.now),
	)
	_, err := parser.ParseWithClaims(tokenStr, &claims, func(_ *jwt.Token) (any, error) {
		return s.secret, nil
	})
	if err != nil {
		if errors.Is(err, jwt.ErrTokenExpired) {
			return QueryClaims{}, ErrQueryTokenExpired
		}
		return QueryClaims{}, ErrQueryTokenInvalid
	}
	if claims.TokenType != queryTokenType || claims.Subject == "" {
		return QueryClaims{}, ErrQueryTokenInvalid
	}
	return claims, nil
}
