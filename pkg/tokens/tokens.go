package tokens

import (
	"errors"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

const (
	TypeAccess  = "access"
	TypeRefresh = "refresh"
)

var (
	ErrInvalidToken   = errors.New("invalid token")
	ErrExpiredToken   = errors.New("token has expired")
	ErrWrongTokenType = errors.New("invalid token type")
)

// Claims is the signed claim set carried by both token kinds. Validity is
// purely a function of signature, expiry and type — nothing is stored
// server-side.
type Claims struct {
	Type string `json:"type"`
	jwt.RegisteredClaims
}

// Service mints and verifies HMAC-signed access and refresh tokens.
type Service struct {
	secret     []byte
	accessTTL  time.Duration
	refreshTTL time.Duration
}

func NewService(secret []byte, accessTTL, refreshTTL time.Duration) *Service {
	return &Service{secret: secret, accessTTL: accessTTL, refreshTTL: refreshTTL}
}

// NewAccessToken issues a short-lived access token for the given subject.
func (s *Service) NewAccessToken(subject string) (string, error) {
	return s.sign(subject, TypeAccess, s.accessTTL)
}

// NewRefreshToken issues a long-lived refresh token for the given subject.
func (s *Service) NewRefreshToken(subject string) (string, error) {
	return s.sign(subject, TypeRefresh, s.refreshTTL)
}

func (s *Service) sign(subject, tokenType string, ttl time.Duration) (string, error) {
	now := time.Now().UTC()
	claims := Claims{
		Type: tokenType,
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   subject,
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(ttl)),
		},
	}
	return jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(s.secret)
}

// Decode verifies signature and expiry and checks that the token carries the
// expected type. Signature and format problems map to ErrInvalidToken, a
// passed exp to ErrExpiredToken, and a type mismatch to ErrWrongTokenType.
func (s *Service) Decode(tokenString, expectedType string) (*Claims, error) {
	claims := &Claims{}
	token, err := jwt.ParseWithClaims(tokenString, claims, func(token *jwt.Token) (interface{}, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, jwt.ErrSignatureInvalid
		}
		return s.secret, nil
	})
	if err != nil {
		if errors.Is(err, jwt.ErrTokenExpired) {
			return nil, ErrExpiredToken
		}
		return nil, ErrInvalidToken
	}
	if !token.Valid {
		return nil, ErrInvalidToken
	}
	if claims.Type != expectedType {
		return nil, ErrWrongTokenType
	}
	return claims, nil
}
