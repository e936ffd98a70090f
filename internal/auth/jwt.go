package auth

import (
	"errors"
	"os"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

// Claims carries the account roles on top of the registered claim set.
type Claims struct {
	Roles []string `json:"roles"`
	jwt.RegisteredClaims
}

type JWTIssuer struct {
	secret   []byte
	issuer   string
	audience string
	ttl      time.Duration
}

func NewJWTIssuerFromEnv() (*JWTIssuer, error) {
	secret := os.Getenv("JWT_SECRET")
	if secret == "" {
		return nil, errors.New("JWT_SECRET is required")
	}
	iss := os.Getenv("JWT_ISS")
	if iss == "" {
		iss = "centralinkxyz"
	}
	aud := os.Getenv("JWT_AUD")
	ttl := 15 * time.Minute
	if v := os.Getenv("JWT_ACCESS_TTL"); v != "" {
		if d, err := time.ParseDuration(v); err == nil {
			ttl = d
		}
	}
	return &JWTIssuer{
		secret:   []byte(secret),
		issuer:   iss,
		audience: aud,
		ttl:      ttl,
	}, nil
}

func (j *JWTIssuer) Issue(userID string, roles []string) (string, time.Time, error) {
	now := time.Now()
	exp := now.Add(j.ttl)
	claims := Claims{
		Roles: roles,
		RegisteredClaims: jwt.RegisteredClaims{
			Issuer:    j.issuer,
			Subject:   userID,
			IssuedAt:  jwt.NewNumericDate(now),
			NotBefore: jwt.NewNumericDate(now.Add(-30 * time.Second)), // small skew
			ExpiresAt: jwt.NewNumericDate(exp),
		},
	}
	// The aud claim is only written when an audience is configured; an
	// empty-string audience would never satisfy the parser's check.
	if j.audience != "" {
		claims.Audience = jwt.ClaimStrings{j.audience}
	}
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	signed, err := token.SignedString(j.secret)
	return signed, exp, err
}
