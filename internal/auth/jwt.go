package auth

import (
	"errors"
	"time"

	"github.com/golang-jwt/jwt/v4"
)

type JWTService struct {
	secretKey []byte
	issuer    string
}

// Claims carries the caller identity issued by the platform's identity provider
type Claims struct {
	UserID   uint     `json:"user_id"`
	Email    string   `json:"email"`
	TenantID uint     `json:"tenant_id"`
	Scopes   []string `json:"scopes"`
	jwt.RegisteredClaims
}

func NewJWTService(secretKey, issuer string) *JWTService {
	return &JWTService{
		secretKey: []byte(secretKey),
		issuer:    issuer,
	}
}

// GenerateToken signs a token for the given actor. Production tokens come from
// the identity provider; this is used by operators and tests.
func (j *JWTService) GenerateToken(actor Actor, ttl time.Duration) (string, error) {
	now := time.Now()
	claims := &Claims{
		UserID:   actor.UserID,
		Email:    actor.Email,
		TenantID: actor.TenantID,
		Scopes:   actor.Scopes,
		RegisteredClaims: jwt.RegisteredClaims{
			ExpiresAt: jwt.NewNumericDate(now.Add(ttl)),
			IssuedAt:  jwt.NewNumericDate(now),
			NotBefore: jwt.NewNumericDate(now),
			Issuer:    j.issuer,
		},
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return token.SignedString(j.secretKey)
}

// ValidateToken validates and parses a JWT token
func (j *JWTService) ValidateToken(tokenString string) (*Claims, error) {
	token, err := jwt.ParseWithClaims(tokenString, &Claims{}, func(token *jwt.Token) (interface{}, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, errors.New("unexpected signing method")
		}
		return j.secretKey, nil
	})

	if err != nil {
		return nil, err
	}

	claims, ok := token.Claims.(*Claims)
	if !ok || !token.Valid {
		return nil, errors.New("invalid token")
	}
	if j.issuer != "" && claims.Issuer != j.issuer {
		return nil, errors.New("unexpected token issuer")
	}
	if claims.TenantID == 0 {
		return nil, errors.New("token has no tenant")
	}

	return claims, nil
}

// Actor converts validated claims into the caller of a use case
func (c *Claims) Actor() *Actor {
	return &Actor{
		UserID:   c.UserID,
		Email:    c.Email,
		TenantID: c.TenantID,
		Scopes:   append([]string(nil), c.Scopes...),
	}
}
