package security

import (
	"time"

	"github.com/golang-jwt/jwt/v5"

	"github.com/helpmesh/helpmesh/internal/domain"
)

// Claims is the normalized identity carried by a verified bearer token.
// UserID is always a string regardless of how the id is stored.
type Claims struct {
	UserID string
	Email  string
	Role   string
}

// GenerateToken creates a signed HS256 JWT carrying the user's id, email and role.
func GenerateToken(secret, issuer string, user *domain.User, ttl time.Duration) (string, error) {
	claims := jwt.MapClaims{
		"sub":   user.ID,
		"email": user.Email,
		"role":  user.Role,
		"iss":   issuer,
		"iat":   time.Now().Unix(),
		"exp":   time.Now().Add(ttl).Unix(),
	}

	t := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return t.SignedString([]byte(secret))
}

// VerifyToken parses and validates a bearer token. Any failure (malformed,
// expired, bad signature, missing subject) maps to domain.ErrInvalidToken.
func VerifyToken(tokenString, secret string) (*Claims, error) {
	token, err := jwt.Parse(tokenString, func(t *jwt.Token) (interface{}, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, domain.ErrInvalidToken
		}
		return []byte(secret), nil
	})
	if err != nil || !token.Valid {
		return nil, domain.ErrInvalidToken
	}

	claims, ok := token.Claims.(jwt.MapClaims)
	if !ok {
		return nil, domain.ErrInvalidToken
	}

	sub, ok := claims["sub"].(string)
	if !ok || sub == "" {
		return nil, domain.ErrInvalidToken
	}

	email, _ := claims["email"].(string)
	role, _ := claims["role"].(string)
	if role == "" {
		role = domain.RoleUser
	}

	return &Claims{UserID: sub, Email: email, Role: role}, nil
}
