package auth

import (
	"errors"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
)

type Role string

const (
	RoleDoctor  Role = "doctor"
	RolePatient Role = "patient"
	RoleAdmin   Role = "admin"
)

var (
	ErrInvalidToken = errors.New("invalid or expired token")
)

// Identity is the verified caller passed into every protected operation.
// Patient identities carry the Aadhaar number so booking never has to trust
// identity fields from a request body.
type Identity struct {
	ID      uuid.UUID
	Role    Role
	Name    string
	Aadhaar string
}

type Claims struct {
	jwt.RegisteredClaims
	Role    Role   `json:"role"`
	Name    string `json:"name"`
	Aadhaar string `json:"aadhaar,omitempty"`
}

// TokenManager signs and verifies the bearer tokens issued at login.
type TokenManager struct {
	secret []byte
	ttl    time.Duration
}

func NewTokenManager(secret string, ttl time.Duration) *TokenManager {
	return &TokenManager{
		secret: []byte(secret),
		ttl:    ttl,
	}
}

func (m *TokenManager) Issue(id Identity) (string, error) {
	now := time.Now()
	claims := &Claims{
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   id.ID.String(),
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(m.ttl)),
		},
		Role:    id.Role,
		Name:    id.Name,
		Aadhaar: id.Aadhaar,
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return token.SignedString(m.secret)
}

func (m *TokenManager) Verify(tokenString string) (Identity, error) {
	token, err := jwt.ParseWithClaims(tokenString, &Claims{}, func(t *jwt.Token) (any, error) {
		return m.secret, nil
	}, jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}))
	if err != nil {
		return Identity{}, ErrInvalidToken
	}

	claims, ok := token.Claims.(*Claims)
	if !ok || !token.Valid {
		return Identity{}, ErrInvalidToken
	}

	subject, err := uuid.Parse(claims.Subject)
	if err != nil {
		return Identity{}, ErrInvalidToken
	}

	switch claims.Role {
	case RoleDoctor, RolePatient, RoleAdmin:
	default:
		return Identity{}, ErrInvalidToken
	}

	return Identity{
		ID:      subject,
		Role:    claims.Role,
		Name:    claims.Name,
		Aadhaar: claims.Aadhaar,
	}, nil
}
