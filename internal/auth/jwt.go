package auth

import (
	"errors"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"github.com/propale/propale/internal/database/models"
)

const tokenIssuer = "propale"

var (
	ErrInvalidToken = errors.New("invalid token")
	ErrExpiredToken = errors.New("token has expired")
)

// Claims identify both the auth user and the business profile acting through
// it. Role is copied at login; a role change takes effect on the next login.
type Claims struct {
	UserID    uuid.UUID   `json:"uid"`
	ProfileID uuid.UUID   `json:"pid"`
	Email     string      `json:"email"`
	Role      models.Role `json:"role"`
	jwt.RegisteredClaims
}

// IsStaff reports whether the caller works for an organisation, as opposed to
// a prospect contact.
func (c *Claims) IsStaff() bool {
	return c.Role.Valid() && c.Role != models.RoleProspect
}

type JWTService struct {
	secret []byte
	expiry time.Duration
}

func NewJWTService(secret string, expiry time.Duration) *JWTService {
	return &JWTService{
		secret: []byte(secret),
		expiry: expiry,
	}
}

// GenerateToken signs a session token for the profile of user.
func (s *JWTService) GenerateToken(user *models.User, profile *models.Profile) (string, error) {
	now := time.Now()
	claims := Claims{
		UserID:    user.ID,
		ProfileID: profile.ID,
		Email:     user.Email,
		Role:      profile.Role,
		RegisteredClaims: jwt.RegisteredClaims{
			ID:        uuid.NewString(),
			ExpiresAt: jwt.NewNumericDate(now.Add(s.expiry)),
			IssuedAt:  jwt.NewNumericDate(now),
			NotBefore: jwt.NewNumericDate(now),
			Issuer:    tokenIssuer,
			Subject:   profile.ID.String(),
		},
	}

	return jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(s.secret)
}

func (s *JWTService) ValidateToken(tokenString string) (*Claims, error) {
	var claims Claims
	_, err := jwt.ParseWithClaims(tokenString, &claims, func(*jwt.Token) (interface{}, error) {
		return s.secret, nil
	},
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithIssuer(tokenIssuer),
	)
	switch {
	case errors.Is(err, jwt.ErrTokenExpired):
		return nil, ErrExpiredToken
	case err != nil:
		return nil, ErrInvalidToken
	case claims.ProfileID == uuid.Nil:
		return nil, ErrInvalidToken
	}
	return &claims, nil
}
