package utils

import (
	"time"

	"github.com/golang-jwt/jwt/v5"

	"github.com/freelancehub/backend/internal/models"
)

// TokenCookie is the HTTP-only cookie carrying the signed session token.
const TokenCookie = "fh_token"

// Claims is the session token payload: who the user is and which side of the
// marketplace they act on. The role is baked in at sign time; it never changes
// for the life of the account.
type Claims struct {
	UserID string      `json:"uid"`
	Role   models.Role `json:"role"`
	jwt.RegisteredClaims
}

// SignJWT issues an HS256 session token valid for expiresMin minutes.
func SignJWT(secret, userID string, role models.Role, expiresMin int) (string, error) {
	now := time.Now()
	claims := Claims{
		UserID: userID,
		Role:   role,
		RegisteredClaims: jwt.RegisteredClaims{
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(time.Duration(expiresMin) * time.Minute)),
		},
	}
	t := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return t.SignedString([]byte(secret))
}
