package crypto

import (
	"crypto/rand"
	"encoding/hex"
	"errors"
	"strconv"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

const issuer = "bookcollect"

// Claims identify an authenticated administrator.
type Claims struct {
	Sub   string `json:"sub"`   // administrator id
	Login string `json:"login"` // administrator login, informational
	jwt.RegisteredClaims
}

// AdminID returns the numeric administrator id carried in Sub.
func (c *Claims) AdminID() (int64, error) {
	return strconv.ParseInt(c.Sub, 10, 64)
}

func generateJTI() (string, error) {
	bytes := make([]byte, 16)
	if _, err := rand.Read(bytes); err != nil {
		return "", err
	}
	return hex.EncodeToString(bytes), nil
}

// GenerateToken signs an HS256 token for the administrator and returns it
// together with its jti.
func GenerateToken(secret string, adminID int64, login string, ttl time.Duration) (string, string, error) {
	if secret == "" {
		return "", "", errors.New("empty signing secret")
	}
	jti, err := generateJTI()
	if err != nil {
		return "", "", err
	}

	now := time.Now()
	c := Claims{
		Sub:   strconv.FormatInt(adminID, 10),
		Login: login,
		RegisteredClaims: jwt.RegisteredClaims{
			ID:        jti,
			Issuer:    issuer,
			ExpiresAt: jwt.NewNumericDate(now.Add(ttl)),
			IssuedAt:  jwt.NewNumericDate(now),
		},
	}
	t := jwt.NewWithClaims(jwt.SigningMethodHS256, c)
	tokenStr, err := t.SignedString([]byte(secret))
	if err != nil {
		return "", "", err
	}
	return tokenStr, jti, nil
}

func ParseToken(secret, tokenStr string) (*Claims, error) {
	t, err := jwt.ParseWithClaims(tokenStr, &Claims{}, func(t *jwt.Token) (any, error) {
		return []byte(secret), nil
	}, jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}), jwt.WithIssuer(issuer))
	if err != nil {
		return nil, err
	}
	if claims, ok := t.Claims.(*Claims); ok && t.Valid {
		return claims, nil
	}
	return nil, jwt.ErrTokenInvalidClaims
}
