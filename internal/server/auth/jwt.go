// Package auth issues and verifies access tokens and holds the typed
// capability model used for authorization decisions.
package auth

import (
	"errors"
	"time"

	"github.com/dmitrijs2005/docvault/internal/common"
	"github.com/golang-jwt/jwt/v5"
)

// Claims extends the registered claims with the user id and the capability
// names granted at login. Capabilities travel inside the token so every
// request carries its own credentials instead of reading ambient state.
type Claims struct {
	jwt.RegisteredClaims
	UserID       int64    `json:"uid"`
	Capabilities []string `json:"caps"`
}

// GenerateToken signs an HS256 token for userID carrying the given
// capability set.
func GenerateToken(userID int64, caps []Capability, secretKey []byte, validityDuration time.Duration) (string, error) {
	names := make([]string, 0, len(caps))
	for _, c := range caps {
		names = append(names, string(c))
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, Claims{
		RegisteredClaims: jwt.RegisteredClaims{
			ExpiresAt: jwt.NewNumericDate(time.Now().Add(validityDuration)),
		},
		UserID:       userID,
		Capabilities: names,
	})

	return token.SignedString(secretKey)
}

// ParseToken validates tokenString and returns the caller identity it
// carries. Expired tokens map to common.ErrTokenExpired, everything else
// invalid to common.ErrInvalidToken.
func ParseToken(tokenString string, secretKey []byte) (*Identity, error) {
	claims := &Claims{}

	token, err := jwt.ParseWithClaims(tokenString, claims, func(t *jwt.Token) (interface{}, error) {
		return secretKey, nil
	})
	if err != nil {
		if errors.Is(err, jwt.ErrTokenExpired) {
			return nil, common.ErrTokenExpired
		}
		return nil, common.ErrInvalidToken
	}

	if !token.Valid {
		return nil, common.ErrInvalidToken
	}

	return &Identity{UserID: claims.UserID, Capabilities: ParseCapabilities(claims.Capabilities)}, nil
}
