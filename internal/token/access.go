package token

import (
	"fmt"
	"strconv"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
)

// AccessTokenTTL is how long a minted access token stays valid. There is no
// refresh token: clients re-run the code exchange when it expires.
const AccessTokenTTL = 24 * time.Hour

// Minter signs short-lived bearer tokens bound to a user identity.
type Minter struct {
	secret   string
	issuer   string
	audience string
}

// NewMinter creates a Minter signing with the given secret.
func NewMinter(secret, issuer, audience string) *Minter {
	return &Minter{secret: secret, issuer: issuer, audience: audience}
}

// Mint creates a signed JWT whose subject is the given user ID and returns
// the token together with its expiry.
func (m *Minter) Mint(userID uint) (string, time.Time, error) {
	if m.secret == "" {
		return "", time.Time{}, fmt.Errorf("JWT secret not configured")
	}

	now := time.Now()
	expiry := now.Add(AccessTokenTTL)
	claims := jwt.MapClaims{
		"sub": strconv.FormatUint(uint64(userID), 10),
		"iss": m.issuer,
		"aud": m.audience,
		"exp": expiry.Unix(),
		"iat": now.Unix(),
		"nbf": now.Unix(),
		"jti": m.generateJTI(),
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	signed, err := token.SignedString([]byte(m.secret))
	if err != nil {
		return "", time.Time{}, err
	}
	return signed, expiry, nil
}

// generateJTI creates a unique JWT ID to prevent replay attacks
func (m *Minter) generateJTI() string {
	return fmt.Sprintf("%d-%s", time.Now().Unix(), uuid.New().String()[:8])
}
