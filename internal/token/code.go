// Package token issues confirmation codes and signs access tokens.
package token

import (
	"crypto/hmac"
	"crypto/rand"
	"crypto/sha256"
	"encoding/hex"
	"fmt"

	"critica/internal/models"
)

// CodeIssuer produces rotating confirmation codes. A code is keyed to the
// user's stable identity attributes and a fresh random nonce, so it cannot
// be predicted from public attributes and changes on every issuance. The
// code stays valid until the next issuance replaces it; no expiry.
type CodeIssuer struct {
	secret []byte
}

// NewCodeIssuer creates a CodeIssuer keyed with the given server secret.
func NewCodeIssuer(secret string) *CodeIssuer {
	return &CodeIssuer{secret: []byte(secret)}
}

// Issue generates a new opaque confirmation code for the user.
func (i *CodeIssuer) Issue(user *models.User) (string, error) {
	nonce := make([]byte, 16)
	if _, err := rand.Read(nonce); err != nil {
		return "", fmt.Errorf("failed to generate code nonce: %w", err)
	}

	mac := hmac.New(sha256.New, i.secret)
	fmt.Fprintf(mac, "%d:%s:%s:", user.ID, user.Username, user.Email)
	mac.Write(nonce)

	return hex.EncodeToString(mac.Sum(nil)), nil
}
