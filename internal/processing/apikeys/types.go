package apikeys

import "time"

// APIKey is a stored credential. Only the SHA-256 digest of the secret is
// kept; Prefix is the leading part of the secret, safe to display.
type APIKey struct {
	ID         string
	KeyHash    string
	Prefix     string
	OwnerID    string
	Name       string
	CreatedAt  time.Time
	LastUsedAt *time.Time
	ExpiresAt  *time.Time
	Revoked    bool
}

// UsableAt reports whether the key authenticates at the given instant.
// Revocation and expiry are independent.
func (k *APIKey) UsableAt(now time.Time) bool {
	if k.Revoked {
		return false
	}
	return k.ExpiresAt == nil || k.ExpiresAt.After(now)
}

// IssuedKey is returned once, at issuance, and is the only value carrying
// the plaintext secret.
type IssuedKey struct {
	APIKey
	Secret string
}
