package domain

import "time"

// MagicLink is a single-use login token emailed to a user. Redeeming it
// marks it used; expired or already-used links are rejected.
type MagicLink struct {
	ID        string     `json:"id"`
	CreatedAt time.Time  `json:"createdAt"`
	UserID    string     `json:"userId"`
	Token     string     `json:"-"`
	ExpiresAt time.Time  `json:"expiresAt"`
	UsedAt    *time.Time `json:"usedAt,omitempty"`
}

// IsExpired reports whether the link is past its expiry.
func (m *MagicLink) IsExpired() bool {
	return time.Now().After(m.ExpiresAt)
}

// IsUsed reports whether the link has already been redeemed.
func (m *MagicLink) IsUsed() bool {
	return m.UsedAt != nil
}

// IsValid reports whether the link can still be redeemed.
func (m *MagicLink) IsValid() bool {
	return !m.IsUsed() && !m.IsExpired()
}
