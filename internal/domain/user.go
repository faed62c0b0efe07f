package domain

import "time"

// User is an account on the server. Authentication is passwordless:
// users sign in by redeeming emailed magic links.
type User struct {
	ID          string     `json:"id"`
	CreatedAt   time.Time  `json:"createdAt"`
	UpdatedAt   time.Time  `json:"updatedAt"`
	Email       string     `json:"email"`
	DisplayName string     `json:"displayName"`
	Handle      string     `json:"handle"`
	LastLoginAt *time.Time `json:"lastLoginAt,omitempty"`
}

// PublicProfile is the shape of a user exposed on their public shelf
// page. It deliberately omits the email address.
type PublicProfile struct {
	DisplayName string    `json:"displayName"`
	Handle      string    `json:"handle"`
	JoinedAt    time.Time `json:"joinedAt"`
}

// Public returns the user's public profile view.
func (u *User) Public() PublicProfile {
	return PublicProfile{
		DisplayName: u.DisplayName,
		Handle:      u.Handle,
		JoinedAt:    u.CreatedAt,
	}
}
