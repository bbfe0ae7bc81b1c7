package model

import "time"

// Roles assigned to users. New accounts always start as RoleUser;
// admins are promoted out of band.
const (
	RoleAdmin = "admin"
	RoleUser  = "user"
)

// Avatar references an image hosted on the external media service.
// PublicID is the host-side identifier needed to delete or replace
// the asset; URL is what clients render.
type Avatar struct {
	PublicID string `json:"public_id,omitempty"`
	URL      string `json:"url,omitempty"`
}

// User represents an application user as stored in the `users` table
// and as serialized into the session cache. PasswordHash is never
// rendered to clients. Courses holds the IDs of purchased courses and
// gates access to full course content.
type User struct {
	ID           uint64    `json:"id"`
	Name         string    `json:"name"`
	Email        string    `json:"email"`
	PasswordHash string    `json:"-"`
	Role         string    `json:"role"`
	Avatar       Avatar    `json:"avatar"`
	Courses      []string  `json:"courses"`
	CreatedAt    time.Time `json:"created_at"`
	UpdatedAt    time.Time `json:"updated_at"`
}

// Owns reports whether the user has purchased the given course.
func (u *User) Owns(courseID string) bool {
	for _, id := range u.Courses {
		if id == courseID {
			return true
		}
	}
	return false
}

// PendingUser carries registration data between the registration and
// activation steps. It is embedded in the signed activation token and
// never persisted on its own; the password is already hashed before
// the token is issued.
type PendingUser struct {
	Name         string `json:"name"`
	Email        string `json:"email"`
	PasswordHash string `json:"password_hash"`
}
