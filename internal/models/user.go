// internal/models/user.go
package models

type User struct {
	Email      string `json:"email"`
	Role       string `json:"role"`
	ProfilePic string `json:"profilePic,omitempty"`
}

// DisplayName falls back to "User" for a profile without an email.
func (u *User) DisplayName() string {
	if u == nil || u.Email == "" {
		return "User"
	}
	return u.Email
}

// DisplayRole falls back to "Guest".
func (u *User) DisplayRole() string {
	if u == nil || u.Role == "" {
		return "Guest"
	}
	return u.Role
}
