package models

import "strings"

// User is the authenticated account, as returned by Supabase auth.
// It is not persisted by this service.
type User struct {
	ID          string
	Email       string
	DisplayName string
}

// Greeting returns the name shown in the dashboard header.
func (u *User) Greeting() string {
	if u.DisplayName != "" {
		return u.DisplayName
	}
	if name, _, ok := strings.Cut(u.Email, "@"); ok {
		return name
	}
	return u.Email
}
