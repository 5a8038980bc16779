package model

import "time"

const (
	RoleAdmin  = "admin"
	RoleMember = "member"
)

// Profile is the per-identity record holding display name and role.
// Its ID is the user ID.
type Profile struct {
	ID        string    `db:"id"`
	FullName  *string   `db:"full_name"`
	Email     *string   `db:"email"`
	Role      string    `db:"role"`
	CreatedAt time.Time `db:"created_at"`
	UpdatedAt time.Time `db:"updated_at"`
}

func (p *Profile) IsAdmin() bool {
	return p != nil && p.Role == RoleAdmin
}

// DisplayName prefers the full name, then the email.
func (p *Profile) DisplayName() string {
	if p == nil {
		return "Member"
	}
	if p.FullName != nil && *p.FullName != "" {
		return *p.FullName
	}
	if p.Email != nil && *p.Email != "" {
		return *p.Email
	}
	return "Member"
}

func ValidRole(role string) bool {
	return role == RoleAdmin || role == RoleMember
}
