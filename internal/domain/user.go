package domain

import (
	"time"
)

// Role is the access level of an account.
type Role string

const (
	RoleUser    Role = "user"
	RolePremium Role = "premium"
	RoleCoach   Role = "coach"
)

// ClientRoles are the roles the coach works with and may assign.
var ClientRoles = []Role{RoleUser, RolePremium}

// IsValid checks if a role is one of the known roles
func (r Role) IsValid() bool {
	switch r {
	case RoleUser, RolePremium, RoleCoach:
		return true
	}
	return false
}

// IsAssignable reports whether the role may be set through the coach role endpoint.
func (r Role) IsAssignable() bool {
	return r == RoleUser || r == RolePremium
}

// In reports whether r is one of roles.
func (r Role) In(roles ...Role) bool {
	for _, role := range roles {
		if r == role {
			return true
		}
	}
	return false
}

func (r Role) String() string {
	return string(r)
}

type User struct {
	UserID       string    `json:"user_id" gorm:"primaryKey;size:64" bson:"user_id"`
	Email        string    `json:"email" gorm:"uniqueIndex;not null;size:320" bson:"email"`
	Name         string    `json:"name" gorm:"not null" bson:"name"`
	Picture      *string   `json:"picture,omitempty" bson:"picture,omitempty"`
	PasswordHash string    `json:"-" gorm:"not null" bson:"password_hash"`
	Role         Role      `json:"role" gorm:"not null;default:user;index;size:16" bson:"role"`
	CreatedAt    time.Time `json:"created_at" bson:"created_at"`
}

// IsCoach is a shorthand used by the messaging rules.
func (u *User) IsCoach() bool {
	return u != nil && u.Role == RoleCoach
}
