package models

import (
	"go.mongodb.org/mongo-driver/bson/primitive"
)

// AdminRole is the dashboard role of an admin account
type AdminRole string

// Valid admin roles
const (
	RoleSuperAdmin AdminRole = "super_admin"
	RoleAdmin      AdminRole = "admin"
	RoleModerator  AdminRole = "moderator"
)

// CanModerate reports whether the role may apply moderation actions to
// community members
func (r AdminRole) CanModerate() bool {
	return r == RoleSuperAdmin || r == RoleAdmin
}

// AdminMember represents an administrative account for the dashboard
type AdminMember struct {
	ID           primitive.ObjectID `bson:"_id,omitempty" json:"id"`
	Name         string             `bson:"name" json:"name"`
	Email        string             `bson:"email" json:"email"`
	PasswordHash string             `bson:"passwordHash" json:"-"`
	Role         AdminRole          `bson:"role" json:"role"`
	Active       bool               `bson:"active" json:"active"`
	CreatedAt    primitive.DateTime `bson:"createdAt" json:"createdAt"`
	UpdatedAt    primitive.DateTime `bson:"updatedAt" json:"updatedAt"`
}

// AdminPasswordReset stores password reset tokens for admin accounts
type AdminPasswordReset struct {
	ID        primitive.ObjectID `bson:"_id,omitempty" json:"id"`
	AdminID   primitive.ObjectID `bson:"adminId" json:"adminId"`
	TokenHash string             `bson:"tokenHash" json:"-"`
	ExpiresAt primitive.DateTime `bson:"expiresAt" json:"expiresAt"`
	UsedAt    primitive.DateTime `bson:"usedAt,omitempty" json:"usedAt,omitempty"`
	CreatedAt primitive.DateTime `bson:"createdAt" json:"createdAt"`
}
