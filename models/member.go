package models

import (
	"go.mongodb.org/mongo-driver/bson/primitive"
)

// MemberStatus is the moderation status of a community member
type MemberStatus string

// Valid member statuses
const (
	MemberStatusActive    MemberStatus = "active"
	MemberStatusWarned    MemberStatus = "warned"
	MemberStatusSuspended MemberStatus = "suspended"
	MemberStatusBanned    MemberStatus = "banned"
)

// ViolationType classifies a moderation violation record
type ViolationType string

// Valid violation types
const (
	ViolationHateSpeech           ViolationType = "hate_speech"
	ViolationHarassment           ViolationType = "harassment"
	ViolationInappropriateContent ViolationType = "inappropriate_content"
	ViolationSpam                 ViolationType = "spam"
)

// Violation is a timestamped moderation record attached to a community member,
// appended by warn/suspend/ban actions and never removed through this API
type Violation struct {
	Type        ViolationType      `bson:"type" json:"type"`
	Date        primitive.DateTime `bson:"date" json:"date"`
	Description string             `bson:"description" json:"description"`
}

// CommunityMember represents a member of the community section
type CommunityMember struct {
	ID            primitive.ObjectID `bson:"_id,omitempty" json:"id,omitempty"`
	Name          string             `bson:"name" json:"name"`
	Username      string             `bson:"username" json:"username"`
	Email         string             `bson:"email" json:"email"`
	PasswordHash  string             `bson:"passwordHash" json:"-"`
	AvatarURL     string             `bson:"avatarUrl,omitempty" json:"avatarUrl,omitempty"`
	Status        MemberStatus       `bson:"status" json:"status"`
	Violations    []Violation        `bson:"violations" json:"violations"`
	ReportsCount  int                `bson:"reportsCount" json:"reportsCount"`
	StoriesCount  int                `bson:"storiesCount" json:"storiesCount"`
	CommentsCount int                `bson:"commentsCount" json:"commentsCount"`
	LikesReceived int                `bson:"likesReceived" json:"likesReceived"`
	CreatedAt     primitive.DateTime `bson:"createdAt" json:"createdAt"`
	UpdatedAt     primitive.DateTime `bson:"updatedAt" json:"updatedAt"`
}
