package models

import "go.mongodb.org/mongo-driver/bson/primitive"

// Story represents a community story shared on the public stories page
type Story struct {
	ID        primitive.ObjectID `bson:"_id,omitempty" json:"id,omitempty"`
	AuthorID  string             `bson:"authorId" json:"authorId"`
	Title     string             `bson:"title" json:"title"`
	Body      string             `bson:"body" json:"body"`
	Category  string             `bson:"category,omitempty" json:"category,omitempty"`
	Published bool               `bson:"published" json:"published"`
	CreatedAt primitive.DateTime `bson:"createdAt" json:"createdAt"`
	UpdatedAt primitive.DateTime `bson:"updatedAt" json:"updatedAt"`
}

// StoryLike marks that a member liked a story. Existence is membership:
// insert/delete toggles the like, enforced unique on (storyId, memberId).
type StoryLike struct {
	ID       primitive.ObjectID `bson:"_id,omitempty" json:"id,omitempty"`
	StoryID  string             `bson:"storyId" json:"storyId"`
	MemberID string             `bson:"memberId" json:"memberId"`
	LikedAt  primitive.DateTime `bson:"likedAt" json:"likedAt"`
}

// StoryView marks that a member viewed a story, unique on (storyId, memberId)
type StoryView struct {
	ID       primitive.ObjectID `bson:"_id,omitempty" json:"id,omitempty"`
	StoryID  string             `bson:"storyId" json:"storyId"`
	MemberID string             `bson:"memberId" json:"memberId"`
	ViewedAt primitive.DateTime `bson:"viewedAt" json:"viewedAt"`
}

// StoryCount is a precomputed per-story aggregate row, refreshed by the
// scheduler rollup. Readers fall back to a live count when no row exists.
type StoryCount struct {
	StoryID   string             `bson:"_id" json:"storyId"`
	Count     int64              `bson:"count" json:"count"`
	UpdatedAt primitive.DateTime `bson:"updatedAt" json:"updatedAt"`
}
