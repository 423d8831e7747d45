package models

import "go.mongodb.org/mongo-driver/bson/primitive"

// Comment represents a comment on a community story
type Comment struct {
	ID        primitive.ObjectID `bson:"_id,omitempty" json:"id,omitempty"`
	StoryID   string             `bson:"storyId" json:"storyId"`
	AuthorID  string             `bson:"authorId" json:"authorId"`
	Body      string             `bson:"body" json:"body"`
	CreatedAt primitive.DateTime `bson:"createdAt" json:"createdAt"`
}
