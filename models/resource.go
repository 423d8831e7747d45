package models

import "go.mongodb.org/mongo-driver/bson/primitive"

// Resource represents a curated entry in the public resource directory
type Resource struct {
	ID          primitive.ObjectID `bson:"_id,omitempty" json:"id,omitempty"`
	Title       string             `bson:"title" json:"title"`
	Description string             `bson:"description" json:"description"`
	Category    string             `bson:"category" json:"category"`
	URL         string             `bson:"url,omitempty" json:"url,omitempty"`
	DocumentURL string             `bson:"documentUrl,omitempty" json:"documentUrl,omitempty"`
	Published   bool               `bson:"published" json:"published"`
	CreatedAt   primitive.DateTime `bson:"createdAt" json:"createdAt"`
	UpdatedAt   primitive.DateTime `bson:"updatedAt" json:"updatedAt"`
}
