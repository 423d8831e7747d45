package models

import "go.mongodb.org/mongo-driver/bson/primitive"

// SupportService represents an entry in the support-service directory,
// e.g. a shelter, hotline, legal-aid clinic or counseling center
type SupportService struct {
	ID          primitive.ObjectID `bson:"_id,omitempty" json:"id,omitempty"`
	Name        string             `bson:"name" json:"name"`
	Description string             `bson:"description,omitempty" json:"description,omitempty"`
	Category    string             `bson:"category" json:"category"`
	Phone       string             `bson:"phone,omitempty" json:"phone,omitempty"`
	Email       string             `bson:"email,omitempty" json:"email,omitempty"`
	Location    string             `bson:"location,omitempty" json:"location,omitempty"`
	Hours       string             `bson:"hours,omitempty" json:"hours,omitempty"`
	Verified    bool               `bson:"verified" json:"verified"`
	CreatedAt   primitive.DateTime `bson:"createdAt" json:"createdAt"`
	UpdatedAt   primitive.DateTime `bson:"updatedAt" json:"updatedAt"`
}
