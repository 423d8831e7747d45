package models

import "go.mongodb.org/mongo-driver/bson/primitive"

// Activity is an append-only entry in the dashboard recent-activity feed
type Activity struct {
	ID        primitive.ObjectID `bson:"_id,omitempty" json:"id,omitempty"`
	Kind      string             `bson:"kind" json:"kind"`
	Actor     string             `bson:"actor,omitempty" json:"actor,omitempty"`
	Subject   string             `bson:"subject,omitempty" json:"subject,omitempty"`
	Message   string             `bson:"message" json:"message"`
	CreatedAt primitive.DateTime `bson:"createdAt" json:"createdAt"`
}
