package models

import (
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

// ReportType classifies an incident report
type ReportType string

// Valid report types
const (
	ReportTypeHarassment     ReportType = "harassment"
	ReportTypeViolence       ReportType = "violence"
	ReportTypeDiscrimination ReportType = "discrimination"
	ReportTypeOther          ReportType = "other"
)

// ReportPriority is the triage priority of a report
type ReportPriority string

// Valid report priorities
const (
	PriorityLow      ReportPriority = "Low"
	PriorityMedium   ReportPriority = "Medium"
	PriorityHigh     ReportPriority = "High"
	PriorityCritical ReportPriority = "Critical"
)

// ReportStatus is the triage status of a report
type ReportStatus string

// Valid report statuses
const (
	StatusOpen       ReportStatus = "Open"
	StatusInProgress ReportStatus = "In Progress"
	StatusResolved   ReportStatus = "Resolved"
)

// Report represents an incident report submitted through the public form
type Report struct {
	ID                primitive.ObjectID `bson:"_id,omitempty" json:"id,omitempty"`
	Title             string             `bson:"title" json:"title"`
	Description       string             `bson:"description" json:"description"`
	Type              ReportType         `bson:"type" json:"type"`
	Priority          ReportPriority     `bson:"priority" json:"priority"`
	Status            ReportStatus       `bson:"status" json:"status"`
	ReporterID        string             `bson:"reporterId,omitempty" json:"reporterId,omitempty"`
	Location          string             `bson:"location,omitempty" json:"location,omitempty"`
	ContactPreference string             `bson:"contactPreference,omitempty" json:"contactPreference,omitempty"`
	ResolutionNote    string             `bson:"resolutionNote,omitempty" json:"resolutionNote,omitempty"`
	CreatedAt         primitive.DateTime `bson:"createdAt" json:"createdAt"`
	UpdatedAt         primitive.DateTime `bson:"updatedAt" json:"updatedAt"`
}

// IsAlert reports whether this report needs urgent operator attention.
// An alert is derived, never stored: an unresolved report at High or
// Critical priority.
func (r Report) IsAlert() bool {
	open := r.Status == StatusOpen || r.Status == StatusInProgress
	urgent := r.Priority == PriorityHigh || r.Priority == PriorityCritical
	return open && urgent
}

// AlertFilter is the Mongo filter matching exactly the reports IsAlert
// classifies as alerts. Queries that page or sort alerts build on this one
// definition instead of restating it.
func AlertFilter() bson.M {
	return bson.M{
		"status":   bson.M{"$in": []ReportStatus{StatusOpen, StatusInProgress}},
		"priority": bson.M{"$in": []ReportPriority{PriorityHigh, PriorityCritical}},
	}
}
