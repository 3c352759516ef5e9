package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// IssueStatus enum
type IssueStatus string

const (
	Pending    IssueStatus = "Pending"
	InProgress IssueStatus = "In Progress"
	Resolved   IssueStatus = "Resolved"
	Rejected   IssueStatus = "Rejected"
)

// ValidStatus reports whether s is one of the known issue statuses.
func ValidStatus(s IssueStatus) bool {
	switch s {
	case Pending, InProgress, Resolved, Rejected:
		return true
	}
	return false
}

// Defaults applied when the reporter leaves these fields empty.
const (
	DefaultCategory = "General"
	DefaultPriority = "Normal"
)

// PostedBy is the reporter snapshot captured at submission time. Later profile
// edits do not change it.
type PostedBy struct {
	Email    string `bson:"email" json:"email"`
	Name     string `bson:"name" json:"name"`
	PhotoURL string `bson:"photoUrl,omitempty" json:"photoUrl,omitempty"`
}

// TimelineEntry is one record in an issue's append-only status history.
type TimelineEntry struct {
	Status    IssueStatus `bson:"status" json:"status"`
	Message   string      `bson:"message" json:"message"`
	UpdatedBy string      `bson:"updatedBy" json:"updatedBy"`
	Date      time.Time   `bson:"date" json:"date"`
}

// Issue represents a civic issue reported by a user
type Issue struct {
	ID           primitive.ObjectID `bson:"_id,omitempty" json:"id"`
	Title        string             `bson:"title" json:"title"`
	Description  string             `bson:"description" json:"description"`
	Category     string             `bson:"category" json:"category"`
	Priority     string             `bson:"priority" json:"priority"`
	Location     string             `bson:"location" json:"location"`
	Image        *string            `bson:"image,omitempty" json:"image,omitempty"`
	Status       IssueStatus        `bson:"status" json:"status"`
	PostedBy     PostedBy           `bson:"postedBy" json:"postedBy"`
	Upvotes      int                `bson:"upvotes" json:"upvotes"`
	UpvotedUsers []string           `bson:"upvotedUsers" json:"upvotedUsers"`
	Timeline     []TimelineEntry    `bson:"timeline" json:"timeline"`
	CreatedAt    time.Time          `bson:"createdAt" json:"createdAt"`
	UpdatedAt    time.Time          `bson:"updatedAt" json:"updatedAt"`
}

// HasUpvoted reports whether email is already in the upvote set.
func (i *Issue) HasUpvoted(email string) bool {
	for _, u := range i.UpvotedUsers {
		if u == email {
			return true
		}
	}
	return false
}
