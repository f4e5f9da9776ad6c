package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

const (
	CampaignStatusCompleted = "Completed"
	CampaignStatusActive    = "Active"
)

// Campaign is a fundraising goal owned by a user.
type Campaign struct {
	ID           primitive.ObjectID `bson:"_id,omitempty" json:"_id"`
	UserID       primitive.ObjectID `bson:"user_id" json:"user_id"`
	Title        string             `bson:"title" json:"title"`
	Cause        string             `bson:"cause" json:"cause"`
	Description  string             `bson:"description" json:"description"`
	CategoryID   primitive.ObjectID `bson:"category_id" json:"category_id"`
	Goal         float64            `bson:"goal" json:"goal"`
	StartDate    time.Time          `bson:"start_date" json:"start_date"`
	EndDate      time.Time          `bson:"end_date" json:"end_date"`
	StatusID     primitive.ObjectID `bson:"status_id" json:"status_id"`
	AmountRaised float64            `bson:"amount_raised" json:"amount_raised"`
	CreatedOn    time.Time          `bson:"created_on" json:"created_on"`
	UpdatedOn    time.Time          `bson:"updated_on" json:"updated_on"`
}

// CampaignStatus is a row of the campaign status lookup table.
type CampaignStatus struct {
	ID     primitive.ObjectID `bson:"_id,omitempty" json:"_id"`
	Status string             `bson:"status" json:"status"`
}

type CampaignCategory struct {
	ID       primitive.ObjectID `bson:"_id,omitempty" json:"_id"`
	Category string             `bson:"category" json:"category"`
}

// CampaignRequest is the body of campaign create and update requests.
// Pointer fields are only applied on update when present.
type CampaignRequest struct {
	UserID      string     `json:"user_id"`
	Title       *string    `json:"title"`
	Cause       *string    `json:"cause"`
	Description *string    `json:"description"`
	CategoryID  *string    `json:"category_id"`
	Goal        *float64   `json:"goal"`
	StartDate   *time.Time `json:"start_date"`
	EndDate     *time.Time `json:"end_date"`
	StatusID    *string    `json:"status_id"`
}

type OwnerDetails struct {
	Name  string `json:"name"`
	Email string `json:"email"`
}

// CampaignWithOwner is a campaign merged with its owner's name and email.
type CampaignWithOwner struct {
	Campaign
	UserDetails *OwnerDetails `json:"user_details"`
}
