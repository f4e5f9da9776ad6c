package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

const (
	DonationStatusSuccess   = "Success"
	DonationStatusCancelled = "Cancelled"

	RefundStatusNotApplicable = "Not Applicable"
	RefundStatusRefunded      = "Refunded"

	// AnonymousUserName names donors without an account. All of them share
	// one PaymentDetails record.
	AnonymousUserName = "Anonymous"
)

// Donation is a single contribution to a campaign.
type Donation struct {
	ID             primitive.ObjectID  `bson:"_id,omitempty" json:"_id"`
	CampaignID     primitive.ObjectID  `bson:"campaign_id" json:"campaign_id"`
	UserID         *primitive.ObjectID `bson:"user_id,omitempty" json:"user_id,omitempty"`
	UserName       string              `bson:"user_name" json:"user_name"`
	Amount         float64             `bson:"amount" json:"amount"`
	DonationStatus string              `bson:"donation_status" json:"donation_status"`
	RefundAmount   float64             `bson:"refund_amount" json:"refund_amount"`
	RefundStatus   string              `bson:"refund_status" json:"refund_status"`
	CreatedOn      time.Time           `bson:"created_on" json:"created_on"`
	UpdatedOn      time.Time           `bson:"updated_on" json:"updated_on"`
}

// DonationRequest is the body of POST /campaigns/{id}/donation.
type DonationRequest struct {
	CampaignID     string  `json:"campaign_id"`
	UserID         string  `json:"user_id"`
	UserName       string  `json:"user_name"`
	Amount         float64 `json:"amount"`
	DonationStatus string  `json:"donation_status"`
	PaymentType    string  `json:"payment_type"`
	CardNumber     string  `json:"card_number"`
	CardName       string  `json:"card_name"`
	ExpiryMonth    int     `json:"expiry_month"`
	ExpiryYear     int     `json:"expiry_year"`
	CVV            string  `json:"cvv"`
}

// UserDonation is a donation merged with a snapshot of its campaign.
type UserDonation struct {
	ID             primitive.ObjectID  `json:"_id"`
	UserID         *primitive.ObjectID `json:"user_id,omitempty"`
	DonationStatus string              `json:"donation_status"`
	DonatedAmount  float64             `json:"donated_amount"`
	RefundAmount   float64             `json:"refund_amount"`
	RefundStatus   string              `json:"refund_status"`
	CreatedOn      time.Time           `json:"created_on"`
	UpdatedOn      time.Time           `json:"updated_on"`
	Campaign       *Campaign           `json:"campaign"`
}
