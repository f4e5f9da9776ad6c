package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

const PaymentStatusPaid = "Paid"

// Payment is the instrument record captured for one donation.
type Payment struct {
	ID          primitive.ObjectID `bson:"_id" json:"_id"`
	DonationID  primitive.ObjectID `bson:"donation_id" json:"donation_id"`
	PaymentType string             `bson:"payment_type" json:"payment_type"`
	CardNumber  string             `bson:"card_number" json:"card_number"`
	CardName    string             `bson:"card_name" json:"card_name"`
	ExpiryMonth int                `bson:"expiry_month" json:"expiry_month"`
	ExpiryYear  int                `bson:"expiry_year" json:"expiry_year"`
	CVV         string             `bson:"cvv" json:"-"`
	Status      string             `bson:"status" json:"status"`
	TotalAmount float64            `bson:"total_amount" json:"total_amount"`
	CreatedOn   time.Time          `bson:"created_on" json:"created_on"`
	UpdatedOn   time.Time          `bson:"updated_on" json:"updated_on"`
}

// PaymentDetails aggregates the payments of one payer: a user, or the
// shared anonymous bucket.
type PaymentDetails struct {
	ID       primitive.ObjectID  `bson:"_id,omitempty" json:"_id"`
	UserID   *primitive.ObjectID `bson:"user_id" json:"user_id"`
	UserName string              `bson:"user_name" json:"user_name"`
	Payments []Payment           `bson:"payments" json:"payments"`

	pending []Payment
}

// IsNew reports whether the record has never been saved.
func (d *PaymentDetails) IsNew() bool {
	return d.ID.IsZero()
}

// Append adds p to the payment list and remembers it as unsaved.
func (d *PaymentDetails) Append(p Payment) {
	d.Payments = append(d.Payments, p)
	d.pending = append(d.pending, p)
}

// Pending returns the payments appended since the last save.
func (d *PaymentDetails) Pending() []Payment {
	return d.pending
}

func (d *PaymentDetails) MarkSaved() {
	d.pending = nil
}
