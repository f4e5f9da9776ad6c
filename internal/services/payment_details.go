package services

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"

	"github.com/crowdfund/crowdfund-gobackend/internal/apperr"
	"github.com/crowdfund/crowdfund-gobackend/internal/models"
	"github.com/crowdfund/crowdfund-gobackend/internal/repository"
)

// PayerKey identifies whose PaymentDetails record a payment belongs to:
// the user's, or the shared anonymous bucket when UserID is nil.
type PayerKey struct {
	UserID *primitive.ObjectID
}

func PayerKeyFor(userID *primitive.ObjectID) PayerKey {
	return PayerKey{UserID: userID}
}

func (k PayerKey) Anonymous() bool {
	return k.UserID == nil
}

func (k PayerKey) String() string {
	if k.Anonymous() {
		return "user_name=" + models.AnonymousUserName
	}
	return "user_id=" + k.UserID.Hex()
}

// PaymentFields are the instrument fields captured with a donation.
type PaymentFields struct {
	PaymentType string
	CardNumber  string
	CardName    string
	ExpiryMonth int
	ExpiryYear  int
	CVV         string
	TotalAmount float64
}

type PaymentDetailsService struct {
	repo repository.PaymentDetailsRepo
	now  func() time.Time
}

func NewPaymentDetailsService(repo repository.PaymentDetailsRepo) *PaymentDetailsService {
	return &PaymentDetailsService{repo: repo, now: func() time.Time { return time.Now().UTC() }}
}

// FindOrCreate returns the record for key, or a new unsaved record with an
// empty payment list. userName is only used for new user records; the
// anonymous bucket is always named "Anonymous".
func (s *PaymentDetailsService) FindOrCreate(ctx context.Context, key PayerKey, userName string) (*models.PaymentDetails, error) {
	var (
		details *models.PaymentDetails
		err     error
	)
	if key.Anonymous() {
		details, err = s.repo.FindByUserName(ctx, models.AnonymousUserName)
	} else {
		details, err = s.repo.FindByUserID(ctx, *key.UserID)
	}
	if err == nil {
		return details, nil
	}
	if !errors.Is(err, repository.ErrNotFound) {
		return nil, fmt.Errorf("find payment details for %s: %w", key, err)
	}

	details = &models.PaymentDetails{
		UserID:   key.UserID,
		UserName: userName,
		Payments: []models.Payment{},
	}
	if key.Anonymous() {
		details.UserName = models.AnonymousUserName
	}
	return details, nil
}

// AppendPayment appends a paid sub-record for donationID to details.
// The caller persists details with Save.
func (s *PaymentDetailsService) AppendPayment(details *models.PaymentDetails, donationID primitive.ObjectID, fields PaymentFields) models.Payment {
	now := s.now()
	payment := models.Payment{
		ID:          primitive.NewObjectID(),
		DonationID:  donationID,
		PaymentType: fields.PaymentType,
		CardNumber:  fields.CardNumber,
		CardName:    fields.CardName,
		ExpiryMonth: fields.ExpiryMonth,
		ExpiryYear:  fields.ExpiryYear,
		CVV:         fields.CVV,
		Status:      models.PaymentStatusPaid,
		TotalAmount: fields.TotalAmount,
		CreatedOn:   now,
		UpdatedOn:   now,
	}
	details.Append(payment)
	return payment
}

func (s *PaymentDetailsService) Save(ctx context.Context, details *models.PaymentDetails) error {
	return s.repo.Save(ctx, details)
}

// ListForPayer returns the saved record for key.
func (s *PaymentDetailsService) ListForPayer(ctx context.Context, key PayerKey) (*models.PaymentDetails, error) {
	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	var (
		details *models.PaymentDetails
		err     error
	)
	if key.Anonymous() {
		details, err = s.repo.FindByUserName(ctx, models.AnonymousUserName)
	} else {
		details, err = s.repo.FindByUserID(ctx, *key.UserID)
	}
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, apperr.NotFound("Payment details not found")
		}
		return nil, apperr.Persistence("Failed to fetch payment details", err)
	}
	return details, nil
}

// ListUserPayments returns the payment record of a registered user with
// card numbers masked.
func (s *PaymentDetailsService) ListUserPayments(ctx context.Context, userID string) (*models.PaymentDetails, error) {
	oid, err := primitive.ObjectIDFromHex(strings.TrimSpace(userID))
	if err != nil {
		return nil, apperr.New(apperr.KindNotFound, "Payment details not found", err)
	}
	details, err := s.ListForPayer(ctx, PayerKeyFor(&oid))
	if err != nil {
		return nil, err
	}
	for i := range details.Payments {
		details.Payments[i].CardNumber = maskCardNumber(details.Payments[i].CardNumber)
	}
	return details, nil
}

// maskCardNumber keeps the last four digits of a card number.
func maskCardNumber(number string) string {
	number = strings.ReplaceAll(strings.TrimSpace(number), " ", "")
	if len(number) <= 4 {
		return strings.Repeat("*", len(number))
	}
	return "****" + number[len(number)-4:]
}
