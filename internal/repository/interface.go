package repository

import (
	"context"
	"errors"

	"github.com/crowdfund/crowdfund-gobackend/internal/models"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

var ErrNotFound = errors.New("record not found")

// CampaignRepo is the campaigns collection.
type CampaignRepo interface {
	FindByID(ctx context.Context, id primitive.ObjectID) (*models.Campaign, error)
	FindByIDs(ctx context.Context, ids []primitive.ObjectID) ([]models.Campaign, error)
	FindAll(ctx context.Context) ([]models.Campaign, error)
	FindByUser(ctx context.Context, userID primitive.ObjectID) ([]models.Campaign, error)
	Insert(ctx context.Context, campaign *models.Campaign) error
	// UpdateByID applies a $set of updates and returns the updated document.
	UpdateByID(ctx context.Context, id primitive.ObjectID, updates map[string]interface{}) (*models.Campaign, error)
	DeleteByID(ctx context.Context, id primitive.ObjectID) error
}

// StatusRepo is the campaign_status lookup table.
type StatusRepo interface {
	FindAll(ctx context.Context) ([]models.CampaignStatus, error)
}

// CategoryRepo is the categories lookup table.
type CategoryRepo interface {
	FindAll(ctx context.Context) ([]models.CampaignCategory, error)
}

// DonationFilter selects donations. Zero fields are ignored.
type DonationFilter struct {
	CampaignID *primitive.ObjectID
	UserID     *primitive.ObjectID
	Status     string
}

// DonationRepo is the donations collection.
type DonationRepo interface {
	FindByID(ctx context.Context, id primitive.ObjectID) (*models.Donation, error)
	Find(ctx context.Context, filter DonationFilter) ([]models.Donation, error)
	Insert(ctx context.Context, donation *models.Donation) error
	UpdateByID(ctx context.Context, id primitive.ObjectID, updates map[string]interface{}) (*models.Donation, error)
	// DeleteByID removes the donation and returns the deleted document.
	DeleteByID(ctx context.Context, id primitive.ObjectID) (*models.Donation, error)
}

// PaymentDetailsRepo is the payment_details collection.
type PaymentDetailsRepo interface {
	FindByUserID(ctx context.Context, userID primitive.ObjectID) (*models.PaymentDetails, error)
	FindByUserName(ctx context.Context, userName string) (*models.PaymentDetails, error)
	// Save inserts a new record, or pushes the pending payments of an
	// existing one.
	Save(ctx context.Context, details *models.PaymentDetails) error
}

var (
	_ CampaignRepo       = (*CampaignRepository)(nil)
	_ StatusRepo         = (*StatusRepository)(nil)
	_ CategoryRepo       = (*CategoryRepository)(nil)
	_ DonationRepo       = (*DonationRepository)(nil)
	_ PaymentDetailsRepo = (*PaymentDetailsRepository)(nil)
)
