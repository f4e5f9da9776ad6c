package repository

import (
	"context"
	"errors"
	"time"

	"github.com/crowdfund/crowdfund-gobackend/internal/models"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

type DonationRepository struct {
	collection *mongo.Collection
}

func NewDonationRepository(db *mongo.Database) *DonationRepository {
	return &DonationRepository{collection: db.Collection("donations")}
}

func (r *DonationRepository) FindByID(ctx context.Context, id primitive.ObjectID) (*models.Donation, error) {
	var donation models.Donation
	if err := r.collection.FindOne(ctx, bson.M{"_id": id}).Decode(&donation); err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return &donation, nil
}

func (r *DonationRepository) Find(ctx context.Context, filter DonationFilter) ([]models.Donation, error) {
	query := bson.M{}
	if filter.CampaignID != nil {
		query["campaign_id"] = *filter.CampaignID
	}
	if filter.UserID != nil {
		query["user_id"] = *filter.UserID
	}
	if filter.Status != "" {
		query["donation_status"] = filter.Status
	}

	cur, err := r.collection.Find(ctx, query, options.Find().SetSort(bson.D{{Key: "created_on", Value: 1}}))
	if err != nil {
		return nil, err
	}
	defer cur.Close(ctx)

	donations := []models.Donation{}
	if err := cur.All(ctx, &donations); err != nil {
		return nil, err
	}
	return donations, nil
}

func (r *DonationRepository) Insert(ctx context.Context, donation *models.Donation) error {
	if donation.ID.IsZero() {
		donation.ID = primitive.NewObjectID()
	}
	_, err := r.collection.InsertOne(ctx, donation)
	return err
}

func (r *DonationRepository) UpdateByID(ctx context.Context, id primitive.ObjectID, updates map[string]interface{}) (*models.Donation, error) {
	set := bson.M{"updated_on": time.Now().UTC()}
	for k, v := range updates {
		set[k] = v
	}

	opts := options.FindOneAndUpdate().SetReturnDocument(options.After)
	var donation models.Donation
	err := r.collection.FindOneAndUpdate(ctx, bson.M{"_id": id}, bson.M{"$set": set}, opts).Decode(&donation)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return &donation, nil
}

func (r *DonationRepository) DeleteByID(ctx context.Context, id primitive.ObjectID) (*models.Donation, error) {
	var donation models.Donation
	if err := r.collection.FindOneAndDelete(ctx, bson.M{"_id": id}).Decode(&donation); err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return &donation, nil
}
