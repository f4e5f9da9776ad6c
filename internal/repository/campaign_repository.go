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

type CampaignRepository struct {
	collection *mongo.Collection
}

func NewCampaignRepository(db *mongo.Database) *CampaignRepository {
	return &CampaignRepository{collection: db.Collection("campaigns")}
}

func (r *CampaignRepository) FindByID(ctx context.Context, id primitive.ObjectID) (*models.Campaign, error) {
	var campaign models.Campaign
	if err := r.collection.FindOne(ctx, bson.M{"_id": id}).Decode(&campaign); err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return &campaign, nil
}

func (r *CampaignRepository) FindByIDs(ctx context.Context, ids []primitive.ObjectID) ([]models.Campaign, error) {
	if len(ids) == 0 {
		return []models.Campaign{}, nil
	}
	return r.find(ctx, bson.M{"_id": bson.M{"$in": ids}}, nil)
}

func (r *CampaignRepository) FindAll(ctx context.Context) ([]models.Campaign, error) {
	return r.find(ctx, bson.M{}, options.Find().SetSort(bson.D{{Key: "start_date", Value: 1}}))
}

func (r *CampaignRepository) FindByUser(ctx context.Context, userID primitive.ObjectID) ([]models.Campaign, error) {
	return r.find(ctx, bson.M{"user_id": userID}, nil)
}

func (r *CampaignRepository) find(ctx context.Context, filter bson.M, opts *options.FindOptions) ([]models.Campaign, error) {
	cur, err := r.collection.Find(ctx, filter, opts)
	if err != nil {
		return nil, err
	}
	defer cur.Close(ctx)

	campaigns := []models.Campaign{}
	if err := cur.All(ctx, &campaigns); err != nil {
		return nil, err
	}
	return campaigns, nil
}

func (r *CampaignRepository) Insert(ctx context.Context, campaign *models.Campaign) error {
	if campaign.ID.IsZero() {
		campaign.ID = primitive.NewObjectID()
	}
	_, err := r.collection.InsertOne(ctx, campaign)
	return err
}

func (r *CampaignRepository) UpdateByID(ctx context.Context, id primitive.ObjectID, updates map[string]interface{}) (*models.Campaign, error) {
	set := bson.M{"updated_on": time.Now().UTC()}
	for k, v := range updates {
		set[k] = v
	}

	opts := options.FindOneAndUpdate().SetReturnDocument(options.After)
	var campaign models.Campaign
	err := r.collection.FindOneAndUpdate(ctx, bson.M{"_id": id}, bson.M{"$set": set}, opts).Decode(&campaign)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return &campaign, nil
}

func (r *CampaignRepository) DeleteByID(ctx context.Context, id primitive.ObjectID) error {
	res, err := r.collection.DeleteOne(ctx, bson.M{"_id": id})
	if err != nil {
		return err
	}
	if res.DeletedCount == 0 {
		return ErrNotFound
	}
	return nil
}
