package repository

import (
	"context"

	"github.com/crowdfund/crowdfund-gobackend/internal/models"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
)

type StatusRepository struct {
	collection *mongo.Collection
}

func NewStatusRepository(db *mongo.Database) *StatusRepository {
	return &StatusRepository{collection: db.Collection("campaign_status")}
}

func (r *StatusRepository) FindAll(ctx context.Context) ([]models.CampaignStatus, error) {
	cur, err := r.collection.Find(ctx, bson.D{})
	if err != nil {
		return nil, err
	}
	defer cur.Close(ctx)

	statuses := []models.CampaignStatus{}
	if err := cur.All(ctx, &statuses); err != nil {
		return nil, err
	}
	return statuses, nil
}

type CategoryRepository struct {
	collection *mongo.Collection
}

func NewCategoryRepository(db *mongo.Database) *CategoryRepository {
	return &CategoryRepository{collection: db.Collection("categories")}
}

func (r *CategoryRepository) FindAll(ctx context.Context) ([]models.CampaignCategory, error) {
	cur, err := r.collection.Find(ctx, bson.D{})
	if err != nil {
		return nil, err
	}
	defer cur.Close(ctx)

	categories := []models.CampaignCategory{}
	if err := cur.All(ctx, &categories); err != nil {
		return nil, err
	}
	return categories, nil
}
