package repository

import (
	"context"
	"errors"

	"github.com/crowdfund/crowdfund-gobackend/internal/models"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
)

type PaymentDetailsRepository struct {
	collection *mongo.Collection
}

func NewPaymentDetailsRepository(db *mongo.Database) *PaymentDetailsRepository {
	return &PaymentDetailsRepository{collection: db.Collection("payment_details")}
}

func (r *PaymentDetailsRepository) FindByUserID(ctx context.Context, userID primitive.ObjectID) (*models.PaymentDetails, error) {
	return r.findOne(ctx, bson.M{"user_id": userID})
}

// FindByUserName matches records without a user_id only, so a registered
// user named like the anonymous bucket never shares it.
func (r *PaymentDetailsRepository) FindByUserName(ctx context.Context, userName string) (*models.PaymentDetails, error) {
	return r.findOne(ctx, bson.M{"user_name": userName, "user_id": nil})
}

func (r *PaymentDetailsRepository) findOne(ctx context.Context, filter bson.M) (*models.PaymentDetails, error) {
	var details models.PaymentDetails
	if err := r.collection.FindOne(ctx, filter).Decode(&details); err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return &details, nil
}

func (r *PaymentDetailsRepository) Save(ctx context.Context, details *models.PaymentDetails) error {
	if details.IsNew() {
		details.ID = primitive.NewObjectID()
		if _, err := r.collection.InsertOne(ctx, details); err != nil {
			details.ID = primitive.NilObjectID
			return err
		}
		details.MarkSaved()
		return nil
	}

	pending := details.Pending()
	if len(pending) == 0 {
		return nil
	}
	update := bson.M{"$push": bson.M{"payments": bson.M{"$each": pending}}}
	res, err := r.collection.UpdateOne(ctx, bson.M{"_id": details.ID}, update)
	if err != nil {
		return err
	}
	if res.MatchedCount == 0 {
		return ErrNotFound
	}
	details.MarkSaved()
	return nil
}
