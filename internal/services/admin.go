package services

import (
	"context"
	"errors"
	"strings"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"

	"github.com/crowdfund/crowdfund-gobackend/internal/apperr"
	"github.com/crowdfund/crowdfund-gobackend/internal/logger"
	"github.com/crowdfund/crowdfund-gobackend/internal/models"
)

type AdminService struct {
	collection *mongo.Collection
	log        *zap.Logger
}

func NewAdminService(db *mongo.Database, log *zap.Logger) *AdminService {
	return &AdminService{collection: db.Collection("admins"), log: log}
}

func (s *AdminService) CreateAdmin(ctx context.Context, req *models.AdminRequest) (*models.Admin, error) {
	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	email := strings.TrimSpace(req.Email)
	if email == "" || req.Password == "" {
		return nil, apperr.Validation("email and password are required")
	}
	hash, err := bcrypt.GenerateFromPassword([]byte(req.Password), bcrypt.DefaultCost)
	if err != nil {
		return nil, apperr.New(apperr.KindInternal, "Failed to create admin", err)
	}

	now := time.Now().UTC()
	admin := &models.Admin{
		ID:        primitive.NewObjectID(),
		Name:      strings.TrimSpace(req.Name),
		Email:     email,
		HPassword: string(hash),
		CreatedOn: now,
		UpdatedOn: now,
	}
	if _, err := s.collection.InsertOne(ctx, admin); err != nil {
		if mongo.IsDuplicateKeyError(err) {
			return nil, apperr.New(apperr.KindConflict, "Email already exists", err)
		}
		return nil, apperr.Persistence("Failed to create admin", err)
	}

	logger.For(ctx, s.log).Info("Admin created", zap.String("admin_id", admin.ID.Hex()))
	return admin, nil
}

func (s *AdminService) AdminList(ctx context.Context) ([]models.Admin, error) {
	ctx, cancel := context.WithTimeout(ctx, 10*time.Second)
	defer cancel()

	cur, err := s.collection.Find(ctx, bson.D{})
	if err != nil {
		return nil, apperr.Persistence("Failed to fetch admins", err)
	}
	defer cur.Close(ctx)

	admins := []models.Admin{}
	if err := cur.All(ctx, &admins); err != nil {
		return nil, apperr.Persistence("Failed to fetch admins", err)
	}
	return admins, nil
}

func (s *AdminService) GetAdmin(ctx context.Context, id string) (*models.Admin, error) {
	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	objID, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return nil, apperr.New(apperr.KindNotFound, "Admin not found", err)
	}

	var admin models.Admin
	if err := s.collection.FindOne(ctx, bson.M{"_id": objID}).Decode(&admin); err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, apperr.NotFound("Admin not found")
		}
		return nil, apperr.Persistence("Failed to fetch admin", err)
	}
	return &admin, nil
}

func (s *AdminService) Exists(ctx context.Context, id primitive.ObjectID) (bool, error) {
	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	count, err := s.collection.CountDocuments(ctx, bson.M{"_id": id}, options.Count().SetLimit(1))
	if err != nil {
		return false, err
	}
	return count > 0, nil
}

// UpdateAdmin replaces name, email and password.
func (s *AdminService) UpdateAdmin(ctx context.Context, id string, req *models.AdminRequest) (*models.Admin, error) {
	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	objID, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return nil, apperr.New(apperr.KindNotFound, "Admin not found", err)
	}
	if strings.TrimSpace(req.Email) == "" || req.Password == "" {
		return nil, apperr.Validation("email and password are required")
	}
	hash, err := bcrypt.GenerateFromPassword([]byte(req.Password), bcrypt.DefaultCost)
	if err != nil {
		return nil, apperr.New(apperr.KindInternal, "Failed to update admin", err)
	}

	set := bson.M{
		"name":       strings.TrimSpace(req.Name),
		"email":      strings.TrimSpace(req.Email),
		"password":   string(hash),
		"updated_on": time.Now().UTC(),
	}
	opts := options.FindOneAndUpdate().SetReturnDocument(options.After)
	var admin models.Admin
	err = s.collection.FindOneAndUpdate(ctx, bson.M{"_id": objID}, bson.M{"$set": set}, opts).Decode(&admin)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, apperr.NotFound("Admin not found")
		}
		return nil, apperr.Persistence("Failed to update admin", err)
	}
	return &admin, nil
}

func (s *AdminService) Login(ctx context.Context, email, password string) (*models.Admin, error) {
	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	var admin models.Admin
	err := s.collection.FindOne(ctx, bson.M{"email": strings.TrimSpace(email)}).Decode(&admin)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, apperr.New(apperr.KindValidation, msgInvalidCredentials, err)
		}
		return nil, apperr.Persistence("Failed to log in", err)
	}
	if err := bcrypt.CompareHashAndPassword([]byte(admin.HPassword), []byte(password)); err != nil {
		return nil, apperr.New(apperr.KindValidation, msgInvalidCredentials, err)
	}
	return &admin, nil
}
