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

const msgInvalidCredentials = "Invalid credentials"

type UserService struct {
	collection *mongo.Collection
	log        *zap.Logger
}

func NewUserService(db *mongo.Database, log *zap.Logger) *UserService {
	return &UserService{collection: db.Collection("users"), log: log}
}

// Register stores a new user with a bcrypt hashed password. Emails are
// unique.
func (s *UserService) Register(ctx context.Context, req *models.RegisterRequest) (*models.User, error) {
	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	email := strings.TrimSpace(req.Email)
	if email == "" || req.Password == "" {
		return nil, apperr.Validation("email and password are required")
	}

	count, err := s.collection.CountDocuments(ctx, bson.M{"email": email})
	if err != nil {
		return nil, apperr.Persistence("Failed to create user", err)
	}
	if count > 0 {
		return nil, apperr.New(apperr.KindConflict, "Email already exists", nil)
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(req.Password), bcrypt.DefaultCost)
	if err != nil {
		return nil, apperr.New(apperr.KindInternal, "Failed to create user", err)
	}

	now := time.Now().UTC()
	user := &models.User{
		ID:        primitive.NewObjectID(),
		Name:      strings.TrimSpace(req.Name),
		Email:     email,
		Phone:     strings.TrimSpace(req.Phone),
		HPassword: string(hash),
		CreatedOn: now,
		UpdatedOn: now,
	}
	if _, err := s.collection.InsertOne(ctx, user); err != nil {
		if mongo.IsDuplicateKeyError(err) {
			return nil, apperr.New(apperr.KindConflict, "Email already exists", err)
		}
		logger.For(ctx, s.log).Error("Failed to insert user", zap.Error(err))
		return nil, apperr.Persistence("Failed to create user", err)
	}

	logger.For(ctx, s.log).Info("User registered", zap.String("user_id", user.ID.Hex()))
	return user, nil
}

// Login checks email and password. Both an unknown email and a wrong
// password report the same error.
func (s *UserService) Login(ctx context.Context, email, password string) (*models.User, error) {
	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	var user models.User
	err := s.collection.FindOne(ctx, bson.M{"email": strings.TrimSpace(email)}).Decode(&user)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, apperr.New(apperr.KindValidation, msgInvalidCredentials, err)
		}
		return nil, apperr.Persistence("Failed to log in", err)
	}

	if err := bcrypt.CompareHashAndPassword([]byte(user.HPassword), []byte(password)); err != nil {
		return nil, apperr.New(apperr.KindValidation, msgInvalidCredentials, err)
	}
	return &user, nil
}

// GetUser by id of type string
func (s *UserService) GetUser(ctx context.Context, id string) (*models.User, error) {
	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	objID, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return nil, apperr.New(apperr.KindNotFound, "User not found", err)
	}

	var user models.User
	err = s.collection.FindOne(ctx, bson.M{"_id": objID}).Decode(&user)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, apperr.NotFound("User not found")
		}
		return nil, apperr.Persistence("Failed to fetch user", err)
	}

	return &user, nil
}

// Exists reports whether a user with id is still registered.
func (s *UserService) Exists(ctx context.Context, id primitive.ObjectID) (bool, error) {
	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	count, err := s.collection.CountDocuments(ctx, bson.M{"_id": id}, options.Count().SetLimit(1))
	if err != nil {
		return false, err
	}
	return count > 0, nil
}

func (s *UserService) UserList(ctx context.Context) ([]models.UserWithRole, error) {
	ctx, cancel := context.WithTimeout(ctx, 10*time.Second)
	defer cancel()

	option := bson.D{
		{Key: "password", Value: 0},
	}
	cur, err := s.collection.Find(ctx, bson.D{}, options.Find().SetProjection(option))
	if err != nil {
		return nil, apperr.Persistence("Server error", err)
	}

	var users []models.User
	defer cur.Close(ctx)

	if err := cur.All(ctx, &users); err != nil {
		return nil, apperr.Persistence("Server error", err)
	}

	result := make([]models.UserWithRole, 0, len(users))
	for _, u := range users {
		result = append(result, models.UserWithRole{User: u, Role: models.RoleUser})
	}
	return result, nil
}

// FindUsersByIDs returns the users among ids, without password hashes.
func (s *UserService) FindUsersByIDs(ctx context.Context, ids []primitive.ObjectID) ([]models.User, error) {
	if len(ids) == 0 {
		return nil, nil
	}
	opts := options.Find().SetProjection(bson.D{{Key: "password", Value: 0}})
	cur, err := s.collection.Find(ctx, bson.M{"_id": bson.M{"$in": ids}}, opts)
	if err != nil {
		return nil, err
	}
	defer cur.Close(ctx)

	var users []models.User
	if err := cur.All(ctx, &users); err != nil {
		return nil, err
	}
	return users, nil
}

// UpdateUser changes name, email and phone. Blank fields keep their value.
func (s *UserService) UpdateUser(ctx context.Context, id string, req *models.UpdateUserRequest) (*models.User, error) {
	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	objID, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return nil, apperr.New(apperr.KindNotFound, "User not found", err)
	}

	set := bson.M{"updated_on": time.Now().UTC()}
	if v := strings.TrimSpace(req.Name); v != "" {
		set["name"] = v
	}
	if v := strings.TrimSpace(req.Email); v != "" {
		set["email"] = v
	}
	if v := strings.TrimSpace(req.Phone); v != "" {
		set["phone"] = v
	}

	opts := options.FindOneAndUpdate().SetReturnDocument(options.After)
	var user models.User
	err = s.collection.FindOneAndUpdate(ctx, bson.M{"_id": objID}, bson.M{"$set": set}, opts).Decode(&user)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, apperr.NotFound("User not found")
		}
		if mongo.IsDuplicateKeyError(err) {
			return nil, apperr.New(apperr.KindConflict, "Email already exists", err)
		}
		return nil, apperr.Persistence("Failed to update user", err)
	}
	return &user, nil
}

// DeleteUser removes a user document from the database by its id. Their
// campaigns and donations are kept.
func (s *UserService) DeleteUser(ctx context.Context, id string) error {
	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	objID, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return apperr.New(apperr.KindNotFound, "User not found", err)
	}

	result, err := s.collection.DeleteOne(ctx, bson.M{"_id": objID})
	if err != nil {
		return apperr.Persistence("Server error", err)
	}
	if result.DeletedCount == 0 {
		return apperr.NotFound("User not found")
	}

	logger.For(ctx, s.log).Info("User deleted", zap.String("user_id", id))
	return nil
}
