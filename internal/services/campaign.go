package services

import (
	"context"
	"errors"
	"strings"
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.uber.org/zap"

	"github.com/crowdfund/crowdfund-gobackend/internal/apperr"
	"github.com/crowdfund/crowdfund-gobackend/internal/logger"
	"github.com/crowdfund/crowdfund-gobackend/internal/models"
	"github.com/crowdfund/crowdfund-gobackend/internal/repository"
)

// OwnerFinder resolves user accounts by id, for campaign owners and donors.
type OwnerFinder interface {
	FindUsersByIDs(ctx context.Context, ids []primitive.ObjectID) ([]models.User, error)
}

type CampaignService struct {
	campaigns  repository.CampaignRepo
	statuses   repository.StatusRepo
	categories repository.CategoryRepo
	owners     OwnerFinder
	log        *zap.Logger
}

func NewCampaignService(
	campaigns repository.CampaignRepo,
	statuses repository.StatusRepo,
	categories repository.CategoryRepo,
	owners OwnerFinder,
	log *zap.Logger,
) *CampaignService {
	return &CampaignService{
		campaigns:  campaigns,
		statuses:   statuses,
		categories: categories,
		owners:     owners,
		log:        log,
	}
}

// CreateCampaign stores a new campaign with nothing raised. Without a
// status_id the campaign starts "Active" when that status exists.
func (s *CampaignService) CreateCampaign(ctx context.Context, req *models.CampaignRequest) (*models.Campaign, error) {
	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	if req == nil {
		return nil, apperr.Validation("request body is required")
	}
	userID, err := primitive.ObjectIDFromHex(strings.TrimSpace(req.UserID))
	if err != nil {
		return nil, apperr.New(apperr.KindValidation, "invalid user_id", err)
	}
	if req.Title == nil || strings.TrimSpace(*req.Title) == "" {
		return nil, apperr.Validation("title is required")
	}
	if req.Goal == nil || *req.Goal <= 0 {
		return nil, apperr.Validation("goal must be positive")
	}

	now := time.Now().UTC()
	campaign := &models.Campaign{
		ID:           primitive.NewObjectID(),
		UserID:       userID,
		Title:        strings.TrimSpace(*req.Title),
		Goal:         *req.Goal,
		AmountRaised: 0,
		StartDate:    now,
		CreatedOn:    now,
		UpdatedOn:    now,
	}
	if err := applyCampaignFields(campaign, req); err != nil {
		return nil, err
	}

	if campaign.StatusID.IsZero() {
		statuses, err := s.statuses.FindAll(ctx)
		if err != nil {
			return nil, apperr.Persistence("Failed to create campaign", err)
		}
		if id, ok := statusID(statuses, models.CampaignStatusActive); ok {
			campaign.StatusID = id
		}
	}

	if err := s.campaigns.Insert(ctx, campaign); err != nil {
		logger.For(ctx, s.log).Error("Failed to create campaign", zap.Error(err))
		return nil, apperr.Persistence("Failed to create campaign", err)
	}
	logger.For(ctx, s.log).Info("Campaign created",
		zap.String("campaign_id", campaign.ID.Hex()),
		zap.String("user_id", userID.Hex()),
		zap.Float64("goal", campaign.Goal),
	)
	return campaign, nil
}

// applyCampaignFields copies the optional fields of req onto c.
func applyCampaignFields(c *models.Campaign, req *models.CampaignRequest) error {
	if req.Cause != nil {
		c.Cause = *req.Cause
	}
	if req.Description != nil {
		c.Description = *req.Description
	}
	if req.CategoryID != nil && *req.CategoryID != "" {
		id, err := primitive.ObjectIDFromHex(*req.CategoryID)
		if err != nil {
			return apperr.New(apperr.KindValidation, "invalid category_id", err)
		}
		c.CategoryID = id
	}
	if req.StatusID != nil && *req.StatusID != "" {
		id, err := primitive.ObjectIDFromHex(*req.StatusID)
		if err != nil {
			return apperr.New(apperr.KindValidation, "invalid status_id", err)
		}
		c.StatusID = id
	}
	if req.StartDate != nil {
		c.StartDate = *req.StartDate
	}
	if req.EndDate != nil {
		c.EndDate = *req.EndDate
	}
	return nil
}

func (s *CampaignService) ListCampaigns(ctx context.Context) ([]models.Campaign, error) {
	ctx, cancel := context.WithTimeout(ctx, 10*time.Second)
	defer cancel()

	campaigns, err := s.campaigns.FindAll(ctx)
	if err != nil {
		logger.For(ctx, s.log).Error("Failed to fetch campaigns", zap.Error(err))
		return nil, apperr.Persistence("Failed to fetch campaigns", err)
	}
	if campaigns == nil {
		campaigns = []models.Campaign{}
	}
	return campaigns, nil
}

// ListCampaignsWithOwners merges every campaign with its owner's name and
// email. Campaigns of deleted users carry no owner details.
func (s *CampaignService) ListCampaignsWithOwners(ctx context.Context) ([]models.CampaignWithOwner, error) {
	campaigns, err := s.ListCampaigns(ctx)
	if err != nil {
		return nil, err
	}

	ctx, cancel := context.WithTimeout(ctx, 10*time.Second)
	defer cancel()

	ids := make([]primitive.ObjectID, 0, len(campaigns))
	seen := make(map[primitive.ObjectID]bool)
	for _, c := range campaigns {
		if !seen[c.UserID] {
			seen[c.UserID] = true
			ids = append(ids, c.UserID)
		}
	}
	users, err := s.owners.FindUsersByIDs(ctx, ids)
	if err != nil {
		logger.For(ctx, s.log).Error("Failed to fetch campaign owners", zap.Error(err))
		return nil, apperr.Persistence("Failed to fetch campaigns", err)
	}
	owners := make(map[primitive.ObjectID]*models.OwnerDetails, len(users))
	for _, u := range users {
		owners[u.ID] = &models.OwnerDetails{Name: u.Name, Email: u.Email}
	}

	result := make([]models.CampaignWithOwner, 0, len(campaigns))
	for _, c := range campaigns {
		result = append(result, models.CampaignWithOwner{Campaign: c, UserDetails: owners[c.UserID]})
	}
	return result, nil
}

func (s *CampaignService) GetCampaign(ctx context.Context, id string) (*models.Campaign, error) {
	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	oid, err := primitive.ObjectIDFromHex(strings.TrimSpace(id))
	if err != nil {
		return nil, apperr.New(apperr.KindNotFound, "Campaign not found", err)
	}
	campaign, err := s.campaigns.FindByID(ctx, oid)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, apperr.NotFound("Campaign not found")
		}
		return nil, apperr.Persistence("Failed to fetch campaign", err)
	}
	return campaign, nil
}

func (s *CampaignService) ListUserCampaigns(ctx context.Context, userID string) ([]models.Campaign, error) {
	ctx, cancel := context.WithTimeout(ctx, 10*time.Second)
	defer cancel()

	oid, err := primitive.ObjectIDFromHex(strings.TrimSpace(userID))
	if err != nil {
		return nil, apperr.New(apperr.KindNotFound, "No campaigns found for this user", err)
	}
	campaigns, err := s.campaigns.FindByUser(ctx, oid)
	if err != nil {
		logger.For(ctx, s.log).Error("Failed to fetch user campaigns", zap.String("user_id", userID), zap.Error(err))
		return nil, apperr.Persistence("Failed to fetch campaigns", err)
	}
	if len(campaigns) == 0 {
		return nil, apperr.NotFound("No campaigns found for this user")
	}
	return campaigns, nil
}

// UpdateCampaign sets the editable fields present in req. amount_raised and
// the owner are not editable.
func (s *CampaignService) UpdateCampaign(ctx context.Context, id string, req *models.CampaignRequest) (*models.Campaign, error) {
	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	oid, err := primitive.ObjectIDFromHex(strings.TrimSpace(id))
	if err != nil {
		return nil, apperr.New(apperr.KindNotFound, "Campaign not found", err)
	}
	if req == nil {
		return nil, apperr.Validation("request body is required")
	}

	updates := map[string]interface{}{}
	if req.Title != nil {
		updates["title"] = *req.Title
	}
	if req.Cause != nil {
		updates["cause"] = *req.Cause
	}
	if req.Description != nil {
		updates["description"] = *req.Description
	}
	if req.Goal != nil {
		if *req.Goal <= 0 {
			return nil, apperr.Validation("goal must be positive")
		}
		updates["goal"] = *req.Goal
	}
	if req.StartDate != nil {
		updates["start_date"] = *req.StartDate
	}
	if req.EndDate != nil {
		updates["end_date"] = *req.EndDate
	}
	var scratch models.Campaign
	if err := applyCampaignFields(&scratch, &models.CampaignRequest{CategoryID: req.CategoryID, StatusID: req.StatusID}); err != nil {
		return nil, err
	}
	if !scratch.CategoryID.IsZero() {
		updates["category_id"] = scratch.CategoryID
	}
	if !scratch.StatusID.IsZero() {
		updates["status_id"] = scratch.StatusID
	}

	campaign, err := s.campaigns.UpdateByID(ctx, oid, updates)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, apperr.NotFound("Campaign not found")
		}
		logger.For(ctx, s.log).Error("Failed to update campaign", zap.String("campaign_id", id), zap.Error(err))
		return nil, apperr.Persistence("Failed to update campaign", err)
	}
	return campaign, nil
}

func (s *CampaignService) DeleteCampaign(ctx context.Context, id string) error {
	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	oid, err := primitive.ObjectIDFromHex(strings.TrimSpace(id))
	if err != nil {
		return apperr.New(apperr.KindNotFound, "Campaign not found", err)
	}
	if err := s.campaigns.DeleteByID(ctx, oid); err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return apperr.NotFound("Campaign not found")
		}
		logger.For(ctx, s.log).Error("Failed to delete campaign", zap.String("campaign_id", id), zap.Error(err))
		return apperr.Persistence("Failed to delete campaign", err)
	}
	logger.For(ctx, s.log).Info("Campaign deleted", zap.String("campaign_id", id))
	return nil
}

func (s *CampaignService) ListStatuses(ctx context.Context) ([]models.CampaignStatus, error) {
	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	statuses, err := s.statuses.FindAll(ctx)
	if err != nil {
		return nil, apperr.Persistence("Failed to fetch campaign statuses", err)
	}
	if statuses == nil {
		statuses = []models.CampaignStatus{}
	}
	return statuses, nil
}

func (s *CampaignService) ListCategories(ctx context.Context) ([]models.CampaignCategory, error) {
	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	categories, err := s.categories.FindAll(ctx)
	if err != nil {
		return nil, apperr.Persistence("Failed to fetch campaign categories", err)
	}
	if categories == nil {
		categories = []models.CampaignCategory{}
	}
	return categories, nil
}
