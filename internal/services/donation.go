package services

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.uber.org/zap"

	"github.com/crowdfund/crowdfund-gobackend/internal/apperr"
	"github.com/crowdfund/crowdfund-gobackend/internal/events"
	"github.com/crowdfund/crowdfund-gobackend/internal/ledger"
	"github.com/crowdfund/crowdfund-gobackend/internal/logger"
	"github.com/crowdfund/crowdfund-gobackend/internal/models"
	"github.com/crowdfund/crowdfund-gobackend/internal/repository"
)

const (
	msgCreateFailed       = "Failed to create donation"
	msgUpdateFailed       = "Failed to update donation"
	msgDonationNotFound   = "Donation not found"
	msgNoCampaignDonation = "No donations found for the campaign"
	msgNoUserDonation     = "No donations found for the user ID."
)

// cancelOverridable lists the donation fields a cancel request may set,
// with a check of the JSON value type.
var cancelOverridable = map[string]func(interface{}) bool{
	"user_name":       isString,
	"donation_status": isString,
	"refund_status":   isString,
	"refund_amount":   isNumber,
}

// DonationService runs the donation lifecycle: create, cancel and delete,
// and keeps the owning campaign's amount_raised in step.
//
// The writes of one operation are sequential and not transactional. A
// failing step aborts the remaining ones and earlier writes are kept.
// Balance updates are read-modify-write without a concurrency token, so
// concurrent operations on one campaign can lose updates.
type DonationService struct {
	donations repository.DonationRepo
	campaigns repository.CampaignRepo
	statuses  repository.StatusRepo
	payments  *PaymentDetailsService
	accounts  OwnerFinder
	events    events.Publisher
	log       *zap.Logger
	now       func() time.Time
}

func NewDonationService(
	donations repository.DonationRepo,
	campaigns repository.CampaignRepo,
	statuses repository.StatusRepo,
	payments *PaymentDetailsService,
	accounts OwnerFinder,
	publisher events.Publisher,
	log *zap.Logger,
) *DonationService {
	if publisher == nil {
		publisher = events.NopPublisher{}
	}
	return &DonationService{
		donations: donations,
		campaigns: campaigns,
		statuses:  statuses,
		payments:  payments,
		accounts:  accounts,
		events:    publisher,
		log:       log,
		now:       func() time.Time { return time.Now().UTC() },
	}
}

// CreateDonation records a donation, credits the campaign and appends the
// payment to the payer's PaymentDetails. Every failure is reported with the
// same client message.
func (s *DonationService) CreateDonation(ctx context.Context, req *models.DonationRequest) (*models.Donation, error) {
	ctx, cancel := context.WithTimeout(ctx, 10*time.Second)
	defer cancel()
	log := logger.For(ctx, s.log)

	donation, err := s.newDonation(req)
	if err != nil {
		log.Warn("Invalid donation request", zap.Error(err))
		return nil, apperr.New(apperr.KindOf(err), msgCreateFailed, err)
	}
	if donation.UserName == "" {
		name, err := s.accountName(ctx, *donation.UserID)
		if err != nil {
			log.Warn("Cannot name donor", zap.String("user_id", donation.UserID.Hex()), zap.Error(err))
			return nil, apperr.New(apperr.KindOf(err), msgCreateFailed, err)
		}
		donation.UserName = name
	}
	log.Info("Creating donation",
		zap.String("donation_id", donation.ID.Hex()),
		zap.String("campaign_id", donation.CampaignID.Hex()),
		zap.Float64("amount", donation.Amount),
		zap.String("payment_type", req.PaymentType),
		zap.String("card_number", maskCardNumber(req.CardNumber)),
	)

	campaign, err := s.campaigns.FindByID(ctx, donation.CampaignID)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			log.Warn("Campaign not found", zap.String("campaign_id", donation.CampaignID.Hex()))
			return nil, apperr.New(apperr.KindNotFound, msgCreateFailed, err)
		}
		log.Error("Failed to fetch campaign", zap.Error(err))
		return nil, apperr.Persistence(msgCreateFailed, err)
	}

	// Looked up by value on every donation.
	statuses, err := s.statuses.FindAll(ctx)
	if err != nil {
		log.Error("Failed to fetch campaign statuses", zap.Error(err))
		return nil, apperr.Persistence(msgCreateFailed, err)
	}

	entry := ledger.Credit(campaign.AmountRaised, donation.Amount, campaign.Goal)
	updates := map[string]interface{}{"amount_raised": entry.AmountRaised}
	if entry.Completed {
		completedID, ok := statusID(statuses, models.CampaignStatusCompleted)
		if !ok {
			err := fmt.Errorf("campaign status %q is not configured", models.CampaignStatusCompleted)
			log.Error("Cannot complete campaign", zap.Error(err))
			return nil, apperr.New(apperr.KindInternal, msgCreateFailed, err)
		}
		updates["status_id"] = completedID
	}

	if _, err := s.campaigns.UpdateByID(ctx, campaign.ID, updates); err != nil {
		log.Error("Failed to update campaign balance", zap.String("campaign_id", campaign.ID.Hex()), zap.Error(err))
		return nil, apperr.Persistence(msgCreateFailed, err)
	}

	// The campaign is credited from here on; later failures do not undo it.
	key := PayerKeyFor(donation.UserID)
	details, err := s.payments.FindOrCreate(ctx, key, donation.UserName)
	if err != nil {
		log.Error("Failed to resolve payment details", zap.Stringer("payer", key), zap.Error(err))
		return nil, apperr.Persistence(msgCreateFailed, err)
	}
	s.payments.AppendPayment(details, donation.ID, PaymentFields{
		PaymentType: req.PaymentType,
		CardNumber:  req.CardNumber,
		CardName:    req.CardName,
		ExpiryMonth: req.ExpiryMonth,
		ExpiryYear:  req.ExpiryYear,
		CVV:         req.CVV,
		TotalAmount: donation.Amount,
	})
	if err := s.payments.Save(ctx, details); err != nil {
		log.Error("Failed to save payment details", zap.Stringer("payer", key), zap.Error(err))
		return nil, apperr.Persistence(msgCreateFailed, err)
	}

	if err := s.donations.Insert(ctx, donation); err != nil {
		log.Error("Failed to save donation", zap.String("donation_id", donation.ID.Hex()), zap.Error(err))
		return nil, apperr.Persistence(msgCreateFailed, err)
	}

	log.Info("Donation created",
		zap.String("donation_id", donation.ID.Hex()),
		zap.Float64("amount_raised", entry.AmountRaised),
		zap.Bool("completed", entry.Completed),
	)
	s.publish(ctx, events.DonationCreated, donation, &entry.AmountRaised)
	return donation, nil
}

func (s *DonationService) newDonation(req *models.DonationRequest) (*models.Donation, error) {
	if req == nil {
		return nil, apperr.Validation("request body is required")
	}
	campaignID, err := primitive.ObjectIDFromHex(strings.TrimSpace(req.CampaignID))
	if err != nil {
		return nil, apperr.New(apperr.KindValidation, "invalid campaign_id", err)
	}
	if req.Amount <= 0 {
		return nil, apperr.Validation("amount must be positive")
	}

	var userID *primitive.ObjectID
	if id := strings.TrimSpace(req.UserID); id != "" {
		oid, err := primitive.ObjectIDFromHex(id)
		if err != nil {
			return nil, apperr.New(apperr.KindValidation, "invalid user_id", err)
		}
		userID = &oid
	}

	userName := strings.TrimSpace(req.UserName)
	if userID == nil && userName == "" {
		userName = models.AnonymousUserName
	}
	status := strings.TrimSpace(req.DonationStatus)
	if status == "" {
		status = models.DonationStatusSuccess
	}

	now := s.now()
	return &models.Donation{
		ID:             primitive.NewObjectID(),
		CampaignID:     campaignID,
		UserID:         userID,
		UserName:       userName,
		Amount:         req.Amount,
		DonationStatus: status,
		RefundAmount:   0,
		RefundStatus:   models.RefundStatusNotApplicable,
		CreatedOn:      now,
		UpdatedOn:      now,
	}, nil
}

// accountName looks up the name of a registered donor who sent none.
func (s *DonationService) accountName(ctx context.Context, userID primitive.ObjectID) (string, error) {
	users, err := s.accounts.FindUsersByIDs(ctx, []primitive.ObjectID{userID})
	if err != nil {
		return "", apperr.Persistence(msgCreateFailed, err)
	}
	if len(users) == 0 || strings.TrimSpace(users[0].Name) == "" {
		return "", apperr.Validation("user_name is required")
	}
	return users[0].Name, nil
}

// CancelDonation marks a donation cancelled and fully refunded, then debits
// the campaign by the part that was not refunded before. Fields in
// overrides are applied on top of the cancellation fields. A completed
// campaign stays completed.
func (s *DonationService) CancelDonation(ctx context.Context, id string, overrides map[string]interface{}) (*models.Donation, error) {
	ctx, cancel := context.WithTimeout(ctx, 10*time.Second)
	defer cancel()
	log := logger.For(ctx, s.log)

	oid, err := primitive.ObjectIDFromHex(strings.TrimSpace(id))
	if err != nil {
		return nil, apperr.New(apperr.KindNotFound, msgDonationNotFound, err)
	}

	donation, err := s.donations.FindByID(ctx, oid)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, apperr.NotFound(msgDonationNotFound)
		}
		log.Error("Failed to fetch donation", zap.String("donation_id", id), zap.Error(err))
		return nil, apperr.Persistence(msgUpdateFailed, err)
	}

	refund := ledger.RefundDelta(donation.Amount, donation.RefundAmount)

	updates := map[string]interface{}{
		"donation_status": models.DonationStatusCancelled,
		"refund_amount":   donation.Amount,
		"refund_status":   models.RefundStatusRefunded,
	}
	for field, value := range overrides {
		valid, known := cancelOverridable[field]
		if !known {
			log.Warn("Ignoring cancel override", zap.String("field", field))
			continue
		}
		if !valid(value) {
			log.Warn("Rejected cancel override", zap.String("donation_id", id), zap.String("field", field))
			return nil, apperr.New(apperr.KindValidation, msgUpdateFailed, fmt.Errorf("invalid value for %s", field))
		}
		updates[field] = value
	}

	updated, err := s.donations.UpdateByID(ctx, oid, updates)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, apperr.NotFound(msgDonationNotFound)
		}
		log.Error("Failed to cancel donation", zap.String("donation_id", id), zap.Error(err))
		return nil, apperr.Persistence(msgUpdateFailed, err)
	}

	raised, err := s.debitCampaign(ctx, donation.CampaignID, refund)
	if err != nil {
		log.Error("Failed to debit campaign", zap.String("campaign_id", donation.CampaignID.Hex()), zap.Error(err))
		return nil, apperr.Persistence(msgUpdateFailed, err)
	}

	log.Info("Donation cancelled",
		zap.String("donation_id", id),
		zap.Float64("refund_delta", refund),
	)
	s.publish(ctx, events.DonationCancelled, updated, raised)
	return updated, nil
}

// DeleteDonation removes a donation and debits its full amount from the
// campaign, whatever was refunded before. Payment details are kept.
func (s *DonationService) DeleteDonation(ctx context.Context, id string) (*models.Donation, error) {
	ctx, cancel := context.WithTimeout(ctx, 10*time.Second)
	defer cancel()
	log := logger.For(ctx, s.log)

	oid, err := primitive.ObjectIDFromHex(strings.TrimSpace(id))
	if err != nil {
		return nil, apperr.New(apperr.KindNotFound, msgDonationNotFound, err)
	}

	deleted, err := s.donations.DeleteByID(ctx, oid)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, apperr.NotFound(msgDonationNotFound)
		}
		log.Error("Failed to delete donation", zap.String("donation_id", id), zap.Error(err))
		return nil, apperr.Persistence("Failed to delete donation", err)
	}

	// Full amount, even when the donation was already refunded.
	raised, err := s.debitCampaign(ctx, deleted.CampaignID, deleted.Amount)
	if err != nil {
		log.Error("Failed to debit campaign", zap.String("campaign_id", deleted.CampaignID.Hex()), zap.Error(err))
		return nil, apperr.Persistence("Failed to delete donation", err)
	}

	log.Info("Donation deleted", zap.String("donation_id", id), zap.Float64("amount", deleted.Amount))
	s.publish(ctx, events.DonationDeleted, deleted, raised)
	return deleted, nil
}

// debitCampaign subtracts amount from the campaign's amount_raised. A
// missing campaign is skipped and reported with a nil total.
func (s *DonationService) debitCampaign(ctx context.Context, campaignID primitive.ObjectID, amount float64) (*float64, error) {
	campaign, err := s.campaigns.FindByID(ctx, campaignID)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			logger.For(ctx, s.log).Info("Campaign no longer exists, skipping balance update",
				zap.String("campaign_id", campaignID.Hex()))
			return nil, nil
		}
		return nil, err
	}

	raised := ledger.Debit(campaign.AmountRaised, amount)
	if _, err := s.campaigns.UpdateByID(ctx, campaignID, map[string]interface{}{"amount_raised": raised}); err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &raised, nil
}

// ListCampaignDonations returns the successful donations of a campaign.
func (s *DonationService) ListCampaignDonations(ctx context.Context, campaignID string) ([]models.Donation, error) {
	ctx, cancel := context.WithTimeout(ctx, 10*time.Second)
	defer cancel()

	oid, err := primitive.ObjectIDFromHex(strings.TrimSpace(campaignID))
	if err != nil {
		return nil, apperr.New(apperr.KindNotFound, msgNoCampaignDonation, err)
	}

	donations, err := s.donations.Find(ctx, repository.DonationFilter{CampaignID: &oid, Status: models.DonationStatusSuccess})
	if err != nil {
		logger.For(ctx, s.log).Error("Failed to fetch campaign donations", zap.String("campaign_id", campaignID), zap.Error(err))
		return nil, apperr.Persistence("Failed to fetch donations", err)
	}
	if len(donations) == 0 {
		return nil, apperr.NotFound(msgNoCampaignDonation)
	}
	return donations, nil
}

// ListUserDonations returns a user's donations merged with their campaigns.
// Donations of deleted campaigns carry a nil campaign.
func (s *DonationService) ListUserDonations(ctx context.Context, userID string) ([]models.UserDonation, error) {
	ctx, cancel := context.WithTimeout(ctx, 10*time.Second)
	defer cancel()
	log := logger.For(ctx, s.log)

	oid, err := primitive.ObjectIDFromHex(strings.TrimSpace(userID))
	if err != nil {
		return nil, apperr.New(apperr.KindNotFound, msgNoUserDonation, err)
	}

	donations, err := s.donations.Find(ctx, repository.DonationFilter{UserID: &oid})
	if err != nil {
		log.Error("Failed to fetch user donations", zap.String("user_id", userID), zap.Error(err))
		return nil, apperr.Persistence("Failed to fetch donations", err)
	}
	if len(donations) == 0 {
		return nil, apperr.NotFound(msgNoUserDonation)
	}

	ids := make([]primitive.ObjectID, 0, len(donations))
	seen := make(map[primitive.ObjectID]bool, len(donations))
	for _, d := range donations {
		if !seen[d.CampaignID] {
			seen[d.CampaignID] = true
			ids = append(ids, d.CampaignID)
		}
	}
	campaigns, err := s.campaigns.FindByIDs(ctx, ids)
	if err != nil {
		log.Error("Failed to fetch donation campaigns", zap.Error(err))
		return nil, apperr.Persistence("Failed to fetch donations", err)
	}
	byID := make(map[primitive.ObjectID]*models.Campaign, len(campaigns))
	for i := range campaigns {
		byID[campaigns[i].ID] = &campaigns[i]
	}

	result := make([]models.UserDonation, 0, len(donations))
	for _, d := range donations {
		result = append(result, models.UserDonation{
			ID:             d.ID,
			UserID:         d.UserID,
			DonationStatus: d.DonationStatus,
			DonatedAmount:  d.Amount,
			RefundAmount:   d.RefundAmount,
			RefundStatus:   d.RefundStatus,
			CreatedOn:      d.CreatedOn,
			UpdatedOn:      d.UpdatedOn,
			Campaign:       byID[d.CampaignID],
		})
	}
	return result, nil
}

func (s *DonationService) ListDonations(ctx context.Context) ([]models.Donation, error) {
	ctx, cancel := context.WithTimeout(ctx, 10*time.Second)
	defer cancel()

	donations, err := s.donations.Find(ctx, repository.DonationFilter{})
	if err != nil {
		logger.For(ctx, s.log).Error("Failed to fetch donations", zap.Error(err))
		return nil, apperr.Persistence("Failed to fetch donations", err)
	}
	return donations, nil
}

func (s *DonationService) GetDonation(ctx context.Context, id string) (*models.Donation, error) {
	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	oid, err := primitive.ObjectIDFromHex(strings.TrimSpace(id))
	if err != nil {
		return nil, apperr.New(apperr.KindNotFound, msgDonationNotFound, err)
	}
	donation, err := s.donations.FindByID(ctx, oid)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, apperr.NotFound(msgDonationNotFound)
		}
		return nil, apperr.Persistence("Failed to fetch donation", err)
	}
	return donation, nil
}

// publish sends a lifecycle event. Failures are logged only.
func (s *DonationService) publish(ctx context.Context, eventType string, d *models.Donation, raised *float64) {
	event := events.DonationEvent{
		Type:         eventType,
		DonationID:   d.ID.Hex(),
		CampaignID:   d.CampaignID.Hex(),
		Amount:       d.Amount,
		AmountRaised: raised,
		OccurredAt:   s.now(),
	}
	if err := s.events.Publish(ctx, event); err != nil {
		logger.For(ctx, s.log).Warn("Failed to publish donation event",
			zap.String("type", eventType),
			zap.String("donation_id", event.DonationID),
			zap.Error(err),
		)
	}
}

func statusID(statuses []models.CampaignStatus, value string) (primitive.ObjectID, bool) {
	for _, st := range statuses {
		if st.Status == value {
			return st.ID, true
		}
	}
	return primitive.NilObjectID, false
}

func isString(v interface{}) bool {
	_, ok := v.(string)
	return ok
}

func isNumber(v interface{}) bool {
	switch v.(type) {
	case float64, float32, int, int32, int64:
		return true
	}
	return false
}
