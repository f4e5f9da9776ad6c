package services

import (
	"context"
	"errors"
	"sort"
	"sync"
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"

	"github.com/crowdfund/crowdfund-gobackend/internal/events"
	"github.com/crowdfund/crowdfund-gobackend/internal/models"
	"github.com/crowdfund/crowdfund-gobackend/internal/repository"
)

var errStore = errors.New("store unavailable")

type memCampaigns struct {
	mu        sync.Mutex
	docs      map[primitive.ObjectID]models.Campaign
	updateErr error
	inserted  int
}

func newMemCampaigns(campaigns ...models.Campaign) *memCampaigns {
	m := &memCampaigns{docs: map[primitive.ObjectID]models.Campaign{}}
	for _, c := range campaigns {
		m.docs[c.ID] = c
	}
	return m
}

func (m *memCampaigns) get(id primitive.ObjectID) models.Campaign {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.docs[id]
}

func (m *memCampaigns) FindByID(_ context.Context, id primitive.ObjectID) (*models.Campaign, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	c, ok := m.docs[id]
	if !ok {
		return nil, repository.ErrNotFound
	}
	return &c, nil
}

func (m *memCampaigns) FindByIDs(_ context.Context, ids []primitive.ObjectID) ([]models.Campaign, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var out []models.Campaign
	for _, id := range ids {
		if c, ok := m.docs[id]; ok {
			out = append(out, c)
		}
	}
	return out, nil
}

func (m *memCampaigns) FindAll(_ context.Context) ([]models.Campaign, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make([]models.Campaign, 0, len(m.docs))
	for _, c := range m.docs {
		out = append(out, c)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].StartDate.Before(out[j].StartDate) })
	return out, nil
}

func (m *memCampaigns) FindByUser(_ context.Context, userID primitive.ObjectID) ([]models.Campaign, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var out []models.Campaign
	for _, c := range m.docs {
		if c.UserID == userID {
			out = append(out, c)
		}
	}
	return out, nil
}

func (m *memCampaigns) Insert(_ context.Context, c *models.Campaign) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if c.ID.IsZero() {
		c.ID = primitive.NewObjectID()
	}
	m.docs[c.ID] = *c
	m.inserted++
	return nil
}

func (m *memCampaigns) UpdateByID(_ context.Context, id primitive.ObjectID, updates map[string]interface{}) (*models.Campaign, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.updateErr != nil {
		return nil, m.updateErr
	}
	c, ok := m.docs[id]
	if !ok {
		return nil, repository.ErrNotFound
	}
	for k, v := range updates {
		switch k {
		case "amount_raised":
			c.AmountRaised = v.(float64)
		case "status_id":
			c.StatusID = v.(primitive.ObjectID)
		case "title":
			c.Title = v.(string)
		case "cause":
			c.Cause = v.(string)
		case "description":
			c.Description = v.(string)
		case "category_id":
			c.CategoryID = v.(primitive.ObjectID)
		case "goal":
			c.Goal = v.(float64)
		case "start_date":
			c.StartDate = v.(time.Time)
		case "end_date":
			c.EndDate = v.(time.Time)
		}
	}
	m.docs[id] = c
	return &c, nil
}

func (m *memCampaigns) DeleteByID(_ context.Context, id primitive.ObjectID) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.docs[id]; !ok {
		return repository.ErrNotFound
	}
	delete(m.docs, id)
	return nil
}

type memStatuses struct {
	statuses []models.CampaignStatus
	err      error
}

func (m *memStatuses) FindAll(context.Context) ([]models.CampaignStatus, error) {
	return m.statuses, m.err
}

type memCategories struct {
	categories []models.CampaignCategory
}

func (m *memCategories) FindAll(context.Context) ([]models.CampaignCategory, error) {
	return m.categories, nil
}

type memDonations struct {
	mu        sync.Mutex
	docs      map[primitive.ObjectID]models.Donation
	order     []primitive.ObjectID
	insertErr error
}

func newMemDonations() *memDonations {
	return &memDonations{docs: map[primitive.ObjectID]models.Donation{}}
}

func (m *memDonations) put(d models.Donation) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.docs[d.ID] = d
	m.order = append(m.order, d.ID)
}

func (m *memDonations) count() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.docs)
}

func (m *memDonations) FindByID(_ context.Context, id primitive.ObjectID) (*models.Donation, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	d, ok := m.docs[id]
	if !ok {
		return nil, repository.ErrNotFound
	}
	return &d, nil
}

func (m *memDonations) Find(_ context.Context, f repository.DonationFilter) ([]models.Donation, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var out []models.Donation
	for _, id := range m.order {
		d, ok := m.docs[id]
		if !ok {
			continue
		}
		if f.CampaignID != nil && d.CampaignID != *f.CampaignID {
			continue
		}
		if f.UserID != nil && (d.UserID == nil || *d.UserID != *f.UserID) {
			continue
		}
		if f.Status != "" && d.DonationStatus != f.Status {
			continue
		}
		out = append(out, d)
	}
	return out, nil
}

func (m *memDonations) Insert(_ context.Context, d *models.Donation) error {
	if m.insertErr != nil {
		return m.insertErr
	}
	m.put(*d)
	return nil
}

func (m *memDonations) UpdateByID(_ context.Context, id primitive.ObjectID, updates map[string]interface{}) (*models.Donation, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	d, ok := m.docs[id]
	if !ok {
		return nil, repository.ErrNotFound
	}
	for k, v := range updates {
		switch k {
		case "user_name":
			d.UserName = v.(string)
		case "donation_status":
			d.DonationStatus = v.(string)
		case "refund_status":
			d.RefundStatus = v.(string)
		case "refund_amount":
			d.RefundAmount = v.(float64)
		}
	}
	m.docs[id] = d
	return &d, nil
}

func (m *memDonations) DeleteByID(_ context.Context, id primitive.ObjectID) (*models.Donation, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	d, ok := m.docs[id]
	if !ok {
		return nil, repository.ErrNotFound
	}
	delete(m.docs, id)
	return &d, nil
}

type memPaymentDetails struct {
	mu      sync.Mutex
	records []*models.PaymentDetails
	saveErr error
}

func (m *memPaymentDetails) FindByUserID(_ context.Context, userID primitive.ObjectID) (*models.PaymentDetails, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, r := range m.records {
		if r.UserID != nil && *r.UserID == userID {
			return clonePaymentDetails(r), nil
		}
	}
	return nil, repository.ErrNotFound
}

func (m *memPaymentDetails) FindByUserName(_ context.Context, userName string) (*models.PaymentDetails, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, r := range m.records {
		if r.UserName == userName && r.UserID == nil {
			return clonePaymentDetails(r), nil
		}
	}
	return nil, repository.ErrNotFound
}

func (m *memPaymentDetails) Save(_ context.Context, details *models.PaymentDetails) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.saveErr != nil {
		return m.saveErr
	}
	if details.IsNew() {
		details.ID = primitive.NewObjectID()
		m.records = append(m.records, clonePaymentDetails(details))
		details.MarkSaved()
		return nil
	}
	for _, r := range m.records {
		if r.ID == details.ID {
			r.Payments = append(r.Payments, details.Pending()...)
			details.MarkSaved()
			return nil
		}
	}
	return repository.ErrNotFound
}

func clonePaymentDetails(d *models.PaymentDetails) *models.PaymentDetails {
	c := &models.PaymentDetails{ID: d.ID, UserID: d.UserID, UserName: d.UserName}
	c.Payments = append([]models.Payment{}, d.Payments...)
	return c
}

type recordingPublisher struct {
	mu     sync.Mutex
	events []events.DonationEvent
	err    error
}

func (p *recordingPublisher) Publish(_ context.Context, ev events.DonationEvent) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.events = append(p.events, ev)
	return p.err
}

func (p *recordingPublisher) Close() error { return nil }

func (p *recordingPublisher) types() []string {
	p.mu.Lock()
	defer p.mu.Unlock()
	out := make([]string, 0, len(p.events))
	for _, ev := range p.events {
		out = append(out, ev.Type)
	}
	return out
}
