package services

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.uber.org/zap"

	"github.com/crowdfund/crowdfund-gobackend/internal/apperr"
	"github.com/crowdfund/crowdfund-gobackend/internal/models"
)

type stubOwners struct {
	users []models.User
}

func (s *stubOwners) FindUsersByIDs(_ context.Context, ids []primitive.ObjectID) ([]models.User, error) {
	var out []models.User
	for _, u := range s.users {
		for _, id := range ids {
			if u.ID == id {
				out = append(out, u)
			}
		}
	}
	return out, nil
}

func newCampaignFixture() (*CampaignService, *memCampaigns, primitive.ObjectID, *stubOwners) {
	active := primitive.NewObjectID()
	campaigns := newMemCampaigns()
	owners := &stubOwners{}
	svc := NewCampaignService(
		campaigns,
		&memStatuses{statuses: []models.CampaignStatus{{ID: active, Status: models.CampaignStatusActive}}},
		&memCategories{categories: []models.CampaignCategory{{ID: primitive.NewObjectID(), Category: "Health"}}},
		owners,
		zap.NewNop(),
	)
	return svc, campaigns, active, owners
}

func strPtr(s string) *string { return &s }
func floatPtr(f float64) *float64 { return &f }

func TestCampaignService_Create(t *testing.T) {
	svc, campaigns, active, _ := newCampaignFixture()
	owner := primitive.NewObjectID()

	c, err := svc.CreateCampaign(context.Background(), &models.CampaignRequest{
		UserID: owner.Hex(),
		Title:  strPtr("Clean water"),
		Cause:  strPtr("Wells"),
		Goal:   floatPtr(500),
	})
	require.NoError(t, err)
	assert.Equal(t, owner, c.UserID)
	assert.Equal(t, 0.0, c.AmountRaised)
	assert.Equal(t, active, c.StatusID)
	assert.Equal(t, "Wells", campaigns.get(c.ID).Cause)

	_, err = svc.CreateCampaign(context.Background(), &models.CampaignRequest{UserID: owner.Hex(), Title: strPtr("x")})
	assert.Equal(t, apperr.KindValidation, apperr.KindOf(err))

	_, err = svc.CreateCampaign(context.Background(), &models.CampaignRequest{UserID: "bad", Title: strPtr("x"), Goal: floatPtr(1)})
	assert.Equal(t, apperr.KindValidation, apperr.KindOf(err))
}

func TestCampaignService_Update(t *testing.T) {
	svc, campaigns, active, _ := newCampaignFixture()
	c := testCampaign(100, 40, active)
	require.NoError(t, campaigns.Insert(context.Background(), &c))

	updated, err := svc.UpdateCampaign(context.Background(), c.ID.Hex(), &models.CampaignRequest{
		Title: strPtr("Cleaner water"),
		Goal:  floatPtr(200),
	})
	require.NoError(t, err)
	assert.Equal(t, "Cleaner water", updated.Title)
	assert.Equal(t, 200.0, updated.Goal)
	assert.Equal(t, 40.0, updated.AmountRaised)

	_, err = svc.UpdateCampaign(context.Background(), primitive.NewObjectID().Hex(), &models.CampaignRequest{Title: strPtr("x")})
	assert.True(t, apperr.IsNotFound(err))

	_, err = svc.UpdateCampaign(context.Background(), c.ID.Hex(), &models.CampaignRequest{CategoryID: strPtr("zzz")})
	assert.Equal(t, apperr.KindValidation, apperr.KindOf(err))
}

func TestCampaignService_GetAndDelete(t *testing.T) {
	svc, campaigns, active, _ := newCampaignFixture()
	c := testCampaign(100, 0, active)
	require.NoError(t, campaigns.Insert(context.Background(), &c))

	got, err := svc.GetCampaign(context.Background(), c.ID.Hex())
	require.NoError(t, err)
	assert.Equal(t, c.Title, got.Title)

	require.NoError(t, svc.DeleteCampaign(context.Background(), c.ID.Hex()))
	_, err = svc.GetCampaign(context.Background(), c.ID.Hex())
	assert.True(t, apperr.IsNotFound(err))
	assert.True(t, apperr.IsNotFound(svc.DeleteCampaign(context.Background(), c.ID.Hex())))
}

func TestCampaignService_Lists(t *testing.T) {
	svc, campaigns, active, owners := newCampaignFixture()
	owner := models.User{ID: primitive.NewObjectID(), Name: "Jane", Email: "jane@example.com"}
	owners.users = []models.User{owner}

	c1 := testCampaign(100, 0, active)
	c1.UserID = owner.ID
	c2 := testCampaign(100, 0, active)
	c2.StartDate = c1.StartDate.AddDate(0, 1, 0)
	require.NoError(t, campaigns.Insert(context.Background(), &c2))
	require.NoError(t, campaigns.Insert(context.Background(), &c1))

	all, err := svc.ListCampaigns(context.Background())
	require.NoError(t, err)
	require.Len(t, all, 2)
	assert.Equal(t, c1.ID, all[0].ID)

	withOwners, err := svc.ListCampaignsWithOwners(context.Background())
	require.NoError(t, err)
	require.Len(t, withOwners, 2)
	require.NotNil(t, withOwners[0].UserDetails)
	assert.Equal(t, "Jane", withOwners[0].UserDetails.Name)
	assert.Nil(t, withOwners[1].UserDetails)

	mine, err := svc.ListUserCampaigns(context.Background(), owner.ID.Hex())
	require.NoError(t, err)
	assert.Len(t, mine, 1)

	_, err = svc.ListUserCampaigns(context.Background(), primitive.NewObjectID().Hex())
	assert.True(t, apperr.IsNotFound(err))

	statuses, err := svc.ListStatuses(context.Background())
	require.NoError(t, err)
	assert.Len(t, statuses, 1)

	categories, err := svc.ListCategories(context.Background())
	require.NoError(t, err)
	assert.Equal(t, "Health", categories[0].Category)
}
