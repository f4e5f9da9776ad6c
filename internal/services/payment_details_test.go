package services

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.mongodb.org/mongo-driver/bson/primitive"

	"github.com/crowdfund/crowdfund-gobackend/internal/apperr"
	"github.com/crowdfund/crowdfund-gobackend/internal/models"
)

func TestPaymentDetailsService_FindOrCreate(t *testing.T) {
	repo := &memPaymentDetails{}
	svc := NewPaymentDetailsService(repo)
	userID := primitive.NewObjectID()

	t.Run("new user record is unsaved and empty", func(t *testing.T) {
		details, err := svc.FindOrCreate(context.Background(), PayerKeyFor(&userID), "Jane")
		require.NoError(t, err)
		assert.True(t, details.IsNew())
		assert.Equal(t, "Jane", details.UserName)
		assert.NotNil(t, details.Payments)
		assert.Empty(t, details.Payments)
		assert.Empty(t, repo.records)
	})

	t.Run("anonymous bucket ignores the given name", func(t *testing.T) {
		details, err := svc.FindOrCreate(context.Background(), PayerKeyFor(nil), "Someone")
		require.NoError(t, err)
		assert.Nil(t, details.UserID)
		assert.Equal(t, models.AnonymousUserName, details.UserName)
	})

	t.Run("existing record is reused", func(t *testing.T) {
		details, err := svc.FindOrCreate(context.Background(), PayerKeyFor(&userID), "Jane")
		require.NoError(t, err)
		svc.AppendPayment(details, primitive.NewObjectID(), PaymentFields{TotalAmount: 5})
		require.NoError(t, svc.Save(context.Background(), details))

		again, err := svc.FindOrCreate(context.Background(), PayerKeyFor(&userID), "ignored")
		require.NoError(t, err)
		assert.Equal(t, details.ID, again.ID)
		assert.Len(t, again.Payments, 1)
	})
}

func TestPaymentDetailsService_AppendPayment(t *testing.T) {
	svc := NewPaymentDetailsService(&memPaymentDetails{})
	details := &models.PaymentDetails{Payments: []models.Payment{}}
	donationID := primitive.NewObjectID()

	p := svc.AppendPayment(details, donationID, PaymentFields{
		PaymentType: "card",
		CardNumber:  "4111111111111111",
		TotalAmount: 12.5,
	})
	assert.Equal(t, donationID, p.DonationID)
	assert.Equal(t, models.PaymentStatusPaid, p.Status)
	assert.Equal(t, 12.5, p.TotalAmount)
	assert.False(t, p.ID.IsZero())
	assert.Len(t, details.Pending(), 1)
}

func TestPaymentDetailsService_ListForPayer(t *testing.T) {
	svc := NewPaymentDetailsService(&memPaymentDetails{})
	_, err := svc.ListForPayer(context.Background(), PayerKeyFor(nil))
	assert.True(t, apperr.IsNotFound(err))
}

func TestPaymentDetailsService_ListUserPayments(t *testing.T) {
	repo := &memPaymentDetails{}
	svc := NewPaymentDetailsService(repo)
	userID := primitive.NewObjectID()

	details, err := svc.FindOrCreate(context.Background(), PayerKeyFor(&userID), "Jane")
	require.NoError(t, err)
	svc.AppendPayment(details, primitive.NewObjectID(), PaymentFields{CardNumber: "4111111111111111", CVV: "123", TotalAmount: 5})
	require.NoError(t, svc.Save(context.Background(), details))

	got, err := svc.ListUserPayments(context.Background(), userID.Hex())
	require.NoError(t, err)
	require.Len(t, got.Payments, 1)
	assert.Equal(t, "****1111", got.Payments[0].CardNumber)
	assert.Equal(t, "4111111111111111", repo.records[0].Payments[0].CardNumber)

	_, err = svc.ListUserPayments(context.Background(), "not-an-id")
	assert.True(t, apperr.IsNotFound(err))
	_, err = svc.ListUserPayments(context.Background(), primitive.NewObjectID().Hex())
	assert.True(t, apperr.IsNotFound(err))
}

func TestMaskCardNumber(t *testing.T) {
	assert.Equal(t, "****1111", maskCardNumber("4111 1111 1111 1111"))
	assert.Equal(t, "***", maskCardNumber("123"))
	assert.Equal(t, "", maskCardNumber(""))
}
