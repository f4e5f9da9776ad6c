package db

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"go.mongodb.org/mongo-driver/mongo/integration/mtest"
)

func TestEnsureIndexes(t *testing.T) {
	mt := mtest.New(t, mtest.NewOptions().ClientType(mtest.Mock))

	mt.Run("creates every index set", func(mt *mtest.T) {
		for i := 0; i < 6; i++ {
			mt.AddMockResponses(mtest.CreateSuccessResponse())
		}
		assert.NoError(mt, EnsureIndexes(context.Background(), mt.DB))

		seen := 0
		for mt.GetStartedEvent() != nil {
			seen++
		}
		assert.Equal(mt, 6, seen)
	})

	mt.Run("reports failure", func(mt *mtest.T) {
		mt.AddMockResponses(mtest.CreateCommandErrorResponse(mtest.CommandError{Code: 85, Name: "IndexOptionsConflict", Message: "conflict"}))
		assert.Error(mt, EnsureIndexes(context.Background(), mt.DB))
	})
}
