package mongo

import (
	"testing"
	"time"

	ierr "github.com/feesync/feesync/internal/errors"
	"github.com/feesync/feesync/internal/types"
	"github.com/samber/lo"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.mongodb.org/mongo-driver/bson"
)

func TestSearchClause(t *testing.T) {
	assert.Nil(t, searchClause("   ", "email"))

	clause := searchClause("a.b+", "email", "phone")
	or, ok := clause["$or"].(bson.A)
	require.True(t, ok)
	require.Len(t, or, 2)

	first := or[0].(bson.M)["email"].(bson.M)
	assert.Equal(t, `a\.b\+`, first["$regex"])
	assert.Equal(t, "i", first["$options"])
}

func TestMonthClause(t *testing.T) {
	clause, err := monthClause("date", "")
	require.NoError(t, err)
	assert.Nil(t, clause)

	clause, err = monthClause("date", "2024-02")
	require.NoError(t, err)
	bounds := clause["date"].(bson.M)
	assert.Equal(t, time.Date(2024, 2, 1, 0, 0, 0, 0, time.UTC), bounds["$gte"])
	assert.Equal(t, time.Date(2024, 3, 1, 0, 0, 0, 0, time.UTC), bounds["$lt"])

	_, err = monthClause("date", "2024-13")
	assert.True(t, ierr.IsValidation(err))
}

func TestAnd(t *testing.T) {
	assert.Equal(t, bson.M{}, and(nil, bson.M{}))
	assert.Equal(t, bson.M{"a": 1}, and(nil, bson.M{"a": 1}))

	combined := and(bson.M{"a": 1}, nil, bson.M{"b": 2})
	assert.Len(t, combined["$and"], 2)
}

func TestFindOptions(t *testing.T) {
	f := &types.QueryFilter{
		Page:  lo.ToPtr(3),
		Limit: lo.ToPtr(20),
		Sort:  lo.ToPtr("amount"),
		Order: lo.ToPtr(types.OrderAsc),
	}
	opts := findOptions(f, paymentSortFields, "date")
	assert.Equal(t, int64(40), *opts.Skip)
	assert.Equal(t, int64(20), *opts.Limit)
	assert.Equal(t, bson.D{{Key: "amount", Value: 1}}, opts.Sort)

	// unknown sort keys fall back to the default field
	f.Sort = lo.ToPtr("$where")
	opts = findOptions(f, paymentSortFields, "date")
	assert.Equal(t, bson.D{{Key: "date", Value: 1}}, opts.Sort)

	opts = findOptions(types.NewNoLimitQueryFilter(), paymentSortFields, "date")
	assert.Nil(t, opts.Limit)
	assert.Nil(t, opts.Skip)
	assert.Equal(t, bson.D{{Key: "created_at", Value: -1}}, opts.Sort)
}

func TestNonNil(t *testing.T) {
	assert.NotNil(t, nonNil(nil))
	assert.Equal(t, []string{"a"}, nonNil([]string{"a"}))
}
