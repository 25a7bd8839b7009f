package mql_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"

	"github.com/hummerd/rulex/mql"
)

func TestFilter(t *testing.T) {
	tests := []struct {
		name    string
		query   string
		params  []any
		want    bson.D
		wantErr bool
	}{
		{
			name:  "empty",
			query: "",
			want:  bson.D{},
		},
		{
			name:  "simple number",
			query: "a > 90",
			want: bson.D{
				{Key: "a", Value: bson.D{{Key: "$gt", Value: int64(90)}}},
			},
		},
		{
			name:  "equality and not equal",
			query: `a = "x" and b != 4`,
			want: bson.D{
				{Key: "a", Value: "x"},
				{Key: "b", Value: bson.D{{Key: "$ne", Value: int64(4)}}},
			},
		},
		{
			name:  "or groups",
			query: "a = 1 and b = 2 or c = 3",
			want: bson.D{
				{Key: "$or", Value: bson.A{
					bson.D{
						{Key: "a", Value: int64(1)},
						{Key: "b", Value: int64(2)},
					},
					bson.D{
						{Key: "c", Value: int64(3)},
					},
				}},
			},
		},
		{
			name:   "parameter substitution",
			query:  "name = $name and age >= $age",
			params: []any{"$name", "bob", "$age", 42},
			want: bson.D{
				{Key: "name", Value: "bob"},
				{Key: "age", Value: bson.D{{Key: "$gte", Value: 42}}},
			},
		},
		{
			name:  "unknown parameter stays literal",
			query: "name = $nope",
			want: bson.D{
				{Key: "name", Value: "$nope"},
			},
		},
		{
			name:  "word operator",
			query: "g $regex /ab+c/i",
			want: bson.D{
				{Key: "g", Value: bson.D{{Key: "$regex", Value: primitive.Regex{Pattern: "ab+c", Options: "i"}}}},
			},
		},
		{
			name:  "null and booleans",
			query: "a = null and b = true and c = false",
			want: bson.D{
				{Key: "a", Value: nil},
				{Key: "b", Value: true},
				{Key: "c", Value: false},
			},
		},
		{
			name:  "single quoted string",
			query: "a <= 'low'",
			want: bson.D{
				{Key: "a", Value: bson.D{{Key: "$lte", Value: "low"}}},
			},
		},
		{
			name:    "truncated expression",
			query:   "a >",
			wantErr: true,
		},
		{
			name:    "leading connector",
			query:   "and a = 1",
			wantErr: true,
		},
		{
			name:    "trailing connector",
			query:   "a = 1 or",
			wantErr: true,
		},
		{
			name:    "bad operator",
			query:   "a ? 1",
			wantErr: true,
		},
		{
			name:    "missing connector",
			query:   "a = 1 b = 2",
			wantErr: true,
		},
		{
			name:    "odd params",
			query:   "a = $v",
			params:  []any{"$v"},
			wantErr: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := mql.Filter(tt.query, tt.params...)

			if tt.wantErr {
				require.Error(t, err)
				return
			}

			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestFilter_ErrorPosition(t *testing.T) {
	_, err := mql.Filter("a = 1 and\nb ? 2")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "line:2; column: 3")
}

func TestMustFilter(t *testing.T) {
	assert.NotPanics(t, func() {
		d := mql.MustFilter("a = 1")
		assert.Equal(t, bson.D{{Key: "a", Value: int64(1)}}, d)
	})

	assert.Panics(t, func() {
		mql.MustFilter("a =")
	})
}
