package domain

import (
	"net/url"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewPageEnvelopeFirstPage(t *testing.T) {
	results := []string{"a", "b"}

	envelope := NewPageEnvelope(results, len(results), 1, 2, 5, "/api/v1/recipes", nil)

	assert.Equal(t, 2, envelope.Count)
	require.NotNil(t, envelope.Next)
	assert.Equal(t, "/api/v1/recipes?limit=2&page=2", *envelope.Next)
	assert.Nil(t, envelope.Previous)
}

func TestNewPageEnvelopeMiddlePage(t *testing.T) {
	envelope := NewPageEnvelope([]string{"c", "d"}, 2, 2, 2, 5, "/api/v1/recipes", nil)

	require.NotNil(t, envelope.Next)
	assert.Equal(t, "/api/v1/recipes?limit=2&page=3", *envelope.Next)
	require.NotNil(t, envelope.Previous)
	assert.Equal(t, "/api/v1/recipes?limit=2&page=1", *envelope.Previous)
}

func TestNewPageEnvelopeLastPage(t *testing.T) {
	envelope := NewPageEnvelope([]string{"e"}, 1, 3, 2, 5, "/api/v1/recipes", nil)

	assert.Equal(t, 1, envelope.Count)
	assert.Nil(t, envelope.Next)
	require.NotNil(t, envelope.Previous)
}

func TestNewPageEnvelopeEmpty(t *testing.T) {
	envelope := NewPageEnvelope([]string{}, 0, 1, 6, 0, "/api/v1/users", nil)

	assert.Equal(t, 0, envelope.Count)
	assert.Nil(t, envelope.Next)
	assert.Nil(t, envelope.Previous)
}

func TestNewPageEnvelopeKeepsFilters(t *testing.T) {
	query := url.Values{}
	query.Add("tags", "dinner")
	query.Add("tags", "breakfast")
	query.Set("is_favorited", "1")
	query.Set("page", "2")
	query.Set("limit", "2")

	envelope := NewPageEnvelope([]string{"c", "d"}, 2, 2, 2, 6, "/api/v1/recipes", query)

	require.NotNil(t, envelope.Next)
	next, err := url.Parse(*envelope.Next)
	require.NoError(t, err)
	nextQuery := next.Query()
	assert.Equal(t, []string{"dinner", "breakfast"}, nextQuery["tags"])
	assert.Equal(t, "1", nextQuery.Get("is_favorited"))
	assert.Equal(t, "3", nextQuery.Get("page"))
	assert.Equal(t, "2", nextQuery.Get("limit"))

	require.NotNil(t, envelope.Previous)
	previous, err := url.Parse(*envelope.Previous)
	require.NoError(t, err)
	assert.Equal(t, "1", previous.Query().Get("page"))
	assert.Equal(t, []string{"dinner", "breakfast"}, previous.Query()["tags"])
}

func TestCanModifyRecipe(t *testing.T) {
	assert.True(t, CanModifyRecipe("u1", RoleUser, "u1"))
	assert.True(t, CanModifyRecipe("u2", RoleAdmin, "u1"))
	assert.False(t, CanModifyRecipe("u2", RoleUser, "u1"))
}
