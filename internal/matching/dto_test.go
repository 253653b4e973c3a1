package matching

import (
	"net/url"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFiltersFromQuery(t *testing.T) {
	q := url.Values{}
	q.Set("distanceKm", "40")
	q.Set("limit", "10")
	q.Set("offset", "5")
	q.Set("experienceLevel", "advanced")
	q.Set("onlineOnly", "true")
	q.Set("minAge", "20")
	q.Set("maxAge", "35")
	q.Set("city", "Recife")

	f, err := FiltersFromQuery(q)
	require.NoError(t, err)

	assert.Equal(t, 40, f.DistanceKm)
	assert.Equal(t, 10, f.Limit)
	assert.Equal(t, 5, f.Offset)
	require.NotNil(t, f.ExperienceLevel)
	assert.Equal(t, "advanced", *f.ExperienceLevel)
	assert.True(t, f.OnlineOnly)
	require.NotNil(t, f.MinAge)
	assert.Equal(t, 20, *f.MinAge)
	require.NotNil(t, f.City)
	assert.Equal(t, "Recife", *f.City)
}

func TestFiltersFromQueryRejectsGarbage(t *testing.T) {
	for _, param := range []string{"distanceKm", "limit", "offset", "minAge", "maxAge"} {
		q := url.Values{}
		q.Set(param, "abc")
		_, err := FiltersFromQuery(q)
		assert.ErrorIs(t, err, ErrInvalidFilters, param)
	}

	q := url.Values{}
	q.Set("onlineOnly", "sometimes")
	_, err := FiltersFromQuery(q)
	assert.ErrorIs(t, err, ErrInvalidFilters)
}

func TestApplyDefaults(t *testing.T) {
	f := &DiscoverFilters{}
	f.ApplyDefaults(25)
	assert.Equal(t, 25, f.DistanceKm)
	assert.Equal(t, 20, f.Limit)
	assert.Equal(t, 0, f.Offset)

	f = &DiscoverFilters{DistanceKm: 10, Limit: 5}
	f.ApplyDefaults(25)
	assert.Equal(t, 10, f.DistanceKm)
	assert.Equal(t, 5, f.Limit)
}

func TestFilterRangeValidation(t *testing.T) {
	min, max := 180.0, 170.0
	f := &DiscoverFilters{DistanceKm: 25, Limit: 20, MinHeight: &min, MaxHeight: &max}
	assert.ErrorIs(t, f.Validate(), ErrInvalidFilters)

	minW, maxW := 90.0, 60.0
	f = &DiscoverFilters{DistanceKm: 25, Limit: 20, MinWeight: &minW, MaxWeight: &maxW}
	assert.ErrorIs(t, f.Validate(), ErrInvalidFilters)

	f = &DiscoverFilters{DistanceKm: 25, Limit: 20}
	assert.NoError(t, f.Validate())
}
