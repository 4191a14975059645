//go:build !integration

package aggregate

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/consultores-turismo/str-insights/internal/model"
)

func listing(city, hood, roomType string, price float64) model.Listing {
	return model.Listing{City: city, Neighborhood: hood, RoomType: roomType, Price: price}
}

func TestBuild_SolExample(t *testing.T) {
	res := Build([]model.Listing{
		listing("Madrid", "Sol", model.RoomTypeEntireHome, 100),
		listing("Madrid", "Sol", "Private room", 50),
	})

	require.Len(t, res.Neighborhoods, 1)
	sol := res.Neighborhoods[0]
	assert.Equal(t, "Madrid", sol.City)
	assert.Equal(t, "Sol", sol.Neighborhood)
	assert.Equal(t, 2, sol.TotalListings)
	assert.Equal(t, 1, sol.EntireHomeCount)
	assert.Equal(t, 50.0, sol.RatioEntireHomePct)
	assert.Equal(t, 75.0, sol.MeanPrice)
}

func TestBuild_RatioBounds(t *testing.T) {
	res := Build([]model.Listing{
		listing("Madrid", "Sol", model.RoomTypeEntireHome, 100),
		listing("Madrid", "Lavapiés", "Private room", 40),
		listing("Barcelona", "El Raval", model.RoomTypeEntireHome, 90),
	})

	for _, n := range res.Neighborhoods {
		assert.GreaterOrEqual(t, n.RatioEntireHomePct, 0.0)
		assert.LessOrEqual(t, n.RatioEntireHomePct, 100.0)
	}
}

func TestBuild_Conservation(t *testing.T) {
	listings := []model.Listing{
		listing("Madrid", "Sol", model.RoomTypeEntireHome, 100),
		listing("Madrid", "Sol", "Private room", 50),
		listing("Madrid", "Lavapiés", "Shared room", 30),
		listing("Madrid", "Chamberí", model.RoomTypeEntireHome, 120),
		listing("Barcelona", "El Raval", model.RoomTypeEntireHome, 90),
	}
	res := Build(listings)

	for _, c := range res.Cities {
		sum := 0
		for _, n := range res.ForCity(c.City) {
			sum += n.TotalListings
		}
		assert.Equal(t, c.TotalListings, sum, "neighborhood counts must sum to the city total for %s", c.City)
	}

	madrid := res.City("Madrid")
	require.NotNil(t, madrid)
	assert.Equal(t, 4, madrid.TotalListings)
	assert.Equal(t, 3, madrid.BarriosCount)
}

func TestBuild_RoomTypeExactMatch(t *testing.T) {
	// Room type comparison is exact and case-sensitive as sourced.
	res := Build([]model.Listing{
		listing("Madrid", "Sol", "entire home/apt", 100),
		listing("Madrid", "Sol", "Entire home/apt", 100),
	})

	require.Len(t, res.Neighborhoods, 1)
	assert.Equal(t, 1, res.Neighborhoods[0].EntireHomeCount)
}

func TestBuild_AvailabilityDefault(t *testing.T) {
	res := Build([]model.Listing{
		listing("Madrid", "Sol", "Private room", 50),
	})

	require.Len(t, res.Neighborhoods, 1)
	assert.Equal(t, float64(DefaultAvailability), res.Neighborhoods[0].MeanAvailability)
}

func TestBuild_Occupancy(t *testing.T) {
	l := listing("Madrid", "Sol", "Private room", 50)
	l.Availability365 = 146
	l.HasAvailability = true
	res := Build([]model.Listing{l})

	require.Len(t, res.Cities, 1)
	assert.InDelta(t, 60.0, res.Cities[0].EstOccupancyPct, 0.01)
}

func TestBuild_SpellingVariantsStayDistinct(t *testing.T) {
	res := Build([]model.Listing{
		listing("Barcelona", "Ciutat Vella", model.RoomTypeEntireHome, 80),
		listing("Barcelona", "ciutat   vella", model.RoomTypeEntireHome, 90),
	})

	// Normalization happens at the join stage, not here.
	assert.Len(t, res.Neighborhoods, 2)
}

func TestBuild_Deterministic(t *testing.T) {
	listings := []model.Listing{
		listing("Madrid", "Sol", model.RoomTypeEntireHome, 100),
		listing("Barcelona", "El Raval", "Private room", 60),
		listing("Madrid", "Chamberí", "Shared room", 30),
		listing("Mallorca", "Palma", model.RoomTypeEntireHome, 150),
	}

	first := Build(listings)
	for i := 0; i < 10; i++ {
		assert.Equal(t, first, Build(listings))
	}
}

func TestForCity_CanonicalLookup(t *testing.T) {
	res := Build([]model.Listing{
		listing("madrid", "Sol", model.RoomTypeEntireHome, 100),
		listing("madrid", "Lavapiés", "Private room", 60),
		listing("barcelona", "El Raval", "Private room", 70),
	})

	// Caller casing must not change the result.
	assert.Len(t, res.ForCity("madrid"), 2)
	assert.Len(t, res.ForCity("Madrid"), 2)
	assert.Len(t, res.ForCity("MADRID"), 2)

	require.NotNil(t, res.City("Madrid"))
	assert.Equal(t, 2, res.City("MADRID").TotalListings)
	assert.Nil(t, res.City("valencia"))
}

func TestBuild_Empty(t *testing.T) {
	res := Build(nil)
	assert.Empty(t, res.Cities)
	assert.Empty(t, res.Neighborhoods)
	assert.Nil(t, res.City("Madrid"))
	assert.Empty(t, res.ForCity("Madrid"))
}
