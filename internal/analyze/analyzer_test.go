package analyze

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"harvest-analytics-api/internal/models"
)

func TestEmptyResult(t *testing.T) {
	result := EmptyResult(models.Targets{DailyTarget: 12000})

	assert.NotNil(t, result.Rankings.OwnFleets)
	assert.Empty(t, result.Rankings.OwnFleets)
	assert.NotNil(t, result.Fronts)
	assert.Empty(t, result.Fronts)
	assert.Equal(t, "no_data", result.Projection.Status)
	assert.Equal(t, 12000.0, result.Projection.DailyTarget)

	// Hourly slots carry their clock-hour labels even with no data
	assert.Equal(t, 7, result.Hourly[0].Hour)
	assert.Equal(t, 6, result.Hourly[23].Hour)
	assert.Equal(t, 0, result.Hourly[17].Hour)
}

func TestAnalyzeAllEmptyProduction(t *testing.T) {
	a := New()

	season := []models.SeasonRow{{Weight: 1000}, {Weight: 500.5}}
	result := a.AnalyzeAll(nil, nil, nil, models.ValidationResult{IsValid: true}, season, models.Targets{DailyTarget: 12000})

	assert.Equal(t, 1500.5, result.SeasonAccumulated)
	assert.Equal(t, 0, result.Trips.Total)
	assert.Equal(t, 0.0, result.Weights.Total)
	assert.Equal(t, "no_data", result.Projection.Status)
	assert.Empty(t, result.Fronts)
	assert.False(t, result.GeneratedAt.IsZero())
}

func TestAnalyzeAllEndToEnd(t *testing.T) {
	a := New()

	ts := time.Date(2025, 7, 15, 8, 30, 0, 0, time.UTC)
	production := []models.ProductionRow{
		{TripID: "1001", FleetID: "31500", NetWeight: 40, Front: "1", FarmCode: "F1", Analyzed: "SIM", Timestamp: &ts},
		{TripID: "1002", FleetID: "91500", NetWeight: 35, Front: "1", FarmCode: "F1", Timestamp: &ts},
	}
	potential := []models.PotentialRow{{Potential: 1050, Timestamp: &ts}}
	metaRows := []models.MetaRow{{FarmCode: "F1", Meta: 4000}}

	result := a.AnalyzeAll(production, potential, metaRows,
		models.ValidationResult{IsValid: true}, nil, models.Targets{DailyTarget: 12000})

	assert.Equal(t, 2, result.Trips.Total)
	assert.Equal(t, result.Trips.Total, result.Trips.Own+result.Trips.ThirdParty)
	assert.Equal(t, 75.0, result.Weights.Total)
	assert.InDelta(t, result.Weights.Total, result.Weights.Own+result.Weights.ThirdParty, 1e-9)
	assert.Equal(t, 50.0, result.AnalysisRate)
	assert.GreaterOrEqual(t, result.AnalysisRate, 0.0)
	assert.LessOrEqual(t, result.AnalysisRate, 100.0)

	// 08:30 lands in slot 1 of the agricultural day
	assert.Equal(t, 75.0, result.Hourly[1].Weight)
	assert.Equal(t, 1050.0, result.Hourly[1].PotentialAvg)

	// Slot 1 is the last filled, so 2 hours elapsed
	assert.Equal(t, 2, result.Projection.HoursWithData)
	assert.Equal(t, 37.5, result.Projection.Rhythm)
	assert.Equal(t, 900.0, result.Projection.Forecast)
	assert.Equal(t, "below_target", result.Projection.Status)

	require.Len(t, result.Fronts, 1)
	front := result.Fronts[0]
	assert.Equal(t, 2, front.Trips)
	require.NotNil(t, front.Target)
	assert.Equal(t, 4000.0, front.Target.Meta)

	require.Len(t, result.Rankings.OwnFleets, 1)
	assert.Equal(t, "31500", result.Rankings.OwnFleets[0].Code)
	require.Len(t, result.Rankings.ThirdPartyFleets, 1)
}

func TestAnalyzeAllDeterministic(t *testing.T) {
	a := New()

	ts := time.Date(2025, 7, 15, 10, 0, 0, 0, time.UTC)
	production := []models.ProductionRow{
		{TripID: "1001", FleetID: "31500", NetWeight: 40, Front: "1", Timestamp: &ts},
	}

	first := a.AnalyzeAll(production, nil, nil, models.ValidationResult{IsValid: true}, nil, models.Targets{DailyTarget: 100})
	second := a.AnalyzeAll(production, nil, nil, models.ValidationResult{IsValid: true}, nil, models.Targets{DailyTarget: 100})

	assert.Equal(t, first.Projection, second.Projection)
	assert.Equal(t, first.Trips, second.Trips)
	assert.Equal(t, first.Weights, second.Weights)
	assert.Equal(t, first.Hourly, second.Hourly)
}
