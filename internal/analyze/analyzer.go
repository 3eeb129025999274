package analyze

import (
	"time"

	"harvest-analytics-api/internal/models"
)

// Analyzer is the aggregation engine. AnalyzeAll is a pure function of
// its inputs; it never fails on malformed business data.
type Analyzer struct{}

func New() *Analyzer {
	return &Analyzer{}
}

// EmptyResult is the canonical zero-valued shape: every numeric field 0,
// every list empty, hourly slots labeled with their clock hours.
func EmptyResult(targets models.Targets) models.AnalysisResult {
	result := models.AnalysisResult{
		Rankings: models.Rankings{
			OwnFleets:           []models.RankingEntry{},
			ThirdPartyFleets:    []models.RankingEntry{},
			OwnEquipment:        []models.RankingEntry{},
			ThirdPartyEquipment: []models.RankingEntry{},
			Trailers:            []models.RankingEntry{},
			Operators:           []models.RankingEntry{},
		},
		Fronts: []models.FrontAnalysis{},
		Projection: models.Projection{
			DailyTarget: targets.DailyTarget,
			Status:      "no_data",
		},
	}
	for i := range result.Hourly {
		result.Hourly[i].Hour = SlotHour(i)
	}
	return result
}

// AnalyzeAll recomputes the whole analysis from scratch. Empty production
// input returns the canonical empty shape, never an error.
func (a *Analyzer) AnalyzeAll(
	production []models.ProductionRow,
	potential []models.PotentialRow,
	metaRows []models.MetaRow,
	validation models.ValidationResult,
	season []models.SeasonRow,
	targets models.Targets,
) models.AnalysisResult {
	result := EmptyResult(targets)
	result.GeneratedAt = time.Now().UTC()

	for _, s := range season {
		result.SeasonAccumulated += s.Weight
	}

	if len(production) == 0 {
		return result
	}

	result.Trips = CountUniqueTrips(production)
	result.Weights = SumWeights(production)
	result.AnalysisRate = AnalysisRate(production)
	result.Rankings = BuildRankings(production)
	result.Hourly = BuildHourly(production, potential)
	result.Projection = CalculateProjection(result.Hourly, targets.DailyTarget)
	result.Fronts = AnalyzeFronts(production, metaRows, validation)

	return result
}
