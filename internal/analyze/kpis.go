package analyze

import (
	"harvest-analytics-api/internal/ingest"
	"harvest-analytics-api/internal/models"
)

// tripKey identifies a trip: the same trip id can legitimately repeat
// across fleets.
func tripKey(row *models.ProductionRow) string {
	return row.TripID + "|" + row.FleetID
}

// countableRow excludes aggregation lines and rows without a trip
// identity from every KPI.
func countableRow(row *models.ProductionRow) bool {
	return row.TripID != "" && !row.IsTotalRow()
}

// CountUniqueTrips counts distinct (trip, fleet) pairs, split by
// ownership. Own + third-party always equals the total.
func CountUniqueTrips(rows []models.ProductionRow) models.TripCounts {
	seen := make(map[string]bool)
	var counts models.TripCounts

	for i := range rows {
		row := &rows[i]
		if !countableRow(row) {
			continue
		}
		key := tripKey(row)
		if seen[key] {
			continue
		}
		seen[key] = true

		counts.Total++
		if IsOwn(row) {
			counts.Own++
		} else {
			counts.ThirdParty++
		}
	}
	return counts
}

// SumWeights totals net weight with the ownership split, excluding
// zero-weight rows and aggregation lines.
func SumWeights(rows []models.ProductionRow) models.WeightTotals {
	var totals models.WeightTotals
	for i := range rows {
		row := &rows[i]
		if row.NetWeight == 0 || row.IsTotalRow() {
			continue
		}

		totals.Total += row.NetWeight
		if IsOwn(row) {
			totals.Own += row.NetWeight
		} else {
			totals.ThirdParty += row.NetWeight
		}
	}
	return totals
}

// AnalysisRate is the percentage of countable rows whose analyzed flag is
// truthy. Always in [0,100]; 0 when there are no countable rows.
func AnalysisRate(rows []models.ProductionRow) float64 {
	total := 0
	analyzed := 0
	for i := range rows {
		row := &rows[i]
		if !countableRow(row) {
			continue
		}
		total++
		if ingest.IsTruthy(row.Analyzed) {
			analyzed++
		}
	}

	if total == 0 {
		return 0
	}
	return float64(analyzed) / float64(total) * 100
}
