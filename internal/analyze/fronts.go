package analyze

import (
	"sort"
	"strings"

	"harvest-analytics-api/internal/ingest"
	"harvest-analytics-api/internal/models"
	"harvest-analytics-api/internal/validate"
)

// Front status thresholds on the analysis rate.
const (
	frontCriticalRate = 30.0
	frontWarningRate  = 35.0
)

type frontAcc struct {
	front      string
	trips      map[string]bool
	weight     float64
	rowTotal   int
	rowOK      int
	releases   map[string]int
	farms      map[string]int
	harvesters map[string]float64
	harvOrder  []string
}

// AnalyzeFronts aggregates per work front: trips, weight, analysis rate,
// dominant release code, harvester contribution and a status derived from
// the rate and the validator's conflict anomalies. Meta rows are merged
// by the front's majority farm.
func AnalyzeFronts(rows []models.ProductionRow, metaRows []models.MetaRow, validation models.ValidationResult) []models.FrontAnalysis {
	accs := make(map[string]*frontAcc)
	var order []string

	for i := range rows {
		row := &rows[i]
		if row.Front == "" || row.IsTotalRow() {
			continue
		}

		acc := accs[row.Front]
		if acc == nil {
			acc = &frontAcc{
				front:      row.Front,
				trips:      make(map[string]bool),
				releases:   make(map[string]int),
				farms:      make(map[string]int),
				harvesters: make(map[string]float64),
			}
			accs[row.Front] = acc
			order = append(order, row.Front)
		}

		if row.TripID != "" {
			acc.trips[tripKey(row)] = true
		}
		acc.weight += row.NetWeight
		acc.rowTotal++
		if ingest.IsTruthy(row.Analyzed) {
			acc.rowOK++
		}
		if row.ReleaseCode != "" {
			acc.releases[row.ReleaseCode]++
		}
		if row.FarmCode != "" {
			acc.farms[row.FarmCode]++
		}

		// Weight apportioned evenly across the valid harvester codes
		// co-assigned to the row.
		var valid []string
		for _, code := range row.Equipment {
			if validate.IsHarvesterCode(code) {
				valid = append(valid, code)
			}
		}
		if len(valid) > 0 && row.NetWeight != 0 {
			share := row.NetWeight / float64(len(valid))
			for _, code := range valid {
				if _, seen := acc.harvesters[code]; !seen {
					acc.harvOrder = append(acc.harvOrder, code)
				}
				acc.harvesters[code] += share
			}
		}
	}

	conflicts := conflictFronts(validation.Anomalies)

	sort.Strings(order)
	out := []models.FrontAnalysis{}
	for _, front := range order {
		acc := accs[front]

		rate := 0.0
		if acc.rowTotal > 0 {
			rate = float64(acc.rowOK) / float64(acc.rowTotal) * 100
		}

		fa := models.FrontAnalysis{
			Front:        front,
			FarmCode:     dominantKey(acc.farms),
			Trips:        len(acc.trips),
			Weight:       acc.weight,
			AnalysisRate: rate,
			ReleaseCode:  dominantKey(acc.releases),
			HasConflict:  conflicts[front],
		}

		switch {
		case fa.HasConflict || rate < frontCriticalRate:
			fa.Status = "critical"
		case rate < frontWarningRate:
			fa.Status = "warning"
		default:
			fa.Status = "active"
		}

		for _, code := range acc.harvOrder {
			fa.Harvesters = append(fa.Harvesters, models.HarvesterShare{
				Code:   code,
				Weight: acc.harvesters[code],
			})
		}

		fa.Target = mergeMeta(fa.FarmCode, metaRows)
		out = append(out, fa)
	}
	return out
}

// conflictFronts collects every front referenced by a release or
// harvester conflict anomaly, including the fronts listed in the detail.
func conflictFronts(anomalies []models.Anomaly) map[string]bool {
	out := make(map[string]bool)
	for _, a := range anomalies {
		if a.Type != validate.TypeReleaseConflict && a.Type != validate.TypeHarvesterConflict {
			continue
		}
		if a.Front != "" {
			out[a.Front] = true
		}
		for _, front := range strings.Split(a.Detail, ",") {
			front = strings.TrimSpace(front)
			if front != "" {
				out[front] = true
			}
		}
	}
	return out
}

// mergeMeta matches meta rows by farm code; when no farm matches it falls
// back to the single meta row with the highest potential. Rate-like
// fields average, volume-like fields sum.
func mergeMeta(farmCode string, metaRows []models.MetaRow) *models.FrontTarget {
	var matched []models.MetaRow
	if farmCode != "" {
		for _, m := range metaRows {
			if m.FarmCode == farmCode {
				matched = append(matched, m)
			}
		}
	}

	if len(matched) == 0 {
		best := -1
		for i, m := range metaRows {
			if best < 0 || m.Potential > metaRows[best].Potential {
				best = i
			}
		}
		if best < 0 {
			return nil
		}
		matched = []models.MetaRow{metaRows[best]}
	}

	target := &models.FrontTarget{Sources: len(matched)}
	for _, m := range matched {
		target.Meta += m.Meta
		target.CD += m.CD
		target.TonHora += m.TonHora
		target.CmHora += m.CmHora
		target.Cam += m.Cam
		target.TMD += m.TMD
		target.Raio += m.Raio
		target.ATR += m.ATR
		target.Vel += m.Vel
	}

	n := float64(len(matched))
	target.TMD /= n
	target.Raio /= n
	target.ATR /= n
	target.Vel /= n

	return target
}
