package analyze

import (
	"github.com/montanaflynn/stats"

	"harvest-analytics-api/internal/ingest"
	"harvest-analytics-api/internal/models"
)

// AgriculturalHourIndex maps a real clock hour onto the 07:00-06:59
// agricultural day: hour 7 is slot 0, hour 6 is slot 23.
func AgriculturalHourIndex(hour int) int {
	if hour >= 7 {
		return hour - 7
	}
	return hour + 17
}

// SlotHour is the inverse mapping: the real clock hour a slot represents.
func SlotHour(index int) int {
	return (index + 7) % 24
}

// BuildHourly fills the 24 agricultural-day slots from production and
// potential rows. Potential and rotation accumulate as per-slot averages.
func BuildHourly(production []models.ProductionRow, potential []models.PotentialRow) [24]models.HourlyBucket {
	var buckets [24]models.HourlyBucket
	for i := range buckets {
		buckets[i].Hour = SlotHour(i)
	}

	tripsPerSlot := make([]map[string]bool, 24)
	for i := range tripsPerSlot {
		tripsPerSlot[i] = make(map[string]bool)
	}

	for i := range production {
		row := &production[i]
		if row.Timestamp == nil || row.IsTotalRow() {
			continue
		}
		slot := AgriculturalHourIndex(row.Timestamp.Hour())
		b := &buckets[slot]

		if row.NetWeight != 0 {
			b.Weight += row.NetWeight
			if IsOwn(row) {
				b.OwnWeight += row.NetWeight
			} else {
				b.ThirdPartyWeight += row.NetWeight
			}
		}
		if row.TripID != "" && !tripsPerSlot[slot][tripKey(row)] {
			tripsPerSlot[slot][tripKey(row)] = true
			b.Trips++
		}
		if ingest.IsTruthy(row.Analyzed) {
			b.Analyzed++
		}
	}

	potentials := make([][]float64, 24)
	rotations := make([][]float64, 24)
	for i := range potential {
		row := &potential[i]
		if row.Timestamp == nil {
			continue
		}
		slot := AgriculturalHourIndex(row.Timestamp.Hour())
		if row.Potential != 0 {
			potentials[slot] = append(potentials[slot], row.Potential)
		}
		if row.Rotation != 0 {
			rotations[slot] = append(rotations[slot], row.Rotation)
		}
	}

	for i := range buckets {
		if len(potentials[i]) > 0 {
			if mean, err := stats.Mean(potentials[i]); err == nil {
				buckets[i].PotentialAvg = mean
			}
		}
		if len(rotations[i]) > 0 {
			if mean, err := stats.Mean(rotations[i]); err == nil {
				buckets[i].RotationAvg = mean
			}
		}
	}

	return buckets
}

// CalculateProjection extrapolates end-of-day output linearly from the
// filled slots. Pure function: identical buckets yield an identical
// forecast.
func CalculateProjection(buckets [24]models.HourlyBucket, dailyTarget float64) models.Projection {
	p := models.Projection{DailyTarget: dailyTarget, Status: "no_data"}

	totalWeight := 0.0
	lastFilled := -1
	for i := range buckets {
		totalWeight += buckets[i].Weight
		if buckets[i].Weight > 0 || buckets[i].Trips > 0 {
			lastFilled = i
		}
	}

	if lastFilled < 0 {
		return p
	}

	p.HoursWithData = lastFilled + 1
	p.Rhythm = totalWeight / float64(p.HoursWithData)
	p.Forecast = p.Rhythm * 24
	p.MeetsTarget = p.Forecast >= dailyTarget

	if p.MeetsTarget {
		p.Status = "meets_target"
	} else {
		p.Status = "below_target"
	}
	return p
}
