package validate

import "harvest-analytics-api/internal/models"

// scanState names the states of the backward walk that recovers missing
// identifiers on closing/total rows.
type scanState int

const (
	scanningSameRelease scanState = iota
	boundaryHit
	priorClosingHit
	identifiersFound
)

// resolveFallbackIdentifiers walks backward from rows[idx] through rows
// sharing the same release code, looking for a detail row that still
// carries fleet and trip identifiers. The walk stops when the release
// code changes or an earlier closing row is crossed; both mean the
// identifiers belong to a different trip.
func resolveFallbackIdentifiers(rows []models.ProductionRow, idx int) (fleet, trip string, ok bool) {
	if idx <= 0 || idx >= len(rows) {
		return "", "", false
	}

	release := rows[idx].ReleaseCode
	state := scanningSameRelease

	for i := idx - 1; i >= 0 && state == scanningSameRelease; i-- {
		prev := &rows[i]

		switch {
		case prev.ReleaseCode != release:
			state = boundaryHit
		case prev.IsClosing():
			state = priorClosingHit
		case prev.FleetID != "" && prev.TripID != "" && !prev.IsTotalRow():
			state = identifiersFound
			fleet, trip = prev.FleetID, prev.TripID
		}
	}

	return fleet, trip, state == identifiersFound
}
