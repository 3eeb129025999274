package analyze

import (
	"strings"

	"harvest-analytics-api/internal/ingest"
	"harvest-analytics-api/internal/models"
)

// IsOwn classifies a row as company-owned ("propria"). Priority order:
// explicit ownership type string, then equipment code prefix, then fleet
// code prefix. Anything unresolved counts as third-party so that
// own + third always partitions the total.
func IsOwn(row *models.ProductionRow) bool {
	ownership := ingest.NormalizeText(row.OwnershipType)
	if ownership != "" {
		if strings.Contains(ownership, "propri") {
			return true
		}
		if strings.Contains(ownership, "terceir") || strings.Contains(ownership, "fretista") {
			return false
		}
	}

	for _, code := range row.Equipment {
		if strings.HasPrefix(code, "80") {
			return true
		}
		if strings.HasPrefix(code, "93") {
			return false
		}
	}

	if strings.HasPrefix(row.FleetID, "31") || strings.HasPrefix(row.FleetID, "32") {
		return true
	}
	return false
}

// isOwnCode classifies a single equipment code, falling back to the row
// classification when the prefix is not conclusive.
func isOwnCode(code string, row *models.ProductionRow) bool {
	if strings.HasPrefix(code, "80") {
		return true
	}
	if strings.HasPrefix(code, "93") {
		return false
	}
	return IsOwn(row)
}
