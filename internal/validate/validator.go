package validate

import (
	"fmt"
	"math"
	"regexp"
	"sort"
	"strings"

	"github.com/montanaflynn/stats"

	"harvest-analytics-api/internal/models"
)

// Anomaly type tags. These are domain vocabulary and stable across the
// API, so they keep their Portuguese names.
const (
	TypeWeightMismatch    = "PESO_INCONSISTENTE"
	TypeOddClosingWeight  = "PESO_IMPAR"
	TypeReleaseConflict   = "LIBERACAO_CONFLITO"
	TypeHarvesterConflict = "COLHEDORA_CONFLITO"
	TypeFleetFormat       = "FROTA_FORMATO"
	TypeLoadVariance      = "CARGA_VARIACAO"
)

// harvesterCodeRe matches valid harvester codes: prefix 80 or 93 plus
// 3-4 digits.
var harvesterCodeRe = regexp.MustCompile(`^(80|93)\d{3,4}$`)

var validFleetPrefixes = []string{"31", "32", "91", "92", "80", "93"}

// IsHarvesterCode reports whether a code is a valid harvester identifier.
func IsHarvesterCode(code string) bool {
	return harvesterCodeRe.MatchString(code)
}

// cvMinTrips and cvThresholdPct gate the load-variance rule: small groups
// are statistically meaningless and a CV up to 15% is normal load spread.
const (
	cvMinTrips     = 5
	cvThresholdPct = 15.0
)

const weightTolerance = 0.05

type Validator struct{}

func New() *Validator {
	return &Validator{}
}

// ValidateAll runs every rule independently, concatenates the anomalies
// and sorts them by (farm, front). IsValid means no critical anomaly.
func (v *Validator) ValidateAll(rows []models.ProductionRow) models.ValidationResult {
	anomalies := []models.Anomaly{}
	anomalies = append(anomalies, v.checkWeightConsistency(rows)...)
	anomalies = append(anomalies, v.checkClosingWeightParity(rows)...)
	anomalies = append(anomalies, v.checkReleaseFrontUniqueness(rows)...)
	anomalies = append(anomalies, v.checkHarvesterExclusivity(rows)...)
	anomalies = append(anomalies, v.checkFleetFormat(rows)...)
	anomalies = append(anomalies, v.checkLoadVariance(rows)...)

	sort.SliceStable(anomalies, func(i, j int) bool {
		if anomalies[i].Farm != anomalies[j].Farm {
			return anomalies[i].Farm < anomalies[j].Farm
		}
		return anomalies[i].Front < anomalies[j].Front
	})

	isValid := true
	for _, a := range anomalies {
		if a.Severity == models.SeverityCritical {
			isValid = false
			break
		}
	}

	return models.ValidationResult{Anomalies: anomalies, IsValid: isValid}
}

func round2(v float64) float64 {
	return math.Round(v*100) / 100
}

// checkWeightConsistency flags rows where gross minus tare disagrees with
// the declared net weight beyond tolerance.
func (v *Validator) checkWeightConsistency(rows []models.ProductionRow) []models.Anomaly {
	var out []models.Anomaly
	for i := range rows {
		row := &rows[i]
		if row.GrossWeight == nil || row.TareWeight == nil {
			continue
		}
		if strings.Contains(strings.ToUpper(row.FleetID), "TOTAL") {
			continue
		}

		computed := round2(*row.GrossWeight - *row.TareWeight)
		diff := math.Abs(computed - row.NetWeight)
		if diff <= weightTolerance {
			continue
		}

		out = append(out, models.Anomaly{
			Type:     TypeWeightMismatch,
			Severity: models.SeverityCritical,
			Title:    "Inconsistent weighing",
			Message: fmt.Sprintf("trip %s: gross - tare = %.2f but net weight is %.2f",
				row.TripID, computed, row.NetWeight),
			Detail: fmt.Sprintf("difference of %.2f exceeds tolerance %.2f", diff, weightTolerance),
			Trip:   row.TripID,
			Fleet:  row.FleetID,
			Front:  row.Front,
			Farm:   row.FarmCode,
		})
	}
	return out
}

// checkClosingWeightParity enforces the business rule that a closing net
// weight must be a multiple of 0.02: the cent count must be even.
func (v *Validator) checkClosingWeightParity(rows []models.ProductionRow) []models.Anomaly {
	var out []models.Anomaly
	for i := range rows {
		row := &rows[i]
		if !row.IsClosing() || row.NetWeight == 0 {
			continue
		}

		cents := int64(math.Round(row.NetWeight * 100))
		if cents%2 == 0 {
			continue
		}

		fleet, trip := row.FleetID, row.TripID
		if fleet == "" || trip == "" {
			if f, t, ok := resolveFallbackIdentifiers(rows, i); ok {
				if fleet == "" {
					fleet = f
				}
				if trip == "" {
					trip = t
				}
			}
		}

		out = append(out, models.Anomaly{
			Type:     TypeOddClosingWeight,
			Severity: models.SeverityCritical,
			Title:    "Odd closing weight",
			Message: fmt.Sprintf("trip %s closed with net weight %.2f, which is not a multiple of 0.02",
				trip, row.NetWeight),
			Trip:  trip,
			Fleet: fleet,
			Front: row.Front,
			Farm:  row.FarmCode,
		})
	}
	return out
}

// checkReleaseFrontUniqueness: one release code must map to exactly one
// work front.
func (v *Validator) checkReleaseFrontUniqueness(rows []models.ProductionRow) []models.Anomaly {
	fronts := make(map[string]map[string]bool)
	farms := make(map[string]string)
	var order []string

	for i := range rows {
		row := &rows[i]
		if row.ReleaseCode == "" || row.Front == "" {
			continue
		}
		if fronts[row.ReleaseCode] == nil {
			fronts[row.ReleaseCode] = make(map[string]bool)
			farms[row.ReleaseCode] = row.FarmCode
			order = append(order, row.ReleaseCode)
		}
		fronts[row.ReleaseCode][row.Front] = true
	}

	var out []models.Anomaly
	for _, release := range order {
		if len(fronts[release]) <= 1 {
			continue
		}

		list := make([]string, 0, len(fronts[release]))
		for front := range fronts[release] {
			list = append(list, front)
		}
		sort.Strings(list)
		joined := strings.Join(list, ", ")

		out = append(out, models.Anomaly{
			Type:     TypeReleaseConflict,
			Severity: models.SeverityCritical,
			Title:    "Release code on multiple fronts",
			Message:  fmt.Sprintf("release %s appears on fronts %s", release, joined),
			Detail:   joined,
			Release:  release,
			Front:    list[0],
			Farm:     farms[release],
		})
	}
	return out
}

// checkHarvesterExclusivity: a harvester must not work more than one
// front within the same data set.
func (v *Validator) checkHarvesterExclusivity(rows []models.ProductionRow) []models.Anomaly {
	fronts := make(map[string]map[string]bool)
	farms := make(map[string]string)
	var order []string

	for i := range rows {
		row := &rows[i]
		if row.Front == "" {
			continue
		}
		for _, code := range row.Equipment {
			if !harvesterCodeRe.MatchString(code) {
				continue
			}
			if fronts[code] == nil {
				fronts[code] = make(map[string]bool)
				farms[code] = row.FarmCode
				order = append(order, code)
			}
			fronts[code][row.Front] = true
		}
	}

	var out []models.Anomaly
	for _, code := range order {
		if len(fronts[code]) <= 1 {
			continue
		}

		list := make([]string, 0, len(fronts[code]))
		for front := range fronts[code] {
			list = append(list, front)
		}
		sort.Strings(list)

		joined := strings.Join(list, ", ")

		out = append(out, models.Anomaly{
			Type:      TypeHarvesterConflict,
			Severity:  models.SeverityCritical,
			Title:     "Harvester on multiple fronts",
			Message:   fmt.Sprintf("harvester %s appears on fronts %s", code, joined),
			Detail:    joined,
			Harvester: code,
			Front:     list[0],
			Farm:      farms[code],
		})
	}
	return out
}

// checkFleetFormat warns on fleet codes outside the allowed prefix set.
func (v *Validator) checkFleetFormat(rows []models.ProductionRow) []models.Anomaly {
	seen := make(map[string]bool)
	var out []models.Anomaly

	for i := range rows {
		row := &rows[i]
		fleet := strings.TrimSpace(row.FleetID)
		if fleet == "" || strings.Contains(strings.ToUpper(fleet), "TOTAL") || seen[fleet] {
			continue
		}
		seen[fleet] = true

		if hasValidFleetPrefix(fleet) {
			continue
		}

		out = append(out, models.Anomaly{
			Type:     TypeFleetFormat,
			Severity: models.SeverityWarning,
			Title:    "Unexpected fleet code format",
			Message: fmt.Sprintf("fleet %s does not start with an allowed prefix (%s)",
				fleet, strings.Join(validFleetPrefixes, ", ")),
			Fleet: fleet,
			Front: row.Front,
			Farm:  row.FarmCode,
		})
	}
	return out
}

func hasValidFleetPrefix(fleet string) bool {
	for _, prefix := range validFleetPrefixes {
		if strings.HasPrefix(fleet, prefix) {
			return true
		}
	}
	return false
}

type loadGroup struct {
	fleet     string
	equipment string
	loadType  string
	farm      string
	front     string
	trips     map[string]float64
}

// checkLoadVariance flags (fleet, equipment, load type) groups whose trip
// weights vary too much. Groups missing equipment or load type are
// excluded so incomplete data does not raise false positives.
func (v *Validator) checkLoadVariance(rows []models.ProductionRow) []models.Anomaly {
	groups := make(map[string]*loadGroup)
	var order []string

	for i := range rows {
		row := &rows[i]
		if row.IsTotalRow() || row.NetWeight == 0 || row.TripID == "" {
			continue
		}
		if row.FleetID == "" || len(row.Equipment) == 0 || row.LoadType == "" {
			continue
		}

		equipment := strings.Join(row.Equipment, "+")
		loadType := strings.ToUpper(strings.TrimSpace(row.LoadType))
		key := row.FleetID + "|" + equipment + "|" + loadType

		g := groups[key]
		if g == nil {
			g = &loadGroup{
				fleet:     row.FleetID,
				equipment: equipment,
				loadType:  loadType,
				farm:      row.FarmCode,
				front:     row.Front,
				trips:     make(map[string]float64),
			}
			groups[key] = g
			order = append(order, key)
		}
		g.trips[row.TripID] += row.NetWeight
	}

	var out []models.Anomaly
	for _, key := range order {
		g := groups[key]
		if len(g.trips) < cvMinTrips {
			continue
		}

		weights := make([]float64, 0, len(g.trips))
		for _, w := range g.trips {
			weights = append(weights, w)
		}

		mean, err := stats.Mean(weights)
		if err != nil || mean == 0 {
			continue
		}
		stdDev, err := stats.StandardDeviation(weights)
		if err != nil {
			continue
		}

		cv := stdDev / mean * 100
		if cv <= cvThresholdPct {
			continue
		}

		out = append(out, models.Anomaly{
			Type:     TypeLoadVariance,
			Severity: models.SeverityWarning,
			Title:    "High load variation",
			Message: fmt.Sprintf("fleet %s / %s / %s: coefficient of variation %.1f%% over %d trips",
				g.fleet, g.equipment, g.loadType, cv, len(g.trips)),
			Detail: fmt.Sprintf("mean %.2f, stddev %.2f", mean, stdDev),
			Fleet:  g.fleet,
			Front:  g.front,
			Farm:   g.farm,
		})
	}
	return out
}
