package models

import (
	"math"
	"strings"
	"time"
)

// SheetKind identifies which of the input tables a sheet belongs to.
type SheetKind string

const (
	SheetProduction SheetKind = "production"
	SheetPotential  SheetKind = "potential"
	SheetMeta       SheetKind = "meta"
	SheetSeason     SheetKind = "season"
	SheetUnknown    SheetKind = "unknown"
)

// Operator is a code+name pair as it appears on weighing tickets.
type Operator struct {
	Code string `json:"code"`
	Name string `json:"name,omitempty"`
}

// ProductionRow is one normalized truck-weighing record. Fields that may
// legitimately be absent from the source sheet are pointers; everything
// else defaults to its zero value when the cell is missing or unparseable.
type ProductionRow struct {
	TripID        string     `json:"trip_id"`
	FleetID       string     `json:"fleet_id"`
	Equipment     []string   `json:"equipment,omitempty"`
	Operators     []Operator `json:"operators,omitempty"`
	Trailers      []string   `json:"trailers,omitempty"`
	NetWeight     float64    `json:"net_weight"`
	GrossWeight   *float64   `json:"gross_weight,omitempty"`
	TareWeight    *float64   `json:"tare_weight,omitempty"`
	FarmCode      string     `json:"farm_code,omitempty"`
	FarmName      string     `json:"farm_name,omitempty"`
	Front         string     `json:"front,omitempty"`
	ReleaseCode   string     `json:"release_code,omitempty"`
	Variety       string     `json:"variety,omitempty"`
	LoadType      string     `json:"load_type,omitempty"`
	Analyzed      string     `json:"analyzed,omitempty"`
	OwnershipType string     `json:"ownership_type,omitempty"`
	TripQty       *float64   `json:"trip_qty,omitempty"`
	DistanceKM    *float64   `json:"distance_km,omitempty"`
	Timestamp     *time.Time `json:"ts,omitempty"`
}

// IsClosing reports whether this row closes a trip (trip quantity ~= 1).
func (r *ProductionRow) IsClosing() bool {
	return r.TripQty != nil && math.Abs(*r.TripQty-1) < 0.01
}

// IsTotalRow reports whether the row is a sheet aggregation line rather
// than a detail or closing record.
func (r *ProductionRow) IsTotalRow() bool {
	return strings.Contains(strings.ToUpper(r.FleetID), "TOTAL") ||
		strings.Contains(strings.ToUpper(r.TripID), "TOTAL")
}

// PotentialRow is one mill potential / rotation reading.
type PotentialRow struct {
	Front     string     `json:"front,omitempty"`
	Potential float64    `json:"potential"`
	Rotation  float64    `json:"rotation"`
	Timestamp *time.Time `json:"ts,omitempty"`
}

// MetaRow carries per-front planning figures from the meta sheet.
type MetaRow struct {
	FarmCode  string  `json:"farm_code,omitempty"`
	FarmName  string  `json:"farm_name,omitempty"`
	Front     string  `json:"front,omitempty"`
	Meta      float64 `json:"meta"`
	CD        float64 `json:"cd"`
	TonHora   float64 `json:"ton_hora"`
	CmHora    float64 `json:"cm_hora"`
	Cam       float64 `json:"cam"`
	TMD       float64 `json:"tmd"`
	Raio      float64 `json:"raio"`
	ATR       float64 `json:"atr"`
	Vel       float64 `json:"vel"`
	Potential float64 `json:"potential"`
}

// SeasonRow is one line of the pre-aggregated season table.
type SeasonRow struct {
	Weight    float64    `json:"weight"`
	Timestamp *time.Time `json:"ts,omitempty"`
}

type Severity string

const (
	SeverityCritical Severity = "critical"
	SeverityWarning  Severity = "warning"
)

// Anomaly is a structured data-quality finding. Context keys are filled
// only where the rule that produced it has them.
type Anomaly struct {
	Type      string   `json:"type"`
	Severity  Severity `json:"severity"`
	Title     string   `json:"title"`
	Message   string   `json:"message"`
	Detail    string   `json:"detail,omitempty"`
	Trip      string   `json:"trip,omitempty"`
	Fleet     string   `json:"fleet,omitempty"`
	Front     string   `json:"front,omitempty"`
	Release   string   `json:"release,omitempty"`
	Harvester string   `json:"harvester,omitempty"`
	Farm      string   `json:"farm,omitempty"`
}

// ValidationResult is the validator's output: all anomalies from all
// rules, sorted by (farm, front). IsValid means no critical anomaly.
type ValidationResult struct {
	Anomalies []Anomaly `json:"anomalies"`
	IsValid   bool      `json:"is_valid"`
}

// RankingEntry is one slot of a top-N ranking.
type RankingEntry struct {
	Code   string  `json:"code"`
	Name   string  `json:"name,omitempty"`
	Weight float64 `json:"weight"`
	Trips  int     `json:"trips"`
	Front  string  `json:"front,omitempty"`
}

type Rankings struct {
	OwnFleets           []RankingEntry `json:"own_fleets"`
	ThirdPartyFleets    []RankingEntry `json:"third_party_fleets"`
	OwnEquipment        []RankingEntry `json:"own_equipment"`
	ThirdPartyEquipment []RankingEntry `json:"third_party_equipment"`
	Trailers            []RankingEntry `json:"trailers"`
	Operators           []RankingEntry `json:"operators"`
}

// HourlyBucket is one slot of the agricultural day. Hour is the real
// clock hour the slot represents (slot 0 = 07:00, slot 23 = 06:00).
type HourlyBucket struct {
	Hour             int     `json:"hour"`
	Weight           float64 `json:"weight"`
	Trips            int     `json:"trips"`
	Analyzed         int     `json:"analyzed"`
	OwnWeight        float64 `json:"own_weight"`
	ThirdPartyWeight float64 `json:"third_party_weight"`
	PotentialAvg     float64 `json:"potential_avg"`
	RotationAvg      float64 `json:"rotation_avg"`
}

// Projection is a linear end-of-day extrapolation against the daily target.
type Projection struct {
	Rhythm        float64 `json:"rhythm"`
	Forecast      float64 `json:"forecast"`
	HoursWithData int     `json:"hours_with_data"`
	DailyTarget   float64 `json:"daily_target"`
	MeetsTarget   bool    `json:"meets_target"`
	Status        string  `json:"status"`
}

type HarvesterShare struct {
	Code   string  `json:"code"`
	Weight float64 `json:"weight"`
}

// FrontTarget aggregates the meta rows matched to a front.
type FrontTarget struct {
	Meta    float64 `json:"meta"`
	CD      float64 `json:"cd"`
	TonHora float64 `json:"ton_hora"`
	CmHora  float64 `json:"cm_hora"`
	Cam     float64 `json:"cam"`
	TMD     float64 `json:"tmd"`
	Raio    float64 `json:"raio"`
	ATR     float64 `json:"atr"`
	Vel     float64 `json:"vel"`
	Sources int     `json:"sources"`
}

type FrontAnalysis struct {
	Front        string           `json:"front"`
	FarmCode     string           `json:"farm_code,omitempty"`
	Trips        int              `json:"trips"`
	Weight       float64          `json:"weight"`
	AnalysisRate float64          `json:"analysis_rate"`
	ReleaseCode  string           `json:"release_code,omitempty"`
	HasConflict  bool             `json:"has_conflict"`
	Status       string           `json:"status"`
	Harvesters   []HarvesterShare `json:"harvesters,omitempty"`
	Target       *FrontTarget     `json:"target,omitempty"`
}

type TripCounts struct {
	Total      int `json:"total"`
	Own        int `json:"own"`
	ThirdParty int `json:"third_party"`
}

type WeightTotals struct {
	Total      float64 `json:"total"`
	Own        float64 `json:"own"`
	ThirdParty float64 `json:"third_party"`
}

// AnalysisResult is the single read-only output of the aggregation
// engine. Every numeric field is 0 and every list empty when there is no
// production data.
type AnalysisResult struct {
	Trips             TripCounts       `json:"trips"`
	Weights           WeightTotals     `json:"weights"`
	AnalysisRate      float64          `json:"analysis_rate"`
	Rankings          Rankings         `json:"rankings"`
	Hourly            [24]HourlyBucket `json:"hourly"`
	Projection        Projection       `json:"projection"`
	Fronts            []FrontAnalysis  `json:"fronts"`
	SeasonAccumulated float64          `json:"season_accumulated"`
	GeneratedAt       time.Time        `json:"generated_at"`
}

// Targets are the externally persisted planning scalars.
type Targets struct {
	DailyTarget    float64 `json:"daily_target"`
	RotationTarget float64 `json:"rotation_target"`
}

// Upload is one ingested file in the registry.
type Upload struct {
	ID             int64             `json:"id"`
	SourceFilename string            `json:"source_filename"`
	FileHash       string            `json:"file_hash"`
	UploadedAt     time.Time         `json:"uploaded_at"`
	SheetKinds     map[string]string `json:"sheet_kinds,omitempty"`
	RowsInserted   map[string]int    `json:"rows_inserted,omitempty"`
}

type IngestResponse struct {
	Status       string            `json:"status"`
	UploadID     *int64            `json:"upload_id,omitempty"`
	SheetKinds   map[string]string `json:"sheet_kinds,omitempty"`
	RowsInserted map[string]int    `json:"rows_inserted,omitempty"`
	Warnings     []string          `json:"warnings,omitempty"`
}

type PaginatedResponse struct {
	Items      interface{} `json:"items"`
	NextCursor *string     `json:"next_cursor,omitempty"`
}
