package ingest

import (
	"strings"

	"harvest-analytics-api/internal/models"
)

// maxHeaderScanRows bounds how deep into a sheet the classifier looks for
// a header row. Vendor exports put logos and report titles above it.
const maxHeaderScanRows = 20

type sheetRule struct {
	kind models.SheetKind
	// required counts toward the score; at least a third must be present.
	required []string
	// hints are filename fragments used when no header row scores.
	hints []string
}

var sheetRules = []sheetRule{
	{
		kind:     models.SheetProduction,
		required: []string{"frota", "peso liquido", "liberacao", "frente", "fazenda", "viagem"},
		hints:    []string{"producao", "pesagem", "balanca", "viagens"},
	},
	{
		kind:     models.SheetPotential,
		required: []string{"potencial", "rotacao", "moagem", "hora"},
		hints:    []string{"potencial", "rotacao"},
	},
	{
		kind:     models.SheetMeta,
		required: []string{"meta", "tmd", "atr", "raio", "fazenda"},
		hints:    []string{"meta", "planejamento"},
	},
	{
		kind:     models.SheetSeason,
		required: []string{"acumulado", "safra", "data"},
		hints:    []string{"acumulado", "safra"},
	},
}

// Detection is the classifier's verdict for one sheet.
type Detection struct {
	Kind      models.SheetKind
	HeaderRow int
	Score     float64
}

// DetectSheet scans up to the first 20 rows for signature header tokens
// and returns the sheet kind plus the header row it found. When no row
// scores, filename hints decide the kind and row 0 is assumed to be the
// header.
func DetectSheet(rows [][]string, filename string) Detection {
	best := Detection{Kind: models.SheetUnknown, HeaderRow: 0}

	limit := len(rows)
	if limit > maxHeaderScanRows {
		limit = maxHeaderScanRows
	}

	for i := 0; i < limit; i++ {
		normalized := make([]string, 0, len(rows[i]))
		for _, cell := range rows[i] {
			if v := NormalizeText(cell); v != "" {
				normalized = append(normalized, v)
			}
		}
		if len(normalized) == 0 {
			continue
		}

		for _, rule := range sheetRules {
			score := scoreRule(rule, normalized)
			if score > best.Score {
				best = Detection{Kind: rule.kind, HeaderRow: i, Score: score}
			}
		}
	}

	if best.Score >= 0.34 {
		return best
	}

	// Header scan failed; fall back to the filename.
	name := NormalizeText(filename)
	for _, rule := range sheetRules {
		for _, hint := range rule.hints {
			if strings.Contains(name, hint) {
				return Detection{Kind: rule.kind, HeaderRow: best.HeaderRow}
			}
		}
	}

	return Detection{Kind: models.SheetUnknown, HeaderRow: 0}
}

func scoreRule(rule sheetRule, normalizedCells []string) float64 {
	matched := 0
	for _, token := range rule.required {
		for _, cell := range normalizedCells {
			if matchPattern(cell, token) {
				matched++
				break
			}
		}
	}
	return float64(matched) / float64(len(rule.required))
}
